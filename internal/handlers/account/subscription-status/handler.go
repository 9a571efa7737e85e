// internal/handlers/account/subscription-status/handler.go
package subscriptionstatus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/metrics"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	HandlerName = "subscription-status"
)

type NewsletterStore interface {
	ActiveSince(ctx context.Context, email string) (time.Time, error)
}

type PremiumStore interface {
	GetByEmail(ctx context.Context, email string) (*models.PremiumSubscription, error)
}

// Handler resolves whether an email may use subscriber-only features.
// Results are cached under sub:<email>.
type Handler struct {
	config     *Config
	newsletter NewsletterStore
	premium    PremiumStore
	redis      redis.Cmdable
	logger     logger.Logger
}

func NewHandler(config *Config, newsletter NewsletterStore, premium PremiumStore, redisClient redis.Cmdable, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		newsletter: newsletter,
		premium:    premium,
		redis:      redisClient,
		logger:     log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

func CacheKey(email string) string {
	return "sub:" + email
}

// Handle serves GET /api/subscription-status/:email.
func (h *Handler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	status, err := h.execute(ctx, &Input{Email: c.Param("email")})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, Output{
		Success:          true,
		Subscribed:       status.Subscribed,
		SubscriptionDate: status.SubscriptionDate,
		PremiumTier:      status.PremiumTier,
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*models.SubscriptionStatus, error) {
	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", "")
	}

	cacheKey := CacheKey(email)
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var status models.SubscriptionStatus
		if err := json.Unmarshal([]byte(val), &status); err == nil {
			metrics.CacheOperationsTotal.WithLabelValues(HandlerName, "hit").Inc()
			return &status, nil
		}
	}
	metrics.CacheOperationsTotal.WithLabelValues(HandlerName, "miss").Inc()

	status := &models.SubscriptionStatus{Email: email}

	since, err := h.newsletter.ActiveSince(ctx, email)
	switch {
	case err == nil:
		status.Subscribed = true
		status.SubscriptionDate = &since
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, apperrors.NewDatabaseError("newsletter_status", err)
	}

	premium, err := h.premium.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if premium.Status == models.PremiumActive {
			status.Subscribed = true
			status.PremiumTier = premium.Tier
			if status.SubscriptionDate == nil {
				status.SubscriptionDate = premium.ActivatedAt
			}
		}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, apperrors.NewDatabaseError("premium_status", err)
	}

	data, _ := json.Marshal(status)
	if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache subscription status", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
	}

	return status, nil
}

// Check reports whether email holds an active newsletter or premium
// subscription.
func (h *Handler) Check(ctx context.Context, email string) (bool, error) {
	status, err := h.execute(ctx, &Input{Email: email})
	if err != nil {
		return false, err
	}
	return status.Subscribed, nil
}

// Invalidate drops the cached status after a subscription change.
func (h *Handler) Invalidate(ctx context.Context, email string) error {
	return h.redis.Del(ctx, CacheKey(validation.NormalizeEmail(email))).Err()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*models.SubscriptionStatus, error) {
	return h.execute(ctx, input)
}
