// internal/handlers/marketing/lead-magnet/handler.go
package leadmagnet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/handlers/marketing/newsletter"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	HandlerName = "lead-magnet"

	counterPrefix = "leadmagnet:downloads:"
	TotalKey      = counterPrefix + "total"
)

func DailyKey(t time.Time) string {
	return counterPrefix + t.UTC().Format("2006-01-02")
}

func MonthlyKey(t time.Time) string {
	return counterPrefix + t.UTC().Format("2006-01")
}

type Subscriber interface {
	Subscribe(ctx context.Context, input *newsletter.SubscribeInput) (*newsletter.SubscribeOutput, error)
}

type DownloadStore interface {
	Record(ctx context.Context, email, ip, userAgent string) error
	Counts(ctx context.Context) (total, unique int, err error)
}

type SubscriberCounter interface {
	CountBySource(ctx context.Context, source string) (int, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Handler serves the 13 body types PDF and tracks downloads.
type Handler struct {
	config      *Config
	subscriber  Subscriber
	downloads   DownloadStore
	subscribers SubscriberCounter
	tokens      TokenVerifier
	redis       redis.Cmdable
	logger      logger.Logger
	now         func() time.Time
}

func NewHandler(
	config *Config,
	subscriber Subscriber,
	downloads DownloadStore,
	subscribers SubscriberCounter,
	tokens TokenVerifier,
	redisClient redis.Cmdable,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:      config,
		subscriber:  subscriber,
		downloads:   downloads,
		subscribers: subscribers,
		tokens:      tokens,
		redis:       redisClient,
		logger:      log.WithFields(map[string]interface{}{"handler": HandlerName}),
		now:         time.Now,
	}
}

// Download serves GET /api/lead-magnet/download.
func (h *Handler) Download(c *gin.Context) {
	email, err := h.authorize(c.Query("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	if _, err := os.Stat(h.config.PDFPath); err != nil {
		h.logger.Error("Lead magnet PDF missing", map[string]interface{}{
			"path":  h.config.PDFPath,
			"error": err.Error(),
		})
		_ = c.Error(apperrors.NewNotFoundError("PDF not found"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()
	h.track(ctx, email, c.ClientIP(), c.Request.UserAgent())

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(h.config.PDFPath, h.config.DownloadName)
}

// authorize resolves the subscriber email from a download token. An
// invalid token only fails the request when tokens are required.
func (h *Handler) authorize(token string) (string, error) {
	if token == "" {
		if h.config.RequireToken {
			return "", apperrors.NewUnauthorizedError("download token required")
		}
		return "", nil
	}
	if h.tokens == nil {
		return "", nil
	}
	email, err := h.tokens.Verify(token)
	if err != nil {
		if h.config.RequireToken {
			return "", apperrors.NewUnauthorizedError(err.Error())
		}
		h.logger.Warn("Ignoring invalid download token", map[string]interface{}{"error": err.Error()})
		return "", nil
	}
	return email, nil
}

func (h *Handler) track(ctx context.Context, email, ip, userAgent string) {
	now := h.now()
	_, err := h.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, TotalKey)
		pipe.Incr(ctx, DailyKey(now))
		pipe.Expire(ctx, DailyKey(now), h.config.DailyCounterTTL)
		pipe.Incr(ctx, MonthlyKey(now))
		pipe.Expire(ctx, MonthlyKey(now), h.config.DailyCounterTTL)
		return nil
	})
	if err != nil {
		h.logger.Warn("Failed to count download", map[string]interface{}{"error": err.Error()})
	}

	if err := h.downloads.Record(ctx, email, ip, userAgent); err != nil {
		h.logger.Warn("Failed to record download", map[string]interface{}{"error": err.Error()})
	}
}

// Send serves POST /api/lead-magnet/send.
func (h *Handler) Send(c *gin.Context) {
	var input SendInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.send(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *Handler) send(ctx context.Context, input *SendInput) (*SendOutput, error) {
	sub, err := h.subscriber.Subscribe(ctx, &newsletter.SubscribeInput{
		Email:     input.Email,
		Source:    models.LeadMagnetSource,
		FirstName: input.FirstName,
	})
	if err != nil {
		return nil, err
	}
	return &SendOutput{
		Success:     true,
		Message:     "Your guide is on its way. Check your inbox for the download link.",
		DownloadURL: sub.DownloadURL,
	}, nil
}

// Stats serves GET /api/lead-magnet/stats.
func (h *Handler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	stats, err := h.stats(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) stats(ctx context.Context) (*StatsOutput, error) {
	now := h.now()
	out := &StatsOutput{Success: true}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vals, err := h.redis.MGet(gctx, TotalKey, DailyKey(now), MonthlyKey(now)).Result()
		if err != nil {
			return apperrors.NewCacheError("download_counters", err)
		}
		out.TotalDownloads = counterValue(vals[0])
		out.DownloadsToday = counterValue(vals[1])
		out.ThisMonth = counterValue(vals[2])
		return nil
	})
	g.Go(func() error {
		n, err := h.subscribers.CountBySource(gctx, models.LeadMagnetSource)
		if err != nil {
			return apperrors.NewDatabaseError("count_lead_subscribers", err)
		}
		out.TotalSubscribers = n
		return nil
	})
	g.Go(func() error {
		_, unique, err := h.downloads.Counts(gctx)
		if err != nil {
			return apperrors.NewDatabaseError("download_counts", err)
		}
		out.UniqueDownloaders = unique
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.ConversionRate = repository.ConversionRate(out.TotalSubscribers, int(out.TotalDownloads))
	return out, nil
}

// counterValue reads an MGET slot; missing keys come back as nil.
func counterValue(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (h *Handler) ExecuteSend(ctx context.Context, input *SendInput) (*SendOutput, error) {
	return h.send(ctx, input)
}

func (h *Handler) ExecuteStats(ctx context.Context) (*StatsOutput, error) {
	return h.stats(ctx)
}
