// internal/handlers/marketing/newsletter/handler.go
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/common/zoho"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	HandlerName = "newsletter"

	EventSubscriberCreated = "subscriber.created"

	leadMagnetSubject = "Your Free Guide: The 13 Ayurvedic Body Types"
)

type SubscriberStore interface {
	Subscribe(ctx context.Context, sub *models.NewsletterSubscription) (bool, error)
	Unsubscribe(ctx context.Context, email string) error
	Stats(ctx context.Context) (*models.NewsletterStats, error)
}

// CacheInvalidator drops the cached subscription status for an email.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, email string) error
}

type CRM interface {
	Enabled() bool
	UpsertContact(ctx context.Context, contact *zoho.Contact) (string, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) (string, error)
}

type TokenIssuer interface {
	Issue(email string) (string, error)
}

// Dependencies groups the optional integrations. Nil members are skipped.
type Dependencies struct {
	Store  SubscriberStore
	Cache  CacheInvalidator
	CRM    CRM
	Events EventPublisher
	Mailer Mailer
	Tokens TokenIssuer
	Obs    *observability.Observability
}

type Handler struct {
	config *Config
	deps   Dependencies
	logger logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Obs == nil {
		deps.Obs = observability.NewNoop()
	}
	return &Handler{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// ==========================
// HTTP adapters
// ==========================

// HandleSubscribe serves POST /api/newsletter/subscribe and POST /api/newsletter.
func (h *Handler) HandleSubscribe(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}
	var input SubscribeInput
	if result := validation.NewsletterSubscribeSchema.DecodeRequest(raw, &input); !result.Valid {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", result.Summary()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.Subscribe(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

// HandleUnsubscribe serves POST /api/newsletter/unsubscribe.
func (h *Handler) HandleUnsubscribe(c *gin.Context) {
	var input UnsubscribeInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	if err := h.unsubscribe(ctx, &input); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageOutput{Success: true, Message: "Successfully unsubscribed"})
}

// HandleStats serves GET /api/newsletter/stats.
func (h *Handler) HandleStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	stats, err := h.deps.Store.Stats(ctx)
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError("newsletter_stats", err))
		return
	}
	c.JSON(http.StatusOK, StatsOutput{Success: true, NewsletterStats: *stats})
}

// ==========================
// Operations
// ==========================

// Subscribe stores or reactivates a subscriber and runs the best-effort
// side effects. The lead magnet handler subscribes through here too.
func (h *Handler) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", "")
	}
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format", "")
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = h.config.DefaultSource
	}

	sub := &models.NewsletterSubscription{
		Email:     email,
		Source:    source,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}
	created, err := h.deps.Store.Subscribe(ctx, sub)
	if err != nil {
		return nil, apperrors.NewDatabaseError("subscribe", err)
	}
	h.invalidate(ctx, email)

	downloadURL := h.downloadURL(email)

	h.syncContact(ctx, sub)
	h.publishCreated(ctx, sub, created)
	if source == models.LeadMagnetSource {
		h.sendLeadMagnet(ctx, email, sub.FirstName, downloadURL)
	}
	h.deps.Obs.RecordNewsletterSignup(ctx, source)

	h.logger.Info("Newsletter subscription stored", map[string]interface{}{
		"source":  source,
		"created": created,
	})

	return &SubscribeOutput{
		Success:     true,
		Message:     "Successfully subscribed to newsletter",
		DownloadURL: downloadURL,
		Created:     created,
	}, nil
}

func (h *Handler) unsubscribe(ctx context.Context, input *UnsubscribeInput) error {
	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		return apperrors.NewValidationError("Email is required", "")
	}
	if err := h.deps.Store.Unsubscribe(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("Email not found in subscription list")
		}
		return apperrors.NewDatabaseError("unsubscribe", err)
	}
	h.invalidate(ctx, email)
	return nil
}

func (h *Handler) invalidate(ctx context.Context, email string) {
	if h.deps.Cache == nil {
		return
	}
	if err := h.deps.Cache.Invalidate(ctx, email); err != nil {
		h.logger.Warn("Failed to invalidate subscription cache", map[string]interface{}{"error": err.Error()})
	}
}

// downloadURL signs a lead magnet link for email. Without a signing
// secret the bare path is returned.
func (h *Handler) downloadURL(email string) string {
	if h.deps.Tokens == nil {
		return h.config.DownloadPath
	}
	token, err := h.deps.Tokens.Issue(email)
	if err != nil {
		h.logger.Warn("Failed to sign download link", map[string]interface{}{"error": err.Error()})
		return h.config.DownloadPath
	}
	return h.config.DownloadPath + "?token=" + url.QueryEscape(token)
}

func (h *Handler) syncContact(ctx context.Context, sub *models.NewsletterSubscription) {
	if h.deps.CRM == nil || !h.deps.CRM.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.config.SideEffectTimeout)
	defer cancel()

	id, err := h.deps.CRM.UpsertContact(ctx, &zoho.Contact{
		Email:     sub.Email,
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Source:    sub.Source,
	})
	if err != nil {
		h.logger.Warn("Zoho CRM sync failed", map[string]interface{}{"error": err.Error()})
		return
	}
	h.logger.Debug("Zoho CRM contact synced", map[string]interface{}{"contactId": id})
}

func (h *Handler) publishCreated(ctx context.Context, sub *models.NewsletterSubscription, created bool) {
	if h.deps.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.config.SideEffectTimeout)
	defer cancel()

	_, err := h.deps.Events.PublishEvent(ctx, EventSubscriberCreated, map[string]interface{}{
		"email":       sub.Email,
		"source":      sub.Source,
		"reactivated": !created,
	})
	if err != nil {
		h.logger.Warn("Failed to publish subscriber event", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) sendLeadMagnet(ctx context.Context, email, firstName, downloadURL string) {
	if h.deps.Mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, h.config.SideEffectTimeout)
	defer cancel()

	link := strings.TrimSuffix(h.config.PublicURL, "/") + downloadURL
	textBody, htmlBody := leadMagnetBodies(firstName, link)
	if _, err := h.deps.Mailer.Send(ctx, email, leadMagnetSubject, textBody, htmlBody); err != nil {
		h.logger.Warn("Failed to email lead magnet", map[string]interface{}{"error": err.Error()})
	}
}

func leadMagnetBodies(firstName, link string) (textBody, htmlBody string) {
	greeting := "Hello"
	if firstName != "" {
		greeting = "Hello " + firstName
	}
	textBody = fmt.Sprintf("%s,\n\nThank you for joining Your Healing Guide. Download The 13 Ayurvedic Body Types here:\n%s\n\nIn health,\nDr. Helen Thomas DC\n", greeting, link)
	htmlBody = fmt.Sprintf(`<p>%s,</p><p>Thank you for joining Your Healing Guide.</p><p><a href="%s">Download The 13 Ayurvedic Body Types</a></p><p>In health,<br>Dr. Helen Thomas DC</p>`,
		html.EscapeString(greeting), html.EscapeString(link))
	return textBody, htmlBody
}

func (h *Handler) ExecuteUnsubscribe(ctx context.Context, input *UnsubscribeInput) error {
	return h.unsubscribe(ctx, input)
}
