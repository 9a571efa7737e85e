// internal/handlers/billing/premium-checkout/handler.go
package premiumcheckout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"healing-guide/internal/common/billing"
	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	HandlerName = "premium-checkout"

	EventPremiumActivated = "premium.activated"

	eventCheckoutCompleted   = "checkout.session.completed"
	eventSubscriptionDeleted = "customer.subscription.deleted"
)

type PremiumStore interface {
	UpsertPending(ctx context.Context, p *models.PremiumSubscription) error
	Activate(ctx context.Context, p *models.PremiumSubscription) error
	CancelBySubscriptionID(ctx context.Context, subscriptionID string) (string, error)
	GetByEmail(ctx context.Context, email string) (*models.PremiumSubscription, error)
}

type Payments interface {
	Configured() bool
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error)
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*stripe.CheckoutSession, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, email string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) (string, error)
}

// Handler sells the premium tiers through Stripe Checkout and keeps
// premium_subscriptions in step with Stripe webhooks.
type Handler struct {
	config   *Config
	store    PremiumStore
	payments Payments
	cache    CacheInvalidator
	events   EventPublisher
	logger   logger.Logger
}

func NewHandler(
	config *Config,
	store PremiumStore,
	payments Payments,
	cache CacheInvalidator,
	events EventPublisher,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:   config,
		store:    store,
		payments: payments,
		cache:    cache,
		events:   events,
		logger:   log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// ==========================
// Checkout
// ==========================

// Checkout serves POST /api/billing/checkout.
func (h *Handler) Checkout(c *gin.Context) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.checkout(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *Handler) checkout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", "")
	}
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format", "")
	}
	tierName := strings.ToLower(strings.TrimSpace(input.Tier))
	tier, ok := h.config.Tiers[tierName]
	if !ok {
		return nil, apperrors.NewValidationError("Unknown subscription tier", tierName)
	}
	if h.payments == nil || !h.payments.Configured() {
		return nil, apperrors.NewServiceUnavailableError("Stripe", "STRIPE_SECRET_KEY is not set")
	}

	customerID, err := h.customerFor(ctx, email, tierName)
	if err != nil {
		return nil, err
	}

	if err := h.store.UpsertPending(ctx, &models.PremiumSubscription{
		Email:            email,
		Tier:             tierName,
		Price:            tier.Price,
		Currency:         tier.Currency,
		StripeCustomerID: customerID,
	}); err != nil {
		return nil, apperrors.NewDatabaseError("upsert_premium", err)
	}

	sess, err := h.payments.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		CustomerID: customerID,
		Email:      email,
		PriceID:    tier.PriceID,
		SuccessURL: h.config.SuccessURL,
		CancelURL:  h.config.CancelURL,
		Metadata:   map[string]string{"email": email, "tier": tierName},
	})
	if err != nil {
		return nil, h.stripeError("create_checkout_session", err)
	}

	h.logger.Info("Checkout session created", map[string]interface{}{
		"tier":      tierName,
		"sessionId": sess.ID,
	})
	return &CheckoutOutput{Success: true, URL: sess.URL, SessionID: sess.ID}, nil
}

// customerFor reuses the Stripe customer of an earlier checkout.
func (h *Handler) customerFor(ctx context.Context, email, tier string) (string, error) {
	existing, err := h.store.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.StripeCustomerID != "":
		return existing.StripeCustomerID, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return "", apperrors.NewDatabaseError("get_premium", err)
	}

	id, err := h.payments.CreateCustomer(ctx, email, map[string]string{"tier": tier})
	if err != nil {
		return "", h.stripeError("create_customer", err)
	}
	return id, nil
}

func (h *Handler) stripeError(operation string, err error) error {
	h.logger.Error("Stripe call failed", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	})
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return apperrors.NewUpstreamError("Stripe", stripeErr.HTTPStatusCode, stripeErr.Msg)
	}
	return apperrors.FromUpstream("Stripe", err)
}

// ==========================
// Webhook
// ==========================

// Webhook serves POST /api/billing/webhook.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, h.config.MaxWebhookBytes+1))
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("Invalid payload", err.Error()))
		return
	}
	if int64(len(payload)) > h.config.MaxWebhookBytes {
		_ = c.Error(apperrors.NewPayloadTooLargeError(h.config.MaxWebhookBytes))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.handleWebhook(ctx, payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *Handler) handleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookOutput, error) {
	if h.config.WebhookSecret == "" {
		return nil, apperrors.NewServiceUnavailableError("Stripe", "STRIPE_WEBHOOK_SECRET is not set")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, h.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, apperrors.NewValidationError("Signature verification failed", err.Error())
	}

	switch string(event.Type) {
	case eventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, apperrors.NewValidationError("Invalid session payload", err.Error())
		}
		if err := h.activate(ctx, &sess); err != nil {
			return nil, err
		}
	case eventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, apperrors.NewValidationError("Invalid subscription payload", err.Error())
		}
		if err := h.cancel(ctx, sub.ID); err != nil {
			return nil, err
		}
	default:
		h.logger.Debug("Ignoring Stripe event", map[string]interface{}{"type": string(event.Type)})
	}

	return &WebhookOutput{Received: true, Event: string(event.Type)}, nil
}

func (h *Handler) activate(ctx context.Context, sess *stripe.CheckoutSession) error {
	email := sessionEmail(sess)
	if email == "" {
		return apperrors.NewValidationError("Checkout session has no customer email", sess.ID)
	}
	var customerID, subscriptionID string
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}

	activation := &models.PremiumSubscription{
		Email:                email,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: subscriptionID,
	}
	tierName := strings.ToLower(strings.TrimSpace(sess.Metadata["tier"]))
	if tier, ok := h.config.Tiers[tierName]; ok {
		activation.Tier = tierName
		activation.Price = tier.Price
		activation.Currency = tier.Currency
	}

	err := h.store.Activate(ctx, activation)
	if errors.Is(err, repository.ErrNotFound) {
		// Checkout started outside this service; record it from the metadata.
		if err = h.recordFromMetadata(ctx, email, customerID, sess.Metadata); err == nil {
			err = h.store.Activate(ctx, activation)
		}
	}
	if err != nil {
		return apperrors.NewDatabaseError("activate_premium", err)
	}

	h.invalidate(ctx, email)
	h.publish(ctx, EventPremiumActivated, map[string]interface{}{
		"email":           email,
		"tier":            sess.Metadata["tier"],
		"subscription_id": subscriptionID,
	})
	h.logger.Info("Premium subscription activated", map[string]interface{}{"sessionId": sess.ID})
	return nil
}

func (h *Handler) recordFromMetadata(ctx context.Context, email, customerID string, metadata map[string]string) error {
	name := metadata["tier"]
	tier, ok := h.config.Tiers[name]
	if !ok {
		return fmt.Errorf("%w: no pending record and unknown tier %q", repository.ErrNotFound, name)
	}
	return h.store.UpsertPending(ctx, &models.PremiumSubscription{
		Email:            email,
		Tier:             name,
		Price:            tier.Price,
		Currency:         tier.Currency,
		StripeCustomerID: customerID,
	})
}

func (h *Handler) cancel(ctx context.Context, subscriptionID string) error {
	email, err := h.store.CancelBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn("Canceled subscription is not on record", map[string]interface{}{"subscriptionId": subscriptionID})
			return nil
		}
		return apperrors.NewDatabaseError("cancel_premium", err)
	}
	h.invalidate(ctx, email)
	h.logger.Info("Premium subscription canceled", map[string]interface{}{"subscriptionId": subscriptionID})
	return nil
}

func sessionEmail(sess *stripe.CheckoutSession) string {
	candidates := []string{sess.Metadata["email"], sess.ClientReferenceID, sess.CustomerEmail}
	if sess.CustomerDetails != nil {
		candidates = append(candidates, sess.CustomerDetails.Email)
	}
	for _, c := range candidates {
		if email := validation.NormalizeEmail(c); email != "" {
			return email
		}
	}
	return ""
}

func (h *Handler) invalidate(ctx context.Context, email string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, email); err != nil {
		h.logger.Warn("Failed to invalidate subscription cache", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if h.events == nil {
		return
	}
	if _, err := h.events.PublishEvent(ctx, eventType, data); err != nil {
		h.logger.Warn("Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

// ==========================
// Lookup
// ==========================

// Subscription serves GET /api/billing/subscription/:email.
func (h *Handler) Subscription(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	sub, err := h.subscription(ctx, c.Param("email"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SubscriptionOutput{
		Success:     true,
		Tier:        sub.Tier,
		Price:       sub.Price,
		Currency:    sub.Currency,
		Status:      sub.Status,
		ActivatedAt: sub.ActivatedAt,
	})
}

func (h *Handler) subscription(ctx context.Context, email string) (*models.PremiumSubscription, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", "")
	}
	sub, err := h.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("No premium subscription found")
		}
		return nil, apperrors.NewDatabaseError("get_premium", err)
	}
	return sub, nil
}

func (h *Handler) ExecuteCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	return h.checkout(ctx, input)
}

func (h *Handler) ExecuteWebhook(ctx context.Context, payload []byte, signature string) (*WebhookOutput, error) {
	return h.handleWebhook(ctx, payload, signature)
}
