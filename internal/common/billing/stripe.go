// internal/common/billing/stripe.go
package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

var ErrNotConfigured = errors.New("STRIPE_NOT_CONFIGURED")

// CheckoutRequest describes a subscription-mode Checkout session.
type CheckoutRequest struct {
	CustomerID string
	Email      string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// StripeClient creates customers and Checkout sessions through a
// dedicated API client rather than the package level stripe.Key.
type StripeClient struct {
	api        *client.API
	configured bool
}

// NewStripeClient builds a client. backends may be nil to use Stripe's
// production endpoints.
func NewStripeClient(secretKey string, backends *stripe.Backends) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeClient{api: api, configured: secretKey != ""}
}

func (s *StripeClient) Configured() bool {
	return s != nil && s.configured
}

// CreateCustomer creates a customer for email and returns its id.
func (s *StripeClient) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription checkout for one price.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*stripe.CheckoutSession, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.Email),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return s.api.CheckoutSessions.New(params)
}
