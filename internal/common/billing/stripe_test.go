// internal/common/billing/stripe_test.go
package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type recordedRequest struct {
	path string
	form url.Values
	auth string
}

func newStripeServer(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		requests = append(requests, recordedRequest{path: r.URL.Path, form: r.PostForm, auth: r.Header.Get("Authorization")})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/customers":
			_, _ = w.Write([]byte(`{"id":"cus_123","object":"customer","email":"reader@example.com"}`))
		case "/v1/checkout/sessions":
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","mode":"subscription"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"unknown path"}}`))
		}
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(serverURL string) *StripeClient {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(serverURL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeClient("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripeClient_CreateCustomer(t *testing.T) {
	server, requests := newStripeServer(t)
	c := newTestClient(server.URL)

	id, err := c.CreateCustomer(context.Background(), "reader@example.com", map[string]string{"tier": "healing_circle"})

	require.NoError(t, err)
	assert.Equal(t, "cus_123", id)
	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "reader@example.com", req.form.Get("email"))
	assert.Equal(t, "healing_circle", req.form.Get("metadata[tier]"))
	assert.Equal(t, "Bearer sk_test_123", req.auth)
}

func TestStripeClient_CreateCheckoutSession(t *testing.T) {
	server, requests := newStripeServer(t)
	c := newTestClient(server.URL)

	sess, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{
		CustomerID: "cus_123",
		Email:      "reader@example.com",
		PriceID:    "price_abc",
		SuccessURL: "https://healingguide.example/premium/success",
		CancelURL:  "https://healingguide.example/premium",
		Metadata:   map[string]string{"email": "reader@example.com", "tier": "healing_circle"},
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.URL)

	form := (*requests)[0].form
	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "cus_123", form.Get("customer"))
	assert.Equal(t, "price_abc", form.Get("line_items[0][price]"))
	assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "reader@example.com", form.Get("client_reference_id"))
	assert.Equal(t, "healing_circle", form.Get("metadata[tier]"))
	assert.Equal(t, "healing_circle", form.Get("subscription_data[metadata][tier]"))
}

func TestStripeClient_NotConfigured(t *testing.T) {
	c := NewStripeClient("", nil)

	assert.False(t, c.Configured())
	_, err := c.CreateCustomer(context.Background(), "reader@example.com", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
