// internal/handlers/consultation/ai-query/handler_test.go
package aiquery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	"healing-guide/internal/common/openai"
	"healing-guide/internal/knowledge"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSubscriptions struct {
	mu         sync.Mutex
	subscribed bool
	err        error
	checked    []string
}

func (f *fakeSubscriptions) Check(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, email)
	return f.subscribed, f.err
}

type fakeUsers struct {
	age *int
	err error
}

func (f *fakeUsers) GetAge(context.Context, string) (*int, error) {
	return f.age, f.err
}

type fakeAssessments struct {
	latest *models.Assessment
	err    error
}

func (f *fakeAssessments) LatestByEmail(context.Context, string) (*models.Assessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.latest == nil {
		return nil, repository.ErrNotFound
	}
	return f.latest, nil
}

type testDeps struct {
	subscriptions *fakeSubscriptions
	users         *fakeUsers
	assessments   *fakeAssessments
	completer     Completer
}

func createTestConfig() *Config {
	return &Config{
		Timeout:             5 * time.Second,
		ContextTimeout:      time.Second,
		RequireSubscription: true,
	}
}

func createTestDeps() *testDeps {
	age := 34
	return &testDeps{
		subscriptions: &fakeSubscriptions{subscribed: true},
		users:         &fakeUsers{age: &age},
		assessments: &fakeAssessments{latest: &models.Assessment{
			ID: "a-1",
			Constitution: models.ConstitutionResult{
				Primary:      models.DoshaPitta,
				Secondary:    models.DoshaKapha,
				Constitution: "pitta-kapha",
			},
		}},
		completer: openai.NewClient(openai.Config{}),
	}
}

func createTestHandler(t *testing.T, config *Config, deps *testDeps) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	if deps == nil {
		deps = createTestDeps()
	}
	h := NewHandler(config, deps.subscriptions, deps.users, deps.assessments, deps.completer,
		observability.NewNoop(), logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC) }
	return h
}

func newOpenAIServer(t *testing.T, status int, content string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": "gpt-4",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newOpenAIClient(baseURL string) *openai.Client {
	return openai.NewClient(openai.Config{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gpt-4",
		MaxTokens:   1500,
		Temperature: 0.7,
		Timeout:     2 * time.Second,
	})
}

func assertErrorCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.StandardError {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
	return stdErr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_KnowledgeBase(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		setupDeps      func(d *testDeps)
		validateOutput func(t *testing.T, output *Output, d *testDeps)
	}{
		{
			name:  "subscriber gets personalised knowledge base answer",
			input: &Input{Query: "What should I eat for my constitution?", Email: "Reader@Example.com"},
			validateOutput: func(t *testing.T, output *Output, d *testDeps) {
				assert.Equal(t, knowledge.SourceKnowledgeBase, output.Response.Source)
				assert.True(t, output.Response.ConstitutionSpecific)
				assert.Equal(t, "pitta-kapha", output.UserContext.Constitution)
				require.NotNil(t, output.UserContext.Age)
				assert.Equal(t, 34, *output.UserContext.Age)
				assert.Equal(t, "youth", output.UserContext.LifeStage)
				assert.Equal(t, "summer", output.UserContext.Season)
				assert.Equal(t, []string{"reader@example.com"}, d.subscriptions.checked)
			},
		},
		{
			name:  "no assessment yet",
			input: &Input{Query: "How do I sleep better?", Email: "new@example.com"},
			setupDeps: func(d *testDeps) {
				d.assessments.latest = nil
				d.users.age = nil
			},
			validateOutput: func(t *testing.T, output *Output, _ *testDeps) {
				assert.Empty(t, output.UserContext.Constitution)
				assert.Nil(t, output.UserContext.Age)
				assert.Empty(t, output.UserContext.LifeStage)
				assert.False(t, output.Response.Personalized)
			},
		},
		{
			name:  "context lookup failure degrades to anonymous context",
			input: &Input{Query: "Tell me about vata", Email: "reader@example.com"},
			setupDeps: func(d *testDeps) {
				d.users.err = errors.New("connection refused")
			},
			validateOutput: func(t *testing.T, output *Output, _ *testDeps) {
				assert.Empty(t, output.UserContext.Constitution)
				assert.Equal(t, "summer", output.UserContext.Season)
				assert.NotEmpty(t, output.Response.Answer)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			deps := createTestDeps()
			if tt.setupDeps != nil {
				tt.setupDeps(deps)
			}
			handler := createTestHandler(t, nil, deps)

			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.True(t, output.Success)
			assert.Equal(t, knowledge.ClinicalAuthority, output.Response.ClinicalAuthority)
			assert.Equal(t, knowledge.Disclaimer, output.Response.Warning)
			assert.LessOrEqual(t, len(output.Response.FollowUpQuestions), 3)
			tt.validateOutput(t, output, deps)
		})
	}
}

func TestHandler_Execute_OpenAI(t *testing.T) {
	completion := strings.Join([]string{
		"Your pitta runs hot in summer.",
		"I recommend cooling foods like cucumber and coriander.",
		"Consider Brahmi before bed.",
		"A daily routine of early rising keeps kapha light.",
	}, "\n")

	server := newOpenAIServer(t, http.StatusOK, completion)
	deps := createTestDeps()
	deps.completer = newOpenAIClient(server.URL)
	handler := createTestHandler(t, nil, deps)

	output, err := handler.Execute(context.Background(), &Input{
		Query:    "How do I stay cool?",
		Email:    "reader@example.com",
		Symptoms: []string{"heat"},
	})

	require.NoError(t, err)
	resp := output.Response
	assert.Equal(t, knowledge.SourceOpenAI, resp.Source)
	assert.Equal(t, completion, resp.Answer)
	assert.Len(t, resp.Recommendations, 2)
	assert.Equal(t, []string{"Brahmi", "Coriander"}, resp.Herbs)
	assert.Len(t, resp.LifestyleTips, 1)
	assert.True(t, resp.Personalized)
}

func TestHandler_Execute_OpenAIFailureFallsBack(t *testing.T) {
	server := newOpenAIServer(t, http.StatusInternalServerError, "")
	deps := createTestDeps()
	deps.completer = newOpenAIClient(server.URL)
	handler := createTestHandler(t, nil, deps)

	output, err := handler.Execute(context.Background(), &Input{Query: "What herbs help anxiety?", Email: "reader@example.com"})

	require.NoError(t, err)
	assert.Equal(t, knowledge.SourceKnowledgeBase, output.Response.Source)
	assert.NotEmpty(t, output.Response.Herbs)
}

func TestHandler_Execute_SubscriptionNotRequired(t *testing.T) {
	config := createTestConfig()
	config.RequireSubscription = false
	deps := createTestDeps()
	deps.subscriptions.subscribed = false
	handler := createTestHandler(t, config, deps)

	output, err := handler.Execute(context.Background(), &Input{Query: "What is ayurveda?"})

	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Empty(t, deps.subscriptions.checked)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		setupDeps   func(d *testDeps)
		expectCode  apperrors.ErrorCode
		expectMsg   string
		expectCheck bool
	}{
		{
			name:       "blank query",
			input:      &Input{Query: "   ", Email: "reader@example.com"},
			expectCode: apperrors.ErrCodeValidationFailed,
			expectMsg:  "Query is required",
		},
		{
			name:       "missing email",
			input:      &Input{Query: "What is my dosha?"},
			expectCode: apperrors.ErrCodeSubscriptionRequired,
			expectMsg:  subscribeMessage,
		},
		{
			name:  "not subscribed",
			input: &Input{Query: "What is my dosha?", Email: "stranger@example.com"},
			setupDeps: func(d *testDeps) {
				d.subscriptions.subscribed = false
			},
			expectCode:  apperrors.ErrCodeSubscriptionRequired,
			expectMsg:   subscribeMessage,
			expectCheck: true,
		},
		{
			name:  "subscription lookup fails",
			input: &Input{Query: "What is my dosha?", Email: "reader@example.com"},
			setupDeps: func(d *testDeps) {
				d.subscriptions.err = apperrors.NewDatabaseError("newsletter_status", errors.New("timeout"))
			},
			expectCode:  apperrors.ErrCodeDatabaseError,
			expectMsg:   "Database operation failed",
			expectCheck: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := createTestDeps()
			if tt.setupDeps != nil {
				tt.setupDeps(deps)
			}
			handler := createTestHandler(t, nil, deps)

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			stdErr := assertErrorCode(t, err, tt.expectCode)
			assert.Equal(t, tt.expectMsg, stdErr.Message)
			assert.Equal(t, tt.expectCheck, len(deps.subscriptions.checked) > 0)
		})
	}
}

// ==========================
// HTTP Tests
// ==========================

func TestHandler_Handle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := createTestHandler(t, nil, nil)
	router := gin.New()
	router.Use(apperrors.NewErrorHandler(logger.NewTestLogger(t)).Middleware())
	router.POST("/api/ai-query", handler.Handle)

	tests := []struct {
		name         string
		body         string
		expectStatus int
		expectError  string
	}{
		{name: "answered", body: `{"query":"What should I eat?","email":"reader@example.com"}`, expectStatus: http.StatusOK},
		{name: "empty body", body: ``, expectStatus: http.StatusBadRequest, expectError: "INPUT_VALIDATION_FAILED"},
		{name: "malformed json", body: `{"query":`, expectStatus: http.StatusBadRequest, expectError: "INPUT_VALIDATION_FAILED"},
		{name: "not subscribed", body: `{"query":"hi"}`, expectStatus: http.StatusForbidden, expectError: "SUBSCRIPTION_REQUIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/ai-query", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectError == "" {
				assert.Equal(t, true, body["success"])
				assert.Contains(t, body, "response")
				assert.Contains(t, body, "user_context")
				return
			}
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.expectError, body["error"])
		})
	}
}
