// internal/handlers/consultation/ai-query/handler.go
package aiquery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	"healing-guide/internal/common/openai"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/knowledge"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	HandlerName = "ai-query"

	subscribeMessage = "Please subscribe to access AI guidance from Dr. Helen Thomas DC"
)

type SubscriptionChecker interface {
	Check(ctx context.Context, email string) (bool, error)
}

type UserStore interface {
	GetAge(ctx context.Context, email string) (*int, error)
}

type AssessmentStore interface {
	LatestByEmail(ctx context.Context, email string) (*models.Assessment, error)
}

type Completer interface {
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*openai.ChatResponse, error)
}

type Handler struct {
	config        *Config
	subscriptions SubscriptionChecker
	users         UserStore
	assessments   AssessmentStore
	completer     Completer
	obs           *observability.Observability
	logger        logger.Logger
	now           func() time.Time
}

func NewHandler(
	config *Config,
	subscriptions SubscriptionChecker,
	users UserStore,
	assessments AssessmentStore,
	completer Completer,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:        config,
		subscriptions: subscriptions,
		users:         users,
		assessments:   assessments,
		completer:     completer,
		obs:           obs,
		logger:        log.WithFields(map[string]interface{}{"handler": HandlerName}),
		now:           time.Now,
	}
}

// Handle serves POST /api/ai-query and its /api/ask alias.
func (h *Handler) Handle(c *gin.Context) {
	var input Input
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, apperrors.NewValidationError("Query is required", "field: query")
	}

	email := validation.NormalizeEmail(input.Email)
	if h.config.RequireSubscription {
		if email == "" {
			return nil, apperrors.NewSubscriptionRequiredError(subscribeMessage)
		}
		subscribed, err := h.subscriptions.Check(ctx, email)
		if err != nil {
			return nil, err
		}
		if !subscribed {
			return nil, apperrors.NewSubscriptionRequiredError(subscribeMessage)
		}
	}

	uc := h.loadUserContext(ctx, email)
	uc.Symptoms = input.Symptoms
	analysis := knowledge.AnalyzeQuery(query)

	start := h.now()
	response := h.answer(ctx, query, analysis, uc, input.Context)
	h.obs.RecordAIQuery(ctx, response.Source, h.now().Sub(start))

	h.logger.Info("consultation answered", map[string]interface{}{
		"source":       response.Source,
		"queryTypes":   len(analysis.Types),
		"personalized": response.Personalized,
	})

	return &Output{
		Success:  true,
		Response: response,
		UserContext: UserContext{
			Constitution: uc.Constitution,
			Age:          uc.Age,
			Season:       uc.Season,
			LifeStage:    uc.LifeStage,
		},
	}, nil
}

// loadUserContext fetches age and the latest constitution concurrently.
// Lookup failures degrade to an anonymous context.
func (h *Handler) loadUserContext(ctx context.Context, email string) knowledge.UserContext {
	uc := knowledge.UserContext{Season: knowledge.CurrentSeason(h.now())}
	if email == "" {
		return uc
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.ContextTimeout)
	defer cancel()

	var (
		age          *int
		constitution string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := h.users.GetAge(gctx, email)
		if err != nil {
			return err
		}
		age = a
		return nil
	})
	g.Go(func() error {
		latest, err := h.assessments.LatestByEmail(gctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		constitution = latest.Constitution.Constitution
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Warn("failed to load user context", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return uc
	}

	uc.Age = age
	uc.Constitution = constitution
	if age != nil {
		uc.LifeStage = knowledge.LifeStageFor(*age)
	}
	return uc
}

// answer asks the language model and falls back to the knowledge base
// when it is unconfigured or fails.
func (h *Handler) answer(ctx context.Context, query string, analysis *knowledge.QueryAnalysis, uc knowledge.UserContext, extra map[string]interface{}) *knowledge.Response {
	if h.completer == nil || !h.completer.Configured() {
		return knowledge.Answer(query, analysis, uc)
	}

	ctx, span := h.obs.StartSpan(ctx, "openai.chat_completion",
		attribute.Int("query.types", len(analysis.Types)),
		attribute.Bool("user.personalized", uc.Constitution != ""),
	)
	defer span.End()

	completion, err := h.completer.Complete(ctx, knowledge.SystemPrompt(uc), knowledge.UserPrompt(query, uc.Symptoms, extra))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		h.logger.Warn("language model unavailable, answering from knowledge base", map[string]interface{}{
			"error": err.Error(),
		})
		return knowledge.Answer(query, analysis, uc)
	}
	return knowledge.FromCompletion(completion.Text(), analysis, uc)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
