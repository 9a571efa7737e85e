// internal/handlers/assessment/constitution-assessment/handler.go
package constitutionassessment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/knowledge"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HandlerName = "constitution-assessment"

	EventAssessmentCompleted = "assessment.completed"
)

type AssessmentStore interface {
	Create(ctx context.Context, a *models.Assessment) error
	Get(ctx context.Context, id string) (*models.Assessment, error)
}

type UserStore interface {
	Upsert(ctx context.Context, email, name string, age *int, constitution string) (*models.UserProfile, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) (string, error)
}

// Handler scores the ten question dosha questionnaire and stores results.
type Handler struct {
	config      *Config
	assessments AssessmentStore
	users       UserStore
	events      EventPublisher
	obs         *observability.Observability
	logger      logger.Logger
	newID       func() string
}

// NewHandler builds the handler. events may be nil when SNS is disabled.
func NewHandler(
	config *Config,
	assessments AssessmentStore,
	users UserStore,
	events EventPublisher,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:      config,
		assessments: assessments,
		users:       users,
		events:      events,
		obs:         obs,
		logger:      log.WithFields(map[string]interface{}{"handler": HandlerName}),
		newID:       uuid.NewString,
	}
}

// Questions serves GET /api/assessment/questions.
func (h *Handler) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, QuestionsOutput{
		Success:   true,
		Questions: knowledge.Questions,
		Total:     len(knowledge.Questions),
	})
}

// Submit serves POST /api/assessment/submit and POST /api/assessment.
func (h *Handler) Submit(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}
	var input Input
	if result := validation.AssessmentSubmitSchema.DecodeRequest(raw, &input); !result.Valid {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", result.Summary()))
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

// Get serves GET /api/assessment/:id.
func (h *Handler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	a, err := h.get(ctx, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, AssessmentOutput{Success: true, Assessment: a})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Answers) == 0 {
		return nil, apperrors.NewValidationError("No answers provided", "")
	}

	result, counted := knowledge.Score(input.Answers)
	if counted == 0 {
		return nil, apperrors.NewValidationError("No valid answers provided",
			"every answer referenced an unknown question or option")
	}

	email := validation.NormalizeEmail(input.Email)
	if email != "" && !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format", "")
	}

	assessment := &models.Assessment{
		ID:              h.newID(),
		UserID:          input.UserID,
		Email:           email,
		Constitution:    result,
		Answers:         input.Answers,
		Recommendations: knowledge.Recommend(result),
	}
	if err := h.assessments.Create(ctx, assessment); err != nil {
		return nil, apperrors.NewDatabaseError("create_assessment", err)
	}

	name := strings.TrimSpace(input.Name)
	if email != "" && name != "" {
		if _, err := h.users.Upsert(ctx, email, name, nil, result.Constitution); err != nil {
			h.logger.Warn("Failed to update user profile", map[string]interface{}{
				"assessmentId": assessment.ID,
				"error":        err.Error(),
			})
		}
	}

	h.publishCompleted(ctx, assessment, counted)
	h.obs.RecordAssessment(ctx, string(result.Primary))

	h.logger.Info("Assessment completed", map[string]interface{}{
		"assessmentId": assessment.ID,
		"constitution": result.Constitution,
		"answers":      counted,
	})

	return &Output{
		Success:         true,
		AssessmentID:    assessment.ID,
		Constitution:    result,
		Recommendations: assessment.Recommendations,
	}, nil
}

func (h *Handler) publishCompleted(ctx context.Context, a *models.Assessment, counted int) {
	if h.events == nil {
		return
	}
	data := map[string]interface{}{
		"assessment_id": a.ID,
		"constitution":  a.Constitution.Constitution,
		"primary":       string(a.Constitution.Primary),
		"answers":       counted,
	}
	if a.Email != "" {
		data["email"] = a.Email
	}
	if _, err := h.events.PublishEvent(ctx, EventAssessmentCompleted, data); err != nil {
		h.logger.Warn("Failed to publish assessment event", map[string]interface{}{
			"assessmentId": a.ID,
			"error":        err.Error(),
		})
	}
}

func (h *Handler) get(ctx context.Context, id string) (*models.Assessment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFoundError("Assessment not found")
	}
	a, err := h.assessments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Assessment not found")
		}
		return nil, apperrors.NewDatabaseError("get_assessment", err)
	}
	return a, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
