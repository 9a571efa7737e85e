// internal/handlers/account/user-profile/handler.go
package userprofile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/knowledge"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	HandlerName = "user-profile"
)

type UserStore interface {
	Upsert(ctx context.Context, email, name string, age *int, constitution string) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
}

type AssessmentStore interface {
	LatestByEmail(ctx context.Context, email string) (*models.Assessment, error)
}

type Handler struct {
	config      *Config
	users       UserStore
	assessments AssessmentStore
	logger      logger.Logger
}

func NewHandler(config *Config, users UserStore, assessments AssessmentStore, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		users:       users,
		assessments: assessments,
		logger:      log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// Save serves POST /api/users.
func (h *Handler) Save(c *gin.Context) {
	var input Input
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	user, err := h.save(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, Output{Success: true, User: user})
}

// Get serves GET /api/users/:email.
func (h *Handler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	user, err := h.get(ctx, c.Param("email"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, Output{Success: true, User: user})
}

func (h *Handler) save(ctx context.Context, input *Input) (*models.UserProfile, error) {
	email := validation.NormalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", "")
	}
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format", "")
	}
	if input.Age != nil && (*input.Age < h.config.MinAge || *input.Age > h.config.MaxAge) {
		return nil, apperrors.NewValidationError("Invalid age",
			fmt.Sprintf("age must be between %d and %d", h.config.MinAge, h.config.MaxAge))
	}
	constitution := strings.ToLower(strings.TrimSpace(input.Constitution))
	if constitution != "" {
		if _, ok := knowledge.AnalyzeConstitution(constitution, nil); !ok {
			return nil, apperrors.NewValidationError("Unknown constitution", constitution)
		}
	}

	user, err := h.users.Upsert(ctx, email, strings.TrimSpace(input.Name), input.Age, constitution)
	if err != nil {
		return nil, apperrors.NewDatabaseError("upsert_user", err)
	}
	h.logger.Info("User profile saved", map[string]interface{}{"userId": user.ID})
	return user, nil
}

func (h *Handler) get(ctx context.Context, rawEmail string) (*models.UserProfile, error) {
	email := validation.NormalizeEmail(rawEmail)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required", "")
	}

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, apperrors.NewDatabaseError("get_user", err)
	}

	latest, err := h.assessments.LatestByEmail(ctx, email)
	switch {
	case err == nil:
		user.Answers = latest.Answers
		if user.Constitution == "" {
			user.Constitution = latest.Constitution.Constitution
		}
	case !errors.Is(err, repository.ErrNotFound):
		h.logger.Warn("Failed to load latest assessment", map[string]interface{}{
			"userId": user.ID,
			"error":  err.Error(),
		})
	}
	return user, nil
}

func (h *Handler) ExecuteSave(ctx context.Context, input *Input) (*models.UserProfile, error) {
	return h.save(ctx, input)
}

func (h *Handler) ExecuteGet(ctx context.Context, email string) (*models.UserProfile, error) {
	return h.get(ctx, email)
}
