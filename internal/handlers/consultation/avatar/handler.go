// internal/handlers/consultation/avatar/handler.go
package avatar

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/knowledge"

	"github.com/gin-gonic/gin"
)

const (
	HandlerName = "avatar"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// Script serves POST /api/avatar-script.
func (h *Handler) Script(c *gin.Context) {
	var input ScriptInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	script, err := h.script(&input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ScriptOutput{Success: true, Script: *script})
}

// Speak serves POST /api/avatar/speak.
func (h *Handler) Speak(c *gin.Context) {
	var input SpeakInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}
	c.JSON(http.StatusOK, h.speak(&input))
}

func (h *Handler) script(input *ScriptInput) (*knowledge.SpeakingScript, error) {
	text := input.Text
	if strings.TrimSpace(text) == "" {
		text = input.ResponseText
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("Text is required", "field: text")
	}
	if n := utf8.RuneCountInString(text); n > h.config.MaxScriptLength {
		return nil, apperrors.NewValidationError("Text is too long",
			fmt.Sprintf("length %d exceeds %d characters", n, h.config.MaxScriptLength))
	}

	script := knowledge.BuildSpeakingScript(text)
	return &script, nil
}

func (h *Handler) speak(input *SpeakInput) *SpeakOutput {
	kind := strings.ToLower(strings.TrimSpace(input.Type))
	text, used := knowledge.AvatarLine(kind)
	if used != kind && kind != "" {
		h.logger.Debug("unknown avatar script type, using default", map[string]interface{}{
			"requested": kind,
			"used":      used,
		})
	}
	return &SpeakOutput{Success: true, Text: text, Type: used}
}

func (h *Handler) ExecuteScript(input *ScriptInput) (*knowledge.SpeakingScript, error) {
	return h.script(input)
}

func (h *Handler) ExecuteSpeak(input *SpeakInput) *SpeakOutput {
	return h.speak(input)
}
