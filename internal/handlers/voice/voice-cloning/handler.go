// internal/handlers/voice/voice-cloning/handler.go
package voicecloning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"healing-guide/internal/common/elevenlabs"
	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/knowledge"

	"github.com/gin-gonic/gin"
)

const (
	HandlerName = "voice-cloning"

	provider = "ElevenLabs"
)

var ErrInvalidSampleFormat = errors.New("INVALID_SAMPLE_FORMAT")

type VoiceAPI interface {
	Configured() bool
	ListVoices(ctx context.Context) ([]elevenlabs.Voice, error)
	AddVoice(ctx context.Context, name, description string, labels map[string]string, files []elevenlabs.SampleFile) (string, error)
	DeleteVoice(ctx context.Context, voiceID string) error
	GetVoiceSettings(ctx context.Context, voiceID string) (*elevenlabs.VoiceSettings, error)
	EditVoiceSettings(ctx context.Context, voiceID string, settings elevenlabs.VoiceSettings) error
	UserInfo(ctx context.Context) (*elevenlabs.UserInfo, error)
}

// Handler manages Dr. Helen's cloned voice on ElevenLabs.
type Handler struct {
	config *Config
	voices VoiceAPI
	logger logger.Logger
}

func NewHandler(config *Config, voices VoiceAPI, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		voices: voices,
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// ==========================
// HTTP adapters
// ==========================

// UploadSample serves POST /api/voice-cloning/upload-voice-sample.
func (h *Handler) UploadSample(c *gin.Context) {
	input, err := h.readSample(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	voiceID, err := h.upload(ctx, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, UploadOutput{
		Success: true,
		VoiceID: voiceID,
		Message: "Voice clone created successfully! Dr. Helen's voice is now ready.",
	})
}

func (h *Handler) readSample(c *gin.Context) (*UploadInput, error) {
	header, err := c.FormFile("audio")
	if err != nil {
		return nil, apperrors.NewValidationError("No audio file provided", err.Error())
	}
	if header.Filename == "" {
		return nil, apperrors.NewValidationError("No file selected", "")
	}
	if header.Size > h.config.MaxSampleBytes {
		return nil, apperrors.NewPayloadTooLargeError(h.config.MaxSampleBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("Unreadable audio file", err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.config.MaxSampleBytes+1))
	if err != nil {
		return nil, apperrors.NewValidationError("Unreadable audio file", err.Error())
	}
	return &UploadInput{
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Voices serves GET /api/voice-cloning/voices.
func (h *Handler) Voices(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	voices, err := h.voices.ListVoices(ctx)
	if err != nil {
		_ = c.Error(h.vendorError("list_voices", err))
		return
	}
	if voices == nil {
		voices = []elevenlabs.Voice{}
	}
	c.JSON(http.StatusOK, VoicesOutput{Success: true, Voices: voices})
}

// VoiceSettings serves GET /api/voice-cloning/voice-settings/:voice_id.
func (h *Handler) VoiceSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	voiceID := c.Param("voice_id")
	settings, err := h.voices.GetVoiceSettings(ctx, voiceID)
	if err != nil {
		_ = c.Error(h.vendorError("get_voice_settings", err))
		return
	}
	c.JSON(http.StatusOK, SettingsOutput{Success: true, VoiceID: voiceID, Settings: settings})
}

// UpdateVoiceSettings serves POST /api/voice-cloning/voice-settings/:voice_id.
func (h *Handler) UpdateVoiceSettings(c *gin.Context) {
	var input SettingsInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	if err := h.updateSettings(ctx, c.Param("voice_id"), &input); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageOutput{Success: true, Message: "Voice settings updated successfully"})
}

// DeleteVoice serves DELETE /api/voice-cloning/voices/:voice_id.
func (h *Handler) DeleteVoice(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	voiceID := c.Param("voice_id")
	if err := h.voices.DeleteVoice(ctx, voiceID); err != nil {
		_ = c.Error(h.vendorError("delete_voice", err))
		return
	}
	h.logger.Info("voice deleted", map[string]interface{}{"voiceId": voiceID})
	c.JSON(http.StatusOK, MessageOutput{Success: true, Message: "Voice deleted successfully"})
}

// UserInfo serves GET /api/voice-cloning/user-info.
func (h *Handler) UserInfo(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	info, err := h.voices.UserInfo(ctx)
	if err != nil {
		_ = c.Error(h.vendorError("user_info", err))
		return
	}
	c.JSON(http.StatusOK, UserInfoOutput{
		Success:        true,
		Tier:           info.Subscription.Tier,
		CharacterCount: info.Subscription.CharacterCount,
		CharacterLimit: info.Subscription.CharacterLimit,
		Status:         info.Subscription.Status,
	})
}

// SetupStatus serves GET /api/voice-cloning/setup-status.
func (h *Handler) SetupStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	c.JSON(http.StatusOK, h.setupStatus(ctx))
}

// ==========================
// Operations
// ==========================

func (h *Handler) upload(ctx context.Context, input *UploadInput) (string, error) {
	if !h.allowedExtension(input.Filename) {
		return "", apperrors.NewValidationError("Invalid file format. Please use WAV, MP3, M4A, or FLAC",
			fmt.Sprintf("%v: %s", ErrInvalidSampleFormat, input.Filename))
	}
	if len(input.Data) == 0 {
		return "", apperrors.NewValidationError("No file selected", "empty audio file")
	}
	if int64(len(input.Data)) > h.config.MaxSampleBytes {
		return "", apperrors.NewPayloadTooLargeError(h.config.MaxSampleBytes)
	}

	voiceID, err := h.voices.AddVoice(ctx, knowledge.VoiceName, knowledge.VoiceDescription, knowledge.VoiceLabels,
		[]elevenlabs.SampleFile{{Filename: input.Filename, ContentType: input.ContentType, Data: input.Data}})
	if err != nil {
		return "", h.vendorError("add_voice", err)
	}

	if err := h.voices.EditVoiceSettings(ctx, voiceID, knowledge.CloneVoiceSettings); err != nil {
		h.logger.Warn("voice cloned but settings update failed", map[string]interface{}{
			"voiceId": voiceID,
			"error":   err.Error(),
		})
	}

	h.logger.Info("voice clone created", map[string]interface{}{
		"voiceId": voiceID,
		"bytes":   len(input.Data),
	})
	return voiceID, nil
}

func (h *Handler) allowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range h.config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (h *Handler) updateSettings(ctx context.Context, voiceID string, input *SettingsInput) error {
	settings := knowledge.DefaultEditSettings
	if input.Stability != nil {
		settings.Stability = *input.Stability
	}
	if input.SimilarityBoost != nil {
		settings.SimilarityBoost = *input.SimilarityBoost
	}
	if settings.Stability < 0 || settings.Stability > 1 || settings.SimilarityBoost < 0 || settings.SimilarityBoost > 1 {
		return apperrors.NewValidationError("Voice settings must be between 0 and 1", "")
	}

	if err := h.voices.EditVoiceSettings(ctx, voiceID, settings); err != nil {
		return h.vendorError("edit_voice_settings", err)
	}
	return nil
}

func (h *Handler) setupStatus(ctx context.Context) *SetupStatus {
	status := &SetupStatus{
		Success:           true,
		APIKeyConfigured:  h.voices != nil && h.voices.Configured(),
		VoiceIDConfigured: h.config.DefaultVoiceID != "",
	}
	status.Ready = status.APIKeyConfigured && status.VoiceIDConfigured
	if !status.APIKeyConfigured {
		return status
	}

	connected := false
	info, err := h.voices.UserInfo(ctx)
	if err != nil {
		h.logger.Warn("ElevenLabs connection check failed", map[string]interface{}{"error": err.Error()})
	} else {
		connected = true
		status.SubscriptionTier = info.Subscription.Tier
		status.CharacterCount = info.Subscription.CharacterCount
		status.CharacterLimit = info.Subscription.CharacterLimit
	}
	status.APIConnection = &connected
	return status
}

func (h *Handler) vendorError(operation string, err error) error {
	if errors.Is(err, elevenlabs.ErrNotConfigured) {
		return apperrors.NewServiceUnavailableError(provider, "ELEVENLABS_API_KEY is not set")
	}
	h.logger.Error("ElevenLabs call failed", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	})
	return apperrors.FromUpstream(provider, err)
}

func (h *Handler) ExecuteUpload(ctx context.Context, input *UploadInput) (string, error) {
	return h.upload(ctx, input)
}

func (h *Handler) ExecuteSetupStatus(ctx context.Context) *SetupStatus {
	return h.setupStatus(ctx)
}
