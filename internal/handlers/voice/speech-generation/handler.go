// internal/handlers/voice/speech-generation/handler.go
package speechgeneration

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"healing-guide/internal/common/elevenlabs"
	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	"healing-guide/internal/common/validation"
	"healing-guide/internal/knowledge"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	HandlerName = "generate-speech"

	provider     = "ElevenLabs"
	testFilename = "dr_helen_test.mp3"
)

type Synthesizer interface {
	Configured() bool
	TextToSpeech(ctx context.Context, voiceID string, req elevenlabs.SpeechRequest) ([]byte, error)
}

type Handler struct {
	config      *Config
	synthesizer Synthesizer
	obs         *observability.Observability
	logger      logger.Logger
}

func NewHandler(config *Config, synthesizer Synthesizer, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		synthesizer: synthesizer,
		obs:         obs,
		logger:      log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// Handle serves POST /api/voice-cloning/generate-speech.
func (h *Handler) Handle(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}
	var input Input
	if result := validation.SpeechRequestSchema.DecodeRequest(raw, &input); !result.Valid {
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
	writeAudio(c, output.Audio, knowledge.SpeechFilename)
}

// TestVoice serves POST /api/voice-cloning/test-voice[/:voice_id] with
// the fixed greeting.
func (h *Handler) TestVoice(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &Input{Text: knowledge.TestGreeting, VoiceID: c.Param("voice_id")})
	if err != nil {
		_ = c.Error(err)
		return
	}
	writeAudio(c, output.Audio, testFilename)
}

// VoiceStatus serves GET /api/voice-cloning/voice-status.
func (h *Handler) VoiceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

func writeAudio(c *gin.Context, audio []byte, filename string) {
	c.Header("Content-Disposition", "inline; filename="+filename)
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewValidationError("Text is required", "field: text")
	}
	chars := utf8.RuneCountInString(text)
	if chars > h.config.MaxTextLength {
		return nil, apperrors.NewValidationError("Text is too long",
			fmt.Sprintf("length %d exceeds %d characters", chars, h.config.MaxTextLength))
	}

	if h.synthesizer == nil || !h.synthesizer.Configured() {
		return nil, apperrors.NewServiceUnavailableError(provider, "ELEVENLABS_API_KEY is not set")
	}

	voiceID := strings.TrimSpace(input.VoiceID)
	if voiceID == "" {
		voiceID = h.config.DefaultVoiceID
	}
	if voiceID == "" {
		return nil, apperrors.NewServiceUnavailableError("Dr. Helen's voice", "DR_HELEN_VOICE_ID is not set")
	}

	settings := knowledge.SpeechVoiceSettings
	if input.Stability != nil {
		settings.Stability = *input.Stability
	}
	if input.SimilarityBoost != nil {
		settings.SimilarityBoost = *input.SimilarityBoost
	}
	if input.Style != nil {
		settings.Style = *input.Style
	}

	ctx, span := h.obs.StartSpan(ctx, "elevenlabs.text_to_speech",
		attribute.String("voice.id", voiceID),
		attribute.Int("text.characters", chars),
	)
	defer span.End()

	audio, err := h.synthesizer.TextToSpeech(ctx, voiceID, elevenlabs.SpeechRequest{
		Text:          text,
		ModelID:       h.config.ModelID,
		VoiceSettings: &settings,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "synthesis failed")
		h.logger.Error("speech synthesis failed", map[string]interface{}{
			"voiceId": voiceID,
			"error":   err.Error(),
		})
		return nil, apperrors.FromUpstream(provider, err)
	}

	h.obs.RecordSpeechCharacters(ctx, voiceID, chars)
	h.logger.Info("speech generated", map[string]interface{}{
		"voiceId":    voiceID,
		"characters": chars,
		"bytes":      len(audio),
	})

	return &Output{Audio: audio, VoiceID: voiceID}, nil
}

func (h *Handler) status() *StatusOutput {
	configured := h.synthesizer != nil && h.synthesizer.Configured()
	status := "ready"
	if !configured {
		status = "api_key_missing"
	}
	return &StatusOutput{
		Success:       true,
		APIConfigured: configured,
		VoiceID:       h.config.DefaultVoiceID,
		VoiceName:     knowledge.VoiceName,
		Status:        status,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
