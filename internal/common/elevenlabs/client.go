// internal/common/elevenlabs/client.go
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonhttp "healing-guide/internal/common/http"
)

var ErrNotConfigured = errors.New("ELEVENLABS_NOT_CONFIGURED")

type Config struct {
	APIKey     string
	BaseURL    string
	ModelID    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the ElevenLabs v1 REST API.
type Client struct {
	cfg  Config
	http *commonhttp.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: commonhttp.NewClient("elevenlabs", cfg.Timeout, cfg.MaxRetries),
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

func (c *Client) ModelID() string {
	return c.cfg.ModelID
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

type Voice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	PreviewURL  string            `json:"preview_url,omitempty"`
}

type SpeechRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
}

type UserInfo struct {
	Subscription struct {
		Tier           string `json:"tier"`
		CharacterCount int    `json:"character_count"`
		CharacterLimit int    `json:"character_limit"`
		Status         string `json:"status"`
	} `json:"subscription"`
}

// SampleFile is one audio sample used to clone a voice.
type SampleFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ==========================
// Voices
// ==========================

func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := c.getJSON(ctx, "list_voices", "/voices", &out); err != nil {
		return nil, err
	}
	return out.Voices, nil
}

func (c *Client) GetVoice(ctx context.Context, voiceID string) (*Voice, error) {
	var out Voice
	if err := c.getJSON(ctx, "get_voice", "/voices/"+url.PathEscape(voiceID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddVoice uploads samples as an instant voice clone and returns the new voice id.
func (c *Client) AddVoice(ctx context.Context, name, description string, labels map[string]string, files []SampleFile) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, contentType, err := buildVoiceForm(name, description, labels, files)
	if err != nil {
		return "", err
	}

	resp, err := c.http.DoWithRetry(ctx, "add_voice", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/voices/add", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("xi-api-key", c.cfg.APIKey)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", commonhttp.ReadError(resp)
	}
	defer resp.Body.Close()

	var out struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode add voice response: %w", err)
	}
	return out.VoiceID, nil
}

func buildVoiceForm(name, description string, labels map[string]string, files []SampleFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", name); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("description", description); err != nil {
		return nil, "", err
	}
	if len(labels) > 0 {
		raw, err := json.Marshal(labels)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField("labels", string(raw)); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	resp, err := c.send(ctx, "delete_voice", http.MethodDelete, "/voices/"+url.PathEscape(voiceID), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return commonhttp.ReadError(resp)
	}
	return nil
}

func (c *Client) GetVoiceSettings(ctx context.Context, voiceID string) (*VoiceSettings, error) {
	var out VoiceSettings
	if err := c.getJSON(ctx, "get_voice_settings", "/voices/"+url.PathEscape(voiceID)+"/settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EditVoiceSettings(ctx context.Context, voiceID string, settings VoiceSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal voice settings: %w", err)
	}
	resp, err := c.send(ctx, "edit_voice_settings", http.MethodPost, "/voices/"+url.PathEscape(voiceID)+"/settings/edit", raw, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return commonhttp.ReadError(resp)
	}
	return nil
}

// ==========================
// Speech and account
// ==========================

// TextToSpeech returns MPEG audio for req spoken by voiceID.
func (c *Client) TextToSpeech(ctx context.Context, voiceID string, req SpeechRequest) ([]byte, error) {
	if req.ModelID == "" {
		req.ModelID = c.cfg.ModelID
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	resp, err := c.send(ctx, "text_to_speech", http.MethodPost, "/text-to-speech/"+url.PathEscape(voiceID), raw, "audio/mpeg")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, commonhttp.ReadError(resp)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.getJSON(ctx, "user_info", "/user", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ==========================
// Transport helpers
// ==========================

func (c *Client) getJSON(ctx context.Context, operation, path string, dst interface{}) error {
	resp, err := c.send(ctx, operation, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return commonhttp.ReadError(resp)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, operation, method, path string, body []byte, accept string) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return c.http.DoWithRetry(ctx, operation, func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("xi-api-key", c.cfg.APIKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		return req, nil
	})
}
