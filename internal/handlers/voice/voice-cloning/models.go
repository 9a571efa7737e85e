// internal/handlers/voice/voice-cloning/models.go
package voicecloning

import "healing-guide/internal/common/elevenlabs"

// UploadInput is one audio sample taken from the multipart form.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadOutput struct {
	Success bool   `json:"success"`
	VoiceID string `json:"voice_id"`
	Message string `json:"message"`
}

type VoicesOutput struct {
	Success bool               `json:"success"`
	Voices  []elevenlabs.Voice `json:"voices"`
}

type SettingsInput struct {
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
}

type SettingsOutput struct {
	Success  bool                      `json:"success"`
	VoiceID  string                    `json:"voice_id"`
	Settings *elevenlabs.VoiceSettings `json:"settings"`
}

type MessageOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserInfoOutput struct {
	Success        bool   `json:"success"`
	Tier           string `json:"subscription_tier"`
	CharacterCount int    `json:"character_count"`
	CharacterLimit int    `json:"character_limit"`
	Status         string `json:"status,omitempty"`
}

// SetupStatus reports whether cloning and synthesis can run. The
// connection fields are only filled when an API key is present.
type SetupStatus struct {
	Success           bool   `json:"success"`
	APIKeyConfigured  bool   `json:"api_key_configured"`
	VoiceIDConfigured bool   `json:"voice_id_configured"`
	Ready             bool   `json:"ready"`
	APIConnection     *bool  `json:"api_connection,omitempty"`
	SubscriptionTier  string `json:"subscription_tier,omitempty"`
	CharacterCount    int    `json:"character_count,omitempty"`
	CharacterLimit    int    `json:"character_limit,omitempty"`
}
