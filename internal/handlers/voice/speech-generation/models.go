// internal/handlers/voice/speech-generation/models.go
package speechgeneration

type Input struct {
	Text            string   `json:"text"`
	VoiceID         string   `json:"voice_id,omitempty"`
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
}

// Output is MPEG audio plus the voice that spoke it.
type Output struct {
	Audio   []byte
	VoiceID string
}

type StatusOutput struct {
	Success       bool   `json:"success"`
	APIConfigured bool   `json:"api_configured"`
	VoiceID       string `json:"voice_id"`
	VoiceName     string `json:"voice_name"`
	Status        string `json:"status"`
}
