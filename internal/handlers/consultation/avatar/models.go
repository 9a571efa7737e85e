// internal/handlers/consultation/avatar/models.go
package avatar

import "healing-guide/internal/knowledge"

// ScriptInput accepts the text under either key; response_text is what
// the chat widget sends.
type ScriptInput struct {
	Text         string `json:"text"`
	ResponseText string `json:"response_text"`
}

type ScriptOutput struct {
	Success bool                     `json:"success"`
	Script  knowledge.SpeakingScript `json:"script"`
}

type SpeakInput struct {
	Type string `json:"type"`
}

type SpeakOutput struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Type    string `json:"type"`
}
