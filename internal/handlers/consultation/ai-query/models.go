// internal/handlers/consultation/ai-query/models.go
package aiquery

import "healing-guide/internal/knowledge"

type Input struct {
	Query    string                 `json:"query"`
	Email    string                 `json:"email,omitempty"`
	Symptoms []string               `json:"symptoms,omitempty"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

type Output struct {
	Success     bool                `json:"success"`
	Response    *knowledge.Response `json:"response"`
	UserContext UserContext         `json:"user_context"`
}

// UserContext echoes what personalised the answer.
type UserContext struct {
	Constitution string `json:"constitution"`
	Age          *int   `json:"age"`
	Season       string `json:"season"`
	LifeStage    string `json:"life_stage"`
}
