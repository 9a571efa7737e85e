// internal/handlers/assessment/constitution-assessment/models.go
package constitutionassessment

import (
	"healing-guide/internal/knowledge"
	"healing-guide/internal/models"
)

type Input struct {
	Answers []models.AssessmentAnswer `json:"answers"`
	UserID  *int64                    `json:"user_id,omitempty"`
	Email   string                    `json:"email,omitempty"`
	Name    string                    `json:"name,omitempty"`
}

type Output struct {
	Success         bool                      `json:"success"`
	AssessmentID    string                    `json:"assessment_id"`
	Constitution    models.ConstitutionResult `json:"constitution"`
	Recommendations models.Recommendations    `json:"recommendations"`
}

type QuestionsOutput struct {
	Success   bool                 `json:"success"`
	Questions []knowledge.Question `json:"questions"`
	Total     int                  `json:"total"`
}

type AssessmentOutput struct {
	Success    bool               `json:"success"`
	Assessment *models.Assessment `json:"assessment"`
}
