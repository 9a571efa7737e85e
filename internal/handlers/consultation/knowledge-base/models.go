// internal/handlers/consultation/knowledge-base/models.go
package knowledgebase

import "healing-guide/internal/knowledge"

type ConstitutionInput struct {
	Constitution string   `json:"constitution"`
	Symptoms     []string `json:"symptoms,omitempty"`
}

type ConstitutionOutput struct {
	Success  bool                            `json:"success"`
	Analysis *knowledge.ConstitutionAnalysis `json:"analysis"`
}

type PlanetInput struct {
	Planet       string `json:"planet"`
	Constitution string `json:"constitution,omitempty"`
}

type PlanetOutput struct {
	Success  bool                         `json:"success"`
	Guidance *knowledge.PlanetaryGuidance `json:"guidance"`
}

type SeasonInput struct {
	Season       string `json:"season,omitempty"`
	Constitution string `json:"constitution,omitempty"`
}

type SeasonOutput struct {
	Success         bool                               `json:"success"`
	Recommendations *knowledge.SeasonalRecommendations `json:"recommendations"`
}
