// internal/knowledge/seasons.go
package knowledge

import (
	"strings"
	"time"
)

type Season struct {
	DominantDosha   string
	GeneralGuidance string
	Care            map[string]string
	FoodsToFavor    []string
	FoodsToAvoid    []string
	Lifestyle       []string
	Herbs           []string
}

// SeasonalRecommendations is the public view of a season lookup.
type SeasonalRecommendations struct {
	Season                   string   `json:"season"`
	DominantDosha            string   `json:"dominant_dosha"`
	GeneralGuidance          string   `json:"general_guidance"`
	ConstitutionalCare       string   `json:"constitutional_care"`
	FoodsToFavor             []string `json:"foods_to_favor"`
	FoodsToAvoid             []string `json:"foods_to_avoid"`
	LifestyleRecommendations []string `json:"lifestyle_recommendations"`
	SeasonalHerbs            []string `json:"seasonal_herbs"`
}

const generalCare = "General care applies"

var seasons = map[string]Season{
	"spring": {
		DominantDosha:   "kapha",
		GeneralGuidance: "Time for cleansing and renewal",
		Care: map[string]string{
			"vata":  "Gentle cleansing, warm foods, avoid cold",
			"pitta": "Moderate cleansing, bitter tastes, avoid heating",
			"kapha": "Strong detox, spicy foods, vigorous exercise",
		},
		FoodsToFavor: []string{"bitter greens", "spices", "light foods"},
		FoodsToAvoid: []string{"heavy", "sweet", "oily foods"},
		Lifestyle:    []string{"spring cleaning", "new projects", "exercise increase"},
		Herbs:        []string{"Triphala", "Trikatu", "Dandelion", "Nettle"},
	},
	"summer": {
		DominantDosha:   "pitta",
		GeneralGuidance: "Time for cooling and moderation",
		Care: map[string]string{
			"vata":  "Stay hydrated, avoid excessive heat",
			"pitta": "Cooling foods, avoid anger, moderate activity",
			"kapha": "Light foods, avoid ice, maintain activity",
		},
		FoodsToFavor: []string{"sweet fruits", "cooling herbs", "coconut"},
		FoodsToAvoid: []string{"spicy", "sour", "salty foods"},
		Lifestyle:    []string{"early morning activities", "cooling practices", "swimming"},
		Herbs:        []string{"Aloe", "Rose", "Coriander", "Fennel"},
	},
	"fall": {
		DominantDosha:   "vata",
		GeneralGuidance: "Time for grounding and nourishment",
		Care: map[string]string{
			"vata":  "Warm, oily foods, regular routine, oil massage",
			"pitta": "Sweet, grounding foods, avoid dryness",
			"kapha": "Warm, light foods, maintain activity",
		},
		FoodsToFavor: []string{"root vegetables", "warm grains", "ghee"},
		FoodsToAvoid: []string{"cold", "dry", "raw foods"},
		Lifestyle:    []string{"consistent routine", "warm baths", "gentle exercise"},
		Herbs:        []string{"Ashwagandha", "Bala", "Sesame oil", "Ginger"},
	},
	"winter": {
		DominantDosha:   "vata and kapha",
		GeneralGuidance: "Time for building strength and immunity",
		Care: map[string]string{
			"vata":  "Heavy, warm, oily foods, stay warm",
			"pitta": "Warming foods, maintain digestive fire",
			"kapha": "Spicy, light foods, avoid excess sleep",
		},
		FoodsToFavor: []string{"warming spices", "hot soups", "nuts"},
		FoodsToAvoid: []string{"cold drinks", "ice cream", "raw foods"},
		Lifestyle:    []string{"indoor activities", "oil massage", "warm clothing"},
		Herbs:        []string{"Chyavanprash", "Ginger", "Cinnamon", "Cloves"},
	},
}

// CurrentSeason maps the month of t to a season: March to May is spring,
// June to August summer, September to November fall, otherwise winter.
func CurrentSeason(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}

// SeasonalRecommendationsFor looks a season up case-insensitively. The
// constitutional care only matches pure doshas; any other constitution,
// "general" included, gets the general care note.
func SeasonalRecommendationsFor(season, constitution string) (*SeasonalRecommendations, bool) {
	s, ok := seasons[strings.ToLower(strings.TrimSpace(season))]
	if !ok {
		return nil, false
	}

	care, ok := s.Care[strings.ToLower(constitution)]
	if !ok {
		care = generalCare
	}
	return &SeasonalRecommendations{
		Season:                   season,
		DominantDosha:            s.DominantDosha,
		GeneralGuidance:          s.GeneralGuidance,
		ConstitutionalCare:       care,
		FoodsToFavor:             s.FoodsToFavor,
		FoodsToAvoid:             s.FoodsToAvoid,
		LifestyleRecommendations: s.Lifestyle,
		SeasonalHerbs:            s.Herbs,
	}, true
}

// ==========================
// Life stages
// ==========================

type LifeStage struct {
	AgeRange        string `json:"age_range"`
	DominantDosha   string `json:"dominant_dosha"`
	Characteristics string `json:"characteristics"`
	DietaryNeeds    string `json:"dietary_needs"`
	Lifestyle       string `json:"lifestyle"`
	CommonIssues    string `json:"common_issues"`
	Herbs           string `json:"herbs"`
}

var lifeStages = map[string]LifeStage{
	"childhood": {
		AgeRange:        "0-16 years",
		DominantDosha:   "kapha",
		Characteristics: "Growth, development, building immunity",
		DietaryNeeds:    "Nourishing, building foods, warm milk, ghee",
		Lifestyle:       "Regular routine, adequate sleep, play",
		CommonIssues:    "Respiratory congestion, digestive issues",
		Herbs:           "Gentle herbs like honey, ghee, mild spices",
	},
	"youth": {
		AgeRange:        "16-50 years",
		DominantDosha:   "pitta",
		Characteristics: "Achievement, career, family building",
		DietaryNeeds:    "Balanced nutrition, regular meals, cooling foods",
		Lifestyle:       "Balanced work-life, stress management, exercise",
		CommonIssues:    "Stress, digestive fire imbalance, skin issues",
		Herbs:           "Brahmi, Shankhpushpi, Amalaki, Shatavari",
	},
	"maturity": {
		AgeRange:        "50+ years",
		DominantDosha:   "vata",
		Characteristics: "Wisdom, spiritual growth, body maintenance",
		DietaryNeeds:    "Warm, nourishing, easy to digest foods",
		Lifestyle:       "Gentle exercise, meditation, regular routine",
		CommonIssues:    "Joint problems, memory issues, insomnia",
		Herbs:           "Ashwagandha, Brahmi, Guggulu, Triphala",
	},
}

// LifeStageFor returns childhood under 16, youth under 50 and maturity
// otherwise.
func LifeStageFor(age int) string {
	switch {
	case age < 16:
		return "childhood"
	case age < 50:
		return "youth"
	default:
		return "maturity"
	}
}

// LifeStageWisdom returns the guidance for a life stage name.
func LifeStageWisdom(stage string) (LifeStage, bool) {
	ls, ok := lifeStages[stage]
	return ls, ok
}
