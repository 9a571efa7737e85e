// internal/knowledge/astrology.go
package knowledge

import (
	"fmt"
	"strings"
)

type HealthInfluences struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
}

type Planet struct {
	AyurvedicCorrelation string
	BodyParts            []string
	HealthInfluences     HealthInfluences
	ConstitutionalImpact string
	RemedialMeasures     []string
	DietaryGuidance      string
}

// PlanetaryGuidance is the public view of a planet lookup.
type PlanetaryGuidance struct {
	Planet                 string                      `json:"planet"`
	AyurvedicCorrelation   string                      `json:"ayurvedic_correlation"`
	BodyPartsGoverned      []string                    `json:"body_parts_governed"`
	HealthInfluences       HealthInfluences            `json:"health_influences"`
	ConstitutionalImpact   string                      `json:"constitutional_impact"`
	RemedialMeasures       []string                    `json:"remedial_measures"`
	DietaryGuidance        string                      `json:"dietary_guidance"`
	ConstitutionalSpecific *PlanetConstitutionGuidance `json:"constitutional_specific,omitempty"`
}

type PlanetConstitutionGuidance struct {
	Interaction             string `json:"interaction"`
	SpecificRecommendations string `json:"specific_recommendations"`
	ClinicalExperience      string `json:"clinical_experience"`
}

// PlanetNames is the Vedic navagraha order used for query extraction.
var PlanetNames = []string{"sun", "moon", "mars", "mercury", "jupiter", "venus", "saturn", "rahu", "ketu"}

var planets = map[string]Planet{
	"sun": {
		AyurvedicCorrelation: "Pitta dosha",
		BodyParts:            []string{"heart", "eyes", "head", "bones"},
		HealthInfluences: HealthInfluences{
			Positive: "Strong digestion, leadership, vitality, confidence",
			Negative: "Heart problems, eye issues, fever, ego problems",
		},
		ConstitutionalImpact: "Increases fire element, enhances pitta qualities",
		RemedialMeasures: []string{
			"Offer water to Sun at sunrise",
			"Chant Gayatri mantra",
			"Wear ruby (if suitable)",
			"Practice Surya Namaskara",
		},
		DietaryGuidance: "Cooling foods during strong Sun periods",
	},
	"moon": {
		AyurvedicCorrelation: "Kapha dosha",
		BodyParts:            []string{"mind", "chest", "stomach", "reproductive organs"},
		HealthInfluences: HealthInfluences{
			Positive: "Emotional stability, good memory, nurturing nature",
			Negative: "Mental instability, water retention, digestive issues",
		},
		ConstitutionalImpact: "Increases water element, enhances kapha qualities",
		RemedialMeasures: []string{
			"Fast on Mondays",
			"Chant Om Namah Shivaya",
			"Wear pearl or moonstone",
			"Practice meditation",
		},
		DietaryGuidance: "Light foods during full moon, nourishing during new moon",
	},
	"mars": {
		AyurvedicCorrelation: "Pitta dosha",
		BodyParts:            []string{"blood", "muscles", "bone marrow", "genitals"},
		HealthInfluences: HealthInfluences{
			Positive: "Strong immunity, courage, physical strength",
			Negative: "Blood disorders, inflammation, accidents, anger",
		},
		ConstitutionalImpact: "Increases fire and earth elements",
		RemedialMeasures: []string{
			"Chant Hanuman Chalisa",
			"Donate red lentils on Tuesdays",
			"Wear red coral",
			"Practice martial arts or vigorous exercise",
		},
		DietaryGuidance: "Cooling, sweet foods to balance Mars heat",
	},
	"mercury": {
		AyurvedicCorrelation: "All three doshas (tridoshic)",
		BodyParts:            []string{"nervous system", "skin", "lungs", "speech organs"},
		HealthInfluences: HealthInfluences{
			Positive: "Sharp intellect, good communication, adaptability",
			Negative: "Nervous disorders, skin problems, speech issues",
		},
		ConstitutionalImpact: "Enhances mental faculties, affects all doshas",
		RemedialMeasures: []string{
			"Chant Vishnu mantras",
			"Donate green items on Wednesdays",
			"Wear emerald",
			"Practice pranayama",
		},
		DietaryGuidance: "Sattvic foods to enhance mental clarity",
	},
	"jupiter": {
		AyurvedicCorrelation: "Kapha dosha",
		BodyParts:            []string{"liver", "pancreas", "thighs", "brain"},
		HealthInfluences: HealthInfluences{
			Positive: "Wisdom, good judgment, healthy liver function",
			Negative: "Diabetes, liver problems, obesity, lack of wisdom",
		},
		ConstitutionalImpact: "Increases water and earth elements",
		RemedialMeasures: []string{
			"Chant Guru mantras",
			"Donate yellow items on Thursdays",
			"Wear yellow sapphire",
			"Study spiritual texts",
		},
		DietaryGuidance: "Moderate, sattvic diet, avoid excess sweets",
	},
	"venus": {
		AyurvedicCorrelation: "Kapha and Pitta",
		BodyParts:            []string{"reproductive organs", "kidneys", "face", "throat"},
		HealthInfluences: HealthInfluences{
			Positive: "Beauty, creativity, harmonious relationships",
			Negative: "Reproductive issues, kidney problems, indulgence",
		},
		ConstitutionalImpact: "Enhances water element and beauty",
		RemedialMeasures: []string{
			"Chant Lakshmi mantras",
			"Donate white items on Fridays",
			"Wear diamond or white sapphire",
			"Practice artistic activities",
		},
		DietaryGuidance: "Balanced, beautiful foods, avoid excess dairy",
	},
	"saturn": {
		AyurvedicCorrelation: "Vata dosha",
		BodyParts:            []string{"bones", "joints", "teeth", "nervous system"},
		HealthInfluences: HealthInfluences{
			Positive: "Discipline, longevity, spiritual growth",
			Negative: "Joint problems, depression, chronic diseases",
		},
		ConstitutionalImpact: "Increases air and space elements",
		RemedialMeasures: []string{
			"Chant Shani mantras",
			"Donate black items on Saturdays",
			"Wear blue sapphire (with caution)",
			"Practice yoga and meditation",
		},
		DietaryGuidance: "Warm, nourishing foods, regular meal times",
	},
	"rahu": {
		AyurvedicCorrelation: "Vata dosha (shadow planet)",
		BodyParts:            []string{"nervous system", "skin", "lungs"},
		HealthInfluences: HealthInfluences{
			Positive: "Innovation, research abilities, foreign connections",
			Negative: "Mental confusion, skin diseases, respiratory issues",
		},
		ConstitutionalImpact: "Disturbs natural rhythms, increases vata",
		RemedialMeasures: []string{
			"Chant Rahu mantras",
			"Donate blue/black items",
			"Wear hessonite garnet",
			"Practice grounding exercises",
		},
		DietaryGuidance: "Simple, pure foods, avoid processed foods",
	},
	"ketu": {
		AyurvedicCorrelation: "Pitta dosha (shadow planet)",
		BodyParts:            []string{"abdomen", "spine", "nervous system"},
		HealthInfluences: HealthInfluences{
			Positive: "Spiritual insight, detachment, healing abilities",
			Negative: "Digestive issues, spine problems, mental instability",
		},
		ConstitutionalImpact: "Creates spiritual fire, can disturb pitta",
		RemedialMeasures: []string{
			"Chant Ketu mantras",
			"Donate multi-colored items",
			"Wear cat's eye",
			"Practice spiritual disciplines",
		},
		DietaryGuidance: "Cooling, spiritual foods, avoid meat and alcohol",
	},
}

// PlanetaryGuidanceFor looks a planet up case-insensitively. A non-empty
// constitution adds the combination guidance.
func PlanetaryGuidanceFor(planet, constitution string) (*PlanetaryGuidance, bool) {
	p, ok := planets[strings.ToLower(strings.TrimSpace(planet))]
	if !ok {
		return nil, false
	}

	g := &PlanetaryGuidance{
		Planet:               planet,
		AyurvedicCorrelation: p.AyurvedicCorrelation,
		BodyPartsGoverned:    p.BodyParts,
		HealthInfluences:     p.HealthInfluences,
		ConstitutionalImpact: p.ConstitutionalImpact,
		RemedialMeasures:     p.RemedialMeasures,
		DietaryGuidance:      p.DietaryGuidance,
	}
	if constitution != "" {
		g.ConstitutionalSpecific = &PlanetConstitutionGuidance{
			Interaction:             fmt.Sprintf("How %s affects %s constitution", planet, constitution),
			SpecificRecommendations: fmt.Sprintf("Tailored guidance for %s during %s periods", constitution, planet),
			ClinicalExperience:      "Dr. Helen's observations on this combination",
		}
	}
	return g, true
}

// RemedialMeasures collects the remedies for planets without duplicates,
// in first-seen order.
func RemedialMeasures(names []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		p, ok := planets[n]
		if !ok {
			continue
		}
		for _, m := range p.RemedialMeasures {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}
