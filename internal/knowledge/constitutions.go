// Package knowledge holds Dr. Helen's Ayurvedic knowledge base: the
// constitutions, Vedic planetary influences, seasonal and life stage
// guidance, the constitution assessment and the offline query answerer
// used when no language model is available.
package knowledge

import "strings"

// Constitution describes one of the three pure doshas in full.
type Constitution struct {
	PrimaryQualities         []string
	PhysicalTraits           map[string]string
	MentalTraits             map[string]string
	ImbalanceSigns           []string
	BalancingFoods           []string
	LifestyleRecommendations []string
	Herbs                    []string
}

// DualConstitution describes a combined type by its balancing approach.
type DualConstitution struct {
	Characteristics   string
	BalancingApproach string
	SeasonalCare      string
	Focus             string
}

// ConstitutionAnalysis is the public view of a constitution lookup.
type ConstitutionAnalysis struct {
	Constitution             string            `json:"constitution"`
	PrimaryQualities         []string          `json:"primary_qualities"`
	PhysicalTraits           map[string]string `json:"physical_traits"`
	MentalTraits             map[string]string `json:"mental_traits"`
	ImbalanceSigns           []string          `json:"imbalance_signs"`
	BalancingFoods           []string          `json:"balancing_foods"`
	LifestyleRecommendations []string          `json:"lifestyle_recommendations"`
	RecommendedHerbs         []string          `json:"recommended_herbs"`
	Characteristics          string            `json:"characteristics,omitempty"`
	BalancingApproach        string            `json:"balancing_approach,omitempty"`
	SeasonalCare             string            `json:"seasonal_care,omitempty"`
	Focus                    string            `json:"focus,omitempty"`
	SymptomAnalysis          *SymptomAnalysis  `json:"symptom_analysis,omitempty"`
}

type SymptomAnalysis struct {
	ConstitutionalCorrelation string   `json:"constitutional_correlation"`
	LikelyImbalances          []string `json:"likely_imbalances"`
	RecommendedApproach       []string `json:"recommended_approach"`
	ClinicalNotes             string   `json:"clinical_notes"`
}

var pureConstitutions = map[string]Constitution{
	"vata": {
		PrimaryQualities: []string{"dry", "light", "cold", "rough", "subtle", "mobile"},
		PhysicalTraits: map[string]string{
			"body_type": "Thin, light frame, prominent joints",
			"skin":      "Dry, rough, cool to touch, darker complexion",
			"hair":      "Dry, brittle, curly or kinky",
			"eyes":      "Small, dry, active, brown or black",
			"appetite":  "Variable, irregular eating patterns",
			"digestion": "Irregular, gas, bloating, constipation",
			"sleep":     "Light, interrupted, 5-7 hours",
		},
		MentalTraits: map[string]string{
			"personality": "Creative, enthusiastic, quick thinking",
			"emotions":    "Anxious when stressed, fearful, worried",
			"learning":    "Quick to learn, quick to forget",
			"speech":      "Fast, talkative, interrupts others",
		},
		ImbalanceSigns: []string{
			"Anxiety, restlessness, insomnia",
			"Constipation, gas, bloating",
			"Dry skin, brittle nails",
			"Joint pain, muscle tension",
			"Irregular appetite and digestion",
		},
		BalancingFoods: []string{
			"Warm, moist, oily foods",
			"Sweet, sour, salty tastes",
			"Cooked grains, root vegetables",
			"Warm milk, ghee, nuts",
			"Avoid cold, dry, raw foods",
		},
		LifestyleRecommendations: []string{
			"Regular daily routine",
			"Warm oil massage (abhyanga)",
			"Gentle, grounding exercises",
			"Early bedtime, adequate rest",
			"Meditation and breathing practices",
		},
		Herbs: []string{"Ashwagandha", "Brahmi", "Jatamansi", "Bala", "Shatavari"},
	},
	"pitta": {
		PrimaryQualities: []string{"hot", "sharp", "light", "oily", "liquid", "mobile"},
		PhysicalTraits: map[string]string{
			"body_type": "Medium build, good muscle development",
			"skin":      "Warm, oily, soft, fair or reddish",
			"hair":      "Fine, soft, early graying or balding",
			"eyes":      "Sharp, penetrating, light colored",
			"appetite":  "Strong, regular, gets angry when hungry",
			"digestion": "Strong, efficient, prone to acidity",
			"sleep":     "Sound, moderate, 6-8 hours",
		},
		MentalTraits: map[string]string{
			"personality": "Intelligent, focused, competitive",
			"emotions":    "Irritable when stressed, angry, critical",
			"learning":    "Sharp intellect, good memory",
			"speech":      "Precise, articulate, convincing",
		},
		ImbalanceSigns: []string{
			"Anger, irritability, criticism",
			"Heartburn, acid reflux, ulcers",
			"Skin rashes, inflammation",
			"Excessive heat, sweating",
			"Perfectionism, impatience",
		},
		BalancingFoods: []string{
			"Cool, sweet, bitter foods",
			"Fresh fruits, leafy greens",
			"Coconut, cucumber, melons",
			"Avoid spicy, sour, salty foods",
			"Room temperature or cool drinks",
		},
		LifestyleRecommendations: []string{
			"Avoid excessive heat and sun",
			"Cooling practices and environments",
			"Moderate exercise, avoid overexertion",
			"Stress management techniques",
			"Regular meals, don't skip eating",
		},
		Herbs: []string{"Amalaki", "Neem", "Aloe Vera", "Brahmi", "Shatavari"},
	},
	"kapha": {
		PrimaryQualities: []string{"heavy", "slow", "cold", "oily", "smooth", "stable"},
		PhysicalTraits: map[string]string{
			"body_type": "Large, heavy frame, gains weight easily",
			"skin":      "Thick, oily, smooth, pale",
			"hair":      "Thick, wavy, lustrous, oily",
			"eyes":      "Large, calm, blue or brown",
			"appetite":  "Slow, steady, can skip meals",
			"digestion": "Slow, heavy feeling after eating",
			"sleep":     "Deep, long, 8+ hours, hard to wake",
		},
		MentalTraits: map[string]string{
			"personality": "Calm, steady, compassionate",
			"emotions":    "Depressed when stressed, attached",
			"learning":    "Slow to learn, excellent retention",
			"speech":      "Slow, melodious, few words",
		},
		ImbalanceSigns: []string{
			"Weight gain, sluggishness",
			"Depression, lethargy",
			"Congestion, mucus production",
			"Attachment, possessiveness",
			"Resistance to change",
		},
		BalancingFoods: []string{
			"Light, warm, spicy foods",
			"Pungent, bitter, astringent tastes",
			"Vegetables, legumes, spices",
			"Avoid heavy, oily, sweet foods",
			"Warm drinks, herbal teas",
		},
		LifestyleRecommendations: []string{
			"Regular vigorous exercise",
			"Dry brushing, saunas",
			"Stimulating activities",
			"Avoid daytime naps",
			"Embrace change and variety",
		},
		Herbs: []string{"Trikatu", "Guggulu", "Punarnava", "Chitrak", "Bibhitaki"},
	},
}

var dualConstitutions = map[string]DualConstitution{
	"vata-pitta": {
		Characteristics:   "Variable appetite, creative but focused, sensitive to both cold and heat",
		BalancingApproach: "Emphasize sweet taste, regular routine with flexibility",
		SeasonalCare:      "Extra attention during fall (vata season) and summer (pitta season)",
	},
	"pitta-vata": {
		Characteristics:   "Strong digestion with irregular appetite, intense but changeable",
		BalancingApproach: "Cool, grounding foods, stress management crucial",
		SeasonalCare:      "Summer and fall require special attention",
	},
	"pitta-kapha": {
		Characteristics:   "Strong build with good digestion, can be intense but stable",
		BalancingApproach: "Moderate approach, avoid extremes in temperature",
		SeasonalCare:      "Summer and spring need attention",
	},
	"kapha-pitta": {
		Characteristics:   "Solid build with strong appetite, steady but can be stubborn",
		BalancingApproach: "Light, warm foods, regular exercise",
		SeasonalCare:      "Spring and summer focus",
	},
	"vata-kapha": {
		Characteristics:   "Variable energy, can be both anxious and lethargic",
		BalancingApproach: "Warm, nourishing foods, gentle routine",
		SeasonalCare:      "Fall and spring require balance",
	},
	"kapha-vata": {
		Characteristics:   "Generally stable but with periods of anxiety",
		BalancingApproach: "Consistent routine, warm environment",
		SeasonalCare:      "Winter and fall need attention",
	},
	"vata-pitta-kapha": {
		Characteristics:   "Balanced constitution, adaptable but needs attention to all three doshas",
		BalancingApproach: "Seasonal adjustments, listen to body's needs",
		SeasonalCare:      "Adjust practices with each season",
	},
	"vata-predominant": {
		Characteristics: "Strong vata with secondary dosha influence",
		Focus:           "Grounding and routine while addressing secondary dosha",
	},
	"pitta-predominant": {
		Characteristics: "Strong pitta with secondary dosha influence",
		Focus:           "Cooling and moderation while balancing secondary dosha",
	},
}

// ConstitutionNames lists every known constitution key, pure types first.
var ConstitutionNames = []string{
	"vata", "pitta", "kapha",
	"vata-pitta", "pitta-vata", "pitta-kapha", "kapha-pitta", "vata-kapha",
	"kapha-vata", "vata-pitta-kapha", "vata-predominant", "pitta-predominant",
}

// AnalyzeConstitution looks a constitution up case-insensitively. Dual
// types carry empty trait lists and their balancing approach instead.
func AnalyzeConstitution(name string, symptoms []string) (*ConstitutionAnalysis, bool) {
	key := strings.ToLower(strings.TrimSpace(name))

	out := &ConstitutionAnalysis{
		Constitution:             name,
		PrimaryQualities:         []string{},
		PhysicalTraits:           map[string]string{},
		MentalTraits:             map[string]string{},
		ImbalanceSigns:           []string{},
		BalancingFoods:           []string{},
		LifestyleRecommendations: []string{},
		RecommendedHerbs:         []string{},
	}

	if c, ok := pureConstitutions[key]; ok {
		out.PrimaryQualities = c.PrimaryQualities
		out.PhysicalTraits = c.PhysicalTraits
		out.MentalTraits = c.MentalTraits
		out.ImbalanceSigns = c.ImbalanceSigns
		out.BalancingFoods = c.BalancingFoods
		out.LifestyleRecommendations = c.LifestyleRecommendations
		out.RecommendedHerbs = c.Herbs
	} else if d, ok := dualConstitutions[key]; ok {
		out.Characteristics = d.Characteristics
		out.BalancingApproach = d.BalancingApproach
		out.SeasonalCare = d.SeasonalCare
		out.Focus = d.Focus
	} else {
		return nil, false
	}

	if len(symptoms) > 0 {
		out.SymptomAnalysis = &SymptomAnalysis{
			ConstitutionalCorrelation: "Analyzing symptoms in context of " + name,
			LikelyImbalances:          []string{},
			RecommendedApproach:       []string{},
			ClinicalNotes:             "Based on 44 years of clinical experience",
		}
	}
	return out, true
}
