// internal/knowledge/protocols.go
package knowledge

import "healing-guide/internal/models"

// TreatmentProtocol is Dr. Helen's standard course for a dosha disorder.
type TreatmentProtocol struct {
	PrimaryTreatment string `json:"primary_treatment"`
	Herbs            string `json:"herbs"`
	Lifestyle        string `json:"lifestyle"`
	Duration         string `json:"duration"`
}

type ClinicalProtocols struct {
	PulseDiagnosis     map[string]string            `json:"pulse_diagnosis"`
	TongueDiagnosis    map[string]string            `json:"tongue_diagnosis"`
	TreatmentProtocols map[string]TreatmentProtocol `json:"treatment_protocols"`
}

// Clinical holds the diagnostic and treatment protocols.
var Clinical = ClinicalProtocols{
	PulseDiagnosis: map[string]string{
		"vata_pulse":  "Moves like a snake - irregular, thin, fast",
		"pitta_pulse": "Moves like a frog - jumping, strong, regular",
		"kapha_pulse": "Moves like a swan - slow, steady, deep",
	},
	TongueDiagnosis: map[string]string{
		"vata_tongue":  "Dry, rough, cracked, brownish coating",
		"pitta_tongue": "Red, inflamed, yellow coating",
		"kapha_tongue": "Pale, thick, white coating, swollen",
	},
	TreatmentProtocols: map[string]TreatmentProtocol{
		"vata_disorders": {
			PrimaryTreatment: "Oil therapies, warm treatments",
			Herbs:            "Ashwagandha, Bala, Dashamoola",
			Lifestyle:        "Regular routine, warm environment",
			Duration:         "3-6 months for chronic conditions",
		},
		"pitta_disorders": {
			PrimaryTreatment: "Cooling therapies, bitter herbs",
			Herbs:            "Amalaki, Neem, Brahmi",
			Lifestyle:        "Avoid heat, practice moderation",
			Duration:         "2-4 months typically",
		},
		"kapha_disorders": {
			PrimaryTreatment: "Stimulating therapies, detox",
			Herbs:            "Trikatu, Guggulu, Punarnava",
			Lifestyle:        "Active lifestyle, avoid heavy foods",
			Duration:         "4-8 months for weight issues",
		},
	},
}

// TherapeuticProtocol addresses one root imbalance.
type TherapeuticProtocol struct {
	Signs     []string `json:"signs"`
	Treatment string   `json:"treatment"`
	Herbs     []string `json:"herbs"`
	Lifestyle []string `json:"lifestyle"`
}

// Every condition stems from dryness, heat or stagnation.
var TherapeuticProtocols = map[string]TherapeuticProtocol{
	"dryness": {
		Signs:     []string{"dry skin", "constipation", "anxiety", "insomnia", "joint pain"},
		Treatment: "Remoisturizing with oils, warm foods, regular routine",
		Herbs:     []string{"ashwagandha", "sesame oil", "ghee", "dates"},
		Lifestyle: []string{"oil massage", "warm baths", "consistent sleep schedule"},
	},
	"heat": {
		Signs:     []string{"inflammation", "anger", "acidity", "skin rashes", "burning sensation"},
		Treatment: "Cooling with bitter herbs, sweet foods, avoiding heat",
		Herbs:     []string{"aloe vera", "coriander", "fennel", "coconut"},
		Lifestyle: []string{"cool environments", "moderate exercise", "meditation"},
	},
	"stagnation": {
		Signs:     []string{"congestion", "weight gain", "lethargy", "depression", "mucus"},
		Treatment: "Flushing with spices, light foods, vigorous exercise",
		Herbs:     []string{"ginger", "turmeric", "trikatu", "honey"},
		Lifestyle: []string{"early rising", "dynamic movement", "stimulating activities"},
	},
}

// imbalanceOf maps a dosha to the root imbalance it tends toward.
var imbalanceOf = map[models.Dosha]string{
	models.DoshaVata:  "dryness",
	models.DoshaPitta: "heat",
	models.DoshaKapha: "stagnation",
}

// DoshaTheory is the classical description of one dosha.
type DoshaTheory struct {
	Elements       []string `json:"elements"`
	Functions      []string `json:"functions"`
	Locations      []string `json:"locations"`
	ImbalanceSigns []string `json:"imbalance_signs"`
}

var Tridosha = map[models.Dosha]DoshaTheory{
	models.DoshaVata: {
		Elements:       []string{"space", "air"},
		Functions:      []string{"movement", "circulation", "nervous system"},
		Locations:      []string{"colon", "pelvis", "bones", "skin", "ears"},
		ImbalanceSigns: []string{"anxiety", "insomnia", "constipation", "arthritis"},
	},
	models.DoshaPitta: {
		Elements:       []string{"fire", "water"},
		Functions:      []string{"digestion", "metabolism", "intelligence"},
		Locations:      []string{"small intestine", "liver", "blood", "eyes", "skin"},
		ImbalanceSigns: []string{"anger", "inflammation", "acidity", "skin disorders"},
	},
	models.DoshaKapha: {
		Elements:       []string{"water", "earth"},
		Functions:      []string{"structure", "immunity", "lubrication"},
		Locations:      []string{"chest", "throat", "head", "stomach", "joints"},
		ImbalanceSigns: []string{"congestion", "weight gain", "lethargy", "attachment"},
	},
}
