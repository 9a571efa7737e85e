// internal/models/assessment.go
package models

import "time"

type Dosha string

const (
	DoshaVata  Dosha = "vata"
	DoshaPitta Dosha = "pitta"
	DoshaKapha Dosha = "kapha"
)

// Doshas lists the doshas in tie-break order.
var Doshas = []Dosha{DoshaVata, DoshaPitta, DoshaKapha}

type AssessmentAnswer struct {
	QuestionID  int `json:"question_id"`
	OptionIndex int `json:"option_index"`
}

type DoshaScores struct {
	Vata  int `json:"vata"`
	Pitta int `json:"pitta"`
	Kapha int `json:"kapha"`
}

// Get returns the score for d.
func (s DoshaScores) Get(d Dosha) int {
	switch d {
	case DoshaVata:
		return s.Vata
	case DoshaPitta:
		return s.Pitta
	case DoshaKapha:
		return s.Kapha
	}
	return 0
}

// Total is the sum of all three scores.
func (s DoshaScores) Total() int {
	return s.Vata + s.Pitta + s.Kapha
}

type ConstitutionResult struct {
	Primary      Dosha       `json:"primary"`
	Secondary    Dosha       `json:"secondary,omitempty"`
	Scores       DoshaScores `json:"scores"`
	Constitution string      `json:"constitution"`
}

type Recommendations struct {
	Diet      []string `json:"diet"`
	Lifestyle []string `json:"lifestyle"`
	Herbs     []string `json:"herbs"`
	Practices []string `json:"practices"`
}

type Assessment struct {
	ID              string             `json:"id"`
	UserID          *int64             `json:"user_id,omitempty"`
	Email           string             `json:"email,omitempty"`
	Constitution    ConstitutionResult `json:"constitution"`
	Answers         []AssessmentAnswer `json:"answers"`
	Recommendations Recommendations    `json:"recommendations"`
	CreatedAt       time.Time          `json:"created_at"`
}
