// internal/knowledge/assessment.go
package knowledge

import (
	"sort"

	"healing-guide/internal/models"
)

type QuestionOption struct {
	Text  string `json:"text"`
	Vata  int    `json:"vata"`
	Pitta int    `json:"pitta"`
	Kapha int    `json:"kapha"`
}

type Question struct {
	ID       int              `json:"id"`
	Category string           `json:"category"`
	Question string           `json:"question"`
	Options  []QuestionOption `json:"options"`
}

// Each option awards its dosha this many points.
const optionPoints = 3

func opts(vata, pitta, kapha string) []QuestionOption {
	return []QuestionOption{
		{Text: vata, Vata: optionPoints},
		{Text: pitta, Pitta: optionPoints},
		{Text: kapha, Kapha: optionPoints},
	}
}

// Questions is the ten question constitution questionnaire. Option order
// is always vata, pitta, kapha.
var Questions = []Question{
	{ID: 1, Category: "physical", Question: "What is your natural body frame?",
		Options: opts("Thin, light, small-boned", "Medium build, moderate weight", "Large frame, heavy, well-built")},
	{ID: 2, Category: "physical", Question: "How is your skin typically?",
		Options: opts("Dry, rough, thin, cool", "Warm, oily, prone to irritation", "Thick, moist, cool, smooth")},
	{ID: 3, Category: "physical", Question: "What is your hair like?",
		Options: opts("Dry, brittle, thin", "Fine, oily, early graying/balding", "Thick, lustrous, strong")},
	{ID: 4, Category: "digestive", Question: "How is your appetite?",
		Options: opts("Variable, sometimes forget to eat", "Strong, get irritable when hungry", "Steady, can skip meals easily")},
	{ID: 5, Category: "digestive", Question: "How is your digestion?",
		Options: opts("Irregular, gas, bloating", "Strong, sometimes burning", "Slow, heavy feeling after eating")},
	{ID: 6, Category: "mental", Question: "How do you handle stress?",
		Options: opts("Worry, anxiety, restlessness", "Anger, irritability, impatience", "Withdraw, become sluggish")},
	{ID: 7, Category: "mental", Question: "What is your memory like?",
		Options: opts("Quick to learn, quick to forget", "Sharp, clear, focused", "Slow to learn, but good retention")},
	{ID: 8, Category: "sleep", Question: "How is your sleep?",
		Options: opts("Light, interrupted, trouble falling asleep", "Moderate, wake up refreshed", "Deep, long, hard to wake up")},
	{ID: 9, Category: "energy", Question: "What is your energy pattern?",
		Options: opts("Comes in bursts, then crashes", "Steady, intense, focused", "Steady, enduring, slow to start")},
	{ID: 10, Category: "emotional", Question: "What are your emotional tendencies?",
		Options: opts("Enthusiastic, changeable, anxious", "Passionate, determined, competitive", "Calm, steady, compassionate")},
}

func findQuestion(id int) *Question {
	for i := range Questions {
		if Questions[i].ID == id {
			return &Questions[i]
		}
	}
	return nil
}

// Score totals the answers and ranks the doshas. Answers naming an
// unknown question or an out of range option are skipped; counted is the
// number that scored.
func Score(answers []models.AssessmentAnswer) (result models.ConstitutionResult, counted int) {
	var scores models.DoshaScores
	for _, a := range answers {
		q := findQuestion(a.QuestionID)
		if q == nil || a.OptionIndex < 0 || a.OptionIndex >= len(q.Options) {
			continue
		}
		opt := q.Options[a.OptionIndex]
		scores.Vata += opt.Vata
		scores.Pitta += opt.Pitta
		scores.Kapha += opt.Kapha
		counted++
	}
	return Rank(scores), counted
}

// Rank picks the primary dosha, ties going to vata then pitta then kapha.
// The runner-up is secondary when it reaches 80% of the primary score.
func Rank(scores models.DoshaScores) models.ConstitutionResult {
	ranked := make([]models.Dosha, len(models.Doshas))
	copy(ranked, models.Doshas)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores.Get(ranked[i]) > scores.Get(ranked[j])
	})

	result := models.ConstitutionResult{
		Primary:      ranked[0],
		Scores:       scores,
		Constitution: string(ranked[0]),
	}
	top, second := scores.Get(ranked[0]), scores.Get(ranked[1])
	if second*5 >= top*4 {
		result.Secondary = ranked[1]
		result.Constitution = string(ranked[0]) + "-" + string(ranked[1])
	}
	return result
}

var doshaRecommendations = map[models.Dosha]models.Recommendations{
	models.DoshaVata: {
		Diet: []string{
			"Warm, cooked foods",
			"Sweet, sour, and salty tastes",
			"Regular meal times",
			"Avoid cold, dry, raw foods",
		},
		Lifestyle: []string{
			"Regular daily routine",
			"Adequate rest and sleep",
			"Gentle, grounding exercises",
			"Oil massage (abhyanga)",
		},
		Herbs: []string{
			"Ashwagandha for stress",
			"Triphala for digestion",
			"Brahmi for mental clarity",
		},
		Practices: []string{
			"Meditation and pranayama",
			"Warm oil treatments",
			"Gentle yoga",
		},
	},
	models.DoshaPitta: {
		Diet: []string{
			"Cool, fresh foods",
			"Sweet, bitter, and astringent tastes",
			"Avoid spicy, oily, acidic foods",
			"Eat at regular times",
		},
		Lifestyle: []string{
			"Avoid overheating",
			"Moderate exercise",
			"Cool environments",
			"Avoid excessive competition",
		},
		Herbs: []string{
			"Aloe vera for cooling",
			"Neem for purification",
			"Coriander for digestion",
		},
		Practices: []string{
			"Cooling pranayama",
			"Moon gazing",
			"Swimming or water activities",
		},
	},
	models.DoshaKapha: {
		Diet: []string{
			"Light, warm, spicy foods",
			"Pungent, bitter, and astringent tastes",
			"Avoid heavy, oily, sweet foods",
			"Eat lighter meals",
		},
		Lifestyle: []string{
			"Regular vigorous exercise",
			"Stay active and stimulated",
			"Avoid excessive sleep",
			"Dry brushing",
		},
		Herbs: []string{
			"Ginger for digestion",
			"Turmeric for inflammation",
			"Trikatu for metabolism",
		},
		Practices: []string{
			"Energizing pranayama",
			"Dynamic yoga",
			"Early morning activities",
		},
	},
}

// Recommend merges the recommendations of the primary and secondary
// doshas in vata, pitta, kapha order.
func Recommend(result models.ConstitutionResult) models.Recommendations {
	out := models.Recommendations{
		Diet:      []string{},
		Lifestyle: []string{},
		Herbs:     []string{},
		Practices: []string{},
	}
	for _, d := range models.Doshas {
		if d != result.Primary && d != result.Secondary {
			continue
		}
		r := doshaRecommendations[d]
		out.Diet = append(out.Diet, r.Diet...)
		out.Lifestyle = append(out.Lifestyle, r.Lifestyle...)
		out.Herbs = append(out.Herbs, r.Herbs...)
		out.Practices = append(out.Practices, r.Practices...)
	}
	return out
}
