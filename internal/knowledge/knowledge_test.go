// internal/knowledge/knowledge_test.go
package knowledge

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healing-guide/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// answersFor picks option idx for every question id given.
func answersFor(idx int, ids ...int) []models.AssessmentAnswer {
	out := make([]models.AssessmentAnswer, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.AssessmentAnswer{QuestionID: id, OptionIndex: idx})
	}
	return out
}

func intPtr(v int) *int { return &v }

// ==========================
// Assessment
// ==========================

func TestQuestions_Shape(t *testing.T) {
	require.Len(t, Questions, 10)
	for i, q := range Questions {
		assert.Equal(t, i+1, q.ID)
		require.Len(t, q.Options, 3)
		assert.Equal(t, optionPoints, q.Options[0].Vata)
		assert.Equal(t, optionPoints, q.Options[1].Pitta)
		assert.Equal(t, optionPoints, q.Options[2].Kapha)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		answers        []models.AssessmentAnswer
		expectedCount  int
		validateOutput func(t *testing.T, r models.ConstitutionResult)
	}{
		{
			name:          "pure pitta",
			answers:       answersFor(1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
			expectedCount: 10,
			validateOutput: func(t *testing.T, r models.ConstitutionResult) {
				assert.Equal(t, models.DoshaPitta, r.Primary)
				assert.Empty(t, r.Secondary)
				assert.Equal(t, "pitta", r.Constitution)
				assert.Equal(t, models.DoshaScores{Pitta: 30}, r.Scores)
			},
		},
		{
			name:          "dual vata-kapha within eighty percent",
			answers:       append(answersFor(0, 1, 2, 3, 4, 5), answersFor(2, 6, 7, 8, 9)...),
			expectedCount: 9,
			validateOutput: func(t *testing.T, r models.ConstitutionResult) {
				assert.Equal(t, models.DoshaVata, r.Primary)
				assert.Equal(t, models.DoshaKapha, r.Secondary)
				assert.Equal(t, "vata-kapha", r.Constitution)
				assert.Equal(t, 15, r.Scores.Vata)
				assert.Equal(t, 12, r.Scores.Kapha)
			},
		},
		{
			name:          "runner-up below threshold",
			answers:       append(answersFor(1, 1, 2, 3, 4, 5), answersFor(0, 6, 7, 8)...),
			expectedCount: 8,
			validateOutput: func(t *testing.T, r models.ConstitutionResult) {
				assert.Equal(t, models.DoshaPitta, r.Primary)
				assert.Empty(t, r.Secondary)
			},
		},
		{
			name:          "tie goes to vata then pitta",
			answers:       append(answersFor(1, 1, 2), answersFor(0, 3, 4)...),
			expectedCount: 4,
			validateOutput: func(t *testing.T, r models.ConstitutionResult) {
				assert.Equal(t, models.DoshaVata, r.Primary)
				assert.Equal(t, models.DoshaPitta, r.Secondary)
				assert.Equal(t, "vata-pitta", r.Constitution)
			},
		},
		{
			name: "invalid answers ignored",
			answers: []models.AssessmentAnswer{
				{QuestionID: 99, OptionIndex: 0},
				{QuestionID: 1, OptionIndex: 3},
				{QuestionID: 2, OptionIndex: -1},
				{QuestionID: 3, OptionIndex: 2},
			},
			expectedCount: 1,
			validateOutput: func(t *testing.T, r models.ConstitutionResult) {
				assert.Equal(t, models.DoshaKapha, r.Primary)
				assert.Equal(t, 3, r.Scores.Total())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, counted := Score(tt.answers)
			assert.Equal(t, tt.expectedCount, counted)
			if tt.validateOutput != nil {
				tt.validateOutput(t, result)
			}
		})
	}
}

func TestScore_NoValidAnswers(t *testing.T) {
	_, counted := Score([]models.AssessmentAnswer{{QuestionID: 42, OptionIndex: 0}})
	assert.Zero(t, counted)
}

func TestRecommend(t *testing.T) {
	single := Recommend(models.ConstitutionResult{Primary: models.DoshaKapha})
	assert.Len(t, single.Diet, 4)
	assert.Contains(t, single.Herbs, "Trikatu for metabolism")

	dual := Recommend(models.ConstitutionResult{Primary: models.DoshaPitta, Secondary: models.DoshaVata})
	assert.Len(t, dual.Diet, 8)
	// vata blocks come first regardless of which dosha leads
	assert.Equal(t, "Warm, cooked foods", dual.Diet[0])
	assert.Equal(t, "Cool, fresh foods", dual.Diet[4])
	assert.Len(t, dual.Practices, 6)
}

// ==========================
// Knowledge base lookups
// ==========================

func TestAnalyzeConstitution(t *testing.T) {
	a, ok := AnalyzeConstitution("Vata", nil)
	require.True(t, ok)
	assert.Equal(t, "Vata", a.Constitution)
	assert.Contains(t, a.RecommendedHerbs, "Ashwagandha")
	assert.Nil(t, a.SymptomAnalysis)

	dual, ok := AnalyzeConstitution("pitta-kapha", []string{"bloating"})
	require.True(t, ok)
	assert.Empty(t, dual.BalancingFoods)
	assert.Equal(t, "Moderate approach, avoid extremes in temperature", dual.BalancingApproach)
	require.NotNil(t, dual.SymptomAnalysis)

	_, ok = AnalyzeConstitution("fire", nil)
	assert.False(t, ok)

	for _, name := range ConstitutionNames {
		_, ok := AnalyzeConstitution(name, nil)
		assert.True(t, ok, name)
	}
}

func TestPlanetaryGuidanceFor(t *testing.T) {
	g, ok := PlanetaryGuidanceFor("Saturn", "vata")
	require.True(t, ok)
	assert.Equal(t, "Vata dosha", g.AyurvedicCorrelation)
	require.NotNil(t, g.ConstitutionalSpecific)
	assert.Equal(t, "How Saturn affects vata constitution", g.ConstitutionalSpecific.Interaction)

	g, ok = PlanetaryGuidanceFor("moon", "")
	require.True(t, ok)
	assert.Nil(t, g.ConstitutionalSpecific)

	_, ok = PlanetaryGuidanceFor("pluto", "")
	assert.False(t, ok)

	for _, p := range PlanetNames {
		_, ok := PlanetaryGuidanceFor(p, "")
		assert.True(t, ok, p)
	}
}

func TestRemedialMeasures_Dedup(t *testing.T) {
	m := RemedialMeasures([]string{"sun", "sun", "pluto"})
	assert.Len(t, m, 4)
}

func TestSeasonalRecommendationsFor(t *testing.T) {
	r, ok := SeasonalRecommendationsFor("summer", "pitta")
	require.True(t, ok)
	assert.Equal(t, "Cooling foods, avoid anger, moderate activity", r.ConstitutionalCare)

	r, ok = SeasonalRecommendationsFor("Fall", "general")
	require.True(t, ok)
	assert.Equal(t, generalCare, r.ConstitutionalCare)
	assert.Equal(t, "Fall", r.Season)

	r, ok = SeasonalRecommendationsFor("winter", "vata-kapha")
	require.True(t, ok)
	assert.Equal(t, generalCare, r.ConstitutionalCare)

	_, ok = SeasonalRecommendationsFor("monsoon", "vata")
	assert.False(t, ok)
}

func TestCurrentSeason(t *testing.T) {
	cases := map[time.Month]string{
		time.January: "winter", time.March: "spring", time.May: "spring",
		time.June: "summer", time.August: "summer", time.September: "fall",
		time.November: "fall", time.December: "winter",
	}
	for month, want := range cases {
		assert.Equal(t, want, CurrentSeason(time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC)), month.String())
	}
}

func TestLifeStageFor(t *testing.T) {
	assert.Equal(t, "childhood", LifeStageFor(15))
	assert.Equal(t, "youth", LifeStageFor(16))
	assert.Equal(t, "youth", LifeStageFor(49))
	assert.Equal(t, "maturity", LifeStageFor(50))

	ls, ok := LifeStageWisdom("maturity")
	require.True(t, ok)
	assert.Equal(t, "vata", ls.DominantDosha)
}

// ==========================
// Query analysis and answers
// ==========================

func TestAnalyzeQuery(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		validateOutput func(t *testing.T, a *QueryAnalysis)
	}{
		{
			name:  "dietary with symptom",
			query: "What should I eat for bloating?",
			validateOutput: func(t *testing.T, a *QueryAnalysis) {
				assert.True(t, a.Has(QueryDietary))
				assert.Equal(t, []string{"bloating"}, a.Symptoms)
			},
		},
		{
			name:  "astrology with planets",
			query: "How is the planetary influence of Saturn and Mars affecting my joints?",
			validateOutput: func(t *testing.T, a *QueryAnalysis) {
				assert.True(t, a.Has(QueryAstrological))
				assert.Equal(t, []string{"mars", "saturn"}, a.Planets)
				assert.Contains(t, a.BodyParts, "joints")
			},
		},
		{
			name:  "constitutional and emotions",
			query: "What constitution am I? I am anxious and worried",
			validateOutput: func(t *testing.T, a *QueryAnalysis) {
				assert.True(t, a.Has(QueryConstitutional))
				assert.Equal(t, []string{"anxious", "worried"}, a.Emotions)
			},
		},
		{
			name:  "nothing recognised",
			query: "hello there",
			validateOutput: func(t *testing.T, a *QueryAnalysis) {
				assert.Empty(t, a.Types)
				assert.NotNil(t, a.Symptoms)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateOutput(t, AnalyzeQuery(tt.query))
		})
	}
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		uc             UserContext
		validateOutput func(t *testing.T, r *Response)
	}{
		{
			name:  "general question without context",
			query: "tell me something",
			uc:    UserContext{Season: "fall"},
			validateOutput: func(t *testing.T, r *Response) {
				assert.True(t, strings.HasPrefix(r.Answer, "Thank you for your question about tell me something."))
				assert.Equal(t, SourceKnowledgeBase, r.Source)
				assert.False(t, r.Personalized)
				assert.False(t, r.ConstitutionSpecific)
				assert.Equal(t, []string{"Triphala", "Ashwagandha", "Turmeric"}, r.Herbs)
				assert.Equal(t, "Would you like to take our 13-constitution assessment for personalized guidance?", r.FollowUpQuestions[0])
				assert.Equal(t, Disclaimer, r.Warning)
			},
		},
		{
			name:  "dietary for vata in fall",
			query: "What should I eat this week?",
			uc:    UserContext{Constitution: "vata", Season: "fall"},
			validateOutput: func(t *testing.T, r *Response) {
				assert.Contains(t, r.Answer, "remoisturizing with oils")
				assert.Contains(t, r.DietaryGuidance, "Warm milk, ghee, nuts")
				assert.Contains(t, r.DietaryGuidance, "root vegetables")
				assert.Equal(t, []string{"cold", "dry", "raw foods"}, r.FoodsToAvoid)
				assert.Equal(t, "Regular meal times are crucial for vata constitution", r.MealTiming)
				assert.True(t, r.Personalized)
				assert.Contains(t, r.ClinicalWisdom, "Your vata constitution gives us important clues")
			},
		},
		{
			name:  "later handler replaces answer and herbs merge",
			query: "I have symptoms of anxiety, which herbs for it?",
			uc:    UserContext{Constitution: "vata-pitta", Season: "spring"},
			validateOutput: func(t *testing.T, r *Response) {
				assert.True(t, strings.HasPrefix(r.Answer, "Based on your constitution and symptoms, here are my herbal recommendations"))
				assert.Equal(t, "Ashwagandha", r.Herbs[0])
				assert.Contains(t, r.Herbs, "Jatamansi")
				// the anxiety herbs are already in the vata list
				assert.Len(t, r.Herbs, 5)
				require.Len(t, r.FollowUpQuestions, 3)
				assert.Equal(t, "How long have you been experiencing these symptoms?", r.FollowUpQuestions[0])
				assert.Contains(t, r.Recommendations[0], "dryness protocol")
			},
		},
		{
			name:  "astrology collects remedies",
			query: "Is the moon affecting my sleep? vedic astrology please",
			uc:    UserContext{Season: "winter"},
			validateOutput: func(t *testing.T, r *Response) {
				require.Contains(t, r.AstrologicalInsights, "moon")
				assert.Contains(t, r.RemedialMeasures, "Fast on Mondays")
			},
		},
		{
			name:  "follow ups capped at three",
			query: "I have symptoms, what should I eat?",
			uc:    UserContext{Season: "summer"},
			validateOutput: func(t *testing.T, r *Response) {
				assert.Len(t, r.FollowUpQuestions, 3)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Answer(tt.query, AnalyzeQuery(tt.query), tt.uc)
			assert.Equal(t, ClinicalAuthority, r.ClinicalAuthority)
			tt.validateOutput(t, r)
		})
	}
}

func TestMealTiming(t *testing.T) {
	assert.Contains(t, MealTiming("Pitta-Kapha"), "especially lunch")
	assert.Contains(t, MealTiming("kapha"), "Light breakfast")
	assert.Equal(t, "Regular meal timing supports all constitutions", MealTiming(""))
}

// ==========================
// Prompts and completions
// ==========================

func TestPrompts(t *testing.T) {
	sys := SystemPrompt(UserContext{Season: "fall", Age: intPtr(61), LifeStage: "maturity"})
	assert.Contains(t, sys, "User Constitution: Unknown - recommend assessment")
	assert.Contains(t, sys, "User Age: 61")
	assert.Contains(t, sys, `"therapeutic_approaches"`)

	user := UserPrompt("Why am I tired?", []string{"fatigue"}, map[string]interface{}{"life_stage": "maturity"})
	assert.True(t, strings.HasPrefix(user, "QUERY: Why am I tired?\n\n"))
	assert.Contains(t, user, "CURRENT SYMPTOMS: fatigue")
	assert.Contains(t, user, `"life_stage": "maturity"`)
}

func TestFromCompletion(t *testing.T) {
	text := strings.Join([]string{
		"Your pulse suggests dryness.",
		"I recommend warm sesame oil massage.",
		"Try ginger tea before meals.",
		"Consider a daily routine with early nights.",
		"Ashwagandha and Ghee help rebuild ojas.",
	}, "\n")

	r := FromCompletion(text, AnalyzeQuery("why am I tired"), UserContext{Constitution: "vata", Season: "fall"})
	assert.Equal(t, SourceOpenAI, r.Source)
	assert.Equal(t, text, r.Answer)
	assert.Len(t, r.Recommendations, 4)
	assert.Equal(t, []string{"Consider a daily routine with early nights."}, r.LifestyleTips)
	assert.Equal(t, []string{"Ashwagandha", "Ghee", "Ginger", "Sesame Oil"}, r.Herbs)
	assert.True(t, r.ConstitutionSpecific)
}

func TestFromCompletion_Limits(t *testing.T) {
	lines := make([]string, 8)
	for i := range lines {
		lines[i] = "I suggest a daily practice"
	}
	r := FromCompletion(strings.Join(lines, "\n"), &QueryAnalysis{}, UserContext{})
	assert.Len(t, r.Recommendations, maxRecommendations)
	assert.Len(t, r.LifestyleTips, maxLifestyleTips)
	assert.Empty(t, r.Herbs)
}

// ==========================
// Avatar
// ==========================

func TestAvatarLine(t *testing.T) {
	text, used := AvatarLine("sleep")
	assert.Equal(t, "sleep", used)
	assert.Contains(t, text, "warm milk with nutmeg")

	text, used = AvatarLine("unknown")
	assert.Equal(t, DefaultAvatarScript, used)
	assert.True(t, strings.HasPrefix(text, "Hello and welcome."))
}

func TestPausePoints(t *testing.T) {
	assert.Equal(t, []int{5, 9}, PausePoints("Abc. De. Fgh"))
	assert.Empty(t, PausePoints("No pause here"))
	assert.Empty(t, PausePoints(""))
	// offsets count runes, not bytes
	assert.Equal(t, []int{5}, PausePoints("Ayé. Bien"))

	s := BuildSpeakingScript("One. Two.")
	assert.Equal(t, "professional_warm", s.SpeakingStyle)
	assert.Equal(t, 0.65, s.VoiceSettings.Style)
	assert.Equal(t, []int{5}, s.PausePoints)
}
