// internal/knowledge/prompts.go
package knowledge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// KnownHerbs are the herbs recognised in model completions.
var KnownHerbs = []string{
	"ashwagandha", "turmeric", "ginger", "triphala", "brahmi",
	"aloe vera", "coriander", "fennel", "cumin", "cardamom",
	"cinnamon", "cloves", "nutmeg", "sesame oil", "ghee",
}

const (
	maxRecommendations = 5
	maxLifestyleTips   = 3
)

var (
	recommendationKeywords = []string{"recommend", "suggest", "try", "consider"}
	lifestyleKeywords      = []string{"lifestyle", "daily", "routine", "practice"}
)

// SystemPrompt frames the model as Dr. Helen with her protocols inlined.
func SystemPrompt(uc UserContext) string {
	constitution := uc.Constitution
	if constitution == "" {
		constitution = "Unknown - recommend assessment"
	}
	age := "Unknown"
	if uc.Age != nil {
		age = fmt.Sprintf("%d", *uc.Age)
	}

	var b strings.Builder
	b.WriteString(`You are NanoSutracore, the advanced AI reasoning system created by Dr. Helen Thomas DC, integrating her 44 years of clinical experience with traditional Ayurvedic wisdom.

KNOWLEDGE BASES INTEGRATED:
1. HEALING AIRWAVES: Dr. Helen's specialized healing methodologies and clinical protocols
2. AYURVEDA WISDOM: Traditional Ayurvedic principles from classical texts
3. CLINICAL EXPERIENCE: 44 years of practical application and patient outcomes

CORE HEALING PHILOSOPHY:
- The pulse reveals current dosha imbalances and guides treatment
- Every condition stems from dryness, heat, or stagnation
- Treatment hierarchy: remoisturize dryness, cool heat, flush stagnation
- Constitutional approach: work WITH the person's nature, not against it

`)
	fmt.Fprintf(&b, "CURRENT CONTEXT:\n- Season: %s\n- User Constitution: %s\n- User Age: %s\n", uc.Season, constitution, age)
	if uc.LifeStage != "" {
		fmt.Fprintf(&b, "- Life Stage: %s\n", uc.LifeStage)
	}
	b.WriteString(`
RESPONSE GUIDELINES:
1. Always speak as Dr. Helen Thomas DC with authority from 44 years of experience
2. Reference specific knowledge from Healing Airwaves and Ayurveda Wisdom
3. Provide practical, actionable guidance
4. Include pulse diagnosis insights when relevant
5. Address root causes, not just symptoms
6. Incorporate seasonal and constitutional considerations
7. Include specific herbs, foods, and lifestyle recommendations
8. Always include the medical disclaimer

KNOWLEDGE BASE EXCERPTS:
`)
	b.WriteString(excerpt(map[string]interface{}{
		"pulse_diagnosis":        Clinical.PulseDiagnosis,
		"therapeutic_approaches": TherapeuticProtocols,
		"tridosha_theory":        Tridosha,
	}))
	b.WriteString("\n")
	return b.String()
}

func excerpt(v interface{}) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// UserPrompt wraps the question with symptoms and any client context.
func UserPrompt(query string, symptoms []string, extra map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUERY: %s\n\n", query)
	if len(symptoms) > 0 {
		fmt.Fprintf(&b, "CURRENT SYMPTOMS: %s\n\n", strings.Join(symptoms, ", "))
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, "ADDITIONAL CONTEXT: %s\n\n", excerpt(extra))
	}
	b.WriteString(`Please provide a comprehensive response that:
1. Addresses the specific query with clinical expertise
2. Explains the Ayurvedic perspective on the issue
3. Provides specific recommendations for diet, herbs, and lifestyle
4. Includes pulse diagnosis insights if relevant
5. Considers constitutional and seasonal factors
6. Offers practical next steps

Format your response in clear sections for easy understanding.`)
	return b.String()
}

// FromCompletion structures a model completion into a Response.
func FromCompletion(text string, a *QueryAnalysis, uc UserContext) *Response {
	r := newResponse(SourceOpenAI, uc)
	r.Answer = text
	r.Personalized = true
	r.Recommendations = linesWith(text, recommendationKeywords, maxRecommendations)
	r.Herbs = ExtractHerbs(text)
	r.LifestyleTips = linesWith(text, lifestyleKeywords, maxLifestyleTips)
	r.ClinicalWisdom = ClinicalWisdom(a, uc)
	r.FollowUpQuestions = FollowUpQuestions(a, uc)
	return r
}

func linesWith(text string, keywords []string, limit int) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

// ExtractHerbs returns the known herbs mentioned in text, title cased and
// sorted.
func ExtractHerbs(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, h := range KnownHerbs {
		if strings.Contains(lower, h) {
			out = append(out, titleCase(h))
		}
	}
	sort.Strings(out)
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
