// internal/knowledge/query.go
package knowledge

import (
	"fmt"
	"regexp"
	"strings"

	"healing-guide/internal/models"
)

type QueryType string

const (
	QueryConstitutional QueryType = "constitutional"
	QuerySymptoms       QueryType = "symptoms"
	QueryDietary        QueryType = "dietary"
	QueryLifestyle      QueryType = "lifestyle"
	QuerySeasonal       QueryType = "seasonal"
	QueryAstrological   QueryType = "astrological"
	QueryHerbs          QueryType = "herbs"
	QueryAgeRelated     QueryType = "age_related"
)

const (
	SourceOpenAI        = "openai"
	SourceKnowledgeBase = "knowledge_base"

	ClinicalAuthority = "Dr. Helen Thomas DC - 44 years clinical experience"
	Disclaimer        = "This guidance is for educational purposes. Always consult your healthcare provider for medical advice."
)

func mustPatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var queryPatterns = []struct {
	kind     QueryType
	patterns []*regexp.Regexp
}{
	{QueryConstitutional, mustPatterns(`what.*constitution.*am.*i`, `my.*body.*type`, `dosha.*analysis`, `vata.*pitta.*kapha`, `ayurvedic.*type`)},
	{QuerySymptoms, mustPatterns(`i.*have.*symptoms?`, `experiencing.*problems?`, `feeling.*unwell`, `health.*issues?`, `pain.*in.*`)},
	{QueryDietary, mustPatterns(`what.*should.*i.*eat`, `food.*recommendations?`, `diet.*for.*`, `nutrition.*advice`, `avoid.*eating`)},
	{QueryLifestyle, mustPatterns(`lifestyle.*changes?`, `daily.*routine`, `exercise.*recommendations?`, `sleep.*advice`, `stress.*management`)},
	{QuerySeasonal, mustPatterns(`current.*season`, `winter.*summer.*spring.*fall`, `seasonal.*advice`, `weather.*affecting`, `time.*of.*year`)},
	{QueryAstrological, mustPatterns(`planetary.*influence`, `vedic.*astrology`, `birth.*chart`, `planets?.*affecting`, `astrological.*remedy`)},
	{QueryHerbs, mustPatterns(`herbs?.*for.*`, `supplements?.*recommendations?`, `natural.*remedies?`, `ayurvedic.*medicine`, `herbal.*treatment`)},
	{QueryAgeRelated, mustPatterns(`my.*age.*is`, `i.*am.*years.*old`, `life.*stage`, `aging.*concerns?`, `elderly.*care`)},
}

var (
	symptomWords  = []string{"pain", "ache", "tired", "fatigue", "insomnia", "anxiety", "depression", "headache", "nausea", "bloating", "constipation", "diarrhea"}
	bodyPartWords = []string{"head", "heart", "stomach", "back", "joints", "skin", "eyes", "throat", "chest", "abdomen"}
	emotionWords  = []string{"anxious", "stressed", "angry", "sad", "depressed", "worried", "fearful", "irritated"}
	doshaWords    = []string{"vata", "pitta", "kapha"}
)

// QueryAnalysis is what AnalyzeQuery found in a question.
type QueryAnalysis struct {
	Types         []QueryType `json:"query_types"`
	Symptoms      []string    `json:"symptoms"`
	BodyParts     []string    `json:"body_parts"`
	Emotions      []string    `json:"emotions"`
	Constitutions []string    `json:"constitution_mentions"`
	Planets       []string    `json:"planets"`
}

func (a *QueryAnalysis) Has(t QueryType) bool {
	for _, k := range a.Types {
		if k == t {
			return true
		}
	}
	return false
}

// AnalyzeQuery classifies a question by pattern family and pulls out the
// symptoms, body parts, emotions, doshas and planets it mentions.
func AnalyzeQuery(query string) *QueryAnalysis {
	q := strings.ToLower(query)
	a := &QueryAnalysis{}

	for _, family := range queryPatterns {
		for _, re := range family.patterns {
			if re.MatchString(q) {
				a.Types = append(a.Types, family.kind)
				break
			}
		}
	}

	a.Symptoms = containedWords(q, symptomWords)
	a.BodyParts = containedWords(q, bodyPartWords)
	a.Emotions = containedWords(q, emotionWords)
	a.Constitutions = containedWords(q, doshaWords)
	a.Planets = containedWords(q, PlanetNames)
	return a
}

func containedWords(q string, words []string) []string {
	found := []string{}
	for _, w := range words {
		if strings.Contains(q, w) {
			found = append(found, w)
		}
	}
	return found
}

// UserContext personalises an answer. Constitution is empty and Age nil
// when unknown.
type UserContext struct {
	Constitution string
	Age          *int
	Season       string
	LifeStage    string
	Symptoms     []string
}

// primaryDosha returns the leading dosha of a constitution such as
// "pitta-kapha".
func (uc UserContext) primaryDosha() models.Dosha {
	if uc.Constitution == "" {
		return ""
	}
	return models.Dosha(strings.SplitN(strings.ToLower(uc.Constitution), "-", 2)[0])
}

// Response is a consultation answer, from the language model or from the
// knowledge base.
type Response struct {
	Answer                  string                        `json:"answer"`
	Recommendations         []string                      `json:"recommendations"`
	Herbs                   []string                      `json:"herbs"`
	LifestyleTips           []string                      `json:"lifestyle_tips"`
	DietaryGuidance         []string                      `json:"dietary_guidance,omitempty"`
	FoodsToAvoid            []string                      `json:"foods_to_avoid,omitempty"`
	MealTiming              string                        `json:"meal_timing,omitempty"`
	RemedialMeasures        []string                      `json:"remedial_measures,omitempty"`
	Precautions             string                        `json:"precautions,omitempty"`
	ConstitutionalGuidance  *ConstitutionAnalysis         `json:"constitutional_guidance,omitempty"`
	AstrologicalInsights    map[string]*PlanetaryGuidance `json:"astrological_insights,omitempty"`
	SeasonalRecommendations *SeasonalRecommendations      `json:"seasonal_recommendations,omitempty"`
	FollowUpQuestions       []string                      `json:"follow_up_questions"`
	ClinicalWisdom          string                        `json:"clinical_wisdom"`
	Source                  string                        `json:"source"`
	ConstitutionSpecific    bool                          `json:"constitution_specific"`
	Personalized            bool                          `json:"personalized"`
	ClinicalAuthority       string                        `json:"clinical_authority"`
	Warning                 string                        `json:"warning"`
}

func newResponse(source string, uc UserContext) *Response {
	return &Response{
		Recommendations:      []string{},
		Herbs:                []string{},
		LifestyleTips:        []string{},
		Source:               source,
		ConstitutionSpecific: uc.Constitution != "",
		Personalized:         uc.Constitution != "",
		ClinicalAuthority:    ClinicalAuthority,
		Warning:              Disclaimer,
	}
}

// Answer composes a knowledge base answer. Type handlers run in a fixed
// order; each later handler replaces the answer text and adds to the lists.
func Answer(query string, a *QueryAnalysis, uc UserContext) *Response {
	r := newResponse(SourceKnowledgeBase, uc)
	symptoms := mergeUnique(a.Symptoms, uc.Symptoms)

	if a.Has(QueryConstitutional) {
		answerConstitutional(r, uc, symptoms)
	}
	if a.Has(QuerySymptoms) {
		answerSymptoms(r, uc, symptoms)
	}
	if a.Has(QueryDietary) {
		answerDietary(r, uc)
	}
	if a.Has(QueryAstrological) {
		answerAstrological(r, uc, a.Planets)
	}
	if a.Has(QuerySeasonal) {
		answerSeasonal(r, uc)
	}
	if a.Has(QueryHerbs) {
		answerHerbs(r, uc, symptoms)
	}
	if a.Has(QueryLifestyle) {
		r.LifestyleTips = mergeUnique(r.LifestyleTips, lifestyleFor(uc))
	}

	if r.Answer == "" {
		if a.Has(QueryLifestyle) {
			r.Answer = lifestyleGuidance(uc.Season)
		} else {
			r.Answer = generalGuidance(query)
		}
	}

	fillDefaults(r, uc)
	r.ClinicalWisdom = ClinicalWisdom(a, uc)
	r.FollowUpQuestions = FollowUpQuestions(a, uc)
	return r
}

func answerConstitutional(r *Response, uc UserContext, symptoms []string) {
	if uc.Constitution == "" {
		r.Answer = "To provide accurate constitutional guidance, I recommend taking our comprehensive 13-constitution assessment first. This will help me give you personalized recommendations based on your unique body type."
		r.Recommendations = mergeUnique(r.Recommendations, []string{"Take constitutional assessment"})
		r.Personalized = false
		return
	}
	r.Answer = fmt.Sprintf("Based on your %s constitution, here's what I observe from my 44 years of clinical experience...", uc.Constitution)
	if analysis, ok := AnalyzeConstitution(uc.Constitution, symptoms); ok {
		r.ConstitutionalGuidance = analysis
	}
	r.Personalized = true
}

func answerSymptoms(r *Response, uc UserContext, symptoms []string) {
	r.Answer = "Let me analyze your symptoms from an Ayurvedic perspective... " + symptomGuidance
	if uc.Constitution == "" || len(symptoms) == 0 {
		return
	}
	imbalance, ok := imbalanceOf[uc.primaryDosha()]
	if !ok {
		return
	}
	protocol := TherapeuticProtocols[imbalance]
	r.Answer = fmt.Sprintf("For your %s constitution, these symptoms suggest %s as the root imbalance. %s.",
		uc.Constitution, imbalance, protocol.Treatment)
	r.Recommendations = mergeUnique(r.Recommendations, []string{
		fmt.Sprintf("Follow the %s protocol: %s", imbalance, strings.ToLower(protocol.Treatment)),
	})
	r.LifestyleTips = mergeUnique(r.LifestyleTips, protocol.Lifestyle)
}

func answerDietary(r *Response, uc UserContext) {
	var guidance []string
	if c, ok := pureConstitutions[string(uc.primaryDosha())]; ok {
		guidance = append(guidance, c.BalancingFoods...)
	}
	constitution := uc.Constitution
	if constitution == "" {
		constitution = "general"
	}
	if s, ok := SeasonalRecommendationsFor(uc.Season, constitution); ok {
		guidance = append(guidance, s.FoodsToFavor...)
		r.FoodsToAvoid = s.FoodsToAvoid
	}

	r.Answer = "Based on your constitution and the current season, here are my dietary recommendations... " + dietaryGuidance(uc)
	r.DietaryGuidance = guidance
	r.MealTiming = MealTiming(uc.Constitution)
}

func answerAstrological(r *Response, uc UserContext, names []string) {
	insights := map[string]*PlanetaryGuidance{}
	for _, name := range names {
		if g, ok := PlanetaryGuidanceFor(name, uc.Constitution); ok {
			insights[name] = g
		}
	}
	r.Answer = "From a Vedic astrology perspective, here's how planetary influences may be affecting your health..."
	r.AstrologicalInsights = insights
	r.RemedialMeasures = RemedialMeasures(names)
}

func answerSeasonal(r *Response, uc UserContext) {
	if uc.Season != "" && uc.Constitution != "" {
		if s, ok := SeasonalRecommendationsFor(uc.Season, uc.Constitution); ok {
			r.Answer = fmt.Sprintf("For the %s season and your %s constitution, here's my guidance...", uc.Season, uc.Constitution)
			r.SeasonalRecommendations = s
			r.Herbs = mergeUnique(r.Herbs, s.SeasonalHerbs)
			return
		}
	}
	r.Answer = "Seasonal health depends on your constitution. Let me provide general seasonal guidance..."
	if s, ok := SeasonalRecommendationsFor(uc.Season, "general"); ok {
		r.SeasonalRecommendations = s
	}
}

func answerHerbs(r *Response, uc UserContext, symptoms []string) {
	var herbs []string
	if c, ok := pureConstitutions[string(uc.primaryDosha())]; ok {
		herbs = append(herbs, c.Herbs...)
	}
	herbs = append(herbs, herbsForSymptoms(symptoms)...)

	r.Answer = "Based on your constitution and symptoms, here are my herbal recommendations..."
	r.Herbs = mergeUnique(r.Herbs, herbs)
	r.Precautions = "Always consult with a qualified practitioner before starting herbal treatments."
}

func herbsForSymptoms(symptoms []string) []string {
	var herbs []string
	for _, s := range symptoms {
		switch s {
		case "anxiety":
			herbs = append(herbs, "Brahmi", "Jatamansi", "Ashwagandha")
		case "bloating":
			herbs = append(herbs, "Triphala", "Ginger", "Fennel")
		}
	}
	return herbs
}

func lifestyleFor(uc UserContext) []string {
	if c, ok := pureConstitutions[string(uc.primaryDosha())]; ok {
		return c.LifestyleRecommendations
	}
	if s, ok := seasons[uc.Season]; ok {
		return s.Lifestyle
	}
	return nil
}

// MealTiming gives meal timing advice for the first dosha named in the
// constitution, checked in vata, pitta, kapha order.
func MealTiming(constitution string) string {
	c := strings.ToLower(constitution)
	switch {
	case strings.Contains(c, "vata"):
		return "Regular meal times are crucial for vata constitution"
	case strings.Contains(c, "pitta"):
		return "Don't skip meals, especially lunch - your digestive fire is strongest then"
	case strings.Contains(c, "kapha"):
		return "Light breakfast, substantial lunch, light dinner works best"
	default:
		return "Regular meal timing supports all constitutions"
	}
}

// ClinicalWisdom closes every answer with Dr. Helen's observations.
func ClinicalWisdom(a *QueryAnalysis, uc UserContext) string {
	var points []string
	if a.Has(QuerySymptoms) {
		points = append(points, "In my 44 years of practice, I've found that symptoms are the body's way of communicating imbalance.")
	}
	if uc.Constitution != "" {
		points = append(points, fmt.Sprintf("Your %s constitution gives us important clues about your healing path.", uc.Constitution))
	}
	points = append(points, "Remember, Ayurveda teaches us that healing happens in layers - be patient with the process.")
	return strings.Join(points, " ")
}

const maxFollowUps = 3

// FollowUpQuestions suggests at most three next questions.
func FollowUpQuestions(a *QueryAnalysis, uc UserContext) []string {
	var qs []string
	if uc.Constitution == "" {
		qs = append(qs, "Would you like to take our 13-constitution assessment for personalized guidance?")
	}
	if a.Has(QuerySymptoms) {
		qs = append(qs,
			"How long have you been experiencing these symptoms?",
			"Have you noticed any patterns with your symptoms?",
		)
	}
	if a.Has(QueryDietary) {
		qs = append(qs, "What does your typical daily meal schedule look like?")
	}
	qs = append(qs, "Are there any specific health goals you're working toward?")

	if len(qs) > maxFollowUps {
		qs = qs[:maxFollowUps]
	}
	return qs
}

// ==========================
// Guidance texts
// ==========================

const symptomGuidance = "From my clinical experience, symptoms are signals of dosha imbalances. The pulse diagnosis reveals whether you have dryness (Vata), heat (Pitta), or stagnation (Kapha) as the root cause. The first step is always simple: remoisturize dryness, cool heat, or flush stagnation."

func dietaryGuidance(uc UserContext) string {
	if uc.Constitution == "" {
		return "To provide personalized dietary guidance, I need to know your constitution. Please take our assessment first."
	}
	imbalance, ok := imbalanceOf[uc.primaryDosha()]
	if !ok {
		return "Based on my 44 years of clinical experience, dietary recommendations should be tailored to your specific constitution and current imbalances."
	}
	p := TherapeuticProtocols[imbalance]
	return fmt.Sprintf("For your %s constitution, focus on %s. Beneficial foods include: %s. During %s, adjust by incorporating seasonal wisdom from my clinical experience.",
		uc.Constitution, strings.ToLower(p.Treatment), strings.Join(p.Herbs, ", "), uc.Season)
}

func lifestyleGuidance(season string) string {
	return fmt.Sprintf("Your daily routine should align with your constitution and the current %s season. From the Healing Airwaves methodology, consistency in sleep, meals, and practices is essential for maintaining dosha balance.", season)
}

func generalGuidance(query string) string {
	return fmt.Sprintf("Thank you for your question about %s. From my 44 years of clinical experience with Ayurveda, I can share that every health concern has roots in constitutional imbalance. Let me provide some guidance based on traditional Ayurvedic principles...", query)
}

func fillDefaults(r *Response, uc UserContext) {
	if len(r.Recommendations) == 0 {
		first := "Take constitutional assessment"
		if uc.Constitution != "" {
			first = fmt.Sprintf("Follow your %s balancing protocol", uc.Constitution)
		}
		r.Recommendations = []string{first, "Consider pulse diagnosis", "Follow seasonal guidelines"}
	}
	if len(r.Herbs) == 0 {
		r.Herbs = []string{"Triphala", "Ashwagandha", "Turmeric"}
	}
	if len(r.LifestyleTips) == 0 {
		r.LifestyleTips = []string{"Maintain regular routine", "Eat according to constitution", "Practice daily meditation"}
	}
}

// mergeUnique appends the items of add not already in base.
func mergeUnique(base, add []string) []string {
	seen := make(map[string]bool, len(base))
	for _, b := range base {
		seen[b] = true
	}
	out := append([]string{}, base...)
	for _, s := range add {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
