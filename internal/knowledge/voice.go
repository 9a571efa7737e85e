// internal/knowledge/voice.go
package knowledge

import (
	"strings"
	"unicode/utf8"

	"healing-guide/internal/common/elevenlabs"
)

// Dr. Helen's cloned voice identity.
const (
	VoiceName        = "Dr. Helen Thomas DC"
	VoiceDescription = "Professional, warm, and authoritative voice of Dr. Helen Thomas DC, with 44 years of clinical experience in Ayurveda and healing."
	TestGreeting     = "Hello, I'm Dr. Helen Thomas, DC. Welcome to Your Healing Guide, where ancient wisdom meets modern healing."
	SpeechFilename   = "dr_helen_speech.mp3"
)

var VoiceLabels = map[string]string{
	"accent":      "american",
	"description": "Dr. Helen Thomas DC",
	"age":         "middle_aged",
	"gender":      "female",
	"use case":    "healing_guide",
}

var (
	// CloneVoiceSettings are applied to a freshly cloned voice.
	CloneVoiceSettings = elevenlabs.VoiceSettings{Stability: 0.6, SimilarityBoost: 0.85, Style: 0.3, UseSpeakerBoost: true}
	// SpeechVoiceSettings are used for generated speech and voice tests.
	SpeechVoiceSettings = elevenlabs.VoiceSettings{Stability: 0.75, SimilarityBoost: 0.85, Style: 0.2, UseSpeakerBoost: true}
	// AvatarVoiceSettings drive the avatar's more expressive delivery.
	AvatarVoiceSettings = elevenlabs.VoiceSettings{Stability: 0.75, SimilarityBoost: 0.85, Style: 0.65, UseSpeakerBoost: true}
	// DefaultEditSettings fill in a settings edit that omits values.
	DefaultEditSettings = elevenlabs.VoiceSettings{Stability: 0.5, SimilarityBoost: 0.8}
)

// ==========================
// Avatar
// ==========================

const DefaultAvatarScript = "welcome"

var avatarScripts = map[string]string{
	"welcome":      "Hello and welcome. I'm Dr. Helen Thomas, DC. I've spent 44 years in the clinic, taught Ayurveda at college, and wrote two books, so you don't have to guess what works.",
	"pulse":        "The pulse shows me what's happening right now in your body. It reveals which areas are in balance or out of balance. It tells me if there's dryness, heat, inflammation, or congestion and stagnation.",
	"consultation": "The first step is always simple: remoisturizing dryness, cooling heat and inflammation, or flushing mucus and stagnation. This is the beginning of real healing. Let's begin.",
	"digestive":    "If you feel burning, bloating, or reflux, your body is signaling that digestion is out of balance. What to do: sip cumin, coriander, and fennel tea.",
	"sleep":        "If you can't fall asleep, wake at night, or feel anxious in the evening, it may be your Vata running too fast. Try warm milk with nutmeg.",
	"energy":       "If you feel heavy, sluggish mornings, this may be Kapha energy that needs gentle stirring. Start with ginger-lemon tea and gentle movement.",
}

// AvatarLine returns the scripted line for kind and the kind actually
// used; unknown kinds get the welcome line.
func AvatarLine(kind string) (text, used string) {
	if t, ok := avatarScripts[kind]; ok {
		return t, kind
	}
	return avatarScripts[DefaultAvatarScript], DefaultAvatarScript
}

var EmphasisWords = []string{"constitution", "dosha", "Ayurveda", "healing", "balance"}

// SpeakingScript tells the avatar how to voice a response.
type SpeakingScript struct {
	Text          string                   `json:"text"`
	VoiceSettings elevenlabs.VoiceSettings `json:"voice_settings"`
	SpeakingStyle string                   `json:"speaking_style"`
	PausePoints   []int                    `json:"pause_points"`
	EmphasisWords []string                 `json:"emphasis_words"`
}

// BuildSpeakingScript marks a pause after every sentence but the last.
func BuildSpeakingScript(text string) SpeakingScript {
	return SpeakingScript{
		Text:          text,
		VoiceSettings: AvatarVoiceSettings,
		SpeakingStyle: "professional_warm",
		PausePoints:   PausePoints(text),
		EmphasisWords: EmphasisWords,
	}
}

// PausePoints returns the rune offset just past each ". " separator.
func PausePoints(text string) []int {
	sentences := strings.Split(text, ". ")
	points := []int{}
	offset := 0
	for i, s := range sentences[:len(sentences)-1] {
		offset += utf8.RuneCountInString(s)
		if i > 0 {
			offset += 2
		}
		points = append(points, offset+2)
	}
	return points
}
