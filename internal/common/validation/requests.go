// internal/common/validation/requests.go
package validation

// Request body schemas check shape and types only. Required fields and
// value rules stay in the handlers so their messages match the API docs.

var AssessmentSubmitSchema = MustCompile("assessment-submit", map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"properties": map[string]interface{}{
		"answers": map[string]interface{}{
			"type": []interface{}{"array", "null"},
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"question_id", "option_index"},
				"properties": map[string]interface{}{
					"question_id":  map[string]interface{}{"type": "integer"},
					"option_index": map[string]interface{}{"type": "integer"},
				},
			},
		},
		"user_id": map[string]interface{}{"type": []interface{}{"integer", "null"}},
		"email":   map[string]interface{}{"type": []interface{}{"string", "null"}},
		"name":    map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
})

var NewsletterSubscribeSchema = MustCompile("newsletter-subscribe", map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"properties": map[string]interface{}{
		"email":      map[string]interface{}{"type": []interface{}{"string", "null"}},
		"source":     map[string]interface{}{"type": []interface{}{"string", "null"}},
		"first_name": map[string]interface{}{"type": []interface{}{"string", "null"}},
		"last_name":  map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
})

var SpeechRequestSchema = MustCompile("generate-speech", map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"properties": map[string]interface{}{
		"text":             map[string]interface{}{"type": []interface{}{"string", "null"}},
		"voice_id":         map[string]interface{}{"type": []interface{}{"string", "null"}},
		"stability":        voiceSetting,
		"similarity_boost": voiceSetting,
		"style":            voiceSetting,
	},
})

var voiceSetting = map[string]interface{}{
	"type":    []interface{}{"number", "null"},
	"minimum": 0,
	"maximum": 1,
}
