package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answer struct {
	QuestionID  int `json:"question_id"`
	OptionIndex int `json:"option_index"`
}

type submission struct {
	Answers []answer `json:"answers"`
	Email   string   `json:"email"`
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectValid bool
		expectField string
		validate    func(t *testing.T, out submission)
	}{
		{
			name:        "valid body is decoded",
			body:        `{"answers":[{"question_id":3,"option_index":2}],"email":"a@b.co"}`,
			expectValid: true,
			validate: func(t *testing.T, out submission) {
				require.Len(t, out.Answers, 1)
				assert.Equal(t, 2, out.Answers[0].OptionIndex)
				assert.Equal(t, "a@b.co", out.Email)
			},
		},
		{
			name:        "empty body leaves the input empty",
			body:        "  ",
			expectValid: true,
			validate: func(t *testing.T, out submission) {
				assert.Empty(t, out.Answers)
			},
		},
		{
			name:        "null fields are accepted",
			body:        `{"answers":null,"email":null}`,
			expectValid: true,
		},
		{
			name:        "string option index",
			body:        `{"answers":[{"question_id":3,"option_index":"a"}]}`,
			expectField: "answers.0.option_index",
		},
		{
			name:        "fractional question id",
			body:        `{"answers":[{"question_id":1.5,"option_index":0}]}`,
			expectField: "answers.0.question_id",
		},
		{
			name:        "body is an array",
			body:        `[1,2]`,
			expectField: "(root)",
		},
		{
			name:        "malformed json",
			body:        `{"answers":`,
			expectField: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out submission
			result := AssessmentSubmitSchema.DecodeRequest([]byte(tt.body), &out)

			assert.Equal(t, tt.expectValid, result.Valid, result.Summary())
			if tt.expectField != "" {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.expectField, result.Errors[0].Field)
				assert.Contains(t, result.Summary(), tt.expectField)
			}
			if tt.validate != nil {
				tt.validate(t, out)
			}
		})
	}
}

func TestSpeechRequestSchema(t *testing.T) {
	assert.True(t, SpeechRequestSchema.ValidateBytes([]byte(`{"text":"Namaste","stability":0.5,"style":0}`)).Valid)
	assert.False(t, SpeechRequestSchema.ValidateBytes([]byte(`{"text":"Namaste","similarity_boost":2}`)).Valid)
	assert.False(t, SpeechRequestSchema.ValidateBytes([]byte(`{"voice_id":7}`)).Valid)
}

func TestNewsletterSubscribeSchema(t *testing.T) {
	assert.True(t, NewsletterSubscribeSchema.ValidateBytes([]byte(`{"email":"a@b.co","source":"footer","first_name":"Ann"}`)).Valid)
	assert.False(t, NewsletterSubscribeSchema.ValidateBytes([]byte(`{"email":["a@b.co"]}`)).Valid)
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "reader@example.com", NormalizeEmail("  Reader@Example.COM "))
	assert.True(t, IsValidEmail("reader@example.com"))
	assert.False(t, IsValidEmail("reader@example"))
	assert.False(t, IsValidEmail("reader example@x.com"))
}
