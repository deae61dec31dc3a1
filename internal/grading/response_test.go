package grading

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailymath/dailymath/internal/apperr"
)

func TestParser_Parse(t *testing.T) {
	parser, err := NewParser()
	require.NoError(t, err)

	tests := []struct {
		name         string
		input        string
		wantScore    int
		wantFeedback int
		wantErr      string
	}{
		{
			name:         "valid response",
			input:        `{"score":100,"feedback":[{"title":"Correct","text":"2+2 is 4.","type":"success"}]}`,
			wantScore:    100,
			wantFeedback: 1,
		},
		{
			name:         "fenced response",
			input:        "```json\n{\"score\":40,\"feedback\":[{\"title\":\"Sign\",\"text\":\"Check the sign.\",\"type\":\"error\"}]}\n```",
			wantScore:    40,
			wantFeedback: 1,
		},
		{
			name:      "zero score and no feedback items",
			input:     `{"score":0,"feedback":[]}`,
			wantScore: 0,
		},
		{
			name:    "score above range",
			input:   `{"score":150,"feedback":[{"title":"t","text":"x","type":"info"}]}`,
			wantErr: "score must be 100 or less",
		},
		{
			name:    "negative score",
			input:   `{"score":-1,"feedback":[]}`,
			wantErr: "score must be 0 or greater",
		},
		{
			name:    "missing score",
			input:   `{"feedback":[]}`,
			wantErr: "score is a required field",
		},
		{
			name:    "missing feedback",
			input:   `{"score":50}`,
			wantErr: "feedback is a required field",
		},
		{
			name:    "feedback item without type",
			input:   `{"score":80,"feedback":[{"title":"t","text":"x"}]}`,
			wantErr: "type is a required field",
		},
		{
			name:    "unknown feedback type",
			input:   `{"score":80,"feedback":[{"title":"t","text":"x","type":"warning"}]}`,
			wantErr: "type must be one of [success error info]",
		},
		{
			name:    "score as string",
			input:   `{"score":"80","feedback":[]}`,
			wantErr: "not valid JSON",
		},
		{
			name:    "fractional score",
			input:   `{"score":80.5,"feedback":[]}`,
			wantErr: "not valid JSON",
		},
		{
			name:    "unknown field",
			input:   `{"score":80,"feedback":[],"grade":"B"}`,
			wantErr: "not valid JSON",
		},
		{
			name:    "trailing data",
			input:   `{"score":80,"feedback":[]} {"score":1,"feedback":[]}`,
			wantErr: "unexpected data",
		},
		{
			name:    "not json",
			input:   "Great job!",
			wantErr: "not valid JSON",
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: "empty model response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parser.Parse(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, resp.Score)
			assert.Equal(t, tt.wantScore, *resp.Score)
			assert.Len(t, resp.Feedback, tt.wantFeedback)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}\n"))
	assert.Equal(t, "", stripCodeFence("```"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  Solve x^2 = 4.  ")
	assert.Contains(t, prompt, "PROBLEM:\nSolve x^2 = 4.")
	assert.Contains(t, prompt, "0 to 100")
}

func TestResponseSchema(t *testing.T) {
	schema := ResponseSchema()
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"score", "feedback"}, schema.Required)
	assert.Equal(t, genai.TypeInteger, schema.Properties["score"].Type)

	item := schema.Properties["feedback"].Items
	require.NotNil(t, item)
	assert.ElementsMatch(t, []string{"title", "text", "type"}, item.Required)
	assert.Equal(t, []string{"success", "error", "info"}, item.Properties["type"].Enum)
}
