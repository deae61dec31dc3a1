package grading

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dailymath/dailymath/internal/apperr"
)

const DefaultModelName = "gemini-1.5-flash-latest"

const systemInstruction = "You grade handwritten math solutions. " +
	"Be fair and encouraging, point out each mistake precisely, and never invent work that is not in the photographs."

// GeminiModel calls Gemini with a JSON response schema.
type GeminiModel struct {
	client    *genai.Client
	modelName string
}

func NewGeminiModel(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiModel, error) {
	if modelName == "" {
		modelName = DefaultModelName
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiModel{client: client, modelName: modelName}, nil
}

func (m *GeminiModel) Close() {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string, images []Image) (string, error) {
	model := m.client.GenerativeModel(m.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	temp := float32(0.2)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}

	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini grading request failed: %v", apperr.ErrNetwork, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", apperr.ErrValidation)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	return text.String(), nil
}

// ResponseSchema constrains generation to {score, feedback[{title,text,type}]}.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": {
				Type:        genai.TypeInteger,
				Description: "Overall score from 0 to 100.",
			},
			"feedback": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {Type: genai.TypeString},
						"text":  {Type: genai.TypeString},
						"type": {
							Type:   genai.TypeString,
							Format: "enum",
							Enum:   []string{"success", "error", "info"},
						},
					},
					Required: []string{"title", "text", "type"},
				},
			},
		},
		Required: []string{"score", "feedback"},
	}
}
