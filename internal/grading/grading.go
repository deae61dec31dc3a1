// Package grading asks a hosted multimodal model to grade handwritten
// solutions and validates what comes back.
package grading

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=grading.go -destination=../mocks/grading/mock_model.go -package=mock_grading

// Image is one photographed page of a solution, sent inline to the model.
type Image struct {
	MIMEType string
	Data     []byte
}

// Model is a hosted generative model constrained to the response schema.
// Generate returns the raw text of the first candidate.
type Model interface {
	Generate(ctx context.Context, prompt string, images []Image) (string, error)
}

const (
	MinImages = 1
	MaxImages = 5
)

const gradingInstruction = `You are an experienced math teacher grading a student's handwritten solution.
The student's work is provided as one or more photographs, in page order.

Grade the solution to the problem below.
- Give an integer score from 0 to 100. 100 means a complete, correct solution with clear reasoning.
- Give feedback as a list of short items in the order the student should read them.
- Each item has a short "title", an explanatory "text", and a "type":
  "success" for something done well, "error" for a mistake, "info" for a hint or remark.
- If a photograph is unreadable or unrelated to the problem, say so in an "error" item and score accordingly.

Respond with JSON only, matching the provided schema.

PROBLEM:
%s`

// BuildPrompt embeds the question text into the fixed grading prompt.
func BuildPrompt(question string) string {
	return fmt.Sprintf(gradingInstruction, strings.TrimSpace(question))
}
