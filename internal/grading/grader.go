package grading

import (
	"context"
	"fmt"
	"log"

	"github.com/dailymath/dailymath/internal/apperr"
)

// Grader runs one model call and validates its output.
type Grader struct {
	model  Model
	parser *Parser
	debug  bool
}

func NewGrader(model Model) (*Grader, error) {
	parser, err := NewParser()
	if err != nil {
		return nil, err
	}
	return &Grader{model: model, parser: parser}, nil
}

// WithDebug logs every raw model response before it is parsed.
func (g *Grader) WithDebug(debug bool) *Grader {
	g.debug = debug
	return g
}

func (g *Grader) Grade(ctx context.Context, question string, images []Image) (*Response, error) {
	if len(images) < MinImages || len(images) > MaxImages {
		return nil, fmt.Errorf("%w: between %d and %d images are required, got %d", apperr.ErrValidation, MinImages, MaxImages, len(images))
	}

	text, err := g.model.Generate(ctx, BuildPrompt(question), images)
	if err != nil {
		return nil, err
	}
	if g.debug {
		log.Printf("Raw model response: %s", text)
	}
	return g.parser.Parse(text)
}
