package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dailymath/dailymath/internal/apperr"
)

// Response is the model output after validation.
type Response struct {
	// Score is a pointer so a missing score is told apart from 0.
	Score    *int       `json:"score" validate:"required,min=0,max=100"`
	Feedback []Feedback `json:"feedback" validate:"required,dive"`
}

type Feedback struct {
	Title string `json:"title" validate:"required"`
	Text  string `json:"text" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=success error info"`
}

// Parser decodes and validates model output. It never coerces: unknown
// fields, wrong types and out-of-range values are all rejected.
type Parser struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewParser() (*Parser, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return jsonName(fld.Tag.Get("json"))
	})
	return &Parser{validate: validate, trans: trans}, nil
}

// Parse returns an error wrapping apperr.ErrValidation for anything that is
// not exactly the response schema.
func (p *Parser) Parse(text string) (*Response, error) {
	body := stripCodeFence(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty model response", apperr.ErrValidation)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: model response is not valid JSON for the schema: %v", apperr.ErrValidation, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after model response", apperr.ErrValidation)
	}

	if err := p.validate.Struct(&resp); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Translate(p.trans))
		}
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(msgs, "; "))
	}
	return &resp, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func jsonName(tag string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
