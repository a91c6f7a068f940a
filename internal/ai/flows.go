package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var (
	ErrInvalidInput = errors.New("invalid ai flow input")
	ErrModelOutput  = errors.New("model output does not match schema")
)

type RecommendationType string

const (
	RecommendLearning  RecommendationType = "Learning"
	RecommendCommunity RecommendationType = "Community"
	RecommendEvent     RecommendationType = "Event"
)

type CategorizeInput struct {
	PostContent string `json:"postContent" validate:"required,max=10000"`
}

type CategorizeOutput struct {
	Category models.Category `json:"category" mapstructure:"category" validate:"category"`
}

type Resource struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type RecommendInput struct {
	UserTitle          string     `json:"userTitle" validate:"required,max=200"`
	AvailableResources []Resource `json:"availableResources" validate:"max=100,dive"`
}

type Recommendation struct {
	Type   RecommendationType `json:"type" mapstructure:"type" validate:"rectype"`
	Title  string             `json:"title" mapstructure:"title" validate:"required"`
	Reason string             `json:"reason" mapstructure:"reason" validate:"required"`
	Link   *string            `json:"link,omitempty" mapstructure:"link"`
}

type RecommendOutput struct {
	Recommendations []Recommendation `json:"recommendations" mapstructure:"recommendations" validate:"dive"`
}

// Flows holds the prompt flows. Each call is stateless and single-shot.
type Flows struct {
	client   Client
	validate *validator.Validate
}

func NewFlows(client Client) *Flows {
	return &Flows{client: client, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("rectype", func(fl validator.FieldLevel) bool {
		switch RecommendationType(fl.Field().String()) {
		case RecommendLearning, RecommendCommunity, RecommendEvent:
			return true
		}
		return false
	})
	return v
}

var categorizePrompt = template.Must(template.New("categorize").Parse(
	`Classify the following community post into exactly one category: STEM, Healthcare, or Public Health.

Post:
{{.PostContent}}`))

var recommendPrompt = template.Must(template.New("recommend").Parse(
	`The member works as: {{.UserTitle}}.
Recommend up to five items that would help their professional growth. Use type "Learning" for courses and resources, "Community" for discussions and people, "Event" for events.
Prefer the catalog below. Set link to the bracketed id when an item comes from it, otherwise null.

Catalog:
{{range .AvailableResources}}- [{{.ID}}] {{.Title}} ({{.Category}}): {{.Description}}
{{else}}(empty)
{{end}}`))

const systemPrompt = "You are the assistant of a professional community for STEM, Healthcare and Public Health members. Answer only with JSON matching the schema."

var categorizeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"category": map[string]any{
			"type": "string",
			"enum": []string{string(models.CategorySTEM), string(models.CategoryHealthcare), string(models.CategoryPublicHealth)},
		},
	},
	"required":             []string{"category"},
	"additionalProperties": false,
}

var recommendSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"recommendations": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":   map[string]any{"type": "string", "enum": []string{"Learning", "Community", "Event"}},
					"title":  map[string]any{"type": "string"},
					"reason": map[string]any{"type": "string"},
					"link":   map[string]any{"type": []string{"string", "null"}},
				},
				"required":             []string{"type", "title", "reason", "link"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"recommendations"},
	"additionalProperties": false,
}

func (f *Flows) CategorizePost(ctx context.Context, in CategorizeInput) (CategorizeOutput, error) {
	var out CategorizeOutput
	in.PostContent = strings.TrimSpace(in.PostContent)
	if err := f.run(ctx, in, categorizePrompt, "post_category", categorizeSchema, &out); err != nil {
		return CategorizeOutput{}, err
	}
	return out, nil
}

func (f *Flows) RecommendContent(ctx context.Context, in RecommendInput) (RecommendOutput, error) {
	var out RecommendOutput
	in.UserTitle = strings.TrimSpace(in.UserTitle)
	if err := f.run(ctx, in, recommendPrompt, "content_recommendations", recommendSchema, &out); err != nil {
		return RecommendOutput{}, err
	}
	if out.Recommendations == nil {
		out.Recommendations = []Recommendation{}
	}
	return out, nil
}

func (f *Flows) run(ctx context.Context, in any, tmpl *template.Template, schemaName string, schema map[string]any, out any) error {
	if err := f.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var prompt bytes.Buffer
	if err := tmpl.Execute(&prompt, in); err != nil {
		return fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}

	raw, err := f.client.GenerateJSON(ctx, systemPrompt, prompt.String(), schemaName, schema)
	if err != nil {
		return err
	}

	if err := decodeStrict(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrModelOutput, err)
	}
	if err := f.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrModelOutput, err)
	}
	return nil
}

// decodeStrict maps a model reply onto out, failing on missing or extra keys
// at any depth.
func decodeStrict(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		ErrorUnset:  true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
