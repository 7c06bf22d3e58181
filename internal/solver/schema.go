package solver

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"examsolver/internal/question"
)

// AnswerFormat selects the structured output shape for one evaluation call.
// It is a closed set: exactly one format exists per question type.
type AnswerFormat int

const (
	// FormatSingleIndex constrains the model to one option index (mcq).
	FormatSingleIndex AnswerFormat = iota
	// FormatIndexSet constrains the model to a set of option indices (msq).
	FormatIndexSet
	// FormatFreeText constrains the model to a free-text answer (numerical).
	FormatFreeText
)

const (
	schemaSingleIndex = `{
  "type": "object",
  "properties": {"option_index": {"type": "integer"}},
  "required": ["option_index"],
  "additionalProperties": false
}`
	schemaIndexSet = `{
  "type": "object",
  "properties": {"option_indices": {"type": "array", "items": {"type": "integer"}}},
  "required": ["option_indices"],
  "additionalProperties": false
}`
	schemaFreeText = `{
  "type": "object",
  "properties": {"text_answer": {"type": "string"}},
  "required": ["text_answer"],
  "additionalProperties": false
}`
)

var (
	compiledSingleIndex = jsonschema.MustCompileString("mcq_answer.json", schemaSingleIndex)
	compiledIndexSet    = jsonschema.MustCompileString("msq_answer.json", schemaIndexSet)
	compiledFreeText    = jsonschema.MustCompileString("text_answer.json", schemaFreeText)
)

// FormatFor returns the answer format for a question type.
func FormatFor(t question.Type) AnswerFormat {
	switch t.Normalize() {
	case question.TypeMSQ:
		return FormatIndexSet
	case question.TypeNumerical:
		return FormatFreeText
	default:
		return FormatSingleIndex
	}
}

// Name returns the schema name advertised to the model.
func (f AnswerFormat) Name() string {
	switch f {
	case FormatIndexSet:
		return "msq_answer"
	case FormatFreeText:
		return "text_answer"
	default:
		return "mcq_answer"
	}
}

// SchemaJSON returns the JSON Schema document for the format.
func (f AnswerFormat) SchemaJSON() string {
	switch f {
	case FormatIndexSet:
		return schemaIndexSet
	case FormatFreeText:
		return schemaFreeText
	default:
		return schemaSingleIndex
	}
}

// compiled returns the compiled schema for output validation.
func (f AnswerFormat) compiled() *jsonschema.Schema {
	switch f {
	case FormatIndexSet:
		return compiledIndexSet
	case FormatFreeText:
		return compiledFreeText
	default:
		return compiledSingleIndex
	}
}

// Answer is the parsed structured output of one evaluation call.
type Answer struct {
	OptionIndices []int
	TextAnswer    string
}

// ParseAnswer validates structured model output against the format's schema
// and extracts the answer payload. A single-index answer is widened to a
// one-element index slice so mcq and msq results share a shape.
func ParseAnswer(format AnswerFormat, content string) (Answer, error) {
	var raw any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Answer{}, fmt.Errorf("parse structured output: %w", err)
	}
	if err := format.compiled().Validate(raw); err != nil {
		return Answer{}, fmt.Errorf("validate structured output: %w", err)
	}

	switch format {
	case FormatIndexSet:
		var payload struct {
			OptionIndices []int `json:"option_indices"`
		}
		if err := json.Unmarshal([]byte(content), &payload); err != nil {
			return Answer{}, fmt.Errorf("decode structured output: %w", err)
		}
		if payload.OptionIndices == nil {
			payload.OptionIndices = []int{}
		}
		return Answer{OptionIndices: payload.OptionIndices}, nil
	case FormatFreeText:
		var payload struct {
			TextAnswer string `json:"text_answer"`
		}
		if err := json.Unmarshal([]byte(content), &payload); err != nil {
			return Answer{}, fmt.Errorf("decode structured output: %w", err)
		}
		return Answer{TextAnswer: payload.TextAnswer}, nil
	default:
		var payload struct {
			OptionIndex int `json:"option_index"`
		}
		if err := json.Unmarshal([]byte(content), &payload); err != nil {
			return Answer{}, fmt.Errorf("decode structured output: %w", err)
		}
		return Answer{OptionIndices: []int{payload.OptionIndex}}, nil
	}
}
