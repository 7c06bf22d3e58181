package solver

import (
	"testing"

	"examsolver/internal/question"
)

// TestFormatFor verifies the format selected per question type.
func TestFormatFor(t *testing.T) {
	cases := []struct {
		input question.Type
		want  AnswerFormat
	}{
		{input: question.TypeMCQ, want: FormatSingleIndex},
		{input: question.TypeMSQ, want: FormatIndexSet},
		{input: question.TypeNumerical, want: FormatFreeText},
		{input: "", want: FormatSingleIndex},
		{input: "essay", want: FormatSingleIndex},
	}
	for _, tc := range cases {
		if got := FormatFor(tc.input); got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

// TestParseAnswerSingleIndex verifies mcq output widens to one index.
func TestParseAnswerSingleIndex(t *testing.T) {
	answer, err := ParseAnswer(FormatSingleIndex, `{"option_index": 2}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(answer.OptionIndices) != 1 || answer.OptionIndices[0] != 2 {
		t.Fatalf("unexpected indices: %+v", answer.OptionIndices)
	}
}

// TestParseAnswerIndexSet verifies msq output, including the empty set.
func TestParseAnswerIndexSet(t *testing.T) {
	answer, err := ParseAnswer(FormatIndexSet, `{"option_indices": [0, 3]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(answer.OptionIndices) != 2 || answer.OptionIndices[1] != 3 {
		t.Fatalf("unexpected indices: %+v", answer.OptionIndices)
	}

	empty, err := ParseAnswer(FormatIndexSet, `{"option_indices": []}`)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if empty.OptionIndices == nil || len(empty.OptionIndices) != 0 {
		t.Fatalf("expected empty non-nil indices, got %+v", empty.OptionIndices)
	}
}

// TestParseAnswerFreeText verifies numerical output.
func TestParseAnswerFreeText(t *testing.T) {
	answer, err := ParseAnswer(FormatFreeText, `{"text_answer": "42"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if answer.TextAnswer != "42" {
		t.Fatalf("unexpected text answer: %q", answer.TextAnswer)
	}
}

// TestParseAnswerRejectsInvalid verifies schema validation failures.
func TestParseAnswerRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		format  AnswerFormat
		content string
	}{
		{name: "not_json", format: FormatSingleIndex, content: `option 2`},
		{name: "wrong_field", format: FormatSingleIndex, content: `{"option_indices": [2]}`},
		{name: "wrong_type", format: FormatSingleIndex, content: `{"option_index": "two"}`},
		{name: "extra_field", format: FormatFreeText, content: `{"text_answer": "42", "units": "m"}`},
		{name: "non_integer_items", format: FormatIndexSet, content: `{"option_indices": ["a"]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseAnswer(tc.format, tc.content); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
