package solver

import (
	"fmt"
	"strings"

	"examsolver/internal/question"
	"examsolver/internal/vlm"
)

// promptSpec is the composed prompt for one question evaluation.
type promptSpec struct {
	format AnswerFormat
	system string
	parts  []vlm.ContentPart
}

// buildPrompt selects the answer format and composes the system instruction
// and user content blocks for a question. The image block, when present, is
// appended by the evaluator after the fetch succeeds.
func buildPrompt(item question.Question) promptSpec {
	format := FormatFor(item.Type)
	spec := promptSpec{
		format: format,
		system: systemInstruction(format, item.Options),
	}
	if text := userText(item); text != "" {
		spec.parts = append(spec.parts, vlm.TextPart(text))
	}
	return spec
}

// systemInstruction renders the per-format system prompt.
func systemInstruction(format AnswerFormat, options []string) string {
	switch format {
	case FormatFreeText:
		return "Analyze the provided educational question.\n" +
			"Solve the problem and return ONLY the final numerical or string answer required.\n" +
			"Do not include units unless explicitly requested."
	case FormatIndexSet:
		return "Analyze the provided educational question and the corresponding options.\n" +
			"Options:\n" + enumerateOptions(options) + "\n\n" +
			"Determine the correct options. Return an array containing the integer indices of ALL correct options."
	default:
		return "Analyze the provided educational question and the corresponding options.\n" +
			"Options:\n" + enumerateOptions(options) + "\n\n" +
			"Determine the correct option. Return the integer index of the strictly correct option."
	}
}

// enumerateOptions renders options as "Index i: text" lines.
func enumerateOptions(options []string) string {
	lines := make([]string, 0, len(options))
	for i, option := range options {
		lines = append(lines, fmt.Sprintf("Index %d: %s", i, option))
	}
	return strings.Join(lines, "\n")
}

// userText joins the optional case-study context with the question text.
func userText(item question.Question) string {
	var builder strings.Builder
	if item.CaseStudyText != "" {
		builder.WriteString("Context / Case Study:\n")
		builder.WriteString(item.CaseStudyText)
		builder.WriteString("\n")
	}
	if item.Text != "" {
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("Question:\n")
		builder.WriteString(item.Text)
	}
	return builder.String()
}
