package solver

import (
	"encoding/json"

	"examsolver/internal/question"
)

// TokenUsage records the token cost of one completion call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Result is the normalized outcome of evaluating one question. Exactly one
// result is produced per question: either an answer payload with token usage
// or an error marker. Results are never mutated after creation.
type Result struct {
	QuestionID    string
	QuestionType  question.Type
	OptionIndices []int
	TextAnswer    string
	TokensUsed    TokenUsage
	Error         string
}

// errorResultJSON is the wire shape of a failed question.
type errorResultJSON struct {
	QuestionID string `json:"question_id"`
	Error      string `json:"error"`
}

// choiceResultJSON is the wire shape of an mcq or msq answer.
type choiceResultJSON struct {
	QuestionID    string        `json:"question_id"`
	QuestionType  question.Type `json:"question_type"`
	OptionIndices []int         `json:"option_indices"`
	TokensUsed    TokenUsage    `json:"tokens_used"`
}

// textResultJSON is the wire shape of a numerical answer.
type textResultJSON struct {
	QuestionID   string        `json:"question_id"`
	QuestionType question.Type `json:"question_type"`
	TextAnswer   string        `json:"text_answer"`
	TokensUsed   TokenUsage    `json:"tokens_used"`
}

// MarshalJSON emits the payload shape matching the question type: an error
// marker, a text answer, or an option index sequence. An msq answer with no
// correct options serializes as an empty array, not an absent field.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(errorResultJSON{QuestionID: r.QuestionID, Error: r.Error})
	}
	if r.QuestionType == question.TypeNumerical {
		return json.Marshal(textResultJSON{
			QuestionID:   r.QuestionID,
			QuestionType: r.QuestionType,
			TextAnswer:   r.TextAnswer,
			TokensUsed:   r.TokensUsed,
		})
	}
	indices := r.OptionIndices
	if indices == nil {
		indices = []int{}
	}
	return json.Marshal(choiceResultJSON{
		QuestionID:    r.QuestionID,
		QuestionType:  r.QuestionType,
		OptionIndices: indices,
		TokensUsed:    r.TokensUsed,
	})
}

// Summary aggregates token usage over all results in a batch.
type Summary struct {
	TotalQuestions    int `json:"total_questions"`
	TotalInputTokens  int `json:"total_input_tokens"`
	TotalOutputTokens int `json:"total_output_tokens"`
	TotalTokens       int `json:"total_tokens"`
}

// BatchResult is the combined outcome of one batch, constructed once per
// request and discarded after the response is sent.
type BatchResult struct {
	Results      []Result `json:"results"`
	TokenSummary Summary  `json:"token_summary"`
}

// Summarize computes the token summary for a result set. Error results carry
// zero usage, so absent usage naturally counts as zero.
func Summarize(results []Result) Summary {
	summary := Summary{TotalQuestions: len(results)}
	for _, result := range results {
		summary.TotalInputTokens += result.TokensUsed.InputTokens
		summary.TotalOutputTokens += result.TokensUsed.OutputTokens
		summary.TotalTokens += result.TokensUsed.TotalTokens
	}
	return summary
}
