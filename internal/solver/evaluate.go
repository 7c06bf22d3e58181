package solver

import (
	"context"
	"log"

	"examsolver/internal/question"
	"examsolver/internal/vlm"
)

// Generic per-question error markers returned to clients. The underlying
// cause is logged server-side only.
const (
	errImageFetch = "Image fetch failed"
	errProcessing = "VLM processing failed"
)

// ModelClient abstracts the vision model client.
type ModelClient interface {
	Complete(ctx context.Context, request vlm.CompletionRequest) (vlm.Completion, error)
}

// ImageFetcher abstracts remote image retrieval.
type ImageFetcher interface {
	FetchDataURI(ctx context.Context, url string) (string, error)
}

// Evaluator drives single questions through prompt construction, the
// schema-constrained model call, and result normalization.
type Evaluator struct {
	model  ModelClient
	images ImageFetcher
	logger *log.Logger
}

// NewEvaluator constructs an evaluator. A nil logger falls back to the
// default logger.
func NewEvaluator(model ModelClient, images ImageFetcher, logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Default()
	}
	return &Evaluator{model: model, images: images, logger: logger}
}

// Solve evaluates one question and always returns exactly one result.
// Failures are contained here: an image-fetch failure short-circuits before
// any model call, and model or schema failures become error results. Solve
// never returns a Go error to its caller.
func (e *Evaluator) Solve(ctx context.Context, item question.Question) Result {
	item = question.NormalizeQuestion(item)
	prompt := buildPrompt(item)

	if item.ImageURL != "" {
		dataURI, err := e.images.FetchDataURI(ctx, item.ImageURL)
		if err != nil {
			e.logger.Printf("[solver] image fetch failed for question %q url=%s: %v", item.ID, item.ImageURL, err)
			return Result{QuestionID: item.ID, Error: errImageFetch}
		}
		prompt.parts = append(prompt.parts, vlm.ImagePart(dataURI))
	}

	completion, err := e.model.Complete(ctx, vlm.CompletionRequest{
		System: prompt.system,
		User:   prompt.parts,
		Format: vlm.ResponseFormat{
			Name:   prompt.format.Name(),
			Schema: prompt.format.SchemaJSON(),
		},
	})
	if err != nil {
		e.logger.Printf("[solver] model call failed for question %q: %v", item.ID, err)
		return Result{QuestionID: item.ID, Error: errProcessing}
	}

	answer, err := ParseAnswer(prompt.format, completion.Content)
	if err != nil {
		e.logger.Printf("[solver] structured output rejected for question %q: %v", item.ID, err)
		return Result{QuestionID: item.ID, Error: errProcessing}
	}

	return Result{
		QuestionID:    item.ID,
		QuestionType:  item.Type,
		OptionIndices: answer.OptionIndices,
		TextAnswer:    answer.TextAnswer,
		TokensUsed: TokenUsage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
			TotalTokens:  completion.Usage.TotalTokens,
		},
	}
}
