package question

import (
	"fmt"
	"strings"
)

// Issue captures a validation problem in a question batch.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("question batch validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// NormalizeBatch trims whitespace, normalizes question types, and validates
// a batch loaded from a file. The HTTP boundary does not run this check:
// a malformed submitted question surfaces as a per-question error result
// instead of rejecting the whole batch.
func NormalizeBatch(batch Batch) (Batch, error) {
	collector := &issueCollector{}
	if batch.Version == 0 {
		collector.add("version", "is required")
	} else if batch.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", batch.Version))
	}
	if len(batch.Questions) == 0 {
		collector.add("questions", "must include at least one entry")
	}

	seenIDs := map[string]struct{}{}
	for i, item := range batch.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		item = NormalizeQuestion(item)
		if item.ID != "" {
			if _, exists := seenIDs[item.ID]; exists {
				collector.add(prefix+".question_id", fmt.Sprintf("duplicate id %q", item.ID))
			} else {
				seenIDs[item.ID] = struct{}{}
			}
		}

		if item.Text == "" && item.ImageURL == "" {
			collector.add(prefix+".question_text", "question text or image_url is required")
		}

		if item.Type == TypeMCQ || item.Type == TypeMSQ {
			if len(item.Options) == 0 {
				collector.add(prefix+".options", "must include at least one entry")
			}
			for optionIndex, option := range item.Options {
				if option == "" {
					collector.add(fmt.Sprintf("%s.options[%d]", prefix, optionIndex), "is required")
				}
			}
		}
		batch.Questions[i] = item
	}

	if err := collector.result(); err != nil {
		return Batch{}, err
	}
	return batch, nil
}

// NormalizeQuestion trims string fields and applies the type default.
func NormalizeQuestion(item Question) Question {
	item.ID = strings.TrimSpace(item.ID)
	item.Type = item.Type.Normalize()
	item.Text = strings.TrimSpace(item.Text)
	item.CaseStudyText = strings.TrimSpace(item.CaseStudyText)
	item.ImageURL = strings.TrimSpace(item.ImageURL)
	item.Options = normalizeStringSlice(item.Options)
	return item
}

func normalizeStringSlice(values []string) []string {
	if values == nil {
		return nil
	}
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		normalized = append(normalized, strings.TrimSpace(value))
	}
	return normalized
}
