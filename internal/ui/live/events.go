package live

import "examsolver/internal/solver"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventBatchStart signals the start of a batch.
	EventBatchStart EventKind = iota
	// EventQuestion delivers a question status update.
	EventQuestion
	// EventBatchEnd signals batch completion.
	EventBatchEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	BatchID  string
	Total    int
	Question solver.QuestionEvent
	Summary  solver.Summary
}
