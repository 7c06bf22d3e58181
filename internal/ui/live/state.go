package live

import (
	"time"

	"examsolver/internal/solver"
)

// QuestionRow holds UI state for a single question.
type QuestionRow struct {
	Index      int
	ID         string
	Text       string
	Status     solver.QuestionStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Tokens     int
	Error      string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued   int
	Running  int
	Answered int
	Failed   int
	Done     int
}

// State captures the live UI state for one batch.
type State struct {
	BatchID     string
	Total       int
	StartedAt   time.Time
	LastEvent   string
	Rows        []QuestionRow
	Counts      StatusCounts
	Finished    bool
	TotalTokens int
}
