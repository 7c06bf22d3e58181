package solver

import "time"

// QuestionStatus identifies a question's progress within a batch.
type QuestionStatus int

const (
	// QuestionQueued means the question is waiting to be dispatched.
	QuestionQueued QuestionStatus = iota
	// QuestionRunning means the question's evaluation is in flight.
	QuestionRunning
	// QuestionAnswered means the question produced an answer result.
	QuestionAnswered
	// QuestionFailed means the question produced an error result.
	QuestionFailed
)

// QuestionEvent is a progress update for one question in a batch.
type QuestionEvent struct {
	BatchID      string
	Index        int
	QuestionID   string
	QuestionText string
	Status       QuestionStatus
	Tokens       int
	Error        string
	EmittedAt    time.Time
}

// BatchObserver receives progress callbacks while a batch is solved.
// Implementations must not block: events are emitted from worker goroutines.
type BatchObserver interface {
	OnBatchStart(batchID string, total int)
	OnQuestionEvent(event QuestionEvent)
	OnBatchEnd(batchID string, result BatchResult)
}
