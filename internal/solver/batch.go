package solver

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"examsolver/internal/question"
)

// errInternal marks a result recovered from a panicking evaluation task.
// A crashed task still yields an error record instead of a silent drop.
const errInternal = "Internal evaluation failure"

// QuestionSolver evaluates a single question into exactly one result.
type QuestionSolver interface {
	Solve(ctx context.Context, item question.Question) Result
}

// Config wires dependencies for a batch solver.
type Config struct {
	Evaluator QuestionSolver
	// Workers bounds concurrent evaluations; zero or negative means full
	// fan-out (one in-flight evaluation per question).
	Workers  int
	Observer BatchObserver
	Logger   *log.Logger
}

// Solver fans a batch of questions out to concurrent evaluations and
// aggregates the results with token accounting.
type Solver struct {
	evaluator QuestionSolver
	workers   int
	observer  BatchObserver
	logger    *log.Logger
}

// New constructs a batch solver.
func New(cfg Config) *Solver {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Solver{
		evaluator: cfg.Evaluator,
		workers:   cfg.Workers,
		observer:  cfg.Observer,
		logger:    logger,
	}
}

// indexedResult pairs a result with its input position for ordered fan-in.
type indexedResult struct {
	index  int
	result Result
}

// SolveBatch evaluates all questions concurrently and returns one result
// per input question in input order. A failing or even panicking task never
// cancels its siblings; every outcome is classified into a result.
func (s *Solver) SolveBatch(ctx context.Context, questions []question.Question) BatchResult {
	batchID := uuid.NewString()
	total := len(questions)
	s.logger.Printf("[solver] batch %s started questions=%d", batchID, total)
	if s.observer != nil {
		s.observer.OnBatchStart(batchID, total)
		for index, item := range questions {
			s.emit(batchID, index, item, QuestionEvent{Status: QuestionQueued})
		}
	}

	results := make([]Result, total)
	resultCh := make(chan indexedResult, total)
	semaphore := s.semaphore(total)

	for index, item := range questions {
		go func(index int, item question.Question) {
			if semaphore != nil {
				semaphore <- struct{}{}
				defer func() { <-semaphore }()
			}
			s.emit(batchID, index, item, QuestionEvent{Status: QuestionRunning})
			resultCh <- indexedResult{index: index, result: s.solveOne(ctx, batchID, item)}
		}(index, item)
	}

	for completed := 0; completed < total; completed++ {
		item := <-resultCh
		results[item.index] = item.result
		s.emitDone(batchID, item.index, questions[item.index], item.result)
	}

	batchResult := BatchResult{
		Results:      results,
		TokenSummary: Summarize(results),
	}
	s.logger.Printf("[solver] batch %s finished questions=%d tokens=%d",
		batchID, batchResult.TokenSummary.TotalQuestions, batchResult.TokenSummary.TotalTokens)
	if s.observer != nil {
		s.observer.OnBatchEnd(batchID, batchResult)
	}
	return batchResult
}

// solveOne runs a single evaluation, converting a panic into an error result.
func (s *Solver) solveOne(ctx context.Context, batchID string, item question.Question) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Printf("[solver] batch %s recovered panic for question %q: %v", batchID, item.ID, recovered)
			result = Result{QuestionID: item.ID, Error: errInternal}
		}
	}()
	return s.evaluator.Solve(ctx, item)
}

// semaphore returns a worker-bounding channel, or nil for full fan-out.
func (s *Solver) semaphore(total int) chan struct{} {
	if s.workers <= 0 || s.workers >= total {
		return nil
	}
	return make(chan struct{}, s.workers)
}

// emit sends a progress event when an observer is attached.
func (s *Solver) emit(batchID string, index int, item question.Question, event QuestionEvent) {
	if s.observer == nil {
		return
	}
	event.BatchID = batchID
	event.Index = index
	event.QuestionID = item.ID
	event.QuestionText = item.Text
	event.EmittedAt = time.Now()
	s.observer.OnQuestionEvent(event)
}

// emitDone sends the terminal event for a completed question.
func (s *Solver) emitDone(batchID string, index int, item question.Question, result Result) {
	if s.observer == nil {
		return
	}
	event := QuestionEvent{Status: QuestionAnswered, Tokens: result.TokensUsed.TotalTokens}
	if result.Error != "" {
		event = QuestionEvent{Status: QuestionFailed, Error: result.Error}
	}
	s.emit(batchID, index, item, event)
}
