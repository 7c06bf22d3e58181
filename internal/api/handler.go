package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"examsolver/internal/question"
	"examsolver/internal/solver"
)

// Client-facing error messages. Causes are logged server-side only.
const (
	msgInvalidPayload = "Invalid payload format. Expected JSON array."
	msgInternalError  = "Internal server processing failure."
)

// BatchSolver abstracts the batch orchestrator for the HTTP boundary.
type BatchSolver interface {
	SolveBatch(ctx context.Context, questions []question.Question) solver.BatchResult
}

// Config wires dependencies for the HTTP handler.
type Config struct {
	Solver BatchSolver
	Logger *log.Logger
}

// NewHandler builds the HTTP handler for the exam solving API.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{solver: cfg.Solver, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/solve", h.handleSolve)
	return mux
}

type handler struct {
	solver BatchSolver
	logger *log.Logger
}

// handleSolve accepts a JSON array of questions and returns the batch result.
// Structurally invalid requests get a 400; a wholly unexpected failure in
// orchestration gets a 500 with a generic message.
func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			h.logger.Printf("[api] batch processing panic: %v", recovered)
			writeError(w, http.StatusInternalServerError, msgInternalError)
		}
	}()

	questions, ok := decodeQuestions(r.Body)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	result := h.solver.SolveBatch(r.Context(), questions)
	writeBatchResult(w, http.StatusOK, result)
}

// decodeQuestions parses the request body, requiring a JSON array. An empty
// array is valid and yields an empty batch.
func decodeQuestions(body io.Reader) ([]question.Question, bool) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, false
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var questions []question.Question
	if err := json.Unmarshal(trimmed, &questions); err != nil {
		return nil, false
	}
	return questions, true
}
