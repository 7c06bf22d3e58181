package live

import (
	"fmt"

	"examsolver/internal/solver"
)

// Reduce applies a question event to the UI state.
func Reduce(state State, event solver.QuestionEvent) State {
	state = ensureRow(state, event.Index)
	state = applyQuestionEvent(state, event)
	state.Counts = recount(state.Rows)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, index int) State {
	if index < 0 || index < len(state.Rows) {
		return state
	}
	rows := make([]QuestionRow, index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = QuestionRow{Index: i, Status: solver.QuestionQueued}
	}
	state.Rows = rows
	return state
}

// applyQuestionEvent updates a row with the given event.
func applyQuestionEvent(state State, event solver.QuestionEvent) State {
	if event.Index < 0 || event.Index >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.Index]
	if row.ID == "" {
		row.ID = event.QuestionID
	}
	if row.Text == "" {
		row.Text = event.QuestionText
	}
	row.Status = event.Status
	if event.Status == solver.QuestionRunning && row.StartedAt.IsZero() {
		row.StartedAt = event.EmittedAt
	}
	if isTerminalStatus(event.Status) {
		if !event.EmittedAt.IsZero() {
			row.FinishedAt = event.EmittedAt
		}
		row.Tokens = event.Tokens
		row.Error = event.Error
	}
	state.Rows[event.Index] = row
	return state
}

// isTerminalStatus reports whether a status is final.
func isTerminalStatus(status solver.QuestionStatus) bool {
	return status == solver.QuestionAnswered || status == solver.QuestionFailed
}

// recount recomputes status counts for the current rows.
func recount(rows []QuestionRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case solver.QuestionQueued:
			counts.Queued++
		case solver.QuestionRunning:
			counts.Running++
		case solver.QuestionAnswered:
			counts.Done++
			counts.Answered++
		case solver.QuestionFailed:
			counts.Done++
			counts.Failed++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event solver.QuestionEvent) string {
	switch event.Status {
	case solver.QuestionAnswered:
		return fmt.Sprintf("Q%d answered", event.Index+1)
	case solver.QuestionFailed:
		return fmt.Sprintf("Q%d failed: %s", event.Index+1, event.Error)
	}
	return ""
}
