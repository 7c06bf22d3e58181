package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"examsolver/internal/solver"
)

// formatQuestionID returns the display id for a question row.
func formatQuestionID(row QuestionRow) string {
	if row.ID != "" {
		return row.ID
	}
	return formatIndex(row.Index)
}

// formatIndex formats a question index.
func formatIndex(index int) string {
	return "Q" + pad2(index+1)
}

// pad2 left-pads a number to two digits when needed.
func pad2(value int) string {
	if value >= 10 {
		return fmtInt(value)
	}
	return "0" + fmtInt(value)
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatQuestionText truncates question text for display.
func formatQuestionText(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}
	const limit = 80
	if len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

// formatStatus renders a status cell for a row.
func formatStatus(row QuestionRow, noColor bool) string {
	label := statusLabel(row.Status)
	if row.Status == solver.QuestionFailed && row.Error != "" {
		label = label + ": " + row.Error
	}
	if noColor {
		return label
	}
	return statusStyle(row.Status).Render(label)
}

// statusLabel maps status codes to display labels.
func statusLabel(status solver.QuestionStatus) string {
	switch status {
	case solver.QuestionQueued:
		return "queued"
	case solver.QuestionRunning:
		return "running"
	case solver.QuestionAnswered:
		return "answered"
	case solver.QuestionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row QuestionRow, now time.Time) string {
	if !row.FinishedAt.IsZero() && !row.StartedAt.IsZero() {
		return row.FinishedAt.Sub(row.StartedAt).Round(100 * time.Millisecond).String()
	}
	if !row.StartedAt.IsZero() {
		return now.Sub(row.StartedAt).Round(100 * time.Millisecond).String()
	}
	return ""
}

// formatTokens formats token counts for display.
func formatTokens(tokens int) string {
	if tokens <= 0 {
		return "n/a"
	}
	return fmtInt(tokens)
}

// formatBatchEnd formats the batch completion message.
func formatBatchEnd(summary solver.Summary) string {
	return "Batch complete: " + fmtInt(summary.TotalQuestions) + " questions, " +
		fmtInt(summary.TotalTokens) + " tokens"
}

// statusStyle selects a style for a given status.
func statusStyle(status solver.QuestionStatus) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case solver.QuestionAnswered:
		color = lipgloss.Color("42")
	case solver.QuestionFailed:
		color = lipgloss.Color("196")
	case solver.QuestionRunning:
		color = lipgloss.Color("33")
	case solver.QuestionQueued:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
