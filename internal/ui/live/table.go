package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// defaultColumns returns the table columns at the default width.
func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth sizes the table columns for the terminal width.
func columnsForWidth(width int) []table.Column {
	question := width - 40
	if question < 20 {
		question = 20
	}
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Question", Width: question},
		{Title: "Status", Width: 12},
		{Title: "Time", Width: 8},
		{Title: "Tokens", Width: 8},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatQuestionID(row),
			formatQuestionText(row.Text),
			formatStatus(row, noColor),
			formatRowDuration(row, now),
			formatTokens(row.Tokens),
		})
	}
	return rows
}
