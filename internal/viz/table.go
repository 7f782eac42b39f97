package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under headers with the current theme.
func Table(headers []string, rows [][]string) string {
	theme := CurrentTheme
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)
	odd := cell.Foreground(theme.Muted)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row%2 == 1:
				return odd
			}
			return cell
		})
	return t.String()
}
