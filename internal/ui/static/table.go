// Package static provides non-interactive terminal output components.
//
// This package contains components for rendering formatted output
// that does not require user interaction, such as the branch table
// printed by one-shot commands.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which calculates
// column widths based on content. No borders are rendered. Columns
// listed in numeric are right-aligned, which keeps count columns
// readable when digits vary in width.
func RenderTable(headers []string, rows [][]string, numeric ...int) string {
	if len(rows) == 0 {
		return ""
	}

	rightAligned := make(map[int]bool, len(numeric))
	for _, col := range numeric {
		rightAligned[col] = true
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(2)
			if rightAligned[col] {
				s = s.Align(lipgloss.Right)
			}
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}
