package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true)

// renderTable lays out rows under a bold header with two spaces between
// columns.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var builder strings.Builder
	writeRow := func(row []string, style func(string) string) {
		for i, cell := range row {
			if i == len(row)-1 {
				builder.WriteString(style(cell))
				break
			}
			builder.WriteString(style(cell))
			builder.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
		}
		builder.WriteByte('\n')
	}

	writeRow(headers, func(s string) string { return tableHeaderStyle.Render(s) })
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}

	return builder.String()
}
