// Package display renders an engine.Result for a terminal: a status
// line for mutating statements, or a fixed-width table for SELECT rows
// (spec §4.8), in the style of the original REPL's table formatter.
package display

import (
	"fmt"
	"sort"
	"strings"

	"ledgerlite/internal/types"
)

// Render returns the human-readable form of status/rows exactly as the
// CLI prints it: the status line verbatim if present, otherwise a
// table (or "(0 rows)" if empty).
func Render(status string, rows []types.Row) string {
	if status != "" {
		return status
	}
	return FormatTable(rows)
}

// FormatTable renders rows as a fixed-width, " | "-separated table
// with a header and a dashed separator sized to the header line's
// width, matching the original's format_table behavior of measuring
// the longest cell per column.
func FormatTable(rows []types.Row) string {
	if len(rows) == 0 {
		return "(0 rows)"
	}

	headers := columnOrder(rows)
	widths := make(map[string]int, len(headers))
	for _, h := range headers {
		widths[h] = len(h)
	}
	for _, row := range rows {
		for _, h := range headers {
			if l := len(cellString(row[h])); l > widths[h] {
				widths[h] = l
			}
		}
	}

	var b strings.Builder
	headerLine := formatRow(headers, widths, headers)
	b.WriteString(headerLine)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", len(headerLine)))
	for _, row := range rows {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = cellString(row[h])
		}
		b.WriteByte('\n')
		b.WriteString(formatRow(headers, widths, values))
	}
	return b.String()
}

// columnOrder returns the first row's keys in sorted order. Every row
// from the same SELECT shares the same key set, so the first row is
// representative.
func columnOrder(rows []types.Row) []string {
	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

func formatRow(headers []string, widths map[string]int, cells []string) string {
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = padRight(cells[i], widths[h])
	}
	return strings.Join(parts, " | ")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func cellString(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// RowCountMessage formats a mutation's affected-row count, matching the
// original's count phrasing for zero/one/many rows.
func RowCountMessage(verb string, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("0 rows %s", verb)
	case 1:
		return fmt.Sprintf("1 row %s", verb)
	default:
		return fmt.Sprintf("%d rows %s", count, verb)
	}
}
