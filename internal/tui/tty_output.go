package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// columnGap separates table columns.
const columnGap = "  "

// TTYOutput renders status lines and tables with lipgloss styles for an
// interactive terminal.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
	table  *TableStyles
}

// NewTTYOutput returns an Output for a terminal. NO_COLOR is honored.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()

	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
		table:  NewTableStyles(),
	}
}

func (o *TTYOutput) line(style lipgloss.Style, icon, msg string) {
	_, _ = fmt.Fprintln(o.w, style.Render(icon+" "+msg))
}

// Success prints msg prefixed with a check mark.
func (o *TTYOutput) Success(msg string) { o.line(o.styles.Success, "✓", msg) }

// Warning prints msg prefixed with a warning sign.
func (o *TTYOutput) Warning(msg string) { o.line(o.styles.Warning, "⚠", msg) }

// Info prints msg prefixed with an info marker.
func (o *TTYOutput) Info(msg string) { o.line(o.styles.Info, "ℹ", msg) }

// Error prints err in red. An ActionableError's suggestion follows on a
// dimmed second line.
func (o *TTYOutput) Error(err error) {
	var ae *ActionableError
	if !errors.As(err, &ae) {
		o.line(o.styles.Error, "✗", err.Error())
		return
	}

	o.line(o.styles.Error, "✗", ae.Error())
	if ae.Suggestion != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+ae.Suggestion))
	}
}

// Table prints rows under headers. Cells beyond the header count are
// dropped and short rows are padded.
func (o *TTYOutput) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := columnWidths(headers, rows)
	o.tableRow(o.table.Header, headers, widths)
	for _, row := range rows {
		o.tableRow(o.table.Cell, row, widths)
	}
}

func (o *TTYOutput) tableRow(style lipgloss.Style, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = style.Render(padRight(cell, width))
	}
	_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, columnGap), " "))
}

// columnWidths measures visible runes, ignoring ANSI sequences in cells.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], utf8.RuneCountInString(stripANSI(row[i])))
		}
	}
	return widths
}

// JSON writes v indented by two spaces.
func (o *TTYOutput) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
