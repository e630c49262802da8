package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// markdownWrap is the word-wrap column for rendered certificates.
const markdownWrap = 80

// RenderMarkdown renders md for the terminal. Styled output follows the
// terminal's light or dark background; plain "notty" styling is used when
// color is disabled or styled is false.
func RenderMarkdown(md string, styled bool) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if styled && HasColorSupport() {
		style = glamour.WithAutoStyle()
	}

	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
