// This file provides the interactive prompts, built on Charm Huh, that guard
// every destructive action.
//
// Prompts refuse to run without a terminal on stdin and return
// ErrMenuCanceled, so scripted callers must pass --yes instead.

package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Terminal layout constants.
const (
	// DefaultMenuWidth is the widest a prompt gets on a large terminal.
	DefaultMenuWidth = 100

	// TerminalEdgeMargin is the number of characters left between
	// prompt content and the terminal edge.
	TerminalEdgeMargin = 4

	// MinMenuWidth is the minimum usable width for prompt content.
	MinMenuWidth = 40
)

// EraseConfirmationWord must be typed verbatim before a wipe starts.
const EraseConfirmationWord = "ERASE"

// ErrMenuCanceled is an alias for errors.ErrMenuCanceled for package-local use.
// Returned when the user presses Esc or Ctrl+C, or stdin is not a terminal.
var ErrMenuCanceled = wcerrors.ErrMenuCanceled //nolint:gochecknoglobals // alias of a sentinel

// Option represents a selectable menu option.
type Option struct {
	// Label is the display text shown to the user.
	Label string
	// Description is optional help text shown after the label.
	Description string
	// Value is the value returned when this option is selected.
	Value string
}

// MenuConfig holds configuration for prompts.
type MenuConfig struct {
	// Width is the maximum width for the prompt. If 0, adapts to terminal width.
	Width int
	// Accessible enables accessible mode for screen readers.
	Accessible bool
	// ShowKeyHints controls whether key hints are displayed.
	ShowKeyHints bool
}

// NewMenuConfig creates a MenuConfig with defaults.
// Accessible mode is enabled when the ACCESSIBLE environment variable is set.
func NewMenuConfig() *MenuConfig {
	_, accessible := os.LookupEnv("ACCESSIBLE")
	return &MenuConfig{
		Width:        DefaultMenuWidth,
		Accessible:   accessible,
		ShowKeyHints: true,
	}
}

// adaptWidth returns a prompt width that fits the terminal, capped at maxWidth.
func adaptWidth(maxWidth int) int {
	width := TerminalWidth()
	if width <= 0 {
		if maxWidth <= 0 {
			return DefaultMenuWidth
		}
		return maxWidth
	}

	available := width - TerminalEdgeMargin
	if maxWidth > 0 && maxWidth < available {
		return maxWidth
	}
	if available < MinMenuWidth {
		return MinMenuWidth
	}
	return available
}

// runFormWithConfig creates and runs a form with the given fields and config.
// The errorContext parameter is used to wrap unexpected form errors.
func runFormWithConfig(cfg *MenuConfig, errorContext string, fields ...huh.Field) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrMenuCanceled
	}

	CheckNoColor()

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(WipecertTheme()).
		WithWidth(adaptWidth(cfg.Width)).
		WithAccessible(cfg.Accessible).
		WithShowHelp(cfg.ShowKeyHints)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrMenuCanceled
		}
		return fmt.Errorf("%s: %w", errorContext, err)
	}
	return nil
}

// WipecertTheme returns a Huh theme using the semantic colors from styles.go.
func WipecertTheme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPrimary)

	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(ColorSuccess)

	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)

	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Help.Ellipsis = t.Help.Ellipsis.Foreground(ColorMuted)

	return t
}

// Select presents a single-selection menu and returns the selected value.
func Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", wcerrors.ErrNoDrivesFound
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		label := opt.Label
		if opt.Description != "" {
			label = opt.Label + " - " + opt.Description
		}
		huhOptions[i] = huh.NewOption(label, opt.Value)
	}

	var selected string
	field := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions...).
		Value(&selected)

	if err := runFormWithConfig(NewMenuConfig(), "select menu failed", field); err != nil {
		return "", err
	}
	return selected, nil
}

// Confirm presents a yes/no confirmation prompt.
func Confirm(message string, defaultYes bool) (bool, error) {
	confirmed := defaultYes

	field := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := runFormWithConfig(NewMenuConfig(), "confirm prompt failed", field); err != nil {
		return false, err
	}
	return confirmed, nil
}

// InputWithValidation presents an input prompt with a validation function.
func InputWithValidation(prompt, description string, validate func(string) error) (string, error) {
	var value string

	field := huh.NewInput().
		Title(prompt).
		Description(description).
		Value(&value).
		Validate(validate)

	if err := runFormWithConfig(NewMenuConfig(), "validated input prompt failed", field); err != nil {
		return "", err
	}
	return value, nil
}

// ValidateEraseWord accepts only the exact confirmation word.
func ValidateEraseWord(s string) error {
	if strings.TrimSpace(s) != EraseConfirmationWord {
		return fmt.Errorf("type %s to continue", EraseConfirmationWord)
	}
	return nil
}

// ConfirmErase runs the two-step confirmation for a destructive wipe:
// a yes/no prompt, then the confirmation word. It returns false, nil when
// the user answers no.
func ConfirmErase(target, summary string) (bool, error) {
	ok, err := Confirm(fmt.Sprintf("Permanently erase ALL data on %s?", target), false)
	if err != nil || !ok {
		return false, err
	}

	description := summary
	if description != "" {
		description += "\n"
	}
	description += "This cannot be undone."

	if _, err := InputWithValidation(
		fmt.Sprintf("Type %s to wipe %s", EraseConfirmationWord, target),
		description,
		ValidateEraseWord,
	); err != nil {
		return false, err
	}
	return true, nil
}
