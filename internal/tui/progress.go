package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// ProgressBar wraps the charmbracelet/bubbles progress bar with wipecert styling.
// Supports adaptive width and NO_COLOR compatibility.
type ProgressBar struct {
	bar   progress.Model
	width int
}

// NewProgressBar creates a new progress bar.
// Uses a ColorPrimary gradient, or a solid fill in NO_COLOR mode.
// The percentage is not part of the bar; callers print it themselves.
func NewProgressBar(width int) *ProgressBar {
	var bar progress.Model

	if HasColorSupport() {
		bar = progress.New(
			progress.WithWidth(width),
			progress.WithScaledGradient("#0087AF", "#00D7FF"),
			progress.WithoutPercentage(),
		)
	} else {
		bar = progress.New(
			progress.WithWidth(width),
			progress.WithSolidFill("#808080"),
			progress.WithoutPercentage(),
		)
	}

	return &ProgressBar{
		bar:   bar,
		width: width,
	}
}

// Render returns the progress bar as a string for the given fraction (0.0-1.0).
// Uses ViewAs for static rendering (no animation).
func (pb *ProgressBar) Render(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return pb.bar.ViewAs(fraction)
}

// Width returns the current width of the progress bar.
func (pb *ProgressBar) Width() int {
	return pb.width
}

// phaseColumnWidth is wide enough for "Attempting to unmount /dev/nvme0n1..."
// to stay aligned with "Pass 1/3".
const phaseColumnWidth = 24

// logStep is the percentage step between lines in line mode.
const logStep = 10

// WipeProgress renders wipe progress reports.
//
// In live mode (a terminal) it redraws one line holding the phase, a bar and
// the percentage. Otherwise it prints a line whenever the phase changes or
// the percentage crosses a multiple of ten, so piped output stays short.
//
// Report is safe to call from the engine's worker goroutine.
type WipeProgress struct {
	mu          sync.Mutex
	w           io.Writer
	bar         *ProgressBar
	live        bool
	drawn       bool
	lastPhase   string
	lastPercent int
}

// NewWipeProgress creates a progress renderer writing to w.
func NewWipeProgress(w io.Writer, live bool, barWidth int) *WipeProgress {
	return &WipeProgress{
		w:           w,
		bar:         NewProgressBar(barWidth),
		live:        live,
		lastPercent: -1,
	}
}

// Report records a progress update. Its signature matches domain.ProgressFunc.
func (p *WipeProgress) Report(phase string, percent int) {
	percent = max(0, min(100, percent))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live {
		_, _ = fmt.Fprintf(p.w, "\r%s %s %3d%%", padRight(phase, phaseColumnWidth), p.bar.Render(float64(percent)/100), percent)
		p.drawn = true
		p.lastPhase, p.lastPercent = phase, percent
		return
	}

	if phase == p.lastPhase && percent/logStep == p.lastPercent/logStep {
		return
	}
	_, _ = fmt.Fprintf(p.w, "%s %d%%\n", phase, percent)
	p.lastPhase, p.lastPercent = phase, percent
}

// Finish ends the live line so later output starts on a fresh line.
func (p *WipeProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live && p.drawn {
		_, _ = fmt.Fprintln(p.w)
		p.drawn = false
	}
}
