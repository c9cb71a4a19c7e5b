package llm

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// ProgressEvent represents a single progress update during a run.
type ProgressEvent struct {
	Type    string `json:"type"`               // "info", "wait", "done", "error"
	Message string `json:"message,omitempty"`  // human-readable message
	ModelMs int    `json:"model_ms,omitempty"` // model latency, for "done"
	Tokens  int    `json:"tokens,omitempty"`   // input+output tokens, for "done"
}

// ProgressEmitter receives progress events during a run.
type ProgressEmitter interface {
	Emit(event ProgressEvent)
}

// TextEmitter formats progress events as human-readable text for CLI output.
// On a terminal, "wait" events animate a spinner until the next event.
type TextEmitter struct {
	W    io.Writer
	spin *spinner.Spinner
}

// NewTextEmitter creates a TextEmitter writing to w.
func NewTextEmitter(w io.Writer) *TextEmitter {
	e := &TextEmitter{W: w}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		e.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	}
	return e
}

// Emit writes a formatted progress line to the underlying writer.
func (e *TextEmitter) Emit(ev ProgressEvent) {
	e.stopSpinner()

	switch ev.Type {
	case "wait":
		if e.spin != nil {
			e.spin.Suffix = " " + ev.Message
			e.spin.Start()
			return
		}
		fmt.Fprintf(e.W, "  %s\n", ev.Message)
	case "info":
		fmt.Fprintf(e.W, "  %s\n", ev.Message)
	case "done":
		if stats := formatStats(ev); stats != "" {
			fmt.Fprintf(e.W, "  %s (%s)\n", ev.Message, stats)
		} else {
			fmt.Fprintf(e.W, "  %s\n", ev.Message)
		}
	case "error":
		fmt.Fprintf(e.W, "Error: %s\n", ev.Message)
	}
}

// Close stops a running spinner.
func (e *TextEmitter) Close() {
	e.stopSpinner()
}

func (e *TextEmitter) stopSpinner() {
	if e.spin != nil && e.spin.Active() {
		e.spin.Stop()
	}
}

func formatStats(ev ProgressEvent) string {
	switch {
	case ev.ModelMs > 0 && ev.Tokens > 0:
		return fmt.Sprintf("model %s, %s tok", formatDuration(ev.ModelMs), formatNumber(ev.Tokens))
	case ev.ModelMs > 0:
		return "model " + formatDuration(ev.ModelMs)
	case ev.Tokens > 0:
		return formatNumber(ev.Tokens) + " tok"
	}
	return ""
}

func formatDuration(ms int) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// formatNumber inserts thousands separators.
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
