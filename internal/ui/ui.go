package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/netajam/filedress/model"
)

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	FaintStyle   = lipgloss.NewStyle().Faint(true)
)

// Out receives per-file reports and summaries, Err receives diagnostics.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

func Header(format string, a ...interface{}) {
	fmt.Fprintln(Out, HeaderStyle.Render(fmt.Sprintf(format, a...)))
}

func Info(format string, a ...interface{}) {
	fmt.Fprintln(Out, InfoStyle.Render(fmt.Sprintf(format, a...)))
}

func Success(format string, a ...interface{}) {
	fmt.Fprintln(Out, SuccessStyle.Render(fmt.Sprintf(format, a...)))
}

func Warning(format string, a ...interface{}) {
	fmt.Fprintln(Err, WarningStyle.Render(fmt.Sprintf(format, a...)))
}

func Error(format string, a ...interface{}) {
	fmt.Fprintln(Err, ErrorStyle.Render(fmt.Sprintf(format, a...)))
}

// Line renders the one-line report of an outcome, without styling.
func Line(o model.Outcome) string {
	switch o.Status {
	case model.StatusAdded:
		return "[ADDED] Header in: " + o.Path
	case model.StatusReplaced:
		return "[REPLACED] Header in: " + o.Path
	case model.StatusRemoved:
		return "[REMOVED] Header from: " + o.Path
	case model.StatusCleaned:
		return "[CLEANED] Comments from: " + o.Path
	case model.StatusCopied:
		return "[PROCESSING] " + o.Path
	case model.StatusCreated:
		if o.Detail == "dir" {
			return "[CREATED DIR]  " + o.Path
		}
		return "[CREATED FILE] " + o.Path
	case model.StatusFailed:
		return fmt.Sprintf("[ERROR] %s: %v", o.Path, o.Err)
	default:
		if o.Detail != "" {
			return fmt.Sprintf("[SKIP] %s: %s", o.Detail, o.Path)
		}
		return "[SKIP] " + o.Path
	}
}

// Report prints one outcome.
func Report(o model.Outcome) {
	line := Line(o)
	switch o.Status {
	case model.StatusFailed:
		fmt.Fprintln(Out, ErrorStyle.Render(line))
	case model.StatusSkipped:
		fmt.Fprintln(Out, FaintStyle.Render(line))
	default:
		fmt.Fprintln(Out, SuccessStyle.Render(line))
	}
}

// PrintSummary prints every outcome followed by the closing message.
func PrintSummary(s model.Summary) {
	for _, o := range s.Outcomes {
		Report(o)
	}
	if s.Message != "" {
		fmt.Fprintln(Out)
		Header("%s", s.Message)
	}
}
