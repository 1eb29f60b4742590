package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/netajam/filedress/filedress"
	"github.com/netajam/filedress/internal/ui"
	"github.com/netajam/filedress/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type progressMsg struct {
	current, total int
}

type summaryMsg struct {
	model.Summary
}

type errorMsg struct {
	summary model.Summary
	err     error
}

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app     *filedress.App
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	state   state
	current int
	total   int
	summary model.Summary
	err     error
	program *programRef
}

// programRef lets the progress callback reach the running program.
type programRef struct {
	p *tea.Program
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

// New creates the progress view for app. Cancelling the view with ctrl+c
// cancels the run.
func New(ctx context.Context, app *filedress.App) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ctx, cancel := context.WithCancel(ctx)
	ref := &programRef{}
	app.SetProgressCallback(func(current, total int) {
		if ref.p != nil {
			ref.p.Send(progressMsg{current: current, total: total})
		}
	})

	return Model{
		app:     app,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
		state:   stateProcessing,
		program: ref,
	}
}

// SetProgram connects progress updates to p. Call it before p.Run.
func (m Model) SetProgram(p *tea.Program) {
	m.program.p = p
}

// Result returns the summary and error of the finished run.
func (m Model) Result() (model.Summary, error) {
	return m.summary, m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, nil
		}

	case progressMsg:
		m.current, m.total = msg.current, msg.total
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg.Summary
		m.cancel()
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.summary = msg.summary
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.total > 0 {
			return fmt.Sprintf("%s Processing... %d/%d files\n", m.spinner.View(), m.current, m.total)
		}
		return fmt.Sprintf("%s Processing...\n", m.spinner.View())
	case stateError:
		return m.renderSummary() + errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m Model) renderSummary() string {
	var b strings.Builder

	for _, o := range m.summary.Outcomes {
		switch o.Status {
		case model.StatusSkipped:
			continue
		case model.StatusFailed:
			b.WriteString(errorStyle.Render(ui.Line(o)))
		default:
			b.WriteString(successStyle.Render(ui.Line(o)))
		}
		b.WriteString("\n")
	}

	if len(m.summary.Outcomes) > 0 {
		changed := len(m.summary.Outcomes) - m.summary.Count(model.StatusSkipped) - m.summary.Count(model.StatusFailed)
		b.WriteString(faintStyle.Render(fmt.Sprintf("Changed: %d  Skipped: %d  Failed: %d",
			changed, m.summary.Count(model.StatusSkipped), m.summary.Count(model.StatusFailed))))
		b.WriteString("\n")
	}

	if m.summary.Message != "" {
		b.WriteString(headerStyle.Render(m.summary.Message))
		b.WriteString("\n")
	} else if len(m.summary.Outcomes) == 0 && m.err == nil {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) runApp() tea.Msg {
	summary, err := m.app.Execute(m.ctx)
	if err != nil {
		// Check for detailed error to print stack
		if e, ok := err.(*filedress.DetailedError); ok {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{summary: summary, err: err}
	}
	return summaryMsg{Summary: summary}
}
