// Package tui renders netkit results for terminals.
package tui

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/user/netkit/internal/util"
)

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunWithSpinner runs task while drawing a spinner with label on out.
// Pressing ctrl+c or q cancels the task's context; the spinner keeps going
// until the task returns.
func RunWithSpinner[T any](ctx context.Context, out io.Writer, label string, task func(context.Context) T) T {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var result T
	done := make(chan struct{})
	go func() {
		defer close(done)
		result = task(taskCtx)
	}()

	p := tea.NewProgram(newModel(label, done, cancel), tea.WithOutput(out), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		util.Debug("Spinner stopped: %v", err)
	}

	<-done
	return result
}

// spinnerModel is the spinner shown while a probe runs.
type spinnerModel struct {
	spinner  spinner.Model
	label    string
	done     <-chan struct{}
	cancel   context.CancelFunc
	finished bool
}

func newModel(label string, done <-chan struct{}, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)

	return spinnerModel{
		spinner: s,
		label:   label,
		done:    done,
		cancel:  cancel,
	}
}

// Init initializes the model.
func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitFor(m.done),
	)
}

// Update handles messages.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			m.label = "Cancelling..."
		}

	case doneMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m spinnerModel) View() string {
	if m.finished {
		return ""
	}
	return m.spinner.View() + " " + DimStyle.Render(m.label) + "\n"
}

type doneMsg struct{}

func waitFor(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}
