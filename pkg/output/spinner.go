package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of stdout, or fallback when unknown.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// RunWithSpinner runs step while a spinner labelled message animates on
// stderr. Without a terminal on stderr step runs plainly.
func RunWithSpinner(ctx context.Context, message string, step func(ctx context.Context) error) error {
	if !IsTerminal(os.Stderr) {
		return step(ctx)
	}
	return runWithSpinner(ctx, os.Stderr, message, step)
}

func runWithSpinner(ctx context.Context, w io.Writer, message string, step func(ctx context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- step(ctx)
	}()

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(w), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		// spinner failures must not affect the step result
		_, _ = p.Run()
	}()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})

	select {
	case <-finished:
	case <-time.After(100 * time.Millisecond):
		p.Quit()
		<-finished
	}
	return err
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
	}
	if m.err != nil {
		return errorStyle.Render("✖ "+m.message) + "\n"
	}
	return successStyle.Render("✔ "+m.message) + "\n"
}
