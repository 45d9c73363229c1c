package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetOutput redirects all styled output. Passing nil restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetVerbose enables or disables verbose output.
// The CLI calls this when --verbose is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verboseMode
}

func emit(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// Success prints a completed-operation message in green.
//
//	output.Success("Report written to deps.json")
func Success(msg string) {
	emit(successStyle.Render("✔ " + msg))
}

// Error prints a failure in red.
func Error(msg string) {
	emit(errorStyle.Render("✖ " + msg))
}

// Warn prints a non-fatal problem in yellow.
func Warn(msg string) {
	emit(warnStyle.Render("! " + msg))
}

// Info prints a status line in cyan.
func Info(msg string) {
	emit(infoStyle.Render("ℹ " + msg))
}

// Header prints a bold section title.
func Header(msg string) {
	emit(headerStyle.Render(msg))
}

// Step prints an indented sub-item in gray.
//
//	output.Step("app.main -> app.util")
func Step(msg string) {
	emit(stepStyle.Render("   " + msg))
}

// Verbose prints msg only when verbose mode is enabled.
func Verbose(msg string) {
	if IsVerbose() {
		emit(stepStyle.Render("… " + msg))
	}
}
