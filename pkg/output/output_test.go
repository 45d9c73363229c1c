package output

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T, f func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(nil)
	f()
	return buf.String()
}

func TestStyledMessages(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string)
		marker string
	}{
		{"success", Success, "✔"},
		{"error", Error, "✖"},
		{"warn", Warn, "!"},
		{"info", Info, "ℹ"},
		{"step", Step, "   "},
		{"header", Header, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capture(t, func() { tt.fn("scanned 3 files") })
			if !strings.Contains(got, "scanned 3 files") {
				t.Errorf("output missing message: %q", got)
			}
			if !strings.Contains(got, tt.marker) {
				t.Errorf("output missing marker %q: %q", tt.marker, got)
			}
		})
	}
}

func TestVerbose(t *testing.T) {
	defer SetVerbose(false)

	if got := capture(t, func() { Verbose("hidden") }); got != "" {
		t.Errorf("verbose output should be empty when disabled, got %q", got)
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("SetVerbose(true) should enable verbose mode")
	}
	if got := capture(t, func() { Verbose("shown") }); !strings.Contains(got, "shown") {
		t.Errorf("verbose output missing message: %q", got)
	}
}

func TestRunWithSpinner_NoTerminal(t *testing.T) {
	// test binaries do not run with a terminal on stderr
	called := false
	err := RunWithSpinner(context.Background(), "scanning", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("step was not executed")
	}
}

func TestSpinnerModel_Done(t *testing.T) {
	m := newSpinnerModel("analyzing")
	if !strings.Contains(m.View(), "analyzing...") {
		t.Errorf("running view = %q", m.View())
	}

	m.Update(spinnerDoneMsg{err: errors.New("boom")})
	if !m.done || m.err == nil {
		t.Fatal("done message not recorded")
	}
	if !strings.Contains(m.View(), "✖") {
		t.Errorf("failed view = %q", m.View())
	}
}
