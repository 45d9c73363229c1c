// Package output renders heron's human-facing terminal output.
//
// # Usage
//
//	output.Success("Scanned 42 files")
//	output.Info("Cycles:")
//	output.Step("app.models -> app.views -> app.models")
//	output.Warn("3 imports could not be resolved")
//	output.Error("report not found")
//
// # Verbose Mode
//
//	output.SetVerbose(true)
//	output.Verbose("resolving with the verified strategy")
//
// # Spinner
//
// RunWithSpinner shows a bubbletea spinner on stderr while a long step runs.
// When stderr is not a terminal the step runs without any animation.
package output
