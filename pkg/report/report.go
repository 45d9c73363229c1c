// Package report serializes and renders analysis results: JSON reports,
// Graphviz DOT, ASCII dependency trees and terminal summaries.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/simonhull/heron/pkg/analyzer"
)

// ErrNotReport is returned when a JSON document is not a heron report.
var ErrNotReport = errors.New("not a heron report")

// Report is the JSON document written by "heron scan --json".
type Report struct {
	RunID        string                            `json:"run_id"`
	GeneratedAt  time.Time                         `json:"generated_at"`
	Root         string                            `json:"root"`
	Mode         string                            `json:"mode"`
	Graph        map[string][]string               `json:"graph"`
	Cycles       []analyzer.Cycle                  `json:"cycles"`
	DeadModules  []string                          `json:"dead_modules"`
	Metrics      map[string]analyzer.ModuleMetrics `json:"metrics"`
	FilesScanned int                               `json:"files_scanned"`
	ImportsFound int                               `json:"imports_found"`
	Unresolved   []UnresolvedImport                `json:"unresolved_imports"`
	EntryPoints  []string                          `json:"entry_points"`
}

// UnresolvedImport is an import that produced no edge.
type UnresolvedImport struct {
	Module     string `json:"module"`
	Import     string `json:"import"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Suggestion string `json:"suggestion,omitempty"`
}

// New creates an empty report for a scan of root with a fresh run ID.
func New(root, mode string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Root:        root,
		Mode:        mode,
		Graph:       map[string][]string{},
		Cycles:      []analyzer.Cycle{},
		DeadModules: []string{},
		Metrics:     map[string]analyzer.ModuleMetrics{},
		Unresolved:  []UnresolvedImport{},
		EntryPoints: []string{},
	}
}

// Edges returns the number of edges in the report's graph.
func (r *Report) Edges() int {
	n := 0
	for _, targets := range r.Graph {
		n += len(targets)
	}
	return n
}

// WriteJSON writes r to path with two-space indentation, creating parent
// directories as needed.
func WriteJSON(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotReport, path, err)
	}
	if r.Graph == nil {
		return nil, fmt.Errorf("%w: %s has no graph", ErrNotReport, path)
	}
	return &r, nil
}
