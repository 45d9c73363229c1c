package analyzer

import (
	"github.com/simonhull/heron/pkg/filesystem"
	"github.com/simonhull/heron/pkg/logger"
)

// ModuleMetrics is the connectivity of one module.
type ModuleMetrics struct {
	InDegree  int  `json:"in_degree"`
	OutDegree int  `json:"out_degree"`
	Lines     *int `json:"lines,omitempty"`
}

// SizeLookup reports the line count of a module, if known.
type SizeLookup interface {
	Size(id string) (int, bool)
}

// SizeFunc adapts a function to SizeLookup.
type SizeFunc func(id string) (int, bool)

// Size implements SizeLookup.
func (f SizeFunc) Size(id string) (int, bool) {
	return f(id)
}

// ComputeMetrics returns in/out degree for every node. Lines is set only
// when sizes is non-nil and knows the module.
func ComputeMetrics(g Graph, sizes SizeLookup) map[string]ModuleMetrics {
	in := inDegrees(g)
	nodes := g.Nodes()

	metrics := make(map[string]ModuleMetrics, len(nodes))
	for _, id := range nodes {
		m := ModuleMetrics{
			InDegree:  in[id],
			OutDegree: len(g.Neighbors(id)),
		}
		if sizes != nil {
			if n, ok := sizes.Size(id); ok {
				lines := n
				m.Lines = &lines
			}
		}
		metrics[id] = m
	}
	return metrics
}

// Locator finds the file defining a module.
type Locator interface {
	Lookup(id string) (string, bool)
}

// LineCounter counts lines of module files found through a Locator.
// Modules without a file, unreadable files and non-UTF-8 files have no size.
type LineCounter struct {
	files  Locator
	logger logger.Logger
}

// NewLineCounter creates a LineCounter.
func NewLineCounter(files Locator) *LineCounter {
	return &LineCounter{files: files, logger: logger.Default()}
}

// WithLogger returns a new LineCounter with the specified logger
func (c *LineCounter) WithLogger(log logger.Logger) *LineCounter {
	return &LineCounter{files: c.files, logger: log}
}

// Size implements SizeLookup.
func (c *LineCounter) Size(id string) (int, bool) {
	path, ok := c.files.Lookup(id)
	if !ok {
		return 0, false
	}
	n, err := filesystem.CountLines(path)
	if err != nil {
		c.logger.Debug("Line count unavailable", logger.F("module", id), logger.F("error", err))
		return 0, false
	}
	return n, true
}
