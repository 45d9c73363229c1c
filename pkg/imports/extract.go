package imports

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/simonhull/heron/pkg/logger"
)

// Extraction holds the imports of every file handed to ExtractAll.
type Extraction struct {
	// Specs maps each file to its imports. Files that failed map to an
	// empty list.
	Specs map[string][]Spec
	// Failures maps files that could not be read or parsed to the cause.
	Failures map[string]error
}

// Count returns the total number of extracted specs.
func (e *Extraction) Count() int {
	n := 0
	for _, specs := range e.Specs {
		n += len(specs)
	}
	return n
}

// Extractor parses many files with a bounded pool of workers.
type Extractor struct {
	parser  Parser
	workers int
	logger  logger.Logger
}

// NewExtractor creates an Extractor. workers <= 0 uses runtime.NumCPU().
func NewExtractor(parser Parser, workers int) *Extractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Extractor{parser: parser, workers: workers, logger: logger.Default()}
}

// WithLogger returns a new Extractor with the specified logger
func (e *Extractor) WithLogger(log logger.Logger) *Extractor {
	return &Extractor{parser: e.parser, workers: e.workers, logger: log}
}

type extractJob struct {
	path string
}

type extractResult struct {
	path  string
	specs []Spec
	err   error
}

// ExtractAll reads and parses files concurrently. A file that cannot be read
// or parsed is logged and contributes no imports; only cancellation of ctx
// fails the whole run.
func (e *Extractor) ExtractAll(ctx context.Context, files []string) (*Extraction, error) {
	e.logger.Debug("Extracting imports",
		logger.F("files", len(files)),
		logger.F("workers", e.workers))

	out := &Extraction{
		Specs:    make(map[string][]Spec, len(files)),
		Failures: make(map[string]error),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := make(chan extractJob, len(files))
	results := make(chan extractResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go e.worker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- extractJob{path: f}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			e.logger.Warn("Skipping file", logger.F("file", r.path), logger.F("error", r.err))
			out.Failures[r.path] = r.err
			out.Specs[r.path] = []Spec{}
			continue
		}
		out.Specs[r.path] = r.specs
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("Import extraction complete",
		logger.F("files", len(out.Specs)),
		logger.F("imports", out.Count()),
		logger.F("failures", len(out.Failures)))

	return out, nil
}

func (e *Extractor) worker(ctx context.Context, jobs <-chan extractJob, results chan<- extractResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		specs, err := e.extractFile(ctx, job.path)
		results <- extractResult{path: job.path, specs: specs, err: err}
	}
}

func (e *Extractor) extractFile(ctx context.Context, path string) ([]Spec, error) {
	if limited, ok := e.parser.(interface{ MaxFileSize() int64 }); ok {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.Size() > limited.MaxFileSize() {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), limited.MaxFileSize())
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.parser.Parse(ctx, content, path)
}
