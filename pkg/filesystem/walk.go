package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs are common directories to skip during traversal
var DefaultIgnoreDirs = []string{
	"node_modules", "vendor", ".git", ".svn", ".hg",
	"dist", "build", "bin", "tmp", "temp",
	".idea", ".vscode", ".vs",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directory names to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File name patterns to skip (e.g. "*_pb2.py")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)
	SkipErrors     bool     // Skip unreadable entries instead of aborting
}

// Walk traverses a directory tree with configurable ignore patterns.
// The visitor is called for each file and directory that is not ignored.
// Return filepath.SkipDir from visitor to skip a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, info os.FileInfo) error) error {
	ignoreDirs := opts.IgnoreDirs
	if len(ignoreDirs) == 0 {
		ignoreDirs = DefaultIgnoreDirs
	}
	ignored := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignored[d] = true
	}

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if opts.SkipErrors && path != rootPath {
				return nil
			}
			return err
		}
		if path == rootPath {
			return visitor(path, info)
		}

		name := info.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if ignored[name] {
				return filepath.SkipDir
			}
			return visitor(path, info)
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}

		return visitor(path, info)
	})
}

// WalkWithDefaults walks a directory tree with default ignore patterns.
func WalkWithDefaults(rootPath string, visitor func(path string, info os.FileInfo) error) error {
	return Walk(rootPath, WalkOptions{}, visitor)
}
