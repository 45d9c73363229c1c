package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultSourceIgnoreDirs are skipped wherever they appear in a source tree.
var DefaultSourceIgnoreDirs = []string{"venv", ".venv", ".git", "__pycache__"}

// DefaultSourceExtensions selects Python sources.
var DefaultSourceExtensions = []string{".py"}

// ErrInvalidUTF8 is returned by CountLines for files that are not UTF-8 text.
var ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

// SourceOptions configures SourceFiles.
type SourceOptions struct {
	Extensions     []string // default: DefaultSourceExtensions
	IgnoreDirs     []string // default: DefaultSourceIgnoreDirs
	IgnorePatterns []string
}

// SourceFiles returns the absolute, sorted paths of every source file under
// root. Any path with a segment in IgnoreDirs is excluded, as is any entry
// whose top-level name under root starts with a dot. Hidden directories
// deeper in the tree are scanned.
func SourceFiles(root string, opts SourceOptions) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", root)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultSourceExtensions
	}
	ignoreDirs := opts.IgnoreDirs
	if len(ignoreDirs) == 0 {
		ignoreDirs = DefaultSourceIgnoreDirs
	}

	files := make([]string, 0, 64)
	err = Walk(absRoot, WalkOptions{
		IgnoreDirs:     ignoreDirs,
		IgnorePatterns: opts.IgnorePatterns,
		IncludeHidden:  true,
		SkipErrors:     true,
	}, func(path string, info os.FileInfo) error {
		if path == absRoot {
			return nil
		}
		if filepath.Dir(path) == absRoot && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !hasExtension(info.Name(), exts) {
			return nil
		}
		// ignore-listed names also apply to the file itself
		for _, d := range ignoreDirs {
			if info.Name() == d {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

// CountLines returns the number of lines in a UTF-8 text file, counting a
// final unterminated line. "\n", "\r\n" and a lone "\r" each end a line.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return countLines(bufio.NewReader(f))
}

func countLines(r *bufio.Reader) (int, error) {
	var (
		lines   int
		pending bool // bytes seen since the last terminator
		prevCR  bool
		carry   []byte
	)

	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			valid := validPrefix(chunk)
			if valid < len(chunk)-utf8.UTFMax {
				return 0, ErrInvalidUTF8
			}
			carry = append(carry[:0:0], chunk[valid:]...)

			for _, c := range chunk[:valid] {
				switch c {
				case '\n':
					if !prevCR {
						lines++
					}
					pending = false
					prevCR = false
				case '\r':
					lines++
					pending = false
					prevCR = true
				default:
					pending = true
					prevCR = false
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if len(carry) > 0 {
		return 0, ErrInvalidUTF8
	}
	if pending {
		lines++
	}
	return lines, nil
}

// validPrefix returns the length of the longest prefix of b made of complete
// valid UTF-8 sequences.
func validPrefix(b []byte) int {
	i := 0
	for i < len(b) {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return i
}
