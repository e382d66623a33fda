// Package manifest reads the newline-delimited list of directories to clean.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"dircleaner/internal/fault"
)

// maxLineBytes bounds a single manifest line.
const maxLineBytes = 1 << 20

// Read opens the manifest at path and returns its entries in file order.
// Either every line is read or an error is returned; there are no partial results.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", fault.ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("%w: open manifest: %w", fault.ErrIO, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse returns the trimmed, non-empty lines of r. Entries are not
// deduplicated and their paths are not interpreted.
func Parse(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var entries []string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%w: manifest line %d is not valid UTF-8", fault.ErrIO, lineNo)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		entries = append(entries, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read manifest: %w", fault.ErrIO, err)
	}
	return entries, nil
}
