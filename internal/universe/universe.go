package universe

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Source yields the ordered symbol universe.
type Source interface {
	Load() ([]string, error)
}

// FileSource reads one ticker per line from a text file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

// Load returns the symbols in file order, trimmed, skipping blank lines.
func (f *FileSource) Load() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open symbol file: %w", err)
	}
	defer file.Close()

	var symbols []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			symbols = append(symbols, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read symbol file: %w", err)
	}
	return symbols, nil
}

// Static is a fixed in-memory universe.
type Static []string

func (s Static) Load() ([]string, error) {
	return append([]string(nil), s...), nil
}
