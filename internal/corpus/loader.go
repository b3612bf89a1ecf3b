// Package corpus assembles the normalized training corpus from a directory
// of raw UTF-8 text files.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var (
	// ErrNotDirectory is returned when the input path exists but is not a directory.
	ErrNotDirectory = errors.New("corpus input is not a directory")
	// ErrInvalidUTF8 is returned when an input file is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8")
)

// DefaultChunkSize is the largest number of characters segmented in one pass.
const DefaultChunkSize = 1_000_000

// Options configures a corpus load.
type Options struct {
	InputDir   string
	Pattern    string // glob relative to InputDir, "*.txt" when empty
	OutputPath string
	ChunkSize  int
	Normalizer Normalizer
	Logger     *slog.Logger
}

// Corpus describes the intermediate corpus file written by Load.
type Corpus struct {
	Path   string
	Files  int
	Chunks int
	Lines  int
	Bytes  int
}

// Load reads every file in opts.InputDir matching opts.Pattern, normalizes
// it chunk by chunk and writes the result to opts.OutputPath in a single
// write, replacing any previous content. Any unreadable or non-UTF-8 file
// aborts the whole load before the output is touched.
func Load(opts Options) (Corpus, error) {
	if opts.OutputPath == "" {
		return Corpus{}, errors.New("corpus output path is required")
	}
	if opts.Pattern == "" {
		opts.Pattern = "*.txt"
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := ListFiles(opts.InputDir, opts.Pattern)
	if err != nil {
		return Corpus{}, err
	}

	c := Corpus{Path: opts.OutputPath, Files: len(files)}

	var buf bytes.Buffer
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Corpus{}, fmt.Errorf("read corpus file: %w", err)
		}
		if !utf8.Valid(raw) {
			return Corpus{}, fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
		}

		chunks := Chunk(string(raw), opts.ChunkSize)
		for _, chunk := range chunks {
			for _, line := range opts.Normalizer.Lines(chunk) {
				buf.WriteString(line)
				buf.WriteByte('\n')
				c.Lines++
			}
		}
		c.Chunks += len(chunks)

		logger.Debug("corpus file normalized", "path", path, "chunks", len(chunks))
	}

	if err := os.WriteFile(opts.OutputPath, buf.Bytes(), 0o644); err != nil {
		return Corpus{}, fmt.Errorf("write corpus: %w", err)
	}
	c.Bytes = buf.Len()

	logger.Info("corpus written",
		"path", c.Path,
		"files", c.Files,
		"chunks", c.Chunks,
		"lines", c.Lines,
		"bytes", c.Bytes,
	)

	return c, nil
}

// ListFiles returns the regular files in dir matching pattern, in lexical
// order. Subdirectories are not searched. A missing or unreadable dir is an
// error; a readable dir without matches is not.
func ListFiles(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	// Glob swallows permission errors, so check readability first.
	if _, err := os.ReadDir(dir); err != nil {
		return nil, fmt.Errorf("corpus input dir: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("corpus pattern %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat corpus file: %w", err)
		}
		if fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}

	return files, nil
}
