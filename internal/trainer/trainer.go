// Package trainer trains SentencePiece models by delegating to the
// spm_train executable shipped with SentencePiece.
package trainer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/example/go-kinyatok/internal/tokenizer"
)

var (
	// ErrEmptyCorpus is returned when the corpus file has no content.
	ErrEmptyCorpus = errors.New("corpus file is empty")
	// ErrVocabInfeasible is returned when spm_train reports that the
	// requested vocabulary size cannot be reached with the given corpus.
	ErrVocabInfeasible = errors.New("requested vocabulary size cannot be satisfied by the corpus")
	// ErrVocabSizeMismatch is returned when the trained model does not hold
	// exactly the requested number of pieces.
	ErrVocabSizeMismatch = errors.New("trained vocabulary size differs from the requested size")
)

// Options configures one training run.
type Options struct {
	Executable        string // spm_train when empty
	ModelPrefix       string
	VocabSize         int
	ModelType         string
	CharacterCoverage float64
	MaxSentenceLength int
	ExtraArgs         []string // key=value pairs passed as --key=value
	Stdout            io.Writer
	Stderr            io.Writer
	Logger            *slog.Logger
}

// Artifacts are the files written by a successful training run.
type Artifacts struct {
	ModelPath string
	VocabPath string
	VocabSize int
}

// runCommand executes the trainer. Tests replace it to avoid needing a real
// spm_train binary.
var runCommand = func(ctx context.Context, exe string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

// Train fits a model on the corpus at corpusPath and writes
// <prefix>.model and <prefix>.vocab, replacing earlier artifacts.
func Train(ctx context.Context, corpusPath string, opts Options) (Artifacts, error) {
	if opts.ModelPrefix == "" {
		return Artifacts{}, errors.New("model prefix is required")
	}
	if opts.VocabSize <= 0 {
		return Artifacts{}, fmt.Errorf("vocab size must be positive, got %d", opts.VocabSize)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(corpusPath)
	if err != nil {
		return Artifacts{}, fmt.Errorf("corpus: %w", err)
	}
	if info.Size() == 0 {
		return Artifacts{}, fmt.Errorf("%s: %w", corpusPath, ErrEmptyCorpus)
	}

	if opts.MaxSentenceLength > 0 {
		long, err := LongLines(corpusPath, opts.MaxSentenceLength)
		if err != nil {
			return Artifacts{}, err
		}
		if long > 0 {
			logger.Warn("corpus lines exceed max sentence length and will be skipped by the trainer",
				"lines", long,
				"max_sentence_length", opts.MaxSentenceLength,
			)
		}
	}

	args, err := BuildArgs(corpusPath, opts)
	if err != nil {
		return Artifacts{}, err
	}

	exe := opts.Executable
	if exe == "" {
		exe = "spm_train"
	}

	logger.Info("training tokenizer", "exe", exe, "corpus", corpusPath, "vocab_size", opts.VocabSize)

	var tail bytes.Buffer
	if err := runCommand(ctx, exe, args, opts.Stdout, io.MultiWriter(opts.Stderr, &tail)); err != nil {
		return Artifacts{}, describeFailure(exe, err, tail.String())
	}

	a := Artifacts{
		ModelPath: opts.ModelPrefix + ".model",
		VocabPath: opts.ModelPrefix + ".vocab",
	}
	for _, p := range []string{a.ModelPath, a.VocabPath} {
		if _, err := os.Stat(p); err != nil {
			return Artifacts{}, fmt.Errorf("%s finished without writing artifact: %w", exe, err)
		}
	}

	model, err := tokenizer.Load(a.ModelPath)
	if err != nil {
		return Artifacts{}, fmt.Errorf("verify trained model: %w", err)
	}
	a.VocabSize = model.VocabSize()
	if a.VocabSize != opts.VocabSize {
		return Artifacts{}, fmt.Errorf("%w: got %d, want %d", ErrVocabSizeMismatch, a.VocabSize, opts.VocabSize)
	}

	return a, nil
}

// BuildArgs returns the spm_train command line for corpusPath.
func BuildArgs(corpusPath string, opts Options) ([]string, error) {
	modelType := opts.ModelType
	if modelType == "" {
		modelType = "bpe"
	}
	coverage := opts.CharacterCoverage
	if coverage == 0 {
		coverage = 1.0
	}

	args := []string{
		"--input=" + corpusPath,
		"--model_prefix=" + opts.ModelPrefix,
		"--vocab_size=" + strconv.Itoa(opts.VocabSize),
		"--model_type=" + modelType,
		"--character_coverage=" + strconv.FormatFloat(coverage, 'f', -1, 64),
	}
	if opts.MaxSentenceLength > 0 {
		args = append(args, "--max_sentence_length="+strconv.Itoa(opts.MaxSentenceLength))
	}

	extra, err := buildPassthroughArgs(opts.ExtraArgs)
	if err != nil {
		return nil, err
	}

	return append(args, extra...), nil
}

// reserved flags are owned by Options and cannot be overridden.
var reserved = map[string]bool{
	"input":               true,
	"model_prefix":        true,
	"vocab_size":          true,
	"model_type":          true,
	"character_coverage":  true,
	"max_sentence_length": true,
}

func buildPassthroughArgs(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimLeft(strings.TrimSpace(key), "-")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid trainer arg %q (expected key=value)", kv)
		}
		if reserved[key] {
			return nil, fmt.Errorf("trainer arg %q overrides a configured setting; use the matching option instead", key)
		}
		out = append(out, "--"+key+"="+value)
	}

	return out, nil
}

// LongLines counts lines in the file at path whose length in bytes exceeds
// max. A line of exactly max bytes is accepted by the trainer.
func LongLines(path string, max int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	count, n := 0, 0
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("scan corpus: %w", err)
		}
		n += len(chunk)
		if isPrefix {
			continue
		}
		if n > max {
			count++
		}
		n = 0
	}

	return count, nil
}

func describeFailure(exe string, err error, stderr string) error {
	last := lastLine(stderr)
	if strings.Contains(stderr, "Vocabulary size is too high") ||
		strings.Contains(stderr, "Vocabulary size is smaller than required_chars") {
		return fmt.Errorf("%s: %w: %s", exe, ErrVocabInfeasible, last)
	}
	if last != "" {
		return fmt.Errorf("%s failed: %w: %s", exe, err, last)
	}

	return fmt.Errorf("%s failed: %w", exe, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
