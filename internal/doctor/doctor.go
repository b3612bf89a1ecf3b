// Package doctor provides environment preflight checks for kinyatok.
package doctor

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// minTrainerVersion is the oldest spm_train release known to accept every
// flag the trainer passes.
var minTrainerVersion = [3]int{0, 1, 90}

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// SpmTrainVersion returns the output of `spm_train --version`.
	SpmTrainVersion VersionFunc
	// SkipSpmTrain skips the trainer check (inspection-only environments).
	SkipSpmTrain bool
	// InputDir is the corpus directory reported alongside ListCorpusFiles.
	InputDir string
	// ListCorpusFiles returns the files a corpus build would read.
	ListCorpusFiles func() ([]string, error)
	// ModelPath is the trained model to verify. Empty skips the check.
	ModelPath string
	// RequireModel turns a missing model into a failure instead of a skip.
	RequireModel bool
	// LoadModel loads the model at path and returns its vocabulary size.
	LoadModel func(path string) (int, error)
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- spm_train binary ---------------------------------------------------
	if cfg.SkipSpmTrain || cfg.SpmTrainVersion == nil {
		fmt.Fprintf(w, "%s spm_train binary: skipped\n", PassMark)
	} else {
		out, err := cfg.SpmTrainVersion()
		if err != nil {
			res.fail(fmt.Sprintf("spm_train binary: %v", err))
			fmt.Fprintf(w, "%s spm_train binary: not found (%v)\n", FailMark, err)
		} else if verErr := checkTrainerVersion(out); verErr != nil {
			res.fail(fmt.Sprintf("spm_train version: %v", verErr))
			fmt.Fprintf(w, "%s spm_train version %s: %v\n", FailMark, strings.TrimSpace(out), verErr)
		} else {
			fmt.Fprintf(w, "%s spm_train binary: %s\n", PassMark, strings.TrimSpace(out))
		}
	}

	// ---- corpus input -------------------------------------------------------
	if cfg.ListCorpusFiles != nil {
		files, err := cfg.ListCorpusFiles()
		switch {
		case err != nil:
			res.fail(fmt.Sprintf("corpus input %q: %v", cfg.InputDir, err))
			fmt.Fprintf(w, "%s corpus input %s: %v\n", FailMark, cfg.InputDir, err)
		case len(files) == 0:
			res.fail(fmt.Sprintf("corpus input %q: no matching files", cfg.InputDir))
			fmt.Fprintf(w, "%s corpus input %s: no matching files\n", FailMark, cfg.InputDir)
		default:
			fmt.Fprintf(w, "%s corpus input: %s (%d files)\n", PassMark, cfg.InputDir, len(files))
		}
	}

	// ---- trained model ------------------------------------------------------
	if cfg.ModelPath != "" && cfg.LoadModel != nil {
		size, err := cfg.LoadModel(cfg.ModelPath)
		switch {
		case err == nil:
			fmt.Fprintf(w, "%s tokenizer model: %s (vocab %d)\n", PassMark, cfg.ModelPath, size)
		case cfg.RequireModel:
			res.fail(fmt.Sprintf("tokenizer model %q: %v", cfg.ModelPath, err))
			fmt.Fprintf(w, "%s tokenizer model %s: %v\n", FailMark, cfg.ModelPath, err)
		default:
			fmt.Fprintf(w, "%s tokenizer model: skipped (%v)\n", PassMark, err)
		}
	}

	return res
}

// checkTrainerVersion returns an error if the version reported by spm_train
// is older than minTrainerVersion. out is the raw output, such as
// "sentencepiece 0.2.0".
func checkTrainerVersion(out string) error {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return fmt.Errorf("empty version output")
	}

	ver, err := parseVersion(fields[len(fields)-1])
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", out, err)
	}

	for i := range ver {
		if ver[i] != minTrainerVersion[i] {
			if ver[i] < minTrainerVersion[i] {
				return fmt.Errorf("requires sentencepiece >=%d.%d.%d", minTrainerVersion[0], minTrainerVersion[1], minTrainerVersion[2])
			}

			break
		}
	}

	return nil
}

// parseVersion parses "major.minor[.patch]"; a missing patch is zero.
func parseVersion(ver string) ([3]int, error) {
	var out [3]int

	parts := strings.SplitN(strings.TrimPrefix(ver, "v"), ".", 3)
	if len(parts) < 2 {
		return out, fmt.Errorf("unexpected version format %q", ver)
	}

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, fmt.Errorf("bad component %q in %q: %w", p, ver, err)
		}

		out[i] = n
	}

	return out, nil
}
