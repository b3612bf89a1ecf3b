package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-kinyatok/internal/config"
	"github.com/example/go-kinyatok/internal/corpus"
	"github.com/example/go-kinyatok/internal/trainer"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "data")
	if err := os.Mkdir(input, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(input, "a.txt"), []byte("Muraho, amakuru?\nNi meza."), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Corpus.InputDir = input
	cfg.Corpus.OutputPath = filepath.Join(dir, "temp_corpus.txt")
	cfg.Trainer.ModelPrefix = filepath.Join(dir, "kinya")

	return cfg
}

func TestRun_PassesCorpusPathToTrainer(t *testing.T) {
	cfg := testConfig(t)

	var gotPath string
	var gotOpts trainer.Options

	stages := Stages{
		Train: func(_ context.Context, path string, opts trainer.Options) (trainer.Artifacts, error) {
			gotPath, gotOpts = path, opts

			return trainer.Artifacts{ModelPath: opts.ModelPrefix + ".model", VocabPath: opts.ModelPrefix + ".vocab"}, nil
		},
	}

	var stdout strings.Builder

	res, err := Run(context.Background(), cfg, stages, &stdout, &strings.Builder{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if gotPath != cfg.Corpus.OutputPath || res.Corpus.Path != gotPath {
		t.Errorf("trainer got corpus %q, want %q", gotPath, cfg.Corpus.OutputPath)
	}

	if gotOpts.VocabSize != 28000 || gotOpts.ModelType != "bpe" || gotOpts.MaxSentenceLength != 2048 {
		t.Errorf("trainer options = %+v", gotOpts)
	}

	data, err := os.ReadFile(cfg.Corpus.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got := string(data); got != "Muraho , amakuru ? Ni meza .\n" {
		t.Errorf("corpus = %q", got)
	}

	out := stdout.String()
	if !strings.Contains(out, "loaded, cleaned, and saved into") {
		t.Errorf("missing corpus confirmation:\n%s", out)
	}

	if !strings.Contains(out, "kinya.model' and vocabulary '") {
		t.Errorf("missing trainer confirmation:\n%s", out)
	}
}

func TestRun_LoadFailureSkipsTraining(t *testing.T) {
	cfg := testConfig(t)
	cfg.Corpus.InputDir = filepath.Join(t.TempDir(), "missing")

	trained := false
	stages := Stages{
		Train: func(context.Context, string, trainer.Options) (trainer.Artifacts, error) {
			trained = true
			return trainer.Artifacts{}, nil
		},
	}

	var stdout strings.Builder

	_, err := Run(context.Background(), cfg, stages, &stdout, &strings.Builder{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want os.ErrNotExist", err)
	}

	if trained {
		t.Error("trainer must not run after a failed load")
	}

	if stdout.Len() != 0 {
		t.Errorf("no stage should be confirmed, got %q", stdout.String())
	}
}

func TestRun_TrainFailurePropagates(t *testing.T) {
	cfg := testConfig(t)

	stages := Stages{
		Load: func(opts corpus.Options) (corpus.Corpus, error) {
			return corpus.Corpus{Path: opts.OutputPath}, nil
		},
		Train: func(context.Context, string, trainer.Options) (trainer.Artifacts, error) {
			return trainer.Artifacts{}, trainer.ErrVocabInfeasible
		},
	}

	var stdout strings.Builder

	_, err := Run(context.Background(), cfg, stages, &stdout, &strings.Builder{})
	if !errors.Is(err, trainer.ErrVocabInfeasible) {
		t.Fatalf("error = %v, want ErrVocabInfeasible", err)
	}

	if strings.Contains(stdout.String(), "Tokenizer model") {
		t.Errorf("training must not be confirmed on failure:\n%s", stdout.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Trainer.ModelType = "wordpiece"

	stages := Stages{
		Load: func(corpus.Options) (corpus.Corpus, error) {
			t.Fatal("loader must not run with invalid config")
			return corpus.Corpus{}, nil
		},
	}

	if _, err := Run(context.Background(), cfg, stages, &strings.Builder{}, &strings.Builder{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCorpusOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Corpus.UnicodeForm = "NFKC"
	cfg.Corpus.PreserveLines = true

	opts := CorpusOptions(cfg)
	if opts.Normalizer.Form != config.UnicodeFormNFKC || !opts.Normalizer.PreserveLines {
		t.Errorf("Normalizer = %+v", opts.Normalizer)
	}

	if opts.InputDir != "data" || opts.OutputPath != "temp_corpus.txt" || opts.ChunkSize != 1_000_000 {
		t.Errorf("options = %+v", opts)
	}
}

func TestTrainerOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Trainer.ModelType = "Unigram"
	cfg.Trainer.ExtraArgs = []string{"num_threads=4"}

	opts := TrainerOptions(cfg)
	if opts.ModelType != config.ModelTypeUnigram {
		t.Errorf("ModelType = %q", opts.ModelType)
	}

	if opts.Executable != "spm_train" || opts.ModelPrefix != "kinya" || len(opts.ExtraArgs) != 1 {
		t.Errorf("options = %+v", opts)
	}
}
