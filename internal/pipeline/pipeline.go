// Package pipeline composes corpus loading and tokenizer training into a
// single run driven by the loaded configuration.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/go-kinyatok/internal/config"
	"github.com/example/go-kinyatok/internal/corpus"
	"github.com/example/go-kinyatok/internal/trainer"
)

// Stages holds the operations Run composes. Zero fields fall back to
// corpus.Load and trainer.Train.
type Stages struct {
	Load  func(corpus.Options) (corpus.Corpus, error)
	Train func(ctx context.Context, corpusPath string, opts trainer.Options) (trainer.Artifacts, error)
}

// Result reports what a successful run produced.
type Result struct {
	Corpus    corpus.Corpus
	Artifacts trainer.Artifacts
}

// Run validates cfg, builds the corpus and trains on it. A confirmation line
// is written to stdout after each stage; trainer output goes to stderr.
func Run(ctx context.Context, cfg config.Config, stages Stages, stdout, stderr io.Writer) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if stages.Load == nil {
		stages.Load = corpus.Load
	}
	if stages.Train == nil {
		stages.Train = trainer.Train
	}

	c, err := stages.Load(CorpusOptions(cfg))
	if err != nil {
		return Result{}, fmt.Errorf("load corpus: %w", err)
	}
	fmt.Fprintf(stdout, "Data from %s loaded, cleaned, and saved into '%s'.\n", cfg.Corpus.InputDir, c.Path)

	opts := TrainerOptions(cfg)
	opts.Stderr = stderr

	a, err := stages.Train(ctx, c.Path, opts)
	if err != nil {
		return Result{}, fmt.Errorf("train tokenizer: %w", err)
	}
	fmt.Fprintf(stdout, "Tokenizer model '%s' and vocabulary '%s' saved.\n", a.ModelPath, a.VocabPath)

	return Result{Corpus: c, Artifacts: a}, nil
}

// CorpusOptions maps the corpus section of cfg onto loader options.
func CorpusOptions(cfg config.Config) corpus.Options {
	// Validate has already accepted the form.
	form, _ := config.NormalizeUnicodeForm(cfg.Corpus.UnicodeForm)

	return corpus.Options{
		InputDir:   cfg.Corpus.InputDir,
		Pattern:    cfg.Corpus.Pattern,
		OutputPath: cfg.Corpus.OutputPath,
		ChunkSize:  cfg.Corpus.ChunkSize,
		Normalizer: corpus.Normalizer{
			Segmenter:     corpus.WordSegmenter{},
			Form:          form,
			PreserveLines: cfg.Corpus.PreserveLines,
		},
		Logger: slog.Default(),
	}
}

// TrainerOptions maps the trainer section of cfg onto trainer options.
func TrainerOptions(cfg config.Config) trainer.Options {
	modelType, _ := config.NormalizeModelType(cfg.Trainer.ModelType)

	return trainer.Options{
		Executable:        cfg.Trainer.SpmTrainPath,
		ModelPrefix:       cfg.Trainer.ModelPrefix,
		VocabSize:         cfg.Trainer.VocabSize,
		ModelType:         modelType,
		CharacterCoverage: cfg.Trainer.CharacterCoverage,
		MaxSentenceLength: cfg.Trainer.MaxSentenceLength,
		ExtraArgs:         cfg.Trainer.ExtraArgs,
		Logger:            slog.Default(),
	}
}
