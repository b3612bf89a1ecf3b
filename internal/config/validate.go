package config

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	ModelTypeBPE     = "bpe"
	ModelTypeUnigram = "unigram"
	ModelTypeChar    = "char"
	ModelTypeWord    = "word"
)

const (
	UnicodeFormNone = ""
	UnicodeFormNFC  = "nfc"
	UnicodeFormNFKC = "nfkc"
)

func NormalizeModelType(raw string) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(raw))
	if mt == "" {
		mt = ModelTypeBPE
	}
	switch mt {
	case ModelTypeBPE, ModelTypeUnigram, ModelTypeChar, ModelTypeWord:
		return mt, nil
	default:
		return "", fmt.Errorf(
			"invalid model type %q (expected %s|%s|%s|%s)",
			raw,
			ModelTypeBPE,
			ModelTypeUnigram,
			ModelTypeChar,
			ModelTypeWord,
		)
	}
}

func NormalizeUnicodeForm(raw string) (string, error) {
	form := strings.ToLower(strings.TrimSpace(raw))
	switch form {
	case UnicodeFormNone, UnicodeFormNFC, UnicodeFormNFKC:
		return form, nil
	case "none":
		return UnicodeFormNone, nil
	default:
		return "", fmt.Errorf("invalid unicode form %q (expected %s|%s|none)", raw, UnicodeFormNFC, UnicodeFormNFKC)
	}
}

// ParseLogLevel maps a config string onto a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Validate checks the numeric and enumerated settings used by the corpus
// loader and the trainer.
func (c Config) Validate() error {
	if c.Corpus.ChunkSize <= 0 {
		return fmt.Errorf("corpus.chunk_size must be positive, got %d", c.Corpus.ChunkSize)
	}
	if _, err := NormalizeUnicodeForm(c.Corpus.UnicodeForm); err != nil {
		return err
	}
	if c.Trainer.VocabSize <= 0 {
		return fmt.Errorf("trainer.vocab_size must be positive, got %d", c.Trainer.VocabSize)
	}
	if _, err := NormalizeModelType(c.Trainer.ModelType); err != nil {
		return err
	}
	if c.Trainer.CharacterCoverage <= 0 || c.Trainer.CharacterCoverage > 1 {
		return fmt.Errorf("trainer.character_coverage must be in (0, 1], got %v", c.Trainer.CharacterCoverage)
	}
	if c.Trainer.MaxSentenceLength <= 0 {
		return fmt.Errorf("trainer.max_sentence_length must be positive, got %d", c.Trainer.MaxSentenceLength)
	}
	if strings.TrimSpace(c.Trainer.ModelPrefix) == "" {
		return fmt.Errorf("trainer.model_prefix must not be empty")
	}

	return nil
}
