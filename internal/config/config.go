package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Corpus   CorpusConfig  `mapstructure:"corpus"`
	Trainer  TrainerConfig `mapstructure:"trainer"`
	Model    ModelConfig   `mapstructure:"model"`
}

type CorpusConfig struct {
	InputDir      string `mapstructure:"input_dir"`
	Pattern       string `mapstructure:"pattern"`
	OutputPath    string `mapstructure:"output_path"`
	ChunkSize     int    `mapstructure:"chunk_size"`
	UnicodeForm   string `mapstructure:"unicode_form"`
	PreserveLines bool   `mapstructure:"preserve_lines"`
}

type TrainerConfig struct {
	ModelPrefix       string   `mapstructure:"model_prefix"`
	VocabSize         int      `mapstructure:"vocab_size"`
	ModelType         string   `mapstructure:"model_type"`
	CharacterCoverage float64  `mapstructure:"character_coverage"`
	MaxSentenceLength int      `mapstructure:"max_sentence_length"`
	SpmTrainPath      string   `mapstructure:"spm_train_path"`
	ExtraArgs         []string `mapstructure:"extra_args"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// binding ties a config key to the flag that overrides it.
type binding struct {
	key  string
	flag string
}

var bindings = []binding{
	{"log_level", "log-level"},
	{"corpus.input_dir", "corpus-input-dir"},
	{"corpus.pattern", "corpus-pattern"},
	{"corpus.output_path", "corpus-output-path"},
	{"corpus.chunk_size", "corpus-chunk-size"},
	{"corpus.unicode_form", "corpus-unicode-form"},
	{"corpus.preserve_lines", "corpus-preserve-lines"},
	{"trainer.model_prefix", "trainer-model-prefix"},
	{"trainer.vocab_size", "trainer-vocab-size"},
	{"trainer.model_type", "trainer-model-type"},
	{"trainer.character_coverage", "trainer-character-coverage"},
	{"trainer.max_sentence_length", "trainer-max-sentence-length"},
	{"trainer.spm_train_path", "trainer-spm-train-path"},
	{"trainer.extra_args", "trainer-arg"},
	{"model.path", "model-path"},
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Corpus: CorpusConfig{
			InputDir:   "data",
			Pattern:    "*.txt",
			OutputPath: "temp_corpus.txt",
			ChunkSize:  1_000_000,
		},
		Trainer: TrainerConfig{
			ModelPrefix:       "kinya",
			VocabSize:         28000,
			ModelType:         ModelTypeBPE,
			CharacterCoverage: 1.0,
			MaxSentenceLength: 2048,
			SpmTrainPath:      "spm_train",
		},
		Model: ModelConfig{
			Path: "kinya.model",
		},
	}
}

// RegisterFlags registers every configuration flag, as used by the
// corpus and training pipeline.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	RegisterCommonFlags(fs, defaults)
	fs.String("corpus-input-dir", defaults.Corpus.InputDir, "Directory holding raw corpus files")
	fs.String("corpus-pattern", defaults.Corpus.Pattern, "Glob pattern selecting corpus files inside the input directory")
	fs.String("corpus-output-path", defaults.Corpus.OutputPath, "Path of the normalized intermediate corpus")
	fs.Int("corpus-chunk-size", defaults.Corpus.ChunkSize, "Maximum characters segmented in one pass")
	fs.String("corpus-unicode-form", defaults.Corpus.UnicodeForm, "Unicode normalization applied before segmentation (nfc|nfkc, empty for none)")
	fs.Bool("corpus-preserve-lines", defaults.Corpus.PreserveLines, "Emit one normalized line per source line instead of one per chunk")
	fs.String("trainer-model-prefix", defaults.Trainer.ModelPrefix, "Output prefix for the .model and .vocab artifacts")
	fs.Int("trainer-vocab-size", defaults.Trainer.VocabSize, "Target vocabulary size")
	fs.String("trainer-model-type", defaults.Trainer.ModelType, "SentencePiece model type (bpe|unigram|char|word)")
	fs.Float64("trainer-character-coverage", defaults.Trainer.CharacterCoverage, "Fraction of characters covered by the model")
	fs.Int("trainer-max-sentence-length", defaults.Trainer.MaxSentenceLength, "Maximum corpus line length in bytes accepted by the trainer")
	fs.String("trainer-spm-train-path", defaults.Trainer.SpmTrainPath, "Path to the spm_train executable")
	fs.StringArray("trainer-arg", defaults.Trainer.ExtraArgs, "Pass-through spm_train flag in key=value form (repeatable)")
}

// RegisterCommonFlags registers only the log level and model path flags.
// Keys without a flag still resolve from env, config file and defaults.
func RegisterCommonFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("model-path", defaults.Model.Path, "Trained tokenizer model")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("KINYATOK")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("kinyatok")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("corpus.input_dir", c.Corpus.InputDir)
	v.SetDefault("corpus.pattern", c.Corpus.Pattern)
	v.SetDefault("corpus.output_path", c.Corpus.OutputPath)
	v.SetDefault("corpus.chunk_size", c.Corpus.ChunkSize)
	v.SetDefault("corpus.unicode_form", c.Corpus.UnicodeForm)
	v.SetDefault("corpus.preserve_lines", c.Corpus.PreserveLines)
	v.SetDefault("trainer.model_prefix", c.Trainer.ModelPrefix)
	v.SetDefault("trainer.vocab_size", c.Trainer.VocabSize)
	v.SetDefault("trainer.model_type", c.Trainer.ModelType)
	v.SetDefault("trainer.character_coverage", c.Trainer.CharacterCoverage)
	v.SetDefault("trainer.max_sentence_length", c.Trainer.MaxSentenceLength)
	v.SetDefault("trainer.spm_train_path", c.Trainer.SpmTrainPath)
	v.SetDefault("trainer.extra_args", c.Trainer.ExtraArgs)
	v.SetDefault("model.path", c.Model.Path)
}

// bindFlags binds every registered config flag present in fs. Flags that
// were not registered on this command are skipped.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, b := range bindings {
		f := fs.Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", b.flag, err)
		}
	}

	return nil
}
