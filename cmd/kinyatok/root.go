package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/example/go-kinyatok/internal/config"
	"github.com/example/go-kinyatok/internal/tokenizer"
	"github.com/spf13/cobra"
)

var errNoCommand = errors.New("no command given")

var (
	cfgFile   string
	activeCfg config.Config
)

func init() {
	cobra.EnableCaseInsensitive = true
}

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "kinyatok <command> [text...]",
		Short: "Inspect a trained Kinyarwanda SentencePiece tokenizer",
		Long: `Inspect a trained Kinyarwanda SentencePiece tokenizer.

Commands:
  show_vocab    Display the vocabulary of the tokenizer.
  tokenize      Tokenize the provided text and show token indices.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNoCommand
			}

			msg := fmt.Sprintf("unrecognized command: %s", args[0])
			if s := cmd.SuggestionsFor(args[0]); len(s) > 0 {
				msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
			}

			return errors.New(msg)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterCommonFlags(cmd.PersistentFlags(), defaults)
	cmd.Flags().SetInterspersed(false)
	cmd.SuggestionsMinimumDistance = 2

	cmd.AddCommand(newShowVocabCmd())
	cmd.AddCommand(newTokenizeCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

// loadModel opens the model named by the active configuration.
func loadModel() (*tokenizer.Model, error) {
	path := activeCfg.Model.Path
	if path == "" {
		return nil, errors.New("configuration not loaded")
	}

	m, err := tokenizer.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	slog.Debug("model loaded", "path", path, "type", m.Type(), "vocab_size", m.VocabSize())

	return m, nil
}
