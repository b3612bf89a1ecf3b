package main

import (
	"log/slog"
	"os"

	"github.com/example/go-kinyatok/internal/config"
	"github.com/example/go-kinyatok/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config

	// stages is replaced in tests to avoid invoking spm_train.
	stages pipeline.Stages
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "kinyatok-train",
		Short: "Build the normalized corpus and train the Kinyarwanda tokenizer",
		Long: `Build the normalized corpus and train the Kinyarwanda tokenizer.

Reads every matching file from the corpus input directory, writes the
normalized corpus and trains a SentencePiece model on it with spm_train.`,
		Args:          cobra.NoArgs,
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
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			_, err := pipeline.Run(cmd.Context(), activeCfg, stages, cmd.OutOrStdout(), cmd.ErrOrStderr())

			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newDoctorCmd())

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
