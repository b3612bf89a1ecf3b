package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/go-kinyatok/internal/corpus"
	"github.com/example/go-kinyatok/internal/doctor"
	"github.com/example/go-kinyatok/internal/tokenizer"
	"github.com/spf13/cobra"
)

// probeSpmTrainVersion runs `spm_train --version` and returns its output.
var probeSpmTrainVersion = func(ctx context.Context, exe string) (string, error) {
	out, err := exec.CommandContext(ctx, exe, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", exe, err)
	}

	return strings.TrimSpace(string(out)), nil
}

func newDoctorCmd() *cobra.Command {
	var (
		skipTrainer  bool
		requireModel bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the trainer executable, corpus input and trained model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			cfg := activeCfg
			out := cmd.OutOrStdout()

			exe := cfg.Trainer.SpmTrainPath
			if exe == "" {
				exe = "spm_train"
			}

			result := doctor.Run(doctor.Config{
				SpmTrainVersion: func() (string, error) {
					return probeSpmTrainVersion(cmd.Context(), exe)
				},
				SkipSpmTrain: skipTrainer,
				InputDir:     cfg.Corpus.InputDir,
				ListCorpusFiles: func() ([]string, error) {
					return corpus.ListFiles(cfg.Corpus.InputDir, cfg.Corpus.Pattern)
				},
				ModelPath:    cfg.Model.Path,
				RequireModel: requireModel,
				LoadModel: func(path string) (int, error) {
					m, err := tokenizer.Load(path)
					if err != nil {
						return 0, err
					}
					return m.VocabSize(), nil
				},
			}, out)

			if err := cfg.Validate(); err != nil {
				result.AddFailure(fmt.Sprintf("config: %v", err))
				fmt.Fprintf(out, "%s config: %v\n", doctor.FailMark, err)
			} else {
				fmt.Fprintf(out, "%s config: ok\n", doctor.PassMark)
			}

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipTrainer, "skip-spm-train", false, "Skip the spm_train executable check")
	cmd.Flags().BoolVar(&requireModel, "require-model", false, "Fail when the configured model cannot be loaded")

	return cmd
}
