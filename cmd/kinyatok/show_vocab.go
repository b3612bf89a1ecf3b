package main

import (
	"github.com/example/go-kinyatok/internal/inspect"
	"github.com/spf13/cobra"
)

func newShowVocabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show_vocab",
		Short: "Display the vocabulary of the tokenizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			m, err := loadModel()
			if err != nil {
				return err
			}

			return inspect.ShowVocab(cmd.OutOrStdout(), m)
		},
	}
}
