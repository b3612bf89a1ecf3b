package main

import (
	"errors"
	"strings"

	"github.com/example/go-kinyatok/internal/inspect"
	"github.com/spf13/cobra"
)

var errNoText = errors.New("no text provided for tokenization")

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [--] <text...>",
		Short: "Tokenize the provided text and show token indices",
		Long: `Tokenize the provided text and show token indices.

Words are joined with single spaces. Flags are only read before the first
word; everything after it is text. Use -- when the text itself starts
with a dash, as in: kinyatok tokenize -- -5 degrees`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNoText
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			m, err := loadModel()
			if err != nil {
				return err
			}

			_, err = inspect.Tokenize(cmd.OutOrStdout(), m, strings.Join(args, " "))

			return err
		},
	}

	cmd.Flags().SetInterspersed(false)

	return cmd
}
