package main

import (
	"github.com/spf13/cobra"

	"script-lang/internal/engine"
)

func newTokensCmd(p *printer) *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Tokenize a source file and print the tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := readSource(args[0])
			if err != nil {
				return err
			}
			tokens, lexErr := engine.Tokenize(source, name)
			if jsonMode {
				out := map[string]interface{}{
					"tokens":      tokensToSlice(tokens),
					"diagnostics": diagsToSlice(lexErr),
				}
				if err := p.structured(formatJSON, out); err != nil {
					return err
				}
			} else {
				p.tokensText(tokens)
			}
			return lexErr
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print tokens as JSON")
	return cmd
}
