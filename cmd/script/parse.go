package main

import (
	"github.com/spf13/cobra"

	"script-lang/internal/ast"
	"script-lang/internal/engine"
)

func newParseCmd(p *printer) *cobra.Command {
	format := formatJSON
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file and print the syntax tree",
		Long: "Parse a source file and print the syntax tree with every diagnostic. Statements\n" +
			"that fail to parse are left out of the tree.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := readSource(args[0])
			if err != nil {
				return err
			}
			file, parseErr := engine.Parse(source, name)
			var tree map[string]interface{}
			if file != nil {
				tree = ast.NodeToMap(file)
			}
			out := map[string]interface{}{
				"ast":         tree,
				"diagnostics": diagsToSlice(parseErr),
			}
			if err := p.structured(format, out); err != nil {
				return err
			}
			return parseErr
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or yaml")
	return cmd
}
