package main

import (
	"github.com/spf13/cobra"

	"script-lang/internal/config"
	"script-lang/internal/engine"
)

func newRunCmd(p *printer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run a source file",
		Long: "Run a source file. Nothing executes unless the whole file lexes and parses; a\n" +
			"runtime error stops the program and is reported as 'Kind at line N: message'.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(p, opts.cfg, args[0])
		},
	}
}

// runSource executes one program and tears its global scope down afterwards.
func runSource(p *printer, cfg config.Config, path string) error {
	source, name, err := readSource(path)
	if err != nil {
		return err
	}
	eng := engine.New(cfg, p.out, nil)
	if err := eng.Run(source, name); err != nil {
		return err
	}
	return eng.Close()
}
