package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

func newVersionCmd(p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the interpreter's version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(p.out, "script version %v\n", version)
		},
	}
}
