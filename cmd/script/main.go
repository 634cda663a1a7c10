// Command script is the command-line front end for the scripting language.
//
// Usage:
//
//	script run <file>                 Run a source file ("-" reads stdin)
//	script tokens <file> [--json]     Print tokens
//	script parse <file> [--format f]  Print the syntax tree as JSON or YAML
//	script repl                       Start the interactive REPL
//	script                            Run stdin when piped, otherwise start the REPL
package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"script-lang/internal/cmdutil"
	"script-lang/internal/config"
)

func main() {
	p := newPrinter(os.Stdout, os.Stderr)
	opts := &options{}
	if err := newScriptCmd(p, opts).Execute(); err != nil {
		if opts.cfg.LogToStderr {
			glog.Error(cmdutil.DetailedError(err))
		}
		p.failure(err)
		glog.Flush()
		os.Exit(1)
	}
}

// options holds the persistent flags and the configuration they resolve to.
type options struct {
	configPath  string
	maxDepth    int
	noColor     bool
	verbose     int
	logToStderr bool

	cfg config.Config
}

// resolve loads the config file and applies the flags the user set on top of it.
func (o *options) resolve(cmd *cobra.Command) error {
	path, optional := o.configPath, false
	if path == "" {
		path, optional = config.DefaultFile, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.MaxDepth = o.maxDepth
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if o.noColor {
		cfg.Color = false
	}
	if o.logToStderr {
		cfg.LogToStderr = true
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}
	if !cfg.Color {
		color.NoColor = true
	}
	o.cfg = cfg
	return nil
}

// newScriptCmd creates the root command.
func newScriptCmd(p *printer, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "script [file]",
		Short:         "Run and inspect scripts",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd); err != nil {
				return err
			}
			return cmdutil.InitLogging(opts.cfg.LogToStderr, opts.cfg.Verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runSource(p, opts.cfg, args[0])
			}
			if stdinIsTerminal() {
				return runRepl(p, opts.cfg)
			}
			return runSource(p, opts.cfg, "-")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML config file (default ./"+config.DefaultFile+" when present)")
	cmd.PersistentFlags().IntVar(&opts.maxDepth, "max-depth", config.Default().MaxDepth,
		"Maximum nesting of function and method calls")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&opts.logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&opts.verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=5); 9 traces every scope")

	cmd.AddCommand(newRunCmd(p, opts))
	cmd.AddCommand(newTokensCmd(p))
	cmd.AddCommand(newParseCmd(p))
	cmd.AddCommand(newReplCmd(p, opts))
	cmd.AddCommand(newVersionCmd(p))

	return cmd
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// readSource reads a file, or stdin for "-".
func readSource(path string) (string, string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), "<stdin>", errors.Wrap(err, "reading stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", path, errors.Wrapf(err, "reading %s", path)
	}
	return string(data), path, nil
}
