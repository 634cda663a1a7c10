package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"script-lang/internal/config"
	"script-lang/internal/engine"
	"script-lang/internal/runtime"
)

const replName = "<repl>"

func newReplCmd(p *printer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(p, opts.cfg)
		},
	}
}

// session accumulates REPL input until braces balance, then runs it against one engine so
// definitions persist across entries.
type session struct {
	eng   *engine.Engine
	p     *printer
	buf   strings.Builder
	depth int
}

func newSession(p *printer, cfg config.Config) *session {
	return &session{eng: engine.New(cfg, p.out, nil), p: p}
}

// pending reports whether a multi-line entry is still open.
func (s *session) pending() bool {
	return s.depth > 0
}

// cancel drops a partially typed entry.
func (s *session) cancel() {
	s.buf.Reset()
	s.depth = 0
}

// feed consumes one input line. It returns false when the user asked to quit.
func (s *session) feed(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !s.pending() {
		switch trimmed {
		case "exit", ":quit":
			return false
		case ":env":
			s.listGlobals()
			return true
		case ":natives":
			fmt.Fprintln(s.p.out, strings.Join(s.eng.Interpreter().Natives().Names(), " "))
			return true
		}
	}

	s.depth += strings.Count(line, "{") - strings.Count(line, "}")
	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	if s.depth > 0 {
		return true
	}

	source := s.buf.String()
	s.cancel()
	if strings.TrimSpace(source) == "" {
		return true
	}
	if err := s.eng.Run(source, replName); err != nil {
		s.p.failure(err)
	}
	return true
}

func (s *session) listGlobals() {
	global := s.eng.Interpreter().Global()
	for _, name := range global.Names() {
		val, err := global.Get(name)
		if err != nil {
			fmt.Fprintf(s.p.out, "%s = %s\n", name, s.p.dimColor.Sprint("<destroyed>"))
			continue
		}
		obj, ok := val.(*runtime.Object)
		if !ok {
			fmt.Fprintf(s.p.out, "%s = %s\n", name, val)
			continue
		}
		fields := make([]string, 0)
		for _, fname := range obj.FieldNames() {
			f, _ := obj.Field(fname)
			fields = append(fields, fname+": "+f.Value.String())
		}
		fmt.Fprintf(s.p.out, "%s = %s {%s}\n", name, val, strings.Join(fields, ", "))
	}
}

// close ends the session, running the destructors of objects still alive.
func (s *session) close() error {
	return s.eng.Close()
}

func runRepl(p *printer, cfg config.Config) error {
	prompt := p.okColor.Sprint(cfg.Prompt)
	cont := p.dimColor.Sprint(strings.Repeat(".", len(strings.TrimSpace(cfg.Prompt))) + " ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       cfg.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return errors.Wrap(err, "initializing readline")
	}
	defer rl.Close()

	p.out, p.errOut = rl.Stdout(), rl.Stderr()
	fmt.Fprintf(p.out, "%s %s\n\n",
		p.kindColor.Sprintf("script %s REPL", version),
		p.dimColor.Sprint("(type 'exit' or Ctrl+D to quit, ':env' lists globals)"))

	s := newSession(p, cfg)
	for {
		if s.pending() {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if s.pending() {
				s.cancel()
				continue
			}
			fmt.Fprintln(p.out, p.dimColor.Sprint("(use 'exit' or Ctrl+D to quit)"))
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(p.out)
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading input")
		}
		if !s.feed(line) {
			break
		}
	}
	return s.close()
}
