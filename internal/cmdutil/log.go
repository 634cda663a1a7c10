// Package cmdutil holds helpers shared by the command-line entry points.
package cmdutil

import (
	"flag"
	"strconv"

	"github.com/pkg/errors"
)

// InitLogging configures glog. glog is only controllable through its flags, so they are
// set here after the flag set has been parsed (with no arguments: cobra owns the command
// line).
func InitLogging(logToStderr bool, verbose int) error {
	if !flag.Parsed() {
		if err := flag.CommandLine.Parse(nil); err != nil {
			return errors.Wrap(err, "initializing glog flags")
		}
	}
	if logToStderr {
		if err := setFlag("logtostderr", "true"); err != nil {
			return err
		}
	}
	if verbose > 0 {
		if err := setFlag("v", strconv.Itoa(verbose)); err != nil {
			return err
		}
	}
	return nil
}

func setFlag(name, value string) error {
	f := flag.Lookup(name)
	if f == nil {
		return errors.Errorf("glog flag -%s is not registered", name)
	}
	return errors.Wrapf(f.Value.Set(value), "setting -%s", name)
}
