package cmdutil

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"script-lang/internal/diag"
)

// DetailedError renders err with the stack traces recorded by pkg/errors, following the
// causer chain.
func DetailedError(err error) string {
	msg := err.Error()
	hasstack := false
	for {
		stackerr, ok := err.(interface {
			StackTrace() errors.StackTrace
		})
		if !ok {
			break
		}
		msg += "\n"
		if hasstack {
			msg += "CAUSED BY...\n"
		}
		hasstack = true
		for _, f := range stackerr.StackTrace() {
			msg += fmt.Sprintf("%+v\n", f)
		}

		cause := errors.Cause(err)
		if cause == err || cause == nil {
			break
		}
		err = cause
	}
	return msg
}

// ErrorMessages splits err into the lines a user should see: one per diagnostic in the
// "Kind at line N: message" form, or the error text itself.
func ErrorMessages(err error) []string {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		var out []string
		for _, e := range merr.WrappedErrors() {
			out = append(out, ErrorMessages(e)...)
		}
		return out
	}
	if d, ok := diag.As(err); ok && d == errors.Cause(err) {
		return []string{d.Error()}
	}
	return []string{err.Error()}
}
