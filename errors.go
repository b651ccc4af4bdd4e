package pegvm

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CompileError reports a problem discovered while turning an operator
// tree into a program: an undefined rule reference, a malformed RGX
// pattern, or similar (§7 "CompileError"). It is a synchronous error
// returned from Compile, grounded on the teacher's ParsingError
// (errors.go), adapted from a single flat struct to a tagged one
// since compile-time problems here have no source span to report.
type CompileError struct {
	Rule    string
	Message string
}

func (e *CompileError) Error() string {
	if e.Rule == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// newCompileErrors collects one or more *CompileError values into a
// single error using go-multierror, so Compile can report every
// undefined rule in one pass instead of stopping at the first.
func newCompileErrors(errs []*CompileError) error {
	if len(errs) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, e := range errs {
		merr = multierror.Append(merr, e)
	}
	return merr.ErrorOrNil()
}

// InternalError marks a VM invariant violation — a frame popped with
// an impossible shape, a jump target outside the program, and the
// like. It should never occur for a program Compile produced, so
// Match recovers it at the API boundary (§7: "a misbehaving action or
// a VM bug panics; Match recovers, converting the panic into an
// InternalError return rather than crashing the host") instead of
// letting normal control flow handle it like MatchFailure.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pegvm: internal error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pegvm: internal error: %s", e.Message)
}

func (e *InternalError) Unwrap() error { return e.Cause }

// UserError wraps an error an Action returned, propagated verbatim
// out of Match without being mistaken for the VM's own MatchFailure
// sentinel (§7 "UserError").
type UserError struct {
	Action string
	Cause  error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("action %s: %v", e.Action, e.Cause)
}

func (e *UserError) Unwrap() error { return e.Cause }
