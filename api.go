package pegvm

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// MatchResult is what a successful Match returns: the end cursor
// position and the args/kwargs emitted by the matched rule (§6
// "Match API").
type MatchResult struct {
	End    int
	Args   []Value
	Kwargs map[string]Value
}

// Match runs program starting at the rule named start, against input
// beginning at startPos (§6). A false second return means the parse
// failed (MatchFailure, §7) — not an error: no input matched, and
// that is an ordinary, expected outcome a caller branches on instead
// of handling via the error path.
//
// A panicking action or an internal VM invariant violation is
// recovered here and turned into an error return (UserError or
// InternalError, §7) rather than propagating the panic into the
// host, the one place in this package a panic/recover pair is used.
func Match(program *Program, start string, input string, startPos int) (result MatchResult, matched bool, err error) {
	addr, ok := program.Addr(start)
	if !ok {
		return MatchResult{}, false, &CompileError{Message: fmt.Sprintf("unknown start rule %q", start)}
	}

	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *UserError:
				err = e
			case *InternalError:
				err = e
				log.WithError(e).Debug("recovered internal error")
			default:
				ie := &InternalError{Message: fmt.Sprintf("panic: %v", r)}
				err = ie
				log.WithError(ie).Debug("recovered internal error")
			}
			result = MatchResult{}
			matched = false
		}
	}()

	runes := []rune(input)
	m := &vm{program: program, input: runes, slen: len(runes)}
	res := m.run(addr, startPos)
	if !res.ok {
		return MatchResult{}, false, nil
	}
	return MatchResult{End: res.end, Args: res.args, Kwargs: kwargsToMap(res.kwargs)}, true, nil
}

// MatchAll applies Match across a batch of inputs against the same
// program and start rule, a repeated application of the in-scope
// Match API rather than a notation-level convenience front-end
// (SPEC_FULL.md §3.2). Per-input failures (parse failures and
// errors alike) are collected with go-multierror instead of
// aborting the batch at the first one, mirroring the teacher's
// two-tier Bytecode.Match/MatchE entrypoint split (grammar_compiler.go's
// callers distinguish a plain bool match from one surfacing the error).
func MatchAll(program *Program, start string, inputs []string) ([]MatchResult, error) {
	results := make([]MatchResult, 0, len(inputs))
	var errs *multierror.Error
	for i, input := range inputs {
		res, matched, err := Match(program, start, input, 0)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("input %d: %w", i, err))
			continue
		}
		if !matched {
			errs = multierror.Append(errs, fmt.Errorf("input %d: no match", i))
			continue
		}
		results = append(results, res)
	}
	return results, errs.ErrorOrNil()
}
