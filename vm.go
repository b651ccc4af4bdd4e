package pegvm

import "fmt"

// failureSentinel is the idx value that marks "the last dispatched
// instruction failed" (§3 "FAILURE sentinel"), distinct from any real
// program address (addresses are always >= 0).
const failureSentinel = -1

// vm holds the per-match runtime state: the frame stack, the cursor,
// and the accumulating args/kwargs sequences (§3 "VM runtime state").
// It is allocated fresh for each Match call and discarded at return,
// so invariant (c) — "the stack is empty after match() returns" —
// holds trivially in Go without an explicit free.
type vm struct {
	program *Program
	input   []rune
	slen    int

	stack  frameStack
	args   []Value
	kwargs []KWPair
}

// runResult is what the VM's core loop (§4.3) produces: a match
// boundary and its emitted values, or a failed match with ok=false.
type runResult struct {
	end    int
	args   []Value
	kwargs []KWPair
	ok     bool
}

// run executes the program starting at addr with the cursor at pos.
// It is the direct translation of §4.3's main loop and §4.5's failure
// semantics.
func (m *vm) run(addr, pos int) runResult {
	code := m.program.Code
	idx := addr

	// Initialization (§4.3): push the bottom failure-fallback frame,
	// then the success-fallback frame. The formal model gives the
	// success-fallback frame ret_idx = -1 as an abstract "there is no
	// further instruction, this is success" sentinel; concretely, the
	// only instruction that can ever consume it is the trailing RETURN
	// of the rule named by addr, and the only correct resume target
	// for that RETURN is the program's PASS sentinel, so that is what's
	// stored here. It is tagged frameCall, not frameBacktrack: it only
	// exists to give that RETURN somewhere to go, and must never be
	// mistaken by unwind for a frame to restore to on failure. unwind
	// skips non-backtrack frames while searching for one, so tagging
	// this frameCall lets a top-level failure fall through it to the
	// bottom failure-fallback frame instead of reporting a false match.
	m.stack = frameStack{
		{kind: frameBacktrack, retIdx: 0, savedPos: 0, markPos: -1},
		{kind: frameCall, retIdx: m.program.PassAddr(), savedPos: -1, markPos: -1},
	}

	for {
		if idx == failureSentinel {
			newIdx, newPos, ok := m.unwind()
			if !ok {
				return runResult{end: -1, ok: false}
			}
			idx, pos = newIdx, newPos
			continue
		}

		instr := code[idx]

		if instr.Marking {
			m.stack.push(frame{
				kind:      frameMark,
				markPos:   pos,
				savedPos:  -1,
				argsLen:   len(m.args),
				kwargsLen: len(m.kwargs),
			})
		}

		switch instr.Op {
		case OpScan:
			newPos := instr.Scanner.Scan(m.input, pos, m.slen)
			if newPos < 0 {
				idx = failureSentinel
				continue
			}
			pos = newPos

		case OpBranch:
			m.stack.push(frame{
				kind:      frameBacktrack,
				retIdx:    idx + instr.OpLoc,
				savedPos:  pos,
				markPos:   -1,
				argsLen:   len(m.args),
				kwargsLen: len(m.kwargs),
			})
			idx++
			continue

		case OpCommit:
			m.stack.pop()
			idx += instr.OpLoc
			continue

		case OpUpdate:
			top := &m.stack[len(m.stack)-1]
			top.savedPos = pos
			top.argsLen = len(m.args)
			top.kwargsLen = len(m.kwargs)
			idx += instr.OpLoc
			continue

		case OpRestore:
			f := m.stack.pop()
			pos = f.savedPos
			idx += instr.OpLoc
			continue

		case OpFailTwice:
			m.stack.pop()
			idx = failureSentinel
			continue

		case OpCall:
			m.stack.push(frame{kind: frameCall, retIdx: idx + 1, savedPos: -1, markPos: -1, argsLen: -1, kwargsLen: -1})
			idx = instr.OpLoc
			continue

		case OpReturn:
			f := m.stack.pop()
			idx = f.retIdx
			continue

		case OpJump:
			idx = instr.OpLoc
			continue

		case OpFail:
			idx = failureSentinel
			continue

		case OpPass:
			return runResult{end: pos, args: m.args, kwargs: m.kwargs, ok: true}

		case OpNoop:
			// falls through to post-processing below

		default:
			panic(&InternalError{Message: fmt.Sprintf("unknown opcode %v at %d", instr.Op, idx)})
		}

		// Marking pushes a mark frame on the *head* instruction of a
		// CAP/RUL region; Capturing/Action consume it on the *tail*
		// instruction, generally a different, later one (§4.2's head/
		// tail wrapping). Gating the pop on instr.Capturing/Action
		// rather than instr.Marking is what makes that work: a marked
		// head with neither flag (the common multi-instruction case)
		// just leaves its frame on the stack for the tail to find.
		if instr.Capturing || instr.Action != nil {
			mark := m.stack.pop()
			if instr.Capturing {
				substr := string(m.input[mark.markPos:pos])
				m.args = append(m.args[:mark.argsLen], substr)
				m.kwargs = m.kwargs[:mark.kwargsLen]
			}
			if instr.Action != nil {
				localArgs := append([]Value(nil), m.args[mark.argsLen:]...)
				localKwargs := append([]KWPair(nil), m.kwargs[mark.kwargsLen:]...)
				newArgs, newKwargs, err := instr.Action.Invoke(m.input, mark.markPos, pos, localArgs, localKwargs)
				if err != nil {
					panic(&UserError{Action: instr.Action.Name(), Cause: err})
				}
				m.args = append(m.args[:mark.argsLen], newArgs...)
				m.kwargs = append(m.kwargs[:mark.kwargsLen], newKwargs...)
			}
		}
		idx++
	}
}

// unwind implements §4.5's failure post-processing: pop frames,
// discarding mark and call frames (their speculative work is
// abandoned), until a backtrack frame is found; resume at its
// ret_idx/saved_pos, truncating args/kwargs to the lengths recorded
// when it was pushed. ok is false once the stack is completely
// drained with no backtrack frame left to catch the failure.
//
// The formal model describes the bottom failure-fallback frame as
// resuming execution at idx=0 (the program's FAIL instruction),
// which would immediately fail again with an empty stack — looping
// back into this same procedure with nothing left to pop. Reporting
// overall failure directly when that frame empties the stack is
// equivalent without the redundant hop, and matches §4.5's statement
// that "the caller distinguishes failure by the final pos being
// negative".
func (m *vm) unwind() (idx, pos int, ok bool) {
	for !m.stack.empty() {
		f := m.stack.pop()
		if f.kind != frameBacktrack {
			continue
		}
		m.args = m.args[:f.argsLen]
		m.kwargs = m.kwargs[:f.kwargsLen]
		if m.stack.empty() {
			// f was the bottom failure-fallback frame: nothing is
			// left to catch a further failure.
			return 0, -1, false
		}
		return f.retIdx, f.savedPos, true
	}
	return 0, -1, false
}
