package pegvm

import "fmt"

// compiler emits a self-contained, relocatable instruction slice per
// operator-tree node. Every BRANCH/COMMIT/UPDATE/RESTORE/FAILTWICE
// oploc is a *relative* delta computed directly from measured slice
// lengths (§4.2's "+len(e)+2" style formulas), so concatenating
// sub-slices never needs to touch them: a delta is translation
// invariant under concatenation. Only CALL carries an absolute
// address, and only rule names are forward-referenceable, so those
// are the only sites needing the teacher's backpatch treatment
// (grammar_compiler.go's openAddrs/backpatchCallSites), narrowed here
// to CALL alone instead of every jump.
type compiler struct {
	cfg CompilerConfig
}

// Compile turns a Grammar into a Program (§6 "Program build API").
// Every rule in g is compiled, in insertion order; undefined rule
// references are collected and reported together via go-multierror
// rather than stopping at the first one.
func Compile(g *Grammar, cfg CompilerConfig) (*Program, error) {
	c := &compiler{cfg: cfg}

	code := []Instruction{{Op: OpFail}}
	ruleAddr := make(map[string]int, len(g.Order))

	var errs []*CompileError
	for _, name := range g.Order {
		ruleAddr[name] = len(code)
		body, err := c.compile(g.Defs[name])
		if err != nil {
			if ce, ok := err.(*CompileError); ok {
				errs = append(errs, ce)
			} else {
				errs = append(errs, &CompileError{Rule: name, Message: err.Error()})
			}
			continue
		}
		code = append(code, body...)
		code = append(code, Instruction{Op: OpReturn})
	}
	code = append(code, Instruction{Op: OpPass})

	for i := range code {
		if code[i].Op != OpCall {
			continue
		}
		addr, ok := ruleAddr[code[i].Name]
		if !ok {
			errs = append(errs, &CompileError{Message: fmt.Sprintf("undefined rule %q", code[i].Name)})
			continue
		}
		code[i].OpLoc = addr
	}

	if err := newCompileErrors(errs); err != nil {
		log.WithField("rules", len(g.Order)).Debug("compile failed")
		return nil, err
	}

	log.WithFields(map[string]any{"rules": len(g.Order), "instructions": len(code)}).Debug("compiled program")
	return &Program{Code: code, RuleAddr: ruleAddr}, nil
}

func (c *compiler) compile(n Node) ([]Instruction, error) {
	switch t := n.(type) {
	case *DotNode:
		return []Instruction{{Op: OpScan, Scanner: DotScanner{}}}, nil

	case *LitNode:
		return []Instruction{{Op: OpScan, Scanner: NewLiteralScanner(t.Value)}}, nil

	case *ClsNode:
		return []Instruction{{Op: OpScan, Scanner: NewClassScanner(t.Ranges, t.Neg, 1, 1)}}, nil

	case *RgxNode:
		sc, err := NewRegexScanner(t.Pattern)
		if err != nil {
			return nil, &CompileError{Message: fmt.Sprintf("bad regex /%s/: %v", t.Pattern, err)}
		}
		return []Instruction{{Op: OpScan, Scanner: sc}}, nil

	case *OptNode:
		sub, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		code := make([]Instruction, 0, len(sub)+2)
		code = append(code, Instruction{Op: OpBranch, OpLoc: len(sub) + 2})
		code = append(code, sub...)
		code = append(code, Instruction{Op: OpCommit, OpLoc: 1})
		return code, nil

	case *StrNode:
		if sc, ok := c.tryCollapse(t.Expr, false); ok {
			return []Instruction{{Op: OpScan, Scanner: sc}}, nil
		}
		sub, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		code := make([]Instruction, 0, len(sub)+2)
		code = append(code, Instruction{Op: OpBranch, OpLoc: len(sub) + 2})
		code = append(code, sub...)
		code = append(code, Instruction{Op: OpUpdate, OpLoc: -len(sub)})
		return code, nil

	case *PlsNode:
		if sc, ok := c.tryCollapse(t.Expr, true); ok {
			return []Instruction{{Op: OpScan, Scanner: sc}}, nil
		}
		first, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		rest, err := c.compile(NewStrNode(t.Expr))
		if err != nil {
			return nil, err
		}
		code := make([]Instruction, 0, len(first)+len(rest))
		code = append(code, first...)
		code = append(code, rest...)
		return code, nil

	case *SymNode:
		return []Instruction{{Op: OpCall, Name: t.Name, OpLoc: -1}}, nil

	case *AndNode:
		sub, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		code := make([]Instruction, 0, len(sub)+3)
		code = append(code, Instruction{Op: OpBranch, OpLoc: len(sub) + 2})
		code = append(code, sub...)
		code = append(code, Instruction{Op: OpRestore, OpLoc: 2})
		code = append(code, Instruction{Op: OpFail})
		return code, nil

	case *NotNode:
		sub, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		code := make([]Instruction, 0, len(sub)+2)
		code = append(code, Instruction{Op: OpBranch, OpLoc: len(sub) + 2})
		code = append(code, sub...)
		code = append(code, Instruction{Op: OpFailTwice})
		return code, nil

	case *CapNode:
		sub, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		return wrapMarked(sub, true, nil, needsFreshTail(t.Expr)), nil

	case *BndNode:
		return c.compile(NewRulNode(t.Expr, NewBindAction(t.Name)))

	case *SeqNode:
		var code []Instruction
		for _, item := range t.Items {
			sub, err := c.compile(item)
			if err != nil {
				return nil, err
			}
			code = append(code, sub...)
		}
		return code, nil

	case *ChcNode:
		return c.compileChoice(t.Items)

	case *RulNode:
		sub, err := c.compile(t.Expr)
		if err != nil {
			return nil, err
		}
		if t.Action == nil {
			return sub, nil
		}
		return wrapMarked(sub, false, t.Action, needsFreshTail(t.Expr)), nil

	default:
		return nil, &CompileError{Message: fmt.Sprintf("unknown node type %T", n)}
	}
}

// compileChoice right-folds CHC([e1, ..., en]) into nested binary
// choices: [BRANCH(+len(A)+2), ...A..., COMMIT(+len(B)+1), ...B...]
// with B itself the (n-1)-ary choice of the remaining alternatives
// (§4.2 "CHC").
func (c *compiler) compileChoice(items []Node) ([]Instruction, error) {
	if len(items) == 1 {
		return c.compile(items[0])
	}
	a, err := c.compile(items[0])
	if err != nil {
		return nil, err
	}
	b, err := c.compileChoice(items[1:])
	if err != nil {
		return nil, err
	}
	code := make([]Instruction, 0, len(a)+len(b)+2)
	code = append(code, Instruction{Op: OpBranch, OpLoc: len(a) + 2})
	code = append(code, a...)
	code = append(code, Instruction{Op: OpCommit, OpLoc: len(b) + 1})
	code = append(code, b...)
	return code, nil
}

// tryCollapse implements the quantifier-collapse optimization (§4.2):
// STR/PLS directly over a bare character class (no CAP/BND/RUL
// wrapping it — those would attach marking/capturing/action to an
// instruction this collapse never emits) becomes a single SCAN with
// adjusted min/max counts instead of a BRANCH/SCAN/UPDATE loop.
func (c *compiler) tryCollapse(e Node, plus bool) (Scanner, bool) {
	if !c.cfg.QuantifierCollapse {
		return nil, false
	}
	cls, ok := e.(*ClsNode)
	if !ok {
		return nil, false
	}
	minN := 0
	if plus {
		minN = 1
	}
	return NewClassScanner(cls.Ranges, cls.Neg, minN, -1), true
}

// needsFreshTail reports whether wrapping e in CAP/RUL must append a
// brand new NOOP tail rather than annotate e's own last instruction,
// beyond the general "forbidden opcode" check wrapMarked already
// does. Two shapes need this:
//
//   - CHC: a branch taken mid-choice must not land on a tail meant
//     for a sibling alternative (§4.2 "CAP", "RUL").
//   - AND: its compiled form ([BRANCH, ...e..., RESTORE, FAIL]) only
//     ever reaches its last instruction (FAIL) on the *failure* path —
//     success skips past it via RESTORE's jump, landing one index
//     beyond the block. FAIL isn't itself a stack-manipulating opcode,
//     so wrapMarked's forbidden-opcode check wouldn't force a fresh
//     tail here on its own, yet annotating FAIL would attach
//     capturing/action to an instruction the success path never
//     executes, leaking the mark frame pushed at the head. NOT has the
//     same shape but its tail (FAILTWICE) already forces a fresh NOOP
//     via the forbidden-opcode check, which happens to land exactly
//     where NOT's success jump already targets.
//
// A SEQ whose last item is one of these shapes (or an action-less RUL
// around one) ends with that item's instructions, so it needs the same
// fresh tail.
func needsFreshTail(e Node) bool {
	switch t := e.(type) {
	case *ChcNode, *AndNode:
		return true
	case *SeqNode:
		return len(t.Items) > 0 && needsFreshTail(t.Items[len(t.Items)-1])
	case *RulNode:
		return t.Action == nil && needsFreshTail(t.Expr)
	default:
		return false
	}
}

// wrapMarked attaches marking to the head instruction and
// capturing/action to the tail instruction of a compiled
// subprogram, inserting a fresh NOOP at either end when the natural
// slot is unavailable: already marked/captured, a stack-manipulating
// opcode that invariant (b) forbids ever carrying these fields, or
// (forceFreshTail) needsFreshTail reported that the subprogram's last
// instruction is not reached on every success path, e.g. a choice
// whose COMMIT jumps past it (§4.2 "CAP", "RUL").
func wrapMarked(sub []Instruction, capturing bool, action Action, forceFreshTail bool) []Instruction {
	out := make([]Instruction, len(sub))
	copy(out, sub)
	if len(out) == 0 {
		out = []Instruction{{Op: OpNoop}}
	}

	if out[0].Op.isStackManipulating() || out[0].Marking {
		out = append([]Instruction{{Op: OpNoop, Marking: true}}, out...)
	} else {
		out[0].Marking = true
	}

	last := len(out) - 1
	if forceFreshTail || out[last].Op.isStackManipulating() || out[last].Capturing || out[last].Action != nil {
		out = append(out, Instruction{Op: OpNoop, Capturing: capturing, Action: action})
	} else {
		out[last].Capturing = capturing
		out[last].Action = action
	}
	return out
}
