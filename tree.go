package pegvm

import (
	"fmt"
	"strings"
)

// Node is the operator tree: the algebraic value the compiler
// consumes. It is produced by a surface notation parser (out of
// scope here) or built up directly by an embedder.
type Node interface {
	// String returns the canonical PEG-notation rendering of the
	// node, used only for diagnostics (error messages, logging).
	String() string

	// Accept dispatches to the matching visit method of v.
	Accept(v NodeVisitor) error
}

// Node Type: Dot

type DotNode struct{}

func NewDotNode() *DotNode { return &DotNode{} }

func (n *DotNode) String() string            { return "." }
func (n *DotNode) Accept(v NodeVisitor) error { return v.VisitDot(n) }

// Node Type: Lit

type LitNode struct{ Value string }

func NewLitNode(value string) *LitNode { return &LitNode{Value: value} }

func (n *LitNode) String() string            { return fmt.Sprintf("%q", n.Value) }
func (n *LitNode) Accept(v NodeVisitor) error { return v.VisitLit(n) }

// Node Type: Cls

// CharRange is a single character ([lo,lo]) or an inclusive range
// [lo,hi] within a CLS operator.
type CharRange struct{ Lo, Hi rune }

func (r CharRange) single() bool { return r.Lo == r.Hi }

func (r CharRange) String() string {
	if r.single() {
		return string(r.Lo)
	}
	return fmt.Sprintf("%c-%c", r.Lo, r.Hi)
}

type ClsNode struct {
	Ranges []CharRange
	Neg    bool
}

func NewClsNode(ranges []CharRange, neg bool) *ClsNode {
	return &ClsNode{Ranges: ranges, Neg: neg}
}

func (n *ClsNode) String() string {
	var s strings.Builder
	s.WriteString("[")
	if n.Neg {
		s.WriteString("^")
	}
	for _, r := range n.Ranges {
		s.WriteString(r.String())
	}
	s.WriteString("]")
	return s.String()
}

func (n *ClsNode) Accept(v NodeVisitor) error { return v.VisitCls(n) }

// Node Type: Rgx

type RgxNode struct {
	Pattern string
	Flags   string
}

func NewRgxNode(pattern, flags string) *RgxNode {
	return &RgxNode{Pattern: pattern, Flags: flags}
}

func (n *RgxNode) String() string            { return fmt.Sprintf("/%s/%s", n.Pattern, n.Flags) }
func (n *RgxNode) Accept(v NodeVisitor) error { return v.VisitRgx(n) }

// Node Type: Opt

type OptNode struct{ Expr Node }

func NewOptNode(expr Node) *OptNode { return &OptNode{Expr: expr} }

func (n *OptNode) String() string            { return fmt.Sprintf("%s?", n.Expr) }
func (n *OptNode) Accept(v NodeVisitor) error { return v.VisitOpt(n) }

// Node Type: Str

type StrNode struct{ Expr Node }

func NewStrNode(expr Node) *StrNode { return &StrNode{Expr: expr} }

func (n *StrNode) String() string            { return fmt.Sprintf("%s*", n.Expr) }
func (n *StrNode) Accept(v NodeVisitor) error { return v.VisitStr(n) }

// Node Type: Pls

type PlsNode struct{ Expr Node }

func NewPlsNode(expr Node) *PlsNode { return &PlsNode{Expr: expr} }

func (n *PlsNode) String() string            { return fmt.Sprintf("%s+", n.Expr) }
func (n *PlsNode) Accept(v NodeVisitor) error { return v.VisitPls(n) }

// Node Type: Sym

type SymNode struct{ Name string }

func NewSymNode(name string) *SymNode { return &SymNode{Name: name} }

func (n *SymNode) String() string            { return n.Name }
func (n *SymNode) Accept(v NodeVisitor) error { return v.VisitSym(n) }

// Node Type: And

type AndNode struct{ Expr Node }

func NewAndNode(expr Node) *AndNode { return &AndNode{Expr: expr} }

func (n *AndNode) String() string            { return fmt.Sprintf("&%s", n.Expr) }
func (n *AndNode) Accept(v NodeVisitor) error { return v.VisitAnd(n) }

// Node Type: Not

type NotNode struct{ Expr Node }

func NewNotNode(expr Node) *NotNode { return &NotNode{Expr: expr} }

func (n *NotNode) String() string            { return fmt.Sprintf("!%s", n.Expr) }
func (n *NotNode) Accept(v NodeVisitor) error { return v.VisitNot(n) }

// Node Type: Cap

type CapNode struct{ Expr Node }

func NewCapNode(expr Node) *CapNode { return &CapNode{Expr: expr} }

func (n *CapNode) String() string            { return fmt.Sprintf("~(%s)", n.Expr) }
func (n *CapNode) Accept(v NodeVisitor) error { return v.VisitCap(n) }

// Node Type: Bnd

type BndNode struct {
	Name string
	Expr Node
}

func NewBndNode(name string, expr Node) *BndNode { return &BndNode{Name: name, Expr: expr} }

func (n *BndNode) String() string            { return fmt.Sprintf("%s:(%s)", n.Name, n.Expr) }
func (n *BndNode) Accept(v NodeVisitor) error { return v.VisitBnd(n) }

// Node Type: Seq

type SeqNode struct{ Items []Node }

func NewSeqNode(items []Node) *SeqNode { return &SeqNode{Items: items} }

func (n *SeqNode) String() string            { return nodesString(n.Items, " ") }
func (n *SeqNode) Accept(v NodeVisitor) error { return v.VisitSeq(n) }

// Node Type: Chc

type ChcNode struct{ Items []Node }

func NewChcNode(items []Node) *ChcNode { return &ChcNode{Items: items} }

func (n *ChcNode) String() string            { return nodesString(n.Items, " / ") }
func (n *ChcNode) Accept(v NodeVisitor) error { return v.VisitChc(n) }

// Node Type: Rul

type RulNode struct {
	Expr   Node
	Action Action
}

func NewRulNode(expr Node, action Action) *RulNode {
	return &RulNode{Expr: expr, Action: action}
}

func (n *RulNode) String() string {
	if n.Action == nil {
		return n.Expr.String()
	}
	return fmt.Sprintf("%s{%s}", n.Expr, n.Action.Name())
}

func (n *RulNode) Accept(v NodeVisitor) error { return v.VisitRul(n) }

// Grammar is a set of named rule bodies, the top-level input to
// Compile. Rules are compiled in insertion order; no rule is a
// default start rule, since Match takes the start rule by name.
type Grammar struct {
	Order []string
	Defs  map[string]Node
}

func NewGrammar() *Grammar {
	return &Grammar{Defs: map[string]Node{}}
}

// Define adds (or replaces) the body of a named rule.
func (g *Grammar) Define(name string, expr Node) {
	if _, ok := g.Defs[name]; !ok {
		g.Order = append(g.Order, name)
	}
	g.Defs[name] = expr
}

func nodesString(items []Node, sep string) string {
	var s strings.Builder
	for i, item := range items {
		s.WriteString(item.String())
		if i < len(items)-1 {
			s.WriteString(sep)
		}
	}
	return s.String()
}
