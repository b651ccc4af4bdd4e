package pegvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digits() *ClsNode {
	return NewClsNode([]CharRange{{Lo: '0', Hi: '9'}}, false)
}

func TestCompileUndefinedRule(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewSymNode("missing"))

	_, err := Compile(g, DefaultCompilerConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCompileFraming(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewLitNode("a"))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	assert.Equal(t, OpFail, prog.Code[0].Op)
	assert.Equal(t, OpPass, prog.Code[prog.PassAddr()].Op)

	addr, ok := prog.Addr("start")
	require.True(t, ok)
	assert.Equal(t, OpScan, prog.Code[addr].Op)
	assert.Equal(t, OpReturn, prog.Code[addr+1].Op)
}

func TestCompileQuantifierCollapse(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewStrNode(digits()))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	require.Equal(t, OpScan, prog.Code[addr].Op)
	assert.Equal(t, OpReturn, prog.Code[addr+1].Op)

	cs, ok := prog.Code[addr].Scanner.(*ClassScanner)
	require.True(t, ok)
	assert.Equal(t, 0, cs.MinN)
	assert.Equal(t, -1, cs.MaxN)
}

func TestCompileQuantifierCollapseDisabled(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewStrNode(digits()))

	cfg := DefaultCompilerConfig()
	cfg.QuantifierCollapse = false
	prog, err := Compile(g, cfg)
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	assert.Equal(t, OpBranch, prog.Code[addr].Op)
}

func TestCompileCaptureMarksHeadAndTail(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewCapNode(NewLitNode("hi")))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	instr := prog.Code[addr]
	assert.True(t, instr.Marking)
	assert.True(t, instr.Capturing)
}

func TestCompileCaptureOfChoiceForcesFreshTail(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewCapNode(NewChcNode([]Node{NewLitNode("a"), NewLitNode("b")})))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	body := prog.Code[addr : addr+5] // BRANCH, SCAN(a), COMMIT, SCAN(b), NOOP
	require.True(t, body[0].Marking)
	tail := body[len(body)-1]
	assert.Equal(t, OpNoop, tail.Op)
	assert.True(t, tail.Capturing)
}

func TestCompileCaptureOfAndForcesFreshTail(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewCapNode(NewAndNode(NewLitNode("a"))))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	// BRANCH, SCAN(a), RESTORE, FAIL, NOOP(capturing)
	body := prog.Code[addr : addr+5]
	assert.Equal(t, OpFail, body[3].Op)
	tail := body[4]
	assert.Equal(t, OpNoop, tail.Op)
	assert.True(t, tail.Capturing)
}

func TestCompileNoStackManipulatingOpcodeCarriesMarkingOrCapturing(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewCapNode(NewOptNode(NewLitNode("a"))))
	g.Define("and", NewCapNode(NewAndNode(NewLitNode("a"))))
	g.Define("rule", NewRulNode(NewSymNode("start"), NewBindAction("x")))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	for _, instr := range prog.Code {
		if instr.Op.isStackManipulating() {
			assert.False(t, instr.Marking, "stack-manipulating opcode must never carry marking")
			assert.False(t, instr.Capturing, "stack-manipulating opcode must never carry capturing")
			assert.Nil(t, instr.Action, "stack-manipulating opcode must never carry an action")
		}
	}
}

func TestCompileChoiceRightFold(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewChcNode([]Node{NewLitNode("a"), NewLitNode("b"), NewLitNode("c")}))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	// BRANCH(a), SCAN(a), COMMIT, BRANCH(b), SCAN(b), COMMIT, SCAN(c), RETURN
	assert.Equal(t, OpBranch, prog.Code[addr].Op)
	assert.Equal(t, OpScan, prog.Code[addr+1].Op)
	assert.Equal(t, OpCommit, prog.Code[addr+2].Op)
	assert.Equal(t, OpBranch, prog.Code[addr+3].Op)
}

func TestCompileBindDesugarsToRuleWithBindAction(t *testing.T) {
	g := NewGrammar()
	g.Define("start", NewBndNode("x", NewCapNode(digits())))

	prog, err := Compile(g, DefaultCompilerConfig())
	require.NoError(t, err)

	addr, _ := prog.Addr("start")
	var sawAction bool
	for i := addr; prog.Code[i].Op != OpReturn; i++ {
		if prog.Code[i].Action != nil {
			sawAction = true
			assert.Equal(t, "bind:x", prog.Code[i].Action.Name())
		}
	}
	assert.True(t, sawAction)
}
