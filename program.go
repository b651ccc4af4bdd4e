package pegvm

// Program is the compiler's output: a linear instruction sequence
// plus the name→address index used to resolve CALL targets and to
// look up a start rule at match time (§3 "Instruction program", §6
// "Program build API").
//
// Address 0 always holds the FAIL sentinel and the last address
// always holds the PASS sentinel (§4.2 "Whole-program framing");
// every compiled rule body sits between them, terminated by RETURN.
type Program struct {
	Code     []Instruction
	RuleAddr map[string]int
}

// PassAddr returns the address of the program's PASS sentinel, the
// last instruction.
func (p *Program) PassAddr() int { return len(p.Code) - 1 }

// Addr looks up the entry address of a compiled rule.
func (p *Program) Addr(rule string) (int, bool) {
	addr, ok := p.RuleAddr[rule]
	return addr, ok
}
