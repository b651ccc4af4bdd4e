package pegvm

// CompilerConfig holds the compiler's tunables. The teacher's Config
// (config.go) is a general string-keyed bag of bool/int/string
// settings because it also configures the notation parser and the
// grammar loader; the core compiler here only ever has one knob, so
// it shrinks to a plain typed struct instead of carrying that
// machinery for a single field.
type CompilerConfig struct {
	// QuantifierCollapse enables folding STR/PLS over a bare class
	// scanner into a single SCAN instruction (§4.2 "Quantifier
	// collapse"). Mirrors the teacher's compiler.optimize == 1 gate
	// (grammar_compiler.go).
	QuantifierCollapse bool
}

// DefaultCompilerConfig matches the teacher's NewConfig default of
// compiler.optimize = 1.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{QuantifierCollapse: true}
}
