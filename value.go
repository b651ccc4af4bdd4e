package pegvm

// Value is an opaque emitted or bound value. CAP emits strings;
// RUL actions may emit anything — per the design notes, action
// payloads are "an opaque value handle whose concrete type is chosen
// by the host embedding", so this is a plain interface{} alias
// rather than the teacher's closed Value/ValueVisitor hierarchy
// (grammar_ast.go's String/Sequence/Node/Error), which exists to
// build one specific AST shape, not to carry arbitrary host payloads.
type Value = any

// KWPair is one (name, value) binding in the kwargs sequence. Order
// is preserved on insertion; a name may appear more than once, with
// the mapping returned to the caller using last-write-wins semantics
// (§4.4).
type KWPair struct {
	Name  string
	Value Value
}

// emptyValue is the determined value of an empty slice (§4.4
// "Determined value").
var emptyValue Value

// determine returns the first element of values if any, otherwise
// the empty sentinel.
func determine(values []Value) Value {
	if len(values) == 0 {
		return emptyValue
	}
	return values[0]
}

// kwargsToMap collapses an ordered kwargs sequence into the
// last-write-wins mapping returned to callers (§4.4).
func kwargsToMap(kwargs []KWPair) map[string]Value {
	m := make(map[string]Value, len(kwargs))
	for _, kw := range kwargs {
		m[kw.Name] = kw.Value
	}
	return m
}
