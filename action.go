package pegvm

// Action is a user-supplied rule transform (§6 "Action API"). It is
// modeled as an interface with a single invoke method per the design
// notes ("Dynamic action callables"), so a host embedding can carry
// whatever closure or object implements its semantics.
//
// Invoke receives the full input and the [start, end) span matched
// by the rule it is attached to, plus the args/kwargs accumulated
// locally within that rule's mark frame, and returns the replacement
// args/kwargs for that frame. A non-nil error is a UserError (§7):
// the VM abandons the match and Match returns a *UserError whose
// Cause is the returned error, unmodified.
type Action interface {
	Name() string
	Invoke(input []rune, start, end int, args []Value, kwargs []KWPair) ([]Value, []KWPair, error)
}

// ActionFunc adapts a plain function to the Action interface, the
// common case when an embedder doesn't need a named/stateful action
// object.
type ActionFunc struct {
	FuncName string
	Func     func(input []rune, start, end int, args []Value, kwargs []KWPair) ([]Value, []KWPair, error)
}

func (a ActionFunc) Name() string { return a.FuncName }

func (a ActionFunc) Invoke(input []rune, start, end int, args []Value, kwargs []KWPair) ([]Value, []KWPair, error) {
	return a.Func(input, start, end, args, kwargs)
}

// NewBindAction builds the action BND(name, e) compiles down to
// (§4.6): "RUL(e, Bind(name)) whose action replaces local_args with
// [] and sets kwargs[name] = determined value of local_args".
func NewBindAction(name string) Action {
	return ActionFunc{
		FuncName: "bind:" + name,
		Func: func(_ []rune, _, _ int, args []Value, kwargs []KWPair) ([]Value, []KWPair, error) {
			bound := determine(args)
			return nil, append(append([]KWPair(nil), kwargs...), KWPair{Name: name, Value: bound}), nil
		},
	}
}
