package pegvm

import "regexp"

// ScanFail is the sentinel returned by Scanner.Scan on a failed
// match (§3 "Scanner": "scan(s, pos, slen) → new_pos or FAILURE").
const ScanFail = -1

// Scanner is a terminal matcher: it consumes zero or more runes
// starting at pos and reports the position after the match, or
// ScanFail. It must never mutate shared state (§4.1).
type Scanner interface {
	Scan(input []rune, pos, slen int) int
}

// DotScanner matches any one character.
type DotScanner struct{}

func (DotScanner) Scan(input []rune, pos, slen int) int {
	if pos >= slen {
		return ScanFail
	}
	return pos + 1
}

// LiteralScanner matches a fixed string of runes.
type LiteralScanner struct{ Value []rune }

func NewLiteralScanner(value string) *LiteralScanner {
	return &LiteralScanner{Value: []rune(value)}
}

func (s *LiteralScanner) Scan(input []rune, pos, slen int) int {
	end := pos + len(s.Value)
	if end > slen {
		return ScanFail
	}
	for i, r := range s.Value {
		if input[pos+i] != r {
			return ScanFail
		}
	}
	return end
}

// ClassScanner matches a run of at least MinN and at most MaxN
// (MaxN < 0 meaning unbounded) characters that belong (or, when Neg
// is set, don't belong) to the union of Ranges. It is the only
// scanner whose greedy semantics can stand in for an outer STR/PLS
// quantifier (see quantifier collapse in compiler.go).
type ClassScanner struct {
	Ranges []CharRange
	Neg    bool
	MinN   int
	MaxN   int

	cs *charset
}

func NewClassScanner(ranges []CharRange, neg bool, minN, maxN int) *ClassScanner {
	return &ClassScanner{
		Ranges: ranges,
		Neg:    neg,
		MinN:   minN,
		MaxN:   maxN,
		cs:     newCharset(ranges),
	}
}

func (s *ClassScanner) matches(r rune) bool {
	return s.cs.has(r) != s.Neg
}

func (s *ClassScanner) Scan(input []rune, pos, slen int) int {
	consumed := 0
	for pos < slen && (s.MaxN < 0 || consumed < s.MaxN) {
		if !s.matches(input[pos]) {
			break
		}
		pos++
		consumed++
	}
	if consumed < s.MinN {
		return ScanFail
	}
	return pos
}

// RegexScanner delegates to a host regex engine, anchored at pos.
// Go's regexp (RE2) has no offset-anchored match primitive, so this
// wraps FindStringIndex over the remaining input and requires the
// match to start at offset 0 of that slice — the "precompile with
// the start-anchor equivalent" strategy the design notes call for.
type RegexScanner struct {
	re *regexp.Regexp
}

func NewRegexScanner(pattern string) (*RegexScanner, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexScanner{re: re}, nil
}

func (s *RegexScanner) Scan(input []rune, pos, slen int) int {
	loc := s.re.FindStringIndex(string(input[pos:slen]))
	if loc == nil || loc[0] != 0 {
		return ScanFail
	}
	// loc is a byte offset into string(input[pos:slen]); since that
	// substring is freshly encoded from runes, converting it back to
	// a rune count keeps the VM's cursor in rune units throughout.
	matched := []rune(string(input[pos:slen])[:loc[1]])
	return pos + len(matched)
}
