package pegvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotScanner(t *testing.T) {
	input := []rune("ab")
	assert.Equal(t, 1, DotScanner{}.Scan(input, 0, len(input)))
	assert.Equal(t, ScanFail, DotScanner{}.Scan(input, 2, len(input)))
}

func TestLiteralScanner(t *testing.T) {
	sc := NewLiteralScanner("foo")
	input := []rune("foobar")
	assert.Equal(t, 3, sc.Scan(input, 0, len(input)))
	assert.Equal(t, ScanFail, sc.Scan(input, 1, len(input)))
	assert.Equal(t, ScanFail, sc.Scan([]rune("fo"), 0, 2))
}

func TestClassScannerBounds(t *testing.T) {
	digits := []CharRange{{Lo: '0', Hi: '9'}}
	sc := NewClassScanner(digits, false, 1, 3)
	input := []rune("123456")
	assert.Equal(t, 3, sc.Scan(input, 0, len(input)))

	scUnbounded := NewClassScanner(digits, false, 0, -1)
	assert.Equal(t, 6, scUnbounded.Scan(input, 0, len(input)))

	scMinFails := NewClassScanner(digits, false, 1, -1)
	assert.Equal(t, ScanFail, scMinFails.Scan([]rune("abc"), 0, 3))
}

func TestClassScannerNegated(t *testing.T) {
	digits := []CharRange{{Lo: '0', Hi: '9'}}
	sc := NewClassScanner(digits, true, 0, -1)
	assert.Equal(t, 3, sc.Scan([]rune("abc1"), 0, 4))
}

func TestRegexScannerAnchorsAtPos(t *testing.T) {
	sc, err := NewRegexScanner(`[a-z]+`)
	require.NoError(t, err)
	input := []rune("abc123def")
	assert.Equal(t, 3, sc.Scan(input, 0, len(input)))
	assert.Equal(t, ScanFail, sc.Scan(input, 3, len(input)))
}

func TestCharsetOverflow(t *testing.T) {
	cs := newCharset([]CharRange{{Lo: 0x1F600, Hi: 0x1F60F}})
	assert.True(t, cs.has(0x1F605))
	assert.False(t, cs.has('a'))
}
