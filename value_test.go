package pegvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermine(t *testing.T) {
	assert.Equal(t, emptyValue, determine(nil))
	assert.Equal(t, "a", determine([]Value{"a", "b"}))
}

func TestKwargsToMapLastWriteWins(t *testing.T) {
	m := kwargsToMap([]KWPair{{Name: "x", Value: 1}, {Name: "x", Value: 2}, {Name: "y", Value: 3}})
	assert.Equal(t, 2, m["x"])
	assert.Equal(t, 3, m["y"])
}

func TestNewBindAction(t *testing.T) {
	act := NewBindAction("x")
	assert.Equal(t, "bind:x", act.Name())

	args, kwargs, err := act.Invoke(nil, 0, 0, []Value{"42"}, []KWPair{{Name: "y", Value: "kept"}})
	assert.NoError(t, err)
	assert.Nil(t, args)
	assert.Equal(t, []KWPair{{Name: "y", Value: "kept"}, {Name: "x", Value: "42"}}, kwargs)
}

func TestNewBindActionWithNoArgsBindsEmptyValue(t *testing.T) {
	act := NewBindAction("x")
	_, kwargs, err := act.Invoke(nil, 0, 0, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, emptyValue, kwargs[0].Value)
}
