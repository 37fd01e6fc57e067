package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArg(t *testing.T) {
	el := Element{Kind: "strnum", Args: []any{"bar", 42}}

	s, err := Arg[string](el, 0)
	assert.NoError(t, err)
	assert.Equal(t, "bar", s)

	n, err := Arg[int](el, 1)
	assert.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = Arg[int](el, 0)
	assert.ErrorIs(t, err, ErrArgType)

	_, err = Arg[string](el, 2)
	assert.ErrorIs(t, err, ErrArgIndex)

	_, err = Arg[string](el, -1)
	assert.ErrorIs(t, err, ErrArgIndex)
}

func TestElementString(t *testing.T) {
	el := Element{Kind: "strnum", Args: []any{"bar", 42}}

	assert.Equal(t, 2, el.Len())
	assert.Equal(t, "strnum[bar 42]", el.String())
}
