package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrArgIndex = errors.New("argument index out of range")
	ErrArgType  = errors.New("argument has unexpected type")
)

// Element is a data occurrence tagged with the kind that produced it.
type Element struct {
	Kind Kind  `json:"kind"`
	Args []any `json:"args"`
}

// Len returns the number of arguments carried by the occurrence.
func (e Element) Len() int { return len(e.Args) }

func (e Element) String() string {
	return fmt.Sprintf("%s%v", e.Kind, e.Args)
}

// Arg returns argument i of e as a T.
//
//	path, err := bridge.Arg[string](el, 0)
func Arg[T any](e Element, i int) (T, error) {
	var zero T

	if i < 0 || i >= len(e.Args) {
		return zero, fmt.Errorf("%w: %d for %q with %d args", ErrArgIndex, i, e.Kind, len(e.Args))
	}

	v, ok := e.Args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %d for %q is %T", ErrArgType, i, e.Kind, e.Args[i])
	}

	return v, nil
}
