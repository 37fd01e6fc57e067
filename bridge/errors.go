package bridge

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrSourceFailure matches every failure synthesized by a Bridge.
// Errors passed by the Source itself are delivered untouched.
var ErrSourceFailure = errors.New("source failure")

// KindError is the failure reported when a failure kind fires without
// an error value.
type KindError struct {
	Kind Kind
	// Payload holds a non-error first argument, if one was given.
	Payload any
}

func (e *KindError) Error() string {
	if e.Payload != nil {
		return fmt.Sprintf("%v %q: %v", ErrSourceFailure, string(e.Kind), e.Payload)
	}
	return fmt.Sprintf("%v %q", ErrSourceFailure, string(e.Kind))
}

func (e *KindError) Is(target error) bool {
	return target == ErrSourceFailure
}

// failure maps the arguments of a failure occurrence to the error the
// consumer receives.
func failure(kind Kind, args []any) error {
	if len(args) == 0 || isNil(args[0]) {
		return &KindError{Kind: kind}
	}

	if err, ok := args[0].(error); ok {
		return err
	}

	return &KindError{Kind: kind, Payload: args[0]}
}

// isNil reports whether v is nil, including a typed nil held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
