package executor

import (
	"context"
	"errors"

	"github.com/mickyco94/pullstream/bridge"
)

// An Executor is an action that is run for every element a stream
// pulls from its bridge.
type Executor interface {

	// Execute runs the action for the provided element.
	// All errors are logged by the Pool that ran it.
	//
	// Context is used for cancellation of the running Executors
	Execute(context.Context, bridge.Element) error
}

// ErrTimeoutExceeded is an err that indicates the configured timeout for the execution
// has been exceeded.
// Timeout for executors can be set by setting the "timeout" property
// in the executor specification. The units are in seconds for this field.
var ErrTimeoutExceeded = errors.New("Execution timeout exceeded")
