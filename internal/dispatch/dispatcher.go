// Package dispatch defines the boundary between the application core and
// the external workflow automation engine that registers and executes
// synthesized workflow graphs.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
)

// Common errors returned by dispatcher implementations
var (
	// ErrMissingCredential is returned when no engine API key is
	// configured. This is a precondition failure checked before any
	// network call is made.
	ErrMissingCredential = errors.New("automation engine API key is not configured")

	// ErrDispatchFailed is returned when registering or executing a
	// workflow on the engine fails. The underlying cause is wrapped.
	ErrDispatchFailed = errors.New("failed to dispatch workflow to automation engine")
)

// Dispatcher registers a workflow graph on an external automation engine
// and immediately triggers its execution.
// Version: 1.0
type Dispatcher interface {
	// Dispatch submits the workflow marked active to the engine, then
	// executes it using the identifier the engine assigned. The task ID
	// is used for logging correlation only. Both steps must succeed;
	// a failure in the execute step leaves the workflow registered but
	// not executed, which is surfaced, not rolled back.
	// Returns the engine-assigned workflow identifier on success.
	Dispatch(ctx context.Context, taskID int64, workflow json.RawMessage) (string, error)
}
