// Package hooks runs user-configured lifecycle hooks as constrained
// subprocesses. Hooks are fire-once per event, execute in registration order,
// and only a tool.pre hook exiting non-zero can cancel the surrounding turn.
package hooks

import "time"

// DefaultTimeout bounds a hook subprocess when no per-hook timeout is set.
const DefaultTimeout = 10 * time.Second

// Definition is one configured hook as it arrives from configuration.
type Definition struct {
	Event   Event
	Command string

	// Matcher restricts the hook to tool names matching this pattern.
	// Only consulted for tool.pre and tool.post events.
	Matcher string

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration

	// Background hooks are dispatched without being awaited; their outcome,
	// including any cancellation signal, is discarded.
	Background bool
}

// Context is the immutable per-invocation record passed to Fire. Optional
// fields are empty strings when the event does not carry them.
type Context struct {
	Event     Event
	SessionID string
	Dir       string

	Model      string
	ToolName   string
	ToolArgs   string
	ToolResult string
	ToolError  string
}

// Result is the outcome of firing an event. Cancelled is only ever true for
// tool.pre; every other event resolves with Cancelled=false regardless of
// what the subprocesses did.
type Result struct {
	Cancelled bool
	Reason    string
}
