// Package runtime ties the session store, hook manager, and research router
// into the per-turn control flow: append, tool.pre (may cancel), tool,
// append, tool.post.
package runtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sidefx/internal/hooks"
	"sidefx/internal/logging"
	"sidefx/internal/research"
	"sidefx/internal/session"
)

// ToolCancelledError reports a turn cancelled by a tool.pre hook.
type ToolCancelledError struct {
	Tool   string
	Reason string
}

func (e *ToolCancelledError) Error() string {
	return fmt.Sprintf("tool %s cancelled by hook: %s", e.Tool, e.Reason)
}

// ToolFunc is the actual tool body RunTool wraps with lifecycle events.
type ToolFunc func(ctx context.Context) (string, error)

// Runtime orchestrates one agent process's side effects.
type Runtime struct {
	sessions *session.Store
	hooks    hooks.Manager
	router   *research.Router

	dir   string
	model string
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithWorkingDir sets the working directory reported to hooks.
func WithWorkingDir(dir string) Option {
	return func(r *Runtime) { r.dir = dir }
}

// WithModel sets the model name reported to hooks.
func WithModel(model string) Option {
	return func(r *Runtime) { r.model = model }
}

// New wires a Runtime from its collaborators.
func New(sessions *session.Store, mgr hooks.Manager, router *research.Router, opts ...Option) *Runtime {
	r := &Runtime{sessions: sessions, hooks: mgr, router: router}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sessions exposes the underlying store for direct appends and reads.
func (r *Runtime) Sessions() *session.Store { return r.sessions }

// StartSession mints a session id and fires session.start.
func (r *Runtime) StartSession(ctx context.Context) string {
	id := uuid.NewString()
	r.hooks.Fire(ctx, hooks.EventSessionStart, r.hookContext(hooks.EventSessionStart, id))
	logging.Runtime("Session started: %s", id)
	return id
}

// EndSession fires session.end and drops the session's history.
func (r *Runtime) EndSession(ctx context.Context, id string) {
	r.hooks.Fire(ctx, hooks.EventSessionEnd, r.hookContext(hooks.EventSessionEnd, id))
	r.sessions.ClearSession(id)
	logging.Runtime("Session ended: %s", id)
}

// RunTool executes one tool invocation under the hook lifecycle. A tool.pre
// cancellation stops the turn before the tool runs; tool.post always fires
// once the tool has run, success or not, and a tool error additionally fires
// the error event.
func (r *Runtime) RunTool(ctx context.Context, sessionID, toolName, toolArgs string, fn ToolFunc) (string, error) {
	preCtx := r.hookContext(hooks.EventToolPre, sessionID)
	preCtx.ToolName = toolName
	preCtx.ToolArgs = toolArgs

	if res := r.hooks.Fire(ctx, hooks.EventToolPre, preCtx); res.Cancelled {
		return "", &ToolCancelledError{Tool: toolName, Reason: res.Reason}
	}

	out, err := fn(ctx)

	postCtx := r.hookContext(hooks.EventToolPost, sessionID)
	postCtx.ToolName = toolName
	postCtx.ToolArgs = toolArgs
	if err != nil {
		postCtx.ToolError = err.Error()
	} else {
		postCtx.ToolResult = out
		r.sessions.AddMessage(sessionID, "tool", out)
	}
	r.hooks.Fire(ctx, hooks.EventToolPost, postCtx)

	if err != nil {
		errCtx := r.hookContext(hooks.EventError, sessionID)
		errCtx.ToolName = toolName
		errCtx.ToolError = err.Error()
		r.hooks.Fire(ctx, hooks.EventError, errCtx)
		return "", err
	}

	return out, nil
}

// Research routes a query and records the outcome in the session.
func (r *Runtime) Research(ctx context.Context, sessionID string, q research.Query) research.RouteResult {
	res := r.router.Route(ctx, q, research.RouteOptions{})
	if res.OK() {
		r.sessions.AddMessage(sessionID, "tool", res.Content)
	}
	return res
}

// Compact trims a session's history to its most recent half and fires the
// compact event.
func (r *Runtime) Compact(ctx context.Context, id string) {
	history := r.sessions.History(id)
	if len(history) > 1 {
		r.sessions.ClearSession(id)
		for _, msg := range history[len(history)/2:] {
			r.sessions.AddMessage(id, msg.Role, msg.Content)
		}
	}

	r.hooks.Fire(ctx, hooks.EventCompact, r.hookContext(hooks.EventCompact, id))
	logging.RuntimeDebug("Session compacted: %s (%d -> %d messages)",
		id, len(history), len(r.sessions.History(id)))
}

func (r *Runtime) hookContext(event hooks.Event, sessionID string) hooks.Context {
	return hooks.Context{
		Event:     event,
		SessionID: sessionID,
		Dir:       r.dir,
		Model:     r.model,
	}
}
