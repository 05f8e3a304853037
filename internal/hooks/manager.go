package hooks

import (
	"context"
	"fmt"
	"regexp"

	"sidefx/internal/logging"
)

// Manager fires lifecycle events at configured hooks.
type Manager interface {
	Fire(ctx context.Context, event Event, hookCtx Context) Result
}

// compiledHook is a Definition with its matcher compiled once at registration.
type compiledHook struct {
	def     Definition
	matcher *regexp.Regexp
}

// activeManager executes hooks sequentially in registration order.
type activeManager struct {
	hooks []compiledHook
	shell Shell
}

// noopManager is the zero-overhead path for the common case of no configured
// hooks: Fire returns immediately without iterating or spawning anything.
type noopManager struct{}

func (noopManager) Fire(context.Context, Event, Context) Result { return Result{} }

// Option configures a Manager at construction.
type Option func(*activeManager)

// WithShell overrides the platform shell. Used by tests and embedders that
// need a specific interpreter.
func WithShell(shell Shell) Option {
	return func(m *activeManager) { m.shell = shell }
}

// NewManager compiles the given definitions into a Manager. An empty list
// yields the no-op variant. Unknown events and invalid matcher patterns are
// configuration mistakes and fail construction.
func NewManager(defs []Definition, opts ...Option) (Manager, error) {
	if len(defs) == 0 {
		return noopManager{}, nil
	}

	m := &activeManager{
		hooks: make([]compiledHook, 0, len(defs)),
		shell: DefaultShell(),
	}
	for _, opt := range opts {
		opt(m)
	}

	for i, def := range defs {
		if _, err := ParseEvent(string(def.Event)); err != nil {
			return nil, fmt.Errorf("hook %d: %w", i, err)
		}
		if def.Command == "" {
			return nil, fmt.Errorf("hook %d (%s): command is required", i, def.Event)
		}

		ch := compiledHook{def: def}
		if def.Matcher != "" {
			re, err := regexp.Compile(def.Matcher)
			if err != nil {
				return nil, fmt.Errorf("hook %d (%s): bad matcher %q: %w", i, def.Event, def.Matcher, err)
			}
			ch.matcher = re
		}
		m.hooks = append(m.hooks, ch)
	}

	logging.Boot("Hook manager active: %d hooks registered", len(m.hooks))
	return m, nil
}

// matches reports whether a hook belongs in the candidate set for this
// invocation. A hook with a matcher but no tool name in context is excluded;
// matchers are meaningless outside tool events.
func (h compiledHook) matches(event Event, hookCtx Context) bool {
	if h.def.Event != event {
		return false
	}
	if h.matcher == nil {
		return true
	}
	if !isToolEvent(event) || hookCtx.ToolName == "" {
		return false
	}
	return h.matcher.MatchString(hookCtx.ToolName)
}

// Fire runs every matching hook in registration order. Background hooks are
// dispatched and forgotten. For tool.pre, the first cancelling result
// short-circuits the remaining candidates.
func (m *activeManager) Fire(ctx context.Context, event Event, hookCtx Context) Result {
	for _, h := range m.hooks {
		if !h.matches(event, hookCtx) {
			continue
		}

		if h.def.Background {
			logging.HooksDebug("Dispatching background hook: event=%s cmd=%q", event, h.def.Command)
			// Detached from the caller's context so a finished turn cannot
			// kill a still-running auxiliary action.
			go m.runHook(context.Background(), h.def, hookCtx)
			continue
		}

		res := m.runHook(ctx, h.def, hookCtx)
		if event == EventToolPre && res.Cancelled {
			logging.Hooks("tool.pre hook cancelled turn: tool=%s reason=%q", hookCtx.ToolName, res.Reason)
			return res
		}
	}

	return Result{}
}
