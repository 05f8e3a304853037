package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"sidefx/internal/logging"
)

const (
	// EnvPrefix namespaces the variables sidefx synthesizes for hook
	// subprocesses. Parent variables carrying this prefix also pass through.
	EnvPrefix = "SIDEFX_"

	// maxToolResultEnv caps SIDEFX_TOOL_RESULT so a large tool output cannot
	// blow up the subprocess environment.
	maxToolResultEnv = 2048

	// maxCaptureBytes bounds captured stdout/stderr per stream.
	maxCaptureBytes = 64 * 1024

	// defaultCancelReason is reported when a cancelling hook wrote nothing
	// to stderr.
	defaultCancelReason = "blocked by tool.pre hook"

	// pipeWaitDelay bounds how long Run may wait on output pipes once the
	// hook has exited or timed out. A child the shell forked inherits the
	// pipes and would otherwise keep Run blocked until it exits.
	pipeWaitDelay = time.Second
)

// allowedEnv is the fixed allow-list of general-purpose parent variables a
// hook subprocess receives. Everything else in the parent environment,
// provider credentials in particular, is withheld.
var allowedEnv = []string{
	"PATH", "HOME", "USER", "LOGNAME", "SHELL", "TERM",
	"LANG", "LC_ALL", "TMPDIR", "TEMP", "TMP",
}

// runHook executes one hook command through the platform shell and maps the
// outcome onto the cancellation contract: only a clean non-zero exit on a
// tool.pre hook cancels; timeouts and spawn failures are absorbed as no-ops.
func (m *activeManager) runHook(ctx context.Context, def Definition, hookCtx Context) Result {
	timeout := def.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), m.shell.Args...), def.Command)
	cmd := exec.CommandContext(execCtx, m.shell.Path, args...)
	cmd.Dir = hookCtx.Dir
	cmd.Env = BuildEnv(os.Environ(), hookCtx)
	cmd.WaitDelay = pipeWaitDelay
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, max: maxCaptureBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, max: maxCaptureBytes}

	logging.HooksDebug("Running hook: event=%s cmd=%q timeout=%s", def.Event, def.Command, timeout)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		logging.HooksDebug("Hook succeeded: cmd=%q duration=%s", def.Command, elapsed)
		return Result{}
	}

	// A slow or ambiguous hook must never block the user's turn, so a
	// timeout is logically identical to a successful no-op.
	if execCtx.Err() != nil {
		logging.HooksWarn("Hook timed out after %s, ignoring: cmd=%q", timeout, def.Command)
		return Result{}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if def.Event == EventToolPre {
			reason := strings.TrimSpace(stderr.String())
			if reason == "" {
				reason = defaultCancelReason
			}
			return Result{Cancelled: true, Reason: reason}
		}
		logging.HooksDebug("Hook exited non-zero (%d) on %s, ignoring: cmd=%q",
			exitErr.ExitCode(), def.Event, def.Command)
		return Result{}
	}

	// Spawn failures are swallowed the same way as timeouts.
	logging.HooksWarn("Hook failed to run, ignoring: cmd=%q err=%v", def.Command, err)
	return Result{}
}

// BuildEnv constructs the hook subprocess environment from scratch. It passes
// through the fixed allow-list plus any parent variable named with EnvPrefix,
// then appends the synthesized context variables. Note the prefix passthrough
// means an unrelated parent variable named SIDEFX_* will reach hook scripts.
func BuildEnv(parent []string, hookCtx Context) []string {
	allowed := make(map[string]bool, len(allowedEnv))
	for _, k := range allowedEnv {
		allowed[k] = true
	}

	env := make([]string, 0, len(allowedEnv)+10)
	for _, kv := range parent {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if allowed[name] || strings.HasPrefix(name, EnvPrefix) {
			env = append(env, kv)
		}
	}

	env = append(env,
		EnvPrefix+"EVENT="+string(hookCtx.Event),
		EnvPrefix+"SESSION_ID="+hookCtx.SessionID,
		EnvPrefix+"CWD="+hookCtx.Dir,
	)
	if hookCtx.Model != "" {
		env = append(env, EnvPrefix+"MODEL="+hookCtx.Model)
	}
	if hookCtx.ToolName != "" {
		env = append(env, EnvPrefix+"TOOL_NAME="+hookCtx.ToolName)
	}
	if hookCtx.ToolArgs != "" {
		env = append(env, EnvPrefix+"TOOL_ARGS="+hookCtx.ToolArgs)
	}
	if hookCtx.ToolResult != "" {
		env = append(env, fmt.Sprintf("%sTOOL_RESULT=%s", EnvPrefix, truncate(hookCtx.ToolResult, maxToolResultEnv)))
	}
	if hookCtx.ToolError != "" {
		env = append(env, EnvPrefix+"ERROR="+hookCtx.ToolError)
	}

	return env
}

// truncate cuts s at max bytes, backing up so a multi-byte rune is never
// split mid-sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// limitedWriter caps total bytes written, silently discarding the excess.
type limitedWriter struct {
	w       io.Writer
	max     int64
	written int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		return n, nil
	}
	if remaining := lw.max - lw.written; int64(n) > remaining {
		p = p[:remaining]
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return n, err
}
