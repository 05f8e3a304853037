package hooks

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func envMap(t *testing.T, env []string) map[string]string {
	t.Helper()
	m := make(map[string]string, len(env))
	for _, kv := range env {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			t.Fatalf("malformed env entry %q", kv)
		}
		m[name] = val
	}
	return m
}

func TestBuildEnv_AllowListFiltersParent(t *testing.T) {
	t.Parallel()

	parent := []string{
		"PATH=/usr/bin",
		"HOME=/home/u",
		"TAVILY_API_KEY=secret",
		"AWS_SECRET_ACCESS_KEY=very-secret",
		"SIDEFX_CUSTOM=keep-me",
	}

	env := envMap(t, BuildEnv(parent, Context{Event: EventToolPre, SessionID: "s1", Dir: "/work"}))

	if env["PATH"] != "/usr/bin" {
		t.Error("PATH should pass through the allow-list")
	}
	if env["HOME"] != "/home/u" {
		t.Error("HOME should pass through the allow-list")
	}
	if _, leaked := env["TAVILY_API_KEY"]; leaked {
		t.Error("provider credential leaked into hook environment")
	}
	if _, leaked := env["AWS_SECRET_ACCESS_KEY"]; leaked {
		t.Error("cloud credential leaked into hook environment")
	}
	if env["SIDEFX_CUSTOM"] != "keep-me" {
		t.Error("prefix-namespaced parent variables should pass through")
	}
}

func TestBuildEnv_SynthesizedContextVariables(t *testing.T) {
	t.Parallel()

	env := envMap(t, BuildEnv(nil, Context{
		Event:     EventToolPost,
		SessionID: "sess-42",
		Dir:       "/work",
		Model:     "m-large",
		ToolName:  "shell",
		ToolArgs:  `{"cmd":"ls"}`,
		ToolError: "exit status 1",
	}))

	want := map[string]string{
		"SIDEFX_EVENT":      "tool.post",
		"SIDEFX_SESSION_ID": "sess-42",
		"SIDEFX_CWD":        "/work",
		"SIDEFX_MODEL":      "m-large",
		"SIDEFX_TOOL_NAME":  "shell",
		"SIDEFX_TOOL_ARGS":  `{"cmd":"ls"}`,
		"SIDEFX_ERROR":      "exit status 1",
	}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("%s = %q, want %q", k, env[k], v)
		}
	}
}

func TestBuildEnv_OptionalVariablesOmittedWhenEmpty(t *testing.T) {
	t.Parallel()

	env := envMap(t, BuildEnv(nil, Context{Event: EventSessionStart, SessionID: "s"}))

	for _, k := range []string{"SIDEFX_MODEL", "SIDEFX_TOOL_NAME", "SIDEFX_TOOL_ARGS", "SIDEFX_TOOL_RESULT", "SIDEFX_ERROR"} {
		if _, present := env[k]; present {
			t.Errorf("%s should be absent when the context does not carry it", k)
		}
	}
}

func TestBuildEnv_ToolResultTruncated(t *testing.T) {
	t.Parallel()

	env := envMap(t, BuildEnv(nil, Context{
		Event:      EventToolPost,
		ToolResult: strings.Repeat("x", maxToolResultEnv+500),
	}))

	if got := len(env["SIDEFX_TOOL_RESULT"]); got != maxToolResultEnv {
		t.Errorf("tool result not capped: len=%d, want %d", got, maxToolResultEnv)
	}
}

func TestBuildEnv_ToolResultTruncationPreservesUTF8(t *testing.T) {
	t.Parallel()

	// A multi-byte rune straddling the cap must be dropped whole, not split.
	env := envMap(t, BuildEnv(nil, Context{
		Event:      EventToolPost,
		ToolResult: strings.Repeat("x", maxToolResultEnv-1) + "世界",
	}))

	got := env["SIDEFX_TOOL_RESULT"]
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) > maxToolResultEnv {
		t.Errorf("len=%d exceeds cap %d", len(got), maxToolResultEnv)
	}
	if !strings.HasSuffix(got, "x") {
		t.Errorf("expected the straddling rune cut away, got suffix %q", got[len(got)-4:])
	}
}

func TestLimitedWriter_CapsOutput(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	lw := &limitedWriter{w: &sb, max: 10}

	n, err := lw.Write([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != 16 {
		t.Errorf("limited writer must report full length, got %d", n)
	}
	if sb.String() != "0123456789" {
		t.Errorf("captured %q, want first 10 bytes", sb.String())
	}

	// Further writes are discarded entirely.
	if _, err := lw.Write([]byte("more")); err != nil {
		t.Fatalf("write past cap failed: %v", err)
	}
	if sb.Len() != 10 {
		t.Error("writer kept accepting bytes past its cap")
	}
}
