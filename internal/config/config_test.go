package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviders_StrictEnabledCheck(t *testing.T) {
	t.Parallel()

	cfgs := ParseProviders(map[string]any{
		"tavily":     map[string]any{"enabled": true},
		"brave":      map[string]any{"enabled": "true"},
		"exa":        map[string]any{"enabled": 1},
		"perplexity": map[string]any{"enabled": false},
	})

	assert.True(t, cfgs["tavily"].Enabled)
	assert.False(t, cfgs["brave"].Enabled, "truthy string must not enable")
	assert.False(t, cfgs["exa"].Enabled, "truthy number must not enable")
	assert.False(t, cfgs["perplexity"].Enabled)
}

func TestParseProviders_FieldsParsedDefensively(t *testing.T) {
	t.Parallel()

	cfgs := ParseProviders(map[string]any{
		"tavily": map[string]any{
			"enabled":   true,
			"apiKey":    "tvly-key",
			"baseUrl":   "https://example.test",
			"timeoutMs": 2500,
			"model":     "standard",
		},
		"brave": map[string]any{
			"enabled":   true,
			"apiKey":    42,     // wrong type
			"timeoutMs": "fast", // wrong type
		},
	})

	tavily := cfgs["tavily"]
	assert.Equal(t, "tvly-key", tavily.APIKey)
	assert.Equal(t, "https://example.test", tavily.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, tavily.Timeout)
	assert.Equal(t, "standard", tavily.Model)

	brave := cfgs["brave"]
	assert.True(t, brave.Enabled)
	assert.Empty(t, brave.APIKey, "malformed field must resolve to zero value")
	assert.Zero(t, brave.Timeout)
}

func TestParseProviders_TimeoutNumericVariants(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   any
		want time.Duration
	}{
		"int":         {1000, time.Second},
		"int64":       {int64(1000), time.Second},
		"float64":     {1000.0, time.Second},
		"zero":        {0, 0},
		"negative":    {-5, 0},
		"non-numeric": {"1000", 0},
	}

	for name, tc := range cases {
		cfgs := ParseProviders(map[string]any{
			"p": map[string]any{"enabled": true, "timeoutMs": tc.in},
		})
		assert.Equal(t, tc.want, cfgs["p"].Timeout, "case %s", name)
	}
}

func TestParseProviders_MalformedInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseProviders(nil))
	assert.Empty(t, ParseProviders("nonsense"))
	assert.Empty(t, ParseProviders([]any{"a", "b"}))

	// A malformed provider entry is skipped without affecting siblings.
	cfgs := ParseProviders(map[string]any{
		"good": map[string]any{"enabled": true},
		"bad":  "not a mapping",
	})
	assert.Len(t, cfgs, 1)
	assert.True(t, cfgs["good"].Enabled)
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
research:
  providers:
    tavily:
      enabled: true
      apiKey: tvly-abc
      timeoutMs: 8000
    brave:
      enabled: "yes"
hooks:
  - event: tool.pre
    command: ./guard.sh
    matcher: "^shell$"
    timeout: 5000
  - event: session.end
    command: notify-send done
    background: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Contains(t, cfg.Providers, "tavily")
	assert.True(t, cfg.Providers["tavily"].Enabled)
	assert.Equal(t, "tvly-abc", cfg.Providers["tavily"].APIKey)
	assert.Equal(t, 8*time.Second, cfg.Providers["tavily"].Timeout)
	assert.False(t, cfg.Providers["brave"].Enabled, "YAML string must not pass the strict bool check")

	require.Len(t, cfg.Hooks, 2)
	assert.Equal(t, "tool.pre", cfg.Hooks[0].Event)
	assert.Equal(t, "^shell$", cfg.Hooks[0].Matcher)
	assert.EqualValues(t, 5000, cfg.Hooks[0].TimeoutMs)
	assert.True(t, cfg.Hooks[1].Background)
}

func TestLoad_MissingFileYieldsEmptyConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers)
	assert.Empty(t, cfg.Hooks)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("research: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
