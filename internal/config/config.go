// Package config holds the sidefx runtime configuration.
// It is the single source of truth for hook definitions and research provider
// settings. Parsing is deliberately tolerant: a missing file or malformed
// section degrades to "feature disabled", never an error that stops startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sidefx/internal/logging"
)

// ProviderConfig is the parsed per-provider research configuration.
type ProviderConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Model   string
}

// HookConfig is one user-configured lifecycle hook.
type HookConfig struct {
	Event      string `yaml:"event" json:"event"`
	Command    string `yaml:"command" json:"command"`
	Matcher    string `yaml:"matcher,omitempty" json:"matcher,omitempty"`
	TimeoutMs  int64  `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Background bool   `yaml:"background,omitempty" json:"background,omitempty"`
}

// Config is the full runtime configuration.
type Config struct {
	Providers map[string]ProviderConfig
	Hooks     []HookConfig
}

// file mirrors the on-disk YAML shape. The research.providers subtree is kept
// untyped so ParseProviders can apply its defensive field-by-field rules.
type file struct {
	Research struct {
		Providers map[string]any `yaml:"providers"`
	} `yaml:"research"`
	Hooks []HookConfig `yaml:"hooks"`
}

// Load reads a config file. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Config("No config file at %s, using defaults", path)
			return &Config{Providers: map[string]ProviderConfig{}}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Providers: ParseProviders(f.Research.Providers),
		Hooks:     f.Hooks,
	}

	logging.Config("Loaded config: %d provider entries, %d hooks",
		len(cfg.Providers), len(cfg.Hooks))
	return cfg, nil
}

// ParseProviders converts the untyped research.providers blob into typed
// per-provider configs. A provider is enabled only when its enabled field is
// exactly the boolean true; truthy strings and numbers do not count. Missing
// or malformed fields resolve to zero values, never an error.
func ParseProviders(blob any) map[string]ProviderConfig {
	out := make(map[string]ProviderConfig)

	m, ok := blob.(map[string]any)
	if !ok {
		if blob != nil {
			logging.ConfigWarn("research.providers is not a mapping, ignoring")
		}
		return out
	}

	for id, raw := range m {
		sub, ok := raw.(map[string]any)
		if !ok {
			logging.ConfigWarn("Provider %q config is not a mapping, skipping", id)
			continue
		}

		enabled, _ := sub["enabled"].(bool)
		out[id] = ProviderConfig{
			Enabled: enabled,
			APIKey:  asString(sub["apiKey"]),
			BaseURL: asString(sub["baseUrl"]),
			Timeout: asMillis(sub["timeoutMs"]),
			Model:   asString(sub["model"]),
		}
	}

	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asMillis accepts the numeric types YAML and JSON decoders produce.
// Non-positive values collapse to zero so the caller's default applies.
func asMillis(v any) time.Duration {
	var ms int64
	switch n := v.(type) {
	case int:
		ms = int64(n)
	case int64:
		ms = n
	case float64:
		ms = int64(n)
	default:
		return 0
	}
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
