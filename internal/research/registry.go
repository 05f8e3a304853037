package research

import (
	"sync"

	"sidefx/internal/config"
	"sidefx/internal/logging"
)

// Constructor builds a concrete provider from its parsed config.
type Constructor func(cfg config.ProviderConfig) Provider

var (
	regMu        sync.RWMutex
	constructors = make(map[string]Constructor)
	regOrder     []string
)

// RegisterProvider installs a constructor for a provider identifier.
// Called from provider package init at startup; last registration wins.
func RegisterProvider(id string, ctor Constructor) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := constructors[id]; !exists {
		regOrder = append(regOrder, id)
	}
	constructors[id] = ctor
}

// KnownProviders returns registered identifiers in registration order.
// This is the registry order the router falls back to.
func KnownProviders() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	return append([]string(nil), regOrder...)
}

// Build instantiates a provider for each known identifier whose config is
// enabled. A provider is enabled only when Enabled is exactly true; unknown
// identifiers in cfgs are ignored.
func Build(cfgs map[string]config.ProviderConfig) []Provider {
	regMu.RLock()
	defer regMu.RUnlock()

	providers := make([]Provider, 0, len(regOrder))
	for _, id := range regOrder {
		cfg, ok := cfgs[id]
		if !ok || !cfg.Enabled {
			continue
		}
		providers = append(providers, constructors[id](cfg))
		logging.ResearchDebug("Provider enabled: %s (timeout=%s)", id, cfg.Timeout)
	}

	logging.Research("Provider registry built: %d of %d known providers enabled",
		len(providers), len(regOrder))
	return providers
}

// BuildFromBlob parses the untyped research.providers configuration blob and
// builds the enabled provider set. Malformed input yields an empty set.
func BuildFromBlob(blob any) []Provider {
	return Build(config.ParseProviders(blob))
}
