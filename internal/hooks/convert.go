package hooks

import (
	"fmt"
	"time"

	"sidefx/internal/config"
)

// DefinitionsFromConfig validates raw hook configs into Definitions.
func DefinitionsFromConfig(cfgs []config.HookConfig) ([]Definition, error) {
	defs := make([]Definition, 0, len(cfgs))
	for i, hc := range cfgs {
		event, err := ParseEvent(hc.Event)
		if err != nil {
			return nil, fmt.Errorf("hook %d: %w", i, err)
		}
		defs = append(defs, Definition{
			Event:      event,
			Command:    hc.Command,
			Matcher:    hc.Matcher,
			Timeout:    time.Duration(hc.TimeoutMs) * time.Millisecond,
			Background: hc.Background,
		})
	}
	return defs, nil
}
