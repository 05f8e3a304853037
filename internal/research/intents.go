package research

// intentFallback maps each intent to a full preference order over the known
// providers. Explicit caller preference always comes first; intent acts only
// as a tie-breaker. DuckDuckGo sits last everywhere as the keyless degraded
// path.
var intentFallback = map[Intent][]string{
	IntentGeneral:  {ProviderTavily, ProviderExa, ProviderBrave, ProviderPerplexity, ProviderDuckDuckGo},
	IntentNews:     {ProviderBrave, ProviderTavily, ProviderPerplexity, ProviderExa, ProviderDuckDuckGo},
	IntentAcademic: {ProviderExa, ProviderTavily, ProviderPerplexity, ProviderBrave, ProviderDuckDuckGo},
	IntentCoding:   {ProviderPerplexity, ProviderExa, ProviderTavily, ProviderBrave, ProviderDuckDuckGo},
}

// fallbackOrder returns the intent-specific preference order, defaulting to
// the general table for unrecognized intents.
func fallbackOrder(intent Intent) []string {
	if order, ok := intentFallback[intent]; ok {
		return order
	}
	return intentFallback[IntentGeneral]
}
