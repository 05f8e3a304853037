// Package research routes search queries across multiple web-research
// providers. The registry builds the enabled provider set from configuration;
// the router orders providers by query intent, races each against its
// timeout, and returns the first success or an aggregated failure.
package research

import (
	"context"
	"fmt"
	"time"
)

// Known provider identifiers. The registry ignores anything else.
const (
	ProviderTavily     = "tavily"
	ProviderBrave      = "brave"
	ProviderExa        = "exa"
	ProviderPerplexity = "perplexity"
	ProviderDuckDuckGo = "duckduckgo"
)

// Intent is a coarse classification of a research query used to bias
// provider ordering.
type Intent string

const (
	IntentGeneral  Intent = "general"
	IntentNews     Intent = "news"
	IntentAcademic Intent = "academic"
	IntentCoding   Intent = "coding"
)

// ParseIntent maps a string onto a known intent, defaulting to general.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentNews, IntentAcademic, IntentCoding:
		return Intent(s)
	default:
		return IntentGeneral
	}
}

// Query is one research request.
type Query struct {
	Text   string
	Intent Intent
}

// ErrorKind classifies provider and router failures.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "TIMEOUT"
	KindUnknown     ErrorKind = "UNKNOWN_ERROR"
	KindHTTP        ErrorKind = "HTTP_ERROR"
	KindAuth        ErrorKind = "AUTH_ERROR"
	KindBadResponse ErrorKind = "BAD_RESPONSE"

	// Router-level terminal kinds.
	KindNoProviders ErrorKind = "NO_PROVIDERS_ENABLED"
	KindAllFailed   ErrorKind = "ALL_PROVIDERS_FAILED"
)

// ProviderError carries the provider id, error kind, and message of a failed
// attempt. Router-level errors leave Provider empty.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Kind, e.Message)
}

// ProviderResult is the tagged success/failure outcome of one provider call.
// Err == nil means success and Content carries the opaque result payload.
type ProviderResult struct {
	Provider string
	Content  string
	Err      *ProviderError
}

// Success builds a successful provider result.
func Success(provider, content string) ProviderResult {
	return ProviderResult{Provider: provider, Content: content}
}

// Failure builds a failed provider result.
func Failure(provider string, kind ErrorKind, format string, args ...interface{}) ProviderResult {
	return ProviderResult{
		Provider: provider,
		Err: &ProviderError{
			Provider: provider,
			Kind:     kind,
			Message:  fmt.Sprintf(format, args...),
		},
	}
}

// Provider is the search contract each external research backend satisfies.
// Implementations own their network calls and must not panic past their
// boundary in the common case; the router still defensively recovers.
type Provider interface {
	ID() string

	// Timeout is the provider's configured per-call budget. Zero means the
	// router default applies.
	Timeout() time.Duration

	Search(ctx context.Context, q Query) ProviderResult
}
