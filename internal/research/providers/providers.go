// Package providers contains the concrete research provider clients.
// Importing it (for side effects) populates the research registry.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sidefx/internal/config"
	"sidefx/internal/research"
)

// maxBodyBytes caps any provider response body read.
const maxBodyBytes = 1 << 20 // 1MB

// defaultResultCount is how many results each provider asks for.
const defaultResultCount = 5

func init() {
	research.RegisterProvider(research.ProviderTavily, func(cfg config.ProviderConfig) research.Provider {
		return newTavily(cfg)
	})
	research.RegisterProvider(research.ProviderBrave, func(cfg config.ProviderConfig) research.Provider {
		return newBrave(cfg)
	})
	research.RegisterProvider(research.ProviderExa, func(cfg config.ProviderConfig) research.Provider {
		return newExa(cfg)
	})
	research.RegisterProvider(research.ProviderPerplexity, func(cfg config.ProviderConfig) research.Provider {
		return newPerplexity(cfg)
	})
	research.RegisterProvider(research.ProviderDuckDuckGo, func(cfg config.ProviderConfig) research.Provider {
		return newDuckDuckGo(cfg)
	})
}

// base carries the pieces every client shares.
type base struct {
	id     string
	cfg    config.ProviderConfig
	client *http.Client
}

func newBase(id string, cfg config.ProviderConfig) base {
	return base{id: id, cfg: cfg, client: http.DefaultClient}
}

func (b base) ID() string { return b.id }

func (b base) Timeout() time.Duration { return b.cfg.Timeout }

// baseURL resolves the configured override or the provider default.
func (b base) baseURL(fallback string) string {
	if b.cfg.BaseURL != "" {
		return strings.TrimRight(b.cfg.BaseURL, "/")
	}
	return fallback
}

// do sends the request, enforces the body cap, and classifies HTTP-level
// failures. The caller owns request construction and body decoding.
func (b base) do(req *http.Request) ([]byte, *research.ProviderError) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, b.classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, b.errf(research.KindBadResponse, "read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, b.errf(research.KindAuth, "HTTP %d: check API key", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, b.errf(research.KindHTTP, "HTTP %d: %s", resp.StatusCode, snippet(body))
	}

	return body, nil
}

func (b base) classifyTransport(err error) *research.ProviderError {
	kind := research.KindUnknown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = research.KindTimeout
	}
	return b.errf(kind, "request failed: %v", err)
}

func (b base) errf(kind research.ErrorKind, format string, args ...interface{}) *research.ProviderError {
	return &research.ProviderError{
		Provider: b.id,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	}
}

// postJSON marshals the payload and sends it with provider headers applied.
func (b base) postJSON(ctx context.Context, url string, payload any, headers map[string]string) ([]byte, *research.ProviderError) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, b.errf(research.KindUnknown, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(data)))
	if err != nil {
		return nil, b.errf(research.KindUnknown, "create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return b.do(req)
}

// searchResult is the normalized shape providers format their payloads from.
type searchResult struct {
	Title   string
	URL     string
	Snippet string
}

// formatResults renders results as the opaque markdown payload the route
// success carries.
func formatResults(query string, results []searchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Search Results for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "## %d. %s\n**URL:** %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "\n%s\n", r.Snippet)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
