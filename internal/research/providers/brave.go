package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"sidefx/internal/config"
	"sidefx/internal/logging"
	"sidefx/internal/research"
)

const braveDefaultURL = "https://api.search.brave.com"

// brave is the Brave Search API client.
type brave struct {
	base
}

func newBrave(cfg config.ProviderConfig) *brave {
	return &brave{base: newBase(research.ProviderBrave, cfg)}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (b *brave) Search(ctx context.Context, q research.Query) research.ProviderResult {
	endpoint := fmt.Sprintf("%s/res/v1/web/search?q=%s&count=%d",
		b.baseURL(braveDefaultURL), url.QueryEscape(q.Text), defaultResultCount)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return research.Failure(b.id, research.KindUnknown, "create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.cfg.APIKey)

	logging.ResearchDebug("Brave search: query=%q", q.Text)
	body, perr := b.do(req)
	if perr != nil {
		return research.ProviderResult{Provider: b.id, Err: perr}
	}

	var resp braveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return research.Failure(b.id, research.KindBadResponse, "decode response: %v", err)
	}
	if len(resp.Web.Results) == 0 {
		return research.Failure(b.id, research.KindBadResponse, "no results for %q", q.Text)
	}

	results := make([]searchResult, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		results = append(results, searchResult{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	return research.Success(b.id, formatResults(q.Text, results))
}
