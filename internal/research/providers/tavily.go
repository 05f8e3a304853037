package providers

import (
	"context"
	"encoding/json"

	"sidefx/internal/config"
	"sidefx/internal/logging"
	"sidefx/internal/research"
)

const tavilyDefaultURL = "https://api.tavily.com"

// tavily is the Tavily Search API client.
type tavily struct {
	base
}

func newTavily(cfg config.ProviderConfig) *tavily {
	return &tavily{base: newBase(research.ProviderTavily, cfg)}
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	Topic      string `json:"topic,omitempty"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *tavily) Search(ctx context.Context, q research.Query) research.ProviderResult {
	payload := tavilyRequest{
		APIKey:     t.cfg.APIKey,
		Query:      q.Text,
		MaxResults: defaultResultCount,
	}
	if q.Intent == research.IntentNews {
		payload.Topic = "news"
	}

	logging.ResearchDebug("Tavily search: query=%q topic=%q", q.Text, payload.Topic)
	body, perr := t.postJSON(ctx, t.baseURL(tavilyDefaultURL)+"/search", payload, nil)
	if perr != nil {
		return research.ProviderResult{Provider: t.id, Err: perr}
	}

	var resp tavilyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return research.Failure(t.id, research.KindBadResponse, "decode response: %v", err)
	}
	if len(resp.Results) == 0 && resp.Answer == "" {
		return research.Failure(t.id, research.KindBadResponse, "no results for %q", q.Text)
	}

	results := make([]searchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, searchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}

	content := formatResults(q.Text, results)
	if resp.Answer != "" {
		content = "**Answer:** " + resp.Answer + "\n\n" + content
	}
	return research.Success(t.id, content)
}
