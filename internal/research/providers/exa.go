package providers

import (
	"context"
	"encoding/json"

	"sidefx/internal/config"
	"sidefx/internal/logging"
	"sidefx/internal/research"
)

const exaDefaultURL = "https://api.exa.ai"

// exa is the Exa neural search client.
type exa struct {
	base
}

func newExa(cfg config.ProviderConfig) *exa {
	return &exa{base: newBase(research.ProviderExa, cfg)}
}

type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Category   string `json:"category,omitempty"`
	Contents   struct {
		Text bool `json:"text"`
	} `json:"contents"`
}

type exaResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
}

func (e *exa) Search(ctx context.Context, q research.Query) research.ProviderResult {
	payload := exaRequest{Query: q.Text, NumResults: defaultResultCount}
	payload.Contents.Text = true
	if q.Intent == research.IntentAcademic {
		payload.Category = "research paper"
	}

	logging.ResearchDebug("Exa search: query=%q category=%q", q.Text, payload.Category)
	body, perr := e.postJSON(ctx, e.baseURL(exaDefaultURL)+"/search", payload, map[string]string{
		"x-api-key": e.cfg.APIKey,
	})
	if perr != nil {
		return research.ProviderResult{Provider: e.id, Err: perr}
	}

	var resp exaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return research.Failure(e.id, research.KindBadResponse, "decode response: %v", err)
	}
	if len(resp.Results) == 0 {
		return research.Failure(e.id, research.KindBadResponse, "no results for %q", q.Text)
	}

	results := make([]searchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		snippet := r.Text
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		results = append(results, searchResult{Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return research.Success(e.id, formatResults(q.Text, results))
}
