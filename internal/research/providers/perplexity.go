package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sidefx/internal/config"
	"sidefx/internal/logging"
	"sidefx/internal/research"
)

const (
	perplexityDefaultURL   = "https://api.perplexity.ai"
	perplexityDefaultModel = "sonar"
)

// perplexity answers queries through the Perplexity chat completions API,
// which performs its own web search server-side.
type perplexity struct {
	base
}

func newPerplexity(cfg config.ProviderConfig) *perplexity {
	return &perplexity{base: newBase(research.ProviderPerplexity, cfg)}
}

type perplexityRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

func (p *perplexity) Search(ctx context.Context, q research.Query) research.ProviderResult {
	model := p.cfg.Model
	if model == "" {
		model = perplexityDefaultModel
	}

	payload := perplexityRequest{Model: model}
	payload.Messages = append(payload.Messages, struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: q.Text})

	logging.ResearchDebug("Perplexity search: query=%q model=%s", q.Text, model)
	body, perr := p.postJSON(ctx, p.baseURL(perplexityDefaultURL)+"/chat/completions", payload, map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	})
	if perr != nil {
		return research.ProviderResult{Provider: p.id, Err: perr}
	}

	var resp perplexityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return research.Failure(p.id, research.KindBadResponse, "decode response: %v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return research.Failure(p.id, research.KindBadResponse, "empty completion for %q", q.Text)
	}

	var sb strings.Builder
	sb.WriteString(resp.Choices[0].Message.Content)
	if len(resp.Citations) > 0 {
		sb.WriteString("\n\n**Sources:**\n")
		for i, c := range resp.Citations {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, c)
		}
	}
	return research.Success(p.id, sb.String())
}
