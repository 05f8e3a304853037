package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"sidefx/internal/config"
	"sidefx/internal/logging"
	"sidefx/internal/research"
)

const ddgDefaultURL = "https://html.duckduckgo.com"

// duckduckgo scrapes the DuckDuckGo HTML interface. It needs no API key and
// serves as the degraded fallback when every keyed provider is down.
type duckduckgo struct {
	base
}

func newDuckDuckGo(cfg config.ProviderConfig) *duckduckgo {
	return &duckduckgo{base: newBase(research.ProviderDuckDuckGo, cfg)}
}

func (d *duckduckgo) Search(ctx context.Context, q research.Query) research.ProviderResult {
	endpoint := fmt.Sprintf("%s/html/?q=%s", d.baseURL(ddgDefaultURL), url.QueryEscape(q.Text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return research.Failure(d.id, research.KindUnknown, "create request: %v", err)
	}
	// The HTML endpoint rejects non-browser user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	logging.ResearchDebug("DuckDuckGo search: query=%q", q.Text)
	body, perr := d.do(req)
	if perr != nil {
		return research.ProviderResult{Provider: d.id, Err: perr}
	}

	results, err := parseDDGResults(string(body), defaultResultCount)
	if err != nil {
		return research.Failure(d.id, research.KindBadResponse, "parse HTML: %v", err)
	}
	if len(results) == 0 {
		return research.Failure(d.id, research.KindBadResponse, "no results for %q", q.Text)
	}

	return research.Success(d.id, formatResults(q.Text, results))
}

// parseDDGResults extracts results from the DuckDuckGo HTML page, which marks
// each hit with a div carrying the results_links class.
func parseDDGResults(htmlContent string, maxResults int) ([]searchResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var results []searchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && strings.Contains(attrValue(n, "class"), "results_links") {
			if r := extractDDGResult(n); r.URL != "" && r.Title != "" {
				results = append(results, r)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func extractDDGResult(n *html.Node) searchResult {
	var r searchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				r.URL = cleanDDGRedirect(attrValue(n, "href"))
				r.Title = textContent(n)
			case strings.Contains(class, "result__snippet"):
				r.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return r
}

// cleanDDGRedirect unwraps the uddg redirect DuckDuckGo wraps result links in.
func cleanDDGRedirect(href string) string {
	const prefix = "//duckduckgo.com/l/?uddg="
	if !strings.HasPrefix(href, prefix) {
		return href
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(href, prefix))
	if err != nil {
		return href
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
