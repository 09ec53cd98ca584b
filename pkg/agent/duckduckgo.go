package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultDuckDuckGoEndpoint = "https://api.duckduckgo.com"

// SearchToolName is the name the search tool is advertised under.
const SearchToolName = "internet_search"

// DuckDuckGo answers queries with the DuckDuckGo Instant Answer API. It
// needs no credentials, which keeps the search path usable out of the box.
type DuckDuckGo struct {
	endpoint   string
	httpClient *http.Client
}

var _ Tool = (*DuckDuckGo)(nil)

// NewDuckDuckGo creates the search tool. An empty endpoint uses the public
// API.
func NewDuckDuckGo(endpoint string) *DuckDuckGo {
	if endpoint == "" {
		endpoint = defaultDuckDuckGoEndpoint
	}
	return &DuckDuckGo{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name implements Tool.
func (d *DuckDuckGo) Name() string { return SearchToolName }

// Description implements Tool.
func (d *DuckDuckGo) Description() string {
	return "Search the internet for current information. Use for recent events, real-time data, or facts that may have changed."
}

type instantAnswer struct {
	Heading       string `json:"Heading"`
	Answer        string `json:"Answer"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Definition    string `json:"Definition"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Call implements Tool.
func (d *DuckDuckGo) Call(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"/?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return formatAnswer(query, answer), nil
}

// formatAnswer picks the most direct result available: a computed answer,
// then the topic abstract, then a definition, then related topics.
func formatAnswer(query string, answer instantAnswer) string {
	if answer.Answer != "" {
		return answer.Answer
	}
	if answer.AbstractText != "" {
		if answer.AbstractURL != "" {
			return fmt.Sprintf("%s (source: %s)", answer.AbstractText, answer.AbstractURL)
		}
		return answer.AbstractText
	}
	if answer.Definition != "" {
		return answer.Definition
	}

	var topics []string
	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		topics = append(topics, "- "+topic.Text)
		if len(topics) == 3 {
			break
		}
	}
	if len(topics) > 0 {
		return "Related results:\n" + strings.Join(topics, "\n")
	}

	return fmt.Sprintf("No search results found for %q.", query)
}
