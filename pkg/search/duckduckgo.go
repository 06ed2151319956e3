package search

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

// Client queries the DuckDuckGo Instant Answer API. Results are best-effort
// text snippets; callers decide how to treat an empty or failed lookup.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:    "https://api.duckduckgo.com",
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	Answer        string `json:"Answer"`
	Definition    string `json:"Definition"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Search runs the query and returns a newline-joined snippet block.
// Returns an error on transport failures so callers can classify them;
// a reachable API with no matches yields an empty string and nil error.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		c.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo error: status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.Unmarshal(bodyBytes, &answer); err != nil {
		return "", fmt.Errorf("decode duckduckgo response: %w", err)
	}

	snippets := make([]string, 0, 4)
	for _, s := range []string{answer.Answer, answer.AbstractText, answer.Definition} {
		if s != "" {
			snippets = append(snippets, s)
		}
	}
	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		snippets = append(snippets, topic.Text)
		if len(snippets) >= 5 {
			break
		}
	}

	return strings.Join(snippets, "\n\n"), nil
}
