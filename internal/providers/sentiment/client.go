// Package sentiment is a thin client for the external sentiment scoring
// collaborator.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client fetches sentiment scores. With no base URL configured, the
// collaborator is treated as absent and every symbol scores 0 (neutral),
// which contributes nothing to recommendations.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client; pass an empty baseURL to disable.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type scoreResponse struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

// Score returns the symbol's sentiment in [-1,+1].
func (c *Client) Score(ctx context.Context, symbol string) (float64, error) {
	if c.baseURL == "" {
		return 0, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/sentiment/"+url.PathEscape(symbol), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sentiment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("sentiment status %d for %s", resp.StatusCode, symbol)
	}

	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode sentiment response: %w", err)
	}
	if body.Score < -1 {
		body.Score = -1
	}
	if body.Score > 1 {
		body.Score = 1
	}
	return body.Score, nil
}
