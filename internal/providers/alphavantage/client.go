// Package alphavantage implements the bar provider against the Alpha
// Vantage daily time series API.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/stratlab/stratrun/internal/domain"
)

const defaultBaseURL = "https://www.alphavantage.co"

// Config for the client. The free tier allows 5 requests per minute,
// hence the conservative default limiter.
type Config struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RequestsPM     float64 `yaml:"requests_per_minute"`
}

// DefaultConfig returns free-tier safe settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		TimeoutSeconds: 15,
		RequestsPM:     5,
	}
}

// Client fetches daily OHLCV series. Calls are rate limited and wrapped
// in a circuit breaker so a flapping upstream fails fast instead of
// burning the request budget.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// New builds a client. A zero BaseURL, Timeout or RequestsPM falls back
// to defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	if cfg.RequestsPM <= 0 {
		cfg.RequestsPM = def.RequestsPM
	}

	settings := gobreaker.Settings{
		Name:    "alphavantage",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("provider", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPM/60), 1),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// dailyResponse mirrors the TIME_SERIES_DAILY payload.
type dailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Information  string                       `json:"Information"`
	Note         string                       `json:"Note"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// HistoricalBars fetches the daily series for symbol and trims it to the
// requested period. An empty series for the symbol/period surfaces as a
// DataUnavailableError.
func (c *Client) HistoricalBars(ctx context.Context, symbol, period string) ([]domain.Bar, error) {
	cutoff, err := periodCutoff(period, time.Now())
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchDaily(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	resp := raw.(*dailyResponse)

	bars := make([]domain.Bar, 0, len(resp.TimeSeries))
	for day, fields := range resp.TimeSeries {
		ts, err := time.Parse("2006-01-02", day)
		if err != nil {
			log.Warn().Str("symbol", symbol).Str("date", day).Msg("skipping unparseable bar date")
			continue
		}
		if ts.Before(cutoff) {
			continue
		}
		bar, err := parseBar(ts, fields)
		if err != nil {
			return nil, fmt.Errorf("parse bar %s %s: %w", symbol, day, err)
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, &domain.DataUnavailableError{Source: "alphavantage", Key: symbol}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

func (c *Client) fetchDaily(ctx context.Context, symbol string) (*dailyResponse, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("apikey", c.cfg.APIKey)
	q.Set("outputsize", "full")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage status %d", httpResp.StatusCode)
	}

	var resp dailyResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode alphavantage response: %w", err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage error: %s", resp.ErrorMessage)
	}
	// Note/Information carry throttle messages on the free tier.
	if len(resp.TimeSeries) == 0 && (resp.Note != "" || resp.Information != "") {
		return nil, fmt.Errorf("alphavantage throttled: %s%s", resp.Note, resp.Information)
	}
	return &resp, nil
}

func parseBar(ts time.Time, fields map[string]string) (domain.Bar, error) {
	bar := domain.Bar{Timestamp: ts}
	for key, dst := range map[string]*float64{
		"1. open":   &bar.Open,
		"2. high":   &bar.High,
		"3. low":    &bar.Low,
		"4. close":  &bar.Close,
		"5. volume": &bar.Volume,
	} {
		raw, ok := fields[key]
		if !ok {
			return domain.Bar{}, fmt.Errorf("missing field %q", key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("field %q: %w", key, err)
		}
		*dst = v
	}
	return bar, nil
}

// periodCutoff maps a period token to the earliest bar timestamp to
// keep, relative to now.
func periodCutoff(period string, now time.Time) (time.Time, error) {
	var days int
	switch period {
	case "1w":
		days = 7
	case "1m":
		days = 30
	case "3m":
		days = 91
	case "6m":
		days = 182
	case "", "1y":
		days = 365
	default:
		return time.Time{}, &domain.ValidationError{Field: "period", Reason: "must be one of 1w, 1m, 3m, 6m, 1y"}
	}
	return now.AddDate(0, 0, -days), nil
}
