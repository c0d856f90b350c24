// Package wakatime fetches today's coding time from the WakaTime API.
package wakatime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/typesteps/typesteps/internal/logger"
)

// DefaultBaseURL is the public WakaTime API host.
const DefaultBaseURL = "https://wakatime.com"

const (
	summariesPath  = "/api/v1/users/current/summaries"
	requestTimeout = 30 * time.Second
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("wakatime api key not configured")

// SummaryResponse is the subset of the summaries response that is read.
type SummaryResponse struct {
	CumulativeTotal *struct {
		Seconds *float64 `json:"seconds"`
		Text    string   `json:"text"`
	} `json:"cumulative_total"`
}

// Client calls the WakaTime summaries endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLocation sets the time zone that decides which day is "today".
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		loc:        time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchToday returns today's total coding time in minutes.
func (c *Client) FetchToday(ctx context.Context, apiKey string) (float64, error) {
	if apiKey == "" {
		return 0, ErrNoAPIKey
	}

	day := c.now().In(c.loc).Format("2006-01-02")
	query := url.Values{"start": {day}, "end": {day}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+summariesPath+"?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create summaries request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(apiKey)))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("summaries request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read summaries response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("summaries request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var summary SummaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return 0, fmt.Errorf("failed to parse summaries response: %w", err)
	}

	if summary.CumulativeTotal == nil || summary.CumulativeTotal.Seconds == nil {
		return 0, nil
	}
	return *summary.CumulativeTotal.Seconds / 60, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
