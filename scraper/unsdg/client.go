// Package unsdg talks to the UN SDG statistics API.
package unsdg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sdg-collector/config"
	"sdg-collector/utils"
)

const (
	DefaultBaseURL   = "https://unstats.un.org/SDGAPI/v1/sdg"
	DefaultUserAgent = "ComposeSDGs/1.0 (academic non-commercial)"
)

// ErrUnavailable is returned by FetchJSON when every attempt failed.
var ErrUnavailable = errors.New("unsdg: request failed")

// RetryPolicy is the retry budget of one call site.
// Retries counts attempts after the first; Timeout bounds each attempt.
type RetryPolicy struct {
	Retries int
	Timeout time.Duration
}

// StatusError is a non-200 answer from the API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// uaTransport stamps the client identification header on every request.
type uaTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns an *http.Client that sends userAgent on every request.
// Deadlines are applied per attempt through the request context.
func NewHTTPClient(base http.RoundTripper, userAgent string) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{Transport: &uaTransport{base: base, userAgent: userAgent}}
}

// Client fetches JSON documents from the SDG API with bounded retries.
type Client struct {
	baseURL      string
	http         *http.Client
	pause        time.Duration
	areaPolicy   RetryPolicy
	seriesPolicy RetryPolicy
	logger       *utils.Logger
}

// New creates a Client from the run configuration.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.APIBaseURL, "/"),
		http:         NewHTTPClient(nil, cfg.UserAgent),
		pause:        cfg.RetryPause,
		areaPolicy:   RetryPolicy{Retries: cfg.AreaListRetries, Timeout: cfg.AreaListTimeout},
		seriesPolicy: RetryPolicy{Retries: cfg.SeriesRetries, Timeout: cfg.SeriesTimeout},
		logger:       logger,
	}
}

// WithTransport swaps the underlying transport, keeping the User-Agent header.
func (c *Client) WithTransport(rt http.RoundTripper, userAgent string) *Client {
	c.http = NewHTTPClient(rt, userAgent)
	return c
}

// FetchJSON GETs url until it answers 200 with a valid JSON body, or until
// policy.Retries+1 attempts have failed. Failed attempts are logged and
// separated by the client's fixed pause. The error wraps ErrUnavailable.
func (c *Client) FetchJSON(ctx context.Context, url string, policy RetryPolicy) (json.RawMessage, error) {
	retry := &utils.RetryConfig{
		Retries: policy.Retries,
		Pause:   c.pause,
		Logger:  c.logger,
	}

	var body json.RawMessage
	err := retry.Do(ctx, "GET "+url, func(ctx context.Context) error {
		b, err := c.get(ctx, url, policy.Timeout)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string, timeout time.Duration) (json.RawMessage, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(b) {
		return nil, errors.New("response is not valid JSON")
	}
	return b, nil
}
