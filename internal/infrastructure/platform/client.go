// Package platform contains the HTTP clients for the quick-commerce
// services QuickCompare aggregates. Each client implements both
// domain.PlatformScraper and domain.ETAFetcher; all of them share the
// rate-limited request helper below. Base URLs are injectable so tests
// run against httptest servers.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/quickcompare/backend/internal/domain"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0 Safari/537.36"

	maxAttempts = 3
)

// apiClient is the shared HTTP layer for platform calls: browser-like
// headers, a per-platform rate limiter, and a small retry loop for
// transient failures.
type apiClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	headers    map[string]string
}

// newAPIClient builds a client limited to roughly two requests per second
// with a short burst, enough for a scrape fan-out without tripping
// platform-side throttling.
func newAPIClient(extraHeaders map[string]string) *apiClient {
	headers := map[string]string{
		"User-Agent": defaultUserAgent,
		"Accept":     "application/json, text/plain, */*",
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}

	return &apiClient{
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		headers: headers,
	}
}

// getJSON performs a GET and decodes the response into out, retrying
// transient failures with linear backoff.
func (c *apiClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, reqURL, nil, out)
}

// postJSON performs a POST with a JSON body and decodes the response into
// out.
func (c *apiClient) postJSON(ctx context.Context, reqURL string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, reqURL, body, out)
}

func (c *apiClient) doJSON(ctx context.Context, method, reqURL string, body []byte, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrPlatformUnavailable, err)
			log.Debug().Err(err).Int("attempt", attempt).Str("url", reqURL).Msg("platform request error")
			if !sleepBackoff(ctx, attempt) {
				return lastErr
			}
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrPlatformUnavailable, resp.StatusCode)
			log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Str("url", reqURL).Msg("platform request failed")
			if resp.StatusCode == http.StatusNotFound {
				return lastErr
			}
			if !sleepBackoff(ctx, attempt) {
				return lastErr
			}
			continue
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

// sleepBackoff waits attempt*500ms or until the context is done, reporting
// whether the caller should retry.
func sleepBackoff(ctx context.Context, attempt int) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		return true
	}
}
