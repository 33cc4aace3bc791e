package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const fetchMaxRetries = 3

// Client fetches public pages with a shared politeness delay between
// outbound requests. Rate-limit and server errors are retried with
// exponential backoff, honoring Retry-After when present.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	minDelay    time.Duration
	backoffUnit time.Duration

	mu          sync.Mutex
	nextRequest time.Time
}

func NewClient(userAgent string, minDelay time.Duration, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		minDelay:    minDelay,
		backoffUnit: time.Second,
	}
}

// Fetch retrieves url and returns the response body. 429 and 5xx responses
// are retried; any other non-200 response fails immediately.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		if err := sleepContext(ctx, c.reserveSlot()); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			if attempt < fetchMaxRetries-1 {
				if serr := sleepContext(ctx, c.backoff(attempt, 0)); serr != nil {
					return "", serr
				}
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return "", fmt.Errorf("failed to read response body: %w", err)
			}
			return string(data), nil
		}

		retryAfter := parseRetryAfter(resp)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
			if attempt < fetchMaxRetries-1 {
				if serr := sleepContext(ctx, c.backoff(attempt, retryAfter)); serr != nil {
					return "", serr
				}
			}
			continue
		}

		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return "", fmt.Errorf("failed to fetch %s after %d attempts: %w", rawURL, fetchMaxRetries, lastErr)
}

// reserveSlot claims the next outbound request slot and returns how long
// the caller must wait before using it.
func (c *Client) reserveSlot() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.nextRequest.Before(now) {
		c.nextRequest = now
	}
	wait := c.nextRequest.Sub(now)
	c.nextRequest = c.nextRequest.Add(c.minDelay)

	return wait
}

func (c *Client) backoff(attempt int, retryAfter int) time.Duration {
	wait := 2 << attempt
	if retryAfter > wait {
		wait = retryAfter
	}
	jitter := time.Duration(rand.Float64() * float64(c.backoffUnit))

	return time.Duration(wait)*c.backoffUnit + jitter
}

func parseRetryAfter(resp *http.Response) int {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}

	return seconds
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
