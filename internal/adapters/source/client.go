// Package source fetches and parses rumor tag pages.
//
// It implements pagination.Fetcher: page 1 is the base URL, page N adds
// ?page=N. Transport errors, 429 and 5xx responses are retried with
// exponential backoff.
package source

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rumorboard/internal/domain/pagination"
	"github.com/okian/rumorboard/pkg/logger"
	"github.com/okian/rumorboard/pkg/metrics"
)

const maxBodyBytes = 8 << 20

// Client talks to the rumor site.
type Client struct {
	base        *url.URL
	http        *http.Client
	user        string
	pass        string
	userAgent   string
	retries     int
	backoffBase time.Duration
	backoffMax  time.Duration
	pageDelay   time.Duration
	log         logger.Logger
}

// New creates a client for the tag page at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	c := &Client{
		base:        u,
		http:        &http.Client{Timeout: defaultTimeout},
		userAgent:   DefaultUserAgent,
		retries:     defaultRetries,
		backoffBase: defaultBackoffBase,
		backoffMax:  defaultBackoffMax,
		pageDelay:   defaultPageDelay,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PageURL returns the address of page n.
func (c *Client) PageURL(page int) string {
	u := *c.base
	if page > 1 {
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// FetchPage implements pagination.Fetcher.
func (c *Client) FetchPage(ctx context.Context, page int) (pagination.Page, error) {
	if page > 1 && c.pageDelay > 0 {
		if err := sleep(ctx, c.pageDelay); err != nil {
			return pagination.Page{}, err
		}
	}
	target := c.PageURL(page)
	body, err := c.get(ctx, target)
	if err != nil {
		metrics.RecordPageFetched(metrics.OutcomeError)
		return pagination.Page{}, err
	}
	metrics.RecordPageFetched(metrics.OutcomeOK)

	base, _ := url.Parse(target)
	p, err := Parse(strings.NewReader(body), base, page)
	if err != nil {
		return pagination.Page{}, err
	}
	c.log.Debug(ctx, "rumor page parsed",
		logger.Int("page", page),
		logger.Int("fragments", len(p.Fragments)),
		logger.Bool("has_next", p.HasNext),
	)
	return p, nil
}

// get performs a GET with retries and returns the body.
func (c *Client) get(ctx context.Context, target string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			metrics.RecordSourceRetry()
		}
		body, wait, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if wait < 0 || attempt == c.retries {
			break
		}
		if wait == 0 {
			wait = c.backoff(attempt)
		}
		c.log.Warn(ctx, "source request failed, retrying",
			logger.String("url", target),
			logger.Int("attempt", attempt+1),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s: %w", ErrUnavailable, target, lastErr)
}

// do performs one request. wait < 0 means the failure is not retryable;
// wait > 0 is a server-requested delay.
func (c *Client) do(ctx context.Context, target string) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", -1, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", -1, ctx.Err()
		}
		return "", 0, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return "", 0, fmt.Errorf("read body: %w", err)
		}
		return string(b), 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", retryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", 0, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	default:
		return "", -1, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffBase << attempt
	if d <= 0 || d > c.backoffMax {
		d = c.backoffMax
	}
	if j := d / 4; j > 0 {
		d += time.Duration(rand.Int63n(int64(j))) //nolint:gosec // jitter only
	}
	return min(d, c.backoffMax)
}

func retryAfter(h string) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
