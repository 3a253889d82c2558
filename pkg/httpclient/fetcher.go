package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// UserAgent identifies the scout to provider endpoints.
	UserAgent = "release-scout/1.0 (+https://github.com/modelwatch-hq/release-scout)"

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// DefaultMaxRedirects bounds redirect chasing per fetch.
	DefaultMaxRedirects = 5

	// DefaultTimeout is the overall per-request timeout.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrTooManyRedirects is returned when the redirect budget is exhausted.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrTimeout is returned when the request timeout elapses.
	ErrTimeout = errors.New("request timed out")
)

// StatusError reports a non-200 terminal HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}

// Fetcher retrieves page/feed bodies with redirect following, a fixed
// identifying user agent and an overall timeout. It never retries; a failed
// fetch is reported to the caller, which treats it as zero findings.
type Fetcher struct {
	client       Client
	maxRedirects int
}

// NewFetcher builds a Fetcher on the given client. A nil client gets the
// default resty client with DefaultTimeout.
func NewFetcher(client Client, maxRedirects int) *Fetcher {
	if client == nil {
		client = NewRestyClient(DefaultTimeout)
	}
	if maxRedirects < 0 {
		maxRedirects = DefaultMaxRedirects
	}
	return &Fetcher{client: client, maxRedirects: maxRedirects}
}

// Fetch issues a GET against rawURL and returns the body text. 3xx responses
// are followed manually, decrementing the redirect budget each hop.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	return f.fetch(ctx, rawURL, f.maxRedirects)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, budget int) (string, error) {
	current, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if current.Scheme != "http" && current.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", current.Scheme)
	}

	headers := map[string]string{
		"User-Agent": UserAgent,
		"Accept":     acceptHeader,
	}

	resp, err := f.client.Get(ctx, current.String(), headers)
	if err != nil {
		return "", classifyTransportError(err)
	}

	code := resp.StatusCode()
	if code >= 300 && code < 400 {
		location := strings.TrimSpace(resp.Header("Location"))
		if location == "" {
			return "", &StatusError{Code: code}
		}
		if budget <= 0 {
			return "", ErrTooManyRedirects
		}
		next, err := current.Parse(location)
		if err != nil {
			return "", fmt.Errorf("resolve redirect %q: %w", location, err)
		}
		return f.fetch(ctx, next.String(), budget-1)
	}

	if code != http.StatusOK {
		return "", &StatusError{Code: code}
	}

	return string(resp.Body()), nil
}

// classifyTransportError maps connection-level failures onto the fetch error
// taxonomy so callers can branch on sentinels.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("network error: %w", err)
}
