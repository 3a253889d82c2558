package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(name string) string
}

// Client abstracts single HTTP requests so callers can inject mocks or
// different transports. Implementations must not follow redirects; redirect
// policy belongs to the Fetcher.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
