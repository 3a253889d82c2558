package httpclient

import (
	"context"
	"errors"
	"testing"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	body    []byte
	status  int
	headers map[string]string
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.status }
func (s stubResponse) Header(name string) string {
	return s.headers[name]
}

// stubClient serves a canned response per URL and records requests.
type stubClient struct {
	responses map[string]stubResponse
	err       error
	requests  []string
	headers   map[string]string
}

func (s *stubClient) Get(_ context.Context, url string, headers map[string]string) (Response, error) {
	s.requests = append(s.requests, url)
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	resp, ok := s.responses[url]
	if !ok {
		return stubResponse{status: 404}, nil
	}
	return resp, nil
}

func TestFetchReturnsBody(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"https://example.com/blog": {status: 200, body: []byte("hello")},
	}}
	f := NewFetcher(client, 5)

	body, err := f.Fetch(context.Background(), "https://example.com/blog")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "hello" {
		t.Fatalf("body = %q", body)
	}
	if client.headers["User-Agent"] != UserAgent {
		t.Fatalf("missing user agent header: %#v", client.headers)
	}
}

func TestFetchFollowsRelativeRedirect(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"https://example.com/old": {status: 301, headers: map[string]string{"Location": "/new"}},
		"https://example.com/new": {status: 200, body: []byte("moved")},
	}}
	f := NewFetcher(client, 5)

	body, err := f.Fetch(context.Background(), "https://example.com/old")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "moved" {
		t.Fatalf("body = %q", body)
	}
	if len(client.requests) != 2 || client.requests[1] != "https://example.com/new" {
		t.Fatalf("unexpected request chain: %#v", client.requests)
	}
}

func TestFetchRedirectBudgetExhausted(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"https://example.com/a": {status: 302, headers: map[string]string{"Location": "https://example.com/b"}},
		"https://example.com/b": {status: 200, body: []byte("ok")},
	}}
	f := NewFetcher(client, 0)

	_, err := f.Fetch(context.Background(), "https://example.com/a")
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}
}

func TestFetchStatusError(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"https://example.com/gone": {status: 404},
	}}
	f := NewFetcher(client, 5)

	_, err := f.Fetch(context.Background(), "https://example.com/gone")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 404 {
		t.Fatalf("expected StatusError{404}, got %v", err)
	}
}

func TestFetchRejectsUnsupportedScheme(t *testing.T) {
	f := NewFetcher(&stubClient{}, 5)

	if _, err := f.Fetch(context.Background(), "ftp://example.com/feed"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestFetchClassifiesTimeout(t *testing.T) {
	client := &stubClient{err: context.DeadlineExceeded}
	f := NewFetcher(client, 5)

	_, err := f.Fetch(context.Background(), "https://example.com/slow")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestFetchRedirectWithoutLocationIsStatusError(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"https://example.com/odd": {status: 302},
	}}
	f := NewFetcher(client, 5)

	_, err := f.Fetch(context.Background(), "https://example.com/odd")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 302 {
		t.Fatalf("expected StatusError{302}, got %v", err)
	}
}
