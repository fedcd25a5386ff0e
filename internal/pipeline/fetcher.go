package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/pap/internal/util"
)

const (
	fetchAttempts     = 3
	fetchMaxRedirects = 3
	fetchBackoff      = 500 * time.Millisecond
)

// fetchSleep waits between attempts; tests replace it
var fetchSleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusError is a non-2xx answer from the page host
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("page returned %d %s", e.Code, http.StatusText(e.Code))
}

// Fetcher downloads public pages for claim discovery
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher creates a Fetcher; empty proxy URLs fall back to the environment
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, httpProxy, httpsProxy string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(httpProxy, httpsProxy)},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= fetchMaxRedirects {
					return fmt.Errorf("stopped after %d redirects", fetchMaxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Page is a fetched document
type Page struct {
	HTML       string
	FinalURL   string
	StatusCode int
	Subject    string // readable name derived from the final URL
}

// Fetch retrieves a page once. Non-HTML, non-text bodies are rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9")
	req.Header.Set("Accept-Language", "en;q=0.9,ne;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, _ := mime.ParseMediaType(ct)
		if mt != "text/html" && mt != "application/xhtml+xml" && !strings.HasPrefix(mt, "text/") {
			return nil, fmt.Errorf("unsupported content type %q", mt)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	final := resp.Request.URL.String()
	return &Page{HTML: string(body), FinalURL: final, StatusCode: resp.StatusCode, Subject: pageSubject(final)}, nil
}

// FetchWithRetry retries 5xx, 429 and transport failures with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Page, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		page, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryableFetch(err) || attempt == fetchAttempts {
			break
		}
		if err := fetchSleep(ctx, time.Duration(attempt)*fetchBackoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryableFetch(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	var ue *url.Error
	return errors.As(err, &ue) && !errors.Is(err, context.Canceled)
}

// pageSubject turns ".../news/budget-speech-2025.html" into "budget speech 2025"
func pageSubject(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Host
	}

	last := path[strings.LastIndex(path, "/")+1:]
	if i := strings.LastIndex(last, "."); i > 0 {
		last = last[:i]
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(last)
}
