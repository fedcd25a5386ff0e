package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/util"
)

const linkMaxAttempts = 3

// linkSleepFunc is swapped out in tests
var linkSleepFunc = time.Sleep

// LinkStatus is the reachability of one source or evidence link
type LinkStatus struct {
	URL         string `json:"url"`
	Kind        string `json:"kind"` // source, screenshot, evidence
	Accessible  bool   `json:"accessible"`
	Dead        bool   `json:"dead"`
	StatusCode  int    `json:"statusCode,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LinkChecker probes claim links with HEAD requests
type LinkChecker struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
}

// NewLinkChecker creates a link checker
func NewLinkChecker(timeout time.Duration, maxWorkers int, userAgent, httpProxy, httpsProxy string) *LinkChecker {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(httpProxy, httpsProxy)},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  userAgent,
		maxWorkers: maxWorkers,
	}
}

type link struct {
	url  string
	kind string
}

func claimLinks(c model.Claim) []link {
	var out []link
	for _, s := range c.Sources {
		if s.URL != "" {
			out = append(out, link{s.URL, "source"})
		}
		if s.ScreenshotURL != "" {
			out = append(out, link{s.ScreenshotURL, "screenshot"})
		}
	}
	for _, w := range c.WebEvidenceLinks {
		if w.URL != "" {
			out = append(out, link{w.URL, "evidence"})
		}
	}
	return out
}

// CheckClaim probes every source, screenshot and evidence URL of a claim
// concurrently. Results keep the claim's link order.
func (v *LinkChecker) CheckClaim(ctx context.Context, c model.Claim) []LinkStatus {
	links := claimLinks(c)
	results := make([]LinkStatus, len(links))
	if len(links) == 0 {
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, l := range links {
		wg.Add(1)
		go func(idx int, l link) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = LinkStatus{URL: l.url, Kind: l.kind, Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = v.checkWithRetry(ctx, l)
		}(i, l)
	}

	wg.Wait()
	return results
}

func (v *LinkChecker) check(ctx context.Context, l link) LinkStatus {
	result := LinkStatus{URL: l.url, Kind: l.kind}

	if err := SourceURL(l.url); err != nil {
		result.Error = "not an http(s) url"
		result.Dead = true
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, l.url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.Dead = true
		return result
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Dead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Accessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.Dead = true
	}

	if final := resp.Request.URL.String(); final != l.url {
		result.RedirectURL = final
	}
	return result
}

func (v *LinkChecker) checkWithRetry(ctx context.Context, l link) LinkStatus {
	var result LinkStatus
	for attempt := 0; attempt < linkMaxAttempts; attempt++ {
		result = v.check(ctx, l)
		if !retryable(result) {
			return result
		}
		if attempt < linkMaxAttempts-1 {
			linkSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return result
}

func retryable(r LinkStatus) bool {
	if r.StatusCode >= 500 && r.StatusCode < 600 || r.StatusCode == http.StatusTooManyRequests {
		return true
	}
	s := strings.ToLower(r.Error)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
