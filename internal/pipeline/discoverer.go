package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/extract"
	"github.com/ppiankov/pap/internal/heuristic"
	"github.com/ppiankov/pap/internal/llm"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/util"
	"github.com/ppiankov/pap/internal/worker"
)

var (
	// ErrDisallowed means robots.txt forbids fetching the page
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrBadURL means the discovery target is not an absolute http(s) URL
	ErrBadURL = errors.New("url must be absolute http or https")
)

// maxDiscoveryText bounds the page text handed to the AI provider
const maxDiscoveryText = 30_000

// Candidate is a prediction found on a page, not yet saved as a claim
type Candidate struct {
	ClaimantName   string `json:"claimantName,omitempty"`
	Text           string `json:"text"`
	Category       string `json:"category"`
	TargetDate     string `json:"targetDate,omitempty"`
	VaguenessIndex int    `json:"vaguenessIndex"`
	Source         string `json:"source"`
}

// Discovery is the outcome of one discovery run
type Discovery struct {
	URL        string      `json:"url,omitempty"`
	Subject    string      `json:"subject,omitempty"`
	Candidates []Candidate `json:"candidates"`
}

// Discoverer finds candidate claims in public pages
type Discoverer struct {
	fetcher  *Fetcher
	robots   *util.RobotsChecker
	limiter  *worker.Limiter
	provider llm.Provider
	log      *zap.Logger
}

// NewDiscoverer builds a discoverer. limiter throttles per host; provider may be nil.
func NewDiscoverer(fetcher *Fetcher, robots *util.RobotsChecker, limiter *worker.Limiter, provider llm.Provider, log *zap.Logger) *Discoverer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Discoverer{fetcher: fetcher, robots: robots, limiter: limiter, provider: provider, log: log}
}

// FromURL fetches a page and extracts candidate claims from its visible text
func (d *Discoverer) FromURL(ctx context.Context, rawURL string) (*Discovery, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", rawURL, ErrBadURL)
	}
	target := u.String()

	allowed, crawlDelay, err := d.robots.CanFetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%s: %w", target, ErrDisallowed)
	}

	if d.limiter != nil {
		if err := d.limiter.WaitWithDelay(ctx, u.Host, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	res, err := d.fetcher.FetchWithRetry(ctx, target)
	if err != nil {
		return nil, err
	}

	text, err := extract.VisibleText(res.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	d.log.Debug("discovery page fetched",
		zap.String("url", res.FinalURL),
		zap.Int("status", res.StatusCode),
		zap.Int("text_len", len(text)),
	)

	return &Discovery{
		URL:        res.FinalURL,
		Subject:    res.Subject,
		Candidates: d.FromText(ctx, text),
	}, nil
}

// FromText extracts candidates from plain text. The AI provider is tried first;
// on any failure or an empty answer the heuristic manifesto extractor runs.
func (d *Discoverer) FromText(ctx context.Context, text string) []Candidate {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Candidate{}
	}

	if d.provider != nil {
		found, err := d.provider.DiscoverClaims(ctx, truncateRunes(text, maxDiscoveryText))
		switch {
		case err != nil:
			d.log.Warn("ai discovery failed; using heuristic", zap.Error(err))
		case len(found) > 0:
			return fromDiscovered(found)
		}
	}

	return fromManifesto(heuristic.ExtractManifestoClaims(text))
}

func fromDiscovered(found []llm.DiscoveredClaim) []Candidate {
	out := make([]Candidate, 0, len(found))
	for _, f := range found {
		t := strings.TrimSpace(f.ClaimText)
		if t == "" {
			continue
		}
		cat := model.CategoryPolitics
		if c, ok := model.ParseCategory(f.Category); ok {
			cat = c
		}
		out = append(out, Candidate{
			ClaimantName:   strings.TrimSpace(f.ClaimantName),
			Text:           t,
			Category:       string(cat),
			TargetDate:     f.TargetDateEstimate,
			VaguenessIndex: heuristic.Vagueness(t),
			Source:         model.AnalysisSourceAI,
		})
	}
	return out
}

func fromManifesto(claims []model.ManifestoClaim) []Candidate {
	out := make([]Candidate, 0, len(claims))
	for _, c := range claims {
		out = append(out, Candidate{
			Text:           c.Text,
			Category:       c.Category,
			VaguenessIndex: heuristic.Vagueness(c.Text),
			Source:         model.AnalysisSourceHeuristic,
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
