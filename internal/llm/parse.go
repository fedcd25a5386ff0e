package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/ppiankov/pap/internal/model"
)

const (
	maxParams   = 10
	maxVectors  = 5
	maxEvidence = 5
)

// StripFences removes a surrounding markdown code fence, if any
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:] // language tag
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type rawAnalysis struct {
	VaguenessScore *float64 `json:"vaguenessScore"`
	AnalysisParams []struct {
		Label     string `json:"label"`
		Fulfilled bool   `json:"fulfilled"`
	} `json:"analysisParams"`
	VerificationVectors []struct {
		ModelName  string   `json:"modelName"`
		Verdict    string   `json:"verdict"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
	} `json:"verificationVectors"`
	BiasReport  string `json:"biasReport"`
	WebEvidence []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"webEvidence"`
}

// ParseAnalyzeResponse validates a raw model answer against the scoring contract.
// A missing or out-of-range score is malformed; over-long lists are truncated.
func ParseAnalyzeResponse(raw string) (*AnalyzeResponse, error) {
	var r rawAnalysis
	if err := decodeStrict(StripFences(raw), &r); err != nil {
		return nil, err
	}

	if r.VaguenessScore == nil {
		return nil, fmt.Errorf("%w: missing vaguenessScore", ErrMalformedResponse)
	}
	score := math.Round(*r.VaguenessScore)
	if math.IsNaN(score) || score < 1 || score > 10 {
		return nil, fmt.Errorf("%w: vaguenessScore %v outside 1-10", ErrMalformedResponse, *r.VaguenessScore)
	}

	out := &AnalyzeResponse{
		VaguenessScore:      int(score),
		AnalysisParams:      []model.AnalysisParam{},
		VerificationVectors: []model.VerificationVector{},
		WebEvidence:         []model.WebEvidenceLink{},
		BiasReport:          strings.TrimSpace(r.BiasReport),
	}

	for _, p := range r.AnalysisParams {
		if len(out.AnalysisParams) == maxParams {
			break
		}
		label := strings.TrimSpace(p.Label)
		if label == "" {
			continue
		}
		out.AnalysisParams = append(out.AnalysisParams, model.AnalysisParam{Label: label, Fulfilled: p.Fulfilled})
	}

	for _, v := range r.VerificationVectors {
		if len(out.VerificationVectors) == maxVectors {
			break
		}
		name := strings.TrimSpace(v.ModelName)
		if name == "" {
			continue
		}
		verdict, ok := model.ParseStatus(strings.TrimSpace(v.Verdict))
		if !ok {
			verdict = model.StatusInconclusive
		}
		confidence := 0.0
		if v.Confidence != nil {
			confidence = math.Max(0, math.Min(1, *v.Confidence))
		}
		out.VerificationVectors = append(out.VerificationVectors, model.VerificationVector{
			ModelName:  name,
			Verdict:    verdict,
			Confidence: confidence,
			Reasoning:  strings.TrimSpace(v.Reasoning),
		})
	}

	for _, e := range r.WebEvidence {
		if len(out.WebEvidence) == maxEvidence {
			break
		}
		if !isWebURL(e.URL) {
			continue
		}
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = e.URL
		}
		out.WebEvidence = append(out.WebEvidence, model.WebEvidenceLink{Title: title, URL: strings.TrimSpace(e.URL)})
	}

	return out, nil
}

// ParseBackground validates a claimant lookup answer
func ParseBackground(raw string) (*Background, error) {
	var b Background
	if err := decodeStrict(StripFences(raw), &b); err != nil {
		return nil, err
	}
	b.Bio = strings.TrimSpace(b.Bio)
	if b.Bio == "" && len(b.Affiliations) == 0 {
		return nil, fmt.Errorf("%w: empty background", ErrMalformedResponse)
	}
	return &b, nil
}

// ParseDiscoveredClaims accepts {"claims": [...]}, a bare array, or a single object
func ParseDiscoveredClaims(raw string) ([]DiscoveredClaim, error) {
	s := StripFences(raw)

	var claims []DiscoveredClaim
	switch {
	case strings.HasPrefix(s, "["):
		if err := decodeStrict(s, &claims); err != nil {
			return nil, err
		}
	case strings.HasPrefix(s, "{"):
		var wrapped struct {
			Claims []DiscoveredClaim `json:"claims"`
		}
		if err := decodeStrict(s, &wrapped); err != nil {
			return nil, err
		}
		claims = wrapped.Claims
		if claims == nil {
			var single DiscoveredClaim
			if err := decodeStrict(s, &single); err != nil {
				return nil, err
			}
			claims = []DiscoveredClaim{single}
		}
	default:
		return nil, fmt.Errorf("%w: expected JSON object or array", ErrMalformedResponse)
	}

	out := make([]DiscoveredClaim, 0, len(claims))
	for _, c := range claims {
		c.ClaimText = strings.TrimSpace(c.ClaimText)
		c.ClaimantName = strings.TrimSpace(c.ClaimantName)
		if c.ClaimText == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeStrict(s string, v interface{}) error {
	if s == "" {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}
	return nil
}

func isWebURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
