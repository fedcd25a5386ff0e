package model

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for dateMade and targetDate
const DateLayout = "2006-01-02"

// Category is the fixed claim category enumeration
type Category string

const (
	CategoryPolitics   Category = "Politics"
	CategoryEconomy    Category = "Economy"
	CategoryAstrology  Category = "Astrology"
	CategoryHydropower Category = "Hydropower"
	CategoryTourism    Category = "Tourism"
	CategoryManifesto  Category = "Manifesto Tracker" // wire value kept for export compatibility
)

// Categories lists every category in display order
func Categories() []Category {
	return []Category{
		CategoryPolitics,
		CategoryEconomy,
		CategoryAstrology,
		CategoryHydropower,
		CategoryTourism,
		CategoryManifesto,
	}
}

// ParseCategory resolves a category case-insensitively; "manifesto" matches the tracker category
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "manifesto") {
		return CategoryManifesto, true
	}
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Status is the resolution state of a claim
type Status string

const (
	StatusFulfilled    Status = "Fulfilled"
	StatusDisproven    Status = "Disproven"
	StatusPartial      Status = "Partial"
	StatusOngoing      Status = "Ongoing"
	StatusInconclusive Status = "Inconclusive"
)

// Statuses lists every status in display order
func Statuses() []Status {
	return []Status{StatusFulfilled, StatusDisproven, StatusPartial, StatusOngoing, StatusInconclusive}
}

// ParseStatus resolves a status case-insensitively
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses() {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Resolved reports whether the status is a final verdict
func (s Status) Resolved() bool {
	switch s {
	case StatusFulfilled, StatusDisproven, StatusPartial:
		return true
	default:
		return false
	}
}

// SourceType is the platform a claim source was published on
type SourceType string

const (
	SourceTikTok   SourceType = "TikTok"
	SourceFacebook SourceType = "Facebook"
	SourceX        SourceType = "X/Twitter"
	SourceReddit   SourceType = "Reddit"
	SourceNews     SourceType = "News Site"
	SourceYouTube  SourceType = "YouTube"
)

// SourceTypes lists every source platform
func SourceTypes() []SourceType {
	return []SourceType{SourceTikTok, SourceFacebook, SourceX, SourceReddit, SourceNews, SourceYouTube}
}

// ClaimSource is where a claim was observed
type ClaimSource struct {
	Type          SourceType `json:"type" validate:"omitempty,source_type"`
	URL           string     `json:"url" validate:"omitempty,http_url"`
	ScreenshotURL string     `json:"screenshotUrl,omitempty" validate:"omitempty,url"`
}

// AnalysisParam is one verifiability checklist item
type AnalysisParam struct {
	Label        string `json:"label" validate:"required,max=200"`
	Fulfilled    bool   `json:"fulfilled"`
	IsHumanAdded bool   `json:"isHumanAdded,omitempty"` // never overwritten by re-analysis
}

// VerificationVector is a simulated verdict from one perspective
type VerificationVector struct {
	ModelName  string  `json:"modelName"`
	Verdict    Status  `json:"verdict"`
	Confidence float64 `json:"confidence"` // 0..1
	Reasoning  string  `json:"reasoning"`
}

// WebEvidenceLink is a related web page found during analysis
type WebEvidenceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ClaimVersion is a pre-edit snapshot stored in claim history
type ClaimVersion struct {
	Timestamp      string `json:"timestamp"`
	Text           string `json:"text"`
	Status         Status `json:"status"`
	VaguenessIndex int    `json:"vaguenessIndex"`
}

// Claim is a single recorded prediction
type Claim struct {
	ID                  string               `json:"id"`
	ClaimantID          string               `json:"claimantId"`
	Text                string               `json:"text"`
	DateMade            string               `json:"dateMade"`
	TargetDate          string               `json:"targetDate"`
	Category            Category             `json:"category"`
	Status              Status               `json:"status"`
	Sources             []ClaimSource        `json:"sources"`
	VaguenessIndex      int                  `json:"vaguenessIndex"` // 1 = falsifiable, 10 = vague
	AnalysisParams      []AnalysisParam      `json:"analysisParams"`
	VerificationVectors []VerificationVector `json:"verificationVectors"`
	WebEvidenceLinks    []WebEvidenceLink    `json:"webEvidenceLinks,omitempty"`
	TopicGroup          string               `json:"topicGroup,omitempty"`
	History             []ClaimVersion       `json:"history,omitempty"`
}

// EntityID implements remote.Entity
func (c Claim) EntityID() string { return c.ID }

// Snapshot captures the current state as a history entry
func (c Claim) Snapshot(at time.Time) ClaimVersion {
	return ClaimVersion{
		Timestamp:      at.UTC().Format(time.RFC3339Nano),
		Text:           c.Text,
		Status:         c.Status,
		VaguenessIndex: c.VaguenessIndex,
	}
}

// Clone returns a deep copy so callers can't alias coordinator state
func (c Claim) Clone() Claim {
	out := c
	out.Sources = slices.Clone(c.Sources)
	out.AnalysisParams = slices.Clone(c.AnalysisParams)
	out.VerificationVectors = slices.Clone(c.VerificationVectors)
	out.WebEvidenceLinks = slices.Clone(c.WebEvidenceLinks)
	out.History = slices.Clone(c.History)
	return out
}

// Normalize fills empty slices and defaults so exported JSON is stable
func (c *Claim) Normalize() {
	if c.Sources == nil {
		c.Sources = []ClaimSource{}
	}
	if c.AnalysisParams == nil {
		c.AnalysisParams = []AnalysisParam{}
	}
	if c.VerificationVectors == nil {
		c.VerificationVectors = []VerificationVector{}
	}
	if c.Status == "" {
		c.Status = StatusOngoing
	}
	c.VaguenessIndex = ClampVagueness(c.VaguenessIndex)
}

// ClampVagueness bounds a vagueness index to 1..10; zero means unscored and maps to the midpoint
func ClampVagueness(v int) int {
	switch {
	case v == 0:
		return 5
	case v < 1:
		return 1
	case v > 10:
		return 10
	default:
		return v
	}
}

// MergeAnalysisParams replaces machine parameters with fresh ones and keeps human-added ones
func MergeAnalysisParams(existing, fresh []AnalysisParam) []AnalysisParam {
	merged := make([]AnalysisParam, 0, len(fresh)+len(existing))
	for _, p := range fresh {
		p.IsHumanAdded = false
		merged = append(merged, p)
	}
	for _, p := range existing {
		if p.IsHumanAdded {
			merged = append(merged, p)
		}
	}
	return merged
}

// Claimant is a person or entity credited with claims
type Claimant struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Bio            string   `json:"bio"`
	Affiliation    string   `json:"affiliation"`
	PhotoURL       string   `json:"photoUrl"`
	AccuracyRate   int      `json:"accuracyRate"`   // cache of ClaimantStats, 0..100
	VaguenessScore float64  `json:"vaguenessScore"` // cache of mean claim vagueness
	TotalClaims    int      `json:"totalClaims"`    // cache of claim count
	Tags           []string `json:"tags"`
}

// EntityID implements remote.Entity
func (c Claimant) EntityID() string { return c.ID }

// Clone returns a deep copy
func (c Claimant) Clone() Claimant {
	out := c
	out.Tags = slices.Clone(c.Tags)
	return out
}

// DefaultClaimantBio marks claimants created implicitly from a new claim
const DefaultClaimantBio = "Recorded via PAP platform."

// SameName reports a case-insensitive claimant name match
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
