package model

import (
	"testing"
	"time"
)

func TestMergeAnalysisParams_KeepsHumanAdded(t *testing.T) {
	existing := []AnalysisParam{
		{Label: "Specific date", Fulfilled: false},
		{Label: "Reviewed by editor", Fulfilled: true, IsHumanAdded: true},
	}
	fresh := []AnalysisParam{
		{Label: "Specific date", Fulfilled: true},
		{Label: "Named actor", Fulfilled: true},
	}

	merged := MergeAnalysisParams(existing, fresh)
	if len(merged) != 3 {
		t.Fatalf("expected 3 params, got %d", len(merged))
	}
	if !merged[0].Fulfilled {
		t.Error("expected machine param to be replaced by fresh value")
	}
	last := merged[2]
	if last.Label != "Reviewed by editor" || !last.IsHumanAdded || !last.Fulfilled {
		t.Errorf("expected human param preserved, got %+v", last)
	}
}

func TestClaim_CloneDoesNotAlias(t *testing.T) {
	c := Claim{ID: "1", Sources: []ClaimSource{{Type: SourceNews, URL: "https://a"}}}
	clone := c.Clone()
	clone.Sources[0].URL = "https://b"

	if c.Sources[0].URL != "https://a" {
		t.Error("clone mutated original sources")
	}
}

func TestClaim_Snapshot(t *testing.T) {
	c := Claim{Text: "x", Status: StatusPartial, VaguenessIndex: 7}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	v := c.Snapshot(at)
	if v.Text != "x" || v.Status != StatusPartial || v.VaguenessIndex != 7 {
		t.Errorf("unexpected snapshot %+v", v)
	}
	if v.Timestamp != "2025-01-02T03:04:05Z" {
		t.Errorf("unexpected timestamp %s", v.Timestamp)
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("manifesto"); !ok || c != CategoryManifesto {
		t.Errorf("expected manifesto alias, got %q %v", c, ok)
	}
	if c, ok := ParseCategory("hydropower"); !ok || c != CategoryHydropower {
		t.Errorf("expected hydropower, got %q", c)
	}
	if _, ok := ParseCategory("sports"); ok {
		t.Error("expected unknown category to fail")
	}
}

func TestClampVagueness(t *testing.T) {
	for in, want := range map[int]int{0: 5, -3: 1, 1: 1, 10: 10, 42: 10, 6: 6} {
		if got := ClampVagueness(in); got != want {
			t.Errorf("ClampVagueness(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestManifestoDocument_Completion(t *testing.T) {
	d := ManifestoDocument{ExtractedClaims: []ManifestoClaim{
		{Status: ManifestoFulfilled},
		{Status: ManifestoPending},
		{Status: ManifestoFulfilled},
	}}
	if got := d.Completion(); got != 67 {
		t.Errorf("expected 67, got %d", got)
	}
	if got := (ManifestoDocument{}).Completion(); got != 0 {
		t.Errorf("expected 0 for empty document, got %d", got)
	}
}

func TestSeedData_ReferencesExistingClaimants(t *testing.T) {
	ids := map[string]bool{}
	for _, c := range SeedClaimants() {
		ids[c.ID] = true
	}
	for _, c := range SeedClaims() {
		if !ids[c.ClaimantID] {
			t.Errorf("seed claim %s references unknown claimant %s", c.ID, c.ClaimantID)
		}
		if c.AnalysisParams == nil || c.Sources == nil {
			t.Errorf("seed claim %s not normalized", c.ID)
		}
	}
}
