package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pap/internal/model"
)

func validClaim() model.ClaimInput {
	return model.ClaimInput{
		ClaimantName: "Bikash Thapa",
		Text:         "Upper Tamakoshi will reach 456 MW by December 2025.",
		TargetDate:   "2025-12-31",
		Category:     "hydropower",
		Status:       "ongoing",
		Sources:      []model.ClaimSource{{URL: "https://www.youtube.com/watch?v=abc"}},
	}
}

func TestClaimInput_CanonicalizesValues(t *testing.T) {
	in := validClaim()
	require.NoError(t, ClaimInput(&in))
	require.Equal(t, model.CategoryHydropower, in.Category)
	require.Equal(t, model.StatusOngoing, in.Status)
	require.Equal(t, model.SourceYouTube, in.Sources[0].Type)
}

func TestClaimInput_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.ClaimInput)
		msg    string
	}{
		{"missing text", func(in *model.ClaimInput) { in.Text = "" }, "text is required"},
		{"short text", func(in *model.ClaimInput) { in.Text = "abc" }, "text must be at least 5 characters"},
		{"long text", func(in *model.ClaimInput) { in.Text = strings.Repeat("x", 2001) }, "text must be at most 2000"},
		{"long claimant", func(in *model.ClaimInput) { in.ClaimantName = strings.Repeat("n", 201) }, "claimantName must be at most 200"},
		{"bad date", func(in *model.ClaimInput) { in.TargetDate = "31/12/2025" }, "targetDate must be a date"},
		{"bad category", func(in *model.ClaimInput) { in.Category = "Sports" }, "not a known category"},
		{"bad status", func(in *model.ClaimInput) { in.Status = "Maybe" }, "not a known status"},
		{"vagueness range", func(in *model.ClaimInput) { in.VaguenessIndex = 11 }, "vaguenessIndex must be at most 10"},
		{"source url", func(in *model.ClaimInput) { in.Sources[0].URL = "not a url" }, "sources[0].url must be a valid URL"},
		{"source type", func(in *model.ClaimInput) { in.Sources[0].Type = "Instagram" }, "not a known source type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validClaim()
			tt.mutate(&in)
			err := ClaimInput(&in)
			require.ErrorIs(t, err, ErrValidation)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestClaimInput_ClaimantIDSuffices(t *testing.T) {
	in := validClaim()
	in.ClaimantName = ""
	in.ClaimantID = "c3"
	require.NoError(t, ClaimInput(&in))
}

func TestClaimantPatch(t *testing.T) {
	bad := "ftp//nope"
	require.ErrorIs(t, ClaimantPatch(&model.ClaimantPatch{ID: "c1", PhotoURL: &bad}), ErrValidation)
	require.ErrorIs(t, ClaimantPatch(&model.ClaimantPatch{}), ErrValidation)

	bio := "Economist."
	require.NoError(t, ClaimantPatch(&model.ClaimantPatch{ID: "c1", Bio: &bio, Tags: []string{"Economy"}}))
}

func TestAnalysisParams(t *testing.T) {
	require.NoError(t, AnalysisParams([]model.AnalysisParam{{Label: "Specific date", Fulfilled: true}}))
	require.NoError(t, AnalysisParams(nil))

	err := AnalysisParams([]model.AnalysisParam{{Label: "ok"}, {Label: ""}})
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "item 1")

	many := make([]model.AnalysisParam, 31)
	for i := range many {
		many[i].Label = "x"
	}
	require.ErrorIs(t, AnalysisParams(many), ErrValidation)
}

func TestSourceURL(t *testing.T) {
	for _, ok := range []string{"https://kathmandupost.com/a", "http://example.com", " https://x.com/u/status/1 "} {
		require.NoError(t, SourceURL(ok), ok)
	}
	for _, bad := range []string{"", "example.com/a", "mailto:a@b.c", "https://"} {
		require.ErrorIs(t, SourceURL(bad), ErrValidation, bad)
	}
}

func TestClassifySource(t *testing.T) {
	tests := map[string]model.SourceType{
		"https://www.tiktok.com/@user/video/1":  model.SourceTikTok,
		"https://m.facebook.com/story.php?id=1": model.SourceFacebook,
		"https://fb.watch/abc":                  model.SourceFacebook,
		"https://twitter.com/user/status/1":     model.SourceX,
		"https://x.com/user":                    model.SourceX,
		"https://old.reddit.com/r/Nepal/":       model.SourceReddit,
		"https://youtu.be/abc":                  model.SourceYouTube,
		"https://YOUTUBE.com/watch?v=1":         model.SourceYouTube,
		"https://kathmandupost.com/politics/x":  model.SourceNews,
		"https://notreddit.com/r":               model.SourceNews,
		"%%%":                                   model.SourceNews,
	}
	for raw, want := range tests {
		require.Equal(t, want, ClassifySource(raw), raw)
	}
}

func TestNormalizeSources(t *testing.T) {
	require.Nil(t, NormalizeSources(nil))

	got := NormalizeSources([]model.ClaimSource{
		{Type: "x/twitter", URL: " https://x.com/a "},
		{URL: "https://reddit.com/r/Nepal"},
		{},
	})
	require.Equal(t, model.SourceX, got[0].Type)
	require.Equal(t, "https://x.com/a", got[0].URL)
	require.Equal(t, model.SourceReddit, got[1].Type)
	require.Equal(t, model.SourceType(""), got[2].Type)
}
