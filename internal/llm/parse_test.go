package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/pap/internal/model"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1]\n```", `[1]`},
		{"```{\"a\":1}```", `{"a":1}`},
		{"  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAnalyzeResponse_RoundsAndClamps(t *testing.T) {
	r, err := ParseAnalyzeResponse(`{
		"vaguenessScore": 6.6,
		"verificationVectors": [
			{"modelName": "A", "verdict": "Maybe", "confidence": 1.7},
			{"modelName": " ", "verdict": "Fulfilled", "confidence": 0.5},
			{"modelName": "B", "verdict": "Disproven", "confidence": -3}
		],
		"webEvidence": [
			{"title": "", "url": "https://example.com/a"},
			{"title": "ftp", "url": "ftp://example.com/b"},
			{"title": "rel", "url": "/relative"}
		]
	}`)
	require.NoError(t, err)
	require.Equal(t, 7, r.VaguenessScore)
	require.Len(t, r.VerificationVectors, 2)
	require.Equal(t, model.StatusInconclusive, r.VerificationVectors[0].Verdict)
	require.Equal(t, 1.0, r.VerificationVectors[0].Confidence)
	require.Equal(t, model.StatusDisproven, r.VerificationVectors[1].Verdict)
	require.Equal(t, 0.0, r.VerificationVectors[1].Confidence)
	require.Len(t, r.WebEvidence, 1)
	require.Equal(t, "https://example.com/a", r.WebEvidence[0].Title)
	require.NotNil(t, r.AnalysisParams)
}

func TestParseAnalyzeResponse_Truncates(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"vaguenessScore": 2, "analysisParams": [`)
	for i := 0; i < 14; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"label": "p", "fulfilled": true}`)
	}
	b.WriteString(`]}`)

	r, err := ParseAnalyzeResponse(b.String())
	require.NoError(t, err)
	require.Len(t, r.AnalysisParams, 10)
}

func TestParseAnalyzeResponse_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json",
		`{"analysisParams": []}`,
		`{"vaguenessScore": 0}`,
		`{"vaguenessScore": 11}`,
		`{"vaguenessScore": 3} trailing`,
	} {
		_, err := ParseAnalyzeResponse(raw)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("ParseAnalyzeResponse(%q): expected ErrMalformedResponse, got %v", raw, err)
		}
	}
}

func TestParseBackground(t *testing.T) {
	b, err := ParseBackground(`{"bio": "  Economist. ", "affiliations": ["Bank"]}`)
	require.NoError(t, err)
	require.Equal(t, "Economist.", b.Bio)

	_, err = ParseBackground(`{"bio": "", "affiliations": []}`)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseDiscoveredClaims(t *testing.T) {
	wrapped, err := ParseDiscoveredClaims(`{"claims": [{"claimantName": "A", "claimText": "X by 2030"}, {"claimText": "  "}]}`)
	require.NoError(t, err)
	require.Len(t, wrapped, 1)

	bare, err := ParseDiscoveredClaims(`[{"claimantName": "A", "claimText": "X"}, {"claimantName": "B", "claimText": "Y"}]`)
	require.NoError(t, err)
	require.Len(t, bare, 2)

	single, err := ParseDiscoveredClaims(`{"claimantName": "A", "claimText": "X"}`)
	require.NoError(t, err)
	require.Len(t, single, 1)
	require.Equal(t, "A", single[0].ClaimantName)

	_, err = ParseDiscoveredClaims(`"just a string"`)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestBuildDiscoveryPrompt_Truncates(t *testing.T) {
	page := strings.Repeat("न", maxPageRunes+500)
	prompt := BuildDiscoveryPrompt(page)
	require.Equal(t, maxPageRunes, strings.Count(prompt, "न"))
}
