package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/llm"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/util"
	"github.com/ppiankov/pap/internal/worker"
)

const manifestoPage = `<html><head><title>Manifesto</title><script>var x = "will build";</script></head>
<body>
<nav>Home About</nav>
<p>We will build 500 megawatts of new hydropower capacity within five years.</p>
<p>The party shall reduce income tax for families earning under one lakh rupees.</p>
<p>Thank you.</p>
</body></html>`

func discoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/manifesto", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, manifestoPage)
	})
	mux.HandleFunc("/private/notes", func(w http.ResponseWriter, r *http.Request) {
		t.Error("disallowed page was fetched")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestDiscoverer(provider llm.Provider) *Discoverer {
	return NewDiscoverer(
		NewFetcher(5*time.Second, "PAP/test", 1<<20, "", ""),
		util.NewRobotsChecker("PAP", 5*time.Second),
		worker.NewLimiter(0, 1),
		provider,
		zap.NewNop(),
	)
}

func TestFromURL_HeuristicExtraction(t *testing.T) {
	server := discoveryServer(t)
	d := newTestDiscoverer(nil)

	got, err := d.FromURL(context.Background(), server.URL+"/manifesto")
	require.NoError(t, err)
	require.Equal(t, "manifesto", got.Subject)
	require.Len(t, got.Candidates, 2)

	require.Contains(t, got.Candidates[0].Text, "500 megawatts")
	require.Equal(t, string(model.CategoryHydropower), got.Candidates[0].Category)
	require.Equal(t, model.AnalysisSourceHeuristic, got.Candidates[0].Source)
	require.Equal(t, string(model.CategoryEconomy), got.Candidates[1].Category)

	for _, c := range got.Candidates {
		require.NotContains(t, c.Text, "var x")
		require.GreaterOrEqual(t, c.VaguenessIndex, 1)
	}
}

func TestFromURL_RespectsRobots(t *testing.T) {
	server := discoveryServer(t)
	d := newTestDiscoverer(nil)

	_, err := d.FromURL(context.Background(), server.URL+"/private/notes")
	require.ErrorIs(t, err, ErrDisallowed)
}

func TestFromURL_RejectsBadURLs(t *testing.T) {
	d := newTestDiscoverer(nil)
	for _, u := range []string{"", "ftp://example.com/file", "/relative/path", "http://"} {
		_, err := d.FromURL(context.Background(), u)
		require.ErrorIs(t, err, ErrBadURL, u)
	}
}

func TestFromURL_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestDiscoverer(nil).FromURL(context.Background(), server.URL+"/page")
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestFromText_PrefersAI(t *testing.T) {
	p := &fakeProvider{found: []llm.DiscoveredClaim{
		{ClaimantName: " Bikash Thapa ", ClaimText: "Load shedding will end by 2026.", Category: "hydropower", TargetDateEstimate: "2026-12-31"},
		{ClaimText: "   "},
		{ClaimText: "Something vague will happen soon.", Category: "unknown"},
	}}
	got := newTestDiscoverer(p).FromText(context.Background(), "some page text")

	require.Len(t, got, 2)
	require.Equal(t, "Bikash Thapa", got[0].ClaimantName)
	require.Equal(t, string(model.CategoryHydropower), got[0].Category)
	require.Equal(t, "2026-12-31", got[0].TargetDate)
	require.Equal(t, model.AnalysisSourceAI, got[0].Source)
	require.Equal(t, string(model.CategoryPolitics), got[1].Category)
}

func TestFromText_FallsBackWhenAIFailsOrFindsNothing(t *testing.T) {
	text := "We will build 500 megawatts of new hydropower capacity within five years."

	for name, p := range map[string]*fakeProvider{
		"error": {foundErr: errors.New("upstream unavailable")},
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			got := newTestDiscoverer(p).FromText(context.Background(), text)
			require.Len(t, got, 1)
			require.Equal(t, model.AnalysisSourceHeuristic, got[0].Source)
		})
	}
}

func TestFromText_Empty(t *testing.T) {
	got := newTestDiscoverer(nil).FromText(context.Background(), "  \n ")
	require.NotNil(t, got)
	require.Empty(t, got)
}
