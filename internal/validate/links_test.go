package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/pap/internal/model"
)

func init() {
	linkSleepFunc = func(d time.Duration) {}
}

func newTestChecker() *LinkChecker {
	return NewLinkChecker(5*time.Second, 4, "PAP/test", "", "")
}

func TestLinkChecker_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != "PAP/test" {
			t.Errorf("Expected user agent PAP/test, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestChecker().check(context.Background(), link{server.URL, "source"})

	if !result.Accessible {
		t.Error("Expected link to be accessible")
	}
	if result.Dead {
		t.Error("Expected link not to be dead")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", result.StatusCode)
	}
}

func TestLinkChecker_404IsDead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := newTestChecker().check(context.Background(), link{server.URL, "evidence"})

	if result.Accessible {
		t.Error("Expected 404 link not to be accessible")
	}
	if !result.Dead {
		t.Error("Expected 404 link to be marked as dead")
	}
}

func TestLinkChecker_Redirect(t *testing.T) {
	finalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer finalServer.Close()

	redirectServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServer.URL, http.StatusMovedPermanently)
	}))
	defer redirectServer.Close()

	result := newTestChecker().check(context.Background(), link{redirectServer.URL, "source"})

	if !result.Accessible {
		t.Error("Expected redirected link to be accessible")
	}
	if result.RedirectURL != finalServer.URL {
		t.Errorf("Expected redirect to %s, got %s", finalServer.URL, result.RedirectURL)
	}
}

func TestLinkChecker_NonHTTPIsDead(t *testing.T) {
	result := newTestChecker().check(context.Background(), link{"javascript:alert(1)", "source"})
	if !result.Dead || result.Error == "" {
		t.Errorf("Expected non-http link to be dead with an error, got %+v", result)
	}
}

func TestLinkChecker_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestChecker().checkWithRetry(context.Background(), link{server.URL, "source"})

	if !result.Accessible {
		t.Errorf("Expected success after retries, got %+v", result)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestLinkChecker_PermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	newTestChecker().checkWithRetry(context.Background(), link{server.URL, "source"})

	if calls.Load() != 1 {
		t.Errorf("Expected 1 attempt for 403, got %d", calls.Load())
	}
}

func TestLinkChecker_CheckClaimKeepsOrder(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer gone.Close()

	claim := model.Claim{
		ID: "1",
		Sources: []model.ClaimSource{
			{Type: model.SourceNews, URL: ok.URL + "/article", ScreenshotURL: gone.URL + "/shot.png"},
		},
		WebEvidenceLinks: []model.WebEvidenceLink{{Title: "Report", URL: ok.URL + "/report"}},
	}

	results := newTestChecker().CheckClaim(context.Background(), claim)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	wantKinds := []string{"source", "screenshot", "evidence"}
	for i, r := range results {
		if r.Kind != wantKinds[i] {
			t.Errorf("result %d: expected kind %s, got %s", i, wantKinds[i], r.Kind)
		}
	}
	if !results[0].Accessible || !results[2].Accessible {
		t.Error("Expected source and evidence links to be accessible")
	}
	if !results[1].Dead {
		t.Error("Expected 410 screenshot to be dead")
	}
}

func TestLinkChecker_CheckClaimWithoutLinks(t *testing.T) {
	results := newTestChecker().CheckClaim(context.Background(), model.Claim{ID: "1"})
	if results == nil || len(results) != 0 {
		t.Errorf("Expected empty non-nil results, got %v", results)
	}
}

func TestLinkChecker_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	claim := model.Claim{WebEvidenceLinks: []model.WebEvidenceLink{{URL: "http://127.0.0.1:1/x"}}}
	results := newTestChecker().CheckClaim(ctx, claim)

	if results[0].Accessible {
		t.Error("Expected cancelled check not to be accessible")
	}
}
