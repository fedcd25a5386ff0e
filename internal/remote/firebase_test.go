package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/model"
)

type doc struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Note  *string `json:"note"`
	Inner *struct {
		Value *int `json:"value"`
	} `json:"inner"`
}

func (d doc) EntityID() string { return d.ID }

// fakeFirebase keeps one JSON document per path
type fakeFirebase struct {
	mu    sync.Mutex
	paths map[string]string
	calls []string
}

func (f *fakeFirebase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if r.URL.Query().Get("auth") != "test-key-123" {
		http.Error(w, `{"error":"Permission denied"}`, http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		body, ok := f.paths[r.URL.Path]
		if !ok {
			body = "null"
		}
		_, _ = io.WriteString(w, body)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.paths[r.URL.Path] = string(data)
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.paths, r.URL.Path)
		_, _ = io.WriteString(w, "null")
	}
}

func newTestFirebase(t *testing.T, handler http.Handler, key string) *FirebaseStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewFirebaseStore(model.RemoteConfig{
		DatabaseURL:  server.URL,
		APIKey:       key,
		Namespace:    "pap",
		Timeout:      2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestFirebaseStore_Configured(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want bool
	}{
		{"valid", "https://pap-default-rtdb.firebaseio.com", "AIzaSyA-realistic-key", true},
		{"missing url", "", "AIzaSyA-realistic-key", false},
		{"relative url", "pap.firebaseio.com", "AIzaSyA-realistic-key", false},
		{"ftp url", "ftp://pap.firebaseio.com", "AIzaSyA-realistic-key", false},
		{"missing key", "https://pap.firebaseio.com", "", false},
		{"placeholder key", "https://pap.firebaseio.com", "YOUR_FIREBASE_API_KEY", false},
		{"whitespace key", "https://pap.firebaseio.com", "abc def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFirebaseStore(model.RemoteConfig{DatabaseURL: tt.url, APIKey: tt.key}, zap.NewNop())
			if got := s.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirebaseStore_ReplaceAllThenFetch(t *testing.T) {
	fake := &fakeFirebase{paths: map[string]string{}}
	s := newTestFirebase(t, fake, "test-key-123")
	ctx := context.Background()

	ok := s.ReplaceAll(ctx, Claims, []Entity{doc{ID: "b", Name: "second"}, doc{ID: "a", Name: "first"}})
	require.True(t, ok)

	stored := fake.paths["/pap/claims.json"]
	require.NotContains(t, stored, "null")

	items := s.FetchAll(ctx, Claims)
	require.True(t, s.Reachable(Claims))
	require.Len(t, items, 2)

	var first doc
	require.NoError(t, json.Unmarshal(items[0], &first))
	require.Equal(t, "a", first.ID)
}

func TestFirebaseStore_EmptyRemoteIsReachable(t *testing.T) {
	fake := &fakeFirebase{paths: map[string]string{}}
	s := newTestFirebase(t, fake, "test-key-123")

	items := s.FetchAll(context.Background(), Claimants)
	require.Empty(t, items)
	require.True(t, s.Reachable(Claimants), "null collection is still a successful round trip")
}

func TestFirebaseStore_AuthFailureIsUnreachable(t *testing.T) {
	fake := &fakeFirebase{paths: map[string]string{"/pap/claims.json": `{"a":{"id":"a"}}`}}
	s := newTestFirebase(t, fake, "wrong-key-456")

	items := s.FetchAll(context.Background(), Claims)
	require.Empty(t, items)
	require.False(t, s.Reachable(Claims))
	require.False(t, s.ReplaceAll(context.Background(), Claims, []Entity{doc{ID: "a"}}))
}

func TestFirebaseStore_MalformedPayloadIsUnreachable(t *testing.T) {
	server := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `"just a string"`)
	})
	s := newTestFirebase(t, server, "test-key-123")

	require.Empty(t, s.FetchAll(context.Background(), Claims))
	require.False(t, s.Reachable(Claims))
}

func TestFirebaseStore_ArrayPayload(t *testing.T) {
	fake := &fakeFirebase{paths: map[string]string{"/pap/claims.json": `[null,{"id":"1"},{"id":"2"}]`}}
	s := newTestFirebase(t, fake, "test-key-123")

	require.Len(t, s.FetchAll(context.Background(), Claims), 2)
}

func TestFirebaseStore_UpsertAndDelete(t *testing.T) {
	fake := &fakeFirebase{paths: map[string]string{}}
	s := newTestFirebase(t, fake, "test-key-123")
	ctx := context.Background()

	require.True(t, s.UpsertOne(ctx, Claimants, doc{ID: "c1", Name: "x"}))
	require.Contains(t, fake.paths, "/pap/claimants/c1.json")
	require.NotContains(t, fake.paths["/pap/claimants/c1.json"], "null")

	require.True(t, s.DeleteOne(ctx, Claimants, "c1"))
	require.NotContains(t, fake.paths, "/pap/claimants/c1.json")

	require.False(t, s.UpsertOne(ctx, Claimants, doc{}), "entity without id must not be written")
}

func TestFirebaseStore_UnconfiguredShortCircuits(t *testing.T) {
	var hits int
	server := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ })
	s := newTestFirebase(t, server, "")

	ctx := context.Background()
	require.Nil(t, s.FetchAll(ctx, Claims))
	require.False(t, s.ReplaceAll(ctx, Claims, nil))
	require.False(t, s.DeleteOne(ctx, Claims, "x"))
	require.Zero(t, hits)
}

func TestNewStore_UnconfiguredIsDisabled(t *testing.T) {
	s := NewStore(model.RemoteConfig{Backend: "firebase"}, nil)
	if _, ok := s.(Disabled); !ok {
		t.Fatalf("expected Disabled, got %T", s)
	}

	s = NewStore(model.RemoteConfig{Backend: "redis", RedisAddr: "not-an-addr"}, nil)
	if _, ok := s.(Disabled); !ok {
		t.Fatalf("expected Disabled for bad redis addr, got %T", s)
	}

	s = NewStore(model.RemoteConfig{Backend: "couchdb"}, nil)
	if !strings.EqualFold(s.Name(), "disabled") {
		t.Fatalf("expected disabled store for unknown backend, got %s", s.Name())
	}
}
