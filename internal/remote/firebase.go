package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/metrics"
	"github.com/ppiankov/pap/internal/model"
)

const maxResponseBytes = 32 << 20

// FirebaseStore talks to a Firebase Realtime Database over its REST interface.
// Collections live at {databaseURL}/{namespace}/{collection}.json as objects keyed by id.
type FirebaseStore struct {
	baseURL      string
	apiKey       string
	namespace    string
	timeout      time.Duration
	writeTimeout time.Duration
	httpClient   *http.Client
	log          *zap.Logger
	reach        reachability
}

// NewFirebaseStore creates a store; call Configured before relying on it
func NewFirebaseStore(cfg model.RemoteConfig, log *zap.Logger) *FirebaseStore {
	ns := strings.Trim(cfg.Namespace, "/")
	if ns == "" {
		ns = "pap"
	}
	return &FirebaseStore{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.DatabaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		namespace:    ns,
		timeout:      cfg.Timeout,
		writeTimeout: cfg.WriteTimeout,
		httpClient:   &http.Client{},
		log:          log.With(zap.String("backend", "firebase")),
	}
}

// Name returns the backend name
func (s *FirebaseStore) Name() string { return "firebase" }

// Configured is true for an absolute http(s) database URL plus a usable key
func (s *FirebaseStore) Configured() bool {
	u, err := url.Parse(s.baseURL)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	return validSecret(s.apiKey)
}

// FetchAll reads the collection object and returns its values ordered by id
func (s *FirebaseStore) FetchAll(ctx context.Context, coll Collection) []json.RawMessage {
	if !s.Configured() {
		return nil
	}
	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	body, err := s.do(ctx, http.MethodGet, s.endpoint(string(coll)), nil)
	if err != nil {
		s.reach.set(coll, false)
		metrics.ObserveRemote(s.Name(), "fetch_all", false, time.Since(start))
		s.log.Warn("fetch collection failed", zap.String("collection", string(coll)), zap.Error(err))
		return nil
	}

	items, err := decodeCollection(body)
	if err != nil {
		s.reach.set(coll, false)
		metrics.ObserveRemote(s.Name(), "fetch_all", false, time.Since(start))
		s.log.Warn("malformed collection payload",
			zap.String("collection", string(coll)),
			zap.String("payload", prefix(body, 200)),
			zap.Error(err))
		return nil
	}

	s.reach.set(coll, true)
	metrics.ObserveRemote(s.Name(), "fetch_all", true, time.Since(start))
	s.log.Debug("fetched collection", zap.String("collection", string(coll)), zap.Int("count", len(items)))
	return items
}

// Reachable reports the outcome of the last FetchAll for coll
func (s *FirebaseStore) Reachable(coll Collection) bool {
	return s.reach.get(coll)
}

// ReplaceAll PUTs the full id-keyed object for the collection
func (s *FirebaseStore) ReplaceAll(ctx context.Context, coll Collection, items []Entity) bool {
	if !s.Configured() {
		return false
	}

	payload, err := Sanitize(keyed(items, s.log))
	if err != nil {
		s.log.Warn("encode collection failed", zap.String("collection", string(coll)), zap.Error(err))
		return false
	}
	return s.write(ctx, "replace_all", http.MethodPut, s.endpoint(string(coll)), payload)
}

// UpsertOne PUTs a single entity at its id path
func (s *FirebaseStore) UpsertOne(ctx context.Context, coll Collection, item Entity) bool {
	if !s.Configured() || item == nil || item.EntityID() == "" {
		return false
	}

	payload, err := Sanitize(item)
	if err != nil {
		s.log.Warn("encode entity failed", zap.String("id", item.EntityID()), zap.Error(err))
		return false
	}
	return s.write(ctx, "upsert_one", http.MethodPut, s.endpoint(string(coll), item.EntityID()), payload)
}

// DeleteOne removes a single entity
func (s *FirebaseStore) DeleteOne(ctx context.Context, coll Collection, id string) bool {
	if !s.Configured() || id == "" {
		return false
	}
	return s.write(ctx, "delete_one", http.MethodDelete, s.endpoint(string(coll), id), nil)
}

// Close releases idle connections
func (s *FirebaseStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *FirebaseStore) write(ctx context.Context, op, method, endpoint string, payload []byte) bool {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	_, err := s.do(ctx, method, endpoint, payload)
	metrics.ObserveRemote(s.Name(), op, err == nil, time.Since(start))
	if err != nil {
		s.log.Warn("remote write failed", zap.String("op", op), zap.Error(err))
		return false
	}
	return true
}

func (s *FirebaseStore) endpoint(parts ...string) string {
	segs := []string{s.namespace}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	q := url.Values{}
	q.Set("auth", s.apiKey)
	return fmt.Sprintf("%s/%s.json?%s", s.baseURL, strings.Join(segs, "/"), q.Encode())
}

func (s *FirebaseStore) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, prefix(data, 200))
	}
	return data, nil
}

// decodeCollection accepts null, an id-keyed object, or an array (Firebase renders
// numeric keys as arrays). Null members are dropped.
func decodeCollection(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []json.RawMessage{}, nil
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]json.RawMessage, 0, len(keys))
		for _, k := range keys {
			if isNull(obj[k]) {
				continue
			}
			out = append(out, obj[k])
		}
		return out, nil
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, err
		}
		out := make([]json.RawMessage, 0, len(arr))
		for _, item := range arr {
			if isNull(item) {
				continue
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected object or array, got %q", prefix(trimmed, 20))
	}
}

func keyed(items []Entity, log *zap.Logger) map[string]Entity {
	out := make(map[string]Entity, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		id := item.EntityID()
		if id == "" {
			log.Warn("dropping entity without id from bulk write")
			continue
		}
		out[id] = item
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func prefix(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
