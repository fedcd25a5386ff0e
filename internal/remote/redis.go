package remote

import (
	"context"
	"encoding/json"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/metrics"
	"github.com/ppiankov/pap/internal/model"
)

// RedisStore keeps each collection in one hash {namespace}:{collection}, field = id
type RedisStore struct {
	addr         string
	namespace    string
	timeout      time.Duration
	writeTimeout time.Duration
	rdb          *goredis.Client
	log          *zap.Logger
	reach        reachability
}

// NewRedisStore creates the client lazily; no round trip happens until the first call
func NewRedisStore(cfg model.RemoteConfig, log *zap.Logger) *RedisStore {
	ns := strings.Trim(cfg.Namespace, ":")
	if ns == "" {
		ns = "pap"
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	s := &RedisStore{
		addr:         addr,
		namespace:    ns,
		timeout:      cfg.Timeout,
		writeTimeout: cfg.WriteTimeout,
		log:          log.With(zap.String("backend", "redis")),
	}
	if validAddr(addr) {
		s.rdb = goredis.NewClient(&goredis.Options{
			Addr:        addr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		})
	}
	return s
}

// Name returns the backend name
func (s *RedisStore) Name() string { return "redis" }

// Configured is true when the address is a valid host:port
func (s *RedisStore) Configured() bool {
	return s.rdb != nil
}

func validAddr(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n < 65536
}

func (s *RedisStore) key(coll Collection) string {
	return s.namespace + ":" + string(coll)
}

// FetchAll returns the hash values ordered by id
func (s *RedisStore) FetchAll(ctx context.Context, coll Collection) []json.RawMessage {
	if !s.Configured() {
		return nil
	}
	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	fields, err := s.rdb.HGetAll(ctx, s.key(coll)).Result()
	if err != nil {
		s.reach.set(coll, false)
		metrics.ObserveRemote(s.Name(), "fetch_all", false, time.Since(start))
		s.log.Warn("fetch collection failed", zap.String("collection", string(coll)), zap.Error(err))
		return nil
	}

	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		raw := json.RawMessage(fields[id])
		if !json.Valid(raw) || isNull(raw) {
			s.log.Warn("skipping malformed entity", zap.String("collection", string(coll)), zap.String("id", id))
			continue
		}
		out = append(out, raw)
	}

	s.reach.set(coll, true)
	metrics.ObserveRemote(s.Name(), "fetch_all", true, time.Since(start))
	return out
}

// Reachable reports the outcome of the last FetchAll for coll
func (s *RedisStore) Reachable(coll Collection) bool {
	return s.reach.get(coll)
}

// ReplaceAll swaps the hash contents in one MULTI/EXEC
func (s *RedisStore) ReplaceAll(ctx context.Context, coll Collection, items []Entity) bool {
	if !s.Configured() {
		return false
	}

	values := make(map[string]interface{}, len(items))
	for id, item := range keyed(items, s.log) {
		payload, err := Sanitize(item)
		if err != nil {
			s.log.Warn("encode entity failed", zap.String("id", id), zap.Error(err))
			return false
		}
		values[id] = string(payload)
	}

	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	key := s.key(coll)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	return s.finish("replace_all", start, err)
}

// UpsertOne sets a single hash field
func (s *RedisStore) UpsertOne(ctx context.Context, coll Collection, item Entity) bool {
	if !s.Configured() || item == nil || item.EntityID() == "" {
		return false
	}
	payload, err := Sanitize(item)
	if err != nil {
		s.log.Warn("encode entity failed", zap.String("id", item.EntityID()), zap.Error(err))
		return false
	}

	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()
	err = s.rdb.HSet(ctx, s.key(coll), item.EntityID(), string(payload)).Err()
	return s.finish("upsert_one", start, err)
}

// DeleteOne removes a single hash field
func (s *RedisStore) DeleteOne(ctx context.Context, coll Collection, id string) bool {
	if !s.Configured() || id == "" {
		return false
	}
	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()
	err := s.rdb.HDel(ctx, s.key(coll), id).Err()
	return s.finish("delete_one", start, err)
}

// Close closes the client
func (s *RedisStore) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) finish(op string, start time.Time, err error) bool {
	metrics.ObserveRemote(s.Name(), op, err == nil, time.Since(start))
	if err != nil {
		s.log.Warn("remote write failed", zap.String("op", op), zap.Error(err))
		return false
	}
	return true
}
