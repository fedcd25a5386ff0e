package cache

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
)

// Store persists entity collections as JSON arrays on top of a byte cache.
// Reads probe legacy keys; writes only ever touch the primary key.
type Store struct {
	backend Cache
	log     *zap.Logger
}

// NewStore wraps a backend
func NewStore(backend Cache, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, log: log}
}

// Load returns the raw elements of the first candidate key holding a non-empty JSON array.
// Missing, corrupt and empty values are skipped; nothing found yields nil.
func (s *Store) Load(coll Collection) []json.RawMessage {
	for _, key := range Keys(coll) {
		data, ok := s.backend.Get(key)
		if !ok || len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			s.log.Warn("skipping corrupt cache entry",
				zap.String("collection", string(coll)),
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		if len(items) == 0 {
			continue
		}

		if key != PrimaryKey(coll) {
			s.log.Info("loaded collection from legacy key",
				zap.String("collection", string(coll)),
				zap.String("key", key))
		}
		return items
	}
	return nil
}

// Save writes items under the primary key; failures are logged and reported as false
func (s *Store) Save(coll Collection, items interface{}) bool {
	data, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("encode collection for cache",
			zap.String("collection", string(coll)),
			zap.Error(err))
		return false
	}

	if err := s.backend.Set(PrimaryKey(coll), data, 0); err != nil {
		s.log.Warn("cache write failed",
			zap.String("collection", string(coll)),
			zap.Error(err))
		return false
	}
	return true
}
