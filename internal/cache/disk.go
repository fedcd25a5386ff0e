package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const diskSuffix = ".json"

// DiskCache keeps one JSON record per key under dir. It is the local
// persistence tier behind the memory layer and survives restarts.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache; ttl 0 keeps entries until overwritten
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl}
}

type diskRecord struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
	Raw       []byte          `json:"raw,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// bytes returns the stored payload whichever way it was written
func (r diskRecord) bytes() []byte {
	if r.Value != nil {
		return []byte(r.Value)
	}
	return r.Raw
}

func (r diskRecord) expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Get returns the value for key. Unreadable, corrupt, foreign or expired
// records are misses; expired ones are removed.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var rec diskRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Key != key {
		return nil, false
	}
	if rec.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return rec.bytes(), true
}

// Set replaces the record for key atomically
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	rec := diskRecord{Key: key}
	// JSON payloads are stored inline (compacted) so the files stay readable
	if json.Valid(value) {
		rec.Value = json.RawMessage(value)
	} else {
		rec.Raw = value
	}
	if ttl > 0 {
		at := time.Now().Add(ttl)
		rec.ExpiresAt = &at
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return writeAtomic(c.dir, c.path(key), data)
}

// Delete removes key; a missing record is not an error
func (c *DiskCache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Clear removes every record this cache wrote and leaves other files in dir alone
func (c *DiskCache) Clear() error {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*"+diskSuffix))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *DiskCache) path(key string) string {
	name := url.PathEscape(key)
	// PathEscape leaves these alone but they are awkward in file names
	name = strings.NewReplacer(":", "%3A", "\\", "%5C").Replace(name)
	return filepath.Join(c.dir, name+diskSuffix)
}

// writeAtomic writes through a temp file in dir and renames it over path
func writeAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".pap-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
