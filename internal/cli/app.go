package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/pipeline"
	"github.com/ppiankov/pap/internal/remote"
	"github.com/ppiankov/pap/internal/syncer"
	"github.com/ppiankov/pap/internal/validate"
)

const linkWorkers = 8

// errDemoMode stops commands whose changes would only live in memory
var errDemoMode = errors.New("demo mode: running on seed data, changes would not be saved; " +
	"configure remote.database_url or remote.redis_addr (see 'pap config init')")

// app holds everything a command needs. Build it once with openApp and release
// it with Close, which flushes pending remote writes.
type app struct {
	cfg   *model.Config
	log   *zap.Logger
	coord *syncer.Coordinator
	pipe  *pipeline.Pipeline
	links *validate.LinkChecker

	closeCache func() error
}

func openApp(ctx context.Context, level zapcore.Level) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	backend, closeCache, err := openCache(cfg.Cache, log)
	if err != nil {
		return nil, err
	}

	var rem remote.Store = remote.Disabled{}
	if !offline {
		rem = remote.NewStore(cfg.Remote, log)
	}

	coord := syncer.New(cache.NewStore(backend, log), rem, syncer.ConfigFromModel(cfg.Remote), log)
	if err := coord.Start(ctx); err != nil {
		_ = coord.Close()
		_ = closeCache()
		return nil, fmt.Errorf("start sync: %w", err)
	}

	return &app{
		cfg:        cfg,
		log:        log,
		coord:      coord,
		pipe:       pipeline.New(ctx, cfg, coord, cache.NewStore(backend, log), log),
		links:      validate.NewLinkChecker(cfg.HTTP.Timeout, linkWorkers, cfg.HTTP.UserAgent, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
		closeCache: closeCache,
	}, nil
}

// openCache builds the configured local backend behind a memory layer
func openCache(cfg model.CacheConfig, log *zap.Logger) (cache.Cache, func() error, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "disk":
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create cache dir: %w", err)
		}
		return cache.NewMemoryOverDisk(cfg.MemoryTTL, cfg.Dir), func() error { return nil }, nil
	case "badger":
		db, err := cache.OpenBadgerCache(cache.BadgerOptions{Dir: filepath.Join(cfg.Dir, "badger"), Logger: log})
		if err != nil {
			return nil, nil, fmt.Errorf("open badger cache: %w", err)
		}
		return cache.NewLayeredCache(cache.NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q (want disk or badger)", cfg.Backend)
	}
}

// requirePersistence fails in demo mode, where mutations never reach a store
func (a *app) requirePersistence() error {
	if a.coord.DemoMode() {
		return errDemoMode
	}
	return nil
}

// Close flushes and releases in reverse order of construction
func (a *app) Close() error {
	err := errors.Join(a.pipe.Close(), a.coord.Close(), a.closeCache())
	_ = a.log.Sync()
	return err
}

func (a *app) syncBanner() {
	st := a.coord.Status()
	mode := "synced"
	switch {
	case st.DemoMode:
		mode = "demo (seed data, remote writes off)"
	case !st.RemoteConfigured:
		mode = "local only"
	}
	fmt.Fprintf(os.Stderr, "  Remote:       %s\n", st.RemoteBackend)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", mode)
	fmt.Fprintf(os.Stderr, "  AI:           %s\n", a.pipe.ProviderName())
}
