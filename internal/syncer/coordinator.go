// Package syncer mediates every read and write between in-memory state, the
// local cache and the remote store.
package syncer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/metrics"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/remote"
	"github.com/ppiankov/pap/internal/worker"
)

const (
	defaultRemoteTimeout = 8 * time.Second
	defaultWriteTimeout  = 10 * time.Second

	loadKey = "load"
)

// Config bounds the remote round trips
type Config struct {
	// RemoteTimeout is the soft wait for the startup and reconnect fetches
	RemoteTimeout time.Duration

	// WriteTimeout bounds one background ReplaceAll
	WriteTimeout time.Duration
}

// ConfigFromModel converts the application config section
func ConfigFromModel(c model.RemoteConfig) Config {
	return Config{RemoteTimeout: c.Timeout, WriteTimeout: c.WriteTimeout}
}

// Coordinator owns the claim and claimant collections. It is the only writer
// to the local cache and the remote store.
type Coordinator struct {
	local  *cache.Store
	remote remote.Store
	cfg    Config
	log    *zap.Logger
	seq    *worker.Sequencer

	now   func() time.Time
	newID func(prefix string) string

	// mut serializes mutations end to end so cache writes land in call order
	mut sync.Mutex

	mu         sync.RWMutex
	claims     []model.Claim
	claimants  []model.Claimant
	claimsSt   collectionState
	claimantSt collectionState
	demo       bool
	seeded     bool

	subMu  sync.RWMutex
	subs   map[int]func(Event)
	nextID int

	writers map[Kind]*writer
	closed  bool
}

// New creates a coordinator; Start must be called before use
func New(local *cache.Store, rem remote.Store, cfg Config, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if rem == nil {
		rem = remote.Disabled{}
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = defaultRemoteTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	c := &Coordinator{
		local:  local,
		remote: rem,
		cfg:    cfg,
		log:    log,
		seq:    worker.NewSequencer(),
		now:    time.Now,
		newID:  newUUID,
		subs:   make(map[int]func(Event)),
	}
	c.writers = map[Kind]*writer{
		KindClaims:    newWriter(remote.Claims, rem, cfg.WriteTimeout, log),
		KindClaimants: newWriter(remote.Claimants, rem, cfg.WriteTimeout, log),
	}
	return c
}

type fetchResult struct {
	items     []json.RawMessage
	reachable bool
}

// Start runs the startup protocol for both collections and returns once each is
// authoritative. The remote fetch is bounded by RemoteTimeout; a fetch that
// settles later is discarded.
func (c *Coordinator) Start(ctx context.Context) error {
	tok := c.seq.Next(loadKey)

	c.mu.Lock()
	c.claimsSt = collectionState{state: StateLoading}
	c.claimantSt = collectionState{state: StateLoading}
	c.mu.Unlock()
	c.emit(EventLoading, KindClaims)
	c.emit(EventLoading, KindClaimants)

	localClaims := decodeClaims(c.local.Load(cache.CollectionClaims), c.log)
	localClaimants := decodeClaimants(c.local.Load(cache.CollectionClaimants), c.log)

	c.mu.Lock()
	if len(localClaims) > 0 {
		c.claims = localClaims
		c.claimsSt.provisional = true
	}
	if len(localClaimants) > 0 {
		c.claimants = localClaimants
		c.claimantSt.provisional = true
	}
	c.mu.Unlock()
	if len(localClaims) > 0 {
		c.emit(EventProvisional, KindClaims)
	}
	if len(localClaimants) > 0 {
		c.emit(EventProvisional, KindClaimants)
	}

	var claimsRes, claimantsRes fetchResult
	if c.remote.Configured() {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			claimsRes = c.fetch(gctx, remote.Claims)
			return nil
		})
		g.Go(func() error {
			claimantsRes = c.fetch(gctx, remote.Claimants)
			return nil
		})
		_ = g.Wait()
	} else {
		c.log.Warn("remote store not configured; using local cache",
			zap.String("backend", c.remote.Name()))
	}

	if !c.seq.IsCurrent(loadKey, tok) {
		c.log.Debug("discarding superseded load")
		return nil
	}

	c.mut.Lock()
	c.mu.Lock()
	push := c.adopt(claimsRes, claimantsRes, len(localClaims) > 0, len(localClaimants) > 0)
	demo := c.demo
	c.mu.Unlock()
	c.persist(push)
	c.mut.Unlock()

	metrics.SetDemoMode(demo)
	if demo {
		c.log.Warn("remote store unreachable and no local data; demo mode with seed data",
			zap.Int("claims", len(model.SeedClaims())))
	}
	c.emit(EventAuthoritative, KindClaims)
	c.emit(EventAuthoritative, KindClaimants)
	return ctx.Err()
}

// Reconnect re-runs the remote fetch. When the remote store answers, its state
// supersedes memory and demo mode ends.
func (c *Coordinator) Reconnect(ctx context.Context) bool {
	if !c.remote.Configured() {
		return false
	}
	tok := c.seq.Next(loadKey)

	var claimsRes, claimantsRes fetchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		claimsRes = c.fetch(gctx, remote.Claims)
		return nil
	})
	g.Go(func() error {
		claimantsRes = c.fetch(gctx, remote.Claimants)
		return nil
	})
	_ = g.Wait()

	if !claimsRes.reachable || !c.seq.IsCurrent(loadKey, tok) {
		return false
	}

	c.mut.Lock()
	c.mu.Lock()
	haveClaims := len(c.claims) > 0 && !c.seeded
	haveClaimants := len(c.claimants) > 0 && !c.seeded
	push := c.adopt(claimsRes, claimantsRes, haveClaims, haveClaimants)
	c.mu.Unlock()
	c.persist(push)
	c.mut.Unlock()

	metrics.SetDemoMode(false)
	c.log.Info("remote store reachable; state adopted", zap.String("backend", c.remote.Name()))
	c.emit(EventAuthoritative, KindClaims)
	c.emit(EventAuthoritative, KindClaimants)
	return true
}

// pushPlan says which tiers to rewrite after an adoption
type pushPlan struct {
	cache  map[Kind]bool
	remote map[Kind]bool
}

// adopt applies fetch results to memory; caller holds c.mu. localClaims and
// localClaimants report whether memory holds real (non-seed) data worth keeping
// when the remote store is reachable but empty. Seed data only survives while
// the remote store is unreachable, so it never reaches a real remote store.
func (c *Coordinator) adopt(claimsRes, claimantsRes fetchResult, localClaims, localClaimants bool) pushPlan {
	plan := pushPlan{cache: map[Kind]bool{}, remote: map[Kind]bool{}}

	remoteClaims := decodeClaims(claimsRes.items, c.log)
	remoteClaimants := decodeClaimants(claimantsRes.items, c.log)
	wasSeeded := c.seeded

	switch {
	case claimsRes.reachable && len(remoteClaims) > 0:
		sortNewestFirst(remoteClaims)
		c.claims = remoteClaims
		c.claimsSt.source = SourceRemote
		c.demo, c.seeded = false, false
		plan.cache[KindClaims] = true
	case claimsRes.reachable && localClaims:
		c.claimsSt.source = SourceLocalOrSeed
		c.demo, c.seeded = false, false
		plan.remote[KindClaims] = true
	case claimsRes.reachable:
		c.claims = []model.Claim{}
		c.claimsSt.source = SourceRemote
		c.demo, c.seeded = false, false
		plan.cache[KindClaims] = true
	case localClaims:
		c.claimsSt.source = SourceLocalOrSeed
	default:
		c.useSeed()
		c.demo = true
	}

	if wasSeeded && !c.seeded {
		// seed claimants must not outlive the seed claims they belong to
		c.claimants = nil
		localClaimants = false
	}

	// seed claims reference seed claimants, so the two are kept together
	switch {
	case c.seeded:
	case claimantsRes.reachable && len(remoteClaimants) > 0:
		c.claimants = remoteClaimants
		c.claimantSt.source = SourceRemote
		plan.cache[KindClaimants] = true
	case claimantsRes.reachable && localClaimants:
		c.claimantSt.source = SourceLocalOrSeed
		plan.remote[KindClaimants] = true
	case claimantsRes.reachable:
		c.claimants = []model.Claimant{}
		c.claimantSt.source = SourceRemote
		plan.cache[KindClaimants] = true
	case localClaimants:
		c.claimantSt.source = SourceLocalOrSeed
	default:
		c.claimants = []model.Claimant{}
		c.claimantSt.source = SourceLocalOrSeed
	}

	if !c.seeded {
		// claimants adopted from one tier may carry stats computed against another
		c.refreshClaimants()
	}

	c.claimsSt.state, c.claimsSt.provisional = StateAuthoritative, false
	c.claimantSt.state, c.claimantSt.provisional = StateAuthoritative, false
	return plan
}

func (c *Coordinator) useSeed() {
	c.claims = model.SeedClaims()
	c.claimants = model.SeedClaimants()
	c.claimsSt.source = SourceLocalOrSeed
	c.claimantSt.source = SourceLocalOrSeed
	c.seeded = true
}

// persist executes an adoption plan; caller holds c.mut
func (c *Coordinator) persist(plan pushPlan) {
	for _, kind := range []Kind{KindClaims, KindClaimants} {
		if plan.cache[kind] {
			c.saveLocal(kind)
		}
		if plan.remote[kind] {
			c.scheduleRemote(kind)
		}
	}
}

// fetch races FetchAll against RemoteTimeout; a late answer is dropped
func (c *Coordinator) fetch(ctx context.Context, coll remote.Collection) fetchResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RemoteTimeout)
	defer cancel()

	ch := make(chan fetchResult, 1)
	go func() {
		items := c.remote.FetchAll(ctx, coll)
		ch <- fetchResult{items: items, reachable: c.remote.Reachable(coll)}
	}()

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		c.log.Warn("remote fetch exceeded soft timeout",
			zap.String("collection", string(coll)),
			zap.Duration("timeout", c.cfg.RemoteTimeout))
		return fetchResult{}
	}
}

// Subscribe registers fn for every event and returns a function that removes it.
// fn runs synchronously and must not call back into mutations.
func (c *Coordinator) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Coordinator) emit(t EventType, kind Kind) {
	c.mu.RLock()
	st, n := c.claimsSt, len(c.claims)
	if kind == KindClaimants {
		st, n = c.claimantSt, len(c.claimants)
	}
	ev := Event{Type: t, Collection: kind, State: st.state, Source: st.source, Count: n, DemoMode: c.demo}
	c.mu.RUnlock()

	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, fn := range c.subs {
		fn(ev)
	}
}

// Status reports the current state of both collections
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Claims:           c.claimsSt.status(len(c.claims)),
		Claimants:        c.claimantSt.status(len(c.claimants)),
		DemoMode:         c.demo,
		Seeded:           c.seeded,
		RemoteBackend:    c.remote.Name(),
		RemoteConfigured: c.remote.Configured(),
	}
}

// DemoMode reports whether outbound writes are suppressed
func (c *Coordinator) DemoMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.demo
}

// Flush waits until every scheduled remote write has been attempted
func (c *Coordinator) Flush() {
	for _, w := range c.writers {
		w.flush()
	}
}

// Close flushes pending remote writes and releases the remote store
func (c *Coordinator) Close() error {
	c.mut.Lock()
	if c.closed {
		c.mut.Unlock()
		return nil
	}
	c.closed = true
	c.mut.Unlock()

	for _, w := range c.writers {
		w.close()
	}
	return c.remote.Close()
}

func decodeClaims(raw []json.RawMessage, log *zap.Logger) []model.Claim {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Claim, 0, len(raw))
	for _, r := range raw {
		var cl model.Claim
		if err := json.Unmarshal(r, &cl); err != nil || cl.ID == "" {
			log.Warn("skipping malformed claim record", zap.Error(err))
			continue
		}
		out = append(out, cl)
	}
	return out
}

func decodeClaimants(raw []json.RawMessage, log *zap.Logger) []model.Claimant {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Claimant, 0, len(raw))
	for _, r := range raw {
		var cl model.Claimant
		if err := json.Unmarshal(r, &cl); err != nil || cl.ID == "" {
			log.Warn("skipping malformed claimant record", zap.Error(err))
			continue
		}
		out = append(out, cl)
	}
	return out
}
