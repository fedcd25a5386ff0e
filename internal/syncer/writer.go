package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/remote"
)

// writer pushes full-collection snapshots to the remote store in the background.
// It holds only the latest snapshot: a newer submit replaces one not yet sent,
// and a failed write is never retried on its own.
type writer struct {
	coll    remote.Collection
	store   remote.Store
	timeout time.Duration
	log     *zap.Logger

	mu         sync.Mutex
	idle       *sync.Cond
	pending    []remote.Entity
	hasPending bool
	busy       bool
	closed     bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newWriter(coll remote.Collection, store remote.Store, timeout time.Duration, log *zap.Logger) *writer {
	w := &writer{
		coll:    coll,
		store:   store,
		timeout: timeout,
		log:     log,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writer) submit(items []remote.Entity) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = items
	w.hasPending = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if !w.hasPending {
			w.busy = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		items := w.pending
		w.pending = nil
		w.hasPending = false
		w.busy = true
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		ok := w.store.ReplaceAll(ctx, w.coll, items)
		cancel()

		if ok {
			w.log.Debug("remote write complete", zap.String("collection", string(w.coll)), zap.Int("count", len(items)))
		} else {
			w.log.Warn("remote write failed; next mutation resends full state", zap.String("collection", string(w.coll)))
		}
	}
}

// flush blocks until every submitted snapshot has been attempted
func (w *writer) flush() {
	w.mu.Lock()
	for w.busy || w.hasPending {
		w.idle.Wait()
	}
	w.mu.Unlock()
}

// close attempts the pending snapshot and stops the goroutine
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.done
}
