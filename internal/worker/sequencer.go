package worker

import (
	"sync"
)

// Token identifies one load or analysis cycle
type Token uint64

// Sequencer hands out monotonically increasing tokens per key. A completion is
// applied only if its token is still the latest issued for that key.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]Token
	next   Token
}

// NewSequencer creates an empty sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]Token)}
}

// Next issues a new token for key, making every earlier token for key stale
func (s *Sequencer) Next(key string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest[key] = s.next
	return s.next
}

// IsCurrent reports whether tok is the latest token issued for key
func (s *Sequencer) IsCurrent(key string, tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == tok
}

// Invalidate makes every outstanding token for key stale
func (s *Sequencer) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest[key] = s.next
}
