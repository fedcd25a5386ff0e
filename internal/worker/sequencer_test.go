package worker

import "testing"

func TestSequencer_StaleTokens(t *testing.T) {
	s := NewSequencer()

	first := s.Next("claim-1")
	if !s.IsCurrent("claim-1", first) {
		t.Fatal("fresh token should be current")
	}

	second := s.Next("claim-1")
	if s.IsCurrent("claim-1", first) {
		t.Error("older token should be stale after Next")
	}
	if !s.IsCurrent("claim-1", second) {
		t.Error("newest token should be current")
	}

	other := s.Next("claim-2")
	if !s.IsCurrent("claim-1", second) || !s.IsCurrent("claim-2", other) {
		t.Error("keys must not interfere")
	}

	s.Invalidate("claim-2")
	if s.IsCurrent("claim-2", other) {
		t.Error("token should be stale after Invalidate")
	}
}

func TestSequencer_UnknownKey(t *testing.T) {
	if NewSequencer().IsCurrent("x", 1) {
		t.Error("no token was issued for x")
	}
}
