package syncer

import "errors"

var (
	// ErrInvalidImport means an import payload was not a JSON array of claims
	ErrInvalidImport = errors.New("invalid import: expected a JSON array of claims")

	// ErrNotFound means no entity has the given id
	ErrNotFound = errors.New("not found")

	// ErrInvalidClaim rejects mutations that would put a malformed claim into storage
	ErrInvalidClaim = errors.New("invalid claim")
)

// State is the lifecycle of one collection
type State string

const (
	StateLoading       State = "loading"
	StateAuthoritative State = "authoritative"
	StateMutating      State = "mutating"
)

// Source says which tier the in-memory collection was adopted from
type Source string

const (
	SourceNone        Source = ""
	SourceRemote      Source = "remote"
	SourceLocalOrSeed Source = "local_or_seed"
)

// Kind of collection
type Kind string

const (
	KindClaims    Kind = "claims"
	KindClaimants Kind = "claimants"
)

// EventType classifies a state change
type EventType string

const (
	EventLoading       EventType = "loading"
	EventProvisional   EventType = "provisional"
	EventAuthoritative EventType = "authoritative"
	EventMutating      EventType = "mutating"
	EventMutated       EventType = "mutated"
)

// Event is delivered to subscribers after each state change
type Event struct {
	Type       EventType `json:"type"`
	Collection Kind      `json:"collection"`
	State      State     `json:"state"`
	Source     Source    `json:"source"`
	Count      int       `json:"count"`
	DemoMode   bool      `json:"demoMode"`
}

// CollectionStatus is the observable state of one collection
type CollectionStatus struct {
	State       State  `json:"state"`
	Source      Source `json:"source"`
	Provisional bool   `json:"provisional"`
	Count       int    `json:"count"`
}

// Status is a point-in-time view of the coordinator
type Status struct {
	Claims           CollectionStatus `json:"claims"`
	Claimants        CollectionStatus `json:"claimants"`
	DemoMode         bool             `json:"demoMode"`
	Seeded           bool             `json:"seeded"`
	RemoteBackend    string           `json:"remoteBackend"`
	RemoteConfigured bool             `json:"remoteConfigured"`
}

type collectionState struct {
	state       State
	source      Source
	provisional bool
}

func (s collectionState) status(count int) CollectionStatus {
	return CollectionStatus{State: s.state, Source: s.source, Provisional: s.provisional, Count: count}
}
