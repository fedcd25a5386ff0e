package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/heuristic"
	"github.com/ppiankov/pap/internal/model"
)

var (
	// ErrManifestoNotFound means no document or promise with that id exists
	ErrManifestoNotFound = errors.New("manifesto not found")

	// ErrInvalidManifesto means the upload or update is not acceptable
	ErrInvalidManifesto = errors.New("invalid manifesto")
)

// ManifestoUpdate changes the tracking state of one promise. Nil fields are kept.
type ManifestoUpdate struct {
	Status      *string `json:"status,omitempty"`
	Progress    *int    `json:"progressPercentage,omitempty"`
	EvidenceURL *string `json:"evidenceUrl,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ManifestoSummary is a document listing entry
type ManifestoSummary struct {
	model.ManifestoDocument
	Completion int `json:"completion"`
}

// ManifestoTracker keeps uploaded manifestos and their promise tracking state
type ManifestoTracker struct {
	mu    sync.RWMutex
	docs  []model.ManifestoDocument
	store *cache.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewManifestoTracker loads previously saved documents from store when given.
// Manifestos live in their own local collection and are never synced remotely.
func NewManifestoTracker(store *cache.Store, log *zap.Logger) *ManifestoTracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &ManifestoTracker{store: store, now: time.Now, log: log}
	if store == nil {
		return t
	}
	for _, raw := range store.Load(cache.CollectionManifestos) {
		var doc model.ManifestoDocument
		if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
			log.Warn("skipping malformed manifesto record", zap.Error(err))
			continue
		}
		t.docs = append(t.docs, doc)
	}
	return t
}

// Add extracts promises from text and stores the document, newest first
func (t *ManifestoTracker) Add(party string, year int, text string) (model.ManifestoDocument, error) {
	party = strings.TrimSpace(party)
	text = strings.TrimSpace(text)
	if party == "" {
		return model.ManifestoDocument{}, fmt.Errorf("party is required: %w", ErrInvalidManifesto)
	}
	if text == "" {
		return model.ManifestoDocument{}, fmt.Errorf("text is required: %w", ErrInvalidManifesto)
	}
	if year == 0 {
		year = t.now().Year()
	}

	doc := model.ManifestoDocument{
		ID:              "mf-" + uuid.NewString(),
		Party:           party,
		Year:            year,
		UploadDate:      t.now().Format(model.DateLayout),
		ExtractedClaims: heuristic.ExtractManifestoClaims(text),
		Content:         text,
	}
	if doc.ExtractedClaims == nil {
		doc.ExtractedClaims = []model.ManifestoClaim{}
	}

	t.mu.Lock()
	t.docs = append([]model.ManifestoDocument{doc}, t.docs...)
	t.persistLocked()
	t.mu.Unlock()

	t.log.Info("manifesto added",
		zap.String("party", party),
		zap.Int("year", year),
		zap.Int("promises", len(doc.ExtractedClaims)),
	)
	return doc, nil
}

// List returns every document with its completion percentage
func (t *ManifestoTracker) List() []ManifestoSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]ManifestoSummary, 0, len(t.docs))
	for _, d := range t.docs {
		out = append(out, ManifestoSummary{ManifestoDocument: d, Completion: d.Completion()})
	}
	return out
}

// Get returns one document
func (t *ManifestoTracker) Get(id string) (model.ManifestoDocument, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, d := range t.docs {
		if d.ID == id {
			return d, true
		}
	}
	return model.ManifestoDocument{}, false
}

// UpdateClaim applies u to one promise of one document
func (t *ManifestoTracker) UpdateClaim(docID, claimID string, u ManifestoUpdate) (model.ManifestoClaim, error) {
	var status model.ManifestoStatus
	if u.Status != nil {
		s, ok := model.ParseManifestoStatus(*u.Status)
		if !ok {
			return model.ManifestoClaim{}, fmt.Errorf("status %q: %w", *u.Status, ErrInvalidManifesto)
		}
		status = s
	}
	if u.Progress != nil && (*u.Progress < 0 || *u.Progress > 100) {
		return model.ManifestoClaim{}, fmt.Errorf("progress %d outside 0-100: %w", *u.Progress, ErrInvalidManifesto)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for di := range t.docs {
		if t.docs[di].ID != docID {
			continue
		}
		claims := t.docs[di].ExtractedClaims
		for ci := range claims {
			if claims[ci].ID != claimID {
				continue
			}
			c := &claims[ci]
			if u.Status != nil {
				c.Status = status
				if status == model.ManifestoFulfilled && u.Progress == nil {
					c.ProgressPercentage = 100
				}
			}
			if u.Progress != nil {
				c.ProgressPercentage = *u.Progress
			}
			if u.EvidenceURL != nil {
				c.EvidenceURL = strings.TrimSpace(*u.EvidenceURL)
			}
			if u.Notes != nil {
				c.Notes = *u.Notes
			}
			t.persistLocked()
			return *c, nil
		}
		return model.ManifestoClaim{}, fmt.Errorf("promise %s: %w", claimID, ErrManifestoNotFound)
	}
	return model.ManifestoClaim{}, fmt.Errorf("document %s: %w", docID, ErrManifestoNotFound)
}

func (t *ManifestoTracker) persistLocked() {
	if t.store == nil {
		return
	}
	if !t.store.Save(cache.CollectionManifestos, t.docs) {
		t.log.Warn("manifestos kept in memory only")
	}
}
