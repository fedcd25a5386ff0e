package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/metrics"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/remote"
)

// newUUID returns a time-ordered id so ids sort by creation
func newUUID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return prefix + "-" + uuid.NewString()
	}
	return prefix + "-" + id.String()
}

// sortNewestFirst orders claims by dateMade, then id, both descending.
// Remote stores hand rows back keyed by id, which loses display order.
func sortNewestFirst(claims []model.Claim) {
	sort.SliceStable(claims, func(i, j int) bool {
		if claims[i].DateMade != claims[j].DateMade {
			return claims[i].DateMade > claims[j].DateMade
		}
		return claims[i].ID > claims[j].ID
	})
}

// Claims returns a copy of the claim collection in display order
func (c *Coordinator) Claims() []model.Claim {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Claim, len(c.claims))
	for i, cl := range c.claims {
		out[i] = cl.Clone()
	}
	return out
}

// Claim returns one claim by id
func (c *Coordinator) Claim(id string) (model.Claim, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.claimIndex(id); i >= 0 {
		return c.claims[i].Clone(), true
	}
	return model.Claim{}, false
}

// Claimants returns a copy of the claimant collection
func (c *Coordinator) Claimants() []model.Claimant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Claimant, len(c.claimants))
	for i, cl := range c.claimants {
		out[i] = cl.Clone()
	}
	return out
}

// Claimant returns one claimant by id together with stats derived from the claims
func (c *Coordinator) Claimant(id string) (model.Claimant, model.ClaimantStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.claimantIndex(id); i >= 0 {
		return c.claimants[i].Clone(), model.ComputeClaimantStats(id, c.claims), true
	}
	return model.Claimant{}, model.ClaimantStats{}, false
}

// SaveClaim creates a claim or edits an existing one. Editing appends exactly one
// snapshot of the pre-edit state to history and keeps id, claimant and dateMade.
// Creating resolves the claimant by case-insensitive name, creating it if unknown.
func (c *Coordinator) SaveClaim(in model.ClaimInput) (model.Claim, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.ClaimantName = strings.TrimSpace(in.ClaimantName)
	if in.Text == "" {
		return model.Claim{}, fmt.Errorf("%w: text is required", ErrInvalidClaim)
	}

	var saved model.Claim
	err := c.mutate(func() ([]Kind, error) {
		if i := c.claimIndex(in.ID); in.ID != "" && i >= 0 {
			saved = c.editClaim(i, in)
			c.claims[i] = saved
			c.refreshClaimants()
			return []Kind{KindClaims, KindClaimants}, nil
		}

		claimantID, created, err := c.resolveClaimant(in)
		if err != nil {
			return nil, err
		}
		saved = c.createClaim(in, claimantID)
		c.claims = append([]model.Claim{saved}, c.claims...)
		c.refreshClaimants()
		if created {
			c.log.Info("claimant created", zap.String("id", claimantID), zap.String("name", in.ClaimantName))
		}
		return []Kind{KindClaims, KindClaimants}, nil
	})
	return saved.Clone(), err
}

func (c *Coordinator) editClaim(i int, in model.ClaimInput) model.Claim {
	prev := c.claims[i]
	next := prev.Clone()

	next.Text = in.Text
	next.History = append(next.History, prev.Snapshot(c.now()))
	if in.TargetDate != "" {
		next.TargetDate = in.TargetDate
	}
	if in.Category != "" {
		next.Category = in.Category
	}
	if in.Status != "" {
		next.Status = in.Status
	}
	if in.VaguenessIndex != 0 {
		next.VaguenessIndex = model.ClampVagueness(in.VaguenessIndex)
	}
	if in.Sources != nil {
		next.Sources = slices.Clone(in.Sources)
	}
	if in.AnalysisParams != nil {
		next.AnalysisParams = slices.Clone(in.AnalysisParams)
	}
	if in.VerificationVectors != nil {
		next.VerificationVectors = slices.Clone(in.VerificationVectors)
	}
	if in.WebEvidenceLinks != nil {
		next.WebEvidenceLinks = slices.Clone(in.WebEvidenceLinks)
	}
	next.TopicGroup = strings.TrimSpace(in.TopicGroup)
	return next
}

func (c *Coordinator) createClaim(in model.ClaimInput, claimantID string) model.Claim {
	cl := model.Claim{
		ID:                  c.newID("new"),
		ClaimantID:          claimantID,
		Text:                in.Text,
		DateMade:            c.now().Format(model.DateLayout),
		TargetDate:          in.TargetDate,
		Category:            in.Category,
		Status:              in.Status,
		Sources:             slices.Clone(in.Sources),
		VaguenessIndex:      in.VaguenessIndex,
		AnalysisParams:      slices.Clone(in.AnalysisParams),
		VerificationVectors: slices.Clone(in.VerificationVectors),
		WebEvidenceLinks:    slices.Clone(in.WebEvidenceLinks),
		TopicGroup:          strings.TrimSpace(in.TopicGroup),
	}
	if cl.Category == "" {
		cl.Category = model.CategoryPolitics
	}
	cl.Normalize()
	return cl
}

// resolveClaimant finds or creates the owning claimant; caller holds c.mu
func (c *Coordinator) resolveClaimant(in model.ClaimInput) (string, bool, error) {
	if in.ClaimantName != "" {
		for _, cl := range c.claimants {
			if model.SameName(cl.Name, in.ClaimantName) {
				return cl.ID, false, nil
			}
		}

		category := in.Category
		if category == "" {
			category = model.CategoryPolitics
		}
		claimant := model.Claimant{
			ID:             c.newID("cl"),
			Name:           in.ClaimantName,
			Bio:            model.DefaultClaimantBio,
			Affiliation:    "Independent",
			PhotoURL:       "https://ui-avatars.com/api/?name=" + url.QueryEscape(in.ClaimantName) + "&background=random",
			VaguenessScore: float64(model.ClampVagueness(in.VaguenessIndex)),
			TotalClaims:    1,
			Tags:           []string{string(category)},
		}
		c.claimants = append(c.claimants, claimant)
		return claimant.ID, true, nil
	}

	if in.ClaimantID != "" && c.claimantIndex(in.ClaimantID) >= 0 {
		return in.ClaimantID, false, nil
	}
	return "", false, fmt.Errorf("%w: claimant name or known claimant id is required", ErrInvalidClaim)
}

// ApplyAnalysis stores a background analysis on a claim without touching history.
// Human-added checklist items survive.
func (c *Coordinator) ApplyAnalysis(id string, a model.Analysis) (model.Claim, error) {
	var saved model.Claim
	err := c.mutate(func() ([]Kind, error) {
		i := c.claimIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("claim %s: %w", id, ErrNotFound)
		}
		cl := c.claims[i].Clone()
		cl.VaguenessIndex = model.ClampVagueness(a.VaguenessIndex)
		cl.AnalysisParams = model.MergeAnalysisParams(cl.AnalysisParams, a.AnalysisParams)
		cl.VerificationVectors = append([]model.VerificationVector{}, a.VerificationVectors...)
		if len(a.WebEvidenceLinks) > 0 {
			cl.WebEvidenceLinks = slices.Clone(a.WebEvidenceLinks)
		}
		c.claims[i] = cl
		saved = cl
		c.refreshClaimants()
		return []Kind{KindClaims, KindClaimants}, nil
	})
	return saved.Clone(), err
}

// SetAnalysisParams replaces the checklist, including toggled and human-added items
func (c *Coordinator) SetAnalysisParams(id string, params []model.AnalysisParam) (model.Claim, error) {
	var saved model.Claim
	err := c.mutate(func() ([]Kind, error) {
		i := c.claimIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("claim %s: %w", id, ErrNotFound)
		}
		for _, p := range params {
			if strings.TrimSpace(p.Label) == "" {
				return nil, fmt.Errorf("%w: checklist label is required", ErrInvalidClaim)
			}
		}
		c.claims[i].AnalysisParams = append([]model.AnalysisParam{}, params...)
		saved = c.claims[i]
		return []Kind{KindClaims}, nil
	})
	return saved.Clone(), err
}

// DeleteClaim removes a claim
func (c *Coordinator) DeleteClaim(id string) error {
	return c.mutate(func() ([]Kind, error) {
		i := c.claimIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("claim %s: %w", id, ErrNotFound)
		}
		c.claims = append(c.claims[:i:i], c.claims[i+1:]...)
		c.refreshClaimants()
		return []Kind{KindClaims, KindClaimants}, nil
	})
}

// UpdateClaimant applies a profile patch, typically from background enrichment
func (c *Coordinator) UpdateClaimant(p model.ClaimantPatch) (model.Claimant, error) {
	var saved model.Claimant
	err := c.mutate(func() ([]Kind, error) {
		i := c.claimantIndex(p.ID)
		if i < 0 {
			return nil, fmt.Errorf("claimant %s: %w", p.ID, ErrNotFound)
		}
		cl := c.claimants[i].Clone()
		if p.Bio != nil {
			cl.Bio = strings.TrimSpace(*p.Bio)
		}
		if p.Affiliation != nil {
			cl.Affiliation = strings.TrimSpace(*p.Affiliation)
		}
		if p.PhotoURL != nil {
			cl.PhotoURL = strings.TrimSpace(*p.PhotoURL)
		}
		if p.Tags != nil {
			cl.Tags = append([]string{}, p.Tags...)
		}
		c.claimants[i] = cl
		saved = cl
		return []Kind{KindClaimants}, nil
	})
	return saved.Clone(), err
}

// ImportClaims replaces the claim collection with a JSON array of claims.
// Anything else yields ErrInvalidImport and leaves state untouched.
func (c *Coordinator) ImportClaims(data []byte) (int, error) {
	claims, err := parseImport(data)
	if err != nil {
		return 0, err
	}

	err = c.mutate(func() ([]Kind, error) {
		c.claims = claims
		c.refreshClaimants()
		return []Kind{KindClaims, KindClaimants}, nil
	})
	if err != nil {
		return 0, err
	}
	c.log.Info("claims imported", zap.Int("count", len(claims)))
	return len(claims), nil
}

func parseImport(data []byte) ([]model.Claim, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidImport
	}

	var claims []model.Claim
	if err := json.Unmarshal(trimmed, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	seen := make(map[string]bool, len(claims))
	for i := range claims {
		id := claims[i].ID
		switch {
		case id == "":
			return nil, fmt.Errorf("%w: claim %d has no id", ErrInvalidImport, i)
		case seen[id]:
			return nil, fmt.Errorf("%w: duplicate claim id %s", ErrInvalidImport, id)
		case strings.TrimSpace(claims[i].Text) == "":
			return nil, fmt.Errorf("%w: claim %s has no text", ErrInvalidImport, id)
		}
		seen[id] = true
		claims[i].Normalize()
	}
	return claims, nil
}

// ExportClaims renders the claim collection in the bulk import format
func (c *Coordinator) ExportClaims() ([]byte, error) {
	claims := c.Claims()
	for i := range claims {
		claims[i].Normalize()
	}
	return json.MarshalIndent(claims, "", "  ")
}

// mutate runs apply under the state lock, then writes the touched collections
// through to the local cache and schedules their remote write. In demo mode
// both outbound tiers are skipped.
func (c *Coordinator) mutate(apply func() ([]Kind, error)) error {
	c.mut.Lock()
	defer c.mut.Unlock()

	c.setState(StateMutating)
	c.emit(EventMutating, KindClaims)

	c.mu.Lock()
	touched, err := apply()
	demo := c.demo || c.seeded
	c.mu.Unlock()

	if err == nil {
		if demo {
			c.log.Debug("demo mode: mutation kept in memory only")
		} else {
			for _, kind := range touched {
				c.saveLocal(kind)
				c.scheduleRemote(kind)
			}
		}
	}

	c.setState(StateAuthoritative)
	if err != nil {
		return err
	}
	for _, kind := range touched {
		c.emit(EventMutated, kind)
	}
	return nil
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.claimsSt.state = s
	c.claimantSt.state = s
	c.mu.Unlock()
}

// saveLocal writes one collection to the cache; failures never block memory state
func (c *Coordinator) saveLocal(kind Kind) {
	c.mu.RLock()
	var items interface{}
	coll := cache.CollectionClaims
	if kind == KindClaims {
		items = append([]model.Claim{}, c.claims...)
	} else {
		coll = cache.CollectionClaimants
		items = append([]model.Claimant{}, c.claimants...)
	}
	c.mu.RUnlock()

	ok := c.local.Save(coll, items)
	metrics.ObserveCacheWrite(string(coll), ok)
}

// scheduleRemote hands the latest full snapshot to the collection's writer
func (c *Coordinator) scheduleRemote(kind Kind) {
	if !c.remote.Configured() {
		return
	}

	c.mu.RLock()
	var items []remote.Entity
	if kind == KindClaims {
		items = make([]remote.Entity, 0, len(c.claims))
		for _, cl := range c.claims {
			items = append(items, cl.Clone())
		}
	} else {
		items = make([]remote.Entity, 0, len(c.claimants))
		for _, cl := range c.claimants {
			items = append(items, cl.Clone())
		}
	}
	c.mu.RUnlock()

	c.writers[kind].submit(items)
}

// refreshClaimants rewrites cached claimant stats from the claim collection; caller holds c.mu
func (c *Coordinator) refreshClaimants() {
	for i := range c.claimants {
		c.claimants[i] = model.RefreshClaimant(c.claimants[i], c.claims)
	}
}

func (c *Coordinator) claimIndex(id string) int {
	for i := range c.claims {
		if c.claims[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Coordinator) claimantIndex(id string) int {
	for i := range c.claimants {
		if c.claimants[i].ID == id {
			return i
		}
	}
	return -1
}
