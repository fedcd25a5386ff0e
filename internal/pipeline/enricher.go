package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/llm"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/syncer"
	"github.com/ppiankov/pap/internal/worker"
)

// ErrStale means a newer analysis of the same claim superseded this one
var ErrStale = errors.New("analysis superseded")

// Enricher runs background analysis and claimant lookups and hands the results
// to the coordinator
type Enricher struct {
	coord       *syncer.Coordinator
	analyzer    *Analyzer
	provider    llm.Provider
	limiter     *worker.Limiter
	concurrency int
	seq         *worker.Sequencer
	log         *zap.Logger
}

// NewEnricher wires the enricher; provider and limiter may be nil
func NewEnricher(coord *syncer.Coordinator, analyzer *Analyzer, provider llm.Provider, limiter *worker.Limiter, concurrency int, log *zap.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{
		coord:       coord,
		analyzer:    analyzer,
		provider:    provider,
		limiter:     limiter,
		concurrency: concurrency,
		seq:         worker.NewSequencer(),
		log:         log,
	}
}

// AnalyzeClaim analyzes a stored claim and applies the result. When another
// AnalyzeClaim or Cancel for the same id starts meanwhile, the result is
// discarded and ErrStale returned.
func (e *Enricher) AnalyzeClaim(ctx context.Context, id, lang string) (model.Claim, model.Analysis, error) {
	claim, ok := e.coord.Claim(id)
	if !ok {
		return model.Claim{}, model.Analysis{}, fmt.Errorf("claim %s: %w", id, syncer.ErrNotFound)
	}

	tok := e.seq.Next(id)
	analysis := e.analyzer.Analyze(ctx, claim.Text, lang)
	if !e.seq.IsCurrent(id, tok) {
		e.log.Debug("discarding stale analysis", zap.String("claim", id))
		return claim, analysis, ErrStale
	}

	updated, err := e.coord.ApplyAnalysis(id, analysis)
	if err != nil {
		return claim, analysis, err
	}
	return updated, analysis, nil
}

// Cancel drops any in-flight analysis result for id
func (e *Enricher) Cancel(id string) {
	e.seq.Invalidate(id)
}

// EnrichClaimants looks up public background for claimants through the AI
// provider. With no ids it picks claimants still carrying the placeholder bio.
// Without a provider nothing runs.
func (e *Enricher) EnrichClaimants(ctx context.Context, ids []string) []*worker.TaskResult {
	if e.provider == nil {
		e.log.Debug("claimant enrichment skipped: no ai provider")
		return nil
	}

	names := make(map[string]string)
	for _, c := range e.coord.Claimants() {
		names[c.ID] = c.Name
	}
	if len(ids) == 0 {
		for _, c := range e.coord.Claimants() {
			if c.Bio == "" || c.Bio == model.DefaultClaimantBio {
				ids = append(ids, c.ID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	batch := worker.NewBatch(e.concurrency, e.limiter, aiLimitKey)
	results := batch.Run(ctx, ids, func(ctx context.Context, id string) error {
		name, ok := names[id]
		if !ok {
			return fmt.Errorf("claimant %s: %w", id, syncer.ErrNotFound)
		}

		bg, err := e.provider.ClaimantBackground(ctx, name)
		if err != nil {
			return fmt.Errorf("background for %s: %w", name, err)
		}

		patch := model.ClaimantPatch{ID: id, Bio: &bg.Bio}
		if len(bg.Affiliations) > 0 {
			aff := strings.TrimSpace(bg.Affiliations[0])
			if aff != "" {
				patch.Affiliation = &aff
			}
		}
		_, err = e.coord.UpdateClaimant(patch)
		return err
	})

	for _, r := range results {
		if r.Error != nil {
			e.log.Warn("claimant enrichment failed", zap.String("claimant", r.Key), zap.Error(r.Error))
		}
	}
	return results
}
