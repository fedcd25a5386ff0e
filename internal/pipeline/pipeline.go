package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/llm"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/syncer"
	"github.com/ppiankov/pap/internal/util"
	"github.com/ppiankov/pap/internal/worker"
)

// Pipeline bundles the analysis, enrichment and discovery services around one coordinator
type Pipeline struct {
	Analyzer   *Analyzer
	Enricher   *Enricher
	Discoverer *Discoverer
	Manifestos *ManifestoTracker

	provider llm.Provider
}

// New wires the services from configuration. An AI provider that fails to
// initialize is logged and left out; every service then runs heuristic-only.
func New(ctx context.Context, cfg *model.Config, coord *syncer.Coordinator, manifestoStore *cache.Store, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(cfg.AI), log)
	if err != nil {
		log.Warn("ai provider unavailable; heuristic analysis only", zap.String("provider", cfg.AI.Provider), zap.Error(err))
		provider = nil
	}

	rpm := cfg.AI.RequestsPerMinute
	if rpm <= 0 {
		rpm = 15
	}
	aiLimiter := worker.PerMinute(rpm)
	hostLimiter := worker.NewLimiter(1, 1)

	analyzer := NewAnalyzer(provider, cfg.AI.Timeout, aiLimiter, log)
	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)
	robots := util.NewRobotsChecker(util.NormalizeUserAgent(cfg.HTTP.UserAgent), 10*time.Second)

	return &Pipeline{
		Analyzer:   analyzer,
		Enricher:   NewEnricher(coord, analyzer, provider, aiLimiter, 2, log),
		Discoverer: NewDiscoverer(fetcher, robots, hostLimiter, provider, log),
		Manifestos: NewManifestoTracker(manifestoStore, log),
		provider:   provider,
	}
}

// ProviderName is the configured AI provider or "heuristic"
func (p *Pipeline) ProviderName() string {
	if p.provider == nil {
		return model.AnalysisSourceHeuristic
	}
	return p.provider.Name()
}

// Close releases the AI provider
func (p *Pipeline) Close() error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Close()
}
