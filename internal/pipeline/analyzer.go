package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/heuristic"
	"github.com/ppiankov/pap/internal/llm"
	"github.com/ppiankov/pap/internal/metrics"
	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/worker"
)

const (
	defaultAnalyzeTimeout = 12 * time.Second
	aiLimitKey            = "ai"
)

// Fallback reasons recorded in metrics and logs
const (
	reasonDisabled    = "disabled"
	reasonTimeout     = "timeout"
	reasonError       = "error"
	reasonMalformed   = "malformed"
	reasonRateLimited = "rate_limited"
)

// Analyzer scores claims with the AI provider and falls back to the heuristic
// analyzer whenever the provider is absent, slow, failing or answers off-contract.
type Analyzer struct {
	provider llm.Provider
	timeout  time.Duration
	limiter  *worker.Limiter
	log      *zap.Logger
}

// NewAnalyzer creates an analyzer; provider and limiter may be nil
func NewAnalyzer(provider llm.Provider, timeout time.Duration, limiter *worker.Limiter, log *zap.Logger) *Analyzer {
	if timeout <= 0 {
		timeout = defaultAnalyzeTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{provider: provider, timeout: timeout, limiter: limiter, log: log}
}

// HasProvider reports whether an AI provider is wired in
func (a *Analyzer) HasProvider() bool {
	return a.provider != nil
}

type aiOutcome struct {
	resp *llm.AnalyzeResponse
	err  error
}

// Analyze never fails: every provider problem degrades to the heuristic result
func (a *Analyzer) Analyze(ctx context.Context, text, lang string) model.Analysis {
	if a.provider == nil {
		return a.fallback(text, reasonDisabled)
	}
	if a.limiter != nil && !a.limiter.Allow(aiLimitKey) {
		return a.fallback(text, reasonRateLimited)
	}

	// The provider call runs detached so a late answer lands in the buffered
	// channel and is dropped.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	done := make(chan aiOutcome, 1)
	go func() {
		defer cancel()
		resp, err := a.provider.Analyze(callCtx, llm.AnalyzeRequest{ClaimText: text, Language: lang})
		done <- aiOutcome{resp: resp, err: err}
	}()

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		switch {
		case errors.Is(out.err, llm.ErrMalformedResponse):
			a.log.Warn("ai answer malformed; using heuristic", zap.Error(out.err))
			return a.fallback(text, reasonMalformed)
		case out.err != nil:
			a.log.Warn("ai analysis failed; using heuristic", zap.String("provider", a.provider.Name()), zap.Error(out.err))
			return a.fallback(text, reasonError)
		case out.resp == nil:
			return a.fallback(text, reasonMalformed)
		}
		metrics.ObserveAnalysis(model.AnalysisSourceAI, "")
		return fromAI(text, out.resp)

	case <-timer.C:
		a.log.Warn("ai analysis timed out; using heuristic", zap.Duration("timeout", a.timeout))
		return a.fallback(text, reasonTimeout)

	case <-ctx.Done():
		return a.fallback(text, reasonTimeout)
	}
}

func (a *Analyzer) fallback(text, reason string) model.Analysis {
	metrics.ObserveAnalysis(model.AnalysisSourceHeuristic, reason)
	if reason == reasonDisabled {
		a.log.Debug("ai provider not configured; heuristic analysis")
	}
	return Heuristic(text)
}

// Heuristic is the deterministic local analysis
func Heuristic(text string) model.Analysis {
	score := heuristic.Vagueness(text)
	return model.Analysis{
		VaguenessIndex:      score,
		AnalysisParams:      heuristic.VerifiabilityParams(text),
		VerificationVectors: heuristic.SimulateVerdicts(text, score),
		WebEvidenceLinks:    []model.WebEvidenceLink{},
		Explanation:         heuristic.ExplainVagueness(text, score),
		Source:              model.AnalysisSourceHeuristic,
	}
}

func fromAI(text string, r *llm.AnalyzeResponse) model.Analysis {
	score := model.ClampVagueness(r.VaguenessScore)
	return model.Analysis{
		VaguenessIndex:      score,
		AnalysisParams:      r.AnalysisParams,
		VerificationVectors: r.VerificationVectors,
		WebEvidenceLinks:    r.WebEvidence,
		Explanation:         heuristic.ExplainVagueness(text, score),
		BiasReport:          r.BiasReport,
		Source:              model.AnalysisSourceAI,
		Model:               r.Model,
	}
}
