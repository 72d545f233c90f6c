package analyzer

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saishankar404/tidy/pkg/llm"
	"github.com/saishankar404/tidy/pkg/model"
)

// ErrCancelled is returned when a run is aborted by its context.
var ErrCancelled = errors.New("analysis cancelled")

// breakerThreshold is the number of consecutive transport failures that
// trips offline mode. Quota exhaustion trips it immediately.
const breakerThreshold = 2

// ProgressFunc receives transient progress updates during a run.
type ProgressFunc func(model.AnalysisProgress)

// RunResult is the aggregate output of one orchestrator run.
type RunResult struct {
	Results []model.AnalysisResult `json:"results"`
	Summary model.Summary          `json:"summary"`
}

// Orchestrator schedules the enabled analyzers in concurrency-limited
// batches and aggregates their results. Breaker state survives across
// runs on the same instance; it resets only via ResetOfflineMode.
type Orchestrator struct {
	gateway *llm.Gateway
	log     *zap.Logger

	mu                sync.Mutex
	cfg               model.AnalysisConfig
	offline           bool
	consecutiveErrors int
}

// NewOrchestrator builds an orchestrator around a gateway. A nil logger
// is replaced with a no-op one.
func NewOrchestrator(gateway *llm.Gateway, cfg model.AnalysisConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = model.DefaultAnalysisConfig().Timeout
	}
	if len(cfg.EnabledAnalyzers) == 0 {
		cfg.EnabledAnalyzers = model.AllAnalyzers()
	}
	return &Orchestrator{gateway: gateway, cfg: cfg, log: log}
}

// ConfigPatch updates a subset of the orchestrator configuration. Nil
// fields are left untouched.
type ConfigPatch struct {
	EnabledAnalyzers   []model.AnalyzerKind
	Timeout            *time.Duration
	MaxConcurrency     *int
	IncludeSuggestions *bool
}

// UpdateConfig applies a partial configuration change.
func (o *Orchestrator) UpdateConfig(patch ConfigPatch) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if patch.EnabledAnalyzers != nil {
		o.cfg.EnabledAnalyzers = patch.EnabledAnalyzers
	}
	if patch.Timeout != nil && *patch.Timeout > 0 {
		o.cfg.Timeout = *patch.Timeout
	}
	if patch.MaxConcurrency != nil && *patch.MaxConcurrency >= 1 {
		o.cfg.MaxConcurrency = *patch.MaxConcurrency
	}
	if patch.IncludeSuggestions != nil {
		o.cfg.IncludeSuggestions = *patch.IncludeSuggestions
	}
}

// Config returns a copy of the current configuration.
func (o *Orchestrator) Config() model.AnalysisConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

// IsOffline reports whether the circuit breaker is open.
func (o *Orchestrator) IsOffline() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.offline
}

// ResetOfflineMode closes the breaker and clears the failure counter.
func (o *Orchestrator) ResetOfflineMode() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.offline = false
	o.consecutiveErrors = 0
	o.log.Info("offline mode reset")
}

// Analyze runs the enabled analyzers against the context. It always
// returns one result per enabled analyzer unless the run is cancelled,
// in which case collected results are discarded and ErrCancelled is
// returned.
func (o *Orchestrator) Analyze(ctx context.Context, cctx model.CodeContext, onProgress ProgressFunc) (*RunResult, error) {
	start := time.Now()

	o.mu.Lock()
	enabled := filterEnabled(o.cfg.EnabledAnalyzers)
	timeout := o.cfg.Timeout
	batchSize := o.cfg.MaxConcurrency
	includeSuggestions := o.cfg.IncludeSuggestions
	o.mu.Unlock()

	total := len(enabled)
	results := make([]model.AnalysisResult, total)

	o.log.Info("analysis run starting",
		zap.String("file", cctx.FilePath),
		zap.Int("analyzers", total),
		zap.Int("batch_size", batchSize))

	done := 0
	for batchStart := 0; batchStart < total; batchStart += batchSize {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		batchEnd := batchStart + batchSize
		if batchEnd > total {
			batchEnd = total
		}

		var g errgroup.Group
		for i := batchStart; i < batchEnd; i++ {
			idx := i
			kind := enabled[idx]

			if onProgress != nil {
				onProgress(model.AnalysisProgress{
					Current:         idx + 1,
					Total:           total,
					CurrentAnalyzer: kind,
					Status:          model.StatusRunning,
				})
			}

			g.Go(func() error {
				if ctx.Err() != nil {
					return ErrCancelled
				}
				if o.IsOffline() {
					results[idx] = offlineResult(kind, cctx, time.Now())
					return nil
				}

				callCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				result, err := runAnalyzer(callCtx, kind, cctx, o.gateway, includeSuggestions)
				results[idx] = result
				if err != nil {
					if ctx.Err() != nil {
						return ErrCancelled
					}
					o.recordFailure(kind, err)
				} else {
					o.recordSuccess()
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, ErrCancelled
		}
		done = batchEnd

		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
	}

	if onProgress != nil {
		onProgress(model.AnalysisProgress{
			Current: done,
			Total:   total,
			Status:  model.StatusCompleted,
		})
	}

	run := &RunResult{
		Results: results,
		Summary: aggregate(results, start),
	}
	o.log.Info("analysis run finished",
		zap.Int("overall_score", run.Summary.OverallScore),
		zap.Int("issues", run.Summary.TotalIssues),
		zap.Duration("elapsed", time.Since(start)))
	return run, nil
}

// recordFailure classifies one analyzer error for the breaker. Quota
// exhaustion opens it immediately since the daily cap resets hours
// later; transport-level failures open it after a short streak; other
// errors are treated as unrelated and clear the streak.
func (o *Orchestrator) recordFailure(kind model.AnalyzerKind, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var provErr *llm.ProviderError
	switch {
	case errors.Is(err, llm.ErrQuotaExceeded):
		o.offline = true
		o.consecutiveErrors = 0
		o.log.Warn("quota exhausted, entering offline mode", zap.String("analyzer", string(kind)))

	case errors.Is(err, llm.ErrRateLimited), errors.As(err, &provErr):
		o.consecutiveErrors++
		o.log.Warn("analyzer transport failure",
			zap.String("analyzer", string(kind)),
			zap.Int("consecutive", o.consecutiveErrors),
			zap.Error(err))
		if o.consecutiveErrors >= breakerThreshold {
			o.offline = true
			o.log.Warn("failure threshold reached, entering offline mode")
		}

	default:
		// Timeouts, safety blocks and parse-level noise do not point at
		// provider exhaustion.
		o.consecutiveErrors = 0
		o.log.Debug("analyzer degraded", zap.String("analyzer", string(kind)), zap.Error(err))
	}
}

func (o *Orchestrator) recordSuccess() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.consecutiveErrors = 0
}

// filterEnabled intersects the requested analyzers with the known set,
// preserving canonical order and dropping duplicates.
func filterEnabled(requested []model.AnalyzerKind) []model.AnalyzerKind {
	want := make(map[model.AnalyzerKind]bool, len(requested))
	for _, kind := range requested {
		want[kind] = true
	}
	var out []model.AnalyzerKind
	for _, kind := range model.AllAnalyzers() {
		if want[kind] {
			out = append(out, kind)
		}
	}
	return out
}

func aggregate(results []model.AnalysisResult, start time.Time) model.Summary {
	summary := model.Summary{AnalysisTime: time.Since(start).Milliseconds()}
	if len(results) == 0 {
		return summary
	}

	scoreSum := 0
	for _, r := range results {
		scoreSum += r.Score
		summary.TotalIssues += len(r.Issues)
		summary.TotalSuggestions += len(r.Suggestions)
	}
	summary.OverallScore = int(math.Round(float64(scoreSum) / float64(len(results))))
	return summary
}
