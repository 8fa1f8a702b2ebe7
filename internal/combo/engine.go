// Package combo recommends budget-bounded bundles of discounted items.
//
// A request is processed synchronously: per-category candidate pools are
// sampled from the catalog, their cross-product is enumerated in shuffled
// order, and every seed is checked for redundancy, repaired into a complete
// meal when needed, topped up toward the budget and deduplicated before the
// survivors are ranked.
package combo

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// Discard reasons reported in Result.Discarded and metrics.
const (
	DiscardRedundant  = "redundant"
	DiscardOverBudget = "over_budget"
	DiscardRepair     = "repair"
	DiscardKeyword    = "keyword"
	DiscardDuplicate  = "duplicate"
)

// ctxCheckInterval is how many seeds are processed between context checks.
const ctxCheckInterval = 64

// RandSource creates the random generator for a request without a seed.
type RandSource func() *rand.Rand

var seedCounter atomic.Int64

// defaultRandSource mixes the clock with a counter so that requests started
// in the same nanosecond still diverge.
func defaultRandSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano() + seedCounter.Add(1)*7919)) //nolint:gosec // diversity, not security
}

// Engine produces combination recommendations. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	cfg     *Config
	groups  []RedundancyGroup
	tagger  *Tagger
	rand    RandSource
	metrics *MetricsRecorder
	logger  *zerolog.Logger
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Engine) {
		l := logger.With().Str("component", "combo_engine").Logger()
		e.logger = &l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRandSource sets the random generator factory used when a request
// carries no seed.
func WithRandSource(src RandSource) Option {
	return func(e *Engine) { e.rand = src }
}

// NewEngine creates an engine after validating cfg. A nil cfg uses Defaults.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	logger := log.With().Str("component", "combo_engine").Logger()
	groups := cfg.Groups()
	e := &Engine{
		cfg:    cfg,
		groups: groups,
		tagger: NewTagger(groups),
		rand:   defaultRandSource,
		logger: &logger,
		tracer: otel.Tracer("github.com/honeycombo/combo-service/internal/combo"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Valid re-checks the redundancy invariant on an accepted combination.
func (e *Engine) Valid(c *Combination) bool {
	return CheckRedundancy(e.groups, c.Names())
}

// Recommend returns up to ResultLimit ranked combinations drawn from items.
// Infeasible requests produce an empty Result with Reason set; only invalid
// requests and context cancellation return an error.
func (e *Engine) Recommend(ctx context.Context, items []catalog.Item, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	categories := req.categories()
	if len(categories) > e.cfg.MaxMembers {
		return nil, ErrInvalidRequest{Field: "categories", Reason: fmt.Sprintf("at most %d categories are supported", e.cfg.MaxMembers), Index: -1}
	}

	ctx, span := e.tracer.Start(ctx, "combo.Recommend", trace.WithAttributes(
		attribute.Int64("combo.budget", req.Budget),
		attribute.Int("combo.categories", len(categories)),
		attribute.Int("combo.catalog_size", len(items)),
	))
	defer span.End()

	start := time.Now()
	res, err := e.recommend(ctx, items, req, categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("combo.seeds_scanned", res.SeedsScanned),
		attribute.Int("combo.accepted", res.Accepted),
		attribute.Int("combo.returned", len(res.Combinations)),
	)
	if e.metrics != nil {
		e.metrics.RecordRecommendation(time.Since(start), res)
	}
	e.logger.Debug().
		Int64("budget", req.Budget).
		Int("categories", len(categories)).
		Int("seeds_scanned", res.SeedsScanned).
		Int("accepted", res.Accepted).
		Int("returned", len(res.Combinations)).
		Str("reason", res.Reason).
		Interface("discarded", res.Discarded).
		Dur("duration", time.Since(start)).
		Msg("Combination recommendation completed")
	return res, nil
}

func (e *Engine) recommend(ctx context.Context, items []catalog.Item, req *Request, categories []catalog.Category) (*Result, error) {
	res := &Result{Combinations: []*Combination{}, Discarded: make(map[string]int)}

	rng := e.rand()
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed)) //nolint:gosec // reproducible sampling
	}

	eligible := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if req.eligible(it) {
			eligible = append(eligible, it)
		}
	}
	indexed := e.tagger.index(eligible)

	target := float64(req.Budget) / float64(len(categories))
	pools := make([][]entry, len(categories))
	byCategory := make(map[catalog.Category][]entry, len(categories))
	for i, c := range categories {
		pool := e.samplePool(e.superset(indexed, c, req.Budget, target), rng)
		if len(pool) == 0 {
			res.Reason = ReasonInsufficientCandidates
			res.Category = c
			return res, nil
		}
		pools[i] = pool
		byCategory[c] = pool
	}

	var subs *subPools
	meal := req.wants(catalog.CategoryMeal)
	if meal {
		subs = e.buildSubPools(indexed, categories, req.Budget)
	}
	topUpPool := topUpCandidates(byCategory, topUpCategories(categories))

	gen := newGenerator(pools, e.cfg.MaxSeeds, e.cfg.MaxMembers, rng)
	rk := newRanker(e.cfg.MaxAccepted)
	for !rk.full() {
		if gen.Scanned()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		seed, ok := gen.Next()
		if !ok {
			break
		}

		if !redundancyValid(seed) {
			res.Discarded[DiscardRedundant]++
			continue
		}
		w := newWorking(seed)
		if w.total > req.Budget {
			res.Discarded[DiscardOverBudget]++
			continue
		}
		if meal && !e.repairMeal(w, subs, req.Budget) {
			res.Discarded[DiscardRepair]++
			continue
		}
		e.topUp(w, topUpPool, req.Budget, rng)

		if !matchesKeyword(w.members, req.Keyword) {
			res.Discarded[DiscardKeyword]++
			continue
		}
		if rk.seenBefore(signature(w.members)) {
			res.Discarded[DiscardDuplicate]++
			continue
		}
		rk.accept(freeze(w))
	}

	res.SeedsScanned = gen.Scanned()
	res.Accepted = len(rk.accepted)
	res.Combinations = rk.top(e.cfg.ResultLimit)
	if len(res.Combinations) == 0 {
		res.Reason = ReasonNoFeasibleCombination
	}
	return res, nil
}
