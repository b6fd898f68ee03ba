// Package engine is the entry point collaborators use to roll dice
// expressions and to record rolls into luck statistics.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/kobold-keeper/internal/dice/analytics"
	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
	"github.com/louisbranch/kobold-keeper/internal/dice/roll"
	"github.com/louisbranch/kobold-keeper/internal/platform/encoding"
	"github.com/louisbranch/kobold-keeper/internal/random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/kobold-keeper/internal/dice/engine"

// Option customizes an Engine.
type Option func(*Engine)

// WithSeedGenerator replaces the crypto/rand seed generator used when a
// roll has no caller seed.
func WithSeedGenerator(generate func() (int64, error)) Option {
	return func(e *Engine) {
		e.generateSeed = generate
	}
}

// WithAggregator shares an existing aggregator between engines.
func WithAggregator(agg *analytics.Aggregator) Option {
	return func(e *Engine) {
		e.aggregator = agg
	}
}

// WithTracerProvider traces through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp.Tracer(tracerName)
		}
	}
}

// Engine parses, evaluates and records dice expressions. It is safe for
// concurrent use.
type Engine struct {
	limits       notation.Limits
	evaluator    *roll.Evaluator
	aggregator   *analytics.Aggregator
	generateSeed func() (int64, error)
	tracer       trace.Tracer
}

// New builds an engine bounded by cfg.
func New(cfg Config, opts ...Option) *Engine {
	limits := cfg.Limits()
	e := &Engine{
		limits:       limits,
		evaluator:    roll.NewEvaluator(limits),
		generateSeed: random.NewSeed,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.aggregator == nil {
		e.aggregator = analytics.NewAggregator()
	}
	return e
}

// Limits returns the bounds this engine enforces.
func (e *Engine) Limits() notation.Limits {
	return e.limits
}

// Aggregator returns the statistics store backing RecordAndCompare.
func (e *Engine) Aggregator() *analytics.Aggregator {
	return e.aggregator
}

// RollExpression parses and evaluates expr.
//
// With a seed the roll is fully determined by (expr, *seed); without one a
// fresh seed is generated. Either way the seed used is returned in
// Result.Seed so the roll can be replayed.
func (e *Engine) RollExpression(ctx context.Context, expr string, seed *int64) (roll.Result, error) {
	_, span := e.tracer.Start(ctx, "dice.roll", trace.WithAttributes(
		attribute.String("dice.notation", expr),
	))
	defer span.End()

	result, source, err := e.roll(expr, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(DomainError(err).Code))
		return roll.Result{}, err
	}
	span.SetAttributes(
		attribute.Int64("dice.total", result.Total),
		attribute.Int64("dice.seed", result.Seed),
		attribute.String("dice.seed_source", string(source)),
		attribute.Int("dice.terms", len(result.Terms)),
	)
	return result, nil
}

func (e *Engine) roll(expr string, requested *int64) (roll.Result, random.SeedSource, error) {
	root, err := notation.ParseString(expr, e.limits)
	if err != nil {
		return roll.Result{}, "", err
	}
	seed, source, err := random.ResolveSeed(requested, e.generateSeed)
	if err != nil {
		return roll.Result{}, "", fmt.Errorf("resolve seed: %w", err)
	}
	result, err := e.evaluator.Evaluate(root, random.NewSeeded(seed))
	if err != nil {
		return roll.Result{}, "", err
	}
	result.Seed = seed
	return result, source, nil
}

// RecordAndCompare folds result into scope and returns the scope's updated
// comparison against theoretical expectations.
func (e *Engine) RecordAndCompare(ctx context.Context, scope string, result roll.Result) (analytics.Snapshot, error) {
	_, span := e.tracer.Start(ctx, "dice.record", trace.WithAttributes(
		attribute.String("dice.scope", scope),
		attribute.String("dice.notation", result.Expression),
	))
	defer span.End()

	snapshot, err := e.aggregator.Record(scope, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(DomainError(err).Code))
		return analytics.Snapshot{}, err
	}
	span.SetAttributes(
		attribute.Int64("dice.samples", snapshot.Overall.SampleCount),
		attribute.Float64("dice.luck_index", snapshot.Overall.LuckIndex),
	)
	return snapshot, nil
}

// Compare returns the current comparison for scope without recording.
func (e *Engine) Compare(scope string) (analytics.Snapshot, bool) {
	return e.aggregator.Compare(scope)
}

// Rank orders recorded scopes; see analytics.Aggregator.Rank.
func (e *Engine) Rank(orderBy string, minSamples int64) ([]analytics.Ranking, error) {
	return e.aggregator.Rank(orderBy, minSamples)
}

// RankMatching ranks the recorded scopes that match an AIP-160 filter; see
// analytics.Aggregator.RankMatching.
func (e *Engine) RankMatching(filter, orderBy string, minSamples int64) ([]analytics.Ranking, error) {
	return e.aggregator.RankMatching(filter, orderBy, minSamples)
}

// Fingerprint returns a content hash of result. Two rolls of the same
// expression with the same seed have equal fingerprints.
func Fingerprint(result roll.Result) (string, error) {
	if result.Expression == "" && len(result.Terms) == 0 {
		return "", errors.New("fingerprint: empty result")
	}
	return encoding.ContentHash(result)
}
