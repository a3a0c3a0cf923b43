// Package engine implements the impact aggregation engine: expected and
// worst-case totals, ensemble distribution analysis, risk classification and
// forecast-to-forecast trend comparison over the impact store.
//
// Every operation is a pure function of the store contents at call time.
// Nothing is cached between calls; two identical calls against an unchanged
// store return identical results.
package engine

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/observability"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

// DefaultZoom is the finest mercator aggregation level the ETL produces.
// Expected-impact sums run at exactly one zoom level; mixing levels would
// double count.
const DefaultZoom = 15

// Engine executes impact queries against a Store. Safe for concurrent use;
// it holds no mutable state of its own.
type Engine struct {
	store   store.Store
	clock   clockwork.Clock
	zoom    int
	metrics *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithZoom overrides the mercator zoom level used for expected-impact sums.
func WithZoom(zoom int) Option {
	return func(e *Engine) { e.zoom = zoom }
}

// WithClock injects the clock used for forecast-age computation.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine over the given store.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		clock: clockwork.NewRealClock(),
		zoom:  DefaultZoom,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// observe wraps a store query with metrics. Used by every operation so query
// latency and failure rates are visible per query name.
func (e *Engine) observe(query string, start time.Time, err error) {
	e.metrics.ObserveQuery(query, start, err)
}

func (e *Engine) opOutcome(op string, hasData bool, err error) {
	switch {
	case err != nil:
		e.metrics.ObserveOp(op, "error")
	case !hasData:
		e.metrics.ObserveOp(op, "no_data")
	default:
		e.metrics.ObserveOp(op, "ok")
	}
}
