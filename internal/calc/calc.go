/*
Package calc ties shape computation to the history log.

A Calculator computes a shape, times it, counts it, and records it. Rejected
input is never logged. A logging failure is reported next to the result and
never replaces it.
*/
package calc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khanglvm/geocalc/internal/analytics"
	"github.com/khanglvm/geocalc/internal/clock"
	"github.com/khanglvm/geocalc/internal/metrics"
	"github.com/khanglvm/geocalc/internal/shapes"
	"github.com/khanglvm/geocalc/internal/storage"
	"github.com/khanglvm/geocalc/internal/tracking"
)

// Options configures a Calculator. Store is required.
type Options struct {
	Store *analytics.Store

	// Tracker, when set, receives records asynchronously instead of the
	// store being written inline.
	Tracker *tracking.Tracker

	// Clock measures durations and stamps queued records. Defaults to the store's clock.
	Clock clock.Clock

	// Metrics may be nil.
	Metrics *metrics.Collector

	Logger zerolog.Logger

	// SessionID groups records from one process. Defaults to a new UUID.
	SessionID string

	// SkipLog computes without recording anything.
	SkipLog bool
}

// Outcome is a computed result and what happened when logging it.
type Outcome struct {
	Result   shapes.Result
	Duration time.Duration

	// Record is the logged record. Its ID is zero when it was queued or not stored.
	Record storage.CalculationRecord

	// Queued is true when the record went to the background tracker.
	Queued bool

	// LogErr is the storage error, if any. The result is valid regardless.
	LogErr error
}

// Logged reports whether the record reached the store synchronously.
func (o Outcome) Logged() bool {
	return o.Record.ID != 0
}

// Calculator computes shapes and records them.
type Calculator struct {
	store     *analytics.Store
	tracker   *tracking.Tracker
	clock     clock.Clock
	metrics   *metrics.Collector
	logger    zerolog.Logger
	sessionID string
	skipLog   bool
}

// New creates a Calculator.
func New(opts Options) *Calculator {
	if opts.Clock == nil {
		opts.Clock = opts.Store.Clock()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	return &Calculator{
		store:     opts.Store,
		tracker:   opts.Tracker,
		clock:     opts.Clock,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("component", "calc").Str("session", opts.SessionID).Logger(),
		sessionID: opts.SessionID,
		skipLog:   opts.SkipLog,
	}
}

// SessionID returns the ID stamped on every record from this calculator.
func (c *Calculator) SessionID() string {
	return c.sessionID
}

// Store returns the underlying history store.
func (c *Calculator) Store() *analytics.Store {
	return c.store
}

// Calculate computes s and logs it. The returned error is non-nil only for
// rejected input.
func (c *Calculator) Calculate(ctx context.Context, s shapes.Shape) (Outcome, error) {
	start := c.clock.Now()
	res, err := shapes.Compute(s)
	took := c.clock.Now().Sub(start)

	if err != nil {
		kind := shapes.KindUnknown
		if s != nil {
			kind = s.Kind()
		}
		c.metrics.ObserveRejection(kind, err)
		c.logger.Debug().Err(err).Str("shape", kind.String()).Msg("input rejected")
		return Outcome{}, err
	}

	c.metrics.ObserveCalculation(res, took)
	out := Outcome{Result: res, Duration: took}
	if c.skipLog {
		return out, nil
	}

	if c.tracker != nil && c.tracker.IsEnabled() {
		out.Record = storage.NewRecord(res, took, c.clock.Now(), c.sessionID)
		out.Queued = true
		c.tracker.Track(out.Record)
		return out, nil
	}

	out.Record, out.LogErr = c.store.Log(ctx, res, took, c.sessionID)
	if out.LogErr != nil {
		out.Record.ID = 0
		c.metrics.ObserveLogFailure()
		c.logger.Warn().Err(out.LogErr).Str("shape", res.Kind.String()).Msg("failed to log calculation")
	}
	return out, nil
}

// Stats aggregates the history. windowDays <= 0 covers every record.
func (c *Calculator) Stats(ctx context.Context, windowDays int) (analytics.AggregatedStats, error) {
	c.metrics.ObserveStatsQuery()
	return c.store.QueryStats(ctx, analytics.QueryOptions{WindowDays: windowDays})
}

// IsRejection reports whether err is a rejected-input error.
func IsRejection(err error) bool {
	return errors.Is(err, shapes.ErrInvalidDimension) || errors.Is(err, shapes.ErrDegenerateShape)
}
