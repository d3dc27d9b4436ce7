package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/khanglvm/geocalc/internal/clock"
	"github.com/khanglvm/geocalc/internal/shapes"
	"github.com/khanglvm/geocalc/internal/storage"
)

const defaultRecentLimit = 10

// Options configures a Store.
type Options struct {
	// Clock stamps records and anchors query windows. Defaults to clock.Real.
	Clock clock.Clock

	// Location is the time zone for hour and day buckets. Defaults to UTC.
	Location *time.Location

	// RecentLimit bounds AggregatedStats.Recent. Defaults to 10.
	RecentLimit int

	Logger zerolog.Logger
}

// QueryOptions selects the records a statistics query covers.
type QueryOptions struct {
	// WindowDays limits the query to the trailing number of days.
	// Zero or negative covers every record.
	WindowDays int
}

// Store is the append-only calculation log with derived statistics.
// It is safe for concurrent use.
type Store struct {
	backend     storage.Storage
	clock       clock.Clock
	loc         *time.Location
	recentLimit int
	logger      zerolog.Logger
}

// NewStore wraps an initialized storage backend.
func NewStore(backend storage.Storage, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	return &Store{
		backend:     backend,
		clock:       opts.Clock,
		loc:         opts.Location,
		recentLimit: opts.RecentLimit,
		logger:      opts.Logger.With().Str("component", "analytics").Logger(),
	}
}

// Clock returns the store's time source.
func (s *Store) Clock() clock.Clock {
	return s.clock
}

// Append stores rec and returns its ID. The record is visible to queries
// issued after Append returns.
func (s *Store) Append(ctx context.Context, rec storage.CalculationRecord) (int64, error) {
	id, err := s.backend.Append(ctx, rec)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().
		Int64("id", id).
		Str("shape", rec.ShapeKind.String()).
		Str("session", rec.SessionID).
		Msg("calculation recorded")
	return id, nil
}

// Log turns a computed result into a record stamped now and appends it.
// A negative duration is stored as "not measured".
func (s *Store) Log(ctx context.Context, res shapes.Result, duration time.Duration, sessionID string) (storage.CalculationRecord, error) {
	rec := storage.NewRecord(res, duration, s.clock.Now(), sessionID)
	id, err := s.Append(ctx, rec)
	if err != nil {
		return rec, err
	}
	rec.ID = id
	return rec, nil
}

// QueryStats aggregates the records inside the requested window.
func (s *Store) QueryStats(ctx context.Context, opts QueryOptions) (AggregatedStats, error) {
	now := s.clock.Now()

	var since, until time.Time
	if opts.WindowDays > 0 {
		since = now.Add(-time.Duration(opts.WindowDays) * 24 * time.Hour)
		until = now
	}

	records, err := s.backend.Records(ctx, since, until)
	if err != nil {
		return AggregatedStats{}, fmt.Errorf("failed to load records: %w", err)
	}

	stats := Aggregate(records, s.loc, s.recentLimit)
	if opts.WindowDays > 0 {
		stats.WindowDays = opts.WindowDays
	}
	stats.GeneratedAt = now
	return stats, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]storage.CalculationRecord, error) {
	return s.backend.Recent(ctx, limit)
}

// Export returns every record created within the trailing window, oldest first.
// Zero or negative days exports everything.
func (s *Store) Export(ctx context.Context, days int) ([]storage.CalculationRecord, error) {
	var since time.Time
	if days > 0 {
		since = s.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)
	}
	return s.backend.Records(ctx, since, time.Time{})
}

// Cleanup removes records older than the retention period.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-retention)
	removed, err := s.backend.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("history cleanup")
	return removed, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
