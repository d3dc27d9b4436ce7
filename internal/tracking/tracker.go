/*
Package tracking records calculations in the background with non-blocking writes.

Long-lived surfaces (the interactive menu and the stdio server) hand records
to a Tracker so that a slow or broken history store never delays a result.
*/
package tracking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/khanglvm/geocalc/internal/storage"
)

const (
	// defaultQueueSize is the buffer size for the record queue.
	// If full, records are dropped (non-blocking).
	defaultQueueSize = 1000

	// defaultBatchSize is the number of records that triggers an immediate flush.
	defaultBatchSize = 10

	// defaultFlushInterval is how often pending records are flushed.
	defaultFlushInterval = 50 * time.Millisecond

	// flushTimeout bounds a single batch write.
	flushTimeout = 5 * time.Second
)

var errQueueFull = errors.New("tracking queue full")

// Appender persists one record.
type Appender interface {
	Append(ctx context.Context, rec storage.CalculationRecord) (int64, error)
}

// Options tunes a Tracker. Zero values pick the defaults.
type Options struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Logger        zerolog.Logger

	// OnError is called for every record that could not be stored or was dropped.
	OnError func(error)
}

// Tracker queues records and appends them from a background goroutine.
type Tracker struct {
	appender      Appender
	queue         chan storage.CalculationRecord
	flushReq      chan chan struct{}
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	batchSize     int
	flushInterval time.Duration
	logger        zerolog.Logger
	onError       func(error)

	dropped atomic.Int64

	mu      sync.RWMutex
	enabled bool
	stopped bool
}

// NewTracker creates a tracker and starts its background worker.
func NewTracker(appender Appender, opts Options) *Tracker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}

	t := &Tracker{
		appender:      appender,
		queue:         make(chan storage.CalculationRecord, opts.QueueSize),
		flushReq:      make(chan chan struct{}),
		stopChan:      make(chan struct{}),
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
		logger:        opts.Logger.With().Str("component", "tracker").Logger(),
		onError:       opts.OnError,
		enabled:       appender != nil,
	}

	t.wg.Add(1)
	go t.processRecords()

	return t
}

// Track queues a record (non-blocking).
// If the queue is full or the tracker is stopped, the record is dropped.
func (t *Tracker) Track(rec storage.CalculationRecord) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.enabled || t.stopped {
		return
	}

	select {
	case t.queue <- rec:
	default:
		t.dropped.Add(1)
		t.logger.Warn().Str("shape", rec.ShapeKind.String()).Msg("tracking queue full, dropping record")
		if t.onError != nil {
			t.onError(errQueueFull)
		}
	}
}

// Dropped returns how many records were dropped because the queue was full.
func (t *Tracker) Dropped() int64 {
	return t.dropped.Load()
}

// Flush writes every record queued so far and waits until they are stored
// or ctx is done. It returns immediately once the tracker is stopped.
func (t *Tracker) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case t.flushReq <- done:
	case <-t.stopChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains and flushes queued records, then stops the worker.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()

		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable makes Track ignore records.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable turns tracking back on.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = t.appender != nil
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// QueueSize returns the current number of queued records.
func (t *Tracker) QueueSize() int {
	return len(t.queue)
}

// processRecords runs in the background, batching and flushing records.
func (t *Tracker) processRecords() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	batch := make([]storage.CalculationRecord, 0, t.batchSize)

	for {
		select {
		case rec := <-t.queue:
			batch = append(batch, rec)
			if len(batch) >= t.batchSize {
				t.flush(batch)
				batch = make([]storage.CalculationRecord, 0, t.batchSize)
			}

		case done := <-t.flushReq:
			batch = t.drain(batch)
			t.flush(batch)
			batch = make([]storage.CalculationRecord, 0, t.batchSize)
			close(done)

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]storage.CalculationRecord, 0, t.batchSize)
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then flush and exit.
			t.flush(t.drain(batch))
			return
		}
	}
}

// drain moves every queued record into batch without blocking.
func (t *Tracker) drain(batch []storage.CalculationRecord) []storage.CalculationRecord {
	for {
		select {
		case rec := <-t.queue:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

// flush writes a batch of records to the appender.
func (t *Tracker) flush(records []storage.CalculationRecord) {
	if len(records) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for _, rec := range records {
		if _, err := t.appender.Append(ctx, rec); err != nil {
			t.logger.Warn().Err(err).Str("shape", rec.ShapeKind.String()).Msg("failed to record calculation")
			if t.onError != nil {
				t.onError(err)
			}
		}
	}
}
