package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStorage keeps records in process memory. It is used by tests and when
// history persistence is turned off.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []CalculationRecord
	nextID  int64
	closed  bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Init is a no-op.
func (m *MemoryStorage) Init() error {
	return nil
}

// Append stores a copy of rec.
func (m *MemoryStorage) Append(_ context.Context, rec CalculationRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, fmt.Errorf("%w: store closed", ErrStorageUnavailable)
	}

	m.nextID++
	rec = cloneRecord(rec)
	rec.ID = m.nextID
	rec.CreatedAt = rec.CreatedAt.UTC()
	m.records = append(m.records, rec)
	return rec.ID, nil
}

// Records returns records within [since, until], oldest first.
func (m *MemoryStorage) Records(_ context.Context, since, until time.Time) ([]CalculationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("%w: store closed", ErrStorageUnavailable)
	}

	out := []CalculationRecord{}
	for _, rec := range m.records {
		if !since.IsZero() && rec.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && rec.CreatedAt.After(until) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryStorage) Recent(ctx context.Context, limit int) ([]CalculationRecord, error) {
	all, err := m.Records(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []CalculationRecord{}, nil
	}

	out := make([]CalculationRecord, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Cleanup removes records created before cutoff.
func (m *MemoryStorage) Cleanup(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, fmt.Errorf("%w: store closed", ErrStorageUnavailable)
	}

	kept := m.records[:0]
	var removed int64
	for _, rec := range m.records {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return removed, nil
}

// Clear removes every record.
func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("%w: store closed", ErrStorageUnavailable)
	}
	m.records = nil
	return nil
}

// Close marks the store closed; later operations fail.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cloneRecord(rec CalculationRecord) CalculationRecord {
	params := make(map[string]float64, len(rec.Parameters))
	for k, v := range rec.Parameters {
		params[k] = v
	}
	rec.Parameters = params
	rec.Area = clonePtr(rec.Area)
	rec.Perimeter = clonePtr(rec.Perimeter)
	rec.Volume = clonePtr(rec.Volume)
	rec.DurationMs = clonePtr(rec.DurationMs)
	return rec
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

var _ Storage = (*MemoryStorage)(nil)
