package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestConcurrentAppendAndQuery exercises writers and readers together.
func TestConcurrentAppendAndQuery(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		const writers, perWriter = 4, 25

		var wg sync.WaitGroup
		ids := make(chan int64, writers*perWriter)

		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					id, err := s.Append(ctx, circleRecord(baseTime.Add(time.Duration(w*perWriter+i)*time.Second), 1))
					if err != nil {
						t.Errorf("Append failed: %v", err)
						return
					}
					ids <- id
				}
			}(w)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				records, err := s.Records(ctx, time.Time{}, time.Time{})
				if err != nil {
					t.Errorf("Records failed: %v", err)
					return
				}
				for _, rec := range records {
					if rec.Area == nil || rec.Perimeter == nil {
						t.Error("observed partially written record")
						return
					}
				}
			}
		}()

		wg.Wait()
		close(ids)

		seen := make(map[int64]bool)
		for id := range ids {
			if seen[id] {
				t.Errorf("duplicate ID %d", id)
			}
			seen[id] = true
		}

		records, err := s.Records(ctx, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("Records failed: %v", err)
		}
		if len(records) != writers*perWriter {
			t.Errorf("Expected %d records, got %d", writers*perWriter, len(records))
		}
	})
}

// TestQueryDuringClose reads while the store is closed underneath.
func TestQueryDuringClose(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		for i := 0; i < 10; i++ {
			if _, err := s.Append(ctx, circleRecord(baseTime.Add(time.Duration(i)*time.Second), 1)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := 0; i < 50; i++ {
					if _, err := s.Records(ctx, time.Time{}, time.Time{}); err != nil && !errors.Is(err, ErrStorageUnavailable) {
						t.Errorf("Records failed: %v", err)
						return
					}
					if _, err := s.Recent(ctx, 3); err != nil && !errors.Is(err, ErrStorageUnavailable) {
						t.Errorf("Recent failed: %v", err)
						return
					}
				}
			}()
		}

		close(start)
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
		wg.Wait()

		if _, err := s.Records(ctx, time.Time{}, time.Time{}); !errors.Is(err, ErrStorageUnavailable) {
			t.Errorf("Expected ErrStorageUnavailable after Close, got %v", err)
		}
	})
}
