package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const recordColumns = `id, shape_kind, dimension, parameters, area, perimeter, volume, duration_ms, created_at, session_id`

// Append stores a calculation record inside a transaction.
func (s *SQLiteStorage) Append(ctx context.Context, rec CalculationRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.available(); err != nil {
		return 0, err
	}

	params, err := paramsToJSON(rec.Parameters)
	if err != nil {
		return 0, fmt.Errorf("failed to encode parameters: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO calculations (shape_kind, dimension, parameters, area, perimeter, volume, duration_ms, created_at, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ShapeKind.String(),
		rec.Dimension.String(),
		params,
		nullFloat(rec.Area),
		nullFloat(rec.Perimeter),
		nullFloat(rec.Volume),
		nullFloat(rec.DurationMs),
		formatTime(rec.CreatedAt),
		rec.SessionID,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert record: %v", ErrStorageUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit record: %v", ErrStorageUnavailable, err)
	}

	return id, nil
}

// Records returns records within [since, until], oldest first.
func (s *SQLiteStorage) Records(ctx context.Context, since, until time.Time) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.available(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if !since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(since))
	}
	if !until.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, formatTime(until))
	}

	query := "SELECT " + recordColumns + " FROM calculations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	return s.queryRecords(ctx, query, args...)
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.available(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []CalculationRecord{}, nil
	}

	query := "SELECT " + recordColumns + " FROM calculations ORDER BY created_at DESC, id DESC LIMIT ?"
	return s.queryRecords(ctx, query, limit)
}

func (s *SQLiteStorage) queryRecords(ctx context.Context, query string, args ...any) ([]CalculationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query records: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	records := []CalculationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			s.logger.Warn().Err(err).Msg("skipping unreadable calculation row")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (CalculationRecord, error) {
	var (
		rec                           CalculationRecord
		kind, dimension, params, at   string
		area, perimeter, volume, took sql.NullFloat64
	)

	if err := rows.Scan(&rec.ID, &kind, &dimension, &params, &area, &perimeter, &volume, &took, &at, &rec.SessionID); err != nil {
		return rec, err
	}

	if err := rec.ShapeKind.UnmarshalText([]byte(kind)); err != nil {
		return rec, err
	}
	if err := rec.Dimension.UnmarshalText([]byte(dimension)); err != nil {
		return rec, err
	}

	var err error
	if rec.Parameters, err = jsonToParams(params); err != nil {
		return rec, fmt.Errorf("failed to decode parameters: %w", err)
	}
	if rec.CreatedAt, err = parseTime(at); err != nil {
		return rec, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	rec.Area = floatPtr(area)
	rec.Perimeter = floatPtr(perimeter)
	rec.Volume = floatPtr(volume)
	rec.DurationMs = floatPtr(took)
	return rec, nil
}

// Cleanup removes records created before cutoff.
func (s *SQLiteStorage) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.available(); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM calculations WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to cleanup calculations: %v", ErrStorageUnavailable, err)
	}
	removed, _ := res.RowsAffected()

	// Vacuum to reclaim space
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to vacuum database")
	}

	return removed, nil
}

// Clear removes every record. IDs keep increasing afterwards.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.available(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM calculations"); err != nil {
		return fmt.Errorf("%w: failed to clear calculations: %v", ErrStorageUnavailable, err)
	}
	return nil
}

var _ Storage = (*SQLiteStorage)(nil)
