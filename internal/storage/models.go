/*
Package storage provides data models for the calculation history.

A CalculationRecord captures one successful computation: the shape, its
parameters, the metrics it produced, how long it took and when it ran.
*/
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/khanglvm/geocalc/internal/shapes"
)

// ErrInvalidRecord reports a record that violates the record invariants.
var ErrInvalidRecord = errors.New("invalid calculation record")

// CalculationRecord represents a single logged calculation.
type CalculationRecord struct {
	// ID is assigned by the store on append; zero before that.
	ID int64 `json:"id"`

	// ShapeKind is the computed shape.
	ShapeKind shapes.Kind `json:"shape_kind"`

	// Dimension is 2D or 3D, always consistent with ShapeKind.
	Dimension shapes.Dimension `json:"dimension"`

	// Parameters maps parameter names to their values.
	Parameters map[string]float64 `json:"parameters"`

	// Area is the planar area (2D) or total surface area (3D).
	Area *float64 `json:"area,omitempty"`

	// Perimeter is only set for 2D records.
	Perimeter *float64 `json:"perimeter,omitempty"`

	// Volume is only set for 3D records.
	Volume *float64 `json:"volume,omitempty"`

	// DurationMs is the computation time in milliseconds, if measured.
	DurationMs *float64 `json:"duration_ms,omitempty"`

	// CreatedAt is when the calculation was made.
	CreatedAt time.Time `json:"created_at"`

	// SessionID groups calculations made during one run.
	SessionID string `json:"session_id"`
}

// NewRecord builds a record from a computed result.
// A negative duration means "not measured".
func NewRecord(res shapes.Result, duration time.Duration, createdAt time.Time, sessionID string) CalculationRecord {
	rec := CalculationRecord{
		ShapeKind:  res.Kind,
		Dimension:  res.Dimension,
		Parameters: res.ParamMap(),
		CreatedAt:  createdAt,
		SessionID:  sessionID,
	}

	switch res.Dimension {
	case shapes.TwoD:
		rec.Area = Float(res.Area)
		rec.Perimeter = Float(res.Perimeter)
	case shapes.ThreeD:
		rec.Area = Float(res.SurfaceArea)
		rec.Volume = Float(res.Volume)
	}

	if duration >= 0 {
		rec.DurationMs = Float(float64(duration) / float64(time.Millisecond))
	}
	return rec
}

// Validate checks the record invariants.
func (r CalculationRecord) Validate() error {
	if !r.ShapeKind.Valid() {
		return fmt.Errorf("%w: unknown shape kind", ErrInvalidRecord)
	}
	if r.Dimension != r.ShapeKind.Dimension() {
		return fmt.Errorf("%w: %s is not a %s shape", ErrInvalidRecord, r.ShapeKind, r.Dimension)
	}
	if r.Dimension == shapes.TwoD && r.Volume != nil {
		return fmt.Errorf("%w: 2D record with volume", ErrInvalidRecord)
	}
	if r.Dimension == shapes.ThreeD && r.Perimeter != nil {
		return fmt.Errorf("%w: 3D record with perimeter", ErrInvalidRecord)
	}
	if r.Area == nil && r.Perimeter == nil && r.Volume == nil {
		return fmt.Errorf("%w: no metric present", ErrInvalidRecord)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	return nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
