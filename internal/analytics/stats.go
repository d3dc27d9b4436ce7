/*
Package analytics implements the calculation history store and its statistics.

Statistics are derived on demand from the stored records and never persisted.
A single pass over the windowed records fills every counter; the most popular
shape is then picked by count, ties going to the lexicographically smallest
shape name.
*/
package analytics

import (
	"sort"
	"time"

	"github.com/khanglvm/geocalc/internal/shapes"
	"github.com/khanglvm/geocalc/internal/storage"
)

// dayLayout keys the calendar-day histogram.
const dayLayout = "2006-01-02"

// AggregatedStats summarizes a set of calculation records.
type AggregatedStats struct {
	TotalCalculations  int                      `json:"total_calculations"`
	ShapeFrequency     map[shapes.Kind]int      `json:"shape_frequency"`
	DimensionFrequency map[shapes.Dimension]int `json:"dimension_frequency"`
	HourHistogram      [24]int                  `json:"hour_histogram"`
	DayHistogram       map[string]int           `json:"day_histogram"`

	// AverageDurationMs is the mean over DurationSamples records that carry a duration.
	AverageDurationMs float64 `json:"average_duration_ms"`
	DurationSamples   int     `json:"duration_samples"`

	// MostPopularShape is KindUnknown when there are no records.
	MostPopularShape shapes.Kind `json:"most_popular_shape"`

	// Recent holds the newest records, newest first.
	Recent []storage.CalculationRecord `json:"recent"`

	Sessions int       `json:"sessions"`
	FirstAt  time.Time `json:"first_at,omitempty"`
	LastAt   time.Time `json:"last_at,omitempty"`

	// WindowDays is zero for all-time statistics.
	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

// EmptyStats returns the statistics of an empty record set.
func EmptyStats() AggregatedStats {
	return AggregatedStats{
		ShapeFrequency:     map[shapes.Kind]int{},
		DimensionFrequency: map[shapes.Dimension]int{},
		DayHistogram:       map[string]int{},
		MostPopularShape:   shapes.KindUnknown,
		Recent:             []storage.CalculationRecord{},
	}
}

// Aggregate computes statistics over records in one pass.
// Hours and days are bucketed in loc; recentLimit bounds the Recent list.
func Aggregate(records []storage.CalculationRecord, loc *time.Location, recentLimit int) AggregatedStats {
	if loc == nil {
		loc = time.UTC
	}
	stats := EmptyStats()
	if len(records) == 0 {
		return stats
	}

	var durationSum float64
	sessions := make(map[string]struct{})

	for _, rec := range records {
		stats.TotalCalculations++
		stats.ShapeFrequency[rec.ShapeKind]++
		stats.DimensionFrequency[rec.Dimension]++

		local := rec.CreatedAt.In(loc)
		stats.HourHistogram[local.Hour()]++
		stats.DayHistogram[local.Format(dayLayout)]++

		if rec.DurationMs != nil {
			durationSum += *rec.DurationMs
			stats.DurationSamples++
		}
		if rec.SessionID != "" {
			sessions[rec.SessionID] = struct{}{}
		}
		if stats.FirstAt.IsZero() || rec.CreatedAt.Before(stats.FirstAt) {
			stats.FirstAt = rec.CreatedAt
		}
		if rec.CreatedAt.After(stats.LastAt) {
			stats.LastAt = rec.CreatedAt
		}
	}

	if stats.DurationSamples > 0 {
		stats.AverageDurationMs = durationSum / float64(stats.DurationSamples)
	}
	stats.Sessions = len(sessions)
	stats.MostPopularShape = mostPopular(stats.ShapeFrequency)
	stats.Recent = newest(records, recentLimit)

	return stats
}

// mostPopular picks the kind with the highest count; ties go to the
// lexicographically smallest name.
func mostPopular(freq map[shapes.Kind]int) shapes.Kind {
	best := shapes.KindUnknown
	bestCount := 0
	for kind, count := range freq {
		switch {
		case count > bestCount:
			best, bestCount = kind, count
		case count == bestCount && count > 0 && kind.String() < best.String():
			best = kind
		}
	}
	return best
}

// newest returns up to limit records ordered by CreatedAt descending.
func newest(records []storage.CalculationRecord, limit int) []storage.CalculationRecord {
	if limit <= 0 {
		return []storage.CalculationRecord{}
	}

	sorted := make([]storage.CalculationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ShareOf returns the fraction of calculations of the given kind.
func (s AggregatedStats) ShareOf(kind shapes.Kind) float64 {
	if s.TotalCalculations == 0 {
		return 0
	}
	return float64(s.ShapeFrequency[kind]) / float64(s.TotalCalculations)
}

// BusiestHour returns the hour with the most calculations, or -1 if empty.
func (s AggregatedStats) BusiestHour() int {
	best, bestCount := -1, 0
	for hour, count := range s.HourHistogram {
		if count > bestCount {
			best, bestCount = hour, count
		}
	}
	return best
}

// Days returns the day histogram keys in chronological order.
func (s AggregatedStats) Days() []string {
	days := make([]string, 0, len(s.DayHistogram))
	for day := range s.DayHistogram {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
