package phenology

import "time"

// Engine bundles the reference data and exposes the three query operations.
// Build one at startup and share it; it holds no mutable state.
type Engine struct {
	spots        *SpotIndex
	offsets      *OffsetTable
	classifier   *Classifier
	interpolator *Interpolator
	loc          *time.Location
}

// NewEngine creates an Engine. A nil loc uses DefaultLocation.
func NewEngine(spots *SpotIndex, offsets *OffsetTable, loc *time.Location) *Engine {
	if loc == nil {
		loc = DefaultLocation
	}
	return &Engine{
		spots:        spots,
		offsets:      offsets,
		classifier:   NewClassifier(spots, offsets),
		interpolator: NewInterpolator(spots, loc),
		loc:          loc,
	}
}

// Location returns the civil time zone milestones are interpreted in.
func (e *Engine) Location() *time.Location { return e.loc }

// Spots returns the station index.
func (e *Engine) Spots() *SpotIndex { return e.spots }

// Offsets returns the prefecture offset table.
func (e *Engine) Offsets() *OffsetTable { return e.offsets }

// NearestStation returns the station closest to lat/lon.
func (e *Engine) NearestStation(lat, lon float64) (Spot, bool) {
	return e.spots.Nearest(lat, lon)
}

// ClassifyBloomStatus returns the bloom stage on the given date.
func (e *Engine) ClassifyBloomStatus(day time.Time, lat, lon float64, prefectureCode string) (Stage, bool) {
	return e.classifier.Classify(day, lat, lon, prefectureCode)
}

// EvaluateBloomStatus is ClassifyBloomStatus with details.
func (e *Engine) EvaluateBloomStatus(day time.Time, lat, lon float64, prefectureCode string) Evaluation {
	return e.classifier.Evaluate(day, lat, lon, prefectureCode)
}

// ObservationDay returns the civil date of instant t in the engine's zone,
// for use with ClassifyBloomStatus.
func (e *Engine) ObservationDay(t time.Time) time.Time {
	return civilDate(t.In(e.loc))
}

// VitalityBlend returns the estimator weights at instant t.
func (e *Engine) VitalityBlend(t time.Time, lat, lon float64) (Blend, bool) {
	return e.interpolator.Blend(t, lat, lon)
}
