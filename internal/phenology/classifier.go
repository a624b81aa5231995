package phenology

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate indicates a zero observation time.
var ErrInvalidDate = errors.New("invalid date")

// Reason explains why a classification is indeterminate.
type Reason string

const (
	// ReasonNone marks a determinate result.
	ReasonNone Reason = ""

	// ReasonNoRegion is reported when no prefecture code was supplied.
	ReasonNoRegion Reason = "no_region"

	// ReasonUnknownRegion is reported when the prefecture has no offsets.
	ReasonUnknownRegion Reason = "unknown_region"

	// ReasonNoStation is reported when no stations are loaded.
	ReasonNoStation Reason = "no_station"

	// ReasonUnsupportedDate is reported when a milestone does not exist in the
	// observation year (Feb 29 outside leap years).
	ReasonUnsupportedDate Reason = "unsupported_date"

	// ReasonSeasonSpansYear is reported when the station milestones do not run
	// forward once placed on the observation year, which is how a season that
	// crosses New Year presents.
	ReasonSeasonSpansYear Reason = "season_spans_year"
)

// Schedule holds the start date of each stage for one season. Dates are civil
// days at midnight UTC.
type Schedule struct {
	Flowering        time.Time
	ThirtyPercent    time.Time
	FiftyPercent     time.Time
	FullBloomStart   time.Time
	FullBloomEnd     time.Time
	FlowersAndLeaves time.Time
	LeavesOnly       time.Time
}

// StageOn returns the stage for a civil date. Intervals are half-open and
// checked in order.
func (s Schedule) StageOn(day time.Time) Stage {
	switch {
	case day.Before(s.Flowering):
		return BeforeBloom
	case day.Before(s.ThirtyPercent):
		return Opening
	case day.Before(s.FiftyPercent):
		return ThirtyPercent
	case day.Before(s.FullBloomStart):
		return FiftyPercent
	case day.Before(s.FullBloomEnd):
		return FullBloom
	case day.Before(s.FlowersAndLeaves):
		return Falling
	case day.Before(s.LeavesOnly):
		return FlowersAndLeaves
	default:
		return LeavesOnly
	}
}

// Evaluation is a classification together with what it was derived from.
type Evaluation struct {
	Stage    Stage
	Reason   Reason
	Spot     Spot    // zero unless a station was found
	Distance float64 // metres to Spot
	Offsets  Offsets
	Schedule Schedule
}

// OK reports whether the evaluation produced a stage.
func (e Evaluation) OK() bool { return e.Reason == ReasonNone }

// Classifier assigns bloom stages from a station index and prefecture offsets.
type Classifier struct {
	spots   *SpotIndex
	offsets *OffsetTable
}

// NewClassifier creates a Classifier over the given reference data.
func NewClassifier(spots *SpotIndex, offsets *OffsetTable) *Classifier {
	return &Classifier{spots: spots, offsets: offsets}
}

// Classify returns the bloom stage on the civil date of day (taken in day's own
// location) for a tree at lat/lon in the given prefecture. ok is false when
// reference data does not cover the query; see Evaluate for the reason.
func (c *Classifier) Classify(day time.Time, lat, lon float64, prefectureCode string) (Stage, bool) {
	ev := c.Evaluate(day, lat, lon, prefectureCode)
	return ev.Stage, ev.OK()
}

// Evaluate is Classify with the intermediate values and the reason for an
// indeterminate result.
func (c *Classifier) Evaluate(day time.Time, lat, lon float64, prefectureCode string) Evaluation {
	if day.IsZero() {
		panic(fmt.Errorf("%w: zero observation date", ErrInvalidDate))
	}
	mustValidCoordinate(lat, lon)

	if prefectureCode == "" {
		return Evaluation{Reason: ReasonNoRegion}
	}
	off, ok := c.offsets.Get(prefectureCode)
	if !ok {
		return Evaluation{Reason: ReasonUnknownRegion}
	}
	spot, dist, ok := c.spots.NearestWithDistance(lat, lon)
	if !ok {
		return Evaluation{Reason: ReasonNoStation, Offsets: off}
	}

	ev := Evaluation{Spot: spot, Distance: dist, Offsets: off}
	sched, reason := BuildSchedule(spot, off, day.Year())
	if reason != ReasonNone {
		ev.Reason = reason
		return ev
	}
	ev.Schedule = sched
	ev.Stage = sched.StageOn(civilDate(day))
	return ev
}

// BuildSchedule places a station's milestones on year and applies offsets.
func BuildSchedule(spot Spot, off Offsets, year int) (Schedule, Reason) {
	flowering, ok1 := spot.Flowering.On(year, time.UTC)
	bloomStart, ok2 := spot.FullBloomStart.On(year, time.UTC)
	if !ok1 || !ok2 {
		return Schedule{}, ReasonUnsupportedDate
	}
	bloomEnd := bloomStart.AddDate(0, 0, fullBloomEndFallbackDays)
	if !spot.FullBloomEnd.IsZero() {
		end, ok := spot.FullBloomEnd.On(year, time.UTC)
		if !ok {
			return Schedule{}, ReasonUnsupportedDate
		}
		bloomEnd = end
	}
	if bloomStart.Before(flowering) || bloomEnd.Before(bloomStart) {
		return Schedule{}, ReasonSeasonSpansYear
	}

	return Schedule{
		Flowering:        flowering,
		ThirtyPercent:    flowering.AddDate(0, 0, off.ToThirtyPercent),
		FiftyPercent:     flowering.AddDate(0, 0, off.ToFiftyPercent),
		FullBloomStart:   bloomStart,
		FullBloomEnd:     bloomEnd,
		FlowersAndLeaves: bloomEnd.AddDate(0, 0, off.ToFlowersAndLeaves),
		LeavesOnly:       bloomEnd.AddDate(0, 0, off.ToLeavesOnly),
	}, ReasonNone
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
