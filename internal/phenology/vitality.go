package phenology

import (
	"fmt"
	"time"
)

// leafDelayDays is the gap between full-bloom end and the leaf milestone.
const leafDelayDays = 5

// milestoneHour is the local hour at which milestone dates are anchored.
const milestoneHour = 12

// DefaultLocation is Japan Standard Time. JST has no daylight saving, so a
// fixed zone avoids depending on the host tz database.
var DefaultLocation = time.FixedZone("JST", 9*60*60)

// Blend is a pair of estimator weights in [0,1] that sum to 1.
type Blend struct {
	NoLeaf float64 // weight for the no-leaf (bare branch) estimator
	Bloom  float64 // weight for the in-bloom estimator
}

var (
	blendBare  = Blend{NoLeaf: 1, Bloom: 0}
	blendBloom = Blend{NoLeaf: 0, Bloom: 1}
)

// blendFromBloom builds a Blend whose channels sum to 1 exactly.
func blendFromBloom(bloom float64) Blend {
	return Blend{NoLeaf: 1 - bloom, Bloom: bloom}
}

// Interpolator turns the seasonal phase at a station into a Blend.
type Interpolator struct {
	spots *SpotIndex
	loc   *time.Location
}

// NewInterpolator creates an Interpolator. A nil loc uses DefaultLocation.
func NewInterpolator(spots *SpotIndex, loc *time.Location) *Interpolator {
	if loc == nil {
		loc = DefaultLocation
	}
	return &Interpolator{spots: spots, loc: loc}
}

// Blend returns the weights at instant t for a tree at lat/lon. Instants in
// UTC (including zone-less parses) are converted to the interpolator's zone
// first. ok is false when there is no station or a milestone does not exist
// in t's year.
func (p *Interpolator) Blend(t time.Time, lat, lon float64) (Blend, bool) {
	if t.IsZero() {
		panic(fmt.Errorf("%w: zero instant", ErrInvalidDate))
	}
	spot, ok := p.spots.Nearest(lat, lon)
	if !ok {
		return Blend{}, false
	}
	return p.BlendAt(spot, t)
}

// BlendAt computes the weights for a known station.
func (p *Interpolator) BlendAt(spot Spot, t time.Time) (Blend, bool) {
	local := t.In(p.loc)
	year := local.Year()

	flowering, ok1 := p.milestone(spot.Flowering, year)
	bloomStart, ok2 := p.milestone(spot.FullBloomStart, year)
	if !ok1 || !ok2 {
		return Blend{}, false
	}
	bloomEnd := bloomStart.AddDate(0, 0, fullBloomEndFallbackDays)
	if !spot.FullBloomEnd.IsZero() {
		end, ok := p.milestone(spot.FullBloomEnd, year)
		if !ok {
			return Blend{}, false
		}
		bloomEnd = end
	}
	leaf := bloomEnd.AddDate(0, 0, leafDelayDays)

	switch {
	case local.Before(flowering):
		return blendBare, true
	case local.Before(bloomStart):
		return blendFromBloom(fraction(local, flowering, bloomStart)), true
	case local.Before(bloomEnd):
		return blendBloom, true
	case local.Before(leaf):
		// (0.5,0.5) at bloom end towards (1,0) at the leaf date.
		f := fraction(local, bloomEnd, leaf)
		return blendFromBloom(0.5 - 0.5*f), true
	default:
		return blendBare, true
	}
}

func (p *Interpolator) milestone(md MonthDay, year int) (time.Time, bool) {
	d, ok := md.On(year, p.loc)
	if !ok {
		return time.Time{}, false
	}
	return d.Add(milestoneHour * time.Hour), true
}

// fraction returns how far t lies between from and to, clamped to [0,1].
func fraction(t, from, to time.Time) float64 {
	span := to.Sub(from)
	if span <= 0 {
		return 1
	}
	f := float64(t.Sub(from)) / float64(span)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
