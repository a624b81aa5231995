package phenology

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in metres used for haversine distance.
const EarthRadius = 6371000.0

// ErrInvalidCoordinate indicates a non-finite or out-of-range latitude/longitude.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Spot is a forecast station with its bloom-season milestones.
type Spot struct {
	ID             string
	Prefecture     string
	Address        string
	Lat            float64
	Lon            float64
	Flowering      MonthDay
	FullBloomStart MonthDay
	FullBloomEnd   MonthDay // zero when unpublished
	Variety        string
	Updated        MonthDay
}

// fullBloomEndFallbackDays is added to full bloom start when a station
// publishes no full-bloom end.
const fullBloomEndFallbackDays = 5

// ValidateCoordinate returns an error wrapping ErrInvalidCoordinate when lat/lon
// are not finite or fall outside [-90,90] / [-180,180].
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lon)
	}
	return nil
}

func mustValidCoordinate(lat, lon float64) {
	if err := ValidateCoordinate(lat, lon); err != nil {
		panic(err)
	}
}

// Distance returns the great-circle distance in metres using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadius * c
}

// SpotIndex answers nearest-station queries over a fixed station set.
//
// The scan is linear; station sets are a few hundred rows. Ties go to the
// station loaded first, which follows file order and is not a ranking.
type SpotIndex struct {
	spots []Spot
}

// NewSpotIndex copies spots into a new index.
func NewSpotIndex(spots []Spot) *SpotIndex {
	cp := make([]Spot, len(spots))
	copy(cp, spots)
	return &SpotIndex{spots: cp}
}

// Len returns the number of stations.
func (x *SpotIndex) Len() int { return len(x.spots) }

// Spots returns a copy of the indexed stations in load order.
func (x *SpotIndex) Spots() []Spot {
	cp := make([]Spot, len(x.spots))
	copy(cp, x.spots)
	return cp
}

// Nearest returns the station closest to lat/lon. ok is false when the index
// is empty. It panics on an invalid coordinate.
func (x *SpotIndex) Nearest(lat, lon float64) (spot Spot, ok bool) {
	spot, _, ok = x.NearestWithDistance(lat, lon)
	return spot, ok
}

// NearestWithDistance is Nearest that also returns the distance in metres.
func (x *SpotIndex) NearestWithDistance(lat, lon float64) (Spot, float64, bool) {
	mustValidCoordinate(lat, lon)
	if len(x.spots) == 0 {
		return Spot{}, 0, false
	}

	best := -1
	minDist := math.Inf(1)
	for i := range x.spots {
		d := Distance(lat, lon, x.spots[i].Lat, x.spots[i].Lon)
		if d < minDist {
			best = i
			minDist = d
		}
	}
	if best < 0 {
		return Spot{}, 0, false
	}
	return x.spots[best], minDist, true
}
