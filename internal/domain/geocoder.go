package domain

import "context"

// GeocodingResult contains the administrative region returned by a geocoding
// provider.
type GeocodingResult struct {
	PrefectureCode string // two-digit code, empty when the region is not a prefecture
	RegionName     string
	PlaceName      string
	Confidence     float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves the prefecture containing a coordinate.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
