package domain

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
)

// EnrichWithPrefecture fills in the prefecture code of a submission that does
// not carry one. If geocoder is nil or geocoding fails, the submission is
// returned with PrefectureSource set accordingly (graceful degradation).
func EnrichWithPrefecture(ctx context.Context, sub Submission, geocoder Geocoder, logger *slog.Logger) Submission {
	if sub.PrefectureCode != "" {
		sub.PrefectureSource = PrefectureSourceEvent
		return sub
	}
	if geocoder == nil {
		return sub
	}

	result, err := geocoder.ReverseGeocode(ctx, sub.Lat, sub.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"tree_id", sub.TreeID,
			"lat", sub.Lat,
			"lon", sub.Lon,
			"error", err,
		)
		sub.PrefectureSource = PrefectureSourceFailed
		return sub
	}

	code := result.PrefectureCode
	if code == "" && result.RegionName != "" {
		code, _ = phenology.PrefectureCode(result.RegionName)
	}
	if _, known := phenology.PrefectureName(code); known {
		sub.PrefectureCode = code
		sub.PrefectureSource = PrefectureSourceReverse
		return sub
	}

	if result.RegionName != "" {
		logger.Debug("region is not a prefecture",
			"tree_id", sub.TreeID,
			"region", result.RegionName,
		)
	}
	sub.PrefectureSource = PrefectureSourceOriginal
	return sub
}
