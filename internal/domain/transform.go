package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
)

// Submission validation errors.
var (
	ErrMissingTreeID     = errors.New("missing tree_id")
	ErrMissingCoordinate = errors.New("missing latitude or longitude")
	ErrInvalidPhotoDate  = errors.New("invalid photo_date")
	ErrUnknownPrefecture = errors.New("unknown prefecture_code")
)

// photoDateLayouts are tried in order. Layouts without a zone parse as UTC.
var photoDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseRawEvent unmarshals and validates a photo submission.
func ParseRawEvent(raw RawEvent) (Submission, error) {
	var rec PhotoSubmission
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Submission{}, fmt.Errorf("parse raw event: %w", err)
	}

	treeID := strings.TrimSpace(rec.TreeID)
	if treeID == "" {
		return Submission{}, ErrMissingTreeID
	}
	if rec.Latitude == nil || rec.Longitude == nil {
		return Submission{}, fmt.Errorf("tree %s: %w", treeID, ErrMissingCoordinate)
	}
	lat, lon := *rec.Latitude, *rec.Longitude
	if err := phenology.ValidateCoordinate(lat, lon); err != nil {
		return Submission{}, fmt.Errorf("tree %s: %w", treeID, err)
	}

	photoTime, err := resolvePhotoTime(rec.PhotoDate, raw.Timestamp)
	if err != nil {
		return Submission{}, fmt.Errorf("tree %s: %w", treeID, err)
	}

	code, err := normalizePrefectureCode(rec.PrefectureCode)
	if err != nil {
		return Submission{}, fmt.Errorf("tree %s: %w", treeID, err)
	}

	return Submission{
		TreeID:         treeID,
		PhotoTime:      photoTime,
		Lat:            lat,
		Lon:            lon,
		PrefectureCode: code,
		RawPayload:     raw.Value,
	}, nil
}

// resolvePhotoTime parses the submitted photo date. An empty value falls back
// to the message timestamp, then to the current time.
func resolvePhotoTime(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if !fallback.IsZero() {
			return fallback, nil
		}
		return clock.Now(), nil
	}
	return parsePhotoDate(s)
}

// parsePhotoDate rejects the zero instant; the engine treats it as misuse.
func parsePhotoDate(s string) (time.Time, error) {
	for _, layout := range photoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil && !t.IsZero() {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPhotoDate, s)
}

// normalizePrefectureCode accepts a two-digit code, an ISO 3166-2 code or a
// prefecture name. Empty input stays empty.
func normalizePrefectureCode(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, ok := phenology.PrefectureName(s); ok {
		return s, nil
	}
	if code, ok := phenology.PrefectureCode(s); ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPrefecture, s)
}

// AssessBloom classifies a submission's bloom stage and computes its vitality
// weights.
func AssessBloom(engine *phenology.Engine, sub Submission) BloomAssessment {
	day := engine.ObservationDay(sub.PhotoTime)
	ev := engine.EvaluateBloomStatus(day, sub.Lat, sub.Lon, sub.PrefectureCode)

	out := BloomAssessment{
		TreeID:           sub.TreeID,
		Latitude:         sub.Lat,
		Longitude:        sub.Lon,
		PrefectureCode:   sub.PrefectureCode,
		PrefectureSource: sub.PrefectureSource,
		PhotoTime:        sub.PhotoTime,
		ObservationDate:  day.Format(time.DateOnly),
		ProcessedAt:      clock.Now(),
	}

	if ev.OK() {
		stage := ev.Stage
		out.BloomStatus = &stage
		out.BloomStatusLabel = stage.Label()
	} else {
		out.IndeterminateReason = ev.Reason
	}
	if ev.Spot.ID != "" {
		out.Spot = newSpotRef(ev.Spot, ev.Distance)
	}

	blend, ok := engine.VitalityBlend(sub.PhotoTime, sub.Lat, sub.Lon)
	if !ok {
		blend = phenology.Blend{NoLeaf: 1}
	}
	out.VitalityNoLeafWeight = blend.NoLeaf
	out.VitalityBloomWeight = blend.Bloom
	return out
}

func newSpotRef(s phenology.Spot, distance float64) *SpotRef {
	ref := &SpotRef{
		ID:             s.ID,
		Prefecture:     s.Prefecture,
		Address:        s.Address,
		DistanceMeters: distance,
		Flowering:      s.Flowering.String(),
		FullBloomStart: s.FullBloomStart.String(),
		Variety:        s.Variety,
	}
	if !s.FullBloomEnd.IsZero() {
		ref.FullBloomEnd = s.FullBloomEnd.String()
	}
	return ref
}
