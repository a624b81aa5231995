package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
)

// BloomQuerier answers point queries against the loaded reference data.
// *phenology.Engine implements it.
type BloomQuerier interface {
	Location() *time.Location
	NearestStation(lat, lon float64) (phenology.Spot, bool)
	EvaluateBloomStatus(day time.Time, lat, lon float64, prefectureCode string) phenology.Evaluation
	ObservationDay(t time.Time) time.Time
	VitalityBlend(t time.Time, lat, lon float64) (phenology.Blend, bool)
}

// fullBloomEndFallbackDays matches the engine's assumed full bloom length
// when a station has not published an end date.
const fullBloomEndFallbackDays = 5

type infoHandler struct {
	engine BloomQuerier
	logger *slog.Logger
}

type floweringDateResponse struct {
	SpotID           string `json:"spot_id"`
	Address          string `json:"address"`
	FloweringDate    string `json:"flowering_date"`
	FullBloomDate    string `json:"full_bloom_date"`
	FullBloomEndDate string `json:"full_bloom_end_date"`
	Variety          string `json:"variety"`
	UpdatedDate      string `json:"updated_date,omitempty"`
}

type bloomStatusResponse struct {
	ObservationDate      string           `json:"observation_date"`
	PrefectureCode       string           `json:"prefecture_code,omitempty"`
	BloomStatus          *phenology.Stage `json:"bloom_status,omitempty"`
	BloomStatusLabel     string           `json:"bloom_status_label,omitempty"`
	IndeterminateReason  phenology.Reason `json:"indeterminate_reason,omitempty"`
	SpotID               string           `json:"spot_id,omitempty"`
	DistanceMeters       float64          `json:"distance_m,omitempty"`
	VitalityNoLeafWeight float64          `json:"vitality_noleaf_weight"`
	VitalityBloomWeight  float64          `json:"vitality_bloom_weight"`
}

// handleFloweringDate returns the nearest station's forecast dates placed on
// the requested year.
func (h *infoHandler) handleFloweringDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon, err := parseCoordinate(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	day, err := h.parseDay(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	spot, ok := h.engine.NearestStation(lat, lon)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no flowering forecast for (%v, %v)", lat, lon))
		return
	}

	year := day.Year()
	end := spot.FullBloomEnd
	resp := floweringDateResponse{
		SpotID:        spot.ID,
		Address:       spot.Address,
		FloweringDate: formatOn(spot.Flowering, year),
		FullBloomDate: formatOn(spot.FullBloomStart, year),
		Variety:       spot.Variety,
		UpdatedDate:   formatOn(spot.Updated, year),
	}
	if end.IsZero() {
		if start, ok := spot.FullBloomStart.On(year, time.UTC); ok {
			resp.FullBloomEndDate = start.AddDate(0, 0, fullBloomEndFallbackDays).Format(time.DateOnly)
		}
	} else {
		resp.FullBloomEndDate = formatOn(end, year)
	}

	h.logger.Debug("flowering date query", "lat", lat, "lon", lon, "spot_id", spot.ID)
	writeJSON(w, http.StatusOK, resp)
}

// handleBloomStatus classifies a point on a date. Vitality weights are taken
// at local noon of that date.
func (h *infoHandler) handleBloomStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon, err := parseCoordinate(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	day, err := h.parseDay(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	code, err := parsePrefecture(q.Get("prefecture_code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ev := h.engine.EvaluateBloomStatus(day, lat, lon, code)
	resp := bloomStatusResponse{
		ObservationDate: day.Format(time.DateOnly),
		PrefectureCode:  code,
		SpotID:          ev.Spot.ID,
		DistanceMeters:  ev.Distance,
	}
	if ev.OK() {
		stage := ev.Stage
		resp.BloomStatus = &stage
		resp.BloomStatusLabel = stage.Label()
	} else {
		resp.IndeterminateReason = ev.Reason
	}

	noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, h.engine.Location())
	blend, ok := h.engine.VitalityBlend(noon, lat, lon)
	if !ok {
		blend = phenology.Blend{NoLeaf: 1}
	}
	resp.VitalityNoLeafWeight = blend.NoLeaf
	resp.VitalityBloomWeight = blend.Bloom

	writeJSON(w, http.StatusOK, resp)
}

// parseDay reads the optional date parameter (YYYY-MM-DD). It defaults to
// today in the engine's time zone.
func (h *infoHandler) parseDay(q url.Values) (time.Time, error) {
	s := q.Get("date")
	if s == "" {
		return h.engine.ObservationDay(time.Now()), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil || t.IsZero() {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseCoordinate(q url.Values) (float64, float64, error) {
	latStr, lonStr := q.Get("latitude"), q.Get("longitude")
	if latStr == "" || lonStr == "" {
		return 0, 0, errors.New("latitude and longitude are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonStr)
	}
	if err := phenology.ValidateCoordinate(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// parsePrefecture accepts a JIS code or a prefecture name. Empty is allowed
// and classifies as indeterminate.
func parsePrefecture(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if _, ok := phenology.PrefectureName(s); ok {
		return s, nil
	}
	if code, ok := phenology.PrefectureCode(s); ok {
		return code, nil
	}
	return "", fmt.Errorf("unknown prefecture_code %q", s)
}

// formatOn renders a month-day on a year, or "" when it is absent or does not
// exist that year.
func formatOn(md phenology.MonthDay, year int) string {
	if md.IsZero() {
		return ""
	}
	t, ok := md.On(year, time.UTC)
	if !ok {
		return ""
	}
	return t.Format(time.DateOnly)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
