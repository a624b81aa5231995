package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
)

// PhotoSubmission is the JSON structure published by the tree registry.
type PhotoSubmission struct {
	TreeID         string   `json:"tree_id"`
	PhotoDate      string   `json:"photo_date"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	PrefectureCode string   `json:"prefecture_code,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Prefecture sources.
const (
	PrefectureSourceEvent    = "event"
	PrefectureSourceReverse  = "reverse"
	PrefectureSourceOriginal = "original"
	PrefectureSourceFailed   = "failed"
)

// Submission is a validated photo submission.
type Submission struct {
	TreeID           string
	PhotoTime        time.Time
	Lat              float64
	Lon              float64
	PrefectureCode   string
	PrefectureSource string
	RawPayload       []byte
}

// SpotRef describes the forecast station an assessment was based on.
type SpotRef struct {
	ID             string  `json:"id"`
	Prefecture     string  `json:"prefecture"`
	Address        string  `json:"address,omitempty"`
	DistanceMeters float64 `json:"distance_m"`
	Flowering      string  `json:"flowering_date"`
	FullBloomStart string  `json:"full_bloom_start_date"`
	FullBloomEnd   string  `json:"full_bloom_end_date,omitempty"`
	Variety        string  `json:"variety,omitempty"`
}

// BloomAssessment is the serialized form destined for the sink topic.
type BloomAssessment struct {
	TreeID           string    `json:"tree_id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	PrefectureCode   string    `json:"prefecture_code,omitempty"`
	PrefectureSource string    `json:"prefecture_source,omitempty"`
	PhotoTime        time.Time `json:"photo_time"`
	ObservationDate  string    `json:"observation_date"`

	BloomStatus         *phenology.Stage `json:"bloom_status,omitempty"`
	BloomStatusLabel    string           `json:"bloom_status_label,omitempty"`
	IndeterminateReason phenology.Reason `json:"indeterminate_reason,omitempty"`
	Spot                *SpotRef         `json:"spot,omitempty"`

	VitalityNoLeafWeight float64 `json:"vitality_noleaf_weight"`
	VitalityBloomWeight  float64 `json:"vitality_bloom_weight"`

	ProcessedAt time.Time `json:"processed_at"`
}

// StatusKey returns the bloom status key, or "indeterminate".
func (a BloomAssessment) StatusKey() string {
	if a.BloomStatus == nil {
		return "indeterminate"
	}
	return a.BloomStatus.String()
}
