// Package domain models tree photo submissions and the bloom assessments
// derived from them.
//
// # Data Source
//
// The tree registry publishes one JSON message per uploaded tree photo to the
// Kafka source topic:
//
//	{"tree_id":"t-123","photo_date":"2025-04-20T09:30:00+09:00",
//	 "latitude":40.8244,"longitude":140.74,"prefecture_code":"02"}
//
// photo_date is RFC 3339. A value without a zone offset is read as UTC, and an
// empty value falls back to the message timestamp. prefecture_code is optional;
// when absent the prefecture is resolved by reverse geocoding (see
// [EnrichWithPrefecture]).
//
// # Prefecture Codes
//
// Codes are the two-digit JIS X 0401 numbers "01" (北海道) through "47"
// (沖縄県). Submissions may also carry a prefecture name or an ISO 3166-2 code
// ("JP-02"); both are normalised to the two-digit form.
//
// # Assessment
//
// Each submission produces one [BloomAssessment]:
//
//   - bloom_status is the stage key on the photo's civil date in the engine's
//     time zone (before_bloom, blooming, 30_percent, 50_percent, full_bloom,
//     falling, with_leaves, leaves_only). When no stage can be given the field
//     is omitted and indeterminate_reason says why.
//   - vitality_noleaf_weight and vitality_bloom_weight are the estimator
//     weights for the photo instant. They always sum to 1. Without a station
//     the leafless estimator carries the full weight.
//
// prefecture_source records where the prefecture came from: "event",
// "reverse", "original" (geocoder found nothing) or "failed".
package domain
