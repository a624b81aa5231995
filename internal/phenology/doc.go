// Package phenology estimates the seasonal state of a cherry tree from its
// location and the date a photo was taken.
//
// # Reference Data
//
// Two published tables are loaded once at startup and never mutated:
//
// Station table ("flowering_date.csv"):
//
//	One row per forecast station: station number, prefecture, address,
//	decimal latitude/longitude, forecast flowering date, forecast start and
//	end of full bloom, forecast variety and publication date.
//	Dates are written as "4月17日" (month/day only). The table is re-published
//	every season, so the year carries no meaning; a baseline year is assigned
//	purely as a carrier and replaced with the observation year at query time.
//
// Prefecture state table ("260121_bloom_state.csv"):
//
//	One row per JIS prefecture code ("01".."47") with eight typical milestone
//	dates: flowering, 30% bloom, 50% bloom, full bloom, start of decline,
//	flowers-and-leaves, leaves only. Only the day differences matter and
//	are kept as [Offsets]. Prefectures without a meaningful bloom signal
//	(Okinawa) carry "-" in every date column. Such rows are omitted from the
//	[OffsetTable]; the prefecture is absent rather than zero-offset.
//
// # Bloom Stages
//
// [Classifier] maps a date to one of eight ordered [Stage] values using the
// nearest station's milestones and the prefecture offsets:
//
//	< flowering                       BeforeBloom
//	< flowering + offset_30           Opening
//	< flowering + offset_50           ThirtyPercent
//	< full bloom start                FiftyPercent
//	< full bloom end                  FullBloom
//	< bloom end + offset_with_leaves  Falling
//	< bloom end + offset_leaves_only  FlowersAndLeaves
//	otherwise                         LeavesOnly
//
// A station without a full-bloom end date uses full bloom start + 5 days.
//
// # Vitality Blend
//
// [Interpolator] produces a pair of weights summing to 1 used to mix the
// no-leaf and in-bloom vitality estimators. Milestones are taken at local noon
// in one civil time zone (Asia/Tokyo by default).
//
// # No Data vs Misuse
//
// Missing reference coverage (empty station set, unknown prefecture, a Feb 29
// milestone in a non-leap year) is reported through ok=false results, never
// through errors. Non-finite or out-of-range coordinates and zero times are
// programming errors and panic with [ErrInvalidCoordinate] or [ErrInvalidDate].
//
// All exported types are safe for concurrent use once constructed.
package phenology
