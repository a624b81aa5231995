package phenology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aomoriLat = 40.8244
	aomoriLon = 140.74
)

func aomoriSpot() Spot {
	return Spot{
		ID:             "1",
		Prefecture:     "青森県",
		Address:        "青森県青森市花園",
		Lat:            aomoriLat,
		Lon:            aomoriLon,
		Flowering:      md(time.April, 17),
		FullBloomStart: md(time.April, 22),
		FullBloomEnd:   md(time.April, 26),
	}
}

func newAomoriClassifier(t *testing.T) *Classifier {
	t.Helper()
	table, skips := NewOffsetTable([]OffsetRow{aomoriRow()})
	require.Empty(t, skips)
	return NewClassifier(NewSpotIndex([]Spot{aomoriSpot()}), table)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifier_AomoriSeason(t *testing.T) {
	c := newAomoriClassifier(t)

	tests := []struct {
		date     time.Time
		expected Stage
	}{
		{day(2025, time.April, 16), BeforeBloom},
		{day(2025, time.April, 17), Opening},
		{day(2025, time.April, 18), Opening},
		{day(2025, time.April, 19), ThirtyPercent},
		{day(2025, time.April, 20), FiftyPercent},
		{day(2025, time.April, 21), FiftyPercent},
		{day(2025, time.April, 22), FullBloom},
		{day(2025, time.April, 25), FullBloom},
		{day(2025, time.April, 26), Falling},
		{day(2025, time.April, 27), Falling},
		{day(2025, time.May, 1), FlowersAndLeaves},
		{day(2025, time.May, 2), FlowersAndLeaves},
		{day(2025, time.May, 6), LeavesOnly},
		{day(2025, time.December, 31), LeavesOnly},
		{day(2025, time.January, 1), BeforeBloom},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("01-02"), func(t *testing.T) {
			got, ok := c.Classify(tt.date, aomoriLat, aomoriLon, "02")
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifier_UsesObservationYear(t *testing.T) {
	c := newAomoriClassifier(t)
	for _, year := range []int{2019, 2024, 2031} {
		got, ok := c.Classify(day(year, time.April, 22), aomoriLat, aomoriLon, "02")
		require.True(t, ok)
		assert.Equal(t, FullBloom, got)
	}
}

func TestClassifier_IgnoresTimeOfDay(t *testing.T) {
	c := newAomoriClassifier(t)
	late := time.Date(2025, time.April, 16, 23, 59, 0, 0, DefaultLocation)
	got, ok := c.Classify(late, aomoriLat, aomoriLon, "02")
	require.True(t, ok)
	assert.Equal(t, BeforeBloom, got, "the civil date in the caller's zone decides")
}

func TestClassifier_MonotonicThroughSeason(t *testing.T) {
	c := newAomoriClassifier(t)
	prev := BeforeBloom
	for d := day(2025, time.March, 1); d.Before(day(2025, time.June, 30)); d = d.AddDate(0, 0, 1) {
		got, ok := c.Classify(d, aomoriLat, aomoriLon, "02")
		require.True(t, ok)
		assert.GreaterOrEqual(t, got, prev, d.Format(time.DateOnly))
		prev = got
	}
	assert.Equal(t, LeavesOnly, prev)
}

func TestClassifier_FullBloomEndFallback(t *testing.T) {
	spot := aomoriSpot()
	spot.FullBloomEnd = MonthDay{}
	table, _ := NewOffsetTable([]OffsetRow{aomoriRow()})
	c := NewClassifier(NewSpotIndex([]Spot{spot}), table)

	ev := c.Evaluate(day(2025, time.April, 26), aomoriLat, aomoriLon, "02")
	require.True(t, ev.OK())
	assert.Equal(t, day(2025, time.April, 27), ev.Schedule.FullBloomEnd, "full bloom start + 5 days")
	assert.Equal(t, FullBloom, ev.Stage)

	got, ok := c.Classify(day(2025, time.April, 27), aomoriLat, aomoriLon, "02")
	require.True(t, ok)
	assert.Equal(t, Falling, got)
}

func TestClassifier_Indeterminate(t *testing.T) {
	c := newAomoriClassifier(t)
	date := day(2025, time.April, 20)

	tests := []struct {
		name       string
		classifier *Classifier
		region     string
		reason     Reason
	}{
		{"missing region", c, "", ReasonNoRegion},
		{"region not in table", c, "13", ReasonUnknownRegion},
		{"unknown code", c, "99", ReasonUnknownRegion},
		{"no stations", NewClassifier(NewSpotIndex(nil), c.offsets), "02", ReasonNoStation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.classifier.Classify(date, aomoriLat, aomoriLon, tt.region)
			assert.False(t, ok)
			assert.Equal(t, tt.reason, tt.classifier.Evaluate(date, aomoriLat, aomoriLon, tt.region).Reason)
		})
	}
}

func TestClassifier_NoDataPrefectureIsIndeterminate(t *testing.T) {
	table, _ := NewOffsetTable([]OffsetRow{aomoriRow(), {Code: "47", NoData: true}})
	c := NewClassifier(NewSpotIndex([]Spot{aomoriSpot()}), table)

	_, ok := c.Classify(day(2025, time.February, 1), 26.21, 127.68, "47")
	assert.False(t, ok)
}

func TestClassifier_LeapDayMilestone(t *testing.T) {
	spot := aomoriSpot()
	spot.Flowering = md(time.February, 29)
	spot.FullBloomStart = md(time.March, 5)
	spot.FullBloomEnd = md(time.March, 10)
	table, _ := NewOffsetTable([]OffsetRow{aomoriRow()})
	c := NewClassifier(NewSpotIndex([]Spot{spot}), table)

	ev := c.Evaluate(day(2025, time.March, 1), aomoriLat, aomoriLon, "02")
	assert.False(t, ev.OK())
	assert.Equal(t, ReasonUnsupportedDate, ev.Reason)
	assert.Equal(t, "1", ev.Spot.ID, "the station is still reported")

	got, ok := c.Classify(day(2024, time.March, 1), aomoriLat, aomoriLon, "02")
	require.True(t, ok)
	assert.Equal(t, Opening, got)
}

func TestClassifier_SeasonSpanningYearIsIndeterminate(t *testing.T) {
	spot := aomoriSpot()
	spot.Flowering = md(time.December, 28)
	spot.FullBloomStart = md(time.January, 3)
	spot.FullBloomEnd = md(time.January, 8)
	table, _ := NewOffsetTable([]OffsetRow{aomoriRow()})
	c := NewClassifier(NewSpotIndex([]Spot{spot}), table)

	for _, d := range []time.Time{day(2025, time.January, 4), day(2025, time.December, 30)} {
		ev := c.Evaluate(d, aomoriLat, aomoriLon, "02")
		assert.False(t, ev.OK())
		assert.Equal(t, ReasonSeasonSpansYear, ev.Reason)
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	c := newAomoriClassifier(t)
	date := day(2025, time.April, 23)
	first := c.Evaluate(date, aomoriLat, aomoriLon, "02")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Evaluate(date, aomoriLat, aomoriLon, "02"))
	}
}

func TestClassifier_Misuse(t *testing.T) {
	c := newAomoriClassifier(t)
	assert.Panics(t, func() { c.Classify(time.Time{}, aomoriLat, aomoriLon, "02") })
	assert.Panics(t, func() { c.Classify(day(2025, time.April, 20), 120, aomoriLon, "02") })
}

func TestBuildSchedule(t *testing.T) {
	off := Offsets{ToThirtyPercent: 2, ToFiftyPercent: 3, ToFlowersAndLeaves: 5, ToLeavesOnly: 10}
	sched, reason := BuildSchedule(aomoriSpot(), off, 2025)
	require.Equal(t, ReasonNone, reason)

	assert.Equal(t, Schedule{
		Flowering:        day(2025, time.April, 17),
		ThirtyPercent:    day(2025, time.April, 19),
		FiftyPercent:     day(2025, time.April, 20),
		FullBloomStart:   day(2025, time.April, 22),
		FullBloomEnd:     day(2025, time.April, 26),
		FlowersAndLeaves: day(2025, time.May, 1),
		LeavesOnly:       day(2025, time.May, 6),
	}, sched)
}
