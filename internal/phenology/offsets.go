package phenology

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// offsetBaseYear is the carrier year for offset rows. Only day differences are
// kept, so any non-leap year works; 2025 matches the published table.
const offsetBaseYear = 2025

// ErrNegativeOffset is reported for a row whose milestones run backwards.
var ErrNegativeOffset = errors.New("negative offset")

// Offsets are per-prefecture day counts between bloom milestones.
type Offsets struct {
	ToThirtyPercent    int // flowering -> 30% bloom
	ToFiftyPercent     int // flowering -> 50% bloom
	ToFlowersAndLeaves int // decline start -> flowers and leaves
	ToLeavesOnly       int // decline start -> leaves only
}

// OffsetRow is one row of the prefecture state table. NoData rows carry the
// "-" sentinel and have zero milestones.
type OffsetRow struct {
	Code             string
	Name             string
	NoData           bool
	Flowering        MonthDay
	ThirtyPercent    MonthDay
	FiftyPercent     MonthDay
	FullBloom        MonthDay
	DeclineStart     MonthDay
	FlowersAndLeaves MonthDay
	LeavesOnly       MonthDay
	Line             int
}

// OffsetTable maps prefecture codes to Offsets. It is immutable.
type OffsetTable struct {
	byCode map[string]Offsets
}

// NewOffsetTable derives offsets from rows. NoData rows and rows whose
// milestones cannot be placed or run backwards are left out and reported.
// A later row for the same code replaces an earlier one.
func NewOffsetTable(rows []OffsetRow) (*OffsetTable, []Skip) {
	t := &OffsetTable{byCode: make(map[string]Offsets, len(rows))}
	var skips []Skip
	for _, row := range rows {
		if row.NoData {
			skips = append(skips, Skip{Line: row.Line, Key: row.Code, Reason: ErrNoData})
			continue
		}
		off, err := deriveOffsets(row)
		if err != nil {
			skips = append(skips, Skip{Line: row.Line, Key: row.Code, Reason: err})
			continue
		}
		t.byCode[row.Code] = off
	}
	return t, skips
}

func deriveOffsets(row OffsetRow) (Offsets, error) {
	dates := make([]time.Time, 0, 6)
	for _, md := range []MonthDay{
		row.Flowering, row.ThirtyPercent, row.FiftyPercent,
		row.DeclineStart, row.FlowersAndLeaves, row.LeavesOnly,
	} {
		d, ok := md.On(offsetBaseYear, time.UTC)
		if !ok {
			return Offsets{}, fmt.Errorf("%w: %q", ErrInvalidMonthDay, md.String())
		}
		dates = append(dates, d)
	}
	flowering, thirty, fifty := dates[0], dates[1], dates[2]
	decline, withLeaves, leavesOnly := dates[3], dates[4], dates[5]

	off := Offsets{
		ToThirtyPercent:    daysBetween(flowering, thirty),
		ToFiftyPercent:     daysBetween(flowering, fifty),
		ToFlowersAndLeaves: daysBetween(decline, withLeaves),
		ToLeavesOnly:       daysBetween(decline, leavesOnly),
	}
	if off.ToThirtyPercent < 0 || off.ToFiftyPercent < 0 ||
		off.ToFlowersAndLeaves < 0 || off.ToLeavesOnly < 0 {
		return Offsets{}, fmt.Errorf("%w: %+v", ErrNegativeOffset, off)
	}
	return off, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Get returns the offsets for a prefecture code.
func (t *OffsetTable) Get(code string) (Offsets, bool) {
	off, ok := t.byCode[code]
	return off, ok
}

// Len returns the number of prefectures with offsets.
func (t *OffsetTable) Len() int { return len(t.byCode) }

// Codes returns the prefecture codes in ascending order.
func (t *OffsetTable) Codes() []string {
	codes := make([]string, 0, len(t.byCode))
	for c := range t.byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
