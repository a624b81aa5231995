package phenology

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Station table column headers.
const (
	colSpotID         = "地点番号"
	colPrefecture     = "都道府県"
	colAddress        = "住所"
	colLat            = "緯度（10進法）"
	colLon            = "経度（10進法）"
	colFlowering      = "開花予想日"
	colFullBloomStart = "満開開始予想日"
	colFullBloomEnd   = "満開終了予想日"
	colVariety        = "予想品種"
	colUpdated        = "発表日"
)

var spotColumns = []string{
	colSpotID, colPrefecture, colAddress, colLat, colLon,
	colFlowering, colFullBloomStart, colFullBloomEnd, colVariety, colUpdated,
}

// Prefecture state table column positions.
const (
	offColCode = iota
	offColName
	offColFlowering
	offColThirty
	offColFifty
	offColFullBloom
	offColDecline
	offColWithLeaves
	offColLeavesOnly
	offColCount
)

// prefectureCodeRe matches data rows; header and example rows do not start
// with a two-digit code.
var prefectureCodeRe = regexp.MustCompile(`^\d{2}$`)

var (
	// ErrColumnCount is reported for rows with too few columns.
	ErrColumnCount = errors.New("wrong column count")
	// ErrMissingColumn is returned when the station header lacks a column.
	ErrMissingColumn = errors.New("missing column")
)

// Skip records a source row that was not loaded.
type Skip struct {
	Line   int
	Key    string // station number or prefecture code, when known
	Reason error
}

func (s Skip) Error() string {
	if s.Key == "" {
		return fmt.Sprintf("line %d: %v", s.Line, s.Reason)
	}
	return fmt.Sprintf("line %d (%s): %v", s.Line, s.Key, s.Reason)
}

func (s Skip) Unwrap() error { return s.Reason }

// Report summarises one load of both reference tables.
type Report struct {
	Spots       int
	Offsets     int
	SpotSkips   []Skip
	OffsetSkips []Skip
}

// Load reads both tables and builds an Engine. The error is non-nil only when a
// table cannot be read at all; bad rows are listed in the Report.
func Load(spotsSrc, offsetsSrc io.Reader, loc *time.Location) (*Engine, Report, error) {
	spots, spotSkips, err := LoadSpots(spotsSrc)
	if err != nil {
		return nil, Report{}, fmt.Errorf("load spots: %w", err)
	}
	rows, rowSkips, err := LoadOffsetRows(offsetsSrc)
	if err != nil {
		return nil, Report{}, fmt.Errorf("load offsets: %w", err)
	}
	table, tableSkips := NewOffsetTable(rows)

	report := Report{
		Spots:       len(spots),
		Offsets:     table.Len(),
		SpotSkips:   spotSkips,
		OffsetSkips: append(rowSkips, tableSkips...),
	}
	return NewEngine(NewSpotIndex(spots), table, loc), report, nil
}

// LoadSpots reads the station table. Columns are located by header name.
func LoadSpots(src io.Reader) ([]Spot, []Skip, error) {
	r := newCSVReader(src)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(stripBOM(h))] = i
	}
	for _, c := range spotColumns {
		if _, ok := index[c]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var (
		spots []Spot
		skips []Skip
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line := recordLine(r, err)
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skips = append(skips, Skip{Line: line, Reason: pe.Err})
				continue
			}
			return nil, nil, err
		}
		if blankRecord(rec) {
			continue
		}
		spot, err := parseSpot(rec, index)
		if err != nil {
			skips = append(skips, Skip{Line: line, Key: field(rec, index[colSpotID]), Reason: err})
			continue
		}
		spots = append(spots, spot)
	}
	return spots, skips, nil
}

func parseSpot(rec []string, index map[string]int) (Spot, error) {
	for _, c := range spotColumns {
		if index[c] >= len(rec) {
			return Spot{}, fmt.Errorf("%w: %d fields", ErrColumnCount, len(rec))
		}
	}
	get := func(col string) string { return field(rec, index[col]) }

	lat, err := strconv.ParseFloat(get(colLat), 64)
	if err != nil {
		return Spot{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(get(colLon), 64)
	if err != nil {
		return Spot{}, fmt.Errorf("longitude: %w", err)
	}
	if err := ValidateCoordinate(lat, lon); err != nil {
		return Spot{}, err
	}

	flowering, err := ParseMonthDay(get(colFlowering))
	if err != nil {
		return Spot{}, fmt.Errorf("flowering date: %w", err)
	}
	bloomStart, err := ParseMonthDay(get(colFullBloomStart))
	if err != nil {
		return Spot{}, fmt.Errorf("full bloom start: %w", err)
	}
	bloomEnd, err := optionalMonthDay(get(colFullBloomEnd))
	if err != nil {
		return Spot{}, fmt.Errorf("full bloom end: %w", err)
	}
	updated, err := optionalMonthDay(get(colUpdated))
	if err != nil {
		return Spot{}, fmt.Errorf("updated date: %w", err)
	}

	prefecture := get(colPrefecture)
	address := strings.TrimPrefix(get(colAddress), prefecture)

	return Spot{
		ID:             get(colSpotID),
		Prefecture:     prefecture,
		Address:        prefecture + address,
		Lat:            lat,
		Lon:            lon,
		Flowering:      flowering,
		FullBloomStart: bloomStart,
		FullBloomEnd:   bloomEnd,
		Variety:        get(colVariety),
		Updated:        updated,
	}, nil
}

// optionalMonthDay treats an empty cell or the sentinel as absent.
func optionalMonthDay(s string) (MonthDay, error) {
	if s == "" {
		return MonthDay{}, nil
	}
	md, err := ParseMonthDay(s)
	if errors.Is(err, ErrNoData) {
		return MonthDay{}, nil
	}
	return md, err
}

// LoadOffsetRows reads the prefecture state table. Rows that do not start with
// a two-digit prefecture code (titles, the example row) are ignored.
func LoadOffsetRows(src io.Reader) ([]OffsetRow, []Skip, error) {
	r := newCSVReader(src)

	var (
		rows  []OffsetRow
		skips []Skip
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line := recordLine(r, err)
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skips = append(skips, Skip{Line: line, Reason: pe.Err})
				continue
			}
			return nil, nil, err
		}
		if len(rec) == 0 {
			continue
		}
		code := strings.TrimSpace(stripBOM(rec[offColCode]))
		if !prefectureCodeRe.MatchString(code) {
			continue
		}
		if len(rec) < offColCount {
			skips = append(skips, Skip{Line: line, Key: code,
				Reason: fmt.Errorf("%w: %d fields", ErrColumnCount, len(rec))})
			continue
		}
		row, err := parseOffsetRow(rec, code)
		if err != nil {
			skips = append(skips, Skip{Line: line, Key: code, Reason: err})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, skips, nil
}

func parseOffsetRow(rec []string, code string) (OffsetRow, error) {
	row := OffsetRow{Code: code, Name: field(rec, offColName)}

	required := []struct {
		col  int
		name string
		dst  *MonthDay
	}{
		{offColFlowering, "flowering", &row.Flowering},
		{offColThirty, "30% bloom", &row.ThirtyPercent},
		{offColFifty, "50% bloom", &row.FiftyPercent},
		{offColDecline, "decline start", &row.DeclineStart},
		{offColWithLeaves, "flowers and leaves", &row.FlowersAndLeaves},
		{offColLeavesOnly, "leaves only", &row.LeavesOnly},
	}
	for _, c := range required {
		if field(rec, c.col) == NoDataSentinel {
			return OffsetRow{Code: code, Name: row.Name, NoData: true}, nil
		}
	}
	for _, c := range required {
		md, err := ParseMonthDay(field(rec, c.col))
		if err != nil {
			return OffsetRow{}, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = md
	}
	// Full bloom may be blank; the station table supplies the value used.
	fullBloom, err := optionalMonthDay(field(rec, offColFullBloom))
	if err != nil {
		return OffsetRow{}, fmt.Errorf("full bloom: %w", err)
	}
	row.FullBloom = fullBloom
	return row, nil
}

func newCSVReader(src io.Reader) *csv.Reader {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r
}

func recordLine(r *csv.Reader, err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.StartLine
	}
	if err != nil {
		return 0
	}
	line, _ := r.FieldPos(0)
	return line
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func stripBOM(s string) string { return strings.TrimPrefix(s, "\ufeff") }
