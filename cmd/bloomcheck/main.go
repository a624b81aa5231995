// Command bloomcheck validates the phenology reference tables and optionally
// runs a single bloom assessment against them. It checks that every row
// parses, that station milestones run forward, that each station's prefecture
// has offsets, and that every covered station yields an ordered schedule and
// well-formed vitality weights for the checked year.
//
// Usage:
//
//	go run ./cmd/bloomcheck \
//	  -spots master/flowering_date.csv \
//	  -offsets master/260121_bloom_state.csv \
//	  -lat 35.69 -lon 139.75 -date 2026-03-30 -region 13
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // -tz must resolve without a system zoneinfo

	"github.com/couchcryptid/sakura-phenology-service/internal/domain"
	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	spotsPath   string
	offsetsPath string
	tz          string
	year        int

	// Optional point query.
	lat, lon string
	date     string
	region   string
}

func main() {
	var opts options
	flag.StringVar(&opts.spotsPath, "spots", "master/flowering_date.csv", "path to the station forecast CSV")
	flag.StringVar(&opts.offsetsPath, "offsets", "master/260121_bloom_state.csv", "path to the prefecture bloom-state CSV")
	flag.StringVar(&opts.tz, "tz", "Asia/Tokyo", "time zone milestones are interpreted in")
	flag.IntVar(&opts.year, "year", time.Now().Year(), "season year to check")
	flag.StringVar(&opts.lat, "lat", "", "latitude for a point query")
	flag.StringVar(&opts.lon, "lon", "", "longitude for a point query")
	flag.StringVar(&opts.date, "date", "", "photo time for the query (RFC 3339 or YYYY-MM-DD, default now)")
	flag.StringVar(&opts.region, "region", "", "prefecture code or name for the query")
	flag.Parse()

	os.Exit(run(opts, os.Stdout))
}

func run(opts options, out io.Writer) int {
	loc, err := time.LoadLocation(opts.tz)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load time zone %q: %v\n", opts.tz, err)
		return 1
	}

	spots, err := os.Open(opts.spotsPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	defer spots.Close() //nolint:errcheck // read-only
	offsets, err := os.Open(opts.offsetsPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	defer offsets.Close() //nolint:errcheck // read-only

	fmt.Fprintln(out, "=== Phenology Reference Data Validation ===")
	fmt.Fprintln(out)

	engine, report, err := phenology.Load(spots, offsets, loc)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load reference data: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkRows(report),
		checkMilestones(engine),
		checkCoverage(engine),
		checkSeason(engine, opts.year),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d spots, %d offsets (%d spot rows skipped, %d offset rows skipped)\n",
		report.Spots, report.Offsets, len(report.SpotSkips), len(report.OffsetSkips))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if opts.lat != "" || opts.lon != "" {
		if err := query(engine, opts, out); err != nil {
			fmt.Fprintf(out, "\nFATAL: query: %v\n", err)
			return 1
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Row parsing ──

func checkRows(report phenology.Report) *phase {
	p := &phase{name: "Phase 1: Row Parsing"}
	for _, s := range report.SpotSkips {
		p.errorf("spots line %d (id %s): %v", s.Line, s.Key, s.Reason)
	}
	for _, s := range report.OffsetSkips {
		p.errorf("offsets line %d (code %s): %v", s.Line, s.Key, s.Reason)
	}
	return p
}

// ── Phase 2: Station milestone order ──

func checkMilestones(engine *phenology.Engine) *phase {
	p := &phase{name: "Phase 2: Station Milestone Order"}
	for _, s := range engine.Spots().Spots() {
		if s.FullBloomStart.Before(s.Flowering) {
			p.errorf("spot %s: full bloom start %s before flowering %s", s.ID, s.FullBloomStart, s.Flowering)
		}
		if !s.FullBloomEnd.IsZero() && s.FullBloomEnd.Before(s.FullBloomStart) {
			p.errorf("spot %s: full bloom end %s before full bloom start %s", s.ID, s.FullBloomEnd, s.FullBloomStart)
		}
	}
	return p
}

// ── Phase 3: Prefecture coverage ──

func checkCoverage(engine *phenology.Engine) *phase {
	p := &phase{name: "Phase 3: Prefecture Offset Coverage"}
	for _, s := range engine.Spots().Spots() {
		code, ok := phenology.PrefectureCode(s.Prefecture)
		if !ok {
			p.errorf("spot %s: unknown prefecture %q", s.ID, s.Prefecture)
			continue
		}
		if _, ok := engine.Offsets().Get(code); !ok {
			p.errorf("spot %s: no offsets for %s (%s)", s.ID, s.Prefecture, code)
		}
	}
	return p
}

// ── Phase 4: Season sweep ──
// Stations without offsets are reported by phase 3 and skipped here.

func checkSeason(engine *phenology.Engine, year int) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Season Sweep (%d)", year)}
	interp := phenology.NewInterpolator(engine.Spots(), engine.Location())

	for _, s := range engine.Spots().Spots() {
		code, _ := phenology.PrefectureCode(s.Prefecture)
		off, ok := engine.Offsets().Get(code)
		if !ok {
			continue
		}

		sched, reason := phenology.BuildSchedule(s, off, year)
		if reason != phenology.ReasonNone {
			p.errorf("spot %s: schedule indeterminate: %s", s.ID, reason)
			continue
		}
		checkScheduleOrder(p, s.ID, sched)

		start := time.Date(year, time.January, 1, 12, 0, 0, 0, engine.Location())
		for at := start; at.Year() == year; at = at.AddDate(0, 0, 1) {
			b, ok := interp.BlendAt(s, at)
			if !ok {
				p.errorf("spot %s: no vitality blend on %s", s.ID, at.Format(time.DateOnly))
				break
			}
			if b.NoLeaf < 0 || b.Bloom < 0 || b.NoLeaf+b.Bloom != 1 {
				p.errorf("spot %s: malformed blend %+v on %s", s.ID, b, at.Format(time.DateOnly))
				break
			}
		}
	}
	return p
}

func checkScheduleOrder(p *phase, id string, sched phenology.Schedule) {
	steps := []struct {
		name string
		at   time.Time
	}{
		{"flowering", sched.Flowering},
		{"30%", sched.ThirtyPercent},
		{"50%", sched.FiftyPercent},
		{"full bloom start", sched.FullBloomStart},
		{"full bloom end", sched.FullBloomEnd},
		{"flowers and leaves", sched.FlowersAndLeaves},
		{"leaves only", sched.LeavesOnly},
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].at.Before(steps[i-1].at) {
			p.errorf("spot %s: %s %s before %s %s", id,
				steps[i].name, steps[i].at.Format(time.DateOnly),
				steps[i-1].name, steps[i-1].at.Format(time.DateOnly))
		}
	}
}

// ── Point query ──

func query(engine *phenology.Engine, opts options, out io.Writer) error {
	lat, err := strconv.ParseFloat(opts.lat, 64)
	if err != nil {
		return fmt.Errorf("invalid -lat %q", opts.lat)
	}
	lon, err := strconv.ParseFloat(opts.lon, 64)
	if err != nil {
		return fmt.Errorf("invalid -lon %q", opts.lon)
	}
	if err := phenology.ValidateCoordinate(lat, lon); err != nil {
		return err
	}

	at, err := parseQueryTime(opts.date, engine.Location())
	if err != nil {
		return err
	}

	code := opts.region
	if code != "" {
		if _, ok := phenology.PrefectureName(code); !ok {
			resolved, ok := phenology.PrefectureCode(code)
			if !ok {
				return fmt.Errorf("unknown -region %q", opts.region)
			}
			code = resolved
		}
	}

	// Freeze processed_at to the photo time so output is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(at))
	defer domain.SetClock(nil)

	assessment := domain.AssessBloom(engine, domain.Submission{
		TreeID:         "bloomcheck",
		PhotoTime:      at,
		Lat:            lat,
		Lon:            lon,
		PrefectureCode: code,
	})

	data, err := json.MarshalIndent(assessment, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n--- Assessment ---\n%s\n", data)
	return nil
}

// parseQueryTime accepts RFC 3339 or a bare date, which is taken at local noon.
func parseQueryTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q", s)
	}
	return d.Add(12 * time.Hour), nil
}
