package phenology

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NoDataSentinel marks a date cell that has no published value.
const NoDataSentinel = "-"

var (
	// ErrNoData is returned when a date cell holds the "-" sentinel.
	ErrNoData = errors.New("no data")
	// ErrInvalidMonthDay is returned for date text that is not a calendar month/day.
	ErrInvalidMonthDay = errors.New("invalid month/day")
)

// MonthDay is a calendar day without a year. The zero value means absent.
type MonthDay struct {
	Month time.Month
	Day   int
}

// IsZero reports whether the month/day is absent.
func (md MonthDay) IsZero() bool { return md.Month == 0 && md.Day == 0 }

// On places the month/day on the given year at midnight in loc. It returns
// false when the day does not exist in that year (Feb 29 outside leap years).
func (md MonthDay) On(year int, loc *time.Location) (time.Time, bool) {
	if md.IsZero() {
		return time.Time{}, false
	}
	t := time.Date(year, md.Month, md.Day, 0, 0, 0, 0, loc)
	if t.Month() != md.Month || t.Day() != md.Day {
		return time.Time{}, false
	}
	return t, true
}

// Before reports whether md falls earlier in the calendar year than other.
func (md MonthDay) Before(other MonthDay) bool {
	if md.Month != other.Month {
		return md.Month < other.Month
	}
	return md.Day < other.Day
}

func (md MonthDay) String() string {
	if md.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// ParseMonthDay parses "4月17日", "4/17" or "04-17".
// The "-" sentinel yields ErrNoData.
func ParseMonthDay(s string) (MonthDay, error) {
	s = strings.TrimSpace(s)
	if s == NoDataSentinel {
		return MonthDay{}, ErrNoData
	}
	if s == "" {
		return MonthDay{}, fmt.Errorf("%w: empty", ErrInvalidMonthDay)
	}

	var monthStr, dayStr string
	switch {
	case strings.Contains(s, "月"):
		m, rest, _ := strings.Cut(s, "月")
		monthStr = m
		dayStr = strings.TrimSuffix(rest, "日")
	case strings.Contains(s, "/"):
		monthStr, dayStr, _ = strings.Cut(s, "/")
	case strings.Contains(s, "-"):
		monthStr, dayStr, _ = strings.Cut(s, "-")
	default:
		return MonthDay{}, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}

	month, errM := strconv.Atoi(strings.TrimSpace(monthStr))
	day, errD := strconv.Atoi(strings.TrimSpace(dayStr))
	if errM != nil || errD != nil {
		return MonthDay{}, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}
	md := MonthDay{Month: time.Month(month), Day: day}
	// 2000 is a leap year, so Feb 29 is accepted here and rejected per year by On.
	if month < 1 || month > 12 {
		return MonthDay{}, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}
	if _, ok := md.On(2000, time.UTC); !ok {
		return MonthDay{}, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}
	return md, nil
}
