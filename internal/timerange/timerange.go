// Package timerange resolves the time-range command-line selectors into a
// summary mode and a GPS span.
package timerange

import (
	"fmt"
	"strings"
	"time"

	"github.com/tjma12/gwsumm/internal/gpstime"
)

// Mode identifies how the processed interval was chosen.
type Mode int

const (
	ModeDay Mode = iota
	ModeMonth
	ModeYear
	ModeWeek
	ModeGPS
)

func (m Mode) String() string {
	switch m {
	case ModeDay:
		return "DAY"
	case ModeWeek:
		return "WEEK"
	case ModeMonth:
		return "MONTH"
	case ModeYear:
		return "YEAR"
	case ModeGPS:
		return "GPS"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Span is a half-open [Start, End) interval in GPS seconds.
type Span struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Duration returns the span length in seconds.
func (s Span) Duration() int64 {
	return s.End - s.Start
}

// StartUTC returns the span start as UTC wall-clock time.
func (s Span) StartUTC() time.Time {
	return gpstime.ToUTC(s.Start)
}

// EndUTC returns the span end as UTC wall-clock time.
func (s Span) EndUTC() time.Time {
	return gpstime.ToUTC(s.End)
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

// Selection carries the raw time-range selectors from the command line.
// Zero GPS values mean "not given".
type Selection struct {
	Day      string
	Week     string
	Month    string
	Year     string
	GPSStart int64
	GPSEnd   int64

	// StartOfWeek is the weekday name weeks must start on; empty accepts any.
	StartOfWeek string
}

// OptionError reports a malformed or conflicting command-line option.
type OptionError struct {
	Option  string
	Message string
}

func (e *OptionError) Error() string {
	return e.Message
}

const (
	dayLayout   = "20060102"
	monthLayout = "200601"
	yearLayout  = "2006"
)

// Resolve picks the mode and span described by sel. With no selector the
// current UTC calendar day of now is used.
func Resolve(sel Selection, now time.Time) (Mode, Span, error) {
	if err := checkExclusive(sel); err != nil {
		return 0, Span{}, err
	}

	switch {
	case sel.Day != "":
		day, err := parseDate("--day", sel.Day, dayLayout, "YYYYMMDD")
		if err != nil {
			return 0, Span{}, err
		}
		return ModeDay, spanBetween(day, day.AddDate(0, 0, 1)), nil
	case sel.Week != "":
		week, err := parseDate("--week", sel.Week, dayLayout, "YYYYMMDD")
		if err != nil {
			return 0, Span{}, err
		}
		if err := checkWeekStart(sel.Week, week, sel.StartOfWeek); err != nil {
			return 0, Span{}, err
		}
		return ModeWeek, spanBetween(week, week.AddDate(0, 0, 7)), nil
	case sel.Month != "":
		month, err := parseDate("--month", sel.Month, monthLayout, "YYYYMM")
		if err != nil {
			return 0, Span{}, err
		}
		return ModeMonth, spanBetween(month, month.AddDate(0, 1, 0)), nil
	case sel.Year != "":
		year, err := parseDate("--year", sel.Year, yearLayout, "YYYY")
		if err != nil {
			return 0, Span{}, err
		}
		return ModeYear, spanBetween(year, year.AddDate(1, 0, 0)), nil
	case sel.GPSStart != 0 || sel.GPSEnd != 0:
		if sel.GPSStart == 0 || sel.GPSEnd == 0 {
			return 0, Span{}, &OptionError{
				Option:  "--gps-start-time",
				Message: "Please give both --gps-start-time and --gps-end-time.",
			}
		}
		if sel.GPSEnd <= sel.GPSStart {
			return 0, Span{}, &OptionError{
				Option:  "--gps-end-time",
				Message: fmt.Sprintf("--gps-end-time (%d) must be after --gps-start-time (%d).", sel.GPSEnd, sel.GPSStart),
			}
		}
		return ModeGPS, Span{Start: sel.GPSStart, End: sel.GPSEnd}, nil
	default:
		now = now.UTC()
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return ModeDay, spanBetween(day, day.AddDate(0, 0, 1)), nil
	}
}

func checkExclusive(sel Selection) error {
	given := 0
	for _, set := range []bool{
		sel.Day != "",
		sel.Week != "",
		sel.Month != "",
		sel.Year != "",
		sel.GPSStart != 0,
		sel.GPSEnd != 0,
	} {
		if set {
			given++
		}
	}
	gpsPair := sel.GPSStart != 0 && sel.GPSEnd != 0
	if given > 1 && !(given == 2 && gpsPair) {
		return &OptionError{
			Option:  "--day",
			Message: "Please give only one of --day, --week, --month, --year, or --gps-start-time and --gps-end-time.",
		}
	}
	return nil
}

func parseDate(option, value, layout, format string) (time.Time, error) {
	parsed, err := time.ParseInLocation(layout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, &OptionError{
			Option:  option,
			Message: fmt.Sprintf("%s malformed. Please format as %s", option, format),
		}
	}
	return parsed, nil
}

func checkWeekStart(raw string, week time.Time, startOfWeek string) error {
	if strings.TrimSpace(startOfWeek) == "" {
		return nil
	}
	weekday, err := ParseWeekday(startOfWeek)
	if err != nil {
		return err
	}
	if week.Weekday() != weekday {
		return &OptionError{
			Option: "--week",
			Message: fmt.Sprintf("Cannot process week starting on %s. The 'start-of-week' option in the [calendar] section "+
				"of the INI file specifies weeks start on %ss.", raw, startOfWeek),
		}
	}
	return nil
}

// ParseWeekday parses a weekday name such as "monday" or "Sunday".
func ParseWeekday(name string) (time.Weekday, error) {
	clean := strings.ToLower(strings.TrimSpace(name))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.ToLower(day.String()) == clean {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func spanBetween(start, end time.Time) Span {
	return Span{Start: gpstime.FromUTC(start), End: gpstime.FromUTC(end)}
}
