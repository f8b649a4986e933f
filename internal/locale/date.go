package locale

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the display layout for every accepted date
	DateLayout = "02/01/2006"

	minYear = 1900
	maxYear = 2100
)

// Three-letter month abbreviations. Portuguese first; the English spellings
// that differ are accepted too since some supplier systems emit them.
var monthAbbreviations = map[string]time.Month{
	"jan": time.January,
	"fev": time.February,
	"mar": time.March,
	"abr": time.April,
	"mai": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August,
	"set": time.September,
	"out": time.October,
	"nov": time.November,
	"dez": time.December,
	"feb": time.February,
	"apr": time.April,
	"may": time.May,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"dec": time.December,
}

var (
	isoLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006/01/02",
	}

	monthNameDate = regexp.MustCompile(`^(\d{1,2})[-./\s]([A-Za-z]{3})[-./\s](\d{2,4})$`)
	numericDate   = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{2,4})$`)
	hasDigit      = regexp.MustCompile(`\d`)
)

// ParseDate parses a raw date token. It tries ISO layouts, then DD-MMM-YY with
// a Portuguese month table, then DD/MM/YYYY and DD/MM/YY, and finally the US
// MM/DD/YYYY and MM/DD/YY orders. All results are in UTC. It never panics and
// reports false when nothing matches or the year falls outside 1900-2100.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !hasDigit.MatchString(s) {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			if !inYearRange(t.Year()) {
				return time.Time{}, false
			}
			return truncateDay(t), true
		}
	}

	if m := monthNameDate.FindStringSubmatch(s); m != nil {
		month, ok := monthAbbreviations[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		return buildDate(expandYear(m[3]), month, day)
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year := expandYear(m[3])

		// day-first, then the US order as last resort
		if t, ok := buildDate(year, time.Month(second), first); ok {
			return t, true
		}
		return buildDate(year, time.Month(first), second)
	}

	return time.Time{}, false
}

// FormatDate renders t as DD/MM/YYYY
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate parses raw and formats it back as DD/MM/YYYY
func NormalizeDate(raw string) (string, bool) {
	t, ok := ParseDate(raw)
	if !ok {
		return "", false
	}
	return FormatDate(t), true
}

// expandYear maps two-digit years: 70-99 to the 1900s, 00-69 to the 2000s
func expandYear(s string) int {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if year < 100 {
		if year >= 70 {
			return year + 1900
		}
		return year + 2000
	}
	return year
}

func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if !inYearRange(year) || month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 -> 03/03); reject those
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func inYearRange(year int) bool {
	return year >= minYear && year <= maxYear
}
