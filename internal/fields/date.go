package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DatePattern names the pattern that matched a date cell
type DatePattern string

const (
	PatternNative       DatePattern = "native"
	PatternExcelSerial  DatePattern = "excel_serial"
	PatternISO          DatePattern = "iso_ymd"
	PatternDayMonthYear DatePattern = "numeric_dmy"
	PatternMonthDayYear DatePattern = "numeric_mdy"
	PatternTextualDMY   DatePattern = "textual_dmy"
	PatternTextualMDY   DatePattern = "textual_mdy"
)

// Excel serials outside 1900-01-01..9999-12-31 are rejected
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// DateResult is a parsed calendar date. Ambiguous is set when a numeric
// day-month-year input would also be a valid, different month-day-year date.
type DateResult struct {
	Date      time.Time   `json:"date"`
	Pattern   DatePattern `json:"pattern"`
	Ambiguous bool        `json:"ambiguous"`
}

var (
	weekdayPrefix = regexp.MustCompile(`^(?:senin|selasa|rabu|kamis|jumat|jum'at|sabtu|minggu|ahad|` +
		`monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)\.?,?\s+`)
	timeSuffix = regexp.MustCompile(`(?:[ t]+|,\s*)(?:pukul\s+)?\d{1,2}[:.]\d{2}(?:[:.]\d{2}(?:\.\d+)?)?` +
		`(?:\s*(?:am|pm))?(?:\s*(?:z|[+-]\d{2}:?\d{2}|wib|wita|wit|utc))?$`)

	isoDate     = regexp.MustCompile(`^(\d{4})([-/.])(\d{1,2})([-/.])(\d{1,2})$`)
	numericDate = regexp.MustCompile(`^(\d{1,2})([-/.])(\d{1,2})([-/.])(\d{2}|\d{4})$`)
	textualDMY  = regexp.MustCompile(`^(\d{1,2})[\s\-/.]*([a-z]+)\.?[\s\-/.,]*(\d{2}|\d{4})$`)
	textualMDY  = regexp.MustCompile(`^([a-z]+)\.?\s*(\d{1,2})(?:st|nd|rd|th)?,?\s*(\d{2}|\d{4})$`)
)

var monthNames = map[string]time.Month{
	"januari": time.January, "january": time.January, "jan": time.January,
	"februari": time.February, "pebruari": time.February, "february": time.February, "feb": time.February, "peb": time.February,
	"maret": time.March, "march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"agustus": time.August, "august": time.August, "agu": time.August, "agt": time.August, "ags": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nopember": time.November, "nov": time.November, "nop": time.November,
	"desember": time.December, "december": time.December, "des": time.December, "dec": time.December,
}

// ParseDate returns the calendar date of raw at midnight UTC
func ParseDate(raw any) (time.Time, error) {
	res, err := ParseDateDetailed(raw)
	if err != nil {
		return time.Time{}, err
	}
	return res.Date, nil
}

// ParseDateDetailed tries a fixed pattern list in priority order: ISO
// year-month-day, numeric day-month-year, numeric month-day-year, textual
// day-month-year, textual month-day-year. The first pattern producing a real
// calendar date wins. Numbers are read as Excel serial dates.
func ParseDateDetailed(raw any) (DateResult, error) {
	switch v := raw.(type) {
	case nil:
		return DateResult{}, newParseError(KindDate, raw, "blank")
	case time.Time:
		if v.IsZero() {
			return DateResult{}, newParseError(KindDate, raw, "zero time")
		}
		return DateResult{Date: calendarDate(v), Pattern: PatternNative}, nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return DateResult{}, newParseError(KindDate, raw, "zero time")
		}
		return DateResult{Date: calendarDate(*v), Pattern: PatternNative}, nil
	case string:
		return parseDateString(v)
	}

	serial, err := numericValue(KindDate, raw)
	if err != nil {
		return DateResult{}, err
	}
	return fromExcelSerial(raw, serial.InexactFloat64())
}

func fromExcelSerial(raw any, serial float64) (DateResult, error) {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return DateResult{}, newParseError(KindDate, raw, "number outside the Excel date range")
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return DateResult{}, newParseError(KindDate, raw, err.Error())
	}
	return DateResult{Date: calendarDate(t), Pattern: PatternExcelSerial}, nil
}

func parseDateString(raw string) (DateResult, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DateResult{}, newParseError(KindDate, raw, "blank")
	}
	s = strings.Join(strings.Fields(s), " ")
	s = weekdayPrefix.ReplaceAllString(s, "")
	s = timeSuffix.ReplaceAllString(s, "")

	if m := isoDate.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		if d, ok := buildDate(atoi(m[1]), atoi(m[3]), atoi(m[5])); ok {
			return DateResult{Date: d, Pattern: PatternISO}, nil
		}
		return DateResult{}, newParseError(KindDate, raw, "impossible calendar date")
	}

	if m := numericDate.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		first, second, year := atoi(m[1]), atoi(m[3]), expandYear(m[5])
		if d, ok := buildDate(year, second, first); ok {
			_, alt := buildDate(year, first, second)
			return DateResult{
				Date:      d,
				Pattern:   PatternDayMonthYear,
				Ambiguous: alt && first != second,
			}, nil
		}
		if d, ok := buildDate(year, first, second); ok {
			return DateResult{Date: d, Pattern: PatternMonthDayYear}, nil
		}
		return DateResult{}, newParseError(KindDate, raw, "impossible calendar date")
	}

	if m := textualDMY.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			if d, ok := buildDate(expandYear(m[3]), int(month), atoi(m[1])); ok {
				return DateResult{Date: d, Pattern: PatternTextualDMY}, nil
			}
			return DateResult{}, newParseError(KindDate, raw, "impossible calendar date")
		}
	}

	if m := textualMDY.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[m[1]]; ok {
			if d, ok := buildDate(expandYear(m[3]), int(month), atoi(m[2])); ok {
				return DateResult{Date: d, Pattern: PatternTextualMDY}, nil
			}
			return DateResult{}, newParseError(KindDate, raw, "impossible calendar date")
		}
	}

	return DateResult{}, newParseError(KindDate, raw, "no date pattern matched")
}

// buildDate rejects dates that time.Date would silently normalize, such as 31 February
func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// expandYear maps two-digit years: 50-99 to the 1900s, 00-49 to the 2000s
func expandYear(s string) int {
	y := atoi(s)
	if len(s) != 2 {
		return y
	}
	if y >= 50 {
		return 1900 + y
	}
	return 2000 + y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
