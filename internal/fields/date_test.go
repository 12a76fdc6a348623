package fields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		want      time.Time
		pattern   DatePattern
		ambiguous bool
	}{
		{"iso", "2024-08-17", day(2024, 8, 17), PatternISO, false},
		{"iso slashes", "2024/08/17", day(2024, 8, 17), PatternISO, false},
		{"iso with time", "2024-08-17T10:30:00Z", day(2024, 8, 17), PatternISO, false},
		{"day month year dash", "17-08-2024", day(2024, 8, 17), PatternDayMonthYear, false},
		{"day month year slash", "17/08/2024", day(2024, 8, 17), PatternDayMonthYear, false},
		{"day month year dot", "17.08.2024", day(2024, 8, 17), PatternDayMonthYear, false},
		{"ambiguous order prefers day first", "03/04/2024", day(2024, 4, 3), PatternDayMonthYear, true},
		{"same day and month is not ambiguous", "05/05/2024", day(2024, 5, 5), PatternDayMonthYear, false},
		{"month day year fallback", "08/17/2024", day(2024, 8, 17), PatternMonthDayYear, false},
		{"two digit year 2000s", "17-08-24", day(2024, 8, 17), PatternDayMonthYear, false},
		{"two digit year 1900s", "17-08-75", day(1975, 8, 17), PatternDayMonthYear, false},
		{"pivot year 49", "01-02-49", day(2049, 2, 1), PatternDayMonthYear, true},
		{"pivot year 50", "01-02-50", day(1950, 2, 1), PatternDayMonthYear, true},
		{"with time of day", "17/08/2024 14:05", day(2024, 8, 17), PatternDayMonthYear, false},
		{"indonesian month", "17 Agustus 2024", day(2024, 8, 17), PatternTextualDMY, false},
		{"indonesian abbreviation", "1 Okt 2023", day(2023, 10, 1), PatternTextualDMY, false},
		{"english abbreviation dashed", "17-Aug-24", day(2024, 8, 17), PatternTextualDMY, false},
		{"mei", "2 Mei 2024", day(2024, 5, 2), PatternTextualDMY, false},
		{"weekday prefix", "Senin, 15 Januari 2024", day(2024, 1, 15), PatternTextualDMY, false},
		{"english month first", "August 17, 2024", day(2024, 8, 17), PatternTextualMDY, false},
		{"english ordinal", "Dec 1st 2023", day(2023, 12, 1), PatternTextualMDY, false},
		{"native time", time.Date(2024, 8, 17, 23, 59, 0, 0, time.UTC), day(2024, 8, 17), PatternNative, false},
		{"excel serial", 45521.0, day(2024, 8, 17), PatternExcelSerial, false},
		{"excel serial with time", 45521.75, day(2024, 8, 17), PatternExcelSerial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseDateDetailed(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(res.Date), "want %s, got %s", tt.want, res.Date)
			assert.Equal(t, tt.pattern, res.Pattern)
			assert.Equal(t, tt.ambiguous, res.Ambiguous)
		})
	}
}

func TestParseDateErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		reason string
	}{
		{"blank", "", "blank"},
		{"nil", nil, "blank"},
		{"feb 30", "30-02-2024", "impossible calendar date"},
		{"feb 29 non leap", "2023-02-29", "impossible calendar date"},
		{"month 13 both ways", "13/13/2024", "impossible calendar date"},
		{"unknown month", "17 Foo 2024", "no date pattern matched"},
		{"free text", "kemarin", "no date pattern matched"},
		{"digit string", "45521", "no date pattern matched"},
		{"negative serial", -5, "number outside the Excel date range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, KindDate, pe.Kind)
			assert.Equal(t, tt.reason, pe.Reason)
		})
	}
}

func TestParseDateLeapDay(t *testing.T) {
	got, err := ParseDate("29/02/2024")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 29), got)
}
