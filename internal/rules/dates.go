package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// isoLayouts are tried first, mirroring what an ISO-8601 reader accepts.
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15",
	"2006-01-02 15",
	"20060102",
	"20060102T150405",
	"20060102T1504",
}

// fallbackLayouts are tried last, in order, against the whole input.
// Equivalent to %d-%b-%y, %d/%m/%Y, %d-%m-%Y, %Y-%m-%d, %y-%m-%d, %d-%b-%Y.
var fallbackLayouts = []string{
	"2-Jan-06",
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"06-1-2",
	"2-Jan-2006",
}

var (
	dayMonthNamePattern = regexp.MustCompile(`(\d{1,2})[-\s/]([A-Za-z]{3})[-\s/](\d{2,4})`)
	dayMonthYearPattern = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
)

var monthNumbers = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AUG": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

// ParseDate converts a date string in any supported shape into YYYY-MM-DD.
// It returns false when no shape matched; callers log the failure and decide
// what to fall back to (see ExtractContext and the pipeline date step).
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	iso := s
	if strings.HasSuffix(iso, "Z") {
		iso = strings.TrimSuffix(iso, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	if m := dayMonthNamePattern.FindStringSubmatch(s); m != nil {
		month, ok := monthNumbers[strings.ToUpper(m[2])]
		if !ok {
			month = "01"
		}
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return fmt.Sprintf("%s-%s-%s", padLeft(year, 4), month, padLeft(m[1], 2)), true
	}

	if m := dayMonthYearPattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], padLeft(m[2], 2), padLeft(m[1], 2)), true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	return "", false
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
