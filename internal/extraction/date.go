package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRe matches day/month/year with '/', '-' or '.' separators, a 1-2 digit
// day and month and a 2 or 4 digit year.
var dateRe = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})\b`)

// pivotYear splits two-digit years: above it is 19xx, at or below is 20xx.
const pivotYear = 50

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates the triple against the calendar.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

// ParseDate accepts the canonical YYYY-MM-DD form or any form the extractor
// recognizes on a card (15/03/2024, 15-03-24, 15.03.2024).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOf(t), nil
	}
	m := dateRe.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	d, ok := dateFromParts(m[1], m[2], m[3])
	if !ok {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

type dateMatch struct {
	date  Date
	start int
}

// findDates returns the valid calendar dates on line in order of appearance.
// Matches such as 31/02/2024 are not dates and are dropped.
func findDates(line string) []dateMatch {
	var out []dateMatch
	for _, idx := range dateRe.FindAllStringSubmatchIndex(line, -1) {
		d, ok := dateFromParts(line[idx[2]:idx[3]], line[idx[4]:idx[5]], line[idx[6]:idx[7]])
		if !ok {
			continue
		}
		out = append(out, dateMatch{date: d, start: idx[0]})
	}
	return out
}

func dateFromParts(day, month, year string) (Date, bool) {
	dd, err := strconv.Atoi(day)
	if err != nil {
		return Date{}, false
	}
	mm, err := strconv.Atoi(month)
	if err != nil {
		return Date{}, false
	}
	yy, err := strconv.Atoi(year)
	if err != nil {
		return Date{}, false
	}
	if len(year) == 2 {
		yy = expandYear(yy)
	}
	return NewDate(yy, time.Month(mm), dd)
}

func expandYear(yy int) int {
	if yy > pivotYear {
		return 1900 + yy
	}
	return 2000 + yy
}
