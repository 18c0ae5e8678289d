package qif

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateOptions controls how date tokens are read. They apply to every date in
// a parse.
type DateOptions struct {
	// MonthBeforeDay reads the first field as the month ("12/31/1998").
	// When false the first field is the day ("31/12/1998").
	MonthBeforeDay bool
	// Y2KRule reads two-digit years below 69 as 20xx. Some exporters, such
	// as Banktivity on macOS, write two-digit years past 1999 this way.
	Y2KRule bool
}

// ParseDate converts a QIF date token to a calendar date in UTC. Accepted
// shapes include "7/ 9/98", "9/ 7/99", "10/10/99", "10/10'01" (the
// apostrophe marks a 20xx year), "01/22/2002" and "3/2/2011".
func ParseDate(raw string, opts DateOptions) (time.Time, error) {
	q := strings.TrimRight(raw, " \t\r")
	if len(q) > 1 && q[1] == '/' {
		q = "0" + q
	}
	if len(q) > 4 && (q[4] == '/' || q[4] == '\'') {
		q = q[:3] + "0" + q[3:]
	}
	q = strings.ReplaceAll(q, " ", "0")

	var (
		first, second, year int
		err                 error
	)
	switch len(q) {
	case 10:
		if q[2] != '/' || (q[5] != '/' && q[5] != '\'') {
			return time.Time{}, malformedDate(raw)
		}
		if year, err = digits(q[6:10]); err != nil {
			return time.Time{}, malformedDate(raw)
		}
	case 8:
		if q[2] != '/' || (q[5] != '/' && q[5] != '\'') {
			return time.Time{}, malformedDate(raw)
		}
		yy, err := digits(q[6:8])
		if err != nil {
			return time.Time{}, malformedDate(raw)
		}
		year = 1900 + yy
		if q[5] == '\'' || (opts.Y2KRule && yy < 69) {
			year = 2000 + yy
		}
	default:
		return time.Time{}, malformedDate(raw)
	}
	if first, err = digits(q[0:2]); err != nil {
		return time.Time{}, malformedDate(raw)
	}
	if second, err = digits(q[3:5]); err != nil {
		return time.Time{}, malformedDate(raw)
	}

	month, day := second, first
	if opts.MonthBeforeDay {
		month, day = first, second
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, malformedDate(raw)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, malformedDate(raw)
	}
	return t, nil
}

func digits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("non-digit %q", s[i])
		}
	}
	return strconv.Atoi(s)
}

func malformedDate(raw string) error {
	return fmt.Errorf("%w: %q", ErrMalformedDate, raw)
}
