// Package timeline turns the free-form date and time strings found on scanned
// approval documents into UTC timestamps and counts calendar days between them.
//
// Nothing in this package returns an error: unrecognised input yields ok=false
// and callers drop the value from the timeline.
package timeline

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout matches JavaScript's Date.toISOString output.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

const day = 24 * time.Hour

var (
	reDMY     = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})$`)
	reYMD     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reISOTime = regexp.MustCompile(`T(\d{2}):(\d{2}):(\d{2})`)
	reAMPM    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp][Mm])$`)
	reHMS     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// ParseDate accepts D/M/Y, D-M-Y and D.M.Y (2- or 4-digit year) and Y-M-D.
// Two-digit years are read as 20YY.
func ParseDate(raw string) (Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, false
	}

	if m := reDMY.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			y += 2000
		} else if len(m[3]) == 3 {
			return Date{}, false
		}
		return validDate(y, mo, d)
	}

	if m := reYMD.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return validDate(y, mo, d)
	}
	return Date{}, false
}

func validDate(y, mo, d int) (Date, bool) {
	if mo < 1 || mo > 12 || d < 1 {
		return Date{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return Date{}, false
	}
	return Date{Year: y, Month: time.Month(mo), Day: d}, true
}

// ParseTime accepts an embedded ISO time ("...T10:04:05..."), 12-hour times
// with an AM/PM marker and 24-hour H:M[:S]. Empty input and "n/a" are not times.
func ParseTime(raw string) (Clock, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "n/a") {
		return Clock{}, false
	}

	if m := reISOTime.FindStringSubmatch(s); m != nil {
		return validClock(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	if m := reAMPM.FindStringSubmatch(s); m != nil {
		h := atoi(m[1])
		marker := strings.ToUpper(m[4])
		if marker == "PM" && h < 12 {
			h += 12
		}
		if marker == "AM" && h == 12 {
			h = 0
		}
		return validClock(h, atoi(m[2]), atoi(m[3]))
	}

	if m := reHMS.FindStringSubmatch(s); m != nil {
		return validClock(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	return Clock{}, false
}

func validClock(h, m, s int) (Clock, bool) {
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return Clock{}, false
	}
	return Clock{Hour: h, Minute: m, Second: s}, true
}

// atoi treats an empty optional group as zero.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// Combine builds a UTC timestamp. A nil date yields ok=false; a nil clock means midnight.
func Combine(d *Date, c *Clock) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	var clk Clock
	if c != nil {
		clk = *c
	}
	return time.Date(d.Year, d.Month, d.Day, clk.Hour, clk.Minute, clk.Second, 0, time.UTC), true
}

// ParseDateTime parses and combines a raw date/time pair. An unparseable time
// falls back to midnight; an unparseable date yields ok=false.
func ParseDateTime(rawDate, rawTime string) (time.Time, bool) {
	d, ok := ParseDate(rawDate)
	if !ok {
		return time.Time{}, false
	}
	if c, ok := ParseTime(rawTime); ok {
		return Combine(&d, &c)
	}
	return Combine(&d, nil)
}

// DateOnly truncates t to midnight UTC of its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDiff counts calendar days from a to b, ignoring time of day.
// It is 0 when either side is missing or b does not fall after a.
func DayDiff(a, b *time.Time) int {
	if a == nil || b == nil {
		return 0
	}
	n := days(DateOnly(*b).Sub(DateOnly(*a)))
	if n <= 0 {
		return 0
	}
	return n
}

// AbsDayDiff is the unsigned calendar-day distance between a and b.
func AbsDayDiff(a, b *time.Time) int {
	if a == nil || b == nil {
		return 0
	}
	n := days(DateOnly(*b).Sub(DateOnly(*a)))
	if n < 0 {
		return -n
	}
	return n
}

func days(d time.Duration) int {
	return int(math.Round(float64(d) / float64(day)))
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ToSQLDate renders a parseable date as YYYY-MM-DD, or "" when it is not.
func ToSQLDate(raw string) string {
	d, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return d.String()
}

// ToSQLTime renders a parseable time as HH:MM:SS, or "" when it is not.
func ToSQLTime(raw string) string {
	c, ok := ParseTime(raw)
	if !ok {
		return ""
	}
	return c.String()
}
