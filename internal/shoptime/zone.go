package shoptime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// InputLayout is the value format of an HTML datetime-local input.
const InputLayout = "2006-01-02T15:04"

const inputLayoutSeconds = "2006-01-02T15:04:05"

// buddhistEraOffset converts a Gregorian year to the Thai calendar year.
const buddhistEraOffset = 543

var thaiShortMonths = [...]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// InvalidTimeError reports a due-time input that is not a calendar date and time.
type InvalidTimeError struct {
	Input string
	Err   error
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %q: %v", e.Input, e.Err)
}

func (e *InvalidTimeError) Unwrap() error { return e.Err }

// Zone is the shop's fixed UTC offset. Every conversion between wall-clock input
// and stored instants goes through one Zone so edits round-trip without drift.
type Zone struct {
	loc *time.Location
}

// NewZone returns a Zone for the given offset east of UTC.
func NewZone(offset time.Duration) Zone {
	return Zone{loc: time.FixedZone(formatOffset(offset), int(offset/time.Second))}
}

// ParseOffset parses "+07:00", "-03:30", "+0700" or "Z".
func ParseOffset(s string) (Zone, error) {
	s = strings.TrimSpace(s)
	if s == "Z" || s == "UTC" {
		return NewZone(0), nil
	}
	if len(s) < 3 || (s[0] != '+' && s[0] != '-') {
		return Zone{}, errors.Errorf("utc offset %q: want +HH:MM", s)
	}
	sign := time.Duration(1)
	if s[0] == '-' {
		sign = -1
	}
	body := strings.ReplaceAll(s[1:], ":", "")
	if len(body) != 2 && len(body) != 4 {
		return Zone{}, errors.Errorf("utc offset %q: want +HH:MM", s)
	}
	hh, err := strconv.Atoi(body[:2])
	if err != nil {
		return Zone{}, errors.Wrapf(err, "utc offset %q", s)
	}
	mm := 0
	if len(body) == 4 {
		if mm, err = strconv.Atoi(body[2:]); err != nil {
			return Zone{}, errors.Wrapf(err, "utc offset %q", s)
		}
	}
	if hh > 14 || mm > 59 {
		return Zone{}, errors.Errorf("utc offset %q out of range", s)
	}
	return NewZone(sign * (time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)), nil
}

func formatOffset(d time.Duration) string {
	sign := '+'
	if d < 0 {
		sign = '-'
		d = -d
	}
	return fmt.Sprintf("%c%02d:%02d", sign, int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func (z Zone) location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// String returns the offset in +HH:MM form.
func (z Zone) String() string { return z.location().String() }

// ToStoredInstant interprets a zone-less wall-clock string in the shop offset
// and returns the absolute instant in UTC.
func (z Zone) ToStoredInstant(local string) (time.Time, error) {
	local = strings.TrimSpace(local)
	layout := InputLayout
	if len(local) == len(inputLayoutSeconds) {
		layout = inputLayoutSeconds
	}
	t, err := time.ParseInLocation(layout, local, z.location())
	if err != nil {
		return time.Time{}, &InvalidTimeError{Input: local, Err: err}
	}
	return t.UTC(), nil
}

// ToLocalInputString is the inverse of ToStoredInstant, truncated to the minute.
func (z Zone) ToLocalInputString(t time.Time) string {
	return t.In(z.location()).Format(InputLayout)
}

// In returns t in the shop offset.
func (z Zone) In(t time.Time) time.Time { return t.In(z.location()) }

// Date returns the shop-local calendar date of t.
func (z Zone) Date(t time.Time) (year int, month time.Month, day int) {
	return t.In(z.location()).Date()
}

// StartOfDay returns shop-local midnight of the day containing t.
func (z Zone) StartOfDay(t time.Time) time.Time {
	y, m, d := z.Date(t)
	return time.Date(y, m, d, 0, 0, 0, 0, z.location())
}

// FormatThaiDate renders "14 ต.ค. 2569".
func (z Zone) FormatThaiDate(t time.Time) string {
	lt := t.In(z.location())
	return fmt.Sprintf("%d %s %d", lt.Day(), thaiShortMonths[lt.Month()-1], lt.Year()+buddhistEraOffset)
}

// FormatThai renders "14 ต.ค. 2569 เวลา 09:50 น.".
func (z Zone) FormatThai(t time.Time) string {
	return z.FormatThaiDate(t) + " เวลา " + t.In(z.location()).Format("15:04") + " น."
}
