// Package dateutil handles the calendar dates used by effective windows and
// pay periods. Dates are midnight UTC; the wire format is YYYY-MM-DD.
package dateutil

import "time"

const Layout = "2006-01-02"

func Parse(v string) (time.Time, error) {
	return time.Parse(Layout, v)
}

// ParsePtr parses an optional date; nil or "" stays nil.
func ParsePtr(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := Parse(*v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// Truncate drops the clock part, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return Truncate(time.Now())
}
