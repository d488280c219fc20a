package assignment

import (
	"time"

	"go-payroll/internal/shared/dateutil"
)

// Window is a closed-open date range [From, To). A nil To never ends.
type Window struct {
	From time.Time
	To   *time.Time
}

func NewWindow(from time.Time, to *time.Time) Window {
	w := Window{From: dateutil.Truncate(from)}
	if to != nil {
		t := dateutil.Truncate(*to)
		w.To = &t
	}
	return w
}

func (w Window) Valid() bool {
	return w.To == nil || w.To.After(w.From)
}

func (w Window) Contains(d time.Time) bool {
	d = dateutil.Truncate(d)
	if d.Before(w.From) {
		return false
	}
	return w.To == nil || d.Before(*w.To)
}

// Overlaps reports whether the two windows share at least one day.
// Touching windows ([a, b) and [b, c)) do not overlap.
func (w Window) Overlaps(o Window) bool {
	if w.To != nil && !o.From.Before(*w.To) {
		return false
	}
	if o.To != nil && !w.From.Before(*o.To) {
		return false
	}
	return true
}

func (w Window) String() string {
	to := "∞"
	if w.To != nil {
		to = dateutil.Format(*w.To)
	}
	return "[" + dateutil.Format(w.From) + ", " + to + ")"
}
