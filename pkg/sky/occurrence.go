package sky

import "time"

// Condition describes whether an event happened on a given day and, if not, why.
type Condition int

const (
	// Unknown is the zero value: the event was never computed.
	Unknown Condition = iota
	// Occurs means the event has a time on the requested day.
	Occurs
	// AlwaysAbove means the body stays above the event's altitude all day
	// (polar day for sunrise/sunset).
	AlwaysAbove
	// AlwaysBelow means the body never reaches the event's altitude
	// (polar night for sunrise/sunset).
	AlwaysBelow
	// NotThisDay means the crossing exists but falls outside the civil day.
	NotThisDay
)

func (c Condition) String() string {
	switch c {
	case Occurs:
		return "occurs"
	case AlwaysAbove:
		return "always above"
	case AlwaysBelow:
		return "always below"
	case NotThisDay:
		return "not on this day"
	default:
		return "unknown"
	}
}

// Occurrence is either an instant or the reason there is none. The zero value
// is an uncomputed event and never reports a time.
type Occurrence struct {
	t    time.Time
	cond Condition
}

// Occurred returns an Occurrence at t.
func Occurred(t time.Time) Occurrence {
	return Occurrence{t: t, cond: Occurs}
}

// DidNotOccur returns an Occurrence with no time. Passing Occurs is treated
// as NotThisDay since there is no instant to carry.
func DidNotOccur(c Condition) Occurrence {
	if c == Occurs {
		c = NotThisDay
	}
	return Occurrence{cond: c}
}

// Outside returns a NotThisDay occurrence that remembers the crossing at t,
// which falls on a neighbouring civil day.
func Outside(t time.Time) Occurrence {
	return Occurrence{t: t, cond: NotThisDay}
}

// Time returns the instant and true when the event occurred.
func (o Occurrence) Time() (time.Time, bool) {
	if o.cond != Occurs {
		return time.Time{}, false
	}
	return o.t, true
}

// Spill returns the crossing on a neighbouring day for an Outside occurrence.
// It never returns an instant for an event that occurred.
func (o Occurrence) Spill() (time.Time, bool) {
	if o.cond != NotThisDay || o.t.IsZero() {
		return time.Time{}, false
	}
	return o.t, true
}

// Occurred reports whether the event has a time.
func (o Occurrence) Occurred() bool {
	return o.cond == Occurs
}

// Condition returns why the event did or did not occur.
func (o Occurrence) Condition() Condition {
	return o.cond
}

// In returns the occurrence with its instant expressed in loc.
func (o Occurrence) In(loc *time.Location) Occurrence {
	if !o.t.IsZero() {
		o.t = o.t.In(loc)
	}
	return o
}

// Before reports whether both events occurred and o is not after other.
func (o Occurrence) Before(other Occurrence) bool {
	a, ok1 := o.Time()
	b, ok2 := other.Time()
	return ok1 && ok2 && !a.After(b)
}

func (o Occurrence) String() string {
	if t, ok := o.Time(); ok {
		return t.Format(time.RFC3339)
	}
	if t, ok := o.Spill(); ok {
		return "does not occur (" + o.cond.String() + ", crosses at " + t.Format(time.RFC3339) + ")"
	}
	return "does not occur (" + o.cond.String() + ")"
}
