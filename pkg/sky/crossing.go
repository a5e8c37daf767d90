package sky

import "time"

// Crossing is an instant where an altitude function changes sign.
type Crossing struct {
	Time   time.Time
	Rising bool
}

// FindCrossings samples f over [start, end] every step and refines each sign
// change by bisection until the bracket is no wider than tol. f is typically
// "altitude minus threshold", so Rising crossings are rises and the others
// are sets. above reports the sign of f at start, which callers use to tell
// an always-above day from an always-below one when nothing is found.
func FindCrossings(f func(time.Time) float64, start, end time.Time, step, tol time.Duration) (crossings []Crossing, above bool) {
	if step <= 0 || !end.After(start) {
		return nil, f(start) > 0
	}
	if tol <= 0 {
		tol = time.Second
	}

	prevT := start
	prevV := f(start)
	above = prevV > 0

	for t := start.Add(step); ; t = t.Add(step) {
		if t.After(end) {
			t = end
		}
		v := f(t)
		if (prevV <= 0) != (v <= 0) {
			crossings = append(crossings, Crossing{
				Time:   bisect(f, prevT, t, prevV, tol),
				Rising: v > prevV,
			})
		}
		if !t.Before(end) {
			break
		}
		prevT, prevV = t, v
	}
	return crossings, above
}

func bisect(f func(time.Time) float64, lo, hi time.Time, vlo float64, tol time.Duration) time.Time {
	for hi.Sub(lo) > tol {
		mid := lo.Add(hi.Sub(lo) / 2)
		vm := f(mid)
		if (vm <= 0) == (vlo <= 0) {
			lo, vlo = mid, vm
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2)
}
