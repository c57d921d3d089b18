// Package debounce turns noisy per-tick sensor booleans into confirmed
// business events. Three machine shapes are provided: Tracker (timeout
// debounce with either polarity), Composite (two-stage presence with a
// secondary wait condition) and Streak (consecutive-tick counter firing a
// side effect), plus the periodic Reporter. All of them ride on the same
// fire-and-reset threshold primitive.
package debounce

// threshold arms on the first active observation and trips once the
// observed position has advanced at least limit past the arming point. Any
// inactive observation disarms it; tripping disarms it too, so a sustained
// input cannot trip twice without re-arming first.
//
// The position axis is caller-defined: seconds for the timing machines,
// a tick counter for the streak machine.
type threshold struct {
	limit  float64
	armed  bool
	origin float64
}

func (t *threshold) observe(at float64, active bool) bool {
	if !active {
		t.armed = false
		return false
	}
	if !t.armed {
		t.armed = true
		t.origin = at
		return false
	}
	if at-t.origin >= t.limit {
		t.armed = false
		return true
	}
	return false
}

func (t *threshold) reset() {
	t.armed = false
}
