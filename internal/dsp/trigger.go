package dsp

// BooleanTrigger reports a single pulse per rising edge of a button or gate
// signal. Any non-zero value counts as high.
type BooleanTrigger struct {
	state bool
}

// Process clocks the trigger with the current frame's value and returns true
// only on the frame where the signal goes from low to high.
func (t *BooleanTrigger) Process(v float32) bool {
	high := v != 0
	fired := high && !t.state
	t.state = high
	return fired
}

// Reset forgets the previous state, so a held button fires again.
func (t *BooleanTrigger) Reset() {
	t.state = false
}

// SelectFirst clocks every trigger in the group with its button value and
// returns the index of the first one that fired in enumeration order.
// All triggers are clocked even after a match so that a button pressed in
// the same frame as an earlier one does not fire late on the next frame.
func SelectFirst(triggers []BooleanTrigger, values []float32) (int, bool) {
	selected := -1
	for i := range triggers {
		var v float32
		if i < len(values) {
			v = values[i]
		}
		if triggers[i].Process(v) && selected < 0 {
			selected = i
		}
	}
	return selected, selected >= 0
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float32) float32 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
