package lfo

import "github.com/cbegin/mfrack-go/internal/kanon"

// LFO is a slow control-voltage source for modulating CV inputs in the rig.
// It shares the oscillator bank's waveform shapes.
type LFO struct {
	depth  float32 // peak deviation in volts
	offset float32 // centre voltage
	rateHz float32
	shape  kanon.Waveform
	phase  float32 // [0, 1)
}

// Set configures the LFO. Invalid shapes fall back to sine.
func (l *LFO) Set(depth, offset, rateHz float32, shape kanon.Waveform) {
	l.depth = depth
	l.offset = offset
	l.rateHz = rateHz
	if !shape.Valid() {
		shape = kanon.WaveSine
	}
	l.shape = shape
}

// Sample returns the voltage for the current phase and advances by one
// sample. The output lies in [offset-depth, offset+depth].
func (l *LFO) Sample(sampleTime float32) float32 {
	if !l.Active() {
		return l.offset
	}
	v := l.offset + l.depth*l.shape.Eval(l.phase)
	l.phase += l.rateHz * sampleTime
	for l.phase >= 1 {
		l.phase -= 1
	}
	return v
}

// Active returns true if the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz > 0
}

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}
