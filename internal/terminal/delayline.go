package terminal

import (
	"math"

	"github.com/cbegin/mfrack-go/internal/dsp"
)

// MaxDelaySeconds is the longest delay a channel can realize.
const MaxDelaySeconds = 3

// delayCVScale converts delay CV volts to seconds.
const delayCVScale = 0.3

// DelayLine is a stereo ring buffer read at a variable look-back.
// The buffer length is fixed from the sample rate given to NewDelayLine; a
// later change of host sample rate is not tracked.
type DelayLine struct {
	bufL, bufR []float32
	pos        int
	sampleRate float32
}

// NewDelayLine allocates MaxDelaySeconds of stereo history at sampleRate.
func NewDelayLine(sampleRate float32) *DelayLine {
	n := int(MaxDelaySeconds * sampleRate)
	if n < 1 {
		n = 1
	}
	return &DelayLine{
		bufL:       make([]float32, n),
		bufR:       make([]float32, n),
		sampleRate: sampleRate,
	}
}

// DelayTime returns the delay in seconds for a knob position and CV input,
// clamped to [0, MaxDelaySeconds].
func DelayTime(knob, cv float32) float32 {
	return dsp.Clamp(knob+cv*delayCVScale, 0, MaxDelaySeconds)
}

// Setback returns how many samples back the tap reads for delay seconds.
func (d *DelayLine) Setback(delay float32) int {
	s := int(math.Round(float64(d.sampleRate * DelayTime(delay, 0))))
	if s < 0 {
		s = 0
	}
	if s > len(d.bufL) {
		s = len(d.bufL)
	}
	return s
}

// Process writes one stereo arrival frame at the cursor, reads the tap delay
// seconds back and advances the cursor.
func (d *DelayLine) Process(l, r float32, delay float32) (float32, float32) {
	n := len(d.bufL)
	d.bufL[d.pos] = l
	d.bufR[d.pos] = r
	idx := (d.pos - d.Setback(delay) + n) % n
	tapL, tapR := d.bufL[idx], d.bufR[idx]
	d.pos = (d.pos + 1) % n
	return tapL, tapR
}

// Clear zeros the whole history and resets the cursor.
func (d *DelayLine) Clear() {
	clear(d.bufL)
	clear(d.bufR)
	d.pos = 0
}

// Len returns the buffer length in samples.
func (d *DelayLine) Len() int { return len(d.bufL) }

// Cursor returns the current write position.
func (d *DelayLine) Cursor() int { return d.pos }

// SampleRate returns the rate the buffer was sized for.
func (d *DelayLine) SampleRate() float32 { return d.sampleRate }
