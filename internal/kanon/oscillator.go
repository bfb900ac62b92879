package kanon

import "math"

// FreqC4 is the frequency of 0 V on the 1V/octave scale.
const FreqC4 = 261.6256

// OutputAmplitude scales the unit waveform to the output voltage.
const OutputAmplitude = 5.0

// Waveform selects the shape shared by all four voices.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSaw
	NumWaveforms
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSquare:
		return "square"
	case WaveSaw:
		return "saw"
	default:
		return "unknown"
	}
}

// Valid reports whether w is one of the four waveforms.
func (w Waveform) Valid() bool { return w >= 0 && w < NumWaveforms }

var waveforms = [NumWaveforms]func(phase float32) float32{
	WaveSine:     sine,
	WaveTriangle: triangle,
	WaveSquare:   square,
	WaveSaw:      saw,
}

// Eval returns the unit waveform value at phase.
func (w Waveform) Eval(phase float32) float32 {
	if !w.Valid() {
		return 0
	}
	return waveforms[w](phase)
}

func sine(phase float32) float32 {
	return float32(math.Sin(2 * math.Pi * float64(phase)))
}

func triangle(phase float32) float32 {
	x := 2 * (phase - float32(math.Floor(float64(phase+0.5))))
	return 2*float32(math.Abs(float64(x))) - 1
}

// square maps exactly 0.5 to -1.
func square(phase float32) float32 {
	if phase > 0.5 {
		return 1
	}
	return -1
}

func saw(phase float32) float32 {
	return 2*phase - 1
}

// VoltToFreq converts a 1V/octave pitch to Hz.
func VoltToFreq(v float32) float32 {
	return FreqC4 * float32(math.Pow(2, float64(v)))
}

// Bank is four free-running phase accumulators.
type Bank struct {
	phases [NumVoices]float32
}

// Advance moves every voice forward by one sample. pitch is the shared
// master pitch in volts, offsets holds each voice's assigned V/Oct.
func (b *Bank) Advance(pitch float32, offsets *[NumVoices]float32, sampleTime float32) {
	for i := range b.phases {
		b.phases[i] += VoltToFreq(pitch+offsets[i]) * sampleTime
		// A single subtraction keeps the phase continuous across the wrap.
		// It only holds while the increment is below 1, i.e. while the
		// voice frequency is below the sample rate (about 7.5 V above C4
		// at 48 kHz). Higher pitches leave the phase outside [0, 1).
		if b.phases[i] >= 1 {
			b.phases[i] -= 1
		}
	}
}

// Render writes each voice's output voltage for the current phases.
func (b *Bank) Render(w Waveform, out *[NumVoices]float32) {
	for i, p := range b.phases {
		out[i] = OutputAmplitude * w.Eval(p)
	}
}

// Phase returns the current phase of voice i.
func (b *Bank) Phase(i int) float32 { return b.phases[i] }

// Reset zeros all phases.
func (b *Bank) Reset() {
	b.phases = [NumVoices]float32{}
}
