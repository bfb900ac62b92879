package kanon

import (
	"math/rand/v2"

	"github.com/cbegin/mfrack-go/internal/dsp"
)

const (
	CoarseMin = -5
	CoarseMax = 5
	FineMin   = -1
	FineMax   = 1
)

// Params are the panel controls read once per frame. Coarse and Fine are
// knob positions; the button arrays hold momentary button values in
// enumeration order of Waveform and Mode.
type Params struct {
	Coarse   float32
	Fine     float32
	Waveform [NumWaveforms]float32
	Mode     [NumModes]float32
}

// Pitch returns the master pitch in volts. Fine spans one semitone each way.
func (p Params) Pitch() float32 {
	return p.Coarse + p.Fine/12
}

// Module is the four-voice canon oscillator.
type Module struct {
	Params Params

	dist     Distributor
	offsets  [NumVoices]float32
	bank     Bank
	waveform Waveform
	rng      Rand

	waveTriggers [NumWaveforms]dsp.BooleanTrigger
	modeTriggers [NumModes]dsp.BooleanTrigger
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// New creates a module in canon mode with the sine waveform. A nil rng uses
// the process-wide random source.
func New(rng Rand) *Module {
	if rng == nil {
		rng = globalRand{}
	}
	m := &Module{rng: rng}
	m.SetWaveform(WaveSine)
	m.SetMode(ModeCanon)
	return m
}

// Process runs one frame: button edges, pitch distribution, then the
// oscillator bank. It returns the four voice output voltages.
func (m *Module) Process(voct float32, sampleTime float32) [NumVoices]float32 {
	if w, ok := dsp.SelectFirst(m.waveTriggers[:], m.Params.Waveform[:]); ok {
		m.SetWaveform(Waveform(w))
	}
	if md, ok := dsp.SelectFirst(m.modeTriggers[:], m.Params.Mode[:]); ok {
		m.SetMode(Mode(md))
	}

	m.dist.Process(&m.offsets, voct, m.rng)
	m.bank.Advance(m.Params.Pitch(), &m.offsets, sampleTime)

	var out [NumVoices]float32
	m.bank.Render(m.waveform, &out)
	return out
}

func (m *Module) SetWaveform(w Waveform) {
	if !w.Valid() {
		w = WaveSine
	}
	m.waveform = w
}

func (m *Module) SetMode(md Mode) {
	if !md.Valid() {
		md = ModeCanon
	}
	m.dist.SetMode(md)
}

func (m *Module) Waveform() Waveform { return m.waveform }
func (m *Module) Mode() Mode         { return m.dist.Mode }

// MasterVoice returns the index of the voice that received the last step.
func (m *Module) MasterVoice() int { return m.dist.Master }

// Offsets returns the V/Oct offset currently assigned to each voice.
func (m *Module) Offsets() [NumVoices]float32 { return m.offsets }

// Phase returns the oscillator phase of voice i.
func (m *Module) Phase(i int) float32 { return m.bank.Phase(i) }

// Lights returns the brightness of the waveform and mode indicators.
// Exactly one light in each group is lit.
func (m *Module) Lights() (wave [NumWaveforms]float32, mode [NumModes]float32) {
	wave[m.waveform] = 1
	mode[m.dist.Mode] = 1
	return wave, mode
}

// Randomize picks a random mode and waveform.
func (m *Module) Randomize() {
	m.SetMode(Mode(m.rng.IntN(int(NumModes))))
	m.SetWaveform(Waveform(m.rng.IntN(int(NumWaveforms))))
}
