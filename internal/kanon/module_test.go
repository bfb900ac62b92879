package kanon

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
)

func TestModuleDefaults(t *testing.T) {
	m := New(nil)
	if m.Mode() != ModeCanon || m.Waveform() != WaveSine {
		t.Fatalf("defaults = %v/%v, want canon/sine", m.Mode(), m.Waveform())
	}
	wave, mode := m.Lights()
	if wave != [NumWaveforms]float32{1, 0, 0, 0} || mode != [NumModes]float32{1, 0, 0, 0} {
		t.Fatalf("lights = %v %v", wave, mode)
	}
}

func TestModuleButtonsSelectExclusively(t *testing.T) {
	m := New(nil)
	m.Params.Waveform = [NumWaveforms]float32{0, 0, 1, 1}
	m.Params.Mode = [NumModes]float32{0, 1, 0, 0}
	m.Process(0, 1.0/48000)
	if m.Waveform() != WaveSquare {
		t.Fatalf("waveform = %v, want square (first pressed)", m.Waveform())
	}
	if m.Mode() != ModeForwardForward {
		t.Fatalf("mode = %v, want forward-forward", m.Mode())
	}
	wave, mode := m.Lights()
	if wave != [NumWaveforms]float32{0, 0, 1, 0} || mode != [NumModes]float32{0, 1, 0, 0} {
		t.Fatalf("lights = %v %v", wave, mode)
	}

	// Holding the buttons does not retrigger.
	m.SetWaveform(WaveSine)
	m.Process(0, 1.0/48000)
	if m.Waveform() != WaveSine {
		t.Fatalf("held button retriggered to %v", m.Waveform())
	}
}

func TestModuleDistributesToVoices(t *testing.T) {
	m := New(nil)
	m.Params.Mode[ModeForwardForward] = 1
	m.Process(0, 1.0/48000)
	m.Params.Mode[ModeForwardForward] = 0
	for _, v := range []float32{0.5, 1, 1.5} {
		m.Process(v, 1.0/48000)
		m.Process(v, 1.0/48000)
	}
	want := [NumVoices]float32{0, 0.5, 1, 1.5}
	if got := m.Offsets(); got != want {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	if m.MasterVoice() != 3 {
		t.Fatalf("master = %d, want 3", m.MasterVoice())
	}
}

func TestModuleOutputsFollowWaveform(t *testing.T) {
	m := New(nil)
	m.Params.Waveform[WaveSaw] = 1
	out := m.Process(0, 1.0/48000)
	for i, v := range out {
		want := OutputAmplitude * WaveSaw.Eval(m.Phase(i))
		if v != want {
			t.Fatalf("voice %d = %v, want %v", i, v, want)
		}
	}
}

func TestModuleRandomizeStaysValid(t *testing.T) {
	m := New(rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 100; i++ {
		m.Randomize()
		if !m.Mode().Valid() || !m.Waveform().Valid() {
			t.Fatalf("randomize produced %v/%v", m.Mode(), m.Waveform())
		}
		if m.Mode() == ModeCanon && m.MasterVoice() != 0 {
			t.Fatalf("randomize into canon left master at %d", m.MasterVoice())
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	m := New(nil)
	m.SetMode(ModeForwardBackward)
	m.SetWaveform(WaveTriangle)
	m.Params.Coarse = -1.2345678
	m.Params.Fine = 0.3333333
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	n := New(nil)
	if err := json.Unmarshal(data, n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.Mode() != ModeForwardBackward || n.Waveform() != WaveTriangle {
		t.Fatalf("enums = %v/%v", n.Mode(), n.Waveform())
	}
	if n.Params.Coarse != m.Params.Coarse || n.Params.Fine != m.Params.Fine {
		t.Fatalf("floats = %v/%v, want %v/%v", n.Params.Coarse, n.Params.Fine, m.Params.Coarse, m.Params.Fine)
	}
}

func TestStateMissingFieldsDefaultToZero(t *testing.T) {
	m := New(nil)
	m.SetMode(ModeRandom)
	m.SetWaveform(WaveSaw)
	m.Params.Coarse = 2
	if err := m.UnmarshalJSON([]byte(`{"fine": 0.5}`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Mode() != ModeCanon || m.Waveform() != WaveSine || m.Params.Coarse != 0 || m.Params.Fine != 0.5 {
		t.Fatalf("state = %+v", m.State())
	}
}

func TestStateRejectsOutOfRangeOrdinals(t *testing.T) {
	m := New(nil)
	err := m.UnmarshalJSON([]byte(`{"mode": 7, "waveshape": -1, "coarse": 1.5, "fine": 0}`))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if m.Mode() != ModeCanon || m.Waveform() != WaveSine {
		t.Fatalf("invalid ordinals should fall back to defaults, got %v/%v", m.Mode(), m.Waveform())
	}
	if m.Params.Coarse != 1.5 {
		t.Fatalf("coarse = %v, want 1.5 applied despite invalid enums", m.Params.Coarse)
	}
}

func TestStateMalformedDoesNotAbort(t *testing.T) {
	m := New(nil)
	m.Params.Coarse = 3
	err := m.UnmarshalJSON([]byte(`{"mode": "fwd", "coarse": "x", "fine": 0.25}`))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if m.Params.Coarse != 0 || m.Params.Fine != 0.25 || m.Mode() != ModeCanon {
		t.Fatalf("state = %+v", m.State())
	}

	if err := m.UnmarshalJSON([]byte(`[1,2]`)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("non-object err = %v", err)
	}
}
