package terminal

import (
	"math"
	"testing"
)

func TestDelayTimeAndGainClamp(t *testing.T) {
	cases := []struct {
		name      string
		got, want float32
	}{
		{"delay in range", DelayTime(1, 1), 1.3},
		{"delay above max", DelayTime(2.5, 10), MaxDelaySeconds},
		{"delay below zero", DelayTime(0.1, -5), 0},
		{"gain in range", Gain(0.5, 2), 0.7},
		{"gain above one", Gain(0.5, 10), 1},
		{"gain below zero", Gain(0.5, -10), 0},
	}
	for _, c := range cases {
		if diff := c.got - c.want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDelayLineLength(t *testing.T) {
	d := NewDelayLine(48000)
	if d.Len() != 144000 {
		t.Fatalf("len = %d, want 144000", d.Len())
	}
	if s := d.Setback(MaxDelaySeconds); s != d.Len() {
		t.Fatalf("setback at max = %d, want %d", s, d.Len())
	}
}

func TestDelayLineImpulse(t *testing.T) {
	d := NewDelayLine(1000)
	const delay = 0.01
	setback := d.Setback(delay)
	if setback != 10 {
		t.Fatalf("setback = %d, want 10", setback)
	}
	for i := 0; i < 50; i++ {
		var in float32
		if i == 5 {
			in = 1
		}
		l, r := d.Process(in, -in, delay)
		want := float32(0)
		if i == 5+setback {
			want = 1
		}
		if l != want || r != -want {
			t.Fatalf("frame %d: tap = %v,%v want %v,%v", i, l, r, want, -want)
		}
	}
}

func TestDelayLineCursorWraps(t *testing.T) {
	d := NewDelayLine(10)
	for i := 0; i < d.Len()*2+3; i++ {
		d.Process(1, 1, 0)
		if c := d.Cursor(); c < 0 || c >= d.Len() {
			t.Fatalf("cursor %d out of range", c)
		}
	}
	if d.Cursor() != 3 {
		t.Fatalf("cursor = %d, want 3", d.Cursor())
	}
}

func TestChannelKillWipesHistory(t *testing.T) {
	c := NewChannel(100)
	in := ChannelInput{Gain: 1, Delay: 0.05, ArrivalL: Port{Voltage: 2, Connected: true}}
	for i := 0; i < 40; i++ {
		c.Process(0, 0, in)
	}

	in.Kill = 1
	in.ArrivalL = Port{}
	l, r := c.Process(0.25, 0.25, in)
	if l != 0 || r != 0 {
		t.Fatalf("kill frame = %v,%v want 0,0", l, r)
	}
	line := c.Line()
	if line.Cursor() != 0 {
		t.Fatalf("cursor after kill = %d, want 0", line.Cursor())
	}
	for i := range line.bufL {
		if line.bufL[i] != 0 || line.bufR[i] != 0 {
			t.Fatalf("buffer not cleared at %d", i)
		}
	}

	// Holding kill does not wipe again; the old history is gone.
	for i := 0; i < line.Len(); i++ {
		l, r := c.Process(0.25, 0.25, in)
		if l != 0.25 || r != 0.25 {
			t.Fatalf("frame %d after kill = %v,%v want 0.25", i, l, r)
		}
	}
}

func TestChannelFeedbackMix(t *testing.T) {
	c := NewChannel(100)
	in := ChannelInput{Gain: 0.5, Delay: 0.02}
	in.ArrivalL = Port{Voltage: 4, Connected: true}
	c.Process(1, 1, in)
	in.ArrivalL = Port{}
	c.Process(1, 1, in)
	// Arrival R is normalled to arrival L.
	l, r := c.Process(1, -1, in)
	if l != 3 || r != 1 {
		t.Fatalf("departure = %v,%v want 3,1", l, r)
	}
}

func TestModuleNormalsMainInput(t *testing.T) {
	m := New(100)
	in := DefaultInput()
	in.MainL = Port{Voltage: 1, Connected: true}
	out := m.Process(in)
	for i := 0; i < NumChannels; i++ {
		if out.DepartureL[i] != 1 || out.DepartureR[i] != 1 {
			t.Fatalf("channel %d = %v,%v want 1,1", i, out.DepartureL[i], out.DepartureR[i])
		}
	}

	in.MainR = Port{Voltage: -2, Connected: true}
	out = m.Process(in)
	if out.DepartureR[0] != -2 {
		t.Fatalf("patched right = %v, want -2", out.DepartureR[0])
	}
}

func TestModuleChannelsAreIndependent(t *testing.T) {
	m := New(100)
	in := DefaultInput()
	for i := range in.Channels {
		in.Channels[i].Delay = 0.01
		in.Channels[i].Gain = 1
		in.Channels[i].ArrivalL = Port{Voltage: 1, Connected: true}
	}
	m.Process(in)
	in.Channels[1].Kill = 1
	out := m.Process(in)
	if out.DepartureL[1] != 0 {
		t.Fatalf("killed channel = %v, want 0", out.DepartureL[1])
	}
	if out.DepartureL[0] != 1 || out.DepartureL[2] != 1 {
		t.Fatalf("other channels = %v,%v want 1,1", out.DepartureL[0], out.DepartureL[2])
	}
}

func TestChannelIgnoresNaNDelayCV(t *testing.T) {
	nan := float32(math.NaN())
	if got := DelayTime(1, nan); got != 0 {
		t.Fatalf("DelayTime(1, NaN) = %v, want 0", got)
	}
	d := NewDelayLine(1000)
	if s := d.Setback(nan); s != 0 {
		t.Fatalf("Setback(NaN) = %d, want 0", s)
	}
	if s := d.Setback(-1); s != 0 {
		t.Fatalf("Setback(-1) = %d, want 0", s)
	}

	c := NewChannel(1000)
	in := ChannelInput{Gain: 0.5, Delay: 1, DelayCV: nan}
	for i := 0; i < 10; i++ {
		l, r := c.Process(1, 1, in)
		if math.IsNaN(float64(l)) || math.IsNaN(float64(r)) {
			t.Fatalf("frame %d: output %v,%v is NaN", i, l, r)
		}
	}
}
