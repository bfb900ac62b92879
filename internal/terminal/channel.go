package terminal

import "github.com/cbegin/mfrack-go/internal/dsp"

const (
	DefaultGain  = 0.5
	DefaultDelay = 1.5
)

// gainCVScale converts gain CV volts to a gain offset; 10 V spans the range.
const gainCVScale = 0.1

// Port is an input jack. Unconnected jacks may be normalled to another one.
type Port struct {
	Voltage   float32
	Connected bool
}

// Normal returns the port's voltage, or fallback when nothing is patched.
func (p Port) Normal(fallback float32) float32 {
	if p.Connected {
		return p.Voltage
	}
	return fallback
}

// ChannelInput is one frame of controls and signals for a channel.
type ChannelInput struct {
	Gain    float32
	Delay   float32
	Kill    float32
	GainCV  float32
	DelayCV float32
	// ArrivalL and ArrivalR carry the feedback return.
	ArrivalL Port
	ArrivalR Port
}

// Gain returns the tap gain for a knob position and CV, clamped to [0, 1].
func Gain(knob, cv float32) float32 {
	return dsp.Clamp(knob+cv*gainCVScale, 0, 1)
}

// Channel mixes the main input with its delayed feedback tap and handles
// the kill button.
type Channel struct {
	line *DelayLine
	kill dsp.BooleanTrigger
}

func NewChannel(sampleRate float32) *Channel {
	return &Channel{line: NewDelayLine(sampleRate)}
}

// Process runs one frame. A rising kill edge wipes the delay history, resets
// the cursor and silences this frame's departure.
func (c *Channel) Process(mainL, mainR float32, in ChannelInput) (float32, float32) {
	arrL := in.ArrivalL.Normal(0)
	arrR := in.ArrivalR.Normal(arrL)
	tapL, tapR := c.line.Process(arrL, arrR, DelayTime(in.Delay, in.DelayCV))

	if c.kill.Process(in.Kill) {
		c.line.Clear()
		return 0, 0
	}

	g := Gain(in.Gain, in.GainCV)
	return mainL + tapL*g, mainR + tapR*g
}

// Line exposes the channel's delay line.
func (c *Channel) Line() *DelayLine { return c.line }
