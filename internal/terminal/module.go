package terminal

// NumChannels is the number of independent delay channels.
const NumChannels = 3

// Input is one frame of everything patched into the module.
type Input struct {
	MainL    Port
	MainR    Port
	Channels [NumChannels]ChannelInput
}

// Output holds the departure pairs for one frame.
type Output struct {
	DepartureL [NumChannels]float32
	DepartureR [NumChannels]float32
}

// Module is the three-channel feedback delay mixer.
type Module struct {
	channels   [NumChannels]*Channel
	sampleRate float32
}

// New allocates all delay memory for sampleRate. Buffers are not resized if
// the host rate changes later.
func New(sampleRate float32) *Module {
	m := &Module{sampleRate: sampleRate}
	for i := range m.channels {
		m.channels[i] = NewChannel(sampleRate)
	}
	return m
}

// DefaultInput returns an input frame with every knob at its default.
func DefaultInput() Input {
	var in Input
	for i := range in.Channels {
		in.Channels[i].Gain = DefaultGain
		in.Channels[i].Delay = DefaultDelay
	}
	return in
}

func (m *Module) Process(in Input) Output {
	mainL := in.MainL.Normal(0)
	mainR := in.MainR.Normal(mainL)
	var out Output
	for i, ch := range m.channels {
		out.DepartureL[i], out.DepartureR[i] = ch.Process(mainL, mainR, in.Channels[i])
	}
	return out
}

// Channel returns channel i.
func (m *Module) Channel(i int) *Channel { return m.channels[i] }

// SampleRate returns the rate the delay buffers were sized for.
func (m *Module) SampleRate() float32 { return m.sampleRate }
