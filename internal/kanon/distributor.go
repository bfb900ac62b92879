package kanon

// NumVoices is the number of oscillator voices in the bank.
const NumVoices = 4

// Mode selects how newly settled pitches are distributed across the voices.
type Mode int

const (
	ModeCanon Mode = iota
	ModeForwardForward
	ModeForwardBackward
	ModeRandom
	NumModes
)

func (m Mode) String() string {
	switch m {
	case ModeCanon:
		return "canon"
	case ModeForwardForward:
		return "forward-forward"
	case ModeForwardBackward:
		return "forward-backward"
	case ModeRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the four distribution modes.
func (m Mode) Valid() bool { return m >= 0 && m < NumModes }

// Direction is the sweep direction used by ModeForwardBackward.
type Direction int

const (
	Increasing Direction = iota
	Decreasing
)

// Rand is the uniform integer source used by ModeRandom.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Distributor holds the pitch distribution state. It is kept separate from
// the module so it can be driven without a host.
type Distributor struct {
	Mode      Mode
	Master    int
	Direction Direction
	LastInput float32
}

// SetMode switches the distribution mode. Entering ModeCanon pins the master
// voice back to 0; other modes keep it where it is.
func (d *Distributor) SetMode(m Mode) {
	d.Mode = m
	if m == ModeCanon {
		d.Master = 0
	}
}

// Process feeds one frame of the V/Oct input. A step is accepted only when
// the input held the same value for two frames and differs from the value
// stored in the master voice, so a gliding voltage never reassigns voices.
// It reports whether a step was accepted.
func (d *Distributor) Process(offsets *[NumVoices]float32, in float32, rng Rand) bool {
	accepted := in == d.LastInput && in != offsets[d.Master]
	if accepted {
		d.step(offsets, in, rng)
	}
	d.LastInput = in
	return accepted
}

func (d *Distributor) step(offsets *[NumVoices]float32, v float32, rng Rand) {
	switch d.Mode {
	case ModeCanon:
		offsets[3] = offsets[2]
		offsets[2] = offsets[1]
		offsets[1] = offsets[d.Master]
		offsets[d.Master] = v
	case ModeForwardForward:
		d.Master = (d.Master + 1) % NumVoices
		offsets[d.Master] = v
	case ModeForwardBackward:
		// The first step from the reset state moves before assigning, so
		// voice 0 is only revisited when the sweep bounces back down.
		// Switching in from another mode can leave the master at an end
		// with the sweep still pointing outward; turn around first.
		if d.Direction == Increasing && d.Master >= NumVoices-1 {
			d.Direction = Decreasing
		} else if d.Direction == Decreasing && d.Master <= 0 {
			d.Direction = Increasing
		}
		if d.Direction == Increasing {
			d.Master++
			if d.Master == NumVoices-1 {
				d.Direction = Decreasing
			}
		} else {
			d.Master--
			if d.Master == 0 {
				d.Direction = Increasing
			}
		}
		offsets[d.Master] = v
	case ModeRandom:
		d.Master = rng.IntN(NumVoices)
		offsets[d.Master] = v
	}
}
