package rack

import (
	"fmt"
	"strings"

	"github.com/cbegin/mfrack-go/internal/kanon"
	"github.com/cbegin/mfrack-go/internal/terminal"
)

// Control names a momentary panel button.
type Control int

const (
	ControlSine Control = iota
	ControlTriangle
	ControlSquare
	ControlSaw
	ControlCanon
	ControlForwardForward
	ControlForwardBackward
	ControlRandom
	ControlKill1
	ControlKill2
	ControlKill3
	numControls
)

var controlNames = [numControls]string{
	"sine", "triangle", "square", "saw",
	"canon", "fwd-fwd", "fwd-bwd", "random",
	"kill1", "kill2", "kill3",
}

func (c Control) String() string {
	if c < 0 || c >= numControls {
		return fmt.Sprintf("control(%d)", int(c))
	}
	return controlNames[c]
}

// ParseControl resolves a control by name.
func ParseControl(name string) (Control, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, cn := range controlNames {
		if cn == n {
			return Control(i), nil
		}
	}
	return 0, fmt.Errorf("unknown control %q", name)
}

// buttonBank turns presses into one-frame button pulses.
type buttonBank struct {
	pending [numControls]bool
	kill    [terminal.NumChannels]float32
}

func (b *buttonBank) press(c Control) {
	if c >= 0 && c < numControls {
		b.pending[c] = true
	}
}

// pulse returns 1 for a pending press and clears it.
func (b *buttonBank) pulse(c Control) float32 {
	if b.pending[c] {
		b.pending[c] = false
		return 1
	}
	return 0
}

func (b *buttonBank) apply(k *kanon.Module) {
	for i := range k.Params.Waveform {
		k.Params.Waveform[i] = b.pulse(ControlSine + Control(i))
	}
	for i := range k.Params.Mode {
		k.Params.Mode[i] = b.pulse(ControlCanon + Control(i))
	}
	for i := range b.kill {
		b.kill[i] = b.pulse(ControlKill1 + Control(i))
	}
}

// Press queues a momentary press of c. The button reads high for the next
// frame and low after that.
func (r *Rig) Press(c Control) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buttons.press(c)
}
