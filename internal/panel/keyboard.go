// Package panel maps a raw-mode terminal keyboard onto the rig's buttons.
package panel

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/cbegin/mfrack-go/internal/rack"
)

// Keymap binds keys to momentary controls.
var Keymap = map[byte]rack.Control{
	'1': rack.ControlSine,
	'2': rack.ControlTriangle,
	'3': rack.ControlSquare,
	'4': rack.ControlSaw,
	'q': rack.ControlCanon,
	'w': rack.ControlForwardForward,
	'e': rack.ControlForwardBackward,
	'r': rack.ControlRandom,
	'z': rack.ControlKill1,
	'x': rack.ControlKill2,
	'c': rack.ControlKill3,
}

// Help describes the key bindings.
const Help = "1-4 waveform  q/w/e/r mode  z/x/c kill  ? randomize  Esc/Ctrl-C quit\r\n"

// ErrQuit is returned by Run when the user asks to quit.
var ErrQuit = errors.New("panel: quit")

// Target receives panel actions.
type Target interface {
	Press(rack.Control)
	Randomize()
}

// Dispatch applies one key to t. It returns ErrQuit for quit keys and false
// when the key is not bound.
func Dispatch(key byte, t Target) (bool, error) {
	switch key {
	case 0x03, 0x1b:
		return true, ErrQuit
	case '?':
		t.Randomize()
		return true, nil
	}
	c, ok := Keymap[key]
	if !ok {
		return false, nil
	}
	t.Press(c)
	return true, nil
}

// Read dispatches keys from r until it ends, a quit key arrives or ctx is
// done. onKey is called after every bound key. The blocking reads run on
// their own goroutine, which is left behind when ctx ends first.
func Read(ctx context.Context, r io.Reader, t Target, onKey func(byte)) error {
	keys := make(chan byte)
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case key := <-keys:
			bound, err := Dispatch(key, t)
			if err != nil {
				return err
			}
			if bound && onKey != nil {
				onKey(key)
			}
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Run puts stdin into raw mode and reads keys until quit or until ctx is
// done. The terminal is restored before returning.
func Run(ctx context.Context, t Target, onKey func(byte)) error {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, old)
	return Read(ctx, os.Stdin, t, onKey)
}

// IsTerminal reports whether stdin is an interactive terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
