// Package cvseq produces a stepped 1V/octave control voltage from a Lua
// script, optionally gliding between steps.
//
// A script sets the globals
//
//	steps = { note("C4"), note("E4"), 0.5, ... }  -- volts or note names
//	step  = 0.25                                   -- seconds per step
//	glide = 0.05                                   -- optional portamento
package cvseq

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/cbegin/mfrack-go/internal/dsp"
)

const defaultStepSeconds = 0.25

// MaxVolts bounds every step to [-MaxVolts, MaxVolts].
const MaxVolts = 5

// Sequence is a looping list of V/Oct steps.
type Sequence struct {
	Steps        []float32
	StepSeconds  float32
	GlideSeconds float32
}

// Default returns a C major arpeggio at a quarter second per step.
func Default() *Sequence {
	return &Sequence{
		Steps:       []float32{0, 4.0 / 12, 7.0 / 12, 1, 7.0 / 12, 4.0 / 12},
		StepSeconds: defaultStepSeconds,
	}
}

func (s *Sequence) validate() error {
	if len(s.Steps) == 0 {
		return errors.New("cvseq: steps must not be empty")
	}
	if s.StepSeconds <= 0 {
		return fmt.Errorf("cvseq: step must be positive, got %v", s.StepSeconds)
	}
	if s.GlideSeconds < 0 {
		return fmt.Errorf("cvseq: glide must not be negative, got %v", s.GlideSeconds)
	}
	if s.GlideSeconds > s.StepSeconds {
		s.GlideSeconds = s.StepSeconds
	}
	for i, v := range s.Steps {
		s.Steps[i] = dsp.Clamp(v, -MaxVolts, MaxVolts)
	}
	return nil
}

// Load runs the script at path and returns its sequence.
func Load(path string) (*Sequence, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadString(string(src))
}

// LoadString runs a Lua script and returns its sequence.
func LoadString(src string) (*Sequence, error) {
	L := lua.NewState()
	defer L.Close()
	L.SetGlobal("note", L.NewFunction(luaNote))
	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("cvseq: %w", err)
	}

	seq := &Sequence{StepSeconds: defaultStepSeconds}
	tbl, ok := L.GetGlobal("steps").(*lua.LTable)
	if !ok {
		return nil, errors.New("cvseq: script must define a steps table")
	}
	for i := 1; i <= tbl.Len(); i++ {
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LNumber:
			seq.Steps = append(seq.Steps, float32(v))
		case lua.LString:
			volts, err := NoteVolts(string(v))
			if err != nil {
				return nil, fmt.Errorf("cvseq: step %d: %w", i, err)
			}
			seq.Steps = append(seq.Steps, volts)
		default:
			return nil, fmt.Errorf("cvseq: step %d: expected number or note name, got %s", i, v.Type())
		}
	}
	if v, ok := L.GetGlobal("step").(lua.LNumber); ok {
		seq.StepSeconds = float32(v)
	}
	if v, ok := L.GetGlobal("glide").(lua.LNumber); ok {
		seq.GlideSeconds = float32(v)
	}
	if err := seq.validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

func luaNote(L *lua.LState) int {
	volts, err := NoteVolts(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(lua.LNumber(volts))
	return 1
}

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// NoteVolts converts a note name such as "C4", "F#3" or "Bb5" to volts,
// with C4 at 0 V.
func NoteVolts(name string) (float32, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, errors.New("empty note name")
	}
	semi, ok := semitones[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note %q", name)
	}
	s = s[1:]
	if strings.HasPrefix(s, "#") {
		semi++
		s = s[1:]
	} else if strings.HasPrefix(s, "b") {
		semi--
		s = s[1:]
	}
	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note %q", name)
	}
	return float32(octave-4) + float32(semi)/12, nil
}
