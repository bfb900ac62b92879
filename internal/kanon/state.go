package kanon

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidState is returned when persisted state contains a value that
// cannot be applied. Loading still completes; the offending field falls back
// to its default.
var ErrInvalidState = errors.New("kanon: invalid state")

// State is the persisted part of the module.
type State struct {
	Mode      int     `json:"mode"`
	Waveshape int     `json:"waveshape"`
	Coarse    float64 `json:"coarse"`
	Fine      float64 `json:"fine"`
}

// State captures the module's persisted fields.
func (m *Module) State() State {
	return State{
		Mode:      int(m.dist.Mode),
		Waveshape: int(m.waveform),
		Coarse:    float64(m.Params.Coarse),
		Fine:      float64(m.Params.Fine),
	}
}

// MarshalJSON encodes the persisted fields.
func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.State())
}

// UnmarshalJSON applies persisted fields. Missing or malformed fields load as
// zero. Out-of-range mode or waveshape ordinals are rejected: the field falls
// back to its default and the returned error wraps ErrInvalidState, but every
// other field is still applied.
func (m *Module) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	var errs []error
	if err := json.Unmarshal(data, &fields); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidState, err))
	}

	mode, err := intField(fields, "mode")
	errs = append(errs, err)
	if !Mode(mode).Valid() {
		errs = append(errs, fmt.Errorf("%w: mode %d out of range", ErrInvalidState, mode))
		mode = int(ModeCanon)
	}
	wave, err := intField(fields, "waveshape")
	errs = append(errs, err)
	if !Waveform(wave).Valid() {
		errs = append(errs, fmt.Errorf("%w: waveshape %d out of range", ErrInvalidState, wave))
		wave = int(WaveSine)
	}
	coarse, err := floatField(fields, "coarse")
	errs = append(errs, err)
	fine, err := floatField(fields, "fine")
	errs = append(errs, err)

	m.SetMode(Mode(mode))
	m.SetWaveform(Waveform(wave))
	m.Params.Coarse = float32(coarse)
	m.Params.Fine = float32(fine)
	return errors.Join(errs...)
}

func intField(fields map[string]json.RawMessage, key string) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidState, key, err)
	}
	return v, nil
}

func floatField(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidState, key, err)
	}
	return v, nil
}
