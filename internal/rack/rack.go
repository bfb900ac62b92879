// Package rack hosts the Kanon and Terminal modules: it clocks them once per
// frame, patches them together and turns queued button presses into
// momentary button signals.
package rack

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cbegin/mfrack-go/internal/cvseq"
	"github.com/cbegin/mfrack-go/internal/kanon"
	"github.com/cbegin/mfrack-go/internal/lfo"
	"github.com/cbegin/mfrack-go/internal/terminal"
)

// ProcessArgs carries the host timing for one frame.
type ProcessArgs struct {
	SampleRate float32
	SampleTime float32
}

func NewProcessArgs(sampleRate int) ProcessArgs {
	return ProcessArgs{SampleRate: float32(sampleRate), SampleTime: 1 / float32(sampleRate)}
}

// ChannelConfig holds Terminal knob positions for one channel.
type ChannelConfig struct {
	Gain     float32
	Delay    float32
	Feedback float32 // departure level returned to the channel's arrival
}

type rigConfig struct {
	channels [terminal.NumChannels]ChannelConfig
	rng      kanon.Rand
	lfoDepth float32
	lfoRate  float32
	lfoShape kanon.Waveform
	coarse   float32
	fine     float32
}

func defaultRigConfig() rigConfig {
	cfg := rigConfig{lfoDepth: 0.5, lfoRate: 0.2, lfoShape: kanon.WaveTriangle}
	for i := range cfg.channels {
		cfg.channels[i] = ChannelConfig{Gain: terminal.DefaultGain, Delay: terminal.DefaultDelay, Feedback: 0.5}
	}
	return cfg
}

type RigOption func(*rigConfig)

// WithChannel sets the knobs of Terminal channel i.
func WithChannel(i int, c ChannelConfig) RigOption {
	return func(cfg *rigConfig) {
		if i >= 0 && i < terminal.NumChannels {
			cfg.channels[i] = c
		}
	}
}

// WithRand sets the random source used by Kanon's random mode.
func WithRand(rng kanon.Rand) RigOption {
	return func(cfg *rigConfig) {
		cfg.rng = rng
	}
}

// WithDelayLFO configures the LFO patched into channel 3's delay CV.
// A zero depth disconnects it.
func WithDelayLFO(depth, rateHz float32, shape kanon.Waveform) RigOption {
	return func(cfg *rigConfig) {
		cfg.lfoDepth = depth
		cfg.lfoRate = rateHz
		cfg.lfoShape = shape
	}
}

// WithPitch sets Kanon's coarse and fine knobs.
func WithPitch(coarse, fine float32) RigOption {
	return func(cfg *rigConfig) {
		cfg.coarse = coarse
		cfg.fine = fine
	}
}

// Rig is a small patch: a scripted V/Oct sequence drives Kanon, Kanon's
// voices feed Terminal's main input, and each Terminal departure is
// returned to its own arrival one frame later.
//
// Process runs on the audio thread; Press, SetSequence and the state
// methods may be called from other goroutines.
type Rig struct {
	mu       sync.Mutex
	args     ProcessArgs
	kanon    *kanon.Module
	terminal *terminal.Module
	seq      *cvseq.Player
	lfo      lfo.LFO
	channels [terminal.NumChannels]ChannelConfig
	last     terminal.Output
	buttons  buttonBank
}

// NewRig builds the patch for sampleRate. Terminal's delay memory is sized
// here and is not reallocated afterwards.
func NewRig(sampleRate int, seq *cvseq.Sequence, opts ...RigOption) (*Rig, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if seq == nil {
		seq = cvseq.Default()
	}
	cfg := defaultRigConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	args := NewProcessArgs(sampleRate)
	r := &Rig{
		args:     args,
		kanon:    kanon.New(cfg.rng),
		terminal: terminal.New(args.SampleRate),
		seq:      cvseq.NewPlayer(seq),
		channels: cfg.channels,
	}
	r.kanon.Params.Coarse = cfg.coarse
	r.kanon.Params.Fine = cfg.fine
	r.lfo.Set(cfg.lfoDepth, 0, cfg.lfoRate, cfg.lfoShape)
	return r, nil
}

// Frame is the full set of module outputs for one processed frame.
type Frame struct {
	VOct      float32
	Voices    [kanon.NumVoices]float32
	Departure terminal.Output
}

// Step advances the whole patch by one frame.
func (r *Rig) Step() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step()
}

func (r *Rig) step() Frame {
	st := r.args.SampleTime
	var f Frame

	r.buttons.apply(r.kanon)
	f.VOct = r.seq.Next(st)
	f.Voices = r.kanon.Process(f.VOct, st)

	in := terminal.Input{
		MainL: terminal.Port{Voltage: (f.Voices[0] + f.Voices[1]) / 2, Connected: true},
		MainR: terminal.Port{Voltage: (f.Voices[2] + f.Voices[3]) / 2, Connected: true},
	}
	for i := range in.Channels {
		c := r.channels[i]
		ch := &in.Channels[i]
		ch.Gain = c.Gain
		ch.Delay = c.Delay
		ch.Kill = r.buttons.kill[i]
		ch.ArrivalL = terminal.Port{Voltage: r.last.DepartureL[i] * c.Feedback, Connected: true}
		ch.ArrivalR = terminal.Port{Voltage: r.last.DepartureR[i] * c.Feedback, Connected: true}
	}
	in.Channels[terminal.NumChannels-1].DelayCV = r.lfo.Sample(st)

	f.Departure = r.terminal.Process(in)
	r.last = f.Departure
	return f
}

// Process fills dst with interleaved stereo frames: the mean of the three
// departures, scaled from ±10 V to ±1.
func (r *Rig) Process(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		f := r.step()
		var l, rr float32
		for c := 0; c < terminal.NumChannels; c++ {
			l += f.Departure.DepartureL[c]
			rr += f.Departure.DepartureR[c]
		}
		dst[i] = l / terminal.NumChannels / 10
		dst[i+1] = rr / terminal.NumChannels / 10
	}
}

// SetSequence swaps the V/Oct sequence, restarting it from the first step.
func (r *Rig) SetSequence(seq *cvseq.Sequence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq.Reset(seq)
}

// Randomize picks a random Kanon mode and waveform.
func (r *Rig) Randomize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kanon.Randomize()
}

// SaveKanon returns Kanon's persisted state as JSON.
func (r *Rig) SaveKanon() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(r.kanon)
}

// LoadKanon applies persisted Kanon state. Errors wrapping
// kanon.ErrInvalidState are recoverable: the state was still applied with
// defaults for the offending fields.
func (r *Rig) LoadKanon(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kanon.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("load kanon state: %w", err)
	}
	return nil
}

// KanonState reports Kanon's mode, waveform and master voice.
func (r *Rig) KanonState() (kanon.Mode, kanon.Waveform, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kanon.Mode(), r.kanon.Waveform(), r.kanon.MasterVoice()
}

func (r *Rig) SampleRate() int { return int(r.args.SampleRate) }
