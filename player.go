package mfrack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	intaudio "github.com/cbegin/mfrack-go/internal/audio"
	"github.com/cbegin/mfrack-go/internal/cvseq"
	"github.com/cbegin/mfrack-go/internal/rack"
)

type Backend = intaudio.Backend

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	backend   Backend
	sequence  *cvseq.Sequence
	rigOpts   []rack.RigOption
	sampleTap func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{backend: BackendEbiten}
}

func WithBackend(b Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

// WithSequence sets the V/Oct sequence driving Kanon. The default is a
// C major arpeggio.
func WithSequence(seq *cvseq.Sequence) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sequence = seq
	}
}

func WithRigOptions(opts ...rack.RigOption) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.rigOpts = append(cfg.rigOpts, opts...)
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player runs a rig in real time.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	backend    Backend
	rig        *rack.Rig
	audio      intaudio.Output
	sampleTap  func([]float32)
}

type tappedSource struct {
	rig *rack.Rig
	tap func([]float32)
}

func (s *tappedSource) Process(dst []float32) {
	s.rig.Process(dst)
	if s.tap != nil {
		s.tap(dst)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	rig, err := rack.NewRig(sampleRate, cfg.sequence, cfg.rigOpts...)
	if err != nil {
		return nil, err
	}
	return &Player{
		sampleRate: sampleRate,
		backend:    cfg.backend,
		rig:        rig,
		sampleTap:  cfg.sampleTap,
	}, nil
}

// Play opens the audio backend and starts the rig. Calling Play while
// already playing resumes playback.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		out, err := intaudio.Open(p.backend, p.sampleRate, &tappedSource{rig: p.rig, tap: p.sampleTap})
		if err != nil {
			return err
		}
		p.audio = out
	}
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Press pushes a panel button for one frame.
func (p *Player) Press(c rack.Control) { p.rig.Press(c) }

// Randomize picks a random Kanon mode and waveform.
func (p *Player) Randomize() { p.rig.Randomize() }

// Rig returns the underlying patch.
func (p *Player) Rig() *rack.Rig { return p.rig }

// LoadSequence replaces the running sequence with the script at path.
func (p *Player) LoadSequence(path string) error {
	seq, err := cvseq.Load(path)
	if err != nil {
		return err
	}
	p.rig.SetSequence(seq)
	return nil
}

// WatchSequence reloads the script at path each time it changes until ctx
// is done. Reload failures go to report and leave the old sequence playing.
func (p *Player) WatchSequence(ctx context.Context, path string, report func(error)) error {
	w, err := cvseq.NewWatcher(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, p.rig.SetSequence, report)
}

// SaveState writes Kanon's persisted state to path.
func (p *Player) SaveState(path string) error {
	data, err := p.rig.SaveKanon()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadState reads Kanon's persisted state from path. An error wrapping
// kanon.ErrInvalidState means the file was applied with defaults for the
// fields it could not use.
func (p *Player) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	return p.rig.LoadKanon(data)
}
