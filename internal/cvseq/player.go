package cvseq

// Player steps through a Sequence one sample at a time.
type Player struct {
	seq     *Sequence
	idx     int
	elapsed float32
	from    float32
}

func NewPlayer(seq *Sequence) *Player {
	p := &Player{}
	p.Reset(seq)
	return p
}

// Reset starts seq from its first step.
func (p *Player) Reset(seq *Sequence) {
	p.seq = seq
	p.idx = 0
	p.elapsed = 0
	p.from = 0
	if seq != nil && len(seq.Steps) > 0 {
		p.from = seq.Steps[0]
	}
}

// Next returns the voltage for this sample and advances by sampleTime.
// While gliding the voltage moves linearly from the previous step.
func (p *Player) Next(sampleTime float32) float32 {
	if p.seq == nil || len(p.seq.Steps) == 0 {
		return 0
	}
	target := p.seq.Steps[p.idx]
	v := target
	if g := p.seq.GlideSeconds; g > 0 && p.elapsed < g {
		v = p.from + (target-p.from)*p.elapsed/g
	}
	p.elapsed += sampleTime
	if p.elapsed >= p.seq.StepSeconds {
		p.elapsed -= p.seq.StepSeconds
		p.from = target
		p.idx = (p.idx + 1) % len(p.seq.Steps)
	}
	return v
}

// Step returns the index of the current step.
func (p *Player) Step() int { return p.idx }
