package bees

// Pool recycles bee objects to bound allocation churn in colonies with
// heavy birth/death turnover. Acquire hands out a zeroed bee; Release
// returns one to the arena. Nothing is garbage-collection magic: the
// lifecycle is explicit.
type Pool struct {
	free []*Bee
}

// NewPool creates an empty arena.
func NewPool() *Pool {
	return &Pool{free: make([]*Bee, 0, 32)}
}

// Acquire returns a reset bee, reusing a released one when available.
func (p *Pool) Acquire() *Bee {
	n := len(p.free)
	if n == 0 {
		return &Bee{}
	}
	b := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	return b
}

// Release resets a dead bee and returns it to the arena. The caller
// must not touch the bee afterward.
func (p *Pool) Release(b *Bee) {
	*b = Bee{}
	p.free = append(p.free, b)
}

// Size returns the number of bees currently parked in the arena.
func (p *Pool) Size() int {
	return len(p.free)
}
