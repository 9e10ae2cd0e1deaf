package random

import (
	"encoding/binary"
	"math/rand/v2"
)

// Shared is the simulation-wide random source. Every peer seeds it from the
// match seed and draws from it in the same order, so results stay in lockstep.
type Shared struct {
	src *rand.PCG
	rng *rand.Rand

	draws uint64
}

func New(seed int64) *Shared {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &Shared{src: src, rng: rand.New(src)}
}

// Next returns a value in [0,n). n <= 0 yields 0 without consuming state.
func (s *Shared) Next(n int) int {
	if n <= 0 {
		return 0
	}
	s.draws++
	return s.rng.IntN(n)
}

// Draws is the number of values drawn so far.
func (s *Shared) Draws() uint64 { return s.draws }

// State returns the generator state for digests.
func (s *Shared) State() []byte {
	b, err := s.src.MarshalBinary()
	if err != nil {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], s.draws)
		return tmp[:]
	}
	return b
}
