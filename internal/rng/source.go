package rng

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrUnknownSplit is returned for split names with no assigned seed.
var ErrUnknownSplit = errors.New("rng: unexpected split")

// splitSeeds is the fixed split → seed table.
var splitSeeds = map[string]int64{
	"trnsimple": 100,
	"tstsimple": 101,
}

// SeedForSplit returns the seed assigned to split.
func SeedForSplit(split string) (int64, error) {
	seed, ok := splitSeeds[split]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownSplit, split)
	}
	return seed, nil
}

// Splits returns the known split names in seed order.
func Splits() []string {
	return []string{"trnsimple", "tstsimple"}
}

// Source is the stream of draws consumed by layout generation. Every method
// advances the stream, so call order is part of the output.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Intn returns a uniform integer in [0, n). n must be > 0.
	Intn(n int) int
}

// Stream is a Source backed by MT19937. Not safe for concurrent use.
type Stream struct {
	mt mt19937
}

// New returns a stream seeded with seed.
func New(seed int64) *Stream {
	s := &Stream{}
	s.mt.initByArray(seedKey(seed))
	return s
}

// NewSubStream returns a stream for one image that does not overlap the
// split's main stream or any other image's sub-stream.
func NewSubStream(seed int64, image int) *Stream {
	s := &Stream{}
	key := append(seedKey(seed), uint32(image), 0x5ca1ab1e)
	s.mt.initByArray(key)
	return s
}

// Uint32 returns the next raw 32-bit output.
func (s *Stream) Uint32() uint32 {
	return s.mt.uint32()
}

// Float64 returns a 53-bit uniform value in [0, 1).
func (s *Stream) Float64() float64 {
	a := s.mt.uint32() >> 5
	b := s.mt.uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}

// bits returns the top k bits of the next output, k in [1, 32].
func (s *Stream) bits(k int) uint32 {
	return s.mt.uint32() >> (32 - k)
}

// Intn draws uniformly from [0, n) by rejection on the smallest covering
// power of two. Panics if n <= 0 or n does not fit in 32 bits.
func (s *Stream) Intn(n int) int {
	if n <= 0 || uint64(n) > 1<<32-1 {
		panic(fmt.Sprintf("rng: Intn argument out of range: %d", n))
	}
	k := bits.Len(uint(n))
	r := s.bits(k)
	for int(r) >= n {
		r = s.bits(k)
	}
	return int(r)
}

// Uniform returns a value in [a, b).
func Uniform(src Source, a, b float64) float64 {
	return a + (b-a)*src.Float64()
}

// Jitter returns a symmetric perturbation in [-l, l).
func Jitter(src Source, l float64) float64 {
	return 2.0 * l * (src.Float64() - 0.5)
}
