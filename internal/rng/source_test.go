package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMT19937ReferenceOutputs(t *testing.T) {
	// mt19937ar.c reference output for init_by_array({0x123, 0x234, 0x345, 0x456}).
	var mt mt19937
	mt.initByArray([]uint32{0x123, 0x234, 0x345, 0x456})
	want := []uint32{1067595299, 955945823, 477289528, 4107218783, 4228976476}
	for i, w := range want {
		assert.Equal(t, w, mt.uint32(), "output %d", i)
	}

	var def mt19937
	def.initGenrand(5489)
	assert.Equal(t, uint32(3499211612), def.uint32())
}

func TestFloat64MatchesCPython(t *testing.T) {
	tests := []struct {
		seed int64
		want []float64
	}{
		{0, []float64{0.8444218515250481, 0.7579544029403025, 0.420571580830845}},
		{42, []float64{0.6394267984578837, 0.025010755222666936, 0.27502931836911926}},
	}
	for _, tc := range tests {
		s := New(tc.seed)
		for i, w := range tc.want {
			assert.Equal(t, w, s.Float64(), "seed %d draw %d", tc.seed, i)
		}
	}
}

func TestSeedForSplit(t *testing.T) {
	seed, err := SeedForSplit("trnsimple")
	require.NoError(t, err)
	assert.Equal(t, int64(100), seed)

	seed, err = SeedForSplit("tstsimple")
	require.NoError(t, err)
	assert.Equal(t, int64(101), seed)

	_, err = SeedForSplit("valsimple")
	assert.ErrorIs(t, err, ErrUnknownSplit)

	for _, split := range Splits() {
		_, err := SeedForSplit(split)
		assert.NoError(t, err, split)
	}
}

func TestIntnRange(t *testing.T) {
	s := New(100)
	seen := make(map[int]int)
	for i := 0; i < 3000; i++ {
		v := s.Intn(6)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 6)
		seen[v]++
	}
	assert.Len(t, seen, 6)
	assert.Equal(t, 0, New(1).Intn(1))
	assert.Panics(t, func() { s.Intn(0) })
}

func TestStreamsAreReproducible(t *testing.T) {
	a, b := New(100), New(100)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint32(), b.Uint32())
	}

	main := New(100)
	sub0 := NewSubStream(100, 0)
	sub1 := NewSubStream(100, 1)
	again := NewSubStream(100, 1)
	assert.NotEqual(t, main.Float64(), sub0.Float64())
	x := sub1.Float64()
	assert.Equal(t, x, again.Float64())
	assert.NotEqual(t, NewSubStream(101, 0).Float64(), NewSubStream(100, 1).Float64())
}

func TestUniformAndJitterBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		u := Uniform(s, -2.5, 2.5)
		require.True(t, u >= -2.5 && u < 2.5, u)
		j := Jitter(s, 0.05)
		require.True(t, j >= -0.05 && j < 0.05, j)
	}
}
