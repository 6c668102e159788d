package rng

// MT19937 constants.
const (
	mtN         = 624
	mtM         = 397
	matrixA     = 0x9908b0df
	upperMask   = 0x80000000
	lowerMask   = 0x7fffffff
	initMult    = 1812433253
	arrayMult1  = 1664525
	arrayMult2  = 1566083941
	arrayInitSd = 19650218
)

// mt19937 is the 32-bit Mersenne Twister, seeded the way CPython's random
// module seeds it so integer seeds give the same stream.
type mt19937 struct {
	state [mtN]uint32
	index int
}

func (mt *mt19937) initGenrand(s uint32) {
	mt.state[0] = s
	for i := 1; i < mtN; i++ {
		prev := mt.state[i-1]
		mt.state[i] = initMult*(prev^(prev>>30)) + uint32(i)
	}
	mt.index = mtN
}

func (mt *mt19937) initByArray(key []uint32) {
	mt.initGenrand(arrayInitSd)
	i, j := 1, 0
	k := mtN
	if len(key) > k {
		k = len(key)
	}
	for ; k > 0; k-- {
		prev := mt.state[i-1]
		mt.state[i] = (mt.state[i] ^ ((prev ^ (prev >> 30)) * arrayMult1)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			mt.state[0] = mt.state[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		prev := mt.state[i-1]
		mt.state[i] = (mt.state[i] ^ ((prev ^ (prev >> 30)) * arrayMult2)) - uint32(i)
		i++
		if i >= mtN {
			mt.state[0] = mt.state[mtN-1]
			i = 1
		}
	}
	mt.state[0] = 0x80000000
	mt.index = mtN
}

func (mt *mt19937) twist() {
	mag01 := [2]uint32{0, matrixA}
	var kk int
	for ; kk < mtN-mtM; kk++ {
		y := (mt.state[kk] & upperMask) | (mt.state[kk+1] & lowerMask)
		mt.state[kk] = mt.state[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
	}
	for ; kk < mtN-1; kk++ {
		y := (mt.state[kk] & upperMask) | (mt.state[kk+1] & lowerMask)
		mt.state[kk] = mt.state[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01[y&1]
	}
	y := (mt.state[mtN-1] & upperMask) | (mt.state[0] & lowerMask)
	mt.state[mtN-1] = mt.state[mtM-1] ^ (y >> 1) ^ mag01[y&1]
	mt.index = 0
}

// uint32 returns the next tempered output.
func (mt *mt19937) uint32() uint32 {
	if mt.index >= mtN {
		mt.twist()
	}
	y := mt.state[mt.index]
	mt.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// seedKey splits |seed| into little-endian 32-bit words. Zero maps to [0].
func seedKey(seed int64) []uint32 {
	n := uint64(seed)
	if seed < 0 {
		n = uint64(-seed)
	}
	if n == 0 {
		return []uint32{0}
	}
	var key []uint32
	for n > 0 {
		key = append(key, uint32(n))
		n >>= 32
	}
	return key
}
