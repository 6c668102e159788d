package relate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clevr-scenegen/internal/camera"
	"clevr-scenegen/internal/mathutil"
	"clevr-scenegen/internal/rng"
)

// axisDirections is a camera at +X looking at the origin.
func axisDirections(t *testing.T) camera.Directions {
	t.Helper()
	d, err := camera.NewDirections(
		mathutil.Vec3{-1, 0, 0},
		mathutil.Vec3{0, -1, 0},
		mathutil.Vec3{0, 0, 1},
	)
	require.NoError(t, err)
	return d
}

func TestComputeSmallScene(t *testing.T) {
	positions := []mathutil.Vec3{
		{0, 0, 0.35},
		{0, -1, 0.25},   // left of 0
		{-1, 0, 0.35},   // behind 0
		{0.1, 0.1, 0.2}, // within epsilon of 0 on both axes
	}
	table := Compute(positions, axisDirections(t))

	assert.Equal(t, []int{1}, table[camera.Left][0])
	assert.Equal(t, []int{0, 2, 3}, table[camera.Right][1])
	assert.Equal(t, []int{2}, table[camera.Behind][0])
	assert.Equal(t, []int{0, 1, 3}, table[camera.Front][2])
	assert.Equal(t, []int{1}, table[camera.Left][3])
	assert.Equal(t, []int{}, table[camera.Right][2])

	assert.True(t, table.Related(camera.Left, 0, 1))
	assert.False(t, table.Related(camera.Right, 0, 1))
	assert.False(t, table.Related(camera.Left, 0, 3))
	assert.False(t, table.Related(camera.Above, 0, 1))
	assert.False(t, table.Related(camera.Left, 9, 1))

	_, hasAbove := table[camera.Above]
	assert.False(t, hasAbove)
	assert.NoError(t, Check(table, len(positions)))
}

func TestEpsilonIsStrict(t *testing.T) {
	positions := []mathutil.Vec3{{0, 0, 0}, {0, -Epsilon, 0}}
	table := Compute(positions, axisDirections(t))
	assert.Empty(t, table[camera.Left][0])
	assert.Empty(t, table[camera.Right][1])
}

func TestEmptyRowsEncodeAsLists(t *testing.T) {
	table := Compute([]mathutil.Vec3{{0, 0, 0}}, axisDirections(t))
	for _, d := range camera.Horizontal {
		require.Len(t, table[d], 1)
		assert.NotNil(t, table[d][0])
		assert.Empty(t, table[d][0])
	}
}

func TestRelationProperties(t *testing.T) {
	src := rng.New(2024)
	cam := camera.NewPinhole(mathutil.Vec3{3, 0, 8}, camera.Optics{Width: 320, Height: 240, Percent: 100, Lens: 35, SensorWidth: 32})

	for scene := 0; scene < 200; scene++ {
		view, err := cam.View(mathutil.Vec3{rng.Jitter(src, 0.5), rng.Jitter(src, 0.5), rng.Jitter(src, 0.5)})
		require.NoError(t, err)

		positions := make([]mathutil.Vec3, 6)
		for i := range positions {
			positions[i] = mathutil.Vec3{rng.Uniform(src, -2.5, 2.5), rng.Uniform(src, -2.5, 2.5), 0.25}
		}
		table := Compute(positions, view.Directions())
		require.NoError(t, Check(table, len(positions)))

		for i := range positions {
			for _, d := range camera.Horizontal {
				assert.NotContains(t, table[d][i], i)
				for _, j := range table[d][i] {
					assert.False(t, table.Related(d.Opposite(), i, j))
					// j is d of i exactly when i is opposite(d) of j.
					assert.True(t, table.Related(d.Opposite(), j, i))
				}
			}
		}
	}
}

func TestCheckDetectsViolations(t *testing.T) {
	good := func() Table {
		return Table{
			camera.Behind: {{}, {}},
			camera.Front:  {{}, {}},
			camera.Left:   {{1}, {}},
			camera.Right:  {{}, {0}},
		}
	}
	require.NoError(t, Check(good(), 2))

	tests := []struct {
		name   string
		mutate func(Table)
		n      int
	}{
		{"reflexive", func(tb Table) { tb[camera.Left][0] = []int{0} }, 2},
		{"both directions", func(tb Table) { tb[camera.Right][0] = []int{1} }, 2},
		{"unsorted", func(tb Table) { tb[camera.Behind][0] = []int{1, 0} }, 2},
		{"missing direction", func(tb Table) { delete(tb, camera.Front) }, 2},
		{"wrong row count", func(tb Table) {}, 3},
		{"index out of range", func(tb Table) { tb[camera.Front][1] = []int{5} }, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tb := good()
			tc.mutate(tb)
			assert.ErrorIs(t, Check(tb, tc.n), ErrInconsistent)
		})
	}
}

func TestNamesRoundTrip(t *testing.T) {
	table := Compute([]mathutil.Vec3{{0, 0, 0}, {0, -1, 0}}, axisDirections(t))
	names := table.Names()
	assert.Equal(t, []int{1}, names["left"][0])
	assert.Len(t, names, 4)

	back, err := FromNames(names)
	require.NoError(t, err)
	assert.Equal(t, table, back)

	_, err = FromNames(map[string][][]int{"sideways": {}})
	assert.Error(t, err)
}
