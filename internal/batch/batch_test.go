package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clevr-scenegen/internal/log"
)

func TestRunProcessesEveryItem(t *testing.T) {
	var seen [50]atomic.Int32
	results := Run(context.Background(), Config{Workers: 4, Log: log.Discard()}, len(seen), func(_ context.Context, idx int) error {
		seen[idx].Add(1)
		return nil
	})

	require.Len(t, results, len(seen))
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "item %d", i)
		assert.Equal(t, i, results[i].Index)
		assert.True(t, results[i].Success)
	}
	assert.Empty(t, Failed(results))
	assert.NoError(t, FirstError(results))
}

func TestRunReportsFailuresByIndex(t *testing.T) {
	boom := errors.New("boom")
	results := Run(context.Background(), Config{Workers: 3}, 10, func(_ context.Context, idx int) error {
		if idx == 3 || idx == 7 {
			return boom
		}
		return nil
	})

	failed := Failed(results)
	require.Len(t, failed, 2)
	assert.Equal(t, 3, failed[0].Index)
	assert.Equal(t, 7, failed[1].Index)
	assert.ErrorIs(t, FirstError(results), boom)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Int32
	results := Run(ctx, Config{Workers: 1}, 100, func(_ context.Context, idx int) error {
		ran.Add(1)
		if idx == 0 {
			cancel()
		}
		return nil
	})

	assert.Less(t, int(ran.Load()), 100)
	assert.ErrorIs(t, FirstError(results), context.Canceled)
	assert.True(t, results[0].Success)
}

func TestRunEmpty(t *testing.T) {
	assert.Empty(t, Run(context.Background(), Config{}, 0, nil))
}

func TestManifest(t *testing.T) {
	data, err := Manifest([]ManifestEntry{{
		Split:         "trnsimple",
		Image:         1,
		ImageFilename: "customclevr_trnsimple_000001.png",
		Preview:       "trnsimple/000001.webp",
		FreeSlot:      4,
	}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"randomized_obj_idx": 4`)
	assert.NotContains(t, string(data), `"error"`)
}
