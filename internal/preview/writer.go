package preview

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"clevr-scenegen/internal/batch"
	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/sink"
)

// Writer renders the previews of a split and stores them with a manifest.
type Writer struct {
	Renderer *Renderer
	Sink     sink.Sink
	Dir      string // sink-relative directory; previews go to Dir/<split>/
	Workers  int
	Log      logrus.FieldLogger
}

// Name is where the preview of image is stored.
func (w *Writer) Name(split string, image int) string {
	return path.Join(w.Dir, split, fmt.Sprintf("%06d%s", image, w.Renderer.Options().Format.Ext()))
}

// WriteAll renders every layout. Failures are recorded per entry in the
// manifest; the first one is also returned.
func (w *Writer) WriteAll(ctx context.Context, split string, layouts []dataset.SceneLayout) ([]batch.ManifestEntry, error) {
	entries := make([]batch.ManifestEntry, len(layouts))
	format := w.Renderer.Options().Format

	results := batch.Run(ctx, batch.Config{
		Workers: w.Workers,
		Label:   "previews",
		Log:     w.Log,
	}, len(layouts), func(ctx context.Context, i int) error {
		l := layouts[i]
		entries[i] = batch.ManifestEntry{
			Split:         split,
			Image:         l.Image,
			ImageFilename: dataset.ImageFilename(split, l.Image),
			Preview:       w.Name(split, l.Image),
			FreeSlot:      l.FreeSlot,
			EyesSameColor: l.EyesSameColor,
		}

		var buf bytes.Buffer
		if err := Encode(&buf, w.Renderer.Render(l), format); err != nil {
			return err
		}
		return w.Sink.Put(ctx, entries[i].Preview, buf.Bytes())
	})

	for _, r := range batch.Failed(results) {
		entries[r.Index].Error = r.Err.Error()
		if entries[r.Index].Preview == "" {
			entries[r.Index].Split = split
			entries[r.Index].Image = layouts[r.Index].Image
		}
	}

	manifest, err := batch.Manifest(entries)
	if err != nil {
		return entries, fmt.Errorf("preview: manifest: %w", err)
	}
	if err := w.Sink.Put(ctx, path.Join(w.Dir, split, "manifest.json"), manifest); err != nil {
		return entries, err
	}
	return entries, batch.FirstError(results)
}
