package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"clevr-scenegen/internal/batch"
	"clevr-scenegen/internal/camera"
	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/layout"
	"clevr-scenegen/internal/mathutil"
	"clevr-scenegen/internal/metadata"
	"clevr-scenegen/internal/relate"
	"clevr-scenegen/internal/rng"
)

// Options tune a Runner.
type Options struct {
	// Parallel gives every image its own sub-stream and spreads images over
	// Workers goroutines. Output is reproducible but differs from the
	// sequential single-stream output.
	Parallel bool
	Workers  int
	Log      logrus.FieldLogger
}

// Output is everything one split run produces.
type Output struct {
	Layouts []dataset.SceneLayout
	Records []dataset.SceneRecord
	Tables  []relate.Table
	Config  *metadata.ConfigDocument
	Scenes  *metadata.ScenesDocument
}

// Runner generates a whole split.
type Runner struct {
	cfg  *dataset.Config
	cam  camera.Adapter
	opts Options
}

// NewRunner binds a runner to cfg. A nil cam uses the software pinhole
// camera built from cfg.
func NewRunner(cfg *dataset.Config, cam camera.Adapter, opts Options) *Runner {
	if cam == nil {
		cam = CameraFor(cfg)
	}
	if opts.Log == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		opts.Log = logger
	}
	return &Runner{cfg: cfg, cam: cam, opts: opts}
}

// CameraFor is the pinhole camera matching cfg's camera location and
// render settings.
func CameraFor(cfg *dataset.Config) *camera.Pinhole {
	p := cfg.Params()
	return camera.NewPinhole(mathutil.Vec3(p.CameraLocation), camera.Optics{
		Width:       p.Render.Width,
		Height:      p.Render.Height,
		Percent:     p.Render.Percent,
		Lens:        p.Render.Lens,
		SensorWidth: p.Render.SensorWidth,
	})
}

// Run draws, projects and relates every image of the split and assembles
// both documents. The context is checked between images.
func (r *Runner) Run(ctx context.Context) (*Output, error) {
	log := r.opts.Log.WithFields(logrus.Fields{
		"split":    r.cfg.Split(),
		"seed":     r.cfg.Seed(),
		"images":   r.cfg.NImages(),
		"parallel": r.opts.Parallel,
	})
	log.Info("generating split")
	start := time.Now()

	images := make([]*Image, r.cfg.NImages())
	var err error
	if r.opts.Parallel {
		err = r.runParallel(ctx, images)
	} else {
		err = r.runSequential(ctx, images)
	}
	if err != nil {
		return nil, err
	}

	out, err := r.assemble(images)
	if err != nil {
		return nil, err
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond).String()).Info("split generated")
	return out, nil
}

func (r *Runner) runSequential(ctx context.Context, images []*Image) error {
	gen := layout.NewGenerator(r.cfg, rng.New(r.cfg.Seed()))
	for i := range images {
		if err := ctx.Err(); err != nil {
			return err
		}
		im := NewImage(r.cfg, i)
		if err := im.Lay(gen); err != nil {
			return err
		}
		if err := r.finish(im); err != nil {
			return err
		}
		images[i] = im
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, images []*Image) error {
	results := batch.Run(ctx, batch.Config{
		Workers: r.opts.Workers,
		Label:   "images",
		Log:     r.opts.Log,
	}, len(images), func(_ context.Context, i int) error {
		gen := layout.NewGenerator(r.cfg, rng.NewSubStream(r.cfg.Seed(), i))
		im := NewImage(r.cfg, i)
		if err := im.Lay(gen); err != nil {
			return err
		}
		if err := r.finish(im); err != nil {
			return err
		}
		images[i] = im
		return nil
	})
	return batch.FirstError(results)
}

// Replay projects and relates layouts drawn earlier without consuming any
// randomness.
func (r *Runner) Replay(ctx context.Context, layouts []dataset.SceneLayout) (*Output, error) {
	if len(layouts) != r.cfg.NImages() {
		return nil, fmt.Errorf("pipeline: %d layouts for %d images", len(layouts), r.cfg.NImages())
	}
	images := make([]*Image, len(layouts))
	for i, l := range layouts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		im := NewImage(r.cfg, i)
		if err := im.SetLayout(l); err != nil {
			return nil, err
		}
		if err := r.finish(im); err != nil {
			return nil, err
		}
		images[i] = im
	}
	return r.assemble(images)
}

func (r *Runner) finish(im *Image) error {
	if err := im.Project(r.cam); err != nil {
		return err
	}
	if err := im.Relate(); err != nil {
		return err
	}
	r.opts.Log.WithFields(logrus.Fields{
		"image":     im.Index(),
		"free_slot": im.Layout().FreeSlot,
	}).Debug("image related")
	return nil
}

func (r *Runner) assemble(images []*Image) (*Output, error) {
	n := len(images)
	out := &Output{
		Layouts: make([]dataset.SceneLayout, n),
		Records: make([]dataset.SceneRecord, n),
		Tables:  make([]relate.Table, n),
		Scenes:  &metadata.ScenesDocument{Scenes: make([]metadata.Scene, n)},
	}
	for i, im := range images {
		scene, err := im.Assemble()
		if err != nil {
			return nil, err
		}
		out.Layouts[i] = im.Layout()
		out.Records[i] = im.Record()
		out.Tables[i] = im.Table()
		out.Scenes.Scenes[i] = scene
	}

	doc, err := metadata.BuildConfigDocument(r.cfg, out.Layouts, out.Records)
	if err != nil {
		return nil, err
	}
	out.Config = doc
	return out, nil
}
