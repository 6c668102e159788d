// Package pipeline drives one image at a time through its stages:
//
//	Configured → LaidOut → Projected → Related → Assembled
//
// and runs whole splits sequentially or across a worker pool.
package pipeline

import (
	"errors"
	"fmt"

	"clevr-scenegen/internal/camera"
	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/layout"
	"clevr-scenegen/internal/mathutil"
	"clevr-scenegen/internal/metadata"
	"clevr-scenegen/internal/relate"
)

var (
	// ErrStage is returned when a step is applied to an image in the
	// wrong stage.
	ErrStage = errors.New("pipeline: step out of order")

	// ErrPixelCollision is returned when two objects of one image project
	// onto the same pixel.
	ErrPixelCollision = errors.New("pipeline: objects share a pixel")
)

// Stage is how far an image has progressed.
type Stage int

const (
	Configured Stage = iota
	LaidOut
	Projected
	Related
	Assembled
)

var stageNames = [...]string{"configured", "laid out", "projected", "related", "assembled"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Image carries one image of a split through the pipeline.
type Image struct {
	cfg   *dataset.Config
	index int
	stage Stage

	layout dataset.SceneLayout
	record dataset.SceneRecord
	table  relate.Table
}

// NewImage starts image index of cfg in the Configured stage.
func NewImage(cfg *dataset.Config, index int) *Image {
	return &Image{cfg: cfg, index: index}
}

func (im *Image) Index() int   { return im.index }
func (im *Image) Stage() Stage { return im.stage }

func (im *Image) expect(s Stage, step string) error {
	if im.stage != s {
		return fmt.Errorf("%w: %s image %d which is %s, want %s", ErrStage, step, im.index, im.stage, s)
	}
	return nil
}

// Lay draws the layout from gen.
func (im *Image) Lay(gen *layout.Generator) error {
	if err := im.expect(Configured, "lay out"); err != nil {
		return err
	}
	l, err := gen.Generate(im.index)
	if err != nil {
		return err
	}
	im.layout = l
	im.stage = LaidOut
	return nil
}

// SetLayout adopts a layout drawn earlier, e.g. one read back from a config
// document.
func (im *Image) SetLayout(l dataset.SceneLayout) error {
	if err := im.expect(Configured, "set layout of"); err != nil {
		return err
	}
	if l.Image != im.index || len(l.Objects) != im.cfg.NObjects() {
		return fmt.Errorf("pipeline: layout of image %d with %d objects does not fit image %d", l.Image, len(l.Objects), im.index)
	}
	im.layout = l.Clone()
	im.stage = LaidOut
	return nil
}

// Project places the camera for this image and records where every object
// lands. Two objects on one pixel fail with ErrPixelCollision.
func (im *Image) Project(cam camera.Adapter) error {
	if err := im.expect(LaidOut, "project"); err != nil {
		return err
	}
	view, err := cam.View(im.layout.CameraOffset)
	if err != nil {
		return fmt.Errorf("pipeline: image %d: %w", im.index, err)
	}

	rec := dataset.SceneRecord{
		Split:      im.cfg.Split(),
		Image:      im.index,
		Filename:   im.cfg.ImageFilename(im.index),
		Directions: view.Directions(),
		Objects:    make([]dataset.ObjectRecord, len(im.layout.Objects)),
	}
	seen := make(map[[2]int]int, len(im.layout.Objects))
	for i, o := range im.layout.Objects {
		coords := o.Position3D()
		px, err := view.Project(coords)
		if err != nil {
			return fmt.Errorf("pipeline: image %d object %d: %w", im.index, i, err)
		}
		key := [2]int{px.X, px.Y}
		if j, dup := seen[key]; dup {
			return fmt.Errorf("%w: image %d objects %d and %d at (%d,%d)", ErrPixelCollision, im.index, j, i, px.X, px.Y)
		}
		seen[key] = i

		rec.Objects[i] = dataset.ObjectRecord{
			Shape:    o.Shape,
			Size:     o.Size,
			Material: o.Material,
			Color:    o.Color,
			Coords:   coords,
			Rotation: o.Rotation,
			Pixel:    px,
		}
	}

	im.record = rec
	im.stage = Projected
	return nil
}

// Relate computes the relationship table from the projected record.
func (im *Image) Relate() error {
	if err := im.expect(Projected, "relate"); err != nil {
		return err
	}
	positions := make([]mathutil.Vec3, len(im.record.Objects))
	for i, o := range im.record.Objects {
		positions[i] = o.Coords
	}
	t := relate.Compute(positions, im.record.Directions)
	if err := relate.Check(t, len(positions)); err != nil {
		return fmt.Errorf("pipeline: image %d: %w", im.index, err)
	}
	im.table = t
	im.stage = Related
	return nil
}

// Assemble finalizes the image and returns its scenes document entry.
func (im *Image) Assemble() (metadata.Scene, error) {
	if err := im.expect(Related, "assemble"); err != nil {
		return metadata.Scene{}, err
	}
	im.stage = Assembled
	return metadata.NewScene(im.record, im.table), nil
}

// Layout returns the drawn layout; valid from LaidOut on.
func (im *Image) Layout() dataset.SceneLayout { return im.layout }

// Record returns the projection; valid from Projected on.
func (im *Image) Record() dataset.SceneRecord { return im.record }

// Table returns the relationships; valid from Related on.
func (im *Image) Table() relate.Table { return im.table }
