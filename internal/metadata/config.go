// Package metadata assembles the two documents a generation run produces:
// the config document the renderer replays, and the scenes document with
// per-image ground truth.
package metadata

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/mathutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrShape is returned when per-image arrays disagree with the image or
// object count.
var ErrShape = errors.New("metadata: malformed document")

// ConfigFilename is the config document of split.
func ConfigFilename(split string) string {
	return fmt.Sprintf("customclevr_%s_config.json", split)
}

// ScenesFilename is the scenes document of split.
func ScenesFilename(split string) string {
	return fmt.Sprintf("customclevr_%s_scenes.json", split)
}

// ConfigDocument is every dataset parameter plus the per-image draws,
// stored as n_images × n_objects arrays.
type ConfigDocument struct {
	Split string `json:"split"`
	Seed  int64  `json:"seed"`
	dataset.Params

	Theta        [][]float64 `json:"theta"`
	MatName      [][]string  `json:"mat_name"`
	MatNameOut   [][]string  `json:"mat_name_out"`
	ShapeName    [][]string  `json:"shape_name"`
	ShapeNameOut [][]string  `json:"shape_name_out"`
	ColorName    [][]string  `json:"color_name"`
	SizeName     [][]string  `json:"size_name"`
	R            [][]float64 `json:"r"`
	PosPlaneX    [][]float64 `json:"pos_planex"`
	PosPlaneY    [][]float64 `json:"pos_planey"`

	CameraOffset    [][3]float64 `json:"camera_offset"`
	KeyLightOffset  [][3]float64 `json:"key_light_offset"`
	FillLightOffset [][3]float64 `json:"fill_light_offset"`
	BackLightOffset [][3]float64 `json:"back_light_offset"`

	RandomizedObjIdx []int  `json:"randomized_obj_idx"`
	EyesSameColor    []bool `json:"eyes_same_color"`

	PixelCoordsX [][]int `json:"pixel_coords_x"`
	PixelCoordsY [][]int `json:"pixel_coords_y"`
}

// BuildConfigDocument flattens layouts and their projected records into a
// config document. records[i] must be the projection of layouts[i].
func BuildConfigDocument(cfg *dataset.Config, layouts []dataset.SceneLayout, records []dataset.SceneRecord) (*ConfigDocument, error) {
	n := cfg.NImages()
	if len(layouts) != n || len(records) != n {
		return nil, fmt.Errorf("%w: %d layouts and %d records for %d images", ErrShape, len(layouts), len(records), n)
	}

	d := &ConfigDocument{
		Split:            cfg.Split(),
		Seed:             cfg.Seed(),
		Params:           cfg.Params(),
		Theta:            make([][]float64, n),
		MatName:          make([][]string, n),
		MatNameOut:       make([][]string, n),
		ShapeName:        make([][]string, n),
		ShapeNameOut:     make([][]string, n),
		ColorName:        make([][]string, n),
		SizeName:         make([][]string, n),
		R:                make([][]float64, n),
		PosPlaneX:        make([][]float64, n),
		PosPlaneY:        make([][]float64, n),
		CameraOffset:     make([][3]float64, n),
		KeyLightOffset:   make([][3]float64, n),
		FillLightOffset:  make([][3]float64, n),
		BackLightOffset:  make([][3]float64, n),
		RandomizedObjIdx: make([]int, n),
		EyesSameColor:    make([]bool, n),
		PixelCoordsX:     make([][]int, n),
		PixelCoordsY:     make([][]int, n),
	}

	for i, l := range layouts {
		rec := records[i]
		if l.Image != i || rec.Image != i {
			return nil, fmt.Errorf("%w: slot %d holds layout %d and record %d", ErrShape, i, l.Image, rec.Image)
		}
		if len(l.Objects) != cfg.NObjects() || len(rec.Objects) != cfg.NObjects() {
			return nil, fmt.Errorf("%w: image %d has %d objects", ErrShape, i, len(l.Objects))
		}

		m := len(l.Objects)
		d.Theta[i] = make([]float64, m)
		d.MatName[i] = make([]string, m)
		d.MatNameOut[i] = make([]string, m)
		d.ShapeName[i] = make([]string, m)
		d.ShapeNameOut[i] = make([]string, m)
		d.ColorName[i] = make([]string, m)
		d.SizeName[i] = make([]string, m)
		d.R[i] = make([]float64, m)
		d.PosPlaneX[i] = make([]float64, m)
		d.PosPlaneY[i] = make([]float64, m)
		d.PixelCoordsX[i] = make([]int, m)
		d.PixelCoordsY[i] = make([]int, m)

		for j, o := range l.Objects {
			d.Theta[i][j] = o.Rotation
			d.MatName[i][j] = o.MaterialInternal
			d.MatNameOut[i][j] = o.Material
			d.ShapeName[i][j] = o.ShapeInternal
			d.ShapeNameOut[i][j] = o.Shape
			d.ColorName[i][j] = o.Color
			d.SizeName[i][j] = o.Size
			d.R[i][j] = o.Radius
			d.PosPlaneX[i][j] = o.X
			d.PosPlaneY[i][j] = o.Y
			d.PixelCoordsX[i][j] = rec.Objects[j].Pixel.X
			d.PixelCoordsY[i][j] = rec.Objects[j].Pixel.Y
		}

		d.CameraOffset[i] = l.CameraOffset
		d.KeyLightOffset[i] = l.KeyLightOffset
		d.FillLightOffset[i] = l.FillLightOffset
		d.BackLightOffset[i] = l.BackLightOffset
		d.RandomizedObjIdx[i] = l.FreeSlot
		d.EyesSameColor[i] = l.EyesSameColor
	}
	return d, nil
}

// Config rebuilds the frozen dataset configuration the document was made
// from.
func (d *ConfigDocument) Config() (*dataset.Config, error) {
	cfg, err := dataset.New(d.Split, d.Params)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	if cfg.Seed() != d.Seed {
		return nil, fmt.Errorf("%w: seed %d does not belong to split %q", ErrShape, d.Seed, d.Split)
	}
	return cfg, nil
}

func (d *ConfigDocument) check() error {
	n, m := d.NImages, d.NObjects
	rows := []int{
		len(d.Theta), len(d.MatName), len(d.MatNameOut), len(d.ShapeName),
		len(d.ShapeNameOut), len(d.ColorName), len(d.SizeName), len(d.R),
		len(d.PosPlaneX), len(d.PosPlaneY), len(d.CameraOffset),
		len(d.KeyLightOffset), len(d.FillLightOffset), len(d.BackLightOffset),
		len(d.RandomizedObjIdx), len(d.EyesSameColor),
	}
	for _, r := range rows {
		if r != n {
			return fmt.Errorf("%w: per-image array of length %d for %d images", ErrShape, r, n)
		}
	}
	for i := 0; i < n; i++ {
		cols := []int{
			len(d.Theta[i]), len(d.MatName[i]), len(d.MatNameOut[i]), len(d.ShapeName[i]),
			len(d.ShapeNameOut[i]), len(d.ColorName[i]), len(d.SizeName[i]), len(d.R[i]),
			len(d.PosPlaneX[i]), len(d.PosPlaneY[i]),
		}
		for _, c := range cols {
			if c != m {
				return fmt.Errorf("%w: image %d has a row of %d for %d objects", ErrShape, i, c, m)
			}
		}
		if idx := d.RandomizedObjIdx[i]; idx < dataset.NoFreeSlot || idx >= m {
			return fmt.Errorf("%w: image %d randomized_obj_idx %d", ErrShape, i, idx)
		}
	}
	return nil
}

// Layouts reconstructs the scene layouts stored in the document.
func (d *ConfigDocument) Layouts() ([]dataset.SceneLayout, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	out := make([]dataset.SceneLayout, d.NImages)
	for i := range out {
		l := dataset.SceneLayout{
			Image:           i,
			Objects:         make([]dataset.ObjectSpec, d.NObjects),
			CameraOffset:    mathutil.Vec3(d.CameraOffset[i]),
			KeyLightOffset:  mathutil.Vec3(d.KeyLightOffset[i]),
			FillLightOffset: mathutil.Vec3(d.FillLightOffset[i]),
			BackLightOffset: mathutil.Vec3(d.BackLightOffset[i]),
			FreeSlot:        d.RandomizedObjIdx[i],
			EyesSameColor:   d.EyesSameColor[i],
		}
		for j := range l.Objects {
			l.Objects[j] = dataset.ObjectSpec{
				Shape:            d.ShapeNameOut[i][j],
				ShapeInternal:    d.ShapeName[i][j],
				Material:         d.MatNameOut[i][j],
				MaterialInternal: d.MatName[i][j],
				Size:             d.SizeName[i][j],
				Radius:           d.R[i][j],
				Color:            d.ColorName[i][j],
				Rotation:         d.Theta[i][j],
				X:                d.PosPlaneX[i][j],
				Y:                d.PosPlaneY[i][j],
			}
		}
		out[i] = l
	}
	return out, nil
}

// Marshal encodes the document as indented JSON.
func (d *ConfigDocument) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("metadata: encode config: %w", err)
	}
	return data, nil
}

// UnmarshalConfig decodes and checks a config document.
func UnmarshalConfig(data []byte) (*ConfigDocument, error) {
	var d ConfigDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("metadata: decode config: %w", err)
	}
	if err := d.check(); err != nil {
		return nil, err
	}
	return &d, nil
}
