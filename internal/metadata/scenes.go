package metadata

import (
	"fmt"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/relate"
)

// Object is one object of a scene as seen by the camera.
type Object struct {
	Shape       string     `json:"shape"`
	Size        string     `json:"size"`
	Material    string     `json:"material"`
	Coords      [3]float64 `json:"3d_coords"`
	Rotation    float64    `json:"rotation"`
	PixelCoords [3]float64 `json:"pixel_coords"` // x, y, depth
	Color       string     `json:"color"`
}

// Scene is the ground truth of one image.
type Scene struct {
	Split         string                `json:"split"`
	ImageIndex    int                   `json:"image_index"`
	ImageFilename string                `json:"image_filename"`
	Directions    map[string][3]float64 `json:"directions"`
	Objects       []Object              `json:"objects"`
	Relationships map[string][][]int    `json:"relationships"`
}

// ScenesDocument holds every scene of a split in image order.
type ScenesDocument struct {
	Scenes []Scene `json:"scenes"`
}

// NewScene assembles the scene entry of one projected and related image.
func NewScene(rec dataset.SceneRecord, t relate.Table) Scene {
	s := Scene{
		Split:         rec.Split,
		ImageIndex:    rec.Image,
		ImageFilename: rec.Filename,
		Directions:    rec.Directions.Map(),
		Objects:       make([]Object, len(rec.Objects)),
		Relationships: t.Names(),
	}
	for i, o := range rec.Objects {
		s.Objects[i] = Object{
			Shape:       o.Shape,
			Size:        o.Size,
			Material:    o.Material,
			Coords:      o.Coords,
			Rotation:    o.Rotation,
			PixelCoords: [3]float64{float64(o.Pixel.X), float64(o.Pixel.Y), o.Pixel.Depth},
			Color:       o.Color,
		}
	}
	return s
}

// BuildScenesDocument pairs every record with its relationship table.
func BuildScenesDocument(records []dataset.SceneRecord, tables []relate.Table) (*ScenesDocument, error) {
	if len(records) != len(tables) {
		return nil, fmt.Errorf("%w: %d records and %d relationship tables", ErrShape, len(records), len(tables))
	}
	d := &ScenesDocument{Scenes: make([]Scene, len(records))}
	for i, rec := range records {
		d.Scenes[i] = NewScene(rec, tables[i])
	}
	return d, nil
}

// Marshal encodes the document as indented JSON.
func (d *ScenesDocument) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("metadata: encode scenes: %w", err)
	}
	return data, nil
}

// UnmarshalScenes decodes a scenes document and checks every relationship
// table against its object count.
func UnmarshalScenes(data []byte) (*ScenesDocument, error) {
	var d ScenesDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("metadata: decode scenes: %w", err)
	}
	for _, s := range d.Scenes {
		t, err := relate.FromNames(s.Relationships)
		if err != nil {
			return nil, fmt.Errorf("metadata: scene %d: %w", s.ImageIndex, err)
		}
		if err := relate.Check(t, len(s.Objects)); err != nil {
			return nil, fmt.Errorf("metadata: scene %d: %w", s.ImageIndex, err)
		}
	}
	return &d, nil
}
