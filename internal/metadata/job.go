package metadata

import (
	"fmt"
	"path"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/mathutil"
)

// JobObject is one object the host instantiates.
type JobObject struct {
	Asset    string     `json:"asset"`    // shape .blend file
	Material string     `json:"material"` // host material node group
	RGBA     [4]float64 `json:"rgba"`
	Scale    float64    `json:"scale"`
	Location [2]float64 `json:"location"`
	Rotation float64    `json:"rotation"` // degrees about Z
}

// RenderJob is everything the host needs to render one image of a split.
type RenderJob struct {
	Split           string      `json:"split"`
	Image           int         `json:"image"`
	ImagePath       string      `json:"image_path"`
	BlendPath       string      `json:"blend_path"`
	BaseScene       string      `json:"base_scene"`
	MaterialDir     string      `json:"material_dir"`
	Camera          [3]float64  `json:"camera"`
	KeyLightOffset  [3]float64  `json:"key_light_offset"`
	FillLightOffset [3]float64  `json:"fill_light_offset"`
	BackLightOffset [3]float64  `json:"back_light_offset"`
	Resolution      [2]int      `json:"resolution"`
	Objects         []JobObject `json:"objects"`
}

// RenderJob resolves image of the document into host instructions.
// Output paths are relative to outDir.
func (d *ConfigDocument) RenderJob(image int, outDir string) (*RenderJob, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if image < 0 || image >= d.NImages {
		return nil, fmt.Errorf("metadata: image %d out of range [0,%d)", image, d.NImages)
	}

	rgba := make(map[string][4]float64, len(d.Colors))
	for _, c := range d.Colors {
		rgba[c.Name] = [4]float64{float64(c.RGB[0]) / 255.0, float64(c.RGB[1]) / 255.0, float64(c.RGB[2]) / 255.0, 1.0}
	}

	stem := fmt.Sprintf("customclevr_%s_%06d", d.Split, image)
	scale := float64(d.Render.Percent) / 100.0
	job := &RenderJob{
		Split:           d.Split,
		Image:           image,
		ImagePath:       path.Join(outDir, "images", dataset.ImageFilename(d.Split, image)),
		BlendPath:       path.Join(outDir, "blendfiles", stem+".blend"),
		BaseScene:       d.BaseSceneBlendfile,
		MaterialDir:     d.MaterialDir,
		Camera:          mathutil.Vec3(d.CameraLocation).Add(d.CameraOffset[image]),
		KeyLightOffset:  d.KeyLightOffset[image],
		FillLightOffset: d.FillLightOffset[image],
		BackLightOffset: d.BackLightOffset[image],
		Resolution:      [2]int{int(scale * float64(d.Render.Width)), int(scale * float64(d.Render.Height))},
		Objects:         make([]JobObject, d.NObjects),
	}

	for j := range job.Objects {
		color, ok := rgba[d.ColorName[image][j]]
		if !ok {
			return nil, fmt.Errorf("%w: image %d object %d has unknown color %q", ErrShape, image, j, d.ColorName[image][j])
		}
		job.Objects[j] = JobObject{
			Asset:    path.Join(d.ShapeDir, d.ShapeName[image][j]+".blend"),
			Material: d.MatName[image][j],
			RGBA:     color,
			Scale:    d.R[image][j],
			Location: [2]float64{d.PosPlaneX[image][j], d.PosPlaneY[image][j]},
			Rotation: d.Theta[image][j],
		}
	}
	return job, nil
}

// Marshal encodes the job as indented JSON.
func (j *RenderJob) Marshal() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}
