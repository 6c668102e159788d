package dataset

// Entry maps a display name (written to the scenes document) to the
// internal asset name the renderer loads.
type Entry struct {
	Name     string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Internal string `json:"internal" yaml:"internal" toml:"internal" validate:"required"`
}

// Size is a size class and its radius in world units.
type Size struct {
	Name   string  `json:"name" yaml:"name" toml:"name" validate:"required"`
	Radius float64 `json:"radius" yaml:"radius" toml:"radius" validate:"gt=0"`
}

// Color is a named RGB color.
type Color struct {
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`
	RGB  [3]int `json:"rgb" yaml:"rgb" toml:"rgb"`
}

// Combo restricts the colors a shape may take. Shape is a display name.
type Combo struct {
	Shape  string   `json:"shape" yaml:"shape" toml:"shape" validate:"required"`
	Colors []string `json:"colors" yaml:"colors" toml:"colors" validate:"min=1"`
}

// Render holds the host's output resolution and camera optics.
type Render struct {
	Width       int     `json:"resolution_x" yaml:"resolution_x" toml:"resolution_x" validate:"gt=0"`
	Height      int     `json:"resolution_y" yaml:"resolution_y" toml:"resolution_y" validate:"gt=0"`
	Percent     int     `json:"resolution_percentage" yaml:"resolution_percentage" toml:"resolution_percentage" validate:"gt=0,lte=100"`
	Lens        float64 `json:"lens" yaml:"lens" toml:"lens" validate:"gt=0"`
	SensorWidth float64 `json:"sensor_width" yaml:"sensor_width" toml:"sensor_width" validate:"gt=0"`
}

// Params are the tunable inputs of a generation run. They become a frozen
// Config once bound to a split with New.
type Params struct {
	NImages  int `json:"n_images" yaml:"n_images" toml:"n_images" validate:"gt=0"`
	NObjects int `json:"n_objects" yaml:"n_objects" toml:"n_objects" validate:"gt=0"`

	// Geometry
	MinDist            float64 `json:"min_dist" yaml:"min_dist" toml:"min_dist" validate:"gte=0"`
	Margin             float64 `json:"margin" yaml:"margin" toml:"margin" validate:"gte=0"`
	MinPixelsPerObject int     `json:"min_pixels_per_object" yaml:"min_pixels_per_object" toml:"min_pixels_per_object" validate:"gte=0"`
	MaxRetries         int     `json:"max_retries" yaml:"max_retries" toml:"max_retries" validate:"gte=0"`
	PlacementLimit     int     `json:"placement_attempt_limit" yaml:"placement_attempt_limit" toml:"placement_attempt_limit" validate:"gte=0"`
	FreePlaceExtent    float64 `json:"free_place_extent" yaml:"free_place_extent" toml:"free_place_extent" validate:"gt=0"`

	// Face template, one entry per object slot
	FaceParts []string  `json:"faceparts" yaml:"faceparts" toml:"faceparts"`
	FaceX     []float64 `json:"facex" yaml:"facex" toml:"facex" validate:"min=1"`
	FaceY     []float64 `json:"facey" yaml:"facey" toml:"facey" validate:"min=1"`

	// Catalogs. Order matters: draws index into these slices.
	Shapes           []Entry `json:"shapes" yaml:"shapes" toml:"shapes" validate:"min=1,dive"`
	Materials        []Entry `json:"materials" yaml:"materials" toml:"materials" validate:"min=1,dive"`
	Sizes            []Size  `json:"sizes" yaml:"sizes" toml:"sizes" validate:"min=1,dive"`
	Colors           []Color `json:"colors" yaml:"colors" toml:"colors" validate:"min=1,dive"`
	ShapeColorCombos []Combo `json:"shape_color_combos" yaml:"shape_color_combos" toml:"shape_color_combos" validate:"omitempty,dive"`

	// Jitter magnitudes
	KeyLightJitter  float64 `json:"key_light_jitter" yaml:"key_light_jitter" toml:"key_light_jitter" validate:"gte=0"`
	FillLightJitter float64 `json:"fill_light_jitter" yaml:"fill_light_jitter" toml:"fill_light_jitter" validate:"gte=0"`
	BackLightJitter float64 `json:"back_light_jitter" yaml:"back_light_jitter" toml:"back_light_jitter" validate:"gte=0"`
	CameraJitter    float64 `json:"camera_jitter" yaml:"camera_jitter" toml:"camera_jitter" validate:"gte=0"`
	PosJitter       float64 `json:"pos_jitter" yaml:"pos_jitter" toml:"pos_jitter" validate:"gte=0"`

	CameraLocation [3]float64 `json:"camera_location" yaml:"camera_location" toml:"camera_location"`

	// Host assets, carried through to the config document
	ShapeDir           string `json:"shape_dir" yaml:"shape_dir" toml:"shape_dir"`
	MaterialDir        string `json:"material_dir" yaml:"material_dir" toml:"material_dir"`
	BaseSceneBlendfile string `json:"base_scene_blendfile" yaml:"base_scene_blendfile" toml:"base_scene_blendfile"`

	Render Render `json:"render" yaml:"render" toml:"render"`
}

// DefaultParams returns the reference "simple face" dataset: six objects
// laid out as two eyes, a nose and a three-part mouth.
func DefaultParams() Params {
	return Params{
		NImages:            100,
		NObjects:           6,
		MinDist:            0.25,
		Margin:             0.4,
		MinPixelsPerObject: 200,
		MaxRetries:         50,
		PlacementLimit:     100000,
		FreePlaceExtent:    2.5,

		FaceParts: []string{"eye", "eye", "nose", "mouth", "mouth", "mouth"},
		FaceX:     []float64{-2, -2, 0, 1.75, 2, 1.75},
		FaceY:     []float64{-1.5, 1.5, 0, -1, 0, 1},

		Shapes: []Entry{
			{Name: "cube", Internal: "SmoothCube_v2"},
			{Name: "sphere", Internal: "Sphere"},
			{Name: "cylinder", Internal: "SmoothCylinder"},
		},
		Materials: []Entry{
			{Name: "rubber", Internal: "Rubber"},
			{Name: "metal", Internal: "MyMetal"},
		},
		Sizes: []Size{
			{Name: "large", Radius: 0.35},
			{Name: "small", Radius: 0.25},
		},
		Colors: []Color{
			{Name: "red", RGB: [3]int{173, 35, 35}},
			{Name: "blue", RGB: [3]int{42, 75, 215}},
			{Name: "green", RGB: [3]int{29, 105, 20}},
		},

		KeyLightJitter:  1.0,
		FillLightJitter: 1.0,
		BackLightJitter: 1.0,
		CameraJitter:    0.5,
		PosJitter:       0.05,
		CameraLocation:  [3]float64{3, 0, 8},

		ShapeDir:           "data/shapes",
		MaterialDir:        "data/materials",
		BaseSceneBlendfile: "data/base_scene.blend",

		Render: Render{
			Width:       320,
			Height:      240,
			Percent:     100,
			Lens:        35,
			SensorWidth: 32,
		},
	}
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	c := p
	c.FaceParts = append([]string(nil), p.FaceParts...)
	c.FaceX = append([]float64(nil), p.FaceX...)
	c.FaceY = append([]float64(nil), p.FaceY...)
	c.Shapes = append([]Entry(nil), p.Shapes...)
	c.Materials = append([]Entry(nil), p.Materials...)
	c.Sizes = append([]Size(nil), p.Sizes...)
	c.Colors = append([]Color(nil), p.Colors...)
	if p.ShapeColorCombos != nil {
		c.ShapeColorCombos = make([]Combo, len(p.ShapeColorCombos))
		for i, combo := range p.ShapeColorCombos {
			c.ShapeColorCombos[i] = Combo{Shape: combo.Shape, Colors: append([]string(nil), combo.Colors...)}
		}
	}
	return c
}
