package scene

// Material describes how a mesh is shaded. The semantic fields are all the
// core carries; PBR texture parameters live renderer-side.
type Material struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
}

// MaterialSet holds the shared materials the builders draw from. It is
// created once at startup and handed to the Scene Controller.
type MaterialSet struct {
	Steel      *Material
	Wall       *Material
	Floor      *Material
	Ceiling    *Material
	Beam       *Material
	Duct       *Material
	Insulation *Material
	Pipe       *Material
	Conduit    *Material
	CableTray  *Material
}

// DefaultMaterials returns the stock material set. Walls are transparent so
// the rack stays inspectable from outside the corridor.
func DefaultMaterials() *MaterialSet {
	return &MaterialSet{
		Steel:      &Material{Name: "steel", Color: "#8a8f98", Opacity: 1},
		Wall:       &Material{Name: "wall", Color: "#d8d3c8", Opacity: 0.25, Transparent: true},
		Floor:      &Material{Name: "floor", Color: "#b0aca2", Opacity: 1},
		Ceiling:    &Material{Name: "ceiling", Color: "#e4e0d8", Opacity: 0.35, Transparent: true},
		Beam:       &Material{Name: "beam", Color: "#6e7480", Opacity: 1},
		Duct:       &Material{Name: "duct", Color: "#c8c8c8", Opacity: 1},
		Insulation: &Material{Name: "insulation", Color: "#e8e4d0", Opacity: 0.4, Transparent: true},
		Pipe:       &Material{Name: "pipe", Color: "#b87333", Opacity: 1},
		Conduit:    &Material{Name: "conduit", Color: "#d4d4d4", Opacity: 1},
		CableTray:  &Material{Name: "cableTray", Color: "#9da5b4", Opacity: 1},
	}
}

// Tinted returns a copy of the material with a different color. MEP items
// carry user-picked colors while sharing the base material semantics.
func (m *Material) Tinted(color string) *Material {
	if color == "" {
		return m
	}
	c := *m
	c.Color = color
	return &c
}
