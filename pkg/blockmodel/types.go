package blockmodel

import "encoding/json"

// Model is a Minecraft-style JSON block model.
type Model struct {
	Parent           string            `json:"parent"`
	AmbientOcclusion *bool             `json:"ambientocclusion"`
	Textures         map[string]string `json:"textures"`
	Elements         []Element         `json:"elements"`
}

// Element is an axis-aligned box in model units (0..16 per block).
type Element struct {
	From     [3]float32      `json:"from"`
	To       [3]float32      `json:"to"`
	Rotation *Rotation       `json:"rotation"`
	Shade    *bool           `json:"shade"`
	Faces    map[string]Face `json:"faces"`
}

type Rotation struct {
	Origin  [3]float32 `json:"origin"`
	Angle   float32    `json:"angle"`
	Axis    string     `json:"axis"`
	Rescale bool       `json:"rescale"`
}

type Face struct {
	UV        [4]float32 `json:"uv"`
	Texture   string     `json:"texture"`
	CullFace  string     `json:"cullface"`
	Rotation  int        `json:"rotation"`
	TintIndex *int       `json:"tintindex"`
}

// BlockState maps variants of a block to their models.
type BlockState struct {
	Variants map[string]BlockStateVariants `json:"variants"`
}

// BlockStateVariants accepts either a single variant object or an array.
type BlockStateVariants []Variant

func (v *BlockStateVariants) UnmarshalJSON(data []byte) error {
	var variants []Variant
	if err := json.Unmarshal(data, &variants); err == nil {
		*v = variants
		return nil
	}

	var single Variant
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*v = []Variant{single}
	return nil
}

type Variant struct {
	Model string `json:"model"`
}

func (e Element) clone() Element {
	c := e
	if e.Faces != nil {
		c.Faces = make(map[string]Face, len(e.Faces))
		for k, f := range e.Faces {
			c.Faces[k] = f
		}
	}
	return c
}
