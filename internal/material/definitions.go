package material

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxbatch/internal/world"
)

// Definitions is the YAML form of a material set.
type Definitions struct {
	RenderMaterials []RenderMaterialDef `yaml:"render_materials"`
	Blocks          []BlockDef          `yaml:"blocks"`
}

type RenderMaterialDef struct {
	Name    string `yaml:"name"`
	SortKey int    `yaml:"sort_key"`
	Shader  string `yaml:"shader"`
	// Hooks selects builtin mesh hooks: "" or "fluid".
	Hooks string `yaml:"hooks"`
}

func (d RenderMaterialDef) hooks() (MeshHooks, error) {
	switch d.Hooks {
	case "":
		return NopHooks{}, nil
	case "fluid":
		return FluidHooks{Surface: 0.875}, nil
	}
	return nil, fmt.Errorf("render material %s: unknown hooks %q", d.Name, d.Hooks)
}

type BlockDef struct {
	ID          uint16 `yaml:"id"`
	Name        string `yaml:"name"`
	Data        uint16 `yaml:"data"`
	Invisible   bool   `yaml:"invisible"`
	Transparent bool   `yaml:"transparent"`
	// Occludes lists face names, "all" or "none". When omitted, opaque
	// blocks occlude every face and transparent ones none.
	Occludes []string `yaml:"occludes"`
	Render   string   `yaml:"render"`
	Model    string   `yaml:"model"`
	State    string   `yaml:"blockstate"`
	Variant  string   `yaml:"variant"`
}

// LoadDefinitions parses a YAML material file.
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials %s: %w", path, err)
	}
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse materials %s: %w", path, err)
	}
	return &defs, nil
}

func (d BlockDef) definition() (BlockDefinition, error) {
	def := BlockDefinition{
		ID:          world.BlockID(d.ID),
		Name:        d.Name,
		Data:        d.Data,
		Invisible:   d.Invisible,
		Transparent: d.Transparent,
		Render:      d.Render,
		Model:       d.Model,
		State:       d.State,
		Variant:     d.Variant,
	}
	if d.Occludes == nil {
		if !d.Transparent && !d.Invisible {
			def.Occludes = world.AllFaces
		}
		return def, nil
	}
	for _, name := range d.Occludes {
		switch name {
		case "all":
			def.Occludes = world.AllFaces
		case "none":
		default:
			f, ok := world.ParseFace(name)
			if !ok {
				return def, fmt.Errorf("block %s: unknown occluded face %q", d.Name, name)
			}
			def.Occludes = def.Occludes.With(f)
		}
	}
	return def, nil
}

// Apply registers every render material and block in defs.
func (r *Registry) Apply(defs *Definitions) error {
	for _, rd := range defs.RenderMaterials {
		rm := NewRenderMaterial(rd.Name, rd.SortKey)
		if rd.Shader != "" {
			rm.Shader = rd.Shader
		}
		hooks, err := rd.hooks()
		if err != nil {
			return err
		}
		rm.Hooks = hooks
		if err := r.RegisterRenderMaterial(rm); err != nil {
			return err
		}
	}
	for _, bd := range defs.Blocks {
		def, err := bd.definition()
		if err != nil {
			return err
		}
		if _, err := r.RegisterBlock(def); err != nil {
			return err
		}
	}
	return nil
}

// Default returns the builtin material set used when no file is configured.
func Default() *Definitions {
	return &Definitions{
		RenderMaterials: []RenderMaterialDef{
			{Name: "solid", SortKey: 0, Shader: "default"},
			{Name: "fluid", SortKey: 90, Shader: "translucent", Hooks: "fluid"},
			{Name: "translucent", SortKey: 100, Shader: "translucent"},
		},
		Blocks: []BlockDef{
			{ID: 1, Name: "stone", Render: "solid"},
			{ID: 2, Name: "dirt", Render: "solid"},
			{ID: 3, Name: "grass", Render: "solid"},
			{ID: 4, Name: "water", Transparent: true, Render: "fluid"},
			{ID: 5, Name: "glass", Transparent: true, Render: "translucent"},
			{ID: 6, Name: "barrier", Occludes: []string{"none"}},
		},
	}
}
