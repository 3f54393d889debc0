package material

import (
	"errors"
	"fmt"
	"slices"

	"voxbatch/internal/world"
	"voxbatch/pkg/blockmodel"
)

var (
	ErrDuplicateID             = errors.New("material: duplicate block id")
	ErrDuplicateRenderMaterial = errors.New("material: duplicate render material")
	ErrUnknownRenderMaterial   = errors.New("material: unknown render material")
	ErrUnknownModel            = errors.New("material: unknown block model")
)

// Air is the material of BlockAir.
var Air Material = NewBlock(BlockDefinition{ID: world.BlockAir, Name: "air", Invisible: true}, nil)

// Registry maps block ids to materials. It is built once during startup and
// read concurrently by mesh workers afterwards.
type Registry struct {
	blocks []Material
	byName map[string]Material
	render map[string]*RenderMaterial
	loader *blockmodel.Loader
}

// NewRegistry creates a registry containing only air. loader may be nil when
// every block uses the builtin cube.
func NewRegistry(loader *blockmodel.Loader) *Registry {
	return &Registry{
		blocks: []Material{Air},
		byName: map[string]Material{Air.Name(): Air},
		render: make(map[string]*RenderMaterial),
		loader: loader,
	}
}

func (r *Registry) RegisterRenderMaterial(rm *RenderMaterial) error {
	if _, ok := r.render[rm.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRenderMaterial, rm.Name)
	}
	if rm.Hooks == nil {
		rm.Hooks = NopHooks{}
	}
	r.render[rm.Name] = rm
	return nil
}

func (r *Registry) RenderMaterial(name string) (*RenderMaterial, bool) {
	rm, ok := r.render[name]
	return rm, ok
}

// RenderMaterials returns every render material in draw order.
func (r *Registry) RenderMaterials() []*RenderMaterial {
	out := make([]*RenderMaterial, 0, len(r.render))
	for _, rm := range r.render {
		out = append(out, rm)
	}
	slices.SortFunc(out, Compare)
	return out
}

// RegisterBlock builds a Block from def and installs it.
func (r *Registry) RegisterBlock(def BlockDefinition) (*Block, error) {
	model, err := r.resolveModel(def)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", def.Name, err)
	}
	b := NewBlock(def, model)
	if err := r.Register(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Register installs a custom Material implementation.
func (r *Registry) Register(m Material) error {
	id := int(m.ID())
	if id < len(r.blocks) && r.blocks[id] != nil {
		return fmt.Errorf("%w: %d (%s, %s)", ErrDuplicateID, id, r.blocks[id].Name(), m.Name())
	}
	if id >= len(r.blocks) {
		r.blocks = append(r.blocks, make([]Material, id+1-len(r.blocks))...)
	}
	r.blocks[id] = m
	r.byName[m.Name()] = m
	return nil
}

func (r *Registry) resolveModel(def BlockDefinition) (*Model, error) {
	if def.Invisible || def.Render == "" {
		return nil, nil
	}
	rm, ok := r.render[def.Render]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRenderMaterial, def.Render)
	}
	name := def.Model
	if def.State != "" {
		if r.loader == nil {
			return nil, fmt.Errorf("%w: blockstate %s (no model loader)", ErrUnknownModel, def.State)
		}
		var err error
		if name, err = r.loader.ResolveVariant(def.State, def.Variant); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownModel, err)
		}
	}
	if name == "" {
		name = blockmodel.CubeName
	}
	if name == blockmodel.CubeName {
		return &Model{Render: rm, Mesh: blockmodel.Cube()}, nil
	}
	if r.loader == nil {
		return nil, fmt.Errorf("%w: %s (no model loader)", ErrUnknownModel, name)
	}
	mesh, err := r.loader.LoadMesh(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownModel, name, err)
	}
	return &Model{Render: rm, Mesh: mesh}, nil
}

// Get returns the material for id. Unknown ids resolve to air.
func (r *Registry) Get(id world.BlockID) Material {
	if int(id) < len(r.blocks) {
		if m := r.blocks[id]; m != nil {
			return m
		}
	}
	return Air
}

func (r *Registry) Lookup(name string) (Material, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// ID returns the block id registered under name, or air.
func (r *Registry) ID(name string) world.BlockID {
	if m, ok := r.Lookup(name); ok {
		return m.ID()
	}
	return world.BlockAir
}
