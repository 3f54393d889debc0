package blockmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

var (
	ErrNoElements     = errors.New("blockmodel: model has no elements")
	ErrUnknownVariant = errors.New("blockmodel: blockstate has no usable variant")
)

// Loader reads JSON models and blockstates from an assets directory and
// caches both the parsed models and their baked meshes.
type Loader struct {
	assetsPath string

	mu         sync.Mutex
	modelCache map[string]*Model
	meshCache  map[string]*Mesh
}

func NewLoader(assetsPath string) *Loader {
	return &Loader{
		assetsPath: assetsPath,
		modelCache: make(map[string]*Model),
		meshCache:  make(map[string]*Mesh),
	}
}

func canonicalName(name string) string {
	if !strings.Contains(name, "/") {
		return "block/" + name
	}
	return name
}

// LoadModel parses a model and merges in its parent chain. Cached models
// are shared and must be treated as read-only.
func (l *Loader) LoadModel(name string) (*Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadModel(canonicalName(name))
}

func (l *Loader) loadModel(name string) (*Model, error) {
	if model, ok := l.modelCache[name]; ok {
		return model, nil
	}

	path := filepath.Join(l.assetsPath, "models", name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal model json %s: %w", name, err)
	}
	if model.Textures == nil {
		model.Textures = make(map[string]string)
	}

	if model.Parent != "" && !strings.HasPrefix(model.Parent, "builtin/") {
		parent, err := l.loadModel(canonicalName(model.Parent))
		if err != nil {
			return nil, fmt.Errorf("could not load parent model '%s': %w", model.Parent, err)
		}

		if model.AmbientOcclusion == nil {
			model.AmbientOcclusion = parent.AmbientOcclusion
		}
		if len(model.Elements) == 0 {
			// Copy so texture resolution below cannot leak into the cached parent.
			model.Elements = make([]Element, len(parent.Elements))
			for i, e := range parent.Elements {
				model.Elements[i] = e.clone()
			}
		}
		for key, val := range parent.Textures {
			if _, ok := model.Textures[key]; !ok {
				model.Textures[key] = val
			}
		}
	}

	l.resolveTextures(&model)
	l.modelCache[name] = &model
	return &model, nil
}

func (l *Loader) resolveTextures(m *Model) {
	for i := range m.Elements {
		for faceName, face := range m.Elements[i].Faces {
			resolved := l.ResolveTexture(face.Texture, m)
			if resolved != face.Texture {
				face.Texture = resolved
				m.Elements[i].Faces[faceName] = face
			}
		}
	}
}

// ResolveTexture follows "#name" references through the model's texture map.
func (l *Loader) ResolveTexture(textureName string, m *Model) string {
	for i := 0; i < 10 && strings.HasPrefix(textureName, "#"); i++ {
		key := strings.TrimPrefix(textureName, "#")
		resolved, ok := m.Textures[key]
		if !ok {
			break
		}
		textureName = resolved
	}
	return textureName
}

// LoadMesh loads a model and bakes it into an oriented triangle mesh.
// The name "cube" always resolves to the builtin unit cube.
func (l *Loader) LoadMesh(name string) (*Mesh, error) {
	if name == CubeName {
		return Cube(), nil
	}
	name = canonicalName(name)

	l.mu.Lock()
	defer l.mu.Unlock()
	if mesh, ok := l.meshCache[name]; ok {
		return mesh, nil
	}
	model, err := l.loadModel(name)
	if err != nil {
		return nil, err
	}
	mesh, err := Bake(name, model)
	if err != nil {
		return nil, err
	}
	l.meshCache[name] = mesh
	return mesh, nil
}

func (l *Loader) LoadBlockState(name string) (*BlockState, error) {
	path := filepath.Join(l.assetsPath, "blockstates", name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read blockstate file: %w", err)
	}

	var blockState BlockState
	if err := json.Unmarshal(data, &blockState); err != nil {
		return nil, fmt.Errorf("could not unmarshal blockstate json: %w", err)
	}
	return &blockState, nil
}

// ResolveVariant returns the model name of a blockstate variant. An empty or
// unknown variant falls back to "" or "normal", then to the first variant in
// key order. Weighted alternatives resolve to their first entry.
func (l *Loader) ResolveVariant(state, variant string) (string, error) {
	bs, err := l.LoadBlockState(state)
	if err != nil {
		return "", err
	}
	for _, key := range []string{variant, "", "normal"} {
		if v, ok := bs.Variants[key]; ok && len(v) > 0 {
			return v[0].Model, nil
		}
	}
	keys := make([]string, 0, len(bs.Variants))
	for key := range bs.Variants {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if v := bs.Variants[key]; len(v) > 0 {
			return v[0].Model, nil
		}
	}
	return "", fmt.Errorf("%s: %w", state, ErrUnknownVariant)
}
