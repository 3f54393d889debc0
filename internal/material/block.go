package material

import "voxbatch/internal/world"

// BlockDefinition is the static description of a block type.
type BlockDefinition struct {
	ID          world.BlockID
	Name        string
	Data        uint16
	Invisible   bool
	Transparent bool
	// Occludes lists the faces that hide a touching neighbor face.
	Occludes world.FaceMask
	// Render names the render material; empty means the block draws nothing.
	Render string
	// Model names the block model; "cube" is the builtin unit cube.
	Model string
	// State names a blockstate file whose Variant selects the model. It
	// takes precedence over Model.
	State   string
	Variant string
}

// Block is the standard Material implementation.
type Block struct {
	def   BlockDefinition
	model *Model
}

func NewBlock(def BlockDefinition, model *Model) *Block {
	return &Block{def: def, model: model}
}

func (b *Block) ID() world.BlockID { return b.def.ID }
func (b *Block) Name() string      { return b.def.Name }
func (b *Block) Data() uint16      { return b.def.Data }
func (b *Block) IsInvisible() bool { return b.def.Invisible }
func (b *Block) Model() *Model     { return b.model }

// IsFaceRendered shows every face except one shared with another block of
// the same transparent material, so glass panes or water merge seamlessly.
func (b *Block) IsFaceRendered(face world.BlockFace, neighbor Material) bool {
	if neighbor == nil || neighbor.IsInvisible() {
		return true
	}
	if b.def.Transparent && neighbor.ID() == b.def.ID {
		return false
	}
	return true
}

func (b *Block) Occlusion(data uint16) world.FaceMask {
	if b.def.Invisible {
		return 0
	}
	return b.def.Occludes
}
