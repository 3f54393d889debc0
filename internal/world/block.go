package world

import (
	"math/bits"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockID identifies a block material inside a chunk. Zero is always air.
type BlockID uint16

const BlockAir BlockID = 0

// BlockFace identifies one of the six axis-aligned faces of a block.
// Opposite faces differ only in the lowest bit.
type BlockFace uint8

const (
	FaceNorth  BlockFace = iota // -Z
	FaceSouth                   // +Z
	FaceEast                    // +X
	FaceWest                    // -X
	FaceTop                     // +Y
	FaceBottom                  // -Y
)

const NumFaces = 6

// Faces lists every face in canonical order.
var Faces = [NumFaces]BlockFace{FaceNorth, FaceSouth, FaceEast, FaceWest, FaceTop, FaceBottom}

var faceOffsets = [NumFaces][3]int{
	{0, 0, -1},
	{0, 0, 1},
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
}

var faceNames = [NumFaces]string{"north", "south", "east", "west", "up", "down"}

// Offset returns the unit step from a block to its neighbor across f.
func (f BlockFace) Offset() (dx, dy, dz int) {
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

func (f BlockFace) Opposite() BlockFace {
	return f ^ 1
}

func (f BlockFace) Normal() mgl32.Vec3 {
	o := faceOffsets[f]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

func (f BlockFace) String() string {
	if int(f) < NumFaces {
		return faceNames[f]
	}
	return "invalid"
}

// ParseFace accepts the face names used by block model JSON ("up", "down",
// "north", ...). "top" and "bottom" are accepted as aliases.
func ParseFace(name string) (BlockFace, bool) {
	switch strings.ToLower(name) {
	case "north":
		return FaceNorth, true
	case "south":
		return FaceSouth, true
	case "east":
		return FaceEast, true
	case "west":
		return FaceWest, true
	case "up", "top":
		return FaceTop, true
	case "down", "bottom":
		return FaceBottom, true
	}
	return 0, false
}

// FaceMask is a set of block faces, one bit per BlockFace.
type FaceMask uint8

const AllFaces FaceMask = 1<<NumFaces - 1

func MaskOf(faces ...BlockFace) FaceMask {
	var m FaceMask
	for _, f := range faces {
		m |= 1 << f
	}
	return m
}

func (m FaceMask) Has(f BlockFace) bool {
	return m&(1<<f) != 0
}

func (m FaceMask) With(f BlockFace) FaceMask {
	return m | 1<<f
}

func (m FaceMask) Without(f BlockFace) FaceMask {
	return m &^ (1 << f)
}

func (m FaceMask) Count() int {
	return bits.OnesCount8(uint8(m & AllFaces))
}

func (m FaceMask) String() string {
	if m&AllFaces == 0 {
		return "none"
	}
	var sb strings.Builder
	for _, f := range Faces {
		if m.Has(f) {
			if sb.Len() > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(f.String())
		}
	}
	return sb.String()
}
