package world

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Generator fills freshly created chunks.
type Generator interface {
	HeightAt(x, z int) int
	PopulateChunk(c *Chunk)
}

// Palette names the blocks a NoiseGenerator places.
type Palette struct {
	Base    BlockID
	Filler  BlockID
	Surface BlockID
	Fluid   BlockID
}

// NoiseGenerator builds rolling terrain from octave simplex noise with an
// optional fluid layer up to SeaLevel.
type NoiseGenerator struct {
	Palette     Palette
	SeaLevel    int
	BaseHeight  int
	Amplitude   float64
	Scale       float64
	Octaves     int
	Persistence float64
	Lacunarity  float64

	noise opensimplex.Noise
}

func NewNoiseGenerator(seed int64, palette Palette) *NoiseGenerator {
	return &NoiseGenerator{
		Palette:     palette,
		SeaLevel:    28,
		BaseHeight:  32,
		Amplitude:   20,
		Scale:       1.0 / 96.0,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
		noise:       opensimplex.New(seed),
	}
}

// HeightAt computes the surface height (block Y) at world X,Z.
func (g *NoiseGenerator) HeightAt(x, z int) int {
	fx := float64(x) * g.Scale
	fz := float64(z) * g.Scale
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < g.Octaves; i++ {
		sum += g.noise.Eval2(fx*freq, fz*freq) * amp
		norm += amp
		amp *= g.Persistence
		freq *= g.Lacunarity
	}
	if norm > 0 {
		sum /= norm
	}
	h := float64(g.BaseHeight) + sum*g.Amplitude
	if h < 0 {
		h = 0
	}
	return int(math.Floor(h))
}

func (g *NoiseGenerator) PopulateChunk(c *Chunk) {
	ox, oy, oz := c.Coord().Origin()
	for lx := 0; lx < ChunkSize; lx++ {
		for lz := 0; lz < ChunkSize; lz++ {
			height := g.HeightAt(ox+lx, oz+lz)
			for ly := 0; ly < ChunkSize; ly++ {
				y := oy + ly
				var id BlockID
				switch {
				case y < 0:
					continue
				case y == 0:
					id = g.Palette.Base
				case y < height-3:
					id = g.Palette.Base
				case y < height:
					id = g.Palette.Filler
				case y == height:
					id = g.Palette.Surface
				case y <= g.SeaLevel:
					id = g.Palette.Fluid
				}
				if id != BlockAir {
					c.SetBlock(lx, ly, lz, id)
				}
			}
		}
	}
}
