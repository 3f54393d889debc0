package batch

import (
	"errors"
	"testing"

	"voxbatch/internal/config"
	"voxbatch/internal/world"
)

func TestLayoutRegionFloors(t *testing.T) {
	l, err := NewLayout([3]int{4, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		c    world.ChunkCoord
		want world.ChunkCoord
	}{
		{world.ChunkCoord{X: 0, Y: 0, Z: 0}, world.ChunkCoord{}},
		{world.ChunkCoord{X: 3, Y: 1, Z: 3}, world.ChunkCoord{}},
		{world.ChunkCoord{X: 4, Y: 2, Z: 7}, world.ChunkCoord{X: 1, Y: 1, Z: 1}},
		{world.ChunkCoord{X: -1, Y: -1, Z: -4}, world.ChunkCoord{X: -1, Y: -1, Z: -1}},
		{world.ChunkCoord{X: -5, Y: 0, Z: 0}, world.ChunkCoord{X: -2}},
	}
	for _, c := range cases {
		if got := l.Region(c.c); got != c.want {
			t.Fatalf("Region(%v) = %v, want %v", c.c, got, c.want)
		}
	}
}

func TestLayoutLocalIndexUnique(t *testing.T) {
	l, _ := NewLayout([3]int{3, 2, 4})
	seen := make(map[int]bool)
	for x := -3; x < 0; x++ {
		for y := 0; y < 2; y++ {
			for z := 4; z < 8; z++ {
				idx := l.LocalIndex(world.ChunkCoord{X: x, Y: y, Z: z})
				if idx < 0 || idx >= l.Volume() || seen[idx] {
					t.Fatalf("bad or duplicate index %d", idx)
				}
				seen[idx] = true
			}
		}
	}
}

func TestLayoutBounds(t *testing.T) {
	l, _ := NewLayout([3]int{2, 2, 2})
	lo, hi := l.Bounds(world.ChunkCoord{X: -1, Y: 0, Z: 1})
	if lo[0] != -32 || hi[0] != 0 || lo[2] != 32 || hi[2] != 64 {
		t.Fatalf("bounds = %v %v", lo, hi)
	}
}

func TestNewLayoutRejectsZero(t *testing.T) {
	if _, err := NewLayout([3]int{4, 0, 4}); !errors.Is(err, config.ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
}
