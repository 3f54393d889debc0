package meshing

import (
	"sync"
	"testing"

	"voxbatch/internal/world"
)

func TestQueueFIFOAcrossGrowth(t *testing.T) {
	q := NewQueue(2)
	for i := 0; i < 3; i++ {
		q.Push(&ChunkMesh{Coord: world.ChunkCoord{X: i}})
	}
	if q.Poll().Coord.X != 0 {
		t.Fatalf("expected oldest first")
	}
	// wrap the read index before growing again
	for i := 3; i < 8; i++ {
		q.Push(&ChunkMesh{Coord: world.ChunkCoord{X: i}})
	}
	for want := 1; want < 8; want++ {
		m := q.Poll()
		if m == nil || m.Coord.X != want {
			t.Fatalf("got %v, want X=%d", m, want)
		}
	}
	if q.Poll() != nil || q.Len() != 0 {
		t.Fatalf("queue should be empty")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue(4)
	const producers, each = 8, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.Push(&ChunkMesh{Coord: world.ChunkCoord{X: p, Z: i}})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[world.ChunkCoord]bool)
	for m := q.Poll(); m != nil; m = q.Poll() {
		if seen[m.Coord] {
			t.Fatalf("duplicate %v", m.Coord)
		}
		seen[m.Coord] = true
	}
	if len(seen) != producers*each {
		t.Fatalf("got %d meshes, want %d", len(seen), producers*each)
	}
}
