package world

import (
	"sync"

	"voxbatch/internal/profiling"
)

// ChunkStore manages the storage and retrieval of chunks.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[ChunkCoord]*Chunk)}
}

// GetChunk returns the chunk at coord.
// If the chunk doesn't exist and create is true, an empty one is installed.
func (cs *ChunkStore) GetChunk(coord ChunkCoord, create bool) *Chunk {
	cs.mu.RLock()
	chunk, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	if !exists && create {
		cs.mu.Lock()
		// Another goroutine might have created it while we were waiting for the lock
		if existing, ok := cs.chunks[coord]; ok {
			cs.mu.Unlock()
			return existing
		}
		chunk = NewChunk(coord.X, coord.Y, coord.Z)
		cs.chunks[coord] = chunk
		cs.modCount++
		cs.mu.Unlock()
	}
	return chunk
}

// Get returns the block at absolute coordinates.
func (cs *ChunkStore) Get(x, y, z int) BlockID {
	chunk := cs.GetChunk(ChunkCoordOf(x, y, z), false)
	if chunk == nil {
		return BlockAir
	}
	return chunk.GetBlock(mod(x, ChunkSize), mod(y, ChunkSize), mod(z, ChunkSize))
}

// Set writes a block at absolute coordinates. Neighbor chunks sharing the
// touched border are marked dirty so their faces get rebuilt too.
func (cs *ChunkStore) Set(x, y, z int, id BlockID) {
	chunk := cs.GetChunk(ChunkCoordOf(x, y, z), true)

	lx, ly, lz := mod(x, ChunkSize), mod(y, ChunkSize), mod(z, ChunkSize)
	chunk.SetBlock(lx, ly, lz, id)

	coord := chunk.Coord()
	if lx == 0 {
		cs.markDirty(coord.Neighbor(FaceWest))
	} else if lx == ChunkSize-1 {
		cs.markDirty(coord.Neighbor(FaceEast))
	}
	if ly == 0 {
		cs.markDirty(coord.Neighbor(FaceBottom))
	} else if ly == ChunkSize-1 {
		cs.markDirty(coord.Neighbor(FaceTop))
	}
	if lz == 0 {
		cs.markDirty(coord.Neighbor(FaceNorth))
	} else if lz == ChunkSize-1 {
		cs.markDirty(coord.Neighbor(FaceSouth))
	}
}

func (cs *ChunkStore) markDirty(coord ChunkCoord) {
	if nb := cs.GetChunk(coord, false); nb != nil {
		nb.MarkDirty()
	}
}

func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk installs a pre-generated chunk. Existing face neighbors are marked
// dirty because their border faces may now be hidden.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	coord := chunk.Coord()
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.chunks[coord]; ok {
		return false
	}
	cs.chunks[coord] = chunk
	cs.modCount++
	for _, f := range Faces {
		if nb, ok := cs.chunks[coord.Neighbor(f)]; ok {
			nb.MarkDirty()
		}
	}
	return true
}

// RemoveChunk drops a chunk and reports whether it was present.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; !ok {
		return false
	}
	delete(cs.chunks, coord)
	cs.modCount++
	for _, f := range Faces {
		if nb, ok := cs.chunks[coord.Neighbor(f)]; ok {
			nb.MarkDirty()
		}
	}
	return true
}

// EvictFarChunks removes chunks whose XZ distance from (cx, cz) exceeds
// radius and returns their coordinates appended to dst.
func (cs *ChunkStore) EvictFarChunks(cx, cz, radius int, dst []ChunkCoord) []ChunkCoord {
	defer profiling.Track("world.EvictFarChunks")()
	cs.mu.Lock()
	for coord := range cs.chunks {
		dx := coord.X - cx
		dz := coord.Z - cz
		if dx*dx+dz*dz > radius*radius {
			delete(cs.chunks, coord)
			cs.modCount++
			dst = append(dst, coord)
		}
	}
	cs.mu.Unlock()
	return dst
}

// TakeDirty appends the coordinates of dirty chunks to dst and clears their
// dirty flags.
func (cs *ChunkStore) TakeDirty(dst []ChunkCoord, limit int) []ChunkCoord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for coord, chunk := range cs.chunks {
		if limit > 0 && len(dst) >= limit {
			break
		}
		if chunk.takeDirty() {
			dst = append(dst, coord)
		}
	}
	return dst
}

// Snapshot copies the chunk at coord, or returns nil when it is not loaded.
func (cs *ChunkStore) Snapshot(coord ChunkCoord) *ChunkSnapshot {
	chunk := cs.GetChunk(coord, false)
	if chunk == nil {
		return nil
	}
	return chunk.Snapshot()
}

func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}
