package world

import (
	"math"
	"runtime"
	"sync"

	"voxbatch/internal/profiling"
)

// Streamer generates chunks around a point on background workers and evicts
// the ones that fall out of range.
type Streamer struct {
	jobs       chan ChunkCoord
	pending    map[ChunkCoord]struct{}
	pendingMu  sync.Mutex
	maxPending int

	maxJobsPerCall int
	wg             sync.WaitGroup
	closeOnce      sync.Once

	// Cached terrain heights per column (chunkX, chunkZ) -> maxChunkY
	heightCache   map[[2]int]int
	heightCacheMu sync.RWMutex

	world   *World
	gen     Generator
	evicted []ChunkCoord
}

func NewStreamer(w *World, gen Generator, workers int) *Streamer {
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	s := &Streamer{
		jobs:           make(chan ChunkCoord, 4096),
		pending:        make(map[ChunkCoord]struct{}),
		maxJobsPerCall: 1024,
		maxPending:     8192,
		heightCache:    make(map[[2]int]int),
		world:          w,
		gen:            gen,
	}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// Close stops the generation workers and waits for them to exit.
func (s *Streamer) Close() {
	s.closeOnce.Do(func() {
		close(s.jobs)
		s.wg.Wait()
	})
}

func (s *Streamer) worker() {
	defer s.wg.Done()
	for coord := range s.jobs {
		s.generate(coord)
		s.pendingMu.Lock()
		delete(s.pending, coord)
		s.pendingMu.Unlock()
	}
}

func (s *Streamer) generate(coord ChunkCoord) {
	store := s.world.Store()
	if store.HasChunk(coord) {
		return
	}
	chunk := NewChunk(coord.X, coord.Y, coord.Z)
	s.gen.PopulateChunk(chunk)
	store.AddChunk(chunk)
}

// Pending returns the number of chunks queued or being generated.
func (s *Streamer) Pending() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

// StreamAround queues missing chunks in rings of increasing distance around
// the block position (x, z) and returns how many were queued.
func (s *Streamer) StreamAround(x, z float32, radius int) int {
	defer profiling.Track("world.StreamAround")()
	cx := floorDiv(int(math.Floor(float64(x))), ChunkSize)
	cz := floorDiv(int(math.Floor(float64(z))), ChunkSize)

	pushed := 0
	for r := 0; r <= radius && pushed < s.maxJobsPerCall; r++ {
		if r == 0 {
			pushed += s.enqueueColumn(cx, cz)
			continue
		}
		x0, x1 := cx-r, cx+r
		z0, z1 := cz-r, cz+r
		for xk := x0; xk <= x1; xk++ {
			pushed += s.enqueueColumn(xk, z0)
			pushed += s.enqueueColumn(xk, z1)
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			pushed += s.enqueueColumn(x0, zk)
			pushed += s.enqueueColumn(x1, zk)
		}
	}
	return pushed
}

// enqueueColumn enqueues all needed Y-chunks for a column.
func (s *Streamer) enqueueColumn(chunkX, chunkZ int) int {
	key := [2]int{chunkX, chunkZ}
	s.heightCacheMu.RLock()
	maxChunkY, ok := s.heightCache[key]
	s.heightCacheMu.RUnlock()
	if !ok {
		h := s.gen.HeightAt(chunkX*ChunkSize+ChunkSize/2, chunkZ*ChunkSize+ChunkSize/2)
		maxChunkY = max(floorDiv(h+ChunkSize/2, ChunkSize), 0)
		s.heightCacheMu.Lock()
		s.heightCache[key] = maxChunkY
		s.heightCacheMu.Unlock()
	}

	enq := 0
	for cy := 0; cy <= maxChunkY; cy++ {
		if s.request(ChunkCoord{X: chunkX, Y: cy, Z: chunkZ}) {
			enq++
		}
	}
	return enq
}

// request respects the pending cap and returns true if enqueued.
func (s *Streamer) request(coord ChunkCoord) bool {
	if s.world.Store().HasChunk(coord) {
		return false
	}

	s.pendingMu.Lock()
	if _, ok := s.pending[coord]; ok {
		s.pendingMu.Unlock()
		return false
	}
	if s.maxPending > 0 && len(s.pending) >= s.maxPending {
		s.pendingMu.Unlock()
		return false
	}
	s.pending[coord] = struct{}{}
	s.pendingMu.Unlock()

	select {
	case s.jobs <- coord:
		return true
	default:
		// queue full: rollback
		s.pendingMu.Lock()
		delete(s.pending, coord)
		s.pendingMu.Unlock()
		return false
	}
}

// EvictFarChunks unloads chunks outside radius and returns how many were removed.
func (s *Streamer) EvictFarChunks(x, z float32, radius int) int {
	cx := floorDiv(int(math.Floor(float64(x))), ChunkSize)
	cz := floorDiv(int(math.Floor(float64(z))), ChunkSize)

	s.evicted = s.world.Store().EvictFarChunks(cx, cz, radius, s.evicted[:0])
	for _, coord := range s.evicted {
		s.world.noteUnloaded(coord)
	}

	s.heightCacheMu.Lock()
	for key := range s.heightCache {
		dx := key[0] - cx
		dz := key[1] - cz
		if dx*dx+dz*dz > radius*radius {
			delete(s.heightCache, key)
		}
	}
	s.heightCacheMu.Unlock()

	return len(s.evicted)
}
