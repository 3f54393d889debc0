package meshing

import "sync"

// Queue is a growable ring buffer of chunk meshes with many producers and a
// single consumer. Order is FIFO.
type Queue struct {
	mu    sync.Mutex
	data  []*ChunkMesh
	read  int
	count int
}

func NewQueue(capacity int) *Queue {
	return &Queue{data: make([]*ChunkMesh, max(capacity, 1))}
}

// Push enqueues m, growing the buffer when full. It never blocks on the consumer.
func (q *Queue) Push(m *ChunkMesh) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.data) {
		q.grow()
	}
	q.data[(q.read+q.count)%len(q.data)] = m
	q.count++
}

func (q *Queue) grow() {
	data := make([]*ChunkMesh, len(q.data)*2)
	n := copy(data, q.data[q.read:])
	copy(data[n:], q.data[:q.read])
	q.data = data
	q.read = 0
}

// Poll dequeues the oldest mesh, or returns nil when empty.
func (q *Queue) Poll() *ChunkMesh {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil
	}
	m := q.data[q.read]
	q.data[q.read] = nil
	q.read = (q.read + 1) % len(q.data)
	q.count--
	return m
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
