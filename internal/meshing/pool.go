package meshing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"voxbatch/internal/logging"
	"voxbatch/internal/world"
)

// Sink receives finished chunk meshes.
type Sink interface {
	SubmitChunkMesh(mesh *ChunkMesh)
}

// WorkerPool builds chunk meshes on background goroutines and hands them to a sink.
type WorkerPool struct {
	jobQueue chan *world.SnapshotModel
	workers  int
	builder  *Builder
	sink     Sink
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

func NewWorkerPool(builder *Builder, sink Sink, workers, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	workers = max(workers, 1)
	pool := &WorkerPool{
		jobQueue: make(chan *world.SnapshotModel, queueSize),
		workers:  workers,
		builder:  builder,
		sink:     sink,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	logging.Infof("mesh worker pool started: workers=%d queue=%d", workers, queueSize)
	return pool
}

// Submit queues a snapshot model. It returns false if the queue is full or
// the pool is shut down.
func (p *WorkerPool) Submit(m *world.SnapshotModel) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}
	select {
	case p.jobQueue <- m:
		return true
	default:
		return false
	}
}

// SubmitBlocking waits for queue space or shutdown.
func (p *WorkerPool) SubmitBlocking(m *world.SnapshotModel) bool {
	select {
	case p.jobQueue <- m:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			p.process(id, job)
		case <-p.ctx.Done():
			return
		}
	}
}

// process builds one job. A panicking build is reported and the worker
// keeps serving.
func (p *WorkerPool) process(id int, job *world.SnapshotModel) {
	defer func() {
		if r := recover(); r != nil {
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("chunk", job.Coord.String())
				scope.SetTag("world", job.World.String())
			})
			hub.Recover(fmt.Errorf("mesh worker %d crashed on chunk %v: %v", id, job.Coord, r))
			hub.Flush(time.Second * 5)
			logging.Errorf("mesh worker %d recovered from panic on chunk %v: %v", id, job.Coord, r)
		}
	}()
	p.sink.SubmitChunkMesh(p.builder.Build(job))
}

// Shutdown stops the workers and waits for them. Queued jobs are dropped.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
		logging.Infof("mesh worker pool stopped")
	})
}

// QueueLength returns the number of jobs waiting for a worker.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
