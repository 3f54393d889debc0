package main

import (
	"context"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/config"
	"voxbatch/internal/graphics/glbackend"
	"voxbatch/internal/graphics/renderer"
	"voxbatch/internal/logging"
	"voxbatch/internal/material"
	"voxbatch/internal/meshing"
	"voxbatch/internal/profiling"
	"voxbatch/internal/world"
)

const (
	moveSpeed        = 24.0
	mouseSense       = 0.12
	snapshotsPerTick = 64
	evictEvery       = 750 * time.Millisecond
)

// scene is one world with its terrain streamer.
type scene struct {
	world    *world.World
	streamer *world.Streamer
}

type viewer struct {
	window   *glfw.Window
	renderer *renderer.Renderer
	worlds   *renderer.WorldRenderer
	backend  *glbackend.Backend
	pool     *meshing.WorkerPool
	registry *material.Registry

	scenes    []*scene
	active    int
	snapshots []*world.SnapshotModel

	lastX, lastY float64
	firstMouse   bool
	lastEvict    time.Time
	lastReport   time.Time
	frames       int
}

func newViewer(window *glfw.Window, r *renderer.Renderer, wr *renderer.WorldRenderer, backend *glbackend.Backend, pool *meshing.WorkerPool, registry *material.Registry, seed int64) *viewer {
	v := &viewer{
		window:     window,
		renderer:   r,
		worlds:     wr,
		backend:    backend,
		pool:       pool,
		registry:   registry,
		firstMouse: true,
		lastEvict:  time.Now(),
		lastReport: time.Now(),
	}
	palette := world.Palette{
		Base:    registry.ID("stone"),
		Filler:  registry.ID("dirt"),
		Surface: registry.ID("grass"),
		Fluid:   registry.ID("water"),
	}
	for i, name := range []string{"overworld", "islands"} {
		w := world.New(name)
		gen := world.NewNoiseGenerator(seed+int64(i), palette)
		if i == 1 {
			gen.SeaLevel = 40
			gen.Amplitude = 32
		}
		v.scenes = append(v.scenes, &scene{world: w, streamer: world.NewStreamer(w, gen, 2)})
	}
	return v
}

func (v *viewer) current() *scene {
	return v.scenes[v.active]
}

func (v *viewer) close() {
	for _, s := range v.scenes {
		s.streamer.Close()
		v.worlds.ReleaseWorld(s.world.ID)
	}
}

func (v *viewer) setupInput() {
	v.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if v.firstMouse {
			v.lastX, v.lastY = xpos, ypos
			v.firstMouse = false
		}
		dx, dy := xpos-v.lastX, v.lastY-ypos
		v.lastX, v.lastY = xpos, ypos
		v.renderer.Camera().Rotate(float32(dx*mouseSense), float32(dy*mouseSense))
	})
	v.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.backend.Viewport(width, height)
		v.renderer.UpdateViewport(width, height)
	})
	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyTab:
			v.active = (v.active + 1) % len(v.scenes)
			logging.Infof("switching to %s", v.current().world.Name)
		case glfw.KeyEqual:
			config.SetRenderDistance(config.GetRenderDistance() + 1)
		case glfw.KeyMinus:
			config.SetRenderDistance(config.GetRenderDistance() - 1)
		case glfw.KeyR:
			// closing a world frees its batches; it is rebuilt from its chunks
			s := v.current()
			v.worlds.ReleaseWorld(s.world.ID)
			s.world.DisableRenderQueue()
			s.world.EnableRenderQueue()
		}
	})
}

func (v *viewer) run(ctx context.Context) {
	lastTime := time.Now()
	for !v.window.ShouldClose() && ctx.Err() == nil {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		v.move(float32(dt))
		v.stream()

		v.backend.Clear()
		v.renderer.Frame(v.current().world, dt)

		func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
		v.report()
	}
}

func (v *viewer) move(dt float32) {
	cam := v.renderer.Camera()
	front := cam.Front()
	right := front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	var dir mgl32.Vec3
	if v.window.GetKey(glfw.KeyW) == glfw.Press {
		dir = dir.Add(front)
	}
	if v.window.GetKey(glfw.KeyS) == glfw.Press {
		dir = dir.Sub(front)
	}
	if v.window.GetKey(glfw.KeyD) == glfw.Press {
		dir = dir.Add(right)
	}
	if v.window.GetKey(glfw.KeyA) == glfw.Press {
		dir = dir.Sub(right)
	}
	if v.window.GetKey(glfw.KeySpace) == glfw.Press {
		dir = dir.Add(mgl32.Vec3{0, 1, 0})
	}
	if v.window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		dir = dir.Sub(mgl32.Vec3{0, 1, 0})
	}
	if dir.Len() > 0 {
		cam.Position = cam.Position.Add(dir.Normalize().Mul(moveSpeed * dt))
	}
}

// stream loads terrain around the camera and feeds dirty chunks to the
// mesh workers. Only the active world is fed; others keep their chunks.
func (v *viewer) stream() {
	defer profiling.Track("world.stream")()
	s := v.current()
	pos := v.renderer.Camera().Position
	s.streamer.StreamAround(pos[0], pos[2], config.GetRenderDistance())

	if time.Since(v.lastEvict) > evictEvery {
		if n := s.streamer.EvictFarChunks(pos[0], pos[2], config.GetChunkEvictRadius()); n > 0 {
			logging.Debugf("evicted %d chunks from %s", n, s.world.Name)
		}
		v.lastEvict = time.Now()
	}

	v.snapshots = s.world.CollectSnapshots(v.snapshots[:0], snapshotsPerTick)
	for i, m := range v.snapshots {
		if !v.pool.Submit(m) {
			// queue full: hand the rest back by marking them dirty again
			for _, rest := range v.snapshots[i:] {
				if !rest.Unload {
					if c := s.world.Store().GetChunk(rest.Coord, false); c != nil {
						c.MarkDirty()
					}
				} else {
					v.pool.SubmitBlocking(rest)
				}
			}
			break
		}
	}
	clear(v.snapshots)
}

func (v *viewer) report() {
	v.frames++
	if time.Since(v.lastReport) < time.Second {
		return
	}
	st := v.worlds.Stats()
	logging.Infof("fps=%d %v batches=%d mesh-queue=%d update(avg/max)=%s/%s render(avg/max)=%s/%s world=%s top=[%s]",
		v.frames, st.Last, v.worlds.Index().Len(), v.pool.QueueLength(),
		st.UpdateAvg(), st.UpdateMax, st.RenderAvg(), st.RenderMax,
		profiling.SumWithPrefix("world."), profiling.TopN(3))
	v.frames = 0
	v.lastReport = time.Now()
}
