package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxbatch/internal/config"
	"voxbatch/internal/graphics"
	"voxbatch/internal/graphics/glbackend"
	"voxbatch/internal/graphics/renderer"
	"voxbatch/internal/logging"
	"voxbatch/internal/material"
	"voxbatch/internal/meshing"
	"voxbatch/pkg/blockmodel"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML settings file")
	seed := flag.Int64("seed", 1337, "terrain seed of the first world")
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			logging.Fatalf("load config: %v", err)
		}
		settings = s
	}
	config.Apply(settings)
	if err := logging.SetLevel(settings.LogLevel); err != nil {
		logging.Warnf("%v", err)
	}
	if settings.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: settings.SentryDSN}); err != nil {
			logging.Warnf("sentry disabled: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *configPath != "" {
		err := config.Watch(ctx, *configPath, func(s config.Settings) {
			config.Apply(s)
			if err := logging.SetLevel(s.LogLevel); err != nil {
				logging.Warnf("%v", err)
			}
		})
		if err != nil {
			logging.Warnf("config watch disabled: %v", err)
		}
	}

	registry, err := loadRegistry(settings)
	if err != nil {
		logging.Fatalf("materials: %v", err)
	}

	if err := glfw.Init(); err != nil {
		logging.Fatalf("glfw: %v", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		logging.Fatalf("window: %v", err)
	}
	if err := gl.Init(); err != nil {
		logging.Fatalf("gl: %v", err)
	}
	logging.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	backend, err := glbackend.New()
	if err != nil {
		logging.Fatalf("%v", err)
	}
	defer backend.Dispose()

	worldRenderer, err := renderer.NewWorldRenderer(backend, settings.RegionSize, settings.StatsWindow)
	if err != nil {
		logging.Fatalf("%v", err)
	}
	width, height := window.GetFramebufferSize()
	camera := graphics.NewCamera(width, height)
	camera.Position[1] = 48
	r := renderer.NewRenderer(camera, worldRenderer)
	defer r.Dispose()

	pool := meshing.NewWorkerPool(meshing.NewBuilder(registry), worldRenderer, settings.MeshWorkers, settings.MeshQueue)
	defer pool.Shutdown()

	v := newViewer(window, r, worldRenderer, backend, pool, registry, *seed)
	defer v.close()
	v.setupInput()
	v.run(ctx)
}

// loadRegistry reads material definitions from settings, falling back to
// the builtin set.
func loadRegistry(s config.Settings) (*material.Registry, error) {
	var loader *blockmodel.Loader
	if s.Assets != "" {
		loader = blockmodel.NewLoader(s.Assets)
	}
	registry := material.NewRegistry(loader)

	defs := material.Default()
	if s.Materials != "" {
		d, err := material.LoadDefinitions(s.Materials)
		if err != nil {
			return nil, err
		}
		defs = d
	}
	if err := registry.Apply(defs); err != nil {
		return nil, err
	}
	return registry, nil
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(900, 600, "batchview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	glfw.SwapInterval(1)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}
