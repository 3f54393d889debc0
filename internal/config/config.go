package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidRegion = errors.New("config: region size must be positive on every axis")
	ErrInvalidBudget = errors.New("config: frame budget must be positive")
)

const (
	MinFrameBudget     = 250 * time.Microsecond
	MaxFrameBudget     = 50 * time.Millisecond
	MinRenderDistance  = 2
	MaxRenderDistance  = 64
	DefaultFrameBudget = 2 * time.Millisecond
)

// Settings is the on-disk configuration of the batching pipeline.
type Settings struct {
	FrameBudget    time.Duration `yaml:"frame_budget"`
	RegionSize     [3]int        `yaml:"region_size"`
	MeshWorkers    int           `yaml:"mesh_workers"`
	MeshQueue      int           `yaml:"mesh_queue"`
	RenderDistance int           `yaml:"render_distance"`
	StatsWindow    int           `yaml:"stats_window"`
	Materials      string        `yaml:"materials"`
	Assets         string        `yaml:"assets"`
	LogLevel       string        `yaml:"log_level"`
	// SentryDSN enables crash reporting when set.
	SentryDSN string `yaml:"sentry_dsn"`
}

func Default() Settings {
	return Settings{
		FrameBudget:    DefaultFrameBudget,
		RegionSize:     [3]int{4, 4, 4},
		MeshWorkers:    max(runtime.NumCPU()/2, 1),
		MeshQueue:      256,
		RenderDistance: 8,
		StatsWindow:    600,
		LogLevel:       "info",
	}
}

// Load reads a YAML settings file. Missing keys keep their defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate rejects settings that cannot be clamped into a usable range.
func (s Settings) Validate() error {
	for axis, n := range s.RegionSize {
		if n <= 0 {
			return fmt.Errorf("%w: axis %d is %d", ErrInvalidRegion, axis, n)
		}
	}
	if s.FrameBudget <= 0 {
		return ErrInvalidBudget
	}
	if s.MeshWorkers < 0 || s.MeshQueue < 0 || s.StatsWindow < 0 {
		return fmt.Errorf("config: negative counts in %+v", s)
	}
	return nil
}

// Runtime holds settings that may change while the program runs.
type Runtime struct {
	mu             sync.RWMutex
	frameBudget    time.Duration
	renderDistance int
}

var global = &Runtime{
	frameBudget:    DefaultFrameBudget,
	renderDistance: 8,
}

// GetFrameBudget returns the per-frame time slice given to batch integration
func GetFrameBudget() time.Duration {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.frameBudget
}

// SetFrameBudget sets the per-frame time slice
func SetFrameBudget(d time.Duration) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.frameBudget = min(max(d, MinFrameBudget), MaxFrameBudget)
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.renderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.renderDistance = min(max(distance, MinRenderDistance), MaxRenderDistance)
}

// GetChunkEvictRadius returns radius for chunk eviction (larger than load radius)
func GetChunkEvictRadius() int {
	return GetRenderDistance() + 2
}

// Apply copies the runtime-adjustable part of s into the global settings.
func Apply(s Settings) {
	SetFrameBudget(s.FrameBudget)
	SetRenderDistance(s.RenderDistance)
}
