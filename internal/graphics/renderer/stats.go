package renderer

import (
	"fmt"
	"time"
)

// FrameStats are the counters of one RunFrame call.
type FrameStats struct {
	Rendered int
	Culled   int
	// Occluded is reserved for occlusion queries and currently always zero.
	Occluded int
	Total    int
	Queued   int
	// Drained is false when the update slice hit its deadline.
	Drained bool
	Update  time.Duration
	Render  time.Duration
}

func (f FrameStats) String() string {
	return fmt.Sprintf("rendered=%d culled=%d total=%d queued=%d update=%s render=%s",
		f.Rendered, f.Culled, f.Total, f.Queued, f.Update, f.Render)
}

// Stats aggregates frame timings over a rolling window. The window resets
// once Frames reaches Window.
type Stats struct {
	Window    int
	Frames    int
	UpdateMin time.Duration
	UpdateMax time.Duration
	UpdateSum time.Duration
	RenderMin time.Duration
	RenderMax time.Duration
	RenderSum time.Duration
	Last      FrameStats
}

func (s *Stats) record(f FrameStats) {
	if s.Window > 0 && s.Frames >= s.Window {
		*s = Stats{Window: s.Window}
	}
	if s.Frames == 0 {
		s.UpdateMin, s.RenderMin = f.Update, f.Render
	}
	s.Frames++
	s.UpdateMin = min(s.UpdateMin, f.Update)
	s.UpdateMax = max(s.UpdateMax, f.Update)
	s.UpdateSum += f.Update
	s.RenderMin = min(s.RenderMin, f.Render)
	s.RenderMax = max(s.RenderMax, f.Render)
	s.RenderSum += f.Render
	s.Last = f
}

func (s Stats) UpdateAvg() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.UpdateSum / time.Duration(s.Frames)
}

func (s Stats) RenderAvg() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.RenderSum / time.Duration(s.Frames)
}
