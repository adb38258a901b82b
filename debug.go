package marquee

import (
	"log/slog"
	"time"
)

// debugLogAdvance logs the scene half of a frame.
func (s *Stage) debugLogAdvance(elapsed time.Duration) {
	Logger().Debug("marquee: advance",
		slog.Int("applied", s.stats.Applied),
		slog.Int("dropped", s.stats.Dropped),
		slog.Int("animations", s.stats.Animations),
		slog.Int("nodes", len(s.nodes)),
		slog.Duration("elapsed", elapsed))
}

// debugLogRender logs the draw half of a frame.
func (s *Stage) debugLogRender(st RenderStats) {
	Logger().Debug("marquee: render",
		slog.Int("nodes", st.Nodes),
		slog.Int("drawCalls", st.DrawCalls),
		slog.Int("skipped", st.Skipped),
		slog.Int("clips", st.Clips),
		slog.Int("switches", st.Switches),
		slog.Int("stateSkips", st.StateSkips),
		slog.Duration("traverse", st.Traverse))
}

// debugMaxTreeDepth is the depth past which a warning is logged.
const debugMaxTreeDepth = 32

func (s *Stage) debugCheckTreeDepth(n Node) {
	depth := 0
	for ok := true; ok; n, ok = s.nodes[n.Parent()] {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("marquee: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the child count past which a warning is logged.
const debugMaxChildCount = 1000

func (s *Stage) debugCheckChildCount(g *Group) {
	if len(g.children) > debugMaxChildCount {
		Logger().Warn("marquee: group child count exceeds threshold",
			"node", g.id, "children", len(g.children), "threshold", debugMaxChildCount)
	}
}
