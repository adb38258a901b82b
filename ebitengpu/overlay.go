package ebitengpu

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// overlayInterval is how often, in seconds, the overlay text is refreshed.
const overlayInterval = 0.5

// overlay prints frame rate and render counters in the top-left corner.
// The text is rebuilt every overlayInterval seconds.
type overlay struct {
	elapsed float32
	text    string
}

func (o *overlay) update(dt float32, g *Game) {
	o.elapsed += dt
	if o.text != "" && o.elapsed < overlayInterval {
		return
	}
	o.elapsed = 0
	rs := g.renderer.Stats()
	ds := g.dev.Stats()
	ss := g.stage.Stats()
	o.text = fmt.Sprintf("FPS: %.1f  TPS: %.1f\nnodes %d  draws %d  tris %d\nswitches %d  skipped %d  layers %d\nupdates %d  anims %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		rs.Nodes, rs.DrawCalls, ds.Triangles,
		rs.Switches, rs.StateSkips, ds.LayerFlushes,
		ss.Applied, ss.Animations)
}

func (o *overlay) draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, o.text)
}
