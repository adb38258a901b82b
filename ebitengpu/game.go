package ebitengpu

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marquee"
)

// GameOptions configures a Game. The zero value is usable.
type GameOptions struct {
	// Width and Height fix the logical screen size. Zero follows the
	// window size.
	Width, Height int
	// ScreenshotDir is where Screenshot writes PNGs. Defaults to
	// "screenshots".
	ScreenshotDir string
	// Overlay prints frame statistics over the scene.
	Overlay bool
	// Camera installs a camera on the renderer.
	Camera bool
	// FixedStep advances the stage clock by exactly one tick per Update
	// instead of following the wall clock. Scripted captures use it so
	// dropped ticks do not change what a screenshot shows.
	FixedStep bool
	Renderer  marquee.RendererOptions
	Device    Options
}

// Game runs a Stage under ebiten.RunGame. Update advances the stage clock
// and applies pending updates; Draw renders the scene.
type Game struct {
	stage    *marquee.Stage
	dev      *Device
	renderer *marquee.Renderer
	opts     GameOptions

	clock time.Duration
	start time.Time
	now   func() time.Time
	quit  bool

	bindings map[ebiten.Key]func()
	injected []ebiten.Key
	pressed  []ebiten.Key
	script   *Script
	overlay  *overlay
	shots    []string
	written  []string
}

// NewGame builds the device and renderer for s.
func NewGame(s *marquee.Stage, opts GameOptions) (*Game, error) {
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	dev, err := New(opts.Device)
	if err != nil {
		return nil, err
	}
	r, err := marquee.NewRenderer(dev, opts.Renderer)
	if err != nil {
		return nil, fmt.Errorf("ebitengpu: new game: %w", err)
	}
	if opts.Camera {
		r.SetCamera(marquee.NewCamera())
	}
	g := &Game{
		stage:    s,
		dev:      dev,
		renderer: r,
		opts:     opts,
		now:      time.Now,
		bindings: make(map[ebiten.Key]func()),
	}
	if opts.Overlay {
		g.overlay = &overlay{}
	}
	return g, nil
}

// Stage returns the stage being drawn.
func (g *Game) Stage() *marquee.Stage { return g.stage }

// Renderer returns the renderer, e.g. to reach its camera.
func (g *Game) Renderer() *marquee.Renderer { return g.renderer }

// Device returns the ebiten device.
func (g *Game) Device() *Device { return g.dev }

// SetScript attaches a script; nil detaches it.
func (g *Game) SetScript(s *Script) { g.script = s }

// Quit ends the game loop after the current Update.
func (g *Game) Quit() { g.quit = true }

// tick returns the fixed update step in seconds.
func tick() float32 {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return 1 / float32(tps)
}

// advanceClock moves the stage clock forward. The wall clock is measured
// from the first Update.
func (g *Game) advanceClock(dt float32) time.Duration {
	if g.opts.FixedStep {
		g.clock += time.Duration(float64(dt) * float64(time.Second))
		return g.clock
	}
	t := g.now()
	if g.start.IsZero() {
		g.start = t
	}
	g.clock = t.Sub(g.start)
	return g.clock
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := tick()
	g.advanceClock(dt)

	if g.script != nil {
		g.script.step(g)
	}
	g.processKeys()
	if cam := g.renderer.Camera(); cam != nil {
		cam.Update(dt)
	}
	g.stage.Advance(g.clock)
	if g.overlay != nil {
		g.overlay.update(dt, g)
	}
	if g.quit || g.stage.Closed() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.dev.SetTarget(screen)
	g.renderer.Render(g.stage)
	// Captures exclude the overlay.
	g.flushScreenshots(screen)
	if g.overlay != nil {
		g.overlay.draw(screen)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.opts.Width > 0 && g.opts.Height > 0 {
		return g.opts.Width, g.opts.Height
	}
	return outsideWidth, outsideHeight
}
