// Command marquee opens a window and renders a scene: either the YAML file
// named by MARQUEE_SCENE (hot reloaded when MARQUEE_WATCH is set) or a
// built-in demo. Settings come from MARQUEE_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/marquee"
	"github.com/phanxgames/marquee/ebitengpu"
	"github.com/phanxgames/marquee/internal/config"
	"github.com/phanxgames/marquee/internal/scenefile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "marquee:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	marquee.SetLogger(logger)

	fonts, err := loadFonts(cfg)
	if err != nil {
		return err
	}
	stage := marquee.NewStage(marquee.StageOptions{Fonts: fonts, Debug: cfg.Debug})

	game, err := ebitengpu.NewGame(stage, ebitengpu.GameOptions{
		ScreenshotDir: cfg.Screenshot,
		Overlay:       cfg.Overlay,
		Camera:        true,
		FixedStep:     cfg.Script != "",
		Renderer: marquee.RendererOptions{
			Background: cfg.Background.Color(),
			Clear:      true,
		},
	})
	if err != nil {
		return err
	}
	bindKeys(game)
	if cfg.Script != "" {
		data, err := os.ReadFile(cfg.Script)
		if err != nil {
			return err
		}
		script, err := ebitengpu.LoadScript(data)
		if err != nil {
			return err
		}
		game.SetScript(script)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Scene != "" {
		loader := scenefile.NewLoader(stage, stage.Root(), cfg.Scene)
		if err := loader.Load(); err != nil {
			return err
		}
		if cfg.Watch {
			g.Go(func() error { return loader.Watch(ctx) })
		}
	} else {
		d := buildDemo(stage, cfg)
		g.Go(func() error { return d.runClock(ctx, stage) })
	}

	// Close the stage when a producer fails or a signal arrives so the
	// game loop ends.
	g.Go(func() error {
		<-ctx.Done()
		stage.Close()
		return nil
	})

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetVsyncEnabled(cfg.VSync)

	runErr := ebiten.RunGame(game)
	stop()
	stage.Close()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return runErr
	}
	for _, p := range game.Screenshots() {
		logger.Info("screenshot", "path", p)
	}
	return nil
}

// defaultFont is the name Text nodes use for the bundled Go Regular face.
const defaultFont = "default"

func loadFonts(cfg *config.Config) (*marquee.FontCache, error) {
	fonts := marquee.NewFontCache()
	data := goregular.TTF
	if cfg.Font != "" {
		b, err := os.ReadFile(cfg.Font)
		if err != nil {
			return nil, err
		}
		data = b
	}
	loader, err := marquee.OpenTypeLoader(data)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	fonts.Register(defaultFont, loader)
	return fonts, nil
}

func bindKeys(game *ebitengpu.Game) {
	game.BindKey(ebiten.KeyEscape, game.Quit)
	game.BindKey(ebiten.KeyF12, func() { game.Screenshot("manual") })
	pan := func(dx, dy float32) func() {
		return func() {
			cam := game.Renderer().Camera()
			cam.ScrollTo(cam.X+dx, cam.Y+dy, 0.25, nil)
		}
	}
	game.BindKey(ebiten.KeyLeft, pan(-100, 0))
	game.BindKey(ebiten.KeyRight, pan(100, 0))
	game.BindKey(ebiten.KeyUp, pan(0, -100))
	game.BindKey(ebiten.KeyDown, pan(0, 100))
	game.BindKey(ebiten.KeyEqual, func() { game.Renderer().Camera().Zoom *= 1.25 })
	game.BindKey(ebiten.KeyMinus, func() { game.Renderer().Camera().Zoom /= 1.25 })
	game.BindKey(ebiten.Key0, func() {
		cam := game.Renderer().Camera()
		*cam = *marquee.NewCamera()
	})
}

// demo holds the handles the clock producer updates.
type demo struct {
	spinner marquee.NodeID
	clock   marquee.NodeID
}

// buildDemo enqueues a scene exercising every node kind, clipping, the
// depth region and animations.
func buildDemo(s *marquee.Stage, cfg *config.Config) *demo {
	root := s.Root()
	size := cfg.FontSize

	title := s.NewText("marquee", defaultFont, size*1.5)
	s.SetPosition(title, 40, 24)
	s.AddChild(root, title)

	// A clipped panel whose content rotates past its edges.
	panel := s.NewGroup()
	s.SetPosition(panel, 40, 100)
	s.SetFloat(panel, marquee.PropWidth, 320)
	s.SetFloat(panel, marquee.PropHeight, 240)
	s.Set(panel, marquee.PropClipRect, marquee.Bool(true))
	s.AddChild(root, panel)

	// Centered on the panel, spinning about its own center.
	spinner := s.NewRect(300, 300)
	s.SetPosition(spinner, 10, -30)
	s.SetFloat(spinner, marquee.PropOriginX, 0.5)
	s.SetFloat(spinner, marquee.PropOriginY, 0.5)
	s.SetColor(spinner, marquee.Color{R: 0.2, G: 0.5, B: 0.9, A: 1})
	s.AddChild(panel, spinner)
	s.Animate(spinner, marquee.PropRotationZ, marquee.AnimationOptions{
		From: 0, To: 360, Duration: 6 * time.Second, Repeat: marquee.RepeatForever,
	})

	body := s.NewText("Text wraps at word boundaries inside its box and is clipped with the panel.", defaultFont, size)
	s.SetPosition(body, 16, 16)
	s.SetFloat(body, marquee.PropWidth, 288)
	s.SetFloat(body, marquee.PropWrap, float32(marquee.WrapWord))
	s.AddChild(panel, body)
	s.Animate(body, marquee.PropOpacity, marquee.AnimationOptions{
		From: 1, To: 0.3, Duration: 2 * time.Second, Repeat: marquee.RepeatForever,
		Autoreverse: true, Easing: marquee.EaseCubicInOut,
	})

	hexagon := s.NewPolygon(2, regularPolygon(6, 60)...)
	s.SetPosition(hexagon, 480, 220)
	s.SetColor(hexagon, marquee.Color{R: 1, G: 0.8, B: 0.2, A: 1})
	s.AddChild(root, hexagon)
	s.Animate(hexagon, marquee.PropScaleX, marquee.AnimationOptions{
		From: 1, To: 1.4, Duration: time.Second, Repeat: marquee.RepeatForever, Autoreverse: true,
	})

	// A lit box inside a depth-tested group.
	stage3d := s.NewGroup()
	s.SetPosition(stage3d, 720, 220)
	s.Set(stage3d, marquee.PropDepthTest, marquee.Bool(true))
	s.AddChild(root, stage3d)
	box := marquee.BoxGeometry(120, 120, 120)
	cube := s.NewModel(box.Positions, box.Normals, box.UVs, box.Indices)
	s.SetColor(cube, marquee.Color{R: 0.9, G: 0.3, B: 0.3, A: 1})
	s.SetFloat(cube, marquee.PropRotationX, 25)
	s.AddChild(stage3d, cube)
	s.Animate(cube, marquee.PropRotationY, marquee.AnimationOptions{
		From: 0, To: 360, Duration: 8 * time.Second, Repeat: marquee.RepeatForever,
	})

	clock := s.NewText("", defaultFont, size)
	s.SetPosition(clock, 40, 380)
	s.AddChild(root, clock)
	return &demo{spinner: spinner, clock: clock}
}

// runClock updates the clock text once a second from outside the render
// goroutine.
func (d *demo) runClock(ctx context.Context, s *marquee.Stage) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		s.Set(d.clock, marquee.PropText, marquee.String(time.Now().Format("15:04:05")))
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// regularPolygon returns a convex n-gon as a flat 2D vertex list centered
// on the origin.
func regularPolygon(n int, radius float32) []float32 {
	out := make([]float32, 0, n*2)
	for i := range n {
		sin, cos := math32.Sincos(float32(i)*2*math32.Pi/float32(n) - math32.Pi/2)
		out = append(out, radius*cos, radius*sin)
	}
	return out
}
