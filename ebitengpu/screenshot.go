package ebitengpu

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marquee"
)

// Screenshot queues a labeled capture of the next presented frame. The PNG
// is written to GameOptions.ScreenshotDir with a timestamped name. Safe to
// call from Update, Draw, key bindings and scripts.
func (g *Game) Screenshot(label string) {
	g.shots = append(g.shots, label)
}

// flushScreenshots captures screen once for every queued label.
func (g *Game) flushScreenshots(screen *ebiten.Image) {
	if len(g.shots) == 0 {
		return
	}
	defer func() { g.shots = g.shots[:0] }()

	dir := g.opts.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		marquee.Logger().Error("ebitengpu: screenshot", "dir", dir, "err", err)
		return
	}
	img := unpremultiply(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range g.shots {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			marquee.Logger().Error("ebitengpu: screenshot", "err", err)
			continue
		}
		g.written = append(g.written, path)
		marquee.Logger().Info("ebitengpu: screenshot written", "path", path)
	}
}

// Screenshots returns the paths written so far.
func (g *Game) Screenshots() []string { return g.written }

// unpremultiply reads img back and converts it to straight-alpha NRGBA.
func unpremultiply(img *ebiten.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.ReadPixels(out.Pix)
	unpremultiplyPixels(out.Pix)
	return out
}

func unpremultiplyPixels(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := int(pix[i+3])
		if a == 0 || a == 0xff {
			continue
		}
		pix[i] = uint8(min(int(pix[i])*0xff/a, 0xff))
		pix[i+1] = uint8(min(int(pix[i+1])*0xff/a, 0xff))
		pix[i+2] = uint8(min(int(pix[i+2])*0xff/a, 0xff))
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ebitengpu: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("ebitengpu: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
