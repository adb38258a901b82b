package ebitengpu

import (
	"image"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
)

// imagePool manages reusable offscreen images keyed by power-of-two
// dimensions. After warmup, acquire/release are allocation free.
type imagePool struct {
	buckets map[uint64][]*ebiten.Image
	newImg  func(w, h int) *ebiten.Image
	live    int
}

func newImagePool() *imagePool {
	return &imagePool{
		buckets: make(map[uint64][]*ebiten.Image),
		newImg: func(w, h int) *ebiten.Image {
			return ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), &ebiten.NewImageOptions{Unmanaged: true})
		},
	}
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// poolSize returns the bucket dimensions used for a w x h request.
func poolSize(w, h int) (int, int) {
	return nextPowerOfTwo(w), nextPowerOfTwo(h)
}

// acquire returns a cleared image with at least w x h pixels. Images of
// the same request size share a bucket and therefore the same size, which
// multi-image shaders require.
func (p *imagePool) acquire(w, h int) *ebiten.Image {
	pw, ph := poolSize(w, h)
	key := poolKey(pw, ph)
	p.live++
	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		return img
	}
	return p.newImg(pw, ph)
}

// release returns an image to the pool. It is cleared on the next acquire.
func (p *imagePool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	p.live--
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// drain deallocates every pooled image, e.g. after a resize.
func (p *imagePool) drain() {
	for k, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, k)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
