package marquee

import (
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
)

// PixelBuffer is decoded image data. BPP selects the format: 1 gray,
// 2 gray+alpha, 3 RGB, 4 RGBA. Rows are tightly packed.
type PixelBuffer struct {
	Width, Height int
	BPP           int
	Pix           []byte
}

func (p PixelBuffer) validate() error {
	if p.BPP < 1 || p.BPP > 4 {
		return fmt.Errorf("marquee: pixel buffer: bpp %d: %w", p.BPP, ErrUnsupportedBPP)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("marquee: pixel buffer: invalid size %dx%d", p.Width, p.Height)
	}
	if want := p.Width * p.Height * p.BPP; len(p.Pix) < want {
		return fmt.Errorf("marquee: pixel buffer: %d bytes, want %d", len(p.Pix), want)
	}
	return nil
}

// HasAlpha reports whether the format carries an alpha channel.
func (p PixelBuffer) HasAlpha() bool { return p.BPP == 2 || p.BPP == 4 }

// RGBA expands the buffer to non-premultiplied RGBA bytes.
func (p PixelBuffer) RGBA() []byte {
	n := p.Width * p.Height
	if p.BPP == 4 {
		return p.Pix[:n*4]
	}
	out := make([]byte, n*4)
	for i := range n {
		o := out[i*4 : i*4+4]
		switch p.BPP {
		case 1:
			g := p.Pix[i]
			o[0], o[1], o[2], o[3] = g, g, g, 0xff
		case 2:
			g := p.Pix[i*2]
			o[0], o[1], o[2], o[3] = g, g, g, p.Pix[i*2+1]
		case 3:
			s := p.Pix[i*3 : i*3+3]
			o[0], o[1], o[2], o[3] = s[0], s[1], s[2], 0xff
		}
	}
	return out
}

// PixelsFromImage converts an already decoded image to a PixelBuffer,
// choosing gray or RGBA by the image's color model.
func PixelsFromImage(img image.Image) PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch src := img.(type) {
	case *image.Gray:
		pix := make([]byte, w*h)
		for y := range h {
			copy(pix[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return PixelBuffer{Width: w, Height: h, BPP: 1, Pix: pix}
	case *image.NRGBA:
		pix := make([]byte, w*h*4)
		for y := range h {
			copy(pix[y*w*4:(y+1)*w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
		}
		return PixelBuffer{Width: w, Height: h, BPP: 4, Pix: pix}
	}
	pix := make([]byte, w*h*4)
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			o := pix[(y*w+x)*4:]
			o[0], o[1], o[2], o[3] = c.R, c.G, c.B, c.A
		}
	}
	return PixelBuffer{Width: w, Height: h, BPP: 4, Pix: pix}
}

// Texture is a scene-level texture handle. It is created on any goroutine
// through Stage.NewTexture; pixel uploads are applied on the render
// goroutine and pushed to the device before the next draw that uses it.
type Texture struct {
	size     atomic.Uint64 // width<<32 | height
	hasAlpha bool
	pending  *PixelBuffer
	gpu      DeviceTexture
	failed   bool
	released bool
}

func newTexture(w, h int) *Texture {
	t := &Texture{}
	t.setSize(w, h)
	return t
}

func (t *Texture) setSize(w, h int) {
	t.size.Store(uint64(uint32(w))<<32 | uint64(uint32(h)))
}

// Size returns the size of the most recently applied upload. Safe from any
// goroutine.
func (t *Texture) Size() (width, height int) {
	v := t.size.Load()
	return int(v >> 32), int(uint32(v))
}

// Ready reports whether the texture has GPU storage. Render goroutine only.
func (t *Texture) Ready() bool { return t.gpu != nil && !t.released }

// VideoFeed turns frames produced on a decoder goroutine into texture
// uploads. Frames submitted faster than the render loop drains are
// coalesced: only the newest pending frame is uploaded.
type VideoFeed struct {
	stage    *Stage
	tex      *Texture
	latest   atomic.Pointer[PixelBuffer]
	inflight atomic.Bool
	frames   atomic.Uint64
	skipped  atomic.Uint64
}

// NewVideoFeed creates a feed with an RGB texture of the given size.
func NewVideoFeed(s *Stage, width, height int) (*VideoFeed, error) {
	tex, err := s.NewTexture(PixelBuffer{
		Width: width, Height: height, BPP: 3,
		Pix: make([]byte, width*height*3),
	})
	if err != nil {
		return nil, err
	}
	return &VideoFeed{stage: s, tex: tex}, nil
}

// Texture returns the texture the feed uploads into.
func (f *VideoFeed) Texture() *Texture { return f.tex }

// Submit hands over one RGB frame. The feed keeps a reference to rgb until
// it is uploaded; callers must not reuse the slice.
func (f *VideoFeed) Submit(width, height int, rgb []byte) error {
	pix := PixelBuffer{Width: width, Height: height, BPP: 3, Pix: rgb}
	if err := pix.validate(); err != nil {
		return err
	}
	if f.latest.Swap(&pix) != nil {
		f.skipped.Add(1)
	}
	f.frames.Add(1)
	if f.inflight.CompareAndSwap(false, true) {
		f.stage.Inspect(f.flush)
	}
	return nil
}

// flush runs on the render goroutine and applies the newest frame.
func (f *VideoFeed) flush(*Stage) {
	f.inflight.Store(false)
	pix := f.latest.Swap(nil)
	if pix == nil || f.tex.released {
		return
	}
	f.tex.pending = pix
	f.tex.setSize(pix.Width, pix.Height)
}

// Stats returns the number of frames submitted and the number replaced
// before they could be uploaded.
func (f *VideoFeed) Stats() (frames, skipped uint64) {
	return f.frames.Load(), f.skipped.Load()
}
