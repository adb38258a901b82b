package marquee

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
)

func TestPixelBufferValidate(t *testing.T) {
	tests := []struct {
		name    string
		pix     PixelBuffer
		wantErr bool
	}{
		{"gray", PixelBuffer{Width: 2, Height: 2, BPP: 1, Pix: make([]byte, 4)}, false},
		{"rgba", PixelBuffer{Width: 2, Height: 1, BPP: 4, Pix: make([]byte, 8)}, false},
		{"bpp 0", PixelBuffer{Width: 1, Height: 1, BPP: 0, Pix: make([]byte, 1)}, true},
		{"bpp 5", PixelBuffer{Width: 1, Height: 1, BPP: 5, Pix: make([]byte, 5)}, true},
		{"zero size", PixelBuffer{Width: 0, Height: 1, BPP: 1}, true},
		{"short", PixelBuffer{Width: 2, Height: 2, BPP: 3, Pix: make([]byte, 11)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pix.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	err := PixelBuffer{Width: 1, Height: 1, BPP: 7, Pix: make([]byte, 7)}.validate()
	if !errors.Is(err, ErrUnsupportedBPP) {
		t.Errorf("err = %v, want ErrUnsupportedBPP", err)
	}
}

func TestPixelBufferRGBA(t *testing.T) {
	tests := []struct {
		name string
		pix  PixelBuffer
		want []byte
	}{
		{"gray", PixelBuffer{Width: 1, Height: 1, BPP: 1, Pix: []byte{7}}, []byte{7, 7, 7, 255}},
		{"gray alpha", PixelBuffer{Width: 1, Height: 1, BPP: 2, Pix: []byte{7, 9}}, []byte{7, 7, 7, 9}},
		{"rgb", PixelBuffer{Width: 1, Height: 1, BPP: 3, Pix: []byte{1, 2, 3}}, []byte{1, 2, 3, 255}},
		{"rgba", PixelBuffer{Width: 1, Height: 1, BPP: 4, Pix: []byte{1, 2, 3, 4}}, []byte{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pix.RGBA()
			if string(got) != string(tt.want) {
				t.Errorf("RGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPixelsFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(2, 1, color.Gray{Y: 200})
	pb := PixelsFromImage(gray)
	if pb.BPP != 1 || pb.Width != 3 || pb.Pix[5] != 200 {
		t.Errorf("gray = %dx%d bpp %d", pb.Width, pb.Height, pb.BPP)
	}

	// A sub-image has a stride wider than its width.
	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	nrgba.SetNRGBA(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	sub := nrgba.SubImage(image.Rect(1, 1, 3, 3))
	pb = PixelsFromImage(sub)
	if pb.BPP != 4 || pb.Width != 2 || pb.Height != 2 {
		t.Fatalf("sub = %dx%d bpp %d", pb.Width, pb.Height, pb.BPP)
	}
	if got := pb.Pix[12:16]; got[0] != 10 || got[3] != 40 {
		t.Errorf("sub pixel (1,1) = %v", got)
	}

	pal := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.NRGBA{R: 255, A: 255}})
	pb = PixelsFromImage(pal)
	if pb.BPP != 4 || pb.Pix[0] != 255 || pb.Pix[3] != 255 {
		t.Errorf("paletted = %v", pb.Pix)
	}
}

func TestStageNewTextureRejectsInvalid(t *testing.T) {
	s := newTestStage(t)
	if _, err := s.NewTexture(PixelBuffer{Width: 1, Height: 1, BPP: 9}); err == nil {
		t.Error("NewTexture accepted bpp 9")
	}
	tex, err := s.NewTexture(PixelBuffer{Width: 1, Height: 1, BPP: 1, Pix: []byte{0}})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UploadTexture(tex, PixelBuffer{Width: 2, Height: 2, BPP: 2}); err == nil {
		t.Error("UploadTexture accepted a short buffer")
	}
}

func TestTextureSizeFollowsUpload(t *testing.T) {
	s := newTestStage(t)
	tex, _ := s.NewTexture(PixelBuffer{Width: 1, Height: 1, BPP: 1, Pix: []byte{0}})
	s.UploadTexture(tex, PixelBuffer{Width: 3, Height: 2, BPP: 1, Pix: make([]byte, 6)})
	s.Advance(0)
	if w, h := tex.Size(); w != 3 || h != 2 {
		t.Errorf("Size = %dx%d, want 3x2", w, h)
	}
	if tex.pending == nil || tex.pending.Width != 3 {
		t.Error("latest upload not pending")
	}
	if tex.Ready() {
		t.Error("texture ready before the renderer created it")
	}
}

func TestTextureSizeConcurrentReaders(t *testing.T) {
	s := newTestStage(t)
	tex, _ := s.NewTexture(PixelBuffer{Width: 1, Height: 1, BPP: 1, Pix: []byte{0}})

	stop := make(chan struct{})
	torn := make(chan [2]int, 1)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if w, h := tex.Size(); w != h {
					select {
					case torn <- [2]int{w, h}:
					default:
					}
					return
				}
			}
		}()
	}
	for i := range 500 {
		n := 1 + i%3
		s.UploadTexture(tex, PixelBuffer{Width: n, Height: n, BPP: 1, Pix: make([]byte, n*n)})
		s.Advance(0)
	}
	close(stop)
	wg.Wait()
	select {
	case wh := <-torn:
		t.Errorf("Size = %dx%d, a mix of two uploads", wh[0], wh[1])
	default:
	}
}

func TestVideoFeedCoalescesFrames(t *testing.T) {
	s := newTestStage(t)
	feed, err := NewVideoFeed(s, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	s.Advance(0)

	for i := range 5 {
		frame := make([]byte, 12)
		frame[0] = byte(i)
		if err := feed.Submit(2, 2, frame); err != nil {
			t.Fatal(err)
		}
	}
	frames, skipped := feed.Stats()
	if frames != 5 || skipped != 4 {
		t.Errorf("Stats = %d frames %d skipped, want 5 and 4", frames, skipped)
	}
	if p := s.Pending(); p != 1 {
		t.Errorf("pending records = %d, want 1 flush", p)
	}

	s.Advance(0)
	tex := feed.Texture()
	if tex.pending == nil || tex.pending.Pix[0] != 4 {
		t.Error("newest frame not applied")
	}

	feed.Submit(2, 2, make([]byte, 12))
	if s.Pending() != 1 {
		t.Error("feed did not schedule a new flush after the previous one ran")
	}
}

func TestVideoFeedRejectsShortFrame(t *testing.T) {
	s := newTestStage(t)
	feed, _ := NewVideoFeed(s, 2, 2)
	if err := feed.Submit(2, 2, make([]byte, 3)); err == nil {
		t.Error("Submit accepted a short frame")
	}
}

func TestVideoFeedConcurrentSubmit(t *testing.T) {
	s := newTestStage(t)
	feed, _ := NewVideoFeed(s, 1, 1)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				feed.Submit(1, 1, make([]byte, 3))
			}
		}()
	}
	wg.Wait()
	s.Advance(0)
	frames, skipped := feed.Stats()
	if frames != 200 {
		t.Errorf("frames = %d, want 200", frames)
	}
	if skipped >= frames {
		t.Errorf("skipped = %d, every frame dropped", skipped)
	}
	if feed.Texture().pending == nil {
		t.Error("no frame applied")
	}
}
