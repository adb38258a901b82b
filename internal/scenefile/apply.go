package scenefile

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/phanxgames/marquee"
)

// Scene is the stage content created by one Apply.
type Scene struct {
	// Root is the Group holding the file's top-level nodes.
	Root       marquee.NodeID
	Nodes      map[string]marquee.NodeID
	Textures   map[string]*marquee.Texture
	Animations []*marquee.Animation
}

// Apply enqueues the records that build f under parent. Textures and fonts
// are loaded first; nothing is enqueued if one fails. The scene's root is
// attached last so it appears in a single drain.
func (f *File) Apply(s *marquee.Stage, parent marquee.NodeID) (*Scene, error) {
	sc := &Scene{
		Nodes:    make(map[string]marquee.NodeID),
		Textures: make(map[string]*marquee.Texture),
	}
	for name, spec := range f.Textures {
		tex, err := loadTexture(s, f.path(spec.Path))
		if err != nil {
			sc.releaseTextures(s)
			return nil, fmt.Errorf("scenefile: texture %q: %w", name, err)
		}
		sc.Textures[name] = tex
	}
	if err := f.registerFonts(s, sc); err != nil {
		sc.releaseTextures(s)
		return nil, err
	}

	sc.Root = s.NewGroup()
	for i := range f.Nodes {
		f.build(s, sc, sc.Root, &f.Nodes[i])
	}
	s.AddChild(parent, sc.Root)
	return sc, nil
}

func (f *File) build(s *marquee.Stage, sc *Scene, parent marquee.NodeID, n *NodeSpec) {
	id := s.NewNode(n.kind)
	if n.Name != "" {
		sc.Nodes[n.Name] = id
	}
	for _, p := range n.props {
		s.Set(id, p.id, p.value)
	}
	if n.Texture != "" {
		s.SetTexture(id, sc.Textures[n.Texture])
	}
	for _, a := range n.Animate {
		opts := marquee.AnimationOptions{
			To:          a.To,
			Duration:    time.Duration(float64(a.Duration) * float64(time.Second)),
			Repeat:      a.Repeat,
			Autoreverse: a.Autoreverse,
			Easing:      a.easing,
		}
		if a.From != nil {
			opts.From = *a.From
		} else {
			opts.FromCurrent = true
		}
		sc.Animations = append(sc.Animations, s.Animate(id, a.prop, opts))
	}
	for i := range n.Children {
		f.build(s, sc, id, &n.Children[i])
	}
	s.AddChild(parent, id)
}

func (f *File) registerFonts(s *marquee.Stage, sc *Scene) error {
	if len(f.Fonts) == 0 {
		return nil
	}
	cache := s.Fonts()
	if cache == nil {
		return fmt.Errorf("scenefile: stage has no font cache")
	}
	for name, spec := range f.Fonts {
		data, err := os.ReadFile(f.path(spec.Path))
		if err != nil {
			return fmt.Errorf("scenefile: font %q: %w", name, err)
		}
		var loader marquee.FontLoader
		if spec.Atlas != "" {
			atlas, err := loadTexture(s, f.path(spec.Atlas))
			if err != nil {
				return fmt.Errorf("scenefile: font %q atlas: %w", name, err)
			}
			sc.Textures["font:"+name] = atlas
			bm, err := marquee.ParseBitmapFont(data, atlas)
			if err != nil {
				return fmt.Errorf("scenefile: font %q: %w", name, err)
			}
			loader = marquee.BitmapFontLoader(bm)
		} else if loader, err = marquee.OpenTypeLoader(data); err != nil {
			return fmt.Errorf("scenefile: font %q: %w", name, err)
		}
		cache.Register(name, loader)
	}
	return nil
}

// Remove stops the scene's animations, destroys its subtree and releases
// its textures.
func (sc *Scene) Remove(s *marquee.Stage) {
	for _, a := range sc.Animations {
		s.StopAnimation(a)
	}
	s.Destroy(sc.Root)
	sc.releaseTextures(s)
}

func (sc *Scene) releaseTextures(s *marquee.Stage) {
	for name, tex := range sc.Textures {
		s.ReleaseTexture(tex)
		delete(sc.Textures, name)
	}
}

func (f *File) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.dir, p)
}

func loadTexture(s *marquee.Stage, path string) (*marquee.Texture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s.NewTexture(marquee.PixelsFromImage(img))
}
