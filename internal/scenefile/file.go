// Package scenefile loads YAML scene descriptions and turns them into
// Stage update records.
//
//	textures:
//	  logo: {path: logo.png}
//	fonts:
//	  body: {path: fonts/Inter.ttf}
//	nodes:
//	  - kind: group
//	    name: panel
//	    props: {x: 40, y: 40, clipRect: true, width: 300, height: 200}
//	    children:
//	      - kind: rect
//	        texture: logo
//	        props: {width: 300, height: 200, color: "#ffffffc0"}
//	        animate:
//	          - {prop: rotationZ, from: 0, to: 360, duration: 4, repeat: -1}
//	      - kind: text
//	        props: {text: "hello", font: body, fontSize: 24, wrap: word}
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/marquee"
)

// File is a parsed scene description.
type File struct {
	Textures map[string]TextureSpec `yaml:"textures"`
	Fonts    map[string]FontSpec    `yaml:"fonts"`
	Nodes    []NodeSpec             `yaml:"nodes"`

	// dir resolves relative asset paths.
	dir string
}

// TextureSpec names an image file.
type TextureSpec struct {
	Path string `yaml:"path"`
}

// FontSpec names an OpenType/TrueType file, or a BMFont .fnt file with its
// atlas image.
type FontSpec struct {
	Path  string `yaml:"path"`
	Atlas string `yaml:"atlas"`
}

// NodeSpec describes one node and its subtree.
type NodeSpec struct {
	Kind     string               `yaml:"kind"`
	Name     string               `yaml:"name"`
	Texture  string               `yaml:"texture"`
	Props    map[string]yaml.Node `yaml:"props"`
	Animate  []AnimSpec           `yaml:"animate"`
	Children []NodeSpec           `yaml:"children"`

	kind  marquee.NodeKind
	props []propValue
}

// AnimSpec describes one property animation. Duration is in seconds;
// omitting From starts from the property's current value.
type AnimSpec struct {
	Prop        string   `yaml:"prop"`
	From        *float32 `yaml:"from"`
	To          float32  `yaml:"to"`
	Duration    float32  `yaml:"duration"`
	Repeat      int      `yaml:"repeat"`
	Autoreverse bool     `yaml:"autoreverse"`
	Easing      string   `yaml:"easing"`

	prop   marquee.PropID
	easing marquee.Easing
}

type propValue struct {
	id    marquee.PropID
	value marquee.Value
}

// Load reads and validates the scene at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes and validates a scene. Relative asset paths resolve
// against the working directory.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(f.Nodes) == 0 {
		return nil, errors.New("no nodes")
	}
	for name, t := range f.Textures {
		if t.Path == "" {
			return nil, fmt.Errorf("texture %q: missing path", name)
		}
	}
	for name, ft := range f.Fonts {
		if ft.Path == "" {
			return nil, fmt.Errorf("font %q: missing path", name)
		}
		if filepath.Ext(ft.Path) == ".fnt" && ft.Atlas == "" {
			return nil, fmt.Errorf("font %q: bitmap font needs an atlas", name)
		}
	}
	for i := range f.Nodes {
		if err := f.validate(&f.Nodes[i], fmt.Sprintf("nodes[%d]", i)); err != nil {
			return nil, err
		}
	}
	f.dir = "."
	return &f, nil
}

func (f *File) validate(n *NodeSpec, where string) error {
	kind, ok := marquee.ParseNodeKind(n.Kind)
	if !ok {
		return fmt.Errorf("%s: unknown kind %q", where, n.Kind)
	}
	n.kind = kind
	if n.Texture != "" {
		if kind != marquee.KindRect && kind != marquee.KindModel {
			return fmt.Errorf("%s: %v cannot carry a texture", where, kind)
		}
		if _, ok := f.Textures[n.Texture]; !ok {
			return fmt.Errorf("%s: unknown texture %q", where, n.Texture)
		}
	}
	n.props = n.props[:0]
	for name, node := range n.Props {
		id, ok := marquee.ParsePropID(name)
		if !ok {
			return fmt.Errorf("%s: unknown property %q", where, name)
		}
		v, err := decodeValue(id, &node)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", where, name, err)
		}
		n.props = append(n.props, propValue{id: id, value: v})
	}
	sortProps(n.props)
	for i := range n.Animate {
		a := &n.Animate[i]
		id, ok := marquee.ParsePropID(a.Prop)
		if !ok || id.Kind() != marquee.ValueFloat {
			return fmt.Errorf("%s.animate[%d]: %q is not a float property", where, i, a.Prop)
		}
		a.prop = id
		if a.Duration < 0 {
			return fmt.Errorf("%s.animate[%d]: negative duration", where, i)
		}
		if a.Repeat < marquee.RepeatForever {
			return fmt.Errorf("%s.animate[%d]: invalid repeat %d", where, i, a.Repeat)
		}
		a.easing = marquee.EaseLinear
		if a.Easing != "" {
			if a.easing, ok = marquee.ParseEasing(a.Easing); !ok {
				return fmt.Errorf("%s.animate[%d]: unknown easing %q", where, i, a.Easing)
			}
		}
	}
	for i := range n.Children {
		if err := f.validate(&n.Children[i], fmt.Sprintf("%s.children[%d]", where, i)); err != nil {
			return err
		}
	}
	return nil
}
