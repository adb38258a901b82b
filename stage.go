package marquee

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Sentinel errors returned by Stage and resource loaders.
var (
	ErrStageClosed      = errors.New("marquee: stage closed")
	ErrNodeNotFound     = errors.New("marquee: node not found")
	ErrPropertyNotFound = errors.New("marquee: property not found")
	ErrUnsupportedBPP   = errors.New("marquee: unsupported bytes per pixel")
)

var stageSerial atomic.Uint32

// StageOptions configures a Stage. The zero value is usable.
type StageOptions struct {
	// Fonts resolves Text nodes' font/size pairs. A nil cache leaves Text
	// nodes undrawn.
	Fonts *FontCache
	// Debug enables per-frame stats logging and tree shape warnings.
	Debug bool
}

// StageStats counts the work done by the last Advance.
type StageStats struct {
	Applied    int
	Dropped    int
	Animations int
}

// Stage owns one scene tree and its update queue.
//
// Mutator methods (NewGroup, AddChild, Set, Animate, ...) are safe to call
// from any goroutine: they only enqueue update records and return
// immediately. Advance and the renderer run on a single render goroutine,
// which is the only place nodes and properties are read or written.
type Stage struct {
	serial   uint32
	nextNode atomic.Uint32
	queue    *updateQueue
	closed   atomic.Bool
	done     chan struct{}
	once     sync.Once
	root     NodeID

	// Render goroutine only.
	nodes     map[NodeID]Node
	anims     []*Animation
	animOf    map[*Property]*Animation
	now       time.Duration
	lastDelta time.Duration
	graveyard []Node
	released  []*Texture
	fonts     *FontCache
	debug     bool
	stats     StageStats
}

// NewStage creates a stage with an empty root Group.
func NewStage(opts StageOptions) *Stage {
	s := &Stage{
		serial: stageSerial.Add(1),
		queue:  newUpdateQueue(),
		done:   make(chan struct{}),
		nodes:  make(map[NodeID]Node),
		animOf: make(map[*Property]*Animation),
		fonts:  opts.Fonts,
		debug:  opts.Debug,
	}
	s.root = s.allocID()
	s.create(s.root, KindGroup)
	return s
}

// Root returns the handle of the root Group.
func (s *Stage) Root() NodeID { return s.root }

// Fonts returns the font cache given at construction.
func (s *Stage) Fonts() *FontCache { return s.fonts }

// SetDebugMode toggles stats logging. Render goroutine only.
func (s *Stage) SetDebugMode(on bool) { s.debug = on }

// Stats returns the counters of the last Advance. Render goroutine only.
func (s *Stage) Stats() StageStats { return s.stats }

// Now returns the clock value passed to the last Advance.
func (s *Stage) Now() time.Duration { return s.now }

// Pending returns the number of queued records not yet applied.
func (s *Stage) Pending() int { return s.queue.len() }

func (s *Stage) allocID() NodeID {
	return makeNodeID(s.serial, s.nextNode.Add(1))
}

func (s *Stage) checkHandle(id NodeID) {
	if id != NoNode && id.stageSerial() != s.serial {
		panic(fmt.Sprintf("marquee: node %v belongs to another stage", id))
	}
}

func (s *Stage) enqueue(u update) bool {
	return s.queue.enqueue(u)
}

// --- control API ---

// NewNode allocates a node of the given kind and returns its handle. The
// node exists once the record is applied; it is detached until added to a
// Group.
func (s *Stage) NewNode(kind NodeKind) NodeID {
	if kind < KindGroup || kind > KindModel {
		panic(fmt.Sprintf("marquee: unknown node kind %d", kind))
	}
	id := s.allocID()
	s.enqueue(createNode{id: id, kind: kind})
	return id
}

// NewGroup allocates a Group node.
func (s *Stage) NewGroup() NodeID { return s.NewNode(KindGroup) }

// NewRect allocates a Rect node of the given size.
func (s *Stage) NewRect(width, height float32) NodeID {
	id := s.NewNode(KindRect)
	s.SetFloat(id, PropWidth, width)
	s.SetFloat(id, PropHeight, height)
	return id
}

// NewPolygon allocates a filled Polygon with the given flat vertex list.
func (s *Stage) NewPolygon(dimension int, vertices ...float32) NodeID {
	id := s.NewNode(KindPolygon)
	s.SetFloat(id, PropDimension, float32(dimension))
	s.Set(id, PropVertices, Floats(vertices...))
	return id
}

// NewText allocates a Text node with the given content and font.
func (s *Stage) NewText(text, font string, size float32) NodeID {
	id := s.NewNode(KindText)
	s.Set(id, PropFont, String(font))
	s.SetFloat(id, PropFontSize, size)
	s.Set(id, PropText, String(text))
	return id
}

// NewModel allocates a Model node from position, normal, UV and index
// arrays. normals, uvs and indices may be nil.
func (s *Stage) NewModel(positions, normals, uvs []float32, indices []uint16) NodeID {
	id := s.NewNode(KindModel)
	s.Set(id, PropVertices, Floats(positions...))
	if len(normals) > 0 {
		s.Set(id, PropNormals, Floats(normals...))
	}
	if len(uvs) > 0 {
		s.Set(id, PropUVs, Floats(uvs...))
	}
	if len(indices) > 0 {
		s.Set(id, PropIndices, Object(append([]uint16(nil), indices...)))
	}
	return id
}

// AddChild appends child to parent's children. A child that already has a
// parent is moved.
func (s *Stage) AddChild(parent, child NodeID) {
	s.InsertChild(parent, child, -1)
}

// InsertChild places child at index among parent's children (-1 appends).
func (s *Stage) InsertChild(parent, child NodeID, index int) {
	s.checkHandle(parent)
	s.checkHandle(child)
	s.enqueue(addChild{parent: parent, child: child, index: index})
}

// RemoveChild detaches child from parent without destroying it.
func (s *Stage) RemoveChild(parent, child NodeID) {
	s.checkHandle(parent)
	s.checkHandle(child)
	s.enqueue(removeChild{parent: parent, child: child})
}

// Destroy removes a node and its subtree. Records already queued against
// them are discarded when applied.
func (s *Stage) Destroy(id NodeID) {
	s.checkHandle(id)
	s.enqueue(destroyNode{id: id})
}

// Set writes a property value. Kind mismatches and properties the node does
// not carry are dropped at apply time.
func (s *Stage) Set(id NodeID, prop PropID, v Value) {
	s.checkHandle(id)
	s.enqueue(setProperty{id: id, prop: prop, value: v})
}

// SetFloat is Set with a float value.
func (s *Stage) SetFloat(id NodeID, prop PropID, f float32) {
	s.Set(id, prop, Float(f))
}

// SetPosition sets x and y.
func (s *Stage) SetPosition(id NodeID, x, y float32) {
	s.SetFloat(id, PropX, x)
	s.SetFloat(id, PropY, y)
}

// SetColor sets the fill color of a Rect, Polygon, Text or Model.
func (s *Stage) SetColor(id NodeID, c Color) {
	s.Set(id, PropColor, Floats(c.Slice()...))
}

// SetTexture binds a texture to a Rect or Model.
func (s *Stage) SetTexture(id NodeID, tex *Texture) {
	s.Set(id, PropTexture, Object(tex))
}

// SetSubRect sets a Rect's normalized texture sub-rectangle.
func (s *Stage) SetSubRect(id NodeID, r Bounds) {
	s.SetFloat(id, PropTexLeft, r.X)
	s.SetFloat(id, PropTexRight, r.X+r.Width)
	s.SetFloat(id, PropTexTop, r.Y)
	s.SetFloat(id, PropTexBottom, r.Y+r.Height)
}

// Animate starts an animation of a float property. Any animation already
// running on the same property is stopped when this one is applied.
func (s *Stage) Animate(id NodeID, prop PropID, opts AnimationOptions) *Animation {
	s.checkHandle(id)
	a := newAnimation(s, id, prop, opts)
	// Bound must be visible before the render goroutine can see the record.
	a.setState(AnimBound)
	if !s.enqueue(startAnimation{anim: a}) {
		a.setState(AnimStopped)
	}
	return a
}

// StopAnimation cancels a, leaving the property at its last value.
func (s *Stage) StopAnimation(a *Animation) {
	s.enqueue(stopAnimation{anim: a})
}

// NewTexture creates a texture and queues its first upload. It becomes
// drawable on the frame after the upload is applied.
func (s *Stage) NewTexture(pix PixelBuffer) (*Texture, error) {
	if err := pix.validate(); err != nil {
		return nil, err
	}
	tex := newTexture(pix.Width, pix.Height)
	s.enqueue(uploadTexture{tex: tex, pix: pix})
	return tex, nil
}

// UploadTexture queues new pixels for tex. The size may change.
func (s *Stage) UploadTexture(tex *Texture, pix PixelBuffer) error {
	if err := pix.validate(); err != nil {
		return err
	}
	s.enqueue(uploadTexture{tex: tex, pix: pix})
	return nil
}

// ReleaseTexture frees tex's GPU storage after the current frame.
func (s *Stage) ReleaseTexture(tex *Texture) {
	s.Inspect(func(s *Stage) {
		tex.released = true
		tex.pending = nil
		s.released = append(s.released, tex)
	})
}

// Inspect runs fn on the render goroutine at its position in the queue,
// between drains of traversal. fn may read any node. Returns false if the
// stage is closed.
func (s *Stage) Inspect(fn func(s *Stage)) bool {
	return s.enqueue(invoke{fn: fn})
}

// ReadProperty blocks until the render goroutine reports the current value
// of a property, ctx is done, or the stage closes.
func (s *Stage) ReadProperty(ctx context.Context, id NodeID, prop PropID) (Value, error) {
	s.checkHandle(id)
	type result struct {
		v   Value
		err error
	}
	ch := make(chan result, 1)
	ok := s.Inspect(func(s *Stage) {
		n, ok := s.nodes[id]
		if !ok {
			ch <- result{err: fmt.Errorf("read %v.%v: %w", id, prop, ErrNodeNotFound)}
			return
		}
		p := n.Property(prop)
		if p == nil {
			ch <- result{err: fmt.Errorf("read %v.%v: %w", id, prop, ErrPropertyNotFound)}
			return
		}
		ch <- result{v: p.Value()}
	})
	if !ok {
		return Value{}, ErrStageClosed
	}
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return Value{}, ctx.Err()
	case <-s.done:
		return Value{}, ErrStageClosed
	}
}

// Close stops accepting records and wakes blocked readers.
func (s *Stage) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.queue.close()
		close(s.done)
	})
}

// Closed reports whether Close has been called.
func (s *Stage) Closed() bool { return s.closed.Load() }

// --- render goroutine ---

// Advance runs one frame of scene work on the render goroutine: it drains
// the update queue in FIFO order and ticks every active animation with the
// monotonic clock value now.
func (s *Stage) Advance(now time.Duration) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	if d := now - s.now; d > 0 {
		s.lastDelta = d
	}
	s.now = now
	s.stats = StageStats{}

	batch := s.queue.swap()
	for _, u := range batch {
		s.apply(u)
	}
	s.stats.Applied = len(batch)
	s.queue.recycle(batch)

	s.tickAnimations(now)

	if s.debug {
		s.debugLogAdvance(time.Since(t0))
	}
}

func (s *Stage) apply(u update) {
	switch u := u.(type) {
	case createNode:
		s.create(u.id, u.kind)
	case destroyNode:
		s.destroy(u.id)
	case addChild:
		s.attach(u.parent, u.child, u.index)
	case removeChild:
		s.detach(u.parent, u.child)
	case setProperty:
		s.setProperty(u.id, u.prop, u.value)
	case startAnimation:
		s.startAnimation(u.anim)
	case stopAnimation:
		s.stopAnimation(u.anim)
	case uploadTexture:
		if !u.tex.released {
			pix := u.pix
			u.tex.pending = &pix
			u.tex.setSize(pix.Width, pix.Height)
		}
	case invoke:
		u.fn(s)
	default:
		panic(fmt.Sprintf("marquee: unknown update record %T", u))
	}
}

func (s *Stage) setProperty(id NodeID, prop PropID, v Value) {
	n, ok := s.nodes[id]
	if !ok {
		s.dropped("set "+prop.String(), id, "node not found")
		return
	}
	p := n.Property(prop)
	if p == nil {
		s.dropped("set "+prop.String(), id, "property not legal for "+n.Kind().String())
		return
	}
	if !p.set(v) {
		s.dropped("set "+prop.String(), id, "value kind "+v.Kind().String())
	}
}

// takeReleased returns textures released since the last call.
func (s *Stage) takeReleased() []*Texture {
	r := s.released
	s.released = nil
	return r
}
