package marquee

// update is one queued mutation. The variant set is closed; Stage.apply
// matches it with a single type switch.
type update interface {
	isUpdate()
}

type createNode struct {
	id   NodeID
	kind NodeKind
}

type destroyNode struct {
	id NodeID
}

type addChild struct {
	parent, child NodeID
	index         int // -1 appends
}

type removeChild struct {
	parent, child NodeID
}

type setProperty struct {
	id    NodeID
	prop  PropID
	value Value
}

type startAnimation struct {
	anim *Animation
}

type stopAnimation struct {
	anim *Animation
}

type uploadTexture struct {
	tex *Texture
	pix PixelBuffer
}

// invoke runs fn on the render goroutine at its position in the queue.
type invoke struct {
	fn func(s *Stage)
}

func (createNode) isUpdate()     {}
func (destroyNode) isUpdate()    {}
func (addChild) isUpdate()       {}
func (removeChild) isUpdate()    {}
func (setProperty) isUpdate()    {}
func (startAnimation) isUpdate() {}
func (stopAnimation) isUpdate()  {}
func (uploadTexture) isUpdate()  {}
func (invoke) isUpdate()         {}
