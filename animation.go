package marquee

import (
	"sync/atomic"
	"time"

	"github.com/tanema/gween/ease"
)

// RepeatForever makes an animation loop until stopped.
const RepeatForever = -1

// AnimationState is the lifecycle position of an Animation.
type AnimationState int32

const (
	AnimCreated   AnimationState = iota // not yet queued
	AnimBound                           // queued with its stage
	AnimStarted                         // attached to its property, first tick pending
	AnimRunning                         // interpolating forward
	AnimReversing                       // interpolating backward (autoreverse)
	AnimEnded                           // snapped to its end value, callback fired
	AnimStopped                         // cancelled, value left as-is
)

// String returns the state name.
func (s AnimationState) String() string {
	switch s {
	case AnimCreated:
		return "created"
	case AnimBound:
		return "bound"
	case AnimStarted:
		return "started"
	case AnimRunning:
		return "running"
	case AnimReversing:
		return "reversing"
	case AnimEnded:
		return "ended"
	case AnimStopped:
		return "stopped"
	}
	return "unknown"
}

// AnimationOptions describes one property animation.
type AnimationOptions struct {
	From, To float32
	// FromCurrent replaces From with the property's value at the first tick.
	FromCurrent bool
	Duration    time.Duration
	// Repeat is the number of cycles; 0 means 1, RepeatForever loops.
	Repeat      int
	Autoreverse bool
	Easing      Easing
	// Ease overrides Easing with any gween curve.
	Ease ease.TweenFunc
	// OnComplete runs on the render goroutine when the animation ends. It
	// is not called when the animation is stopped.
	OnComplete func()
}

// Animation interpolates one float property over time. Its state is safe
// to read from any goroutine; everything else belongs to the render
// goroutine.
type Animation struct {
	stage *Stage
	node  NodeID
	prop  PropID
	opts  AnimationOptions
	state atomic.Int32

	target    *Property
	from, to  float32
	remaining int
	reversed  bool
	latched   bool
	startTime time.Duration
	lastTick  time.Duration
}

func newAnimation(s *Stage, id NodeID, prop PropID, opts AnimationOptions) *Animation {
	a := &Animation{stage: s, node: id, prop: prop, opts: opts}
	a.remaining = opts.Repeat
	if a.remaining == 0 || a.remaining < RepeatForever {
		a.remaining = 1
	}
	return a
}

// State returns the current lifecycle state.
func (a *Animation) State() AnimationState { return AnimationState(a.state.Load()) }

// Done reports whether the animation has ended or been stopped.
func (a *Animation) Done() bool {
	st := a.State()
	return st == AnimEnded || st == AnimStopped
}

// Node returns the animated node's handle.
func (a *Animation) Node() NodeID { return a.node }

// Prop returns the animated property id.
func (a *Animation) Prop() PropID { return a.prop }

// Stop cancels the animation on the next drain.
func (a *Animation) Stop() {
	a.stage.StopAnimation(a)
}

func (a *Animation) setState(st AnimationState) { a.state.Store(int32(st)) }

// bind attaches the animation to its property. Returns false when the
// property cannot be animated.
func (a *Animation) bind(p *Property) bool {
	if p == nil || p.id.Kind() != ValueFloat || !p.Alive() {
		return false
	}
	a.target = p
	a.from, a.to = a.opts.From, a.opts.To
	p.Retain()
	a.setState(AnimStarted)
	return true
}

// tick advances the animation to now. prevDelta is the last positive frame
// delta, used to smooth over a clock that steps backward. Returns true when
// the animation is finished and should be detached.
func (a *Animation) tick(now, prevDelta time.Duration) bool {
	if a.Done() {
		return true
	}
	if a.target == nil || a.remaining == 0 {
		return false
	}
	if !a.target.Alive() {
		a.finish(AnimStopped)
		return true
	}
	if !a.latched {
		a.latched = true
		a.startTime = now
		if a.opts.FromCurrent {
			a.from = a.target.Float()
		}
		a.setState(AnimRunning)
	}
	if now < a.startTime {
		a.startTime -= prevDelta
	}
	a.lastTick = now

	if a.opts.Duration <= 0 {
		a.write(1)
		a.finish(AnimEnded)
		return true
	}

	p := float32(now-a.startTime) / float32(a.opts.Duration)
	if p < 0 {
		p = 0
	}
	ended := false
	if p > 1 {
		if a.remaining == RepeatForever || a.remaining > 1 {
			if a.remaining > 1 {
				a.remaining--
			}
			a.startTime = now
			if a.opts.Autoreverse {
				a.reversed = !a.reversed
				if a.reversed {
					a.setState(AnimReversing)
				} else {
					a.setState(AnimRunning)
				}
			}
			p = 0
		} else {
			p = 1
			ended = true
		}
	}
	if a.reversed {
		p = 1 - p
	}
	a.write(p)
	if ended {
		a.finish(AnimEnded)
	}
	return ended
}

// write stores the eased value for directed progress p. The end points are
// written exactly.
func (a *Animation) write(p float32) {
	var v float32
	switch {
	case p <= 0:
		v = a.from
	case p >= 1:
		v = a.to
	default:
		var f float32
		if a.opts.Ease != nil {
			f = a.opts.Ease(p, 0, 1, 1)
		} else {
			f = a.opts.Easing.Apply(p)
		}
		v = a.from + (a.to-a.from)*f
	}
	a.target.setFloat(v)
}

// finish moves to a terminal state, releases the property and fires the
// completion callback for AnimEnded.
func (a *Animation) finish(st AnimationState) {
	if a.Done() {
		return
	}
	a.setState(st)
	a.remaining = 0
	if a.target != nil {
		a.target.Release()
		if a.stage != nil && a.stage.animOf[a.target] == a {
			delete(a.stage.animOf, a.target)
		}
	}
	if st == AnimEnded && a.opts.OnComplete != nil {
		a.opts.OnComplete()
	}
}

// --- stage integration ---

func (s *Stage) startAnimation(a *Animation) {
	if a.Done() {
		return
	}
	n, ok := s.nodes[a.node]
	if !ok {
		a.setState(AnimStopped)
		s.dropped("animate "+a.prop.String(), a.node, "node not found")
		return
	}
	p := n.Property(a.prop)
	if old, ok := s.animOf[p]; ok && p != nil {
		old.finish(AnimStopped)
	}
	if !a.bind(p) {
		a.setState(AnimStopped)
		s.dropped("animate "+a.prop.String(), a.node, "property not animatable")
		return
	}
	s.animOf[p] = a
	s.anims = append(s.anims, a)
}

func (s *Stage) stopAnimation(a *Animation) {
	if a.target == nil {
		a.setState(AnimStopped)
		return
	}
	a.finish(AnimStopped)
}

// tickAnimations advances every active animation and compacts the list.
func (s *Stage) tickAnimations(now time.Duration) {
	live := s.anims[:0]
	for _, a := range s.anims {
		if a.tick(now, s.lastDelta) {
			continue
		}
		live = append(live, a)
	}
	clear(s.anims[len(live):])
	s.anims = live
	s.stats.Animations = len(live)
}

// Animations returns the number of active animations. Render goroutine only.
func (s *Stage) Animations() int { return len(s.anims) }
