package ebitengpu

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// BindKey runs fn on the update goroutine whenever key is pressed. A nil
// fn removes the binding.
func (g *Game) BindKey(key ebiten.Key, fn func()) {
	if fn == nil {
		delete(g.bindings, key)
		return
	}
	g.bindings[key] = fn
}

// InjectKey queues a synthetic press of key. Queued presses are consumed
// one per frame, before real keyboard input.
func (g *Game) InjectKey(key ebiten.Key) {
	g.injected = append(g.injected, key)
}

// processKeys fires bindings for one injected press, or else for every
// key pressed this frame.
func (g *Game) processKeys() {
	if len(g.injected) > 0 {
		key := g.injected[0]
		copy(g.injected, g.injected[1:])
		g.injected = g.injected[:len(g.injected)-1]
		g.fire(key)
		return
	}
	g.pressed = inpututil.AppendJustPressedKeys(g.pressed[:0])
	for _, key := range g.pressed {
		g.fire(key)
	}
}

func (g *Game) fire(key ebiten.Key) {
	if fn, ok := g.bindings[key]; ok {
		fn()
	}
}
