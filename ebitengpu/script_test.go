package ebitengpu

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptGame() *Game {
	return &Game{bindings: make(map[ebiten.Key]func())}
}

func TestLoadScript(t *testing.T) {
	s, err := LoadScript([]byte(`{"steps": [
		{"action": "screenshot", "label": "initial"},
		{"action": "key", "key": "Space"},
		{"action": "wait", "frames": 3},
		{"action": "scroll", "x": 10, "y": 20, "duration": 0.5},
		{"action": "exit"}
	]}`))
	require.NoError(t, err)
	require.Len(t, s.steps, 5)
	assert.Equal(t, ebiten.KeySpace, s.steps[1].key)
	assert.Equal(t, 3, s.steps[2].Frames)
	assert.Equal(t, float32(20), s.steps[3].Y)
}

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"no steps", `{"steps": []}`},
		{"unknown action", `{"steps": [{"action": "click"}]}`},
		{"bad key", `{"steps": [{"action": "key", "key": "Hyper"}]}`},
		{"negative duration", `{"steps": [{"action": "scroll", "duration": -1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestScriptStepSequence(t *testing.T) {
	s, err := LoadScript([]byte(`{"steps": [
		{"action": "screenshot", "label": "a"},
		{"action": "wait", "frames": 2},
		{"action": "key", "key": "A"},
		{"action": "screenshot", "label": "b"},
		{"action": "exit"}
	]}`))
	require.NoError(t, err)
	g := scriptGame()
	pressed := 0
	g.BindKey(ebiten.KeyA, func() { pressed++ })

	frame := func() {
		s.step(g)
		if len(g.injected) > 0 {
			g.processKeys()
		}
	}

	frame() // screenshot a
	assert.Equal(t, []string{"a"}, g.shots)
	frame() // wait 2: this frame counts
	frame() // second wait frame
	assert.Zero(t, pressed)
	frame() // key A, consumed the same frame
	assert.Equal(t, 1, pressed)
	frame() // screenshot b
	assert.Equal(t, []string{"a", "b"}, g.shots)
	assert.False(t, g.quit)
	frame() // exit
	assert.True(t, g.quit)
	assert.True(t, s.Done())
}

func TestScriptWaitsForInjectedKeys(t *testing.T) {
	s, err := LoadScript([]byte(`{"steps": [{"action": "screenshot"}]}`))
	require.NoError(t, err)
	g := scriptGame()
	g.InjectKey(ebiten.KeyB)

	s.step(g)
	assert.Empty(t, g.shots)
	g.processKeys()
	s.step(g)
	assert.Equal(t, []string{""}, g.shots)
	assert.True(t, s.Done())
}

func TestInjectedKeysOnePerFrame(t *testing.T) {
	g := scriptGame()
	var got []ebiten.Key
	for _, k := range []ebiten.Key{ebiten.KeyA, ebiten.KeyB} {
		g.BindKey(k, func() { got = append(got, k) })
	}
	g.InjectKey(ebiten.KeyB)
	g.InjectKey(ebiten.KeyA)
	g.InjectKey(ebiten.KeyC) // unbound

	g.processKeys()
	assert.Equal(t, []ebiten.Key{ebiten.KeyB}, got)
	g.processKeys()
	g.processKeys()
	assert.Equal(t, []ebiten.Key{ebiten.KeyB, ebiten.KeyA}, got)
	assert.Empty(t, g.injected)

	g.BindKey(ebiten.KeyA, nil)
	g.InjectKey(ebiten.KeyA)
	g.processKeys()
	assert.Len(t, got, 2)
}
