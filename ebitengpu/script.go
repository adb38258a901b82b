package ebitengpu

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	Key      string  `json:"key,omitempty"`
	X        float32 `json:"x,omitempty"`
	Y        float32 `json:"y,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`

	key ebiten.Key
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences key presses, camera moves and screenshots across
// frames for unattended captures. Attach to a Game via SetScript.
//
//	{"steps": [
//	  {"action": "wait", "frames": 30},
//	  {"action": "key", "key": "Space"},
//	  {"action": "scroll", "x": 200, "y": 0, "duration": 1},
//	  {"action": "screenshot", "label": "scrolled"},
//	  {"action": "exit"}
//	]}
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script.
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ebitengpu: parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, errors.New("ebitengpu: parse script: no steps")
	}
	for i := range f.Steps {
		st := &f.Steps[i]
		switch st.Action {
		case "screenshot", "wait", "exit":
		case "scroll":
			if st.Duration < 0 {
				return nil, fmt.Errorf("ebitengpu: parse script: step %d: negative duration", i)
			}
		case "key":
			if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
				return nil, fmt.Errorf("ebitengpu: parse script: step %d: key %q: %w", i, st.Key, err)
			}
		default:
			return nil, fmt.Errorf("ebitengpu: parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run.
func (r *Script) Done() bool { return r.done }

// step advances the script by one frame. Called from Game.Update.
func (r *Script) step(g *Game) {
	if r.done {
		return
	}
	// Injected keys are consumed one per frame; let them drain first.
	if len(g.injected) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "key":
		g.InjectKey(st.key)
	case "scroll":
		if cam := g.renderer.Camera(); cam != nil {
			cam.ScrollTo(st.X, st.Y, st.Duration, ease.InOutQuad)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "exit":
		g.quit = true
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(g.injected) == 0 {
		r.done = true
	}
}
