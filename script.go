package aspen

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// scriptStep is a single action in an interaction script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type interactionScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected input and screenshots across ticks for
// automated visual testing. Actions: "click" (x, y), "drag" (fromX, fromY,
// toX, toY, frames), "move" (x, y), "wait" (frames), "screenshot" (label).
// A screenshot captures the frame rendered on the previous tick; script a
// wait after the interaction that should appear in it.
type ScriptRunner struct {
	st     *State
	outDir string
	steps  []scriptStep
	cursor int
	wait   int
	done   bool
	err    error
	handle *CallbackHandle
}

// RunScript parses a JSON interaction script and attaches it to the mount.
// The runner advances one step per tick and detaches itself when the script
// completes. Screenshots save under outDir as <label>.png; they need a
// renderer that can read pixels back, which means the software renderer.
func RunScript(st *State, jsonData []byte, outDir string) (*ScriptRunner, error) {
	var script interactionScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	sr := &ScriptRunner{st: st, outDir: outDir, steps: script.Steps}
	sr.handle = st.Subscribe(func(*State, float64) { sr.step() }, 0)
	return sr, nil
}

// Done reports whether every step has executed.
func (sr *ScriptRunner) Done() bool { return sr.done }

// Err returns the first screenshot failure, if any. Script execution
// continues past failures.
func (sr *ScriptRunner) Err() error { return sr.err }

// Stop detaches the runner before the script completes.
func (sr *ScriptRunner) Stop() {
	sr.done = true
	sr.handle.Remove()
}

func (sr *ScriptRunner) step() {
	if sr.done {
		return
	}
	// Let queued injections drain before advancing.
	if sr.st.InjectPending() > 0 {
		return
	}
	if sr.wait > 0 {
		sr.wait--
		return
	}
	if sr.cursor >= len(sr.steps) {
		sr.finish()
		return
	}

	step := sr.steps[sr.cursor]
	sr.cursor++

	switch step.Action {
	case "screenshot":
		sr.screenshot(step.Label)
	case "click":
		sr.st.InjectClick(step.X, step.Y)
	case "move":
		sr.st.InjectMove(step.X, step.Y)
	case "drag":
		sr.st.InjectDrag(step.FromX, step.FromY, step.ToX, step.ToY, step.Frames)
	case "wait":
		if step.Frames > 0 {
			sr.wait = step.Frames - 1 // this tick counts as one
		}
	default:
		sr.st.root.lg.Warn("unknown script action", zap.String("action", step.Action))
	}

	if sr.cursor >= len(sr.steps) && sr.wait == 0 && sr.st.InjectPending() == 0 {
		sr.finish()
	}
}

func (sr *ScriptRunner) finish() {
	sr.done = true
	sr.handle.Remove()
}

func (sr *ScriptRunner) screenshot(label string) {
	if label == "" {
		label = fmt.Sprintf("screenshot-%03d", sr.cursor)
	}
	saver, ok := sr.st.Renderer().(interface{ SavePNG(path string) error })
	if !ok {
		sr.st.root.lg.Warn("screenshot skipped, renderer cannot read pixels back",
			zap.String("label", label))
		return
	}
	path := filepath.Join(sr.outDir, sanitizeLabel(label)+".png")
	if err := saver.SavePNG(path); err != nil {
		if sr.err == nil {
			sr.err = err
		}
		sr.st.root.lg.Warn("screenshot failed", zap.String("label", label), zap.Error(err))
	}
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
