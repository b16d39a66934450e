package vantage

import (
	"fmt"
	"strconv"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a step script.
type scriptStep struct {
	Action string `yaml:"action"`
	// Camera selects the camera by name or by index in draw order.
	// Empty means the main camera.
	Camera string `yaml:"camera,omitempty"`
	Label  string `yaml:"label,omitempty"`

	X     float64 `yaml:"x,omitempty"`
	Y     float64 `yaml:"y,omitempty"`
	FromX float64 `yaml:"fromX,omitempty"`
	FromY float64 `yaml:"fromY,omitempty"`
	ToX   float64 `yaml:"toX,omitempty"`
	ToY   float64 `yaml:"toY,omitempty"`

	Zoom     float64 `yaml:"zoom,omitempty"`
	Angle    float64 `yaml:"angle,omitempty"`
	Duration float32 `yaml:"duration,omitempty"`
	Ease     string  `yaml:"ease,omitempty"`

	// Intensity is the shake strength; Color is a hex overlay color for
	// flash and fade steps.
	Intensity float64 `yaml:"intensity,omitempty"`
	Color     string  `yaml:"color,omitempty"`

	Frames int `yaml:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `yaml:"steps"`
}

// ScriptRunner executes camera and pointer steps across frames for automated
// scenario checks. Attach it with Scene.SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a YAML (or JSON) step script.
//
//	steps:
//	  - action: scroll
//	    camera: minimap
//	    x: 400
//	  - action: click
//	    x: 120
//	    y: 80
//	  - action: wait
//	    frames: 10
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrEmptyScript)
	}
	for i, st := range sc.Steps {
		if !knownAction(st.Action) {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if _, err := ParseHexColor(st.Color); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

func knownAction(a string) bool {
	switch a {
	case "scroll", "center", "zoom", "rotate", "pan", "click", "drag", "wait", "screenshot",
		"shake", "flash", "fadeIn", "fadeOut":
		return true
	}
	return false
}

// Done reports whether every step has run and all injected input drained.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Injected input from a previous step must drain first.
	if len(s.injectQueue) > 0 {
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
	r.run(s, st)

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}

func (r *ScriptRunner) run(s *Scene, st scriptStep) {
	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
		return
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
		return
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
		return
	case "screenshot":
		s.Screenshot(st.Label)
		return
	}

	cam := s.scriptCamera(st.Camera)
	if cam == nil {
		s.log.Warn().Str("action", st.Action).Str("camera", st.Camera).Msg("script: no such camera")
		return
	}
	fn := easeFunc(st.Ease)
	switch st.Action {
	case "scroll":
		cam.SetScroll(st.X, st.Y)
	case "center":
		cam.CenterOn(st.X, st.Y)
	case "zoom":
		if st.Duration > 0 {
			cam.ZoomTo(st.Zoom, st.Zoom, st.Duration, fn)
		} else {
			cam.SetZoomUniform(st.Zoom)
		}
	case "rotate":
		if st.Duration > 0 {
			cam.RotateTo(st.Angle, st.Duration, fn)
		} else {
			cam.SetRotation(st.Angle)
		}
	case "pan":
		cam.PanTo(st.X, st.Y, max(st.Duration, 0), fn)
	case "shake":
		cam.Shake(st.Duration, st.Intensity)
	case "flash", "fadeIn", "fadeOut":
		// Validated by LoadScript. Flash defaults to white, fades to black.
		col, _ := ParseHexColor(st.Color)
		if st.Color == "" {
			col = Color{0, 0, 0, 1}
		}
		switch st.Action {
		case "flash":
			if st.Color == "" {
				col = ColorWhite
			}
			cam.Flash(st.Duration, col)
		case "fadeIn":
			cam.FadeIn(st.Duration, col)
		default:
			cam.FadeOut(st.Duration, col)
		}
	}
}

// scriptCamera resolves a camera by name, then by index.
func (s *Scene) scriptCamera(ref string) *Camera {
	if ref == "" {
		return s.MainCamera()
	}
	if cam, ok := s.CameraByName(ref); ok {
		return cam
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(s.views) {
		return s.views[i].cam
	}
	return nil
}

func easeFunc(name string) ease.TweenFunc {
	switch name {
	case "inQuad":
		return ease.InQuad
	case "outQuad":
		return ease.OutQuad
	case "inOutQuad":
		return ease.InOutQuad
	case "inOutCubic":
		return ease.InOutCubic
	case "outCubic":
		return ease.OutCubic
	case "inOutSine":
		return ease.InOutSine
	default:
		return ease.Linear
	}
}
