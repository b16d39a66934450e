package vantage

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

const defaultObjectCap = 1024

// cameraView holds one camera and the per-frame buffers culled for it.
// Nothing here is shared between cameras.
type cameraView struct {
	cam    *Camera
	culler Culler[*Object]

	candidates    []*Object
	hitCandidates []*HitTarget[*Object]

	render        []*Object
	renderOutcome CullOutcome
	hits          []*HitTarget[*Object]
	hitOutcome    CullOutcome

	culled      bool
	culledFrame uint64
}

// CameraFrame is what one camera hands to the renderer and the input
// dispatcher for the current frame. The slices are owned by the Scene and
// are valid until the next tick.
type CameraFrame struct {
	Camera          *Camera
	Transform       Transform2D
	Viewport        Rect
	Background      Color
	BackgroundImage *ebiten.Image
	RoundPixels     bool
	TileLayers      []*TileLayer

	// Fade and Flash are drawn over the viewport after everything else, in
	// that order, with their effect alpha folded into A.
	Fade  Color
	Flash Color

	Render        []*Object
	RenderOutcome CullOutcome
	Hits          []*HitTarget[*Object]
	HitOutcome    CullOutcome
}

// Scene owns the object list, the cameras, input state and the per-camera
// cull buffers. It drives the per-frame pipeline.
type Scene struct {
	// ClearColor fills the whole screen before cameras draw. Zero alpha skips it.
	ClearColor Color
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	objects      []*Object
	tileLayers   []*TileLayer
	views        []*cameraView
	nextCameraID CameraID

	frame uint64

	beforeUpdate func(dt float64)
	updateFunc   func(dt float64) error
	afterUpdate  func(dt float64)

	renderer Renderer
	store    EntityStore
	runner   *ScriptRunner

	log     zerolog.Logger
	debug   bool
	overlay bool

	// Input state
	handlers     handlerRegistry
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	injectQueue  []syntheticPointerEvent

	screenshotQueue []string
}

// NewScene creates an empty scene with no cameras.
func NewScene() *Scene {
	return &Scene{
		objects:       make([]*Object, 0, defaultObjectCap),
		dragDeadZone:  defaultDragDeadZone,
		renderer:      &ebitenRenderer{},
		log:           zerolog.Nop(),
		ScreenshotDir: "screenshots",
	}
}

// --- Objects ---

// Add appends objects to the display list. Order is draw order: later
// objects draw on top and are hit-tested first. Objects already in a scene
// are skipped.
func (s *Scene) Add(objects ...*Object) {
	for _, o := range objects {
		if o == nil || o.scene != nil {
			continue
		}
		o.scene = s
		s.objects = append(s.objects, o)
	}
}

// Remove takes an object out of the display list, preserving the order of
// the others.
func (s *Scene) Remove(o *Object) {
	if o == nil || o.scene != s {
		return
	}
	for i, cur := range s.objects {
		if cur == o {
			copy(s.objects[i:], s.objects[i+1:])
			s.objects[len(s.objects)-1] = nil
			s.objects = s.objects[:len(s.objects)-1]
			break
		}
	}
	o.scene = nil
	s.forgetObject(o)
	s.invalidate()
}

// Objects returns the display list. The returned slice MUST NOT be mutated.
func (s *Scene) Objects() []*Object {
	return s.objects
}

// --- Cameras ---

// NewCamera creates a camera with the given viewport and adds it on top of
// the existing cameras.
func (s *Scene) NewCamera(viewport Rect) (*Camera, error) {
	cam, err := newCamera(s.nextCameraID+1, viewport)
	if err != nil {
		return nil, fmt.Errorf("new camera: %w", err)
	}
	s.nextCameraID++
	s.views = append(s.views, &cameraView{cam: cam})
	return cam, nil
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) error {
	for i, v := range s.views {
		if v.cam == cam {
			v.culler.Reset()
			copy(s.views[i:], s.views[i+1:])
			s.views[len(s.views)-1] = nil
			s.views = s.views[:len(s.views)-1]
			s.forgetCamera(cam)
			return nil
		}
	}
	return fmt.Errorf("remove camera %d: %w", cam.ID(), ErrUnknownCamera)
}

// forgetCamera clears pointer state that references a removed camera.
func (s *Scene) forgetCamera(cam *Camera) {
	for i := range s.pointers {
		if s.pointers[i].pressCam == cam {
			s.pointers[i].pressCam = nil
		}
	}
}

// Cameras returns the cameras in draw order. The result is freshly allocated.
func (s *Scene) Cameras() []*Camera {
	out := make([]*Camera, len(s.views))
	for i, v := range s.views {
		out[i] = v.cam
	}
	return out
}

// Camera looks up a camera by ID.
func (s *Scene) Camera(id CameraID) (*Camera, bool) {
	for _, v := range s.views {
		if v.cam.id == id {
			return v.cam, true
		}
	}
	return nil, false
}

// CameraByName returns the first camera with the given name.
func (s *Scene) CameraByName(name string) (*Camera, bool) {
	for _, v := range s.views {
		if v.cam.Name == name {
			return v.cam, true
		}
	}
	return nil, false
}

// MainCamera returns the first camera, or nil if there are none.
func (s *Scene) MainCamera() *Camera {
	if len(s.views) == 0 {
		return nil
	}
	return s.views[0].cam
}

// CameraAt returns the topmost visible camera whose viewport contains the
// screen point, searching from the most recently added camera down.
func (s *Scene) CameraAt(sx, sy float64) (*Camera, bool) {
	for i := len(s.views) - 1; i >= 0; i-- {
		cam := s.views[i].cam
		if cam.Visible && cam.viewport.Contains(sx, sy) {
			return cam, true
		}
	}
	return nil, false
}

func (s *Scene) view(cam *Camera) *cameraView {
	for _, v := range s.views {
		if v.cam == cam {
			return v
		}
	}
	return nil
}

// --- Hooks ---

// SetBeforeUpdate sets a hook run at the start of every tick.
func (s *Scene) SetBeforeUpdate(fn func(dt float64)) { s.beforeUpdate = fn }

// SetUpdateFunc sets the game logic callback run every tick before cameras
// update. A returned error stops the tick and is returned from Tick/Update.
func (s *Scene) SetUpdateFunc(fn func(dt float64) error) { s.updateFunc = fn }

// SetAfterUpdate sets a hook run at the end of every tick, after culling and
// input dispatch.
func (s *Scene) SetAfterUpdate(fn func(dt float64)) { s.afterUpdate = fn }

// SetRenderer replaces the renderer used by Draw. Nil restores the default.
func (s *Scene) SetRenderer(r Renderer) {
	if r == nil {
		r = &ebitenRenderer{}
	}
	s.renderer = r
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetScriptRunner attaches a step script. The runner advances one step per
// tick before game logic runs.
func (s *Scene) SetScriptRunner(r *ScriptRunner) {
	s.runner = r
}

// Frame returns the number of ticks run so far.
func (s *Scene) Frame() uint64 { return s.frame }

// --- Frame pipeline ---

// Update advances the scene by one ebiten tick (dt = 1/TPS) and polls real
// mouse and touch input. Call it from ebiten.Game.Update.
func (s *Scene) Update() error {
	return s.tick(1.0/float64(ebiten.TPS()), true)
}

// Tick advances the scene by dt seconds without polling real input.
// Injected input is still processed.
func (s *Scene) Tick(dt float64) error {
	return s.tick(dt, false)
}

func (s *Scene) tick(dt float64, poll bool) error {
	s.frame++

	if s.runner != nil {
		s.runner.step(s)
	}
	if s.beforeUpdate != nil {
		s.beforeUpdate(dt)
	}
	if s.updateFunc != nil {
		if err := s.updateFunc(dt); err != nil {
			return fmt.Errorf("update frame %d: %w", s.frame, err)
		}
	}

	for _, o := range s.objects {
		if o.OnUpdate != nil {
			o.OnUpdate(dt)
		}
	}
	for _, v := range s.views {
		if v.cam.Visible {
			v.cam.update(float32(dt))
		}
	}

	s.cullAll()
	s.processInput(poll)

	if s.afterUpdate != nil {
		s.afterUpdate(dt)
	}
	if s.debug {
		s.debugLogFrame()
	}
	return nil
}

// cullAll runs one render cull and one hit-test cull per visible camera.
func (s *Scene) cullAll() {
	for _, v := range s.views {
		if v.cam.Visible {
			s.cullView(v)
		}
	}
}

// cullView filters the display list upstream (ignore set, visibility,
// interactivity) and then runs both cull entry points with the camera's own
// transform.
func (s *Scene) cullView(v *cameraView) {
	cam := v.cam
	cam.Transform()

	checkIgnore := cam.ignored.Size() > 0
	v.candidates = v.candidates[:0]
	v.hitCandidates = v.hitCandidates[:0]
	for _, o := range s.objects {
		if checkIgnore && cam.ignored.Has(o.ID) {
			continue
		}
		if o.Visible {
			v.candidates = append(v.candidates, o)
		}
		if o.Interactable {
			v.hitCandidates = append(v.hitCandidates, o.hitTarget())
		}
	}

	v.render, v.renderOutcome = v.culler.Cull(cam, v.candidates)
	v.hits, v.hitOutcome = v.culler.CullHitTest(cam, v.hitCandidates)
	v.culled = true
	v.culledFrame = s.frame
}

// ensureCulled culls any visible camera whose lists are stale, e.g. when
// Draw runs before the first tick or after a camera was added mid-frame.
func (s *Scene) ensureCulled() {
	for _, v := range s.views {
		if v.cam.Visible && (!v.culled || v.culledFrame != s.frame) {
			s.cullView(v)
		}
	}
}

// invalidate marks every camera's lists stale.
func (s *Scene) invalidate() {
	for _, v := range s.views {
		v.culled = false
	}
}

// CameraFrame returns the render and hit-test lists produced for cam this
// frame. It reports false for cameras that are hidden or not in the scene.
func (s *Scene) CameraFrame(cam *Camera) (CameraFrame, bool) {
	v := s.view(cam)
	if v == nil || !cam.Visible {
		return CameraFrame{}, false
	}
	if !v.culled || v.culledFrame != s.frame {
		s.cullView(v)
	}
	return s.frameOf(v), true
}

func (s *Scene) frameOf(v *cameraView) CameraFrame {
	cam := v.cam
	return CameraFrame{
		Camera:          cam,
		Transform:       cam.Transform(),
		Viewport:        cam.viewport,
		Background:      cam.BackgroundColor,
		BackgroundImage: cam.BackgroundImage,
		RoundPixels:     cam.RoundPixels,
		TileLayers:      s.tileLayers,
		Fade:            cam.FadeColor(),
		Flash:           cam.FlashColor(),
		Render:          v.render,
		RenderOutcome:   v.renderOutcome,
		Hits:            v.hits,
		HitOutcome:      v.hitOutcome,
	}
}

// Draw renders every visible camera into its viewport on screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.ensureCulled()
	for _, v := range s.views {
		if !v.cam.Visible {
			continue
		}
		s.renderer.RenderCamera(screen, s.frameOf(v))
	}
	if s.overlay {
		s.drawOverlay(screen)
	}
	s.flushScreenshots(screen)
}
