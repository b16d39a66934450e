package vantage

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/zyedidia/generic/mapset"
)

// CameraID identifies a camera within its Scene. IDs are never reused.
type CameraID uint32

// pairTween animates two values together (scroll midpoint, zoom axes).
type pairTween struct {
	a, b         *gween.Tween
	doneA, doneB bool
}

func newPairTween(fromA, toA, fromB, toB float64, duration float32, easeFn ease.TweenFunc) *pairTween {
	return &pairTween{
		a: gween.New(float32(fromA), float32(toA), duration, easeFn),
		b: gween.New(float32(fromB), float32(toB), duration, easeFn),
	}
}

// step advances both tweens and writes the current values. Returns true once
// both have finished.
func (t *pairTween) step(dt float32, a, b *float64) bool {
	if !t.doneA {
		val, done := t.a.Update(dt)
		*a = float64(val)
		t.doneA = done
	}
	if !t.doneB {
		val, done := t.b.Update(dt)
		*b = float64(val)
		t.doneB = done
	}
	return t.doneA && t.doneB
}

// Camera is a rectangular viewport onto the world with its own scroll, zoom
// and rotation. Each camera owns its transform and ignore set; cameras never
// share mutable state.
type Camera struct {
	// Name is an optional user-facing label.
	Name string

	// DisableCull makes the culler return candidate lists unchanged.
	DisableCull bool

	// BackgroundColor fills the viewport before objects are drawn.
	// A zero alpha leaves the viewport untouched.
	BackgroundColor Color
	// BackgroundImage, when set, is stretched over the viewport after the
	// background color. Not interpreted otherwise.
	BackgroundImage *ebiten.Image

	// RoundPixels snaps the camera origin and submitted object translations
	// to whole pixels. It does not affect culling.
	RoundPixels bool

	// Visible cameras are culled, drawn and hit-tested by their Scene.
	Visible bool

	id       CameraID
	viewport Rect
	scrollX  float64
	scrollY  float64
	zoomX    float64
	zoomY    float64
	rotation float64

	// Rotation and zoom pivot as a fraction of the viewport size.
	originX float64
	originY float64

	useBounds bool
	bounds    Rect

	ignored mapset.Set[ObjectID]

	matrix     Transform2D
	inverse    Transform2D
	invertible bool
	dirty      bool
	builtRound bool

	followTarget  Positioner
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	useDeadzone bool
	deadzoneW   float64
	deadzoneH   float64

	shake shakeEffect
	flash screenEffect
	fade  screenEffect

	panTween  *pairTween
	zoomTween *pairTween
	rotTween  *gween.Tween
}

// newCamera creates a camera with default values and the given viewport.
func newCamera(id CameraID, viewport Rect) (*Camera, error) {
	if err := validateSize("viewport", viewport.Width, viewport.Height); err != nil {
		return nil, err
	}
	return &Camera{
		id:       id,
		viewport: viewport,
		zoomX:    1,
		zoomY:    1,
		originX:  0.5,
		originY:  0.5,
		Visible:  true,
		ignored:  mapset.New[ObjectID](),
		dirty:    true,
	}, nil
}

func validateSize(what string, w, h float64) error {
	if !(w > 0) || !(h > 0) {
		return fmt.Errorf("%s %vx%v: %w", what, w, h, ErrInvalidDimension)
	}
	return nil
}

// ID returns the camera's scene-unique identifier.
func (c *Camera) ID() CameraID { return c.id }

// Viewport returns the screen-space rectangle the camera renders into.
func (c *Camera) Viewport() Rect { return c.viewport }

// Scroll returns the world-space scroll offset.
func (c *Camera) Scroll() (x, y float64) { return c.scrollX, c.scrollY }

// Zoom returns the per-axis zoom.
func (c *Camera) Zoom() (x, y float64) { return c.zoomX, c.zoomY }

// Rotation returns the camera rotation in radians.
func (c *Camera) Rotation() float64 { return c.rotation }

// Origin returns the rotation and zoom pivot as a fraction of the viewport.
func (c *Camera) Origin() (x, y float64) { return c.originX, c.originY }

// SetOrigin sets the rotation and zoom pivot as a fraction of the viewport
// size. The default (0.5, 0.5) pivots around the viewport center; (0, 0)
// pivots around its top-left corner. Scroll and MidPoint are unaffected.
func (c *Camera) SetOrigin(x, y float64) {
	c.originX = x
	c.originY = y
	c.clampToBounds()
	c.dirty = true
}

// Bounds returns the scroll clamp rectangle and whether it is active.
func (c *Camera) Bounds() (Rect, bool) { return c.bounds, c.useBounds }

// SetViewport sets the screen-space rectangle. Width and height must be
// positive; on error the camera is left unchanged.
func (c *Camera) SetViewport(x, y, width, height float64) error {
	if err := validateSize("viewport", width, height); err != nil {
		return err
	}
	c.viewport = Rect{X: x, Y: y, Width: width, Height: height}
	c.clampToBounds()
	c.dirty = true
	return nil
}

// SetBounds enables scroll clamping to the given world rectangle and clamps
// the current scroll immediately.
func (c *Camera) SetBounds(x, y, width, height float64) error {
	if err := validateSize("bounds", width, height); err != nil {
		return err
	}
	c.bounds = Rect{X: x, Y: y, Width: width, Height: height}
	c.useBounds = true
	c.clampToBounds()
	c.dirty = true
	return nil
}

// ClearBounds disables scroll clamping.
func (c *Camera) ClearBounds() {
	c.useBounds = false
}

// SetScroll sets the scroll offset, clamped to the bounds if set.
func (c *Camera) SetScroll(x, y float64) {
	c.scrollX = x
	c.scrollY = y
	c.clampToBounds()
	c.dirty = true
}

// SetZoom sets the per-axis zoom. Zero is accepted: the transform becomes
// non-invertible and culling passes everything through until it recovers.
func (c *Camera) SetZoom(zx, zy float64) {
	c.zoomX = zx
	c.zoomY = zy
	c.clampToBounds()
	c.dirty = true
}

// SetZoomUniform sets the same zoom on both axes.
func (c *Camera) SetZoomUniform(z float64) {
	c.SetZoom(z, z)
}

// SetRotation sets the camera rotation in radians. Angles are not wrapped.
func (c *Camera) SetRotation(radians float64) {
	c.rotation = radians
	c.dirty = true
}

// CenterOn scrolls so the viewport center looks at world (x, y).
func (c *Camera) CenterOn(x, y float64) {
	c.SetScroll(x-c.viewport.Width/2, y-c.viewport.Height/2)
}

// CenterToBounds centers the camera on its bounds. No-op without bounds.
func (c *Camera) CenterToBounds() {
	if c.useBounds {
		c.CenterOn(c.bounds.CenterX(), c.bounds.CenterY())
	}
}

// MidPoint returns the world point at the center of the viewport.
func (c *Camera) MidPoint() Vec2 {
	return Vec2{c.scrollX + c.viewport.Width/2, c.scrollY + c.viewport.Height/2}
}

// MarkDirty forces a transform rebuild on the next read.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// clampToBounds restricts scroll so the world footprint stays inside the
// bounds. When the footprint is larger than the bounds the camera centers.
func (c *Camera) clampToBounds() {
	if !c.useBounds {
		return
	}
	c.scrollX = clampAxis(c.scrollX, c.viewport.Width, c.viewport.Width*c.originX, c.zoomX, c.bounds.X, c.bounds.Width)
	c.scrollY = clampAxis(c.scrollY, c.viewport.Height, c.viewport.Height*c.originY, c.zoomY, c.bounds.Y, c.bounds.Height)
}

// clampAxis clamps one scroll axis. With the pivot at pixel origin the
// footprint is [scroll + shift, scroll + shift + display] where
// display = size/|zoom| and shift = origin - origin/|zoom|. A zero zoom
// centers the midpoint on the bounds.
func clampAxis(scroll, size, origin, zoom, lo, extent float64) float64 {
	az := math.Abs(zoom)
	if !(az > 0) || math.IsInf(size/az, 0) {
		return lo + extent/2 - size/2
	}
	display := size / az
	shift := origin - origin/az
	if display > extent {
		return lo + extent/2 - display/2 - shift
	}
	return math.Max(lo-shift, math.Min(scroll, lo+extent-display-shift))
}

// Transform returns the camera matrix, rebuilding it if dirty:
//
//	T(shake) * T(vx+ox, vy+oy) * R(rotation) * S(zoomX, zoomY) * T(-ox, -oy)
//
// where (ox, oy) is the origin in viewport pixels and shake is the current
// shake offset. Scroll is not included; it is applied per object scaled by
// the object's scroll factor.
func (c *Camera) Transform() Transform2D {
	if !c.dirty && c.builtRound == c.RoundPixels {
		return c.matrix
	}
	c.dirty = false
	c.builtRound = c.RoundPixels

	ox := c.viewport.Width * c.originX
	oy := c.viewport.Height * c.originY
	if c.RoundPixels {
		ox = math.Round(ox)
		oy = math.Round(oy)
	}

	var m Transform2D
	m.SetTransform(c.viewport.X+ox, c.viewport.Y+oy, c.rotation, c.zoomX, c.zoomY)
	c.matrix = m.Multiply(Translate(-ox, -oy))
	c.matrix[4] += c.shake.offset.X
	c.matrix[5] += c.shake.offset.Y
	c.inverse, c.invertible = c.matrix.Invert()
	return c.matrix
}

// ViewTransform returns the world-to-screen matrix for objects with a scroll
// factor of 1: Transform() * T(-scrollX, -scrollY).
func (c *Camera) ViewTransform() Transform2D {
	return c.Transform().Multiply(Translate(-c.scrollX, -c.scrollY))
}

// Invertible reports whether the camera transform can be inverted this frame.
func (c *Camera) Invertible() bool {
	c.Transform()
	return c.invertible
}

// WorldToCamera converts a world point to screen coordinates.
func (c *Camera) WorldToCamera(wx, wy float64) (sx, sy float64) {
	return c.Transform().TransformPoint(wx-c.scrollX, wy-c.scrollY)
}

// CameraToWorld converts a screen point to world coordinates. If the
// transform is not invertible the point is returned unchanged.
func (c *Camera) CameraToWorld(sx, sy float64) (wx, wy float64) {
	c.Transform()
	if !c.invertible {
		return sx, sy
	}
	x, y := c.inverse.TransformPoint(sx, sy)
	return x + c.scrollX, y + c.scrollY
}

// cameraLocal maps a screen point into camera space (world minus scroll).
func (c *Camera) cameraLocal(sx, sy float64) (x, y float64, ok bool) {
	c.Transform()
	if !c.invertible {
		return sx, sy, false
	}
	x, y = c.inverse.TransformPoint(sx, sy)
	return x, y, true
}

// WorldView returns the axis-aligned world-space rectangle covered by the
// viewport. ok is false when the transform is not invertible.
func (c *Camera) WorldView() (r Rect, ok bool) {
	c.Transform()
	if !c.invertible {
		return Rect{}, false
	}
	vx, vy := c.viewport.X, c.viewport.Y
	vr, vb := vx+c.viewport.Width, vy+c.viewport.Height

	x0, y0 := c.inverse.TransformPoint(vx, vy)
	x1, y1 := c.inverse.TransformPoint(vr, vy)
	x2, y2 := c.inverse.TransformPoint(vr, vb)
	x3, y3 := c.inverse.TransformPoint(vx, vb)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{
		X:      minX + c.scrollX,
		Y:      minY + c.scrollY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}, true
}

// IsInBounds reports whether the camera's world view intersects r.
// A non-invertible camera reports true.
func (c *Camera) IsInBounds(r Rect) bool {
	view, ok := c.WorldView()
	if !ok {
		return true
	}
	return view.Intersects(r)
}

// --- Ignore set ---

// Ignore excludes the given objects from this camera's render and hit-test
// lists. Idempotent; other cameras are unaffected.
func (c *Camera) Ignore(objects ...Candidate) {
	for _, o := range objects {
		c.ignored.Put(o.CullID())
	}
}

// IgnoreID excludes objects by ID.
func (c *Camera) IgnoreID(ids ...ObjectID) {
	for _, id := range ids {
		c.ignored.Put(id)
	}
}

// Unignore removes objects from the ignore set.
func (c *Camera) Unignore(ids ...ObjectID) {
	for _, id := range ids {
		c.ignored.Remove(id)
	}
}

// IsIgnored reports whether the object ID is excluded from this camera.
func (c *Camera) IsIgnored(id ObjectID) bool {
	return c.ignored.Has(id)
}

// IgnoredCount returns the size of the ignore set.
func (c *Camera) IgnoredCount() int {
	return c.ignored.Size()
}

// --- Effects ---

// Follow makes the camera track a target with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values smooth the motion.
func (c *Camera) Follow(target Positioner, offsetX, offsetY, lerp float64) {
	c.followTarget = target
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// SetDeadzone sets a width x height rectangle, centered on the camera
// midpoint, inside which a followed target can move without the camera
// following it. When the target leaves it the camera moves just enough, scaled
// by the follow lerp, to bring the target back to its edge.
func (c *Camera) SetDeadzone(width, height float64) error {
	if err := validateSize("deadzone", width, height); err != nil {
		return err
	}
	c.useDeadzone = true
	c.deadzoneW, c.deadzoneH = width, height
	return nil
}

// ClearDeadzone makes the camera follow its target directly again.
func (c *Camera) ClearDeadzone() {
	c.useDeadzone = false
}

// Deadzone returns the deadzone in world coordinates, centered on the
// current midpoint, and whether one is set.
func (c *Camera) Deadzone() (Rect, bool) {
	if !c.useDeadzone {
		return Rect{}, false
	}
	mid := c.MidPoint()
	return Rect{
		X:      mid.X - c.deadzoneW/2,
		Y:      mid.Y - c.deadzoneH/2,
		Width:  c.deadzoneW,
		Height: c.deadzoneH,
	}, true
}

// deadzoneShift returns how far v lies outside [lo, hi], signed.
func deadzoneShift(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return v - lo
	case v > hi:
		return v - hi
	}
	return 0
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// PanTo animates the viewport center to world (x, y) over duration seconds.
func (c *Camera) PanTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	mid := c.MidPoint()
	c.panTween = newPairTween(mid.X, x, mid.Y, y, duration, easeFn)
}

// ZoomTo animates the zoom over duration seconds. The animation may pass
// through zero; those frames cull as pass-through.
func (c *Camera) ZoomTo(zx, zy float64, duration float32, easeFn ease.TweenFunc) {
	c.zoomTween = newPairTween(c.zoomX, zx, c.zoomY, zy, duration, easeFn)
}

// RotateTo animates the rotation over duration seconds.
func (c *Camera) RotateTo(radians float64, duration float32, easeFn ease.TweenFunc) {
	c.rotTween = gween.New(float32(c.rotation), float32(radians), duration, easeFn)
}

// Animating reports whether a pan, zoom or rotation effect is running.
func (c *Camera) Animating() bool {
	return c.panTween != nil || c.zoomTween != nil || c.rotTween != nil
}

// StopEffects cancels running pan, zoom and rotation effects.
func (c *Camera) StopEffects() {
	c.panTween = nil
	c.zoomTween = nil
	c.rotTween = nil
}

// update advances follow and effects, then clamps. Called from Scene.Tick.
func (c *Camera) update(dt float32) {
	if c.followTarget != nil {
		tx, ty := c.followTarget.Position()
		tx += c.followOffsetX
		ty += c.followOffsetY
		mid := c.MidPoint()
		if dz, ok := c.Deadzone(); ok {
			dx := deadzoneShift(tx, dz.X, dz.Right())
			dy := deadzoneShift(ty, dz.Y, dz.Bottom())
			if dx != 0 || dy != 0 {
				c.CenterOn(mid.X+dx*c.followLerp, mid.Y+dy*c.followLerp)
			}
		} else {
			mid.X += (tx - mid.X) * c.followLerp
			mid.Y += (ty - mid.Y) * c.followLerp
			c.CenterOn(mid.X, mid.Y)
		}
	}

	if c.panTween != nil {
		mid := c.MidPoint()
		done := c.panTween.step(dt, &mid.X, &mid.Y)
		c.CenterOn(mid.X, mid.Y)
		if done {
			c.panTween = nil
		}
	}

	if c.zoomTween != nil {
		zx, zy := c.zoomX, c.zoomY
		done := c.zoomTween.step(dt, &zx, &zy)
		c.SetZoom(zx, zy)
		if done {
			c.zoomTween = nil
		}
	}

	if c.rotTween != nil {
		val, done := c.rotTween.Update(dt)
		c.SetRotation(float64(val))
		if done {
			c.rotTween = nil
		}
	}

	c.updateScreenEffects(dt)
	c.clampToBounds()
}
