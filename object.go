package vantage

import (
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// ObjectID identifies a cull candidate. Cameras key their ignore sets on it.
type ObjectID uint32

// objectIDCounter is shared by every scene so IDs stay unique when objects
// move between scenes or are built on other goroutines.
var objectIDCounter atomic.Uint32

func nextObjectID() ObjectID {
	return ObjectID(objectIDCounter.Add(1))
}

// Positioner is anything with a world position a camera can follow.
type Positioner interface {
	Position() (x, y float64)
}

// Object is the built-in renderable. A single flat struct is used for every
// kind of object to avoid interface dispatch on the hot path; the Culler only
// sees it through the Candidate interface.
type Object struct {
	// Identity
	ID   ObjectID
	Name string

	// Geometry. X and Y are the world position of the origin point, which
	// sits at (OriginX, OriginY) as a fraction of Width and Height.
	X, Y          float64
	Width, Height float64
	OriginX       float64
	OriginY       float64

	// ScrollFactorX and ScrollFactorY scale how far camera scroll displaces
	// the object: 1 moves with the world, 0 is fixed to the camera (HUD).
	ScrollFactorX float64
	ScrollFactorY float64

	// Visible objects are submitted to the render cull. Interactable objects
	// are submitted to the hit-test cull. The two are independent.
	Visible      bool
	Interactable bool

	// Color tints Image, or fills the object's rectangle when Image is nil.
	Color Color
	// Image is drawn stretched to Width x Height. Optional.
	Image *ebiten.Image

	// HitShape overrides the default rectangular hit area. Coordinates are
	// local, with (0, 0) at the object's top-left corner.
	HitShape HitShape

	// UserData is an arbitrary value attached by the caller.
	UserData any

	// OnUpdate runs every tick after the scene's update func, before cameras
	// follow their targets.
	OnUpdate func(dt float64)

	// Per-object pointer callbacks. Nil callbacks are skipped.
	OnPointerDown  func(PointerContext)
	OnPointerUp    func(PointerContext)
	OnClick        func(PointerContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)
	OnDragStart    func(PointerContext)
	OnDrag         func(PointerContext)
	OnDragEnd      func(PointerContext)

	unsized bool
	hit     HitTarget[*Object]
	scene   *Scene
}

// NewObject creates a visible, sized object centered on its position
// (origin 0.5, 0.5) that scrolls normally with the camera.
func NewObject(name string, width, height float64) *Object {
	o := &Object{
		ID:            nextObjectID(),
		Name:          name,
		Width:         width,
		Height:        height,
		OriginX:       0.5,
		OriginY:       0.5,
		ScrollFactorX: 1,
		ScrollFactorY: 1,
		Visible:       true,
		Color:         ColorWhite,
	}
	o.hit.Target = o
	return o
}

// NewLogical creates an object with no size. Logical objects are never
// culled and are only hit-testable through a HitShape.
func NewLogical(name string) *Object {
	o := NewObject(name, 0, 0)
	o.unsized = true
	return o
}

// CullID implements Candidate.
func (o *Object) CullID() ObjectID { return o.ID }

// CullBounds implements Candidate.
func (o *Object) CullBounds() (Bounds, bool) {
	if o.unsized {
		return Bounds{}, false
	}
	return Bounds{
		X:             o.X,
		Y:             o.Y,
		Width:         o.Width,
		Height:        o.Height,
		OriginX:       o.OriginX,
		OriginY:       o.OriginY,
		ScrollFactorX: o.ScrollFactorX,
		ScrollFactorY: o.ScrollFactorY,
	}, true
}

// Position implements Positioner.
func (o *Object) Position() (x, y float64) { return o.X, o.Y }

// Sized reports whether the object has a size the culler can test.
func (o *Object) Sized() bool { return !o.unsized }

// Scene returns the scene the object was added to, or nil.
func (o *Object) Scene() *Scene { return o.scene }

// SetPosition sets the object's world position.
func (o *Object) SetPosition(x, y float64) {
	o.X = x
	o.Y = y
}

// SetSize sets the display size and marks the object as sized.
func (o *Object) SetSize(w, h float64) {
	o.Width = w
	o.Height = h
	o.unsized = false
}

// SetOrigin sets the fractional anchor point.
func (o *Object) SetOrigin(x, y float64) {
	o.OriginX = x
	o.OriginY = y
}

// SetScrollFactor sets the per-axis scroll factor.
func (o *Object) SetScrollFactor(x, y float64) {
	o.ScrollFactorX = x
	o.ScrollFactorY = y
}

// hitTarget returns the object's interactive wrapper with its shape synced.
func (o *Object) hitTarget() *HitTarget[*Object] {
	o.hit.Target = o
	o.hit.Shape = o.HitShape
	return &o.hit
}
