package vantage

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// HitShape is a custom hit area in object-local coordinates, with (0, 0) at
// the object's top-left corner.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// PointerContext carries pointer event data to callbacks.
type PointerContext struct {
	Type      EventType
	Object    *Object // nil for events over empty space
	Camera    *Camera // camera the pointer was resolved through; may be nil
	UserData  any
	ScreenX   float64
	ScreenY   float64
	WorldX    float64
	WorldY    float64
	LocalX    float64
	LocalY    float64
	StartX    float64 // world position at press (drag events)
	StartY    float64
	DeltaX    float64 // world movement since the previous frame (drag events)
	DeltaY    float64
	Button    MouseButton
	PointerID int
}

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, pointer events are forwarded to it.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries pointer event data for the ECS bridge.
type InteractionEvent struct {
	Type     EventType
	ObjectID ObjectID
	CameraID CameraID
	WorldX   float64
	WorldY   float64
	LocalX   float64
	LocalY   float64
	DeltaX   float64
	DeltaY   float64
	Button   MouseButton
}

// --- Per-pointer state ---

type pointerState struct {
	down       bool
	startX     float64 // world
	startY     float64
	screenX    float64 // last screen position
	screenY    float64
	pressX     float64 // screen position at press, for the dead zone
	pressY     float64
	lastWorldX float64
	lastWorldY float64
	pressObj   *Object
	pressCam   *Camera
	hoverObj   *Object
	dragging   bool
	button     MouseButton
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type handlerRegistry struct {
	byEvent [eventTypeCount][]pointerHandler
	nextID  uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil || h.event >= eventTypeCount {
		return
	}
	s := h.reg.byEvent[h.event]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			h.reg.byEvent[h.event] = s[:len(s)-1]
			return
		}
	}
}

// On registers a scene-level callback for the given event type.
func (s *Scene) On(event EventType, fn func(PointerContext)) CallbackHandle {
	if event >= eventTypeCount {
		return CallbackHandle{}
	}
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.byEvent[event] = append(s.handlers.byEvent[event], pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: event}
}

// OnClick registers a scene-level click callback.
func (s *Scene) OnClick(fn func(PointerContext)) CallbackHandle {
	return s.On(EventClick, fn)
}

// OnPointerDown registers a scene-level pointer down callback.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	return s.On(EventPointerDown, fn)
}

// OnDrag registers a scene-level drag callback.
func (s *Scene) OnDrag(fn func(PointerContext)) CallbackHandle {
	return s.On(EventDrag, fn)
}

// SetDragDeadZone sets the minimum movement in screen pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// hitResult is the outcome of resolving a screen point.
type hitResult struct {
	obj    *Object
	cam    *Camera
	worldX float64
	worldY float64
	localX float64
	localY float64
}

// hitLocal converts a camera-space point into the target's local space and
// tests it against the target's hit area.
func hitLocal(cam *Camera, h *HitTarget[*Object], px, py float64) (lx, ly float64, ok bool) {
	o := h.Target
	left := o.X - cam.scrollX*o.ScrollFactorX
	top := o.Y - cam.scrollY*o.ScrollFactorY
	sized := o.Sized()
	if sized {
		left -= o.Width * o.OriginX
		top -= o.Height * o.OriginY
	}
	lx, ly = px-left, py-top
	if h.Shape != nil {
		return lx, ly, h.Shape.Contains(lx, ly)
	}
	if !sized {
		return lx, ly, false
	}
	return lx, ly, lx >= 0 && lx <= o.Width && ly >= 0 && ly <= o.Height
}

// hitTest resolves a screen point against the hit-test culled lists, topmost
// camera first and topmost object first. If nothing is hit, the result still
// carries the topmost camera under the pointer for world coordinates.
//
// A camera whose transform is not invertible is skipped and the pointer
// falls through to the cameras below it. Its hit-test list is the unfiltered
// pass-through, but no screen point can be mapped into its world, so nothing
// in that list can be hit.
func (s *Scene) hitTest(sx, sy float64) hitResult {
	var res hitResult
	res.worldX, res.worldY = sx, sy

	first := true
	for i := len(s.views) - 1; i >= 0; i-- {
		v := s.views[i]
		cam := v.cam
		if !cam.Visible || !cam.viewport.Contains(sx, sy) {
			continue
		}
		if first {
			res.cam = cam
			res.worldX, res.worldY = cam.CameraToWorld(sx, sy)
			first = false
		}
		px, py, ok := cam.cameraLocal(sx, sy)
		if !ok {
			continue
		}
		for j := len(v.hits) - 1; j >= 0; j-- {
			lx, ly, hit := hitLocal(cam, v.hits[j], px, py)
			if !hit {
				continue
			}
			return hitResult{
				obj:    v.hits[j].Target,
				cam:    cam,
				worldX: px + cam.scrollX,
				worldY: py + cam.scrollY,
				localX: lx,
				localY: ly,
			}
		}
	}
	return res
}

// HitTest returns the topmost interactable object under the screen point,
// or nil. Uses the hit-test lists of the current frame.
func (s *Scene) HitTest(sx, sy float64) *Object {
	s.ensureCulled()
	return s.hitTest(sx, sy).obj
}

// --- Input processing ---

// processInput handles injected or real pointer input. Called from tick
// after culling so hit tests use this frame's lists.
func (s *Scene) processInput(poll bool) {
	if s.processInjectedInput() {
		return
	}
	if !poll {
		return
	}
	s.processMousePointer()
	s.processTouchPointers()
}

// processMousePointer handles mouse input (pointer 0).
func (s *Scene) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	// If the pointer is already down, keep the stored button so it does not
	// change mid-interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}
	s.processPointer(0, float64(mx), float64(my), pressed, button)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}

	// Release touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.screenX, ps.screenY, false, MouseButtonLeft)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Scene) processPointer(pointerID int, sx, sy float64, pressed bool, button MouseButton) {
	ps := &s.pointers[pointerID]
	hit := s.hitTest(sx, sy)
	moved := sx != ps.screenX || sy != ps.screenY

	base := PointerContext{
		Camera:    hit.cam,
		ScreenX:   sx,
		ScreenY:   sy,
		WorldX:    hit.worldX,
		WorldY:    hit.worldY,
		LocalX:    hit.localX,
		LocalY:    hit.localY,
		Button:    button,
		PointerID: pointerID,
	}

	if hit.obj != ps.hoverObj {
		if ps.hoverObj != nil {
			s.fire(EventPointerLeave, ps.hoverObj, base)
		}
		if hit.obj != nil {
			s.fire(EventPointerEnter, hit.obj, base)
		}
		ps.hoverObj = hit.obj
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.pressObj = hit.obj
		ps.pressCam = hit.cam
		ps.startX, ps.startY = hit.worldX, hit.worldY
		ps.lastWorldX, ps.lastWorldY = hit.worldX, hit.worldY
		ps.dragging = false
		ps.pressX, ps.pressY = sx, sy
		s.fire(EventPointerDown, hit.obj, base)

	case pressed && ps.down:
		if !moved {
			break
		}
		base.Button = ps.button
		wx, wy := hit.worldX, hit.worldY
		if ps.pressCam != nil {
			wx, wy = ps.pressCam.CameraToWorld(sx, sy)
			base.Camera = ps.pressCam
		}
		base.WorldX, base.WorldY = wx, wy
		base.StartX, base.StartY = ps.startX, ps.startY
		base.DeltaX, base.DeltaY = wx-ps.lastWorldX, wy-ps.lastWorldY
		if !ps.dragging && math.Hypot(sx-ps.pressX, sy-ps.pressY) > s.dragDeadZone {
			ps.dragging = true
			s.fire(EventDragStart, ps.pressObj, base)
		}
		if ps.dragging {
			s.fire(EventDrag, ps.pressObj, base)
		} else {
			s.fire(EventPointerMove, hit.obj, base)
		}
		ps.lastWorldX, ps.lastWorldY = wx, wy

	case !pressed && ps.down:
		ps.down = false
		base.Button = ps.button
		s.fire(EventPointerUp, hit.obj, base)
		if ps.dragging {
			base.StartX, base.StartY = ps.startX, ps.startY
			s.fire(EventDragEnd, ps.pressObj, base)
			ps.dragging = false
		} else if hit.obj != nil && hit.obj == ps.pressObj {
			s.fire(EventClick, hit.obj, base)
		}
		ps.pressObj = nil
		ps.pressCam = nil

	case moved:
		s.fire(EventPointerMove, hit.obj, base)
	}

	ps.screenX, ps.screenY = sx, sy
}

// fire dispatches an event to the object's callback, scene handlers and the
// entity store, in that order.
func (s *Scene) fire(event EventType, obj *Object, ctx PointerContext) {
	ctx.Type = event
	ctx.Object = obj
	if obj != nil {
		ctx.UserData = obj.UserData
		if fn := obj.callback(event); fn != nil {
			fn(ctx)
		}
	}
	for _, h := range s.handlers.byEvent[event] {
		h.fn(ctx)
	}
	if s.store != nil {
		ev := InteractionEvent{
			Type:   event,
			WorldX: ctx.WorldX,
			WorldY: ctx.WorldY,
			LocalX: ctx.LocalX,
			LocalY: ctx.LocalY,
			DeltaX: ctx.DeltaX,
			DeltaY: ctx.DeltaY,
			Button: ctx.Button,
		}
		if obj != nil {
			ev.ObjectID = obj.ID
		}
		if ctx.Camera != nil {
			ev.CameraID = ctx.Camera.id
		}
		s.store.EmitEvent(ev)
	}
}

// callback returns the object's handler for an event type.
func (o *Object) callback(event EventType) func(PointerContext) {
	switch event {
	case EventPointerDown:
		return o.OnPointerDown
	case EventPointerUp:
		return o.OnPointerUp
	case EventClick:
		return o.OnClick
	case EventPointerEnter:
		return o.OnPointerEnter
	case EventPointerLeave:
		return o.OnPointerLeave
	case EventDragStart:
		return o.OnDragStart
	case EventDrag:
		return o.OnDrag
	case EventDragEnd:
		return o.OnDragEnd
	}
	return nil
}

// forgetObject clears pointer state that references a removed object.
func (s *Scene) forgetObject(o *Object) {
	for i := range s.pointers {
		ps := &s.pointers[i]
		if ps.pressObj == o {
			ps.pressObj = nil
			ps.dragging = false
		}
		if ps.hoverObj == o {
			ps.hoverObj = nil
		}
	}
}
