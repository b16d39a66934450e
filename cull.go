package vantage

import "math"

// Bounds is the geometry a Candidate exposes to the culler.
type Bounds struct {
	X, Y          float64 // world position of the origin point
	Width, Height float64 // display size
	OriginX       float64 // fractional anchor, 0..1
	OriginY       float64
	ScrollFactorX float64 // 1 = world object, 0 = fixed to camera
	ScrollFactorY float64
}

// Candidate is anything that can be culled against a camera.
//
// CullBounds reports sized == false for objects that have no meaningful
// extent; those are always kept.
type Candidate interface {
	CullID() ObjectID
	CullBounds() (b Bounds, sized bool)
}

// HitTarget wraps a candidate for the hit-test cull. The culler tests Target
// and keeps the wrapper, so the input dispatcher gets back exactly the
// wrappers it submitted.
type HitTarget[T Candidate] struct {
	Target T
	// Shape is the local-space hit area. Nil means the target's rectangle.
	Shape HitShape
}

// CullOutcome records why a cull produced the list it did.
type CullOutcome uint8

const (
	// CullFiltered means the geometric test ran; the output is a filtered
	// subsequence of the input.
	CullFiltered CullOutcome = iota
	// CullDisabled means the camera has DisableCull set; the input was
	// returned unchanged.
	CullDisabled
	// CullDegenerate means the camera transform was not invertible this
	// frame (zero zoom); the input was returned unchanged.
	CullDegenerate
)

// Passthrough reports whether the input list was returned unchanged.
func (o CullOutcome) Passthrough() bool {
	return o != CullFiltered
}

func (o CullOutcome) String() string {
	switch o {
	case CullFiltered:
		return "filtered"
	case CullDisabled:
		return "disabled"
	case CullDegenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// CullStats describes the most recent pass of one Culler entry point.
type CullStats struct {
	Considered int
	Kept       int
	Unsized    int
	Outcome    CullOutcome
}

// Culler filters candidate lists against a camera. It owns its output
// buffers: the slices returned by Cull and CullHitTest are reused by the next
// call to the same method, so keep one Culler per camera when both lists must
// stay alive for the whole frame.
//
// The zero value is ready to use.
type Culler[T Candidate] struct {
	render      []T
	hits        []*HitTarget[T]
	renderStats CullStats
	hitStats    CullStats
}

// Cull returns the candidates visible to cam, in input order.
func (cl *Culler[T]) Cull(cam *Camera, in []T) ([]T, CullOutcome) {
	st := &cl.renderStats
	*st = CullStats{Considered: len(in)}

	var f cullFrame
	if st.Outcome = f.begin(cam); st.Outcome.Passthrough() {
		st.Kept = len(in)
		return in, st.Outcome
	}

	out := cl.render[:0]
	for _, c := range in {
		keep, sized := f.visible(c)
		if !sized {
			st.Unsized++
		}
		if keep {
			out = append(out, c)
		}
	}
	cl.render = out
	st.Kept = len(out)
	return out, CullFiltered
}

// CullHitTest returns the hit targets whose candidates are visible to cam,
// in input order. The predicate is identical to Cull's.
func (cl *Culler[T]) CullHitTest(cam *Camera, in []*HitTarget[T]) ([]*HitTarget[T], CullOutcome) {
	st := &cl.hitStats
	*st = CullStats{Considered: len(in)}

	var f cullFrame
	if st.Outcome = f.begin(cam); st.Outcome.Passthrough() {
		st.Kept = len(in)
		return in, st.Outcome
	}

	out := cl.hits[:0]
	for _, h := range in {
		keep, sized := f.visible(h.Target)
		if !sized {
			st.Unsized++
		}
		if keep {
			out = append(out, h)
		}
	}
	cl.hits = out
	st.Kept = len(out)
	return out, CullFiltered
}

// RenderStats returns the stats of the last Cull call.
func (cl *Culler[T]) RenderStats() CullStats { return cl.renderStats }

// HitStats returns the stats of the last CullHitTest call.
func (cl *Culler[T]) HitStats() CullStats { return cl.hitStats }

// Reset drops references held by the output buffers but keeps capacity.
func (cl *Culler[T]) Reset() {
	clear(cl.render[:cap(cl.render)])
	clear(cl.hits[:cap(cl.hits)])
	cl.render = cl.render[:0]
	cl.hits = cl.hits[:0]
}

// cullFrame is a per-call snapshot of the camera state the predicate needs.
// It lives on the stack; nothing is shared between cameras.
type cullFrame struct {
	a, b, c, d, e, f float64
	scrollX, scrollY float64
	vx, vy           float64
	w, h             float64
}

// begin snapshots cam and reports whether the geometric test should run.
func (f *cullFrame) begin(cam *Camera) CullOutcome {
	if cam.DisableCull {
		return CullDisabled
	}
	m := cam.Transform()
	if !invertibleDet(m.Determinant()) {
		return CullDegenerate
	}
	f.a, f.b, f.c, f.d, f.e, f.f = m[0], m[1], m[2], m[3], m[4], m[5]
	f.scrollX, f.scrollY = cam.scrollX, cam.scrollY
	f.vx, f.vy = cam.viewport.X, cam.viewport.Y
	f.w, f.h = cam.viewport.Width, cam.viewport.Height
	return CullFiltered
}

// visible is the shared predicate. It transforms the candidate's diagonal
// corners into viewport space and keeps the candidate if either corner lands
// in the viewport inflated on every side by the candidate's size.
//
// Each axis is inflated by the larger of the world size and the width of the
// candidate's screen-space bounding box on that axis. At zoom 1 with no
// rotation that is exactly the world size; under magnification or rotation
// the box grows so a candidate overlapping the viewport is never dropped.
func (f *cullFrame) visible(c Candidate) (keep, sized bool) {
	bb, sized := c.CullBounds()
	if !sized {
		return true, false
	}

	w, h := bb.Width, bb.Height
	objX := bb.X - f.scrollX*bb.ScrollFactorX - w*bb.OriginX
	objY := bb.Y - f.scrollY*bb.ScrollFactorY - h*bb.OriginY

	tx := objX*f.a + objY*f.c + f.e - f.vx
	ty := objX*f.b + objY*f.d + f.f - f.vy
	tw := (objX+w)*f.a + (objY+h)*f.c + f.e - f.vx
	th := (objX+w)*f.b + (objY+h)*f.d + f.f - f.vy

	infX := math.Max(math.Abs(w), math.Abs(w*f.a)+math.Abs(h*f.c))
	infY := math.Max(math.Abs(h), math.Abs(w*f.b)+math.Abs(h*f.d))

	minX, maxX := -infX, f.w+infX
	minY, maxY := -infY, f.h+infY

	if tx > minX && tx < maxX && ty > minY && ty < maxY {
		return true, true
	}
	return tw > minX && tw < maxX && th > minY && th < maxY, true
}
