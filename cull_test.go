package vantage

import (
	"math"
	"math/rand/v2"
	"testing"
)

func objAt(name string, x, y, w, h float64) *Object {
	o := NewObject(name, w, h)
	o.SetPosition(x, y)
	return o
}

func contains(list []*Object, o *Object) bool {
	for _, c := range list {
		if c == o {
			return true
		}
	}
	return false
}

func TestCullKeepsObjectInView(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	o := objAt("a", 400, 300, 32, 32)

	var cl Culler[*Object]
	out, outcome := cl.Cull(cam, []*Object{o})
	if outcome != CullFiltered {
		t.Errorf("outcome = %v, want filtered", outcome)
	}
	if len(out) != 1 || out[0] != o {
		t.Errorf("out = %v, want [a]", out)
	}
}

func TestCullDiscardsDistantObject(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	o := objAt("b", 5000, 5000, 32, 32)

	var cl Culler[*Object]
	out, _ := cl.Cull(cam, []*Object{o})
	if len(out) != 0 {
		t.Errorf("out = %v, want empty", out)
	}
	if st := cl.RenderStats(); st.Considered != 1 || st.Kept != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCullWindowAtIdentity(t *testing.T) {
	// At zoom 1 with no rotation the window is the viewport widened by the
	// object's size on each side, with strict bounds.
	tests := []struct {
		name string
		x    float64
		want bool
	}{
		{"right edge at -40", -72, false},
		{"right edge on window edge", -64, false},
		{"right edge just inside window", -63, true},
		{"left edge just inside window", 831, true},
		{"left edge on window edge", 832, false},
	}
	cam := mustCamera(t, 0, 0, 800, 600)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := objAt("edge", tt.x, 300, 32, 32)
			o.SetOrigin(0, 0)
			var cl Culler[*Object]
			out, _ := cl.Cull(cam, []*Object{o})
			if got := contains(out, o); got != tt.want {
				t.Errorf("x=%v kept = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestCullWindowGrowsWithZoom(t *testing.T) {
	// At zoom 2 a 32x32 object spans 64x64 screen pixels. This one covers
	// [780,844]x[-40,24], overlapping the top-right corner of the viewport,
	// while each diagonal corner sits more than 32 pixels outside on one axis.
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetZoomUniform(2)
	o := objAt("z", 590, 130, 32, 32)
	o.SetOrigin(0, 0)

	if x, y := cam.WorldToCamera(590, 130); x != 780 || y != -40 {
		t.Fatalf("corner at (%v,%v), want (780,-40)", x, y)
	}
	var cl Culler[*Object]
	out, _ := cl.Cull(cam, []*Object{o})
	if !contains(out, o) {
		t.Error("magnified object overlapping the viewport was culled")
	}
}

func scatter(n int, seed uint64) []*Object {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
	objs := make([]*Object, n)
	for i := range objs {
		objs[i] = objAt("o", rng.Float64()*4000-2000, rng.Float64()*4000-2000,
			4+rng.Float64()*60, 4+rng.Float64()*60)
	}
	return objs
}

func TestCullDegenerateZoomPassesThrough(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetZoom(0, 1)
	in := scatter(10, 1)

	var cl Culler[*Object]
	out, outcome := cl.Cull(cam, in)
	if outcome != CullDegenerate {
		t.Errorf("outcome = %v, want degenerate", outcome)
	}
	if len(out) != len(in) || &out[0] != &in[0] {
		t.Fatalf("expected the input slice back, got len %d", len(out))
	}

	hits := make([]*HitTarget[*Object], len(in))
	for i, o := range in {
		hits[i] = o.hitTarget()
	}
	hout, houtcome := cl.CullHitTest(cam, hits)
	if houtcome != CullDegenerate || len(hout) != len(hits) || &hout[0] != &hits[0] {
		t.Errorf("hit-test cull did not pass through: %v len %d", houtcome, len(hout))
	}
}

func TestCullDisabledReturnsInput(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.DisableCull = true
	in := scatter(50, 2)
	in = append(in, objAt("far", 1e9, 1e9, 1, 1))

	var cl Culler[*Object]
	out, outcome := cl.Cull(cam, in)
	if outcome != CullDisabled || !outcome.Passthrough() {
		t.Errorf("outcome = %v, want disabled", outcome)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] differs", i)
		}
	}
	if &out[0] != &in[0] {
		t.Error("expected the exact input slice")
	}
}

func isSubsequence(out, in []*Object) bool {
	j := 0
	for _, o := range out {
		for j < len(in) && in[j] != o {
			j++
		}
		if j == len(in) {
			return false
		}
		j++
	}
	return true
}

func TestCullPreservesOrder(t *testing.T) {
	in := scatter(500, 3)
	cams := []*Camera{
		mustCamera(t, 0, 0, 800, 600),
		mustCamera(t, 100, 50, 300, 200),
	}
	cams[1].SetZoom(0.5, 0.25)
	cams[1].SetRotation(0.3)
	cams[1].SetScroll(-400, 200)

	for i, cam := range cams {
		var cl Culler[*Object]
		out, outcome := cl.Cull(cam, in)
		if outcome != CullFiltered {
			t.Fatalf("cam %d: outcome = %v", i, outcome)
		}
		if len(out) == 0 || len(out) == len(in) {
			t.Errorf("cam %d: kept %d of %d, expected a real filter", i, len(out), len(in))
		}
		if !isSubsequence(out, in) {
			t.Errorf("cam %d: output is not an ordered subsequence", i)
		}
	}
}

func TestCullScrollFactorZero(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	hud := objAt("hud", 400, 300, 40, 40)
	hud.SetScrollFactor(0, 0)
	offscreen := objAt("hud-off", -500, 300, 40, 40)
	offscreen.SetScrollFactor(0, 0)

	var cl Culler[*Object]
	for _, s := range [][2]float64{{0, 0}, {1e6, -1e6}, {-12345, 678}} {
		cam.SetScroll(s[0], s[1])
		out, _ := cl.Cull(cam, []*Object{hud, offscreen})
		if !contains(out, hud) {
			t.Errorf("scroll %v: fixed object culled", s)
		}
		if contains(out, offscreen) {
			t.Errorf("scroll %v: off-screen fixed object kept", s)
		}
	}
}

func TestCullPartialScrollFactor(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetScroll(2000, 0)
	o := objAt("bg", 1400, 300, 32, 32)
	o.SetScrollFactor(0.5, 1)
	// Screen x = 1400 - 2000*0.5 = 400: on screen despite the world x.

	var cl Culler[*Object]
	out, _ := cl.Cull(cam, []*Object{o})
	if !contains(out, o) {
		t.Error("half-factor object culled")
	}
}

func TestCullViewportOffset(t *testing.T) {
	cam := mustCamera(t, 400, 0, 400, 300)
	inView := objAt("in", 200, 150, 32, 32)    // screen (600,150)
	leftOf := objAt("left", -300, 150, 32, 32) // screen (100,150), outside the viewport

	var cl Culler[*Object]
	out, _ := cl.Cull(cam, []*Object{inView, leftOf})
	if !contains(out, inView) {
		t.Error("object inside offset viewport culled")
	}
	if contains(out, leftOf) {
		t.Error("object left of offset viewport kept")
	}
}

func TestCullUnsizedAlwaysKept(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	logical := NewLogical("group")
	logical.SetPosition(1e9, 1e9)

	var cl Culler[*Object]
	out, _ := cl.Cull(cam, []*Object{logical})
	if !contains(out, logical) {
		t.Error("unsized object culled")
	}
	if st := cl.RenderStats(); st.Unsized != 1 {
		t.Errorf("Unsized = %d, want 1", st.Unsized)
	}

	logical.SetSize(10, 10)
	out, _ = cl.Cull(cam, []*Object{logical})
	if contains(out, logical) {
		t.Error("sized distant object kept")
	}
}

// screenPoints returns the object's corners and center in screen space.
func screenPoints(cam *Camera, o *Object) [][2]float64 {
	sx, sy := cam.Scroll()
	left := o.X - sx*o.ScrollFactorX - o.Width*o.OriginX
	top := o.Y - sy*o.ScrollFactorY - o.Height*o.OriginY
	m := cam.Transform()
	local := [][2]float64{
		{left, top}, {left + o.Width, top}, {left, top + o.Height},
		{left + o.Width, top + o.Height}, {left + o.Width/2, top + o.Height/2},
	}
	out := make([][2]float64, len(local))
	for i, p := range local {
		out[i][0], out[i][1] = m.TransformPoint(p[0], p[1])
	}
	return out
}

func TestCullNoFalseNegatives(t *testing.T) {
	in := scatter(2000, 4)
	zooms := [][2]float64{{1, 1}, {0.25, 0.25}, {3, 3}, {4, 0.5}, {-2, 1}, {0.1, -0.3}}
	rotations := []float64{0, 0.5, math.Pi / 2, 2.3, -math.Pi}

	for _, z := range zooms {
		for _, rot := range rotations {
			cam := mustCamera(t, 50, 20, 640, 360)
			cam.SetScroll(-300, 150)
			cam.SetZoom(z[0], z[1])
			cam.SetRotation(rot)
			vp := cam.Viewport()

			var cl Culler[*Object]
			out, _ := cl.Cull(cam, in)
			kept := make(map[*Object]bool, len(out))
			for _, o := range out {
				kept[o] = true
			}
			for _, o := range in {
				if kept[o] {
					continue
				}
				for _, p := range screenPoints(cam, o) {
					if p[0] > vp.X && p[0] < vp.X+vp.Width && p[1] > vp.Y && p[1] < vp.Y+vp.Height {
						t.Fatalf("zoom %v rot %v: object at (%v,%v) %vx%v culled but visible at %v",
							z, rot, o.X, o.Y, o.Width, o.Height, p)
					}
				}
			}
		}
	}
}

func TestCullLargeObjectCoveringViewport(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetZoomUniform(4)
	// Both corners are far outside the viewport, but the object covers it.
	floor := objAt("floor", 400, 300, 5000, 5000)

	var cl Culler[*Object]
	out, _ := cl.Cull(cam, []*Object{floor})
	if !contains(out, floor) {
		t.Error("object covering the viewport was culled")
	}
}

func TestCullHitTestMatchesRender(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetRotation(0.7)
	cam.SetZoomUniform(1.3)
	in := scatter(300, 5)
	hits := make([]*HitTarget[*Object], len(in))
	for i, o := range in {
		hits[i] = o.hitTarget()
	}

	var cl Culler[*Object]
	render, _ := cl.Cull(cam, in)
	hout, outcome := cl.CullHitTest(cam, hits)
	if outcome != CullFiltered {
		t.Fatalf("outcome = %v", outcome)
	}
	if len(hout) != len(render) {
		t.Fatalf("hit-test kept %d, render kept %d", len(hout), len(render))
	}
	for i := range hout {
		if hout[i].Target != render[i] {
			t.Fatalf("mismatch at %d", i)
		}
		if hout[i] != render[i].hitTarget() {
			t.Fatalf("hit-test returned a different wrapper at %d", i)
		}
	}
	if cl.HitStats().Kept != len(hout) {
		t.Errorf("HitStats.Kept = %d", cl.HitStats().Kept)
	}
}

func TestCullBuffersAreReused(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	in := scatter(200, 6)

	var cl Culler[*Object]
	first, _ := cl.Cull(cam, in)
	if len(first) == 0 {
		t.Fatal("nothing kept")
	}
	p := &first[0]
	second, _ := cl.Cull(cam, in)
	if &second[0] != p {
		t.Error("second pass allocated a new buffer")
	}

	cl.Reset()
	if st := cl.RenderStats(); st.Kept != len(second) {
		t.Errorf("Reset cleared stats: %+v", st)
	}
}

func TestCullZeroAllocs(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetRotation(0.2)
	in := scatter(1000, 7)
	hits := make([]*HitTarget[*Object], len(in))
	for i, o := range in {
		hits[i] = o.hitTarget()
	}
	var cl Culler[*Object]
	cl.Cull(cam, in)
	cl.CullHitTest(cam, hits)

	allocs := testing.AllocsPerRun(100, func() {
		cl.Cull(cam, in)
		cl.CullHitTest(cam, hits)
	})
	if allocs != 0 {
		t.Errorf("allocs per cull = %v, want 0", allocs)
	}
}

func TestCullOutcomeString(t *testing.T) {
	tests := map[CullOutcome]string{
		CullFiltered:   "filtered",
		CullDisabled:   "disabled",
		CullDegenerate: "degenerate",
		CullOutcome(9): "unknown",
	}
	for o, want := range tests {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", o, o.String(), want)
		}
	}
	if CullFiltered.Passthrough() {
		t.Error("filtered reported as pass-through")
	}
}

func TestCullersAreIndependent(t *testing.T) {
	camA := mustCamera(t, 0, 0, 400, 300)
	camB := mustCamera(t, 0, 0, 400, 300)
	camB.SetScroll(5000, 0)
	a := objAt("a", 200, 150, 20, 20)
	b := objAt("b", 5200, 150, 20, 20)
	in := []*Object{a, b}

	var clA, clB Culler[*Object]
	outA, _ := clA.Cull(camA, in)
	outB, _ := clB.Cull(camB, in)
	if len(outA) != 1 || outA[0] != a {
		t.Errorf("camA kept %v", outA)
	}
	if len(outB) != 1 || outB[0] != b {
		t.Errorf("camB kept %v", outB)
	}
	// camB's pass must not have touched camA's result.
	if outA[0] != a {
		t.Error("camA result overwritten")
	}
}
