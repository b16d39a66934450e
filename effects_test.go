package vantage

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestCameraShakeOffsetsTransform(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	base := cam.Transform()
	cam.shake.rng = rand.New(rand.NewPCG(1, 2))
	cam.Shake(0.5, 0.05)
	if !cam.Shaking() {
		t.Fatal("Shaking = false after Shake")
	}

	moved := false
	for range 10 {
		cam.update(1.0 / 60)
		off := cam.ShakeOffset()
		if math.Abs(off.X) > 40 || math.Abs(off.Y) > 30 {
			t.Fatalf("offset %v exceeds 5%% of 800x600", off)
		}
		if off != (Vec2{}) {
			moved = true
		}
		m := cam.Transform()
		for i := 0; i < 4; i++ {
			if m[i] != base[i] {
				t.Fatalf("shake changed linear part: %v vs %v", m, base)
			}
		}
		if !approxEqual(m[4], base[4]+off.X, epsilon) || !approxEqual(m[5], base[5]+off.Y, epsilon) {
			t.Fatalf("translation = (%v,%v), want base + %v", m[4], m[5], off)
		}
		sx, sy := cam.WorldToCamera(400, 300)
		if !approxEqual(sx, 400+off.X, epsilon) || !approxEqual(sy, 300+off.Y, epsilon) {
			t.Fatalf("WorldToCamera(400,300) = (%v,%v) with offset %v", sx, sy, off)
		}
	}
	if !moved {
		t.Error("shake never moved the camera")
	}

	cam.update(1)
	if cam.Shaking() {
		t.Error("Shaking = true after duration elapsed")
	}
	if cam.ShakeOffset() != (Vec2{}) || cam.Transform() != base {
		t.Errorf("transform after shake = %v, want %v", cam.Transform(), base)
	}
}

func TestCameraShakeRoundPixels(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.RoundPixels = true
	cam.shake.rng = rand.New(rand.NewPCG(7, 7))
	cam.Shake(1, 0.1)
	cam.update(1.0 / 60)
	off := cam.ShakeOffset()
	if off.X != math.Round(off.X) || off.Y != math.Round(off.Y) {
		t.Errorf("offset %v not whole pixels", off)
	}
}

func TestCameraResetEffects(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	base := cam.Transform()
	cam.Shake(1, 0.1)
	cam.Flash(1, ColorWhite)
	cam.FadeOut(1, Color{0, 0, 0, 1})
	cam.update(0.1)

	cam.ResetEffects()
	if cam.Shaking() || cam.Flashing() || cam.Fading() {
		t.Error("effects still running after ResetEffects")
	}
	if cam.FlashColor().A != 0 || cam.FadeColor().A != 0 {
		t.Error("overlays not cleared")
	}
	if cam.Transform() != base {
		t.Error("shake offset left in transform")
	}
}

func TestCameraFlash(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.Flash(1, Color{1, 0.5, 0, 0.8})
	if got := cam.FlashColor(); got.A != 0.8 || got.G != 0.5 {
		t.Fatalf("initial flash = %+v", got)
	}
	cam.update(0.5)
	if got := cam.FlashColor().A; !approxEqual(got, 0.4, 1e-6) {
		t.Errorf("flash alpha at half time = %v, want 0.4", got)
	}
	cam.update(0.6)
	if cam.Flashing() || cam.FlashColor().A != 0 {
		t.Error("flash did not clear")
	}
}

func TestCameraFadeOutHoldsUntilFadeIn(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	black := Color{0, 0, 0, 1}

	cam.FadeOut(1, black)
	if cam.FadeColor().A != 0 {
		t.Errorf("fade-out starts at %v, want 0", cam.FadeColor().A)
	}
	cam.update(0.25)
	if got := cam.FadeColor().A; !approxEqual(got, 0.25, 1e-6) {
		t.Errorf("fade alpha = %v, want 0.25", got)
	}
	cam.update(1)
	if cam.Fading() {
		t.Error("Fading = true after duration")
	}
	if got := cam.FadeColor().A; !approxEqual(got, 1, 1e-6) {
		t.Errorf("faded-out alpha = %v, want 1", got)
	}

	cam.FadeIn(1, black)
	cam.update(1.1)
	if got := cam.FadeColor().A; got != 0 {
		t.Errorf("faded-in alpha = %v, want 0", got)
	}
}

func TestSceneFrameCarriesOverlays(t *testing.T) {
	s := NewScene()
	cam := sceneCamera(t, s, 0, 0, 800, 600)
	cam.Flash(1, ColorWhite)
	cam.FadeOut(0.1, Color{0, 0, 0, 1})
	tick(t, s, 10)

	f, ok := s.CameraFrame(cam)
	if !ok {
		t.Fatal("no frame")
	}
	if !approxEqual(f.Fade.A, 1, 1e-6) {
		t.Errorf("frame fade alpha = %v, want 1", f.Fade.A)
	}
	if f.Flash.A <= 0 || f.Flash.A >= 1 {
		t.Errorf("frame flash alpha = %v, want mid-flash", f.Flash.A)
	}
}

func TestCameraDeadzoneHoldsStill(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	if err := cam.SetDeadzone(200, 100); err != nil {
		t.Fatal(err)
	}
	target := NewObject("t", 10, 10)
	target.SetPosition(450, 320)
	cam.Follow(target, 0, 0, 1)

	// Deadzone is [300,500]x[250,350] around the midpoint (400,300).
	for _, p := range [][2]float64{{450, 320}, {310, 260}, {499, 349}} {
		target.SetPosition(p[0], p[1])
		cam.update(1.0 / 60)
		if sx, sy := cam.Scroll(); sx != 0 || sy != 0 {
			t.Fatalf("target at %v inside deadzone moved camera to (%v,%v)", p, sx, sy)
		}
	}

	target.SetPosition(600, 300)
	cam.update(1.0 / 60)
	if mid := cam.MidPoint(); !approxEqual(mid.X, 500, epsilon) || !approxEqual(mid.Y, 300, epsilon) {
		t.Errorf("MidPoint = %v, want (500,300)", mid)
	}
	dz, ok := cam.Deadzone()
	if !ok || !approxEqual(dz.Right(), 600, epsilon) {
		t.Errorf("deadzone = %v, want right edge on target", dz)
	}

	target.SetPosition(550, 290)
	cam.update(1.0 / 60)
	if mid := cam.MidPoint(); !approxEqual(mid.X, 500, epsilon) {
		t.Errorf("camera moved for target inside deadzone: %v", mid)
	}

	cam.ClearDeadzone()
	cam.update(1.0 / 60)
	if mid := cam.MidPoint(); !approxEqual(mid.X, 550, epsilon) || !approxEqual(mid.Y, 290, epsilon) {
		t.Errorf("MidPoint without deadzone = %v, want target", mid)
	}
}

func TestCameraDeadzoneLerp(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	_ = cam.SetDeadzone(200, 100)
	target := NewObject("t", 10, 10)
	target.SetPosition(700, 300)
	cam.Follow(target, 0, 0, 0.5)
	cam.update(1.0 / 60)
	// 200 outside the right edge, half of it closed this frame.
	if mid := cam.MidPoint(); !approxEqual(mid.X, 500, epsilon) {
		t.Errorf("MidPoint.X = %v, want 500", mid.X)
	}
}

func TestCameraDeadzoneInvalid(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	if err := cam.SetDeadzone(0, 10); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("err = %v, want ErrInvalidDimension", err)
	}
	if _, ok := cam.Deadzone(); ok {
		t.Error("deadzone set despite error")
	}
}

func TestCameraOriginPivot(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	cam.SetZoomUniform(2)
	// Default pivot is the viewport center.
	if x, y := cam.WorldToCamera(400, 300); !approxEqual(x, 400, epsilon) || !approxEqual(y, 300, epsilon) {
		t.Errorf("center pivot moved: (%v,%v)", x, y)
	}

	cam.SetOrigin(0, 0)
	if ox, oy := cam.Origin(); ox != 0 || oy != 0 {
		t.Errorf("Origin = (%v,%v)", ox, oy)
	}
	if x, y := cam.WorldToCamera(0, 0); !approxEqual(x, 0, epsilon) || !approxEqual(y, 0, epsilon) {
		t.Errorf("top-left pivot moved: (%v,%v)", x, y)
	}
	if x, y := cam.WorldToCamera(100, 50); !approxEqual(x, 200, epsilon) || !approxEqual(y, 100, epsilon) {
		t.Errorf("WorldToCamera(100,50) = (%v,%v), want (200,100)", x, y)
	}
	if wx, wy := cam.CameraToWorld(200, 100); !approxEqual(wx, 100, epsilon) || !approxEqual(wy, 50, epsilon) {
		t.Errorf("CameraToWorld(200,100) = (%v,%v)", wx, wy)
	}
}

func TestCameraBoundsClampWithOrigin(t *testing.T) {
	cam := mustCamera(t, 0, 0, 200, 150)
	cam.SetOrigin(0, 0)
	cam.SetZoomUniform(2)
	if err := cam.SetBounds(0, 0, 1000, 1000); err != nil {
		t.Fatal(err)
	}

	// Pivoting on the top-left, zoom 2 shows [scroll, scroll+100]x[scroll, scroll+75].
	cam.SetScroll(-500, -500)
	if sx, sy := cam.Scroll(); !approxEqual(sx, 0, epsilon) || !approxEqual(sy, 0, epsilon) {
		t.Errorf("Scroll = (%v,%v), want (0,0)", sx, sy)
	}
	cam.SetScroll(5000, 5000)
	if sx, sy := cam.Scroll(); !approxEqual(sx, 900, epsilon) || !approxEqual(sy, 925, epsilon) {
		t.Errorf("Scroll = (%v,%v), want (900,925)", sx, sy)
	}
	view, _ := cam.WorldView()
	if !approxEqual(view.Right(), 1000, 1e-9) || !approxEqual(view.Bottom(), 1000, 1e-9) {
		t.Errorf("world view %v not flush with bounds", view)
	}
}

func TestCullFollowsShake(t *testing.T) {
	cam := mustCamera(t, 0, 0, 800, 600)
	o := objAt("edge", -70, 300, 32, 32)
	o.SetOrigin(0, 0)

	var cl Culler[*Object]
	if out, _ := cl.Cull(cam, []*Object{o}); len(out) != 0 {
		t.Fatal("object should be culled before the shake")
	}
	cam.shake.offset = Vec2{X: 20}
	cam.MarkDirty()
	if out, _ := cl.Cull(cam, []*Object{o}); len(out) != 1 {
		t.Error("shaken camera did not cull against the shifted view")
	}
}
