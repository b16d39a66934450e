package vantage

import (
	"math"
	"math/rand/v2"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// screenEffect is a full-viewport color overlay whose alpha is tweened.
// A held effect keeps drawing at its final alpha after the tween ends.
type screenEffect struct {
	color Color
	tween *gween.Tween
	alpha float64
	hold  bool
}

func (e *screenEffect) start(c Color, from, to float64, duration float32, hold bool) {
	e.color = c
	e.alpha = from
	e.hold = hold
	e.tween = gween.New(float32(from), float32(to), duration, ease.Linear)
}

func (e *screenEffect) update(dt float32) {
	if e.tween == nil {
		return
	}
	val, done := e.tween.Update(dt)
	e.alpha = float64(val)
	if done {
		e.tween = nil
		if !e.hold {
			e.alpha = 0
		}
	}
}

// overlay returns the color to draw over the viewport with the effect alpha
// folded into A. A zero A means nothing to draw.
func (e *screenEffect) overlay() Color {
	c := e.color
	c.A *= clamp01(e.alpha)
	return c
}

func (e *screenEffect) reset() {
	*e = screenEffect{}
}

// shakeEffect jitters the camera matrix in screen space for a fixed time.
type shakeEffect struct {
	remaining float32
	intensity Vec2
	offset    Vec2
	rng       *rand.Rand
}

func (s *shakeEffect) running() bool { return s.remaining > 0 }

// update picks a fresh offset of up to intensity * viewport size on each
// axis, or clears it once the duration has elapsed. Reports whether the
// offset changed.
func (s *shakeEffect) update(dt float32, width, height float64, round bool) bool {
	if !s.running() {
		return false
	}
	s.remaining -= dt
	if s.remaining <= 0 {
		s.remaining = 0
		s.offset = Vec2{}
		return true
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.offset.X = (s.rng.Float64()*2 - 1) * s.intensity.X * width
	s.offset.Y = (s.rng.Float64()*2 - 1) * s.intensity.Y * height
	if round {
		s.offset.X = math.Round(s.offset.X)
		s.offset.Y = math.Round(s.offset.Y)
	}
	return true
}

// Shake jitters the camera for duration seconds. Intensity is a fraction of
// the viewport size; 0.05 moves the view by up to 5% on each axis. Calling
// Shake while a shake is running restarts it. The jitter is part of
// Transform, so culling and hit testing follow it.
func (c *Camera) Shake(duration float32, intensity float64) {
	c.ShakeXY(duration, intensity, intensity)
}

// ShakeXY is Shake with a separate intensity per axis.
func (c *Camera) ShakeXY(duration float32, ix, iy float64) {
	c.shake.remaining = duration
	c.shake.intensity = Vec2{ix, iy}
	if duration <= 0 {
		c.shake.remaining = 0
		c.shake.offset = Vec2{}
		c.dirty = true
	}
}

// Shaking reports whether a shake is running.
func (c *Camera) Shaking() bool { return c.shake.running() }

// ShakeOffset returns the screen-space offset applied this frame.
func (c *Camera) ShakeOffset() Vec2 { return c.shake.offset }

// Flash fills the viewport with col and fades it to nothing over duration
// seconds.
func (c *Camera) Flash(duration float32, col Color) {
	c.flash.start(col, 1, 0, duration, false)
}

// FadeOut fades the viewport to col over duration seconds. The viewport stays
// covered until FadeIn or ResetEffects.
func (c *Camera) FadeOut(duration float32, col Color) {
	c.fade.start(col, 0, 1, duration, true)
}

// FadeIn starts with the viewport covered by col and fades it away over
// duration seconds.
func (c *Camera) FadeIn(duration float32, col Color) {
	c.fade.start(col, 1, 0, duration, false)
}

// Fading reports whether a fade is in progress.
func (c *Camera) Fading() bool { return c.fade.tween != nil }

// Flashing reports whether a flash is in progress.
func (c *Camera) Flashing() bool { return c.flash.tween != nil }

// FadeColor returns the fade overlay with its current alpha folded into A.
func (c *Camera) FadeColor() Color { return c.fade.overlay() }

// FlashColor returns the flash overlay with its current alpha folded into A.
func (c *Camera) FlashColor() Color { return c.flash.overlay() }

// ResetEffects stops shake, flash and fade and clears their overlays.
// Pan, zoom and rotation effects are stopped by StopEffects.
func (c *Camera) ResetEffects() {
	c.flash.reset()
	c.fade.reset()
	c.ShakeXY(0, 0, 0)
}

// updateScreenEffects advances shake, flash and fade. Called from update.
func (c *Camera) updateScreenEffects(dt float32) {
	if c.shake.update(dt, c.viewport.Width, c.viewport.Height, c.RoundPixels) {
		c.dirty = true
	}
	c.flash.update(dt)
	c.fade.update(dt)
}
