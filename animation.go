package vantage

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to four float64 fields of an Object together.
// Call Update(dt) each frame, typically from the scene's update func.
type TweenGroup struct {
	tweens [4]*gween.Tween
	fields [4]*float64
	count  int
	Done   bool
}

func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[g.count] = field
	g.count++
}

// Update advances all tweens by dt seconds and writes the values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenPosition animates o.X and o.Y.
func TweenPosition(o *Object, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&o.X, toX, duration, fn)
	g.add(&o.Y, toY, duration, fn)
	return g
}

// TweenSize animates o.Width and o.Height. Unsized objects stay unsized.
func TweenSize(o *Object, toW, toH float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&o.Width, toW, duration, fn)
	g.add(&o.Height, toH, duration, fn)
	return g
}

// TweenColor animates all four components of o.Color.
func TweenColor(o *Object, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&o.Color.R, to.R, duration, fn)
	g.add(&o.Color.G, to.G, duration, fn)
	g.add(&o.Color.B, to.B, duration, fn)
	g.add(&o.Color.A, to.A, duration, fn)
	return g
}

// TweenAlpha animates o.Color.A.
func TweenAlpha(o *Object, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&o.Color.A, to, duration, fn)
	return g
}
