package vantage

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const fpsRefreshInterval = 0.5 // seconds

// NewFPSWidget creates a HUD object that shows FPS and TPS at (x, y) in every
// camera that does not ignore it. The text is redrawn about twice a second.
func NewFPSWidget(x, y float64) *Object {
	// 100x32 fits "FPS: 60.0\nTPS: 60.0".
	img := ebiten.NewImage(100, 32)

	o := NewObject("fps", 100, 32)
	o.Image = img
	o.SetOrigin(0, 0)
	o.SetPosition(x, y)
	o.SetScrollFactor(0, 0)

	elapsed := fpsRefreshInterval
	o.OnUpdate = func(dt float64) {
		elapsed += dt
		if elapsed < fpsRefreshInterval {
			return
		}
		elapsed = 0
		img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	return o
}
