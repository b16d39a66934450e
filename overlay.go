package vantage

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const overlayLineHeight = 16

// SetOverlay toggles the on-screen stats overlay drawn after all cameras.
func (s *Scene) SetOverlay(enabled bool) {
	s.overlay = enabled
}

// overlayText formats the overlay lines: FPS/TPS, then one line per camera.
func (s *Scene) overlayText(fps, tps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f  TPS: %.1f\n", fps, tps)
	for _, v := range s.views {
		cam := v.cam
		name := cam.Name
		if name == "" {
			name = fmt.Sprintf("cam%d", cam.id)
		}
		if !cam.Visible {
			fmt.Fprintf(&b, "%s: hidden\n", name)
			continue
		}
		rs := v.culler.RenderStats()
		hs := v.culler.HitStats()
		fmt.Fprintf(&b, "%s: %d/%d drawn  %d/%d hit  %s\n",
			name, rs.Kept, rs.Considered, hs.Kept, hs.Considered, rs.Outcome)
	}
	return b.String()
}

func (s *Scene) drawOverlay(screen *ebiten.Image) {
	text := s.overlayText(ebiten.ActualFPS(), ebiten.ActualTPS())
	lines := strings.Count(text, "\n")
	w := 0
	for _, l := range strings.Split(text, "\n") {
		w = max(w, len(l))
	}
	// ebitenutil's debug font is 6px wide.
	bg := image.Rect(0, 0, w*6+8, lines*overlayLineHeight+4).Intersect(screen.Bounds())
	if !bg.Empty() {
		screen.SubImage(bg).(*ebiten.Image).Fill(color.RGBA{0, 0, 0, 128})
	}
	ebitenutil.DebugPrintAt(screen, text, 4, 2)
}
