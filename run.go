package vantage

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowOverlay draws FPS and per-camera cull stats on top of the frame.
	ShowOverlay bool
	// Resizable lets the user resize the window. The logical screen size
	// stays Width x Height.
	Resizable bool
}

type game struct {
	scene *Scene
	w, h  int
}

func (g *game) Update() error              { return g.scene.Update() }
func (g *game) Draw(screen *ebiten.Image)  { g.scene.Draw(screen) }
func (g *game) Layout(_, _ int) (int, int) { return g.w, g.h }

// Run opens a window and drives scene until the window closes or an update
// returns an error. If the scene has no cameras, a full-window camera is
// added first.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("run: window %dx%d: %w", cfg.Width, cfg.Height, ErrInvalidDimension)
	}
	if len(scene.views) == 0 {
		if _, err := scene.AddCamera(DefaultCameraConfig(float64(cfg.Width), float64(cfg.Height))); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	scene.SetOverlay(cfg.ShowOverlay)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	scene.log.Info().Str("title", cfg.Title).Int("width", cfg.Width).Int("height", cfg.Height).Msg("run")
	return ebiten.RunGame(&game{scene: scene, w: cfg.Width, h: cfg.Height})
}
