package vantage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RectConfig is a rectangle in a camera config file.
type RectConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Rect converts the config to a Rect.
func (r RectConfig) Rect() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// CameraConfig describes a camera declaratively. Zero values mean "default":
// a zero zoom is read as 1, so a camera cannot start at zoom 0 from config.
type CameraConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	ScrollX float64 `yaml:"scrollX"`
	ScrollY float64 `yaml:"scrollY"`

	// Zoom sets both axes. ZoomX and ZoomY override it per axis.
	Zoom  float64 `yaml:"zoom"`
	ZoomX float64 `yaml:"zoomX"`
	ZoomY float64 `yaml:"zoomY"`

	// Rotation is in radians.
	Rotation float64 `yaml:"rotation"`

	// Origin is the rotation and zoom pivot as a fraction of the viewport.
	// Nil means the center.
	Origin *Vec2 `yaml:"origin,omitempty"`

	// BackgroundColor is a hex string: "#rgb", "#rrggbb" or "#rrggbbaa".
	BackgroundColor string `yaml:"backgroundColor"`

	RoundPixels bool `yaml:"roundPixels"`
	DisableCull bool `yaml:"disableCull"`
	Hidden      bool `yaml:"hidden"`

	// Bounds enables scroll clamping when set.
	Bounds *RectConfig `yaml:"bounds,omitempty"`

	// CenterOn, when set, overrides ScrollX and ScrollY.
	CenterOn *Vec2 `yaml:"centerOn,omitempty"`
}

// DefaultCameraConfig returns a full-screen camera config of the given size.
func DefaultCameraConfig(width, height float64) CameraConfig {
	return CameraConfig{Name: "main", Width: width, Height: height, Zoom: 1}
}

type cameraFile struct {
	Cameras []CameraConfig `yaml:"cameras"`
}

// LoadCameraConfigs parses a YAML (or JSON) document of the form
//
//	cameras:
//	  - name: main
//	    width: 800
//	    height: 600
//
// Values are not validated until the configs are passed to AddCamera.
func LoadCameraConfigs(data []byte) ([]CameraConfig, error) {
	var f cameraFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse camera config: %w", err)
	}
	return f.Cameras, nil
}

// MarshalCameraConfigs encodes cfgs in the document form LoadCameraConfigs
// reads.
func MarshalCameraConfigs(cfgs []CameraConfig) ([]byte, error) {
	data, err := yaml.Marshal(cameraFile{Cameras: cfgs})
	if err != nil {
		return nil, fmt.Errorf("encode camera config: %w", err)
	}
	return data, nil
}

// Config captures the camera's current state as a CameraConfig that
// AddCamera turns back into an equivalent camera. Running effects, the
// follow target, the deadzone and the ignore set are not captured. A zero
// zoom axis cannot be expressed and is written as 1.
func (c *Camera) Config() CameraConfig {
	cfg := CameraConfig{
		Name:        c.Name,
		X:           c.viewport.X,
		Y:           c.viewport.Y,
		Width:       c.viewport.Width,
		Height:      c.viewport.Height,
		ScrollX:     c.scrollX,
		ScrollY:     c.scrollY,
		Rotation:    c.rotation,
		RoundPixels: c.RoundPixels,
		DisableCull: c.DisableCull,
		Hidden:      !c.Visible,
	}
	if c.zoomX == c.zoomY {
		cfg.Zoom = c.zoomX
	} else {
		cfg.ZoomX, cfg.ZoomY = c.zoomX, c.zoomY
	}
	if c.BackgroundColor != ColorTransparent {
		cfg.BackgroundColor = c.BackgroundColor.Hex()
	}
	if c.originX != 0.5 || c.originY != 0.5 {
		cfg.Origin = &Vec2{c.originX, c.originY}
	}
	if c.useBounds {
		cfg.Bounds = &RectConfig{X: c.bounds.X, Y: c.bounds.Y, Width: c.bounds.Width, Height: c.bounds.Height}
	}
	return cfg
}

func (cfg CameraConfig) zoom() (zx, zy float64) {
	zx, zy = cfg.Zoom, cfg.Zoom
	if zx == 0 {
		zx, zy = 1, 1
	}
	if cfg.ZoomX != 0 {
		zx = cfg.ZoomX
	}
	if cfg.ZoomY != 0 {
		zy = cfg.ZoomY
	}
	return zx, zy
}

// AddCamera validates cfg, creates the camera and adds it on top of the
// existing cameras. On error no camera is added.
func (s *Scene) AddCamera(cfg CameraConfig) (*Camera, error) {
	bg, err := ParseHexColor(cfg.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("camera %q: %w", cfg.Name, err)
	}
	if cfg.Bounds != nil {
		if err := validateSize("bounds", cfg.Bounds.Width, cfg.Bounds.Height); err != nil {
			return nil, fmt.Errorf("camera %q: %w", cfg.Name, err)
		}
	}
	cam, err := s.NewCamera(Rect{X: cfg.X, Y: cfg.Y, Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		return nil, fmt.Errorf("camera %q: %w", cfg.Name, err)
	}

	cam.Name = cfg.Name
	cam.BackgroundColor = bg
	cam.RoundPixels = cfg.RoundPixels
	cam.DisableCull = cfg.DisableCull
	cam.Visible = !cfg.Hidden
	if cfg.Origin != nil {
		cam.SetOrigin(cfg.Origin.X, cfg.Origin.Y)
	}
	cam.SetZoom(cfg.zoom())
	cam.SetRotation(cfg.Rotation)
	if cfg.Bounds != nil {
		b := cfg.Bounds
		// Already validated above.
		_ = cam.SetBounds(b.X, b.Y, b.Width, b.Height)
	}
	if cfg.CenterOn != nil {
		cam.CenterOn(cfg.CenterOn.X, cfg.CenterOn.Y)
	} else {
		cam.SetScroll(cfg.ScrollX, cfg.ScrollY)
	}

	s.log.Debug().
		Str("camera", cam.Name).
		Uint32("id", uint32(cam.id)).
		Float64("width", cfg.Width).
		Float64("height", cfg.Height).
		Msg("camera added")
	return cam, nil
}

// Hex formats the color as "#rrggbbaa", the inverse of ParseHexColor up to
// 8-bit rounding.
func (c Color) Hex() string {
	b := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x%02x", b(c.R), b(c.G), b(c.B), b(c.A))
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading '#' is
// optional). An empty string is ColorTransparent.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ColorTransparent, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("parse color %q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, ErrInvalidColor)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
