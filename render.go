package vantage

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer draws one camera's frame into its viewport. Scene.Draw calls it
// once per visible camera in camera order.
type Renderer interface {
	RenderCamera(screen *ebiten.Image, frame CameraFrame)
}

// RenderCommand is a single draw instruction built from a culled object.
type RenderCommand struct {
	Object    *Object
	Image     *ebiten.Image
	Transform Transform2D // image pixels to screen
	Color     Color
}

// BuildCommands appends one command per object in frame.Render to dst and
// returns the extended slice. Objects with a zero size or a non-invertible
// camera are still emitted; ebiten draws nothing for a singular GeoM.
func BuildCommands(dst []RenderCommand, frame CameraFrame) []RenderCommand {
	cam := frame.Camera
	sx, sy := cam.scrollX, cam.scrollY
	for _, o := range frame.Render {
		img := o.Image
		if img == nil {
			img = WhitePixel
		}
		dst = append(dst, RenderCommand{
			Object:    o,
			Image:     img,
			Transform: objectTransform(frame.Transform, o, img, sx, sy, frame.RoundPixels),
			Color:     o.Color,
		})
	}
	return dst
}

// objectTransform maps image pixels to screen:
//
//	camera * T(objX, objY) * S(width/imgW, height/imgH)
//
// where objX = X - scrollX*ScrollFactorX - Width*OriginX.
func objectTransform(cam Transform2D, o *Object, img *ebiten.Image, scrollX, scrollY float64, round bool) Transform2D {
	objX := o.X - scrollX*o.ScrollFactorX - o.Width*o.OriginX
	objY := o.Y - scrollY*o.ScrollFactorY - o.Height*o.OriginY

	iw, ih := 1.0, 1.0
	if img != nil {
		b := img.Bounds()
		iw, ih = float64(b.Dx()), float64(b.Dy())
	}
	m := cam.Multiply(Translate(objX, objY)).Multiply(Scale(o.Width/iw, o.Height/ih))
	if round {
		m[4] = math.Round(m[4])
		m[5] = math.Round(m[5])
	}
	return m
}

// ebitenRenderer is the default Renderer. It keeps one command buffer and one
// DrawImageOptions and reuses both every frame.
type ebitenRenderer struct {
	commands []RenderCommand
	op       ebiten.DrawImageOptions

	tileVerts   []ebiten.Vertex
	tileIndices []uint32
	triOp       ebiten.DrawTrianglesOptions
}

// RenderCamera clips drawing to the viewport, fills the background, draws
// the tile layers, submits the culled objects in order and finally blends the
// fade and flash overlays.
func (r *ebitenRenderer) RenderCamera(screen *ebiten.Image, frame CameraFrame) {
	vp := frame.Viewport
	target := viewportImage(screen, vp)
	if target == nil {
		return
	}

	if frame.Background.A > 0 {
		target.Fill(frame.Background.toRGBA())
	}
	if bg := frame.BackgroundImage; bg != nil {
		b := bg.Bounds()
		r.op.GeoM.Reset()
		r.op.GeoM.Scale(vp.Width/float64(b.Dx()), vp.Height/float64(b.Dy()))
		r.op.GeoM.Translate(vp.X, vp.Y)
		r.op.ColorScale.Reset()
		target.DrawImage(bg, &r.op)
	}

	for _, l := range frame.TileLayers {
		if l.Visible {
			r.drawTileLayer(target, frame, l)
		}
	}

	r.commands = BuildCommands(r.commands[:0], frame)
	for i := range r.commands {
		r.submit(target, &r.commands[i])
	}
	clear(r.commands)

	r.fillOverlay(target, vp, frame.Fade)
	r.fillOverlay(target, vp, frame.Flash)
}

// fillOverlay blends c over the viewport. Fill would replace the pixels, so
// the white pixel is stretched instead.
func (r *ebitenRenderer) fillOverlay(target *ebiten.Image, vp Rect, c Color) {
	if c.A <= 0 {
		return
	}
	r.op.GeoM.Reset()
	r.op.GeoM.Scale(vp.Width, vp.Height)
	r.op.GeoM.Translate(vp.X, vp.Y)
	r.op.ColorScale.Reset()
	a := float32(c.A)
	r.op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	target.DrawImage(WhitePixel, &r.op)
}

func (r *ebitenRenderer) submit(target *ebiten.Image, cmd *RenderCommand) {
	r.op.GeoM = cmd.Transform.GeoM()
	r.op.ColorScale.Reset()
	a := float32(cmd.Color.A)
	r.op.ColorScale.Scale(float32(cmd.Color.R)*a, float32(cmd.Color.G)*a, float32(cmd.Color.B)*a, a)
	target.DrawImage(cmd.Image, &r.op)
}

// viewportImage returns the sub-image of screen covered by vp. SubImage keeps
// screen coordinates, so camera matrices apply unchanged. Returns nil when
// the viewport lies entirely off screen.
func viewportImage(screen *ebiten.Image, vp Rect) *ebiten.Image {
	r := rectToImage(vp).Intersect(screen.Bounds())
	if r.Empty() {
		return nil
	}
	return screen.SubImage(r).(*ebiten.Image)
}

func rectToImage(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}
