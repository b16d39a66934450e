package vantage

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// GID flag bits (same convention as Tiled TMX format).
const (
	TileFlipH    uint32 = 1 << 31 // horizontal flip
	TileFlipV    uint32 = 1 << 30 // vertical flip
	TileFlipD    uint32 = 1 << 29 // diagonal flip (90° rotation)
	tileFlagMask        = TileFlipH | TileFlipV | TileFlipD
)

// uvOrder maps flip flags to the source corner used for each destination
// vertex. Indexed by (flipH << 2) | (flipV << 1) | flipD; corners are
// TL=0, TR=1, BL=2, BR=3. The diagonal flip applies first, as in Tiled.
var uvOrder = [8][4]int{
	{0, 1, 2, 3}, // none
	{0, 2, 1, 3}, // D
	{2, 3, 0, 1}, // V
	{1, 3, 0, 2}, // V+D (90° CCW)
	{1, 0, 3, 2}, // H
	{2, 0, 3, 1}, // H+D (90° CW)
	{3, 2, 1, 0}, // H+V
	{3, 1, 2, 0}, // H+V+D
}

// Tileset is an atlas image cut into equally sized tiles. Tile IDs start at
// 1 and run left to right, top to bottom. ID 0 is an empty cell.
type Tileset struct {
	Image      *ebiten.Image
	TileWidth  int
	TileHeight int

	cols, rows int
}

// NewTileset slices img into tileWidth x tileHeight tiles.
func NewTileset(img *ebiten.Image, tileWidth, tileHeight int) (*Tileset, error) {
	if img == nil {
		return nil, fmt.Errorf("tileset: nil image")
	}
	if err := validateSize("tile", float64(tileWidth), float64(tileHeight)); err != nil {
		return nil, fmt.Errorf("tileset: %w", err)
	}
	b := img.Bounds()
	return &Tileset{
		Image:      img,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		cols:       b.Dx() / tileWidth,
		rows:       b.Dy() / tileHeight,
	}, nil
}

// Len returns the number of whole tiles in the atlas.
func (ts *Tileset) Len() int { return ts.cols * ts.rows }

// region returns the source rectangle of a tile ID (flags stripped).
func (ts *Tileset) region(id uint32) (x, y float32, ok bool) {
	if id == 0 || int(id) > ts.Len() {
		return 0, 0, false
	}
	i := int(id - 1)
	b := ts.Image.Bounds()
	return float32(b.Min.X + (i%ts.cols)*ts.TileWidth), float32(b.Min.Y + (i/ts.cols)*ts.TileHeight), true
}

// TileRange is a half-open rectangle of grid cells: columns [Col0, Col1)
// and rows [Row0, Row1).
type TileRange struct {
	Col0, Row0 int
	Col1, Row1 int
}

// Empty reports whether the range covers no cells.
func (r TileRange) Empty() bool { return r.Col0 >= r.Col1 || r.Row0 >= r.Row1 }

// Cells returns the number of cells in the range.
func (r TileRange) Cells() int {
	if r.Empty() {
		return 0
	}
	return (r.Col1 - r.Col0) * (r.Row1 - r.Row0)
}

// TileLayer is a grid of tiles drawn beneath a scene's objects. Instead of
// culling cell by cell, each camera emits only the cell range under its
// world view.
type TileLayer struct {
	Name string

	// X and Y are the world position of the grid's top-left corner.
	X, Y float64

	// Scroll factors behave like Object scroll factors.
	ScrollFactorX float64
	ScrollFactorY float64

	// MarginTiles widens the visible range on every side.
	MarginTiles int

	Visible bool
	Color   Color

	tileset    *Tileset
	cols, rows int
	data       []uint32 // row-major GIDs
}

// NewTileLayer creates a cols x rows layer. data is used in place and must
// hold cols*rows GIDs; nil allocates an empty grid.
func NewTileLayer(name string, ts *Tileset, cols, rows int, data []uint32) (*TileLayer, error) {
	if ts == nil {
		return nil, fmt.Errorf("tile layer %q: nil tileset", name)
	}
	if err := validateSize("tile layer", float64(cols), float64(rows)); err != nil {
		return nil, fmt.Errorf("tile layer %q: %w", name, err)
	}
	if data == nil {
		data = make([]uint32, cols*rows)
	}
	if len(data) != cols*rows {
		return nil, fmt.Errorf("tile layer %q: %d cells for a %dx%d grid: %w",
			name, len(data), cols, rows, ErrInvalidDimension)
	}
	return &TileLayer{
		Name:          name,
		ScrollFactorX: 1,
		ScrollFactorY: 1,
		MarginTiles:   1,
		Visible:       true,
		Color:         ColorWhite,
		tileset:       ts,
		cols:          cols,
		rows:          rows,
		data:          data,
	}, nil
}

// Size returns the grid size in cells.
func (l *TileLayer) Size() (cols, rows int) { return l.cols, l.rows }

// SetScrollFactor sets the per-axis scroll factor.
func (l *TileLayer) SetScrollFactor(x, y float64) {
	l.ScrollFactorX = x
	l.ScrollFactorY = y
}

// Tileset returns the layer's tileset.
func (l *TileLayer) Tileset() *Tileset { return l.tileset }

// Bounds returns the world rectangle covered by the grid.
func (l *TileLayer) Bounds() Rect {
	return Rect{
		X:      l.X,
		Y:      l.Y,
		Width:  float64(l.cols * l.tileset.TileWidth),
		Height: float64(l.rows * l.tileset.TileHeight),
	}
}

// Tile returns the GID at (col, row), or 0 outside the grid.
func (l *TileLayer) Tile(col, row int) uint32 {
	if col < 0 || col >= l.cols || row < 0 || row >= l.rows {
		return 0
	}
	return l.data[row*l.cols+col]
}

// SetTile sets the GID at (col, row). Out-of-range cells are ignored.
func (l *TileLayer) SetTile(col, row int, gid uint32) {
	if col < 0 || col >= l.cols || row < 0 || row >= l.rows {
		return
	}
	l.data[row*l.cols+col] = gid
}

// CellAt returns the cell under a world point, using the layer's position
// but not its scroll factor.
func (l *TileLayer) CellAt(wx, wy float64) (col, row int, ok bool) {
	col = int(math.Floor((wx - l.X) / float64(l.tileset.TileWidth)))
	row = int(math.Floor((wy - l.Y) / float64(l.tileset.TileHeight)))
	ok = col >= 0 && col < l.cols && row >= 0 && row < l.rows
	return col, row, ok
}

// VisibleRange returns the cells that can appear in cam's viewport, widened
// by MarginTiles and clamped to the grid. When the camera transform is not
// invertible the whole grid is returned with ok false.
func (l *TileLayer) VisibleRange(cam *Camera) (r TileRange, ok bool) {
	view, ok := cam.WorldView()
	if !ok {
		return TileRange{Col1: l.cols, Row1: l.rows}, false
	}
	sx, sy := cam.Scroll()
	// WorldView carries the full scroll; a cell at p draws at p - scroll*factor.
	vx := view.X - sx*(1-l.ScrollFactorX) - l.X
	vy := view.Y - sy*(1-l.ScrollFactorY) - l.Y

	tw := float64(l.tileset.TileWidth)
	th := float64(l.tileset.TileHeight)
	m := l.MarginTiles

	r.Col0 = clampInt(int(math.Floor(vx/tw))-m, 0, l.cols)
	r.Row0 = clampInt(int(math.Floor(vy/th))-m, 0, l.rows)
	r.Col1 = clampInt(int(math.Ceil((vx+view.Width)/tw))+m, r.Col0, l.cols)
	r.Row1 = clampInt(int(math.Ceil((vy+view.Height)/th))+m, r.Row0, l.rows)
	return r, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// layerTransform maps layer-local pixels to screen for one camera.
func (l *TileLayer) layerTransform(cam Transform2D, scrollX, scrollY float64) Transform2D {
	return cam.Multiply(Translate(l.X-scrollX*l.ScrollFactorX, l.Y-scrollY*l.ScrollFactorY))
}

// appendVertices appends four vertices per non-empty cell in r, positioned
// by m. Cells whose ID is outside the tileset are skipped.
func (l *TileLayer) appendVertices(dst []ebiten.Vertex, m Transform2D, r TileRange) []ebiten.Vertex {
	tw := float64(l.tileset.TileWidth)
	th := float64(l.tileset.TileHeight)
	a := float32(l.Color.A)
	cr, cg, cb := float32(l.Color.R)*a, float32(l.Color.G)*a, float32(l.Color.B)*a

	for row := r.Row0; row < r.Row1; row++ {
		for col := r.Col0; col < r.Col1; col++ {
			gid := l.data[row*l.cols+col]
			if gid == 0 {
				continue
			}
			sx, sy, ok := l.tileset.region(gid &^ tileFlagMask)
			if !ok {
				continue
			}
			x0, y0 := float64(col)*tw, float64(row)*th
			corners := [4][2]float64{{x0, y0}, {x0 + tw, y0}, {x0, y0 + th}, {x0 + tw, y0 + th}}
			uvX := [4]float32{sx, sx + float32(tw), sx, sx + float32(tw)}
			uvY := [4]float32{sy, sy, sy + float32(th), sy + float32(th)}
			order := uvOrder[flagIndex(gid)]

			for i, c := range corners {
				dx, dy := m.TransformPoint(c[0], c[1])
				dst = append(dst, ebiten.Vertex{
					DstX:   float32(dx),
					DstY:   float32(dy),
					SrcX:   uvX[order[i]],
					SrcY:   uvY[order[i]],
					ColorR: cr,
					ColorG: cg,
					ColorB: cb,
					ColorA: a,
				})
			}
		}
	}
	return dst
}

func flagIndex(gid uint32) int {
	i := 0
	if gid&TileFlipH != 0 {
		i |= 4
	}
	if gid&TileFlipV != 0 {
		i |= 2
	}
	if gid&TileFlipD != 0 {
		i |= 1
	}
	return i
}

// quadIndices grows idx to cover n quads. The topology never changes, so
// the slice is only ever extended.
func quadIndices(idx []uint32, n int) []uint32 {
	for q := len(idx) / 6; q < n; q++ {
		base := uint32(q * 4)
		idx = append(idx, base, base+1, base+2, base+1, base+3, base+2)
	}
	return idx
}

// --- Scene integration ---

// AddTileLayer appends a tile layer. Layers draw in order, beneath all
// objects, in every visible camera.
func (s *Scene) AddTileLayer(l *TileLayer) {
	if l == nil {
		return
	}
	for _, cur := range s.tileLayers {
		if cur == l {
			return
		}
	}
	s.tileLayers = append(s.tileLayers, l)
}

// RemoveTileLayer removes a tile layer.
func (s *Scene) RemoveTileLayer(l *TileLayer) {
	for i, cur := range s.tileLayers {
		if cur == l {
			copy(s.tileLayers[i:], s.tileLayers[i+1:])
			s.tileLayers[len(s.tileLayers)-1] = nil
			s.tileLayers = s.tileLayers[:len(s.tileLayers)-1]
			return
		}
	}
}

// TileLayers returns the scene's tile layers. The returned slice MUST NOT be
// mutated.
func (s *Scene) TileLayers() []*TileLayer { return s.tileLayers }

// drawTileLayer draws the visible part of l into target for one camera.
func (r *ebitenRenderer) drawTileLayer(target *ebiten.Image, frame CameraFrame, l *TileLayer) {
	rng, _ := l.VisibleRange(frame.Camera)
	if rng.Empty() {
		return
	}
	sx, sy := frame.Camera.Scroll()
	m := l.layerTransform(frame.Transform, sx, sy)
	if frame.RoundPixels {
		m[4] = math.Round(m[4])
		m[5] = math.Round(m[5])
	}
	r.tileVerts = l.appendVertices(r.tileVerts[:0], m, rng)
	quads := len(r.tileVerts) / 4
	if quads == 0 {
		return
	}
	r.tileIndices = quadIndices(r.tileIndices, quads)
	target.DrawTriangles32(r.tileVerts, r.tileIndices[:quads*6], l.tileset.Image, &r.triOp)
}
