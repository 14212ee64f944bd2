// Package render draws a service matrix as an annotated heatmap.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultCellSize = 48
	DefaultDPI      = 100
	DefaultPalette  = domain.PaletteReds

	pad      = 10
	barGap   = 16
	barWidth = 16
	tickGap  = 4
)

var (
	face  = basicfont.Face7x13
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

type layout struct {
	cell                      int
	titleH, colLabelH, colAxH int
	rowLabelW, rowAxW         int
	tickW, barLabelW          int
	gridX, gridY              int
	gridW, gridH              int
	width, height             int
}

func newLayout(m *domain.Matrix, opts domain.DisplayOptions, format func(float64) string, lo, hi float64) layout {
	var l layout

	l.cell = opts.CellSize
	if l.cell <= 0 {
		l.cell = DefaultCellSize
	}
	widest := 0
	for _, row := range m.Values {
		for _, v := range row {
			widest = max(widest, textWidth(format(v)))
		}
	}
	l.cell = max(l.cell, widest+8, face.Height+8)

	if opts.Title != "" {
		l.titleH = face.Height + pad
	}
	l.colLabelH = widestLabel(m.Cols) + pad
	l.rowLabelW = widestLabel(m.Rows) + pad
	if opts.RowAxisLabel != "" {
		l.rowAxW = face.Height + pad
	}
	if opts.ColumnAxisLabel != "" {
		l.colAxH = face.Height + pad
	}
	l.tickW = max(textWidth(format(lo)), textWidth(format(hi))) + tickGap
	if opts.ColorbarLabel != "" {
		l.barLabelW = face.Height + pad
	}

	l.gridX = pad + l.rowAxW + l.rowLabelW
	l.gridY = pad + l.titleH + l.colLabelH
	l.gridW = len(m.Cols) * l.cell
	l.gridH = len(m.Rows) * l.cell

	l.width = l.gridX + l.gridW + barGap + barWidth + tickGap + l.tickW + l.barLabelW + pad
	l.width = max(l.width, textWidth(opts.Title)+2*pad)
	l.height = l.gridY + l.gridH + pad/2 + l.colAxH + pad
	return l
}

// Image lays the matrix out as a heatmap. The result is deterministic for a
// given matrix and options.
func Image(m *domain.Matrix, opts domain.DisplayOptions) (*image.RGBA, error) {
	if m == nil || m.Empty() {
		return nil, domain.ErrEmptyMatrix
	}
	format, err := ValueFormatter(opts.ValueFormat)
	if err != nil {
		return nil, err
	}
	if opts.Palette == "" {
		opts.Palette = DefaultPalette
	}
	lo, hi := m.Range()
	sc, err := newScale(opts.Palette, lo, hi)
	if err != nil {
		return nil, err
	}

	l := newLayout(m, opts, format, lo, hi)
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	fill(img, img.Bounds(), white)

	if opts.Title != "" {
		drawText(img, (l.width-textWidth(opts.Title))/2, pad, opts.Title, black)
	}

	// axis tick labels
	for j, c := range m.Cols {
		s := string(c)
		x := l.gridX + j*l.cell + (l.cell-face.Height)/2
		drawTextVertical(img, x, l.gridY-pad/2-textWidth(s), s, black)
	}
	for i, r := range m.Rows {
		s := string(r)
		y := l.gridY + i*l.cell + (l.cell-face.Height)/2
		drawText(img, l.gridX-pad/2-textWidth(s), y, s, black)
	}

	if opts.RowAxisLabel != "" {
		y := l.gridY + max(0, (l.gridH-textWidth(opts.RowAxisLabel))/2)
		drawTextVertical(img, pad, y, opts.RowAxisLabel, black)
	}
	if opts.ColumnAxisLabel != "" {
		x := l.gridX + max(0, (l.gridW-textWidth(opts.ColumnAxisLabel))/2)
		drawText(img, x, l.gridY+l.gridH+pad/2, opts.ColumnAxisLabel, black)
	}

	for i, row := range m.Values {
		for j, v := range row {
			r := image.Rect(0, 0, l.cell, l.cell).Add(image.Pt(l.gridX+j*l.cell, l.gridY+i*l.cell))
			bg := sc.color(v)
			fill(img, r, bg)
			s := format(v)
			drawText(img, r.Min.X+(l.cell-textWidth(s))/2, r.Min.Y+(l.cell-face.Height)/2, s, ink(bg))
		}
	}
	if opts.GridLines {
		for i := 0; i <= len(m.Rows); i++ {
			y := l.gridY + i*l.cell
			fill(img, image.Rect(l.gridX, y, l.gridX+l.gridW+1, y+1), black)
		}
		for j := 0; j <= len(m.Cols); j++ {
			x := l.gridX + j*l.cell
			fill(img, image.Rect(x, l.gridY, x+1, l.gridY+l.gridH+1), black)
		}
	}

	drawColorbar(img, l, sc, format, lo, hi, opts.ColorbarLabel)

	return upscale(img, ScaleFactor(opts.DPI)), nil
}

func drawColorbar(img *image.RGBA, l layout, sc *scale, format func(float64) string, lo, hi float64, label string) {
	bx := l.gridX + l.gridW + barGap
	for y := 0; y < l.gridH; y++ {
		t := 1 - float64(y)/float64(l.gridH-1)
		fill(img, image.Rect(bx, l.gridY+y, bx+barWidth, l.gridY+y+1), sc.at(t))
	}
	outline(img, image.Rect(bx, l.gridY, bx+barWidth, l.gridY+l.gridH), black)

	tx := bx + barWidth + tickGap
	drawText(img, tx, l.gridY, format(hi), black)
	drawText(img, tx, l.gridY+l.gridH-face.Height, format(lo), black)

	if label != "" {
		y := l.gridY + max(0, (l.gridH-textWidth(label))/2)
		drawTextVertical(img, tx+l.tickW, y, label, black)
	}
}

// ScaleFactor converts a DPI setting into the integer pixel upscale applied
// to the 100-DPI base layout.
func ScaleFactor(dpi int) int {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return max(1, int(math.Round(float64(dpi)/DefaultDPI)))
}

func upscale(src *image.RGBA, f int) *image.RGBA {
	if f <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*f, b.Dy()*f))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// PNG encodes the heatmap to w.
func PNG(w io.Writer, m *domain.Matrix, opts domain.DisplayOptions) error {
	img, err := Image(m, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteFile renders to path. The image goes to a temp file beside path and
// is renamed into place, so a failed run leaves nothing behind.
func WriteFile(path string, m *domain.Matrix, opts domain.DisplayOptions) error {
	b, err := Encode(m, opts)
	if err != nil {
		return err
	}
	return WriteAtomic(path, b)
}

// Encode renders the PNG into memory.
func Encode(m *domain.Matrix, opts domain.DisplayOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := PNG(&buf, m, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAtomic writes b to a temp file beside path and renames it into place.
// The target directory must exist.
func WriteAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".heatmap-*.png")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrOutputWriteFailure, path, err)
	}
	name := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("%w: %s: %v", domain.ErrOutputWriteFailure, path, err)
	}
	if _, err := tmp.Write(b); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(name, path); err != nil {
		return fail(err)
	}
	return nil
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

func widestLabel(ids []domain.EntityID) int {
	w := 0
	for _, id := range ids {
		w = max(w, textWidth(string(id)))
	}
	return w
}

// drawText places s with its top-left corner at (x, y).
func drawText(img draw.Image, x, y int, s string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
}

// drawTextVertical draws s reading bottom to top with the top-left of its
// bounding box at (x, y).
func drawTextVertical(img *image.RGBA, x, y int, s string, c color.RGBA) {
	w, h := textWidth(s), face.Height
	if w == 0 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawText(tmp, 0, 0, s, c)
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			p := tmp.RGBAAt(sx, sy)
			if p.A == 0 {
				continue
			}
			img.SetRGBA(x+sy, y+w-1-sx, p)
		}
	}
}
