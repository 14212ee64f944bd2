package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

// Stops run from the lowest value to the highest.
var palettes = map[domain.Palette][]color.RGBA{
	domain.PaletteReds: {
		{255, 245, 240, 255}, {254, 224, 210, 255}, {252, 187, 161, 255},
		{252, 146, 114, 255}, {251, 106, 74, 255}, {239, 59, 44, 255},
		{203, 24, 29, 255}, {165, 15, 21, 255}, {103, 0, 13, 255},
	},
	domain.PaletteViridis: {
		{68, 1, 84, 255}, {72, 40, 120, 255}, {62, 73, 137, 255},
		{49, 104, 142, 255}, {38, 130, 142, 255}, {31, 158, 137, 255},
		{53, 183, 121, 255}, {110, 206, 88, 255}, {181, 222, 43, 255},
		{253, 231, 37, 255},
	},
	// magma from https://waldyrious.net/viridis-palette-generator/
	domain.PaletteMagma: {
		{0, 0, 4, 255}, {7, 6, 28, 255}, {21, 14, 56, 255}, {41, 17, 90, 255},
		{63, 15, 114, 255}, {86, 20, 125, 255}, {106, 28, 129, 255},
		{128, 37, 130, 255}, {148, 44, 128, 255}, {171, 51, 124, 255},
		{192, 58, 118, 255}, {214, 69, 108, 255}, {232, 83, 98, 255},
		{244, 105, 92, 255}, {250, 129, 95, 255}, {253, 155, 107, 255},
		{254, 180, 123, 255}, {254, 205, 144, 255}, {253, 229, 167, 255},
		{252, 253, 191, 255},
	},
}

// Palettes lists the known palette names.
func Palettes() []domain.Palette {
	return []domain.Palette{domain.PaletteReds, domain.PaletteViridis, domain.PaletteMagma}
}

type scale struct {
	stops  []color.RGBA
	lo, hi float64
}

func newScale(p domain.Palette, lo, hi float64) (*scale, error) {
	stops, ok := palettes[domain.Palette(strings.ToLower(string(p)))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown color scale %q", domain.ErrInvalidConfig, p)
	}
	return &scale{stops: stops, lo: lo, hi: hi}, nil
}

// at maps t in [0,1] onto the palette.
func (s *scale) at(t float64) color.RGBA {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(s.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1]
	}
	f := pos - float64(i)
	a, b := s.stops[i], s.stops[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

// color maps a cell value; a flat matrix gets the lowest color.
func (s *scale) color(v float64) color.RGBA {
	if !(s.hi > s.lo) {
		return s.stops[0]
	}
	// Divide by the larger magnitude first; hi-lo alone overflows for
	// values near the float64 limits.
	n := math.Max(math.Abs(s.lo), math.Abs(s.hi))
	lo, hi := s.lo/n, s.hi/n
	return s.at((v/n - lo) / (hi - lo))
}

// ink picks black or white text for legibility on bg.
func ink(bg color.RGBA) color.RGBA {
	lum := 0.2126*float64(bg.R) + 0.7152*float64(bg.G) + 0.0722*float64(bg.B)
	if lum > 140 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
