/*
Copyright © 2019 the STDA authors.
This file is part of STDA.

STDA is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

STDA is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with STDA.  If not, see <http://www.gnu.org/licenses/>.
*/


package graphics

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// colormaps holds the named color maps. Each call returns a new map so
// that callers can set its range independently.
var colormaps = map[string]func() palette.ColorMap{
	"coolwarm":     diverging(moreland.SmoothBlueRed),
	"bluered":      diverging(moreland.SmoothBlueRed),
	"bluetan":      diverging(moreland.SmoothBlueTan),
	"greenpurple":  diverging(moreland.SmoothGreenPurple),
	"greenred":     diverging(moreland.SmoothGreenRed),
	"purpleorange": diverging(moreland.SmoothPurpleOrange),
	"blackbody":    moreland.ExtendedBlackBody,
	"kindlmann":    moreland.ExtendedKindlmann,
	"jet": func() palette.ColorMap {
		return newPaletteMap(palette.Rainbow(256, 2./3., 0, 1, 1, 1).Colors(), 0, 1)
	},
	"heat": func() palette.ColorMap {
		return newPaletteMap(palette.Heat(256, 1).Colors(), 0, 1)
	},
	"rain": func() palette.ColorMap {
		return newPaletteMap(rainColors, 0, 1)
	},
}

// diverging adapts a diverging color map constructor to the ColorMap
// constructor type used by colormaps.
func diverging(f func() palette.DivergingColorMap) func() palette.ColorMap {
	return func() palette.ColorMap { return f() }
}

// rainColors are the conventional accumulated precipitation grades,
// from light rain to extreme rainstorm.
var rainColors = []color.Color{
	color.NRGBA{R: 0xa6, G: 0xf2, B: 0x8e, A: 0xff},
	color.NRGBA{R: 0x3d, G: 0xba, B: 0x3d, A: 0xff},
	color.NRGBA{R: 0x61, G: 0xb8, B: 0xff, A: 0xff},
	color.NRGBA{R: 0x00, G: 0x00, B: 0xe1, A: 0xff},
	color.NRGBA{R: 0xfa, G: 0x00, B: 0xfa, A: 0xff},
	color.NRGBA{R: 0x80, G: 0x00, B: 0x40, A: 0xff},
}

// Colormaps returns the sorted names accepted by Colormap.
func Colormaps() []string {
	o := make([]string, 0, len(colormaps))
	for n := range colormaps {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// Colormap returns the named color map. An empty name selects "jet".
func Colormap(name string) (palette.ColorMap, error) {
	if name == "" {
		name = "jet"
	}
	f, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("graphics: unknown colormap %q; valid options are %v", name, Colormaps())
	}
	return f(), nil
}

// paletteMap is a ColorMap that picks the nearest of a fixed list of
// colors.
type paletteMap struct {
	colors        []color.Color
	min, max, alp float64
}

func newPaletteMap(c []color.Color, min, max float64) *paletteMap {
	return &paletteMap{colors: c, min: min, max: max, alp: 1}
}

func (p *paletteMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < p.min:
		return nil, palette.ErrUnderflow
	case v > p.max:
		return nil, palette.ErrOverflow
	}
	n := len(p.colors)
	i := int((v - p.min) / (p.max - p.min) * float64(n))
	if i >= n {
		i = n - 1
	}
	if p.alp == 1 {
		return p.colors[i], nil
	}
	c := color.NRGBAModel.Convert(p.colors[i]).(color.NRGBA)
	c.A = uint8(float64(c.A) * p.alp)
	return c, nil
}

func (p *paletteMap) Max() float64          { return p.max }
func (p *paletteMap) SetMax(v float64)      { p.max = v }
func (p *paletteMap) Min() float64          { return p.min }
func (p *paletteMap) SetMin(v float64)      { p.min = v }
func (p *paletteMap) Alpha() float64        { return p.alp }
func (p *paletteMap) SetAlpha(a float64)    { p.alp = a }
func (p *paletteMap) Colors() []color.Color { return p.colors }

// Palette samples n evenly spaced colors between Min and Max.
func (p *paletteMap) Palette(n int) palette.Palette {
	o := make([]color.Color, n)
	for i := range o {
		v := p.min + (p.max-p.min)*(float64(i)+0.5)/float64(n)
		o[i], _ = p.At(v)
	}
	return colors(o)
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }
