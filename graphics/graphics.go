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


// Package graphics renders canonical grids and point series to images
// using gonum plot.
package graphics

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"time"

	"github.com/ctessum/plotextra"
	"github.com/metdig/stda"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Options control how a grid is drawn. The zero value draws latitude
// against longitude with ten evenly spaced levels.
type Options struct {
	// XDim and YDim name the horizontal and vertical axes. Either may be
	// any canonical axis name or stda.FcstTime. They default to "lon"
	// and "lat".
	XDim, YDim string

	// Colormap is a name accepted by Colormap. It defaults to "jet".
	Colormap string

	// Levels are the contour or shading boundaries. When empty, ten
	// intervals spanning the finite data range are used.
	Levels []float64

	// Label is the color bar label. It defaults to
	// "<var_cn_name>(<var_units>)".
	Label string

	// Title defaults to the grid description.
	Title string

	// HighCut, when in (0, 1), is the quantile of the data above which
	// Pcolormesh switches to a second color scale, so that a few extreme
	// values do not wash out the rest of the field.
	HighCut float64

	// NoColorBar suppresses the color bar.
	NoColorBar bool
}

func (o Options) dims() (x, y string) {
	x, y = o.XDim, o.YDim
	if x == "" {
		x = stda.Lon.String()
	}
	if y == "" {
		y = stda.Lat.String()
	}
	return x, y
}

// Figure is a plot with an optional color bar drawn underneath it.
type Figure struct {
	Plot     *plot.Plot
	ColorBar *plot.Plot
}

// colorBarHeight is the height of the strip reserved for the color bar.
const colorBarHeight = 40 * vg.Millimeter / 2

// SavePNG draws f on a width × height canvas and writes it to w as PNG.
func (f *Figure) SavePNG(w io.Writer, width, height vg.Length) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(96))
	dc := draw.New(img)
	if f.ColorBar == nil {
		f.Plot.Draw(dc)
	} else {
		top, bottom := splitVertical(dc, colorBarHeight)
		f.Plot.Draw(top)
		f.ColorBar.Draw(bottom)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("graphics: writing png: %v", err)
	}
	return nil
}

// splitVertical splits c at height y.
func splitVertical(c draw.Canvas, y vg.Length) (top, bottom draw.Canvas) {
	return draw.Crop(c, 0, 0, y, 0), draw.Crop(c, 0, 0, 0, c.Min.Y-c.Max.Y+y)
}

// gridXYZ adapts a reduced grid to plotter.GridXYZ. Both axes are
// increasing.
type gridXYZ struct {
	x, y []float64
	z    *mat.Dense
}

func (g *gridXYZ) Dims() (c, r int)   { return len(g.x), len(g.y) }
func (g *gridXYZ) Z(c, r int) float64 { return g.z.At(r, c) }
func (g *gridXYZ) X(c int) float64    { return g.x[c] }
func (g *gridXYZ) Y(r int) float64    { return g.y[r] }

// newGridXYZ reduces g to the ydim × xdim plane.
func newGridXYZ(g *stda.Grid, xdim, ydim string) (*gridXYZ, error) {
	a := g.Accessor()
	z, err := a.Reduce2D(ydim, xdim)
	if err != nil {
		return nil, fmt.Errorf("graphics: %v", err)
	}
	xc, err := a.Axis(xdim)
	if err != nil {
		return nil, fmt.Errorf("graphics: %v", err)
	}
	yc, err := a.Axis(ydim)
	if err != nil {
		return nil, fmt.Errorf("graphics: %v", err)
	}
	r, c := z.Dims()
	if xc.Len() != c || yc.Len() != r {
		return nil, fmt.Errorf("graphics: %s (%d) × %s (%d) coordinates do not match a %d×%d field",
			ydim, yc.Len(), xdim, xc.Len(), r, c)
	}
	o := &gridXYZ{x: positions(xc), y: positions(yc), z: z}
	if c > 1 && o.x[0] > o.x[c-1] {
		reverse(o.x)
		o.z = flipCols(o.z)
	}
	if r > 1 && o.y[0] > o.y[r-1] {
		reverse(o.y)
		o.z = flipRows(o.z)
	}
	return o, nil
}

// positions returns plottable positions for c, falling back to indices
// for labels.
func positions(c stda.Coord) []float64 {
	v := c.Floats()
	for _, f := range v {
		if math.IsNaN(f) {
			for i := range v {
				v[i] = float64(i)
			}
			break
		}
	}
	return v
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

func flipRows(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		o.SetRow(r-1-i, m.RawRowView(i))
	}
	return o
}

func flipCols(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		o.SetCol(c-1-j, mat.Col(nil, j, m))
	}
	return o
}

// finite returns the finite values in m.
func finite(m *mat.Dense) []float64 {
	r, c := m.Dims()
	o := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for _, v := range m.RawRowView(i) {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				o = append(o, v)
			}
		}
	}
	return o
}

// dataRange returns the finite range of m, widened to a unit interval
// when the field is constant.
func dataRange(m *mat.Dense) (min, max float64, err error) {
	v := finite(m)
	if len(v) == 0 {
		return 0, 0, fmt.Errorf("graphics: field has no finite values")
	}
	min, max = floats.Min(v), floats.Max(v)
	if min == max {
		min, max = min-0.5, max+0.5
	}
	return min, max, nil
}

// levels returns the sorted shading levels for m.
func levels(m *mat.Dense, levels []float64) ([]float64, error) {
	if len(levels) > 0 {
		if len(levels) < 2 {
			return nil, fmt.Errorf("graphics: at least two levels are needed, have %v", levels)
		}
		o := append([]float64(nil), levels...)
		sort.Float64s(o)
		return o, nil
	}
	min, max, err := dataRange(m)
	if err != nil {
		return nil, err
	}
	return floats.Span(make([]float64, 11), min, max), nil
}

// quantile returns quantile p (range [0,1]) of v.
func quantile(v []float64, p float64) float64 {
	tmp := append([]float64(nil), v...)
	sort.Float64s(tmp)
	i := int(p*float64(len(tmp))+0.5) - 1
	if i < 0 {
		i = 0
	}
	return tmp[i]
}

// Label returns the default color bar label of g.
func Label(g *stda.Grid) string {
	return fmt.Sprintf("%s(%s)", g.Attrs.String(stda.VarCNName), g.Attrs.String(stda.VarUnits))
}

func newPlot(g *stda.Grid, xdim, ydim string, opts Options) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("graphics: %v", err)
	}
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = g.Accessor().Describe()
	}
	p.X.Label.Text = xdim
	p.Y.Label.Text = ydim
	if isTime(g, xdim) {
		p.X.Tick.Marker = hourTicks()
	}
	if isTime(g, ydim) {
		p.Y.Tick.Marker = hourTicks()
	}
	return p, nil
}

func isTime(g *stda.Grid, dim string) bool {
	c, err := g.Accessor().Axis(dim)
	return err == nil && c.Kind == stda.Timestamp
}

// hourTicks labels axes whose values are hours since the Unix epoch.
func hourTicks() plot.Ticker {
	return plot.TimeTicks{
		Format: "01/02 15h",
		Time: func(v float64) time.Time {
			return time.Unix(int64(v*3600), 0).UTC()
		},
	}
}

func (o Options) label(g *stda.Grid) string {
	if o.Label != "" {
		return o.Label
	}
	return Label(g)
}

// Pcolormesh draws g as a continuous color mesh.
func Pcolormesh(g *stda.Grid, opts Options) (*Figure, error) {
	xdim, ydim := opts.dims()
	xyz, err := newGridXYZ(g, xdim, ydim)
	if err != nil {
		return nil, err
	}
	cm, err := Colormap(opts.Colormap)
	if err != nil {
		return nil, err
	}
	min, max, err := dataRange(xyz.z)
	if err != nil {
		return nil, err
	}
	if len(opts.Levels) > 0 {
		lv, err := levels(xyz.z, opts.Levels)
		if err != nil {
			return nil, err
		}
		min, max = lv[0], lv[len(lv)-1]
	}
	cm.SetMin(min)
	cm.SetMax(max)

	var cut float64
	if opts.HighCut > 0 && opts.HighCut < 1 {
		cut = quantile(finite(xyz.z), opts.HighCut)
		if cut > min && cut < max {
			over, err := moreland.NewLuminance([]color.Color{
				color.NRGBA{G: 176, A: 255},
				color.NRGBA{G: 255, A: 255},
			})
			if err != nil {
				return nil, fmt.Errorf("graphics: %v", err)
			}
			b := &plotextra.BrokenColorMap{
				Base:     cm,
				OverFlow: palette.Reverse(over),
			}
			b.SetMin(min)
			b.SetMax(max)
			b.SetHighCut(cut)
			cm = b
		} else {
			cut = 0
		}
	}

	p, err := newPlot(g, xdim, ydim, opts)
	if err != nil {
		return nil, err
	}
	h := plotter.NewHeatMap(&masked{xyz, min}, cm.Palette(255))
	h.Min, h.Max = min, max
	p.Add(h)

	f := &Figure{Plot: p}
	if !opts.NoColorBar {
		cb, err := ColorBar(g, cm, opts.label(g))
		if err != nil {
			return nil, err
		}
		if cut != 0 {
			cb.X.Scale = plotextra.BrokenScale{
				HighCut:         cut,
				HighCutFraction: 0.9,
			}
			cb.X.Tick.Marker = plotextra.BrokenTicks{
				HighCut: cut,
			}
		}
		f.ColorBar = cb
	}
	return f, nil
}

// masked hides non-finite values from the heat map by moving them
// below its range.
type masked struct {
	*gridXYZ
	min float64
}

func (m *masked) Z(c, r int) float64 {
	v := m.gridXYZ.Z(c, r)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return m.min - 1
	}
	return v
}

// binned replaces every value with the index of the level interval it
// falls in, so that unevenly spaced levels shade evenly.
type binned struct {
	*gridXYZ
	levels []float64
}

func (b *binned) Z(c, r int) float64 {
	v := b.gridXYZ.Z(c, r)
	if math.IsNaN(v) || v < b.levels[0] || v > b.levels[len(b.levels)-1] {
		return -1
	}
	i := sort.SearchFloat64s(b.levels, v)
	if i > 0 && (i == len(b.levels) || b.levels[i] != v) {
		i--
	}
	if i == len(b.levels)-1 {
		i--
	}
	return float64(i) + 0.5
}

// Contourf draws g as color-filled level intervals outlined by contour
// lines.
func Contourf(g *stda.Grid, opts Options) (*Figure, error) {
	xdim, ydim := opts.dims()
	xyz, err := newGridXYZ(g, xdim, ydim)
	if err != nil {
		return nil, err
	}
	lv, err := levels(xyz.z, opts.Levels)
	if err != nil {
		return nil, err
	}
	cm, err := Colormap(opts.Colormap)
	if err != nil {
		return nil, err
	}
	nbins := len(lv) - 1
	cm.SetMin(0)
	cm.SetMax(float64(nbins))
	pal := cm.Palette(nbins)

	p, err := newPlot(g, xdim, ydim, opts)
	if err != nil {
		return nil, err
	}
	h := plotter.NewHeatMap(&binned{xyz, lv}, pal)
	h.Min, h.Max = 0, float64(nbins)
	p.Add(h)
	p.Add(plotter.NewContour(&masked{xyz, lv[0]}, lv, constant{color.Black, len(lv)}))

	f := &Figure{Plot: p}
	if !opts.NoColorBar {
		cb, err := ColorBar(g, newPaletteMap(pal.Colors(), 0, float64(nbins)), opts.label(g))
		if err != nil {
			return nil, err
		}
		cb.X.Tick.Marker = levelTicks(lv)
		f.ColorBar = cb
	}
	return f, nil
}

// Contour draws contour lines of g at the given levels, colored by the
// colormap.
func Contour(g *stda.Grid, opts Options) (*Figure, error) {
	xdim, ydim := opts.dims()
	xyz, err := newGridXYZ(g, xdim, ydim)
	if err != nil {
		return nil, err
	}
	lv, err := levels(xyz.z, opts.Levels)
	if err != nil {
		return nil, err
	}
	cm, err := Colormap(opts.Colormap)
	if err != nil {
		return nil, err
	}
	cm.SetMin(lv[0])
	cm.SetMax(lv[len(lv)-1])

	p, err := newPlot(g, xdim, ydim, opts)
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewContour(&masked{xyz, lv[0]}, lv, cm.Palette(len(lv))))
	return &Figure{Plot: p}, nil
}

// constant is a palette of a single repeated color.
type constant struct {
	c color.Color
	n int
}

func (p constant) Colors() []color.Color {
	o := make([]color.Color, p.n)
	for i := range o {
		o[i] = p.c
	}
	return o
}

// levelTicks labels the boundaries of evenly spaced bins with the level
// values they stand for.
type levelTicks []float64

func (l levelTicks) Ticks(min, max float64) []plot.Tick {
	o := make([]plot.Tick, len(l))
	for i, v := range l {
		o[i] = plot.Tick{Value: float64(i), Label: fmt.Sprintf("%.3g", v)}
	}
	return o
}

// ColorBar returns a horizontal color bar for cm. An empty label is
// replaced by the default label of g.
func ColorBar(g *stda.Grid, cm palette.ColorMap, label string) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("graphics: %v", err)
	}
	p.Add(&plotter.ColorBar{ColorMap: cm})
	p.HideY()
	p.X.Padding = 0
	if label == "" {
		label = Label(g)
	}
	p.X.Label.Text = label
	return p, nil
}
