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
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Line is one named time series.
type Line struct {
	Label  string
	Times  []time.Time
	Values []float64
}

// Series returns a line plot of the given series against forecast time.
// Missing values are skipped.
func Series(title, ylabel string, lines ...Line) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("graphics: %v", err)
	}
	p.Title.Text = title
	p.X.Label.Text = "fcst_time"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "01/02 15h"}
	p.Add(plotter.NewGrid())

	for i, l := range lines {
		if len(l.Times) != len(l.Values) {
			return nil, fmt.Errorf("graphics: series %q has %d times but %d values",
				l.Label, len(l.Times), len(l.Values))
		}
		var n int
		for _, v := range l.Values {
			if !math.IsNaN(v) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		xys := make(plotter.XYs, n)
		n = 0
		for j, t := range l.Times {
			if math.IsNaN(l.Values[j]) {
				continue
			}
			xys[n].X = float64(t.Unix())
			xys[n].Y = l.Values[j]
			n++
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("graphics: series %q: %v", l.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		if l.Label != "" {
			p.Legend.Add(l.Label, line, points)
		}
	}
	return p, nil
}
