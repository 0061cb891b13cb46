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


// Package station extracts and summarizes point time series from
// canonical grids.
package station

import (
	"fmt"
	"math"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/metdig/stda"
)

// Series is the forecast time series of one variable at one point.
type Series struct {
	// Name is the variable name.
	Name string

	// Label is the display label, "<var_cn_name>(<var_units>)".
	Label string

	// Lon and Lat locate the point.
	Lon, Lat float64

	Times  []time.Time
	Values []float64
}

// FromGrid returns the series held in g, which must have a single point
// and member and level, and vary along at most one of the time and
// dtime axes.
func FromGrid(g *stda.Grid) (Series, error) {
	var varying []stda.Axis
	for _, ax := range stda.Axes() {
		if g.Len(ax) == 1 {
			continue
		}
		if ax != stda.Time && ax != stda.Dtime {
			return Series{}, fmt.Errorf("station: %s axis has length %d; select a single point first: %w",
				ax, g.Len(ax), stda.ErrDimensionality)
		}
		varying = append(varying, ax)
	}
	if len(varying) > 1 {
		return Series{}, fmt.Errorf("station: both time and dtime vary (shape %v): %w",
			g.Shape(), stda.ErrDimensionality)
	}
	a := g.Accessor()
	return Series{
		Name:   g.Name(),
		Label:  fmt.Sprintf("%s(%s)", g.Attrs.String(stda.VarCNName), g.Attrs.String(stda.VarUnits)),
		Lon:    a.Lon().Float(0),
		Lat:    a.Lat().Float(0),
		Times:  a.FcstTime(),
		Values: append([]float64(nil), g.Values()...),
	}, nil
}

// Nearest returns the column of g at the grid point closest to
// (lon, lat).
func Nearest(g *stda.Grid, lon, lat float64) (*stda.Grid, error) {
	a := g.Accessor()
	o, err := g.Select(stda.Lon, closest(a.Lon(), lon))
	if err != nil {
		return nil, fmt.Errorf("station: %v", err)
	}
	o, err = o.Select(stda.Lat, closest(a.Lat(), lat))
	if err != nil {
		return nil, fmt.Errorf("station: %v", err)
	}
	return o, nil
}

func closest(c stda.Coord, v float64) int {
	best, d := 0, math.Inf(1)
	for i, f := range c.Floats() {
		if dd := math.Abs(f - v); dd < d {
			best, d = i, dd
		}
	}
	return best
}

// Summary holds descriptive statistics of the finite values of a series.
type Summary struct {
	Count               int
	Min, Max, Mean, Std float64
}

// Summarize computes statistics over the finite values in v. Std is the
// sample standard deviation and is zero for fewer than two values.
// Statistics of an empty set are NaN.
func Summarize(v []float64) Summary {
	f := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			f = append(f, x)
		}
	}
	s := Summary{Count: len(f)}
	switch len(f) {
	case 0:
		s.Min, s.Max, s.Mean, s.Std = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	case 1:
	default:
		s.Std = stats.StatsSampleStandardDeviation(f)
	}
	s.Min = stats.StatsMin(f)
	s.Max = stats.StatsMax(f)
	s.Mean = stats.StatsMean(f)
	return s
}

// Summary returns the statistics of the series values.
func (s Series) Summary() Summary { return Summarize(s.Values) }

func (s Summary) String() string {
	return fmt.Sprintf("n=%d min=%.4g max=%.4g mean=%.4g std=%.4g", s.Count, s.Min, s.Max, s.Mean, s.Std)
}
