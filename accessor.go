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

package stda

import (
	"fmt"
	"time"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/mat"
)

// Accessor provides read-only views of a Grid. The coordinates it returns
// are copies that may be modified freely.
type Accessor struct {
	g *Grid
}

// NewAccessor returns an Accessor for g.
func NewAccessor(g *Grid) Accessor { return Accessor{g: g} }

// Accessor returns an Accessor for g.
func (g *Grid) Accessor() Accessor { return Accessor{g: g} }

// Grid returns the grid that a views.
func (a Accessor) Grid() *Grid { return a.g }

// Member returns the member coordinates.
func (a Accessor) Member() Coord { return a.g.Coords[Member].Copy() }

// Level returns the level coordinates.
func (a Accessor) Level() Coord { return a.g.Coords[Level].Copy() }

// Time returns the initialization time coordinates.
func (a Accessor) Time() Coord { return a.g.Coords[Time].Copy() }

// Dtime returns the forecast lead times, in hours.
func (a Accessor) Dtime() Coord { return a.g.Coords[Dtime].Copy() }

// Lat returns the latitude coordinates.
func (a Accessor) Lat() Coord { return a.g.Coords[Lat].Copy() }

// Lon returns the longitude coordinates.
func (a Accessor) Lon() Coord { return a.g.Coords[Lon].Copy() }

// FcstTime returns the valid time of every combination of initialization
// time and lead time, with initialization time varying slowest. Lead times
// are truncated to whole hours.
func (a Accessor) FcstTime() []time.Time {
	t, dt := a.Time(), a.Dtime()
	o := make([]time.Time, 0, t.Len()*dt.Len())
	for i := 0; i < t.Len(); i++ {
		init := t.Time(i)
		for j := 0; j < dt.Len(); j++ {
			o = append(o, init.Add(time.Duration(int64(dt.Float(j)))*time.Hour))
		}
	}
	return o
}

// Axis returns a copy of the coordinates of the named axis, which may be
// one of the canonical axes or FcstTime.
func (a Accessor) Axis(name string) (Coord, error) {
	if name == FcstTime {
		return Times(a.FcstTime()...), nil
	}
	ax, err := ParseAxis(name)
	if err != nil {
		return Coord{}, err
	}
	return a.g.Coords[ax].Copy(), nil
}

// resolve maps a requested dimension name to a canonical axis. FcstTime
// resolves to Dtime when there is a single initialization time and to
// Time otherwise. When both time and dtime have several values the choice
// of Time may not be the axis the caller meant.
func (a Accessor) resolve(name string) (Axis, error) {
	if name == FcstTime {
		if a.g.Len(Time) == 1 {
			return Dtime, nil
		}
		return Time, nil
	}
	return ParseAxis(name)
}

// Reduce2D returns the values of the grid as a matrix with one row per
// element of axis y and one column per element of axis x, after dropping
// all axes of length one. It returns ErrDimensionality unless exactly two
// axes have length greater than one and they are y and x. Either name may
// be FcstTime.
func (a Accessor) Reduce2D(y, x string) (*mat.Dense, error) {
	ya, err := a.resolve(y)
	if err != nil {
		return nil, err
	}
	xa, err := a.resolve(x)
	if err != nil {
		return nil, err
	}
	var remaining []Axis
	for _, ax := range Axes() {
		if a.g.Len(ax) > 1 {
			remaining = append(remaining, ax)
		}
	}
	if len(remaining) != 2 || ya == xa ||
		!((remaining[0] == ya && remaining[1] == xa) || (remaining[0] == xa && remaining[1] == ya)) {
		return nil, fmt.Errorf("stda: cannot reduce %v to (%s, %s) after dropping singleton axes (remaining %v): %w",
			a.g.Shape(), y, x, remaining, ErrDimensionality)
	}
	ny, nx := a.g.Len(ya), a.g.Len(xa)
	m := mat.NewDense(ny, nx, nil)
	var idx [NumAxes]int
	for i := 0; i < ny; i++ {
		idx[ya] = i
		for j := 0; j < nx; j++ {
			idx[xa] = j
			m.Set(i, j, a.g.At(idx))
		}
	}
	return m, nil
}

// Quantity is a matrix of values with physical units attached.
type Quantity struct {
	*mat.Dense

	// Units is the unit string of the values.
	Units string

	// Dimensions are the SI dimensions of Units.
	Dimensions unit.Dimensions
}

// Check returns an error if q does not have dimensions d.
func (q Quantity) Check(d unit.Dimensions) error {
	if !q.Dimensions.Matches(d) {
		return fmt.Errorf("stda: %s has dimensions %v, not %v", q.Units, q.Dimensions, d)
	}
	return nil
}

// Reduce2DUnits is like Reduce2D, but also attaches the grid's units.
// Grids without units are dimensionless.
func (a Accessor) Reduce2DUnits(reg Registry, y, x string) (Quantity, error) {
	m, err := a.Reduce2D(y, x)
	if err != nil {
		return Quantity{}, err
	}
	q := Quantity{Dense: m, Units: a.g.Attrs.String(VarUnits), Dimensions: unit.Dimless}
	if q.Units == "" {
		return q, nil
	}
	d, err := registry(reg).Dimensions(q.Units)
	if err != nil {
		return Quantity{}, fmt.Errorf("stda: attaching units: %v", err)
	}
	q.Dimensions = d
	return q, nil
}
