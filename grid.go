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

	"github.com/ctessum/sparse"
)

// Grid is a canonical six-axis tensor. Data is stored in row-major order
// with the axes in the order given by Axes, and the length of each
// coordinate sequence equals the length of the corresponding axis.
//
// A Grid should be treated as a value once it has been created. The only
// method that modifies a grid in place is FillByLevels.
type Grid struct {
	Data   *sparse.DenseArray
	Coords [NumAxes]Coord
	Attrs  Attrs
}

// Shape returns the length of each axis.
func (g *Grid) Shape() [NumAxes]int {
	var s [NumAxes]int
	copy(s[:], g.Data.Shape)
	return s
}

// Len returns the length of axis a.
func (g *Grid) Len(a Axis) int { return g.Data.Shape[a] }

// Values returns the underlying data buffer in storage order.
func (g *Grid) Values() []float64 { return g.Data.Elements }

// At returns the value at the given index.
func (g *Grid) At(idx [NumAxes]int) float64 {
	return g.Data.Elements[g.offset(idx)]
}

// Set sets the value at the given index.
func (g *Grid) Set(v float64, idx [NumAxes]int) {
	g.Data.Elements[g.offset(idx)] = v
}

func (g *Grid) offset(idx [NumAxes]int) int {
	off, stride := 0, 1
	for a := NumAxes - 1; a >= 0; a-- {
		off += idx[a] * stride
		stride *= g.Data.Shape[a]
	}
	return off
}

// Copy returns a deep copy of g.
func (g *Grid) Copy() *Grid {
	o := &Grid{
		Data:  newDense(g.Shape()),
		Attrs: g.Attrs.Copy(),
	}
	copy(o.Data.Elements, g.Data.Elements)
	for i, c := range g.Coords {
		o.Coords[i] = c.Copy()
	}
	return o
}

// Name returns the variable name of g.
func (g *Grid) Name() string { return g.Attrs.String(VarName) }

func (g *Grid) String() string {
	s := g.Shape()
	return fmt.Sprintf("stda.Grid{%s [%s] member:%d level:%d time:%d dtime:%d lat:%d lon:%d}",
		g.Name(), g.Attrs.String(VarUnits), s[Member], s[Level], s[Time], s[Dtime], s[Lat], s[Lon])
}

// check returns an error if the coordinates of g do not match its shape.
func (g *Grid) check() error {
	if len(g.Data.Shape) != NumAxes {
		return fmt.Errorf("stda: grid has %d dimensions instead of %d: %w", len(g.Data.Shape), NumAxes, ErrShapeMismatch)
	}
	for _, a := range Axes() {
		if n := g.Coords[a].Len(); n != g.Len(a) {
			return fmt.Errorf("stda: %s axis has length %d but %d coordinates: %w", a, g.Len(a), n, ErrShapeMismatch)
		}
	}
	return nil
}

// newDense returns a zeroed array with the given shape. The shape slice is
// owned by the returned array.
func newDense(shape [NumAxes]int) *sparse.DenseArray {
	s := make([]int, NumAxes)
	copy(s, shape[:])
	return sparse.ZerosDense(s...)
}

// Labeled is a raw array with named dimensions, as read from a file or
// produced by another library. Coords may hold coordinate sequences for
// any of the dimensions as well as auxiliary coordinates that are not
// dimensions; the latter are dropped during canonicalization.
type Labeled struct {
	Data   *sparse.DenseArray
	Dims   []string
	Coords map[string]Coord
}
