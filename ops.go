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
)

// Sub returns a - b. The grids must have the same shape; the result has
// the coordinates and attributes of a.
func Sub(a, b *Grid) (*Grid, error) {
	if a.Shape() != b.Shape() {
		return nil, fmt.Errorf("stda: cannot subtract grid of shape %v from %v: %w", b.Shape(), a.Shape(), ErrShapeMismatch)
	}
	o := a.Copy()
	for i, v := range b.Data.Elements {
		o.Data.Elements[i] -= v
	}
	return o, nil
}

// SumAxis returns the sum of g along axis ax. In the result ax has length
// one and the coordinate c, which must hold a single value.
func (g *Grid) SumAxis(ax Axis, c Coord) (*Grid, error) {
	if c.Len() != 1 {
		return nil, fmt.Errorf("stda: summed %s axis needs 1 coordinate, not %d: %w", ax, c.Len(), ErrShapeMismatch)
	}
	shape := g.Shape()
	n := shape[ax]
	shape[ax] = 1
	o := &Grid{Data: newDense(shape), Attrs: g.Attrs.Copy()}
	for i, cc := range g.Coords {
		o.Coords[i] = cc.Copy()
	}
	o.Coords[ax] = c.Copy()

	inner := 1
	for a := int(ax) + 1; a < NumAxes; a++ {
		inner *= shape[a]
	}
	for i, v := range g.Data.Elements {
		outer := i / (inner * n)
		o.Data.Elements[outer*inner+i%inner] += v
	}
	return o, nil
}

// Concat joins grids along axis ax. All other axes must have the same
// lengths. The result has the attributes and other coordinates of the
// first grid.
func Concat(ax Axis, grids ...*Grid) (*Grid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("stda: no grids to join: %w", ErrShapeMismatch)
	}
	shape := grids[0].Shape()
	c := grids[0].Coords[ax].Copy()
	for _, g := range grids[1:] {
		s := g.Shape()
		for _, a := range Axes() {
			if a != ax && s[a] != shape[a] {
				return nil, fmt.Errorf("stda: cannot join grids along %s: %s lengths %d and %d differ: %w",
					ax, a, shape[a], s[a], ErrShapeMismatch)
			}
		}
		shape[ax] += s[ax]
		var err error
		if c, err = appendCoord(c, g.Coords[ax]); err != nil {
			return nil, err
		}
	}

	o := &Grid{Data: newDense(shape), Attrs: grids[0].Attrs.Copy()}
	for i, cc := range grids[0].Coords {
		o.Coords[i] = cc.Copy()
	}
	o.Coords[ax] = c

	inner := 1
	for a := int(ax) + 1; a < NumAxes; a++ {
		inner *= shape[a]
	}
	outerN := len(o.Data.Elements) / (inner * shape[ax])
	pos := 0
	for _, g := range grids {
		chunk := g.Len(ax) * inner
		for outer := 0; outer < outerN; outer++ {
			copy(o.Data.Elements[outer*shape[ax]*inner+pos:], g.Data.Elements[outer*chunk:(outer+1)*chunk])
		}
		pos += chunk
	}
	return o, nil
}

// Select returns the slice of g at index i of axis ax. In the result ax
// has length one.
func (g *Grid) Select(ax Axis, i int) (*Grid, error) {
	n := g.Len(ax)
	if i < 0 || i >= n {
		return nil, fmt.Errorf("stda: index %d out of range for %s axis of length %d: %w", i, ax, n, ErrShapeMismatch)
	}
	shape := g.Shape()
	shape[ax] = 1
	o := &Grid{Data: newDense(shape), Attrs: g.Attrs.Copy()}
	for a, c := range g.Coords {
		o.Coords[a] = c.Copy()
	}
	o.Coords[ax] = g.Coords[ax].Slice(i, i+1)

	inner := 1
	for a := int(ax) + 1; a < NumAxes; a++ {
		inner *= shape[a]
	}
	for outer := 0; outer < len(o.Data.Elements)/inner; outer++ {
		src := (outer*n + i) * inner
		copy(o.Data.Elements[outer*inner:(outer+1)*inner], g.Data.Elements[src:src+inner])
	}
	return o, nil
}
