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

// Options control how a raw array is converted into a Grid.
type Options struct {
	// Dims gives the raw dimension name of each canonical axis. It is only
	// used by FromLabeled.
	Dims DimMap

	// Coords holds coordinate overrides. An override that is empty or
	// holds a single NaN is ignored. Otherwise it must have the length of
	// the axis, unless the axis is missing from the raw data, in which
	// case the override sets both the length and the coordinates of the
	// synthesized axis and the data are repeated along it.
	Coords [NumAxes]Coord

	// Units is the unit the raw values are expressed in. If it is empty,
	// the VarUnits entry of Attrs is used instead, and if that is also
	// empty the values are assumed to be in canonical units.
	Units string

	// VarName is the variable name. If it is empty, the VarName entry of
	// Attrs is used.
	VarName string

	// Attrs holds extra attributes for the grid.
	Attrs Attrs
}

func (o Options) varName() string {
	if o.VarName != "" {
		return o.VarName
	}
	return o.Attrs.String(VarName)
}

func (o Options) units() string {
	if o.Units != "" {
		return o.Units
	}
	return o.Attrs.String(VarUnits)
}

// FromLabeled converts a raw labeled array into a Grid. Raw dimensions are
// renamed according to opts.Dims, axes missing from the raw array are
// added with length one and coordinate [0], coordinate overrides are
// applied, the data are reordered into canonical axis order and
// coordinates that are not dimensions are dropped. The values are then
// converted to canonical units and the attribute bag is built.
//
// Every raw dimension must correspond to exactly one canonical axis.
func FromLabeled(reg Registry, raw *Labeled, opts Options) (*Grid, error) {
	if raw == nil || raw.Data == nil {
		return nil, fmt.Errorf("stda: no data: %w", ErrShapeMismatch)
	}
	if len(raw.Dims) != len(raw.Data.Shape) {
		return nil, fmt.Errorf("stda: data has %d dimensions but %d dimension names: %w",
			len(raw.Data.Shape), len(raw.Dims), ErrShapeMismatch)
	}
	if n := size(raw.Data.Shape); n != len(raw.Data.Elements) {
		return nil, fmt.Errorf("stda: shape %v implies %d values but there are %d: %w",
			raw.Data.Shape, n, len(raw.Data.Elements), ErrShapeMismatch)
	}

	var src [NumAxes]int
	used := make(map[string]Axis, NumAxes)
	for _, a := range Axes() {
		name := opts.Dims.Name(a)
		if prev, ok := used[name]; ok {
			return nil, fmt.Errorf("stda: dimension %q is mapped to both %s and %s: %w", name, prev, a, ErrInvalidDimensionName)
		}
		used[name] = a
		src[a] = -1
		for k, d := range raw.Dims {
			if d == name {
				src[a] = k
				break
			}
		}
	}
	seen := make(map[string]bool, len(raw.Dims))
	for _, d := range raw.Dims {
		if seen[d] {
			return nil, fmt.Errorf("stda: duplicate dimension %q: %w", d, ErrInvalidDimensionName)
		}
		seen[d] = true
		if _, ok := used[d]; !ok {
			return nil, fmt.Errorf("stda: dimension %q does not correspond to any of %v: %w", d, axisNames, ErrInvalidDimensionName)
		}
	}

	var (
		shape  [NumAxes]int
		coords [NumAxes]Coord
	)
	for _, a := range Axes() {
		override := opts.Coords[a]
		k := src[a]
		if k < 0 {
			c := placeholder()
			if !override.null() {
				c = override.Copy()
			}
			coords[a], shape[a] = c, c.Len()
			continue
		}
		n := raw.Data.Shape[k]
		if n == 0 {
			return nil, fmt.Errorf("stda: dimension %q has length zero: %w", raw.Dims[k], ErrShapeMismatch)
		}
		c, ok := raw.Coords[raw.Dims[k]]
		if !ok {
			c = Index(n)
		}
		if !override.null() {
			c = override
		}
		if c.Len() != n {
			return nil, fmt.Errorf("stda: %s axis has length %d but %d coordinates: %w", a, n, c.Len(), ErrShapeMismatch)
		}
		coords[a], shape[a] = c.Copy(), n
	}
	return finish(reg, reorder(raw.Data, src, shape), coords, opts)
}

// FromDense converts data, whose dimensions are named by dims using
// canonical axis names, into a Grid. Dimensions without a coordinate
// override get the coordinates 0, 1, ..., n-1.
func FromDense(reg Registry, data *sparse.DenseArray, dims []string, opts Options) (*Grid, error) {
	if data == nil {
		return nil, fmt.Errorf("stda: no data: %w", ErrShapeMismatch)
	}
	if len(dims) != len(data.Shape) {
		return nil, fmt.Errorf("stda: data has %d dimensions but %d dimension names: %w",
			len(data.Shape), len(dims), ErrShapeMismatch)
	}
	raw := &Labeled{
		Data:   data,
		Dims:   dims,
		Coords: make(map[string]Coord, len(dims)),
	}
	for i, d := range dims {
		a, err := ParseAxis(d)
		if err != nil {
			return nil, err
		}
		if _, ok := raw.Coords[d]; ok {
			return nil, fmt.Errorf("stda: duplicate dimension %q: %w", d, ErrInvalidDimensionName)
		}
		if c := opts.Coords[a]; !c.null() {
			raw.Coords[d] = c
		} else {
			raw.Coords[d] = Index(data.Shape[i])
		}
	}
	opts.Dims = DimMap{}
	return FromLabeled(reg, raw, opts)
}

// New creates a Grid from data that already has the six canonical
// dimensions in canonical order. Empty entries in coords fall back to
// opts.Coords and then to index coordinates.
func New(reg Registry, data *sparse.DenseArray, coords [NumAxes]Coord, opts Options) (*Grid, error) {
	for i, c := range coords {
		if !c.null() {
			opts.Coords[i] = c
		}
	}
	return FromDense(reg, data, axisNames[:], opts)
}

// finish converts units, builds attributes and checks the result.
func finish(reg Registry, data *sparse.DenseArray, coords [NumAxes]Coord, opts Options) (*Grid, error) {
	reg = registry(reg)
	varName := opts.varName()
	attrs := BuildAttrs(reg, varName, opts.Attrs)
	vals, units := NormalizeUnits(reg, data.Elements, opts.units(), varName)
	data.Elements = vals
	attrs[VarUnits] = units
	g := &Grid{Data: data, Coords: coords, Attrs: attrs}
	if err := g.check(); err != nil {
		return nil, err
	}
	return g, nil
}

// reorder copies data into a new array with the canonical axis order.
// src[a] is the dimension of data that holds axis a, or -1 if the axis is
// missing, in which case values are repeated along it.
func reorder(data *sparse.DenseArray, src [NumAxes]int, shape [NumAxes]int) *sparse.DenseArray {
	strides := make([]int, len(data.Shape))
	stride := 1
	for k := len(data.Shape) - 1; k >= 0; k-- {
		strides[k] = stride
		stride *= data.Shape[k]
	}
	out := newDense(shape)
	var idx [NumAxes]int
	for i := range out.Elements {
		off := 0
		for a, k := range src {
			if k >= 0 {
				off += idx[a] * strides[k]
			}
		}
		out.Elements[i] = data.Elements[off]
		for a := NumAxes - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < shape[a] {
				break
			}
			idx[a] = 0
		}
	}
	return out
}

func size(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
