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

import "fmt"

// likeShape returns a zeroed grid with the shape and coordinates of t.
func likeShape(t *Grid) *Grid {
	g := &Grid{Data: newDense(t.Shape())}
	for i, c := range t.Coords {
		g.Coords[i] = c.Copy()
	}
	return g
}

// FullLike returns a grid with the shape and coordinates of template,
// every element set to fill, and the attributes of variable varName
// merged with extra. If extra sets VarUnits, fill is taken to be in that
// unit and is converted to the canonical unit of the variable.
func FullLike(reg Registry, template *Grid, fill float64, varName string, extra Attrs) *Grid {
	g := likeShape(template)
	v, units := NormalizeUnits(reg, []float64{fill}, extra.String(VarUnits), varName)
	for i := range g.Data.Elements {
		g.Data.Elements[i] = v[0]
	}
	g.Attrs = BuildAttrs(reg, varName, extra)
	g.Attrs[VarUnits] = units
	return g
}

// FullLikeByLevels returns a grid with the shape and coordinates of
// template where every element on level k equals levels[k]. varName
// defaults to "pres". Units are handled as in FullLike. It returns
// ErrLengthMismatch if the number of values differs from the number of
// levels of template.
func FullLikeByLevels(reg Registry, template *Grid, levels []float64, varName string, extra Attrs) (*Grid, error) {
	if varName == "" {
		varName = "pres"
	}
	if err := checkLevels(template, levels); err != nil {
		return nil, err
	}
	g := likeShape(template)
	v, units := NormalizeUnits(reg, levels, extra.String(VarUnits), varName)
	g.fillLevels(v)
	g.Attrs = BuildAttrs(reg, varName, extra)
	g.Attrs[VarUnits] = units
	return g, nil
}

// FillByLevels sets every element of g on level k to levels[k], which
// must be in the canonical units of varName, and relabels g as variable
// varName. Attributes other than the variable name, display name and
// units are kept. It returns ErrLengthMismatch if the number of values
// differs from the number of levels of g.
func (g *Grid) FillByLevels(reg Registry, levels []float64, varName string) error {
	if err := checkLevels(g, levels); err != nil {
		return err
	}
	g.fillLevels(levels)
	extra := g.Attrs.Copy()
	delete(extra, VarName)
	delete(extra, VarCNName)
	delete(extra, VarUnits)
	g.Attrs = BuildAttrs(reg, varName, extra)
	return nil
}

func checkLevels(g *Grid, levels []float64) error {
	if len(levels) != g.Len(Level) {
		return fmt.Errorf("stda: %d values for %d levels: %w", len(levels), g.Len(Level), ErrLengthMismatch)
	}
	return nil
}

func (g *Grid) fillLevels(levels []float64) {
	s := g.Shape()
	// Number of contiguous elements per level.
	block := s[Time] * s[Dtime] * s[Lat] * s[Lon]
	for i := range g.Data.Elements {
		g.Data.Elements[i] = levels[(i/block)%s[Level]]
	}
}
