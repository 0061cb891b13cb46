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

package varreg

import (
	"fmt"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// Unit is an affine conversion from a unit to its SI base:
// si = value*Factor + Offset.
type Unit struct {
	Factor float64 `toml:"factor"`
	Offset float64 `toml:"offset"`
	// Dims holds the SI dimensions of the unit, keyed by the
	// github.com/ctessum/unit dimension symbols ("m", "kg", "s", "K", ...).
	Dims map[string]int `toml:"dims"`
}

// Dimensions returns the SI dimensions of u.
func (u Unit) Dimensions() unit.Dimensions {
	d := make(unit.Dimensions, len(u.Dims))
	for sym, pow := range u.Dims {
		if dim, ok := dimSymbols[sym]; ok && pow != 0 {
			d[dim] = pow
		}
	}
	return d
}

var dimSymbols = map[string]unit.Dimension{
	"A":   unit.CurrentDim,
	"m":   unit.LengthDim,
	"cd":  unit.LuminousIntensityDim,
	"kg":  unit.MassDim,
	"K":   unit.TemperatureDim,
	"s":   unit.TimeDim,
	"rad": unit.AngleDim,
}

func dimsOf(d unit.Dimensions) map[string]int {
	o := make(map[string]int, len(d))
	for dim, pow := range d {
		o[dim.String()] = pow
	}
	return o
}

func linear(factor float64, d unit.Dimensions) Unit {
	return Unit{Factor: factor, Dims: dimsOf(d)}
}

var (
	jPerKg    = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}
	perSecond = unit.Dimensions{unit.TimeDim: -1}
	paPerS    = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -3}
)

// builtinUnits are the units every registry knows about.
var builtinUnits = map[string]Unit{
	"K":    linear(1, unit.Kelvin),
	"C":    {Factor: 1, Offset: 273.15, Dims: dimsOf(unit.Kelvin)},
	"degC": {Factor: 1, Offset: 273.15, Dims: dimsOf(unit.Kelvin)},
	"F":    {Factor: 5. / 9., Offset: 273.15 - 32*5./9., Dims: dimsOf(unit.Kelvin)},

	"Pa":   linear(1, unit.Pascal),
	"hPa":  linear(100, unit.Pascal),
	"mb":   linear(100, unit.Pascal),
	"mbar": linear(100, unit.Pascal),
	"kPa":  linear(1000, unit.Pascal),

	"m":     linear(1, unit.Meter),
	"gpm":   linear(1, unit.Meter),
	"dagpm": linear(10, unit.Meter),
	"km":    linear(1000, unit.Meter),
	"cm":    linear(0.01, unit.Meter),
	"mm":    linear(0.001, unit.Meter),

	"m/s":   linear(1, unit.MeterPerSecond),
	"km/h":  linear(1/3.6, unit.MeterPerSecond),
	"knots": linear(1852./3600., unit.MeterPerSecond),
	"kt":    linear(1852./3600., unit.MeterPerSecond),

	"s":   linear(1, unit.Second),
	"min": linear(60, unit.Second),
	"h":   linear(3600, unit.Second),

	"Pa/s":  linear(1, paPerS),
	"hPa/s": linear(100, paPerS),
	"1/s":   linear(1, perSecond),
	"J/kg":  linear(1, jPerKg),

	"1":     linear(1, unit.Dimless),
	"%":     linear(0.01, unit.Dimless),
	"kg/kg": linear(1, unit.Dimless),
	"g/kg":  linear(0.001, unit.Dimless),
}

// Unit returns the named unit and whether it is known.
func (r *Registry) Unit(name string) (Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Dimensions returns the SI dimensions of the named unit.
func (r *Registry) Dimensions(name string) (unit.Dimensions, error) {
	u, ok := r.units[name]
	if !ok {
		return nil, fmt.Errorf("varreg: unknown unit %q", name)
	}
	return u.Dimensions(), nil
}

// Convert returns a copy of values converted from unit 'from' to unit 'to'.
// It returns an error if either unit is unknown or the units have
// different dimensions.
func (r *Registry) Convert(values []float64, from, to string) ([]float64, error) {
	uf, ok := r.units[from]
	if !ok {
		return nil, fmt.Errorf("varreg: unknown unit %q", from)
	}
	ut, ok := r.units[to]
	if !ok {
		return nil, fmt.Errorf("varreg: unknown unit %q", to)
	}
	df, dt := uf.Dimensions(), ut.Dimensions()
	if !df.Matches(dt) {
		return nil, fmt.Errorf("varreg: cannot convert %s (%s) to %s (%s)", from, df, to, dt)
	}
	out := make([]float64, len(values))
	copy(out, values)
	if from == to {
		return out, nil
	}
	// v_to = (v_from*f_from + o_from - o_to) / f_to
	scale := uf.Factor / ut.Factor
	shift := (uf.Offset - ut.Offset) / ut.Factor
	floats.Scale(scale, out)
	if shift != 0 {
		floats.AddConst(shift, out)
	}
	return out, nil
}
