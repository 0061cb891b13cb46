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
	"github.com/ctessum/unit"
	"github.com/metdig/stda/varreg"
	"github.com/sirupsen/logrus"
)

// Registry provides variable metadata and unit conversions.
// *varreg.Registry implements Registry.
type Registry interface {
	// Lookup returns the registered variable with the given name.
	Lookup(varName string) (varreg.Variable, bool)

	// Convert returns a copy of values converted between two units.
	Convert(values []float64, from, to string) ([]float64, error)

	// Dimensions returns the SI dimensions of a unit.
	Dimensions(units string) (unit.Dimensions, error)
}

// registry returns reg, or the built-in registry if reg is nil.
func registry(reg Registry) Registry {
	if reg == nil {
		return varreg.Default()
	}
	return reg
}

// Log receives warnings about data that could not be converted to
// canonical units.
var Log logrus.FieldLogger = logrus.StandardLogger()

// NormalizeUnits converts values of variable varName from the declared
// unit to the variable's canonical unit. It returns the (possibly new)
// values and the unit they are expressed in.
//
// An empty declared unit means the values are already in canonical
// units. If the variable is not registered, or the declared unit cannot be
// converted to the canonical unit, values are returned unchanged along
// with the declared unit, and a warning is logged for the latter case.
// The input slice is never modified.
func NormalizeUnits(reg Registry, values []float64, declared, varName string) ([]float64, string) {
	reg = registry(reg)
	v, ok := reg.Lookup(varName)
	if !ok || v.Units == "" {
		return values, declared
	}
	if declared == "" || declared == v.Units {
		return values, v.Units
	}
	out, err := reg.Convert(values, declared, v.Units)
	if err != nil {
		Log.WithFields(logrus.Fields{
			"var":      varName,
			"declared": declared,
			"target":   v.Units,
		}).Warnf("stda: leaving values unconverted: %v", err)
		return values, declared
	}
	return out, v.Units
}
