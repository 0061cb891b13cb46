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
	"github.com/spf13/cast"
)

// Standard attribute keys.
const (
	VarName    = "var_name"
	VarCNName  = "var_cn_name"
	VarUnits   = "var_units"
	DataSource = "data_source"
	DataName   = "data_name"
	LevelType  = "level_type"
	ValidTime  = "valid_time"
)

// Attrs is the attribute bag attached to a grid. VarName, VarCNName and
// VarUnits are always present on grids created by this package; VarUnits
// always names the unit the values are expressed in.
type Attrs map[string]interface{}

// String returns the value of key converted to a string, or "" if it is
// not set.
func (a Attrs) String(key string) string {
	return cast.ToString(a[key])
}

// Int returns the value of key converted to an int, or 0 if it is not
// set or not numeric.
func (a Attrs) Int(key string) int {
	return cast.ToInt(a[key])
}

// Copy returns a shallow copy of a.
func (a Attrs) Copy() Attrs {
	o := make(Attrs, len(a))
	for k, v := range a {
		o[k] = v
	}
	return o
}

// BuildAttrs returns the attribute bag for variable varName. The display
// name and units come from the registry, or are empty if the variable is
// not registered. Values in extra take precedence over the registry
// defaults, except for VarName, which is always varName, and VarUnits,
// which is always set to the registry's canonical unit here and finalized
// by NormalizeUnits when data are converted.
func BuildAttrs(reg Registry, varName string, extra Attrs) Attrs {
	reg = registry(reg)
	a := make(Attrs, len(extra)+3)
	var cn, units string
	if v, ok := reg.Lookup(varName); ok {
		cn, units = v.CNName, v.Units
	}
	a[VarCNName] = cn
	for k, v := range extra {
		a[k] = v
	}
	a[VarName] = varName
	a[VarCNName] = cast.ToString(a[VarCNName])
	a[VarUnits] = units
	return a
}
