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

// Package varreg holds the table of known meteorological variables,
// their display names and canonical units, along with the physical unit
// conversions between compatible units.
//
// A Registry is immutable once it has been created and may be shared
// between goroutines without locking.
package varreg

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Variable describes a registered variable.
type Variable struct {
	// Name is the short variable name, e.g. "tmp".
	Name string `toml:"-"`
	// CNName is the display name used to build plot labels.
	CNName string `toml:"cn_name"`
	// Units is the canonical unit that values of this variable are
	// expressed in.
	Units string `toml:"units"`
}

// Registry is a read-only table of variables and units.
type Registry struct {
	vars  map[string]Variable
	units map[string]Unit
}

// file is the on-disk TOML layout of a registry.
type file struct {
	Vars  map[string]Variable `toml:"vars"`
	Units map[string]Unit     `toml:"units"`
}

// New reads a registry from TOML data in r. Units listed in r are
// added to the built-in unit table; variables listed in r are the only
// variables in the returned registry.
func New(r io.Reader) (*Registry, error) {
	var f file
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("varreg: decoding registry: %v", err)
	}
	return build(f)
}

func build(f file) (*Registry, error) {
	reg := &Registry{
		vars:  make(map[string]Variable, len(f.Vars)),
		units: make(map[string]Unit, len(builtinUnits)+len(f.Units)),
	}
	for name, u := range builtinUnits {
		reg.units[name] = u
	}
	for name, u := range f.Units {
		if u.Factor == 0 {
			return nil, fmt.Errorf("varreg: unit %q has a zero conversion factor", name)
		}
		reg.units[name] = u
	}
	for name, v := range f.Vars {
		if v.Units != "" {
			if _, ok := reg.units[v.Units]; !ok {
				return nil, fmt.Errorf("varreg: variable %q has unknown units %q", name, v.Units)
			}
		}
		v.Name = name
		reg.vars[name] = v
	}
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the built-in registry. It is created on first use
// and never modified afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		var err error
		defaultReg, err = New(strings.NewReader(builtinVars))
		if err != nil {
			panic(err)
		}
	})
	return defaultReg
}

// Lookup returns the variable with the given name and whether it is
// registered.
func (r *Registry) Lookup(name string) (Variable, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// Names returns the sorted names of all registered variables.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.vars))
	for n := range r.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// builtinVars is the default variable table.
const builtinVars = `
[vars.tmp]
cn_name = "温度"
units = "C"

[vars.t2m]
cn_name = "2米温度"
units = "C"

[vars.td]
cn_name = "露点温度"
units = "C"

[vars.td2m]
cn_name = "2米露点温度"
units = "C"

[vars.theta]
cn_name = "位温"
units = "K"

[vars.thetae]
cn_name = "相当位温"
units = "K"

[vars.hgt]
cn_name = "位势高度"
units = "gpm"

[vars.u]
cn_name = "u风"
units = "m/s"

[vars.v]
cn_name = "v风"
units = "m/s"

[vars.u10m]
cn_name = "10米u风"
units = "m/s"

[vars.v10m]
cn_name = "10米v风"
units = "m/s"

[vars.wsp]
cn_name = "风速"
units = "m/s"

[vars.gust10m]
cn_name = "10米阵风"
units = "m/s"

[vars.vvel]
cn_name = "垂直速度"
units = "Pa/s"

[vars.div]
cn_name = "散度"
units = "1/s"

[vars.vort]
cn_name = "涡度"
units = "1/s"

[vars.rh]
cn_name = "相对湿度"
units = "%"

[vars.rh2m]
cn_name = "2米相对湿度"
units = "%"

[vars.spfh]
cn_name = "比湿"
units = "g/kg"

[vars.pres]
cn_name = "气压"
units = "hPa"

[vars.psfc]
cn_name = "地面气压"
units = "hPa"

[vars.prmsl]
cn_name = "海平面气压"
units = "hPa"

[vars.pwat]
cn_name = "整层可降水量"
units = "mm"

[vars.tcdc]
cn_name = "总云量"
units = "%"

[vars.tpe]
cn_name = "累计降水"
units = "mm"

[vars.rain01]
cn_name = "1小时降水"
units = "mm"

[vars.rain03]
cn_name = "3小时降水"
units = "mm"

[vars.rain06]
cn_name = "6小时降水"
units = "mm"

[vars.rain12]
cn_name = "12小时降水"
units = "mm"

[vars.rain24]
cn_name = "24小时降水"
units = "mm"

[vars.vis]
cn_name = "能见度"
units = "km"

[vars.cape]
cn_name = "对流有效位能"
units = "J/kg"
`
