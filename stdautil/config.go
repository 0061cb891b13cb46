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


package stdautil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/metdig/stda"
	"github.com/metdig/stda/cache"
	"github.com/metdig/stda/graphics"
	"github.com/metdig/stda/varreg"
	"github.com/spf13/cast"
)

// loadRegistry returns the variable registry stored at path, or the
// built-in registry if path is empty.
func loadRegistry(path string) (*varreg.Registry, error) {
	if path == "" {
		return varreg.Default(), nil
	}
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("stda: opening registry: %v", err)
	}
	defer f.Close()
	return varreg.New(f)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case nil:
		return map[string]string{}
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(fmt.Errorf("stda: invalid value for %s: %v", varName, err))
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i))
	}
}

// dimMap converts a map from canonical to raw dimension names.
func dimMap(m map[string]string) (stda.DimMap, error) {
	var d stda.DimMap
	for canonical, raw := range m {
		ax, err := stda.ParseAxis(canonical)
		if err != nil {
			return d, err
		}
		d[ax] = raw
	}
	return d, nil
}

func attrs(m map[string]string) stda.Attrs {
	a := make(stda.Attrs, len(m))
	for k, v := range m {
		a[k] = os.ExpandEnv(v)
	}
	return a
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("stda: you need to specify an output file (for example: --output=out.nc)")
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("stda: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// stringList returns the elements of a list option, which may have been
// given as a slice, a comma-separated string or a bracketed flag value.
func stringList(v interface{}) ([]string, error) {
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, err
	}
	var o []string
	for _, e := range s {
		e = strings.Trim(e, "[] ")
		for _, f := range strings.Split(e, ",") {
			if f = strings.TrimSpace(f); f != "" {
				o = append(o, f)
			}
		}
	}
	return o, nil
}

func floatList(v interface{}) ([]float64, error) {
	s, err := stringList(v)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(s))
	for i, e := range s {
		if o[i], err = cast.ToFloat64E(e); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// parseExtent parses lon0,lon1,lat0,lat1.
func parseExtent(v interface{}) (geom.Bounds, error) {
	e, err := floatList(v)
	if err != nil {
		return geom.Bounds{}, fmt.Errorf("stda: invalid extent: %v", err)
	}
	if len(e) != 4 {
		return geom.Bounds{}, fmt.Errorf("stda: extent needs 4 values (lon0,lon1,lat0,lat1), have %v", e)
	}
	return geom.Bounds{
		Min: geom.Point{X: e[0], Y: e[2]},
		Max: geom.Point{X: e[1], Y: e[3]},
	}, nil
}

var compactLayouts = []string{"2006010215", "200601021504", "06010215", "2006-01-02 15:04"}

// parseTime parses a model initialization time. Times without a zone
// are UTC.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("stda: you need to specify an initialization time (for example: --init=2021060108)")
	}
	for _, l := range compactLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stda: invalid time %q: %v", s, err)
	}
	return t.UTC(), nil
}

// parseInputs parses name=path arguments.
func parseInputs(args []string) (map[string]string, error) {
	o := make(map[string]string, len(args))
	for _, a := range args {
		i := strings.Index(a, "=")
		if i <= 0 || i == len(a)-1 {
			return nil, fmt.Errorf("stda: input %q is not of the form name=path", a)
		}
		o[a[:i]] = os.ExpandEnv(a[i+1:])
	}
	return o, nil
}

func plotOptions(cfg *viper.Viper) (graphics.Options, error) {
	levels, err := floatList(cfg.Get("levels"))
	if err != nil {
		return graphics.Options{}, fmt.Errorf("stda: invalid levels: %v", err)
	}
	return graphics.Options{
		XDim:     cfg.GetString("xdim"),
		YDim:     cfg.GetString("ydim"),
		Colormap: cfg.GetString("cmap"),
		Levels:   levels,
		Label:    cfg.GetString("label"),
		Title:    cfg.GetString("title"),
		HighCut:  cfg.GetFloat64("highcut"),
	}, nil
}

func cacheDir() (string, error) {
	return cache.DefaultDir(os.ExpandEnv(Cfg.GetString("cache.dir")))
}
