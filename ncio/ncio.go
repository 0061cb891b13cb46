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

// Package ncio reads and writes gridded data in the netCDF classic format.
package ncio

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/metdig/stda"
	"github.com/spf13/cast"
)

// labelsAttr holds the comma-separated labels of a string coordinate.
const labelsAttr = "labels"

// epochUnits are the units of the time coordinate in files written by Write.
const epochUnits = "hours since 1970-01-01 00:00:00"

// ReadVar reads variable varName from the netCDF file in rw, along with
// the coordinate variables of its dimensions, and returns it together
// with the value of its "units" attribute. Packed values are unpacked
// using the "scale_factor" and "add_offset" attributes, and values equal
// to "_FillValue" or "missing_value" are set to NaN. Coordinates with
// CF time units ("hours since 2000-01-01 00:00:00") are returned as
// timestamps.
func ReadVar(rw cdf.ReaderWriterAt, varName string) (*stda.Labeled, string, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, "", fmt.Errorf("ncio: opening file: %v", err)
	}
	return readVar(f, rw, varName)
}

func readVar(f *cdf.File, rw cdf.ReaderWriterAt, varName string) (*stda.Labeled, string, error) {
	if !hasVar(f, varName) {
		return nil, "", fmt.Errorf("ncio: file has no variable %q", varName)
	}
	data, shape, err := readFloats(f, rw, varName)
	if err != nil {
		return nil, "", err
	}
	o := &stda.Labeled{
		Data:   &sparse.DenseArray{Elements: data, Shape: shape},
		Dims:   f.Header.Dimensions(varName),
		Coords: make(map[string]stda.Coord),
	}
	for i, d := range o.Dims {
		if !hasVar(f, d) {
			continue
		}
		if dd := f.Header.Dimensions(d); len(dd) != 1 || dd[0] != d {
			continue
		}
		c, err := readCoord(f, rw, d)
		if err != nil {
			return nil, "", err
		}
		if c.Len() != shape[i] {
			return nil, "", fmt.Errorf("ncio: coordinate %s has %d values for a dimension of length %d", d, c.Len(), shape[i])
		}
		o.Coords[d] = c
	}
	return o, attrString(f, varName, "units"), nil
}

func hasVar(f *cdf.File, name string) bool {
	for _, v := range f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

func attrString(f *cdf.File, v, a string) string {
	s, _ := f.Header.GetAttribute(v, a).(string)
	return strings.TrimRight(s, "\x00")
}

// attrFloat returns the first value of a numeric attribute.
func attrFloat(f *cdf.File, v, a string) (float64, bool) {
	switch x := f.Header.GetAttribute(v, a).(type) {
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int16:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []uint8:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	}
	return 0, false
}

type stater interface {
	Stat() (os.FileInfo, error)
}

// readFloats reads a numeric variable as float64.
func readFloats(f *cdf.File, rw cdf.ReaderWriterAt, v string) ([]float64, []int, error) {
	shape := append([]int(nil), f.Header.Lengths(v)...)
	var end []int
	if f.Header.IsRecordVariable(v) {
		s, ok := rw.(stater)
		if !ok {
			return nil, nil, fmt.Errorf("ncio: cannot find the record count of %s", v)
		}
		fi, err := s.Stat()
		if err != nil {
			return nil, nil, fmt.Errorf("ncio: %v", err)
		}
		shape[0] = int(f.Header.NumRecs(fi.Size()))
		end = shape
	}
	n := 1
	for _, l := range shape {
		n *= l
	}
	r := f.Reader(v, nil, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, nil, fmt.Errorf("ncio: reading %s: %v", v, err)
	}
	o := make([]float64, n)
	switch b := buf.(type) {
	case []float64:
		copy(o, b)
	case []float32:
		for i, x := range b {
			o[i] = float64(x)
		}
	case []int32:
		for i, x := range b {
			o[i] = float64(x)
		}
	case []int16:
		for i, x := range b {
			o[i] = float64(x)
		}
	case []uint8:
		for i, x := range b {
			o[i] = float64(x)
		}
	default:
		return nil, nil, fmt.Errorf("ncio: variable %s is not numeric", v)
	}

	for _, a := range []string{"_FillValue", "missing_value"} {
		if fill, ok := attrFloat(f, v, a); ok {
			for i, x := range o {
				if x == fill {
					o[i] = math.NaN()
				}
			}
		}
	}
	scale, hasScale := attrFloat(f, v, "scale_factor")
	offset, hasOffset := attrFloat(f, v, "add_offset")
	if hasScale || hasOffset {
		if !hasScale {
			scale = 1
		}
		for i, x := range o {
			o[i] = x*scale + offset
		}
	}
	return o, shape, nil
}

var timeUnitsRE = regexp.MustCompile(`^\s*(days|hours|minutes|seconds)\s+since\s+(.+?)\s*$`)

var refLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

// parseTimeUnits parses CF time units such as "hours since 1900-01-01".
func parseTimeUnits(units string) (time.Duration, time.Time, bool) {
	m := timeUnitsRE.FindStringSubmatch(units)
	if m == nil {
		return 0, time.Time{}, false
	}
	var step time.Duration
	switch m[1] {
	case "days":
		step = 24 * time.Hour
	case "hours":
		step = time.Hour
	case "minutes":
		step = time.Minute
	default:
		step = time.Second
	}
	ref := strings.TrimSuffix(strings.TrimSuffix(m[2], " UTC"), "Z")
	for _, l := range refLayouts {
		if t, err := time.Parse(l, ref); err == nil {
			return step, t.UTC(), true
		}
	}
	return 0, time.Time{}, false
}

func readCoord(f *cdf.File, rw cdf.ReaderWriterAt, v string) (stda.Coord, error) {
	vals, _, err := readFloats(f, rw, v)
	if err != nil {
		return stda.Coord{}, err
	}
	if labels := attrString(f, v, labelsAttr); labels != "" {
		l := strings.Split(labels, ",")
		if len(l) != len(vals) {
			return stda.Coord{}, fmt.Errorf("ncio: %s has %d labels for %d values", v, len(l), len(vals))
		}
		return stda.Labels(l...), nil
	}
	if step, ref, ok := parseTimeUnits(attrString(f, v, "units")); ok {
		t := make([]time.Time, len(vals))
		for i, x := range vals {
			t[i] = ref.Add(time.Duration(math.Round(x * float64(step))))
		}
		return stda.Times(t...), nil
	}
	return stda.Numbers(vals...), nil
}

// Write writes g to w as a netCDF file with the six canonical dimensions,
// a coordinate variable for each of them, and a data variable named
// after the grid's variable name (or "data" if it has none). The grid's
// attributes are stored as global attributes.
func Write(w cdf.ReaderWriterAt, g *stda.Grid) error {
	axes := stda.Axes()
	dims := make([]string, stda.NumAxes)
	for i, a := range axes {
		dims[i] = a.String()
	}
	shape := g.Shape()
	h := cdf.NewHeader(dims, shape[:])
	h.AddAttribute("", "Conventions", "CF-1.6")
	h.AddAttribute("", "history", "created by stda version "+stda.Version)

	name := g.Name()
	if name == "" {
		name = "data"
	}
	for _, a := range axes {
		if a.String() == name {
			return fmt.Errorf("ncio: variable name %q conflicts with a dimension", name)
		}
	}

	keys := make([]string, 0, len(g.Attrs))
	for k := range g.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := attrValue(g.Attrs[k]); v != nil {
			h.AddAttribute("", k, v)
		}
	}

	coords := make([][]float64, stda.NumAxes)
	for i, a := range axes {
		c := g.Coords[a]
		h.AddVariable(dims[i], dims[i:i+1], []float64{0})
		switch c.Kind {
		case stda.Label:
			coords[i] = stda.Index(c.Len()).Num
			h.AddAttribute(dims[i], labelsAttr, strings.Join(c.Labels, ","))
		case stda.Timestamp:
			coords[i] = c.Floats()
			h.AddAttribute(dims[i], "units", epochUnits)
		default:
			coords[i] = c.Num
			if u, ok := axisUnits[a]; ok {
				h.AddAttribute(dims[i], "units", u)
			}
		}
	}

	h.AddVariable(name, dims, []float64{0})
	if u := g.Attrs.String(stda.VarUnits); u != "" {
		h.AddAttribute(name, "units", u)
	}
	if cn := g.Attrs.String(stda.VarCNName); cn != "" {
		h.AddAttribute(name, "long_name", cn)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("ncio: creating file: %v", err)
	}
	for i := range axes {
		if _, err := f.Writer(dims[i], nil, nil).Write(coords[i]); err != nil {
			return fmt.Errorf("ncio: writing %s: %v", dims[i], err)
		}
	}
	if _, err := f.Writer(name, nil, nil).Write(g.Values()); err != nil {
		return fmt.Errorf("ncio: writing %s: %v", name, err)
	}
	if ff, ok := w.(*os.File); ok {
		return cdf.UpdateNumRecs(ff)
	}
	return nil
}

var axisUnits = map[stda.Axis]string{
	stda.Dtime: "hours",
	stda.Lat:   "degrees_north",
	stda.Lon:   "degrees_east",
}

// attrValue converts an attribute to a type that can be stored in a
// netCDF file, or returns nil if it should not be stored.
func attrValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return x
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return []int32{cast.ToInt32(x)}
	case float32, float64:
		return []float64{cast.ToFloat64(x)}
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	default:
		if s := cast.ToString(x); s != "" {
			return s
		}
		return nil
	}
}

// Read reads a grid from a file written by Write.
func Read(rw cdf.ReaderWriterAt, reg stda.Registry) (*stda.Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("ncio: opening file: %v", err)
	}
	name := ""
	for _, v := range f.Header.Variables() {
		if len(f.Header.Dimensions(v)) == stda.NumAxes {
			name = v
			break
		}
	}
	if name == "" {
		return nil, fmt.Errorf("ncio: file has no six-dimensional variable")
	}
	raw, units, err := readVar(f, rw, name)
	if err != nil {
		return nil, err
	}
	attrs := make(stda.Attrs)
	for _, a := range f.Header.Attributes("") {
		switch x := f.Header.GetAttribute("", a).(type) {
		case string:
			attrs[a] = strings.TrimRight(x, "\x00")
		case []int32:
			if len(x) == 1 {
				attrs[a] = int(x[0])
			}
		case []float64:
			if len(x) == 1 {
				attrs[a] = x[0]
			}
		}
	}
	delete(attrs, "Conventions")
	delete(attrs, "history")
	if attrs.String(stda.VarName) == "" && name != "data" {
		attrs[stda.VarName] = name
	}
	return stda.FromLabeled(reg, raw, stda.Options{Units: units, Attrs: attrs})
}
