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

package ncio

import (
	"context"
	"errors"
	"io/ioutil"
	"math"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/kr/pretty"
	"github.com/metdig/stda"
	"github.com/metdig/stda/rain"
	"github.com/spf13/afero"
)

var testInit = time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC)

func testGrid(t *testing.T, varName string, fhour int, v float64) *stda.Grid {
	var c [stda.NumAxes]stda.Coord
	c[stda.Member] = stda.Labels("ecmwf")
	c[stda.Level] = stda.Numbers(850, 500)
	c[stda.Time] = stda.Times(testInit)
	c[stda.Dtime] = stda.Numbers(float64(fhour))
	c[stda.Lat] = stda.Numbers(30, 30.5, 31)
	c[stda.Lon] = stda.Numbers(110, 110.5)
	data := sparse.ZerosDense(1, 2, 1, 1, 3, 2)
	for i := range data.Elements {
		data.Elements[i] = v + float64(i)
	}
	g, err := stda.New(nil, data, c, stda.Options{
		VarName: varName,
		Attrs:   stda.Attrs{stda.DataSource: "cassandra", stda.LevelType: "high", stda.ValidTime: 6},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestWriteRead(t *testing.T) {
	f, err := ioutil.TempFile("", "stda_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	g := testGrid(t, "tmp", 24, 10)
	g.Data.Elements[3] = math.NaN()
	if err := Write(f, g); err != nil {
		t.Fatal(err)
	}
	have, err := Read(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range stda.Axes() {
		if !have.Coords[a].Equal(g.Coords[a]) {
			t.Errorf("%s coordinates: %v", a, pretty.Diff(have.Coords[a], g.Coords[a]))
		}
	}
	for i, v := range g.Values() {
		hv := have.Values()[i]
		if v != hv && !(math.IsNaN(v) && math.IsNaN(hv)) {
			t.Errorf("element %d: want %g but have %g", i, v, hv)
		}
	}
	if !reflect.DeepEqual(have.Attrs, g.Attrs) {
		t.Errorf("attrs: %v", pretty.Diff(have.Attrs, g.Attrs))
	}
}

func TestWrite_nameConflict(t *testing.T) {
	g := testGrid(t, "lat", 0, 0)
	fs := afero.NewMemMapFs()
	f, err := fs.Create("x.nc")
	if err != nil {
		t.Fatal(err)
	}
	if err := Write(f, g); err == nil {
		t.Error("a variable named after a dimension should fail")
	}
}

// writeRaw writes a file laid out like a reanalysis download: packed
// shorts with dimensions (time, latitude, longitude).
func writeRaw(t *testing.T, w cdf.ReaderWriterAt) {
	h := cdf.NewHeader([]string{"time", "latitude", "longitude"}, []int{2, 2, 3})
	h.AddVariable("time", []string{"time"}, []int32{0})
	h.AddAttribute("time", "units", "hours since 1900-01-01 00:00:00.0")
	h.AddVariable("latitude", []string{"latitude"}, []float32{0})
	h.AddVariable("longitude", []string{"longitude"}, []float32{0})
	h.AddVariable("t2m", []string{"time", "latitude", "longitude"}, []int16{0})
	h.AddAttribute("t2m", "units", "K")
	h.AddAttribute("t2m", "scale_factor", []float64{0.5})
	h.AddAttribute("t2m", "add_offset", []float64{273.15})
	h.AddAttribute("t2m", "_FillValue", []int16{-32767})
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	hours := int32(testInit.Sub(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)).Hours())
	writes := []struct {
		v    string
		data interface{}
	}{
		{"time", []int32{hours, hours + 1}},
		{"latitude", []float32{40, 39}},
		{"longitude", []float32{116, 117, 118}},
		{"t2m", []int16{0, 2, 4, 6, 8, -32767, 0, 0, 0, 0, 0, 10}},
	}
	for _, wr := range writes {
		if _, err := f.Writer(wr.v, nil, nil).Write(wr.data); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReadVar(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("raw.nc")
	if err != nil {
		t.Fatal(err)
	}
	writeRaw(t, f)

	raw, units, err := ReadVar(f, "t2m")
	if err != nil {
		t.Fatal(err)
	}
	if units != "K" {
		t.Errorf("units = %q", units)
	}
	if !reflect.DeepEqual(raw.Dims, []string{"time", "latitude", "longitude"}) {
		t.Errorf("dims = %v", raw.Dims)
	}
	wantTimes := stda.Times(testInit, testInit.Add(time.Hour))
	if !raw.Coords["time"].Equal(wantTimes) {
		t.Errorf("time: %v", pretty.Diff(raw.Coords["time"], wantTimes))
	}
	if v := raw.Data.Elements[1]; math.Abs(v-274.15) > 1e-9 {
		t.Errorf("unpacked value = %g", v)
	}
	if v := raw.Data.Elements[5]; !math.IsNaN(v) {
		t.Errorf("fill value = %g", v)
	}

	g, err := stda.FromLabeled(nil, raw, stda.Options{
		Dims:    stda.DimMap{stda.Time: "time", stda.Lat: "latitude", stda.Lon: "longitude"},
		Units:   units,
		VarName: "t2m",
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := [stda.NumAxes]int{1, 1, 2, 1, 2, 3}; g.Shape() != want {
		t.Errorf("shape = %v", g.Shape())
	}
	if v := g.Values()[1]; math.Abs(v-1) > 1e-9 {
		t.Errorf("converted value = %g", v)
	}
	if u := g.Attrs.String(stda.VarUnits); u != "C" {
		t.Errorf("units = %q", u)
	}
	if _, _, err := ReadVar(f, "tp"); err == nil {
		t.Error("missing variable should fail")
	}
}

func TestParseTimeUnits(t *testing.T) {
	tests := []struct {
		units string
		step  time.Duration
		ref   time.Time
		ok    bool
	}{
		{"hours since 1900-01-01 00:00:00.0", time.Hour, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"days since 2000-01-01", 24 * time.Hour, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"seconds since 1970-01-01T00:00:00Z", time.Second, time.Unix(0, 0).UTC(), true},
		{"hours", 0, time.Time{}, false},
	}
	for _, test := range tests {
		step, ref, ok := parseTimeUnits(test.units)
		if step != test.step || !ref.Equal(test.ref) || ok != test.ok {
			t.Errorf("%s: have %v %v %v", test.units, step, ref, ok)
		}
	}
}

func TestFileSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := NewFileSource(fs, "/cache", nil)
	req := rain.Request{DataSource: "cassandra", DataName: "ecmwf", Init: testInit}
	for fhour, v := range map[int]float64{24: 100, 18: 10} {
		req.Fhour, req.VarName = fhour, "tpe"
		if err := src.WriteModelGrid(req, testGrid(t, "tpe", fhour, v)); err != nil {
			t.Fatal(err)
		}
	}

	req.Fhour = 24
	g, err := src.ModelGrid(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if g.Name() != "tpe" || g.Values()[0] != 100 {
		t.Errorf("have %v", g)
	}

	req.VarName = "rain06"
	if _, err := src.ModelGrid(context.Background(), req); !errors.Is(err, rain.ErrNotFound) {
		t.Errorf("want not found but have %v", err)
	}

	r, err := rain.Read(context.Background(), src, req, 6)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range r.Values() {
		if v != 90 {
			t.Errorf("element %d: want 90 but have %g", i, v)
		}
	}
}
