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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/metdig/stda"
	"github.com/metdig/stda/ncio"
	"github.com/metdig/stda/rain"
	"github.com/spf13/afero"
	"github.com/tealeg/xlsx"
)

var testInit = time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC)

// writeField writes a field of the given variable with lead times
// dtimes on a 2 (lat) × 2 (lon) grid to path. Element i holds v+i.
func writeField(t *testing.T, path, varName string, v float64, dtimes ...float64) *stda.Grid {
	if len(dtimes) == 0 {
		dtimes = []float64{24}
	}
	data := sparse.ZerosDense(1, 1, 1, len(dtimes), 2, 2)
	for i := range data.Elements {
		data.Elements[i] = v + float64(i)
	}
	g, err := stda.New(nil, data, [stda.NumAxes]stda.Coord{
		stda.Labels("ecmwf"),
		stda.Numbers(0),
		stda.Times(testInit),
		stda.Numbers(dtimes...),
		stda.Numbers(39, 40),
		stda.Numbers(116, 117),
	}, stda.Options{VarName: varName})
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := ncio.Write(f, g); err != nil {
		t.Fatal(err)
	}
	return g
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "stdautil")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// run executes the command line args and returns its output.
func run(t *testing.T, args ...string) string {
	Cfg.Set("config", "")
	Cfg.Set("registry", "")
	b := new(bytes.Buffer)
	Root.SetOutput(b)
	defer Root.SetOutput(nil)
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func readBack(t *testing.T, path string) *stda.Grid {
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := ncio.Read(f, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	if want := "STDA v" + stda.Version; !strings.Contains(out, want) {
		t.Errorf("output %q does not contain %q", out, want)
	}
}

func TestVars(t *testing.T) {
	out := run(t, "vars")
	for _, want := range []string{"cn_name", "tmp", "温度", "rain24"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
}

func TestConvert(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "in.nc")
	writeField(t, in, "tmp", 273.15)

	out := filepath.Join(dir, "out.nc")
	Cfg.Set("var", "tmp")
	Cfg.Set("units", "K")
	Cfg.Set("dims", map[string]string{})
	Cfg.Set("attrs", map[string]string{"data_source": "cassandra"})
	Cfg.Set("member", "grapes")
	Cfg.Set("output", out)
	run(t, "convert", in)

	g := readBack(t, out)
	for i, v := range g.Values() {
		if math.Abs(v-float64(i)) > 1e-9 {
			t.Errorf("element %d: want %d but have %g", i, i, v)
		}
	}
	if have := g.Attrs.String(stda.DataSource); have != "cassandra" {
		t.Errorf("data_source = %q", have)
	}
	if have := g.Attrs.String(stda.VarUnits); have != "C" {
		t.Errorf("var_units = %q", have)
	}
	if !g.Coords[stda.Member].Equal(stda.Labels("grapes")) {
		t.Errorf("member = %+v", g.Coords[stda.Member])
	}
}

func TestInfo(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "in.nc")
	writeField(t, in, "tmp", 0)

	out := run(t, "info", in)
	for _, want := range []string{"起报时间: 2021年06月01日08时", "var_cn_name: 温度", "n=4 min=0 max=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestPlot(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "in.nc")
	writeField(t, in, "tmp", 10)

	Cfg.Set("xdim", "lon")
	Cfg.Set("ydim", "lat")
	Cfg.Set("cmap", "coolwarm")
	Cfg.Set("levels", []string{})
	Cfg.Set("open", false)
	for _, kind := range []string{"pcolormesh", "contourf", "contour"} {
		t.Run(kind, func(t *testing.T) {
			out := filepath.Join(dir, kind+".png")
			Cfg.Set("output", out)
			run(t, "plot", kind, in)
			b, err := ioutil.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(b, []byte("\x89PNG")) {
				t.Error("output is not a png")
			}
		})
	}
}

func TestSeries(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	t2m := filepath.Join(dir, "t2m.nc")
	rh2m := filepath.Join(dir, "rh2m.nc")
	writeField(t, t2m, "t2m", 20, 0, 3, 6)
	writeField(t, rh2m, "rh2m", 50, 0, 3, 6)

	Cfg.Set("lon", 116.9)
	Cfg.Set("lat", 39.2)
	Cfg.Set("title", "")
	Cfg.Set("open", false)

	out := filepath.Join(dir, "series.xlsx")
	Cfg.Set("output", out)
	run(t, "series", t2m, rh2m)
	f, err := xlsx.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	rows := f.Sheets[0].Rows
	if len(rows) != 4 {
		t.Fatalf("have %d rows, want 4", len(rows))
	}
	var have []string
	for _, c := range rows[1].Cells {
		have = append(have, c.Value)
	}
	// lat 39, lon 117 is the second element of each field.
	want := []string{"2021-06-01 08:00", "21", "51"}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %q, want %q", have, want)
	}

	png := filepath.Join(dir, "series.png")
	Cfg.Set("output", png)
	run(t, "series", t2m, rh2m)
	if _, err := os.Stat(png); err != nil {
		t.Error(err)
	}
}

func TestDerive(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	u := filepath.Join(dir, "u.nc")
	v := filepath.Join(dir, "v.nc")
	writeField(t, u, "u10m", 3)
	writeField(t, v, "v10m", 4)

	out := filepath.Join(dir, "wsp.nc")
	Cfg.Set("expr", "sqrt(u10m**2 + v10m**2)")
	Cfg.Set("var", "wsp")
	Cfg.Set("units", "")
	Cfg.Set("attrs", map[string]string{})
	Cfg.Set("output", out)
	run(t, "derive", "u10m="+u, "v10m="+v)

	g := readBack(t, out)
	for i, have := range g.Values() {
		x := float64(i)
		want := math.Sqrt((3+x)*(3+x) + (4+x)*(4+x))
		if math.Abs(have-want) > 1e-9 {
			t.Errorf("element %d: want %g but have %g", i, want, have)
		}
	}
	if g.Name() != "wsp" || g.Attrs.String(stda.VarCNName) != "风速" {
		t.Errorf("attrs = %v", g.Attrs)
	}
}

func TestRain(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	src := ncio.NewFileSource(afero.NewOsFs(), filepath.Join(dir, "cache"), nil)
	req := rain.Request{DataSource: "cassandra", DataName: "ecmwf", Init: testInit, VarName: "tpe"}
	for fhour, v := range map[int]float64{24: 100, 18: 10} {
		req.Fhour = fhour
		g := writeField(t, filepath.Join(dir, "tmp.nc"), "tpe", v, float64(fhour))
		if err := src.WriteModelGrid(req, g); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(dir, "rain06.nc")
	Cfg.Set("cache.dir", dir)
	Cfg.Set("data_source", "cassandra")
	Cfg.Set("data_name", "ecmwf")
	Cfg.Set("init", "2021060108")
	Cfg.Set("fhour", 24)
	Cfg.Set("atime", 6)
	Cfg.Set("level", 0.0)
	Cfg.Set("workers", 2)
	Cfg.Set("output", out)
	run(t, "rain")

	g := readBack(t, out)
	for i, v := range g.Values() {
		if v != 90 {
			t.Errorf("element %d: want 90 but have %g", i, v)
		}
	}
	if g.Name() != "rain06" || g.Attrs.Int(stda.ValidTime) != 6 {
		t.Errorf("attrs = %v", g.Attrs)
	}
}

func TestCachePath(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	era5 := filepath.Join(dir, "cache", "ERA5_DATA", "202106010800", "hourly", "tmp", "500")
	if err := os.MkdirAll(era5, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(era5, "202106010800_60_150_0_60.nc")
	if err := ioutil.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	Cfg.Set("cache.dir", dir)
	Cfg.Set("init", "2021-06-01 08:00")
	Cfg.Set("var", "tmp")
	Cfg.Set("level", 500.0)
	Cfg.Set("extent", []string{"70", "140", "15", "55"})
	Cfg.Set("find_area", true)
	if have, want := run(t, "cachepath"), file+"\ttrue\n"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}

	Cfg.Set("find_area", false)
	want := filepath.Join(era5, "202106010800_70_140_15_55.nc") + "\tfalse\n"
	if have := run(t, "cachepath"); have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2021060108", "202106010800", "2021-06-01 08:00", "2021-06-01T08:00:00Z"} {
		have, err := parseTime(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		if !have.Equal(testInit) {
			t.Errorf("%s: have %v", s, have)
		}
	}
	if _, err := parseTime(""); err == nil {
		t.Error("empty time should fail")
	}
}

func TestParseExtent(t *testing.T) {
	want := geom.Bounds{Min: geom.Point{X: 70, Y: 15}, Max: geom.Point{X: 140, Y: 55}}
	for _, v := range []interface{}{
		[]string{"70", "140", "15", "55"},
		"70,140,15,55",
		"[70,140,15,55]",
	} {
		have, err := parseExtent(v)
		if err != nil {
			t.Errorf("%v: %v", v, err)
			continue
		}
		if have != want {
			t.Errorf("%v: have %v", v, have)
		}
	}
	if _, err := parseExtent("1,2,3"); err == nil {
		t.Error("three values should fail")
	}
}

func TestParseInputs(t *testing.T) {
	have, err := parseInputs([]string{"u10m=u.nc", "v10m=/data/v.nc"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"u10m": "u.nc", "v10m": "/data/v.nc"}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %v", have)
	}
	if _, err := parseInputs([]string{"u.nc"}); err == nil {
		t.Error("missing name should fail")
	}
}

func TestDimMap(t *testing.T) {
	d, err := dimMap(map[string]string{"lat": "latitude", "lon": "longitude"})
	if err != nil {
		t.Fatal(err)
	}
	if d[stda.Lat] != "latitude" || d[stda.Lon] != "longitude" || d[stda.Level] != "" {
		t.Errorf("have %v", d)
	}
	if _, err := dimMap(map[string]string{"height": "z"}); err == nil {
		t.Error("unknown canonical name should fail")
	}
}
