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
	"errors"
	"math"
	"testing"
)

func TestFullLike(t *testing.T) {
	tmpl := testGrid(t, [NumAxes]int{1, 2, 1, 1, 3, 4})
	tmpl.Attrs[DataSource] = "cassandra"

	g := FullLike(nil, tmpl, 273.15, "t2m", Attrs{VarUnits: "K", DataName: "ecmwf"})
	for i, v := range g.Values() {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("element %d: want 0 but have %g", i, v)
		}
	}
	if g.Shape() != tmpl.Shape() {
		t.Errorf("shape %v != %v", g.Shape(), tmpl.Shape())
	}
	for _, a := range Axes() {
		if !g.Coords[a].Equal(tmpl.Coords[a]) {
			t.Errorf("%s coordinates differ", a)
		}
	}
	if g.Attrs.String(VarUnits) != "C" || g.Attrs.String(VarName) != "t2m" || g.Attrs.String(DataName) != "ecmwf" {
		t.Errorf("attrs: %v", g.Attrs)
	}
	if _, ok := g.Attrs[DataSource]; ok {
		t.Error("template attributes should not be copied")
	}
	g.Coords[Lat].Num[0] = -99
	if tmpl.Coords[Lat].Num[0] == -99 {
		t.Error("coordinates should be copied")
	}
}

func TestFullLikeByLevels(t *testing.T) {
	tmpl := testGrid(t, [NumAxes]int{2, 3, 1, 2, 2, 2})
	levels := []float64{1000, 850, 500}
	g, err := FullLikeByLevels(nil, tmpl, levels, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var idx [NumAxes]int
	for idx[Member] = 0; idx[Member] < 2; idx[Member]++ {
		for idx[Level] = 0; idx[Level] < 3; idx[Level]++ {
			for idx[Dtime] = 0; idx[Dtime] < 2; idx[Dtime]++ {
				for idx[Lat] = 0; idx[Lat] < 2; idx[Lat]++ {
					for idx[Lon] = 0; idx[Lon] < 2; idx[Lon]++ {
						if v := g.At(idx); v != levels[idx[Level]] {
							t.Errorf("%v: want %g but have %g", idx, levels[idx[Level]], v)
						}
					}
				}
			}
		}
	}
	if g.Name() != "pres" || g.Attrs.String(VarUnits) != "hPa" {
		t.Errorf("attrs: %v", g.Attrs)
	}

	if _, err := FullLikeByLevels(nil, tmpl, []float64{1000, 850}, "pres", nil); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("want length mismatch but have %v", err)
	}
}

func TestFillByLevels(t *testing.T) {
	g := testGrid(t, [NumAxes]int{1, 2, 1, 1, 1, 3})
	g.Attrs[DataSource] = "cmadaas"
	if err := g.FillByLevels(nil, []float64{925, 700}, "pres"); err != nil {
		t.Fatal(err)
	}
	want := []float64{925, 925, 925, 700, 700, 700}
	for i, v := range g.Values() {
		if v != want[i] {
			t.Errorf("element %d: want %g but have %g", i, want[i], v)
		}
	}
	if g.Attrs.String(VarCNName) != "气压" || g.Attrs.String(VarUnits) != "hPa" || g.Attrs.String(DataSource) != "cmadaas" {
		t.Errorf("attrs: %v", g.Attrs)
	}
	if err := g.FillByLevels(nil, []float64{1}, "pres"); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("want length mismatch but have %v", err)
	}
}
