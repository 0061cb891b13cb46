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
	"time"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/mat"
)

func TestFcstTime(t *testing.T) {
	t0 := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	var c [NumAxes]Coord
	c[Time] = Times(t0, t1)
	c[Dtime] = Numbers(0, 6, 12)
	g, err := New(nil, seq(1, 1, 2, 3, 1, 1), c, Options{VarName: "t2m"})
	if err != nil {
		t.Fatal(err)
	}
	have := g.Accessor().FcstTime()
	want := []time.Time{
		t0, t0.Add(6 * time.Hour), t0.Add(12 * time.Hour),
		t1, t1.Add(6 * time.Hour), t1.Add(12 * time.Hour),
	}
	if len(have) != len(want) {
		t.Fatalf("want %d times but have %d", len(want), len(have))
	}
	for i := range want {
		if !have[i].Equal(want[i]) {
			t.Errorf("%d: want %v but have %v", i, want[i], have[i])
		}
	}
	ax, err := g.Accessor().Axis(FcstTime)
	if err != nil {
		t.Fatal(err)
	}
	if ax.Kind != Timestamp || ax.Len() != 6 {
		t.Errorf("fcst_time axis: %+v", ax)
	}
}

func TestAxis(t *testing.T) {
	g := testGrid(t, [NumAxes]int{1, 2, 1, 1, 3, 4})
	a := g.Accessor()
	for _, ax := range Axes() {
		c, err := a.Axis(ax.String())
		if err != nil {
			t.Fatal(err)
		}
		if c.Len() != g.Len(ax) {
			t.Errorf("%s: length %d != %d", ax, c.Len(), g.Len(ax))
		}
	}
	if !a.Level().Equal(Index(2)) {
		t.Errorf("level: %+v", a.Level())
	}
	if _, err := a.Axis("height"); !errors.Is(err, ErrInvalidDimensionName) {
		t.Errorf("invalid axis: %v", err)
	}
}

func TestAxisCopies(t *testing.T) {
	g := testGrid(t, [NumAxes]int{1, 2, 1, 1, 3, 4})
	a := g.Accessor()
	lat, err := a.Axis("lat")
	if err != nil {
		t.Fatal(err)
	}
	lat.Num[0] = -999
	a.Lon().Num[0] = -999
	a.Member().Num[0] = -999
	if g.Coords[Lat].Num[0] == -999 || g.Coords[Lon].Num[0] == -999 || g.Coords[Member].Num[0] == -999 {
		t.Errorf("changing returned coordinates changed the grid: %+v", g.Coords)
	}
}

func TestReduce2D(t *testing.T) {
	g := testGrid(t, [NumAxes]int{1, 1, 1, 1, 3, 4})
	a := g.Accessor()
	m, err := a.Reduce2D("lat", "lon")
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(3, 4, seq(12).Elements)
	if !mat.Equal(m, want) {
		t.Errorf("want\n%v\nhave\n%v", mat.Formatted(want), mat.Formatted(m))
	}
	mT, err := a.Reduce2D("lon", "lat")
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(mT, m.T()) {
		t.Errorf("reduction should be the transpose:\n%v\n%v", mat.Formatted(mT), mat.Formatted(m))
	}

	t.Run("fcst_time", func(t *testing.T) {
		g := testGrid(t, [NumAxes]int{1, 1, 1, 3, 2, 1})
		m, err := g.Accessor().Reduce2D(FcstTime, "lat")
		if err != nil {
			t.Fatal(err)
		}
		if r, c := m.Dims(); r != 3 || c != 2 {
			t.Errorf("dims = %d, %d", r, c)
		}
		if m.At(2, 1) != 5 {
			t.Errorf("(2, 1) = %g", m.At(2, 1))
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			shape [NumAxes]int
			y, x  string
		}{
			{shape: [NumAxes]int{1, 2, 1, 1, 3, 4}, y: "lat", x: "lon"},
			{shape: [NumAxes]int{1, 1, 1, 1, 1, 4}, y: "lat", x: "lon"},
			{shape: [NumAxes]int{1, 1, 1, 1, 3, 4}, y: "level", x: "lon"},
			{shape: [NumAxes]int{1, 1, 1, 1, 3, 4}, y: "lat", x: "lat"},
			{shape: [NumAxes]int{1, 1, 2, 3, 1, 1}, y: FcstTime, x: "time"},
		}
		for _, test := range tests {
			g := testGrid(t, test.shape)
			if _, err := g.Accessor().Reduce2D(test.y, test.x); !errors.Is(err, ErrDimensionality) {
				t.Errorf("%v (%s, %s): want dimensionality error but have %v", test.shape, test.y, test.x, err)
			}
		}
	})
}

func TestReduce2DUnits(t *testing.T) {
	g := testGrid(t, [NumAxes]int{1, 1, 1, 1, 3, 4})
	q, err := g.Accessor().Reduce2DUnits(nil, "lat", "lon")
	if err != nil {
		t.Fatal(err)
	}
	if q.Units != "C" {
		t.Errorf("units = %q", q.Units)
	}
	if err := q.Check(unit.Kelvin); err != nil {
		t.Error(err)
	}
	if err := q.Check(unit.Pascal); err == nil {
		t.Error("temperature should not have pressure dimensions")
	}
}

func TestDescribe(t *testing.T) {
	init := time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC)
	var c [NumAxes]Coord
	c[Member] = Labels("ecmwf")
	c[Time] = Times(init)
	c[Lat] = Numbers(39.9)
	c[Lon] = Numbers(116.4)

	tests := []struct {
		dtime         float64
		describe      string
		describePoint string
	}{
		{
			dtime:         24,
			describe:      "起报时间: 2021年06月01日08时\n预报时间: 2021年06月02日08时\n预报时效: 24小时",
			describePoint: "起报时间: 2021年06月01日08时\n[ECMWF]24小时预报温度\n预报点: 116.4, 39.9",
		},
		{
			dtime:         0,
			describe:      "分析时间: 2021年06月01日08时\n实况/分析",
			describePoint: "分析时间: 2021年06月01日08时\n[ECMWF]实况/分析温度\n分析点: 116.4, 39.9",
		},
	}
	for _, test := range tests {
		c[Dtime] = Numbers(test.dtime)
		g, err := New(nil, seq(1, 1, 1, 1, 1, 1), c, Options{VarName: "tmp"})
		if err != nil {
			t.Fatal(err)
		}
		if have := g.Accessor().Describe(); have != test.describe {
			t.Errorf("want %q but have %q", test.describe, have)
		}
		if have := g.Accessor().DescribePoint("温度"); have != test.describePoint {
			t.Errorf("want %q but have %q", test.describePoint, have)
		}
	}

	// Whole-degree points keep their decimal point.
	c[Dtime] = Numbers(24)
	c[Lat] = Numbers(40)
	c[Lon] = Numbers(116)
	g, err := New(nil, seq(1, 1, 1, 1, 1, 1), c, Options{VarName: "tmp"})
	if err != nil {
		t.Fatal(err)
	}
	want := "起报时间: 2021年06月01日08时\n[ECMWF]24小时预报\n预报点: 116.0, 40.0"
	if have := g.Accessor().DescribePoint(""); have != want {
		t.Errorf("want %q but have %q", want, have)
	}
}

func TestReprFloat(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{v: 116, want: "116.0"},
		{v: 39.9, want: "39.9"},
		{v: -7, want: "-7.0"},
		{v: 0, want: "0.0"},
		{v: 0.0001, want: "0.0001"},
		{v: 0.00001, want: "1e-05"},
		{v: 1e16, want: "1e+16"},
		{v: 123456789012345, want: "123456789012345.0"},
		{v: math.NaN(), want: "nan"},
	}
	for _, test := range tests {
		if have := reprFloat(test.v); have != test.want {
			t.Errorf("%g: want %q but have %q", test.v, test.want, have)
		}
	}
}
