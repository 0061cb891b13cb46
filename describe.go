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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const cnTimeLayout = "2006年01月02日15时"

// lead returns the first lead time and its display form.
func (a Accessor) lead() (float64, string) {
	f := a.Dtime().Float(0)
	return f, strconv.FormatFloat(f, 'f', -1, 64)
}

// Describe returns a plot caption giving the initialization time, and for
// forecasts the valid time and lead time, of the first time and lead time
// of the grid.
func (a Accessor) Describe() string {
	init := a.Time().Time(0)
	fhour, fh := a.lead()
	if fhour != 0 {
		fcst := init.Add(time.Duration(int64(fhour)) * time.Hour)
		return fmt.Sprintf("起报时间: %s\n预报时间: %s\n预报时效: %s小时",
			init.Format(cnTimeLayout), fcst.Format(cnTimeLayout), fh)
	}
	return fmt.Sprintf("分析时间: %s\n实况/分析", init.Format(cnTimeLayout))
}

// DescribePoint returns a caption for point data, such as a sounding or
// time series, with the upper-cased member name, the given description
// and the location of the first grid point.
func (a Accessor) DescribePoint(describe string) string {
	init := a.Time().Time(0)
	fhour, fh := a.lead()
	name := strings.ToUpper(a.Member().String(0))
	lon, lat := pointCoord(a.Lon()), pointCoord(a.Lat())
	if fhour != 0 {
		return fmt.Sprintf("起报时间: %s\n[%s]%s小时预报%s\n预报点: %s, %s",
			init.Format(cnTimeLayout), name, fh, describe, lon, lat)
	}
	return fmt.Sprintf("分析时间: %s\n[%s]实况/分析%s\n分析点: %s, %s",
		init.Format(cnTimeLayout), name, describe, lon, lat)
}

// pointCoord formats the first value of c for a point caption.
func pointCoord(c Coord) string {
	if c.Kind == Numeric {
		return reprFloat(c.Num[0])
	}
	return c.String(0)
}

// reprFloat formats v the way Python's repr does: integral values keep a
// trailing ".0" and magnitudes below 1e-4 or from 1e16 up use exponent
// notation.
func reprFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if a := math.Abs(v); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
