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


package station

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tealeg/xlsx"
)

// TimeFormat is the layout of forecast times in exported tables.
const TimeFormat = "2006-01-02 15:04"

// WriteXLSX writes the series to w as an Excel workbook with one sheet.
// The first column holds forecast times and each series gets a column
// headed by its label. All series must share the same times. Missing
// values are left blank.
func WriteXLSX(w io.Writer, sheet string, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("station: no series to write")
	}
	times := series[0].Times
	for _, s := range series[1:] {
		if !sameTimes(times, s.Times) {
			return fmt.Errorf("station: series %q and %q have different forecast times", series[0].Name, s.Name)
		}
	}
	for _, s := range series {
		if len(s.Values) != len(s.Times) {
			return fmt.Errorf("station: series %q has %d times but %d values", s.Name, len(s.Times), len(s.Values))
		}
	}

	f := xlsx.NewFile()
	sh, err := f.AddSheet(sheet)
	if err != nil {
		return fmt.Errorf("station: %v", err)
	}
	header := sh.AddRow()
	header.AddCell().SetString("fcst_time")
	for _, s := range series {
		label := s.Label
		if label == "" {
			label = s.Name
		}
		header.AddCell().SetString(label)
	}
	for i, t := range times {
		row := sh.AddRow()
		row.AddCell().SetString(t.Format(TimeFormat))
		for _, s := range series {
			cell := row.AddCell()
			if v := s.Values[i]; !math.IsNaN(v) {
				cell.SetFloat(v)
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("station: writing workbook: %v", err)
	}
	return nil
}

func sameTimes(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
