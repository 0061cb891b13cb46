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

import "fmt"

// Axis is one of the six canonical axes.
type Axis int

// The canonical axes, in storage order.
const (
	Member Axis = iota
	Level
	Time
	Dtime
	Lat
	Lon
)

// NumAxes is the number of canonical axes.
const NumAxes = 6

// FcstTime is the name of the pseudo-axis holding every combination of
// initialization time and forecast lead time.
const FcstTime = "fcst_time"

var axisNames = [NumAxes]string{"member", "level", "time", "dtime", "lat", "lon"}

// Axes returns the canonical axes in storage order.
func Axes() [NumAxes]Axis {
	return [NumAxes]Axis{Member, Level, Time, Dtime, Lat, Lon}
}

func (a Axis) String() string {
	if a < 0 || int(a) >= NumAxes {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// Valid returns whether a is one of the canonical axes.
func (a Axis) Valid() bool { return a >= 0 && int(a) < NumAxes }

// ParseAxis returns the axis with the given canonical name.
func ParseAxis(name string) (Axis, error) {
	for i, n := range axisNames {
		if n == name {
			return Axis(i), nil
		}
	}
	return -1, fmt.Errorf("stda: %q is not one of %v: %w", name, axisNames, ErrInvalidDimensionName)
}

// DimMap gives the raw dimension name for each canonical axis. An empty
// entry means the raw dimension has the canonical name.
type DimMap [NumAxes]string

// Name returns the raw dimension name for axis a.
func (m DimMap) Name(a Axis) string {
	if m[a] == "" {
		return axisNames[a]
	}
	return m[a]
}
