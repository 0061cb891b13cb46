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
	"time"
)

// CoordKind specifies the type of values a coordinate sequence holds.
type CoordKind int

// Coordinate kinds.
const (
	Numeric CoordKind = iota
	Label
	Timestamp
)

func (k CoordKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Label:
		return "label"
	case Timestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("CoordKind(%d)", int(k))
	}
}

// Coord is an ordered sequence of coordinate values along one axis. Only
// the field matching Kind is used. The zero value is an empty numeric
// sequence.
type Coord struct {
	Kind   CoordKind
	Num    []float64
	Labels []string
	Times  []time.Time
}

// Numbers returns a numeric coordinate sequence.
func Numbers(v ...float64) Coord { return Coord{Kind: Numeric, Num: v} }

// Labels returns a string coordinate sequence.
func Labels(v ...string) Coord { return Coord{Kind: Label, Labels: v} }

// Times returns a timestamp coordinate sequence.
func Times(v ...time.Time) Coord { return Coord{Kind: Timestamp, Times: v} }

// Index returns the numeric sequence 0, 1, ..., n-1.
func Index(n int) Coord {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(i)
	}
	return Numbers(v...)
}

// placeholder is the coordinate given to synthesized axes.
func placeholder() Coord { return Numbers(0) }

// Len returns the number of values in c.
func (c Coord) Len() int {
	switch c.Kind {
	case Label:
		return len(c.Labels)
	case Timestamp:
		return len(c.Times)
	default:
		return len(c.Num)
	}
}

// null reports whether c should be treated as an absent override:
// either empty or a single NaN.
func (c Coord) null() bool {
	n := c.Len()
	if n == 0 {
		return true
	}
	return n == 1 && c.Kind == Numeric && math.IsNaN(c.Num[0])
}

// Float returns the i-th value as a number. Timestamps are returned as
// hours since the Unix epoch and labels are parsed, yielding NaN when
// they are not numeric.
func (c Coord) Float(i int) float64 {
	switch c.Kind {
	case Label:
		v, err := strconv.ParseFloat(c.Labels[i], 64)
		if err != nil {
			return math.NaN()
		}
		return v
	case Timestamp:
		return float64(c.Times[i].Unix()) / 3600
	default:
		return c.Num[i]
	}
}

// Floats returns all values of c as numbers. See Float.
func (c Coord) Floats() []float64 {
	o := make([]float64, c.Len())
	for i := range o {
		o[i] = c.Float(i)
	}
	return o
}

// Time returns the i-th value as a timestamp. Numeric values are treated
// as seconds since the Unix epoch, so the placeholder [0] reads as
// 1970-01-01 00:00 UTC. Labels return the zero time.
func (c Coord) Time(i int) time.Time {
	switch c.Kind {
	case Timestamp:
		return c.Times[i]
	case Numeric:
		return time.Unix(int64(c.Num[i]), 0).UTC()
	default:
		return time.Time{}
	}
}

// String returns the i-th value formatted for display.
func (c Coord) String(i int) string {
	switch c.Kind {
	case Label:
		return c.Labels[i]
	case Timestamp:
		return c.Times[i].Format("2006-01-02 15:04:05")
	default:
		return strconv.FormatFloat(c.Num[i], 'f', -1, 64)
	}
}

// Copy returns a deep copy of c.
func (c Coord) Copy() Coord {
	o := Coord{Kind: c.Kind}
	if c.Num != nil {
		o.Num = append([]float64(nil), c.Num...)
	}
	if c.Labels != nil {
		o.Labels = append([]string(nil), c.Labels...)
	}
	if c.Times != nil {
		o.Times = append([]time.Time(nil), c.Times...)
	}
	return o
}

// Slice returns the values in [i, j).
func (c Coord) Slice(i, j int) Coord {
	switch c.Kind {
	case Label:
		return Labels(append([]string(nil), c.Labels[i:j]...)...)
	case Timestamp:
		return Times(append([]time.Time(nil), c.Times[i:j]...)...)
	default:
		return Numbers(append([]float64(nil), c.Num[i:j]...)...)
	}
}

// Equal returns whether c and o hold the same kind and values.
func (c Coord) Equal(o Coord) bool {
	if c.Kind != o.Kind || c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		switch c.Kind {
		case Label:
			if c.Labels[i] != o.Labels[i] {
				return false
			}
		case Timestamp:
			if !c.Times[i].Equal(o.Times[i]) {
				return false
			}
		default:
			if c.Num[i] != o.Num[i] {
				return false
			}
		}
	}
	return true
}

// appendCoord returns the concatenation of a and b.
func appendCoord(a, b Coord) (Coord, error) {
	if a.Kind != b.Kind {
		return Coord{}, fmt.Errorf("stda: cannot join %s and %s coordinates", a.Kind, b.Kind)
	}
	o := a.Copy()
	o.Num = append(o.Num, b.Num...)
	o.Labels = append(o.Labels, b.Labels...)
	o.Times = append(o.Times, b.Times...)
	return o, nil
}
