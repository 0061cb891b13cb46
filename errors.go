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

import "errors"

// Error kinds returned by this package. Returned errors wrap one of these
// values and can be checked with errors.Is.
var (
	// ErrShapeMismatch is returned when the rank of an array does not match
	// the number of dimension names given for it, or when a coordinate
	// sequence does not have the length of its axis.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidDimensionName is returned when a dimension name is not one
	// of the canonical axis names, or when a raw dimension cannot be
	// assigned to exactly one canonical axis.
	ErrInvalidDimensionName = errors.New("invalid dimension name")

	// ErrDimensionality is returned when a 2-D slice is requested from a
	// grid that does not have exactly the two requested non-singleton axes.
	ErrDimensionality = errors.New("dimensionality error")

	// ErrLengthMismatch is returned when per-level values do not match the
	// number of levels of a template grid.
	ErrLengthMismatch = errors.New("length mismatch")
)
