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

// Package stda converts heterogeneous gridded meteorological arrays into a
// canonical six-axis tensor with the fixed axis order
// member, level, time, dtime, lat, lon, and provides read-only views
// (coordinate access, 2-D slices, forecast-time axes) over such tensors.
//
// Raw arrays can have arbitrary dimension names and orders, may lack some
// of the six axes, and may be expressed in non-canonical units. The
// canonicalization pipeline renames and reorders dimensions, synthesizes
// missing axes as singletons, converts values to the canonical unit of the
// variable, and attaches a standard attribute bag.
//
// The package does no I/O. Reading and writing files, cache lookups and
// plotting live in sub-packages.
package stda

// Version gives the version number.
const Version = "0.3.1"
