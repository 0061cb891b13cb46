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


// Command stda is a command-line interface for working with canonical
// six-dimensional meteorological grids.
package main

import (
	"fmt"
	"os"

	"github.com/metdig/stda/stdautil"
)

func main() {
	if err := stdautil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
