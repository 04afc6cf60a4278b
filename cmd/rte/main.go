/*
Copyright © 2024 the RTE-Go authors.
This file is part of RTE-Go.

RTE-Go is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RTE-Go is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RTE-Go.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command rte computes atmospheric radiative fluxes from precomputed
// optics data using a registered optics engine.
package main

import (
	"fmt"
	"os"

	"github.com/oelbert/pyRTE-RRTMGP/rrtmgputil"
)

func main() {
	if err := rrtmgputil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
