/*
Copyright © 2024 the HullZone authors.
This file is part of HullZone.

HullZone is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HullZone is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HullZone.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command hullzone derives hull-cleaning zones from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/oceanmodel/hullzone/hullzoneutil"
)

func main() {
	if err := hullzoneutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
