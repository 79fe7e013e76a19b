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

package hullzone

import (
	"fmt"

	"github.com/ctessum/geom"
)

// The clipping methods on geom.Polygonal panic on some degenerate
// inputs instead of returning errors. These wrappers recover such
// panics into errors so the caller can skip the offending pair, and
// normalize an empty result to nil.

func polyUnion(a, b geom.Polygonal) (out geom.Polygonal, err error) {
	defer recoverGeomOp(&err)
	return nonEmpty(a.Union(b)), nil
}

func polyIntersection(a, b geom.Polygonal) (out geom.Polygonal, err error) {
	defer recoverGeomOp(&err)
	return nonEmpty(a.Intersection(b)), nil
}

func polyDifference(a, b geom.Polygonal) (out geom.Polygonal, err error) {
	defer recoverGeomOp(&err)
	return nonEmpty(a.Difference(b)), nil
}

func polySimplify(p geom.Polygonal, tolerance float64) (out geom.Polygonal, err error) {
	defer recoverGeomOp(&err)
	sp, ok := p.Simplify(tolerance).(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("hullzone: simplification produced non-polygonal geometry")
	}
	if len(sp.Polygons()) == 0 {
		return nil, nil
	}
	return sp, nil
}

// nonEmpty maps a zero-contour result to nil so callers can test
// emptiness without counting rings.
func nonEmpty(p geom.Polygonal) geom.Polygonal {
	if p == nil || len(p.Polygons()) == 0 {
		return nil
	}
	return p
}

func recoverGeomOp(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("hullzone: geometry operation: %v", r)
	}
}
