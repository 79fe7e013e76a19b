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
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

const (
	// MinZoneAreaKm2 is the minimum significant zone area. It is a
	// policy constant, not derived from any grid parameter.
	MinZoneAreaKm2 = 0.1

	// simplifyTolerance is the boundary simplification tolerance in
	// degrees applied to every emitted zone.
	simplifyTolerance = 0.0005

	// zoneMethod labels how emitted zones were derived.
	zoneMethod = "adaptive_grid"
)

// optimizeZones cleans each candidate and enforces minimum-significance
// filtering: clip to the water mask, subtract residual land and
// constraint slivers feature by feature, simplify, then discard
// candidates below the minimum area. Per-feature geometry failures
// skip that step; only an unusable candidate is dropped.
func optimizeZones(candidates []geom.Polygonal, wm *waterMask, index *spatialIndex, now time.Time, lg logrus.FieldLogger) []*Zone {
	var zones []*Zone
	for i, cand := range candidates {
		poly, err := polyIntersection(cand, wm.mask)
		if err != nil {
			lg.WithError(err).WithField("candidate", i).Warn("dropping candidate that failed to clip to water")
			continue
		}
		if poly == nil || poly.Area() <= 0 {
			continue
		}

		poly = subtractEach(poly, wm.landNear(poly.Bounds()), "land", i, lg)
		if poly == nil {
			continue
		}
		var constraints []geom.Polygonal
		for _, ref := range index.queryBounds(poly.Bounds()) {
			constraints = append(constraints, ref.poly)
		}
		poly = subtractEach(poly, constraints, "constraint", i, lg)
		if poly == nil {
			continue
		}

		if sp, err := polySimplify(poly, simplifyTolerance); err != nil {
			lg.WithError(err).WithField("candidate", i).Debug("keeping unsimplified zone boundary")
		} else if sp != nil && sp.Area() > 0 {
			poly = sp
		}

		km2 := areaKm2(poly)
		if km2 < MinZoneAreaKm2 {
			continue
		}
		zones = append(zones, &Zone{
			ID:          fmt.Sprintf("zone-%d", len(zones)+1),
			Geom:        poly,
			AreaM2:      km2 * 1e6,
			PerimeterKm: perimeterKm(poly),
			Method:      zoneMethod,
			CreatedAt:   now,
		})
	}
	return zones
}

// subtractEach removes every polygon in subtrahends from poly, one at
// a time so that a failure on one pair only skips that pair. It
// returns nil when nothing remains.
func subtractEach(poly geom.Polygonal, subtrahends []geom.Polygonal, kind string, candidate int, lg logrus.FieldLogger) geom.Polygonal {
	for _, s := range subtrahends {
		diff, err := polyDifference(poly, s)
		if err != nil {
			lg.WithError(err).WithFields(logrus.Fields{
				"candidate": candidate,
				"kind":      kind,
			}).Debug("skipping sliver subtraction that failed")
			continue
		}
		if diff == nil || diff.Area() <= 0 {
			return nil
		}
		poly = diff
	}
	return poly
}
