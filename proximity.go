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
	"math"

	"github.com/ctessum/geom"
)

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0088

// A ReferencePoint is a named fixed location, such as an anchorage or
// a pilot station, that zones are reported relative to.
type ReferencePoint struct {
	Name  string
	Point geom.Point
}

// A ZoneProximity relates one zone to its nearest reference point.
type ZoneProximity struct {
	ZoneID     string
	Reference  string
	DistanceKm float64
	BearingDeg float64
}

// ProximityReport finds, for each zone in r, the nearest reference
// point by great-circle distance from the zone centroid, and the
// initial bearing from the zone toward it. It is a pure read-only
// computation over an existing Result. The report is empty when refs
// is empty.
func ProximityReport(r *Result, refs []ReferencePoint) []ZoneProximity {
	if len(refs) == 0 {
		return nil
	}
	out := make([]ZoneProximity, 0, len(r.Zones))
	for _, z := range r.Zones {
		c := z.Geom.Centroid()
		best := ZoneProximity{ZoneID: z.ID, DistanceKm: math.Inf(1)}
		for _, ref := range refs {
			d := haversineKm(c, ref.Point)
			if d < best.DistanceKm {
				best.Reference = ref.Name
				best.DistanceKm = d
				best.BearingDeg = initialBearing(c, ref.Point)
			}
		}
		out = append(out, best)
	}
	return out
}

// haversineKm returns the great-circle distance between two lon/lat
// points in kilometers.
func haversineKm(a, b geom.Point) float64 {
	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.X - a.X) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// initialBearing returns the initial great-circle bearing from a to b
// in degrees clockwise from north, in [0, 360).
func initialBearing(a, b geom.Point) float64 {
	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	dLon := (b.X - a.X) * math.Pi / 180
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
