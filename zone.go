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
	"math"
	"time"

	"github.com/ctessum/geom"
)

// kmPerDegree is the approximate length in kilometers of one degree of
// latitude (and of longitude at the equator).
const kmPerDegree = 111.194

// A Zone is one allowed area, immutable once emitted into a Result.
type Zone struct {
	ID          string
	Geom        geom.Polygonal
	AreaM2      float64
	PerimeterKm float64
	Method      string
	CreatedAt   time.Time
}

// Metadata describes how a Result was computed.
type Metadata struct {
	ElapsedMillis        int64
	CandidatePoints      int
	ConstraintsProcessed int
	GridResolution       float64
}

// A Result is the outcome of one successful zone computation. It is
// superseded, never mutated, by the next successful run.
type Result struct {
	Zones    []*Zone
	Metadata Metadata
}

// FeatureCollection renders r as the interchange form of the zones:
// one polygonal Feature per zone with the standard property set.
func (r *Result) FeatureCollection() *FeatureCollection {
	fc := &FeatureCollection{Features: make([]*Feature, 0, len(r.Zones))}
	for _, z := range r.Zones {
		fc.Features = append(fc.Features, &Feature{
			Geom: z.Geom,
			Properties: map[string]interface{}{
				"id":              z.ID,
				"type":            "allowed_zone",
				"area_m2":         z.AreaM2,
				"perimeter_km":    z.PerimeterKm,
				"description":     fmt.Sprintf("Allowed hull-cleaning zone %s", z.ID),
				"calculated_at":   z.CreatedAt.UTC().Format(time.RFC3339),
				"method":          z.Method,
				"grid_resolution": r.Metadata.GridResolution,
			},
		})
	}
	return fc
}

// areaKm2 converts the planar degree² area of p to square kilometers,
// scaling longitude by the cosine of the centroid latitude.
func areaKm2(p geom.Polygonal) float64 {
	a := p.Area()
	if a <= 0 {
		return 0
	}
	lat := p.Centroid().Y * math.Pi / 180
	return a * kmPerDegree * kmPerDegree * math.Cos(lat)
}

// perimeterKm returns the total ring length of p in kilometers, using
// the same local flat-earth scaling as areaKm2.
func perimeterKm(p geom.Polygonal) float64 {
	cosLat := math.Cos(p.Centroid().Y * math.Pi / 180)
	var l float64
	for _, poly := range p.Polygons() {
		for _, ring := range poly {
			for i := 0; i < len(ring); i++ {
				a := ring[i]
				b := ring[(i+1)%len(ring)]
				dx := (b.X - a.X) * cosLat
				dy := b.Y - a.Y
				l += math.Sqrt(dx*dx + dy*dy)
			}
		}
	}
	return l * kmPerDegree
}

// pointDistance returns the planar distance between two points in
// degrees.
func pointDistance(a, b geom.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}
