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

	"github.com/ctessum/geom"
)

// diskSegments is the number of edges used to approximate a circle.
const diskSegments = 16

// pointDisk returns a regular polygon approximating the disk of the
// given radius (in degrees) around center.
func pointDisk(center geom.Point, radius float64) geom.Polygon {
	ring := make([]geom.Point, diskSegments)
	for i := 0; i < diskSegments; i++ {
		theta := 2 * math.Pi * float64(i) / diskSegments
		ring[i] = geom.Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		}
	}
	return geom.Polygon{ring}
}

// edgeSleeve returns a rectangle of half-width r covering the segment
// from a to b. Degenerate segments yield a disk around a instead.
func edgeSleeve(a, b geom.Point, r float64) geom.Polygon {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l := math.Sqrt(dx*dx + dy*dy)
	if l == 0 {
		return pointDisk(a, r)
	}
	// Unit normal to the segment.
	nx := -dy / l * r
	ny := dx / l * r
	return geom.Polygon{{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}}
}

// bufferPolygonal grows p outward by margin degrees. The expansion is
// composed from boolean unions: the polygon itself, a sleeve along
// every edge, and a disk at every vertex to fill the corner gaps the
// sleeves leave. Each union failure skips that piece; if every piece
// fails the original polygon is returned along with an error.
func bufferPolygonal(p geom.Polygonal, margin float64) (geom.Polygonal, error) {
	if margin <= 0 {
		return p, nil
	}
	result := p
	var nFail int
	for _, poly := range p.Polygons() {
		for _, ring := range poly {
			for i := 0; i < len(ring); i++ {
				a := ring[i]
				b := ring[(i+1)%len(ring)]
				for _, piece := range []geom.Polygonal{edgeSleeve(a, b, margin), pointDisk(a, margin)} {
					u, err := polyUnion(result, piece)
					if err != nil || u == nil {
						nFail++
						continue
					}
					result = u
				}
			}
		}
	}
	if nFail > 0 && result.Area() <= p.Area() {
		return p, fmt.Errorf("hullzone: buffering failed on %d pieces with no growth", nFail)
	}
	return result, nil
}
