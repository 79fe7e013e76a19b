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
	"testing"

	"github.com/ctessum/geom"
)

func TestPointDisk(t *testing.T) {
	center := geom.Point{X: 0.5, Y: -0.25}
	const r = 0.01
	disk := pointDisk(center, r)
	if len(disk) != 1 || len(disk[0]) != diskSegments {
		t.Fatalf("disk shape: got %d rings / %d vertices, want 1 / %d", len(disk), len(disk[0]), diskSegments)
	}
	for _, p := range disk[0] {
		if d := pointDistance(center, p); math.Abs(d-r) > 1e-12 {
			t.Fatalf("vertex at distance %g, want %g", d, r)
		}
	}
	// Inscribed regular 16-gon area.
	want := 0.5 * diskSegments * r * r * math.Sin(2*math.Pi/diskSegments)
	if got := disk.Area(); math.Abs(got-want) > 1e-9 {
		t.Errorf("disk area: got %g, want %g", got, want)
	}
	if center.Within(disk) != geom.Inside {
		t.Error("disk does not contain its center")
	}
}

func TestBufferPolygonalGrows(t *testing.T) {
	p, _ := rect(0.2, 0.2, 0.8, 0.8).Polygonal()
	const margin = 0.05
	out, err := bufferPolygonal(p, margin)
	if err != nil {
		t.Fatalf("bufferPolygonal: %v", err)
	}
	if out.Area() <= p.Area() {
		t.Fatalf("buffered area %g not larger than original %g", out.Area(), p.Area())
	}
	// All original corners are interior points of the buffered shape.
	for _, corner := range p.Polygons()[0][0] {
		if corner.Within(out) != geom.Inside {
			t.Errorf("original corner %v not inside buffered polygon", corner)
		}
	}
	// A point just outside an edge, within the margin, is covered.
	if (geom.Point{X: 0.5, Y: 0.8 + margin/2}).Within(out) != geom.Inside {
		t.Error("point within margin of edge not covered")
	}
	// A point beyond the margin is not.
	if (geom.Point{X: 0.5, Y: 0.8 + 2*margin}).Within(out) == geom.Inside {
		t.Error("point beyond margin covered")
	}
}

func TestBufferPolygonalZeroMargin(t *testing.T) {
	p, _ := rect(0, 0, 1, 1).Polygonal()
	out, err := bufferPolygonal(p, 0)
	if err != nil {
		t.Fatalf("bufferPolygonal: %v", err)
	}
	if out.Area() != p.Area() {
		t.Errorf("zero-margin buffer changed area: %g vs %g", out.Area(), p.Area())
	}
}
