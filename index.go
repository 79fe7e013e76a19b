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

// indexCellSize is the fixed bucket size of the spatial index in
// degrees, independent of the sampling grid resolution.
const indexCellSize = 0.05

// A constraintRef identifies one constraint polygon in the index.
type constraintRef struct {
	id   int
	key  string
	poly geom.Polygonal
}

// A spatialIndex is a uniform-grid bucket index over constraint
// polygons. Every polygon is registered in each cell its bounding box
// spans, trading memory for fast negative lookups. The index is built
// once per run and read-only afterwards.
type spatialIndex struct {
	cellSize float64
	cells    map[[2]int][]*constraintRef
	n        int
}

func newSpatialIndex(cellSize float64) *spatialIndex {
	if cellSize <= 0 {
		cellSize = indexCellSize
	}
	return &spatialIndex{
		cellSize: cellSize,
		cells:    make(map[[2]int][]*constraintRef),
	}
}

func (si *spatialIndex) cellOf(x, y float64) [2]int {
	return [2]int{
		int(math.Floor(x / si.cellSize)),
		int(math.Floor(y / si.cellSize)),
	}
}

// insert registers poly under every cell its bounding box spans.
func (si *spatialIndex) insert(key string, poly geom.Polygonal) {
	ref := &constraintRef{id: si.n, key: key, poly: poly}
	si.n++
	b := poly.Bounds()
	min := si.cellOf(b.Min.X, b.Min.Y)
	max := si.cellOf(b.Max.X, b.Max.Y)
	for cx := min[0]; cx <= max[0]; cx++ {
		for cy := min[1]; cy <= max[1]; cy++ {
			c := [2]int{cx, cy}
			si.cells[c] = append(si.cells[c], ref)
		}
	}
}

// len returns the number of polygons in the index.
func (si *spatialIndex) len() int { return si.n }

// query returns the polygons whose bounding box could intersect a disk
// of the given radius around p, deduplicated by identity. Querying an
// empty index returns an empty list.
func (si *spatialIndex) query(p geom.Point, radius float64) []*constraintRef {
	if len(si.cells) == 0 {
		return nil
	}
	reach := int(math.Ceil(radius / si.cellSize))
	center := si.cellOf(p.X, p.Y)
	var out []*constraintRef
	seen := make(map[int]bool)
	for cx := center[0] - reach; cx <= center[0]+reach; cx++ {
		for cy := center[1] - reach; cy <= center[1]+reach; cy++ {
			for _, ref := range si.cells[[2]int{cx, cy}] {
				if seen[ref.id] {
					continue
				}
				seen[ref.id] = true
				out = append(out, ref)
			}
		}
	}
	return out
}

// queryBounds returns the polygons whose bounding box could intersect
// b, deduplicated by identity.
func (si *spatialIndex) queryBounds(b *geom.Bounds) []*constraintRef {
	center := geom.Point{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
	}
	radius := pointDistance(b.Min, b.Max) / 2
	return si.query(center, radius)
}
