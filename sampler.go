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
	"context"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// progressBatch is the number of coarse grid cells between progress
// callbacks, bounding the callback rate on long scans.
const progressBatch = 200

// A sampler scans the study bounding box for candidate points that
// are in water and outside every constraint. The scan is adaptive:
// a coarse pass at twice the base resolution, then a fine pass around
// each accepted coarse point, so fine sampling is only spent where the
// coarse pass already found open water.
type sampler struct {
	mask       *waterMask
	index      *spatialIndex
	resolution float64
	progress   func(frac float64)
	log        logrus.FieldLogger
}

// accept reports whether p is inside the water mask and outside every
// constraint within radius. The mask test runs first: it is cheap
// relative to the constraint count and short-circuits the index query.
func (s *sampler) accept(p geom.Point, radius float64) bool {
	if !s.mask.contains(p) {
		return false
	}
	for _, ref := range s.index.query(p, radius) {
		if p.Within(ref.poly) != geom.Outside {
			return false
		}
	}
	return true
}

// sample runs both passes and returns the accepted points. The set may
// contain duplicates across the coarse and fine passes; clustering is
// insensitive to them. Cancellation is checked between coarse rows.
func (s *sampler) sample(ctx context.Context) ([]geom.Point, error) {
	b := s.mask.study.Bounds()
	coarse := 2 * s.resolution

	nCols := int((b.Max.X-b.Min.X)/coarse) + 1
	nRows := int((b.Max.Y-b.Min.Y)/coarse) + 1
	total := nCols * nRows

	var accepted []geom.Point
	var coarseHits []geom.Point
	done := 0
	for y := b.Min.Y; y <= b.Max.Y; y += coarse {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for x := b.Min.X; x <= b.Max.X; x += coarse {
			done++
			if s.progress != nil && done%progressBatch == 0 {
				s.progress(float64(done) / float64(total))
			}
			p := geom.Point{X: x, Y: y}
			if !s.accept(p, coarse) {
				continue
			}
			accepted = append(accepted, p)
			coarseHits = append(coarseHits, p)
		}
	}

	for _, c := range coarseHits {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for y := c.Y - coarse; y <= c.Y+coarse; y += s.resolution {
			for x := c.X - coarse; x <= c.X+coarse; x += s.resolution {
				p := geom.Point{X: x, Y: y}
				if p.Equals(c) {
					continue
				}
				if s.accept(p, s.resolution) {
					accepted = append(accepted, p)
				}
			}
		}
	}

	if s.progress != nil {
		s.progress(1)
	}
	s.log.WithFields(logrus.Fields{
		"coarse":   len(coarseHits),
		"accepted": len(accepted),
	}).Debug("grid sampling finished")
	return accepted, nil
}
