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
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/sirupsen/logrus"
)

// landBufferMargin is the outward buffer in degrees applied to the
// unioned land before it is subtracted from the study area, so that
// boundary-precision slivers of land are not miscounted as water.
const landBufferMargin = 0.001

// landFeature wraps one land polygon for the R-tree.
type landFeature struct {
	geom.Polygonal
}

// A waterMask is the water region inside the study area for one run:
// the study area minus the buffered union of all land features. It is
// built once per run and read-only afterwards.
type waterMask struct {
	study    geom.Polygonal
	mask     geom.Polygonal // nil when the mask is empty
	landTree *rtree.Rtree   // individual land features, for sliver removal
	nLand    int
	fellBack bool
}

// buildWaterMask derives the water mask. Per-pair union failures are
// skipped; a difference that errors degrades the mask to the raw study
// area; a difference that succeeds with an empty result yields an
// empty mask. Only a degenerate study area is fatal.
func buildWaterMask(studyArea geom.Polygonal, land []geom.Polygonal, lg logrus.FieldLogger) (*waterMask, error) {
	b := studyArea.Bounds()
	if b == nil || b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y || studyArea.Area() <= 0 {
		return nil, ErrDegenerateStudyArea
	}
	wm := &waterMask{
		study:    studyArea,
		landTree: rtree.NewTree(25, 50),
	}
	var landUnion geom.Polygonal
	for i, l := range land {
		wm.landTree.Insert(landFeature{Polygonal: l})
		wm.nLand++
		if landUnion == nil {
			landUnion = l
			continue
		}
		u, err := polyUnion(landUnion, l)
		if err != nil || u == nil {
			lg.WithError(err).WithField("feature", i).Warn("skipping land feature in union")
			continue
		}
		landUnion = u
	}
	if landUnion == nil {
		wm.mask = studyArea
		return wm, nil
	}
	buffered, err := bufferPolygonal(landUnion, landBufferMargin)
	if err != nil {
		lg.WithError(err).Warn("land buffering failed; subtracting unbuffered land")
		buffered = landUnion
	}
	diff, err := polyDifference(studyArea, buffered)
	if err != nil {
		lg.WithError(err).Warn("land subtraction failed; using raw study area as water mask")
		wm.mask = studyArea
		wm.fellBack = true
		return wm, nil
	}
	if diff == nil || diff.Area() <= 0 {
		// The land genuinely covers the whole study area.
		return wm, nil
	}
	wm.mask = diff
	return wm, nil
}

// empty reports whether no water remains inside the study area.
func (wm *waterMask) empty() bool {
	return wm.mask == nil
}

// contains reports whether p lies strictly inside the water region.
func (wm *waterMask) contains(p geom.Point) bool {
	if wm.mask == nil {
		return false
	}
	return p.Within(wm.mask) == geom.Inside
}

// landNear returns the individual land features whose bounding boxes
// intersect b.
func (wm *waterMask) landNear(b *geom.Bounds) []geom.Polygonal {
	if wm.nLand == 0 {
		return nil
	}
	var out []geom.Polygonal
	for _, item := range wm.landTree.SearchIntersect(b) {
		out = append(out, item.(landFeature).Polygonal)
	}
	return out
}
