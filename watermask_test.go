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
	"errors"
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

func study(t *testing.T) geom.Polygonal {
	t.Helper()
	p, ok := unitSquare().Polygonal()
	if !ok {
		t.Fatal("study fixture is not polygonal")
	}
	return p
}

func TestWaterMaskNoLand(t *testing.T) {
	wm, err := buildWaterMask(study(t), nil, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("buildWaterMask: %v", err)
	}
	if wm.empty() {
		t.Fatal("mask is empty with no land")
	}
	if !wm.contains(geom.Point{X: 0.5, Y: 0.5}) {
		t.Error("mask does not contain study center")
	}
	if wm.contains(geom.Point{X: 1.5, Y: 0.5}) {
		t.Error("mask contains point outside study area")
	}
}

func TestWaterMaskPartialLand(t *testing.T) {
	land, _ := rect(0.5, -0.1, 1.1, 1.1).Polygonal()
	wm, err := buildWaterMask(study(t), []geom.Polygonal{land}, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("buildWaterMask: %v", err)
	}
	if wm.empty() {
		t.Fatal("mask is empty with half land")
	}
	if !wm.contains(geom.Point{X: 0.25, Y: 0.5}) {
		t.Error("mask does not contain water point")
	}
	if wm.contains(geom.Point{X: 0.75, Y: 0.5}) {
		t.Error("mask contains land point")
	}
	// The margin buffer pushes the water edge off the raw land edge.
	if wm.contains(geom.Point{X: 0.5 - landBufferMargin/2, Y: 0.5}) {
		t.Error("mask contains point inside the land buffer margin")
	}
}

// TestWaterMaskAllLand: land covering the whole study area yields an
// empty mask, not an error and not a fallback to the study area.
func TestWaterMaskAllLand(t *testing.T) {
	land, _ := rect(-0.1, -0.1, 1.1, 1.1).Polygonal()
	wm, err := buildWaterMask(study(t), []geom.Polygonal{land}, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("buildWaterMask: %v", err)
	}
	if !wm.empty() {
		t.Fatal("mask is not empty with full land cover")
	}
	if wm.contains(geom.Point{X: 0.5, Y: 0.5}) {
		t.Error("empty mask contains a point")
	}
}

func TestWaterMaskDegenerateStudyArea(t *testing.T) {
	degenerate := geom.Polygon{{
		{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0},
	}}
	_, err := buildWaterMask(degenerate, nil, logrus.StandardLogger())
	if !errors.Is(err, ErrDegenerateStudyArea) {
		t.Fatalf("error: got %v, want ErrDegenerateStudyArea", err)
	}
}

func TestWaterMaskLandNear(t *testing.T) {
	islandA, _ := rect(0.1, 0.1, 0.2, 0.2).Polygonal()
	islandB, _ := rect(0.8, 0.8, 0.9, 0.9).Polygonal()
	wm, err := buildWaterMask(study(t), []geom.Polygonal{islandA, islandB}, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("buildWaterMask: %v", err)
	}
	near := wm.landNear(&geom.Bounds{
		Min: geom.Point{X: 0, Y: 0},
		Max: geom.Point{X: 0.3, Y: 0.3},
	})
	if len(near) != 1 {
		t.Errorf("landNear: got %d features, want 1", len(near))
	}
}
