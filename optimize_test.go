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
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

func optimizeFixture(t *testing.T, land []geom.Polygonal) (*waterMask, *spatialIndex) {
	t.Helper()
	wm, err := buildWaterMask(study(t), land, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("buildWaterMask: %v", err)
	}
	return wm, newSpatialIndex(indexCellSize)
}

func TestOptimizeZonesClipsToWater(t *testing.T) {
	wm, index := optimizeFixture(t, nil)
	// Candidate pokes past the study area on two sides.
	cand, _ := rect(-0.2, 0.2, 0.5, 1.2).Polygonal()
	zones := optimizeZones([]geom.Polygonal{cand}, wm, index, time.Now(), logrus.StandardLogger())
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1", len(zones))
	}
	b := zones[0].Geom.Bounds()
	if b.Min.X < -1e-6 || b.Max.Y > 1+1e-6 {
		t.Errorf("zone not clipped to study area: bounds %+v", b)
	}
}

func TestOptimizeZonesDropsDryCandidate(t *testing.T) {
	land, _ := rect(0.5, -0.1, 1.1, 1.1).Polygonal()
	wm, index := optimizeFixture(t, []geom.Polygonal{land})
	cand, _ := rect(0.6, 0.2, 0.9, 0.8).Polygonal()
	zones := optimizeZones([]geom.Polygonal{cand}, wm, index, time.Now(), logrus.StandardLogger())
	if len(zones) != 0 {
		t.Fatalf("zones from all-land candidate: got %d, want 0", len(zones))
	}
}

func TestOptimizeZonesSubtractsConstraints(t *testing.T) {
	wm, index := optimizeFixture(t, nil)
	constraint, _ := rect(0, 0, 0.5, 1).Polygonal()
	index.insert("marine park", constraint)
	cand, _ := rect(0.3, 0.1, 0.9, 0.9).Polygonal()
	zones := optimizeZones([]geom.Polygonal{cand}, wm, index, time.Now(), logrus.StandardLogger())
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1", len(zones))
	}
	if minX := zones[0].Geom.Bounds().Min.X; minX < 0.5-1e-6 {
		t.Errorf("zone extends into constraint: min x = %g", minX)
	}
}

func TestOptimizeZonesMinimumArea(t *testing.T) {
	wm, index := optimizeFixture(t, nil)
	// About 0.03 km², well under the 0.1 km² threshold.
	tiny, _ := rect(0.5, 0.5, 0.5015, 0.5015).Polygonal()
	big, _ := rect(0.1, 0.1, 0.4, 0.4).Polygonal()
	zones := optimizeZones([]geom.Polygonal{tiny, big}, wm, index, time.Now(), logrus.StandardLogger())
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1 (tiny candidate filtered)", len(zones))
	}
	if zones[0].AreaM2/1e6 < MinZoneAreaKm2 {
		t.Errorf("surviving zone below minimum area: %g km²", zones[0].AreaM2/1e6)
	}
}

func TestOptimizeZonesAnnotations(t *testing.T) {
	wm, index := optimizeFixture(t, nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cand, _ := rect(0.1, 0.1, 0.6, 0.6).Polygonal()
	zones := optimizeZones([]geom.Polygonal{cand}, wm, index, now, logrus.StandardLogger())
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1", len(zones))
	}
	z := zones[0]
	if z.ID != "zone-1" {
		t.Errorf("zone id: got %q, want %q", z.ID, "zone-1")
	}
	if z.Method != zoneMethod {
		t.Errorf("zone method: got %q, want %q", z.Method, zoneMethod)
	}
	if !z.CreatedAt.Equal(now) {
		t.Errorf("zone timestamp: got %v, want %v", z.CreatedAt, now)
	}
	if z.AreaM2 <= 0 || z.PerimeterKm <= 0 {
		t.Errorf("zone measurements not set: area %g m², perimeter %g km", z.AreaM2, z.PerimeterKm)
	}
	// 0.5° square: perimeter about 4 × 0.5 × 111 km.
	if z.PerimeterKm < 180 || z.PerimeterKm > 260 {
		t.Errorf("zone perimeter: got %g km, want about 222", z.PerimeterKm)
	}
}
