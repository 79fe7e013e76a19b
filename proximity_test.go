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

// zoneAt builds a small zone centered at (x, y).
func zoneAt(id string, x, y float64) *Zone {
	p, _ := rect(x-0.01, y-0.01, x+0.01, y+0.01).Polygonal()
	return &Zone{ID: id, Geom: p}
}

func TestProximityReportNearest(t *testing.T) {
	r := &Result{Zones: []*Zone{zoneAt("zone-1", 0, 0)}}
	refs := []ReferencePoint{
		{Name: "far anchorage", Point: geom.Point{X: 2, Y: 2}},
		{Name: "near anchorage", Point: geom.Point{X: 0, Y: 0.5}},
	}
	report := ProximityReport(r, refs)
	if len(report) != 1 {
		t.Fatalf("report entries: got %d, want 1", len(report))
	}
	got := report[0]
	if got.ZoneID != "zone-1" {
		t.Errorf("zone id: got %q, want %q", got.ZoneID, "zone-1")
	}
	if got.Reference != "near anchorage" {
		t.Errorf("reference: got %q, want %q", got.Reference, "near anchorage")
	}
	// 0.5° of latitude is about 55.6 km.
	if math.Abs(got.DistanceKm-55.6) > 1 {
		t.Errorf("distance: got %g km, want about 55.6", got.DistanceKm)
	}
	// Due north.
	if math.Abs(got.BearingDeg-0) > 0.5 {
		t.Errorf("bearing: got %g°, want about 0", got.BearingDeg)
	}
}

func TestProximityReportBearings(t *testing.T) {
	r := &Result{Zones: []*Zone{
		zoneAt("zone-1", 0, 0),
		zoneAt("zone-2", 1, 0),
	}}
	refs := []ReferencePoint{{Name: "pilot station", Point: geom.Point{X: 0.5, Y: 0}}}
	report := ProximityReport(r, refs)
	if len(report) != 2 {
		t.Fatalf("report entries: got %d, want 2", len(report))
	}
	// Zone 1 looks east toward the station, zone 2 west.
	if math.Abs(report[0].BearingDeg-90) > 0.5 {
		t.Errorf("zone-1 bearing: got %g°, want about 90", report[0].BearingDeg)
	}
	if math.Abs(report[1].BearingDeg-270) > 0.5 {
		t.Errorf("zone-2 bearing: got %g°, want about 270", report[1].BearingDeg)
	}
	if math.Abs(report[0].DistanceKm-report[1].DistanceKm) > 0.01 {
		t.Errorf("symmetric distances differ: %g vs %g", report[0].DistanceKm, report[1].DistanceKm)
	}
}

func TestProximityReportNoReferences(t *testing.T) {
	r := &Result{Zones: []*Zone{zoneAt("zone-1", 0, 0)}}
	if got := ProximityReport(r, nil); got != nil {
		t.Errorf("report with no references: got %d entries, want none", len(got))
	}
}

func TestHaversineKm(t *testing.T) {
	// One degree of latitude at the equator.
	got := haversineKm(geom.Point{X: 0, Y: 0}, geom.Point{X: 0, Y: 1})
	if math.Abs(got-111.19) > 0.5 {
		t.Errorf("1° latitude: got %g km, want about 111.19", got)
	}
	if d := haversineKm(geom.Point{X: 5, Y: 5}, geom.Point{X: 5, Y: 5}); d != 0 {
		t.Errorf("zero distance: got %g", d)
	}
}
