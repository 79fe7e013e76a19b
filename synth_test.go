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
	"errors"
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

func TestSynthesizeZonesEmpty(t *testing.T) {
	zones, err := synthesizeZones(context.Background(), nil, testBuffer, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("synthesizeZones: %v", err)
	}
	if len(zones) != 0 {
		t.Errorf("zones from no points: got %d, want 0", len(zones))
	}
}

// TestSynthesizeZonesMergesNeighbors: a row of points at the fine grid
// spacing forms one zone; their disks overlap by construction.
func TestSynthesizeZonesMergesNeighbors(t *testing.T) {
	var points []geom.Point
	for i := 0; i < 5; i++ {
		points = append(points, geom.Point{X: float64(i) * testResolution, Y: 0})
	}
	zones, err := synthesizeZones(context.Background(), points, testBuffer, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("synthesizeZones: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1", len(zones))
	}
	// The merged zone spans the whole row plus a buffer on each end.
	b := zones[0].Bounds()
	wantWidth := 4*testResolution + 2*testBuffer
	if got := b.Max.X - b.Min.X; got < 0.9*wantWidth {
		t.Errorf("merged zone width: got %g, want about %g", got, wantWidth)
	}
}

// TestSynthesizeZonesSplitsDistant: two points farther apart than the
// link distance form two zones.
func TestSynthesizeZonesSplitsDistant(t *testing.T) {
	link := linkFactor * testBuffer
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 2 * link, Y: 0},
	}
	zones, err := synthesizeZones(context.Background(), points, testBuffer, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("synthesizeZones: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("zones: got %d, want 2", len(zones))
	}
}

// TestSynthesizeZonesTransitive: connectivity chains through
// intermediate points, so three points in a line where only adjacent
// pairs are linked still form a single zone.
func TestSynthesizeZonesTransitive(t *testing.T) {
	step := linkFactor * testBuffer * 0.9
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: step, Y: 0},
		{X: 2 * step, Y: 0},
	}
	zones, err := synthesizeZones(context.Background(), points, testBuffer, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("synthesizeZones: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1", len(zones))
	}
}

// TestSynthesizeZonesDenseGridArea: the union of a dense grid of
// overlapping disks keeps the whole accumulated area rather than
// collapsing to a fragment of it.
func TestSynthesizeZonesDenseGridArea(t *testing.T) {
	var points []geom.Point
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			points = append(points, geom.Point{
				X: float64(i) * testResolution,
				Y: float64(j) * testResolution,
			})
		}
	}
	zones, err := synthesizeZones(context.Background(), points, testBuffer, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("synthesizeZones: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("zones: got %d, want 1", len(zones))
	}
	// The disks cover at least the 0.5°×0.5° square spanned by the
	// grid points, and at most that square inflated by the disk radius.
	extent := 0.5 * 0.5
	inflated := (0.5 + 2*testBuffer) * (0.5 + 2*testBuffer)
	if got := zones[0].Area(); got < extent || got > inflated {
		t.Errorf("merged zone area %g; want between %g and %g", got, extent, inflated)
	}
}

func TestSynthesizeZonesDuplicatePoints(t *testing.T) {
	points := []geom.Point{
		{X: 0.5, Y: 0.5},
		{X: 0.5, Y: 0.5},
		{X: 0.5, Y: 0.5},
	}
	zones, err := synthesizeZones(context.Background(), points, testBuffer, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("synthesizeZones: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("zones from duplicates: got %d, want 1", len(zones))
	}
}

func TestSynthesizeZonesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := synthesizeZones(ctx, []geom.Point{{X: 0, Y: 0}}, testBuffer, logrus.StandardLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got %v, want context.Canceled", err)
	}
}

func TestConnected(t *testing.T) {
	link := linkFactor * testBuffer
	mk := func(p geom.Point) *diskNode {
		return &diskNode{Polygonal: pointDisk(p, testBuffer), center: p}
	}
	a := mk(geom.Point{X: 0, Y: 0})
	cases := []struct {
		name string
		b    *diskNode
		want bool
	}{
		{"identical", mk(geom.Point{X: 0, Y: 0}), true},
		{"within link distance", mk(geom.Point{X: link * 0.99, Y: 0}), true},
		{"overlapping disks", mk(geom.Point{X: 1.5 * testBuffer, Y: 0}), true},
		{"far apart", mk(geom.Point{X: 3 * link, Y: 0}), false},
	}
	for _, c := range cases {
		if got := connected(a, c.b, link); got != c.want {
			t.Errorf("%s: connected = %v, want %v", c.name, got, c.want)
		}
	}
}
