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
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

func init() {
	gob.Register(geom.Point{})
	gob.Register(geom.Polygon{})
	gob.Register(geom.MultiPolygon{})
	gob.Register(geom.LineString{})
	gob.Register(geom.MultiLineString{})
	gob.Register(geom.MultiPoint{})
}

// A Feature is one geometry plus an open-ended property map. All
// coordinates are interpreted as geographic degrees (longitude = X,
// latitude = Y). A Feature whose geometry failed to decode has a nil
// Geom; the engine skips such features rather than failing the run.
type Feature struct {
	Geom       geom.Geom
	Properties map[string]interface{}
}

// A FeatureCollection is an ordered sequence of Features.
type FeatureCollection struct {
	Features []*Feature
}

// A ConstraintSet maps a constraint-category key (e.g. "marine park")
// to the polygons excluding that category's area from candidate zones.
// Non-polygonal features in a constraint collection are ignored.
type ConstraintSet map[string]*FeatureCollection

// FeatureCount returns the number of features in each category of s.
func (s ConstraintSet) FeatureCount() map[string]int {
	counts := make(map[string]int, len(s))
	for key, fc := range s {
		if fc == nil {
			counts[key] = 0
			continue
		}
		counts[key] = len(fc.Features)
	}
	return counts
}

// Polygonal returns the polygonal geometry of f, or false if f holds
// some other geometry type or failed validation.
func (f *Feature) Polygonal() (geom.Polygonal, bool) {
	if f == nil || f.Geom == nil {
		return nil, false
	}
	p, ok := f.Geom.(geom.Polygonal)
	if !ok {
		return nil, false
	}
	if err := validatePolygonal(p); err != nil {
		return nil, false
	}
	return p, true
}

// ringCloseTolerance is the maximum distance, in degrees, between the
// first and last coordinate of a ring for the ring to count as closed.
const ringCloseTolerance = 1.e-9

// validatePolygonal checks the ring invariant: every ring has at least
// 4 coordinate pairs and is closed within tolerance. A violation is a
// recoverable per-feature failure, not a fatal one.
func validatePolygonal(p geom.Polygonal) error {
	for _, poly := range p.Polygons() {
		for i, ring := range poly {
			if len(ring) < 4 {
				return fmt.Errorf("hullzone: ring %d has %d coordinates; need at least 4", i, len(ring))
			}
			first, last := ring[0], ring[len(ring)-1]
			if math.Abs(first.X-last.X) > ringCloseTolerance ||
				math.Abs(first.Y-last.Y) > ringCloseTolerance {
				return fmt.Errorf("hullzone: ring %d is not closed", i)
			}
		}
	}
	return nil
}

// geoJSONFeature and geoJSONCollection are the wire form of Feature and
// FeatureCollection.
type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type geoJSONCollection struct {
	Type     string            `json:"type"`
	Features []*geoJSONFeature `json:"features"`
}

// MarshalJSON encodes fc as a GeoJSON FeatureCollection. Features with
// nil geometry are dropped from the output.
func (fc *FeatureCollection) MarshalJSON() ([]byte, error) {
	o := geoJSONCollection{Type: "FeatureCollection"}
	for _, f := range fc.Features {
		if f == nil || f.Geom == nil {
			continue
		}
		g, err := geojson.ToGeoJSON(f.Geom)
		if err != nil {
			return nil, fmt.Errorf("hullzone: encoding feature geometry: %w", err)
		}
		o.Features = append(o.Features, &geoJSONFeature{
			Type:       "Feature",
			Geometry:   g,
			Properties: f.Properties,
		})
	}
	if o.Features == nil {
		o.Features = []*geoJSONFeature{}
	}
	return json.Marshal(o)
}

// UnmarshalJSON decodes a GeoJSON FeatureCollection. A feature whose
// geometry cannot be decoded is kept with a nil Geom so that callers
// can count and log it; the engine skips it.
func (fc *FeatureCollection) UnmarshalJSON(b []byte) error {
	var o geoJSONCollection
	if err := json.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("hullzone: decoding feature collection: %w", err)
	}
	fc.Features = make([]*Feature, 0, len(o.Features))
	for _, jf := range o.Features {
		f := &Feature{Properties: jf.Properties}
		if jf.Geometry != nil {
			if g, err := geojson.FromGeoJSON(jf.Geometry); err == nil {
				f.Geom = g
			}
		}
		fc.Features = append(fc.Features, f)
	}
	return nil
}

// polygonalFeatures extracts the valid polygonal features from fc,
// in order. nSkipped reports how many features were non-polygonal,
// malformed, or undecodable.
func polygonalFeatures(fc *FeatureCollection) (polys []geom.Polygonal, nSkipped int) {
	if fc == nil {
		return nil, 0
	}
	for _, f := range fc.Features {
		p, ok := f.Polygonal()
		if !ok {
			nSkipped++
			continue
		}
		polys = append(polys, p)
	}
	return polys, nSkipped
}
