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

package hullzoneutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/oceanmodel/hullzone"
)

// GetStringMapString returns the map config option with the given
// name. Command-line flags carry maps as JSON strings, config files as
// native maps; both forms are accepted.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	switch t := cfg.Get(varName).(type) {
	case string:
		out := make(map[string]string)
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			panic(fmt.Errorf("hullzone: parsing map flag %s: %v", varName, err))
		}
		return out
	default:
		return cast.ToStringMapString(t)
	}
}

// LoadFeatureCollection reads a GeoJSON FeatureCollection from path.
// The path may contain environment variables.
func LoadFeatureCollection(path string) (*hullzone.FeatureCollection, error) {
	b, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("hullzone: reading %s: %w", path, err)
	}
	fc := new(hullzone.FeatureCollection)
	if err := json.Unmarshal(b, fc); err != nil {
		return nil, fmt.Errorf("hullzone: parsing %s: %w", path, err)
	}
	return fc, nil
}

// LoadStudyArea reads the study-area polygon from path: the first
// valid polygonal feature in the file.
func LoadStudyArea(path string) (*hullzone.Feature, error) {
	fc, err := LoadFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	for _, f := range fc.Features {
		if _, ok := f.Polygonal(); ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("hullzone: %s contains no polygonal feature", path)
}

// LoadConstraints reads one GeoJSON file per constraint category. A
// category that fails to load entirely is logged and treated as zero
// constraints from that category rather than failing the computation.
func LoadConstraints(files map[string]string, lg logrus.FieldLogger) hullzone.ConstraintSet {
	out := make(hullzone.ConstraintSet, len(files))
	for key, path := range files {
		fc, err := LoadFeatureCollection(path)
		if err != nil {
			lg.WithError(err).WithField("constraint", key).Warn("constraint category failed to load; continuing without it")
			out[key] = &hullzone.FeatureCollection{}
			continue
		}
		out[key] = fc
	}
	return out
}

// LoadReferencePoints reads named point features from a GeoJSON file.
// Features without point geometry or a "name" property are skipped.
func LoadReferencePoints(path string) ([]hullzone.ReferencePoint, error) {
	fc, err := LoadFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	var refs []hullzone.ReferencePoint
	for _, f := range fc.Features {
		p, ok := f.Geom.(geom.Point)
		if !ok {
			continue
		}
		name := cast.ToString(f.Properties["name"])
		if name == "" {
			continue
		}
		refs = append(refs, hullzone.ReferencePoint{Name: name, Point: p})
	}
	return refs, nil
}

// checkOutputFile expands environment variables in the output path and
// ensures its directory exists.
func checkOutputFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("hullzone: no output file specified")
	}
	path = os.ExpandEnv(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("hullzone: creating output directory: %w", err)
		}
	}
	return path, nil
}
