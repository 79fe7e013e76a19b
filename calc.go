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

// Package hullzone derives the geographic zones where hull cleaning is
// allowed: it subtracts land and polygonal constraints from a study
// area, samples the remaining water on an adaptive grid, and merges
// the accepted points into validated zone polygons.
package hullzone

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"

	"github.com/oceanmodel/hullzone/internal/hash"
)

func init() {
	gob.Register(&Result{})
}

// Fatal pipeline conditions. Anything else the pipeline can degrade
// around is logged and skipped instead.
var (
	// ErrNoCandidateArea means the sampler accepted zero points: the
	// study area holds no water outside the constraints.
	ErrNoCandidateArea = errors.New("hullzone: no candidate area found")

	// ErrNoZones means synthesis and optimization left no zone at or
	// above the minimum area.
	ErrNoZones = errors.New("hullzone: no zones remain after optimization")

	// ErrDegenerateStudyArea means the study area is missing, not
	// polygonal, or has no extent.
	ErrDegenerateStudyArea = errors.New("hullzone: study area is degenerate")
)

// Default tunables. The buffer radius exceeds half the fine-pass step
// so that disks of adjacent accepted points always overlap.
const (
	DefaultGridResolution = 0.005
	DefaultBufferSize     = 0.0075
)

// cacheKeyLen is the length the cache-key digest is truncated to.
const cacheKeyLen = 12

// Options configure one call to ComputeZones. The zero value selects
// the defaults.
type Options struct {
	// GridResolution is the fine-pass sample spacing in degrees.
	GridResolution float64
	// BufferSize is the point-disk radius in degrees.
	BufferSize float64
	// ForceRecalculate bypasses the cache and overwrites the entry
	// for this key.
	ForceRecalculate bool
	// Progress, if non-nil, receives phase updates with a
	// monotonically non-decreasing percentage from 0 to 100.
	Progress func(percent int, message string)
}

func (o Options) withDefaults() Options {
	if o.GridResolution <= 0 {
		o.GridResolution = DefaultGridResolution
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	return o
}

// An Engine computes zone sets. The zero value is ready to use and
// caches results in memory only; set CacheDir to persist them across
// processes. Engines are safe for concurrent use, but the pipeline
// itself runs one computation per key at a time.
type Engine struct {
	// Log receives pipeline diagnostics. If nil, the logrus standard
	// logger is used.
	Log logrus.FieldLogger

	// CacheDir, if nonempty, is the directory where results are
	// persisted, one gob file per cache key.
	CacheDir string

	// MemCacheSize is the maximum number of results held in memory
	// (default 10).
	MemCacheSize int

	mx    sync.Mutex
	cache *requestcache.Cache
}

// computeRequest carries the extracted inputs of one run through the
// cache pipeline. It is never serialized; only the Result is.
type computeRequest struct {
	constraints map[string][]geom.Polygonal
	study       geom.Polygonal
	land        []geom.Polygonal
	opts        Options
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	return logrus.StandardLogger()
}

func (e *Engine) memCacheSize() int {
	if e.MemCacheSize > 0 {
		return e.MemCacheSize
	}
	return 10
}

func (e *Engine) newCache() *requestcache.Cache {
	process := func(ctx context.Context, in interface{}) (interface{}, error) {
		return e.run(ctx, in.(*computeRequest))
	}
	funcs := []requestcache.CacheFunc{
		requestcache.Deduplicate(),
		requestcache.Memory(e.memCacheSize()),
	}
	if e.CacheDir != "" {
		funcs = append(funcs, requestcache.Disk(e.CacheDir,
			requestcache.MarshalGob, requestcache.UnmarshalGob))
	}
	return requestcache.NewCache(process, 1, funcs...)
}

func (e *Engine) getCache() *requestcache.Cache {
	e.mx.Lock()
	defer e.mx.Unlock()
	if e.cache == nil {
		e.cache = e.newCache()
	}
	return e.cache
}

// resetCache rebuilds the cache pipeline so the in-memory layer drops
// entries superseded by a forced run; the disk layer rereads files.
// The abandoned pipeline has no shutdown mechanism, so each forced run
// leaves its idle worker goroutines behind for the life of the
// process.
func (e *Engine) resetCache() {
	e.mx.Lock()
	e.cache = e.newCache()
	e.mx.Unlock()
}

// CacheKey returns the digest that keys the result cache: the sorted
// constraint-category keys, the per-key feature counts, and the grid
// resolution. Geometry content does not participate, so a geometry
// change with stable counts reuses the cached result unless the caller
// forces recomputation.
func CacheKey(constraints ConstraintSet, gridResolution float64) string {
	keys := make([]string, 0, len(constraints))
	for k := range constraints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	counts := constraints.FeatureCount()
	in := struct {
		Keys       []string
		Counts     []int
		Resolution float64
	}{Keys: keys, Resolution: gridResolution}
	for _, k := range keys {
		in.Counts = append(in.Counts, counts[k])
	}
	return hash.Hash(in)[:cacheKeyLen]
}

// ComputeZones runs the zone-derivation pipeline, or returns the
// cached Result for the same constraint shape and resolution when one
// exists and opts.ForceRecalculate is false. Failed runs are never
// cached. The context cancels the pipeline between grid rows and
// cluster unions.
func (e *Engine) ComputeZones(ctx context.Context, constraints ConstraintSet, studyArea *Feature, land *FeatureCollection, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	opts.Progress = monotonic(opts.Progress)
	lg := e.logger()

	study, ok := studyArea.Polygonal()
	if !ok {
		return nil, ErrDegenerateStudyArea
	}
	landPolys, nSkipped := polygonalFeatures(land)
	if nSkipped > 0 {
		lg.WithField("skipped", nSkipped).Warn("ignoring malformed land features")
	}
	req := &computeRequest{
		constraints: make(map[string][]geom.Polygonal, len(constraints)),
		study:       study,
		land:        landPolys,
		opts:        opts,
	}
	for key, fc := range constraints {
		polys, nBad := polygonalFeatures(fc)
		if nBad > 0 {
			lg.WithFields(logrus.Fields{
				"constraint": key,
				"skipped":    nBad,
			}).Warn("ignoring malformed constraint features")
		}
		req.constraints[key] = polys
	}
	key := CacheKey(constraints, opts.GridResolution)

	if opts.ForceRecalculate {
		result, err := e.run(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := e.writeCacheFile(key, result); err != nil {
			lg.WithError(err).WithField("key", key).Warn("failed to persist forced result")
		}
		e.resetCache()
		return result, nil
	}

	r := e.getCache().NewRequest(ctx, req, key)
	out, err := r.Result()
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}

// writeCacheFile overwrites the on-disk slot for key with result, in
// the same format the cache's disk layer reads.
func (e *Engine) writeCacheFile(key string, result *Result) error {
	if e.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(e.CacheDir, 0o755); err != nil {
		return err
	}
	// The cache's disk layer decodes each file into a pointer to
	// interface, so the payload must be encoded as one.
	var payload interface{} = result
	b, err := requestcache.MarshalGob(&payload)
	if err != nil {
		return fmt.Errorf("hullzone: encoding cached result: %w", err)
	}
	fname := filepath.Join(e.CacheDir, key+requestcache.FileExtension)
	if err := os.WriteFile(fname, b, 0o644); err != nil {
		return fmt.Errorf("hullzone: writing cached result: %w", err)
	}
	return nil
}

// run executes the full pipeline: index constraints, build the water
// mask, sample, synthesize, optimize.
func (e *Engine) run(ctx context.Context, req *computeRequest) (*Result, error) {
	start := time.Now()
	lg := e.logger()
	report := req.opts.Progress
	report(0, "starting zone calculation")

	index := newSpatialIndex(indexCellSize)
	keys := make([]string, 0, len(req.constraints))
	for k := range req.constraints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, p := range req.constraints[k] {
			index.insert(k, p)
		}
	}
	report(10, "indexed constraint polygons")

	wm, err := buildWaterMask(req.study, req.land, lg)
	if err != nil {
		return nil, err
	}
	if wm.empty() {
		return nil, ErrNoCandidateArea
	}
	report(20, "built water mask")

	s := &sampler{
		mask:       wm,
		index:      index,
		resolution: req.opts.GridResolution,
		log:        lg,
		progress: func(frac float64) {
			report(20+int(frac*50), "sampling candidate points")
		},
	}
	points, err := s.sample(ctx)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoCandidateArea
	}
	report(70, "sampled candidate points")

	candidates, err := synthesizeZones(ctx, points, req.opts.BufferSize, lg)
	if err != nil {
		return nil, err
	}
	report(85, "synthesized zone candidates")

	zones := optimizeZones(candidates, wm, index, time.Now(), lg)
	if len(zones) == 0 {
		return nil, ErrNoZones
	}
	report(100, "zone calculation complete")

	result := &Result{
		Zones: zones,
		Metadata: Metadata{
			ElapsedMillis:        time.Since(start).Milliseconds(),
			CandidatePoints:      len(points),
			ConstraintsProcessed: index.len(),
			GridResolution:       req.opts.GridResolution,
		},
	}
	lg.WithFields(logrus.Fields{
		"zones":       len(zones),
		"points":      len(points),
		"constraints": index.len(),
		"elapsed":     time.Since(start),
	}).Info("zone calculation finished")
	return result, nil
}

// monotonic wraps a progress callback so reported percentages never
// decrease, clamping to [0, 100]. A nil callback becomes a no-op.
func monotonic(f func(int, string)) func(int, string) {
	if f == nil {
		return func(int, string) {}
	}
	last := 0
	return func(percent int, message string) {
		if percent < last {
			percent = last
		}
		if percent > 100 {
			percent = 100
		}
		last = percent
		f(percent, message)
	}
}
