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

// Package hullzoneutil binds configuration, input loading, and the
// command-line interface to the zone engine.
package hullzoneutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oceanmodel/hullzone"
	"github.com/oceanmodel/hullzone/zoneserve"
)

// CalcConfig holds everything one calc run needs.
type CalcConfig struct {
	ConstraintFiles map[string]string
	StudyAreaFile   string
	LandFile        string
	OutputFile      string
	LogFile         string
	CacheDir        string

	GridResolution float64
	BufferSize     float64
	Force          bool
}

// A FileSource loads engine inputs from GeoJSON files on each
// computation, so edits on disk are picked up by the next run.
type FileSource struct {
	ConstraintFiles map[string]string
	StudyAreaFile   string
	LandFile        string
	Log             logrus.FieldLogger
}

// Load implements zoneserve.DataSource.
func (s *FileSource) Load(ctx context.Context) (hullzone.ConstraintSet, *hullzone.Feature, *hullzone.FeatureCollection, error) {
	lg := s.Log
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	study, err := LoadStudyArea(s.StudyAreaFile)
	if err != nil {
		return nil, nil, nil, err
	}
	var land *hullzone.FeatureCollection
	if s.LandFile != "" {
		land, err = LoadFeatureCollection(s.LandFile)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return LoadConstraints(s.ConstraintFiles, lg), study, land, nil
}

// Calc runs one zone computation from configured GeoJSON inputs and
// writes the resulting zone collection to c.OutputFile as GeoJSON.
func Calc(ctx context.Context, c CalcConfig) error {
	lg, closeLog, err := newLogger(c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	outputFile, err := checkOutputFile(c.OutputFile)
	if err != nil {
		return err
	}
	source := &FileSource{
		ConstraintFiles: c.ConstraintFiles,
		StudyAreaFile:   c.StudyAreaFile,
		LandFile:        c.LandFile,
		Log:             lg,
	}
	constraints, study, land, err := source.Load(ctx)
	if err != nil {
		return err
	}

	engine := &hullzone.Engine{Log: lg, CacheDir: os.ExpandEnv(c.CacheDir)}
	result, err := engine.ComputeZones(ctx, constraints, study, land, hullzone.Options{
		GridResolution:   c.GridResolution,
		BufferSize:       c.BufferSize,
		ForceRecalculate: c.Force,
		Progress: func(percent int, message string) {
			lg.Infof("%3d%% %s", percent, message)
		},
	})
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(result.FeatureCollection(), "", "  ")
	if err != nil {
		return fmt.Errorf("hullzone: encoding result: %w", err)
	}
	if err := os.WriteFile(outputFile, b, 0o644); err != nil {
		return fmt.Errorf("hullzone: writing %s: %w", outputFile, err)
	}
	lg.WithFields(logrus.Fields{
		"zones":  len(result.Zones),
		"output": outputFile,
	}).Info("wrote zone collection")
	return nil
}

// ServeConfig holds everything the serve command needs.
type ServeConfig struct {
	CalcConfig
	ListenAddr          string
	Timeout             time.Duration
	ReferencePointsFile string
}

// Serve runs the HTTP orchestration layer until the listener fails or
// ctx is canceled.
func Serve(ctx context.Context, c ServeConfig) error {
	lg, closeLog, err := newLogger(c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	var refs []hullzone.ReferencePoint
	if c.ReferencePointsFile != "" {
		refs, err = LoadReferencePoints(c.ReferencePointsFile)
		if err != nil {
			return err
		}
	}
	engine := &hullzone.Engine{Log: lg, CacheDir: os.ExpandEnv(c.CacheDir)}
	source := &FileSource{
		ConstraintFiles: c.ConstraintFiles,
		StudyAreaFile:   c.StudyAreaFile,
		LandFile:        c.LandFile,
		Log:             lg,
	}
	s, err := zoneserve.NewServer(engine, source, zoneserve.Config{
		Timeout:         c.Timeout,
		GridResolution:  c.GridResolution,
		BufferSize:      c.BufferSize,
		ReferencePoints: refs,
	})
	if err != nil {
		return err
	}
	s.Log = lg

	srv := &http.Server{
		Addr:              c.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	go func() {
		<-ctx.Done()
		_ = s.Close()
		_ = srv.Close()
	}()
	lg.Infof("listening on http://%s", c.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newLogger builds the run logger, teeing to the logfile when one is
// configured.
func newLogger(logFile string) (logrus.FieldLogger, func(), error) {
	lg := logrus.New()
	lg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if logFile == "" {
		return lg, func() {}, nil
	}
	f, err := os.Create(os.ExpandEnv(logFile))
	if err != nil {
		return nil, nil, fmt.Errorf("hullzone: creating log file: %w", err)
	}
	lg.SetOutput(io.MultiWriter(os.Stdout, f))
	return lg, func() { _ = f.Close() }, nil
}
