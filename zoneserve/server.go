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

// Package zoneserve is the HTTP orchestration layer around the zone
// engine: it runs one computation at a time, exposes pollable
// progress, and serves the finished zones and proximity report.
package zoneserve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oceanmodel/hullzone"
)

// Computation states reported by the status endpoint.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// DefaultTimeout bounds the wall-clock duration of one computation.
const DefaultTimeout = 10 * time.Minute

// A DataSource supplies the engine inputs for one computation.
type DataSource interface {
	Load(ctx context.Context) (hullzone.ConstraintSet, *hullzone.Feature, *hullzone.FeatureCollection, error)
}

// Config holds server settings.
type Config struct {
	// Timeout is the wall-clock limit for one computation; zero
	// selects DefaultTimeout.
	Timeout time.Duration

	// AllowedOrigin is the CORS origin; "*" when empty.
	AllowedOrigin string

	// GridResolution and BufferSize override the engine defaults when
	// positive.
	GridResolution float64
	BufferSize     float64

	// ReferencePoints are used for the proximity report.
	ReferencePoints []hullzone.ReferencePoint
}

// Status is a poll-safe snapshot of the computation session.
type Status struct {
	State   string `json:"state"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Server owns the computation session. It is safe to poll status and
// results concurrently with a running computation; a second calculate
// request while one runs is rejected.
type Server struct {
	// Log receives server diagnostics. Defaults to the logrus
	// standard logger.
	Log logrus.FieldLogger

	engine *hullzone.Engine
	source DataSource
	config Config
	mux    *http.ServeMux

	mx        sync.Mutex
	running   bool
	status    Status
	result    *hullzone.Result
	proximity []hullzone.ZoneProximity
	cancel    context.CancelFunc
}

// NewServer creates a Server computing with engine from the inputs of
// source.
func NewServer(engine *hullzone.Engine, source DataSource, config Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("zoneserve: nil engine")
	}
	if source == nil {
		return nil, fmt.Errorf("zoneserve: nil data source")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	s := &Server{
		Log:    logrus.StandardLogger(),
		engine: engine,
		source: source,
		config: config,
		status: Status{State: StateIdle},
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/api/calculate", s.handleCalculate)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/zones", s.handleZones)
	s.mux.HandleFunc("/api/proximity", s.handleProximity)
	return s, nil
}

// Close cancels any running computation. The server stays usable for
// status and result requests afterwards.
func (s *Server) Close() error {
	s.mx.Lock()
	cancel := s.cancel
	s.mx.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := s.config.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// calculateRequest is the optional body of POST /api/calculate.
type calculateRequest struct {
	Force bool `json:"force"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req calculateRequest
	if r.Body != nil {
		// An empty or malformed body means a default request.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	s.mx.Lock()
	if s.running {
		s.mx.Unlock()
		http.Error(w, "a calculation is already running", http.StatusConflict)
		return
	}
	s.running = true
	s.status = Status{State: StateRunning, Message: "starting"}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	s.cancel = cancel
	s.mx.Unlock()

	go s.compute(ctx, cancel, req.Force)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(Status{State: StateRunning, Message: "calculation started"}); err != nil {
		s.Log.WithError(err).Error("encoding response")
	}
}

// compute runs one full computation and publishes the terminal state.
func (s *Server) compute(ctx context.Context, cancel context.CancelFunc, force bool) {
	defer cancel()
	lg := s.Log

	constraints, study, land, err := s.source.Load(ctx)
	if err != nil {
		lg.WithError(err).Error("loading computation inputs")
		s.fail(err)
		return
	}
	opts := hullzone.Options{
		GridResolution:   s.config.GridResolution,
		BufferSize:       s.config.BufferSize,
		ForceRecalculate: force,
		Progress: func(percent int, message string) {
			s.mx.Lock()
			if s.status.State == StateRunning {
				s.status.Percent = percent
				s.status.Message = message
			}
			s.mx.Unlock()
		},
	}
	result, err := s.engine.ComputeZones(ctx, constraints, study, land, opts)
	if err != nil {
		lg.WithError(err).Error("zone calculation failed")
		s.fail(err)
		return
	}
	// The engine never returns an empty success, so a completed state
	// always carries zones.
	report := hullzone.ProximityReport(result, s.config.ReferencePoints)

	s.mx.Lock()
	s.running = false
	s.result = result
	s.proximity = report
	s.status = Status{State: StateCompleted, Percent: 100, Message: "calculation complete"}
	s.mx.Unlock()
	lg.WithField("zones", len(result.Zones)).Info("zone calculation complete")
}

func (s *Server) fail(err error) {
	s.mx.Lock()
	s.running = false
	s.status = Status{
		State:   StateFailed,
		Percent: s.status.Percent,
		Message: "calculation failed",
		Error:   err.Error(),
	}
	s.mx.Unlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mx.Lock()
	status := s.status
	s.mx.Unlock()
	s.writeJSON(w, status)
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mx.Lock()
	result := s.result
	s.mx.Unlock()
	if result == nil {
		http.Error(w, "no zones have been calculated", http.StatusNotFound)
		return
	}
	s.writeJSON(w, result.FeatureCollection())
}

func (s *Server) handleProximity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mx.Lock()
	report := s.proximity
	result := s.result
	s.mx.Unlock()
	if result == nil {
		http.Error(w, "no zones have been calculated", http.StatusNotFound)
		return
	}
	if report == nil {
		report = []hullzone.ZoneProximity{}
	}
	s.writeJSON(w, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.WithError(err).Error("encoding response")
	}
}
