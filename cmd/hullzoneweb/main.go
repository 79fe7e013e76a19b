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

// Command hullzoneweb is a standalone web server for the HullZone
// engine, configured with a TOML file instead of the CLI flag set.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/oceanmodel/hullzone"
	"github.com/oceanmodel/hullzone/hullzoneutil"
	"github.com/oceanmodel/hullzone/zoneserve"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

var config = flag.String("config", "hullzoneweb.toml", "Path to the configuration file")

// webConfig is the TOML layout of the configuration file.
type webConfig struct {
	Address             string
	CacheDir            string
	GridResolution      float64
	BufferSize          float64
	Timeout             string
	ConstraintFiles     map[string]string
	StudyAreaFile       string
	LandFile            string
	ReferencePointsFile string
}

func main() {
	flag.Parse()

	f, err := os.Open(os.ExpandEnv(*config))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	var c webConfig
	if _, err = toml.NewDecoder(f).Decode(&c); err != nil {
		log.Fatal(err)
	}
	if c.Address == "" {
		c.Address = ":8484"
	}
	timeout := zoneserve.DefaultTimeout
	if c.Timeout != "" {
		if timeout, err = time.ParseDuration(c.Timeout); err != nil {
			logger.WithError(err).Fatal("parsing Timeout")
		}
	}
	var refs []hullzone.ReferencePoint
	if c.ReferencePointsFile != "" {
		if refs, err = hullzoneutil.LoadReferencePoints(c.ReferencePointsFile); err != nil {
			logger.WithError(err).Fatal("loading reference points")
		}
	}

	logger.Info("setting up...")
	engine := &hullzone.Engine{Log: logger, CacheDir: os.ExpandEnv(c.CacheDir)}
	source := &hullzoneutil.FileSource{
		ConstraintFiles: c.ConstraintFiles,
		StudyAreaFile:   c.StudyAreaFile,
		LandFile:        c.LandFile,
		Log:             logger,
	}
	s, err := zoneserve.NewServer(engine, source, zoneserve.Config{
		Timeout:         timeout,
		GridResolution:  c.GridResolution,
		BufferSize:      c.BufferSize,
		ReferencePoints: refs,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create server")
	}
	s.Log = logger

	srv := &http.Server{
		Addr:              c.Address,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	logger.Infof("listening on http://%s\n", c.Address)
	logger.Fatal(srv.ListenAndServe())
}
