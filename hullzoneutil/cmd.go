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
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oceanmodel/hullzone"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to HullZone.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, logging goes to
              standard output only.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "CacheDir",
			usage: `
              CacheDir is the directory where calculation results are cached
              between runs. If left blank, results are only cached in memory.
              It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "GridResolution",
			usage: `
              GridResolution is the fine-pass sample spacing in degrees of
              longitude and latitude.`,
			defaultVal: hullzone.DefaultGridResolution,
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "BufferSize",
			usage: `
              BufferSize is the radius in degrees of the disk each accepted
              sample point is grown into. It should exceed half the grid
              resolution so that neighboring disks overlap.`,
			defaultVal: hullzone.DefaultBufferSize,
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "force",
			usage: `
              force recalculates the zones even when a cached result exists
              for the current constraint data and grid resolution.`,
			shorthand:  "f",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{calcCmd.Flags()},
		},
		{
			name: "ConstraintFiles",
			usage: `
              ConstraintFiles maps each constraint-category key (for example
              "marine park") to the GeoJSON file holding that category's
              polygons. Paths can include environment variables.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "StudyAreaFile",
			usage: `
              StudyAreaFile is the GeoJSON file holding the study-area polygon
              that bounds all candidate zones. It can include environment
              variables.`,
			defaultVal: "study_area.geojson",
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "LandFile",
			usage: `
              LandFile is the GeoJSON file holding land polygons to subtract
              from the study area. If left blank the whole study area counts
              as water. It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{calcCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path the calculated zone collection is written
              to as GeoJSON. It can include environment variables.`,
			defaultVal: "hullzone_output.geojson",
			flagsets:   []*pflag.FlagSet{calcCmd.Flags()},
		},
		{
			name: "ReferencePointsFile",
			usage: `
              ReferencePointsFile is a GeoJSON file of named points (such as
              anchorages) used for the proximity report served alongside the
              zones. It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "ListenAddr",
			usage: `
              ListenAddr is the address the zone server listens on.`,
			defaultVal: "localhost:8484",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "Timeout",
			usage: `
              Timeout is the wall-clock limit for one zone calculation, in
              Go duration format (for example "10m").`,
			defaultVal: "10m",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("HULLZONE")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := b.String()
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(calcCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("hullzone: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// calcConfig assembles the shared calculation settings from Cfg.
func calcConfig() CalcConfig {
	return CalcConfig{
		ConstraintFiles: GetStringMapString("ConstraintFiles", Cfg),
		StudyAreaFile:   Cfg.GetString("StudyAreaFile"),
		LandFile:        Cfg.GetString("LandFile"),
		OutputFile:      Cfg.GetString("OutputFile"),
		LogFile:         Cfg.GetString("LogFile"),
		CacheDir:        Cfg.GetString("CacheDir"),
		GridResolution:  Cfg.GetFloat64("GridResolution"),
		BufferSize:      Cfg.GetFloat64("BufferSize"),
		Force:           Cfg.GetBool("force"),
	}
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "hullzone",
	Short: "A hull-cleaning zone derivation tool.",
	Long: `HullZone derives the geographic zones where hull cleaning is allowed,
given a study area, land polygons, and polygonal constraint categories.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'HULLZONE_var' where 'var'
is the name of the variable to be set. Many configuration variables are
additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of HullZone.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("HullZone v%s\n", hullzone.Version)
	},
	DisableAutoGenTag: true,
}

// calcCmd runs one zone calculation and writes the result.
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate the allowed zones.",
	Long: `calc runs one zone calculation from the configured GeoJSON inputs and
writes the resulting zone collection to OutputFile as GeoJSON. A cached
result is reused unless --force is given or the constraint data or grid
resolution changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Calc(cmd.Context(), calcConfig())
	},
	DisableAutoGenTag: true,
}

// serveCmd starts the HTTP orchestration layer.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve zone calculations over HTTP.",
	Long: `serve starts the HTTP server exposing calculation, status-polling,
zone, and proximity endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := time.ParseDuration(Cfg.GetString("Timeout"))
		if err != nil {
			return fmt.Errorf("hullzone: parsing Timeout: %w", err)
		}
		return Serve(cmd.Context(), ServeConfig{
			CalcConfig:          calcConfig(),
			ListenAddr:          Cfg.GetString("ListenAddr"),
			Timeout:             timeout,
			ReferencePointsFile: Cfg.GetString("ReferencePointsFile"),
		})
	},
	DisableAutoGenTag: true,
}
