/*
Copyright © 2024 the RTE-Go authors.
This file is part of RTE-Go.

RTE-Go is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RTE-Go is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RTE-Go.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package rrtmgputil wires the radiative-flux toolkit into a
// command-line interface.
package rrtmgputil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	rrtmgp "github.com/oelbert/pyRTE-RRTMGP"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the toolkit.
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
			name: "Engine",
			usage: `
              Engine selects the registered optics engine that performs the
              gas-optics, cloud-optics, and radiative-transfer computations.`,
			shorthand:  "e",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GasOpticsFile",
			usage: `
              GasOpticsFile is the path or URL of the gas-optics
              (k-distribution) data file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "CloudOpticsFile",
			usage: `
              CloudOpticsFile is the path or URL of the cloud-optics data
              file. It is only needed when Clouds is true.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "AtmosphereFile",
			usage: `
              AtmosphereFile is the path or URL of a stored atmosphere
              file. When set it replaces the synthetic profiles.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "ReferenceFile",
			usage: `
              ReferenceFile is the path or URL of the reference flux file
              used by the validate command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the NetCDF file that computed fluxes are
              written to.`,
			shorthand:  "o",
			defaultVal: "fluxes.nc",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Problem",
			usage: `
              Problem selects the longwave formulation: 'absorption' for a
              no-scattering absorption/emission problem or 'two-stream'.
              Shortwave runs are always two-stream.`,
			defaultVal: "absorption",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Clouds",
			usage: `
              Clouds overlays the demonstration cloud field on the synthetic
              profiles and includes cloud optics in the calculation.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "DeltaScale",
			usage: `
              DeltaScale applies a delta-scaling correction to the cloud
              optical properties before they are merged into the gas optics.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Profiles.SST",
			usage: `
              Profiles.SST is the sea-surface temperature [K] of the
              synthetic profiles.`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Profiles.NColumns",
			usage: `
              Profiles.NColumns is the number of independent columns.`,
			defaultVal: 8,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Profiles.NLayers",
			usage: `
              Profiles.NLayers is the number of vertical layers.`,
			defaultVal: 72,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Profiles.PerturbSST",
			usage: `
              Profiles.PerturbSST offsets each column's surface temperature
              by up to the given amount [K] so columns are not identical.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "SurfaceEmissivity",
			usage: `
              SurfaceEmissivity is the longwave surface emissivity applied
              to every band and column.`,
			defaultVal: 0.98,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "SurfaceAlbedo",
			usage: `
              SurfaceAlbedo is the shortwave surface albedo (direct and
              diffuse) applied to every band and column.`,
			defaultVal: 0.06,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "SolarZenithCosine",
			usage: `
              SolarZenithCosine is the cosine of the solar zenith angle
              applied to every column.`,
			defaultVal: 0.86,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies derived output variables as
              expressions over the flux fields, for example
              {"flux_net": "flux_down - flux_up"}.`,
			defaultVal: map[string]string{"flux_net": "flux_down - flux_up"},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), validateCmd.Flags()},
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the absolute tolerance for reference flux
              comparison.`,
			defaultVal: rrtmgp.DefaultTolerance,
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "DownloadDir",
			usage: `
              DownloadDir is the directory downloaded data files are
              stored in.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{downloadCmd.Flags()},
		},
		{
			name: "Plot.FluxFile",
			usage: `
              Plot.FluxFile is the NetCDF flux file to plot.`,
			defaultVal: "fluxes.nc",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.OutputFile",
			usage: `
              Plot.OutputFile is the image file the plot is written to;
              the extension selects the format (.png, .svg, .pdf).`,
			defaultVal: "fluxes.png",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.Column",
			usage: `
              Plot.Column is the column to plot.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RTE")

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
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
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
				s := string(b.Bytes())
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
	Root.AddCommand(runCmd)
	runCmd.AddCommand(lwCmd)
	runCmd.AddCommand(swCmd)
	Root.AddCommand(validateCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(downloadCmd)
	Root.AddCommand(initconfigCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("rte: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "rte",
	Short: "Compute atmospheric radiative fluxes.",
	Long: `rte orchestrates atmospheric radiative-flux calculations: it loads
precomputed gas- and cloud-optics data, builds synthetic atmospheric
profiles, hands them to a registered optics engine, and writes, plots,
and validates the resulting fluxes.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'RTE_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("rte v%s\n", rrtmgp.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a radiative-flux calculation.",
	Long: `run computes fluxes for synthetic profiles. Use the 'lw' or 'sw'
subcommand to choose the spectral region.`,
	DisableAutoGenTag: true,
}

var lwCmd = &cobra.Command{
	Use:   "lw",
	Short: "Compute longwave fluxes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fluxes, plev, err := runFromConfig(Cfg, false)
		if err != nil {
			return err
		}
		return writeFluxesFromConfig(Cfg, fluxes, plev)
	},
	DisableAutoGenTag: true,
}

var swCmd = &cobra.Command{
	Use:   "sw",
	Short: "Compute shortwave fluxes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fluxes, plev, err := runFromConfig(Cfg, true)
		if err != nil {
			return err
		}
		return writeFluxesFromConfig(Cfg, fluxes, plev)
	},
	DisableAutoGenTag: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate [lw|sw]",
	Short: "Compare computed fluxes against a reference file.",
	Long: `validate runs a flux calculation and compares the result against the
precomputed fluxes in ReferenceFile. The command fails if any element
differs by more than Tolerance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shortwave, err := parseRegion(args[0])
		if err != nil {
			return err
		}
		cmp, err := validateFromConfig(Cfg, shortwave)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"elements":   cmp.N,
			"maxAbsDiff": cmp.MaxAbsDiff,
			"tolerance":  cmp.Tolerance,
		}).Info("reference comparison finished")
		if !cmp.Within() {
			return fmt.Errorf("rte: %s", cmp)
		}
		cmd.Println(cmp.String())
		return nil
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot flux profiles from a flux file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotFromConfig(Cfg)
	},
	DisableAutoGenTag: true,
}

var downloadCmd = &cobra.Command{
	Use:   "download url [url...]",
	Short: "Download optics or reference data files.",
	Long: `download fetches the given data file URLs into DownloadDir,
retrying transient failures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, u := range args {
			dst, err := downloadFile(u, Cfg.GetString("DownloadDir"))
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"url": u, "file": dst}).Info("downloaded")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var initconfigCmd = &cobra.Command{
	Use:   "initconfig file",
	Short: "Write a configuration file scaffold.",
	Long: `initconfig writes a TOML configuration file containing the default
option values to the given path, as a starting point for editing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := WriteDefaultConfig(args[0]); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"file": args[0]}).Info("wrote configuration scaffold")
		return nil
	},
	DisableAutoGenTag: true,
}

func parseRegion(s string) (shortwave bool, err error) {
	switch s {
	case "lw", "longwave":
		return false, nil
	case "sw", "shortwave":
		return true, nil
	default:
		return false, fmt.Errorf("rte: unknown spectral region %q; want lw or sw", s)
	}
}
