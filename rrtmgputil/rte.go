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

package rrtmgputil

import (
	"fmt"
	"os"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"

	rrtmgp "github.com/oelbert/pyRTE-RRTMGP"
)

// loadGasOptics opens and loads the configured gas-optics data file,
// downloading it first if the path is a URL.
func loadGasOptics(cfg *viper.Viper) (*rrtmgp.GasOpticsData, error) {
	path := cfg.GetString("GasOpticsFile")
	if path == "" {
		return nil, fmt.Errorf("rte: no GasOpticsFile specified")
	}
	path, err := maybeDownload(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rte: opening gas optics file: %v", err)
	}
	defer f.Close()
	d, err := rrtmgp.LoadGasOpticsData(f)
	if err != nil {
		return nil, err
	}
	d.Path = path
	logrus.WithFields(logrus.Fields{
		"file":   path,
		"bands":  d.Disc().NBand(),
		"gpts":   d.Disc().NGpt(),
		"source": sourceName(d),
	}).Info("loaded gas optics data")
	return d, nil
}

func sourceName(d *rrtmgp.GasOpticsData) string {
	if d.Internal() {
		return "internal (longwave)"
	}
	return "solar (shortwave)"
}

// loadCloudOptics opens and loads the configured cloud-optics data
// file. It returns nil without error when no file is configured and
// clouds are disabled.
func loadCloudOptics(cfg *viper.Viper) (*rrtmgp.CloudOpticsData, error) {
	path := cfg.GetString("CloudOpticsFile")
	if path == "" {
		if cfg.GetBool("Clouds") {
			return nil, fmt.Errorf("rte: Clouds is true but no CloudOpticsFile specified")
		}
		return nil, nil
	}
	path, err := maybeDownload(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rte: opening cloud optics file: %v", err)
	}
	defer f.Close()
	d, err := rrtmgp.LoadCloudOpticsData(f)
	if err != nil {
		return nil, err
	}
	d.Path = path
	logrus.WithFields(logrus.Fields{"file": path, "bands": d.Disc().NBand()}).Info("loaded cloud optics data")
	return d, nil
}

// buildState constructs the atmospheric state described by the
// configuration, either loaded from a stored atmosphere file or built
// as synthetic profiles.
func buildState(cfg *viper.Viper, gas *rrtmgp.GasOpticsData, cloud *rrtmgp.CloudOpticsData, shortwave bool) (*rrtmgp.AtmosphericState, error) {
	var state *rrtmgp.AtmosphericState
	var err error
	if path := cfg.GetString("AtmosphereFile"); path != "" {
		state, err = loadAtmosphere(path)
	} else {
		state, err = rrtmgp.SyntheticProfiles(rrtmgp.ProfileConfig{
			SST:         cfg.GetFloat64("Profiles.SST"),
			NCol:        cfg.GetInt("Profiles.NColumns"),
			NLay:        cfg.GetInt("Profiles.NLayers"),
			PerturbSST:  cfg.GetFloat64("Profiles.PerturbSST"),
			MinPressure: gas.PressRefMin,
		})
	}
	if err != nil {
		return nil, err
	}
	if shortwave {
		err = state.SetUniformAlbedo(gas.Disc(), cfg.GetFloat64("SurfaceAlbedo"), cfg.GetFloat64("SolarZenithCosine"))
	} else {
		err = state.SetUniformEmissivity(gas.Disc(), cfg.GetFloat64("SurfaceEmissivity"))
	}
	if err != nil {
		return nil, err
	}
	if cfg.GetBool("Clouds") {
		if err := state.ApplyDemoClouds(cloud); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// loadAtmosphere reads a stored atmosphere file, downloading it first
// if the path is a URL.
func loadAtmosphere(path string) (*rrtmgp.AtmosphericState, error) {
	path, err := maybeDownload(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rte: opening atmosphere file: %v", err)
	}
	defer f.Close()
	state, err := rrtmgp.LoadAtmosphericState(f)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"file":    path,
		"columns": state.NCol(),
		"layers":  state.NLay(),
	}).Info("loaded stored atmosphere")
	return state, nil
}

// runFromConfig performs a full flux calculation from the
// configuration, returning the fluxes and the level pressures.
func runFromConfig(cfg *viper.Viper, shortwave bool) (*rrtmgp.Fluxes, *sparse.DenseArray, error) {
	engine, err := rrtmgp.EngineByName(cfg.GetString("Engine"))
	if err != nil {
		return nil, nil, err
	}
	gas, err := loadGasOptics(cfg)
	if err != nil {
		return nil, nil, err
	}
	cloud, err := loadCloudOptics(cfg)
	if err != nil {
		return nil, nil, err
	}
	state, err := buildState(cfg, gas, cloud, shortwave)
	if err != nil {
		return nil, nil, err
	}
	problem, err := rrtmgp.ParseProblemType(cfg.GetString("Problem"))
	if err != nil {
		return nil, nil, err
	}
	opts := rrtmgp.RunOptions{
		Problem:     problem,
		Clouds:      cfg.GetBool("Clouds"),
		DeltaScale:  cfg.GetBool("DeltaScale"),
		LogProgress: true,
	}
	var fluxes *rrtmgp.Fluxes
	if shortwave {
		fluxes, err = rrtmgp.RunShortwave(engine, gas, cloud, state, opts)
	} else {
		fluxes, err = rrtmgp.RunLongwave(engine, gas, cloud, state, opts)
	}
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"columns": fluxes.NCol(),
		"levels":  fluxes.NLev(),
	}).Info("flux calculation finished")
	return fluxes, state.Plev, nil
}

// writeFluxesFromConfig writes fluxes and derived output variables to
// the configured output file.
func writeFluxesFromConfig(cfg *viper.Viper, fluxes *rrtmgp.Fluxes, plev *sparse.DenseArray) error {
	outFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	vars, err := outputVariables(cfg)
	if err != nil {
		return err
	}
	o, err := rrtmgp.NewOutputter(outFile, vars, nil)
	if err != nil {
		return err
	}
	if err := o.Write(fluxes, plev); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"file": outFile}).Info("wrote fluxes")
	return nil
}

// validateFromConfig runs a flux calculation and compares it against
// the configured reference file.
func validateFromConfig(cfg *viper.Viper, shortwave bool) (*rrtmgp.FluxComparison, error) {
	fluxes, plev, err := runFromConfig(cfg, shortwave)
	if err != nil {
		return nil, err
	}
	if out := cfg.GetString("OutputFile"); out != "" {
		if err := writeFluxesFromConfig(cfg, fluxes, plev); err != nil {
			return nil, err
		}
	}
	refPath := cfg.GetString("ReferenceFile")
	if refPath == "" {
		return nil, fmt.Errorf("rte: no ReferenceFile specified")
	}
	refPath, err = maybeDownload(refPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(refPath)
	if err != nil {
		return nil, fmt.Errorf("rte: opening reference file: %v", err)
	}
	defer f.Close()
	ref, err := rrtmgp.LoadReferenceFluxes(f)
	if err != nil {
		return nil, err
	}
	return rrtmgp.CompareFluxes(fluxes, ref, cfg.GetFloat64("Tolerance"))
}
