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

package rrtmgp

import (
	"fmt"
	"log"

	"github.com/ctessum/sparse"
)

// Problem is a fully specified radiative-transfer problem: optical
// properties merged from all contributors, radiative sources, and
// boundary conditions, ready to hand to a Solver.
type Problem struct {
	Type    ProblemType
	Optics  OpticalProps
	Sources *Sources

	// TopAtOne reports the vertical orientation of the optics arrays.
	TopAtOne bool

	// Longwave boundary conditions: surface emissivity on g-points
	// [ncol, ngpt].
	SurfaceEmisGpt *sparse.DenseArray

	// Shortwave boundary conditions: direct and diffuse surface albedo
	// on g-points [ncol, ngpt] and solar zenith cosine [ncol].
	AlbedoDirectGpt  *sparse.DenseArray
	AlbedoDiffuseGpt *sparse.DenseArray
	Mu0              *sparse.DenseArray

	// GasOpticsPath and CloudOpticsPath name the dataset files the
	// problem was built from, for engines that hold their own handles
	// to the lookup tables.
	GasOpticsPath   string
	CloudOpticsPath string
}

// RunOptions configures pipeline runs.
type RunOptions struct {
	// Problem selects absorption-only or two-stream gas optics for
	// longwave runs. Shortwave runs are always two-stream.
	Problem ProblemType

	// Clouds includes the state's cloud fields in the calculation.
	Clouds bool

	// DeltaScale applies delta scaling to the cloud optical properties
	// before they are merged. Only meaningful for two-stream problems.
	DeltaScale bool

	// LogProgress prints progress messages.
	LogProgress bool
}

// addClouds computes cloud optics, optionally delta scales them, and
// merges them into the gas optics in place.
func addClouds(e Engine, cloud *CloudOpticsData, disc *SpectralDisc, state *AtmosphericState, op OpticalProps, opts RunOptions) error {
	if cloud == nil {
		return fmt.Errorf("rrtmgp: cloud optics requested but no cloud optics data given")
	}
	cloudOp, err := e.ComputeCloudOptics(cloud, disc, state, opts.Problem)
	if err != nil {
		return fmt.Errorf("rrtmgp: computing cloud optics: %v", err)
	}
	if err := cloudOp.Validate(); err != nil {
		return fmt.Errorf("rrtmgp: cloud optics: %v", err)
	}
	if opts.DeltaScale {
		if err := cloudOp.DeltaScale(nil); err != nil {
			return fmt.Errorf("rrtmgp: delta scaling cloud optics: %v", err)
		}
	}
	if err := cloudOp.IncrementInto(op); err != nil {
		return fmt.Errorf("rrtmgp: merging cloud optics: %v", err)
	}
	return nil
}

// RunLongwave computes longwave fluxes for the given state: gas optics,
// optional cloud optics merged in, then the radiative-transfer solution.
func RunLongwave(e Engine, gas *GasOpticsData, cloud *CloudOpticsData, state *AtmosphericState, opts RunOptions) (*Fluxes, error) {
	if !gas.Internal() {
		return nil, fmt.Errorf("rrtmgp: longwave run requires internal-source gas optics data")
	}
	if state.SurfaceEmis == nil || state.SurfaceT == nil {
		return nil, fmt.Errorf("rrtmgp: longwave run requires surface temperature and emissivity")
	}
	useClouds := opts.Clouds && state.HasClouds()
	var cloudCheck *CloudOpticsData
	if useClouds {
		cloudCheck = cloud
	}
	if err := state.ValidateAgainst(gas, cloudCheck); err != nil {
		return nil, err
	}

	if opts.LogProgress {
		log.Printf("Computing longwave gas optics (%s) for %d columns", opts.Problem, state.NCol())
	}
	op, sources, err := e.ComputeGasOptics(gas, state, opts.Problem)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: computing gas optics: %v", err)
	}
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("rrtmgp: gas optics: %v", err)
	}
	if sources == nil || sources.LayerSource == nil {
		return nil, fmt.Errorf("rrtmgp: longwave gas optics returned no Planck sources")
	}
	if err := sources.Check(state.NCol(), state.NLay()); err != nil {
		return nil, err
	}

	if useClouds {
		if opts.LogProgress {
			log.Println("Merging cloud optics")
		}
		if err := addClouds(e, cloud, gas.Disc(), state, op, opts); err != nil {
			return nil, err
		}
	}

	emisGpt, err := gas.Disc().ExpandBandToGpt(state.SurfaceEmis)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: expanding surface emissivity: %v", err)
	}
	p := &Problem{
		Type:            opts.Problem,
		Optics:          op,
		Sources:         sources,
		TopAtOne:        state.TopAtOne(),
		SurfaceEmisGpt:  emisGpt,
		GasOpticsPath:   gas.Path,
		CloudOpticsPath: cloudPath(cloud, useClouds),
	}
	if opts.LogProgress {
		log.Println("Solving longwave radiative transfer")
	}
	fluxes, err := e.Solve(p)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: solving longwave radiative transfer: %v", err)
	}
	if err := fluxes.Check(); err != nil {
		return nil, err
	}
	return fluxes, nil
}

// RunShortwave computes shortwave fluxes for the given state. Shortwave
// problems are always two-stream and include the direct beam.
func RunShortwave(e Engine, gas *GasOpticsData, cloud *CloudOpticsData, state *AtmosphericState, opts RunOptions) (*Fluxes, error) {
	if gas.Internal() {
		return nil, fmt.Errorf("rrtmgp: shortwave run requires solar-source gas optics data")
	}
	if state.AlbedoDirect == nil || state.AlbedoDiffuse == nil || state.Mu0 == nil {
		return nil, fmt.Errorf("rrtmgp: shortwave run requires surface albedo and solar zenith cosine")
	}
	opts.Problem = TwoStreamProblem
	useClouds := opts.Clouds && state.HasClouds()
	var cloudCheck *CloudOpticsData
	if useClouds {
		cloudCheck = cloud
	}
	if err := state.ValidateAgainst(gas, cloudCheck); err != nil {
		return nil, err
	}

	if opts.LogProgress {
		log.Printf("Computing shortwave gas optics for %d columns", state.NCol())
	}
	op, sources, err := e.ComputeGasOptics(gas, state, TwoStreamProblem)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: computing gas optics: %v", err)
	}
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("rrtmgp: gas optics: %v", err)
	}
	if sources == nil || sources.ToaFlux == nil {
		return nil, fmt.Errorf("rrtmgp: shortwave gas optics returned no top-of-atmosphere flux")
	}
	if err := sources.Check(state.NCol(), state.NLay()); err != nil {
		return nil, err
	}

	if useClouds {
		if opts.LogProgress {
			log.Println("Merging cloud optics")
		}
		if err := addClouds(e, cloud, gas.Disc(), state, op, opts); err != nil {
			return nil, err
		}
	}

	albDirGpt, err := gas.Disc().ExpandBandToGpt(state.AlbedoDirect)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: expanding direct albedo: %v", err)
	}
	albDifGpt, err := gas.Disc().ExpandBandToGpt(state.AlbedoDiffuse)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: expanding diffuse albedo: %v", err)
	}
	p := &Problem{
		Type:             TwoStreamProblem,
		Optics:           op,
		Sources:          sources,
		TopAtOne:         state.TopAtOne(),
		AlbedoDirectGpt:  albDirGpt,
		AlbedoDiffuseGpt: albDifGpt,
		Mu0:              state.Mu0,
		GasOpticsPath:    gas.Path,
		CloudOpticsPath:  cloudPath(cloud, useClouds),
	}
	if opts.LogProgress {
		log.Println("Solving shortwave radiative transfer")
	}
	fluxes, err := e.Solve(p)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp: solving shortwave radiative transfer: %v", err)
	}
	if err := fluxes.Check(); err != nil {
		return nil, err
	}
	return fluxes, nil
}

func cloudPath(cloud *CloudOpticsData, used bool) string {
	if !used || cloud == nil {
		return ""
	}
	return cloud.Path
}
