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
	"testing"

	"github.com/ctessum/sparse"
)

// fakeEngine is a test double that returns uniform optical properties
// and constant fluxes, recording the problem it was asked to solve.
type fakeEngine struct {
	name string

	gasTau   float64
	cloudTau float64
	cloudSsa float64
	cloudG   float64

	cloudOpticsCalls int
	solved           *Problem
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) ComputeGasOptics(data *GasOpticsData, state *AtmosphericState, problem ProblemType) (OpticalProps, *Sources, error) {
	ncol, nlay := state.NCol(), state.NLay()
	disc := data.Disc()
	ngpt := disc.NGpt()

	var op OpticalProps
	if problem == AbsorptionProblem {
		os := NewOneScalar(disc, ncol, nlay)
		for i := range os.Tau.Elements {
			os.Tau.Elements[i] = e.gasTau
		}
		op = os
	} else {
		ts := NewTwoStream(disc, ncol, nlay)
		for i := range ts.Tau.Elements {
			ts.Tau.Elements[i] = e.gasTau
		}
		op = ts
	}

	sources := NewSources(disc)
	if data.Internal() {
		sources.LayerSource = sparse.ZerosDense(ncol, nlay, ngpt)
		sources.LevelSourceUp = sparse.ZerosDense(ncol, nlay, ngpt)
		sources.LevelSourceDn = sparse.ZerosDense(ncol, nlay, ngpt)
		sources.SfcSource = sparse.ZerosDense(ncol, ngpt)
	} else {
		sources.ToaFlux = sparse.ZerosDense(ncol, ngpt)
		for i := range sources.ToaFlux.Elements {
			sources.ToaFlux.Elements[i] = data.TotalSolarIrradiance / float64(ngpt)
		}
	}
	return op, sources, nil
}

func (e *fakeEngine) ComputeCloudOptics(data *CloudOpticsData, disc *SpectralDisc, state *AtmosphericState, problem ProblemType) (OpticalProps, error) {
	e.cloudOpticsCalls++
	ts := NewTwoStream(disc, state.NCol(), state.NLay())
	for i := range ts.Tau.Elements {
		ts.Tau.Elements[i] = e.cloudTau
		ts.Ssa.Elements[i] = e.cloudSsa
		ts.G.Elements[i] = e.cloudG
	}
	if problem == AbsorptionProblem {
		os := NewOneScalar(disc, state.NCol(), state.NLay())
		for i := range os.Tau.Elements {
			os.Tau.Elements[i] = e.cloudTau * (1 - e.cloudSsa)
		}
		return os, nil
	}
	return ts, nil
}

func (e *fakeEngine) Solve(p *Problem) (*Fluxes, error) {
	e.solved = p
	ncol := p.Optics.NCol()
	nlev := p.Optics.NLay() + 1
	f := &Fluxes{
		Up:   sparse.ZerosDense(ncol, nlev),
		Down: sparse.ZerosDense(ncol, nlev),
	}
	for i := range f.Up.Elements {
		f.Up.Elements[i] = 100
		f.Down.Elements[i] = 250
	}
	if p.Mu0 != nil {
		f.Direct = sparse.ZerosDense(ncol, nlev)
	}
	return f, nil
}

func testGasOpticsData(t *testing.T, internal bool) *GasOpticsData {
	t.Helper()
	d := &GasOpticsData{
		disc:        testDisc(t),
		gasNames:    DemoGases,
		PressRefMin: 1, PressRefMax: 110e3,
		TempRefMin: 160, TempRefMax: 355,
		internal: internal,
	}
	if !internal {
		d.TotalSolarIrradiance = 1360
	}
	return d
}

func testCloudOpticsData() *CloudOpticsData {
	return &CloudOpticsData{
		RadLiqMin: 2.5, RadLiqMax: 21.5,
		RadIceMin: 10, RadIceMax: 180,
	}
}

func runTestState(t *testing.T, disc *SpectralDisc, shortwave bool) *AtmosphericState {
	t.Helper()
	s, err := SyntheticProfiles(ProfileConfig{SST: 300, NCol: 2, NLay: 30})
	if err != nil {
		t.Fatal(err)
	}
	if shortwave {
		err = s.SetUniformAlbedo(disc, 0.06, 0.86)
	} else {
		err = s.SetUniformEmissivity(disc, 0.98)
	}
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunLongwaveClearSky(t *testing.T) {
	e := &fakeEngine{name: "lw-clear", gasTau: 1}
	gas := testGasOpticsData(t, true)
	state := runTestState(t, gas.Disc(), false)

	fluxes, err := RunLongwave(e, gas, nil, state, RunOptions{Problem: AbsorptionProblem})
	if err != nil {
		t.Fatal(err)
	}
	if fluxes.NCol() != 2 || fluxes.NLev() != 31 {
		t.Errorf("fluxes grid: got [%d, %d], want [2, 31]", fluxes.NCol(), fluxes.NLev())
	}
	if fluxes.Direct != nil {
		t.Error("longwave fluxes should have no direct beam")
	}

	p := e.solved
	if p == nil {
		t.Fatal("solver was not called")
	}
	if p.Type != AbsorptionProblem {
		t.Errorf("problem type: got %v, want absorption", p.Type)
	}
	if p.TopAtOne {
		t.Error("surface-first state reported as top-first")
	}
	if _, ok := p.Optics.(*OneScalar); !ok {
		t.Errorf("optics: got %T, want *OneScalar", p.Optics)
	}
	if p.SurfaceEmisGpt == nil {
		t.Fatal("surface emissivity was not passed to the solver")
	}
	if p.SurfaceEmisGpt.Shape[0] != 2 || p.SurfaceEmisGpt.Shape[1] != gas.Disc().NGpt() {
		t.Errorf("emissivity shape: got %v, want [2 %d]", p.SurfaceEmisGpt.Shape, gas.Disc().NGpt())
	}
	for _, v := range p.SurfaceEmisGpt.Elements {
		if v != 0.98 {
			t.Fatalf("emissivity element: got %g, want 0.98", v)
		}
	}
	if e.cloudOpticsCalls != 0 {
		t.Error("cloud optics computed for a clear-sky run")
	}
}

func TestRunLongwaveWithClouds(t *testing.T) {
	e := &fakeEngine{name: "lw-cloudy", gasTau: 1, cloudTau: 2, cloudSsa: 0.5, cloudG: 0.8}
	gas := testGasOpticsData(t, true)
	cloud := testCloudOpticsData()
	state := runTestState(t, gas.Disc(), false)
	if err := state.ApplyDemoClouds(cloud); err != nil {
		t.Fatal(err)
	}

	_, err := RunLongwave(e, gas, cloud, state, RunOptions{
		Problem: TwoStreamProblem, Clouds: true, DeltaScale: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.cloudOpticsCalls != 1 {
		t.Fatalf("cloud optics calls: got %d, want 1", e.cloudOpticsCalls)
	}

	// The cloud contribution (tau 2, ssa 0.5, g 0.8) is delta scaled with
	// f = g^2 = 0.64 to tau 1.36, then merged into the gas optics (tau 1).
	ts, ok := e.solved.Optics.(*TwoStream)
	if !ok {
		t.Fatalf("optics: got %T, want *TwoStream", e.solved.Optics)
	}
	const testTolerance = 1.e-12
	for i, v := range ts.Tau.Elements {
		if absDifferent(v, 1+1.36, testTolerance) {
			t.Fatalf("merged tau element %d: got %g, want 2.36", i, v)
		}
	}
}

func TestRunLongwaveErrors(t *testing.T) {
	e := &fakeEngine{name: "lw-errors", gasTau: 1}
	gas := testGasOpticsData(t, true)
	state := runTestState(t, gas.Disc(), false)

	if _, err := RunLongwave(e, testGasOpticsData(t, false), nil, state, RunOptions{}); err == nil {
		t.Error("expected an error for solar data in a longwave run")
	}

	state.SurfaceEmis = nil
	if _, err := RunLongwave(e, gas, nil, state, RunOptions{}); err == nil {
		t.Error("expected an error for missing surface emissivity")
	}

	state = runTestState(t, gas.Disc(), false)
	state.LWP = sparse.ZerosDense(state.NCol(), state.NLay())
	state.LWP.Set(10, 0, 0)
	if _, err := RunLongwave(e, gas, nil, state, RunOptions{Clouds: true}); err == nil {
		t.Error("expected an error for clouds without cloud optics data")
	}
}

func TestRunShortwave(t *testing.T) {
	e := &fakeEngine{name: "sw", gasTau: 1}
	gas := testGasOpticsData(t, false)
	state := runTestState(t, gas.Disc(), true)

	// The problem type is forced to two-stream for shortwave runs.
	fluxes, err := RunShortwave(e, gas, nil, state, RunOptions{Problem: AbsorptionProblem})
	if err != nil {
		t.Fatal(err)
	}
	if fluxes.Direct == nil {
		t.Error("shortwave fluxes should carry a direct beam")
	}

	p := e.solved
	if p.Type != TwoStreamProblem {
		t.Errorf("problem type: got %v, want two-stream", p.Type)
	}
	if _, ok := p.Optics.(*TwoStream); !ok {
		t.Errorf("optics: got %T, want *TwoStream", p.Optics)
	}
	if p.AlbedoDirectGpt == nil || p.AlbedoDiffuseGpt == nil || p.Mu0 == nil {
		t.Fatal("shortwave boundary conditions were not passed to the solver")
	}
	for _, v := range p.AlbedoDirectGpt.Elements {
		if v != 0.06 {
			t.Fatalf("direct albedo element: got %g, want 0.06", v)
		}
	}
	if p.Sources.ToaFlux == nil {
		t.Fatal("no top-of-atmosphere flux")
	}

	if _, err := RunShortwave(e, testGasOpticsData(t, true), nil, state, RunOptions{}); err == nil {
		t.Error("expected an error for internal-source data in a shortwave run")
	}
	state.Mu0 = nil
	if _, err := RunShortwave(e, gas, nil, state, RunOptions{}); err == nil {
		t.Error("expected an error for a missing solar zenith cosine")
	}
}
