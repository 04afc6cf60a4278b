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

// testState returns a one-column, two-layer surface-first state.
func testState(t *testing.T) *AtmosphericState {
	t.Helper()
	s := &AtmosphericState{
		Play: sparse.ZerosDense(1, 2),
		Tlay: sparse.ZerosDense(1, 2),
		Plev: sparse.ZerosDense(1, 3),
	}
	for k, p := range []float64{1000e2, 500e2, 100e2} {
		s.Plev.Set(p, 0, k)
	}
	s.Play.Set(700e2, 0, 0)
	s.Play.Set(300e2, 0, 1)
	s.Tlay.Set(280, 0, 0)
	s.Tlay.Set(230, 0, 1)
	gases, err := NewGasConcentrations(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := gases.SetScalar("co2", 348e-6); err != nil {
		t.Fatal(err)
	}
	s.Gases = gases
	return s
}

func TestStateCheck(t *testing.T) {
	s := testState(t)
	if err := s.Check(); err != nil {
		t.Fatal(err)
	}
	if s.NCol() != 1 || s.NLay() != 2 || s.NLev() != 3 {
		t.Errorf("grid: got [%d, %d, %d], want [1, 2, 3]", s.NCol(), s.NLay(), s.NLev())
	}
	if s.TopAtOne() {
		t.Error("surface-first state reported as top-first")
	}

	s.Plev.Set(1200e2, 0, 1) // makes level pressures non-monotonic around layer 0
	if err := s.Check(); err == nil {
		t.Error("expected an error for non-monotonic level pressures")
	}

	s = testState(t)
	s.Play.Set(1100e2, 0, 0) // outside its level bounds
	if err := s.Check(); err == nil {
		t.Error("expected an error for a layer pressure outside its levels")
	}

	s = testState(t)
	s.Tlay.Set(-5, 0, 1)
	if err := s.Check(); err == nil {
		t.Error("expected an error for a non-positive temperature")
	}
}

func TestFlipVertical(t *testing.T) {
	s := testState(t)
	if err := s.Gases.SetProfile("o3", []float64{1e-6, 2e-6}); err != nil {
		t.Fatal(err)
	}

	s.FlipVertical()
	if !s.TopAtOne() {
		t.Error("flipped state should be top-first")
	}
	if got := s.Plev.Get(0, 0); got != 100e2 {
		t.Errorf("flipped Plev(0, 0): got %g, want 100e2", got)
	}
	if got := s.Play.Get(0, 0); got != 300e2 {
		t.Errorf("flipped Play(0, 0): got %g, want 300e2", got)
	}
	o3, err := s.Gases.VMR("o3")
	if err != nil {
		t.Fatal(err)
	}
	if got := o3.Get(0, 0); got != 2e-6 {
		t.Errorf("flipped o3(0, 0): got %g, want 2e-6", got)
	}

	// Flipping twice restores the original orientation.
	s.FlipVertical()
	if s.TopAtOne() {
		t.Error("double flip should restore the surface-first orientation")
	}
	if got := s.Plev.Get(0, 0); got != 1000e2 {
		t.Errorf("double-flipped Plev(0, 0): got %g, want 1000e2", got)
	}
	if err := s.Check(); err != nil {
		t.Error(err)
	}
}

func TestHasClouds(t *testing.T) {
	s := testState(t)
	if s.HasClouds() {
		t.Error("clear state reported cloudy")
	}
	s.LWP = sparse.ZerosDense(1, 2)
	if s.HasClouds() {
		t.Error("zero condensate reported cloudy")
	}
	s.LWP.Set(10, 0, 0)
	if !s.HasClouds() {
		t.Error("cloudy state reported clear")
	}
}

func TestValidateAgainst(t *testing.T) {
	s := testState(t)
	gas := &GasOpticsData{
		PressRefMin: 1, PressRefMax: 1100e2,
		TempRefMin: 160, TempRefMax: 355,
	}
	if err := s.ValidateAgainst(gas, nil); err != nil {
		t.Fatal(err)
	}

	gas.TempRefMax = 270
	if err := s.ValidateAgainst(gas, nil); err == nil {
		t.Error("expected an error for a temperature outside the optics range")
	}
	gas.TempRefMax = 355

	gas.PressRefMin = 400e2
	if err := s.ValidateAgainst(gas, nil); err == nil {
		t.Error("expected an error for a pressure outside the optics range")
	}
	gas.PressRefMin = 1

	cloud := &CloudOpticsData{
		RadLiqMin: 2.5, RadLiqMax: 21.5,
		RadIceMin: 10, RadIceMax: 180,
	}
	s.LWP = sparse.ZerosDense(1, 2)
	s.ReLiq = sparse.ZerosDense(1, 2)
	s.LWP.Set(10, 0, 0)
	s.ReLiq.Set(12, 0, 0)
	if err := s.ValidateAgainst(gas, cloud); err != nil {
		t.Fatal(err)
	}
	s.ReLiq.Set(30, 0, 0)
	if err := s.ValidateAgainst(gas, cloud); err == nil {
		t.Error("expected an error for a liquid radius outside the cloud optics range")
	}
}
