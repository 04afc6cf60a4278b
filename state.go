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
	"math"

	"github.com/ctessum/sparse"
)

// AtmosphericState holds the per-column description of the atmosphere
// that the optics engine consumes: thermodynamic profiles on layers and
// levels, gas concentrations, surface and solar boundary conditions, and
// optional cloud fields.
//
// Layer quantities have shape [ncol, nlay] and level quantities
// [ncol, nlay+1]. Layer k lies between levels k and k+1; whether level 0
// is the top or the bottom of the atmosphere is up to the caller and is
// reported by TopAtOne.
type AtmosphericState struct {
	Play *sparse.DenseArray // layer midpoint pressure [Pa]
	Tlay *sparse.DenseArray // layer midpoint temperature [K]
	Plev *sparse.DenseArray // level interface pressure [Pa]
	Tlev *sparse.DenseArray // level interface temperature [K], may be nil

	Gases *GasConcentrations

	// Longwave boundary conditions.
	SurfaceT    *sparse.DenseArray // surface skin temperature [K], shape [ncol]
	SurfaceEmis *sparse.DenseArray // surface emissivity per band, shape [ncol, nband]

	// Shortwave boundary conditions.
	AlbedoDirect  *sparse.DenseArray // direct-beam surface albedo per band, shape [ncol, nband]
	AlbedoDiffuse *sparse.DenseArray // diffuse surface albedo per band, shape [ncol, nband]
	Mu0           *sparse.DenseArray // cosine of the solar zenith angle, shape [ncol]

	// Cloud fields; all nil for a clear sky.
	LWP   *sparse.DenseArray // liquid water path [g/m2], shape [ncol, nlay]
	IWP   *sparse.DenseArray // ice water path [g/m2], shape [ncol, nlay]
	ReLiq *sparse.DenseArray // liquid effective radius [microns], shape [ncol, nlay]
	ReIce *sparse.DenseArray // ice effective radius [microns], shape [ncol, nlay]
}

// NCol returns the number of columns.
func (s *AtmosphericState) NCol() int { return s.Play.Shape[0] }

// NLay returns the number of layers.
func (s *AtmosphericState) NLay() int { return s.Play.Shape[1] }

// NLev returns the number of level interfaces.
func (s *AtmosphericState) NLev() int { return s.Play.Shape[1] + 1 }

// TopAtOne reports whether vertical index 0 is the top of the atmosphere
// (i.e. pressure increases with index).
func (s *AtmosphericState) TopAtOne() bool {
	return s.Plev.Get(0, 0) < s.Plev.Get(0, s.NLay())
}

// HasClouds reports whether any cloud condensate has been set.
func (s *AtmosphericState) HasClouds() bool {
	for _, a := range []*sparse.DenseArray{s.LWP, s.IWP} {
		if a == nil {
			continue
		}
		for _, v := range a.Elements {
			if v > 0 {
				return true
			}
		}
	}
	return false
}

// reverseLayers returns a copy of a [ncol, n] array with the second
// dimension reversed.
func reverseLayers(a *sparse.DenseArray) *sparse.DenseArray {
	if a == nil {
		return nil
	}
	ncol, n := a.Shape[0], a.Shape[1]
	o := sparse.ZerosDense(ncol, n)
	for i := 0; i < ncol; i++ {
		for k := 0; k < n; k++ {
			o.Set(a.Get(i, k), i, n-1-k)
		}
	}
	return o
}

// FlipVertical reverses the vertical ordering of all layer and level
// fields, converting between surface-first and top-first orientations.
func (s *AtmosphericState) FlipVertical() {
	s.Play = reverseLayers(s.Play)
	s.Tlay = reverseLayers(s.Tlay)
	s.Plev = reverseLayers(s.Plev)
	if s.Tlev != nil {
		s.Tlev = reverseLayers(s.Tlev)
	}
	s.LWP = reverseLayers(s.LWP)
	s.IWP = reverseLayers(s.IWP)
	s.ReLiq = reverseLayers(s.ReLiq)
	s.ReIce = reverseLayers(s.ReIce)
	if s.Gases != nil {
		for _, name := range s.Gases.Gases() {
			vmr, err := s.Gases.VMR(name)
			if err == nil {
				s.Gases.Set(name, reverseLayers(vmr))
			}
		}
	}
}

func checkShape(name string, a *sparse.DenseArray, shape ...int) error {
	if a == nil {
		return fmt.Errorf("rrtmgp: %s is missing", name)
	}
	if len(a.Shape) != len(shape) {
		return fmt.Errorf("rrtmgp: %s has %d dimensions; want %d", name, len(a.Shape), len(shape))
	}
	for i, n := range shape {
		if a.Shape[i] != n {
			return fmt.Errorf("rrtmgp: %s has shape %v; want %v", name, a.Shape, shape)
		}
	}
	for _, v := range a.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("rrtmgp: %s contains a non-finite value", name)
		}
	}
	return nil
}

// Check verifies the internal consistency of the state: field shapes,
// finiteness, positive temperatures and pressures, and monotonic level
// pressures within each column.
func (s *AtmosphericState) Check() error {
	if s.Play == nil || len(s.Play.Shape) != 2 {
		return fmt.Errorf("rrtmgp: atmospheric state needs a [ncol, nlay] layer pressure field")
	}
	ncol, nlay := s.Play.Shape[0], s.Play.Shape[1]
	if err := checkShape("Tlay", s.Tlay, ncol, nlay); err != nil {
		return err
	}
	if err := checkShape("Plev", s.Plev, ncol, nlay+1); err != nil {
		return err
	}
	if s.Tlev != nil {
		if err := checkShape("Tlev", s.Tlev, ncol, nlay+1); err != nil {
			return err
		}
	}
	for _, v := range s.Play.Elements {
		if v <= 0 {
			return fmt.Errorf("rrtmgp: non-positive layer pressure %g", v)
		}
	}
	for _, v := range s.Tlay.Elements {
		if v <= 0 {
			return fmt.Errorf("rrtmgp: non-positive layer temperature %g", v)
		}
	}
	increasing := s.TopAtOne()
	for i := 0; i < ncol; i++ {
		for k := 0; k < nlay; k++ {
			lo, hi := s.Plev.Get(i, k), s.Plev.Get(i, k+1)
			if increasing && hi <= lo || !increasing && hi >= lo {
				return fmt.Errorf("rrtmgp: level pressures are not monotonic in column %d at level %d", i, k)
			}
			mid := s.Play.Get(i, k)
			if mid <= math.Min(lo, hi) || mid >= math.Max(lo, hi) {
				return fmt.Errorf("rrtmgp: layer pressure %g outside its level bounds [%g, %g] in column %d layer %d",
					mid, math.Min(lo, hi), math.Max(lo, hi), i, k)
			}
		}
	}
	if s.Gases != nil && (s.Gases.NCol() != ncol || s.Gases.NLay() != nlay) {
		return fmt.Errorf("rrtmgp: gas concentrations are on a [%d, %d] grid but the state is [%d, %d]",
			s.Gases.NCol(), s.Gases.NLay(), ncol, nlay)
	}
	for name, a := range map[string]*sparse.DenseArray{
		"LWP": s.LWP, "IWP": s.IWP, "ReLiq": s.ReLiq, "ReIce": s.ReIce,
	} {
		if a == nil {
			continue
		}
		if err := checkShape(name, a, ncol, nlay); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAgainst checks the state against the valid ranges of the given
// optics datasets. Either dataset may be nil to skip its checks.
func (s *AtmosphericState) ValidateAgainst(gas *GasOpticsData, cloud *CloudOpticsData) error {
	if err := s.Check(); err != nil {
		return err
	}
	if gas != nil {
		for i, v := range s.Play.Elements {
			if v < gas.PressRefMin || v > gas.PressRefMax {
				return fmt.Errorf("rrtmgp: layer pressure %g Pa at element %d outside the optics data range [%g, %g]",
					v, i, gas.PressRefMin, gas.PressRefMax)
			}
		}
		for i, v := range s.Tlay.Elements {
			if v < gas.TempRefMin || v > gas.TempRefMax {
				return fmt.Errorf("rrtmgp: layer temperature %g K at element %d outside the optics data range [%g, %g]",
					v, i, gas.TempRefMin, gas.TempRefMax)
			}
		}
	}
	if cloud != nil && s.HasClouds() {
		if s.LWP != nil && s.ReLiq != nil {
			for i, w := range s.LWP.Elements {
				r := s.ReLiq.Elements[i]
				if w > 0 && (r < cloud.RadLiqMin || r > cloud.RadLiqMax) {
					return fmt.Errorf("rrtmgp: liquid effective radius %g outside the cloud optics range [%g, %g]",
						r, cloud.RadLiqMin, cloud.RadLiqMax)
				}
			}
		}
		if s.IWP != nil && s.ReIce != nil {
			for i, w := range s.IWP.Elements {
				r := s.ReIce.Elements[i]
				if w > 0 && (r < cloud.RadIceMin || r > cloud.RadIceMax) {
					return fmt.Errorf("rrtmgp: ice effective radius %g outside the cloud optics range [%g, %g]",
						r, cloud.RadIceMin, cloud.RadIceMax)
				}
			}
		}
	}
	return nil
}
