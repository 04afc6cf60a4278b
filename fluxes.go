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

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// physical constants
const (
	gravity   = 9.80665 // m/s2
	cpDry     = 1004.64 // J/(kg K), specific heat of dry air at constant pressure
	secPerDay = 86400.
)

// Fluxes holds broadband irradiance results on a (column, level) grid
// [W/m2]. Direct is only set for shortwave problems.
type Fluxes struct {
	Up     *sparse.DenseArray // upwelling flux [ncol, nlev]
	Down   *sparse.DenseArray // downwelling flux [ncol, nlev]
	Direct *sparse.DenseArray // direct-beam downwelling flux [ncol, nlev], may be nil
}

// NCol returns the number of columns.
func (f *Fluxes) NCol() int { return f.Up.Shape[0] }

// NLev returns the number of levels.
func (f *Fluxes) NLev() int { return f.Up.Shape[1] }

// Check verifies that the flux fields are present and consistently shaped.
func (f *Fluxes) Check() error {
	if f.Up == nil || len(f.Up.Shape) != 2 {
		return fmt.Errorf("rrtmgp: fluxes need a [ncol, nlev] upwelling field")
	}
	ncol, nlev := f.Up.Shape[0], f.Up.Shape[1]
	if err := checkShape("Down", f.Down, ncol, nlev); err != nil {
		return err
	}
	if f.Direct != nil {
		if err := checkShape("Direct", f.Direct, ncol, nlev); err != nil {
			return err
		}
	}
	return nil
}

// Net returns the net downward flux (Down - Up) [W/m2].
func (f *Fluxes) Net() *sparse.DenseArray {
	net := f.Down.Copy()
	for i, up := range f.Up.Elements {
		net.Elements[i] -= up
	}
	return net
}

// ReduceSpectral sums a spectrally resolved [ncol, nlev, ngpt] flux field
// over g-points, returning a broadband [ncol, nlev] field.
func ReduceSpectral(spectral *sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(spectral.Shape) != 3 {
		return nil, fmt.Errorf("rrtmgp: spectral fluxes must have 3 dimensions but have %d", len(spectral.Shape))
	}
	ncol, nlev, ngpt := spectral.Shape[0], spectral.Shape[1], spectral.Shape[2]
	out := sparse.ZerosDense(ncol, nlev)
	for i := 0; i < ncol; i++ {
		for k := 0; k < nlev; k++ {
			start := spectral.Index1d(i, k, 0)
			out.Set(floats.Sum(spectral.Elements[start:start+ngpt]), i, k)
		}
	}
	return out, nil
}

// HeatingRate converts the net flux divergence across each layer into a
// heating rate [K/day] using the hydrostatic relation:
//
//	dT/dt = -g/cp * dFnet/dp
//
// where Fnet is the net downward flux (Down - Up); a layer that absorbs
// radiation warms. plev gives the level interface pressures [Pa], shape
// [ncol, nlay+1].
func HeatingRate(f *Fluxes, plev *sparse.DenseArray) (*sparse.DenseArray, error) {
	if err := f.Check(); err != nil {
		return nil, err
	}
	ncol, nlev := f.NCol(), f.NLev()
	if err := checkShape("plev", plev, ncol, nlev); err != nil {
		return nil, err
	}
	net := f.Net()
	hr := sparse.ZerosDense(ncol, nlev-1)
	for i := 0; i < ncol; i++ {
		for k := 0; k < nlev-1; k++ {
			dF := net.Get(i, k+1) - net.Get(i, k)
			dp := plev.Get(i, k+1) - plev.Get(i, k)
			hr.Set(-gravity/cpDry*dF/dp*secPerDay, i, k)
		}
	}
	return hr, nil
}
