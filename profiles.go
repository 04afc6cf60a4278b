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

// Constants of the analytic radiative-convective-equilibrium sounding
// (Wing et al. 2018).
const (
	rcemipG     = 9.79764   // m/s2
	rcemipRd    = 287.04    // J/(kg K)
	rcemipP0    = 101480.   // Pa, surface pressure
	rcemipGamma = 0.0067    // K/m, tropospheric lapse rate
	rcemipZq1   = 4000.     // m, humidity decay scale
	rcemipZq2   = 7500.     // m, humidity decay scale
	rcemipZtrop = 15000.    // m, tropopause height
	rcemipQtrop = 1e-14     // kg/kg, stratospheric specific humidity
	rcemipEpsVT = 0.608     // virtual temperature moisture factor
	mwDryOverWater = 28.964 / 18.016

	// Ozone profile parameters; pressure in hPa, result in ppmv.
	ozoneG1 = 3.6478
	ozoneG2 = 0.83209
	ozoneG3 = 11.3515
)

// Anchor points for the sounding's surface specific humidity [kg/kg]
// at the protocol's three sea-surface temperatures.
var rcemipQ0 = [][2]float64{{295, 0.01200}, {300, 0.01865}, {305, 0.02400}}

// ProfileConfig configures synthetic profile generation.
type ProfileConfig struct {
	SST  float64 // sea-surface temperature [K]
	NCol int     // number of columns
	NLay int     // number of vertical layers

	// TopZ is the model-top height [m]. Zero means the 65 km default.
	TopZ float64

	// MinPressure clamps the top-level pressure [Pa] so that synthetic
	// columns stay inside an optics dataset's valid range. Zero means
	// no clamping.
	MinPressure float64

	// PerturbSST, if nonzero, offsets each column's surface temperature
	// by column/(ncol-1) * PerturbSST so that multi-column demos are
	// not all identical.
	PerturbSST float64
}

// q0ForSST interpolates the surface specific humidity between the
// sounding's anchor temperatures, clamping outside them.
func q0ForSST(sst float64) float64 {
	a := rcemipQ0
	if sst <= a[0][0] {
		return a[0][1]
	}
	if sst >= a[len(a)-1][0] {
		return a[len(a)-1][1]
	}
	for i := 0; i < len(a)-1; i++ {
		if sst <= a[i+1][0] {
			frac := (sst - a[i][0]) / (a[i+1][0] - a[i][0])
			return a[i][1] + frac*(a[i+1][1]-a[i][1])
		}
	}
	return a[len(a)-1][1]
}

// soundingAt evaluates the analytic sounding at height z [m] for surface
// temperature sst, returning temperature [K], pressure [Pa], and specific
// humidity [kg/kg].
func soundingAt(z, sst float64) (t, p, q float64) {
	q0 := q0ForSST(sst)
	tv0 := sst * (1 + rcemipEpsVT*q0)

	// Tropopause values.
	tvt := tv0 - rcemipGamma*rcemipZtrop
	pt := rcemipP0 * math.Pow(tvt/tv0, rcemipG/(rcemipRd*rcemipGamma))

	if z < rcemipZtrop {
		q = q0 * math.Exp(-z/rcemipZq1) * math.Exp(-math.Pow(z/rcemipZq2, 2))
		tv := tv0 - rcemipGamma*z
		t = tv / (1 + rcemipEpsVT*q)
		p = rcemipP0 * math.Pow(tv/tv0, rcemipG/(rcemipRd*rcemipGamma))
		return t, p, q
	}
	q = rcemipQtrop
	t = tvt / (1 + rcemipEpsVT*rcemipQtrop)
	p = pt * math.Exp(-rcemipG*(z-rcemipZtrop)/(rcemipRd*tvt))
	return t, p, q
}

// ozoneVMR returns the ozone volume mixing ratio [mol/mol] at pressure
// p [Pa].
func ozoneVMR(p float64) float64 {
	hPa := p / 100
	return ozoneG1 * math.Pow(hPa, ozoneG2) * math.Exp(-hPa/ozoneG3) * 1e-6
}

// SyntheticProfiles builds an analytic radiative-convective-equilibrium
// atmosphere: hydrostatically consistent temperature, pressure, and
// humidity on evenly spaced heights, the demonstration gas set, and the
// surface temperature boundary condition. Level 0 is the surface.
func SyntheticProfiles(cfg ProfileConfig) (*AtmosphericState, error) {
	if cfg.NCol < 1 || cfg.NLay < 2 {
		return nil, fmt.Errorf("rrtmgp: synthetic profiles need at least 1 column and 2 layers; got %d, %d",
			cfg.NCol, cfg.NLay)
	}
	if cfg.SST < 200 || cfg.SST > 400 {
		return nil, fmt.Errorf("rrtmgp: surface temperature %g K is not physical", cfg.SST)
	}
	topZ := cfg.TopZ
	if topZ == 0 {
		topZ = 65e3
	}
	ncol, nlay := cfg.NCol, cfg.NLay

	s := &AtmosphericState{
		Play:     sparse.ZerosDense(ncol, nlay),
		Tlay:     sparse.ZerosDense(ncol, nlay),
		Plev:     sparse.ZerosDense(ncol, nlay+1),
		Tlev:     sparse.ZerosDense(ncol, nlay+1),
		SurfaceT: sparse.ZerosDense(ncol),
	}
	gases, err := NewGasConcentrations(ncol, nlay)
	if err != nil {
		return nil, err
	}
	s.Gases = gases

	h2o := sparse.ZerosDense(ncol, nlay)
	o3 := sparse.ZerosDense(ncol, nlay)

	dz := topZ / float64(nlay)
	for i := 0; i < ncol; i++ {
		sst := cfg.SST
		if cfg.PerturbSST != 0 && ncol > 1 {
			sst += float64(i) / float64(ncol-1) * cfg.PerturbSST
		}
		s.SurfaceT.Set(sst, i)
		for k := 0; k <= nlay; k++ {
			t, p, _ := soundingAt(float64(k)*dz, sst)
			if cfg.MinPressure > 0 {
				// Graded floor keeps clamped level pressures strictly
				// decreasing toward the model top.
				floor := cfg.MinPressure * (1 + 1e-6*float64(nlay-k))
				if p < floor {
					p = floor
				}
			}
			s.Plev.Set(p, i, k)
			s.Tlev.Set(t, i, k)
		}
		for k := 0; k < nlay; k++ {
			t, p, q := soundingAt((float64(k)+0.5)*dz, sst)
			pAbove := s.Plev.Get(i, k+1)
			pBelow := s.Plev.Get(i, k)
			if p >= pBelow || p <= pAbove {
				// Keep layer midpoints strictly inside their levels
				// when the pressure clamp flattens the column top.
				p = math.Sqrt(pBelow * pAbove)
			}
			s.Play.Set(p, i, k)
			s.Tlay.Set(t, i, k)
			h2o.Set(q/(1-q)*mwDryOverWater, i, k)
			o3.Set(ozoneVMR(p), i, k)
		}
	}
	if err := gases.Set("h2o", h2o); err != nil {
		return nil, err
	}
	if err := gases.Set("o3", o3); err != nil {
		return nil, err
	}
	for gas, vmr := range map[string]float64{
		"co2": 348e-6,
		"ch4": 1650e-9,
		"n2o": 306e-9,
		"n2":  0.781,
		"o2":  0.209,
		"co":  0,
	} {
		if err := gases.SetScalar(gas, vmr); err != nil {
			return nil, err
		}
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("rrtmgp: synthetic profile generation produced an inconsistent state: %v", err)
	}
	return s, nil
}

// SetUniformEmissivity sets the longwave surface emissivity to a single
// value in every band and column.
func (s *AtmosphericState) SetUniformEmissivity(disc *SpectralDisc, emis float64) error {
	if emis < 0 || emis > 1 {
		return fmt.Errorf("rrtmgp: surface emissivity %g outside [0, 1]", emis)
	}
	s.SurfaceEmis = sparse.ZerosDense(s.NCol(), disc.NBand())
	for i := range s.SurfaceEmis.Elements {
		s.SurfaceEmis.Elements[i] = emis
	}
	return nil
}

// SetUniformAlbedo sets the direct and diffuse shortwave surface albedo
// to a single value in every band and column, and the cosine of the
// solar zenith angle in every column.
func (s *AtmosphericState) SetUniformAlbedo(disc *SpectralDisc, albedo, mu0 float64) error {
	if albedo < 0 || albedo > 1 {
		return fmt.Errorf("rrtmgp: surface albedo %g outside [0, 1]", albedo)
	}
	if mu0 <= 0 || mu0 > 1 {
		return fmt.Errorf("rrtmgp: solar zenith cosine %g outside (0, 1]", mu0)
	}
	s.AlbedoDirect = sparse.ZerosDense(s.NCol(), disc.NBand())
	s.AlbedoDiffuse = sparse.ZerosDense(s.NCol(), disc.NBand())
	for i := range s.AlbedoDirect.Elements {
		s.AlbedoDirect.Elements[i] = albedo
		s.AlbedoDiffuse.Elements[i] = albedo
	}
	s.Mu0 = sparse.ZerosDense(s.NCol())
	for i := range s.Mu0.Elements {
		s.Mu0.Elements[i] = mu0
	}
	return nil
}

// ApplyDemoClouds overlays an idealized cloud field on the state: liquid
// cloud (10 g/m2) in layers warmer than 263 K and ice cloud (10 g/m2) in
// layers colder than 273 K, restricted to pressures between 100 and
// 900 hPa and to two of every three columns. Particle sizes are set to
// the middle of the cloud-optics dataset's valid ranges.
func (s *AtmosphericState) ApplyDemoClouds(cloud *CloudOpticsData) error {
	if cloud == nil {
		return fmt.Errorf("rrtmgp: cloud optics data are required to build demo clouds")
	}
	ncol, nlay := s.NCol(), s.NLay()
	s.LWP = sparse.ZerosDense(ncol, nlay)
	s.IWP = sparse.ZerosDense(ncol, nlay)
	s.ReLiq = sparse.ZerosDense(ncol, nlay)
	s.ReIce = sparse.ZerosDense(ncol, nlay)
	relMid := 0.5 * (cloud.RadLiqMin + cloud.RadLiqMax)
	reiMid := 0.5 * (cloud.RadIceMin + cloud.RadIceMax)
	for i := 0; i < ncol; i++ {
		if i%3 == 2 { // every third column stays clear
			continue
		}
		for k := 0; k < nlay; k++ {
			p := s.Play.Get(i, k)
			if p < 100e2 || p > 900e2 {
				continue
			}
			t := s.Tlay.Get(i, k)
			if t > 263.16 {
				s.LWP.Set(10, i, k)
				s.ReLiq.Set(relMid, i, k)
			}
			if t < 273.16 {
				s.IWP.Set(10, i, k)
				s.ReIce.Set(reiMid, i, k)
			}
		}
	}
	return nil
}
