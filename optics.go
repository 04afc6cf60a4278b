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

// tauThresh is the optical depth below which a layer is treated as
// transparent when merging scattering properties.
const tauThresh = 1e-12

// OpticalProps is a set of spectrally resolved optical properties on a
// (column, layer, g-point) grid. The two implementations are OneScalar
// (absorption optical depth only) and TwoStream (optical depth,
// single-scattering albedo, and asymmetry parameter).
type OpticalProps interface {
	// Disc returns the spectral discretization of the properties.
	Disc() *SpectralDisc

	// NCol, NLay, and NGpt return the grid dimensions.
	NCol() int
	NLay() int
	NGpt() int

	// Validate checks value ranges: tau >= 0, 0 <= ssa <= 1,
	// -1 <= g <= 1, and finiteness.
	Validate() error

	// IncrementInto adds these properties into base in place. The two
	// objects must share a spectral discretization and grid shape.
	IncrementInto(base OpticalProps) error

	// DeltaScale applies a delta-scaling correction with the given
	// forward-scattering fraction [ncol, nlay, ngpt]. A nil forward
	// fraction uses f = g^2. Absorption-only properties cannot be
	// delta scaled.
	DeltaScale(forward *sparse.DenseArray) error
}

// OneScalar holds absorption optical depth for an absorption/emission
// (no-scattering) problem.
type OneScalar struct {
	disc *SpectralDisc
	Tau  *sparse.DenseArray // [ncol, nlay, ngpt]
}

// TwoStream holds the optical properties of a two-stream problem.
type TwoStream struct {
	disc *SpectralDisc
	Tau  *sparse.DenseArray // optical depth [ncol, nlay, ngpt]
	Ssa  *sparse.DenseArray // single-scattering albedo [ncol, nlay, ngpt]
	G    *sparse.DenseArray // asymmetry parameter [ncol, nlay, ngpt]
}

// NewOneScalar creates zeroed absorption-only optical properties.
func NewOneScalar(disc *SpectralDisc, ncol, nlay int) *OneScalar {
	return &OneScalar{
		disc: disc,
		Tau:  sparse.ZerosDense(ncol, nlay, disc.NGpt()),
	}
}

// NewTwoStream creates zeroed two-stream optical properties.
func NewTwoStream(disc *SpectralDisc, ncol, nlay int) *TwoStream {
	return &TwoStream{
		disc: disc,
		Tau:  sparse.ZerosDense(ncol, nlay, disc.NGpt()),
		Ssa:  sparse.ZerosDense(ncol, nlay, disc.NGpt()),
		G:    sparse.ZerosDense(ncol, nlay, disc.NGpt()),
	}
}

func (o *OneScalar) Disc() *SpectralDisc { return o.disc }
func (o *OneScalar) NCol() int           { return o.Tau.Shape[0] }
func (o *OneScalar) NLay() int           { return o.Tau.Shape[1] }
func (o *OneScalar) NGpt() int           { return o.Tau.Shape[2] }

func (t *TwoStream) Disc() *SpectralDisc { return t.disc }
func (t *TwoStream) NCol() int           { return t.Tau.Shape[0] }
func (t *TwoStream) NLay() int           { return t.Tau.Shape[1] }
func (t *TwoStream) NGpt() int           { return t.Tau.Shape[2] }

// Validate checks that all optical depths are finite and non-negative.
func (o *OneScalar) Validate() error {
	for i, v := range o.Tau.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("rrtmgp: invalid optical depth %g at element %d", v, i)
		}
	}
	return nil
}

// Validate checks optical depth, single-scattering albedo, and asymmetry
// parameter ranges.
func (t *TwoStream) Validate() error {
	for i, v := range t.Tau.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("rrtmgp: invalid optical depth %g at element %d", v, i)
		}
	}
	for i, v := range t.Ssa.Elements {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("rrtmgp: single-scattering albedo %g at element %d outside [0, 1]", v, i)
		}
	}
	for i, v := range t.G.Elements {
		if math.IsNaN(v) || v < -1 || v > 1 {
			return fmt.Errorf("rrtmgp: asymmetry parameter %g at element %d outside [-1, 1]", v, i)
		}
	}
	return nil
}

func compatible(a, b OpticalProps) error {
	if !a.Disc().SameAs(b.Disc()) {
		return fmt.Errorf("rrtmgp: cannot combine optical properties with different spectral discretizations")
	}
	if a.NCol() != b.NCol() || a.NLay() != b.NLay() {
		return fmt.Errorf("rrtmgp: cannot combine optical properties on [%d, %d] and [%d, %d] grids",
			a.NCol(), a.NLay(), b.NCol(), b.NLay())
	}
	return nil
}

// IncrementInto adds the absorption optical depth into base.
func (o *OneScalar) IncrementInto(base OpticalProps) error {
	if err := compatible(o, base); err != nil {
		return err
	}
	switch b := base.(type) {
	case *OneScalar:
		b.Tau.AddDense(o.Tau)
	case *TwoStream:
		// Adding purely absorbing properties dilutes the scattering;
		// the asymmetry parameter of the scattered fraction is unchanged.
		for i, tau2 := range o.Tau.Elements {
			tau1 := b.Tau.Elements[i]
			tau12 := tau1 + tau2
			if tau12 > tauThresh {
				b.Ssa.Elements[i] *= tau1 / tau12
			}
			b.Tau.Elements[i] = tau12
		}
	default:
		return fmt.Errorf("rrtmgp: unsupported optical property type %T", base)
	}
	return nil
}

// IncrementInto adds the two-stream properties into base, merging the
// single-scattering albedo and asymmetry parameter with scattering
// optical-depth weights.
func (t *TwoStream) IncrementInto(base OpticalProps) error {
	if err := compatible(t, base); err != nil {
		return err
	}
	switch b := base.(type) {
	case *OneScalar:
		// Absorption-only target: only the absorbing part contributes.
		for i, tau2 := range t.Tau.Elements {
			b.Tau.Elements[i] += tau2 * (1 - t.Ssa.Elements[i])
		}
	case *TwoStream:
		for i, tau2 := range t.Tau.Elements {
			tau1 := b.Tau.Elements[i]
			tau12 := tau1 + tau2
			tauScat1 := tau1 * b.Ssa.Elements[i]
			tauScat2 := tau2 * t.Ssa.Elements[i]
			tauScat12 := tauScat1 + tauScat2
			if tauScat12 > tauThresh {
				b.G.Elements[i] = (b.G.Elements[i]*tauScat1 + t.G.Elements[i]*tauScat2) / tauScat12
			}
			if tau12 > tauThresh {
				b.Ssa.Elements[i] = tauScat12 / tau12
			}
			b.Tau.Elements[i] = tau12
		}
	default:
		return fmt.Errorf("rrtmgp: unsupported optical property type %T", base)
	}
	return nil
}

// DeltaScale returns an error: absorption-only properties have no
// scattering to rescale.
func (o *OneScalar) DeltaScale(forward *sparse.DenseArray) error {
	return fmt.Errorf("rrtmgp: delta scaling requires two-stream optical properties")
}

// DeltaScale applies delta scaling in place, moving the forward-scattered
// fraction f of the phase function into the unscattered beam:
//
//	tau' = tau * (1 - ssa*f)
//	ssa' = ssa * (1 - f) / (1 - ssa*f)
//	g'   = (g - f) / (1 - f)
//
// A nil forward fraction uses f = g^2.
func (t *TwoStream) DeltaScale(forward *sparse.DenseArray) error {
	if forward != nil {
		if len(forward.Shape) != 3 || forward.Shape[0] != t.NCol() ||
			forward.Shape[1] != t.NLay() || forward.Shape[2] != t.NGpt() {
			return fmt.Errorf("rrtmgp: forward fraction has shape %v; want [%d %d %d]",
				forward.Shape, t.NCol(), t.NLay(), t.NGpt())
		}
		for i, f := range forward.Elements {
			if f < 0 || f > 1 {
				return fmt.Errorf("rrtmgp: forward fraction %g at element %d outside [0, 1]", f, i)
			}
		}
	}
	for i := range t.Tau.Elements {
		f := 0.
		if forward != nil {
			f = forward.Elements[i]
		} else {
			g := t.G.Elements[i]
			f = g * g
		}
		ssa := t.Ssa.Elements[i]
		wf := ssa * f
		t.Tau.Elements[i] *= 1 - wf
		if 1-wf > 0 {
			t.Ssa.Elements[i] = (ssa - wf) / (1 - wf)
		}
		if 1-f > 0 {
			t.G.Elements[i] = (t.G.Elements[i] - f) / (1 - f)
		}
	}
	return nil
}

// Sources holds the radiative source terms produced by the gas-optics
// engine. For longwave (internal source) problems the Planck source
// fields are set; for shortwave problems only ToaFlux is set.
type Sources struct {
	disc *SpectralDisc

	LayerSource   *sparse.DenseArray // Planck source at layer centers [W/m2], [ncol, nlay, ngpt]
	LevelSourceUp *sparse.DenseArray // Planck source at levels, upwelling [W/m2], [ncol, nlay, ngpt]
	LevelSourceDn *sparse.DenseArray // Planck source at levels, downwelling [W/m2], [ncol, nlay, ngpt]
	SfcSource     *sparse.DenseArray // surface Planck source [W/m2], [ncol, ngpt]

	ToaFlux *sparse.DenseArray // top-of-atmosphere spectral flux [W/m2], [ncol, ngpt]
}

// NewSources creates an empty source holder for the given discretization.
func NewSources(disc *SpectralDisc) *Sources { return &Sources{disc: disc} }

// Disc returns the spectral discretization of the sources.
func (s *Sources) Disc() *SpectralDisc { return s.disc }

// Check verifies that the source fields present have shapes consistent
// with the given grid.
func (s *Sources) Check(ncol, nlay int) error {
	ngpt := s.disc.NGpt()
	for name, a := range map[string]*sparse.DenseArray{
		"LayerSource":   s.LayerSource,
		"LevelSourceUp": s.LevelSourceUp,
		"LevelSourceDn": s.LevelSourceDn,
	} {
		if a == nil {
			continue
		}
		if err := checkShape(name, a, ncol, nlay, ngpt); err != nil {
			return err
		}
	}
	for name, a := range map[string]*sparse.DenseArray{
		"SfcSource": s.SfcSource,
		"ToaFlux":   s.ToaFlux,
	} {
		if a == nil {
			continue
		}
		if err := checkShape(name, a, ncol, ngpt); err != nil {
			return err
		}
	}
	return nil
}
