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

	"github.com/ctessum/cdf"
)

// DefaultTolerance is the absolute tolerance used when comparing
// computed fluxes against bundled reference arrays.
const DefaultTolerance = 1e-7

// Flux variable names tried by LoadReferenceFluxes, in order of
// preference. The short names are the RFMIP conventions.
var referenceFluxNames = []struct{ up, down, direct string }{
	{"rlu", "rld", ""},
	{"rsu", "rsd", "rsd_dir"},
	{"lw_flux_up", "lw_flux_dn", ""},
	{"sw_flux_up", "sw_flux_dn", "sw_flux_dir"},
	{"flux_up", "flux_dn", "flux_dir"},
}

// LoadFluxes reads flux fields from a NetCDF file using explicit
// variable names. directVar may be empty for longwave files.
func LoadFluxes(rw cdf.ReaderWriterAt, upVar, downVar, directVar string) (*Fluxes, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadFluxes: %v", err)
	}
	f := new(Fluxes)
	if f.Up, err = readNCF(upVar, ff); err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadFluxes: %v", err)
	}
	if f.Down, err = readNCF(downVar, ff); err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadFluxes: %v", err)
	}
	if directVar != "" {
		if f.Direct, err = readNCF(directVar, ff); err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadFluxes: %v", err)
		}
	}
	if err := f.Check(); err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadFluxes: %v", err)
	}
	return f, nil
}

// LoadReferenceFluxes reads precomputed flux arrays from a reference
// file, trying the common variable naming conventions.
func LoadReferenceFluxes(rw cdf.ReaderWriterAt) (*Fluxes, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadReferenceFluxes: %v", err)
	}
	for _, names := range referenceFluxNames {
		if !hasVariable(ff, names.up) || !hasVariable(ff, names.down) {
			continue
		}
		direct := names.direct
		if direct != "" && !hasVariable(ff, direct) {
			direct = ""
		}
		return LoadFluxes(rw, names.up, names.down, direct)
	}
	return nil, fmt.Errorf("rrtmgp.LoadReferenceFluxes: no recognized flux variables in file (variables are %v)",
		ff.Header.Variables())
}

// FluxComparison summarizes an element-wise comparison of two flux sets.
type FluxComparison struct {
	Tolerance  float64 // absolute tolerance used
	N          int     // elements compared
	Mismatches int     // elements differing by more than the tolerance
	MaxAbsDiff float64 // largest absolute difference
	WorstField string  // field containing the largest difference
}

// Within reports whether all compared elements matched within the
// tolerance.
func (c *FluxComparison) Within() bool { return c.Mismatches == 0 }

func (c *FluxComparison) String() string {
	if c.Within() {
		return fmt.Sprintf("fluxes match: %d elements within %g (max abs diff %g)",
			c.N, c.Tolerance, c.MaxAbsDiff)
	}
	return fmt.Sprintf("fluxes differ: %d of %d elements outside %g (max abs diff %g in %s)",
		c.Mismatches, c.N, c.Tolerance, c.MaxAbsDiff, c.WorstField)
}

func (c *FluxComparison) compareField(name string, got, want []float64) error {
	if len(got) != len(want) {
		return fmt.Errorf("rrtmgp: %s fields have %d and %d elements", name, len(got), len(want))
	}
	for i := range got {
		d := math.Abs(got[i] - want[i])
		c.N++
		if d > c.Tolerance {
			c.Mismatches++
		}
		if d > c.MaxAbsDiff {
			c.MaxAbsDiff = d
			c.WorstField = name
		}
	}
	return nil
}

// CompareFluxes compares computed fluxes against a reference within an
// absolute tolerance, element by element over all columns and levels.
// The direct-beam field is compared only when both sides carry it.
func CompareFluxes(got, want *Fluxes, tolerance float64) (*FluxComparison, error) {
	if err := got.Check(); err != nil {
		return nil, err
	}
	if err := want.Check(); err != nil {
		return nil, err
	}
	if got.NCol() != want.NCol() || got.NLev() != want.NLev() {
		return nil, fmt.Errorf("rrtmgp: cannot compare fluxes on [%d, %d] and [%d, %d] grids",
			got.NCol(), got.NLev(), want.NCol(), want.NLev())
	}
	c := &FluxComparison{Tolerance: tolerance}
	if err := c.compareField("flux_up", got.Up.Elements, want.Up.Elements); err != nil {
		return nil, err
	}
	if err := c.compareField("flux_dn", got.Down.Elements, want.Down.Elements); err != nil {
		return nil, err
	}
	if got.Direct != nil && want.Direct != nil {
		if err := c.compareField("flux_dir", got.Direct.Elements, want.Direct.Elements); err != nil {
			return nil, err
		}
	}
	return c, nil
}
