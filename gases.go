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
	"sort"
	"strings"

	"github.com/ctessum/sparse"
)

// DemoGases is the gas set used by the demonstration profiles.
var DemoGases = []string{"h2o", "co2", "o3", "ch4", "n2o", "n2", "o2", "co"}

// normalizeGasName converts a gas name to the canonical lower-case form
// used as a map key (e.g. "CO2" and "co2" are the same gas).
func normalizeGasName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GasConcentrations holds volume mixing ratios [mol/mol] for a set of
// gases on a (column, layer) grid. Values may be set as a single scalar,
// as a per-layer profile shared by all columns, or as a full
// (column, layer) field; they are stored fully broadcast.
type GasConcentrations struct {
	ncol, nlay int
	vmr        map[string]*sparse.DenseArray
}

// NewGasConcentrations creates an empty concentration holder for the
// given number of columns and layers.
func NewGasConcentrations(ncol, nlay int) (*GasConcentrations, error) {
	if ncol < 1 || nlay < 1 {
		return nil, fmt.Errorf("rrtmgp: gas concentrations need at least one column and layer; got %d, %d", ncol, nlay)
	}
	return &GasConcentrations{
		ncol: ncol,
		nlay: nlay,
		vmr:  make(map[string]*sparse.DenseArray),
	}, nil
}

// NCol returns the number of columns.
func (g *GasConcentrations) NCol() int { return g.ncol }

// NLay returns the number of layers.
func (g *GasConcentrations) NLay() int { return g.nlay }

// SetScalar sets the mixing ratio of the named gas to a single value in
// every column and layer.
func (g *GasConcentrations) SetScalar(name string, vmr float64) error {
	if vmr < 0 {
		return fmt.Errorf("rrtmgp: negative mixing ratio %g for gas %s", vmr, name)
	}
	a := sparse.ZerosDense(g.ncol, g.nlay)
	for i := range a.Elements {
		a.Elements[i] = vmr
	}
	g.vmr[normalizeGasName(name)] = a
	return nil
}

// SetProfile sets the mixing ratio of the named gas to a per-layer
// profile shared by all columns.
func (g *GasConcentrations) SetProfile(name string, vmr []float64) error {
	if len(vmr) != g.nlay {
		return fmt.Errorf("rrtmgp: gas %s profile has %d layers but wants %d", name, len(vmr), g.nlay)
	}
	a := sparse.ZerosDense(g.ncol, g.nlay)
	for i := 0; i < g.ncol; i++ {
		for k, v := range vmr {
			if v < 0 {
				return fmt.Errorf("rrtmgp: negative mixing ratio %g for gas %s in layer %d", v, name, k)
			}
			a.Set(v, i, k)
		}
	}
	g.vmr[normalizeGasName(name)] = a
	return nil
}

// Set sets the mixing ratio of the named gas from an array with shape
// [1], [nlay], or [ncol, nlay], broadcasting as necessary.
func (g *GasConcentrations) Set(name string, vmr *sparse.DenseArray) error {
	switch len(vmr.Shape) {
	case 1:
		if vmr.Shape[0] == 1 {
			return g.SetScalar(name, vmr.Elements[0])
		}
		if vmr.Shape[0] == g.nlay {
			return g.SetProfile(name, vmr.Elements)
		}
		return fmt.Errorf("rrtmgp: gas %s array has length %d; want 1 or %d", name, vmr.Shape[0], g.nlay)
	case 2:
		if vmr.Shape[0] != g.ncol || vmr.Shape[1] != g.nlay {
			return fmt.Errorf("rrtmgp: gas %s array has shape %v; want [%d %d]",
				name, vmr.Shape, g.ncol, g.nlay)
		}
		for i, v := range vmr.Elements {
			if v < 0 {
				return fmt.Errorf("rrtmgp: negative mixing ratio %g for gas %s at element %d", v, name, i)
			}
		}
		g.vmr[normalizeGasName(name)] = vmr.Copy()
		return nil
	default:
		return fmt.Errorf("rrtmgp: gas %s array must have 1 or 2 dimensions but has %d", name, len(vmr.Shape))
	}
}

// VMR returns the fully broadcast [ncol, nlay] mixing ratio field for the
// named gas.
func (g *GasConcentrations) VMR(name string) (*sparse.DenseArray, error) {
	a, ok := g.vmr[normalizeGasName(name)]
	if !ok {
		return nil, fmt.Errorf("rrtmgp: gas %s has not been set", name)
	}
	return a, nil
}

// Has reports whether the named gas has been set.
func (g *GasConcentrations) Has(name string) bool {
	_, ok := g.vmr[normalizeGasName(name)]
	return ok
}

// Gases returns the sorted names of all gases that have been set.
func (g *GasConcentrations) Gases() []string {
	names := make([]string, 0, len(g.vmr))
	for name := range g.vmr {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subset returns the concentrations for columns [start, end).
func (g *GasConcentrations) Subset(start, end int) (*GasConcentrations, error) {
	if start < 0 || end > g.ncol || start >= end {
		return nil, fmt.Errorf("rrtmgp: invalid column subset [%d,%d) of %d columns", start, end, g.ncol)
	}
	o, err := NewGasConcentrations(end-start, g.nlay)
	if err != nil {
		return nil, err
	}
	for name, a := range g.vmr {
		b := sparse.ZerosDense(end-start, g.nlay)
		for i := start; i < end; i++ {
			for k := 0; k < g.nlay; k++ {
				b.Set(a.Get(i, k), i-start, k)
			}
		}
		o.vmr[name] = b
	}
	return o, nil
}
