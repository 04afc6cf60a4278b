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
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Alternative names used for the same field across stored atmosphere
// files. The short forms come first because they are the most common.
var atmosphereVarNames = map[string][]string{
	"p_lay": {"p_lay", "pres_layer"},
	"t_lay": {"t_lay", "temp_layer"},
	"p_lev": {"p_lev", "pres_level"},
	"t_lev": {"t_lev", "temp_level"},
	"t_sfc": {"t_sfc", "surface_temperature"},
}

// readNCFAny reads the first of the listed variable names present in the
// file. found reports whether any of the names is in the file, so a
// read failure on a present variable is not mistaken for absence.
func readNCFAny(ff *cdf.File, names []string) (a *sparse.DenseArray, found bool, err error) {
	for _, name := range names {
		if hasVariable(ff, name) {
			a, err = readNCF(name, ff)
			return a, true, err
		}
	}
	return nil, false, nil
}

// LoadAtmosphericState reads a stored atmosphere from a NetCDF file.
//
// The file must carry layer pressures and temperatures ("p_lay"/"t_lay"
// or "pres_layer"/"temp_layer", shape [ncol, nlay]) and level pressures
// ("p_lev" or "pres_level", shape [ncol, nlay+1]). Level temperatures
// and the surface skin temperature are read when present. Gas mixing
// ratios are taken from every variable named "vmr_<gas>", each with
// shape [ncol, nlay], [nlay], or a single value, broadcast as needed.
//
// Surface emissivity, albedo, and solar geometry are not stored in
// atmosphere files; set them afterwards, e.g. with SetUniformEmissivity.
func LoadAtmosphericState(rw cdf.ReaderWriterAt) (*AtmosphericState, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
	}
	s := new(AtmosphericState)

	for _, field := range []struct {
		key string
		dst **sparse.DenseArray
	}{
		{"p_lay", &s.Play},
		{"t_lay", &s.Tlay},
		{"p_lev", &s.Plev},
	} {
		names := atmosphereVarNames[field.key]
		a, found, err := readNCFAny(ff, names)
		if err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
		}
		if !found {
			return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: none of %v in file", names)
		}
		*field.dst = a
	}
	if len(s.Play.Shape) != 2 {
		return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: layer pressure has %d dimensions; want 2", len(s.Play.Shape))
	}
	ncol, nlay := s.Play.Shape[0], s.Play.Shape[1]

	tlev, found, err := readNCFAny(ff, atmosphereVarNames["t_lev"])
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
	}
	if found {
		s.Tlev = tlev
	}
	tsfc, found, err := readNCFAny(ff, atmosphereVarNames["t_sfc"])
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
	}
	if found {
		s.SurfaceT = tsfc
	}

	s.Gases, err = NewGasConcentrations(ncol, nlay)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
	}
	for _, name := range ff.Header.Variables() {
		if !strings.HasPrefix(name, "vmr_") {
			continue
		}
		gas := strings.TrimPrefix(name, "vmr_")
		vmr, err := readNCF(name, ff)
		if err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
		}
		if err := s.Gases.Set(gas, vmr); err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
		}
	}

	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadAtmosphericState: %v", err)
	}
	return s, nil
}
