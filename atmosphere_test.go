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
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

// writeTestAtmosphere writes a 2-column, 3-layer surface-first
// atmosphere. longNames selects the pres_layer/temp_layer naming.
func writeTestAtmosphere(t *testing.T, path string, longNames bool) {
	t.Helper()
	name := func(short, long string) string {
		if longNames {
			return long
		}
		return short
	}
	h := cdf.NewHeader([]string{"col", "lay", "lev", "one"}, []int{2, 3, 4, 1})
	h.AddVariable(name("p_lay", "pres_layer"), []string{"col", "lay"}, []float64{0})
	h.AddVariable(name("t_lay", "temp_layer"), []string{"col", "lay"}, []float64{0})
	h.AddVariable(name("p_lev", "pres_level"), []string{"col", "lev"}, []float64{0})
	h.AddVariable(name("t_lev", "temp_level"), []string{"col", "lev"}, []float64{0})
	h.AddVariable(name("t_sfc", "surface_temperature"), []string{"col"}, []float64{0})
	h.AddVariable("vmr_h2o", []string{"col", "lay"}, []float64{0})
	h.AddVariable("vmr_o3", []string{"lay"}, []float64{0})
	h.AddVariable("vmr_co2", []string{"one"}, []float64{0})
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	cf, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(v string, values []float64) {
		if _, err := cf.Writer(v, nil, nil).Write(values); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v, err)
		}
	}
	write(name("p_lay", "pres_layer"), []float64{
		85000, 55000, 25000,
		85000, 55000, 25000})
	write(name("t_lay", "temp_layer"), []float64{
		280, 250, 220,
		281, 251, 221})
	write(name("p_lev", "pres_level"), []float64{
		101000, 70000, 40000, 10000,
		101000, 70000, 40000, 10000})
	write(name("t_lev", "temp_level"), []float64{
		290, 270, 240, 210,
		291, 271, 241, 211})
	write(name("t_sfc", "surface_temperature"), []float64{300, 301})
	write("vmr_h2o", []float64{
		1e-2, 1e-3, 1e-4,
		2e-2, 2e-3, 2e-4})
	write("vmr_o3", []float64{1e-8, 5e-8, 5e-7})
	write("vmr_co2", []float64{400e-6})
}

func TestLoadAtmosphericState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atmos.nc")
	writeTestAtmosphere(t, path, false)

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	s, err := LoadAtmosphericState(ff)
	if err != nil {
		t.Fatal(err)
	}
	if s.NCol() != 2 || s.NLay() != 3 {
		t.Fatalf("grid: got [%d, %d], want [2, 3]", s.NCol(), s.NLay())
	}
	if s.TopAtOne() {
		t.Error("stored atmosphere should be surface first")
	}
	if got := s.Tlay.Get(1, 2); got != 221 {
		t.Errorf("Tlay(1, 2): got %g, want 221", got)
	}
	if s.Tlev == nil || s.Tlev.Get(0, 3) != 210 {
		t.Error("level temperatures not loaded")
	}
	if s.SurfaceT == nil || s.SurfaceT.Get(1) != 301 {
		t.Error("surface temperature not loaded")
	}

	// vmr_h2o is a full field, vmr_o3 a shared profile, vmr_co2 a scalar.
	h2o, err := s.Gases.VMR("h2o")
	if err != nil {
		t.Fatal(err)
	}
	if got := h2o.Get(1, 0); got != 2e-2 {
		t.Errorf("h2o(1, 0): got %g, want 2e-2", got)
	}
	o3, err := s.Gases.VMR("o3")
	if err != nil {
		t.Fatal(err)
	}
	if got := o3.Get(0, 1); got != 5e-8 {
		t.Errorf("o3(0, 1): got %g, want 5e-8", got)
	}
	if got := o3.Get(1, 1); got != 5e-8 {
		t.Errorf("o3 profile not broadcast to column 1: got %g", got)
	}
	co2, err := s.Gases.VMR("co2")
	if err != nil {
		t.Fatal(err)
	}
	if got := co2.Get(1, 2); got != 400e-6 {
		t.Errorf("co2(1, 2): got %g, want 400e-6", got)
	}
}

func TestLoadAtmosphericStateLongNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atmos.nc")
	writeTestAtmosphere(t, path, true)

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	s, err := LoadAtmosphericState(ff)
	if err != nil {
		t.Fatal(err)
	}
	if s.NCol() != 2 || s.NLay() != 3 {
		t.Errorf("grid: got [%d, %d], want [2, 3]", s.NCol(), s.NLay())
	}
	if s.SurfaceT == nil || s.SurfaceT.Get(0) != 300 {
		t.Error("surface temperature not loaded from long variable names")
	}
}

func TestLoadAtmosphericStateBadOptionalVariable(t *testing.T) {
	// A surface temperature stored as character data is present but
	// unreadable; it must produce an error, not be skipped.
	path := filepath.Join(t.TempDir(), "bad-tsfc.nc")
	h := cdf.NewHeader([]string{"col", "lay", "lev", "len"}, []int{1, 2, 3, 4})
	h.AddVariable("p_lay", []string{"col", "lay"}, []float64{0})
	h.AddVariable("t_lay", []string{"col", "lay"}, []float64{0})
	h.AddVariable("p_lev", []string{"col", "lev"}, []float64{0})
	h.AddVariable("t_sfc", []string{"col", "len"}, "")
	h.Define()
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	cf, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(v string, values interface{}) {
		if _, err := cf.Writer(v, nil, nil).Write(values); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v, err)
		}
	}
	write("p_lay", []float64{75000, 30000})
	write("t_lay", []float64{280, 230})
	write("p_lev", []float64{101000, 50000, 10000})
	write("t_sfc", "300K")
	ff.Close()

	rf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	if _, err := LoadAtmosphericState(rf); err == nil {
		t.Error("expected an error for an unreadable surface temperature variable")
	}
}

func TestLoadAtmosphericStateMissingPressure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nc")
	h := cdf.NewHeader([]string{"col", "lay"}, []int{1, 2})
	h.AddVariable("t_lay", []string{"col", "lay"}, []float64{0})
	h.Define()
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	cf, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cf.Writer("t_lay", nil, nil).Write([]float64{280, 250}); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	ff.Close()

	rf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	if _, err := LoadAtmosphericState(rf); err == nil {
		t.Error("expected an error for a file without layer pressures")
	}
}
