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
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

func TestNewOutputterErrors(t *testing.T) {
	cases := []struct {
		name string
		vars map[string]string
	}{
		{"shadows builtin", map[string]string{"flux_up": "flux_down"}},
		{"undefined variable", map[string]string{"x": "flux_up + nonsense"}},
		{"bad syntax", map[string]string{"x": "flux_up +"}},
	}
	for _, c := range cases {
		if _, err := NewOutputter("out.nc", c.vars, nil); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}

func TestOutputterWrite(t *testing.T) {
	const testTolerance = 1.e-10

	f := &Fluxes{
		Up:     sparse.ZerosDense(2, 3),
		Down:   sparse.ZerosDense(2, 3),
		Direct: sparse.ZerosDense(2, 3),
	}
	plev := sparse.ZerosDense(2, 3)
	for i := 0; i < 2; i++ {
		for k := 0; k < 3; k++ {
			f.Up.Set(100+float64(k), i, k)
			f.Down.Set(250-float64(k), i, k)
			f.Direct.Set(50, i, k)
			plev.Set(101000-float64(k)*30000, i, k)
		}
	}

	path := filepath.Join(t.TempDir(), "fluxes.nc")
	o, err := NewOutputter(path, map[string]string{
		"flux_net": "flux_down - flux_up",
		"flux_abs": "abs(flux_up - flux_down)",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Write(f, plev); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()

	up, err := ReadVariable(ff, "flux_up")
	if err != nil {
		t.Fatal(err)
	}
	if got := up.Get(1, 2); got != 102 {
		t.Errorf("flux_up(1, 2): got %g, want 102", got)
	}

	net, err := ReadVariable(ff, "flux_net")
	if err != nil {
		t.Fatal(err)
	}
	if got := net.Get(0, 1); absDifferent(got, 148, testTolerance) {
		t.Errorf("flux_net(0, 1): got %g, want 148", got)
	}

	abs, err := ReadVariable(ff, "flux_abs")
	if err != nil {
		t.Fatal(err)
	}
	if got := abs.Get(0, 0); absDifferent(got, 150, testTolerance) {
		t.Errorf("flux_abs(0, 0): got %g, want 150", got)
	}

	dir, err := ReadVariable(ff, "flux_dir")
	if err != nil {
		t.Fatal(err)
	}
	if got := dir.Get(1, 1); got != 50 {
		t.Errorf("flux_dir(1, 1): got %g, want 50", got)
	}

	// The heating rate is written on layers, one fewer than levels.
	hr, err := ReadVariable(ff, "heating_rate")
	if err != nil {
		t.Fatal(err)
	}
	if hr.Shape[0] != 2 || hr.Shape[1] != 2 {
		t.Fatalf("heating_rate shape: got %v, want [2 2]", hr.Shape)
	}
	// Every layer loses 2 W/m2 of net downward flux over dp = -30000 Pa,
	// so it cools.
	want := -gravity / cpDry * (-2.) / (-30000.) * secPerDay
	if got := hr.Get(0, 0); absDifferent(got, want, testTolerance) {
		t.Errorf("heating_rate(0, 0): got %g, want %g", got, want)
	}

	// Flux fields carry units; derived expressions do not, as they need
	// not evaluate to a flux.
	cf, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}
	if u, ok := cf.Header.GetAttribute("flux_up", "units").(string); !ok || u != "W m-2" {
		t.Errorf("flux_up units: got %v, want W m-2", cf.Header.GetAttribute("flux_up", "units"))
	}
	if u := cf.Header.GetAttribute("flux_net", "units"); u != nil {
		t.Errorf("flux_net should have no units attribute; got %v", u)
	}

	// The written file is itself loadable as a reference.
	ref, err := LoadReferenceFluxes(ff)
	if err != nil {
		t.Fatal(err)
	}
	cmp, err := CompareFluxes(ref, f, DefaultTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Within() {
		t.Errorf("round trip: %s", cmp)
	}
}

func TestOutputterWriteNoPlev(t *testing.T) {
	f := &Fluxes{
		Up:   sparse.ZerosDense(1, 2),
		Down: sparse.ZerosDense(1, 2),
	}
	path := filepath.Join(t.TempDir(), "fluxes.nc")
	o, err := NewOutputter(path, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Write(f, nil); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	if _, err := ReadVariable(ff, "heating_rate"); err == nil {
		t.Error("heating rate written without level pressures")
	}
	if _, err := ReadVariable(ff, "flux_up"); err != nil {
		t.Error(err)
	}
}
