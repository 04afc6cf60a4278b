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
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

// testDisc returns a two-band discretization with two g-points per band.
func testDisc(t *testing.T) *SpectralDisc {
	t.Helper()
	disc, err := NewSpectralDisc(
		[][2]float64{{10, 250}, {250, 500}},
		[][2]int{{0, 1}, {2, 3}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return disc
}

func TestNewSpectralDisc(t *testing.T) {
	disc := testDisc(t)
	if disc.NBand() != 2 {
		t.Errorf("NBand: got %d, want 2", disc.NBand())
	}
	if disc.NGpt() != 4 {
		t.Errorf("NGpt: got %d, want 4", disc.NGpt())
	}
	wantBands := []int{0, 0, 1, 1}
	for g, want := range wantBands {
		if got := disc.BandForGpt(g); got != want {
			t.Errorf("BandForGpt(%d): got %d, want %d", g, got, want)
		}
	}
	lo, hi := disc.GptLimits(1)
	if lo != 2 || hi != 3 {
		t.Errorf("GptLimits(1): got [%d, %d], want [2, 3]", lo, hi)
	}
	wlo, whi := disc.BandWavenumbers(0)
	if wlo != 10 || whi != 250 {
		t.Errorf("BandWavenumbers(0): got [%g, %g], want [10, 250]", wlo, whi)
	}
}

func TestNewSpectralDiscErrors(t *testing.T) {
	cases := []struct {
		name string
		wn   [][2]float64
		gpt  [][2]int
	}{
		{"empty", nil, nil},
		{"mismatched lengths", [][2]float64{{10, 250}}, [][2]int{{0, 1}, {2, 3}}},
		{"gap in g-points", [][2]float64{{10, 250}, {250, 500}}, [][2]int{{0, 1}, {3, 4}}},
		{"nonzero start", [][2]float64{{10, 250}}, [][2]int{{1, 2}}},
		{"inverted range", [][2]float64{{10, 250}}, [][2]int{{0, -1}}},
	}
	for _, c := range cases {
		if _, err := NewSpectralDisc(c.wn, c.gpt); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}

func TestSameAs(t *testing.T) {
	a := testDisc(t)
	b := testDisc(t)
	if !a.SameAs(b) {
		t.Error("identical discretizations reported as different")
	}
	c, err := NewSpectralDisc([][2]float64{{10, 500}}, [][2]int{{0, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if a.SameAs(c) {
		t.Error("different discretizations reported as the same")
	}
	if a.SameAs(nil) {
		t.Error("nil discretization reported as the same")
	}
}

func TestExpandBandToGpt(t *testing.T) {
	disc := testDisc(t)

	perBand := sparse.ZerosDense(2)
	perBand.Set(0.9, 0)
	perBand.Set(0.7, 1)
	out, err := disc.ExpandBandToGpt(perBand)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.9, 0.9, 0.7, 0.7}
	for g, w := range want {
		if got := out.Get(g); got != w {
			t.Errorf("g-point %d: got %g, want %g", g, got, w)
		}
	}

	perColBand := sparse.ZerosDense(2, 2)
	perColBand.Set(0.9, 0, 0)
	perColBand.Set(0.7, 0, 1)
	perColBand.Set(0.5, 1, 0)
	perColBand.Set(0.3, 1, 1)
	out2, err := disc.ExpandBandToGpt(perColBand)
	if err != nil {
		t.Fatal(err)
	}
	if out2.Shape[0] != 2 || out2.Shape[1] != 4 {
		t.Fatalf("shape: got %v, want [2 4]", out2.Shape)
	}
	if got := out2.Get(1, 2); got != 0.3 {
		t.Errorf("column 1 g-point 2: got %g, want 0.3", got)
	}

	if _, err := disc.ExpandBandToGpt(sparse.ZerosDense(3)); err == nil {
		t.Error("expected an error for a wrong-sized per-band array")
	}
	if _, err := disc.ExpandBandToGpt(sparse.ZerosDense(2, 2, 2)); err == nil {
		t.Error("expected an error for a 3-dimensional array")
	}
}
