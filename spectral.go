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
)

// SpectralDisc describes the spectral discretization shared by an optics
// dataset and the optical properties computed from it: a set of contiguous
// wavenumber bands, each subdivided into one or more g-points.
type SpectralDisc struct {
	// bandLimsWavenumber holds the lower and upper wavenumber limit of
	// each band [cm-1].
	bandLimsWavenumber [][2]float64

	// bandLimsGpt holds the first and last g-point index of each band
	// (zero based, inclusive).
	bandLimsGpt [][2]int

	// gpt2band maps each g-point index to the band it belongs to.
	gpt2band []int
}

// NewSpectralDisc creates a spectral discretization from per-band
// wavenumber limits and per-band g-point limits. The g-point ranges must
// be contiguous, in order, and start at zero.
func NewSpectralDisc(wavenumberLims [][2]float64, gptLims [][2]int) (*SpectralDisc, error) {
	if len(wavenumberLims) == 0 {
		return nil, fmt.Errorf("rrtmgp: spectral discretization has no bands")
	}
	if len(wavenumberLims) != len(gptLims) {
		return nil, fmt.Errorf("rrtmgp: spectral discretization has %d wavenumber bands but %d g-point bands",
			len(wavenumberLims), len(gptLims))
	}
	next := 0
	for b, lims := range gptLims {
		if lims[0] != next || lims[1] < lims[0] {
			return nil, fmt.Errorf("rrtmgp: band %d g-point range [%d,%d] is not contiguous", b, lims[0], lims[1])
		}
		next = lims[1] + 1
	}
	s := &SpectralDisc{
		bandLimsWavenumber: wavenumberLims,
		bandLimsGpt:        gptLims,
		gpt2band:           make([]int, next),
	}
	for b, lims := range gptLims {
		for g := lims[0]; g <= lims[1]; g++ {
			s.gpt2band[g] = b
		}
	}
	return s, nil
}

// NBand returns the number of bands.
func (s *SpectralDisc) NBand() int { return len(s.bandLimsWavenumber) }

// NGpt returns the total number of g-points.
func (s *SpectralDisc) NGpt() int { return len(s.gpt2band) }

// BandForGpt returns the band that g-point g belongs to.
func (s *SpectralDisc) BandForGpt(g int) int { return s.gpt2band[g] }

// GptLimits returns the first and last g-point index (inclusive) of band b.
func (s *SpectralDisc) GptLimits(b int) (int, int) {
	return s.bandLimsGpt[b][0], s.bandLimsGpt[b][1]
}

// BandWavenumbers returns the lower and upper wavenumber limit [cm-1]
// of band b.
func (s *SpectralDisc) BandWavenumbers(b int) (float64, float64) {
	return s.bandLimsWavenumber[b][0], s.bandLimsWavenumber[b][1]
}

// SameAs reports whether two discretizations have identical band and
// g-point structure. Optical properties may only be combined when their
// discretizations match.
func (s *SpectralDisc) SameAs(o *SpectralDisc) bool {
	if o == nil || s.NBand() != o.NBand() || s.NGpt() != o.NGpt() {
		return false
	}
	for b := range s.bandLimsWavenumber {
		if s.bandLimsWavenumber[b] != o.bandLimsWavenumber[b] ||
			s.bandLimsGpt[b] != o.bandLimsGpt[b] {
			return false
		}
	}
	return true
}

// ExpandBandToGpt broadcasts a per-band quantity onto g-points.
// The input may be one dimensional [nband] or two dimensional
// [ncol, nband]; the result has the band dimension replaced by ngpt.
func (s *SpectralDisc) ExpandBandToGpt(perBand *sparse.DenseArray) (*sparse.DenseArray, error) {
	switch len(perBand.Shape) {
	case 1:
		if perBand.Shape[0] != s.NBand() {
			return nil, fmt.Errorf("rrtmgp: per-band array has %d elements but there are %d bands",
				perBand.Shape[0], s.NBand())
		}
		out := sparse.ZerosDense(s.NGpt())
		for g := 0; g < s.NGpt(); g++ {
			out.Set(perBand.Get(s.gpt2band[g]), g)
		}
		return out, nil
	case 2:
		if perBand.Shape[1] != s.NBand() {
			return nil, fmt.Errorf("rrtmgp: per-band array has %d bands but there are %d bands",
				perBand.Shape[1], s.NBand())
		}
		ncol := perBand.Shape[0]
		out := sparse.ZerosDense(ncol, s.NGpt())
		for i := 0; i < ncol; i++ {
			for g := 0; g < s.NGpt(); g++ {
				out.Set(perBand.Get(i, s.gpt2band[g]), i, g)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("rrtmgp: per-band array must have 1 or 2 dimensions but has %d",
			len(perBand.Shape))
	}
}
