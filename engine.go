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
	"sync"
)

// ProblemType selects the radiative-transfer formulation.
type ProblemType int

const (
	// AbsorptionProblem is a no-scattering absorption/emission problem;
	// the gas optics are absorption optical depths only.
	AbsorptionProblem ProblemType = iota

	// TwoStreamProblem carries optical depth, single-scattering albedo,
	// and asymmetry parameter for a two-stream solution.
	TwoStreamProblem
)

func (p ProblemType) String() string {
	switch p {
	case AbsorptionProblem:
		return "absorption"
	case TwoStreamProblem:
		return "two-stream"
	default:
		return fmt.Sprintf("ProblemType(%d)", int(p))
	}
}

// ParseProblemType converts a configuration string to a ProblemType.
func ParseProblemType(s string) (ProblemType, error) {
	switch s {
	case "absorption", "1scl":
		return AbsorptionProblem, nil
	case "two-stream", "twostream", "2str":
		return TwoStreamProblem, nil
	default:
		return 0, fmt.Errorf("rrtmgp: unknown problem type %q; want absorption or two-stream", s)
	}
}

// GasOpticsComputer computes spectrally resolved gas optical properties
// for an atmospheric state. For internal-source (longwave) data the
// returned Sources carry Planck source terms; for solar data they carry
// the top-of-atmosphere spectral flux.
type GasOpticsComputer interface {
	ComputeGasOptics(data *GasOpticsData, state *AtmosphericState, problem ProblemType) (OpticalProps, *Sources, error)
}

// CloudOpticsComputer computes spectrally resolved cloud optical
// properties from the state's condensate fields. The returned properties
// must share the spectral discretization passed in so that they can be
// added into the gas optics.
type CloudOpticsComputer interface {
	ComputeCloudOptics(data *CloudOpticsData, disc *SpectralDisc, state *AtmosphericState, problem ProblemType) (OpticalProps, error)
}

// Solver computes per-column per-level fluxes from a fully specified
// problem.
type Solver interface {
	Solve(problem *Problem) (*Fluxes, error)
}

// Engine is an externally implemented optics and radiative-transfer
// backend. Implementations register themselves with RegisterEngine,
// typically in an init function, and are selected by name at run time.
type Engine interface {
	GasOpticsComputer
	CloudOpticsComputer
	Solver

	// Name returns the name the engine is registered under.
	Name() string
}

var (
	engineMx sync.Mutex
	engines  = make(map[string]Engine)
)

// RegisterEngine makes an optics engine available by name. It panics if
// the name is already taken, as duplicate registrations indicate a
// programming error.
func RegisterEngine(e Engine) {
	engineMx.Lock()
	defer engineMx.Unlock()
	if _, ok := engines[e.Name()]; ok {
		panic(fmt.Sprintf("rrtmgp: engine %q is already registered", e.Name()))
	}
	engines[e.Name()] = e
}

// EngineByName returns the registered engine with the given name.
func EngineByName(name string) (Engine, error) {
	engineMx.Lock()
	defer engineMx.Unlock()
	if e, ok := engines[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("rrtmgp: no optics engine registered under %q; registered engines are %v",
		name, engineNamesLocked())
}

// EngineNames returns the names of all registered engines, sorted.
func EngineNames() []string {
	engineMx.Lock()
	defer engineMx.Unlock()
	return engineNamesLocked()
}

func engineNamesLocked() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
