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

// Package rrtmgp orchestrates atmospheric radiative-flux calculations.
//
// The package holds the data model for such calculations—spectral
// discretizations, gas concentrations, atmospheric states, optical
// properties, and flux results—together with loaders for the precomputed
// gas- and cloud-optics datasets and for reference flux files. The
// spectral gas-optics interpolation, cloud-optics parameterization, and
// radiative-transfer solution themselves are performed by an external
// optics engine registered through the Engine interface; this package
// prepares the engine's inputs, merges cloud optical properties into gas
// optical properties, and reduces and compares the resulting fluxes.
package rrtmgp

// Version gives the version number.
const Version = "0.1.0"
