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
	"gonum.org/v1/gonum/floats"
)

// readNCF reads an entire numeric variable from a NetCDF file.
func readNCF(varName string, ff *cdf.File) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(varName)
	if dims == nil {
		return nil, fmt.Errorf("rrtmgp: read netcdf: variable %v not in file", varName)
	}
	if len(dims) == 0 { // dimensionless variable
		dims = []int{1}
	}
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	r := ff.Reader(varName, nil, nil)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("rrtmgp: read netcdf variable %s: %v", varName, err)
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float64:
		copy(data.Elements, b)
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("rrtmgp: read netcdf variable %s: unsupported type %T", varName, buf)
	}
	return data, nil
}

// readNCFStrings reads a two-dimensional character variable as a slice
// of trimmed strings.
func readNCFStrings(varName string, ff *cdf.File) ([]string, error) {
	dims := ff.Header.Lengths(varName)
	if len(dims) != 2 {
		return nil, fmt.Errorf("rrtmgp: read netcdf: string variable %v must have 2 dimensions", varName)
	}
	n, width := dims[0], dims[1]
	r := ff.Reader(varName, nil, nil)
	buf := make([]byte, n*width)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("rrtmgp: read netcdf variable %s: %v", varName, err)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = strings.TrimRight(strings.TrimRight(string(buf[i*width:(i+1)*width]), "\x00"), " ")
	}
	return out, nil
}

// writeNCF writes a dense array to a NetCDF file variable.
func writeNCF(f *cdf.File, varName string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(varName)
	start := make([]int, len(end))
	w := f.Writer(varName, start, end)
	if _, err := w.Write(data.Elements); err != nil {
		return fmt.Errorf("rrtmgp: write netcdf variable %s: %v", varName, err)
	}
	return nil
}

func hasVariable(ff *cdf.File, name string) bool {
	return ff.Header.Lengths(name) != nil
}

// ReadVariable reads a whole numeric variable from a NetCDF file.
func ReadVariable(rw cdf.ReaderWriterAt, varName string) (*sparse.DenseArray, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.ReadVariable: %v", err)
	}
	return readNCF(varName, ff)
}

// loadSpectralDisc reads the band structure shared by all optics
// datasets: bnd_limits_wavenumber [nband, 2] and bnd_limits_gpt
// [nband, 2] (one-based indices, as stored in the data files).
func loadSpectralDisc(ff *cdf.File) (*SpectralDisc, error) {
	wn, err := readNCF("bnd_limits_wavenumber", ff)
	if err != nil {
		return nil, err
	}
	gpt, err := readNCF("bnd_limits_gpt", ff)
	if err != nil {
		return nil, err
	}
	if len(wn.Shape) != 2 || wn.Shape[1] != 2 || len(gpt.Shape) != 2 || gpt.Shape[1] != 2 {
		return nil, fmt.Errorf("rrtmgp: band limit variables must have shape [nband, 2]")
	}
	nband := wn.Shape[0]
	wnLims := make([][2]float64, nband)
	gptLims := make([][2]int, nband)
	for b := 0; b < nband; b++ {
		wnLims[b] = [2]float64{wn.Get(b, 0), wn.Get(b, 1)}
		gptLims[b] = [2]int{int(gpt.Get(b, 0)) - 1, int(gpt.Get(b, 1)) - 1}
	}
	return NewSpectralDisc(wnLims, gptLims)
}

// GasOpticsData is an opaque gas-optics dataset loaded from a bundled
// data file. The toolkit only consumes its metadata; the spectral
// lookup tables inside the file belong to the external optics engine,
// which receives the file path through the Problem it solves.
type GasOpticsData struct {
	disc     *SpectralDisc
	gasNames []string

	// Valid input ranges.
	PressRefMin, PressRefMax float64 // [Pa]
	TempRefMin, TempRefMax   float64 // [K]

	// internal is true when the dataset describes an internal-source
	// (longwave) problem, false for solar (shortwave) data.
	internal bool

	// TotalSolarIrradiance is the quiet-sun spectral source summed over
	// g-points [W/m2]; zero for longwave data.
	TotalSolarIrradiance float64

	// Path of the file the data were loaded from, when known.
	Path string
}

// Disc returns the dataset's spectral discretization.
func (d *GasOpticsData) Disc() *SpectralDisc { return d.disc }

// Internal reports whether the dataset describes an internal (Planck)
// source problem, i.e. longwave.
func (d *GasOpticsData) Internal() bool { return d.internal }

// AvailableGases returns the gases the dataset can compute optics for.
func (d *GasOpticsData) AvailableGases() []string { return d.gasNames }

// LoadGasOpticsData loads gas-optics metadata from a k-distribution
// NetCDF file.
func LoadGasOpticsData(rw cdf.ReaderWriterAt) (*GasOpticsData, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
	}
	disc, err := loadSpectralDisc(ff)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
	}
	d := &GasOpticsData{disc: disc}

	d.gasNames, err = readNCFStrings("gas_names", ff)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
	}
	for i, g := range d.gasNames {
		d.gasNames[i] = normalizeGasName(g)
	}

	press, err := readNCF("press_ref", ff)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
	}
	d.PressRefMin = floats.Min(press.Elements)
	d.PressRefMax = floats.Max(press.Elements)

	temp, err := readNCF("temp_ref", ff)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
	}
	d.TempRefMin = floats.Min(temp.Elements)
	d.TempRefMax = floats.Max(temp.Elements)

	// The presence of a Planck source table marks longwave data; solar
	// source terms mark shortwave data.
	switch {
	case hasVariable(ff, "totplnk"):
		d.internal = true
	case hasVariable(ff, "solar_source_quiet"):
		solar, err := readNCF("solar_source_quiet", ff)
		if err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
		}
		d.TotalSolarIrradiance = floats.Sum(solar.Elements)
	case hasVariable(ff, "solar_source"):
		solar, err := readNCF("solar_source", ff)
		if err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: %v", err)
		}
		d.TotalSolarIrradiance = floats.Sum(solar.Elements)
	default:
		return nil, fmt.Errorf("rrtmgp.LoadGasOpticsData: file has neither a Planck source table nor a solar source")
	}
	return d, nil
}

// CloudOpticsData is an opaque cloud-optics dataset loaded from a
// bundled data file. As with GasOpticsData, only metadata are read here.
type CloudOpticsData struct {
	disc *SpectralDisc

	// Valid effective particle radius ranges [microns].
	RadLiqMin, RadLiqMax float64
	RadIceMin, RadIceMax float64

	// Path of the file the data were loaded from, when known.
	Path string
}

// Disc returns the dataset's spectral band discretization.
func (d *CloudOpticsData) Disc() *SpectralDisc { return d.disc }

// readScalarNCF reads the first element of a variable, accepting both
// scalar and single-element storage.
func readScalarNCF(varName string, ff *cdf.File) (float64, error) {
	a, err := readNCF(varName, ff)
	if err != nil {
		return 0, err
	}
	return a.Elements[0], nil
}

// LoadCloudOpticsData loads cloud-optics metadata from a NetCDF file.
func LoadCloudOpticsData(rw cdf.ReaderWriterAt) (*CloudOpticsData, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadCloudOpticsData: %v", err)
	}
	d := new(CloudOpticsData)

	// Cloud-optics files carry only band limits; the per-band g-point
	// mapping is trivial (one g-point per band).
	wn, err := readNCF("bnd_limits_wavenumber", ff)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadCloudOpticsData: %v", err)
	}
	nband := wn.Shape[0]
	wnLims := make([][2]float64, nband)
	gptLims := make([][2]int, nband)
	for b := 0; b < nband; b++ {
		wnLims[b] = [2]float64{wn.Get(b, 0), wn.Get(b, 1)}
		gptLims[b] = [2]int{b, b}
	}
	d.disc, err = NewSpectralDisc(wnLims, gptLims)
	if err != nil {
		return nil, fmt.Errorf("rrtmgp.LoadCloudOpticsData: %v", err)
	}

	for _, v := range []struct {
		name string
		dst  *float64
	}{
		{"radliq_lwr", &d.RadLiqMin},
		{"radliq_upr", &d.RadLiqMax},
		{"radice_lwr", &d.RadIceMin},
		{"radice_upr", &d.RadIceMax},
	} {
		val, err := readScalarNCF(v.name, ff)
		if err != nil {
			return nil, fmt.Errorf("rrtmgp.LoadCloudOpticsData: %v", err)
		}
		*v.dst = val
	}
	if d.RadLiqMin >= d.RadLiqMax || d.RadIceMin >= d.RadIceMax {
		return nil, fmt.Errorf("rrtmgp.LoadCloudOpticsData: invalid particle size ranges [%g, %g], [%g, %g]",
			d.RadLiqMin, d.RadLiqMax, d.RadIceMin, d.RadIceMax)
	}
	return d, nil
}
