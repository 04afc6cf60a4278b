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

package rrtmgputil

import (
	"fmt"
	"os"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	rrtmgp "github.com/oelbert/pyRTE-RRTMGP"
)

// fluxProfileXYs converts one column of a flux field to plot points,
// with pressure [hPa] on the vertical axis when available.
func fluxProfileXYs(flux, plev *sparse.DenseArray, col int) plotter.XYs {
	nlev := flux.Shape[1]
	pts := make(plotter.XYs, nlev)
	for k := 0; k < nlev; k++ {
		pts[k].X = flux.Get(col, k)
		if plev != nil {
			pts[k].Y = plev.Get(col, k) / 100
		} else {
			pts[k].Y = float64(k)
		}
	}
	return pts
}

// PlotFluxProfile plots the up-, down-, and (if present) direct-beam
// flux profiles of one column against pressure and writes the plot to
// imgFile; the file extension selects the image format.
func PlotFluxProfile(fluxes *rrtmgp.Fluxes, plev *sparse.DenseArray, col int, imgFile string) error {
	if col < 0 || col >= fluxes.NCol() {
		return fmt.Errorf("rte: plot column %d out of range [0, %d)", col, fluxes.NCol())
	}
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("rte: creating plot: %v", err)
	}
	p.Title.Text = fmt.Sprintf("Flux profiles, column %d", col)
	p.X.Label.Text = "Flux (W m⁻²)"
	if plev != nil {
		p.Y.Label.Text = "Pressure (hPa)"
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
		p.Y.Tick.Marker = plot.InvertedTicks{Ticker: plot.DefaultTicks{}}
	} else {
		p.Y.Label.Text = "Level index"
	}

	series := []interface{}{
		"up", fluxProfileXYs(fluxes.Up, plev, col),
		"down", fluxProfileXYs(fluxes.Down, plev, col),
	}
	if fluxes.Direct != nil {
		series = append(series, "direct", fluxProfileXYs(fluxes.Direct, plev, col))
	}
	if err := plotutil.AddLines(p, series...); err != nil {
		return fmt.Errorf("rte: adding flux lines: %v", err)
	}
	if err := p.Save(4*vg.Inch, 6*vg.Inch, imgFile); err != nil {
		return fmt.Errorf("rte: saving plot: %v", err)
	}
	return nil
}

// plotFromConfig reads the configured flux file and plots one column.
func plotFromConfig(cfg *viper.Viper) error {
	path, err := maybeDownload(cfg.GetString("Plot.FluxFile"))
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("rte: opening flux file: %v", err)
	}
	defer f.Close()
	fluxes, err := rrtmgp.LoadReferenceFluxes(f)
	if err != nil {
		return err
	}
	plev, err := rrtmgp.ReadVariable(f, "plev")
	if err != nil {
		plev = nil // level pressures are optional in flux files
	}
	return PlotFluxProfile(fluxes, plev, cfg.GetInt("Plot.Column"), cfg.GetString("Plot.OutputFile"))
}
