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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment variables
// in the output variable expressions.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// outputVariables extracts the derived output variable expressions
// from the configuration. On the command line they arrive as a JSON
// string; in a configuration file as a table.
func outputVariables(cfg *viper.Viper) (map[string]string, error) {
	val := cfg.Get("OutputVariables")
	if val == nil {
		return nil, nil
	}
	if s, ok := val.(string); ok {
		vars := make(map[string]string)
		if strings.TrimSpace(s) == "" {
			return vars, nil
		}
		if err := json.Unmarshal([]byte(s), &vars); err != nil {
			return nil, fmt.Errorf("rte: parsing OutputVariables: %v", err)
		}
		return checkOutputVars(vars)
	}
	vars, err := cast.ToStringMapStringE(val)
	if err != nil {
		return nil, fmt.Errorf("rte: parsing OutputVariables: %v", err)
	}
	return checkOutputVars(vars)
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`rte: you need to specify an output file (for example: OutputFile="fluxes.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("rte: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// defaultConfig is the scaffold written by WriteDefaultConfig.
type defaultConfig struct {
	Engine            string
	GasOpticsFile     string
	CloudOpticsFile   string
	AtmosphereFile    string
	ReferenceFile     string
	OutputFile        string
	Problem           string
	Clouds            bool
	DeltaScale        bool
	SurfaceEmissivity float64
	SurfaceAlbedo     float64
	SolarZenithCosine float64
	Tolerance         float64
	Profiles          struct {
		SST        float64
		NColumns   int
		NLayers    int
		PerturbSST float64
	}
	OutputVariables map[string]string
}

// WriteDefaultConfig writes a TOML configuration scaffold with the
// default option values to the given path.
func WriteDefaultConfig(path string) error {
	c := defaultConfig{
		OutputFile:        "fluxes.nc",
		Problem:           "absorption",
		SurfaceEmissivity: 0.98,
		SurfaceAlbedo:     0.06,
		SolarZenithCosine: 0.86,
		Tolerance:         1e-7,
		OutputVariables:   map[string]string{"flux_net": "flux_down - flux_up"},
	}
	c.Profiles.SST = 300
	c.Profiles.NColumns = 8
	c.Profiles.NLayers = 72

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rte: creating configuration file: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("rte: writing configuration file: %v", err)
	}
	return nil
}
