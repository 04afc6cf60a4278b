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
	"math"
	"os"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Outputter writes flux results to a NetCDF file, together with derived
// output variables defined as expressions over the flux fields.
//
// Expressions are evaluated element-wise on the (column, level) grid and
// may reference the variables flux_up, flux_down, flux_direct, and plev.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

// builtin variables available to output expressions.
var outputterVars = map[string]bool{
	"flux_up":     true,
	"flux_down":   true,
	"flux_direct": true,
	"plev":        true,
}

// NewOutputter initializes an output writer. outputVariables maps output
// variable names to expressions, e.g. {"flux_net": "flux_down - flux_up"}.
// outputFunctions adds to the default function set, which includes
// 'exp(x)', 'abs(x)', 'sqrt(x)', and 'pow(x, y)'.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("rrtmgp: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return math.Exp(arg[0].(float64)), nil
		},
		"abs": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("rrtmgp: got %d arguments for function 'abs', but needs 1", len(arg))
			}
			return math.Abs(arg[0].(float64)), nil
		},
		"sqrt": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("rrtmgp: got %d arguments for function 'sqrt', but needs 1", len(arg))
			}
			return math.Sqrt(arg[0].(float64)), nil
		},
		"pow": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("rrtmgp: got %d arguments for function 'pow', but needs 2", len(arg))
			}
			return math.Pow(arg[0].(float64), arg[1].(float64)), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
	}
	for name, exprStr := range outputVariables {
		if outputterVars[name] {
			return nil, fmt.Errorf("rrtmgp: output variable name %s shadows a builtin flux field", name)
		}
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("rrtmgp: output variable %s: %v", name, err)
		}
		for _, v := range expr.Vars() {
			if !outputterVars[v] {
				return nil, fmt.Errorf("rrtmgp: output variable %s references undefined variable %s", name, v)
			}
		}
		o.expressions[name] = expr
	}
	return o, nil
}

// evaluate computes a derived output field on the (column, level) grid.
func (o *Outputter) evaluate(name string, f *Fluxes, plev *sparse.DenseArray) (*sparse.DenseArray, error) {
	expr := o.expressions[name]
	out := sparse.ZerosDense(f.NCol(), f.NLev())
	params := make(map[string]interface{}, 4)
	for i := 0; i < f.NCol(); i++ {
		for k := 0; k < f.NLev(); k++ {
			params["flux_up"] = f.Up.Get(i, k)
			params["flux_down"] = f.Down.Get(i, k)
			if f.Direct != nil {
				params["flux_direct"] = f.Direct.Get(i, k)
			} else {
				params["flux_direct"] = 0.
			}
			if plev != nil {
				params["plev"] = plev.Get(i, k)
			} else {
				params["plev"] = 0.
			}
			result, err := expr.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("rrtmgp: evaluating output variable %s: %v", name, err)
			}
			v, ok := result.(float64)
			if !ok {
				return nil, fmt.Errorf("rrtmgp: output variable %s evaluated to %T; want float64", name, result)
			}
			out.Set(v, i, k)
		}
	}
	return out, nil
}

// Write writes the flux fields, the derived output variables, and (when
// level pressures are given) the heating rate to the output file.
func (o *Outputter) Write(f *Fluxes, plev *sparse.DenseArray) error {
	if err := f.Check(); err != nil {
		return err
	}
	ncol, nlev := f.NCol(), f.NLev()

	vars := map[string]*sparse.DenseArray{
		"flux_up": f.Up,
		"flux_dn": f.Down,
	}
	units := map[string]string{
		"flux_up": "W m-2",
		"flux_dn": "W m-2",
	}
	if f.Direct != nil {
		vars["flux_dir"] = f.Direct
		units["flux_dir"] = "W m-2"
	}
	if plev != nil {
		if err := checkShape("plev", plev, ncol, nlev); err != nil {
			return err
		}
		vars["plev"] = plev
		units["plev"] = "Pa"
		hr, err := HeatingRate(f, plev)
		if err != nil {
			return err
		}
		vars["heating_rate"] = hr
		units["heating_rate"] = "K day-1"
	}
	// Derived variables get no units attribute; an expression need not
	// evaluate to a flux.
	for name := range o.expressions {
		a, err := o.evaluate(name, f, plev)
		if err != nil {
			return err
		}
		vars[name] = a
	}

	h := cdf.NewHeader([]string{"column", "level", "layer"}, []int{ncol, nlev, nlev - 1})
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dims := []string{"column", "level"}
		if vars[name].Shape[1] == nlev-1 {
			dims = []string{"column", "layer"}
		}
		h.AddVariable(name, dims, []float64{0})
		if u := units[name]; u != "" {
			h.AddAttribute(name, "units", u)
		}
	}
	h.Define()

	ff, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("rrtmgp: creating output file: %v", err)
	}
	defer ff.Close()
	cf, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("rrtmgp: writing output header: %v", err)
	}
	for _, name := range names {
		if err := writeNCF(cf, name, vars[name]); err != nil {
			return err
		}
	}
	return nil
}
