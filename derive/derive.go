/*
Copyright © 2019 the STDA authors.
This file is part of STDA.

STDA is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

STDA is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with STDA.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package derive computes new fields from arithmetic expressions over
// existing fields, for example wind speed from its components:
//
//	sqrt(u10m**2 + v10m**2)
package derive

import (
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/metdig/stda"
)

// Expression is a parsed expression whose variables are field names.
type Expression struct {
	src  string
	expr *govaluate.EvaluableExpression
	vars []string
}

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("derive: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		x, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("derive: argument of '%s' is not a number", name)
		}
		return f(x), nil
	}
}

func reduce(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) == 0 {
			return nil, fmt.Errorf("derive: function '%s' needs at least 1 argument", name)
		}
		var v float64
		for i, a := range arg {
			x, ok := a.(float64)
			if !ok {
				return nil, fmt.Errorf("derive: argument %d of '%s' is not a number", i, name)
			}
			if i == 0 {
				v = x
			} else {
				v = f(v, x)
			}
		}
		return v, nil
	}
}

// DefaultFunctions returns the functions available in expressions:
// sqrt, abs, exp, log (natural logarithm), and the variadic max and min.
func DefaultFunctions() map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"sqrt": unary("sqrt", math.Sqrt),
		"abs":  unary("abs", math.Abs),
		"exp":  unary("exp", math.Exp),
		"log":  unary("log", math.Log),
		"max":  reduce("max", math.Max),
		"min":  reduce("min", math.Min),
	}
}

// Parse parses expr. Functions in funcs are added to, or replace, the
// default functions.
func Parse(expr string, funcs map[string]govaluate.ExpressionFunction) (*Expression, error) {
	f := DefaultFunctions()
	for k, v := range funcs {
		f[k] = v
	}
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, f)
	if err != nil {
		return nil, fmt.Errorf("derive: parsing %q: %v", expr, err)
	}
	seen := make(map[string]bool)
	var vars []string
	for _, v := range e.Vars() {
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	sort.Strings(vars)
	return &Expression{src: expr, expr: e, vars: vars}, nil
}

func (e *Expression) String() string { return e.src }

// Vars returns the sorted names of the fields the expression uses.
func (e *Expression) Vars() []string { return e.vars }

// Eval evaluates the expression element by element over the fields in
// inputs, which must all have the same shape, and returns the result as
// variable varName with the coordinates of the inputs. If extra sets
// stda.VarUnits, the result is taken to be in that unit and is converted
// to the canonical unit of varName.
func (e *Expression) Eval(reg stda.Registry, varName string, inputs map[string]*stda.Grid, extra stda.Attrs) (*stda.Grid, error) {
	if len(e.vars) == 0 {
		return nil, fmt.Errorf("derive: expression %q uses no fields", e.src)
	}
	grids := make([]*stda.Grid, len(e.vars))
	for i, v := range e.vars {
		g, ok := inputs[v]
		if !ok {
			return nil, fmt.Errorf("derive: expression %q needs field %s", e.src, v)
		}
		if i > 0 && g.Shape() != grids[0].Shape() {
			return nil, fmt.Errorf("derive: field %s has shape %v but %s has %v: %w",
				v, g.Shape(), e.vars[0], grids[0].Shape(), stda.ErrShapeMismatch)
		}
		grids[i] = g
	}

	n := len(grids[0].Values())
	values := make([]float64, n)
	params := make(map[string]interface{}, len(e.vars))
	for j := 0; j < n; j++ {
		for i, v := range e.vars {
			params[v] = grids[i].Values()[j]
		}
		r, err := e.expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("derive: evaluating %q: %v", e.src, err)
		}
		switch x := r.(type) {
		case float64:
			values[j] = x
		case bool:
			if x {
				values[j] = 1
			}
		default:
			return nil, fmt.Errorf("derive: expression %q returned %T", e.src, r)
		}
	}

	o := stda.FullLike(reg, grids[0], 0, varName, extra)
	v, units := stda.NormalizeUnits(reg, values, extra.String(stda.VarUnits), varName)
	copy(o.Data.Elements, v)
	o.Attrs[stda.VarUnits] = units
	return o, nil
}
