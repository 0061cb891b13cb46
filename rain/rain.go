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

// Package rain derives accumulated precipitation fields from whatever
// precipitation variables a numerical model provides.
package rain

import (
	"context"
	"errors"
	"fmt"

	"github.com/metdig/stda"
	"github.com/metdig/stda/cache"
	"github.com/sirupsen/logrus"
)

// Request identifies one model field.
type Request = cache.ModelRequest

// ErrNotFound is returned by a Source when the requested field does not
// exist.
var ErrNotFound = errors.New("rain: data not found")

// Source provides model fields.
type Source interface {
	ModelGrid(ctx context.Context, req Request) (*stda.Grid, error)
}

// Log receives progress information.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Read returns the precipitation accumulated over the atime hours ending
// at lead time req.Fhour. req.VarName is ignored. Three methods are tried
// in order, and the result of the first that succeeds is returned:
//
//  1. the model's own rainNN field, where NN is atime;
//  2. the difference between the cumulative precipitation ("tpe") at
//     req.Fhour and at req.Fhour-atime;
//  3. the sum of the hourly precipitation ("rain01") fields at lead times
//     req.Fhour, req.Fhour-1, ..., req.Fhour-atime+1.
//
// The returned error wraps ErrNotFound if none of the methods succeed.
func Read(ctx context.Context, src Source, req Request, atime int) (*stda.Grid, error) {
	if atime <= 0 {
		return nil, fmt.Errorf("rain: invalid accumulation period %d h", atime)
	}
	name := fmt.Sprintf("rain%02d", atime)
	methods := []struct {
		name string
		f    func(context.Context, Source, Request, int) (*stda.Grid, error)
	}{
		{"self", bySelf},
		{"tpe", byTpe},
		{"rain01", byRain01},
	}
	var errs []error
	for _, m := range methods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := m.f(ctx, src, req, atime)
		if err == nil {
			return g, nil
		}
		errs = append(errs, err)
		Log.WithFields(logrus.Fields{
			"var":    name,
			"init":   req.Init,
			"fhour":  req.Fhour,
			"method": m.name,
		}).Infof("rain: method failed: %v", err)
	}
	return nil, fmt.Errorf("rain: can not get any data for %s at %s+%dh (%v): %w",
		name, req.Init.Format("2006010215"), req.Fhour, errs, ErrNotFound)
}

func get(ctx context.Context, src Source, req Request, varName string, fhour int) (*stda.Grid, error) {
	req.VarName = varName
	req.Fhour = fhour
	req.Level = 0
	return src.ModelGrid(ctx, req)
}

func bySelf(ctx context.Context, src Source, req Request, atime int) (*stda.Grid, error) {
	return get(ctx, src, req, fmt.Sprintf("rain%02d", atime), req.Fhour)
}

func byTpe(ctx context.Context, src Source, req Request, atime int) (*stda.Grid, error) {
	tpe1, err := get(ctx, src, req, "tpe", req.Fhour)
	if err != nil {
		return nil, err
	}
	var rain *stda.Grid
	switch start := req.Fhour - atime; {
	case start == 0:
		rain = tpe1.Copy()
	case start < 0:
		return nil, fmt.Errorf("rain: lead time %d h is shorter than %d h: %w", req.Fhour, atime, ErrNotFound)
	default:
		tpe2, err := get(ctx, src, req, "tpe", start)
		if err != nil {
			return nil, err
		}
		if rain, err = stda.Sub(tpe1, tpe2); err != nil {
			return nil, err
		}
	}
	relabel(rain, atime)
	return rain, nil
}

func byRain01(ctx context.Context, src Source, req Request, atime int) (*stda.Grid, error) {
	if req.Fhour-atime < 0 {
		return nil, fmt.Errorf("rain: lead time %d h is shorter than %d h: %w", req.Fhour, atime, ErrNotFound)
	}
	hourly := make([]*stda.Grid, atime)
	for i := range hourly {
		g, err := get(ctx, src, req, "rain01", req.Fhour-i)
		if err != nil {
			return nil, err
		}
		hourly[i] = g
	}
	all, err := stda.Concat(stda.Dtime, hourly...)
	if err != nil {
		return nil, err
	}
	rain, err := all.SumAxis(stda.Dtime, stda.Numbers(float64(req.Fhour)))
	if err != nil {
		return nil, err
	}
	relabel(rain, atime)
	return rain, nil
}

// relabel sets the attributes of a derived accumulation.
func relabel(g *stda.Grid, atime int) {
	g.Attrs[stda.ValidTime] = atime
	g.Attrs[stda.VarCNName] = fmt.Sprintf("%d小时降水", atime)
	g.Attrs[stda.VarName] = fmt.Sprintf("rain%02d", atime)
}
