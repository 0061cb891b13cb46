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


package stdautil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ctessum/geom"
	"github.com/metdig/stda"
	"github.com/metdig/stda/cache"
	"github.com/metdig/stda/derive"
	"github.com/metdig/stda/graphics"
	"github.com/metdig/stda/ncio"
	"github.com/metdig/stda/rain"
	"github.com/metdig/stda/station"
	"github.com/metdig/stda/varreg"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/afero"
	"gonum.org/v1/plot/vg"
)

// readGrid reads a canonical grid file.
func readGrid(reg stda.Registry, path string) (*stda.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stda: %v", err)
	}
	defer f.Close()
	g, err := ncio.Read(f, reg)
	if err != nil {
		return nil, fmt.Errorf("stda: reading %s: %v", path, err)
	}
	return g, nil
}

// writeGrid writes g to a new canonical grid file.
func writeGrid(path string, g *stda.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stda: %v", err)
	}
	if err := ncio.Write(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("stda: %v", err)
	}
	Log.WithFields(logrus.Fields{
		"file":  path,
		"var":   g.Name(),
		"shape": g.Shape(),
	}).Info("wrote grid")
	return nil
}

// Vars lists the variables in reg.
func Vars(w io.Writer, reg *varreg.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tcn_name\tunits")
	for _, n := range reg.Names() {
		v, _ := reg.Lookup(n)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n, v.CNName, v.Units)
	}
	return tw.Flush()
}

// Convert reads a variable from the netCDF file in, canonicalizes it and
// writes the result to out. If opts.Units is empty, the units attribute
// of the variable is used.
func Convert(reg stda.Registry, in, out string, opts stda.Options) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("stda: %v", err)
	}
	defer f.Close()
	if opts.VarName == "" {
		return fmt.Errorf("stda: you need to specify the variable to convert (for example: --var=t2m)")
	}
	raw, units, err := ncio.ReadVar(f, opts.VarName)
	if err != nil {
		return err
	}
	if opts.Units == "" {
		opts.Units = units
	}
	g, err := stda.FromLabeled(reg, raw, opts)
	if err != nil {
		return err
	}
	return writeGrid(out, g)
}

// Info writes a description of the grid in the file at path to w.
func Info(w io.Writer, reg stda.Registry, path string) error {
	g, err := readGrid(reg, path)
	if err != nil {
		return err
	}
	a := g.Accessor()
	fmt.Fprintln(w, a.Describe())
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, ax := range stda.Axes() {
		c := g.Coords[ax]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", ax, c.Len(), c.String(0), c.String(c.Len()-1))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	keys := make([]string, 0, len(g.Attrs))
	for k := range g.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %v\n", k, g.Attrs[k])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, station.Summarize(g.Values()))
	return nil
}

// Plot draws the grid in file in to a width × height inch PNG image at
// out, opening it afterwards if view is true.
func Plot(reg stda.Registry, kind, in, out string, opts graphics.Options, width, height float64, view bool) error {
	g, err := readGrid(reg, in)
	if err != nil {
		return err
	}
	var draw func(*stda.Grid, graphics.Options) (*graphics.Figure, error)
	switch kind {
	case "pcolormesh":
		draw = graphics.Pcolormesh
	case "contourf":
		draw = graphics.Contourf
	case "contour":
		draw = graphics.Contour
	default:
		return fmt.Errorf("stda: unknown plot kind %q", kind)
	}
	fig, err := draw(g, opts)
	if err != nil {
		return err
	}
	return savePNG(fig, out, width, height, view)
}

func savePNG(fig *graphics.Figure, out string, width, height float64, view bool) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("stda: %v", err)
	}
	if err := fig.SavePNG(f, vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("stda: %v", err)
	}
	Log.WithField("file", out).Info("wrote image")
	if view {
		return open.Run(out)
	}
	return nil
}

// Series extracts the time series nearest to (lon, lat) from each of the
// grid files in inputs and writes them to out, which is an Excel
// workbook if it ends in .xlsx and a PNG plot if it ends in .png.
func Series(reg stda.Registry, inputs []string, out string, lon, lat float64, title string, width, height float64, view bool) error {
	var series []station.Series
	for _, in := range inputs {
		g, err := readGrid(reg, in)
		if err != nil {
			return err
		}
		p, err := station.Nearest(g, lon, lat)
		if err != nil {
			return err
		}
		s, err := station.FromGrid(p)
		if err != nil {
			return fmt.Errorf("stda: %s: %v", in, err)
		}
		if title == "" {
			title = p.Accessor().DescribePoint("")
		}
		Log.WithFields(logrus.Fields{
			"file":    in,
			"var":     s.Name,
			"summary": s.Summary().String(),
		}).Debug("extracted series")
		series = append(series, s)
	}

	switch strings.ToLower(filepath.Ext(out)) {
	case ".xlsx":
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("stda: %v", err)
		}
		sheet := fmt.Sprintf("%.2f,%.2f", series[0].Lon, series[0].Lat)
		if err := station.WriteXLSX(f, sheet, series...); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("stda: %v", err)
		}
		Log.WithField("file", out).Info("wrote workbook")
		if view {
			return open.Run(out)
		}
		return nil
	case ".png":
		lines := make([]graphics.Line, len(series))
		for i, s := range series {
			lines[i] = graphics.Line{Label: s.Label, Times: s.Times, Values: s.Values}
		}
		p, err := graphics.Series(title, "", lines...)
		if err != nil {
			return err
		}
		return savePNG(&graphics.Figure{Plot: p}, out, width, height, view)
	default:
		return fmt.Errorf("stda: series output %s must end in .xlsx or .png", out)
	}
}

// Derive evaluates expr over the grids in the files named by inputs,
// which maps expression variables to paths, and writes the result as
// variable varName to out.
func Derive(reg stda.Registry, expr, varName string, inputs map[string]string, out string, extra stda.Attrs) error {
	e, err := derive.Parse(expr, derive.DefaultFunctions())
	if err != nil {
		return err
	}
	grids := make(map[string]*stda.Grid, len(inputs))
	for _, v := range e.Vars() {
		path, ok := inputs[v]
		if !ok {
			return fmt.Errorf("stda: no input file given for expression variable %q", v)
		}
		if grids[v], err = readGrid(reg, path); err != nil {
			return err
		}
	}
	g, err := e.Eval(reg, varName, grids, extra)
	if err != nil {
		return err
	}
	return writeGrid(out, g)
}

// Rain derives precipitation accumulated over atime hours from the model
// files cached under dir and writes it to out. Up to workers files are
// read at once.
func Rain(ctx context.Context, reg stda.Registry, dir string, req rain.Request, atime, workers int, out string) error {
	fs := ncio.NewFileSource(afero.NewOsFs(), dir, reg)
	fs.Log = Log
	src := rain.NewCachedSource(fs, workers, 4*atime)
	g, err := rain.Read(ctx, src, req, atime)
	if err != nil {
		return err
	}
	return writeGrid(out, g)
}

// CachePath writes the path of the cached ERA5 file matching the request
// to w, followed by whether the file exists.
func CachePath(w io.Writer, dir string, init time.Time, varName string, extent geom.Bounds, level float64, findArea bool) error {
	if varName == "" {
		return fmt.Errorf("stda: you need to specify the variable (for example: --var=tmp)")
	}
	r := cache.NewResolver(dir)
	r.Log = Log
	path, found := r.ERA5Path(init, varName, extent, level, findArea)
	_, err := fmt.Fprintf(w, "%s\t%v\n", path, found)
	return err
}
