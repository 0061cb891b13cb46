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

// Package cache locates files in the local data cache.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Resolver resolves cache file paths under a cache directory.
type Resolver struct {
	// Fs is the file system holding the cache. If it is nil the operating
	// system file system is used.
	Fs afero.Fs

	// Dir is the cache directory.
	Dir string

	// Log receives the disk usage notice. If it is nil the standard
	// logger is used.
	Log logrus.FieldLogger

	warnOnce sync.Once
}

// NewResolver returns a Resolver for the operating system file system.
func NewResolver(dir string) *Resolver {
	return &Resolver{Fs: afero.NewOsFs(), Dir: dir}
}

// DefaultDir returns the cache directory: the "cache" sub-directory of
// configured if it is not empty, or of ~/.metdig otherwise. A leading
// "~" in configured is expanded to the user's home directory.
func DefaultDir(configured string) (string, error) {
	home, err := os.UserHomeDir()
	if configured == "" {
		if err != nil {
			return "", fmt.Errorf("cache: finding home directory: %v", err)
		}
		return filepath.Join(home, ".metdig", "cache"), nil
	}
	if configured == "~" || strings.HasPrefix(configured, "~/") {
		if err != nil {
			return "", fmt.Errorf("cache: expanding %s: %v", configured, err)
		}
		configured = filepath.Join(home, configured[1:])
	}
	return filepath.Join(configured, "cache"), nil
}

func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Resolver) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

const timeLayout = "200601021504"

func formatNum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// formatFloat formats v as Python formats a float, keeping ".0" on
// integral values.
func formatFloat(v float64) string {
	s := formatNum(v)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// era5File returns the directory and path of an ERA5 cache file with
// numbers formatted by num.
func era5File(root string, init time.Time, varName string, e [4]float64, level float64, num func(float64) string) (dir, path string) {
	dir = filepath.Join(root, init.Format(timeLayout), "hourly", varName)
	if level != 0 {
		dir = filepath.Join(dir, num(level))
	}
	path = filepath.Join(dir, fmt.Sprintf("%s_%s_%s_%s_%s.nc", init.Format(timeLayout),
		num(e[0]), num(e[1]), num(e[2]), num(e[3])))
	return dir, path
}

// ERA5Path returns the path of the cached ERA5 reanalysis file for the
// given initialization time, variable, extent and level (0 for
// single-level variables). Files are stored as
//
//	<Dir>/ERA5_DATA/<init>/hourly/<var>[/<level>]/<init>_<lon0>_<lon1>_<lat0>_<lat1>.nc
//
// where extent.Min holds (lon0, lat0) and extent.Max holds (lon1, lat1).
// Numbers are written without a trailing ".0" ("_50_"); if no such file
// exists but one written with float formatting ("_50.0_", for the level
// as well) does, that one is used. Names that mix the two styles are only
// matched by the findArea search.
// If findArea is true and a cached file for the same time covers the
// requested extent, the path of the first such file (in name order) is
// returned instead. found reports whether the returned file exists.
func (r *Resolver) ERA5Path(init time.Time, varName string, extent geom.Bounds, level float64, findArea bool) (path string, found bool) {
	root := filepath.Join(r.Dir, "ERA5_DATA")
	r.warnOnce.Do(func() {
		r.log().WithField("dir", root).Warn("cache: ERA5 data are cached on local disk; check disk usage and clean or move the cache directory when needed")
	})

	e := [4]float64{extent.Min.X, extent.Max.X, extent.Min.Y, extent.Max.Y}
	fs := r.fs()
	dir, path := era5File(root, init, varName, e, level, formatNum)
	dirs := []string{dir}
	if fdir, fpath := era5File(root, init, varName, e, level, formatFloat); fpath != path {
		if ok, _ := afero.Exists(fs, path); !ok {
			if ok, _ := afero.Exists(fs, fpath); ok {
				path = fpath
			}
		}
		if fdir != dir {
			dirs = append(dirs, fdir)
		}
	}

	if findArea {
		prefix := init.Format(timeLayout)
	search:
		for _, dir := range dirs {
			infos, err := afero.ReadDir(fs, dir)
			if err != nil {
				continue
			}
			for _, fi := range infos {
				name := fi.Name()
				if fi.IsDir() || !strings.HasPrefix(name, prefix+"_") || filepath.Ext(name) != ".nc" {
					continue
				}
				if f, ok := parseExtent(strings.TrimSuffix(name, ".nc")); ok && covers(f, e) {
					path = filepath.Join(dir, name)
					break search
				}
			}
		}
	}
	found, _ = afero.Exists(fs, path)
	return path, found
}

var numberRE = regexp.MustCompile(`-?\d+\.?\d*`)

// parseExtent extracts the extent from a file name such as
// "202007250800_28_180_-7_77".
func parseExtent(stem string) ([4]float64, bool) {
	var e [4]float64
	m := numberRE.FindAllString(stem, -1)
	if len(m) != 5 {
		return e, false
	}
	for i, s := range m[1:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return e, false
		}
		e[i] = v
	}
	return e, true
}

// covers reports whether file extent f contains extent e.
func covers(f, e [4]float64) bool {
	return f[0] <= e[0] && f[1] >= e[1] && f[2] <= e[2] && f[3] >= e[3]
}

// ModelRequest identifies one field of a numerical model run.
type ModelRequest struct {
	DataSource string
	DataName   string
	Init       time.Time
	Fhour      int
	VarName    string
	Level      float64
}

func (m ModelRequest) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%03d", m.DataSource, m.DataName,
		m.Init.Format(timeLayout), m.VarName, formatNum(m.Level), m.Fhour)
}

// ModelPath returns the path of the cached file for a model field:
//
//	<Dir>/<data_source>/<data_name>/<init>/<var>[/<level>]/<fhour>.nc
func (r *Resolver) ModelPath(m ModelRequest) string {
	p := []string{r.Dir, m.DataSource, m.DataName, m.Init.Format(timeLayout), m.VarName}
	if m.Level != 0 {
		p = append(p, formatNum(m.Level))
	}
	p = append(p, fmt.Sprintf("%03d.nc", m.Fhour))
	return filepath.Join(p...)
}
