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

package ncio

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/metdig/stda"
	"github.com/metdig/stda/cache"
	"github.com/metdig/stda/rain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FileSource reads model fields from files in the local cache. Each file
// holds one field in the layout written by Write. FileSource implements
// rain.Source.
type FileSource struct {
	Resolver *cache.Resolver
	Registry stda.Registry

	// MaxRetries is the number of times a failed read is retried.
	MaxRetries uint64

	Log logrus.FieldLogger
}

// NewFileSource returns a FileSource for the cache directory dir.
func NewFileSource(fs afero.Fs, dir string, reg stda.Registry) *FileSource {
	return &FileSource{
		Resolver:   &cache.Resolver{Fs: fs, Dir: dir},
		Registry:   reg,
		MaxRetries: 3,
		Log:        logrus.StandardLogger(),
	}
}

// ModelGrid implements rain.Source. It returns an error wrapping
// rain.ErrNotFound if the file does not exist.
func (s *FileSource) ModelGrid(ctx context.Context, req rain.Request) (*stda.Grid, error) {
	fs := s.Resolver.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	path := s.Resolver.ModelPath(req)
	if ok, err := afero.Exists(fs, path); err != nil {
		return nil, fmt.Errorf("ncio: %v", err)
	} else if !ok {
		return nil, fmt.Errorf("ncio: %s: %w", path, rain.ErrNotFound)
	}

	var g *stda.Grid
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.MaxRetries), ctx)
	err := backoff.RetryNotify(
		func() error {
			f, err := fs.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			g, err = Read(f, s.Registry)
			return err
		},
		b,
		func(err error, d time.Duration) {
			s.log().WithField("path", path).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ncio: reading %s: %v", path, err)
	}
	return g, nil
}

func (s *FileSource) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// WriteModelGrid writes g to the cache file for req, creating
// directories as needed.
func (s *FileSource) WriteModelGrid(req rain.Request, g *stda.Grid) error {
	fs := s.Resolver.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	path := s.Resolver.ModelPath(req)
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ncio: %v", err)
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("ncio: %v", err)
	}
	if err := Write(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
