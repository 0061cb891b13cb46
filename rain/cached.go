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

package rain

import (
	"context"

	"github.com/ctessum/requestcache"
	"github.com/metdig/stda"
	"github.com/metdig/stda/internal/hash"
)

// CachedSource wraps a Source so that concurrent requests for the same
// field are only fetched once and recently used fields are kept in
// memory. Callers receive their own copy of each grid.
type CachedSource struct {
	cache *requestcache.Cache
}

// NewCachedSource returns a CachedSource that fetches from src using up to
// workers concurrent requests and keeps up to size fields in memory.
func NewCachedSource(src Source, workers, size int) *CachedSource {
	return &CachedSource{
		cache: requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return src.ModelGrid(ctx, request.(Request))
		}, workers, requestcache.Deduplicate(), requestcache.Memory(size)),
	}
}

// ModelGrid implements Source.
func (c *CachedSource) ModelGrid(ctx context.Context, req Request) (*stda.Grid, error) {
	r := c.cache.NewRequest(ctx, req, hash.Hash(req))
	result, err := r.Result()
	if err != nil {
		return nil, err
	}
	return result.(*stda.Grid).Copy(), nil
}
