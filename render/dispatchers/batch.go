/*
	RegionTiles, top-down map tile renderer for block game worlds
	Copyright (C) 2022 Maxim Zhuchkov

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.

	Contact me via mail: q3.max.2011@yandex.ru or Discord: MaX#6717
*/

package dispatchers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage"
	"github.com/maxsupermanhd/RegionTiles/colors"
	imagecache "github.com/maxsupermanhd/RegionTiles/imageCache"
	"github.com/maxsupermanhd/RegionTiles/render"
)

// Progress is called from worker goroutines after every region.
type Progress func(region *chunkStorage.Region, rendered bool, err error)

type BatchStats struct {
	ID          string
	Workers     int
	Regions     int
	Rendered    int
	Skipped     int
	Failed      int
	ChunkErrors int
	Elapsed     time.Duration
	Timer       render.Timer
	Defaults    *colors.Defaults
}

// Partition splits n items into contiguous [start, end) ranges, last one takes the remainder.
func Partition(n, workers int) [][2]int {
	if n <= 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	step := n / workers
	ret := make([][2]int, workers)
	for i := range ret {
		ret[i] = [2]int{step * i, step * (i + 1)}
	}
	ret[workers-1][1] = n
	return ret
}

type workerResult struct {
	worker   *render.Worker
	rendered int
	skipped  int
	errs     []error
}

func renderOne(w *render.Worker, region *chunkStorage.Region, store *imagecache.TileStore, force bool) (rendered bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while rendering: %v", p)
		}
	}()
	return w.RenderTile(region, store, force)
}

// RenderAll renders every region of rm into outDir with a fixed set of workers,
// each owning one contiguous part of the region list. Failed regions do not stop
// their worker, all failures are returned together once every worker is done.
func RenderAll(r *render.Renderer, rm *chunkStorage.RegionMap, outDir string, force bool, workers int, progress Progress) (*BatchStats, error) {
	start := time.Now()
	logger := r.Logger()
	stats := &BatchStats{
		ID:       uuid.NewString(),
		Regions:  len(rm.Regions),
		Defaults: colors.NewDefaults(),
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return stats, err
	}
	if len(rm.Regions) == 0 {
		logger.Printf("Batch %s: no regions found!", stats.ID)
		return stats, nil
	}
	store := imagecache.NewTileStore(outDir, logger)
	parts := Partition(len(rm.Regions), workers)
	stats.Workers = len(parts)
	if r.Settings().Debug {
		logger.Printf("Batch %s: %d regions across %d workers", stats.ID, len(rm.Regions), len(parts))
	}

	results := make([]workerResult, len(parts))
	var wg sync.WaitGroup
	wg.Add(len(parts))
	for i := range parts {
		go func(res *workerResult, part [2]int) {
			defer wg.Done()
			res.worker = r.NewWorker()
			for _, region := range rm.Regions[part[0]:part[1]] {
				rendered, err := renderOne(res.worker, region, store, force)
				if err != nil {
					logger.Printf("Failed to render region %s (%s): %v", region, region.RegionFile, err)
					res.errs = append(res.errs, fmt.Errorf("region %s: %w", region, err))
				} else if rendered {
					res.rendered++
				} else {
					res.skipped++
				}
				if progress != nil {
					progress(region, rendered, err)
				}
			}
		}(&results[i], parts[i])
	}
	wg.Wait()

	var errs *multierror.Error
	for i := range results {
		res := &results[i]
		stats.Timer.Merge(&res.worker.Timer)
		stats.Defaults.Merge(res.worker.Defaults)
		stats.ChunkErrors += res.worker.ChunkErrors
		stats.Rendered += res.rendered
		stats.Skipped += res.skipped
		stats.Failed += len(res.errs)
		errs = multierror.Append(errs, res.errs...)
	}
	stats.Elapsed = time.Since(start)
	stats.Timer.Total += stats.Elapsed
	return stats, errs.ErrorOrNil()
}
