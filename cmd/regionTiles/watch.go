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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage"
	imagecache "github.com/maxsupermanhd/RegionTiles/imageCache"
	"github.com/maxsupermanhd/RegionTiles/render"
	"github.com/spf13/cobra"
)

// liveMap is region map shared between watcher and http handlers.
type liveMap struct {
	mu sync.RWMutex
	rm *chunkStorage.RegionMap
}

func (l *liveMap) Snapshot() chunkStorage.RegionMap {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ret := *l.rm
	ret.Regions = make([]*chunkStorage.Region, len(l.rm.Regions))
	for i, r := range l.rm.Regions {
		c := *r
		ret.Regions[i] = &c
	}
	return ret
}

// Upsert returns copy of region record for coordinates, adding it if it is new.
func (l *liveMap) Upsert(x, z int, fpath string) chunkStorage.Region {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.rm.Find(x, z); r != nil {
		return *r
	}
	r := &chunkStorage.Region{X: x, Z: z, RegionFile: fpath}
	l.rm = chunkStorage.NewRegionMap(append(l.rm.Regions, r))
	return *r
}

func (l *liveMap) SetImage(x, z int, fpath string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.rm.Find(x, z); r != nil {
		r.ImageFile = fpath
	}
}

func (l *liveMap) Remove(x, z int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	regions := []*chunkStorage.Region{}
	for _, r := range l.rm.Regions {
		if r.X != x || r.Z != z {
			regions = append(regions, r)
		}
	}
	l.rm = chunkStorage.NewRegionMap(regions)
}

type regionWatcher struct {
	live     *liveMap
	worker   *render.Worker
	store    *imagecache.TileStore
	cache    *imagecache.TileCache
	rect     *chunkStorage.Rect
	delay    time.Duration
	scales   []int
	pending  map[string]time.Time
	rendered func(*chunkStorage.Region)
}

func newRegionWatcher(r *render.Renderer, live *liveMap, cfg *RegionTilesConfig, cache *imagecache.TileCache) (*regionWatcher, error) {
	rect, err := cfg.regionRect()
	if err != nil {
		return nil, err
	}
	return &regionWatcher{
		live:    live,
		worker:  r.NewWorker(),
		store:   imagecache.NewTileStore(cfg.Output, log.Default()),
		cache:   cache,
		rect:    rect,
		delay:   time.Duration(cfg.WatchDelay) * time.Millisecond,
		scales:  r.Settings().Scales,
		pending: map[string]time.Time{},
	}, nil
}

func (w *regionWatcher) event(ev fsnotify.Event) {
	var x, z int
	if !chunkStorage.ExtractRegionPath(filepath.Base(ev.Name), &x, &z) {
		return
	}
	if w.rect != nil && !w.rect.Contains(x, z) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if _, err := os.Stat(ev.Name); err == nil {
			w.pending[ev.Name] = time.Now()
			return
		}
		delete(w.pending, ev.Name)
		log.Printf("Region %d:%d removed, dropping its tiles", x, z)
		w.live.Remove(x, z)
		if err := w.store.Remove(x, z, append([]int{1}, w.scales...)); err != nil {
			log.Printf("Failed to remove tiles of %d:%d: %v", x, z, err)
		}
		w.invalidate(x, z)
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.pending[ev.Name] = time.Now()
	}
}

func (w *regionWatcher) invalidate(x, z int) {
	if w.cache == nil {
		return
	}
	w.cache.Invalidate(imagecache.TileLocation{X: x, Z: z, Scale: 1})
	for _, sc := range w.scales {
		w.cache.Invalidate(imagecache.TileLocation{X: x, Z: z, Scale: sc})
	}
}

// flush renders regions that were quiet for the watch delay.
func (w *regionWatcher) flush(now time.Time) {
	for fpath, t := range w.pending {
		if now.Sub(t) < w.delay {
			continue
		}
		delete(w.pending, fpath)
		var x, z int
		chunkStorage.ExtractRegionPath(filepath.Base(fpath), &x, &z)
		region := w.live.Upsert(x, z, fpath)
		written, err := w.worker.RenderTile(&region, w.store, false)
		if err != nil {
			log.Printf("Failed to render region %s: %v", &region, err)
			continue
		}
		w.live.SetImage(x, z, region.ImageFile)
		if written {
			log.Printf("Region %s rendered after change", &region)
			w.invalidate(x, z)
			if w.rendered != nil {
				w.rendered(&region)
			}
		}
	}
}

func (w *regionWatcher) run(ctx context.Context, dirs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return err
		}
		log.Printf("Watching %s for region changes", d)
	}
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.event(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("watcher error:", err)
		case now := <-tick.C:
			w.flush(now)
		}
	}
}

// watchDirs turns inputs into directories to watch.
func watchDirs(inputs []string) []string {
	seen := map[string]bool{}
	ret := []string{}
	for _, in := range inputs {
		d := in
		if info, err := os.Stat(in); err == nil && !info.IsDir() {
			d = filepath.Dir(in)
		}
		if !seen[d] {
			seen[d] = true
			ret = append(ret, d)
		}
	}
	return ret
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newWatchCmd(cfg *RegionTilesConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <region dir or r.X.Z.mca>...",
		Short: "Render once and keep tiles up to date while region files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, rm, err := runRender(cfg, args, cmd.ErrOrStderr())
			if err != nil && rm == nil {
				return err
			}
			if err != nil {
				log.Printf("Initial render finished with errors: %v", err)
			}
			w, err := newRegionWatcher(r, &liveMap{rm: rm}, cfg, nil)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			return w.run(ctx, watchDirs(args))
		},
	}
}
