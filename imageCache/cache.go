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

package imagecache

import (
	"container/list"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultMaxEntries    = 1024
	DefaultTaskQueueLen  = 256
	DefaultEvictInterval = 30 * time.Second
	DefaultUnusedTTL     = 5 * time.Minute
)

// CachedTile is encoded png as it lies on disk.
type CachedTile struct {
	Data    []byte
	Loc     TileLocation
	ModTime time.Time
	lastUse time.Time
	elem    *list.Element
}

type cacheTask struct {
	loc        TileLocation
	invalidate bool
	ret        chan cacheResult
}

type cacheResult struct {
	tile *CachedTile
	err  error
}

// TileCache serves tile files from memory, entries are refreshed when file
// modification time changes. All state is owned by processor goroutine.
type TileCache struct {
	ctx          context.Context
	logger       *log.Logger
	store        *TileStore
	maxEntries   int
	tasks        chan *cacheTask
	cache        map[TileLocation]*CachedTile
	backlog      *list.List
	wg           sync.WaitGroup
	cacheStatLen atomic.Int64
	statHits     atomic.Int64
	statMisses   atomic.Int64
}

func NewTileCache(ctx context.Context, logger *log.Logger, store *TileStore, maxEntries int) *TileCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if maxEntries <= 0 {
		logger.Printf("Non-positive tile cache size %d, defaulting to %d!", maxEntries, DefaultMaxEntries)
		maxEntries = DefaultMaxEntries
	}
	c := &TileCache{
		ctx:        ctx,
		logger:     logger,
		store:      store,
		maxEntries: maxEntries,
		tasks:      make(chan *cacheTask, DefaultTaskQueueLen),
		cache:      map[TileLocation]*CachedTile{},
		backlog:    list.New(),
	}
	c.wg.Add(1)
	go func() {
		c.processor()
		c.wg.Done()
	}()
	return c
}

func (c *TileCache) WaitExit() {
	c.wg.Wait()
}

func (c *TileCache) processor() {
	evictTimer := time.NewTicker(DefaultEvictInterval)
	defer evictTimer.Stop()
processorLoop:
	for {
		select {
		case <-c.ctx.Done():
			break processorLoop
		case task := <-c.tasks:
			c.processTask(task)
		case <-evictTimer.C:
			c.processEvict(time.Now().Add(-DefaultUnusedTTL))
		}
	}
	c.processEvict(time.Now().Add(time.Hour))
}

func (c *TileCache) processTask(task *cacheTask) {
	if task.invalidate {
		if t, ok := c.cache[task.loc]; ok {
			c.remove(t)
		}
		if task.ret != nil {
			task.ret <- cacheResult{}
		}
		return
	}
	task.ret <- c.processGet(task.loc)
}

func (c *TileCache) processGet(loc TileLocation) cacheResult {
	mt := c.store.ModTime(loc)
	t, ok := c.cache[loc]
	if ok && !mt.IsZero() && t.ModTime.Equal(mt) {
		c.statHits.Add(1)
		t.lastUse = time.Now()
		c.backlog.MoveToFront(t.elem)
		return cacheResult{tile: t}
	}
	c.statMisses.Add(1)
	if ok {
		c.remove(t)
	}
	data, err := os.ReadFile(c.store.Path(loc))
	if err != nil {
		return cacheResult{err: err}
	}
	t = &CachedTile{
		Data:    data,
		Loc:     loc,
		ModTime: mt,
		lastUse: time.Now(),
	}
	t.elem = c.backlog.PushFront(t)
	c.cache[loc] = t
	for c.backlog.Len() > c.maxEntries {
		c.remove(c.backlog.Back().Value.(*CachedTile))
	}
	c.cacheStatLen.Store(int64(len(c.cache)))
	return cacheResult{tile: t}
}

func (c *TileCache) processEvict(before time.Time) {
	for e := c.backlog.Back(); e != nil; {
		t := e.Value.(*CachedTile)
		e = e.Prev()
		if t.lastUse.Before(before) {
			c.remove(t)
		}
	}
}

func (c *TileCache) remove(t *CachedTile) {
	c.backlog.Remove(t.elem)
	delete(c.cache, t.Loc)
	c.cacheStatLen.Store(int64(len(c.cache)))
}

// Get returns tile contents, error is from reading the file.
func (c *TileCache) Get(loc TileLocation) (*CachedTile, error) {
	ret := make(chan cacheResult, 1)
	select {
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	case c.tasks <- &cacheTask{loc: loc, ret: ret}:
	}
	select {
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	case r := <-ret:
		return r.tile, r.err
	}
}

// Invalidate drops tile from memory, it is reread on next Get.
func (c *TileCache) Invalidate(loc TileLocation) {
	select {
	case <-c.ctx.Done():
	case c.tasks <- &cacheTask{loc: loc, invalidate: true}:
	}
}

func (c *TileCache) GetStats() map[string]any {
	return map[string]any{
		"root":                c.store.Root(),
		"task queue capacity": cap(c.tasks),
		"task queue length":   len(c.tasks),
		"cached tiles":        c.cacheStatLen.Load(),
		"hits":                c.statHits.Load(),
		"misses":              c.statMisses.Load(),
	}
}
