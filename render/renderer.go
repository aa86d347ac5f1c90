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

package render

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage/regionFile"
	"github.com/maxsupermanhd/RegionTiles/colors"
	imagecache "github.com/maxsupermanhd/RegionTiles/imageCache"
)

// Renderer holds everything workers share, it is never modified after construction.
type Renderer struct {
	settings Settings
	palette  *colors.Palette
	logger   *log.Logger
	air      uint32
	air16    uint32
}

// NewRenderer loads palette from settings paths when palette is nil.
func NewRenderer(settings Settings, palette *colors.Palette, logger *log.Logger) (*Renderer, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if palette == nil {
		var err error
		palette, err = colors.LoadPalette(settings.ColorMapFile, settings.BiomeMapFile, logger)
		if err != nil {
			return nil, err
		}
	}
	air := palette.Resolve(0, 0, 0, nil)
	return &Renderer{
		settings: settings,
		palette:  palette,
		logger:   logger,
		air:      air,
		air16:    colors.OverlayN(colors.Transparent, air, ChunkSide),
	}, nil
}

func (r *Renderer) Settings() *Settings {
	return &r.settings
}

func (r *Renderer) Logger() *log.Logger {
	return r.logger
}

// Worker owns buffers for rendering one region at a time.
type Worker struct {
	r        *Renderer
	sections *regionFile.SectionBuffers
	colors   []uint32
	heights  []int16

	Timer       Timer
	Defaults    *colors.Defaults
	ChunkErrors int
}

func (r *Renderer) NewWorker() *Worker {
	return &Worker{
		r:        r,
		sections: &regionFile.SectionBuffers{},
		colors:   make([]uint32, TileSize*TileSize),
		heights:  make([]int16, TileSize*TileSize),
		Defaults: colors.NewDefaults(),
	}
}

// RenderRegion composites and shades every chunk of a region file.
// Chunks that fail to decode are logged and left transparent.
func (w *Worker) RenderRegion(fpath string) (*image.NRGBA, error) {
	start := time.Now()
	rf, err := regionFile.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer rf.Close()
	w.Timer.RegionLoading += time.Since(start)

	for i := range w.colors {
		w.colors[i] = 0
		w.heights[i] = 0
	}
	for cz := 0; cz < RegionChunks; cz++ {
		for cx := 0; cx < RegionChunks; cx++ {
			start = time.Now()
			level, err := rf.LoadChunk(cx, cz)
			if err != nil {
				w.r.logger.Printf("Failed to load chunk %d:%d of %s: %v", cx, cz, fpath, err)
				w.ChunkErrors++
				continue
			}
			if level == nil {
				continue
			}
			n, err := regionFile.LoadChunkData(level, w.sections)
			if err != nil {
				w.r.logger.Printf("Failed to unpack chunk %d:%d of %s: %v", cx, cz, fpath, err)
				w.ChunkErrors++
				continue
			}
			w.Timer.RegionLoading += time.Since(start)
			w.Timer.SectionCount += n

			start = time.Now()
			w.compositeChunk(cx, cz)
			w.Timer.PreRendering += time.Since(start)
		}
	}

	start = time.Now()
	ShadeRegion(w.colors, w.heights, &w.r.settings)
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	for i, c := range w.colors {
		p := colors.ToNRGBA(c)
		img.Pix[i*4+0] = p.R
		img.Pix[i*4+1] = p.G
		img.Pix[i*4+2] = p.B
		img.Pix[i*4+3] = p.A
	}
	w.Timer.PostProcessing += time.Since(start)
	return img, nil
}

// Height returns column height recorded by last RenderRegion.
func (w *Worker) Height(x, z int) int {
	return int(w.heights[z*TileSize+x])
}

// RenderTile writes full-size tile of a region and its derivatives when they are
// missing or older than the region file. Returns whether anything was written.
func (w *Worker) RenderTile(region *chunkStorage.Region, store *imagecache.TileStore, force bool) (bool, error) {
	info, err := os.Stat(region.RegionFile)
	if err != nil {
		return false, fmt.Errorf("%w: %v", regionFile.ErrIO, err)
	}
	srcTime := info.ModTime()
	full := imagecache.TileLocation{X: region.X, Z: region.Z, Scale: 1}
	region.ImageFile = store.Path(full)

	fullStale := store.NeedsRender(full, srcTime, force)
	staleScales := []int{}
	for _, sc := range w.r.settings.Scales {
		if sc == 1 {
			continue
		}
		if store.NeedsRender(imagecache.TileLocation{X: region.X, Z: region.Z, Scale: sc}, srcTime, force) {
			staleScales = append(staleScales, sc)
		}
	}
	if !fullStale && len(staleScales) == 0 {
		if w.r.settings.Debug {
			w.r.logger.Printf("Region %4d, %4d image already up-to-date", region.X, region.Z)
		}
		return false, nil
	}

	var img *image.NRGBA
	if !fullStale {
		img, err = store.Load(full)
		if err != nil {
			w.r.logger.Printf("Failed to read back %s, rendering again: %v", region.ImageFile, err)
			fullStale = true
		}
	}
	if fullStale {
		if w.r.settings.Debug {
			w.r.logger.Printf("Region %4d, %4d generating %s", region.X, region.Z, region.ImageFile)
		}
		img, err = w.RenderRegion(region.RegionFile)
		if err != nil {
			return false, err
		}
		w.Timer.RegionCount++
		start := time.Now()
		n, err := store.Save(img, full)
		w.Timer.ImageSaving += time.Since(start)
		if err != nil {
			return false, fmt.Errorf("%w: writing %s: %v", regionFile.ErrIO, region.ImageFile, err)
		}
		w.Timer.BytesWritten += n
	}

	var errs *multierror.Error
	for _, sc := range staleScales {
		loc := imagecache.TileLocation{X: region.X, Z: region.Z, Scale: sc}
		if w.r.settings.Debug {
			w.r.logger.Printf("Region %4d, %4d generating %s", region.X, region.Z, store.Path(loc))
		}
		start := time.Now()
		n, err := store.Save(ScaleTile(img, sc), loc)
		w.Timer.ImageSaving += time.Since(start)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: writing %s: %v", regionFile.ErrIO, store.Path(loc), err))
			continue
		}
		w.Timer.BytesWritten += n
	}
	return true, errs.ErrorOrNil()
}
