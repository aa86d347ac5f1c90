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
	"github.com/maxsupermanhd/RegionTiles/chunkStorage/regionFile"
	"github.com/maxsupermanhd/RegionTiles/colors"
)

const (
	ChunkSide    = 16
	RegionChunks = 32
	TileSize     = ChunkSide * RegionChunks
)

// compositeChunk paints chunk cx:cz from worker section buffers into region buffers,
// sections are stacked bottom up with every sample painted over what is below.
func (w *Worker) compositeChunk(cx, cz int) {
	s := &w.r.settings
	sec := w.sections
	for z := 0; z < ChunkSide; z++ {
		for x := 0; x < ChunkSide; x++ {
			pixel := colors.Transparent
			height := int16(0)
			biome := int(sec.Biomes[z*ChunkSide+x])
			for si := 0; si < regionFile.MaxSections; si++ {
				absY := si * ChunkSide
				if absY >= s.MaxHeight || absY+ChunkSide <= s.MinHeight {
					continue
				}
				if !sec.Used[si] {
					if s.MinHeight <= absY && s.MaxHeight >= absY+ChunkSide {
						pixel = colors.Overlay(pixel, w.r.air16)
					} else {
						lo := max(absY, s.MinHeight)
						hi := min(absY+ChunkSide, s.MaxHeight)
						pixel = colors.OverlayN(pixel, w.r.air, hi-lo)
					}
					continue
				}
				ids := &sec.BlockIDs[si]
				data := &sec.BlockData[si]
				for y, idx := 0, z*ChunkSide+x; y < ChunkSide; y, idx = y+1, idx+ChunkSide*ChunkSide {
					ay := absY + y
					if ay < s.MinHeight || ay >= s.MaxHeight {
						continue
					}
					c := w.r.palette.Resolve(ids[idx], data[idx], biome, w.Defaults)
					pixel = colors.Overlay(pixel, c)
					if colors.Alpha(c) >= s.ShadeOpacityCutoff {
						height = int16(ay)
					}
				}
			}
			d := TileSize*(cz*ChunkSide+z) + ChunkSide*cx + x
			w.colors[d] = pixel
			w.heights[d] = height
		}
	}
}
