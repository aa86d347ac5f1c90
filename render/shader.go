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
	"math"

	"github.com/maxsupermanhd/RegionTiles/colors"
)

// ShadeRegion brightens or darkens every painted pixel by its altitude and
// height gradient, pix and heights are TileSize*TileSize row-major.
func ShadeRegion(pix []uint32, heights []int16, s *Settings) {
	const width, depth = TileSize, TileSize
	balance := s.ShadeBalanceFactor
	ref := float64(s.ShadingReferenceAltitude)
	idx := 0
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x, idx = x+1, idx+1 {
			if pix[idx] == 0 {
				continue
			}
			h := float64(heights[idx])
			var dyx, dyz float64
			switch x {
			case 0:
				dyx = (float64(heights[idx+1]) - h) / 2
			case width - 1:
				dyx = (h - float64(heights[idx-1])) / 2
			default:
				dyx = float64(heights[idx+1]) - float64(heights[idx-1])
			}
			switch z {
			case 0:
				dyz = (float64(heights[idx+width]) - h) / 2
			case depth - 1:
				dyz = (h - float64(heights[idx-width])) / 2
			default:
				dyz = float64(heights[idx+width]) - float64(heights[idx-width])
			}
			shade := (dyx+dyz)*(1-balance)/512 + (h-ref)*balance/255
			delta := int(float64(s.AltitudeShadingFactor) * math.Tanh(shade*60))
			pix[idx] = colors.Shade(pix[idx], delta)
		}
	}
}
