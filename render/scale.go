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
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// ScaleTile downsamples full-size tile to TileSize/scale pixels.
func ScaleTile(img image.Image, scale int) *image.NRGBA {
	size := uint(TileSize / scale)
	return imaging.Clone(resize.Resize(size, size, img, resize.Bilinear))
}
