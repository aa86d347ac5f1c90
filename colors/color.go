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

package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colors are packed as 0xAARRGGBB and are not alpha-premultiplied.

const (
	Transparent = uint32(0x00000000)
	White       = uint32(0xFFFFFFFF)
	Magenta     = uint32(0xFFFF00FF)
)

func Alpha(c uint32) uint32 {
	return c >> 24
}

func component(c uint32, shift uint) uint32 {
	return (c >> shift) & 0xFF
}

func ARGB(a, r, g, b uint32) uint32 {
	return a<<24 | r<<16 | g<<8 | b
}

// Overlay paints c1 over c0 using the alpha of c1.
func Overlay(c0, c1 uint32) uint32 {
	a1 := Alpha(c1)
	if a1 == 0 {
		return c0
	}
	if a1 == 0xFF {
		return c1
	}
	a0 := Alpha(c0)
	// both weights are scaled by 255
	w1 := a1 * 255
	w0 := a0 * (255 - a1)
	total := w1 + w0
	mix := func(shift uint) uint32 {
		return (component(c1, shift)*w1 + component(c0, shift)*w0) / total
	}
	return ARGB((total+127)/255, mix(16), mix(8), mix(0))
}

// OverlayN paints c1 over c0 n times.
func OverlayN(c0, c1 uint32, n int) uint32 {
	for i := 0; i < n; i++ {
		c0 = Overlay(c0, c1)
	}
	return c0
}

// MultiplySolid multiplies color channels of c by m, alpha of c is kept.
func MultiplySolid(c, m uint32) uint32 {
	mul := func(shift uint) uint32 {
		return component(c, shift) * component(m, shift) / 255
	}
	return ARGB(Alpha(c), mul(16), mul(8), mul(0))
}

// Shade shifts brightness of every color channel by delta.
func Shade(c uint32, delta int) uint32 {
	if delta == 0 {
		return c
	}
	sh := func(shift uint) uint32 {
		v := int(component(c, shift)) + delta
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint32(v)
	}
	return ARGB(Alpha(c), sh(16), sh(8), sh(0))
}

func ToNRGBA(c uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(component(c, 16)),
		G: uint8(component(c, 8)),
		B: uint8(component(c, 0)),
		A: uint8(Alpha(c)),
	}
}

func FromColor(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ARGB(uint32(n.A), uint32(n.R), uint32(n.G), uint32(n.B))
}

// ParseColor accepts 0xAARRGGBB (or decimal) and #RRGGBB, the latter is opaque.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return 0, err
		}
		r, g, b := c.RGB255()
		return ARGB(0xFF, uint32(r), uint32(g), uint32(b)), nil
	}
	v, err := parseNumber(s, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// parseNumber reads hex with 0x prefix or decimal, leading zeroes are not octal.
func parseNumber(s string, bits int) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

func HexColor(c uint32) string {
	return fmt.Sprintf("0x%08X", c)
}
