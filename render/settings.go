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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrSettings = errors.New("invalid render settings")

// Settings are shared read-only by every worker.
type Settings struct {
	ColorMapFile string
	BiomeMapFile string
	Debug        bool

	// MinHeight is inclusive, MaxHeight is exclusive
	MinHeight int
	MaxHeight int

	ShadingReferenceAltitude int
	AltitudeShadingFactor    int
	// accepted and validated, tanh already bounds the shift so the shader ignores them
	MinAltitudeShading int
	MaxAltitudeShading int
	// 0 shades by slope only, 1 by altitude only
	ShadeBalanceFactor float64
	// samples less opaque than this do not move column height
	ShadeOpacityCutoff uint32

	Title  string
	Scales []int
}

func DefaultSettings() Settings {
	return Settings{
		MinHeight:                math.MinInt32,
		MaxHeight:                math.MaxInt32,
		ShadingReferenceAltitude: 64,
		AltitudeShadingFactor:    36,
		MinAltitudeShading:       -20,
		MaxAltitudeShading:       20,
		ShadeBalanceFactor:       1,
		ShadeOpacityCutoff:       0x20,
		Title:                    "Regions",
		Scales:                   []int{1},
	}
}

func (s *Settings) Validate() error {
	if s.MinHeight >= s.MaxHeight {
		return fmt.Errorf("%w: min height %d is not below max height %d", ErrSettings, s.MinHeight, s.MaxHeight)
	}
	if s.MinAltitudeShading > s.MaxAltitudeShading {
		return fmt.Errorf("%w: min altitude shading %d is above max %d", ErrSettings, s.MinAltitudeShading, s.MaxAltitudeShading)
	}
	if s.ShadeBalanceFactor < 0 || s.ShadeBalanceFactor > 1 {
		return fmt.Errorf("%w: shade balance factor %v is outside of 0..1", ErrSettings, s.ShadeBalanceFactor)
	}
	if s.ShadeOpacityCutoff > 0xFF {
		return fmt.Errorf("%w: opacity cutoff %d is above 255", ErrSettings, s.ShadeOpacityCutoff)
	}
	if len(s.Scales) == 0 {
		return fmt.Errorf("%w: no output scales", ErrSettings)
	}
	for _, sc := range s.Scales {
		if err := checkScale(sc); err != nil {
			return err
		}
	}
	return nil
}

func checkScale(sc int) error {
	if sc < 1 || sc > TileSize || sc&(sc-1) != 0 {
		return fmt.Errorf("%w: scale 1:%d is not a power of two up to %d", ErrSettings, sc, TileSize)
	}
	return nil
}

// ParseScales reads comma separated list of "1" or "1:N", duplicates are dropped.
func ParseScales(s string) ([]int, error) {
	ret := []int{}
	seen := map[int]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d := p
		if strings.Contains(p, ":") {
			n, den, _ := strings.Cut(p, ":")
			if n != "1" {
				return nil, fmt.Errorf("%w: scale %q must be 1:N", ErrSettings, p)
			}
			d = den
		} else if p != "1" {
			return nil, fmt.Errorf("%w: scale %q must be 1:N", ErrSettings, p)
		}
		v, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("%w: scale %q: %v", ErrSettings, p, err)
		}
		if err := checkScale(v); err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			ret = append(ret, v)
		}
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: empty scale list %q", ErrSettings, s)
	}
	return ret, nil
}
