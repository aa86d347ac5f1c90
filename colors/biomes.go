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
	"io"
	"log"
	"os"
	"strings"
)

const BiomeIDCount = 256

// BiomeUnknown is stored for columns of chunks that carry no biome array.
const BiomeUnknown = 0xFF

type Biome struct {
	GrassColor   uint32
	FoliageColor uint32
	WaterColor   uint32
	IsDefault    bool
}

func (b *Biome) Multiplier(inf Influence) uint32 {
	switch inf {
	case InfluenceGrass:
		return b.GrassColor
	case InfluenceFoliage:
		return b.FoliageColor
	case InfluenceWater:
		return b.WaterColor
	default:
		return White
	}
}

type BiomeColorTable struct {
	biomes       [BiomeIDCount]*Biome
	defaultBiome Biome
}

func NewBiomeColorTable() *BiomeColorTable {
	return &BiomeColorTable{
		defaultBiome: Biome{
			GrassColor:   Magenta,
			FoliageColor: Magenta,
			WaterColor:   Magenta,
			IsDefault:    true,
		},
	}
}

// Get never returns nil, ids outside of the table fall back to the default biome.
func (t *BiomeColorTable) Get(id int) *Biome {
	if id >= 0 && id < BiomeIDCount && t.biomes[id] != nil {
		return t.biomes[id]
	}
	return &t.defaultBiome
}

func (t *BiomeColorTable) Len() int {
	n := 0
	for _, b := range t.biomes {
		if b != nil {
			n++
		}
	}
	return n
}

// LoadBiomeColors reads rows of id, grass, foliage and water colors separated by tabs.
// Row with id "default" replaces the fallback biome.
func LoadBiomeColors(r io.Reader, name string, logger *log.Logger) (*BiomeColorTable, error) {
	logger = orDiscard(logger)
	t := NewBiomeColorTable()
	err := scanRows(r, func(lineNum int, fields []string) {
		if len(fields) < 4 {
			logger.Printf("Invalid biome map line at %s:%d: too few fields", name, lineNum)
			return
		}
		var c [3]uint32
		for i := range c {
			v, err := ParseColor(fields[i+1])
			if err != nil {
				logger.Printf("Invalid biome map line at %s:%d: bad color %q: %v", name, lineNum, fields[i+1], err)
				return
			}
			c[i] = v
		}
		key := strings.TrimSpace(fields[0])
		if key == "default" {
			t.defaultBiome = Biome{GrassColor: c[0], FoliageColor: c[1], WaterColor: c[2], IsDefault: true}
			return
		}
		id, err := parseNumber(key, 8)
		if err != nil {
			logger.Printf("Invalid biome map line at %s:%d: bad biome id %q", name, lineNum, key)
			return
		}
		t.biomes[id] = &Biome{GrassColor: c[0], FoliageColor: c[1], WaterColor: c[2]}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func LoadBiomeColorsFile(fpath string, logger *log.Logger) (*BiomeColorTable, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return LoadBiomeColors(f, fpath, logger)
}
