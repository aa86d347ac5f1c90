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
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"sort"
)

var ErrIO = errors.New("io error")

//go:embed block-colors.txt
var defaultBlockColors []byte

//go:embed biome-colors.txt
var defaultBiomeColors []byte

// Defaults collects ids that had no entry in the color tables.
// Every render worker owns one, they get merged after the workers finish.
type Defaults struct {
	BlockIDs          map[int]struct{}
	BlockIDDataValues map[int]struct{}
	BiomeIDs          map[int]struct{}
}

func NewDefaults() *Defaults {
	return &Defaults{
		BlockIDs:          map[int]struct{}{},
		BlockIDDataValues: map[int]struct{}{},
		BiomeIDs:          map[int]struct{}{},
	}
}

func (d *Defaults) Merge(o *Defaults) {
	if o == nil {
		return
	}
	for k := range o.BlockIDs {
		d.BlockIDs[k] = struct{}{}
	}
	for k := range o.BlockIDDataValues {
		d.BlockIDDataValues[k] = struct{}{}
	}
	for k := range o.BiomeIDs {
		d.BiomeIDs[k] = struct{}{}
	}
}

func (d *Defaults) Empty() bool {
	return len(d.BlockIDs) == 0 && len(d.BlockIDDataValues) == 0 && len(d.BiomeIDs) == 0
}

func sortedKeys(m map[int]struct{}) []int {
	ret := make([]int, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Ints(ret)
	return ret
}

func (d *Defaults) SortedBlockIDs() []int          { return sortedKeys(d.BlockIDs) }
func (d *Defaults) SortedBlockIDDataValues() []int { return sortedKeys(d.BlockIDDataValues) }
func (d *Defaults) SortedBiomeIDs() []int          { return sortedKeys(d.BiomeIDs) }

// BlockIDString formats id or id|datum<<16 the way block tables key them.
func BlockIDString(v int) string {
	id := v & 0xFFFF
	datum := v >> 16
	if datum != 0 {
		return fmt.Sprintf("0x%04X:%d", id, datum)
	}
	return fmt.Sprintf("0x%04X", id)
}

// Palette joins block and biome tables. It is read only after construction
// and safe to share between goroutines.
type Palette struct {
	Blocks *BlockColorTable
	Biomes *BiomeColorTable
}

// LoadPalette loads tables from given paths, empty path means embedded table.
func LoadPalette(blockPath, biomePath string, logger *log.Logger) (*Palette, error) {
	var (
		p   Palette
		err error
	)
	if blockPath == "" {
		p.Blocks, err = LoadBlockColors(bytes.NewReader(defaultBlockColors), "(default block colors)", logger)
	} else {
		p.Blocks, err = LoadBlockColorsFile(blockPath, logger)
	}
	if err != nil {
		return nil, err
	}
	if biomePath == "" {
		p.Biomes, err = LoadBiomeColors(bytes.NewReader(defaultBiomeColors), "(default biome colors)", logger)
	} else {
		p.Biomes, err = LoadBiomeColorsFile(biomePath, logger)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Resolve returns final color of block with datum standing in biome.
// Missing table entries are substituted and recorded into d (if not nil).
func (p *Palette) Resolve(blockID uint16, datum uint8, biomeID int, d *Defaults) uint32 {
	b := p.Blocks.Get(blockID)
	c, inf, sub := b.Color(datum)
	if d != nil {
		if !sub && datum != 0 {
			d.BlockIDDataValues[int(blockID)|int(datum)<<16] = struct{}{}
		}
		if b.IsDefault {
			d.BlockIDs[int(blockID)] = struct{}{}
		}
	}
	biome := p.Biomes.Get(biomeID)
	if biome.IsDefault && d != nil {
		d.BiomeIDs[biomeID] = struct{}{}
	}
	return MultiplySolid(c, biome.Multiplier(inf))
}
