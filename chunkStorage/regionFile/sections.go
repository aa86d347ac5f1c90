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

package regionFile

import (
	"fmt"

	"github.com/Tnze/go-mc/nbt"
)

const (
	MaxSections   = 16
	SectionSide   = 16
	ColumnArea    = SectionSide * SectionSide
	SectionVolume = ColumnArea * SectionSide

	// BiomeUnknown fills biome ids of chunks saved without them
	BiomeUnknown = 0xFF
)

// SectionBuffers hold one decoded chunk. They are meant to be reused
// between chunks, Used decides which sections hold data of the current one.
type SectionBuffers struct {
	BlockIDs  [MaxSections][SectionVolume]uint16
	BlockData [MaxSections][SectionVolume]uint8
	Used      [MaxSections]bool
	Biomes    [ColumnArea]uint8
}

// Index of block inside of a section.
func Index(x, y, z int) int {
	return y*ColumnArea + z*SectionSide + x
}

// Nybble returns 4 bits at index i, even indexes live in low bits.
func Nybble(arr []byte, i int) uint8 {
	if i%2 == 0 {
		return arr[i/2] & 0x0F
	}
	return (arr[i/2] >> 4) & 0x0F
}

// SetNybble is the inverse of Nybble.
func SetNybble(arr []byte, i int, v uint8) {
	if i%2 == 0 {
		arr[i/2] = arr[i/2]&0xF0 | v&0x0F
	} else {
		arr[i/2] = arr[i/2]&0x0F | (v&0x0F)<<4
	}
}

// LoadChunkData unpacks level into buf. Sections that are not present are only
// marked unused, their arrays keep whatever previous chunk left there.
func LoadChunkData(level *Level, buf *SectionBuffers) (sections int, err error) {
	for i := range buf.Used {
		buf.Used[i] = false
	}
	loadBiomes(level.Biomes, &buf.Biomes)
	for _, s := range level.Sections {
		if s.Y < 0 || int(s.Y) >= MaxSections {
			continue
		}
		if len(s.Blocks) != SectionVolume {
			return sections, fmt.Errorf("%w: section %d has %d blocks", ErrFormat, s.Y, len(s.Blocks))
		}
		if len(s.Data) != SectionVolume/2 {
			return sections, fmt.Errorf("%w: section %d has %d bytes of data", ErrFormat, s.Y, len(s.Data))
		}
		hasAdd := len(s.Add) != 0
		if hasAdd && len(s.Add) != SectionVolume/2 {
			return sections, fmt.Errorf("%w: section %d has %d bytes of add", ErrFormat, s.Y, len(s.Add))
		}
		ids := &buf.BlockIDs[s.Y]
		data := &buf.BlockData[s.Y]
		for i := 0; i < SectionVolume; i++ {
			id := uint16(s.Blocks[i])
			if hasAdd {
				id |= uint16(Nybble(s.Add, i)) << 8
			}
			ids[i] = id
			data[i] = Nybble(s.Data, i)
		}
		if !buf.Used[s.Y] {
			sections++
		}
		buf.Used[s.Y] = true
	}
	return sections, nil
}

// loadBiomes accepts only the 2D column map, 3D biome volumes fill unknown.
func loadBiomes(raw nbt.RawMessage, out *[ColumnArea]uint8) {
	switch raw.Type {
	case nbt.TagByteArray:
		var b []byte
		if err := raw.Unmarshal(&b); err == nil && len(b) == ColumnArea {
			copy(out[:], b)
			return
		}
	case nbt.TagIntArray:
		var b []int32
		if err := raw.Unmarshal(&b); err == nil && len(b) == ColumnArea {
			for i := range out {
				out[i] = uint8(b[i])
			}
			return
		}
	}
	for i := range out {
		out[i] = BiomeUnknown
	}
}
