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

// Package regiontest writes small region files for tests.
package regiontest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save/region"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

type Section struct {
	Y      int8   `nbt:"Y"`
	Blocks []byte `nbt:"Blocks"`
	Data   []byte `nbt:"Data"`
	Add    []byte `nbt:"Add"`
}

func NewSection(y int8) *Section {
	return &Section{
		Y:      y,
		Blocks: make([]byte, 4096),
		Data:   make([]byte, 2048),
		Add:    make([]byte, 2048),
	}
}

// Set places block at section-local coordinates.
func (s *Section) Set(x, y, z int, id uint16, datum uint8) {
	i := y*256 + z*16 + x
	s.Blocks[i] = byte(id)
	setNybble(s.Data, i, datum)
	setNybble(s.Add, i, uint8(id>>8))
}

// Fill sets every block of the section.
func (s *Section) Fill(id uint16, datum uint8) {
	for i := 0; i < 4096; i++ {
		s.Set(i%16, i/256, (i/16)%16, id, datum)
	}
}

func setNybble(arr []byte, i int, v uint8) {
	if i%2 == 0 {
		arr[i/2] = arr[i/2]&0xF0 | v&0x0F
	} else {
		arr[i/2] = arr[i/2]&0x0F | (v&0x0F)<<4
	}
}

type Chunk struct {
	X, Z        int
	Biomes      []byte
	Sections    []*Section
	Compression byte // 0 means zlib
}

type level struct {
	XPos     int32     `nbt:"xPos"`
	ZPos     int32     `nbt:"zPos"`
	Biomes   []byte    `nbt:"Biomes"`
	Sections []Section `nbt:"Sections"`
}

type root struct {
	DataVersion int32 `nbt:"DataVersion"`
	Level       level `nbt:"Level"`
}

// Encode returns chunk as stored in a sector, compression marker included.
func Encode(c Chunk) ([]byte, error) {
	l := level{XPos: int32(c.X), ZPos: int32(c.Z), Biomes: c.Biomes}
	if l.Biomes == nil {
		l.Biomes = []byte{}
	}
	for _, s := range c.Sections {
		l.Sections = append(l.Sections, *s)
	}
	raw, err := nbt.Marshal(root{DataVersion: 1343, Level: l})
	if err != nil {
		return nil, err
	}
	comp := c.Compression
	if comp == 0 {
		comp = 2
	}
	var b bytes.Buffer
	b.WriteByte(comp)
	var w io.WriteCloser
	switch comp {
	case 1:
		w = gzip.NewWriter(&b)
	case 2:
		w = zlib.NewWriter(&b)
	case 3:
		b.Write(raw)
		return b.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", comp)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Write creates region file at fpath holding chunks.
func Write(fpath string, chunks ...Chunk) error {
	r, err := region.Create(fpath)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		data, err := Encode(c)
		if err != nil {
			r.Close()
			return err
		}
		if err := r.WriteSector(c.X, c.Z, data); err != nil {
			r.Close()
			return err
		}
	}
	return r.Close()
}
