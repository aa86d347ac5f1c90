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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Influence int

const (
	InfluenceNone Influence = iota
	InfluenceGrass
	InfluenceFoliage
	InfluenceWater
)

func (i Influence) String() string {
	switch i {
	case InfluenceGrass:
		return "grass"
	case InfluenceFoliage:
		return "foliage"
	case InfluenceWater:
		return "water"
	default:
		return "none"
	}
}

func ParseInfluence(s string) (Influence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "-":
		return InfluenceNone, nil
	case "grass":
		return InfluenceGrass, nil
	case "foliage":
		return InfluenceFoliage, nil
	case "water":
		return InfluenceWater, nil
	}
	return InfluenceNone, fmt.Errorf("unknown biome influence %q", s)
}

const (
	BlockIDCount = 1 << 16
	DataValues   = 16
)

type Block struct {
	BaseColor     uint32
	BaseInfluence Influence
	HasSubColors  [DataValues]bool
	SubColors     [DataValues]uint32
	SubInfluences [DataValues]Influence
	IsDefault     bool
}

// Color returns color and influence for datum, sub reports whether datum had its own entry.
func (b *Block) Color(datum uint8) (c uint32, inf Influence, sub bool) {
	if int(datum) < DataValues && b.HasSubColors[datum] {
		return b.SubColors[datum], b.SubInfluences[datum], true
	}
	return b.BaseColor, b.BaseInfluence, false
}

type BlockColorTable struct {
	blocks       []*Block
	defaultBlock Block
}

func NewBlockColorTable() *BlockColorTable {
	return &BlockColorTable{
		blocks: make([]*Block, BlockIDCount),
		defaultBlock: Block{
			BaseColor:     Magenta,
			BaseInfluence: InfluenceNone,
			IsDefault:     true,
		},
	}
}

// Get never returns nil, ids without entry get the shared default block.
func (t *BlockColorTable) Get(id uint16) *Block {
	if b := t.blocks[id]; b != nil {
		return b
	}
	return &t.defaultBlock
}

func (t *BlockColorTable) Defined(id uint16) bool {
	return t.blocks[id] != nil
}

func (t *BlockColorTable) Len() int {
	n := 0
	for _, b := range t.blocks {
		if b != nil {
			n++
		}
	}
	return n
}

func (t *BlockColorTable) setColor(id uint16, datum int, c uint32, inf Influence) {
	b := t.blocks[id]
	if b == nil {
		b = &Block{BaseColor: c, BaseInfluence: inf}
		t.blocks[id] = b
	}
	if datum < 0 {
		b.BaseColor = c
		b.BaseInfluence = inf
		return
	}
	b.HasSubColors[datum] = true
	b.SubColors[datum] = c
	b.SubInfluences[datum] = inf
}

// LoadBlockColors reads tab separated rows:
//
//	id[:datum] <TAB> color <TAB> influence [<TAB> color <TAB> influence]...
//
// Every color/influence pair after the first one applies to the next data value.
// Broken rows are reported to logger and skipped.
func LoadBlockColors(r io.Reader, name string, logger *log.Logger) (*BlockColorTable, error) {
	logger = orDiscard(logger)
	t := NewBlockColorTable()
	err := scanRows(r, func(lineNum int, fields []string) {
		if len(fields) < 2 {
			logger.Printf("Invalid block color line at %s:%d: too few fields", name, lineNum)
			return
		}
		id, datum, err := parseBlockKey(fields[0])
		if err != nil {
			logger.Printf("Invalid block color line at %s:%d: %v", name, lineNum, err)
			return
		}
		pairs := fields[1:]
		for i := 0; i < len(pairs); i += 2 {
			c, err := ParseColor(pairs[i])
			if err != nil {
				logger.Printf("Invalid block color line at %s:%d: bad color %q: %v", name, lineNum, pairs[i], err)
				return
			}
			inf := InfluenceNone
			if i+1 < len(pairs) {
				inf, err = ParseInfluence(pairs[i+1])
				if err != nil {
					logger.Printf("Invalid block color line at %s:%d: %v", name, lineNum, err)
					return
				}
			}
			d := datum
			if i > 0 {
				if d < 0 {
					d = 0
				}
				d += i / 2
			}
			if d >= DataValues {
				logger.Printf("Block color line at %s:%d has more than %d data values", name, lineNum, DataValues)
				return
			}
			t.setColor(id, d, c, inf)
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func LoadBlockColorsFile(fpath string, logger *log.Logger) (*BlockColorTable, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return LoadBlockColors(f, fpath, logger)
}

func parseBlockKey(s string) (id uint16, datum int, err error) {
	datum = -1
	ids, datums, hasDatum := strings.Cut(strings.TrimSpace(s), ":")
	v, err := parseNumber(ids, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad block id %q: %w", ids, err)
	}
	id = uint16(v)
	if hasDatum {
		d, err := parseNumber(datums, 8)
		if err != nil || d >= DataValues {
			return 0, 0, fmt.Errorf("bad data value %q", datums)
		}
		datum = int(d)
	}
	return
}

func scanRows(r io.Reader, row func(lineNum int, fields []string)) error {
	s := bufio.NewScanner(r)
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := s.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		row(lineNum, strings.Split(strings.TrimRight(line, "\r"), "\t"))
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}
