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

package regionFile_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage/regionFile"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage/regionFile/regiontest"
)

func TestNybble(t *testing.T) {
	arr := []byte{0x21, 0x43, 0xF0}
	want := []uint8{1, 2, 3, 4, 0, 15}
	for i, w := range want {
		if got := regionFile.Nybble(arr, i); got != w {
			t.Errorf("nybble %d: got %d want %d", i, got, w)
		}
	}
	buf := make([]byte, 8)
	for i := 0; i < 16; i++ {
		regionFile.SetNybble(buf, i, uint8(15-i))
	}
	for i := 0; i < 16; i++ {
		if got := regionFile.Nybble(buf, i); got != uint8(15-i) {
			t.Errorf("set nybble %d: got %d", i, got)
		}
	}
}

func TestLoadChunk(t *testing.T) {
	for _, comp := range []byte{1, 2, 3} {
		dir := t.TempDir()
		fpath := filepath.Join(dir, "r.0.0.mca")
		s := regiontest.NewSection(3)
		s.Set(1, 2, 3, 0x1A5, 7)
		s.Set(15, 15, 15, 35, 14)
		biomes := make([]byte, 256)
		biomes[17] = 4
		err := regiontest.Write(fpath, regiontest.Chunk{X: 5, Z: 5, Biomes: biomes, Sections: []*regiontest.Section{s}, Compression: comp})
		if err != nil {
			t.Fatal(err)
		}
		r, err := regionFile.Open(fpath)
		if err != nil {
			t.Fatal(err)
		}
		if r.ChunkExists(0, 0) || !r.ChunkExists(5, 5) {
			t.Fatalf("compression %d: wrong chunk presence", comp)
		}
		lvl, err := r.LoadChunk(0, 0)
		if err != nil || lvl != nil {
			t.Fatalf("compression %d: absent chunk returned %v %v", comp, lvl, err)
		}
		lvl, err = r.LoadChunk(5, 5)
		if err != nil {
			t.Fatalf("compression %d: %v", comp, err)
		}
		if lvl.XPos != 5 || lvl.ZPos != 5 {
			t.Errorf("compression %d: position %d:%d", comp, lvl.XPos, lvl.ZPos)
		}
		var buf regionFile.SectionBuffers
		n, err := regionFile.LoadChunkData(lvl, &buf)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 || !buf.Used[3] || buf.Used[0] {
			t.Errorf("compression %d: used sections %v", comp, buf.Used)
		}
		i := regionFile.Index(1, 2, 3)
		if buf.BlockIDs[3][i] != 0x1A5 || buf.BlockData[3][i] != 7 {
			t.Errorf("compression %d: block %#x:%d", comp, buf.BlockIDs[3][i], buf.BlockData[3][i])
		}
		i = regionFile.Index(15, 15, 15)
		if buf.BlockIDs[3][i] != 35 || buf.BlockData[3][i] != 14 {
			t.Errorf("compression %d: block %#x:%d", comp, buf.BlockIDs[3][i], buf.BlockData[3][i])
		}
		if buf.Biomes[17] != 4 || buf.Biomes[0] != 0 {
			t.Errorf("compression %d: biomes %d %d", comp, buf.Biomes[17], buf.Biomes[0])
		}
		r.Close()
	}
}

func TestLoadChunkDataWithoutOptionalTags(t *testing.T) {
	var buf regionFile.SectionBuffers
	buf.Used[7] = true
	lvl := &regionFile.Level{Sections: []regionFile.Section{
		{Y: 0, Blocks: make([]byte, 4096), Data: make([]byte, 2048)},
		{Y: 20, Blocks: make([]byte, 10)},
		{Y: -1},
	}}
	lvl.Sections[0].Blocks[0] = 0xFF
	n, err := regionFile.LoadChunkData(lvl, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || !buf.Used[0] || buf.Used[7] {
		t.Errorf("used sections %v", buf.Used)
	}
	if buf.BlockIDs[0][0] != 0xFF {
		t.Errorf("block id %#x", buf.BlockIDs[0][0])
	}
	for i, b := range buf.Biomes {
		if b != regionFile.BiomeUnknown {
			t.Fatalf("biome %d is %d", i, b)
		}
	}
}

func TestLoadChunkDataRejectsShortSections(t *testing.T) {
	var buf regionFile.SectionBuffers
	lvl := &regionFile.Level{Sections: []regionFile.Section{
		{Y: 2, Blocks: make([]byte, 4096), Data: make([]byte, 100)},
	}}
	if _, err := regionFile.LoadChunkData(lvl, &buf); !errors.Is(err, regionFile.ErrFormat) {
		t.Errorf("expected format error, got %v", err)
	}
}

// writeHeader puts entry at chunk 1:1 and appends sectors after the header
func writeHeader(t *testing.T, fpath string, entry uint32, sectors []byte) {
	t.Helper()
	data := make([]byte, 8192)
	binary.BigEndian.PutUint32(data[4*33:], entry)
	data = append(data, sectors...)
	if err := os.WriteFile(fpath, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadChunkBadCompression(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	sector := make([]byte, 4096)
	binary.BigEndian.PutUint32(sector, 5)
	sector[4] = 7
	writeHeader(t, fpath, 2<<8|1, sector)
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.LoadChunk(1, 1); !errors.Is(err, regionFile.ErrFormat) {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestLoadChunkGarbagePayload(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	sector := make([]byte, 4096)
	binary.BigEndian.PutUint32(sector, 9)
	sector[4] = 2
	copy(sector[5:], "notzlib!")
	writeHeader(t, fpath, 2<<8|1, sector)
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.LoadChunk(1, 1); !errors.Is(err, regionFile.ErrFormat) {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestOpenTruncated(t *testing.T) {
	dir := t.TempDir()
	fpath := filepath.Join(dir, "r.0.0.mca")
	if err := os.WriteFile(fpath, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := regionFile.Open(fpath); !errors.Is(err, regionFile.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
	if _, err := regionFile.Open(filepath.Join(dir, "missing.mca")); !errors.Is(err, regionFile.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
}

func TestLoadChunkIgnoresSectorCount(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	s := regiontest.NewSection(0)
	s.Set(0, 0, 0, 1, 0)
	if err := regiontest.Write(fpath, regiontest.Chunk{X: 5, Z: 5, Sections: []*regiontest.Section{s}}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	data[4*(5*32+5)+3] = 0
	if err := os.WriteFile(fpath, data, 0644); err != nil {
		t.Fatal(err)
	}
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if !r.ChunkExists(5, 5) {
		t.Fatal("chunk with zero sector count reported absent")
	}
	lvl, err := r.LoadChunk(5, 5)
	if err != nil || lvl == nil {
		t.Fatalf("got %v %v", lvl, err)
	}
	if lvl.XPos != 5 || len(lvl.Sections) != 1 {
		t.Errorf("position %d, %d sections", lvl.XPos, len(lvl.Sections))
	}
}

func TestLoadChunkRecordLongerThanSectorCount(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	s := regiontest.NewSection(0)
	s.Fill(1, 0)
	payload, err := regiontest.Encode(regiontest.Chunk{X: 1, Z: 1, Sections: []*regiontest.Section{s}, Compression: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) <= 4096 {
		t.Fatalf("payload of %d bytes fits one sector", len(payload))
	}
	sectors := make([]byte, 4, 3*4096)
	binary.BigEndian.PutUint32(sectors, uint32(len(payload)))
	sectors = append(sectors, payload...)
	sectors = append(sectors, make([]byte, 3*4096-len(sectors))...)
	writeHeader(t, fpath, 2<<8|1, sectors)
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lvl, err := r.LoadChunk(1, 1)
	if err != nil || lvl == nil {
		t.Fatalf("got %v %v", lvl, err)
	}
	if len(lvl.Sections) != 1 || len(lvl.Sections[0].Blocks) != 4096 {
		t.Errorf("sections decoded wrong: %d", len(lvl.Sections))
	}
}

func TestLoadChunkZeroOffsetIsAbsent(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	writeHeader(t, fpath, 0<<8|1, nil)
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.ChunkExists(1, 1) {
		t.Error("zero offset reported present")
	}
	if lvl, err := r.LoadChunk(1, 1); lvl != nil || err != nil {
		t.Errorf("got %v %v", lvl, err)
	}
}

func TestLoadChunkRecordPastEOF(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	sector := make([]byte, 4096)
	binary.BigEndian.PutUint32(sector, 100000)
	sector[4] = 2
	writeHeader(t, fpath, 2<<8|1, sector)
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.LoadChunk(1, 1); !errors.Is(err, regionFile.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
}

func TestChunkOutsideRegion(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "r.0.0.mca")
	writeHeader(t, fpath, 2<<8|1, make([]byte, 4096))
	r, err := regionFile.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for _, c := range [][2]int{{40, 0}, {0, 32}, {-1, 3}} {
		if r.ChunkExists(c[0], c[1]) {
			t.Errorf("%v reported present", c)
		}
		if _, err := r.ReadRaw(c[0], c[1]); !errors.Is(err, regionFile.ErrFormat) {
			t.Errorf("ReadRaw %v: expected format error, got %v", c, err)
		}
		if _, err := r.LoadChunk(c[0], c[1]); !errors.Is(err, regionFile.ErrFormat) {
			t.Errorf("LoadChunk %v: expected format error, got %v", c, err)
		}
	}
}

func intArray(vals []int32) nbt.RawMessage {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, int32(len(vals)))
	binary.Write(&b, binary.BigEndian, vals)
	return nbt.RawMessage{Type: nbt.TagIntArray, Data: b.Bytes()}
}

func TestLoadChunkDataIntBiomes(t *testing.T) {
	column := make([]int32, 256)
	column[3] = 21
	volume := make([]int32, 1024)
	volume[3] = 21
	cases := []struct {
		name   string
		biomes nbt.RawMessage
		want   uint8
	}{
		{"column", intArray(column), 21},
		{"volume", intArray(volume), regionFile.BiomeUnknown},
	}
	for _, c := range cases {
		var buf regionFile.SectionBuffers
		if _, err := regionFile.LoadChunkData(&regionFile.Level{Biomes: c.biomes}, &buf); err != nil {
			t.Fatal(err)
		}
		if buf.Biomes[3] != c.want {
			t.Errorf("%s: biome %d want %d", c.name, buf.Biomes[3], c.want)
		}
	}
}
