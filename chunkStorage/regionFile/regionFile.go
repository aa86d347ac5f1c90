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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

var (
	ErrIO     = errors.New("io error")
	ErrFormat = errors.New("format error")
)

const (
	RegionChunks = 32
	SectorSize   = 4096
)

// compression markers stored in front of chunk payload
const (
	CompressionGzip = 1
	CompressionZlib = 2
	CompressionNone = 3
)

type RegionFile struct {
	path    string
	f       *os.File
	size    int64
	offsets [RegionChunks * RegionChunks]uint32
	ModTime time.Time
}

// Open reads region header, file stays open until Close.
// Only sector offsets are kept, record length is taken from the record itself.
func Open(fpath string) (*RegionFile, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if info.Size() < 2*SectorSize {
		f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, shorter than region header", ErrIO, fpath, info.Size())
	}
	r := &RegionFile{
		path:    fpath,
		f:       f,
		size:    info.Size(),
		ModTime: info.ModTime(),
	}
	var header [RegionChunks * RegionChunks]uint32
	if err := binary.Read(io.NewSectionReader(f, 0, SectorSize), binary.BigEndian, &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading header of %s: %v", ErrIO, fpath, err)
	}
	for i, e := range header {
		r.offsets[i] = e >> 8
	}
	return r, nil
}

func (r *RegionFile) Path() string {
	return r.path
}

func (r *RegionFile) Close() error {
	return r.f.Close()
}

func inRegion(cx, cz int) bool {
	return cx >= 0 && cz >= 0 && cx < RegionChunks && cz < RegionChunks
}

func (r *RegionFile) sectorOffset(cx, cz int) uint32 {
	return r.offsets[cz*RegionChunks+cx]
}

// ChunkExists reports whether header has nonzero sector offset for the chunk.
func (r *RegionFile) ChunkExists(cx, cz int) bool {
	return inRegion(cx, cz) && r.sectorOffset(cx, cz) != 0
}

// readRecord returns chunk payload with compression marker as first byte.
func (r *RegionFile) readRecord(cx, cz int) ([]byte, error) {
	pos := int64(r.sectorOffset(cx, cz)) * SectorSize
	var head [5]byte
	if _, err := r.f.ReadAt(head[:], pos); err != nil {
		return nil, fmt.Errorf("%w: reading chunk %d:%d of %s: %v", ErrIO, cx, cz, r.path, err)
	}
	length := int64(binary.BigEndian.Uint32(head[:4]))
	if length < 1 {
		return nil, fmt.Errorf("%w: chunk %d:%d of %s has record length %d", ErrFormat, cx, cz, r.path, length)
	}
	if pos+4+length > r.size {
		return nil, fmt.Errorf("%w: chunk %d:%d of %s: record of %d bytes runs past end of file", ErrIO, cx, cz, r.path, length)
	}
	data := make([]byte, length)
	data[0] = head[4]
	if _, err := io.ReadFull(io.NewSectionReader(r.f, pos+5, length-1), data[1:]); err != nil {
		return nil, fmt.Errorf("%w: reading chunk %d:%d of %s: %v", ErrIO, cx, cz, r.path, err)
	}
	return data, nil
}

// Level is the part of chunk tree needed to paint it.
type Level struct {
	XPos     int32          `nbt:"xPos"`
	ZPos     int32          `nbt:"zPos"`
	Biomes   nbt.RawMessage `nbt:"Biomes"`
	Sections []Section      `nbt:"Sections"`
}

type Section struct {
	Y      int8   `nbt:"Y"`
	Blocks []byte `nbt:"Blocks"`
	Data   []byte `nbt:"Data"`
	Add    []byte `nbt:"Add"`
}

// LoadChunk returns nil without error if chunk is not present in the region.
func (r *RegionFile) LoadChunk(cx, cz int) (level *Level, err error) {
	if !inRegion(cx, cz) {
		return nil, fmt.Errorf("%w: chunk %d:%d is outside of region", ErrFormat, cx, cz)
	}
	if r.sectorOffset(cx, cz) == 0 {
		return nil, nil
	}
	defer func() {
		if p := recover(); p != nil {
			level = nil
			err = fmt.Errorf("%w: chunk %d:%d of %s: %v", ErrFormat, cx, cz, r.path, p)
		}
	}()
	data, err := r.readRecord(cx, cz)
	if err != nil {
		return nil, err
	}
	root, err := DecodeChunk(data)
	if err != nil {
		return nil, fmt.Errorf("chunk %d:%d of %s: %w", cx, cz, r.path, err)
	}
	return root, nil
}

// ReadRaw returns decompressed chunk tree without interpreting it.
func (r *RegionFile) ReadRaw(cx, cz int) ([]byte, error) {
	if !inRegion(cx, cz) {
		return nil, fmt.Errorf("%w: chunk %d:%d is outside of region", ErrFormat, cx, cz)
	}
	if r.sectorOffset(cx, cz) == 0 {
		return nil, nil
	}
	data, err := r.readRecord(cx, cz)
	if err != nil {
		return nil, err
	}
	return Decompress(data)
}

// Decompress takes sector payload starting with compression marker.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty chunk payload", ErrFormat)
	}
	var (
		rd  io.Reader
		err error
	)
	switch data[0] {
	case CompressionGzip:
		rd, err = gzip.NewReader(bytes.NewReader(data[1:]))
	case CompressionZlib:
		rd, err = zlib.NewReader(bytes.NewReader(data[1:]))
	case CompressionNone:
		return data[1:], nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrFormat, data[0])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	ret, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing: %v", ErrFormat, err)
	}
	return ret, nil
}

// DecodeChunk decompresses sector payload and picks Level compound out of it.
func DecodeChunk(data []byte) (*Level, error) {
	raw, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	var root map[string]nbt.RawMessage
	if err := nbt.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	lvl, ok := root["Level"]
	if !ok || lvl.Type != nbt.TagCompound {
		return nil, fmt.Errorf("%w: no Level compound", ErrFormat)
	}
	var level Level
	if err := lvl.Unmarshal(&level); err != nil {
		return nil, fmt.Errorf("%w: Level: %v", ErrFormat, err)
	}
	return &level, nil
}
