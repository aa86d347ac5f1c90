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

package imagecache

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"testing"
	"time"
)

func TestTileFilename(t *testing.T) {
	cases := map[TileLocation]string{
		{X: 0, Z: 0, Scale: 1}:  "tile.0.0.png",
		{X: -3, Z: 7, Scale: 1}: "tile.-3.7.png",
		{X: 2, Z: -1, Scale: 4}: "tile.2.-1.1-4.png",
	}
	for loc, want := range cases {
		if got := TileFilename(loc); got != want {
			t.Errorf("%s: got %s want %s", loc, got, want)
		}
	}
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.SetNRGBA(1, 2, color.NRGBA{R: 0x22, G: 0x44, B: 0x66, A: 0xFF})
	img.SetNRGBA(7, 7, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80})
	return img
}

func TestTileStoreSaveLoad(t *testing.T) {
	s := NewTileStore(t.TempDir(), nil)
	loc := TileLocation{X: 1, Z: 2, Scale: 1}
	if !s.NeedsRender(loc, time.Now(), false) {
		t.Error("missing tile does not need render")
	}
	n, err := s.Save(testImage(), loc)
	if err != nil {
		t.Fatal(err)
	}
	if n <= 0 {
		t.Errorf("saved %d bytes", n)
	}
	img, err := s.Load(loc)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.NRGBAAt(1, 2) != (color.NRGBA{R: 0x22, G: 0x44, B: 0x66, A: 0xFF}) {
		t.Errorf("loaded image differs: %v", img.NRGBAAt(1, 2))
	}
	if img.NRGBAAt(7, 7) != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}) {
		t.Errorf("translucent pixel differs: %v", img.NRGBAAt(7, 7))
	}
	mt := s.ModTime(loc)
	if s.NeedsRender(loc, mt.Add(-time.Minute), false) {
		t.Error("fresh tile needs render")
	}
	if !s.NeedsRender(loc, mt.Add(-time.Minute), true) {
		t.Error("forced tile does not need render")
	}
	if !s.NeedsRender(loc, mt.Add(time.Minute), false) {
		t.Error("stale tile does not need render")
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left: %v", entries)
	}
	if err := s.Remove(1, 2, []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if !s.ModTime(loc).IsZero() {
		t.Error("tile not removed")
	}
}

func TestTileStoreLoadBroken(t *testing.T) {
	s := NewTileStore(t.TempDir(), nil)
	loc := TileLocation{X: 0, Z: 0, Scale: 2}
	if err := os.WriteFile(s.Path(loc), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(loc); err == nil {
		t.Fatal("broken tile loaded")
	}
	if _, err := os.Stat(s.Path(loc)); !os.IsNotExist(err) {
		t.Error("broken tile kept")
	}
}

func TestTileCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewTileStore(t.TempDir(), nil)
	c := NewTileCache(ctx, nil, s, 1)
	defer func() {
		cancel()
		c.WaitExit()
	}()
	a := TileLocation{X: 0, Z: 0, Scale: 1}
	b := TileLocation{X: 1, Z: 1, Scale: 1}
	if _, err := c.Get(a); err == nil {
		t.Error("missing tile served")
	}
	if err := os.WriteFile(s.Path(a), []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(b), []byte("other"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		tile, err := c.Get(a)
		if err != nil {
			t.Fatal(err)
		}
		if string(tile.Data) != "first" {
			t.Errorf("got %q", tile.Data)
		}
	}
	if h := c.GetStats()["hits"].(int64); h != 1 {
		t.Errorf("hits %d", h)
	}
	if err := os.WriteFile(s.Path(a), []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(s.Path(a), future, future); err != nil {
		t.Fatal(err)
	}
	tile, err := c.Get(a)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(tile.Data, []byte("second")) {
		t.Errorf("stale tile served: %q", tile.Data)
	}
	if _, err := c.Get(b); err != nil {
		t.Fatal(err)
	}
	if n := c.GetStats()["cached tiles"].(int64); n != 1 {
		t.Errorf("cache holds %d tiles", n)
	}
	c.Invalidate(b)
	if _, err := c.Get(b); err != nil {
		t.Fatal(err)
	}
}
