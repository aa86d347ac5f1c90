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
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path"
	"time"

	"github.com/disintegration/imaging"
)

// TileLocation addresses one tile file, Scale 1 is full size.
type TileLocation struct {
	X, Z  int
	Scale int
}

func (l TileLocation) String() string {
	return fmt.Sprintf("{%dx %dz at 1:%d}", l.X, l.Z, l.Scale)
}

// TileFilename is tile.X.Z.png for full size and tile.X.Z.1-N.png for derivatives.
func TileFilename(loc TileLocation) string {
	if loc.Scale <= 1 {
		return fmt.Sprintf("tile.%d.%d.png", loc.X, loc.Z)
	}
	return fmt.Sprintf("tile.%d.%d.1-%d.png", loc.X, loc.Z, loc.Scale)
}

// TileStore keeps tiles of one output directory.
type TileStore struct {
	root   string
	logger *log.Logger
}

func NewTileStore(root string, logger *log.Logger) *TileStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &TileStore{
		root:   root,
		logger: logger,
	}
}

func (s *TileStore) Root() string {
	return s.root
}

func (s *TileStore) Path(loc TileLocation) string {
	return path.Join(s.root, TileFilename(loc))
}

// ModTime is zero if tile does not exist.
func (s *TileStore) ModTime(loc TileLocation) time.Time {
	return getModTimeFp(s.Path(loc))
}

func getModTimeFp(fp string) time.Time {
	info, err := os.Stat(fp)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// NeedsRender reports if tile is missing or older than its source.
func (s *TileStore) NeedsRender(loc TileLocation, source time.Time, force bool) bool {
	if force {
		return true
	}
	m := s.ModTime(loc)
	return m.IsZero() || m.Before(source)
}

// Save writes png next to its final name and renames it over, returns bytes written.
func (s *TileStore) Save(img image.Image, loc TileLocation) (int64, error) {
	storePath := s.Path(loc)
	err := os.MkdirAll(path.Dir(storePath), 0755)
	if err != nil {
		return 0, err
	}
	file, err := os.CreateTemp(path.Dir(storePath), ".tile-*.png")
	if err != nil {
		return 0, err
	}
	tmp := file.Name()
	err = png.Encode(file, img)
	if err != nil {
		file.Close()
		os.Remove(tmp)
		return 0, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		os.Remove(tmp)
		return 0, err
	}
	err = file.Close()
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	err = os.Rename(tmp, storePath)
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return info.Size(), nil
}

// Load reads tile back, broken files are removed so next run regenerates them.
func (s *TileStore) Load(loc TileLocation) (*image.NRGBA, error) {
	fp := s.Path(loc)
	img, err := imaging.Open(fp)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("Removing unreadable tile %s: %v", fp, err)
			os.Remove(fp)
		}
		return nil, err
	}
	return imaging.Clone(img), nil
}

// Remove deletes every listed scale of a tile, missing files are fine.
func (s *TileStore) Remove(x, z int, scales []int) error {
	for _, sc := range scales {
		err := os.Remove(s.Path(TileLocation{X: x, Z: z, Scale: sc}))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
