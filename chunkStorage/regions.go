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

package chunkStorage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var ErrNoRegions = errors.New("no regions found")

// Region is one r.X.Z.mca file, ImageFile is set once full-size tile is written.
type Region struct {
	X, Z       int
	RegionFile string
	ImageFile  string
}

func (r *Region) String() string {
	return fmt.Sprintf("r.%d.%d", r.X, r.Z)
}

// RegionMap bounds are inclusive.
type RegionMap struct {
	Regions []*Region
	MinX    int
	MaxX    int
	MinZ    int
	MaxZ    int
}

// Rect is an inclusive region coordinate filter.
type Rect struct {
	X0, Z0, X1, Z1 int
}

func (r Rect) Contains(x, z int) bool {
	return x >= r.X0 && x <= r.X1 && z >= r.Z0 && z <= r.Z1
}

// ParseRect reads "x0,z0,x1,z1", corners may come in any order.
func ParseRect(s string) (*Rect, error) {
	p := strings.Split(s, ",")
	if len(p) != 4 {
		return nil, fmt.Errorf("rect %q must have 4 comma separated numbers", s)
	}
	var v [4]int
	for i := range p {
		n, err := strconv.Atoi(strings.TrimSpace(p[i]))
		if err != nil {
			return nil, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	r := Rect{X0: v[0], Z0: v[1], X1: v[2], Z1: v[3]}
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Z0 > r.Z1 {
		r.Z0, r.Z1 = r.Z1, r.Z0
	}
	return &r, nil
}

var regionFnameRegexp = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

func ExtractRegionPath(fname string, xx, zz *int) bool {
	r := regionFnameRegexp.FindStringSubmatch(fname)
	if len(r) != 3 {
		return false
	}
	x, err := strconv.Atoi(r[1])
	if err != nil {
		return false
	}
	z, err := strconv.Atoi(r[2])
	if err != nil {
		return false
	}
	if xx != nil {
		*xx = x
	}
	if zz != nil {
		*zz = z
	}
	return true
}

// NewRegionMap sorts regions by z then x and computes bounds.
func NewRegionMap(regions []*Region) *RegionMap {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Z != regions[j].Z {
			return regions[i].Z < regions[j].Z
		}
		return regions[i].X < regions[j].X
	})
	m := &RegionMap{Regions: regions}
	for i, r := range regions {
		if i == 0 || r.X < m.MinX {
			m.MinX = r.X
		}
		if i == 0 || r.X > m.MaxX {
			m.MaxX = r.X
		}
		if i == 0 || r.Z < m.MinZ {
			m.MinZ = r.Z
		}
		if i == 0 || r.Z > m.MaxZ {
			m.MaxZ = r.Z
		}
	}
	return m
}

func (m *RegionMap) Find(x, z int) *Region {
	for _, r := range m.Regions {
		if r.X == x && r.Z == z {
			return r
		}
	}
	return nil
}

// LoadRegionMap collects regions from directories and .mca paths.
// Files not named like regions are skipped, rect may be nil.
func LoadRegionMap(inputs []string, rect *Rect, logger *log.Logger) (*RegionMap, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	seen := map[[2]int]bool{}
	regions := []*Region{}
	add := func(fpath string) {
		var x, z int
		if !ExtractRegionPath(filepath.Base(fpath), &x, &z) {
			return
		}
		if rect != nil && !rect.Contains(x, z) {
			return
		}
		if seen[[2]int{x, z}] {
			logger.Printf("Region %d:%d given more than once, keeping first (skipped %s)", x, z, fpath)
			return
		}
		seen[[2]int{x, z}] = true
		regions = append(regions, &Region{X: x, Z: z, RegionFile: fpath})
	}
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(in)
			continue
		}
		d, err := os.ReadDir(in)
		if err != nil {
			return nil, err
		}
		for _, i := range d {
			if i.IsDir() {
				continue
			}
			add(filepath.Join(in, i.Name()))
		}
	}
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	return NewRegionMap(regions), nil
}
