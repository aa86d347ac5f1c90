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

package main

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/maxsupermanhd/RegionTiles/colors"
	"github.com/spf13/cobra"
)

func parseBlockArg(s string) (uint16, uint8, error) {
	ids, datums, hasDatum := strings.Cut(s, ":")
	id, err := strconv.ParseUint(ids, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("block id %q: %w", s, err)
	}
	if !hasDatum {
		return uint16(id), 0, nil
	}
	datum, err := strconv.ParseUint(datums, 0, 4)
	if err != nil {
		return 0, 0, fmt.Errorf("block datum %q: %w", s, err)
	}
	return uint16(id), uint8(datum), nil
}

// describeColors prints table sizes and resolves each id[:datum][@biome] query.
func describeColors(w io.Writer, p *colors.Palette, queries []string) error {
	fmt.Fprintf(w, "%d block colors, %d biome colors\n", p.Blocks.Len(), p.Biomes.Len())
	for _, q := range queries {
		blockArg, biomeArg, hasBiome := strings.Cut(q, "@")
		id, datum, err := parseBlockArg(blockArg)
		if err != nil {
			return err
		}
		biome := 0
		if hasBiome {
			biome, err = strconv.Atoi(biomeArg)
			if err != nil {
				return fmt.Errorf("biome %q: %w", q, err)
			}
		}
		d := colors.NewDefaults()
		c := p.Resolve(id, datum, biome, d)
		_, inf, _ := p.Blocks.Get(id).Color(datum)
		fmt.Fprintf(w, "%s in biome %d: %s (%s influence)\n", colors.BlockIDString(int(id)|int(datum)<<16), biome, colors.HexColor(c), inf)
		if !d.Empty() {
			writeDefaults(w, d)
		}
	}
	return nil
}

func newColorsCmd(cfg *RegionTilesConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "colors [id[:datum][@biome]]...",
		Short: "Check color tables and resolve block colors",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := colors.LoadPalette(cfg.ColorMap, cfg.BiomeMap, log.Default())
			if err != nil {
				return err
			}
			return describeColors(cmd.OutOrStdout(), p, args)
		},
	}
}
