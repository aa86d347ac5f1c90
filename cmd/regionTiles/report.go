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
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/maxsupermanhd/RegionTiles/colors"
	"github.com/maxsupermanhd/RegionTiles/render/dispatchers"
	"github.com/shirou/gopsutil/mem"
)

// formatIDs lists ids ten per line.
func formatIDs(ids []int, f func(int) string) string {
	var b strings.Builder
	for i, id := range ids {
		switch {
		case i == 0:
			b.WriteString("  ")
		case i%10 == 0:
			b.WriteString(",\n  ")
		default:
			b.WriteString(", ")
		}
		b.WriteString(f(id))
	}
	return b.String()
}

func biomeIDString(id int) string {
	return fmt.Sprintf("0x%02X", id)
}

func writeSummary(w io.Writer, stats *dispatchers.BatchStats) {
	fmt.Fprintf(w, "Batch %s: %s regions, %s rendered, %s up to date, %s failed, %s written in %s\n",
		stats.ID,
		humanize.Comma(int64(stats.Regions)),
		humanize.Comma(int64(stats.Rendered)),
		humanize.Comma(int64(stats.Skipped)),
		humanize.Comma(int64(stats.Failed)),
		humanize.Bytes(uint64(stats.Timer.BytesWritten)),
		stats.Elapsed.Round(time.Millisecond))
	if stats.ChunkErrors > 0 {
		fmt.Fprintf(w, "%s chunks could not be decoded and were left empty\n", humanize.Comma(int64(stats.ChunkErrors)))
	}
}

func writeDebugReport(w io.Writer, stats *dispatchers.BatchStats) {
	tim := &stats.Timer
	fmt.Fprintf(w, "Rendered %d regions, %d sections in %dms with %d workers\n", tim.RegionCount, tim.SectionCount, tim.Total.Milliseconds(), stats.Workers)
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(w, "Memory in use %s of %s\n", humanize.Bytes(vm.Used), humanize.Bytes(vm.Total))
	}
	fmt.Fprintln(w, "The following times lines indicate milliseconds total, per region, and per section")
	for _, l := range tim.Lines() {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
	writeDefaults(w, stats.Defaults)
}

func writeDefaults(w io.Writer, d *colors.Defaults) {
	if ids := d.SortedBlockIDs(); len(ids) > 0 {
		fmt.Fprintln(w, "The following block IDs were not explicitly mapped to colors:")
		fmt.Fprintln(w, formatIDs(ids, colors.BlockIDString))
	} else {
		fmt.Fprintln(w, "All block IDs encountered were accounted for in the block color map.")
	}
	fmt.Fprintln(w)
	if ids := d.SortedBlockIDDataValues(); len(ids) > 0 {
		fmt.Fprintln(w, "The following block ID + data value pairs were not explicitly mapped to colors")
		fmt.Fprintln(w, "(this is not necessarily a problem, as the base IDs were mapped to a color):")
		fmt.Fprintln(w, formatIDs(ids, colors.BlockIDString))
	} else {
		fmt.Fprintln(w, "All block ID + data value pairs encountered were accounted for in the block color map.")
	}
	fmt.Fprintln(w)
	if ids := d.SortedBiomeIDs(); len(ids) > 0 {
		fmt.Fprintln(w, "The following biome IDs were not explicitly mapped to colors:")
		fmt.Fprintln(w, formatIDs(ids, biomeIDString))
	} else {
		fmt.Fprintln(w, "All biome IDs encountered were accounted for in the biome color map.")
	}
}
