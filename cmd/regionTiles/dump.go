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
	"sort"
	"strconv"

	"github.com/Tnze/go-mc/nbt"
	"github.com/davecgh/go-spew/spew"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage/regionFile"
	"github.com/spf13/cobra"
)

type sectionSummary struct {
	Y        int
	Blocks   int
	Distinct int
	TopIDs   []string
}

func summarizeSections(buf *regionFile.SectionBuffers) []sectionSummary {
	ret := []sectionSummary{}
	for y := range buf.Used {
		if !buf.Used[y] {
			continue
		}
		counts := map[uint16]int{}
		nonAir := 0
		for _, id := range buf.BlockIDs[y] {
			counts[id]++
			if id != 0 {
				nonAir++
			}
		}
		ids := make([]uint16, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if counts[ids[i]] != counts[ids[j]] {
				return counts[ids[i]] > counts[ids[j]]
			}
			return ids[i] < ids[j]
		})
		top := []string{}
		for i := 0; i < len(ids) && i < 5; i++ {
			top = append(top, fmt.Sprintf("%d x%d", ids[i], counts[ids[i]]))
		}
		ret = append(ret, sectionSummary{Y: y, Blocks: nonAir, Distinct: len(ids), TopIDs: top})
	}
	return ret
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func dumpChunk(w io.Writer, fpath string, cx, cz int) error {
	rf, err := regionFile.Open(fpath)
	if err != nil {
		return err
	}
	defer rf.Close()
	raw, err := rf.ReadRaw(cx, cz)
	if err != nil {
		return err
	}
	if raw == nil {
		fmt.Fprintf(w, "Chunk %d:%d is not present in %s\n", cx, cz, fpath)
		return nil
	}
	var root map[string]nbt.RawMessage
	if err := nbt.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("%w: %v", regionFile.ErrFormat, err)
	}
	var level map[string]nbt.RawMessage
	if l, ok := root["Level"]; ok {
		if err := l.Unmarshal(&level); err != nil {
			return fmt.Errorf("%w: %v", regionFile.ErrFormat, err)
		}
	}
	printTags := func(prefix string, tags map[string]nbt.RawMessage) {
		keys := make([]string, 0, len(tags))
		for k := range tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "Level" || k == "Sections" {
				continue
			}
			fmt.Fprintf(w, "%s%s = %s\n", prefix, k, truncate(tags[k].String(), 120))
		}
	}
	fmt.Fprintf(w, "Chunk %d:%d of %s (%d bytes of nbt)\n", cx, cz, fpath, len(raw))
	printTags("", root)
	printTags("Level.", level)

	lvl, err := rf.LoadChunk(cx, cz)
	if err != nil {
		return err
	}
	var buf regionFile.SectionBuffers
	if _, err := regionFile.LoadChunkData(lvl, &buf); err != nil {
		return err
	}
	spew.Fdump(w, summarizeSections(&buf))
	return nil
}

func newDumpCmd(cfg *RegionTilesConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <r.X.Z.mca> <chunk x> <chunk z>",
		Short: "Print decoded contents of one chunk",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cx, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			cz, err := strconv.Atoi(args[2])
			if err != nil {
				return err
			}
			return dumpChunk(cmd.OutOrStdout(), args[0], cx, cz)
		},
	}
}
