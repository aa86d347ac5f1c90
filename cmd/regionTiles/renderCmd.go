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
	"os"

	"github.com/maxsupermanhd/RegionTiles/chunkStorage"
	"github.com/maxsupermanhd/RegionTiles/render"
	"github.com/maxsupermanhd/RegionTiles/render/dispatchers"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newRenderCmd(cfg *RegionTilesConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "render <region dir or r.X.Z.mca>...",
		Short: "Render region files into tiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := runRender(cfg, args, cmd.ErrOrStderr())
			return err
		},
	}
}

func prepareRender(cfg *RegionTilesConfig, inputs []string) (*render.Renderer, *chunkStorage.RegionMap, int, error) {
	settings, err := cfg.renderSettings()
	if err != nil {
		return nil, nil, 0, err
	}
	rect, err := cfg.regionRect()
	if err != nil {
		return nil, nil, 0, err
	}
	threads, err := cfg.threads()
	if err != nil {
		return nil, nil, 0, err
	}
	rm, err := chunkStorage.LoadRegionMap(inputs, rect, log.Default())
	if err != nil {
		return nil, nil, 0, err
	}
	r, err := render.NewRenderer(settings, nil, log.Default())
	if err != nil {
		return nil, nil, 0, err
	}
	if settings.Debug {
		log.Printf("Rendering %d regions (%d:%d to %d:%d) into %s, heights %s..%s, scales %v",
			len(rm.Regions), rm.MinX, rm.MinZ, rm.MaxX, rm.MaxZ, cfg.Output,
			heightString(settings.MinHeight), heightString(settings.MaxHeight), settings.Scales)
	}
	return r, rm, threads, nil
}

func runRender(cfg *RegionTilesConfig, inputs []string, out io.Writer) (*render.Renderer, *chunkStorage.RegionMap, error) {
	r, rm, threads, err := prepareRender(cfg, inputs)
	if err != nil {
		return nil, nil, err
	}
	var progress dispatchers.Progress
	var bar *progressbar.ProgressBar
	if !cfg.Debug {
		bar = progressbar.Default(int64(len(rm.Regions)), "rendering")
		progress = func(*chunkStorage.Region, bool, error) {
			bar.Add(1)
		}
	}
	stats, err := dispatchers.RenderAll(r, rm, cfg.Output, cfg.Force, threads, progress)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	writeSummary(out, stats)
	if cfg.Debug {
		writeDebugReport(out, stats)
	} else if !stats.Defaults.Empty() {
		writeDefaults(out, stats.Defaults)
	}
	return r, rm, err
}
