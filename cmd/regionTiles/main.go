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
	"log"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	BuildTime  = "00000000.000000"
	CommitHash = "0000000"
	GoVersion  = "0.0"
	GitTag     = "0.0"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		GoVersion = buildinfo.GoVersion
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("Error loading config file: " + err.Error())
	}
	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *RegionTilesConfig) *cobra.Command {
	root := &cobra.Command{
		Use:           "regionTiles",
		Short:         "RegionTiles renders region files into top-down map tiles",
		Version:       fmt.Sprintf("%s (%s, built %s with %s)", GitTag, CommitHash, BuildTime, GoVersion),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg)
		},
	}
	fl := root.PersistentFlags()
	fl.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output directory for tiles")
	fl.BoolVarP(&cfg.Force, "force", "f", cfg.Force, "render tiles even if they are up to date")
	fl.BoolVar(&cfg.Debug, "debug", cfg.Debug, "print per-region progress and timing report")
	fl.StringVar(&cfg.ColorMap, "color-map", cfg.ColorMap, "block color table file (default embedded)")
	fl.StringVar(&cfg.BiomeMap, "biome-map", cfg.BiomeMap, "biome color table file (default embedded)")
	fl.IntVar(&cfg.MinHeight, "min-height", cfg.MinHeight, "lowest rendered block height (inclusive)")
	fl.IntVar(&cfg.MaxHeight, "max-height", cfg.MaxHeight, "highest rendered block height (exclusive)")
	fl.StringVar(&cfg.RegionLimitRect, "region-limit-rect", cfg.RegionLimitRect, "only render regions inside x0,z0,x1,z1")
	fl.IntVar(&cfg.AltitudeShadingFactor, "altitude-shading-factor", cfg.AltitudeShadingFactor, "strength of altitude shading")
	fl.IntVar(&cfg.ShadingReferenceAltitude, "shading-reference-altitude", cfg.ShadingReferenceAltitude, "altitude that is not shaded")
	fl.IntVar(&cfg.MinAltitudeShading, "min-altitude-shading", cfg.MinAltitudeShading, "lowest brightness shift")
	fl.IntVar(&cfg.MaxAltitudeShading, "max-altitude-shading", cfg.MaxAltitudeShading, "highest brightness shift")
	fl.Float64Var(&cfg.ShadeBalanceFactor, "shade-balance-factor", cfg.ShadeBalanceFactor, "0 shades by slope, 1 by altitude")
	fl.StringVar(&cfg.Title, "title", cfg.Title, "map title")
	fl.StringVar(&cfg.Scales, "scales", cfg.Scales, "output scales, like 1,1:2,1:4")
	fl.IntVar(&cfg.Threads, "threads", cfg.Threads, "render workers (0 is one per logical cpu)")
	fl.StringVar(&cfg.LogsPath, "logs-path", cfg.LogsPath, "log file, empty to log to stderr only")

	root.AddCommand(
		newRenderCmd(cfg),
		newServeCmd(cfg),
		newWatchCmd(cfg),
		newDumpCmd(cfg),
		newColorsCmd(cfg),
	)
	return root
}
