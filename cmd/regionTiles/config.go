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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/maxsupermanhd/RegionTiles/chunkStorage"
	"github.com/maxsupermanhd/RegionTiles/render"
	"github.com/shirou/gopsutil/cpu"
)

var errConfig = errors.New("invalid configuration")

type RegionTilesConfig struct {
	LogsPath   string `json:"logs_path"`
	Output     string `json:"output"`
	Listen     string `json:"listen"`
	Threads    int    `json:"threads"`
	CacheSize  int    `json:"cache_size"`
	WatchDelay int    `json:"watch_delay_ms"`

	ColorMap        string `json:"color_map"`
	BiomeMap        string `json:"biome_map"`
	Debug           bool   `json:"debug"`
	Force           bool   `json:"force"`
	MinHeight       int    `json:"min_height"`
	MaxHeight       int    `json:"max_height"`
	RegionLimitRect string `json:"region_limit_rect"`

	AltitudeShadingFactor    int     `json:"altitude_shading_factor"`
	ShadingReferenceAltitude int     `json:"shading_reference_altitude"`
	MinAltitudeShading       int     `json:"min_altitude_shading"`
	MaxAltitudeShading       int     `json:"max_altitude_shading"`
	ShadeBalanceFactor       float64 `json:"shade_balance_factor"`

	Title  string `json:"title"`
	Scales string `json:"scales"`
}

func defaultConfig() RegionTilesConfig {
	d := render.DefaultSettings()
	return RegionTilesConfig{
		LogsPath:                 "./logs/RegionTiles.log",
		Output:                   "tiles",
		Listen:                   "127.0.0.1:3002",
		CacheSize:                1024,
		WatchDelay:               2000,
		MinHeight:                d.MinHeight,
		MaxHeight:                d.MaxHeight,
		AltitudeShadingFactor:    d.AltitudeShadingFactor,
		ShadingReferenceAltitude: d.ShadingReferenceAltitude,
		MinAltitudeShading:       d.MinAltitudeShading,
		MaxAltitudeShading:       d.MaxAltitudeShading,
		ShadeBalanceFactor:       d.ShadeBalanceFactor,
		Title:                    d.Title,
		Scales:                   "1",
	}
}

func configPath() string {
	path := os.Getenv("REGIONTILES_CONFIG")
	if path == "" {
		path = "config.json"
	}
	return path
}

// loadConfig reads .env and then json config over defaults, missing files are fine.
func loadConfig() (RegionTilesConfig, error) {
	cfg := defaultConfig()
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	b, err := os.ReadFile(configPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	err = json.Unmarshal(b, &cfg)
	return cfg, err
}

func (cfg *RegionTilesConfig) renderSettings() (render.Settings, error) {
	s := render.DefaultSettings()
	s.ColorMapFile = cfg.ColorMap
	s.BiomeMapFile = cfg.BiomeMap
	s.Debug = cfg.Debug
	s.MinHeight = cfg.MinHeight
	s.MaxHeight = cfg.MaxHeight
	s.AltitudeShadingFactor = cfg.AltitudeShadingFactor
	s.ShadingReferenceAltitude = cfg.ShadingReferenceAltitude
	s.MinAltitudeShading = cfg.MinAltitudeShading
	s.MaxAltitudeShading = cfg.MaxAltitudeShading
	s.ShadeBalanceFactor = cfg.ShadeBalanceFactor
	s.Title = cfg.Title
	scales, err := render.ParseScales(cfg.Scales)
	if err != nil {
		return s, fmt.Errorf("%w: %w", errConfig, err)
	}
	s.Scales = scales
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%w: %w", errConfig, err)
	}
	return s, nil
}

func (cfg *RegionTilesConfig) regionRect() (*chunkStorage.Rect, error) {
	if cfg.RegionLimitRect == "" {
		return nil, nil
	}
	r, err := chunkStorage.ParseRect(cfg.RegionLimitRect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	return r, nil
}

func (cfg *RegionTilesConfig) threads() (int, error) {
	if cfg.Threads < 0 {
		return 0, fmt.Errorf("%w: thread count %d is negative", errConfig, cfg.Threads)
	}
	if cfg.Threads > 0 {
		return cfg.Threads, nil
	}
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU(), nil
	}
	return n, nil
}

// heightString keeps unbounded heights readable in logs.
func heightString(h int) string {
	switch h {
	case math.MinInt32:
		return "-inf"
	case math.MaxInt32:
		return "+inf"
	}
	return fmt.Sprint(h)
}
