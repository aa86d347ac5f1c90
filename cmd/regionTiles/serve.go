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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	imagecache "github.com/maxsupermanhd/RegionTiles/imageCache"
	"github.com/maxsupermanhd/RegionTiles/render"
	"github.com/spf13/cobra"
)

type tileServer struct {
	live     *liveMap
	cache    *imagecache.TileCache
	settings *render.Settings
	started  time.Time
}

type regionEntry struct {
	X    int    `json:"x"`
	Z    int    `json:"z"`
	Tile string `json:"tile"`
}

type regionsResponse struct {
	Title   string        `json:"title"`
	Scales  []int         `json:"scales"`
	MinX    int           `json:"min_x"`
	MaxX    int           `json:"max_x"`
	MinZ    int           `json:"min_z"`
	MaxZ    int           `json:"max_z"`
	Regions []regionEntry `json:"regions"`
}

func tileURL(scale, x, z int) string {
	return fmt.Sprintf("/tiles/%d/%d/%d.png", scale, x, z)
}

func (s *tileServer) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/robots.txt", robotsHandler).Methods("GET")
	router.HandleFunc("/regions", s.regionsHandler).Methods("GET")
	router.HandleFunc("/stats", s.statsHandler).Methods("GET")
	router.HandleFunc("/tiles/{scale:[0-9]+}/{rx:-?[0-9]+}/{rz:-?[0-9]+}.png", s.tileHandler).Methods("GET")
	return router
}

func robotsHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "User-agent: *\nDisallow: /\n\n\n")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *tileServer) regionsHandler(w http.ResponseWriter, r *http.Request) {
	rm := s.live.Snapshot()
	resp := regionsResponse{
		Title:   s.settings.Title,
		Scales:  s.settings.Scales,
		MinX:    rm.MinX,
		MaxX:    rm.MaxX,
		MinZ:    rm.MinZ,
		MaxZ:    rm.MaxZ,
		Regions: []regionEntry{},
	}
	for _, reg := range rm.Regions {
		if reg.ImageFile == "" {
			continue
		}
		resp.Regions = append(resp.Regions, regionEntry{X: reg.X, Z: reg.Z, Tile: tileURL(1, reg.X, reg.Z)})
	}
	writeJSON(w, resp)
}

func (s *tileServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	st := s.cache.GetStats()
	st["uptime"] = humanize.RelTime(s.started, time.Now(), "", "")
	writeJSON(w, st)
}

func (s *tileServer) tileHandler(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	scale, err1 := strconv.Atoi(params["scale"])
	rx, err2 := strconv.Atoi(params["rx"])
	rz, err3 := strconv.Atoi(params["rz"])
	if err := errors.Join(err1, err2, err3); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tile, err := s.cache.Get(imagecache.TileLocation{X: rx, Z: rz, Scale: scale})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Failed to load tile %d:%d 1:%d: %v", rx, rz, scale, err)
		http.Error(w, "failed to load tile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, imagecache.TileFilename(tile.Loc), tile.ModTime, bytes.NewReader(tile.Data))
}

func newServeCmd(cfg *RegionTilesConfig) *cobra.Command {
	watch := false
	cmd := &cobra.Command{
		Use:   "serve <region dir or r.X.Z.mca>...",
		Short: "Render tiles and serve them over http",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, rm, err := runRender(cfg, args, cmd.ErrOrStderr())
			if err != nil && rm == nil {
				return err
			}
			if err != nil {
				log.Printf("Initial render finished with errors: %v", err)
			}
			ctx, cancel := signalContext()
			defer cancel()

			live := &liveMap{rm: rm}
			cache := imagecache.NewTileCache(ctx, log.Default(), imagecache.NewTileStore(cfg.Output, log.Default()), cfg.CacheSize)
			s := &tileServer{
				live:     live,
				cache:    cache,
				settings: r.Settings(),
				started:  time.Now(),
			}
			if watch {
				rw, err := newRegionWatcher(r, live, cfg, cache)
				if err != nil {
					return err
				}
				go func() {
					if err := rw.run(ctx, watchDirs(args)); err != nil {
						log.Printf("Watcher stopped: %v", err)
					}
				}()
			}
			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           withMiddleware(s.router()),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				srv.Shutdown(sctx)
			}()
			log.Printf("Serving %d regions on %s", len(rm.Regions), cfg.Listen)
			err = srv.ListenAndServe()
			cancel()
			cache.WaitExit()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render regions when their files change")
	cmd.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "http listen address")
	cmd.Flags().IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "tiles kept in memory")
	return cmd
}
