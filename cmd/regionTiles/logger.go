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
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/natefinch/lumberjack"
)

func setupLogging(cfg *RegionTilesConfig) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if cfg.LogsPath == "" {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.MultiWriter(&lumberjack.Logger{
		Filename: cfg.LogsPath,
		MaxSize:  10,
		Compress: true,
	}, os.Stderr))
}

func customLogger(writer io.Writer, params handlers.LogFormatterParams) {
	r := params.Request
	ua := r.Header.Get("user-agent")
	log.Println("["+r.RemoteAddr+"]", r.Method, params.StatusCode, params.Size, r.RequestURI, "["+ua+"]")
}

func withMiddleware(h http.Handler) http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.CustomLoggingHandler(os.Stderr, h, customLogger))
}
