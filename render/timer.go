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

package render

import (
	"fmt"
	"time"
)

// Timer accumulates stage durations of one worker, workers are merged after join.
type Timer struct {
	RegionLoading  time.Duration
	PreRendering   time.Duration
	PostProcessing time.Duration
	ImageSaving    time.Duration
	Total          time.Duration

	RegionCount  int
	SectionCount int
	BytesWritten int64
}

func (t *Timer) Merge(o *Timer) {
	t.RegionLoading += o.RegionLoading
	t.PreRendering += o.PreRendering
	t.PostProcessing += o.PostProcessing
	t.ImageSaving += o.ImageSaving
	t.Total += o.Total
	t.RegionCount += o.RegionCount
	t.SectionCount += o.SectionCount
	t.BytesWritten += o.BytesWritten
}

func per(ms float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return ms / float64(n)
}

// FormatTime gives milliseconds total, per region and per section.
func (t *Timer) FormatTime(name string, d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return fmt.Sprintf("%20s: % 8d   % 8.2f   % 8.4f", name, d.Milliseconds(), per(ms, t.RegionCount), per(ms, t.SectionCount))
}

func (t *Timer) Lines() []string {
	return []string{
		t.FormatTime("Loading", t.RegionLoading),
		t.FormatTime("Pre-rendering", t.PreRendering),
		t.FormatTime("Post-processing", t.PostProcessing),
		t.FormatTime("Image saving", t.ImageSaving),
		t.FormatTime("Total", t.Total),
	}
}
