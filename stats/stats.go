/*
NAME
  stats.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package stats accumulates the per-frame tiler counters named as the
// out-of-core "statistics reporting" collaborator of spec.md §1:
// tilecache hit/miss/unchanged rates and dct stack-height-over-time,
// scored with gonum/stat and optionally rendered to a PNG with gonum/plot.
package stats

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pixelbridge/nddi/tilecache"
)

// Reporter accumulates one run's per-frame statistics.
type Reporter struct {
	CacheHitRate    []float64 // hits / (hits+misses+unchanged), one entry per frame
	StackHeightMean []float64 // mean dct.Tiler stack height, one entry per frame
	StackHeightMax  []float64 // max dct.Tiler stack height, one entry per frame
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter { return &Reporter{} }

// AddCacheFrame records one tilecache.Tiler.UpdateDisplay call's Stats.
func (r *Reporter) AddCacheFrame(s tilecache.Stats) {
	total := float64(s.Hits + s.Misses + s.Unchanged)
	if total == 0 {
		r.CacheHitRate = append(r.CacheHitRate, 0)
		return
	}
	r.CacheHitRate = append(r.CacheHitRate, float64(s.Hits)/total)
}

// AddStackHeights records one frame's per-macroblock dct stack heights.
func (r *Reporter) AddStackHeights(heights []int) {
	if len(heights) == 0 {
		r.StackHeightMean = append(r.StackHeightMean, 0)
		r.StackHeightMax = append(r.StackHeightMax, 0)
		return
	}
	vals := make([]float64, len(heights))
	max := heights[0]
	for i, h := range heights {
		vals[i] = float64(h)
		if h > max {
			max = h
		}
	}
	r.StackHeightMean = append(r.StackHeightMean, stat.Mean(vals, nil))
	r.StackHeightMax = append(r.StackHeightMax, float64(max))
}

// MeanCacheHitRate scores the whole run's cache effectiveness with
// stat.Mean over its per-frame hit-rate series.
func (r *Reporter) MeanCacheHitRate() float64 {
	if len(r.CacheHitRate) == 0 {
		return 0
	}
	return stat.Mean(r.CacheHitRate, nil)
}

// Plot renders cache-hit-rate and dct stack-height-over-time to a PNG at
// path, wired as the optional --plot flag named in spec.md §4.8's domain
// stack so --plot is additive, not a violation of spec.md's Non-goals
// around an observability layer.
func (r *Reporter) Plot(path string) error {
	p := plot.New()
	p.Title.Text = "pixelbridge run statistics"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "value"

	if len(r.CacheHitRate) > 0 {
		pts := make(plotter.XYs, len(r.CacheHitRate))
		for i, v := range r.CacheHitRate {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "stats: Plot: cache hit rate line")
		}
		p.Add(line)
		p.Legend.Add("cache hit rate", line)
	}

	if len(r.StackHeightMean) > 0 {
		pts := make(plotter.XYs, len(r.StackHeightMean))
		for i, v := range r.StackHeightMean {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "stats: Plot: stack height line")
		}
		p.Add(line)
		p.Legend.Add("mean dct stack height", line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "stats: Plot: save")
	}
	return nil
}
