/*
NAME
  main.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Pixelbridge drives an nDDI display from a video file under one of the
// tiling strategies of spec.md §4, per the CLI grammar of spec.md §6.
// Several flags take more than one following argument, so parseArgs (see
// cli.go) walks os.Args by hand rather than using the flag package.
package main

import (
	"fmt"
	"os"

	"github.com/pixelbridge/nddi/config"
	"github.com/pixelbridge/nddi/dct"
	"github.com/pixelbridge/nddi/driver"
	"github.com/pixelbridge/nddi/logging"
	"github.com/pixelbridge/nddi/recorder"
	"github.com/pixelbridge/nddi/stats"
	"github.com/pixelbridge/nddi/tilecache"
	"github.com/pixelbridge/nddi/tiler"
)

// Logging defaults.
const (
	logPath      = "/var/log/pixelbridge/pixelbridge.log"
	logMaxSizeMB = 50
	logMaxBackup = 5
	logMaxAgeDay = 28
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "pixelbridge:", err)
		usage()
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Path:       logPath,
		MaxSizeMB:  logMaxSizeMB,
		MaxBackups: logMaxBackup,
		MaxAgeDays: logMaxAgeDay,
	}, logging.Info)
	defer log.Sync()
	cfg.Logger = log

	if err := cfg.Validate(); err != nil {
		log.Log(logging.Error, "invalid configuration", "error", err)
		fmt.Fprintln(os.Stderr, "pixelbridge:", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Log(logging.Error, "run failed", "error", err)
		fmt.Fprintln(os.Stderr, "pixelbridge:", err)
		os.Exit(1)
	}
}

// run opens the video source, probes its first frame to learn the
// display's width/height (spec.md §4.1's Frame Volume and Display are
// both fixed-size, so they must be allocated before any frame is tiled),
// builds the mode's tiler at that size, then re-injects the probe frame
// via driver.Prime so it is still tiled as frame 0.
func run(cfg config.Config, log logging.Logger) error {
	src := driver.NewScaledSource(driver.NewCVSource(cfg.VideoFile), cfg.Scale)
	if err := src.Start(); err != nil {
		return err
	}
	first, w, h, err := src.NextFrame()
	if err != nil {
		src.Stop()
		return err
	}
	src = driver.Prime(src, first, w, h)

	t, err := buildTiler(cfg, w, h)
	if err != nil {
		return err
	}

	var rec *recorder.Recorder
	if cfg.RecordFile != "" {
		rec, err = recorder.New(cfg.RecordFile, log)
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	var rep *stats.Reporter
	if cfg.PlotFile != "" {
		rep = stats.NewReporter()
	}

	if err := driver.Loop(cfg, src, t, rec, rep, log); err != nil {
		return err
	}

	if rep != nil {
		if err := rep.Plot(cfg.PlotFile); err != nil {
			log.Log(logging.Warning, "pixelbridge: failed to write plot", "error", err)
		}
	}
	return nil
}

// buildTiler constructs the active tiler for cfg.Mode at the probed
// display dimensions. --mode fb, flat, count and flow (the identity
// passthrough and diagnostic modes, none of which needs content-addressed
// reuse) share the cache tiler's machinery with a tile size equal to the
// whole display; --mode cache builds the CachedTiler of spec.md §4.5;
// --mode dct and it build the Dct/ScaledDct tiler of spec.md §4.6 (no
// separate IT transform is implemented, so --mode it reuses the DCT
// tiler — see DESIGN.md).
func buildTiler(cfg config.Config, w, h int) (tiler.Tiler, error) {
	switch cfg.Mode {
	case config.ModeCache:
		return tilecache.New(tilecache.Config{
			DisplayW: w, DisplayH: h,
			TileW: cfg.TileW, TileH: cfg.TileH,
			MaxTiles: cfg.TileCacheSize,
			Bits:     cfg.Bits,
		})
	case config.ModeDCT, config.ModeIT:
		scales, err := cfg.ExpandScales()
		if err != nil {
			return nil, err
		}
		if len(scales) == 1 && scales[0] == 1 {
			return dct.New(dct.Config{DisplayW: w, DisplayH: h, Quality: cfg.Quality})
		}
		return dct.NewScaled(dct.ScaledConfig{
			DisplayW:    w,
			DisplayH:    h,
			Quality:     cfg.Quality,
			Scales:      scales,
			Strategy:    dctStrategy(cfg),
			Delta:       cfg.DCTDelta,
			MaxPlanes:   cfg.DCTPlanes,
			BudgetBytes: cfg.DCTBudget,
		})
	default:
		return tilecache.New(tilecache.Config{
			DisplayW: w, DisplayH: h,
			TileW: w, TileH: h,
			MaxTiles: 1,
			Bits:     8,
		})
	}
}

func dctStrategy(cfg config.Config) dct.Strategy {
	switch {
	case cfg.DCTBudget > 0:
		return dct.StrategyBudget
	case cfg.DCTSnap:
		return dct.StrategySnapToZero
	case cfg.DCTTrim:
		return dct.StrategyTrim
	default:
		return dct.StrategyNone
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: pixelbridge --mode <fb|flat|cache|dct|it|count|flow>
            [--ts <w> <h>] [--tc <n>] [--bits <1..8>]
            [--dctscales s:e[,s:e...]] [--dctdelta n] [--dctplanes n]
            [--dctbudget bytes] [--dctsnap] [--dcttrim]
            [--quality 1..100] [--start n] [--frames n]
            [--rewind start n] [--record file] [--subregion x y w h]
            [--scale n] [--plot file] <video-file>`)
}
