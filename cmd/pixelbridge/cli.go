/*
NAME
  cli.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/config"
)

// parseArgs implements the Driver CLI grammar of spec.md §6:
//
//	pixelbridge --mode <fb|flat|cache|dct|it|count|flow>
//	            [--ts <w> <h>] [--tc <n>] [--bits <1..8>]
//	            [--dctscales s:e[,s:e...]] [--dctdelta n] [--dctplanes n]
//	            [--dctbudget bytes] [--dctsnap] [--dcttrim]
//	            [--quality 1..100] [--start n] [--frames n]
//	            [--rewind start n] [--record file] [--subregion x y w h]
//	            [--scale n] [--plot file] <video-file>
//
// Several flags here consume more than one following argument (--ts,
// --rewind, --subregion), which the stdlib flag package cannot express
// directly, so this grammar is walked by hand the way spec.md §6 states
// it (flag parsing, not flag.FlagSet, is the CLI's job).
func parseArgs(args []string) (config.Config, error) {
	cfg := config.Config{Frames: -1, Scale: 1}

	next := func(i *int, flagName string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", errors.Errorf("--%s: missing argument", flagName)
		}
		return args[*i], nil
	}
	nextInt := func(i *int, flagName string) (int, error) {
		s, err := next(i, flagName)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.Wrapf(err, "--%s: invalid integer %q", flagName, s)
		}
		return n, nil
	}

	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "--mode":
			s, err := next(&i, "mode")
			if err != nil {
				return cfg, err
			}
			cfg.Mode = s
		case "--ts":
			w, err := nextInt(&i, "ts")
			if err != nil {
				return cfg, err
			}
			h, err := nextInt(&i, "ts")
			if err != nil {
				return cfg, err
			}
			cfg.TileW, cfg.TileH = w, h
		case "--tc":
			n, err := nextInt(&i, "tc")
			if err != nil {
				return cfg, err
			}
			cfg.TileCacheSize = n
		case "--bits":
			n, err := nextInt(&i, "bits")
			if err != nil {
				return cfg, err
			}
			cfg.Bits = n
		case "--dctscales":
			s, err := next(&i, "dctscales")
			if err != nil {
				return cfg, err
			}
			ranges, err := parseScaleRanges(s)
			if err != nil {
				return cfg, err
			}
			cfg.DCTScales = ranges
		case "--dctdelta":
			n, err := nextInt(&i, "dctdelta")
			if err != nil {
				return cfg, err
			}
			cfg.DCTDelta = int64(n)
		case "--dctplanes":
			n, err := nextInt(&i, "dctplanes")
			if err != nil {
				return cfg, err
			}
			cfg.DCTPlanes = n
		case "--dctbudget":
			n, err := nextInt(&i, "dctbudget")
			if err != nil {
				return cfg, err
			}
			cfg.DCTBudget = n
		case "--dctsnap":
			cfg.DCTSnap = true
		case "--dcttrim":
			cfg.DCTTrim = true
		case "--quality":
			n, err := nextInt(&i, "quality")
			if err != nil {
				return cfg, err
			}
			cfg.Quality = n
		case "--start":
			n, err := nextInt(&i, "start")
			if err != nil {
				return cfg, err
			}
			cfg.Start = n
		case "--frames":
			n, err := nextInt(&i, "frames")
			if err != nil {
				return cfg, err
			}
			cfg.Frames = n
		case "--rewind":
			start, err := nextInt(&i, "rewind")
			if err != nil {
				return cfg, err
			}
			n, err := nextInt(&i, "rewind")
			if err != nil {
				return cfg, err
			}
			cfg.Rewind = true
			cfg.RewindStart, cfg.RewindN = start, n
		case "--record":
			s, err := next(&i, "record")
			if err != nil {
				return cfg, err
			}
			cfg.RecordFile = s
		case "--subregion":
			x, err := nextInt(&i, "subregion")
			if err != nil {
				return cfg, err
			}
			y, err := nextInt(&i, "subregion")
			if err != nil {
				return cfg, err
			}
			w, err := nextInt(&i, "subregion")
			if err != nil {
				return cfg, err
			}
			h, err := nextInt(&i, "subregion")
			if err != nil {
				return cfg, err
			}
			cfg.Subregion = true
			cfg.SubX, cfg.SubY, cfg.SubW, cfg.SubH = x, y, w, h
		case "--scale":
			n, err := nextInt(&i, "scale")
			if err != nil {
				return cfg, err
			}
			cfg.Scale = n
		case "--plot":
			s, err := next(&i, "plot")
			if err != nil {
				return cfg, err
			}
			cfg.PlotFile = s
		default:
			if strings.HasPrefix(a, "--") {
				return cfg, errors.Errorf("unknown flag %q", a)
			}
			positional = append(positional, a)
		}
	}

	if len(positional) != 1 {
		return cfg, errors.Errorf("expected exactly one video-file argument, got %d", len(positional))
	}
	cfg.VideoFile = positional[0]
	return cfg, nil
}

// parseScaleRanges parses the "s:e[,s:e...]" syntax of --dctscales into
// config.ScaleRange values.
func parseScaleRanges(s string) ([]config.ScaleRange, error) {
	var ranges []config.ScaleRange
	for _, tok := range strings.Split(s, ",") {
		parts := strings.SplitN(tok, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("--dctscales: invalid range %q, want s:e", tok)
		}
		start, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "--dctscales: invalid start %q", parts[0])
		}
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "--dctscales: invalid end %q", parts[1])
		}
		ranges = append(ranges, config.ScaleRange{Start: start, End: end})
	}
	return ranges, nil
}
