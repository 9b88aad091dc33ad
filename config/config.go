/*
NAME
  config.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config holds pixelbridge's driver configuration: the settings
// the --mode tiler is built from, and the bounds and defaults checked by
// Validate, scaled down to the flags of the Driver CLI grammar.
package config

import (
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/logging"
)

// Tiler modes, the argument to --mode.
const (
	ModeFramebuffer = "fb"
	ModeFlat        = "flat"
	ModeCache       = "cache"
	ModeDCT         = "dct"
	ModeIT          = "it"
	ModeCount       = "count"
	ModeFlow        = "flow"
)

// ScaleRange is one "s:e" token of --dctscales: a down-sample factor range
// from the coarsest (s) to the finest (e), expanded by ExpandScales into
// the concrete per-scale factors a ScaledTiler is built with.
type ScaleRange struct {
	Start, End int
}

// Config is the full set of driver settings a pixelbridge invocation is
// built from, populated by the CLI parser in cmd/pixelbridge and checked
// by Validate before any tiler is constructed.
type Config struct {
	Mode string

	// Display/tile geometry.
	TileW, TileH  int // --ts
	TileCacheSize int // --tc
	Bits          int // --bits, significant bits per channel for tilecache fingerprints

	// DCT/IT tiler settings.
	DCTScales  []ScaleRange // --dctscales
	DCTDelta   int64        // --dctdelta
	DCTPlanes  int          // --dctplanes
	DCTBudget  int          // --dctbudget
	DCTSnap    bool         // --dctsnap
	DCTTrim    bool         // --dcttrim
	Quality    int          // --quality

	// Playback range.
	Start  int // --start
	Frames int // --frames

	// Rewind mode: buffer RewindN frames starting at RewindStart, then
	// replay them in a loop.
	RewindStart int
	RewindN     int
	Rewind      bool // --rewind was given

	RecordFile string // --record

	SubX, SubY, SubW, SubH int // --subregion
	Subregion              bool

	Scale int // --scale, uniform down-scale factor applied ahead of tiling

	PlotFile string // --plot, optional cache-hit-rate/stack-height chart

	VideoFile string // positional <video-file>

	Logger   logging.Logger
	LogLevel int8
}

// ExpandScales turns the coarsest:finest factor ranges of DCTScales into
// the concrete, descending factor list a dct.ScaledConfig is built with: a
// halving series from Start down to End, finest scale last so
// index 0 of the resulting slice is always the coarsest (matching
// dct.ScaledTiler's zOffset = scaleIndex * NumPlanes stacking order).
func (c Config) ExpandScales() ([]int, error) {
	var scales []int
	for _, r := range c.DCTScales {
		if r.Start <= 0 || r.End <= 0 || r.Start < r.End {
			return nil, errors.Errorf("config: invalid dctscales range %d:%d", r.Start, r.End)
		}
		for f := r.Start; f >= r.End; f /= 2 {
			scales = append(scales, f)
		}
	}
	if len(scales) == 0 {
		scales = []int{1}
	}
	return scales, nil
}

// Validate checks every field a tiler will be built from, defaulting and
// logging where spec.md leaves a value unconstrained, iterating the
// Variables table the same way Update does.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			if err := v.Validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update applies string-keyed overrides, the same remote-reconfiguration
// shape as a NetSender-style config exchange; pixelbridge's own CLI parser
// builds a Config directly and rarely needs this, but it keeps Config and
// Variables in step with each other for any caller that does.
func (c *Config) Update(vars map[string]string) {
	for _, v := range Variables {
		if s, ok := vars[v.Name]; ok && v.Update != nil {
			v.Update(c, s)
		}
	}
}

// LogInvalidField logs that a field was missing or out of range and what
// default it was set to.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Log(logging.Warning, name+" bad or unset, defaulting", name, def)
}
