/*
NAME
  variables.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"strconv"

	"github.com/pkg/errors"
)

// Config map Keys, one per named field a string-keyed override can reach.
const (
	KeyMode          = "mode"
	KeyTileW         = "TileW"
	KeyTileH         = "TileH"
	KeyTileCacheSize = "TileCacheSize"
	KeyBits          = "Bits"
	KeyDCTDelta      = "DCTDelta"
	KeyDCTPlanes     = "DCTPlanes"
	KeyDCTBudget     = "DCTBudget"
	KeyQuality       = "Quality"
	KeyStart         = "Start"
	KeyFrames        = "Frames"
	KeyScale         = "Scale"
)

// Default variable values, used by Validate when a field is out of range.
const (
	defaultTileW         = 8
	defaultTileH         = 8
	defaultTileCacheSize = 256
	defaultBits          = 8
	defaultDCTDelta      = 0
	defaultDCTPlanes     = 64
	defaultDCTBudget     = 0
	defaultQuality       = 50
	defaultFrames        = -1 // -1 means "all remaining frames"
	defaultScale         = 1
)

// Variables describes pixelbridge's configuration fields: name, a function
// to apply a string override (Update), and a function to default and
// range-check the field (Validate).
var Variables = []struct {
	Name     string
	Update   func(*Config, string)
	Validate func(*Config) error
}{
	{
		Name: KeyMode,
		Update: func(c *Config, v string) { c.Mode = v },
		Validate: func(c *Config) error {
			switch c.Mode {
			case ModeFramebuffer, ModeFlat, ModeCache, ModeDCT, ModeIT, ModeCount, ModeFlow:
				return nil
			default:
				return errors.Errorf("config: invalid mode %q", c.Mode)
			}
		},
	},
	{
		Name:   KeyTileW,
		Update: func(c *Config, v string) { c.TileW = parseInt(KeyTileW, v, c) },
		Validate: func(c *Config) error {
			if c.TileW <= 0 {
				c.LogInvalidField(KeyTileW, defaultTileW)
				c.TileW = defaultTileW
			}
			return nil
		},
	},
	{
		Name:   KeyTileH,
		Update: func(c *Config, v string) { c.TileH = parseInt(KeyTileH, v, c) },
		Validate: func(c *Config) error {
			if c.TileH <= 0 {
				c.LogInvalidField(KeyTileH, defaultTileH)
				c.TileH = defaultTileH
			}
			return nil
		},
	},
	{
		Name:   KeyTileCacheSize,
		Update: func(c *Config, v string) { c.TileCacheSize = parseInt(KeyTileCacheSize, v, c) },
		Validate: func(c *Config) error {
			if c.Mode != ModeCache {
				return nil
			}
			if c.TileCacheSize <= 0 {
				c.LogInvalidField(KeyTileCacheSize, defaultTileCacheSize)
				c.TileCacheSize = defaultTileCacheSize
			}
			return nil
		},
	},
	{
		Name:   KeyBits,
		Update: func(c *Config, v string) { c.Bits = parseInt(KeyBits, v, c) },
		Validate: func(c *Config) error {
			if c.Bits < 1 || c.Bits > 8 {
				c.LogInvalidField(KeyBits, defaultBits)
				c.Bits = defaultBits
			}
			return nil
		},
	},
	{
		Name: KeyDCTDelta,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				c.LogInvalidField(KeyDCTDelta, defaultDCTDelta)
				return
			}
			c.DCTDelta = n
		},
		Validate: func(c *Config) error {
			if c.DCTDelta < 0 {
				c.LogInvalidField(KeyDCTDelta, defaultDCTDelta)
				c.DCTDelta = defaultDCTDelta
			}
			return nil
		},
	},
	{
		Name:   KeyDCTPlanes,
		Update: func(c *Config, v string) { c.DCTPlanes = parseInt(KeyDCTPlanes, v, c) },
		Validate: func(c *Config) error {
			if c.DCTPlanes <= 0 || c.DCTPlanes > 64 {
				c.LogInvalidField(KeyDCTPlanes, defaultDCTPlanes)
				c.DCTPlanes = defaultDCTPlanes
			}
			return nil
		},
	},
	{
		Name:   KeyDCTBudget,
		Update: func(c *Config, v string) { c.DCTBudget = parseInt(KeyDCTBudget, v, c) },
		Validate: func(c *Config) error {
			if c.DCTBudget < 0 {
				c.LogInvalidField(KeyDCTBudget, defaultDCTBudget)
				c.DCTBudget = defaultDCTBudget
			}
			return nil
		},
	},
	{
		Name:   KeyQuality,
		Update: func(c *Config, v string) { c.Quality = parseInt(KeyQuality, v, c) },
		Validate: func(c *Config) error {
			if c.Quality < 1 || c.Quality > 100 {
				c.LogInvalidField(KeyQuality, defaultQuality)
				c.Quality = defaultQuality
			}
			return nil
		},
	},
	{
		Name:   KeyStart,
		Update: func(c *Config, v string) { c.Start = parseInt(KeyStart, v, c) },
		Validate: func(c *Config) error {
			if c.Start < 0 {
				c.LogInvalidField(KeyStart, 0)
				c.Start = 0
			}
			return nil
		},
	},
	{
		Name:   KeyFrames,
		Update: func(c *Config, v string) { c.Frames = parseInt(KeyFrames, v, c) },
		Validate: func(c *Config) error {
			if c.Frames == 0 {
				c.LogInvalidField(KeyFrames, defaultFrames)
				c.Frames = defaultFrames
			}
			return nil
		},
	},
	{
		Name:   KeyScale,
		Update: func(c *Config, v string) { c.Scale = parseInt(KeyScale, v, c) },
		Validate: func(c *Config) error {
			if c.Scale <= 0 {
				c.LogInvalidField(KeyScale, defaultScale)
				c.Scale = defaultScale
			}
			return nil
		},
	},
	{
		Name: "VideoFile",
		Validate: func(c *Config) error {
			if c.VideoFile == "" {
				return errors.New("config: video-file argument is required")
			}
			return nil
		},
	},
	{
		Name: "Subregion",
		Validate: func(c *Config) error {
			if !c.Subregion {
				return nil
			}
			if c.SubW <= 0 || c.SubH <= 0 || c.SubX < 0 || c.SubY < 0 {
				return errors.New("config: invalid subregion")
			}
			return nil
		},
	},
	{
		Name: "Rewind",
		Validate: func(c *Config) error {
			if !c.Rewind {
				return nil
			}
			if c.RewindStart < 0 || c.RewindN < 0 {
				return errors.New("config: invalid rewind start/n")
			}
			return nil
		},
	},
}

// parseInt parses v as an int, logging and returning 0 on failure so the
// caller's Validate entry can apply its own default.
func parseInt(name, v string, c *Config) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		c.LogInvalidField(name, 0)
		return 0
	}
	return n
}
