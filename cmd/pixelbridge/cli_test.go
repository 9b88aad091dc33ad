package main

import "testing"

func TestParseArgsBasicMode(t *testing.T) {
	cfg, err := parseArgs([]string{"--mode", "dct", "--quality", "40", "clip.mp4"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "dct" || cfg.Quality != 40 || cfg.VideoFile != "clip.mp4" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestParseArgsMultiValueFlags(t *testing.T) {
	cfg, err := parseArgs([]string{
		"--mode", "cache",
		"--ts", "16", "16",
		"--rewind", "10", "5",
		"--subregion", "1", "2", "30", "40",
		"clip.mp4",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TileW != 16 || cfg.TileH != 16 {
		t.Fatalf("ts not parsed: %+v", cfg)
	}
	if !cfg.Rewind || cfg.RewindStart != 10 || cfg.RewindN != 5 {
		t.Fatalf("rewind not parsed: %+v", cfg)
	}
	if !cfg.Subregion || cfg.SubX != 1 || cfg.SubY != 2 || cfg.SubW != 30 || cfg.SubH != 40 {
		t.Fatalf("subregion not parsed: %+v", cfg)
	}
}

func TestParseArgsDctScales(t *testing.T) {
	cfg, err := parseArgs([]string{"--mode", "dct", "--dctscales", "4:1,2:2", "clip.mp4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.DCTScales) != 2 || cfg.DCTScales[0].Start != 4 || cfg.DCTScales[0].End != 1 {
		t.Fatalf("dctscales not parsed: %+v", cfg.DCTScales)
	}
}

func TestParseArgsRejectsMissingVideoFile(t *testing.T) {
	if _, err := parseArgs([]string{"--mode", "dct"}); err == nil {
		t.Fatal("expected error for missing video-file")
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseArgs([]string{"--bogus", "clip.mp4"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
