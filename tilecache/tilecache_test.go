package tilecache

import "testing"

// solidFrame builds a w x h RGB888 buffer where every tile-sized block
// (tw x th) is filled with its own solid color, in row-major tile order.
func solidFrame(w, h, tw, th int, colors [][3]byte) []byte {
	buf := make([]byte, w*h*3)
	tilesPerRow := w / tw
	for y := 0; y < h; y++ {
		tj := y / th
		for x := 0; x < w; x++ {
			ti := x / tw
			c := colors[tj*tilesPerRow+ti]
			o := (y*w + x) * 3
			buf[o], buf[o+1], buf[o+2] = c[0], c[1], c[2]
		}
	}
	return buf
}

// TestPushSameFrameTwiceHitsEverything is scenario S1: display 16x16, tile
// 8x8, max_tiles 4, bits 8. Four distinct tiles miss once; pushing the same
// frame again hits every tile as unchanged.
func TestPushSameFrameTwiceHitsEverything(t *testing.T) {
	cfg := Config{DisplayW: 16, DisplayH: 16, TileW: 8, TileH: 8, MaxTiles: 4, Bits: 8, Hasher: HasherCRC32}
	tc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	colors := [][3]byte{{10, 20, 30}, {40, 50, 60}, {70, 80, 90}, {100, 110, 120}}
	frame := solidFrame(16, 16, 8, 8, colors)

	if err := tc.UpdateDisplay(frame, 16, 16); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Misses != 4 {
		t.Fatalf("first push: misses = %d, want 4", tc.Stats.Misses)
	}
	if tc.Stats.CacheSize != 4 {
		t.Fatalf("first push: cache size = %d, want 4", tc.Stats.CacheSize)
	}

	if err := tc.UpdateDisplay(frame, 16, 16); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Misses != 0 {
		t.Fatalf("second push: misses = %d, want 0", tc.Stats.Misses)
	}
	if tc.Stats.Unchanged != 4 {
		t.Fatalf("second push: unchanged = %d, want 4", tc.Stats.Unchanged)
	}
}

// TestSecondMissEvictsFirst is scenario S2: display 16x8, tile 8x8,
// max_tiles 1. Pushing a frame with two distinct tiles costs 2 misses, the
// second evicting the first; the cache never exceeds its configured size
// (Testable Property 2).
func TestSecondMissEvictsFirst(t *testing.T) {
	cfg := Config{DisplayW: 16, DisplayH: 8, TileW: 8, TileH: 8, MaxTiles: 1, Bits: 8, Hasher: HasherCRC32}
	tc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	frame := solidFrame(16, 8, 8, 8, [][3]byte{{200, 0, 0}, {0, 200, 0}})

	if err := tc.UpdateDisplay(frame, 16, 8); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Misses != 2 {
		t.Fatalf("misses = %d, want 2", tc.Stats.Misses)
	}
	if tc.Stats.CacheSize != 1 {
		t.Fatalf("cache size = %d, want 1", tc.Stats.CacheSize)
	}
}

// TestCacheSizeNeverExceedsMaxTiles is Testable Property 2: across many
// distinct frames, the resident entry count never grows past MaxTiles.
func TestCacheSizeNeverExceedsMaxTiles(t *testing.T) {
	cfg := Config{DisplayW: 32, DisplayH: 8, TileW: 8, TileH: 8, MaxTiles: 2, Bits: 8, Hasher: HasherCRC32}
	tc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 10; n++ {
		colors := [][3]byte{
			{byte(n), 1, 2}, {byte(n + 1), 3, 4}, {byte(n + 2), 5, 6}, {byte(n + 3), 7, 8},
		}
		frame := solidFrame(32, 8, 8, 8, colors)
		if err := tc.UpdateDisplay(frame, 32, 8); err != nil {
			t.Fatal(err)
		}
		if tc.Stats.CacheSize > cfg.MaxTiles {
			t.Fatalf("round %d: cache size = %d, want <= %d", n, tc.Stats.CacheSize, cfg.MaxTiles)
		}
	}
}

// TestQualityMaskIdempotence is Testable Property 4: two tiles differing
// only in bits below the configured significance threshold fingerprint
// identically, so the second is recorded as a hit rather than a miss.
func TestQualityMaskIdempotence(t *testing.T) {
	cfg := Config{DisplayW: 8, DisplayH: 8, TileW: 8, TileH: 8, MaxTiles: 2, Bits: 4, Hasher: HasherCRC32}
	tc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	base := solidFrame(8, 8, 8, 8, [][3]byte{{0xA0, 0xB0, 0xC0}})
	if err := tc.UpdateDisplay(base, 8, 8); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Misses != 1 {
		t.Fatalf("first push: misses = %d, want 1", tc.Stats.Misses)
	}

	// Differs only in the low 4 bits of every channel: masked to the top 4
	// bits, it is identical to base.
	noisy := solidFrame(8, 8, 8, 8, [][3]byte{{0xA5, 0xB3, 0xC7}})
	if err := tc.UpdateDisplay(noisy, 8, 8); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Misses != 0 {
		t.Fatalf("noisy push: misses = %d, want 0", tc.Stats.Misses)
	}
	if tc.Stats.Unchanged != 1 {
		t.Fatalf("noisy push: unchanged = %d, want 1", tc.Stats.Unchanged)
	}
}

// TestTrivialHasherDiffersFromCRC32 exercises the trivial fingerprint path.
func TestTrivialHasherDiffersFromCRC32(t *testing.T) {
	cfg := Config{DisplayW: 8, DisplayH: 8, TileW: 8, TileH: 8, MaxTiles: 1, Bits: 8, Hasher: HasherTrivial}
	tc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	frame := solidFrame(8, 8, 8, 8, [][3]byte{{1, 2, 3}})
	tile := extractTile(frame, 8, 8, 0, 0, 8, 8)
	if Fingerprint(tile, 8, HasherTrivial) == Fingerprint(tile, 8, HasherCRC32) {
		t.Fatal("trivial fingerprint equals the CRC-32 fingerprint")
	}
	if err := tc.UpdateDisplay(frame, 8, 8); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Misses != 1 {
		t.Fatalf("misses = %d, want 1", tc.Stats.Misses)
	}
	if err := tc.UpdateDisplay(frame, 8, 8); err != nil {
		t.Fatal(err)
	}
	if tc.Stats.Unchanged != 1 {
		t.Fatalf("second push: unchanged = %d, want 1", tc.Stats.Unchanged)
	}
}
