// Package tilecache implements the content-addressed tile cache (spec.md
// §4.5, "CachedTiler"): an incoming RGB frame is cut into fixed-size
// tiles, each tile is fingerprinted, and only tiles whose fingerprint is
// new to the cache are pushed into the Frame Volume. Unchanged tiles cost
// nothing; previously-seen tiles that moved within the frame cost only a
// coefficient retarget.
package tilecache

import (
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

// Config describes the geometry and fingerprinting policy of a cache.
type Config struct {
	DisplayW, DisplayH int
	TileW, TileH       int
	MaxTiles           int
	Bits               int // significant bits per channel retained by the fingerprint
	Hasher             Hasher
}

func (c Config) validate() error {
	if c.DisplayW <= 0 || c.DisplayH <= 0 || c.TileW <= 0 || c.TileH <= 0 || c.MaxTiles <= 0 {
		return errors.Wrap(display.ErrInvalidArgument, "tilecache: non-positive dimension")
	}
	if c.Bits < 1 || c.Bits > 8 {
		return errors.Wrap(display.ErrInvalidArgument, "tilecache: bits must be in [1,8]")
	}
	return nil
}

// cacheEntry is one resident tile: its assigned Frame-Volume z index, the
// fingerprint of the content currently stored there, and the value of the
// per-tile visit counter ("age") when it was last touched.
type cacheEntry struct {
	zIndex   int
	checksum uint64
	age      uint64
}

// Stats tallies one UpdateDisplay call's cache behaviour.
type Stats struct {
	Hits      uint64 // tile unchanged in content but moved to a new screen position
	Misses    uint64 // tile content not found in the cache
	Unchanged uint64 // tile already displayed at this position with this content
	CacheSize int    // resident tile count after this call
}

// Tiler is the CachedTiler tiling strategy: it owns a Display sized to hold
// at most MaxTiles distinct tiles and drives it from successive RGB frames.
type Tiler struct {
	cfg                Config
	tileMapW, tileMapH int
	d                  *display.Display

	byChecksum map[uint64]*cacheEntry
	byAge      map[uint64]*cacheEntry
	// displayMap holds a non-owning reference to the cacheEntry currently
	// shown at each tile-map position, or nil if never painted.
	displayMap [][]*cacheEntry

	ageCounter uint64

	Stats Stats
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// New allocates the Tiler's Display (sized Config.TileW x Config.TileH x
// Config.MaxTiles) and initialises its coefficient planes so that every
// screen tile (i,j) starts out retargeting Frame-Volume z index 0.
func New(cfg Config) (*Tiler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d, err := display.New(display.Config{
		FVDims:    []int{cfg.TileW, cfg.TileH, cfg.MaxTiles},
		DisplayW:  cfg.DisplayW,
		DisplayH:  cfg.DisplayH,
		NumPlanes: 1,
		IVSize:    2,
	})
	if err != nil {
		return nil, errors.Wrap(err, "tilecache: New")
	}
	tileMapW, tileMapH := ceilDiv(cfg.DisplayW, cfg.TileW), ceilDiv(cfg.DisplayH, cfg.TileH)
	displayMap := make([][]*cacheEntry, tileMapW)
	for i := range displayMap {
		displayMap[i] = make([]*cacheEntry, tileMapH)
	}
	t := &Tiler{
		cfg:        cfg,
		tileMapW:   tileMapW,
		tileMapH:   tileMapH,
		d:          d,
		byChecksum: make(map[uint64]*cacheEntry),
		byAge:      make(map[uint64]*cacheEntry),
		displayMap: displayMap,
	}
	if err := t.initCoefficientPlanes(); err != nil {
		return nil, errors.Wrap(err, "tilecache: New")
	}
	if err := t.initFrameVolume(); err != nil {
		return nil, errors.Wrap(err, "tilecache: New")
	}
	return t, nil
}

// Display returns the Tiler's underlying Display, for Latch/render.
func (t *Tiler) Display() *display.Display { return t.d }

// initCoefficientPlanes sets each tile-map cell's matrix to translate the
// screen coordinate down to a tile-local Frame-Volume coordinate, with z
// (Frame-Volume axis 2) initially retargeting z index 0, and sets plane 0's
// scaler to full everywhere (there is only one coefficient plane).
func (t *Tiler) initCoefficientPlanes() error {
	full, err := t.d.GetFullScaler()
	if err != nil {
		return err
	}
	s := pixel.NewScaler(int16(full), int16(full), int16(full), 0)
	if err := t.d.FillScaler(s, []int{0, 0, 0}, []int{t.cfg.DisplayW - 1, t.cfg.DisplayH - 1, 0}); err != nil {
		return err
	}
	for j := 0; j < t.tileMapH; j++ {
		for i := 0; i < t.tileMapW; i++ {
			start, end := t.tileScreenRegion(i, j)
			values := []coeff.Value{
				coeff.MatrixXOffset(-int64(i * t.cfg.TileW)), coeff.Unchanged,
				coeff.MatrixYOffset(-int64(j * t.cfg.TileH)), coeff.Unchanged,
				coeff.Literal(0), coeff.Unchanged,
			}
			if err := t.d.FillCoefficientMatrix(values, start, end); err != nil {
				return err
			}
		}
	}
	return nil
}

// tileScreenRegion returns the [start,end] screen-coordinate (plane 0)
// region covered by tile-map cell (i,j), clipped to the display when the
// display's dimensions are not an exact multiple of the tile size.
func (t *Tiler) tileScreenRegion(i, j int) (start, end []int) {
	x0, y0 := i*t.cfg.TileW, j*t.cfg.TileH
	x1, y1 := x0+t.cfg.TileW-1, y0+t.cfg.TileH-1
	if x1 > t.cfg.DisplayW-1 {
		x1 = t.cfg.DisplayW - 1
	}
	if y1 > t.cfg.DisplayH-1 {
		y1 = t.cfg.DisplayH - 1
	}
	return []int{x0, y0, 0}, []int{x1, y1, 0}
}

// initFrameVolume paints every resident tile slot white, matching the
// original tiler's debug-visible default for never-written slots, and
// seeds the cache with one entry at z index 0 representing that blank
// content, displayed at every tile-map position — the state the display
// is actually in before the first UpdateDisplay call.
func (t *Tiler) initFrameVolume() error {
	white := pixel.NewPixel(0xff, 0xff, 0xff, 0xff)
	if err := t.d.FillPixel(white, []int{0, 0, 0}, []int{t.cfg.TileW - 1, t.cfg.TileH - 1, t.cfg.MaxTiles - 1}); err != nil {
		return err
	}
	whiteTile := make([]pixel.Pixel, t.cfg.TileW*t.cfg.TileH)
	for i := range whiteTile {
		whiteTile[i] = white
	}
	blank := &cacheEntry{zIndex: 0, checksum: Fingerprint(whiteTile, t.cfg.Bits, t.cfg.Hasher), age: 0}
	t.byChecksum[blank.checksum] = blank
	t.byAge[blank.age] = blank
	for i := range t.displayMap {
		for j := range t.displayMap[i] {
			t.displayMap[i][j] = blank
		}
	}
	return nil
}

// extractTile copies tile (i,j)'s pixels out of an RGB888 frame buffer of
// size w x h, padding with black where the tile runs past the frame edge.
func extractTile(buf []byte, w, h, i, j, tw, th int) []pixel.Pixel {
	out := make([]pixel.Pixel, tw*th)
	x0, y0 := i*tw, j*th
	for dy := 0; dy < th; dy++ {
		y := y0 + dy
		for dx := 0; dx < tw; dx++ {
			x := x0 + dx
			idx := dy*tw + dx
			if x >= w || y >= h {
				out[idx] = pixel.NewPixel(0, 0, 0, 0xff)
				continue
			}
			o := (y*w + x) * 3
			out[idx] = pixel.NewPixel(buf[o], buf[o+1], buf[o+2], 0xff)
		}
	}
	return out
}

// minAgeEntry returns the resident entry with the smallest age: the one
// GetExpiredCacheTile would evict next. The cache holds at most MaxTiles
// entries, so a linear scan is cheap and keeps the eviction policy in one
// obviously-correct place.
func (t *Tiler) minAgeEntry() *cacheEntry {
	var best *cacheEntry
	var bestAge uint64
	for age, e := range t.byAge {
		if best == nil || age < bestAge {
			best, bestAge = e, age
		}
	}
	return best
}

// isTileInUse reports whether e was touched recently enough that every
// tile-map position could plausibly still be showing it (Testable Property
// 3, "no live eviction"): an entry already on screen is never evicted to
// make room for a different tile.
func (t *Tiler) isTileInUse(e *cacheEntry) bool {
	return e.age >= t.ageCounter-uint64(t.tileMapW*t.tileMapH)
}

func (t *Tiler) rekey(e *cacheEntry, checksum uint64, age uint64) {
	delete(t.byChecksum, e.checksum)
	delete(t.byAge, e.age)
	e.checksum, e.age = checksum, age
	t.byChecksum[checksum] = e
	t.byAge[age] = e
}

// UpdateDisplay cuts an RGB888 frame of size w x h into the cache's tile
// grid, pushes only the tiles the cache has not already resident, and
// retargets positions whose content moved. It implements the tiler.Tiler
// interface.
func (t *Tiler) UpdateDisplay(buf []byte, w, h int) error {
	if w != t.cfg.DisplayW || h != t.cfg.DisplayH {
		return errors.Wrap(display.ErrInvalidArgument, "tilecache: UpdateDisplay: size mismatch")
	}
	if len(buf) != w*h*3 {
		return errors.Wrap(display.ErrInvalidArgument, "tilecache: UpdateDisplay: buffer size mismatch")
	}

	var pixelTiles [][]pixel.Pixel
	var pixelStarts [][]int
	var coeffValues []coeff.Value
	var coeffPositions [][2]int
	var coeffStarts [][]int

	stats := Stats{}

	for j := 0; j < t.tileMapH; j++ {
		for i := 0; i < t.tileMapW; i++ {
			t.ageCounter++
			tile := extractTile(buf, w, h, i, j, t.cfg.TileW, t.cfg.TileH)
			checksum := Fingerprint(tile, t.cfg.Bits, t.cfg.Hasher)
			screenStart, _ := t.tileScreenRegion(i, j)

			if e, ok := t.byChecksum[checksum]; ok {
				delete(t.byAge, e.age)
				e.age = t.ageCounter
				t.byAge[e.age] = e
				if t.displayMap[i][j] != e {
					stats.Hits++
					t.displayMap[i][j] = e
					coeffValues = append(coeffValues, coeff.Literal(int64(e.zIndex)))
					coeffPositions = append(coeffPositions, [2]int{2, 0})
					coeffStarts = append(coeffStarts, screenStart)
				} else {
					stats.Unchanged++
				}
				continue
			}

			stats.Misses++
			if len(t.byChecksum) < t.cfg.MaxTiles {
				e := &cacheEntry{zIndex: len(t.byChecksum), checksum: checksum, age: t.ageCounter}
				t.displayMap[i][j] = e
				t.byChecksum[checksum] = e
				t.byAge[e.age] = e
				pixelTiles = append(pixelTiles, tile)
				pixelStarts = append(pixelStarts, []int{0, 0, e.zIndex})
				coeffValues = append(coeffValues, coeff.Literal(int64(e.zIndex)))
				coeffPositions = append(coeffPositions, [2]int{2, 0})
				coeffStarts = append(coeffStarts, screenStart)
				continue
			}

			needRetarget := false
			e := t.displayMap[i][j]
			if e == nil {
				return errors.Wrap(display.ErrCacheConsistency, "tilecache: full cache with unpainted tile-map position")
			}
			if t.isTileInUse(e) {
				victim := t.minAgeEntry()
				if victim == nil {
					return errors.Wrap(display.ErrCacheConsistency, "tilecache: full cache with no eviction candidate")
				}
				e = victim
				needRetarget = true
				t.displayMap[i][j] = e
			}
			t.rekey(e, checksum, t.ageCounter)
			pixelTiles = append(pixelTiles, tile)
			pixelStarts = append(pixelStarts, []int{0, 0, e.zIndex})
			if needRetarget {
				coeffValues = append(coeffValues, coeff.Literal(int64(e.zIndex)))
				coeffPositions = append(coeffPositions, [2]int{2, 0})
				coeffStarts = append(coeffStarts, screenStart)
			}
		}
	}

	if len(pixelTiles) > 0 {
		if err := t.d.CopyPixelTiles(pixelTiles, pixelStarts, [2]int{t.cfg.TileW, t.cfg.TileH}); err != nil {
			return errors.Wrap(err, "tilecache: UpdateDisplay: CopyPixelTiles")
		}
	}
	if len(coeffValues) > 0 {
		if err := t.d.FillCoefficientTiles(coeffValues, coeffPositions, coeffStarts, [2]int{t.cfg.TileW, t.cfg.TileH}); err != nil {
			return errors.Wrap(err, "tilecache: UpdateDisplay: FillCoefficientTiles")
		}
	}

	stats.CacheSize = len(t.byChecksum)
	t.Stats = stats
	return nil
}
