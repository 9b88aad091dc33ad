// Package display implements the nDDI abstract display model: the Input
// Vector, Coefficient Plane stack and Frame Volume memories, the per-pixel
// reconstruction equation, and the full command surface that is the
// interface between client and server (spec.md §3, §4.1, §4.2, §6).
package display

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/framevolume"
	"github.com/pixelbridge/nddi/ivec"
	"github.com/pixelbridge/nddi/pixel"
	"github.com/pixelbridge/nddi/region"
)

// Config describes the memories to allocate at Display construction,
// matching the Initialize wire message's fields (spec.md §6).
type Config struct {
	FVDims       []int
	DisplayW     int
	DisplayH     int
	NumPlanes    int
	IVSize       int
	Fixed8x8     bool // server-side memory-footprint hint; does not alter reconstruction.
	SinglePlane  bool // server-side memory-footprint hint; does not alter reconstruction.
}

// Display owns the three nDDI memories and executes the command surface
// against them. All exported methods are safe for concurrent use; a
// single mutex serialises writers against Render the way spec.md §4.1
// requires UpdateInputVector to be atomic with respect to a concurrent
// Latch.
type Display struct {
	mu sync.Mutex

	cfg Config

	iv     *ivec.Vector
	planes *coeff.Plane
	fv     *framevolume.Volume

	signMode   pixel.SignMode
	fullScaler int32

	initialized bool
}

// New allocates a Display from cfg. Memories persist until Shutdown.
func New(cfg Config) (*Display, error) {
	if len(cfg.FVDims) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "display: New: FVDims must be non-empty")
	}
	if cfg.DisplayW <= 0 || cfg.DisplayH <= 0 || cfg.NumPlanes <= 0 || cfg.IVSize < 2 {
		return nil, errors.Wrap(ErrInvalidArgument, "display: New: bad dimensions")
	}
	iv, err := ivec.New(cfg.IVSize)
	if err != nil {
		return nil, errors.Wrap(err, "display: New")
	}
	d := &Display{
		cfg:         cfg,
		iv:          iv,
		planes:      coeff.NewPlane(cfg.DisplayW, cfg.DisplayH, cfg.NumPlanes, len(cfg.FVDims), cfg.IVSize),
		fv:          framevolume.New(cfg.FVDims),
		fullScaler:  pixel.DefaultFullScaler,
		initialized: true,
	}
	return d, nil
}

func (d *Display) requireInit() error {
	if !d.initialized {
		return ErrNotInitialised
	}
	return nil
}

// DisplayWidth returns the display's pixel width.
func (d *Display) DisplayWidth() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return 0, err
	}
	return d.cfg.DisplayW, nil
}

// DisplayHeight returns the display's pixel height.
func (d *Display) DisplayHeight() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return 0, err
	}
	return d.cfg.DisplayH, nil
}

// NumCoefficientPlanes returns the number of coefficient planes.
func (d *Display) NumCoefficientPlanes() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return 0, err
	}
	return d.cfg.NumPlanes, nil
}

// PutPixel writes one pixel at loc in the Frame Volume.
func (d *Display) PutPixel(p pixel.Pixel, loc []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	r := region.New(loc, loc)
	return d.fv.Fill(r, p)
}

// FillPixel fills the axis-aligned hyper-rectangle [start,end] with p.
func (d *Display) FillPixel(p pixel.Pixel, start, end []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fv.Fill(region.New(start, end), p)
}

// CopyPixelStrip copies a 1-D strip of pixels into the Frame Volume.
func (d *Display) CopyPixelStrip(ps []pixel.Pixel, start, end []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fv.CopyStrip(region.New(start, end), ps)
}

// CopyPixels fills a hyper-rectangle from ps (dimension 0 fastest).
func (d *Display) CopyPixels(ps []pixel.Pixel, start, end []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fv.CopyPixels(region.New(start, end), ps)
}

// CopyPixelTiles copies len(tiles) 2-D tiles of shape size into the Frame
// Volume at starts.
func (d *Display) CopyPixelTiles(tiles [][]pixel.Pixel, starts [][]int, size [2]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fv.CopyTiles(starts, size, tiles)
}

// CopyFrameVolume copies [start,end] to dest within the Frame Volume.
func (d *Display) CopyFrameVolume(start, end, dest []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fv.CopyVolumeRegion(region.New(start, end), dest)
}

// UpdateInputVector writes positions 2..IV-1 of the Input Vector. This is
// atomic with respect to any concurrent Render (which Latch triggers),
// since both hold d.mu.
func (d *Display) UpdateInputVector(values []int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	if err := d.iv.Update(values); err != nil {
		return errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return nil
}

// PutCoefficientMatrix writes one matrix at loc (x,y,p), honoring
// COEFFICIENT_UNCHANGED per cell.
func (d *Display) PutCoefficientMatrix(values []coeff.Value, loc []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fillMatrix(values, loc, loc)
}

// FillCoefficientMatrix writes a matrix across [start,end], honoring
// COEFFICIENT_UNCHANGED per cell.
func (d *Display) FillCoefficientMatrix(values []coeff.Value, start, end []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.fillMatrix(values, start, end)
}

func (d *Display) fillMatrix(values []coeff.Value, start, end []int) error {
	fvd, ivSize := len(d.cfg.FVDims), d.cfg.IVSize
	if len(values) != fvd*ivSize {
		return errors.Wrapf(ErrInvalidArgument, "fillMatrix: got %d values, want %d", len(values), fvd*ivSize)
	}
	src := &coeff.Matrix{FVD: fvd, IV: ivSize}
	for row := 0; row < fvd; row++ {
		for col := 0; col < ivSize; col++ {
			src.SetRaw(row, col, values[row*ivSize+col])
		}
	}
	src.Scaler = 0
	// Scaler untouched by matrix fills per spec.md §4.1 (separate FillScaler command).
	return d.planes.FillMatrix(region.New(start, end), src)
}

// FillCoefficient writes value into (row, col) of every matrix in
// [start,end].
func (d *Display) FillCoefficient(value coeff.Value, row, col int, start, end []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.planes.FillCoefficient(region.New(start, end), row, col, value)
}

// FillCoefficientTiles fills one scalar coefficient per tile: for each i,
// positions[i] = (row,col) is written into every matrix of the 2-D tile
// starts[i]..starts[i]+size.
//
// Design Notes §9 flags that some server implementations duplicate
// positions[2i+0] into both the row and column slot; this implementation
// treats positions[i] as an independent (row, col) pair (the corrected
// reading — see DESIGN.md "Open Questions resolved").
func (d *Display) FillCoefficientTiles(coeffs []coeff.Value, positions [][2]int, starts [][]int, size [2]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	if len(coeffs) != len(positions) || len(coeffs) != len(starts) {
		return errors.Wrap(ErrInvalidArgument, "FillCoefficientTiles: mismatched slice lengths")
	}
	for i := range coeffs {
		start := starts[i]
		end := append([]int(nil), start...)
		end[0] += size[0] - 1
		end[1] += size[1] - 1
		r := region.New(start, end)
		if err := d.planes.FillCoefficient(r, positions[i][0], positions[i][1], coeffs[i]); err != nil {
			return errors.Wrapf(err, "FillCoefficientTiles: tile %d", i)
		}
	}
	return nil
}

// FillScaler writes s across every matrix's Scaler in [start,end].
func (d *Display) FillScaler(s pixel.Scaler, start, end []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	return d.planes.FillScaler(region.New(start, end), s)
}

// FillScalerTiles writes one scaler per tile across 2-D tiles of size at
// starts (plane index fixed at starts[i][2]).
func (d *Display) FillScalerTiles(scalers []pixel.Scaler, starts [][]int, size [2]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	if len(scalers) != len(starts) {
		return errors.Wrap(ErrInvalidArgument, "FillScalerTiles: mismatched slice lengths")
	}
	for i, start := range starts {
		end := append([]int(nil), start...)
		end[0] += size[0] - 1
		end[1] += size[1] - 1
		if err := d.planes.FillScaler(region.New(start, end), scalers[i]); err != nil {
			return errors.Wrapf(err, "FillScalerTiles: tile %d", i)
		}
	}
	return nil
}

// FillScalerTileStack writes a Z-column of scalers at (start[0],start[1])
// of height len(scalers), one plane per scaler starting at plane
// start[2], over the 2-D tile start..start+size.
func (d *Display) FillScalerTileStack(scalers []pixel.Scaler, start []int, size [2]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	end := append([]int(nil), start...)
	end[0] += size[0] - 1
	end[1] += size[1] - 1
	zBase := start[2]
	for p, s := range scalers {
		z := zBase + p
		planeStart := append([]int(nil), start[:2]...)
		planeStart = append(planeStart, z)
		planeEnd := append([]int(nil), end[:2]...)
		planeEnd = append(planeEnd, z)
		if err := d.planes.FillScaler(region.New(planeStart, planeEnd), s); err != nil {
			return errors.Wrapf(err, "FillScalerTileStack: plane %d", z)
		}
	}
	return nil
}

// SetPixelByteSignMode sets the sign mode used by Render.
func (d *Display) SetPixelByteSignMode(mode pixel.SignMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	if mode != pixel.Unsigned && mode != pixel.Signed {
		return errors.Wrap(ErrInvalidArgument, "SetPixelByteSignMode: unknown mode")
	}
	d.signMode = mode
	return nil
}

// SetFullScaler sets the scaler value that represents "full" (unit)
// contribution.
func (d *Display) SetFullScaler(v int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	if v == 0 {
		return errors.Wrap(ErrInvalidArgument, "SetFullScaler: value must be non-zero")
	}
	d.fullScaler = v
	return nil
}

// GetFullScaler returns the current full-scaler value.
func (d *Display) GetFullScaler() (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return 0, err
	}
	return d.fullScaler, nil
}

// Shutdown releases the display's memories. Further operations fail with
// ErrNotInitialised.
func (d *Display) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return err
	}
	d.initialized = false
	d.iv = nil
	d.planes = nil
	d.fv = nil
	return nil
}

// Frame is a rendered sub-rectangle of pixels, row-major, returned by
// Latch/Render for the renderer to present.
type Frame struct {
	X, Y, W, H int
	Pixels     []pixel.Pixel
}

// Latch renders the named sub-rectangle of the current computed frame.
// Per spec.md §5 it is a barrier: callers must not issue further writes
// for the frame it describes until Latch returns, and the display model
// enforces this by holding d.mu for the whole render.
func (d *Display) Latch(subX, subY, subW, subH int) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireInit(); err != nil {
		return Frame{}, err
	}
	if subW <= 0 || subH <= 0 {
		return Frame{}, errors.Wrap(ErrInvalidArgument, "Latch: non-positive sub-rectangle")
	}
	if subX < 0 || subY < 0 || subX+subW > d.cfg.DisplayW || subY+subH > d.cfg.DisplayH {
		return Frame{}, errors.Wrap(ErrOutOfRange, "Latch: sub-rectangle outside display")
	}
	out := make([]pixel.Pixel, 0, subW*subH)
	for y := subY; y < subY+subH; y++ {
		for x := subX; x < subX+subW; x++ {
			p, err := d.render(x, y)
			if err != nil {
				return Frame{}, errors.Wrapf(err, "Latch: render (%d,%d)", x, y)
			}
			out = append(out, p)
		}
	}
	return Frame{X: subX, Y: subY, W: subW, H: subH, Pixels: out}, nil
}

// render evaluates the reconstruction rule for a single screen pixel
// (spec.md §4.1): for each plane p from 0 upward, compute the Frame-Volume
// coordinate FV = M[x,y,p] . IV (substituting sentinels), fetch FV's
// pixel, scale channel-wise by the plane's Scaler / fullScaler, and
// saturate-add into the accumulator. Caller must hold d.mu.
func (d *Display) render(x, y int) (pixel.Pixel, error) {
	iv := d.iv.Snapshot()
	var acc [4]int32
	for p := 0; p < d.cfg.NumPlanes; p++ {
		m := d.planes.At(x, y, p)
		coord := make([]int, len(d.cfg.FVDims))
		for row := range coord {
			coord[row] = int(m.Row(row, x, y, p, iv))
		}
		for i, dim := range d.cfg.FVDims {
			if coord[i] < 0 || coord[i] >= dim {
				return 0, errors.Wrapf(ErrOutOfRange, "plane %d: frame-volume coordinate %v axis %d out of range", p, coord, i)
			}
		}
		src := d.fv.At(coord)
		s := m.Scaler
		for c := 0; c < 4; c++ {
			val := src.Channel(c, d.signMode)
			scaled := int64(val) * int64(s.Channel(c)) / int64(d.fullScaler)
			acc[c] = int32(clampAdd(int64(acc[c]), scaled, d.signMode))
		}
	}
	return pixel.NewPixel(
		pixel.ClampChannel(acc[0], d.signMode),
		pixel.ClampChannel(acc[1], d.signMode),
		pixel.ClampChannel(acc[2], d.signMode),
		pixel.ClampChannel(acc[3], d.signMode),
	), nil
}

// clampAdd adds a and b and saturates to the representable range for mode,
// implementing the "saturate-add" step of the reconstruction rule for
// every plane's contribution (see DESIGN.md / SPEC_FULL §9 Open Questions).
func clampAdd(a, b int64, mode pixel.SignMode) int64 {
	sum := a + b
	lo, hi := int64(0), int64(255)
	if mode == pixel.Signed {
		lo, hi = -128, 127
	}
	if sum < lo {
		return lo
	}
	if sum > hi {
		return hi
	}
	return sum
}
