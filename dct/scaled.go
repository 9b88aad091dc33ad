package dct

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

// Strategy picks how a ScaledTiler decides which DCT coefficients a scale
// is allowed to keep, per spec.md §4.6.
type Strategy int

const (
	// StrategyNone keeps every coefficient a scale's forward DCT produces.
	StrategyNone Strategy = iota
	// StrategySnapToZero zeroes any coefficient whose magnitude is <= Delta.
	StrategySnapToZero
	// StrategyTrim forces zero above MaxPlanes render planes.
	StrategyTrim
	// StrategyBudget binary-searches a Delta that keeps the estimated
	// per-macroblock stream cost within BudgetBytes.
	StrategyBudget
)

// ScaledConfig describes a ScaledTiler's display geometry, quantisation
// quality, resolution stack, and coefficient-selection strategy.
type ScaledConfig struct {
	DisplayW, DisplayH int
	Quality            int

	// Scales lists the down-sample factors to stack side by side in the
	// Frame Volume, coarsest first (e.g. []int{4, 2, 1}).
	Scales []int

	Strategy    Strategy
	Delta       int64 // StrategySnapToZero's threshold, or StrategyBudget's starting bound.
	MaxPlanes   int   // StrategyTrim's render-plane ceiling.
	BudgetBytes int   // StrategyBudget's per-macroblock byte budget.
}

func (c ScaledConfig) validate() error {
	if c.DisplayW <= 0 || c.DisplayH <= 0 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: non-positive display dimension")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: quality must be in [1,100]")
	}
	if len(c.Scales) == 0 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: ScaledTiler needs at least one scale")
	}
	for _, f := range c.Scales {
		if f <= 0 {
			return errors.Wrap(display.ErrInvalidArgument, "dct: scale factor must be positive")
		}
	}
	return nil
}

// ScaledTiler is the multi-resolution DCT tiler (spec.md §4.6 "Scaled
// variant"): one Frame Volume holding Scales basis-function stacks side by
// side (the `fv_tx_offset_` scheme), each encoding a down-sampled copy of
// the source frame at its own macroblock grid.
//
// Simplification (documented in DESIGN.md): each scale encodes a fresh
// down-sampled copy of the source frame independently, rather than the
// original's residual-against-the-upsampled-coarser-reconstruction scheme.
// This drops the cross-scale residual refinement but keeps every other
// moving part — down-sampling, per-scale DCT, and all three coefficient
// selection strategies.
type ScaledTiler struct {
	cfg      ScaledConfig
	d        *display.Display
	zigZag   [BlockSize]int
	quantMat [BlockSize]int64

	tilesWide, tilesHigh []int // per scale index
	stackHeights         [][]int

	// LastBudgetMeanMagnitude is the mean magnitude of the non-zero
	// coefficients StrategyBudget kept in the macroblock most recently
	// processed by UpdateDisplay, as a budget-mode quality indicator. Zero
	// under every other strategy.
	LastBudgetMeanMagnitude float64
}

// NewScaled allocates a ScaledTiler's Display and pre-renders every scale's
// basis-function stack into its own Frame Volume offset.
func NewScaled(cfg ScaledConfig) (*ScaledTiler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	numScales := len(cfg.Scales)
	d, err := display.New(display.Config{
		FVDims:    []int{BlockWidth, BlockHeight, NumPlanes * numScales},
		DisplayW:  cfg.DisplayW,
		DisplayH:  cfg.DisplayH,
		NumPlanes: NumPlanes * numScales,
		IVSize:    2,
	})
	if err != nil {
		return nil, errors.Wrap(err, "dct: NewScaled")
	}
	if err := d.SetFullScaler(MaxDCTCoeff); err != nil {
		return nil, errors.Wrap(err, "dct: NewScaled")
	}
	if err := d.SetPixelByteSignMode(pixel.Signed); err != nil {
		return nil, errors.Wrap(err, "dct: NewScaled")
	}

	st := &ScaledTiler{
		cfg:      cfg,
		d:        d,
		zigZag:   zigZagTable(),
		quantMat: quantizationMatrix(cfg.Quality),
	}
	st.tilesWide = make([]int, numScales)
	st.tilesHigh = make([]int, numScales)
	st.stackHeights = make([][]int, numScales)
	for s, f := range cfg.Scales {
		st.tilesWide[s] = ceilDiv(cfg.DisplayW, f*BlockWidth)
		st.tilesHigh[s] = ceilDiv(cfg.DisplayH, f*BlockHeight)
		st.stackHeights[s] = make([]int, st.tilesWide[s]*st.tilesHigh[s])
	}

	for s := range cfg.Scales {
		if err := st.initCoefficientPlanes(s); err != nil {
			return nil, errors.Wrap(err, "dct: NewScaled")
		}
		if err := st.initFrameVolume(s); err != nil {
			return nil, errors.Wrap(err, "dct: NewScaled")
		}
	}
	return st, nil
}

// Display returns the ScaledTiler's underlying Display.
func (st *ScaledTiler) Display() *display.Display { return st.d }

// StackHeights returns the most recent frame's per-macroblock stack
// heights for the given scale index, for stats.Reporter.AddStackHeights.
func (st *ScaledTiler) StackHeights(scale int) []int { return st.stackHeights[scale] }

// macroblockRegion returns scale s's macroblock (i,j) screen footprint
// (f*BlockWidth x f*BlockHeight), clamped to the display edge.
func (st *ScaledTiler) macroblockRegion(s, i, j int) (x0, y0, x1, y1 int) {
	f := st.cfg.Scales[s]
	x0, y0 = i*f*BlockWidth, j*f*BlockHeight
	x1, y1 = x0+f*BlockWidth-1, y0+f*BlockHeight-1
	if x1 > st.cfg.DisplayW-1 {
		x1 = st.cfg.DisplayW - 1
	}
	if y1 > st.cfg.DisplayH-1 {
		y1 = st.cfg.DisplayH - 1
	}
	return
}

// initCoefficientPlanes wires scale s's render planes (offset
// s*NumPlanes in the Frame Volume's z dimension) so that every screen
// pixel in a down-sampled macroblock maps, nearest-neighbour, onto the
// 8x8 basis tile: each coarse position (fx,fy) owns the f x f screen
// block it represents.
func (st *ScaledTiler) initCoefficientPlanes(s int) error {
	f := st.cfg.Scales[s]
	zOffset := s * NumPlanes
	tilesWide, tilesHigh := st.tilesWide[s], st.tilesHigh[s]

	for j := 0; j < tilesHigh; j++ {
		for i := 0; i < tilesWide; i++ {
			for fy := 0; fy < BlockHeight; fy++ {
				y0 := j*f*BlockHeight + fy*f
				y1 := y0 + f - 1
				if y0 >= st.cfg.DisplayH {
					continue
				}
				if y1 > st.cfg.DisplayH-1 {
					y1 = st.cfg.DisplayH - 1
				}
				for fx := 0; fx < BlockWidth; fx++ {
					x0 := i*f*BlockWidth + fx*f
					x1 := x0 + f - 1
					if x0 >= st.cfg.DisplayW {
						continue
					}
					if x1 > st.cfg.DisplayW-1 {
						x1 = st.cfg.DisplayW - 1
					}
					start := []int{x0, y0, zOffset}
					end := []int{x1, y1, zOffset + NumPlanes - 1}
					if err := st.d.FillCoefficient(coeff.Literal(int64(fx)), 0, 0, start, end); err != nil {
						return err
					}
					if err := st.d.FillCoefficient(coeff.Literal(int64(fy)), 1, 0, start, end); err != nil {
						return err
					}
				}
			}

			x0, y0, x1, y1 := st.macroblockRegion(s, i, j)
			for p := 0; p < NumPlanes; p++ {
				z := zOffset + p
				if err := st.d.FillCoefficient(coeff.Literal(int64(z)), 2, 0, []int{x0, y0, z}, []int{x1, y1, z}); err != nil {
					return err
				}
			}
		}
	}

	if err := st.d.FillScaler(pixel.ZeroScaler, []int{0, 0, zOffset}, []int{st.cfg.DisplayW - 1, st.cfg.DisplayH - 1, zOffset + NumBasisPlanes - 1}); err != nil {
		return err
	}
	gray := pixel.NewScaler(MaxDCTCoeff, MaxDCTCoeff, MaxDCTCoeff, 0)
	return st.d.FillScaler(gray, []int{0, 0, zOffset + GrayPlane}, []int{st.cfg.DisplayW - 1, st.cfg.DisplayH - 1, zOffset + GrayPlane})
}

// initFrameVolume renders scale s's basis functions and gray plane into
// the Frame Volume's [s*NumPlanes, (s+1)*NumPlanes) z range. Every scale
// shares the same basis-function shapes; only the render planes that
// reference them (and thus each scale's quantisation and coefficient
// selection) differ.
func (st *ScaledTiler) initFrameVolume(s int) error {
	basis := renderBasisPlanes()
	ps := make([]pixel.Pixel, 0, BlockSize*NumPlanes)
	for z := 0; z < BlockSize; z++ {
		for c := 0; c < 3; c++ {
			ps = append(ps, basis[z]...)
		}
	}
	gray := pixel.NewPixel(0x7f, 0x7f, 0x7f, 0xff)
	grayTile := make([]pixel.Pixel, BlockSize)
	for i := range grayTile {
		grayTile[i] = gray
	}
	ps = append(ps, grayTile...)
	zOffset := s * NumPlanes
	return st.d.CopyPixels(ps, []int{0, 0, zOffset}, []int{BlockWidth - 1, BlockHeight - 1, zOffset + NumPlanes - 1})
}

// downsample box-averages buf (w x h RGB888) by factor f, clamping the
// trailing partial block.
func downsample(buf []byte, w, h, f int) (dst []byte, dw, dh int) {
	if f == 1 {
		return buf, w, h
	}
	dw, dh = ceilDiv(w, f), ceilDiv(h, f)
	dst = make([]byte, dw*dh*3)
	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			var sum [3]int
			var n int
			for yy := 0; yy < f; yy++ {
				py := dy*f + yy
				if py >= h {
					continue
				}
				for xx := 0; xx < f; xx++ {
					px := dx*f + xx
					if px >= w {
						continue
					}
					o := (py*w + px) * 3
					sum[0] += int(buf[o])
					sum[1] += int(buf[o+1])
					sum[2] += int(buf[o+2])
					n++
				}
			}
			o := (dy*dw + dx) * 3
			if n == 0 {
				continue
			}
			dst[o] = byte(sum[0] / n)
			dst[o+1] = byte(sum[1] / n)
			dst[o+2] = byte(sum[2] / n)
		}
	}
	return dst, dw, dh
}

// applyStrategy mutates coeffs (length NumBasisPlanes, indexed by
// zig-zag-position*3+channel, g*q dequantised values) per cfg.Strategy.
func (st *ScaledTiler) applyStrategy(coeffs []int64) {
	switch st.cfg.Strategy {
	case StrategySnapToZero:
		snapToZero(coeffs, st.cfg.Delta)
	case StrategyTrim:
		trim(coeffs, st.cfg.MaxPlanes)
	case StrategyBudget:
		st.budgetSelect(coeffs, st.cfg.Delta, st.cfg.BudgetBytes)
	}
}

func snapToZero(coeffs []int64, delta int64) {
	for i, v := range coeffs {
		if v < 0 && -v <= delta || v >= 0 && v <= delta {
			coeffs[i] = 0
		}
	}
}

func trim(coeffs []int64, maxPlanes int) {
	if maxPlanes < 0 {
		maxPlanes = 0
	}
	if maxPlanes > len(coeffs) {
		return
	}
	for i := maxPlanes; i < len(coeffs); i++ {
		coeffs[i] = 0
	}
}

// cost estimates the bytes a coefficient stream would need: one byte per
// plane up to and including the last non-zero one, per spec.md §4.6's
// "stream cost" framing (the stack is only as tall as its highest
// non-zero plane).
func cost(coeffs []int64) int {
	last := -1
	for i, v := range coeffs {
		if v != 0 {
			last = i
		}
	}
	return last + 1
}

// budgetSelect binary-searches the smallest snap-to-zero delta (starting
// from the configured one) that brings cost(coeffs) within budgetBytes,
// per spec.md §4.6's "binary-search δ ... minimising stream cost subject
// to quality", and records the resulting mean coefficient magnitude in
// LastBudgetMeanMagnitude as a quality indicator for this operating point.
func (st *ScaledTiler) budgetSelect(coeffs []int64, startDelta int64, budgetBytes int) {
	if cost(coeffs) > budgetBytes {
		candidates := append([]int64(nil), coeffs...)
		lo, hi := startDelta, int64(MaxDCTCoeff)
		best := append([]int64(nil), coeffs...)
		trim(best, 0)
		for lo <= hi {
			mid := lo + (hi-lo)/2
			trial := append([]int64(nil), candidates...)
			snapToZero(trial, mid)
			if cost(trial) <= budgetBytes {
				best = trial
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
		copy(coeffs, best)
	}

	var mags []float64
	for _, v := range coeffs {
		if v != 0 {
			m := float64(v)
			if m < 0 {
				m = -m
			}
			mags = append(mags, m)
		}
	}
	if len(mags) > 0 {
		st.LastBudgetMeanMagnitude = stat.Mean(mags, nil)
	} else {
		st.LastBudgetMeanMagnitude = 0
	}
}

// UpdateDisplay re-encodes every scale against a fresh down-sampled copy
// of buf (w x h RGB888), selecting coefficients per cfg.Strategy and
// rewriting each macroblock's scaler stack to cover both this frame's
// non-zero planes and any the previous frame left non-zero.
func (st *ScaledTiler) UpdateDisplay(buf []byte, w, h int) error {
	if len(buf) != w*h*3 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: ScaledTiler.UpdateDisplay: buffer size mismatch")
	}
	for s, f := range st.cfg.Scales {
		dsbuf, dw, dh := downsample(buf, w, h, f)
		zOffset := s * NumPlanes
		tilesWide, tilesHigh := st.tilesWide[s], st.tilesHigh[s]

		for j := 0; j < tilesHigh; j++ {
			for i := 0; i < tilesWide; i++ {
				coeffs := make([]int64, NumBasisPlanes)
				for v := 0; v < BlockHeight; v++ {
					for u := 0; u < BlockWidth; u++ {
						z := st.zigZag[v*BlockWidth+u]
						base := z * 3
						coeffs[base] = computeDCTCoefficient(dsbuf, dw, dh, i, j, u, v, 0, st.quantMat)
						coeffs[base+1] = computeDCTCoefficient(dsbuf, dw, dh, i, j, u, v, 1, st.quantMat)
						coeffs[base+2] = computeDCTCoefficient(dsbuf, dw, dh, i, j, u, v, 2, st.quantMat)
					}
				}
				st.applyStrategy(coeffs)

				newHeight := 0
				for k, v := range coeffs {
					if v != 0 && k+1 > newHeight {
						newHeight = k + 1
					}
				}

				idx := j*tilesWide + i
				required := newHeight
				if st.stackHeights[s][idx] > required {
					required = st.stackHeights[s][idx]
				}
				st.stackHeights[s][idx] = newHeight

				scalers := make([]pixel.Scaler, required)
				for k := 0; k < newHeight; k++ {
					channel := k % 3
					switch channel {
					case 0:
						scalers[k] = pixel.NewScaler(int16(coeffs[k]), 0, 0, 0)
					case 1:
						scalers[k] = pixel.NewScaler(0, int16(coeffs[k]), 0, 0)
					default:
						scalers[k] = pixel.NewScaler(0, 0, int16(coeffs[k]), 0)
					}
				}

				x0, y0, x1, y1 := st.macroblockRegion(s, i, j)
				start := []int{x0, y0, zOffset}
				size := [2]int{x1 - x0 + 1, y1 - y0 + 1}
				if err := st.d.FillScalerTileStack(scalers, start, size); err != nil {
					return errors.Wrapf(err, "dct: ScaledTiler.UpdateDisplay: scale %d macroblock (%d,%d)", s, i, j)
				}
			}
		}
	}
	return nil
}
