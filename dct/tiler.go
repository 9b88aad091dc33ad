package dct

import (
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

// Config describes a DctTiler's display geometry and quantisation quality.
type Config struct {
	DisplayW, DisplayH int
	Quality            int // 1..100, Nelson quantisation quality
}

func (c Config) validate() error {
	if c.DisplayW <= 0 || c.DisplayH <= 0 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: non-positive display dimension")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: quality must be in [1,100]")
	}
	return nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// Tiler maps successive RGB frames onto scaler updates against a Frame
// Volume of pre-rendered basis-function planes (spec.md §4.6).
type Tiler struct {
	cfg                  Config
	tilesWide, tilesHigh int
	d                    *display.Display

	zigZag   [BlockSize]int
	quantMat [BlockSize]int64

	// stackHeights[j*tilesWide+i] is the render-plane count (not zig-zag
	// index) this macroblock needed last frame, for Testable Property 5
	// ("no plane strictly above h holds a non-zero scaler").
	stackHeights []int
}

// New allocates the Tiler's Display (8x8x193) and pre-renders the basis
// functions into its Frame Volume.
func New(cfg Config) (*Tiler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d, err := display.New(display.Config{
		FVDims:    []int{BlockWidth, BlockHeight, NumPlanes},
		DisplayW:  cfg.DisplayW,
		DisplayH:  cfg.DisplayH,
		NumPlanes: NumPlanes,
		IVSize:    2,
	})
	if err != nil {
		return nil, errors.Wrap(err, "dct: New")
	}
	if err := d.SetFullScaler(MaxDCTCoeff); err != nil {
		return nil, errors.Wrap(err, "dct: New")
	}
	if err := d.SetPixelByteSignMode(pixel.Signed); err != nil {
		return nil, errors.Wrap(err, "dct: New")
	}

	t := &Tiler{
		cfg:       cfg,
		tilesWide: ceilDiv(cfg.DisplayW, BlockWidth),
		tilesHigh: ceilDiv(cfg.DisplayH, BlockHeight),
		zigZag:    zigZagTable(),
		quantMat:  quantizationMatrix(cfg.Quality),
	}
	t.stackHeights = make([]int, t.tilesWide*t.tilesHigh)
	t.d = d

	if err := t.initCoefficientPlanes(); err != nil {
		return nil, errors.Wrap(err, "dct: New")
	}
	if err := t.initFrameVolume(); err != nil {
		return nil, errors.Wrap(err, "dct: New")
	}
	return t, nil
}

// Display returns the Tiler's underlying Display, for Latch/render.
func (t *Tiler) Display() *display.Display { return t.d }

// StackHeights returns the most recent frame's per-macroblock stack
// heights, for stats.Reporter.AddStackHeights.
func (t *Tiler) StackHeights() []int { return t.stackHeights }

func (t *Tiler) macroblockRegion(i, j int) (x0, y0, x1, y1 int) {
	x0, y0 = i*BlockWidth, j*BlockHeight
	x1, y1 = x0+BlockWidth-1, y0+BlockHeight-1
	if x1 > t.cfg.DisplayW-1 {
		x1 = t.cfg.DisplayW - 1
	}
	if y1 > t.cfg.DisplayH-1 {
		y1 = t.cfg.DisplayH - 1
	}
	return
}

// initCoefficientPlanes sets every macroblock's coefficient matrix so that
// render plane p (0..NumBasisPlanes-1) translates the macroblock's screen
// pixel down to (0..7,0..7) and selects Frame-Volume z index p (the basis
// function for zig-zag position p/3, channel p%3), and the gray plane
// (NumPlanes-1) always selects Frame-Volume z index NumPlanes-1 regardless
// of screen position.
func (t *Tiler) initCoefficientPlanes() error {
	for j := 0; j < t.tilesHigh; j++ {
		for i := 0; i < t.tilesWide; i++ {
			x0, y0, x1, y1 := t.macroblockRegion(i, j)
			for p := 0; p < NumBasisPlanes; p++ {
				values := []coeff.Value{
					coeff.MatrixXOffset(-int64(i * BlockWidth)), coeff.Unchanged,
					coeff.MatrixYOffset(-int64(j * BlockHeight)), coeff.Unchanged,
					coeff.Literal(int64(p)), coeff.Unchanged,
				}
				if err := t.d.FillCoefficientMatrix(values, []int{x0, y0, p}, []int{x1, y1, p}); err != nil {
					return err
				}
			}
			grayValues := []coeff.Value{
				coeff.Literal(0), coeff.Unchanged,
				coeff.Literal(0), coeff.Unchanged,
				coeff.Literal(int64(GrayPlane)), coeff.Unchanged,
			}
			if err := t.d.FillCoefficientMatrix(grayValues, []int{x0, y0, GrayPlane}, []int{x1, y1, GrayPlane}); err != nil {
				return err
			}
		}
	}

	if err := t.d.FillScaler(pixel.ZeroScaler, []int{0, 0, 0}, []int{t.cfg.DisplayW - 1, t.cfg.DisplayH - 1, NumPlanes - 1}); err != nil {
		return err
	}
	gray := pixel.NewScaler(MaxDCTCoeff, MaxDCTCoeff, MaxDCTCoeff, 0)
	return t.d.FillScaler(gray, []int{0, 0, GrayPlane}, []int{t.cfg.DisplayW - 1, t.cfg.DisplayH - 1, GrayPlane})
}

// initFrameVolume pre-renders the 64 basis functions (one per zig-zag
// position, replicated across R, G, B so that the per-channel scaler
// alone determines which channel a plane contributes to) plus the uniform
// mid-gray plane that re-adds the 128 DC offset.
func (t *Tiler) initFrameVolume() error {
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
	return t.d.CopyPixels(ps, []int{0, 0, 0}, []int{BlockWidth - 1, BlockHeight - 1, NumPlanes - 1})
}

// forwardDCT computes the quantised/dequantised coefficient for (u,v) of
// one macroblock's channel from an RGB888 buffer, per spec.md §4.6 steps
// 1-3: shift by -128, accumulate the 2-D DCT sum, quantise and dequantise
// against the Nelson matrix.
func (t *Tiler) forwardDCT(buf []byte, w, h, i, j, u, v, channel int) int64 {
	return computeDCTCoefficient(buf, w, h, i, j, u, v, channel, t.quantMat)
}

// UpdateDisplay computes the forward DCT of every macroblock in an
// RGB888 frame of size w x h, quantises/dequantises each coefficient, and
// rewrites the macroblock's scaler stack to the minimum height needed to
// both show the new coefficients and clear any now-zero ones the previous
// frame left non-zero (spec.md §4.6 step 4, Testable Property 5).
func (t *Tiler) UpdateDisplay(buf []byte, w, h int) error {
	if len(buf) != w*h*3 {
		return errors.Wrap(display.ErrInvalidArgument, "dct: UpdateDisplay: buffer size mismatch")
	}
	size := [2]int{BlockWidth, BlockHeight}
	for j := 0; j < t.tilesHigh; j++ {
		for i := 0; i < t.tilesWide; i++ {
			scalers := make([]pixel.Scaler, NumBasisPlanes)
			newHeight := 0
			for v := 0; v < BlockHeight; v++ {
				for u := 0; u < BlockWidth; u++ {
					gr := t.forwardDCT(buf, w, h, i, j, u, v, 0)
					gg := t.forwardDCT(buf, w, h, i, j, u, v, 1)
					gb := t.forwardDCT(buf, w, h, i, j, u, v, 2)
					z := t.zigZag[v*BlockWidth+u]
					base := z * 3
					scalers[base] = pixel.NewScaler(int16(gr), 0, 0, 0)
					scalers[base+1] = pixel.NewScaler(0, int16(gg), 0, 0)
					scalers[base+2] = pixel.NewScaler(0, 0, int16(gb), 0)
					if gr != 0 || gg != 0 || gb != 0 {
						if base+3 > newHeight {
							newHeight = base + 3
						}
					}
				}
			}

			idx := j*t.tilesWide + i
			required := newHeight
			if t.stackHeights[idx] > required {
				required = t.stackHeights[idx]
			}
			t.stackHeights[idx] = newHeight

			out := make([]pixel.Scaler, required)
			copy(out, scalers[:newHeight])

			start := []int{i * BlockWidth, j * BlockHeight, 0}
			if err := t.d.FillScalerTileStack(out, start, size); err != nil {
				return errors.Wrapf(err, "dct: UpdateDisplay: macroblock (%d,%d)", i, j)
			}
		}
	}
	return nil
}
