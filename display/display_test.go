package display

import (
	stderrors "errors"
	"testing"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/pixel"
)

// zeroMatrixValues builds an FVD x IV matrix of Literal(0) cells, used as a
// base before overwriting the rows that matter for a given test.
func zeroMatrixValues(fvd, iv int) []coeff.Value {
	values := make([]coeff.Value, fvd*iv)
	for i := range values {
		values[i] = coeff.Literal(0)
	}
	return values
}

// TestReconstructionIdentity covers the Reconstruction contract: a display
// initialised with coefficients that select (x, y) directly out of a
// single-plane Frame Volume, full-scaler, renders back exactly what was
// copied into the Frame Volume via CopyPixels.
func TestReconstructionIdentity(t *testing.T) {
	const w, h = 3, 2
	d, err := New(Config{FVDims: []int{w, h, 1}, DisplayW: w, DisplayH: h, NumPlanes: 1, IVSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	values := zeroMatrixValues(3, 2)
	values[0*2+0] = coeff.MatrixX
	values[1*2+0] = coeff.MatrixY
	if err := d.FillCoefficientMatrix(values, []int{0, 0, 0}, []int{w - 1, h - 1, 0}); err != nil {
		t.Fatal(err)
	}
	full := pixel.NewScaler(256, 256, 256, 256)
	if err := d.FillScaler(full, []int{0, 0, 0}, []int{w - 1, h - 1, 0}); err != nil {
		t.Fatal(err)
	}

	src := make([]pixel.Pixel, w*h)
	for i := range src {
		src[i] = pixel.NewPixel(uint8(i*10+1), uint8(i*10+2), uint8(i*10+3), 0xff)
	}
	if err := d.CopyPixels(src, []int{0, 0, 0}, []int{w - 1, h - 1, 0}); err != nil {
		t.Fatal(err)
	}

	frame, err := d.Latch(0, 0, w, h)
	if err != nil {
		t.Fatal(err)
	}
	for i, got := range frame.Pixels {
		if got != src[i] {
			t.Fatalf("pixel %d: got %#x, want %#x", i, uint32(got), uint32(src[i]))
		}
	}
}

// TestSignModeAccumulation covers the sign-mode scenario (S6) and the
// resolution of the saturate-add Open Question: the accumulator clamps
// after every plane's contribution, not only once at the end. Plane 0
// deliberately overscales past the unsigned range; plane 1 then subtracts.
// If clamping only happened once at the end, the result would be the
// saturated sum of the raw total (255); because each plane's contribution
// saturates on its own, plane 0 first pins the accumulator at 255 and
// plane 1's subtraction is applied from there.
func TestSignModeAccumulation(t *testing.T) {
	d, err := New(Config{FVDims: []int{1, 1, 2}, DisplayW: 1, DisplayH: 1, NumPlanes: 2, IVSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	values := zeroMatrixValues(3, 2)
	values[2*2+0] = coeff.MatrixP // plane index selects the Frame Volume's third axis.
	if err := d.FillCoefficientMatrix(values, []int{0, 0, 0}, []int{0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := d.FillScaler(pixel.NewScaler(512, 0, 0, 0), []int{0, 0, 0}, []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := d.FillScaler(pixel.NewScaler(-128, 0, 0, 0), []int{0, 0, 1}, []int{0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := d.PutPixel(pixel.NewPixel(255, 0, 0, 0), []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := d.PutPixel(pixel.NewPixel(100, 0, 0, 0), []int{0, 0, 1}); err != nil {
		t.Fatal(err)
	}

	frame, err := d.Latch(0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := frame.Pixels[0].R(), uint8(205); got != want {
		t.Fatalf("R channel = %d, want %d (per-plane saturation)", got, want)
	}
}

// TestSignModeInterpretation covers S6's literal claim: a channel byte of
// 0x80 contributes -128 in Signed mode and +128 in Unsigned mode.
func TestSignModeInterpretation(t *testing.T) {
	d, err := New(Config{FVDims: []int{1, 1, 1}, DisplayW: 1, DisplayH: 1, NumPlanes: 1, IVSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	values := zeroMatrixValues(3, 2)
	if err := d.FillCoefficientMatrix(values, []int{0, 0, 0}, []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := d.FillScaler(pixel.NewScaler(256, 0, 0, 0), []int{0, 0, 0}, []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := d.PutPixel(pixel.NewPixel(0x80, 0, 0, 0), []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	frame, err := d.Latch(0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := frame.Pixels[0].R(); got != 0x80 {
		t.Fatalf("Unsigned: R = %#x, want 0x80 (contributes +128)", got)
	}

	if err := d.SetPixelByteSignMode(pixel.Signed); err != nil {
		t.Fatal(err)
	}
	frame, err = d.Latch(0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := frame.Pixels[0].R(); got != 0x80 {
		t.Fatalf("Signed: packed byte = %#x, want 0x80 (represents -128)", got)
	}
	if got := int8(frame.Pixels[0].R()); got != -128 {
		t.Fatalf("Signed: interpreted value = %d, want -128", got)
	}
}

func TestNotInitialisedAfterShutdown(t *testing.T) {
	d, err := New(Config{FVDims: []int{1, 1, 1}, DisplayW: 1, DisplayH: 1, NumPlanes: 1, IVSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.DisplayWidth(); err != ErrNotInitialised {
		t.Fatalf("got %v, want ErrNotInitialised", err)
	}
	if err := d.Shutdown(); err != ErrNotInitialised {
		t.Fatalf("double Shutdown: got %v, want ErrNotInitialised", err)
	}
}

func TestLatchOutOfRange(t *testing.T) {
	d, err := New(Config{FVDims: []int{2, 2, 1}, DisplayW: 2, DisplayH: 2, NumPlanes: 1, IVSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Latch(1, 0, 2, 2)
	if err == nil || !stderrors.Is(err, ErrOutOfRange) {
		t.Fatalf("got %v, want wrapped ErrOutOfRange", err)
	}
	_, err = d.Latch(0, 0, 0, 1)
	if err == nil || !stderrors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want wrapped ErrInvalidArgument", err)
	}
}

func TestRenderFrameVolumeCoordinateOutOfRange(t *testing.T) {
	d, err := New(Config{FVDims: []int{1, 1, 1}, DisplayW: 1, DisplayH: 1, NumPlanes: 1, IVSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	values := zeroMatrixValues(3, 2)
	values[0*2+0] = coeff.Literal(5) // out-of-range Frame Volume coordinate.
	if err := d.FillCoefficientMatrix(values, []int{0, 0, 0}, []int{0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Latch(0, 0, 1, 1); err == nil || !stderrors.Is(err, ErrOutOfRange) {
		t.Fatalf("got %v, want wrapped ErrOutOfRange", err)
	}
}
