package recorder

import (
	"path/filepath"
	"testing"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

// identityMatrixValues builds an FVD x IV matrix selecting (x, y, 0...) out
// of the Frame Volume: row 0 -> x, row 1 -> y, every other row -> 0.
func identityMatrixValues(fvd, iv int) []coeff.Value {
	values := make([]coeff.Value, fvd*iv)
	for i := range values {
		values[i] = coeff.Literal(0)
	}
	if fvd > 0 {
		values[0*iv] = coeff.MatrixX
	}
	if fvd > 1 {
		values[1*iv] = coeff.MatrixY
	}
	return values
}

func mustApply(t *testing.T, d *display.Display, cmd display.Command) {
	t.Helper()
	if _, err := cmd.Apply(d); err != nil {
		t.Fatalf("apply %s: %v", cmd.Tag(), err)
	}
}

// TestRoundTripLog covers Testable Property 1 and scenario S5: recording a
// session and replaying it produces a display state bit-identical to
// direct execution of the same commands.
func TestRoundTripLog(t *testing.T) {
	cfg := display.Config{FVDims: []int{4, 4, 1}, DisplayW: 4, DisplayH: 4, NumPlanes: 1, IVSize: 2}
	white := pixel.NewPixel(255, 255, 255, 255)
	blue := pixel.NewPixel(0, 0, 255, 255)
	identity := identityMatrixValues(3, 2)
	full := pixel.NewScaler(256, 256, 256, 256)

	// Direct execution.
	direct, err := display.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	mustApply(t, direct, display.FillCoefficientMatrixCmd{Values: identity, Start: []int{0, 0, 0}, End: []int{3, 3, 0}})
	mustApply(t, direct, display.FillScalerCmd{Scaler: full, Start: []int{0, 0, 0}, End: []int{3, 3, 0}})
	mustApply(t, direct, display.FillPixelCmd{Pixel: white, Start: []int{0, 0, 0}, End: []int{3, 3, 0}})
	mustApply(t, direct, display.PutPixelCmd{Pixel: blue, Loc: []int{1, 2, 0}})
	wantFrame, err := direct.Latch(0, 0, 4, 4)
	if err != nil {
		t.Fatal(err)
	}

	// Record the same sequence, S5-style: Init; FillPixel(white); PutPixel(blue); Latch; Shutdown.
	path := filepath.Join(t.TempDir(), "session.log")
	r, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Record(display.Init{Config: cfg})
	r.Record(display.FillCoefficientMatrixCmd{Values: identity, Start: []int{0, 0, 0}, End: []int{3, 3, 0}})
	r.Record(display.FillScalerCmd{Scaler: full, Start: []int{0, 0, 0}, End: []int{3, 3, 0}})
	r.Record(display.FillPixelCmd{Pixel: white, Start: []int{0, 0, 0}, End: []int{3, 3, 0}})
	r.Record(display.PutPixelCmd{Pixel: blue, Loc: []int{1, 2, 0}})
	r.Record(display.LatchCmd{SubW: 4, SubH: 4})
	r.Record(display.ShutdownCmd{})
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	// Replay onto a fresh display constructed from the recorded Init.
	replayCfg, err := ReadInitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	replay, err := display.New(replayCfg)
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Play(replay); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// Play skips the recorded Shutdown (that is the caller's prerogative),
	// so replay is still live; its last recorded Latch(0,0,4,4) already
	// rendered the full frame, and Play's own trailing Latch(0,0,1,1) only
	// re-renders the top-left corner, so re-latching the full frame here
	// reproduces exactly what direct execution saw.
	gotFrame, err := replay.Latch(0, 0, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range wantFrame.Pixels {
		if gotFrame.Pixels[i] != wantFrame.Pixels[i] {
			t.Fatalf("pixel %d mismatch: got %#x want %#x", i, uint32(gotFrame.Pixels[i]), uint32(wantFrame.Pixels[i]))
		}
	}
}
