package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

func roundTrip(t *testing.T, cmd display.Command) display.Command {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, cmd); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return got
}

func TestRoundTripEveryCommand(t *testing.T) {
	cmds := []display.Command{
		display.Init{Config: display.Config{FVDims: []int{4, 4, 1}, DisplayW: 4, DisplayH: 4, NumPlanes: 1, IVSize: 2, Fixed8x8: true}},
		display.DisplayWidthCmd{},
		display.DisplayHeightCmd{},
		display.NumCoefficientPlanesCmd{},
		display.PutPixelCmd{Pixel: pixel.NewPixel(1, 2, 3, 4), Loc: []int{1, 2, 0}},
		display.CopyPixelStripCmd{Pixels: []pixel.Pixel{pixel.NewPixel(1, 0, 0, 0)}, Start: []int{0, 0, 0}, End: []int{0, 0, 0}},
		display.CopyPixelsCmd{Pixels: []pixel.Pixel{pixel.NewPixel(9, 9, 9, 9)}, Start: []int{0, 0, 0}, End: []int{0, 0, 0}},
		display.CopyPixelTilesCmd{
			Tiles:  [][]pixel.Pixel{{pixel.NewPixel(1, 1, 1, 1), pixel.NewPixel(2, 2, 2, 2)}},
			Starts: [][]int{{0, 0, 0}},
			Size:   [2]int{2, 1},
		},
		display.FillPixelCmd{Pixel: pixel.NewPixel(5, 6, 7, 8), Start: []int{0, 0, 0}, End: []int{1, 1, 0}},
		display.CopyFrameVolumeCmd{Start: []int{0, 0, 0}, End: []int{1, 1, 0}, Dest: []int{2, 2, 0}},
		display.UpdateInputVectorCmd{Values: []int64{7, 8, 9}},
		display.PutCoefficientMatrixCmd{Values: []coeff.Value{coeff.MatrixX, coeff.Literal(3)}, Loc: []int{0, 0, 0}},
		display.FillCoefficientMatrixCmd{Values: []coeff.Value{coeff.Unchanged, coeff.MatrixP}, Start: []int{0, 0, 0}, End: []int{0, 0, 0}},
		display.FillCoefficientCmd{Value: coeff.Literal(-5), Row: 1, Col: 0, Start: []int{0, 0, 0}, End: []int{0, 0, 0}},
		display.FillCoefficientTilesCmd{
			Coeffs:    []coeff.Value{coeff.Literal(1)},
			Positions: [][2]int{{0, 1}},
			Starts:    [][]int{{0, 0, 0}},
			Size:      [2]int{8, 8},
		},
		display.FillScalerCmd{Scaler: pixel.NewScaler(256, -1, 0, 7), Start: []int{0, 0, 0}, End: []int{0, 0, 0}},
		display.FillScalerTilesCmd{Scalers: []pixel.Scaler{pixel.NewScaler(1, 2, 3, 4)}, Starts: [][]int{{0, 0, 0}}, Size: [2]int{8, 8}},
		display.FillScalerTileStackCmd{Scalers: []pixel.Scaler{pixel.NewScaler(1, 2, 3, 4), pixel.ZeroScaler}, Start: []int{0, 0}, Size: [2]int{8, 8}},
		display.SetPixelByteSignModeCmd{Mode: pixel.Signed},
		display.SetFullScalerCmd{Value: 512},
		display.GetFullScalerCmd{},
		display.LatchCmd{SubX: 1, SubY: 2, SubW: 3, SubH: 4},
		display.ShutdownCmd{},
	}
	for _, cmd := range cmds {
		got := roundTrip(t, cmd)
		if diff := cmp.Diff(cmd, got, cmp.AllowUnexported(coeff.Value{})); diff != "" {
			t.Errorf("%s: round trip mismatch (-want +got):\n%s", cmd.Tag(), diff)
		}
	}
}

func TestEOTTerminatesStream(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, display.LatchCmd{SubW: 1, SubH: 1}); err != nil {
		t.Fatal(err)
	}
	if err := WriteEOT(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(&buf); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := Read(&buf); err != io.EOF {
		t.Fatalf("got %v, want io.EOF at terminator", err)
	}
}

func TestUnknownTagIsProtocolViolation(t *testing.T) {
	var buf bytes.Buffer
	if err := writeU32(&buf, 9999); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(&buf); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}
