package dct

import "testing"

func uniformFrame(w, h int, v byte) []byte {
	buf := make([]byte, w*h*3)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

// TestGrayPassthroughHasZeroStackHeight is scenario S3: an 8x8 display at
// quality 10 pushed a uniform 128-gray frame has no non-zero DCT
// coefficients, so the emitted scaler-stack height is 0.
func TestGrayPassthroughHasZeroStackHeight(t *testing.T) {
	tc, err := New(Config{DisplayW: 8, DisplayH: 8, Quality: 10})
	if err != nil {
		t.Fatal(err)
	}
	frame := uniformFrame(8, 8, 128)
	if err := tc.UpdateDisplay(frame, 8, 8); err != nil {
		t.Fatal(err)
	}
	if got := tc.stackHeights[0]; got != 0 {
		t.Fatalf("stack height = %d, want 0", got)
	}
}

// TestNonUniformFrameProducesNonZeroCoefficients exercises the basic
// forward-DCT path on a macroblock with actual structure.
func TestNonUniformFrameProducesNonZeroCoefficients(t *testing.T) {
	tc, err := New(Config{DisplayW: 8, DisplayH: 8, Quality: 1})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8*8*3)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			o := (y*8 + x) * 3
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			buf[o], buf[o+1], buf[o+2] = v, v, v
		}
	}
	if err := tc.UpdateDisplay(buf, 8, 8); err != nil {
		t.Fatal(err)
	}
	if tc.stackHeights[0] == 0 {
		t.Fatal("checkerboard macroblock: stack height = 0, want > 0")
	}
}

// TestStackHeightTightness is Testable Property 5: after an update, no
// plane above the reported stack height should have been sent a non-zero
// scaler for the next frame to inherit incorrectly — checked here through
// the stored stack height: a structured frame records a non-zero height,
// and a uniform frame pushed right after it resets the stored height to 0.
func TestStackHeightTightness(t *testing.T) {
	tc, err := New(Config{DisplayW: 8, DisplayH: 8, Quality: 1})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8*8*3)
	for i := range buf {
		buf[i] = byte(i % 7 * 30)
	}
	if err := tc.UpdateDisplay(buf, 8, 8); err != nil {
		t.Fatal(err)
	}
	firstHeight := tc.stackHeights[0]
	if firstHeight == 0 {
		t.Fatal("expected non-zero stack height for structured frame")
	}

	gray := uniformFrame(8, 8, 128)
	if err := tc.UpdateDisplay(gray, 8, 8); err != nil {
		t.Fatal(err)
	}
	if tc.stackHeights[0] != 0 {
		t.Fatalf("second call: stack height = %d, want 0 (no new non-zero coefficients)", tc.stackHeights[0])
	}
}
