package dct

import "testing"

func TestScaledTilerGrayPassthroughAllScales(t *testing.T) {
	st, err := NewScaled(ScaledConfig{
		DisplayW: 16, DisplayH: 16, Quality: 10,
		Scales:   []int{2, 1},
		Strategy: StrategyNone,
	})
	if err != nil {
		t.Fatal(err)
	}
	frame := uniformFrame(16, 16, 128)
	if err := st.UpdateDisplay(frame, 16, 16); err != nil {
		t.Fatal(err)
	}
	for s := range st.cfg.Scales {
		for _, h := range st.stackHeights[s] {
			if h != 0 {
				t.Fatalf("scale %d: stack height = %d, want 0 for uniform grey frame", s, h)
			}
		}
	}
}

func TestSnapToZeroDropsSmallCoefficients(t *testing.T) {
	coeffs := []int64{3, -3, 10, -10, 0}
	snapToZero(coeffs, 5)
	want := []int64{0, 0, 10, -10, 0}
	for i := range want {
		if coeffs[i] != want[i] {
			t.Fatalf("coeffs[%d] = %d, want %d", i, coeffs[i], want[i])
		}
	}
}

func TestTrimZeroesAbovePlaneCount(t *testing.T) {
	coeffs := []int64{1, 2, 3, 4, 5}
	trim(coeffs, 2)
	want := []int64{1, 2, 0, 0, 0}
	for i := range want {
		if coeffs[i] != want[i] {
			t.Fatalf("coeffs[%d] = %d, want %d", i, coeffs[i], want[i])
		}
	}
}

func TestBudgetSelectRespectsBudget(t *testing.T) {
	st := &ScaledTiler{}
	coeffs := []int64{5, 40, 2, 60, 1, 0, 0, 0}
	st.budgetSelect(coeffs, 0, 3)
	if got := cost(coeffs); got > 3 {
		t.Fatalf("cost after budgetSelect = %d, want <= 3", got)
	}
}

func TestDownsampleAveragesBlock(t *testing.T) {
	buf := []byte{
		0, 0, 0, 100, 100, 100,
		50, 50, 50, 150, 150, 150,
	}
	dst, dw, dh := downsample(buf, 2, 2, 2)
	if dw != 1 || dh != 1 {
		t.Fatalf("downsample dims = %dx%d, want 1x1", dw, dh)
	}
	want := byte((0 + 100 + 50 + 150) / 4)
	if dst[0] != want {
		t.Fatalf("downsample[0] = %d, want %d", dst[0], want)
	}
}
