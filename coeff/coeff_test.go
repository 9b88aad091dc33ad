package coeff

import (
	"testing"

	"github.com/pixelbridge/nddi/pixel"
	"github.com/pixelbridge/nddi/region"
)

func TestValueResolve(t *testing.T) {
	if Literal(42).Resolve(1, 2, 3) != 42 {
		t.Error("literal should resolve to itself")
	}
	if MatrixX.Resolve(7, 2, 3) != 7 {
		t.Error("X should resolve to x")
	}
	if MatrixY.Resolve(7, 2, 3) != 2 {
		t.Error("Y should resolve to y")
	}
	if MatrixP.Resolve(7, 2, 3) != 3 {
		t.Error("P should resolve to p")
	}
}

func TestMatrixSetUnchanged(t *testing.T) {
	m := NewMatrix(2, 2)
	m.SetRaw(0, 0, Literal(5))
	m.Set(0, 0, Unchanged) // should not overwrite
	if m.At(0, 0).Int() != 5 {
		t.Fatalf("expected unchanged cell to remain 5, got %d", m.At(0, 0).Int())
	}
	m.Set(0, 0, Literal(9))
	if m.At(0, 0).Int() != 9 {
		t.Fatalf("expected cell to become 9, got %d", m.At(0, 0).Int())
	}
}

func TestMatrixRow(t *testing.T) {
	m := NewMatrix(1, 3)
	m.SetRaw(0, 0, Literal(1))
	m.SetRaw(0, 1, MatrixX)
	m.SetRaw(0, 2, MatrixY)
	iv := []int64{1, 1, 1}
	got := m.Row(0, 3, 4, 0, iv)
	if got != 1+3+4 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestPlaneFillAndScaler(t *testing.T) {
	pl := NewPlane(4, 4, 2, 3, 3)
	m := NewMatrix(3, 3)
	m.SetRaw(0, 0, Literal(1))
	r := region.New([]int{0, 0, 0}, []int{3, 3, 0})
	if err := pl.FillMatrix(r, m); err != nil {
		t.Fatal(err)
	}
	if pl.At(2, 2, 0).At(0, 0).Int() != 1 {
		t.Fatal("fill did not propagate")
	}
	s := pixel.NewScaler(256, 256, 256, 0)
	if err := pl.FillScaler(r, s); err != nil {
		t.Fatal(err)
	}
	if pl.At(0, 0, 0).Scaler != s {
		t.Fatal("scaler fill did not propagate")
	}
	bad := region.New([]int{0, 0, 0}, []int{4, 3, 0})
	if err := pl.FillMatrix(bad, m); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
