package region

import "testing"

func TestValidate(t *testing.T) {
	shape := []int{8, 8, 4}
	r := New([]int{0, 0, 0}, []int{7, 7, 3})
	if err := r.Validate(shape); err != nil {
		t.Fatalf("expected valid region, got %v", err)
	}
	bad := New([]int{0, 0, 0}, []int{8, 7, 3})
	if err := bad.Validate(shape); err == nil {
		t.Fatal("expected out-of-range error")
	}
	badOrder := New([]int{5, 0, 0}, []int{2, 7, 3})
	if err := badOrder.Validate(shape); err == nil {
		t.Fatal("expected start > end error")
	}
}

func TestSingleAxisDiffers(t *testing.T) {
	r := New([]int{0, 3, 1}, []int{7, 3, 1})
	axis, ok := r.SingleAxisDiffers()
	if !ok || axis != 0 {
		t.Fatalf("got axis=%d ok=%v", axis, ok)
	}
	r2 := New([]int{0, 3, 1}, []int{7, 4, 1})
	if _, ok := r2.SingleAxisDiffers(); ok {
		t.Fatal("expected no single differing axis")
	}
}

func TestEachOrder(t *testing.T) {
	r := New([]int{0, 0}, []int{1, 1})
	var got [][]int
	r.Each(func(c []int) { got = append(got, append([]int(nil), c...)) })
	want := [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	if len(got) != len(want) {
		t.Fatalf("got %d coords, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i][0] != want[i][0] || got[i][1] != want[i][1] {
			t.Errorf("coord %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSize(t *testing.T) {
	r := New([]int{0, 0, 0}, []int{7, 7, 3})
	if r.Size() != 8*8*4 {
		t.Fatalf("got %d", r.Size())
	}
}
