package framevolume

import (
	"testing"

	"github.com/pixelbridge/nddi/pixel"
	"github.com/pixelbridge/nddi/region"
)

func TestFill(t *testing.T) {
	v := New([]int{4, 4, 1})
	p := pixel.NewPixel(1, 2, 3, 4)
	r := region.New([]int{0, 0, 0}, []int{3, 3, 0})
	if err := v.Fill(r, p); err != nil {
		t.Fatal(err)
	}
	if v.At([]int{2, 2, 0}) != p {
		t.Fatal("fill did not propagate")
	}
}

func TestCopyPixels(t *testing.T) {
	v := New([]int{2, 2, 1})
	src := []pixel.Pixel{
		pixel.NewPixel(1, 0, 0, 0xff),
		pixel.NewPixel(2, 0, 0, 0xff),
		pixel.NewPixel(3, 0, 0, 0xff),
		pixel.NewPixel(4, 0, 0, 0xff),
	}
	r := region.New([]int{0, 0, 0}, []int{1, 1, 0})
	if err := v.CopyPixels(r, src); err != nil {
		t.Fatal(err)
	}
	if v.At([]int{0, 0, 0}).R() != 1 || v.At([]int{1, 0, 0}).R() != 2 ||
		v.At([]int{0, 1, 0}).R() != 3 || v.At([]int{1, 1, 0}).R() != 4 {
		t.Fatal("dim-0-fastest layout not respected")
	}
}

func TestCopyStrip(t *testing.T) {
	v := New([]int{4, 1, 1})
	src := []pixel.Pixel{pixel.NewPixel(1, 0, 0, 0), pixel.NewPixel(2, 0, 0, 0)}
	r := region.New([]int{1, 0, 0}, []int{2, 0, 0})
	if err := v.CopyStrip(r, src); err != nil {
		t.Fatal(err)
	}
	if v.At([]int{1, 0, 0}).R() != 1 || v.At([]int{2, 0, 0}).R() != 2 {
		t.Fatal("strip copy mismatch")
	}
	bad := region.New([]int{0, 0, 0}, []int{1, 0, 0})
	// single axis ok but wrong length
	if err := v.CopyStrip(bad, []pixel.Pixel{pixel.NewPixel(1, 0, 0, 0)}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestCopyTiles(t *testing.T) {
	v := New([]int{4, 4, 2})
	tile := make([]pixel.Pixel, 4)
	for i := range tile {
		tile[i] = pixel.NewPixel(uint8(i+1), 0, 0, 0)
	}
	starts := [][]int{{0, 0, 0}, {2, 2, 1}}
	if err := v.CopyTiles(starts, [2]int{2, 2}, [][]pixel.Pixel{tile, tile}); err != nil {
		t.Fatal(err)
	}
	if v.At([]int{0, 0, 0}).R() != 1 || v.At([]int{1, 0, 0}).R() != 2 {
		t.Fatal("tile 0 mismatch")
	}
	if v.At([]int{2, 2, 1}).R() != 1 || v.At([]int{3, 3, 1}).R() != 4 {
		t.Fatal("tile 1 mismatch")
	}
}

func TestCopyVolumeRegion(t *testing.T) {
	v := New([]int{4, 1, 1})
	v.Set([]int{0, 0, 0}, pixel.NewPixel(1, 0, 0, 0))
	v.Set([]int{1, 0, 0}, pixel.NewPixel(2, 0, 0, 0))
	src := region.New([]int{0, 0, 0}, []int{1, 0, 0})
	// Overlapping shift by one: dest=[1,0,0]..[2,0,0]
	if err := v.CopyVolumeRegion(src, []int{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if v.At([]int{1, 0, 0}).R() != 1 || v.At([]int{2, 0, 0}).R() != 2 {
		t.Fatalf("overlap-safe copy failed: got %d,%d", v.At([]int{1, 0, 0}).R(), v.At([]int{2, 0, 0}).R())
	}
}
