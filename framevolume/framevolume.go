// Package framevolume implements the nDDI Frame Volume: an FVD-dimensional
// grid of Pixels addressed by region.Region-checked bulk operations.
package framevolume

import (
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/pixel"
	"github.com/pixelbridge/nddi/region"
)

// ErrOutOfRange wraps bounds failures against the Volume's shape.
var ErrOutOfRange = errors.New("framevolume: out of range")

// Volume is an arbitrary-rank grid of Pixels, with dimension 0 varying
// fastest in its backing storage (matching the CopyPixels source-array
// convention from spec.md §4.1).
type Volume struct {
	Shape   []int
	strides []int
	cells   []pixel.Pixel
}

// New allocates a Volume of the given shape, all Pixels zeroed.
func New(shape []int) *Volume {
	strides := make([]int, len(shape))
	stride := 1
	for i, s := range shape {
		strides[i] = stride
		stride *= s
	}
	return &Volume{Shape: append([]int(nil), shape...), strides: strides, cells: make([]pixel.Pixel, stride)}
}

func (v *Volume) offset(coord []int) int {
	off := 0
	for i, c := range coord {
		off += c * v.strides[i]
	}
	return off
}

// At returns the Pixel at coord.
func (v *Volume) At(coord []int) pixel.Pixel { return v.cells[v.offset(coord)] }

// Set writes p at coord.
func (v *Volume) Set(coord []int, p pixel.Pixel) { v.cells[v.offset(coord)] = p }

// Fill implements FillPixel: writes p across every coordinate of r
// (inclusive of r.End).
func (v *Volume) Fill(r region.Region, p pixel.Pixel) error {
	if err := r.Validate(v.Shape); err != nil {
		return errors.Wrap(err, "framevolume: Fill")
	}
	r.Each(func(c []int) { v.Set(c, p) })
	return nil
}

// CopyPixels implements CopyPixels: fills r from src, where src is laid
// out with dimension 0 varying fastest.
func (v *Volume) CopyPixels(r region.Region, src []pixel.Pixel) error {
	if err := r.Validate(v.Shape); err != nil {
		return errors.Wrap(err, "framevolume: CopyPixels")
	}
	if want := r.Size(); len(src) != want {
		return errors.Wrapf(ErrOutOfRange, "CopyPixels: src has %d pixels, region wants %d", len(src), want)
	}
	i := 0
	r.Each(func(c []int) {
		v.Set(c, src[i])
		i++
	})
	return nil
}

// CopyStrip implements CopyPixelStrip: r must differ along exactly one
// axis; src supplies r.Len(axis) pixels along that axis.
func (v *Volume) CopyStrip(r region.Region, src []pixel.Pixel) error {
	if err := r.Validate(v.Shape); err != nil {
		return errors.Wrap(err, "framevolume: CopyPixelStrip")
	}
	axis, ok := r.SingleAxisDiffers()
	if !ok {
		return errors.New("framevolume: CopyPixelStrip requires exactly one differing axis")
	}
	want := r.Len(axis)
	if len(src) != want {
		return errors.Wrapf(ErrOutOfRange, "CopyPixelStrip: src has %d pixels, strip wants %d", len(src), want)
	}
	coord := append([]int(nil), r.Start...)
	for i := 0; i < want; i++ {
		coord[axis] = r.Start[axis] + i
		v.Set(coord, src[i])
	}
	return nil
}

// CopyTiles implements CopyPixelTiles: for each i, copies a 2-D
// size[0] x size[1] tile from tiles[i] into the Volume with its (0,0)
// corner at starts[i]. The third (and higher) coordinates of starts[i]
// select the remaining axes exactly (no range).
func (v *Volume) CopyTiles(starts [][]int, size [2]int, tiles [][]pixel.Pixel) error {
	if len(starts) != len(tiles) {
		return errors.New("framevolume: CopyPixelTiles: starts/tiles length mismatch")
	}
	for i, start := range starts {
		end := append([]int(nil), start...)
		end[0] += size[0] - 1
		end[1] += size[1] - 1
		r := region.New(start, end)
		if err := r.Validate(v.Shape); err != nil {
			return errors.Wrapf(err, "framevolume: CopyPixelTiles: tile %d", i)
		}
		if len(tiles[i]) != size[0]*size[1] {
			return errors.Wrapf(ErrOutOfRange, "CopyPixelTiles: tile %d has %d pixels, want %d", i, len(tiles[i]), size[0]*size[1])
		}
		idx := 0
		for y := 0; y < size[1]; y++ {
			coord := append([]int(nil), start...)
			coord[1] = start[1] + y
			for x := 0; x < size[0]; x++ {
				coord[0] = start[0] + x
				v.Set(coord, tiles[i][idx])
				idx++
			}
		}
	}
	return nil
}

// CopyVolumeRegion implements CopyFrameVolume: copies src (inclusive) to a
// same-shaped region at dest (dest gives the destination's start on every
// axis of the volume; a shorter dest fails validation). The destination is
// fully written from a
// snapshot of the source so that overlapping src/dest regions behave as a
// single atomic copy.
func (v *Volume) CopyVolumeRegion(src region.Region, dest []int) error {
	if err := src.Validate(v.Shape); err != nil {
		return errors.Wrap(err, "framevolume: CopyFrameVolume: src")
	}
	destEnd := make([]int, len(dest))
	for i := range dest {
		destEnd[i] = dest[i] + src.Len(i) - 1
	}
	destRegion := region.New(dest, destEnd)
	if err := destRegion.Validate(v.Shape); err != nil {
		return errors.Wrap(err, "framevolume: CopyFrameVolume: dest")
	}
	snapshot := make([]pixel.Pixel, 0, src.Size())
	src.Each(func(c []int) { snapshot = append(snapshot, v.At(c)) })
	i := 0
	destRegion.Each(func(c []int) {
		v.Set(c, snapshot[i])
		i++
	})
	return nil
}
