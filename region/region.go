// Package region implements the dimension-agnostic Region value used by
// every bulk command in the display package (Design Notes: "Multi-
// dimensional slicing"). A Region carries inclusive Start/End bounds over
// an arbitrary number of axes, and can validate itself against the shape
// of the memory it addresses.
package region

import "github.com/pkg/errors"

// ErrOutOfRange is wrapped by Validate when a Region's bounds are invalid
// for the given shape.
var ErrOutOfRange = errors.New("region: out of range")

// Region is an axis-aligned hyper-rectangle, inclusive of End, expressed
// as per-axis Start/End bounds.
type Region struct {
	Start []int
	End   []int
}

// New builds a Region from copies of start and end. It does not check
// their lengths; Validate rejects a Region whose Start or End length
// differs from the addressed shape.
func New(start, end []int) Region {
	return Region{Start: append([]int(nil), start...), End: append([]int(nil), end...)}
}

// Dims returns the Region's dimensionality.
func (r Region) Dims() int { return len(r.Start) }

// Len returns the inclusive extent along axis i.
func (r Region) Len(i int) int { return r.End[i] - r.Start[i] + 1 }

// Validate checks start[i] <= end[i] and end[i] < shape[i] for every axis,
// and that the Region's dimensionality matches shape.
func (r Region) Validate(shape []int) error {
	if len(r.Start) != len(shape) || len(r.End) != len(shape) {
		return errors.Wrapf(ErrOutOfRange, "region has %d dims, memory has %d", len(r.Start), len(shape))
	}
	for i := range shape {
		if r.Start[i] > r.End[i] {
			return errors.Wrapf(ErrOutOfRange, "axis %d: start %d > end %d", i, r.Start[i], r.End[i])
		}
		if r.End[i] >= shape[i] {
			return errors.Wrapf(ErrOutOfRange, "axis %d: end %d >= size %d", i, r.End[i], shape[i])
		}
		if r.Start[i] < 0 {
			return errors.Wrapf(ErrOutOfRange, "axis %d: start %d < 0", i, r.Start[i])
		}
	}
	return nil
}

// SingleAxisDiffers reports whether exactly one axis differs between Start
// and End (the CopyPixelStrip precondition), returning that axis index.
func (r Region) SingleAxisDiffers() (axis int, ok bool) {
	axis = -1
	for i := range r.Start {
		if r.Start[i] != r.End[i] {
			if axis != -1 {
				return -1, false
			}
			axis = i
		}
	}
	if axis == -1 {
		return -1, false
	}
	return axis, true
}

// Each calls fn once for every coordinate in the Region, with dimension 0
// varying fastest, matching the CopyPixels source-array layout convention
// from spec.md §4.1.
func (r Region) Each(fn func(coord []int)) {
	dims := r.Dims()
	coord := make([]int, dims)
	copy(coord, r.Start)
	for {
		fn(coord)
		i := 0
		for i < dims {
			coord[i]++
			if coord[i] <= r.End[i] {
				break
			}
			coord[i] = r.Start[i]
			i++
		}
		if i == dims {
			return
		}
	}
}

// Size returns the total number of coordinates covered by the Region.
func (r Region) Size() int {
	n := 1
	for i := range r.Start {
		n *= r.Len(i)
	}
	return n
}
