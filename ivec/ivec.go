// Package ivec provides the nDDI Input Vector: an ordered sequence of
// integers that is the left operand of every per-pixel coefficient-matrix
// multiplication. Positions 0 and 1 are conceptually (1, pixel-x) and
// (pixel-y); positions 2..len-1 are client-writable.
package ivec

import "github.com/pkg/errors"

// ErrTooShort is returned when a Vector is constructed with fewer than two
// elements.
var ErrTooShort = errors.New("ivec: input vector must have length >= 2")

// Vector is the Input Vector memory.
type Vector struct {
	values []int64
}

// New allocates a Vector of the given size, positions 0 and 1 fixed at 1
// and 0 respectively (the pixel x/y substitutions happen at evaluation
// time, not here), and the writable tail zeroed.
func New(size int) (*Vector, error) {
	if size < 2 {
		return nil, ErrTooShort
	}
	v := &Vector{values: make([]int64, size)}
	v.values[0] = 1
	return v, nil
}

// Len returns the Input Vector's length.
func (v *Vector) Len() int { return len(v.values) }

// At returns the value at position i, without substituting x/y/p sentinels
// (those substitutions are the display package's responsibility at
// evaluation time).
func (v *Vector) At(i int) int64 { return v.values[i] }

// Update atomically (from the caller's point of view; callers hold the
// display's lock) overwrites positions 2..len-1 with values. len(values)
// must equal Len()-2.
func (v *Vector) Update(values []int64) error {
	if len(values) != len(v.values)-2 {
		return errors.Errorf("ivec: expected %d values, got %d", len(v.values)-2, len(values))
	}
	copy(v.values[2:], values)
	return nil
}

// Snapshot returns a copy of the full backing slice, for use building the
// evaluation vector at a given pixel.
func (v *Vector) Snapshot() []int64 {
	out := make([]int64, len(v.values))
	copy(out, v.values)
	return out
}
