// Package coeff implements the nDDI Coefficient Matrix sentinel variant and
// the Coefficient Plane stack: a W x H x P grid of (Matrix, Scaler) cells
// evaluated per screen pixel from plane 0 downward.
package coeff

import (
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/pixel"
	"github.com/pixelbridge/nddi/region"
)

// Kind distinguishes a literal coefficient value from one of the three
// evaluation-time sentinels.
type Kind uint8

const (
	// KindLiteral is an ordinary integer coefficient.
	KindLiteral Kind = iota
	// KindUnchanged leaves a matrix cell's existing value untouched during
	// a bulk write; it is never a valid evaluation-time value.
	KindUnchanged
	// KindX substitutes the screen pixel's x coordinate at evaluation time.
	KindX
	// KindY substitutes the screen pixel's y coordinate at evaluation time.
	KindY
	// KindP substitutes the current plane index at evaluation time.
	KindP
)

// Value is one cell of a Coefficient Matrix: a tagged variant of
// {Literal(int), Unchanged, X, Y, P}, matching Design Notes §9. The X/Y/P
// sentinels carry an additional literal offset, added to the substituted
// coordinate at evaluation time; this lets a single cell express "screen
// x translated by a per-tile constant", which a tiler needs to address a
// Frame Volume tile smaller than the display without a second matrix row.
type Value struct {
	kind Kind
	lit  int64
}

// Literal constructs a literal coefficient value.
func Literal(v int64) Value { return Value{kind: KindLiteral, lit: v} }

// Unchanged is the COEFFICIENT_UNCHANGED sentinel.
var Unchanged = Value{kind: KindUnchanged}

// MatrixX is the COEFFICIENT_MATRIX_X sentinel.
var MatrixX = Value{kind: KindX}

// MatrixY is the COEFFICIENT_MATRIX_Y sentinel.
var MatrixY = Value{kind: KindY}

// MatrixP is the COEFFICIENT_MATRIX_P sentinel.
var MatrixP = Value{kind: KindP}

// MatrixXOffset is the COEFFICIENT_MATRIX_X sentinel translated by offset:
// it resolves to x+offset.
func MatrixXOffset(offset int64) Value { return Value{kind: KindX, lit: offset} }

// MatrixYOffset is the COEFFICIENT_MATRIX_Y sentinel translated by offset:
// it resolves to y+offset.
func MatrixYOffset(offset int64) Value { return Value{kind: KindY, lit: offset} }

// Kind reports the Value's tag.
func (v Value) Kind() Kind { return v.kind }

// Int reports the literal payload: the value of a KindLiteral cell, or the
// offset an X/Y/P sentinel adds to its substituted coordinate.
func (v Value) Int() int64 { return v.lit }

// Resolve substitutes the evaluation-time sentinels with the pixel's x, y
// and the current plane index p, returning the literal coefficient value
// to use in the matrix-vector product.
func (v Value) Resolve(x, y, p int) int64 {
	switch v.kind {
	case KindX:
		return int64(x) + v.lit
	case KindY:
		return int64(y) + v.lit
	case KindP:
		return int64(p) + v.lit
	default:
		return v.lit
	}
}

// Matrix is an FVD x IV matrix of coefficient Values plus the one packed
// Scaler applied to the plane's contribution.
type Matrix struct {
	FVD, IV int
	cells   []Value // row-major, length FVD*IV
	Scaler  pixel.Scaler
}

// NewMatrix allocates an FVD x IV matrix with every cell set to Unchanged
// and a zero Scaler.
func NewMatrix(fvd, iv int) *Matrix {
	cells := make([]Value, fvd*iv)
	for i := range cells {
		cells[i] = Unchanged
	}
	return &Matrix{FVD: fvd, IV: iv, cells: cells}
}

// At returns the Value at (row, col).
func (m *Matrix) At(row, col int) Value { return m.cells[row*m.IV+col] }

// Set assigns the Value at (row, col), honoring the COEFFICIENT_UNCHANGED
// sentinel by leaving the existing cell untouched.
func (m *Matrix) Set(row, col int, v Value) {
	if v.kind == KindUnchanged {
		return
	}
	m.cells[row*m.IV+col] = v
}

// SetRaw assigns the Value at (row, col) unconditionally, including
// Unchanged (used when initialising a fresh matrix, where "unchanged"
// would otherwise be meaningless).
func (m *Matrix) SetRaw(row, col int, v Value) { m.cells[row*m.IV+col] = v }

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{FVD: m.FVD, IV: m.IV, cells: append([]Value(nil), m.cells...), Scaler: m.Scaler}
	return out
}

// Row computes one row of the coefficient matrix dotted with the Input
// Vector, substituting x/y/p sentinels first.
func (m *Matrix) Row(row int, x, y, p int, iv []int64) int64 {
	var sum int64
	base := row * m.IV
	for c := 0; c < m.IV; c++ {
		sum += m.cells[base+c].Resolve(x, y, p) * iv[c]
	}
	return sum
}

// ErrOutOfRange is returned by Plane methods when a Region exceeds the
// plane's shape.
var ErrOutOfRange = errors.New("coeff: out of range")

// Plane is the W x H x P Coefficient Plane stack.
type Plane struct {
	W, H, P, FVD, IV int
	cells            []*Matrix // row-major over (x,y,p): index = (p*H+y)*W+x
}

// NewPlane allocates a stack of w*h*p identity-ish matrices (every cell
// Unchanged, scaler zero); callers are expected to initialise it via Fill
// commands, matching the tilers' InitializeCoefficientPlanes routines.
func NewPlane(w, h, p, fvd, iv int) *Plane {
	cells := make([]*Matrix, w*h*p)
	for i := range cells {
		cells[i] = NewMatrix(fvd, iv)
	}
	return &Plane{W: w, H: h, P: p, FVD: fvd, IV: iv, cells: cells}
}

func (pl *Plane) index(x, y, p int) int { return (p*pl.H+y)*pl.W + x }

// At returns the matrix at (x, y, p).
func (pl *Plane) At(x, y, p int) *Matrix { return pl.cells[pl.index(x, y, p)] }

// shape3 returns the plane's shape in (x,y,p) order for Region validation.
func (pl *Plane) shape3() []int { return []int{pl.W, pl.H, pl.P} }

// FillMatrix writes src (honoring COEFFICIENT_UNCHANGED per-cell) into
// every (x,y,p) cell of r.
func (pl *Plane) FillMatrix(r region.Region, src *Matrix) error {
	if err := r.Validate(pl.shape3()); err != nil {
		return errors.Wrap(err, "coeff: FillMatrix")
	}
	r.Each(func(c []int) {
		dst := pl.At(c[0], c[1], c[2])
		for row := 0; row < src.FVD; row++ {
			for col := 0; col < src.IV; col++ {
				dst.Set(row, col, src.At(row, col))
			}
		}
	})
	return nil
}

// FillCoefficient writes value into (row, col) of every matrix in r.
func (pl *Plane) FillCoefficient(r region.Region, row, col int, value Value) error {
	if err := r.Validate(pl.shape3()); err != nil {
		return errors.Wrap(err, "coeff: FillCoefficient")
	}
	r.Each(func(c []int) {
		pl.At(c[0], c[1], c[2]).Set(row, col, value)
	})
	return nil
}

// FillScaler writes s into every matrix's Scaler in r.
func (pl *Plane) FillScaler(r region.Region, s pixel.Scaler) error {
	if err := r.Validate(pl.shape3()); err != nil {
		return errors.Wrap(err, "coeff: FillScaler")
	}
	r.Each(func(c []int) {
		pl.At(c[0], c[1], c[2]).Scaler = s
	})
	return nil
}
