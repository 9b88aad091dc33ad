package dct

import (
	"math"

	"github.com/pixelbridge/nddi/pixel"
)

const (
	piOver8 = math.Pi / 8
	sqrt125 = 0.353553391 // sqrt(1/8), alpha(0)
	sqrt250 = 0.5         // sqrt(1/4), alpha(k!=0)
)

func alpha(k int) float64 {
	if k == 0 {
		return sqrt125
	}
	return sqrt250
}

// basisMagnitude renders the signed, two's-complement-packed magnitude of
// basis function (u,v) at macroblock pixel (x,y), per spec.md §4.6:
// alpha(u)*alpha(v)*MaxDCTCoeff*cos(pi/8*(x+0.5)*u)*cos(pi/8*(y+0.5)*v),
// clamped to 127 and negated via two's complement if the magnitude is
// negative.
func basisMagnitude(u, v, x, y int) uint8 {
	m := alpha(u) * alpha(v) * float64(MaxDCTCoeff) *
		math.Cos(piOver8*(float64(x)+0.5)*float64(u)) *
		math.Cos(piOver8*(float64(y)+0.5)*float64(v))
	neg := m < 0
	if neg {
		m = -m
	}
	if m > 127 {
		m = 127
	}
	c := uint8(m)
	if neg {
		c = uint8(-int8(c))
	}
	return c
}

// renderBasisPlanes builds the BlockSize basis-function tiles (one per
// zig-zag position), each BlockWidth*BlockHeight pixels with every channel
// holding the same signed magnitude — channel selectivity is applied later
// by the per-plane Scaler, not by the basis content itself.
func renderBasisPlanes() [BlockSize][]pixel.Pixel {
	zz := zigZagTable()
	var planes [BlockSize][]pixel.Pixel
	for v := 0; v < BlockHeight; v++ {
		for u := 0; u < BlockWidth; u++ {
			z := zz[v*BlockWidth+u]
			tile := make([]pixel.Pixel, BlockSize)
			for y := 0; y < BlockHeight; y++ {
				for x := 0; x < BlockWidth; x++ {
					c := basisMagnitude(u, v, x, y)
					tile[y*BlockWidth+x] = pixel.NewPixel(c, c, c, 0xff)
				}
			}
			planes[z] = tile
		}
	}
	return planes
}
