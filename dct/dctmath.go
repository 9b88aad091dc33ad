package dct

import "math"

// computeDCTCoefficient computes the quantised/dequantised coefficient for
// (u,v) of one macroblock's channel from an RGB888 buffer, per spec.md
// §4.6 steps 1-3: shift by -128, accumulate the 2-D DCT sum, quantise and
// dequantise against the supplied quantisation matrix. Shared by Tiler and
// ScaledTiler, which differ only in the buffer each calls this against
// (the full-resolution frame vs. a down-sampled copy).
func computeDCTCoefficient(buf []byte, w, h, i, j, u, v, channel int, quantMat [BlockSize]int64) int64 {
	var sum float64
	for y := 0; y < BlockHeight; y++ {
		py := j*BlockHeight + y
		if py >= h {
			continue
		}
		for x := 0; x < BlockWidth; x++ {
			px := i*BlockWidth + x
			if px >= w {
				continue
			}
			p := alpha(u) * alpha(v) *
				math.Cos(piOver8*(float64(x)+0.5)*float64(u)) *
				math.Cos(piOver8*(float64(y)+0.5)*float64(v))
			o := (py*w+px)*3 + channel
			sum += p * (float64(buf[o]) - 128.0)
		}
	}
	q := quantMat[v*BlockWidth+u]
	// Matches the original's C int truncation-toward-zero, not a proper
	// round-half-to-even: quantize then dequantize.
	g := int64(sum/float64(q) + 0.5)
	return g * q
}
