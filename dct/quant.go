package dct

// quantizationMatrix computes Nelson's quantisation matrix (M. Nelson,
// "The Data Compression Book"): Q[v,u] = 1 + (1+u+v)*quality.
func quantizationMatrix(quality int) [BlockSize]int64 {
	var q [BlockSize]int64
	for v := 0; v < BlockHeight; v++ {
		for u := 0; u < BlockWidth; u++ {
			q[v*BlockWidth+u] = int64(1 + (1+u+v)*quality)
		}
	}
	return q
}
