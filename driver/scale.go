/*
NAME
  scale.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package driver

// scaledSource wraps a FrameSource with a uniform box-filter down-scale
// (--scale n), applied ahead of tiling so every mode, not just --mode dct,
// can run against a reduced-resolution frame.
type scaledSource struct {
	FrameSource
	factor int
}

// NewScaledSource wraps src so every frame is box-filter down-sampled by
// factor before being handed to the tiler. factor <= 1 returns src
// unchanged.
func NewScaledSource(src FrameSource, factor int) FrameSource {
	if factor <= 1 {
		return src
	}
	return &scaledSource{FrameSource: src, factor: factor}
}

func (s *scaledSource) NextFrame() ([]byte, int, int, error) {
	buf, w, h, err := s.FrameSource.NextFrame()
	if err != nil {
		return nil, 0, 0, err
	}
	dw, dh := w/s.factor, h/s.factor
	if dw == 0 || dh == 0 {
		return buf, w, h, nil
	}
	dst := make([]byte, dw*dh*3)
	f := s.factor
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sum [3]int
			for dy := 0; dy < f; dy++ {
				for dx := 0; dx < f; dx++ {
					o := ((y*f+dy)*w + (x*f + dx)) * 3
					sum[0] += int(buf[o])
					sum[1] += int(buf[o+1])
					sum[2] += int(buf[o+2])
				}
			}
			n := f * f
			o := (y*dw + x) * 3
			dst[o] = byte(sum[0] / n)
			dst[o+1] = byte(sum[1] / n)
			dst[o+2] = byte(sum[2] / n)
		}
	}
	return dst, dw, dh, nil
}
