//go:build withcv
// +build withcv

/*
NAME
  cvsource.go

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

import (
	"io"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// CVSource is a FrameSource backed by a gocv.VideoCapture, the external
// "video decoding" collaborator of spec.md §1.
type CVSource struct {
	path string
	cap  *gocv.VideoCapture
	img  gocv.Mat
	rgb  gocv.Mat
}

// NewCVSource opens path lazily on Start; path may be a video file or a
// gocv device specifier (e.g. "0" for the first webcam).
func NewCVSource(path string) *CVSource {
	return &CVSource{path: path}
}

func (s *CVSource) Name() string { return "gocv:" + s.path }

func (s *CVSource) Start() error {
	cap, err := gocv.VideoCaptureFile(s.path)
	if err != nil {
		return errors.Wrapf(err, "driver: CVSource: open %s", s.path)
	}
	s.cap = cap
	s.img = gocv.NewMat()
	s.rgb = gocv.NewMat()
	return nil
}

func (s *CVSource) Stop() error {
	s.img.Close()
	s.rgb.Close()
	if s.cap != nil {
		return s.cap.Close()
	}
	return nil
}

// NextFrame reads one frame and converts it from gocv's native BGR layout
// to the RGB888 buffer spec.md §4.7 expects.
func (s *CVSource) NextFrame() ([]byte, int, int, error) {
	if s.cap == nil {
		return nil, 0, 0, ErrSourceNotStarted
	}
	if ok := s.cap.Read(&s.img); !ok {
		return nil, 0, 0, io.EOF
	}
	if s.img.Empty() {
		return nil, 0, 0, io.EOF
	}
	gocv.CvtColor(s.img, &s.rgb, gocv.ColorBGRToRGB)
	return s.rgb.ToBytes(), s.rgb.Cols(), s.rgb.Rows(), nil
}
