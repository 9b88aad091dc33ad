//go:build !withcv
// +build !withcv

/*
NAME
  cvsource_stub.go

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

import "errors"

// ErrCVNotBuilt is returned by CVSource.Start when pixelbridge was built
// without the withcv build tag.
var ErrCVNotBuilt = errors.New("driver: built without gocv support; rebuild with -tags withcv")

// CVSource stands in for the gocv-backed FrameSource when pixelbridge is
// built without the withcv tag, so cmd/pixelbridge can reference
// NewCVSource unconditionally.
type CVSource struct{ path string }

func NewCVSource(path string) *CVSource { return &CVSource{path: path} }

func (s *CVSource) Name() string { return "gocv:" + s.path }
func (s *CVSource) Start() error { return ErrCVNotBuilt }
func (s *CVSource) Stop() error  { return nil }
func (s *CVSource) NextFrame() ([]byte, int, int, error) {
	return nil, 0, 0, ErrCVNotBuilt
}
