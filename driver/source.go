/*
NAME
  source.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package driver implements the per-frame driver loop of spec.md §4.7: pull
// a decoded RGB888 frame from a FrameSource, optionally store or replay it
// through a bounded rewind buffer, hand it to the active tiler, and Latch.
package driver

import (
	"errors"
	"io"
)

// ErrSourceNotStarted is returned by NextFrame if called before Start.
var ErrSourceNotStarted = errors.New("driver: source not started")

// FrameSource hands back whole decoded RGB888 frames rather than a byte
// stream to be lexed, since nDDI's driver loop (spec.md §4.7 step 1)
// operates on buffers, not containers.
type FrameSource interface {
	// Name identifies the source for logging.
	Name() string

	// Start opens the underlying resource (file, camera).
	Start() error

	// Stop releases it. Safe to call after a failed Start.
	Stop() error

	// NextFrame returns the next decoded RGB888 frame and its dimensions.
	// It returns io.EOF once the source is exhausted.
	NextFrame() (buf []byte, w, h int, err error)
}

// rawFrameSource reads fixed-size RGB888 frames from an io.Reader: the
// stdlib-only FrameSource used by tests to feed an already-decoded raw
// stream.
type rawFrameSource struct {
	r       io.Reader
	w, h    int
	started bool
}

// NewRawSource wraps r, a stream of back-to-back w*h*3-byte RGB888 frames.
func NewRawSource(r io.Reader, w, h int) FrameSource {
	return &rawFrameSource{r: r, w: w, h: h}
}

func (s *rawFrameSource) Name() string { return "raw" }

func (s *rawFrameSource) Start() error {
	s.started = true
	return nil
}

func (s *rawFrameSource) Stop() error {
	s.started = false
	return nil
}

func (s *rawFrameSource) NextFrame() ([]byte, int, int, error) {
	if !s.started {
		return nil, 0, 0, ErrSourceNotStarted
	}
	buf := make([]byte, s.w*s.h*3)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, 0, 0, err
	}
	return buf, s.w, s.h, nil
}

// primedSource replays one already-read frame before falling back to its
// wrapped FrameSource: since a tiler must be allocated at its display's
// exact width/height (spec.md §4.1), but that width/height is only known
// after decoding the video file's first frame, the caller reads that
// frame to size the tiler and re-injects it here rather than losing it.
type primedSource struct {
	FrameSource
	buf       []byte
	w, h      int
	delivered bool
}

// Prime wraps an already-started src so its first NextFrame call replays
// (buf, w, h) instead of reading again.
func Prime(src FrameSource, buf []byte, w, h int) FrameSource {
	return &primedSource{FrameSource: src, buf: buf, w: w, h: h}
}

// Start is a no-op: the wrapped source is already started by the caller
// that obtained the priming frame.
func (s *primedSource) Start() error { return nil }

func (s *primedSource) NextFrame() ([]byte, int, int, error) {
	if !s.delivered {
		s.delivered = true
		return s.buf, s.w, s.h, nil
	}
	return s.FrameSource.NextFrame()
}
