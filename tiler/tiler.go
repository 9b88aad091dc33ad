/*
NAME
  tiler.go

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tiler provides the interface shared by the cache-based, flat, and
// DCT/IT transform client-side tilers, each of which turns a raw RGB888
// frame into the display-update commands that keep the device's Frame
// Volume, Coefficient Plane stack, and Input Vector in sync with it.
package tiler

import "github.com/pixelbridge/nddi/display"

// Tiler maps successive RGB888 frames onto the device commands needed to
// reconstruct them, and exposes the Display it drives so a caller can
// Latch it once the frame's commands are all submitted.
type Tiler interface {
	// UpdateDisplay submits whatever Fill/Copy commands this frame's
	// encoding needs against a w x h RGB888 buffer.
	UpdateDisplay(buf []byte, w, h int) error

	// Display returns the Tiler's underlying Display.
	Display() *display.Display
}
