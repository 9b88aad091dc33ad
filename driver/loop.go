/*
NAME
  loop.go

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

	"github.com/coreos/go-systemd/daemon"
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/config"
	"github.com/pixelbridge/nddi/dct"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/logging"
	"github.com/pixelbridge/nddi/recorder"
	"github.com/pixelbridge/nddi/stats"
	"github.com/pixelbridge/nddi/tilecache"
	"github.com/pixelbridge/nddi/tiler"
)

// sampleStats reads whatever cache-hit-rate or coefficient-stack-height
// series the active tiler exposes and folds one frame's worth into r. Not
// every mode produces both series: cache exposes hit rate, dct/it expose
// stack heights, and the degenerate single-tile modes (fb, flat, count,
// flow) expose neither beyond a trivial hit rate.
func sampleStats(r *stats.Reporter, t tiler.Tiler) {
	switch tt := t.(type) {
	case *tilecache.Tiler:
		r.AddCacheFrame(tt.Stats)
	case *dct.Tiler:
		r.AddStackHeights(tt.StackHeights())
	case *dct.ScaledTiler:
		r.AddStackHeights(tt.StackHeights(0))
	}
}

// rewindBuffer is the bounded frame store of spec.md §4.7 step 2: frames
// at indices [Start, Start+N) are copied into it as they pass through;
// once full, subsequent frames are replayed from it in a cycle instead of
// being read fresh, so a short clip can be looped without re-decoding.
type rewindBuffer struct {
	start, n  int
	frames    [][]byte
	w, h      int
	replayIdx int
}

func newRewindBuffer(start, n int) *rewindBuffer {
	return &rewindBuffer{start: start, n: n}
}

func (b *rewindBuffer) active(frameIndex int) bool {
	return b.n > 0 && frameIndex >= b.start
}

func (b *rewindBuffer) storing(frameIndex int) bool {
	return frameIndex >= b.start && frameIndex < b.start+b.n && len(b.frames) < b.n
}

func (b *rewindBuffer) store(buf []byte, w, h int) {
	cp := append([]byte(nil), buf...)
	b.frames = append(b.frames, cp)
	b.w, b.h = w, h
}

func (b *rewindBuffer) full() bool { return len(b.frames) >= b.n }

func (b *rewindBuffer) replay() ([]byte, int, int) {
	f := b.frames[b.replayIdx%len(b.frames)]
	b.replayIdx++
	return f, b.w, b.h
}

// Loop runs the driver loop of spec.md §4.7 against src until exhaustion,
// cfg.Frames is reached, or src returns a non-EOF error. It applies
// cfg.Start/Frames windowing, the rewind buffer, the active tiler, and a
// Latch per frame, recording each Latch through rec if non-nil, and
// notifying systemd readiness/watchdog per spec.md §5's session-level
// concern the way a long-running service under systemd expects. If rep is
// non-nil, each frame's cache-hit-rate or stack-height series (whichever
// the active tiler exposes) is folded into it for a later --plot.
func Loop(cfg config.Config, src FrameSource, t tiler.Tiler, rec *recorder.Recorder, rep *stats.Reporter, log logging.Logger) error {
	if err := src.Start(); err != nil {
		return errors.Wrap(err, "driver: Loop: start source")
	}
	defer func() {
		if err := src.Stop(); err != nil {
			log.Log(logging.Warning, "driver: failed to stop source", "error", err)
		}
	}()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Log(logging.Warning, "driver: SdNotify ready failed", "error", err)
	} else if ok {
		log.Log(logging.Debug, "driver: notified systemd ready")
	}

	var rewind *rewindBuffer
	if cfg.Rewind {
		rewind = newRewindBuffer(cfg.RewindStart, cfg.RewindN)
	}

	dispW, err := t.Display().DisplayWidth()
	if err != nil {
		return errors.Wrap(err, "driver: Loop: display width")
	}
	dispH, err := t.Display().DisplayHeight()
	if err != nil {
		return errors.Wrap(err, "driver: Loop: display height")
	}
	subX, subY, subW, subH := 0, 0, dispW, dispH
	if cfg.Subregion {
		subX, subY, subW, subH = cfg.SubX, cfg.SubY, cfg.SubW, cfg.SubH
	}

	var processed int
	for frameIndex := 0; ; frameIndex++ {
		var buf []byte
		var w, h int

		if rewind != nil && rewind.full() && !rewind.storing(frameIndex) {
			buf, w, h = rewind.replay()
		} else {
			buf, w, h, err = src.NextFrame()
			if err == io.EOF {
				log.Log(logging.Info, "driver: source exhausted", "frames", frameIndex)
				break
			}
			if err != nil {
				return errors.Wrap(err, "driver: Loop: NextFrame")
			}
			if rewind != nil && rewind.storing(frameIndex) {
				rewind.store(buf, w, h)
			}
		}

		if frameIndex < cfg.Start {
			continue
		}
		if cfg.Frames >= 0 && processed >= cfg.Frames {
			break
		}
		processed++

		if err := t.UpdateDisplay(buf, w, h); err != nil {
			return errors.Wrapf(err, "driver: Loop: UpdateDisplay frame %d", frameIndex)
		}

		if _, err := t.Display().Latch(subX, subY, subW, subH); err != nil {
			return errors.Wrapf(err, "driver: Loop: Latch frame %d", frameIndex)
		}
		if rec != nil {
			rec.Record(display.LatchCmd{SubX: subX, SubY: subY, SubW: subW, SubH: subH})
		}
		if rep != nil {
			sampleStats(rep, t)
		}

		if processed%100 == 0 {
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.Log(logging.Warning, "driver: SdNotify watchdog failed", "error", err)
			}
		}
	}

	if rec != nil {
		rec.Record(display.ShutdownCmd{})
	}
	return nil
}
