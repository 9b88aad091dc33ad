package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

// TestFollowPicksUpAppendedRecords exercises Follow mode: a log still being
// written to by a live Recorder is replayed as records are appended,
// without waiting for the recorder to close the file.
func TestFollowPicksUpAppendedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.log")
	cfg := display.Config{FVDims: []int{2, 2, 1}, DisplayW: 2, DisplayH: 2, NumPlanes: 1, IVSize: 2}

	r, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Record(display.Init{Config: cfg})
	r.Record(display.FillPixelCmd{Pixel: pixel.NewPixel(9, 9, 9, 9), Start: []int{0, 0, 0}, End: []int{1, 1, 0}})

	// Give the recorder a moment to flush the initial records before we
	// start following, so the file exists with content when opened.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for recorder to write initial records")
		}
		time.Sleep(10 * time.Millisecond)
	}

	p, err := Follow(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	r.Record(display.ShutdownCmd{})
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for {
		if done, ferr := p.isFinished(); done {
			if ferr != nil {
				t.Fatal(ferr)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for follower to reach EOT")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var sawFill bool
	for {
		cmd, ok := p.pop()
		if !ok {
			break
		}
		if _, ok := cmd.(display.FillPixelCmd); ok {
			sawFill = true
		}
	}
	if !sawFill {
		t.Fatal("expected FillPixelCmd to have been parsed via Follow")
	}
}
