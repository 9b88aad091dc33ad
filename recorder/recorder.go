// Package recorder implements the client-side command log: a Recorder
// that streams a single-producer/single-consumer queue of commands to an
// append-only binary file, and a Player that reads such a file back and
// replays it against a live display (spec.md §4.3).
package recorder

import (
	"bufio"
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/logging"
	"github.com/pixelbridge/nddi/wire"
)

// Recorder owns a single background goroutine that drains a FIFO of
// recorded commands into a log file, terminating it with the idEOT
// sentinel on Close. Record and Close are safe for concurrent use; Record
// itself never blocks on I/O.
type Recorder struct {
	mu     sync.Mutex
	queue  []display.Command
	closed bool

	done chan struct{}
	log  logging.Logger
}

// New opens path for writing and starts the drain goroutine.
func New(path string, log logging.Logger) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "recorder: New")
	}
	r := &Recorder{done: make(chan struct{}), log: log}
	go r.run(f)
	return r, nil
}

// Record enqueues cmd for asynchronous serialisation. It never blocks on
// I/O; the queue is bounded only by memory, matching spec.md §4.3.
func (r *Recorder) Record(cmd display.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.queue = append(r.queue, cmd)
}

// pop removes and returns the oldest queued command, if any.
func (r *Recorder) pop() (display.Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil, false
	}
	cmd := r.queue[0]
	r.queue = r.queue[1:]
	return cmd, true
}

// finished reports whether Close has been called and the queue is empty.
func (r *Recorder) finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed && len(r.queue) == 0
}

func (r *Recorder) run(f *os.File) {
	defer close(r.done)
	w := bufio.NewWriter(f)
	defer f.Close()
	for {
		cmd, ok := r.pop()
		if !ok {
			if r.finished() {
				break
			}
			// The queue has drained: make what is written so far visible
			// in the file, so a Follow player can trail the recording.
			if err := w.Flush(); err != nil && r.log != nil {
				r.log.Log(logging.Error, "recorder: flush failed", "error", err.Error())
			}
			runtime.Gosched()
			continue
		}
		if err := wire.Write(w, cmd); err != nil {
			if r.log != nil {
				r.log.Log(logging.Error, "recorder: write failed", "error", err.Error())
			}
		}
	}
	if err := wire.WriteEOT(w); err != nil && r.log != nil {
		r.log.Log(logging.Error, "recorder: EOT write failed", "error", err.Error())
	}
	if err := w.Flush(); err != nil && r.log != nil {
		r.log.Log(logging.Error, "recorder: flush failed", "error", err.Error())
	}
}

// Close marks the stream finished and blocks until the drain goroutine has
// written the EOT sentinel and flushed the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	<-r.done
	return nil
}
