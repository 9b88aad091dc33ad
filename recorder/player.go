package recorder

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/logging"
	"github.com/pixelbridge/nddi/wire"
)

// Player reads a recorded log back, parsing it on a background goroutine
// into a FIFO that a foreground loop applies to a live Display.
type Player struct {
	mu       sync.Mutex
	queue    []display.Command
	finished bool

	readErr error
	log     logging.Logger
}

// ReadInitConfig reads just the first record of a log file and returns the
// Config it carries, without starting a Player. Callers use this to
// construct the Display that Player.Play will then drive.
func ReadInitConfig(path string) (display.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return display.Config{}, errors.Wrap(err, "recorder: ReadInitConfig")
	}
	defer f.Close()
	cmd, err := wire.Read(bufio.NewReader(f))
	if err != nil {
		return display.Config{}, errors.Wrap(err, "recorder: ReadInitConfig: read")
	}
	init, ok := cmd.(display.Init)
	if !ok {
		return display.Config{}, errors.Errorf("recorder: ReadInitConfig: first record is %s, not Initialize", cmd.Tag())
	}
	return init.Config, nil
}

// New opens path and starts the background parse goroutine. Parsing stops
// at the idEOT sentinel or end of file, whichever comes first.
func New(path string, log logging.Logger) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "recorder: Player.New")
	}
	p := &Player{log: log}
	go p.parse(f, nil)
	return p, nil
}

// Follow opens path and, once it reaches the current end of file without
// an EOT, watches the file for further writes and keeps parsing as bytes
// are appended — for replaying a log that is still being recorded.
func Follow(path string, log logging.Logger) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "recorder: Player.Follow")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "recorder: Player.Follow: fsnotify")
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.Close()
		return nil, errors.Wrap(err, "recorder: Player.Follow: watch")
	}
	p := &Player{log: log}
	go p.parse(f, watcher)
	return p, nil
}

func (p *Player) enqueue(cmd display.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, cmd)
}

func (p *Player) setFinished(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
	p.readErr = err
}

// parse reads framed records from f until EOT. If watcher is non-nil, a
// read that hits end of file before the EOT tag waits for a Write event on
// the file before retrying, implementing Follow mode.
func (p *Player) parse(f *os.File, watcher *fsnotify.Watcher) {
	defer f.Close()
	if watcher != nil {
		defer watcher.Close()
	}
	r := bufio.NewReader(f)
	for {
		if watcher != nil {
			// wire.Read reports both the EOT sentinel and the current end
			// of an in-progress file as io.EOF, so Follow mode peeks the
			// tag to tell a finished log from one still being written.
			if b, perr := r.Peek(4); perr == nil && binary.BigEndian.Uint32(b) == uint32(display.TagEOT) {
				p.setFinished(nil)
				return
			}
		}
		cmd, err := wire.Read(r)
		switch {
		case err == io.EOF && watcher == nil:
			p.setFinished(nil)
			return
		case err == io.EOF:
			// End of the bytes written so far: wait for the recorder to
			// append more.
			select {
			case <-watcher.Events:
				r.Reset(f)
				continue
			case werr := <-watcher.Errors:
				if p.log != nil {
					p.log.Log(logging.Error, "recorder: player: watch failed", "error", werr.Error())
				}
				p.setFinished(errors.Wrap(werr, "recorder: Player: follow"))
				return
			}
		case err != nil:
			if p.log != nil {
				p.log.Log(logging.Error, "recorder: player: malformed record", "error", err.Error())
			}
			p.setFinished(errors.Wrap(err, "recorder: Player: protocol violation"))
			return
		default:
			p.enqueue(cmd)
		}
	}
}

func (p *Player) pop() (display.Command, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, false
	}
	cmd := p.queue[0]
	p.queue = p.queue[1:]
	return cmd, true
}

func (p *Player) isFinished() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished, p.readErr
}

// Play dequeues and applies every recorded command to d in order. On
// end-of-stream it performs a final trivial Latch(0,0,1,1) before
// returning, flushing any renderer that batches output (spec.md §4.3).
func (p *Player) Play(d *display.Display) error {
	for {
		cmd, ok := p.pop()
		if !ok {
			done, err := p.isFinished()
			if done {
				if err != nil {
					return err
				}
				break
			}
			runtime.Gosched()
			continue
		}
		if cmd.Tag() == display.TagInit || cmd.Tag() == display.TagShutdown {
			// Initialize only carries the Config used to construct d,
			// which already exists by the time Play runs; Shutdown is the
			// Player's own prerogative once the stream is exhausted (the
			// trailing Latch below must still see a live display), not an
			// in-stream command to execute immediately.
			continue
		}
		if _, err := cmd.Apply(d); err != nil {
			if p.log != nil {
				p.log.Log(logging.Error, "recorder: player: apply failed", "tag", cmd.Tag().String(), "error", err.Error())
			}
			return errors.Wrapf(err, "recorder: Player: apply %s", cmd.Tag())
		}
	}
	_, err := d.Latch(0, 0, 1, 1)
	return err
}
