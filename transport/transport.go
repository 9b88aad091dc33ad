// Package transport implements the synchronous request/response RPC
// between a pixelbridge client and an nDDI display server: one round trip
// per command, pixel batches carried as opaque blobs by the underlying
// wire framing (spec.md §4.4, §6).
package transport

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"

	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
	"github.com/pixelbridge/nddi/wire"
)

// replyKind tells the reader how to decode a successful reply's payload;
// it is derived from the request's tag, never sent on the wire itself.
type replyKind uint8

const (
	replyStatus replyKind = iota
	replyInt
	replyFrame
)

func kindFor(tag display.Tag) replyKind {
	switch tag {
	case display.TagDisplayWidth, display.TagDisplayHeight, display.TagNumCoefficientPlanes, display.TagGetFullScaler:
		return replyInt
	case display.TagLatch:
		return replyFrame
	default:
		return replyStatus
	}
}

func writeReply(w io.Writer, kind replyKind, result interface{}, applyErr error) error {
	if applyErr != nil {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		return writeString(w, applyErr.Error())
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	switch kind {
	case replyInt:
		var v int64
		switch r := result.(type) {
		case int:
			v = int64(r)
		case int32:
			v = int64(r)
		}
		return writeI64(w, v)
	case replyFrame:
		f, _ := result.(display.Frame)
		return writeFrame(w, f)
	default:
		return nil
	}
}

func readReply(r io.Reader, kind replyKind) (interface{}, error) {
	var ok [1]byte
	if _, err := io.ReadFull(r, ok[:]); err != nil {
		return nil, err
	}
	if ok[0] == 0 {
		msg, err := readString(r)
		if err != nil {
			return nil, err
		}
		return nil, errors.Wrap(display.ErrTransportFailed, msg)
	}
	switch kind {
	case replyInt:
		v, err := readI64(r)
		return int(v), err
	case replyFrame:
		return readFrame(r)
	default:
		return nil, nil
	}
}

func writeI64(w io.Writer, v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	_, err := w.Write(b[:])
	return err
}

func readI64(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeI64(w, int64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readI64(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeFrame(w io.Writer, f display.Frame) error {
	for _, v := range []int{f.X, f.Y, f.W, f.H} {
		if err := writeI64(w, int64(v)); err != nil {
			return err
		}
	}
	if err := writeI64(w, int64(len(f.Pixels))); err != nil {
		return err
	}
	buf := make([]byte, 4*len(f.Pixels))
	for i, p := range f.Pixels {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(p))
	}
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) (display.Frame, error) {
	vals := make([]int, 4)
	for i := range vals {
		v, err := readI64(r)
		if err != nil {
			return display.Frame{}, err
		}
		vals[i] = int(v)
	}
	n, err := readI64(r)
	if err != nil {
		return display.Frame{}, err
	}
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return display.Frame{}, err
	}
	pixels := make([]pixel.Pixel, n)
	for i := range pixels {
		pixels[i] = pixel.Pixel(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return display.Frame{X: vals[0], Y: vals[1], W: vals[2], H: vals[3], Pixels: pixels}, nil
}

// Client issues one command per round trip over a net.Conn, synchronously
// waiting for the reply before the caller may issue the next (spec.md §5
// "Client-to-server").
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial opens a TCP connection to addr and sends the Initialize request
// built from cfg, per spec.md §4.4.
func Dial(addr string, cfg display.Config) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(display.ErrTransportFailed, err.Error())
	}
	c := &Client{conn: conn, r: bufio.NewReader(conn)}
	if _, err := c.Do(display.Init{Config: cfg}); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Do sends cmd and blocks for its reply.
func (c *Client) Do(cmd display.Command) (interface{}, error) {
	if err := wire.Write(c.conn, cmd); err != nil {
		return nil, errors.Wrap(display.ErrTransportFailed, err.Error())
	}
	result, err := readReply(c.r, kindFor(cmd.Tag()))
	if err != nil {
		return nil, errors.Wrap(display.ErrTransportFailed, err.Error())
	}
	return result, err
}

// Close closes the underlying connection after sending Shutdown.
func (c *Client) Close() error {
	_, err := c.Do(display.ShutdownCmd{})
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Server executes commands received over a net.Conn against a live
// Display, replying to each before reading the next.
type Server struct {
	d *display.Display
}

// NewServer wraps an already-constructed Display. The first request on
// each connection is expected to be Initialize and is acknowledged without
// being applied (the Display is constructed by the caller, matching the
// Client/Server split used by the recorder package's Player).
func NewServer(d *display.Display) *Server { return &Server{d: d} }

// Serve handles one client connection until it closes or sends Shutdown.
func (s *Server) Serve(conn net.Conn) error {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		cmd, err := wire.Read(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(display.ErrProtocolViolation, err.Error())
		}
		kind := kindFor(cmd.Tag())
		if cmd.Tag() == display.TagInit {
			if err := writeReply(conn, replyStatus, nil, nil); err != nil {
				return err
			}
			continue
		}
		result, applyErr := cmd.Apply(s.d)
		if err := writeReply(conn, kind, result, applyErr); err != nil {
			return err
		}
		if cmd.Tag() == display.TagShutdown {
			return nil
		}
	}
}
