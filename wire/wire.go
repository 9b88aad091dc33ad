// Package wire implements the canonical binary framing for the nDDI
// command surface: a stream of {u32 tag, payload} records terminated by a
// tag-0 (EOT) sentinel. Any two implementations that produce the same
// sequence of tags and payloads are conformant with each other (spec.md
// §6 Log format).
package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/display"
	"github.com/pixelbridge/nddi/pixel"
)

// ErrUnknownTag marks a tag value that does not belong to the fixed,
// stable command set; decoding it is a ProtocolViolation.
var ErrUnknownTag = errors.New("wire: unknown command tag")

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
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

func writeInts(w io.Writer, vs []int) error {
	if err := writeU32(w, uint32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := writeI64(w, int64(v)); err != nil {
			return err
		}
	}
	return nil
}

func readInts(r io.Reader) ([]int, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		v, err := readI64(r)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

func writeI64s(w io.Writer, vs []int64) error {
	if err := writeU32(w, uint32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := writeI64(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readI64s(r io.Reader) ([]int64, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		v, err := readI64(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeBool(w io.Writer, b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func writePixel(w io.Writer, p pixel.Pixel) error { return writeU32(w, uint32(p)) }

func readPixel(r io.Reader) (pixel.Pixel, error) {
	v, err := readU32(r)
	return pixel.Pixel(v), err
}

// writePixelBlob writes a pixel batch as an opaque byte blob (4 bytes per
// pixel), matching spec.md §6's "pixels carried as an opaque byte blob"
// requirement so cost stays proportional to payload size.
func writePixelBlob(w io.Writer, ps []pixel.Pixel) error {
	if err := writeU32(w, uint32(len(ps))); err != nil {
		return err
	}
	buf := make([]byte, 4*len(ps))
	for i, p := range ps {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(p))
	}
	_, err := w.Write(buf)
	return err
}

func readPixelBlob(r io.Reader) ([]pixel.Pixel, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]pixel.Pixel, n)
	for i := range out {
		out[i] = pixel.Pixel(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return out, nil
}

func writeScaler(w io.Writer, s pixel.Scaler) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(s))
	_, err := w.Write(b[:])
	return err
}

func readScaler(r io.Reader) (pixel.Scaler, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return pixel.Scaler(binary.BigEndian.Uint64(b[:])), nil
}

func writeScalers(w io.Writer, ss []pixel.Scaler) error {
	if err := writeU32(w, uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeScaler(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readScalers(r io.Reader) ([]pixel.Scaler, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]pixel.Scaler, n)
	for i := range out {
		s, err := readScaler(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// coeff.Value is serialised as {u8 kind, i64 literal}; literal is the
// KindLiteral value or the X/Y/P sentinel's offset, and is always present
// to keep records fixed-width.
func writeCoeffValue(w io.Writer, v coeff.Value) error {
	if _, err := w.Write([]byte{byte(v.Kind())}); err != nil {
		return err
	}
	return writeI64(w, v.Int())
}

func readCoeffValue(r io.Reader) (coeff.Value, error) {
	var kb [1]byte
	if _, err := io.ReadFull(r, kb[:]); err != nil {
		return coeff.Value{}, err
	}
	lit, err := readI64(r)
	if err != nil {
		return coeff.Value{}, err
	}
	switch coeff.Kind(kb[0]) {
	case coeff.KindLiteral:
		return coeff.Literal(lit), nil
	case coeff.KindUnchanged:
		return coeff.Unchanged, nil
	case coeff.KindX:
		return coeff.MatrixXOffset(lit), nil
	case coeff.KindY:
		return coeff.MatrixYOffset(lit), nil
	case coeff.KindP:
		return coeff.MatrixP, nil
	default:
		return coeff.Value{}, errors.Wrapf(ErrUnknownTag, "coeff.Kind %d", kb[0])
	}
}

func writeCoeffValues(w io.Writer, vs []coeff.Value) error {
	if err := writeU32(w, uint32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := writeCoeffValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readCoeffValues(r io.Reader) ([]coeff.Value, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]coeff.Value, n)
	for i := range out {
		v, err := readCoeffValue(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeIntGrid(w io.Writer, grid [][]int) error {
	if err := writeU32(w, uint32(len(grid))); err != nil {
		return err
	}
	for _, row := range grid {
		if err := writeInts(w, row); err != nil {
			return err
		}
	}
	return nil
}

func readIntGrid(r io.Reader) ([][]int, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([][]int, n)
	for i := range out {
		row, err := readInts(r)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

func writePixelTiles(w io.Writer, tiles [][]pixel.Pixel) error {
	if err := writeU32(w, uint32(len(tiles))); err != nil {
		return err
	}
	for _, t := range tiles {
		if err := writePixelBlob(w, t); err != nil {
			return err
		}
	}
	return nil
}

func readPixelTiles(r io.Reader) ([][]pixel.Pixel, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([][]pixel.Pixel, n)
	for i := range out {
		t, err := readPixelBlob(r)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func writeSize2(w io.Writer, size [2]int) error { return writeInts(w, size[:]) }

func readSize2(r io.Reader) ([2]int, error) {
	s, err := readInts(r)
	if err != nil || len(s) != 2 {
		return [2]int{}, errors.Wrap(ErrUnknownTag, "wire: malformed size[2]")
	}
	return [2]int{s[0], s[1]}, nil
}

func writePositions(w io.Writer, ps [][2]int) error {
	if err := writeU32(w, uint32(len(ps))); err != nil {
		return err
	}
	for _, p := range ps {
		if err := writeInts(w, p[:]); err != nil {
			return err
		}
	}
	return nil
}

func readPositions(r io.Reader) ([][2]int, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([][2]int, n)
	for i := range out {
		p, err := readInts(r)
		if err != nil || len(p) != 2 {
			return nil, errors.Wrap(ErrUnknownTag, "wire: malformed position pair")
		}
		out[i] = [2]int{p[0], p[1]}
	}
	return out, nil
}

// writeConfig serialises an Initialize request's payload.
func writeConfig(w io.Writer, cfg display.Config) error {
	if err := writeInts(w, cfg.FVDims); err != nil {
		return err
	}
	for _, v := range []int{cfg.DisplayW, cfg.DisplayH, cfg.NumPlanes, cfg.IVSize} {
		if err := writeI64(w, int64(v)); err != nil {
			return err
		}
	}
	if err := writeBool(w, cfg.Fixed8x8); err != nil {
		return err
	}
	return writeBool(w, cfg.SinglePlane)
}

func readConfig(r io.Reader) (display.Config, error) {
	var cfg display.Config
	dims, err := readInts(r)
	if err != nil {
		return cfg, err
	}
	cfg.FVDims = dims
	vals := make([]int, 4)
	for i := range vals {
		v, err := readI64(r)
		if err != nil {
			return cfg, err
		}
		vals[i] = int(v)
	}
	cfg.DisplayW, cfg.DisplayH, cfg.NumPlanes, cfg.IVSize = vals[0], vals[1], vals[2], vals[3]
	if cfg.Fixed8x8, err = readBool(r); err != nil {
		return cfg, err
	}
	if cfg.SinglePlane, err = readBool(r); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteEOT appends the idEOT terminator record (tag 0, no payload).
func WriteEOT(w io.Writer) error { return writeU32(w, uint32(display.TagEOT)) }

// Write serialises cmd as one {u32 tag, payload} record.
func Write(w io.Writer, cmd display.Command) error {
	if err := writeU32(w, uint32(cmd.Tag())); err != nil {
		return err
	}
	switch c := cmd.(type) {
	case display.Init:
		return writeConfig(w, c.Config)
	case display.DisplayWidthCmd, display.DisplayHeightCmd, display.NumCoefficientPlanesCmd,
		display.GetFullScalerCmd, display.ShutdownCmd:
		return nil
	case display.PutPixelCmd:
		if err := writePixel(w, c.Pixel); err != nil {
			return err
		}
		return writeInts(w, c.Loc)
	case display.CopyPixelStripCmd:
		if err := writePixelBlob(w, c.Pixels); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeInts(w, c.End)
	case display.CopyPixelsCmd:
		if err := writePixelBlob(w, c.Pixels); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeInts(w, c.End)
	case display.CopyPixelTilesCmd:
		if err := writePixelTiles(w, c.Tiles); err != nil {
			return err
		}
		if err := writeIntGrid(w, c.Starts); err != nil {
			return err
		}
		return writeSize2(w, c.Size)
	case display.FillPixelCmd:
		if err := writePixel(w, c.Pixel); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeInts(w, c.End)
	case display.CopyFrameVolumeCmd:
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		if err := writeInts(w, c.End); err != nil {
			return err
		}
		return writeInts(w, c.Dest)
	case display.UpdateInputVectorCmd:
		return writeI64s(w, c.Values)
	case display.PutCoefficientMatrixCmd:
		if err := writeCoeffValues(w, c.Values); err != nil {
			return err
		}
		return writeInts(w, c.Loc)
	case display.FillCoefficientMatrixCmd:
		if err := writeCoeffValues(w, c.Values); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeInts(w, c.End)
	case display.FillCoefficientCmd:
		if err := writeCoeffValue(w, c.Value); err != nil {
			return err
		}
		if err := writeI64(w, int64(c.Row)); err != nil {
			return err
		}
		if err := writeI64(w, int64(c.Col)); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeInts(w, c.End)
	case display.FillCoefficientTilesCmd:
		if err := writeCoeffValues(w, c.Coeffs); err != nil {
			return err
		}
		if err := writePositions(w, c.Positions); err != nil {
			return err
		}
		if err := writeIntGrid(w, c.Starts); err != nil {
			return err
		}
		return writeSize2(w, c.Size)
	case display.FillScalerCmd:
		if err := writeScaler(w, c.Scaler); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeInts(w, c.End)
	case display.FillScalerTilesCmd:
		if err := writeScalers(w, c.Scalers); err != nil {
			return err
		}
		if err := writeIntGrid(w, c.Starts); err != nil {
			return err
		}
		return writeSize2(w, c.Size)
	case display.FillScalerTileStackCmd:
		if err := writeScalers(w, c.Scalers); err != nil {
			return err
		}
		if err := writeInts(w, c.Start); err != nil {
			return err
		}
		return writeSize2(w, c.Size)
	case display.SetPixelByteSignModeCmd:
		_, err := w.Write([]byte{byte(c.Mode)})
		return err
	case display.SetFullScalerCmd:
		return writeI64(w, int64(c.Value))
	case display.LatchCmd:
		for _, v := range []int{c.SubX, c.SubY, c.SubW, c.SubH} {
			if err := writeI64(w, int64(v)); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrUnknownTag, "wire: Write: unsupported command type %T", cmd)
	}
}

// Read parses one record. It returns (nil, io.EOF) on the idEOT
// terminator, and wraps ErrUnknownTag for any other unrecognised tag.
func Read(r io.Reader) (display.Command, error) {
	tagVal, err := readU32(r)
	if err != nil {
		return nil, err
	}
	tag := display.Tag(tagVal)
	switch tag {
	case display.TagEOT:
		return nil, io.EOF
	case display.TagInit:
		cfg, err := readConfig(r)
		if err != nil {
			return nil, err
		}
		return display.Init{Config: cfg}, nil
	case display.TagDisplayWidth:
		return display.DisplayWidthCmd{}, nil
	case display.TagDisplayHeight:
		return display.DisplayHeightCmd{}, nil
	case display.TagNumCoefficientPlanes:
		return display.NumCoefficientPlanesCmd{}, nil
	case display.TagPutPixel:
		p, err := readPixel(r)
		if err != nil {
			return nil, err
		}
		loc, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.PutPixelCmd{Pixel: p, Loc: loc}, nil
	case display.TagCopyPixelStrip:
		ps, err := readPixelBlob(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.CopyPixelStripCmd{Pixels: ps, Start: start, End: end}, nil
	case display.TagCopyPixels:
		ps, err := readPixelBlob(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.CopyPixelsCmd{Pixels: ps, Start: start, End: end}, nil
	case display.TagCopyPixelTiles:
		tiles, err := readPixelTiles(r)
		if err != nil {
			return nil, err
		}
		starts, err := readIntGrid(r)
		if err != nil {
			return nil, err
		}
		size, err := readSize2(r)
		if err != nil {
			return nil, err
		}
		return display.CopyPixelTilesCmd{Tiles: tiles, Starts: starts, Size: size}, nil
	case display.TagFillPixel:
		p, err := readPixel(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.FillPixelCmd{Pixel: p, Start: start, End: end}, nil
	case display.TagCopyFrameVolume:
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		dest, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.CopyFrameVolumeCmd{Start: start, End: end, Dest: dest}, nil
	case display.TagUpdateInputVector:
		values, err := readI64s(r)
		if err != nil {
			return nil, err
		}
		return display.UpdateInputVectorCmd{Values: values}, nil
	case display.TagPutCoefficientMatrix:
		values, err := readCoeffValues(r)
		if err != nil {
			return nil, err
		}
		loc, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.PutCoefficientMatrixCmd{Values: values, Loc: loc}, nil
	case display.TagFillCoefficientMatrix:
		values, err := readCoeffValues(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.FillCoefficientMatrixCmd{Values: values, Start: start, End: end}, nil
	case display.TagFillCoefficient:
		v, err := readCoeffValue(r)
		if err != nil {
			return nil, err
		}
		row, err := readI64(r)
		if err != nil {
			return nil, err
		}
		col, err := readI64(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.FillCoefficientCmd{Value: v, Row: int(row), Col: int(col), Start: start, End: end}, nil
	case display.TagFillCoefficientTiles:
		coeffs, err := readCoeffValues(r)
		if err != nil {
			return nil, err
		}
		positions, err := readPositions(r)
		if err != nil {
			return nil, err
		}
		starts, err := readIntGrid(r)
		if err != nil {
			return nil, err
		}
		size, err := readSize2(r)
		if err != nil {
			return nil, err
		}
		return display.FillCoefficientTilesCmd{Coeffs: coeffs, Positions: positions, Starts: starts, Size: size}, nil
	case display.TagFillScaler:
		s, err := readScaler(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		end, err := readInts(r)
		if err != nil {
			return nil, err
		}
		return display.FillScalerCmd{Scaler: s, Start: start, End: end}, nil
	case display.TagFillScalerTiles:
		scalers, err := readScalers(r)
		if err != nil {
			return nil, err
		}
		starts, err := readIntGrid(r)
		if err != nil {
			return nil, err
		}
		size, err := readSize2(r)
		if err != nil {
			return nil, err
		}
		return display.FillScalerTilesCmd{Scalers: scalers, Starts: starts, Size: size}, nil
	case display.TagFillScalerTileStack:
		scalers, err := readScalers(r)
		if err != nil {
			return nil, err
		}
		start, err := readInts(r)
		if err != nil {
			return nil, err
		}
		size, err := readSize2(r)
		if err != nil {
			return nil, err
		}
		return display.FillScalerTileStackCmd{Scalers: scalers, Start: start, Size: size}, nil
	case display.TagSetPixelByteSignMode:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return display.SetPixelByteSignModeCmd{Mode: pixel.SignMode(b[0])}, nil
	case display.TagSetFullScaler:
		v, err := readI64(r)
		if err != nil {
			return nil, err
		}
		return display.SetFullScalerCmd{Value: int32(v)}, nil
	case display.TagGetFullScaler:
		return display.GetFullScalerCmd{}, nil
	case display.TagLatch:
		vals := make([]int, 4)
		for i := range vals {
			v, err := readI64(r)
			if err != nil {
				return nil, err
			}
			vals[i] = int(v)
		}
		return display.LatchCmd{SubX: vals[0], SubY: vals[1], SubW: vals[2], SubH: vals[3]}, nil
	case display.TagShutdown:
		return display.ShutdownCmd{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownTag, "tag %d", tagVal)
	}
}
