package tilecache

import (
	"encoding/binary"
	"hash/adler32"
	"hash/crc32"

	"github.com/pixelbridge/nddi/pixel"
)

// Hasher selects the checksum algorithm used to fingerprint a
// quality-masked tile (spec.md §4.5).
type Hasher int

const (
	// HasherCRC32 fingerprints with the IEEE CRC-32 polynomial.
	HasherCRC32 Hasher = iota
	// HasherAdler32 fingerprints with Adler-32.
	HasherAdler32
	// HasherTrivial packs the first and last masked pixel into one 64-bit
	// value. Any two tiles sharing their first and last masked pixels
	// collide, so it is useful only for debugging small test tiles.
	HasherTrivial
)

// maskChannel masks v to its top bits significant bits, per spec.md §4.5
// step 2 ("mask each channel to its top B bits").
func maskChannel(v uint8, bits int) uint8 {
	mask := uint8(0xff << uint(8-bits))
	return v & mask
}

// maskPixel masks every channel of p to its top bits bits.
func maskPixel(p pixel.Pixel, bits int) pixel.Pixel {
	return pixel.NewPixel(
		maskChannel(p.R(), bits),
		maskChannel(p.G(), bits),
		maskChannel(p.B(), bits),
		maskChannel(p.A(), bits),
	)
}

// Fingerprint computes the quality-masked fingerprint of a tile: each
// pixel is masked to its top bits significant bits per channel, then the
// masked tile is hashed with the chosen algorithm. Two source tiles that
// differ only in the low 8-bits bits of any channel produce the same
// fingerprint (Testable Property 4).
func Fingerprint(tile []pixel.Pixel, bits int, h Hasher) uint64 {
	masked := make([]pixel.Pixel, len(tile))
	for i, p := range tile {
		masked[i] = maskPixel(p, bits)
	}
	switch h {
	case HasherTrivial:
		if len(masked) == 0 {
			return 0
		}
		return uint64(masked[0])<<32 | uint64(masked[len(masked)-1])
	default:
		buf := make([]byte, 4*len(masked))
		for i, p := range masked {
			binary.BigEndian.PutUint32(buf[4*i:], uint32(p))
		}
		if h == HasherAdler32 {
			return uint64(adler32.Checksum(buf))
		}
		return uint64(crc32.ChecksumIEEE(buf))
	}
}
