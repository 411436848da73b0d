package cat62

import (
	"encoding/binary"
	"math"
)

// Fixed-point scalar codec. Every numeric CAT62 item is an integer count of
// LSB units, serialized big-endian at a fixed byte width. Out-of-range
// physical values saturate to the representable raw range; they never wrap
// and never raise.

// EncodeInt converts a physical value into a big-endian fixed-point field of
// the given byte width (2, 3 or 4). The raw value is round(value/lsb),
// clamped to the signed or unsigned range of the width.
func EncodeInt(value float64, width int, signed bool, lsb float64) []byte {
	lo, hi := rawRange(width, signed)

	// Clamp in the float domain: converting an out-of-int64-range float
	// to int64 first would give an implementation-specific result.
	var raw int64
	switch scaled := math.Round(value / lsb); {
	case scaled >= float64(hi):
		raw = hi
	case scaled <= float64(lo):
		raw = lo
	default:
		raw = int64(scaled)
	}

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(raw))
	return append([]byte(nil), buf[4-width:]...)
}

// DecodeInt is the inverse of the unclamped encoding formula: raw * lsb.
func DecodeInt(data []byte, signed bool, lsb float64) float64 {
	var raw int64
	for _, b := range data {
		raw = raw<<8 | int64(b)
	}
	if signed {
		shift := uint(64 - 8*len(data))
		raw = raw << shift >> shift // sign-extend
	}
	return float64(raw) * lsb
}

func rawRange(width int, signed bool) (int64, int64) {
	bits := uint(8 * width)
	if signed {
		return -(int64(1) << (bits - 1)), int64(1)<<(bits-1) - 1
	}
	return 0, int64(1)<<bits - 1
}
