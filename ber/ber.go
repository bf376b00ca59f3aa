// Package ber decodes the base-128 variable-length unsigned integer
// encoding produced by Perl's `pack 'w'` (Basic Encoding Rules style
// varints), as used by the World of Code offset/length records.
package ber

import "github.com/ssc-oscar/woc-go/wocerr"

// DecodeAll decodes every integer packed back-to-back in data.
//
// For each byte b, the running accumulator is shifted left 7 bits and
// or'd with the low 7 bits of b; when the high bit of b is clear, the
// accumulator is emitted and reset. A dangling continuation at the end
// of data (the final byte has its high bit set, so no terminating byte
// was seen) is silently dropped rather than treated as an error, to
// match the behavior of the source this format was lifted from.
func DecodeAll(data []byte) []uint64 {
	out := make([]uint64, 0, len(data)/2+1)
	var acc uint64
	for _, b := range data {
		acc = (acc << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			out = append(out, acc)
			acc = 0
		}
	}
	return out
}

// DecodeOne decodes exactly one integer from data. Unlike DecodeAll, a
// dangling continuation bit on the final byte is an error: the caller
// asked for a single, complete value.
func DecodeOne(data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, wocerr.ErrCorruptFrame
	}
	var acc uint64
	for i, b := range data {
		acc = (acc << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return acc, nil
		}
		if i == len(data)-1 {
			return 0, wocerr.ErrCorruptFrame
		}
	}
	return 0, wocerr.ErrCorruptFrame
}

// DecodeN decodes exactly n back-to-back integers from the front of
// data and reports how many bytes they consumed, leaving the caller
// free to read the rest of a record without knowing its size up
// front.
func DecodeN(data []byte, n int) (values []uint64, consumed int64, err error) {
	values = make([]uint64, 0, n)
	var acc uint64
	for i, b := range data {
		acc = (acc << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			values = append(values, acc)
			acc = 0
			if len(values) == n {
				return values, int64(i + 1), nil
			}
		}
	}
	return nil, 0, wocerr.ErrCorruptFrame
}
