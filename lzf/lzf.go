// Package lzf decodes the Perl Compress::LZF wire format: a
// variable-length uncompressed-size header (see LZF.xs's
// decompress_sv) followed by an LZF-compressed body, or a leading
// 0x00 byte signalling a stored-verbatim payload.
package lzf

import "github.com/ssc-oscar/woc-go/wocerr"

// DecodeHeader parses the variable-length uncompressed-size header at
// the start of data and returns the number of bytes the header
// occupies and the uncompressed size it encodes. Bytes beyond the
// header are ignored by this function; the caller slices them off
// before running LZF decompression on the remainder.
//
// A leading 0x00 byte is reserved by the wire format to mean "stored
// verbatim, payload follows from byte 1" and never reaches this
// decoder; callers must special-case it before calling DecodeHeader.
func DecodeHeader(data []byte) (headerLen int, uncompressedLen uint64, err error) {
	if len(data) == 0 {
		return 0, 0, wocerr.ErrCorruptFrame
	}

	lower := data[0]
	mask := byte(0x80)
	start := 1
	first := true
	for mask != 0 && start < len(data) && lower&mask != 0 {
		if first {
			mask >>= 2
			first = false
		} else {
			mask >>= 1
		}
		start++
	}
	if mask == 0 || len(data) < start {
		return 0, 0, wocerr.ErrCorruptFrame
	}

	usize := uint64(lower & (mask - 1))
	for _, b := range data[1:start] {
		usize = (usize << 6) | uint64(b&0x3f)
	}
	if usize == 0 {
		return 0, 0, wocerr.ErrCorruptFrame
	}

	return start, usize, nil
}

// StoredVerbatim reports whether data is LZF-framed as "stored
// verbatim" (leading byte 0x00), in which case the payload is
// data[1:] with no LZF decompression needed.
func StoredVerbatim(data []byte) bool {
	return len(data) > 0 && data[0] == 0x00
}

// Decode decodes an entire LZF frame: the header, followed by either
// a verbatim payload or an LZF-compressed body.
func Decode(data []byte) ([]byte, error) {
	if StoredVerbatim(data) {
		return data[1:], nil
	}

	headerLen, uncompressedLen, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	return decompress(data[headerLen:], uncompressedLen)
}

// decompress runs the classic Marc Lehmann LZF decompression
// algorithm: a stream of literal runs and back-references, each
// introduced by a single control byte.
//
// A control byte ctrl < 32 starts a literal run of ctrl+1 bytes
// copied verbatim. A control byte ctrl >= 32 starts a back-reference:
// the top 3 bits (after removing the literal-run range) give part of
// the length, the low 5 bits plus the next byte give an 8 or 13 bit
// back offset, and - only when the length nibble is 7 - one more byte
// extends the length further.
func decompress(src []byte, expectedLen uint64) ([]byte, error) {
	out := make([]byte, 0, expectedLen)
	i := 0
	for i < len(src) {
		ctrl := int(src[i])
		i++

		if ctrl < 32 {
			runLen := ctrl + 1
			if i+runLen > len(src) {
				return nil, wocerr.ErrCorruptFrame
			}
			out = append(out, src[i:i+runLen]...)
			i += runLen
			continue
		}

		length := ctrl >> 5
		if i >= len(src) {
			return nil, wocerr.ErrCorruptFrame
		}
		ref := len(out) - ((ctrl & 0x1f) << 8) - 1

		if length == 7 {
			if i >= len(src) {
				return nil, wocerr.ErrCorruptFrame
			}
			length += int(src[i])
			i++
		}
		if i >= len(src) {
			return nil, wocerr.ErrCorruptFrame
		}
		ref -= int(src[i])
		i++
		length += 2

		if ref < 0 || ref >= len(out) {
			return nil, wocerr.ErrCorruptFrame
		}
		for ; length > 0; length-- {
			out = append(out, out[ref])
			ref++
		}
	}

	if uint64(len(out)) != expectedLen {
		return nil, wocerr.ErrCorruptFrame
	}
	return out, nil
}
