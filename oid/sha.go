// Package oid implements the SHA-1 object identifier used by every
// Git-object-keyed relation in the World of Code dataset, plus the
// chunking helper used to decode raw concatenated-SHA relation
// payloads.
package oid

import (
	"crypto/sha1" //nolint:gosec // this is Git's content-addressing hash, not used for security
	"encoding/hex"

	"github.com/ssc-oscar/woc-go/wocerr"
)

// Size is the length, in bytes, of a raw SHA-1 identifier.
const Size = 20

// HexSize is the length, in characters, of a hex-encoded SHA-1.
const HexSize = Size * 2

// Zero is the all-zero SHA-1, used as a sentinel for "no value".
var Zero Sha

// Sha is a 20-byte SHA-1 object identifier.
type Sha [Size]byte

// FromHex parses a 40-character lowercase hex string into a Sha. Any
// other length, or non-hex characters, is a construction error.
func FromHex(s string) (Sha, error) {
	if len(s) != HexSize {
		return Zero, wocerr.ErrConstruction
	}
	var raw [Size]byte
	if _, err := hex.Decode(raw[:], []byte(s)); err != nil {
		return Zero, wocerr.ErrConstruction
	}
	return Sha(raw), nil
}

// FromBytes casts a raw 20-byte slice into a Sha. Any other length is
// a construction error.
func FromBytes(b []byte) (Sha, error) {
	if len(b) != Size {
		return Zero, wocerr.ErrConstruction
	}
	var s Sha
	copy(s[:], b)
	return s, nil
}

// String returns the lowercase 40-character hex representation.
func (s Sha) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns the raw 20-byte identifier.
func (s Sha) Bytes() []byte {
	return s[:]
}

// IsZero reports whether s is the zero value.
func (s Sha) IsZero() bool {
	return s == Zero
}

// ShardByte returns the first byte of the identifier, used by the
// path resolver to shard SHA-keyed relations.
func (s Sha) ShardByte() byte {
	return s[0]
}

// Sum computes the Sha of content (the already-length-prefixed bytes
// of a Git object: "<type> <len>\0<data>").
func Sum(content []byte) Sha {
	return Sha(sha1.Sum(content)) //nolint:gosec
}

// Chunk slices a raw byte string into 20-byte SHA groups, the format
// used by uncompressed relation payloads (e.g. commit_parent,
// author_commits before LZF framing is stripped). Returns a
// construction error if the input length isn't a multiple of Size.
func Chunk(data []byte) ([]Sha, error) {
	if len(data)%Size != 0 {
		return nil, wocerr.ErrConstruction
	}
	out := make([]Sha, 0, len(data)/Size)
	for i := 0; i < len(data); i += Size {
		var s Sha
		copy(s[:], data[i:i+Size])
		out = append(out, s)
	}
	return out, nil
}
