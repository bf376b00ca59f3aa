// Package tch implements a read-only reader for Tokyo Cabinet hash
// database files (.tch), plus the process-wide handle pool described
// in spec.md §4.5.
//
// On-disk layout (best-effort reconstruction of the public Tokyo
// Cabinet HDB format; WoC never ships the format's "large file" or
// on-disk-compression options, so this reader only supports the
// common case: 4-byte chain offsets, byte alignment):
//
//	header (256 bytes)
//	  [0:32)  magic "ToKyO CaBiNeT\n", NUL-padded
//	  [34]    apow   - alignment power; record offsets are stored
//	                   right-shifted by apow
//	  [40:48) bnum   - bucket count, little-endian uint64
//	  [64:72) frec   - file offset of the first record, for iteration
//	bucket array (bnum * 4 bytes, little-endian uint32)
//	  bucket[i] is the (shifted) offset of the root of the hash chain
//	  for every key whose bucket index is i; 0 means empty.
//	records, referenced by the bucket array and by each other's
//	left/right chain pointers, each shaped:
//	  magic byte (0xc8 live, 0xb0 free)
//	  hash byte  - second-level hash of the key, used to order the
//	               chain before a full key comparison
//	  left, right (4 bytes each, shifted by apow) - chain pointers
//	  padding size (2 bytes little-endian) - free bytes after the
//	               record, up to the next aligned boundary
//	  key size, value size - BER-encoded (ber.DecodeN), mirroring
//	               the rest of the WoC toolchain's use of Perl
//	               `pack 'w'` framing
//	  key bytes, value bytes
package tch

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ssc-oscar/woc-go/ber"
	"github.com/ssc-oscar/woc-go/fnv1a"
	"github.com/ssc-oscar/woc-go/wocerr"
)

const (
	headerSize       = 256
	magicOffset      = 0
	apowOffset       = 34
	bnumOffset       = 40
	frecOffset       = 64
	offsetFieldSize  = 4
	recordMagicLive  = 0xc8
	recordMagicFree  = 0xb0
	expectedMagicLen = 14
)

var expectedMagic = []byte("ToKyO CaBiNeT\n")

// Handle wraps one open, read-only Tokyo Cabinet hash database.
type Handle struct {
	f     *os.File
	apow  uint
	bnum  uint64
	frec  int64
	fsize int64
}

// Open opens the hash database at path read-only. Callers never need
// to call Close directly on a pooled Handle; the pool keeps it open
// for the process lifetime.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(wocerr.ErrShardUnavailable, "could not open %s: %v", path, err)
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close() //nolint:errcheck
		return nil, errors.Wrapf(wocerr.ErrShardUnavailable, "could not read header of %s: %v", path, err)
	}
	if !bytes.Equal(header[magicOffset:magicOffset+expectedMagicLen], expectedMagic) {
		f.Close() //nolint:errcheck
		return nil, errors.Wrapf(wocerr.ErrShardUnavailable, "%s is not a Tokyo Cabinet hash database", path)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, errors.Wrapf(wocerr.ErrShardUnavailable, "could not stat %s: %v", path, err)
	}

	return &Handle{
		f:     f,
		apow:  uint(header[apowOffset]),
		bnum:  binary.LittleEndian.Uint64(header[bnumOffset : bnumOffset+8]),
		frec:  int64(binary.LittleEndian.Uint64(header[frecOffset : frecOffset+8])),
		fsize: fi.Size(),
	}, nil
}

// Close releases the underlying file descriptor.
func (h *Handle) Close() error {
	return h.f.Close()
}

type record struct {
	offset int64
	isFree bool
	hash   byte
	left   int64
	right  int64
	key    []byte
	value  []byte
	next   int64 // offset immediately following this record on disk
}

func (h *Handle) shiftedOffset(raw uint32) int64 {
	if raw == 0 {
		return 0
	}
	return int64(raw) << h.apow
}

func (h *Handle) bucketOffset(idx uint64) int64 {
	return headerSize + int64(idx)*offsetFieldSize
}

func (h *Handle) readBucketHead(idx uint64) (int64, error) {
	buf := make([]byte, offsetFieldSize)
	if _, err := h.f.ReadAt(buf, h.bucketOffset(idx)); err != nil {
		return 0, err
	}
	return h.shiftedOffset(binary.LittleEndian.Uint32(buf)), nil
}

// readRecord decodes one record at offset. Go's ReadAt does not
// support reading an unknown-length stream, so the BER-encoded sizes
// are read via small fixed-size probes first.
func (h *Handle) readRecord(offset int64) (*record, error) {
	head := make([]byte, 1+1+offsetFieldSize*2+2)
	if _, err := h.f.ReadAt(head, offset); err != nil {
		return nil, err
	}

	magic := head[0]
	r := &record{offset: offset, isFree: magic == recordMagicFree}
	cursor := offset + int64(len(head))

	if magic != recordMagicLive && magic != recordMagicFree {
		return nil, errors.Errorf("unrecognized record magic 0x%02x at offset %d", magic, offset)
	}

	r.hash = head[1]
	r.left = h.shiftedOffset(binary.LittleEndian.Uint32(head[2 : 2+offsetFieldSize]))
	r.right = h.shiftedOffset(binary.LittleEndian.Uint32(head[2+offsetFieldSize : 2+offsetFieldSize*2]))
	padding := binary.LittleEndian.Uint16(head[len(head)-2:])

	if r.isFree {
		r.next = cursor + int64(padding)
		return r, nil
	}

	keySize, valSize, n, err := h.readTwoSizes(cursor)
	if err != nil {
		return nil, err
	}
	cursor += n

	body := make([]byte, keySize+valSize)
	if _, err := h.f.ReadAt(body, cursor); err != nil {
		return nil, err
	}
	r.key = body[:keySize]
	r.value = body[keySize:]
	r.next = cursor + int64(len(body)) + int64(padding)
	return r, nil
}

// readTwoSizes decodes the BER-encoded key and value sizes starting
// at offset, probing a growing window until both integers decode
// cleanly (BER values here are small, so the probe window is small).
func (h *Handle) readTwoSizes(offset int64) (keySize, valSize int, consumed int64, err error) {
	const maxProbe = 32
	buf := make([]byte, maxProbe)
	n, _ := h.f.ReadAt(buf, offset)
	if n == 0 {
		return 0, 0, 0, errors.Errorf("could not read record sizes at offset %d", offset)
	}
	buf = buf[:n]

	values, consumedBytes, err := ber.DecodeN(buf, 2)
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "could not decode record sizes at offset %d", offset)
	}
	return int(values[0]), int(values[1]), consumedBytes, nil
}

// Get looks up key and returns its value. A missing key is reported
// via the bool return, not an error.
func (h *Handle) Get(key []byte) ([]byte, bool, error) {
	idx := uint64(fnv1a.Sum(key)) % h.bnum
	offset, err := h.readBucketHead(idx)
	if err != nil {
		return nil, false, errors.Wrap(err, "could not read bucket head")
	}
	hashByte := byte(fnv1a.Sum(key) >> 8)

	for offset != 0 {
		r, err := h.readRecord(offset)
		if err != nil {
			return nil, false, errors.Wrap(err, "could not read record")
		}
		if r.isFree {
			offset = r.right
			continue
		}

		cmp := int(hashByte) - int(r.hash)
		if cmp == 0 {
			cmp = bytes.Compare(key, r.key)
		}
		switch {
		case cmp == 0:
			return r.value, true, nil
		case cmp < 0:
			offset = r.left
		default:
			offset = r.right
		}
	}
	return nil, false, nil
}

// IterKeys returns every key in the database in on-disk order. It is
// eager (the whole key list is materialized) since WoC relations are
// read start-to-finish far more often than interrupted midway.
func (h *Handle) IterKeys() ([][]byte, error) {
	keys := make([][]byte, 0)
	offset := h.frec
	for offset > 0 && offset < h.fsize {
		r, err := h.readRecord(offset)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read record at offset %d", offset)
		}
		if !r.isFree {
			keys = append(keys, r.key)
		}
		if r.next <= offset {
			break
		}
		offset = r.next
	}
	return keys, nil
}
