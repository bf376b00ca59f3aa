package lzf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssc-oscar/woc-go/lzf"
)

func TestDecodeHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         []byte
		wantLen    int
		wantUsize  uint64
	}{
		{"two-byte", []byte{0xC4, 0x9B}, 2, 283},
		{"three-byte", []byte{0xE1, 0xAF, 0xA9}, 3, 7145},
		{"extra-bytes-ignored", []byte{0xC4, 0xA6, 0x1F, '1', '0', '0', '6', '4', '4'}, 2, 294},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			headerLen, usize, err := lzf.DecodeHeader(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, headerLen)
			assert.Equal(t, tt.wantUsize, usize)
		})
	}
}

func TestDecodeHeaderRejectsZeroSize(t *testing.T) {
	t.Parallel()

	// single byte header that decodes to usize == 0
	_, _, err := lzf.DecodeHeader([]byte{0x00})
	require.Error(t, err)
}

func TestDecodeHeaderStopsAtEndOfInput(t *testing.T) {
	t.Parallel()

	// continuation bit set on the only byte present: the header scan
	// stops at the end of input, so the size comes from the lead
	// byte's low 7 bits alone (0xC4 & 0x7f == 68)
	headerLen, usize, err := lzf.DecodeHeader([]byte{0xC4})
	require.NoError(t, err)
	assert.Equal(t, 1, headerLen)
	assert.Equal(t, uint64(68), usize)
}

func TestDecodeLiteralRunRoundTrip(t *testing.T) {
	t.Parallel()

	// header byte 0x05 encodes uncompressed length 5 (single-byte
	// header form, size < 0x80), followed by a single LZF literal
	// run opcode (ctrl=4 means copy the next 5 bytes verbatim).
	frame := []byte{0x05, 0x04, 'h', 'e', 'l', 'l', 'o'}
	out, err := lzf.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)
}

func TestDecodeStoredVerbatim(t *testing.T) {
	t.Parallel()

	frame := append([]byte{0x00}, []byte("hi there")...)
	out, err := lzf.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi there"), out)
}

func TestDecodeBackReference(t *testing.T) {
	t.Parallel()

	// Encode "abcabc" as a literal run of "abc" followed by a
	// back-reference copying 3 bytes from offset 3 back.
	// ctrl = 32 | (length_field << 5)... build explicitly instead:
	// literal run: ctrl=2 (len 3) + "abc"
	// backref: length=1 (encoded as length-2=1 -> field value 1<<5=0x20),
	// offset=3 means ref = len(out)-( (ctrl&0x1f)<<8 )-1-extra, so we
	// pick ctrl=0x20 (length field 1 => length=1+2=3), low5 bits 0,
	// next byte = offset-1 = 2.
	frame := []byte{0x06, 0x02, 'a', 'b', 'c', 0x20, 0x02}
	out, err := lzf.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcabc"), out)
}
