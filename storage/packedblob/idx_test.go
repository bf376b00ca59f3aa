package packedblob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdxLineWithoutTrueSHA(t *testing.T) {
	t.Parallel()

	r, err := ParseIdxLine("1;1024;256;83d22637e374565aa5b4c39e4cb6b3aa92a1b28d")
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, uint64(1024), r.Offset)
	assert.Equal(t, uint64(256), r.CompressedLength)
	assert.Equal(t, "83d22637e374565aa5b4c39e4cb6b3aa92a1b28d", r.ContentSHA)
	assert.Equal(t, r.ContentSHA, r.TrueSHA)
	assert.False(t, r.Diverges)
}

func TestParseIdxLineWithTrueSHA(t *testing.T) {
	t.Parallel()

	r, err := ParseIdxLine("1;1024;256;83d22637e374565aa5b4c39e4cb6b3aa92a1b28d;e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")
	require.NoError(t, err)
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", r.TrueSHA)
	assert.True(t, r.Diverges)
}

func TestParseIdxLineRejectsTooFewColumns(t *testing.T) {
	t.Parallel()

	_, err := ParseIdxLine("1;1024;256")
	require.Error(t, err)
}

func TestIdxScannerSequentialRead(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"1;0;10;aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"2;10;20;bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		"",
	}, "\n")

	s := NewIdxScanner(strings.NewReader(input), nil)
	var ids []int64
	for s.Scan() {
		ids = append(ids, s.Record().ID)
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestIdxScannerStopsOnParseError(t *testing.T) {
	t.Parallel()

	s := NewIdxScanner(strings.NewReader("not-a-valid-row"), nil)
	assert.False(t, s.Scan())
	require.Error(t, s.Err())
}
