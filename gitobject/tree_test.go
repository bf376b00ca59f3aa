package gitobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssc-oscar/woc-go/gitobject"
	"github.com/ssc-oscar/woc-go/oid"
)

func encodeEntry(mode, name string, sha oid.Sha) []byte {
	out := []byte(mode)
	out = append(out, ' ')
	out = append(out, name...)
	out = append(out, 0)
	out = append(out, sha.Bytes()...)
	return out
}

func TestEntriesDecodesMultipleRows(t *testing.T) {
	t.Parallel()

	blobSHA, _ := oid.FromHex("83d22637e374565aa5b4c39e4cb6b3aa92a1b28d")
	dirSHA, _ := oid.FromHex("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")

	var data []byte
	data = append(data, encodeEntry("100644", "README.md", blobSHA)...)
	data = append(data, encodeEntry("40000", "src", dirSHA)...)

	entries, err := gitobject.Entries(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "README.md", string(entries[0].Name))
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, "src", string(entries[1].Name))
	assert.True(t, entries[1].IsDir())
}

func TestIterTreeStopsOnYieldError(t *testing.T) {
	t.Parallel()

	blobSHA, _ := oid.FromHex("83d22637e374565aa5b4c39e4cb6b3aa92a1b28d")
	var data []byte
	data = append(data, encodeEntry("100644", "a", blobSHA)...)
	data = append(data, encodeEntry("100644", "b", blobSHA)...)

	var seen int
	stop := assert.AnError
	err := gitobject.IterTree(data, func(gitobject.TreeEntry) error {
		seen++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, seen)
}

func TestEntriesRejectsTruncatedSHA(t *testing.T) {
	t.Parallel()

	data := []byte("100644 a\x00short")
	_, err := gitobject.Entries(data)
	require.Error(t, err)
}

func TestEntriesRejectsMissingNameTerminator(t *testing.T) {
	t.Parallel()

	data := []byte("100644 a-no-nul-byte")
	_, err := gitobject.Entries(data)
	require.Error(t, err)
}
