package gitobject_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssc-oscar/woc-go/gitobject"
)

func TestParseCommitBasic(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"tree 83d22637e374565aa5b4c39e4cb6b3aa92a1b28d",
		"parent e69de29bb2d1d6434b8b29ae775ad8c2e48c5391",
		"author Jane Doe <jane@example.com> 1609459200 -0500",
		"committer Jane Doe <jane@example.com> 1609459200 -0500",
		"",
		"Initial commit\n\nLonger body line.",
	}, "\n")

	c, err := gitobject.ParseCommit([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "83d22637e374565aa5b4c39e4cb6b3aa92a1b28d", c.Tree.String())
	require.Len(t, c.Parents, 1)
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", c.Parents[0].String())
	assert.Equal(t, "Jane Doe <jane@example.com>", string(c.Author))
	assert.Equal(t, "1609459200", string(c.AuthorDate))
	assert.Equal(t, "-0500", string(c.AuthorTZ))
	assert.Equal(t, gitobject.DefaultEncoding, c.Encoding)
	assert.Equal(t, "Initial commit", c.Message)
}

func TestParseCommitWithGPGSignature(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"tree 83d22637e374565aa5b4c39e4cb6b3aa92a1b28d",
		"author Jane Doe <jane@example.com> 1609459200 -0500",
		"committer Jane Doe <jane@example.com> 1609459200 -0500",
		"gpgsig -----BEGIN PGP SIGNATURE-----",
		" ",
		" iQEzBAABCAAdFiEE",
		" -----END PGP SIGNATURE-----",
		"encoding ISO-8859-1",
		"",
		"Signed commit",
	}, "\n")

	c, err := gitobject.ParseCommit([]byte(raw))
	require.NoError(t, err)

	assert.Contains(t, string(c.Signature), "BEGIN PGP SIGNATURE")
	assert.Contains(t, string(c.Signature), "END PGP SIGNATURE")
	assert.Equal(t, "ISO-8859-1", c.Encoding)
	assert.Equal(t, "Signed commit", c.Message)
}

func TestParseCommitWithoutBody(t *testing.T) {
	t.Parallel()

	raw := "tree 83d22637e374565aa5b4c39e4cb6b3aa92a1b28d\nauthor Jane Doe <jane@example.com> 1609459200 -0500\ncommitter Jane Doe <jane@example.com> 1609459200 -0500"

	c, err := gitobject.ParseCommit([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, c.Message)
}

func TestParseCommitRejectsBadTreeSHA(t *testing.T) {
	t.Parallel()

	_, err := gitobject.ParseCommit([]byte("tree not-a-sha\n\nbody"))
	require.Error(t, err)
}
