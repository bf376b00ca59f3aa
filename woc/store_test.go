package woc_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssc-oscar/woc-go/fnv1a"
	"github.com/ssc-oscar/woc-go/internal/env"
	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/woc"
)

// encodeBER is the inverse of ber.DecodeN, used here only to build
// fixture records; the library itself never writes this format.
func encodeBER(n uint64) []byte {
	buf := []byte{byte(n & 0x7f)}
	n >>= 7
	for n > 0 {
		buf = append(buf, byte(n&0x7f)|0x80)
		n >>= 7
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// storedVerbatim wraps payload in an LZF "stored verbatim" frame
// (leading 0x00), the cheapest way to satisfy lzf.Decode in a fixture
// without implementing real LZF compression.
func storedVerbatim(payload []byte) []byte {
	return append([]byte{0x00}, payload...)
}

// buildTCH writes a minimal Tokyo Cabinet hash database containing
// records, one per bucket (collisions fail the test outright - raise
// bnum or change a key if that happens).
func buildTCH(t *testing.T, path string, records map[string][]byte) {
	t.Helper()

	const (
		headerSize  = 256
		apowOffset  = 34
		bnumOffset  = 40
		frecOffset  = 64
		fieldSize   = 4
		recordMagic = 0xc8
		bnum        = 10007
	)

	type placed struct {
		key, value []byte
		hash       byte
		bucket     uint64
	}

	used := make(map[uint64]bool, len(records))
	var placedRecs []placed
	for k, v := range records {
		key := []byte(k)
		bucket := uint64(fnv1a.Sum(key)) % bnum
		if used[bucket] {
			t.Fatalf("fixture hash collision for key %q", k)
		}
		used[bucket] = true
		placedRecs = append(placedRecs, placed{key: key, value: v, hash: byte(fnv1a.Sum(key) >> 8), bucket: bucket})
	}

	buckets := make([]byte, bnum*fieldSize)
	var body []byte
	base := int64(headerSize + len(buckets))

	for _, r := range placedRecs {
		recOffset := base + int64(len(body))
		binary.LittleEndian.PutUint32(buckets[r.bucket*fieldSize:], uint32(recOffset))

		rec := []byte{recordMagic, r.hash, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		rec = append(rec, encodeBER(uint64(len(r.key)))...)
		rec = append(rec, encodeBER(uint64(len(r.value)))...)
		rec = append(rec, r.key...)
		rec = append(rec, r.value...)
		body = append(body, rec...)
	}

	header := make([]byte, headerSize)
	copy(header, []byte("ToKyO CaBiNeT\n"))
	binary.LittleEndian.PutUint64(header[bnumOffset:], bnum)
	binary.LittleEndian.PutUint64(header[frecOffset:], uint64(base))

	full := append(header, buckets...)
	full = append(full, body...)
	require.NoError(t, os.WriteFile(path, full, 0o644))
}

// fixture wires up a small, realistic two-commit history: a root
// commit adding a.txt, and a child commit adding b.txt. The commit
// and tree bytes below are the literal objects a real `git commit`
// produces for this history (captured once, not hand-assembled), so
// the canonical-sha and header-parsing invariants exercise real Git
// framing.
type fixture struct {
	store *woc.Store
	c1    oid.Sha
	c2    oid.Sha
	t1    oid.Sha
	t2    oid.Sha
	b1    oid.Sha
	b2    oid.Sha
}

func buildFixtureStore(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	f := &fixture{}
	f.c1, _ = oid.FromHex("10b273dba498f31e17d8142213ed42bfe96a4634")
	f.c2, _ = oid.FromHex("dba145f002cd8b71c6e5dd4a5fd303bd1c5bc2fa")
	f.t1, _ = oid.FromHex("2e81171448eb9f2ee3821e3d447aa6b2fe3ddba1")
	f.t2, _ = oid.FromHex("18eb80fbbbf9160491c007668d5298f1e86cd40a")
	f.b1, _ = oid.FromHex("ce013625030ba8dba906f756967f9e9ca394464a")
	f.b2, _ = oid.FromHex("cc628ccd10742baea8241c5924df992b5c019f71")

	c1Raw := "tree 2e81171448eb9f2ee3821e3d447aa6b2fe3ddba1\n" +
		"author Jane Doe <jane@example.com> 1609459200 -0500\n" +
		"committer Jane Doe <jane@example.com> 1609459200 -0500\n\n" +
		"Initial commit\n"
	c2Raw := "tree 18eb80fbbbf9160491c007668d5298f1e86cd40a\n" +
		"parent 10b273dba498f31e17d8142213ed42bfe96a4634\n" +
		"author Jane Doe <jane@example.com> 1609545600 -0500\n" +
		"committer Jane Doe <jane@example.com> 1609545600 -0500\n\n" +
		"Add b.txt\n"

	t1Raw := append([]byte("100644 a.txt\x00"), f.b1.Bytes()...)
	t2Raw := append([]byte("100644 a.txt\x00"), f.b1.Bytes()...)
	t2Raw = append(t2Raw, append([]byte("100644 b.txt\x00"), f.b2.Bytes()...)...)

	commitPath := filepath.Join(dir, "commit_0.tch")
	buildTCH(t, commitPath, map[string][]byte{
		string(f.c1.Bytes()): storedVerbatim([]byte(c1Raw)),
		string(f.c2.Bytes()): storedVerbatim([]byte(c2Raw)),
	})

	treePath := filepath.Join(dir, "tree_0.tch")
	buildTCH(t, treePath, map[string][]byte{
		string(f.t1.Bytes()): storedVerbatim(t1Raw),
		string(f.t2.Bytes()): storedVerbatim(t2Raw),
	})

	blob1Frame := storedVerbatim([]byte("hello\n"))
	blob2Frame := storedVerbatim([]byte("world\n"))
	binContent := append(append([]byte{}, blob1Frame...), blob2Frame...)
	binPath := filepath.Join(dir, "blob_0.bin")
	require.NoError(t, os.WriteFile(binPath, binContent, 0o644))

	offsetPath := filepath.Join(dir, "sha1.blob_0.tch")
	offset1 := append(encodeBER(0), encodeBER(uint64(len(blob1Frame)))...)
	offset2 := append(encodeBER(uint64(len(blob1Frame))), encodeBER(uint64(len(blob2Frame)))...)
	buildTCH(t, offsetPath, map[string][]byte{
		string(f.b1.Bytes()): offset1,
		string(f.b2.Bytes()): offset2,
	})

	projectCommitsPath := filepath.Join(dir, "project_commits_0.tch")
	buildTCH(t, projectCommitsPath, map[string][]byte{
		"proj1": append(append([]byte{}, f.c1.Bytes()...), f.c2.Bytes()...),
	})

	projectAuthorsPath := filepath.Join(dir, "project_authors_0.tch")
	buildTCH(t, projectAuthorsPath, map[string][]byte{
		"proj1": storedVerbatim([]byte("Jane Doe <jane@example.com>")),
	})

	e := env.NewFromKVList([]string{
		"OSCAR_TEST=1",
		"OSCAR_COMMIT_RANDOM=" + filepath.Join(dir, "commit_{key}.tch"),
		"OSCAR_TREE_RANDOM=" + filepath.Join(dir, "tree_{key}.tch"),
		"OSCAR_BLOB_OFFSET=" + filepath.Join(dir, "sha1.blob_{key}.tch"),
		"OSCAR_BLOB_DATA=" + filepath.Join(dir, "blob_{key}.bin"),
		"OSCAR_PROJECT_COMMITS=" + filepath.Join(dir, "project_commits_{key}.tch"),
		"OSCAR_PROJECT_AUTHORS=" + filepath.Join(dir, "project_authors_{key}.tch"),
	})

	store, err := woc.Open(woc.StoreOptions{
		Fs:   afero.NewOsFs(),
		Env:  e,
		Host: "test-host",
	})
	require.NoError(t, err)
	f.store = store
	return f
}

func TestStoreOpenAndCommitHeader(t *testing.T) {
	t.Parallel()
	f := buildFixtureStore(t)

	c1 := f.store.Commit(f.c1)
	tree, err := c1.Tree()
	require.NoError(t, err)
	assert.Equal(t, f.t1, tree.SHA())

	author, err := c1.Author()
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe <jane@example.com>", string(author))

	msg, err := c1.Message()
	require.NoError(t, err)
	assert.Equal(t, "Initial commit", msg)

	parents, err := c1.ParentSHAs()
	require.NoError(t, err)
	assert.Empty(t, parents)

	authoredAt, ok, err := c1.AuthoredAt()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1609459200), authoredAt.Unix())
}

func TestStoreTreeFiles(t *testing.T) {
	t.Parallel()
	f := buildFixtureStore(t)

	c2 := f.store.Commit(f.c2)
	tree, err := c2.Tree()
	require.NoError(t, err)

	files, err := tree.Files()
	require.NoError(t, err)
	assert.Equal(t, f.b1, files["a.txt"])
	assert.Equal(t, f.b2, files["b.txt"])
}

func TestStoreBlobDataAndVerify(t *testing.T) {
	t.Parallel()
	f := buildFixtureStore(t)

	blob := f.store.Blob(f.b1)
	data, err := blob.Data()
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	ok, err := blob.VerifySHA()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreProjectDerivedState(t *testing.T) {
	t.Parallel()
	f := buildFixtureStore(t)

	p := f.store.Project("proj1")

	shas, err := p.CommitSHAs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []oid.Sha{f.c1, f.c2}, shas)

	authors, err := p.AuthorNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe <jane@example.com>"}, authors)

	head, ok, err := p.Head()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.c2, head)

	tail, ok, err := p.Tail()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.c1, tail)

	chain, err := p.CommitsFP()
	require.NoError(t, err)
	assert.Equal(t, []oid.Sha{f.c2, f.c1}, chain)
}

func TestStoreDiffReportsAddedFile(t *testing.T) {
	t.Parallel()
	f := buildFixtureStore(t)

	c1 := f.store.Commit(f.c1)
	c2 := f.store.Commit(f.c2)

	entries, err := woc.Diff(c2, c1, 1.0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].OldPath)
	require.NotNil(t, entries[0].NewPath)
	assert.Equal(t, "b.txt", *entries[0].NewPath)
}
