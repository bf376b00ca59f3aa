package woc

import (
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/gitobject"
	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// Blob is a Git blob: raw file content, keyed by SHA-1.
type Blob struct {
	store *Store
	sha   oid.Sha

	loadedData bool
	data       []byte

	loadedCommits bool
	commitSHAs    []oid.Sha
}

// Blob constructs a Blob handle for sha. Construction performs no I/O
// (spec.md §3 Lifecycle); call Data to force a read.
func (s *Store) Blob(sha oid.Sha) *Blob {
	return &Blob{store: s, sha: sha}
}

// SHA returns the blob's identifier.
func (b *Blob) SHA() oid.Sha { return b.sha }

// Data returns the blob's decompressed content, reading and
// LZF-decompressing it from the packed archive on first access and
// memoizing the result.
func (b *Blob) Data() ([]byte, error) {
	if b.loadedData {
		return b.data, nil
	}

	offsetBytes, ok, err := b.store.lookupRaw("blob_offset", b.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("looking up offset for blob %s: %w", b.sha, err)
	}
	if !ok {
		return nil, xerrors.Errorf("blob %s: %w", b.sha, wocerr.ErrObjectNotFound)
	}
	offset, length, err := decodeBlobPosition(offsetBytes)
	if err != nil {
		return nil, xerrors.Errorf("blob %s: %w", b.sha, err)
	}

	binPath, _, err := b.store.table.Resolve("blob_data", b.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("resolving blob archive for %s: %w", b.sha, err)
	}

	raw, err := b.store.blobs.Read(binPath, offset, length)
	if err != nil {
		return nil, xerrors.Errorf("reading blob %s: %w", b.sha, err)
	}

	b.data = raw
	b.loadedData = true
	return b.data, nil
}

// decodeBlobPosition decodes the BER(offset, length) pair stored as
// the blob_offset relation's value.
func decodeBlobPosition(v []byte) (offset, length uint64, err error) {
	values, err := decodeBER2(v)
	if err != nil {
		return 0, 0, xerrors.Errorf("decoding blob position: %w", err)
	}
	return values[0], values[1], nil
}

// CommitSHAs returns the SHAs of commits that introduced or modified
// this blob. Per spec.md §9, this relation never lists commits that
// removed the blob; treat that asymmetry as intentional.
func (b *Blob) CommitSHAs() ([]oid.Sha, error) {
	if b.loadedCommits {
		return b.commitSHAs, nil
	}
	shas, err := b.store.relationSHAs("blob_commits", b.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("blob %s commits: %w", b.sha, err)
	}
	b.commitSHAs = shas
	b.loadedCommits = true
	return shas, nil
}

// FirstAuthor returns the author name recorded as having first
// introduced this blob.
func (b *Blob) FirstAuthor() (string, error) {
	names, err := b.store.relationStrings("blob_author", b.sha.Bytes())
	if err != nil {
		return "", xerrors.Errorf("blob %s author: %w", b.sha, err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

// VerifySHA recomputes the canonical SHA-1 of the blob's content and
// reports whether it matches the key it was looked up under
// (spec.md §3's invariant for Blob).
func (b *Blob) VerifySHA() (bool, error) {
	data, err := b.Data()
	if err != nil {
		return false, err
	}
	return gitobject.CanonicalSHA("blob", data) == b.sha, nil
}
