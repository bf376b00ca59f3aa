package woc

import "github.com/ssc-oscar/woc-go/oid"

// Tag is a placeholder entity (spec.md §3): keyed by SHA-1, no
// decoded attributes are required by the dataset this library reads.
type Tag struct {
	store *Store
	sha   oid.Sha
}

// Tag constructs a Tag handle for sha.
func (s *Store) Tag(sha oid.Sha) *Tag {
	return &Tag{store: s, sha: sha}
}

// SHA returns the tag's identifier.
func (t *Tag) SHA() oid.Sha { return t.sha }
