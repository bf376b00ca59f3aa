package woc

import (
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/gitobject"
	"github.com/ssc-oscar/woc-go/lzf"
	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// Tree is a Git tree object: a flat list of (mode, name, sha) entries
// pointing at blobs or further trees, keyed by SHA-1.
type Tree struct {
	store *Store
	sha   oid.Sha

	loadedData bool
	data       []byte

	loadedFiles bool
	files       map[string]oid.Sha
}

// Tree constructs a Tree handle for sha.
func (s *Store) Tree(sha oid.Sha) *Tree {
	return &Tree{store: s, sha: sha}
}

// SHA returns the tree's identifier.
func (t *Tree) SHA() oid.Sha { return t.sha }

// Data returns the tree's raw on-disk bytes, reading and
// LZF-decompressing them from the commit/tree TCH shard on first
// access.
func (t *Tree) Data() ([]byte, error) {
	if t.loadedData {
		return t.data, nil
	}

	framed, ok, err := t.store.lookupRaw("tree_random", t.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("reading tree %s: %w", t.sha, err)
	}
	if !ok {
		return nil, xerrors.Errorf("tree %s: %w", t.sha, wocerr.ErrObjectNotFound)
	}

	data, err := lzf.Decode(framed)
	if err != nil {
		return nil, xerrors.Errorf("decompressing tree %s: %w", t.sha, err)
	}
	t.data = data
	t.loadedData = true
	return t.data, nil
}

// Entries returns the tree's direct (mode, name, sha) rows in on-disk
// order, without descending into subtrees.
func (t *Tree) Entries() ([]gitobject.TreeEntry, error) {
	data, err := t.Data()
	if err != nil {
		return nil, err
	}
	entries, err := gitobject.Entries(data)
	if err != nil {
		return nil, xerrors.Errorf("tree %s: %w", t.sha, err)
	}
	return entries, nil
}

// Files returns the mapping from every recursively-reachable
// non-directory name to its blob SHA, computed on first access and
// memoized (spec.md §3).
func (t *Tree) Files() (map[string]oid.Sha, error) {
	if t.loadedFiles {
		return t.files, nil
	}

	files := make(map[string]oid.Sha)
	if err := t.walk("", files); err != nil {
		return nil, err
	}
	t.files = files
	t.loadedFiles = true
	return files, nil
}

func (t *Tree) walk(prefix string, out map[string]oid.Sha) error {
	entries, err := t.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := string(e.Name)
		if prefix != "" {
			name = prefix + "/" + name
		}
		if e.IsDir() {
			child := t.store.Tree(e.SHA)
			if err := child.walk(name, out); err != nil {
				return err
			}
			continue
		}
		out[name] = e.SHA
	}
	return nil
}

// HasFile reports whether name is a recursively-reachable blob in
// this tree.
func (t *Tree) HasFile(name string) (bool, error) {
	files, err := t.Files()
	if err != nil {
		return false, err
	}
	_, ok := files[name]
	return ok, nil
}

// HasBlob reports whether sha is reachable anywhere in this tree.
func (t *Tree) HasBlob(sha oid.Sha) (bool, error) {
	files, err := t.Files()
	if err != nil {
		return false, err
	}
	for _, s := range files {
		if s == sha {
			return true, nil
		}
	}
	return false, nil
}
