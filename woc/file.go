package woc

import (
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/oid"
)

// File is keyed by its path bytes (which may end with a newline,
// spec.md §3); it exposes the commits and authors that touched it.
type File struct {
	store *Store
	path  []byte

	loadedCommits bool
	commitSHAs    []oid.Sha

	loadedAuthors bool
	authorNames   []string
}

// File constructs a File handle for path.
func (s *Store) File(path []byte) *File {
	return &File{store: s, path: path}
}

// Path returns the file's key bytes.
func (f *File) Path() []byte { return f.path }

// CommitSHAs returns the SHAs of commits that touched this file.
func (f *File) CommitSHAs() ([]oid.Sha, error) {
	if f.loadedCommits {
		return f.commitSHAs, nil
	}
	shas, err := f.store.relationSHAs("file_commits", f.path)
	if err != nil {
		return nil, xerrors.Errorf("file %q commits: %w", f.path, err)
	}
	f.commitSHAs = shas
	f.loadedCommits = true
	return shas, nil
}

// AuthorNames returns the names of authors who touched this file.
func (f *File) AuthorNames() ([]string, error) {
	if f.loadedAuthors {
		return f.authorNames, nil
	}
	names, err := f.store.relationStrings("file_authors", f.path)
	if err != nil {
		return nil, xerrors.Errorf("file %q authors: %w", f.path, err)
	}
	f.authorNames = names
	f.loadedAuthors = true
	return names, nil
}
