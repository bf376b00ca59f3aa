package woc

import (
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/oid"
)

// Author is keyed by "Name <email>" bytes.
type Author struct {
	store *Store
	ident []byte

	loadedCommits bool
	commitSHAs    []oid.Sha

	loadedFiles bool
	fileNames   []string

	loadedProjects bool
	projectNames   []string
}

// Author constructs an Author handle for ident.
func (s *Store) Author(ident []byte) *Author {
	return &Author{store: s, ident: ident}
}

// Ident returns the author's "Name <email>" key bytes.
func (a *Author) Ident() []byte { return a.ident }

// CommitSHAs returns the SHAs of commits attributed to this author.
func (a *Author) CommitSHAs() ([]oid.Sha, error) {
	if a.loadedCommits {
		return a.commitSHAs, nil
	}
	shas, err := a.store.relationSHAs("author_commits", a.ident)
	if err != nil {
		return nil, xerrors.Errorf("author %q commits: %w", a.ident, err)
	}
	a.commitSHAs = shas
	a.loadedCommits = true
	return shas, nil
}

// FileNames returns the names of files this author has touched.
func (a *Author) FileNames() ([]string, error) {
	if a.loadedFiles {
		return a.fileNames, nil
	}
	names, err := a.store.relationStrings("author_files", a.ident)
	if err != nil {
		return nil, xerrors.Errorf("author %q files: %w", a.ident, err)
	}
	a.fileNames = names
	a.loadedFiles = true
	return names, nil
}

// ProjectNames returns the names of projects this author has
// committed to.
func (a *Author) ProjectNames() ([]string, error) {
	if a.loadedProjects {
		return a.projectNames, nil
	}
	names, err := a.store.relationStrings("author_projects", a.ident)
	if err != nil {
		return nil, xerrors.Errorf("author %q projects: %w", a.ident, err)
	}
	a.projectNames = names
	a.loadedProjects = true
	return names, nil
}
