package woc

import (
	"time"

	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/gitobject"
	"github.com/ssc-oscar/woc-go/lzf"
	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// Commit is a Git commit object, keyed by SHA-1. All of its header
// attributes (tree, parents, author/committer, message, signature,
// encoding) are parsed together on first touch of any of them
// (spec.md §3), mirroring the source's attribute-miss interception
// with an explicit once-guarded cache.
type Commit struct {
	store *Store
	sha   oid.Sha

	loadedHeader bool
	parsed       *gitobject.Commit

	loadedProjects bool
	projectNames   []string

	loadedChildren bool
	childSHAs      []oid.Sha

	loadedFiles bool
	fileNames   []string
}

// Commit constructs a Commit handle for sha.
func (s *Store) Commit(sha oid.Sha) *Commit {
	return &Commit{store: s, sha: sha}
}

// SHA returns the commit's identifier.
func (c *Commit) SHA() oid.Sha { return c.sha }

// header forces parsing of the commit's raw bytes and memoizes the
// result; every other accessor on Commit funnels through it.
func (c *Commit) header() (*gitobject.Commit, error) {
	if c.loadedHeader {
		return c.parsed, nil
	}

	framed, ok, err := c.store.lookupRaw("commit_random", c.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("reading commit %s: %w", c.sha, err)
	}
	if !ok {
		return nil, xerrors.Errorf("commit %s: %w", c.sha, wocerr.ErrObjectNotFound)
	}

	data, err := lzf.Decode(framed)
	if err != nil {
		return nil, xerrors.Errorf("decompressing commit %s: %w", c.sha, err)
	}

	parsed, err := gitobject.ParseCommit(data)
	if err != nil {
		return nil, xerrors.Errorf("parsing commit %s: %w", c.sha, err)
	}

	c.parsed = parsed
	c.loadedHeader = true
	return parsed, nil
}

// Tree returns this commit's root tree.
func (c *Commit) Tree() (*Tree, error) {
	h, err := c.header()
	if err != nil {
		return nil, err
	}
	return c.store.Tree(h.Tree), nil
}

// ParentSHAs returns the commit's parents in header order.
func (c *Commit) ParentSHAs() ([]oid.Sha, error) {
	h, err := c.header()
	if err != nil {
		return nil, err
	}
	return h.Parents, nil
}

// Message returns the first line of the commit message.
func (c *Commit) Message() (string, error) {
	h, err := c.header()
	if err != nil {
		return "", err
	}
	return h.Message, nil
}

// FullMessage returns the entire commit message body.
func (c *Commit) FullMessage() (string, error) {
	h, err := c.header()
	if err != nil {
		return "", err
	}
	return h.FullBody, nil
}

// Author returns the raw "Name <email>" author identity.
func (c *Commit) Author() ([]byte, error) {
	h, err := c.header()
	if err != nil {
		return nil, err
	}
	return h.Author, nil
}

// Committer returns the raw "Name <email>" committer identity.
func (c *Commit) Committer() ([]byte, error) {
	h, err := c.header()
	if err != nil {
		return nil, err
	}
	return h.Committer, nil
}

// Signature returns the commit's PGP signature, or nil if absent.
func (c *Commit) Signature() ([]byte, error) {
	h, err := c.header()
	if err != nil {
		return nil, err
	}
	return h.Signature, nil
}

// Encoding returns the commit message's declared encoding, defaulting
// to "utf8".
func (c *Commit) Encoding() (string, error) {
	h, err := c.header()
	if err != nil {
		return "", err
	}
	return h.Encoding, nil
}

// AuthoredAt returns the commit's author date, or ok=false if it is
// absent or malformed or in the future (spec.md §3 invariant 4,
// §4.10).
func (c *Commit) AuthoredAt() (t time.Time, ok bool, err error) {
	h, headerErr := c.header()
	if headerErr != nil {
		return time.Time{}, false, headerErr
	}
	t, ok = parseCommitDate(h.AuthorDate, h.AuthorTZ)
	return t, ok, nil
}

// CommittedAt returns the commit's committer date, or ok=false if it
// is absent, malformed, or in the future.
func (c *Commit) CommittedAt() (t time.Time, ok bool, err error) {
	h, headerErr := c.header()
	if headerErr != nil {
		return time.Time{}, false, headerErr
	}
	t, ok = parseCommitDate(h.CommitDate, h.CommitTZ)
	return t, ok, nil
}

// ProjectNames returns the names of every project this commit
// appears in.
func (c *Commit) ProjectNames() ([]string, error) {
	if c.loadedProjects {
		return c.projectNames, nil
	}
	names, err := c.store.relationStrings("commit_projects", c.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("commit %s projects: %w", c.sha, err)
	}
	c.projectNames = names
	c.loadedProjects = true
	return names, nil
}

// ChildSHAs returns the SHAs of commits that name this commit as a
// parent.
func (c *Commit) ChildSHAs() ([]oid.Sha, error) {
	if c.loadedChildren {
		return c.childSHAs, nil
	}
	shas, err := c.store.relationSHAs("commit_children", c.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("commit %s children: %w", c.sha, err)
	}
	c.childSHAs = shas
	c.loadedChildren = true
	return shas, nil
}

// BlobSHAs returns the SHAs of every blob reachable from this
// commit's tree.
func (c *Commit) BlobSHAs() ([]oid.Sha, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	files, err := tree.Files()
	if err != nil {
		return nil, xerrors.Errorf("commit %s blobs: %w", c.sha, err)
	}
	out := make([]oid.Sha, 0, len(files))
	for _, sha := range files {
		out = append(out, sha)
	}
	return out, nil
}

// ChangedFileNames returns the names this relation records as having
// changed in this commit.
func (c *Commit) ChangedFileNames() ([]string, error) {
	if c.loadedFiles {
		return c.fileNames, nil
	}
	names, err := c.store.relationStrings("commit_files", c.sha.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("commit %s changed files: %w", c.sha, err)
	}
	c.fileNames = names
	c.loadedFiles = true
	return names, nil
}
