package woc

import (
	"time"

	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// Project is keyed by a textual URI such as "user2589_minicms".
type Project struct {
	store *Store
	name  string

	loadedCommitSHAs bool
	commitSHAs       []oid.Sha

	loadedAuthors bool
	authorNames   []string

	loadedDerived bool
	commits       map[oid.Sha]*Commit
	order         []oid.Sha
	authoredAt    map[oid.Sha]commitDate
	head          oid.Sha
	hasHead       bool
	tail          oid.Sha
	hasTail       bool
	fpChain       []oid.Sha
}

type commitDate struct {
	t  time.Time
	ok bool
}

// Project constructs a Project handle for name.
func (s *Store) Project(name string) *Project {
	return &Project{store: s, name: name}
}

// Name returns the project's key.
func (p *Project) Name() string { return p.name }

// URL synthesizes the project's canonical web URL (spec.md §4.11).
func (p *Project) URL() string { return projectURL(p.name) }

// CommitSHAs returns every commit SHA the project_commits relation
// records for this project, unfiltered.
func (p *Project) CommitSHAs() ([]oid.Sha, error) {
	if p.loadedCommitSHAs {
		return p.commitSHAs, nil
	}
	shas, err := p.store.relationSHAs("project_commits", []byte(p.name))
	if err != nil {
		return nil, xerrors.Errorf("project %q commits: %w", p.name, err)
	}
	p.commitSHAs = shas
	p.loadedCommitSHAs = true
	return shas, nil
}

// AuthorNames returns the names of authors who have committed to this
// project.
func (p *Project) AuthorNames() ([]string, error) {
	if p.loadedAuthors {
		return p.authorNames, nil
	}
	names, err := p.store.relationStrings("project_authors", []byte(p.name))
	if err != nil {
		return nil, xerrors.Errorf("project %q authors: %w", p.name, err)
	}
	p.authorNames = names
	p.loadedAuthors = true
	return names, nil
}

// loadDerived builds the filtered commit set and computes head, tail,
// and the first-parent chain, per spec.md §4.9. It runs once; the
// authored-date sanitation pass described there happens here, the
// single point where the project's commit set is consumed as a
// sequence.
func (p *Project) loadDerived() error {
	if p.loadedDerived {
		return nil
	}

	shas, err := p.CommitSHAs()
	if err != nil {
		return err
	}

	commits := make(map[oid.Sha]*Commit, len(shas))
	order := make([]oid.Sha, 0, len(shas))
	for _, sha := range shas {
		c := p.store.Commit(sha)
		author, err := c.Author()
		if err != nil {
			if xerrors.Is(err, wocerr.ErrObjectNotFound) {
				continue // not retrievable; excluded per spec.md §4.9
			}
			return xerrors.Errorf("project %q: loading commit %s: %w", p.name, sha, err)
		}
		if IgnoredAuthors[string(author)] {
			continue
		}
		commits[sha] = c
		order = append(order, sha)
	}

	authoredAt := make(map[oid.Sha]commitDate, len(order))
	for _, sha := range order {
		t, ok, err := commits[sha].AuthoredAt()
		if err != nil {
			return xerrors.Errorf("project %q: commit %s authored date: %w", p.name, sha, err)
		}
		authoredAt[sha] = commitDate{t: t, ok: ok}
	}

	var roots []oid.Sha
	parents := make(map[oid.Sha]bool)
	firstParents := make(map[oid.Sha]bool)
	for _, sha := range order {
		parentSHAs, err := commits[sha].ParentSHAs()
		if err != nil {
			return xerrors.Errorf("project %q: commit %s parents: %w", p.name, sha, err)
		}
		if len(parentSHAs) == 0 {
			roots = append(roots, sha)
		} else {
			firstParents[parentSHAs[0]] = true
		}
		for _, parent := range parentSHAs {
			parents[parent] = true
		}
	}

	minRootDate := time.Unix(0, 0).UTC()
	haveValidRootDate := false
	for _, sha := range roots {
		d := authoredAt[sha]
		if !d.ok {
			continue
		}
		if !haveValidRootDate || d.t.Before(minRootDate) {
			minRootDate = d.t
			haveValidRootDate = true
		}
	}

	for _, sha := range order {
		d := authoredAt[sha]
		if d.ok && d.t.Before(minRootDate) {
			authoredAt[sha] = commitDate{ok: false}
		}
	}

	var head oid.Sha
	hasHead := false
	bestDate := time.Unix(0, 0).UTC()
	for _, sha := range order {
		if parents[sha] {
			continue
		}
		d := authoredAt[sha]
		effective := bestDate
		if d.ok {
			effective = d.t
		}
		if !hasHead || effective.After(bestDate) {
			head, hasHead, bestDate = sha, true, effective
		}
	}

	var tail oid.Sha
	hasTail := false
	for _, sha := range roots {
		if firstParents[sha] {
			tail, hasTail = sha, true
			break
		}
	}

	var chain []oid.Sha
	if hasHead {
		current := head
		seen := make(map[oid.Sha]bool)
		for {
			if seen[current] {
				break
			}
			seen[current] = true
			chain = append(chain, current)

			c := p.store.Commit(current)
			parentSHAs, err := c.ParentSHAs()
			if err != nil {
				if xerrors.Is(err, wocerr.ErrObjectNotFound) {
					break
				}
				return xerrors.Errorf("project %q: first-parent chain at %s: %w", p.name, current, err)
			}
			if len(parentSHAs) == 0 {
				break
			}
			current = parentSHAs[0]
		}
	}

	p.commits = commits
	p.order = order
	p.authoredAt = authoredAt
	p.head, p.hasHead = head, hasHead
	p.tail, p.hasTail = tail, hasTail
	p.fpChain = chain
	p.loadedDerived = true
	return nil
}

// Head returns the topologically-latest commit with no children
// inside the project, or ok=false if the project has no retrievable
// commits.
func (p *Project) Head() (sha oid.Sha, ok bool, err error) {
	if err := p.loadDerived(); err != nil {
		return oid.Zero, false, err
	}
	return p.head, p.hasHead, nil
}

// Tail returns the parentless root of the project's first-parent
// chain, or ok=false if none is found.
func (p *Project) Tail() (sha oid.Sha, ok bool, err error) {
	if err := p.loadDerived(); err != nil {
		return oid.Zero, false, err
	}
	return p.tail, p.hasTail, nil
}

// CommitsFP returns the first-parent chain starting at Head.
func (p *Project) CommitsFP() ([]oid.Sha, error) {
	if err := p.loadDerived(); err != nil {
		return nil, err
	}
	return p.fpChain, nil
}
