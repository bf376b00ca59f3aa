package woc

import (
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/oid"
)

// DiffEntry is one row of a commit diff: a path/SHA pair on each side,
// either of which may be absent (spec.md §4.8). An absent old side
// means the file was added; an absent new side means it was removed.
type DiffEntry struct {
	OldPath *string
	NewPath *string
	OldSHA  *oid.Sha
	NewSHA  *oid.Sha
}

func strPtr(s string) *string   { return &s }
func shaPtr(s oid.Sha) *oid.Sha { return &s }

// Diff computes commit_a - commit_b, the changed files spec.md §4.8
// describes, built in full and returned as a slice: unchanged files
// are dropped, modified files are emitted directly, and additions/deletions at threshold<1
// go through similarity-ratio rename detection before falling back to
// plain add/remove pairs.
func Diff(a, b *Commit, threshold float64) ([]DiffEntry, error) {
	if err := warnIfNotParent(a, b); err != nil {
		return nil, err
	}

	treeA, err := a.Tree()
	if err != nil {
		return nil, xerrors.Errorf("diff: commit %s tree: %w", a.SHA(), err)
	}
	treeB, err := b.Tree()
	if err != nil {
		return nil, xerrors.Errorf("diff: commit %s tree: %w", b.SHA(), err)
	}

	filesA, err := treeA.Files()
	if err != nil {
		return nil, xerrors.Errorf("diff: %w", err)
	}
	filesB, err := treeB.Files()
	if err != nil {
		return nil, xerrors.Errorf("diff: %w", err)
	}

	var entries []DiffEntry
	var addedNames, deletedNames []string

	for name, shaA := range filesA {
		if shaB, ok := filesB[name]; ok {
			if shaA != shaB {
				entries = append(entries, DiffEntry{
					OldPath: strPtr(name), NewPath: strPtr(name),
					OldSHA: shaPtr(shaB), NewSHA: shaPtr(shaA),
				})
			}
			continue
		}
		addedNames = append(addedNames, name)
	}
	for name := range filesB {
		if _, ok := filesA[name]; !ok {
			deletedNames = append(deletedNames, name)
		}
	}

	if threshold >= 1 {
		for _, name := range addedNames {
			sha := filesA[name]
			entries = append(entries, DiffEntry{NewPath: strPtr(name), NewSHA: shaPtr(sha)})
		}
		for _, name := range deletedNames {
			sha := filesB[name]
			entries = append(entries, DiffEntry{OldPath: strPtr(name), OldSHA: shaPtr(sha)})
		}
		return entries, nil
	}

	renames, leftoverAdded, leftoverDeleted, err := detectRenames(a.store, filesA, filesB, addedNames, deletedNames, threshold)
	if err != nil {
		return nil, err
	}
	entries = append(entries, renames...)
	for _, name := range leftoverAdded {
		sha := filesA[name]
		entries = append(entries, DiffEntry{NewPath: strPtr(name), NewSHA: shaPtr(sha)})
	}
	for _, name := range leftoverDeleted {
		sha := filesB[name]
		entries = append(entries, DiffEntry{OldPath: strPtr(name), OldSHA: shaPtr(sha)})
	}
	return entries, nil
}

// warnIfNotParent emits a one-shot warning if b is not among a's
// declared parents, per spec.md §4.8.
func warnIfNotParent(a, b *Commit) error {
	parents, err := a.ParentSHAs()
	if err != nil {
		return xerrors.Errorf("diff: %w", err)
	}
	for _, p := range parents {
		if p == b.SHA() {
			return nil
		}
	}
	a.store.log.Warnf("diffing commit %s against %s, which is not a declared parent", a.SHA(), b.SHA())
	return nil
}

// detectRenames attempts to pair each deleted name with an added name
// via a similarity ratio on blob content, guarded by cheap
// pre-filters (length ratio, then the full ratio), each required to
// exceed threshold. First match wins; matched deletions are removed
// from the pool.
func detectRenames(s *Store, filesA, filesB map[string]oid.Sha, added, deleted []string, threshold float64) (renames []DiffEntry, leftoverAdded, leftoverDeleted []string, err error) {
	remainingDeleted := make(map[string]bool, len(deleted))
	for _, name := range deleted {
		remainingDeleted[name] = true
	}

	blobCache := make(map[oid.Sha][]byte)
	fetch := func(sha oid.Sha) ([]byte, error) {
		if data, ok := blobCache[sha]; ok {
			return data, nil
		}
		data, err := s.Blob(sha).Data()
		if err != nil {
			return nil, err
		}
		blobCache[sha] = data
		return data, nil
	}

	for _, newName := range added {
		newData, fetchErr := fetch(filesA[newName])
		if fetchErr != nil {
			return nil, nil, nil, xerrors.Errorf("diff: rename detection: %w", fetchErr)
		}

		matched := ""
		for oldName := range remainingDeleted {
			if !remainingDeleted[oldName] {
				continue
			}
			oldData, fetchErr := fetch(filesB[oldName])
			if fetchErr != nil {
				return nil, nil, nil, xerrors.Errorf("diff: rename detection: %w", fetchErr)
			}

			if !lengthRatioAbove(oldData, newData, threshold) {
				continue
			}
			if similarityRatio(oldData, newData) > threshold {
				matched = oldName
				break
			}
		}

		if matched == "" {
			leftoverAdded = append(leftoverAdded, newName)
			continue
		}
		delete(remainingDeleted, matched)
		oldSHA, newSHA := filesB[matched], filesA[newName]
		renames = append(renames, DiffEntry{
			OldPath: strPtr(matched), NewPath: strPtr(newName),
			OldSHA: shaPtr(oldSHA), NewSHA: shaPtr(newSHA),
		})
	}

	for name := range remainingDeleted {
		leftoverDeleted = append(leftoverDeleted, name)
	}
	return renames, leftoverAdded, leftoverDeleted, nil
}

// lengthRatioAbove is the cheapest pre-filter: two wildly
// different-sized blobs can never reach the threshold under the full
// ratio, so skip the expensive comparison.
func lengthRatioAbove(a, b []byte, threshold float64) bool {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return true
	}
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return 2*float64(shorter)/float64(la+lb) > threshold || longer == 0
}

// similarityRatio computes a longest-common-subsequence-based
// similarity ratio in [0,1]: 2*|LCS(a,b)| / (len(a)+len(b)).
func similarityRatio(a, b []byte) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	lcs := lcsLength(a, b)
	return 2 * float64(lcs) / float64(len(a)+len(b))
}

// lcsLength computes the length of the longest common subsequence of
// a and b using the standard O(len(a)*len(b)) dynamic program.
func lcsLength(a, b []byte) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
