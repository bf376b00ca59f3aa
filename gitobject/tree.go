package gitobject

import (
	"bytes"

	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// DirMode is the mode string Git uses for a tree entry that is itself
// a subtree.
const DirMode = "40000"

// TreeEntry is one row of a tree object's binary layout:
// "<mode> <name>\x00<20-byte sha>", repeated back to back.
type TreeEntry struct {
	Mode []byte
	Name []byte
	SHA  oid.Sha
}

// IsDir reports whether the entry names a subtree rather than a blob.
func (e TreeEntry) IsDir() bool {
	return string(e.Mode) == DirMode
}

// IterTree walks the entries of a tree object's raw bytes, calling
// yield for each one in order. It stops and returns yield's error if
// yield returns non-nil.
//
// spec.md §9 leaves open whether a truncated entry should panic or
// fail; this reads as a wire format from an untrusted archive, so
// every slice is bounds-checked and a truncated entry surfaces as
// ErrCorruptFrame instead of a slice-bounds panic.
func IterTree(data []byte, yield func(TreeEntry) error) error {
	i := 0
	for i < len(data) {
		spaceIdx := bytes.IndexByte(data[i:], ' ')
		if spaceIdx < 0 {
			return xerrors.Errorf("tree entry missing mode separator: %w", wocerr.ErrCorruptFrame)
		}
		mode := data[i : i+spaceIdx]
		i += spaceIdx + 1

		nulIdx := bytes.IndexByte(data[i:], 0)
		if nulIdx < 0 {
			return xerrors.Errorf("tree entry missing name terminator: %w", wocerr.ErrCorruptFrame)
		}
		name := data[i : i+nulIdx]
		i += nulIdx + 1

		if i+oid.Size > len(data) {
			return xerrors.Errorf("tree entry truncated before sha: %w", wocerr.ErrCorruptFrame)
		}
		sha, err := oid.FromBytes(data[i : i+oid.Size])
		if err != nil {
			return xerrors.Errorf("tree entry sha: %w", err)
		}
		i += oid.Size

		if err := yield(TreeEntry{Mode: mode, Name: name, SHA: sha}); err != nil {
			return err
		}
	}
	return nil
}

// Entries collects IterTree's output into a slice, for callers that
// don't need streaming.
func Entries(data []byte) ([]TreeEntry, error) {
	var out []TreeEntry
	err := IterTree(data, func(e TreeEntry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}
