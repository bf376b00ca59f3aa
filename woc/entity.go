package woc

// kind tags the seven entity types spec.md §3 defines. Two entities
// are equal iff their kind and key bytes are identical (spec.md §3
// invariant 2).
type kind uint8

const (
	kindBlob kind = iota
	kindTree
	kindCommit
	kindTag
	kindProject
	kindFile
	kindAuthor
)

// IgnoredAuthors lists commit authors excluded from a project's
// derived commit set (Head, Tail, CommitsFP); the raw CommitSHAs
// relations of Project and File keep everything.
var IgnoredAuthors = map[string]bool{
	"GitHub Merge Button <merge-button@github.com>": true,
}

// identity is the (kind, key) pair spec.md §3 invariant 2 bases
// equality and hashing on. It intentionally excludes the owning
// Store, so two handles for the same key opened from different Stores
// still compare equal.
type identity struct {
	kind kind
	key  string
}

// Equal reports whether b is the same entity as a: same kind, same
// key bytes.
func (b *Blob) Equal(other *Blob) bool    { return other != nil && b.sha == other.sha }
func (t *Tree) Equal(other *Tree) bool    { return other != nil && t.sha == other.sha }
func (c *Commit) Equal(other *Commit) bool { return other != nil && c.sha == other.sha }
func (t *Tag) Equal(other *Tag) bool      { return other != nil && t.sha == other.sha }
func (p *Project) Equal(other *Project) bool {
	return other != nil && p.name == other.name
}
func (f *File) Equal(other *File) bool {
	return other != nil && string(f.path) == string(other.path)
}
func (a *Author) Equal(other *Author) bool {
	return other != nil && string(a.ident) == string(other.ident)
}

func (b *Blob) identity() identity    { return identity{kindBlob, b.sha.String()} }
func (t *Tree) identity() identity    { return identity{kindTree, t.sha.String()} }
func (c *Commit) identity() identity  { return identity{kindCommit, c.sha.String()} }
func (t *Tag) identity() identity     { return identity{kindTag, t.sha.String()} }
func (p *Project) identity() identity { return identity{kindProject, p.name} }
func (f *File) identity() identity    { return identity{kindFile, string(f.path)} }
func (a *Author) identity() identity  { return identity{kindAuthor, string(a.ident)} }
