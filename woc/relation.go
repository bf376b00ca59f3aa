package woc

import (
	"strings"

	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/lzf"
	"github.com/ssc-oscar/woc-go/oid"
)

// emptySentinel is the literal token a compressed semicolon-list
// relation uses in place of an absent value; it is dropped during
// decoding, never surfaced as a result (spec.md §3).
const emptySentinel = "EMPTY"

// lookupRaw resolves relation/key to a shard path and returns the raw
// TCH value, or ok=false if the key is absent from its shard.
func (s *Store) lookupRaw(relation string, key []byte) (data []byte, ok bool, err error) {
	path, _, err := s.table.Resolve(relation, key)
	if err != nil {
		return nil, false, xerrors.Errorf("resolving %s: %w", relation, err)
	}
	h, err := s.pool.Get(path)
	if err != nil {
		return nil, false, xerrors.Errorf("opening shard for %s: %w", relation, err)
	}
	data, ok, err = h.Get(key)
	if err != nil {
		return nil, false, xerrors.Errorf("reading %s: %w", relation, err)
	}
	return data, ok, nil
}

// relationSHAs reads a relation whose value is a raw concatenation of
// 20-byte SHA-1s (commit/tree/blob targets). A missing key yields an
// empty, non-error result: relation lookups never poison neighboring
// keys (spec.md §7).
func (s *Store) relationSHAs(relation string, key []byte) ([]oid.Sha, error) {
	data, ok, err := s.lookupRaw(relation, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	shas, err := oid.Chunk(data)
	if err != nil {
		return nil, xerrors.Errorf("decoding %s as sha list: %w", relation, err)
	}
	return shas, nil
}

// relationStrings reads a relation whose value is an LZF-compressed,
// semicolon-delimited list of byte strings (project/author/file
// targets), dropping the EMPTY sentinel per spec.md §3.
func (s *Store) relationStrings(relation string, key []byte) ([]string, error) {
	data, ok, err := s.lookupRaw(relation, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	decoded, err := lzf.Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("decoding %s as string list: %w", relation, err)
	}

	parts := strings.Split(string(decoded), ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == emptySentinel {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
