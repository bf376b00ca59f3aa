// Package wocerr contains the sentinel errors shared across the storage
// and domain layers of woc-go.
package wocerr

import "errors"

// Sentinel errors returned by the storage and domain layers. Callers
// are expected to test for these with errors.Is, since every layer
// wraps them with context using either github.com/pkg/errors or
// golang.org/x/xerrors depending on which layer raised them.
var (
	// ErrConstruction is returned when an identifier is built from
	// malformed input: a SHA-1 with the wrong length, non-hex
	// characters, or similar.
	ErrConstruction = errors.New("construction error")

	// ErrObjectNotFound is returned when a key is absent from its
	// shard, or when a blob offset points outside its archive. It
	// never poisons neighboring keys or the handle pool.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCorruptFrame is returned when an LZF header is malformed, a
	// tree record is truncated, or a commit header is syntactically
	// invalid.
	ErrCorruptFrame = errors.New("corrupt frame")

	// ErrShardUnavailable is returned when a Tokyo-Cabinet shard file
	// cannot be opened or iterated. It is scoped to the shard that
	// failed and never affects sibling shards.
	ErrShardUnavailable = errors.New("shard unavailable")

	// ErrUnsupportedPlatform is returned at initialization when host
	// gating fails. It is fatal: the library does not finish loading.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)
