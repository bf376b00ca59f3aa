// Package packedblob implements the §4.6 packed-object reader: a
// pool of open ".bin" archives, seeked into by an offset and
// compressed length obtained elsewhere (the blob_offset relation),
// and the accompanying ".idx" sequential text format.
package packedblob

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/ssc-oscar/woc-go/internal/syncutil"
	"github.com/ssc-oscar/woc-go/lzf"
	"github.com/ssc-oscar/woc-go/wocerr"
)

const registryShards = 257

// Registry pools open ".bin" archive handles by absolute path, the
// same open-once-never-evict discipline as storage/tch.Pool, but for
// raw byte archives instead of Tokyo Cabinet databases.
type Registry struct {
	mu      sync.RWMutex
	files   map[string]*os.File
	opening *syncutil.NamedMutex
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		files:   make(map[string]*os.File),
		opening: syncutil.NewNamedMutex(registryShards),
	}
}

func (r *Registry) lookup(path string) (*os.File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[path]
	return f, ok
}

func (r *Registry) open(path string) (*os.File, error) {
	if f, ok := r.lookup(path); ok {
		return f, nil
	}

	key := []byte(path)
	r.opening.Lock(key)
	defer r.opening.Unlock(key)

	if f, ok := r.lookup(path); ok {
		return f, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(wocerr.ErrShardUnavailable, "could not open archive %s: %v", path, err)
	}

	r.mu.Lock()
	r.files[path] = f
	r.mu.Unlock()
	return f, nil
}

// Read performs the §4.6 packed-object read: seek to offset in the
// archive at path, read compressedLength bytes, and LZF-decompress
// them. A stale or bogus offset that runs past EOF or yields a
// malformed frame surfaces as ErrObjectNotFound, matching the
// caller-facing contract spec.md §4.6 gives this failure mode.
func (r *Registry) Read(path string, offset, compressedLength uint64) ([]byte, error) {
	f, err := r.open(path)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, compressedLength)
	if _, err := f.ReadAt(raw, int64(offset)); err != nil {
		return nil, errors.Wrapf(wocerr.ErrObjectNotFound, "could not read %d bytes at offset %d in %s: %v", compressedLength, offset, path, err)
	}

	data, err := lzf.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(wocerr.ErrObjectNotFound, "corrupt frame in %s at offset %d: %v", path, offset, err)
	}
	return data, nil
}

// CloseAll closes every archive handle currently held open.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for path, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "could not close archive %s", path)
		}
	}
	return firstErr
}
