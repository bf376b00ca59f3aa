package tch

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ssc-oscar/woc-go/internal/syncutil"
)

// poolShards sizes the sharded open-or-create lock; it only needs to
// be large enough that concurrent opens of distinct shards rarely
// collide, not to match the real shard count.
const poolShards = 257

// Pool is the process-wide map from absolute shard path to its open
// Handle described in spec.md §4.5: opened under a mutex the first
// time a path is requested, never evicted afterward, and never
// memoizing an open failure so a later retry can succeed (e.g. after
// a remount).
type Pool struct {
	mu      sync.RWMutex
	handles map[string]*Handle
	opening *syncutil.NamedMutex
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{
		handles: make(map[string]*Handle),
		opening: syncutil.NewNamedMutex(poolShards),
	}
}

// Get returns the pooled Handle for path, opening it first if
// necessary. Concurrent callers requesting the same path block on
// each other; callers opening unrelated paths block on each other only
// when their paths hash to the same one of the poolShards locks.
func (p *Pool) Get(path string) (*Handle, error) {
	if h, ok := p.lookup(path); ok {
		return h, nil
	}

	key := []byte(path)
	p.opening.Lock(key)
	defer p.opening.Unlock(key)

	if h, ok := p.lookup(path); ok {
		return h, nil
	}

	h, err := Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open shard %s", path)
	}

	p.mu.Lock()
	p.handles[path] = h
	p.mu.Unlock()
	return h, nil
}

func (p *Pool) lookup(path string) (*Handle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.handles[path]
	return h, ok
}

// CloseAll closes every handle currently held by the pool. The
// library otherwise never tears this down; the OS reclaims file
// descriptors at process exit (spec.md §9).
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for path, h := range p.handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "could not close shard %s", path)
		}
	}
	return firstErr
}
