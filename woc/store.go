// Package woc implements the domain model spec.md §3 describes:
// Blob, Tree, Commit, Tag, Project, File, and Author entities layered
// over the storage primitives in pathresolver, storage/tch, and
// storage/packedblob, plus commit diffing and project traversal.
package woc

import (
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/config"
	"github.com/ssc-oscar/woc-go/internal/env"
	"github.com/ssc-oscar/woc-go/pathresolver"
	"github.com/ssc-oscar/woc-go/storage/packedblob"
	"github.com/ssc-oscar/woc-go/storage/tch"
)

// Store is the process-wide context every entity is a thin, lazily
// evaluated view over: the resolved path table, the TCH handle pool,
// the packed-blob archive registry, and a logger for warnings.
type Store struct {
	table *pathresolver.Table
	pool  *tch.Pool
	blobs *packedblob.Registry
	log   *zap.SugaredLogger
}

// StoreOptions configures Open. Fs and Env default to the real
// filesystem and process environment; callers only need to set them
// to inject fakes in tests.
type StoreOptions struct {
	Fs  afero.Fs
	Env *env.Env
	Log *zap.SugaredLogger
	// Host overrides the local hostname pathresolver uses for its
	// "locally-mounted shortcut" rewrite. Empty means "detect it from
	// /etc/hostname", matching the host gating check.
	Host string
}

// Open performs host gating, loads configuration, builds the path
// table, and returns a ready-to-use Store. This is the "cheap
// construction, lazy storage interaction" lifecycle of spec.md §3,
// made concrete the way the teacher's Repository is for a git
// checkout.
func Open(opts StoreOptions) (*Store, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Env == nil {
		opts.Env = env.NewFromOS()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}

	if err := config.CheckHost(opts.Fs, opts.Env, opts.Log); err != nil {
		return nil, xerrors.Errorf("host gating failed: %w", err)
	}

	cfg, err := config.Load(opts.Env, opts.Fs)
	if err != nil {
		return nil, xerrors.Errorf("could not load configuration: %w", err)
	}

	host := opts.Host
	if host == "" {
		host = detectHost(opts.Fs)
	}

	table, err := pathresolver.BuildTable(cfg, opts.Fs, host, opts.Log)
	if err != nil {
		return nil, xerrors.Errorf("could not build path table: %w", err)
	}

	return &Store{
		table: table,
		pool:  tch.NewPool(),
		blobs: packedblob.NewRegistry(),
		log:   opts.Log,
	}, nil
}

func detectHost(fs afero.Fs) string {
	raw, err := afero.ReadFile(fs, "/etc/hostname")
	if err != nil {
		return ""
	}
	host, _, _ := strings.Cut(strings.TrimSpace(string(raw)), ".")
	return host
}

// Close releases every open shard and archive handle. The library
// otherwise never tears this down (spec.md §9): the OS reclaims file
// descriptors at process exit.
func (s *Store) Close() error {
	poolErr := s.pool.CloseAll()
	blobErr := s.blobs.CloseAll()
	if poolErr != nil {
		return xerrors.Errorf("could not close shard pool: %w", poolErr)
	}
	if blobErr != nil {
		return xerrors.Errorf("could not close blob registry: %w", blobErr)
	}
	return nil
}
