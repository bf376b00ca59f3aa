// Package pathresolver maps a (relation, key) pair to the concrete
// on-disk shard file that holds it, the way spec.md §4.4 describes:
// a relation's filename template is resolved once per process against
// the live filesystem (glob for version, glob for shard-index bit
// width), then every lookup substitutes the key's shard index into
// the cached template.
package pathresolver

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ssc-oscar/woc-go/config"
	"github.com/ssc-oscar/woc-go/fnv1a"
	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// defaultCategoryPrefix gives every category's default mount point,
// rooted under "/<host>_data" so the "locally-mounted shortcut" rule
// in spec.md §4.4 step 2 has something to rewrite.
var defaultCategoryPrefix = map[string]string{
	config.CategoryBasemaps: "/da4_data/basemaps",
	config.CategoryAllBlobs: "/da4_data/All.blobs",
	config.CategoryAllSha1C: "/da4_data/All.sha1c",
	config.CategoryAllSha1O: "/da4_data/All.sha1o",
}

// RelationDef is one entry of the built-in relation table: which
// category it lives under, the filename template relative to that
// category's prefix ("{ver}" and "{key}" placeholders), and whether
// its keys are SHA-1 (sharded by first byte) or textual (sharded by
// FNV-1a).
type RelationDef struct {
	Category string
	Template string
	SHAKeyed bool
}

// DefaultRelations is the built-in relation → definition table
// (spec.md §6's list). Filenames use the relation's own name as the
// stem; spec.md gives only one illustrative example
// ("c2pFullR.0.tch") and doesn't mandate a specific abbreviation
// scheme, so the default table spells relations out in full.
var DefaultRelations = map[string]RelationDef{
	"commit_random": {Category: config.CategoryAllSha1C, Template: "commit_{key}.tch", SHAKeyed: true},
	"tree_random":   {Category: config.CategoryAllSha1C, Template: "tree_{key}.tch", SHAKeyed: true},
	"blob_offset":   {Category: config.CategoryAllSha1O, Template: "sha1.blob_{key}.tch", SHAKeyed: true},
	"blob_data":     {Category: config.CategoryAllBlobs, Template: "blob_{key}.bin", SHAKeyed: true},
	"blob_idx":      {Category: config.CategoryAllBlobs, Template: "blob_{key}.idx", SHAKeyed: true},

	"commit_projects":    {Category: config.CategoryBasemaps, Template: "commit_projects{ver}.{key}.tch", SHAKeyed: true},
	"commit_children":    {Category: config.CategoryBasemaps, Template: "commit_children{ver}.{key}.tch", SHAKeyed: true},
	"commit_time_author": {Category: config.CategoryBasemaps, Template: "commit_time_author{ver}.{key}.tch", SHAKeyed: true},
	"commit_root":        {Category: config.CategoryBasemaps, Template: "commit_root{ver}.{key}.tch", SHAKeyed: true},
	"commit_head":        {Category: config.CategoryBasemaps, Template: "commit_head{ver}.{key}.tch", SHAKeyed: true},
	"commit_parent":      {Category: config.CategoryBasemaps, Template: "commit_parent{ver}.{key}.tch", SHAKeyed: true},
	"commit_blobs":       {Category: config.CategoryBasemaps, Template: "commit_blobs{ver}.{key}.tch", SHAKeyed: true},
	"commit_files":       {Category: config.CategoryBasemaps, Template: "commit_files{ver}.{key}.tch", SHAKeyed: true},

	"author_commits":  {Category: config.CategoryBasemaps, Template: "author_commits{ver}.{key}.tch", SHAKeyed: false},
	"author_projects": {Category: config.CategoryBasemaps, Template: "author_projects{ver}.{key}.tch", SHAKeyed: false},
	"author_files":    {Category: config.CategoryBasemaps, Template: "author_files{ver}.{key}.tch", SHAKeyed: false},

	"project_authors": {Category: config.CategoryBasemaps, Template: "project_authors{ver}.{key}.tch", SHAKeyed: false},
	"project_commits": {Category: config.CategoryBasemaps, Template: "project_commits{ver}.{key}.tch", SHAKeyed: false},

	"blob_commits": {Category: config.CategoryBasemaps, Template: "blob_commits{ver}.{key}.tch", SHAKeyed: true},
	"blob_author":  {Category: config.CategoryBasemaps, Template: "blob_author{ver}.{key}.tch", SHAKeyed: true},
	"blob_files":   {Category: config.CategoryBasemaps, Template: "blob_files{ver}.{key}.tch", SHAKeyed: true},

	"file_authors": {Category: config.CategoryBasemaps, Template: "file_authors{ver}.{key}.tch", SHAKeyed: false},
	"file_commits": {Category: config.CategoryBasemaps, Template: "file_commits{ver}.{key}.tch", SHAKeyed: false},
	"file_blobs":   {Category: config.CategoryBasemaps, Template: "file_blobs{ver}.{key}.tch", SHAKeyed: false},
}

type resolved struct {
	pathTemplate string // prefix/template with {ver} substituted, {key} still literal
	bitWidth     uint
	shaKeyed     bool
}

// Table is the immutable, process-wide path table built once at
// startup by BuildTable.
type Table struct {
	entries map[string]resolved
}

// BuildTable resolves every entry of DefaultRelations against fs,
// applying cfg's overrides and host's "locally-mounted shortcut"
// rewrite. log receives the zero-bit-width warning from spec.md
// §4.4 step 5; a nil log is replaced with a no-op one.
func BuildTable(cfg *config.Config, fs afero.Fs, host string, log *zap.SugaredLogger) (*Table, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	t := &Table{entries: make(map[string]resolved, len(DefaultRelations))}
	for relation, def := range DefaultRelations {
		r, err := resolveRelation(relation, def, cfg, fs, host, log)
		if err != nil {
			return nil, errors.Wrapf(err, "could not resolve relation %s", relation)
		}
		t.entries[relation] = r
	}
	return t, nil
}

func resolveRelation(relation string, def RelationDef, cfg *config.Config, fs afero.Fs, host string, log *zap.SugaredLogger) (resolved, error) {
	template := def.Template

	if override, ok := cfg.RelationPath(relation); ok {
		template = override
	} else {
		prefix, ok := cfg.CategoryPrefix(def.Category)
		if !ok {
			prefix = defaultCategoryPrefix[def.Category]
		}
		prefix = rewriteLocalMount(prefix, host)

		ver := ""
		if strings.Contains(template, "{ver}") {
			v, err := resolveVersion(relation, def, cfg, fs, prefix)
			if err != nil {
				return resolved{}, err
			}
			ver = v
		}
		template = prefix + "/" + strings.ReplaceAll(def.Template, "{ver}", ver)
	}

	bitWidth, err := resolveBitWidth(fs, template)
	if err != nil {
		return resolved{}, err
	}
	if bitWidth == 0 && !cfg.Test {
		log.Warnf("relation %s resolved to a zero-bit shard width; every key maps to a single shard", relation)
	}

	return resolved{pathTemplate: template, bitWidth: bitWidth, shaKeyed: def.SHAKeyed}, nil
}

// rewriteLocalMount implements spec.md §4.4 step 2: a prefix rooted
// at "/<host>_data" is rewritten to "/data".
func rewriteLocalMount(prefix, host string) string {
	if host == "" {
		return prefix
	}
	marker := "/" + host + "_data"
	if strings.HasPrefix(prefix, marker) {
		return "/data" + strings.TrimPrefix(prefix, marker)
	}
	return prefix
}

// resolveVersion implements spec.md §4.4 step 3: an explicit
// per-relation or per-category version override wins; otherwise glob
// for every version present on disk and pick the longest, ties broken
// lexically.
func resolveVersion(relation string, def RelationDef, cfg *config.Config, fs afero.Fs, prefix string) (string, error) {
	if v, ok := cfg.RelationVersion(relation); ok {
		return v, nil
	}
	if v, ok := cfg.CategoryVersion(def.Category); ok {
		return v, nil
	}

	pattern := prefix + "/" + strings.ReplaceAll(strings.ReplaceAll(def.Template, "{ver}", "*"), "{key}", "0")
	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		return "", errors.Wrapf(err, "could not glob for version of %s", relation)
	}

	best := ""
	for _, m := range matches {
		v := extractGlobStar(pattern, m)
		if len(v) > len(best) || (len(v) == len(best) && v > best) {
			best = v
		}
	}
	return best, nil
}

// resolveBitWidth implements spec.md §4.4 step 5: glob the resolved
// template with every shard index present, take the maximum, and
// return ceil(log2(max+1)) as the shard-index bit width.
func resolveBitWidth(fs afero.Fs, resolvedTemplate string) (uint, error) {
	pattern := strings.ReplaceAll(resolvedTemplate, "{key}", "*")
	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		return 0, errors.Wrapf(err, "could not glob for shard width of %s", pattern)
	}

	maxKey := 0
	for _, m := range matches {
		s := extractGlobStar(pattern, m)
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			continue
		}
		if n > maxKey {
			maxKey = n
		}
	}
	if maxKey == 0 {
		return 0, nil
	}
	return uint(bitLen(maxKey + 1)), nil
}

func bitLen(n int) int {
	return bits.Len(uint(n - 1))
}

// extractGlobStar recovers the substring a single "*" in pattern
// matched within match, assuming pattern contains exactly one "*".
func extractGlobStar(pattern, match string) string {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return ""
	}
	prefixLen := star
	suffixLen := len(pattern) - star - 1
	if prefixLen+suffixLen > len(match) {
		return ""
	}
	return match[prefixLen : len(match)-suffixLen]
}

// Resolve returns the concrete shard path for relation and key, and
// the shard index selected within it.
func (t *Table) Resolve(relation string, key []byte) (path string, shardIndex int, err error) {
	r, ok := t.entries[relation]
	if !ok {
		return "", 0, errors.Wrapf(wocerr.ErrConstruction, "unknown relation %q", relation)
	}

	mask := (1 << r.bitWidth) - 1
	if r.shaKeyed {
		sha, shaErr := oid.FromBytes(key)
		if shaErr != nil {
			return "", 0, errors.Wrapf(shaErr, "relation %s expects a 20-byte key", relation)
		}
		shardIndex = int(sha.ShardByte()) & mask
	} else {
		shardIndex = int(fnv1a.Sum(key)) & mask
	}

	path = strings.ReplaceAll(r.pathTemplate, "{key}", strconv.Itoa(shardIndex))
	return path, shardIndex, nil
}

// BitWidth returns the resolved shard-index bit width for relation.
func (t *Table) BitWidth(relation string) (uint, bool) {
	r, ok := t.entries[relation]
	return r.bitWidth, ok
}

// IsSHAKeyed reports whether relation shards by SHA-1 first byte
// (true) or by FNV-1a of an arbitrary textual key (false).
func (t *Table) IsSHAKeyed(relation string) (bool, bool) {
	r, ok := t.entries[relation]
	return r.shaKeyed, ok
}
