// Package config resolves the env-var and ini-overlay surface that
// pathresolver.BuildTable consumes: the default prefix and version for
// each of the four storage categories, and per-relation overrides.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/ssc-oscar/woc-go/internal/env"
)

// Category names double as the env vars that override their default
// directory prefix (spec.md §6).
const (
	CategoryAllBlobs = "OSCAR_ALL_BLOBS"
	CategoryAllSha1C = "OSCAR_ALL_SHA1C"
	CategoryAllSha1O = "OSCAR_ALL_SHA1O"
	CategoryBasemaps = "OSCAR_BASEMAPS"
)

var categories = []string{CategoryAllBlobs, CategoryAllSha1C, CategoryAllSha1O, CategoryBasemaps}

var loadOptions = ini.LoadOptions{SkipUnrecognizableLines: true}

// Config is the merged, immutable configuration produced by Load. It
// is consumed once by pathresolver.BuildTable.
type Config struct {
	// Test mirrors OSCAR_TEST: disables host gating and key-width
	// warnings.
	Test bool

	env             *env.Env
	categoryPrefix  map[string]string
	categoryVersion map[string]string
	relationPath    map[string]string
	relationVersion map[string]string
}

// RelationEnvName returns the env var consulted for a per-relation
// path override, e.g. "commit_projects" -> "OSCAR_COMMIT_PROJECTS".
func RelationEnvName(relation string) string {
	return "OSCAR_" + strings.ToUpper(relation)
}

// Load builds a Config from, in ascending priority: the built-in
// defaults (empty maps; pathresolver owns those), the ini overlay
// files (/etc/oscar.ini, then $HOME/.oscarrc), then the environment.
func Load(e *env.Env, fs afero.Fs) (*Config, error) {
	cfg := &Config{
		env:             e,
		categoryPrefix:  make(map[string]string),
		categoryVersion: make(map[string]string),
		relationPath:    make(map[string]string),
		relationVersion: make(map[string]string),
	}
	cfg.Test = e.Bool("OSCAR_TEST")

	if err := loadIniOverlay(cfg, e, fs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayPaths(e *env.Env) []string {
	paths := []string{"/etc/oscar.ini"}
	if home := e.Get("HOME"); home != "" {
		paths = append(paths, home+"/.oscarrc")
	}
	return paths
}

// loadIniOverlay reads the overlay files lowest-to-highest priority
// and merges them into cfg, mirroring the aggregation pattern used to
// combine the global and local git config files.
func loadIniOverlay(cfg *Config, e *env.Env, fs afero.Fs) (err error) {
	paths := overlayPaths(e)
	files := make([]interface{}, 0, len(paths))
	for _, p := range paths {
		f, openErr := fs.Open(p)
		if openErr != nil {
			if os.IsNotExist(openErr) {
				continue
			}
			return errors.Wrapf(openErr, "could not open config overlay %s", p)
		}
		defer f.Close() //nolint:errcheck // read-only handle, nothing to flush
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil
	}

	merged, err := ini.LoadSources(loadOptions, files[0], files[1:]...)
	if err != nil {
		return errors.Wrap(err, "could not parse config overlay")
	}

	for _, category := range categories {
		section := merged.Section(category)
		if v := section.Key("prefix").String(); v != "" {
			cfg.categoryPrefix[category] = v
		}
		if v := section.Key("ver").String(); v != "" {
			cfg.categoryVersion[category] = v
		}
	}
	for _, key := range merged.Section("relations").Keys() {
		name := key.Name()
		if strings.HasSuffix(name, "_ver") {
			cfg.relationVersion[strings.TrimSuffix(name, "_ver")] = key.String()
			continue
		}
		cfg.relationPath[name] = key.String()
	}
	return nil
}

// CategoryPrefix returns the effective directory prefix for category,
// env override taking priority over the ini overlay.
func (c *Config) CategoryPrefix(category string) (string, bool) {
	if v := c.env.Get(category); v != "" {
		return v, true
	}
	if v, ok := c.categoryPrefix[category]; ok {
		return v, true
	}
	return "", false
}

// CategoryVersion returns the effective version override for every
// relation in category.
func (c *Config) CategoryVersion(category string) (string, bool) {
	if v := c.env.Get(category + "_VER"); v != "" {
		return v, true
	}
	if v, ok := c.categoryVersion[category]; ok {
		return v, true
	}
	return "", false
}

// RelationPath returns the per-relation path override, if any.
func (c *Config) RelationPath(relation string) (string, bool) {
	if v := c.env.Get(RelationEnvName(relation)); v != "" {
		return v, true
	}
	if v, ok := c.relationPath[relation]; ok {
		return v, true
	}
	return "", false
}

// RelationVersion returns the per-relation version override, if any.
func (c *Config) RelationVersion(relation string) (string, bool) {
	if v := c.env.Get(RelationEnvName(relation) + "_VER"); v != "" {
		return v, true
	}
	if v, ok := c.relationVersion[relation]; ok {
		return v, true
	}
	return "", false
}
