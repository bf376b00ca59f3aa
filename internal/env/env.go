// Package env wraps the process environment behind a small interface
// so it can be swapped out in tests without touching os.Environ.
package env

import (
	"os"
	"strings"
)

// Env represents the environment.
type Env struct {
	env map[string]string
}

// NewFromOS builds and returns an Env using os.Environ.
func NewFromOS() *Env {
	return NewFromKVList(os.Environ())
}

// NewFromKVList builds and returns an Env using a provided list of
// strings in the form "key=value".
func NewFromKVList(kv []string) *Env {
	e := &Env{
		env: make(map[string]string, len(kv)),
	}
	for _, pair := range kv {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		e.env[k] = v
	}
	return e
}

// Has returns whether the given key has a value set.
// Has is case-sensitive.
func (e *Env) Has(key string) bool {
	_, ok := e.env[key]
	return ok
}

// Get returns the value of the given key, or an empty string if the
// key has no value set.
// Get is case-sensitive.
func (e *Env) Get(key string) string {
	return e.env[key]
}

// Bool parses key using the same boolean spellings recognized by the
// teacher's GIT_CONFIG_NOSYSTEM handling ("yes", "1", "true",
// case-insensitively). Any other value, including unset, is false.
func (e *Env) Bool(key string) bool {
	switch strings.ToLower(e.Get(key)) {
	case "yes", "1", "true":
		return true
	default:
		return false
	}
}
