package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssc-oscar/woc-go/config"
	"github.com/ssc-oscar/woc-go/internal/env"
	"github.com/ssc-oscar/woc-go/wocerr"
)

func TestCheckHostSkippedInTestMode(t *testing.T) {
	t.Parallel()

	e := env.NewFromKVList([]string{"OSCAR_TEST=1"})
	err := config.CheckHost(afero.NewMemMapFs(), e, nil)
	assert.NoError(t, err)
}

func TestCheckHostMissingFile(t *testing.T) {
	t.Parallel()

	e := env.NewFromKVList(nil)
	err := config.CheckHost(afero.NewMemMapFs(), e, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, wocerr.ErrUnsupportedPlatform)
}

func TestCheckHostWrongDomain(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/hostname", []byte("da4.example.org\n"), 0o644))

	e := env.NewFromKVList(nil)
	err := config.CheckHost(fs, e, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, wocerr.ErrUnsupportedPlatform)
}

func TestCheckHostKnownHost(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/hostname", []byte("da4.eecs.utk.edu\n"), 0o644))

	e := env.NewFromKVList(nil)
	err := config.CheckHost(fs, e, nil)
	assert.NoError(t, err)
}

func TestCheckHostUnknownHostIsAWarningNotAFailure(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/hostname", []byte("da99.eecs.utk.edu\n"), 0o644))

	e := env.NewFromKVList(nil)
	err := config.CheckHost(fs, e, nil)
	assert.NoError(t, err)
}
