package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ssc-oscar/woc-go/internal/env"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// clusterDomain is the domain suffix every production WoC node runs
// under. A host outside it aborts initialization unless OSCAR_TEST is
// set.
const clusterDomain = "eecs.utk.edu"

// knownHosts lists the hosts that don't trigger an "unusual host"
// warning; any other host on the right domain is accepted but logged.
var knownHosts = map[string]bool{
	"da4": true,
	"da5": true,
}

// CheckHost reads /etc/hostname through fs, splits it into host and
// domain, and applies spec.md §6's gating rules. OSCAR_TEST disables
// the check entirely. A nil logger is replaced with a no-op one.
func CheckHost(fs afero.Fs, e *env.Env, log *zap.SugaredLogger) error {
	if e.Bool("OSCAR_TEST") {
		return nil
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	raw, err := afero.ReadFile(fs, "/etc/hostname")
	if err != nil {
		return errors.Wrap(wocerr.ErrUnsupportedPlatform, "could not read /etc/hostname")
	}
	full := strings.TrimSpace(string(raw))
	host, domain, _ := strings.Cut(full, ".")

	if domain != clusterDomain {
		return errors.Wrapf(wocerr.ErrUnsupportedPlatform, "host %q is not on the expected cluster domain", full)
	}
	if !knownHosts[host] {
		log.Warnf("running on unrecognized host %q", host)
	}
	return nil
}
