// Package gitobject decodes the two Git object shapes the storage
// layer hands back as raw bytes: commit headers and tree entries
// (spec.md §4.7), plus the canonical-SHA recomputation every entity's
// construction invariant relies on.
package gitobject

import (
	"strings"

	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/oid"
	"github.com/ssc-oscar/woc-go/wocerr"
)

// DefaultEncoding is used when a commit carries no explicit "encoding"
// header.
const DefaultEncoding = "utf8"

const pgpSignatureEnd = "-----END PGP SIGNATURE-----"

// Commit is the parsed form of a commit object's raw bytes.
type Commit struct {
	Tree       oid.Sha
	Parents    []oid.Sha
	Author     []byte
	AuthorDate []byte
	AuthorTZ   []byte
	Committer  []byte
	CommitDate []byte
	CommitTZ   []byte
	Encoding   string
	Signature  []byte
	Message    string
	FullBody   string
}

// ParseCommit implements spec.md §4.7's commit header state machine.
func ParseCommit(data []byte) (*Commit, error) {
	raw := string(data)
	headerPart, fullMessage, found := strings.Cut(raw, "\n\n")
	if !found {
		headerPart, fullMessage = raw, ""
	}

	c := &Commit{
		Encoding: DefaultEncoding,
		FullBody: fullMessage,
	}
	if idx := strings.IndexByte(fullMessage, '\n'); idx >= 0 {
		c.Message = fullMessage[:idx]
	} else {
		c.Message = fullMessage
	}

	inSignature := false
	var sigLines []string

	for _, line := range strings.Split(headerPart, "\n") {
		if inSignature {
			sigLines = append(sigLines, line)
			if strings.TrimPrefix(line, " ") == pgpSignatureEnd {
				inSignature = false
				c.Signature = []byte(strings.Join(sigLines, "\n"))
			}
			continue
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, " ") {
			continue // mergetag continuation outside a signature block
		}
		if rest, ok := cutPrefix(line, "gpgsig "); ok {
			sigLines = []string{rest}
			inSignature = true
			if rest == pgpSignatureEnd {
				inSignature = false
				c.Signature = []byte(rest)
			}
			continue
		}

		key, value, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		if err := c.setField(key, value); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func (c *Commit) setField(key, value string) error {
	switch key {
	case "tree":
		sha, err := oid.FromHex(value)
		if err != nil {
			return xerrors.Errorf("invalid tree sha %q: %w", value, err)
		}
		c.Tree = sha
	case "parent":
		sha, err := oid.FromHex(value)
		if err != nil {
			return xerrors.Errorf("invalid parent sha %q: %w", value, err)
		}
		c.Parents = append(c.Parents, sha)
	case "author":
		name, ts, tz, err := splitIdentityLine(value)
		if err != nil {
			return xerrors.Errorf("invalid author line %q: %w", value, err)
		}
		c.Author, c.AuthorDate, c.AuthorTZ = name, ts, tz
	case "committer":
		name, ts, tz, err := splitIdentityLine(value)
		if err != nil {
			return xerrors.Errorf("invalid committer line %q: %w", value, err)
		}
		c.Committer, c.CommitDate, c.CommitTZ = name, ts, tz
	case "encoding":
		c.Encoding = value
	default:
		// unexpected/duplicate keys are ignored, per spec.md §4.7
	}
	return nil
}

// splitIdentityLine right-splits "name <email> timestamp tz" into its
// three parts, per spec.md §4.7.
func splitIdentityLine(value string) (name, timestamp, tz []byte, err error) {
	tzIdx := strings.LastIndexByte(value, ' ')
	if tzIdx < 0 {
		return nil, nil, nil, xerrors.Errorf("%w: missing timezone", wocerr.ErrCorruptFrame)
	}
	rest, tzStr := value[:tzIdx], value[tzIdx+1:]

	tsIdx := strings.LastIndexByte(rest, ' ')
	if tsIdx < 0 {
		return nil, nil, nil, xerrors.Errorf("%w: missing timestamp", wocerr.ErrCorruptFrame)
	}
	nameStr, tsStr := rest[:tsIdx], rest[tsIdx+1:]

	return []byte(nameStr), []byte(tsStr), []byte(tzStr), nil
}
