package woc

import "strings"

// urlPrefixes maps a project key's recognized host prefix to the
// platform hostname used when synthesizing its URL (spec.md §4.11).
var urlPrefixes = map[string]string{
	"sourceforge.net": "sourceforge.net",
	"gitlab.com":      "gitlab.com",
	"bitbucket.org":   "bitbucket.org",
}

// projectURL implements spec.md §4.11: split the project key on its first
// underscore into prefix/body, and pick a hosting platform based on
// whether the prefix is a recognized non-GitHub host.
func projectURL(key string) string {
	prefix, body, found := strings.Cut(key, "_")
	if !found {
		return "https://github.com/" + key
	}

	if prefix == "sourceforge.net" {
		return "https://" + urlPrefixes[prefix] + "/" + body
	}

	if platform, ok := urlPrefixes[prefix]; ok && strings.Contains(body, "_") {
		return "https://" + platform + "/" + strings.Replace(body, "_", "/", 1)
	}

	return "https://github.com/" + strings.Replace(key, "_", "/", 1)
}
