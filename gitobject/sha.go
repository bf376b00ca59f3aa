package gitobject

import (
	"fmt"

	"github.com/ssc-oscar/woc-go/oid"
)

// CanonicalSHA recomputes the SHA-1 Git itself would assign to an
// object of the given type ("commit", "tree", "blob", "tag")
// containing body, by reconstructing the "<type> <len>\0<body>"
// framing Git hashes over.
func CanonicalSHA(objType string, body []byte) oid.Sha {
	header := fmt.Sprintf("%s %d\x00", objType, len(body))
	content := make([]byte, 0, len(header)+len(body))
	content = append(content, header...)
	content = append(content, body...)
	return oid.Sum(content)
}
