package woc

import (
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/ber"
)

// decodeBER2 decodes exactly two back-to-back BER integers from v,
// the (offset, length) pair stored as a blob_offset relation value.
func decodeBER2(v []byte) ([]uint64, error) {
	values, _, err := ber.DecodeN(v, 2)
	if err != nil {
		return nil, xerrors.Errorf("decoding BER pair: %w", err)
	}
	return values, nil
}
