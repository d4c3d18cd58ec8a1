// Package cidutil derives and validates the content ids used throughout
// gradevault. A content id is a CIDv1 with the "raw" multicodec and a
// sha2-256 multihash over the exact stored bytes, so identical envelope
// bytes always address the same blob.
package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrUndefined is returned by Parse for strings that decode to the zero CID.
var ErrUndefined = errors.New("cidutil: undefined cid")

// ContentID returns the CIDv1 (raw + sha2-256) derived from data.
func ContentID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ContentIDString returns the string form of ContentID.
func ContentIDString(data []byte) string {
	id, err := ContentID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return id.String()
}

// Parse decodes a content id string. It rejects the empty string and
// undefined CIDs so ledger records never carry an unresolvable address.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrUndefined
	}
	return id, nil
}

// Matches reports whether data hashes to the given content id.
func Matches(id cid.Cid, data []byte) bool {
	got, err := ContentID(data)
	if err != nil {
		return false
	}
	return got == id
}
