// Package metadata resolves metadata pointers to content metadata stored in
// content-addressed storage
package metadata // import "github.com/joincivil/civil-content-registry/pkg/metadata"

import (
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

const (
	// PointerScheme is the scheme of a metadata pointer
	PointerScheme = "ipfs://"
)

var (
	// ErrNotFound is returned when no gateway has the content
	ErrNotFound = errors.New("metadata: not found")
	// ErrInvalidPointer is returned for a malformed metadata pointer
	ErrInvalidPointer = errors.New("metadata: invalid pointer")
	// ErrCIDMismatch is returned when fetched bytes do not hash to the requested CID
	ErrCIDMismatch = errors.New("metadata: cid mismatch")
)

// IsNotFound returns true if err is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ParsePointer parses a pointer of the form ipfs://<CID>
func ParsePointer(pointer string) (cid.Cid, error) {
	pointer = strings.TrimSpace(pointer)
	if !strings.HasPrefix(pointer, PointerScheme) {
		return cid.Undef, errors.Wrapf(ErrInvalidPointer, "missing scheme in %q", pointer)
	}
	id, err := cid.Decode(strings.TrimPrefix(pointer, PointerScheme))
	if err != nil {
		return cid.Undef, errors.Wrapf(ErrInvalidPointer, "%q: %v", pointer, err)
	}
	return id, nil
}

// FormatPointer returns the pointer for a CID
func FormatPointer(id cid.Cid) string {
	return PointerScheme + id.String()
}

// CIDv1RawSHA256 returns the CIDv1 raw sha2-256 CID of data
func CIDv1RawSHA256(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// verifyRaw checks data against id when id addresses a raw block. Other
// codecs address a DAG, not the bytes a gateway serves, and are not checked.
func verifyRaw(id cid.Cid, data []byte) error {
	if id.Type() != cid.Raw {
		return nil
	}
	got, err := id.Prefix().Sum(data)
	if err != nil {
		return errors.Wrap(err, "error hashing fetched content")
	}
	if !got.Equals(id) {
		return ErrCIDMismatch
	}
	return nil
}
