// Package fingerprint computes the deterministic content fingerprints used as
// registry keys.
package fingerprint // import "github.com/joincivil/civil-content-registry/pkg/fingerprint"

import (
	"crypto/sha256"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const (
	headlineSeparator = "|"
)

// FromBytes returns the SHA-256 fingerprint of data
func FromBytes(data []byte) common.Hash {
	return common.Hash(sha256.Sum256(data))
}

// FromText returns the fingerprint of the UTF-8 bytes of text
func FromText(text string) common.Hash {
	return FromBytes([]byte(text))
}

// FromReader returns the fingerprint of everything read from r
func FromReader(r io.Reader) (common.Hash, error) {
	h := sha256.New()
	_, err := io.Copy(h, r)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "error reading content")
	}
	return common.BytesToHash(h.Sum(nil)), nil
}

// Headline returns the fingerprint of an ingested headline. The same title,
// source and publish time always produce the same fingerprint.
func Headline(title string, sourceID string, publishedAt time.Time) common.Hash {
	parts := []string{
		title,
		sourceID,
		publishedAt.UTC().Format(time.RFC3339),
	}
	return FromText(strings.Join(parts, headlineSeparator))
}

// Parse parses a 0x prefixed 32 byte hex fingerprint
func Parse(hex string) (common.Hash, error) {
	b, err := hexutil.Decode(strings.TrimSpace(hex))
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "invalid fingerprint %q", hex)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errors.Errorf("invalid fingerprint length %v", len(b))
	}
	return common.BytesToHash(b), nil
}
