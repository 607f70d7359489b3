package registry

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	defaultChainTimeout = 15 * time.Second
)

// Chain is the ledger side of a Mirror
type Chain interface {
	Verify(ctx context.Context, caller common.Address, fingerprint common.Hash) (*model.VerificationResult, error)
	Paused(ctx context.Context) (bool, error)
}

// NewMirror returns a read-only registry over a local index kept current by
// the ledger indexer. A timeout of 0 uses the default.
func NewMirror(index *Registry, chain Chain, timeout time.Duration) *Mirror {
	if timeout <= 0 {
		timeout = defaultChainTimeout
	}
	return &Mirror{Registry: index, chain: chain, timeout: timeout}
}

// Mirror serves reads from the local index and refuses writes, which must be
// sent to the ledger by the publisher's own wallet. Verify and Paused ask the
// chain so they agree with orchestrated verification.
type Mirror struct {
	*Registry
	chain   Chain
	timeout time.Duration
}

// Register is refused with ErrReadOnly
func (m *Mirror) Register(caller common.Address, fingerprint common.Hash, category model.Category,
	metadataPointer string) (*model.ContentRecord, error) {
	m.metrics.IncRegistration(string(model.ErrorKindReadOnly))
	return nil, model.ErrReadOnly
}

// Pause is refused with ErrReadOnly
func (m *Mirror) Pause(caller common.Address) error {
	return model.ErrReadOnly
}

// Unpause is refused with ErrReadOnly
func (m *Mirror) Unpause(caller common.Address) error {
	return model.ErrReadOnly
}

// Verify checks the fingerprint on the ledger. The ledger call does not
// credit the publisher.
func (m *Mirror) Verify(caller common.Address, fingerprint common.Hash) (*model.VerificationResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	result, err := m.chain.Verify(ctx, caller, fingerprint)
	if err != nil {
		m.metrics.IncVerification("error")
		return nil, err
	}
	if result.Exists() {
		m.metrics.IncVerification("hit")
	} else {
		m.metrics.IncVerification("miss")
	}
	return result, nil
}

// Paused returns the ledger pause flag
func (m *Mirror) Paused() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	paused, err := m.chain.Paused(ctx)
	if err != nil {
		return false, errors.WithMessage(err, "error reading ledger pause flag")
	}
	return paused, nil
}
