package verification // import "github.com/joincivil/civil-content-registry/pkg/verification"

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

// LocalVerifier is a registry running in this process
type LocalVerifier interface {
	Verify(caller common.Address, fingerprint common.Hash) (*model.VerificationResult, error)
}

// NewLocalChecker returns an ExactChecker over a local registry
func NewLocalChecker(verifier LocalVerifier) *LocalChecker {
	return &LocalChecker{verifier: verifier}
}

// LocalChecker adapts a local registry to an ExactChecker
type LocalChecker struct {
	verifier LocalVerifier
}

// Verify runs the registry Verify command
func (l *LocalChecker) Verify(ctx context.Context, caller common.Address,
	fingerprint common.Hash) (*model.VerificationResult, error) {
	return l.verifier.Verify(caller, fingerprint)
}
