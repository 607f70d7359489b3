package ingest // import "github.com/joincivil/civil-content-registry/pkg/ingest"

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

// Registrar registers content. ledger.Registry implements it directly, a local
// registry through LocalRegistrar.
type Registrar interface {
	Register(ctx context.Context, fingerprint common.Hash, category model.Category,
		metadataPointer string) error
}

// LocalRegistry is the part of registry.Registry used for registration
type LocalRegistry interface {
	Register(caller common.Address, fingerprint common.Hash, category model.Category,
		metadataPointer string) (*model.ContentRecord, error)
}

// NewLocalRegistrar returns a Registrar that registers as publisher
func NewLocalRegistrar(registry LocalRegistry, publisher common.Address) *LocalRegistrar {
	return &LocalRegistrar{registry: registry, publisher: publisher}
}

// LocalRegistrar adapts a local registry to Registrar
type LocalRegistrar struct {
	registry  LocalRegistry
	publisher common.Address
}

// Register registers the content with the configured publisher
func (l *LocalRegistrar) Register(ctx context.Context, fingerprint common.Hash, category model.Category,
	metadataPointer string) error {
	_, err := l.registry.Register(l.publisher, fingerprint, category, metadataPointer)
	return err
}
