package ledger // import "github.com/joincivil/civil-content-registry/pkg/ledger"

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	// DefaultBlockWindow is the number of blocks scanned per FilterLogs call
	DefaultBlockWindow = 5000
)

// Backend is the chain connection the registry binding needs. ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	BlockNumber(ctx context.Context) (uint64, error)
}

// Config configures a Registry
type Config struct {
	// Address is the deployed contract address
	Address common.Address
	// DeployBlock is the first block scanned when replaying events
	DeployBlock uint64
	// BlockWindow bounds each FilterLogs call, DefaultBlockWindow if 0
	BlockWindow uint64
	// Key signs Register, Pause and Unpause. Nil makes the binding read only.
	Key *ecdsa.PrivateKey
	// ChainID is required when Key is set
	ChainID *big.Int
}

// NewRegistry returns a binding to the registry contract at config.Address
func NewRegistry(backend Backend, config *Config) (*Registry, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing registry abi")
	}
	window := config.BlockWindow
	if window == 0 {
		window = DefaultBlockWindow
	}
	r := &Registry{
		backend:     backend,
		abi:         parsed,
		address:     config.Address,
		deployBlock: config.DeployBlock,
		window:      window,
		contract:    bind.NewBoundContract(config.Address, parsed, backend, backend, backend),
	}
	if config.Key != nil {
		if config.ChainID == nil {
			return nil, errors.New("chain id is required to sign transactions")
		}
		r.transactOpts, err = bind.NewKeyedTransactorWithChainID(config.Key, config.ChainID)
		if err != nil {
			return nil, errors.Wrap(err, "error creating transactor")
		}
	}
	return r, nil
}

// Registry is a client for a deployed registry contract. Reads are eth_calls,
// writes are signed transactions that are sent but not awaited.
type Registry struct {
	backend      Backend
	abi          abi.ABI
	address      common.Address
	deployBlock  uint64
	window       uint64
	contract     *bind.BoundContract
	transactOpts *bind.TransactOpts
}

// Address returns the contract address
func (r *Registry) Address() common.Address {
	return r.address
}

// Verify checks a fingerprint with an eth_call from caller. Calls are not
// mined, so the publisher is only credited when a verify transaction is sent.
func (r *Registry) Verify(ctx context.Context, caller common.Address,
	fingerprint common.Hash) (*model.VerificationResult, error) {
	if fingerprint == (common.Hash{}) {
		return nil, model.ErrEmptyFingerprint
	}
	var out []interface{}
	err := r.contract.Call(r.callOpts(ctx, caller), &out, methodVerify, [32]byte(fingerprint))
	if err != nil {
		return nil, mapError(err)
	}
	exists := *abi.ConvertType(out[0], new(bool)).(*bool)
	if !exists {
		return model.NewVerificationResult(fingerprint, nil), nil
	}
	publisher := *abi.ConvertType(out[1], new(common.Address)).(*common.Address)
	timestamp := abi.ConvertType(out[2], new(big.Int)).(*big.Int)
	category := *abi.ConvertType(out[3], new(string)).(*string)
	pointer := *abi.ConvertType(out[4], new(string)).(*string)
	record := model.NewContentRecord(fingerprint, publisher, model.Category(category), pointer,
		timestamp.Int64())
	return model.NewVerificationResult(fingerprint, record), nil
}

// PublisherContent returns the fingerprints registered by publisher
func (r *Registry) PublisherContent(ctx context.Context, publisher common.Address) ([]common.Hash, error) {
	var out []interface{}
	err := r.contract.Call(r.callOpts(ctx, common.Address{}), &out, methodPublisherContent, publisher)
	if err != nil {
		return nil, mapError(err)
	}
	raw := *abi.ConvertType(out[0], new([][32]byte)).(*[][32]byte)
	hashes := make([]common.Hash, len(raw))
	for i, h := range raw {
		hashes[i] = common.Hash(h)
	}
	return hashes, nil
}

// PublisherReputation returns the reputation counters of publisher
func (r *Registry) PublisherReputation(ctx context.Context,
	publisher common.Address) (*model.PublisherReputation, error) {
	var out []interface{}
	err := r.contract.Call(r.callOpts(ctx, common.Address{}), &out, methodPublisherReputation, publisher)
	if err != nil {
		return nil, mapError(err)
	}
	total := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	verifications := abi.ConvertType(out[1], new(big.Int)).(*big.Int)
	score := abi.ConvertType(out[2], new(big.Int)).(*big.Int)
	return model.NewPublisherReputation(publisher, total.Uint64(), verifications.Uint64(),
		score.Uint64()), nil
}

// TotalRegistrations returns the global registration counter
func (r *Registry) TotalRegistrations(ctx context.Context) (uint64, error) {
	var out []interface{}
	err := r.contract.Call(r.callOpts(ctx, common.Address{}), &out, methodTotalRegistrations)
	if err != nil {
		return 0, mapError(err)
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int).Uint64(), nil
}

// Paused returns the contract pause flag
func (r *Registry) Paused(ctx context.Context) (bool, error) {
	var out []interface{}
	err := r.contract.Call(r.callOpts(ctx, common.Address{}), &out, methodPaused)
	if err != nil {
		return false, mapError(err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Register sends a register transaction. Reverts detected during gas
// estimation are returned as registry errors.
func (r *Registry) Register(ctx context.Context, fingerprint common.Hash, category model.Category,
	metadataPointer string) error {
	switch {
	case fingerprint == (common.Hash{}):
		return model.ErrEmptyFingerprint
	case !category.Valid():
		return model.ErrInvalidCategory
	case metadataPointer == "":
		return model.ErrEmptyMetadata
	}
	return r.transact(ctx, methodRegister, [32]byte(fingerprint), string(category), metadataPointer)
}

// Pause sends a pause transaction signed by the configured key
func (r *Registry) Pause(ctx context.Context) error {
	return r.transact(ctx, methodPause)
}

// Unpause sends an unpause transaction signed by the configured key
func (r *Registry) Unpause(ctx context.Context) error {
	return r.transact(ctx, methodUnpause)
}

func (r *Registry) transact(ctx context.Context, method string, params ...interface{}) error {
	if r.transactOpts == nil {
		return errors.Wrap(model.ErrUnauthorized, "no signing key configured")
	}
	opts := *r.transactOpts
	opts.Context = ctx
	tx, err := r.contract.Transact(&opts, method, params...)
	if err != nil {
		return mapError(err)
	}
	log.Infof("Sent %v tx %v", method, tx.Hash().Hex())
	return nil
}

func (r *Registry) callOpts(ctx context.Context, from common.Address) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: from}
}
