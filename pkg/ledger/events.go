package ledger // import "github.com/joincivil/civil-content-registry/pkg/ledger"

import (
	"context"
	"math/big"

	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

type contentRegistered struct {
	ContentHash [32]byte
	Publisher   common.Address
	Timestamp   *big.Int
	ContentType string
	IpfsHash    string
}

type contentVerified struct {
	ContentHash [32]byte
	Exists      bool
	Verifier    common.Address
}

// LatestBlock returns the current head block number
func (r *Registry) LatestBlock(ctx context.Context) (uint64, error) {
	head, err := r.backend.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrap(model.ErrDependencyUnavailable, err.Error())
	}
	return head, nil
}

// Events returns the registry events emitted between fromBlock and toBlock
// inclusive, in log order. Ranges wider than the block window are split.
func (r *Registry) Events(ctx context.Context, fromBlock uint64, toBlock uint64) ([]*model.RegistryEvent, error) {
	if fromBlock < r.deployBlock {
		fromBlock = r.deployBlock
	}
	events := []*model.RegistryEvent{}
	timestamps := map[uint64]int64{}
	for start := fromBlock; start <= toBlock; start += r.window {
		end := start + r.window - 1
		if end > toBlock {
			end = toBlock
		}
		logs, err := r.filterLogs(ctx, start, end, r.abi.Events[eventContentRegistered].ID,
			r.abi.Events[eventContentVerified].ID)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			event, err := r.decodeLog(ctx, l, timestamps)
			if err != nil {
				return nil, err
			}
			if event != nil {
				events = append(events, event)
			}
		}
	}
	return events, nil
}

// RecentRegistrations returns up to count registered records, newest first,
// scanning backwards from the head one block window at a time
func (r *Registry) RecentRegistrations(ctx context.Context, count int) ([]*model.ContentRecord, error) {
	records := []*model.ContentRecord{}
	if count <= 0 {
		return records, nil
	}
	head, err := r.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	end := head
	for end >= r.deployBlock {
		start := r.deployBlock
		if end-r.deployBlock >= r.window {
			start = end - r.window + 1
		}
		logs, err := r.filterLogs(ctx, start, end, r.abi.Events[eventContentRegistered].ID)
		if err != nil {
			return nil, err
		}
		for i := len(logs) - 1; i >= 0; i-- {
			event, err := r.decodeLog(ctx, logs[i], nil)
			if err != nil {
				return nil, err
			}
			if event == nil {
				continue
			}
			records = append(records, event.ContentRecord())
			if len(records) == count {
				return records, nil
			}
		}
		if start == r.deployBlock {
			break
		}
		end = start - 1
	}
	return records, nil
}

func (r *Registry) filterLogs(ctx context.Context, start uint64, end uint64,
	topics ...common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(start),
		ToBlock:   new(big.Int).SetUint64(end),
		Addresses: []common.Address{r.address},
		Topics:    [][]common.Hash{topics},
	}
	logs, err := r.backend.FilterLogs(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(model.ErrDependencyUnavailable, "filter logs %v-%v: %v", start, end, err)
	}
	return logs, nil
}

// decodeLog converts a contract log into a registry event. Removed logs and
// unknown topics return nil. Verified events carry no timestamp so the block
// time is used, cached in timestamps when it is not nil.
func (r *Registry) decodeLog(ctx context.Context, l types.Log,
	timestamps map[uint64]int64) (*model.RegistryEvent, error) {
	if l.Removed || len(l.Topics) == 0 {
		return nil, nil
	}
	blockData := model.NewBlockData(l.BlockNumber, l.TxHash, l.Index)
	switch l.Topics[0] {
	case r.abi.Events[eventContentRegistered].ID:
		ev := &contentRegistered{}
		if err := r.contract.UnpackLog(ev, eventContentRegistered, l); err != nil {
			return nil, errors.Wrap(err, "error unpacking ContentRegistered")
		}
		record := model.NewContentRecord(common.Hash(ev.ContentHash), ev.Publisher,
			model.Category(ev.ContentType), ev.IpfsHash, ev.Timestamp.Int64())
		return model.NewContentRegisteredEvent(record, blockData), nil

	case r.abi.Events[eventContentVerified].ID:
		ev := &contentVerified{}
		if err := r.contract.UnpackLog(ev, eventContentVerified, l); err != nil {
			return nil, errors.Wrap(err, "error unpacking ContentVerified")
		}
		timestamp, err := r.blockTime(ctx, l.BlockNumber, timestamps)
		if err != nil {
			return nil, err
		}
		return model.NewContentVerifiedEvent(common.Hash(ev.ContentHash), ev.Exists, ev.Verifier,
			timestamp, blockData), nil
	}
	log.Warningf("Skipping unknown registry log topic %v", l.Topics[0].Hex())
	return nil, nil
}

func (r *Registry) blockTime(ctx context.Context, number uint64, cache map[uint64]int64) (int64, error) {
	if ts, ok := cache[number]; ok {
		return ts, nil
	}
	header, err := r.backend.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, errors.Wrapf(model.ErrDependencyUnavailable, "header %v: %v", number, err)
	}
	ts := int64(header.Time)
	if cache != nil {
		cache[number] = ts
	}
	return ts, nil
}
