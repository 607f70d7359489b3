package ledger // import "github.com/joincivil/civil-content-registry/pkg/ledger"

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

// revertReasons maps contract revert reasons onto registry errors
var revertReasons = []struct {
	reason string
	err    error
}{
	{"already registered", model.ErrDuplicateFingerprint},
	{"empty content hash", model.ErrEmptyFingerprint},
	{"invalid content type", model.ErrInvalidCategory},
	{"empty ipfs hash", model.ErrEmptyMetadata},
	{"paused", model.ErrSystemPaused},
	{"not the owner", model.ErrUnauthorized},
	{"ownableunauthorizedaccount", model.ErrUnauthorized},
}

// mapError converts a contract call error into a registry error. Reverts with
// a known reason map to the matching sentinel, anything else is a dependency
// failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	reason := strings.ToLower(revertReason(err))
	for _, rr := range revertReasons {
		if strings.Contains(reason, rr.reason) {
			return rr.err
		}
	}
	return errors.Wrap(model.ErrDependencyUnavailable, err.Error())
}

// revertReason returns the decoded revert reason carried by err, or the
// error text when there is none
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			data, decodeErr := hexutil.Decode(hexData)
			if decodeErr == nil {
				reason, unpackErr := abi.UnpackRevert(data)
				if unpackErr == nil {
					return reason
				}
			}
		}
	}
	return err.Error()
}
