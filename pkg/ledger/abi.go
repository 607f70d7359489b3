// Package ledger binds a deployed content registry contract
package ledger // import "github.com/joincivil/civil-content-registry/pkg/ledger"

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContentRegistryABI is the ABI of the content registry contract
const ContentRegistryABI = `[
  {"type":"function","name":"register","stateMutability":"nonpayable",
   "inputs":[{"name":"contentHash","type":"bytes32"},{"name":"contentType","type":"string"},{"name":"ipfsHash","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"verify","stateMutability":"nonpayable",
   "inputs":[{"name":"contentHash","type":"bytes32"}],
   "outputs":[{"name":"exists","type":"bool"},{"name":"publisher","type":"address"},{"name":"timestamp","type":"uint256"},{"name":"contentType","type":"string"},{"name":"ipfsHash","type":"string"}]},
  {"type":"function","name":"getPublisherContent","stateMutability":"view",
   "inputs":[{"name":"publisher","type":"address"}],
   "outputs":[{"name":"","type":"bytes32[]"}]},
  {"type":"function","name":"getPublisherReputation","stateMutability":"view",
   "inputs":[{"name":"publisher","type":"address"}],
   "outputs":[{"name":"totalRegistrations","type":"uint256"},{"name":"verificationCount","type":"uint256"},{"name":"reputationScore","type":"uint256"}]},
  {"type":"function","name":"getTotalRegistrations","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"paused","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"pause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"unpause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"ContentRegistered","anonymous":false,
   "inputs":[{"name":"contentHash","type":"bytes32","indexed":true},{"name":"publisher","type":"address","indexed":true},{"name":"timestamp","type":"uint256","indexed":false},{"name":"contentType","type":"string","indexed":false},{"name":"ipfsHash","type":"string","indexed":false}]},
  {"type":"event","name":"ContentVerified","anonymous":false,
   "inputs":[{"name":"contentHash","type":"bytes32","indexed":true},{"name":"exists","type":"bool","indexed":false},{"name":"verifier","type":"address","indexed":true}]}
]`

const (
	methodRegister            = "register"
	methodVerify              = "verify"
	methodPublisherContent    = "getPublisherContent"
	methodPublisherReputation = "getPublisherReputation"
	methodTotalRegistrations  = "getTotalRegistrations"
	methodPaused              = "paused"
	methodPause               = "pause"
	methodUnpause             = "unpause"

	eventContentRegistered = "ContentRegistered"
	eventContentVerified   = "ContentVerified"
)

// ParsedABI returns the parsed content registry ABI
func ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(ContentRegistryABI))
}
