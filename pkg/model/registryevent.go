package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RegistryEventType is the type of a registry event
type RegistryEventType string

const (
	// EventContentRegistered is emitted for every successful registration
	EventContentRegistered RegistryEventType = "ContentRegistered"
	// EventContentVerified is emitted for every verify call
	EventContentVerified RegistryEventType = "ContentVerified"
)

// BlockData contains the ledger position of an event that came from a chain.
// It is empty for events produced by the local registry.
type BlockData struct {
	blockNumber uint64
	txHash      common.Hash
	logIndex    uint
}

// NewBlockData is a convenience function to init a BlockData
func NewBlockData(blockNumber uint64, txHash common.Hash, logIndex uint) BlockData {
	return BlockData{blockNumber: blockNumber, txHash: txHash, logIndex: logIndex}
}

// BlockNumber returns the block number of the event
func (b BlockData) BlockNumber() uint64 {
	return b.blockNumber
}

// TxHash returns the hash of the transaction that emitted the event
func (b BlockData) TxHash() common.Hash {
	return b.txHash
}

// LogIndex returns the index of the log within the block
func (b BlockData) LogIndex() uint {
	return b.logIndex
}

// NewContentRegisteredEvent returns the ContentRegistered event for a record
func NewContentRegisteredEvent(record *ContentRecord, blockData BlockData) *RegistryEvent {
	return &RegistryEvent{
		eventType:       EventContentRegistered,
		fingerprint:     record.Fingerprint(),
		account:         record.Publisher(),
		existed:         true,
		timestamp:       record.Timestamp(),
		category:        record.Category(),
		metadataPointer: record.MetadataPointer(),
		blockData:       blockData,
	}
}

// NewContentVerifiedEvent returns a ContentVerified event
func NewContentVerifiedEvent(fingerprint common.Hash, existed bool, caller common.Address,
	timestamp int64, blockData BlockData) *RegistryEvent {
	return &RegistryEvent{
		eventType:   EventContentVerified,
		fingerprint: fingerprint,
		account:     caller,
		existed:     existed,
		timestamp:   timestamp,
		blockData:   blockData,
	}
}

// RegistryEvent is a single entry in the registry event log. The account is
// the publisher for ContentRegistered and the caller for ContentVerified.
type RegistryEvent struct {
	sequence uint64

	eventType RegistryEventType

	fingerprint common.Hash

	account common.Address

	existed bool

	timestamp int64

	category Category

	metadataPointer string

	blockData BlockData
}

// Sequence returns the position of the event in the log, assigned by the persister
func (r *RegistryEvent) Sequence() uint64 {
	return r.sequence
}

// SetSequence sets the log position
func (r *RegistryEvent) SetSequence(sequence uint64) {
	r.sequence = sequence
}

// EventType returns the event type
func (r *RegistryEvent) EventType() RegistryEventType {
	return r.eventType
}

// Fingerprint returns the fingerprint the event refers to
func (r *RegistryEvent) Fingerprint() common.Hash {
	return r.fingerprint
}

// Publisher returns the publisher for ContentRegistered events
func (r *RegistryEvent) Publisher() common.Address {
	if r.eventType != EventContentRegistered {
		return common.Address{}
	}
	return r.account
}

// Caller returns the caller for ContentVerified events
func (r *RegistryEvent) Caller() common.Address {
	if r.eventType != EventContentVerified {
		return common.Address{}
	}
	return r.account
}

// Account returns the raw account attached to the event
func (r *RegistryEvent) Account() common.Address {
	return r.account
}

// Existed returns whether the content existed when the event was emitted
func (r *RegistryEvent) Existed() bool {
	return r.existed
}

// Timestamp returns the event timestamp in seconds since epoch
func (r *RegistryEvent) Timestamp() int64 {
	return r.timestamp
}

// Category returns the category for ContentRegistered events
func (r *RegistryEvent) Category() Category {
	return r.category
}

// MetadataPointer returns the metadata pointer for ContentRegistered events
func (r *RegistryEvent) MetadataPointer() string {
	return r.metadataPointer
}

// BlockData returns the ledger position of the event
func (r *RegistryEvent) BlockData() BlockData {
	return r.blockData
}

// ContentRecord returns the record a ContentRegistered event describes
func (r *RegistryEvent) ContentRecord() *ContentRecord {
	if r.eventType != EventContentRegistered {
		return nil
	}
	return NewContentRecord(r.fingerprint, r.account, r.category, r.metadataPointer, r.timestamp)
}

// Hash returns a string that identifies the event. Chain events are identified
// by their tx hash and log index, local events by their sequence.
func (r *RegistryEvent) Hash() string {
	if r.blockData.txHash != (common.Hash{}) {
		return fmt.Sprintf("%s-%d", r.blockData.txHash.Hex(), r.blockData.logIndex)
	}
	return fmt.Sprintf("local-%d", r.sequence)
}

// NewRegistryEventFromStorage rebuilds a RegistryEvent from persisted fields
func NewRegistryEventFromStorage(sequence uint64, eventType RegistryEventType, fingerprint common.Hash,
	account common.Address, existed bool, timestamp int64, category Category, metadataPointer string,
	blockData BlockData) *RegistryEvent {
	return &RegistryEvent{
		sequence:        sequence,
		eventType:       eventType,
		fingerprint:     fingerprint,
		account:         account,
		existed:         existed,
		timestamp:       timestamp,
		category:        category,
		metadataPointer: metadataPointer,
		blockData:       blockData,
	}
}
