package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrPersisterNoResults is an error that indicates no results were found
	ErrPersisterNoResults = errors.New("no results found")
)

// RegistryEventCriteria contains the criteria for retrieving registry events
type RegistryEventCriteria struct {
	// FromSequence returns events with a sequence greater than this value
	FromSequence uint64 `db:"from_sequence"`
	// Count limits the number of events returned, 0 for no limit
	Count int `db:"count"`
	// EventType filters by event type if not empty
	EventType RegistryEventType `db:"event_type"`
}

// RegistryPersister is the interface to store the registry state. Every
// mutating method must be atomic: either all of its effects are applied or
// none are.
type RegistryPersister interface {
	// CreateContentRecord stores a new record, appends it to the publisher
	// index, credits the publisher with a registration, increments the global
	// counter and appends the ContentRegistered event. Returns
	// ErrDuplicateFingerprint if the fingerprint already exists. A record
	// without block data is refused with ErrSystemPaused while paused, checked
	// atomically with the insert. Ledger events are applied regardless since
	// the chain enforces its own pause.
	CreateContentRecord(record *ContentRecord, blockData BlockData) error
	// ContentRecord returns the record for a fingerprint or ErrPersisterNoResults
	ContentRecord(fingerprint common.Hash) (*ContentRecord, error)
	// RecordVerification appends a ContentVerified event and, if the fingerprint
	// exists, credits its publisher with a verification. Returns the record or
	// nil if the fingerprint does not exist.
	RecordVerification(fingerprint common.Hash, caller common.Address, timestamp int64,
		blockData BlockData) (*ContentRecord, error)
	// PublisherContent returns the fingerprints registered by a publisher in
	// registration order
	PublisherContent(publisher common.Address) ([]common.Hash, error)
	// PublisherReputation returns the reputation of a publisher, zero valued if
	// never referenced
	PublisherReputation(publisher common.Address) (*PublisherReputation, error)
	// TotalRegistrations returns the global registration counter
	TotalRegistrations() (uint64, error)
	// RecentContentRecords returns up to count records, newest first
	RecentContentRecords(count int) ([]*ContentRecord, error)
	// RegistryEvents returns events in log order matching the criteria
	RegistryEvents(criteria *RegistryEventCriteria) ([]*RegistryEvent, error)
	// LatestTimestamp returns the timestamp of the newest record, 0 if none
	LatestTimestamp() (int64, error)
	// Paused returns the administrative pause flag
	Paused() (bool, error)
	// SetPaused sets the administrative pause flag
	SetPaused(paused bool) error
}

// CronPersister persists information needed for the cron to run
type CronPersister interface {
	// LastProcessedBlockForCron returns the last block number the cron processed
	LastProcessedBlockForCron() (uint64, error)
	// UpdateLastProcessedBlockForCron updates the last processed block number
	UpdateLastProcessedBlockForCron(blockNumber uint64) error
	// EventHashesOfLastBlockForCron returns the hashes of events already
	// processed at the last block
	EventHashesOfLastBlockForCron() ([]string, error)
	// UpdateEventHashesForCron updates the event hashes seen at the last block
	UpdateEventHashesForCron(eventHashes []string) error
	// TimestampOfLastRunForCron returns the timestamp of the last ingest run
	TimestampOfLastRunForCron() (int64, error)
	// UpdateTimestampOfLastRunForCron updates the timestamp of the last ingest run
	UpdateTimestampOfLastRunForCron(timestamp int64) error
}
