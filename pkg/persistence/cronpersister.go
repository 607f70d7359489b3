package persistence // import "github.com/joincivil/civil-content-registry/pkg/persistence"

import (
	"sync"
)

// CronPersister stores information about the cron jobs in memory
type CronPersister struct {
	mutex         sync.Mutex
	lastBlock     uint64
	eventHashes   []string
	lastTimestamp int64
}

// NewCronPersister creates a cron persister
func NewCronPersister() *CronPersister {
	return &CronPersister{eventHashes: []string{}}
}

// LastProcessedBlockForCron returns the last block number the indexer processed
func (cp *CronPersister) LastProcessedBlockForCron() (uint64, error) {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()
	return cp.lastBlock, nil
}

// UpdateLastProcessedBlockForCron saves the last processed block number
func (cp *CronPersister) UpdateLastProcessedBlockForCron(blockNumber uint64) error {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()
	cp.lastBlock = blockNumber
	return nil
}

// EventHashesOfLastBlockForCron returns the event hashes seen at the last block
func (cp *CronPersister) EventHashesOfLastBlockForCron() ([]string, error) {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()
	hashes := make([]string, len(cp.eventHashes))
	copy(hashes, cp.eventHashes)
	return hashes, nil
}

// UpdateEventHashesForCron saves the event hashes seen at the last block
func (cp *CronPersister) UpdateEventHashesForCron(eventHashes []string) error {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()
	cp.eventHashes = make([]string, len(eventHashes))
	copy(cp.eventHashes, eventHashes)
	return nil
}

// TimestampOfLastRunForCron returns the timestamp of the last ingest run
func (cp *CronPersister) TimestampOfLastRunForCron() (int64, error) {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()
	return cp.lastTimestamp, nil
}

// UpdateTimestampOfLastRunForCron saves the timestamp of the last ingest run
func (cp *CronPersister) UpdateTimestampOfLastRunForCron(timestamp int64) error {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()
	cp.lastTimestamp = timestamp
	return nil
}
