package persistence // import "github.com/joincivil/civil-content-registry/pkg/persistence"

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

// NewMemoryPersister returns an empty in-memory registry persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{
		records:      map[common.Hash]*model.ContentRecord{},
		order:        []common.Hash{},
		publisherIdx: map[common.Address][]common.Hash{},
		reputations:  map[common.Address]*model.PublisherReputation{},
		events:       []*model.RegistryEvent{},
	}
}

// MemoryPersister keeps the registry state in process memory. All methods are
// safe for concurrent use and every mutation is applied under one lock.
type MemoryPersister struct {
	mutex        sync.RWMutex
	records      map[common.Hash]*model.ContentRecord
	order        []common.Hash
	publisherIdx map[common.Address][]common.Hash
	reputations  map[common.Address]*model.PublisherReputation
	events       []*model.RegistryEvent
	paused       bool
}

// CreateContentRecord stores a new record and applies its effects
func (m *MemoryPersister) CreateContentRecord(record *model.ContentRecord,
	blockData model.BlockData) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.paused && blockData == (model.BlockData{}) {
		return model.ErrSystemPaused
	}
	fp := record.Fingerprint()
	if _, ok := m.records[fp]; ok {
		return model.ErrDuplicateFingerprint
	}
	m.records[fp] = record
	m.order = append(m.order, fp)
	m.publisherIdx[record.Publisher()] = append(m.publisherIdx[record.Publisher()], fp)
	m.reputation(record.Publisher()).CreditRegistration()
	m.appendEvent(model.NewContentRegisteredEvent(record, blockData))
	return nil
}

// ContentRecord returns the record for a fingerprint
func (m *MemoryPersister) ContentRecord(fingerprint common.Hash) (*model.ContentRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	record, ok := m.records[fingerprint]
	if !ok {
		return nil, model.ErrPersisterNoResults
	}
	return record, nil
}

// RecordVerification appends a verified event and credits the owner on a hit
func (m *MemoryPersister) RecordVerification(fingerprint common.Hash, caller common.Address,
	timestamp int64, blockData model.BlockData) (*model.ContentRecord, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	record, ok := m.records[fingerprint]
	if ok {
		m.reputation(record.Publisher()).CreditVerification()
	}
	m.appendEvent(model.NewContentVerifiedEvent(fingerprint, ok, caller, timestamp, blockData))
	return record, nil
}

// PublisherContent returns the fingerprints registered by publisher in order
func (m *MemoryPersister) PublisherContent(publisher common.Address) ([]common.Hash, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	fps := m.publisherIdx[publisher]
	result := make([]common.Hash, len(fps))
	copy(result, fps)
	return result, nil
}

// PublisherReputation returns a copy of the reputation of publisher
func (m *MemoryPersister) PublisherReputation(publisher common.Address) (*model.PublisherReputation, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	rep, ok := m.reputations[publisher]
	if !ok {
		return model.NewPublisherReputation(publisher, 0, 0, 0), nil
	}
	return model.NewPublisherReputation(publisher, rep.TotalRegistrations(),
		rep.VerificationCount(), rep.ReputationScore()), nil
}

// TotalRegistrations returns the global registration counter
func (m *MemoryPersister) TotalRegistrations() (uint64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return uint64(len(m.order)), nil
}

// RecentContentRecords returns up to count records, newest first
func (m *MemoryPersister) RecentContentRecords(count int) ([]*model.ContentRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if count > len(m.order) {
		count = len(m.order)
	}
	if count < 0 {
		count = 0
	}
	records := make([]*model.ContentRecord, 0, count)
	for i := len(m.order) - 1; i >= len(m.order)-count; i-- {
		records = append(records, m.records[m.order[i]])
	}
	return records, nil
}

// RegistryEvents returns events in log order matching the criteria
func (m *MemoryPersister) RegistryEvents(criteria *model.RegistryEventCriteria) ([]*model.RegistryEvent, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	events := []*model.RegistryEvent{}
	for _, event := range m.events {
		if event.Sequence() <= criteria.FromSequence {
			continue
		}
		if criteria.EventType != "" && event.EventType() != criteria.EventType {
			continue
		}
		events = append(events, event)
		if criteria.Count > 0 && len(events) >= criteria.Count {
			break
		}
	}
	return events, nil
}

// LatestTimestamp returns the timestamp of the newest record
func (m *MemoryPersister) LatestTimestamp() (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if len(m.order) == 0 {
		return 0, nil
	}
	return m.records[m.order[len(m.order)-1]].Timestamp(), nil
}

// Paused returns the pause flag
func (m *MemoryPersister) Paused() (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.paused, nil
}

// SetPaused sets the pause flag
func (m *MemoryPersister) SetPaused(paused bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.paused = paused
	return nil
}

func (m *MemoryPersister) reputation(publisher common.Address) *model.PublisherReputation {
	rep, ok := m.reputations[publisher]
	if !ok {
		rep = model.NewPublisherReputation(publisher, 0, 0, 0)
		m.reputations[publisher] = rep
	}
	return rep
}

func (m *MemoryPersister) appendEvent(event *model.RegistryEvent) {
	event.SetSequence(uint64(len(m.events) + 1))
	m.events = append(m.events, event)
}
