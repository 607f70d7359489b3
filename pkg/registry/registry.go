// Package registry implements the content registry and reputation ledger
package registry // import "github.com/joincivil/civil-content-registry/pkg/registry"

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/model"
)

// Notifier is notified after each successful registration
type Notifier interface {
	NotifyContentRegistered(record *model.ContentRecord) error
}

// NewRegistry returns a registry over persister owned by owner. A nil clock
// uses the wall clock.
func NewRegistry(persister model.RegistryPersister, owner common.Address, clock Clock) *Registry {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Registry{
		persister: persister,
		owner:     owner,
		clock:     clock,
	}
}

// Registry maps fingerprints to content records and keeps the derived
// publisher reputation. Writes are serialized so each operation is applied
// as a single atomic step.
type Registry struct {
	mutex     sync.Mutex
	persister model.RegistryPersister
	owner     common.Address
	clock     Clock
	notifiers []Notifier
	metrics   *metrics.Metrics
}

// AddNotifier adds a notifier called after each successful registration
func (r *Registry) AddNotifier(notifier Notifier) {
	r.notifiers = append(r.notifiers, notifier)
}

// SetMetrics sets the collectors the registry records into
func (r *Registry) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Owner returns the owner address
func (r *Registry) Owner() common.Address {
	return r.owner
}

// Register records fingerprint as content published by caller
func (r *Registry) Register(caller common.Address, fingerprint common.Hash, category model.Category,
	metadataPointer string) (*model.ContentRecord, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, err := r.register(caller, fingerprint, category, metadataPointer)
	if err != nil {
		r.metrics.IncRegistration(string(model.KindOfError(err)))
		return nil, err
	}
	r.metrics.IncRegistration("ok")

	for _, notifier := range r.notifiers {
		err := notifier.NotifyContentRegistered(record)
		if err != nil {
			log.Errorf("Error notifying registration of %v: err: %v", fingerprint.Hex(), err)
		}
	}
	return record, nil
}

func (r *Registry) register(caller common.Address, fingerprint common.Hash, category model.Category,
	metadataPointer string) (*model.ContentRecord, error) {
	paused, err := r.persister.Paused()
	if err != nil {
		return nil, errors.Wrap(err, "error checking paused")
	}
	if paused {
		return nil, model.ErrSystemPaused
	}
	if fingerprint == (common.Hash{}) {
		return nil, model.ErrEmptyFingerprint
	}
	if !category.Valid() {
		return nil, model.ErrInvalidCategory
	}
	if metadataPointer == "" {
		return nil, model.ErrEmptyMetadata
	}

	timestamp, err := r.nextTimestamp()
	if err != nil {
		return nil, err
	}
	record := model.NewContentRecord(fingerprint, caller, category, metadataPointer, timestamp)
	err = r.persister.CreateContentRecord(record, model.BlockData{})
	if err != nil {
		if err == model.ErrDuplicateFingerprint || err == model.ErrSystemPaused {
			return nil, err
		}
		return nil, errors.Wrap(err, "error creating content record")
	}
	log.Infof("Registered %v by %v as %v", fingerprint.Hex(), caller.Hex(), category)
	return record, nil
}

// nextTimestamp returns the clock time in seconds, never earlier than the
// latest registration
func (r *Registry) nextTimestamp() (int64, error) {
	now := r.clock.Now().Unix()
	latest, err := r.persister.LatestTimestamp()
	if err != nil {
		return 0, errors.Wrap(err, "error getting latest timestamp")
	}
	if now < latest {
		return latest, nil
	}
	return now, nil
}

// Verify checks whether fingerprint is registered. Every successful check of
// registered content credits its publisher, so repeated calls keep raising
// the publisher's reputation. A miss changes no record or reputation. Both
// outcomes are appended to the event log.
func (r *Registry) Verify(caller common.Address, fingerprint common.Hash) (*model.VerificationResult, error) {
	if fingerprint == (common.Hash{}) {
		r.metrics.IncVerification("error")
		return nil, model.ErrEmptyFingerprint
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, err := r.persister.RecordVerification(fingerprint, caller, r.clock.Now().Unix(),
		model.BlockData{})
	if err != nil {
		r.metrics.IncVerification("error")
		return nil, errors.Wrap(err, "error recording verification")
	}
	if record == nil {
		r.metrics.IncVerification("miss")
		log.V(2).Infof("Verify miss for %v by %v", fingerprint.Hex(), caller.Hex())
	} else {
		r.metrics.IncVerification("hit")
	}
	return model.NewVerificationResult(fingerprint, record), nil
}

// Lookup returns the verification result for fingerprint without crediting
// anyone or logging an event
func (r *Registry) Lookup(fingerprint common.Hash) (*model.VerificationResult, error) {
	if fingerprint == (common.Hash{}) {
		return nil, model.ErrEmptyFingerprint
	}
	record, err := r.persister.ContentRecord(fingerprint)
	if err != nil {
		if err == model.ErrPersisterNoResults {
			return model.NewVerificationResult(fingerprint, nil), nil
		}
		return nil, errors.Wrap(err, "error looking up content record")
	}
	return model.NewVerificationResult(fingerprint, record), nil
}

// PublisherContent returns the fingerprints publisher registered, in order
func (r *Registry) PublisherContent(publisher common.Address) ([]common.Hash, error) {
	return r.persister.PublisherContent(publisher)
}

// PublisherReputation returns the reputation of publisher
func (r *Registry) PublisherReputation(publisher common.Address) (*model.PublisherReputation, error) {
	return r.persister.PublisherReputation(publisher)
}

// TotalRegistrations returns the number of successful registrations
func (r *Registry) TotalRegistrations() (uint64, error) {
	return r.persister.TotalRegistrations()
}

// RecentRegistrations returns at most count records, newest first
func (r *Registry) RecentRegistrations(count int) ([]*model.ContentRecord, error) {
	return r.persister.RecentContentRecords(count)
}

// Events enumerates the event log
func (r *Registry) Events(criteria *model.RegistryEventCriteria) ([]*model.RegistryEvent, error) {
	return r.persister.RegistryEvents(criteria)
}

// Paused returns true if registrations are paused
func (r *Registry) Paused() (bool, error) {
	return r.persister.Paused()
}

// Pause stops new registrations. Only the owner can pause.
func (r *Registry) Pause(caller common.Address) error {
	return r.setPaused(caller, true)
}

// Unpause resumes registrations. Only the owner can unpause.
func (r *Registry) Unpause(caller common.Address) error {
	return r.setPaused(caller, false)
}

func (r *Registry) setPaused(caller common.Address, paused bool) error {
	if caller != r.owner {
		return model.ErrUnauthorized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.persister.SetPaused(paused)
	if err != nil {
		return errors.Wrap(err, "error setting paused")
	}
	log.Infof("Registry paused set to %v by %v", paused, caller.Hex())
	return nil
}
