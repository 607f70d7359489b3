package processor

import (
	log "github.com/golang/glog"

	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/model"
)

// NewEventProcessor is a convenience function to init an EventProcessor
func NewEventProcessor(persister model.RegistryPersister, m *metrics.Metrics) *EventProcessor {
	return &EventProcessor{
		persister: persister,
		metrics:   m,
	}
}

// EventProcessor applies ledger events to a local registry persister so the
// local index mirrors the chain.
type EventProcessor struct {
	persister model.RegistryPersister
	metrics   *metrics.Metrics
}

// Process applies the given events in order. Registrations already present
// are skipped. Verifications are not deduplicated here, callers exclude
// events they have already processed by hash.
// Returns the last error if one has occurred.
func (e *EventProcessor) Process(events []*model.RegistryEvent) error {
	var lastErr error
	for _, event := range events {
		ran, err := e.processRegistryEvent(event)
		if err != nil {
			log.Errorf("Error processing registry event %v: err: %v\n", event.Hash(), err)
			lastErr = err
			continue
		}
		if ran {
			e.metrics.IncIndexedEvent(string(event.EventType()))
		}
	}
	return lastErr
}

func (e *EventProcessor) processRegistryEvent(event *model.RegistryEvent) (bool, error) {
	var err error
	ran := true

	switch event.EventType() {
	case model.EventContentRegistered:
		log.V(2).Infof("Handling ContentRegistered for %v\n", event.Fingerprint().Hex())
		ran, err = e.processContentRegistered(event)

	case model.EventContentVerified:
		log.V(2).Infof("Handling ContentVerified for %v\n", event.Fingerprint().Hex())
		err = e.processContentVerified(event)

	default:
		ran = false
	}
	return ran, err
}

func (e *EventProcessor) processContentRegistered(event *model.RegistryEvent) (bool, error) {
	record := event.ContentRecord()
	err := e.persister.CreateContentRecord(record, event.BlockData())
	if errors.Is(err, model.ErrDuplicateFingerprint) {
		log.Infof("Content %v already indexed, skipping", record.Fingerprint().Hex())
		return false, nil
	}
	if err != nil {
		return false, errors.WithMessage(err, "error persisting content record")
	}
	return true, nil
}

func (e *EventProcessor) processContentVerified(event *model.RegistryEvent) error {
	record, err := e.persister.RecordVerification(event.Fingerprint(), event.Caller(),
		event.Timestamp(), event.BlockData())
	if err != nil {
		return errors.WithMessage(err, "error persisting verification")
	}
	if event.Existed() && record == nil {
		log.Warningf("Verified content %v is missing from the index", event.Fingerprint().Hex())
	}
	return nil
}
