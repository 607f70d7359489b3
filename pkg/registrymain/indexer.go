package registrymain

import (
	"context"
	"fmt"
	"runtime"

	log "github.com/golang/glog"

	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/processor"
)

// EventSource reads registry events from the ledger
type EventSource interface {
	LatestBlock(ctx context.Context) (uint64, error)
	Events(ctx context.Context, fromBlock uint64, toBlock uint64) ([]*model.RegistryEvent, error)
}

// SaveLastEventInformation saves the last block and the hashes of the events
// seen at that block to the cron table. If no event moved past lastBlock the
// new hashes are added to lastHashes.
func SaveLastEventInformation(persister model.CronPersister, events []*model.RegistryEvent,
	lastBlock uint64, lastHashes []string) error {
	updated := false
	for _, event := range events {
		if block := event.BlockData().BlockNumber(); block > lastBlock {
			lastBlock = block
			updated = true
		}
	}
	eventHashes := []string{}
	if !updated {
		eventHashes = append(eventHashes, lastHashes...)
	}
	for _, event := range events {
		if event.BlockData().BlockNumber() == lastBlock {
			eventHashes = append(eventHashes, event.Hash())
		}
	}
	log.Infof("Updating block %v, eventHashes %v", lastBlock, eventHashes)
	err := persister.UpdateLastProcessedBlockForCron(lastBlock)
	if err != nil {
		return fmt.Errorf("Error updating last block in cron table: %v", err)
	}
	err = persister.UpdateEventHashesForCron(eventHashes)
	if err != nil {
		return fmt.Errorf("Error updating event hashes in cron table: %v", err)
	}
	return nil
}

// RunIndexer applies the ledger events emitted since the last run to the
// local registry. The last processed block is read again and events already
// seen there are skipped. If processing fails nothing is saved and the next
// run retries the same range.
func RunIndexer(ctx context.Context, source EventSource, cron model.CronPersister,
	proc *processor.EventProcessor) error {
	lastBlock, err := cron.LastProcessedBlockForCron()
	if err != nil {
		return fmt.Errorf("Error getting last processed block: %v", err)
	}
	lastHashes, err := cron.EventHashesOfLastBlockForCron()
	if err != nil {
		return fmt.Errorf("Error getting event hashes for last block seen in cron: %v", err)
	}
	head, err := source.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("Error getting latest block: %v", err)
	}
	if head < lastBlock {
		log.Warningf("Head %v is behind last processed block %v", head, lastBlock)
		return nil
	}

	events, err := source.Events(ctx, lastBlock, head)
	if err != nil {
		return fmt.Errorf("Error retrieving events: %v", err)
	}
	events = excludeHashes(events, lastHashes)

	if len(events) == 0 {
		// Nothing new up to head, so no hashes need to be kept
		if head > lastBlock {
			err = cron.UpdateLastProcessedBlockForCron(head)
			if err != nil {
				return fmt.Errorf("Error updating last block in cron table: %v", err)
			}
			err = cron.UpdateEventHashesForCron([]string{})
			if err != nil {
				return fmt.Errorf("Error updating event hashes in cron table: %v", err)
			}
		}
		return nil
	}

	err = proc.Process(events)
	if err != nil {
		return fmt.Errorf("Error processing events: %v", err)
	}
	err = SaveLastEventInformation(cron, events, lastBlock, lastHashes)
	if err != nil {
		return err
	}

	log.Infof("Done running indexer, %v events: %v", len(events), runtime.NumGoroutine())
	return nil
}

func excludeHashes(events []*model.RegistryEvent, hashes []string) []*model.RegistryEvent {
	if len(hashes) == 0 {
		return events
	}
	exclude := make(map[string]bool, len(hashes))
	for _, hash := range hashes {
		exclude[hash] = true
	}
	filtered := make([]*model.RegistryEvent, 0, len(events))
	for _, event := range events {
		if !exclude[event.Hash()] {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
