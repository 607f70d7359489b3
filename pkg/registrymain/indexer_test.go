package registrymain_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/ingest"
	"github.com/joincivil/civil-content-registry/pkg/metadata"
	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/persistence"
	"github.com/joincivil/civil-content-registry/pkg/processor"
	"github.com/joincivil/civil-content-registry/pkg/registrymain"
)

var (
	publisherAddress = common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	callerAddress    = common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
)

func registeredEvent(n int64, block uint64, logIndex uint) *model.RegistryEvent {
	fp := common.BigToHash(big.NewInt(n))
	record := model.NewContentRecord(fp, publisherAddress, model.CategoryArticle, "ipfs://bafk", 1000+n)
	return model.NewContentRegisteredEvent(record, model.NewBlockData(block,
		common.BigToHash(new(big.Int).SetUint64(block)), logIndex))
}

type testEventSource struct {
	head   uint64
	events []*model.RegistryEvent
	froms  []uint64
}

func (s *testEventSource) LatestBlock(ctx context.Context) (uint64, error) {
	return s.head, nil
}

func (s *testEventSource) Events(ctx context.Context, fromBlock uint64,
	toBlock uint64) ([]*model.RegistryEvent, error) {
	s.froms = append(s.froms, fromBlock)
	events := []*model.RegistryEvent{}
	for _, event := range s.events {
		block := event.BlockData().BlockNumber()
		if block >= fromBlock && block <= toBlock {
			events = append(events, event)
		}
	}
	return events, nil
}

func TestSaveLastEventInformation(t *testing.T) {
	cron := persistence.NewCronPersister()
	events := []*model.RegistryEvent{
		registeredEvent(1, 10, 0),
		registeredEvent(2, 10, 1),
		registeredEvent(3, 12, 0),
		registeredEvent(4, 12, 1),
		registeredEvent(5, 12, 2),
	}
	err := registrymain.SaveLastEventInformation(cron, events, 0, nil)
	if err != nil {
		t.Errorf("Error saving last event info, err: %v", err)
	}
	block, _ := cron.LastProcessedBlockForCron()
	if block != 12 {
		t.Errorf("Last block should be %v but is %v", 12, block)
	}
	hashes, _ := cron.EventHashesOfLastBlockForCron()
	if len(hashes) != 3 {
		t.Errorf("Number of hashes returned for block should be %v but is %v", 3, len(hashes))
	}

	// More events at the same block keep the earlier hashes
	err = registrymain.SaveLastEventInformation(cron, []*model.RegistryEvent{registeredEvent(6, 12, 3)},
		12, hashes)
	if err != nil {
		t.Errorf("Error saving last event info, err: %v", err)
	}
	hashes, _ = cron.EventHashesOfLastBlockForCron()
	if len(hashes) != 4 {
		t.Errorf("Number of hashes returned for block should be %v but is %v: %v", 4, len(hashes),
			spew.Sdump(hashes))
	}
}

func TestRunIndexer(t *testing.T) {
	persister := persistence.NewMemoryPersister()
	cron := persistence.NewCronPersister()
	proc := processor.NewEventProcessor(persister, nil)
	source := &testEventSource{
		head: 20,
		events: []*model.RegistryEvent{
			registeredEvent(1, 10, 0),
			registeredEvent(2, 15, 0),
			model.NewContentVerifiedEvent(registeredEvent(1, 10, 0).Fingerprint(), true, callerAddress,
				1016, model.NewBlockData(15, common.BigToHash(common.Big2), 1)),
		},
	}
	ctx := context.Background()

	err := registrymain.RunIndexer(ctx, source, cron, proc)
	if err != nil {
		t.Fatalf("Should have run the indexer: err: %v", err)
	}
	total, _ := persister.TotalRegistrations()
	if total != 2 {
		t.Errorf("Should have indexed 2 registrations: %v", total)
	}
	rep, _ := persister.PublisherReputation(publisherAddress)
	if rep.VerificationCount() != 1 {
		t.Errorf("Should have credited 1 verification: %v", rep.VerificationCount())
	}
	block, _ := cron.LastProcessedBlockForCron()
	if block != 15 {
		t.Errorf("Last block should be 15: %v", block)
	}

	// Rerunning skips events already seen at the last block
	err = registrymain.RunIndexer(ctx, source, cron, proc)
	if err != nil {
		t.Fatalf("Should have rerun the indexer: err: %v", err)
	}
	rep, _ = persister.PublisherReputation(publisherAddress)
	if rep.VerificationCount() != 1 {
		t.Errorf("Should not have credited the verification twice: %v", rep.VerificationCount())
	}
	if source.froms[1] != 15 {
		t.Errorf("Should have resumed from the last block: %v", source.froms[1])
	}
	block, _ = cron.LastProcessedBlockForCron()
	if block != 20 {
		t.Errorf("Should have advanced to head with nothing new: %v", block)
	}
	hashes, _ := cron.EventHashesOfLastBlockForCron()
	if len(hashes) != 0 {
		t.Errorf("Should have cleared the hashes: %v", hashes)
	}
}

func TestRunIndexerHeadBehind(t *testing.T) {
	cron := persistence.NewCronPersister()
	_ = cron.UpdateLastProcessedBlockForCron(30)
	source := &testEventSource{head: 20}
	proc := processor.NewEventProcessor(persistence.NewMemoryPersister(), nil)
	err := registrymain.RunIndexer(context.Background(), source, cron, proc)
	if err != nil {
		t.Errorf("Should not have failed with the head behind: err: %v", err)
	}
	if len(source.froms) != 0 {
		t.Errorf("Should not have read events")
	}
}

type emptySource struct{}

func (emptySource) Headlines(ctx context.Context) ([]*model.Headline, error) {
	return []*model.Headline{}, nil
}

func TestRunIngestRecordsLastRun(t *testing.T) {
	cron := persistence.NewCronPersister()
	ingester := ingest.NewIngester(&ingest.Config{
		Source:    emptySource{},
		Store:     metadata.NewMemoryStore(),
		Registrar: ingest.NewLocalRegistrar(nil, publisherAddress),
	})
	before := time.Now().Unix()
	summary, err := registrymain.RunIngest(context.Background(), ingester, cron)
	if err != nil {
		t.Fatalf("Should have run the ingester: err: %v", err)
	}
	if summary.Fetched != 0 {
		t.Errorf("Should have fetched nothing: %v", summary.Fetched)
	}
	ts, _ := cron.TimestampOfLastRunForCron()
	if ts < before {
		t.Errorf("Should have recorded the run timestamp: %v", ts)
	}
}
