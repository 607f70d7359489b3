package persistence

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

var (
	suitePublisher1 = common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
	suitePublisher2 = common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	suiteCaller     = common.HexToAddress("0x39eeD73fb1D4a5e4bCC8C9b5A7aF7A40c9E0b1D2")
)

func sampleRecord(seed byte, publisher common.Address, ts int64) *model.ContentRecord {
	fp := common.BytesToHash([]byte{0xaa, seed})
	return model.NewContentRecord(fp, publisher, model.CategoryArticle, "ipfs://bafkreisample", ts)
}

// runRegistryPersisterSuite exercises a fresh, empty RegistryPersister
func runRegistryPersisterSuite(t *testing.T, p model.RegistryPersister) {
	r1 := sampleRecord(1, suitePublisher1, 100)
	r2 := sampleRecord(2, suitePublisher2, 101)
	r3 := sampleRecord(3, suitePublisher1, 102)

	for _, r := range []*model.ContentRecord{r1, r2, r3} {
		err := p.CreateContentRecord(r, model.BlockData{})
		if err != nil {
			t.Fatalf("Should have created record: err: %v", err)
		}
	}

	err := p.CreateContentRecord(model.NewContentRecord(r1.Fingerprint(), suitePublisher2,
		model.CategoryVideo, "ipfs://other", 200), model.BlockData{})
	if err != model.ErrDuplicateFingerprint {
		t.Errorf("Should have returned duplicate error: err: %v", err)
	}

	record, err := p.ContentRecord(r1.Fingerprint())
	if err != nil {
		t.Fatalf("Should have found record: err: %v", err)
	}
	if record.Publisher() != suitePublisher1 || record.Category() != model.CategoryArticle ||
		record.Timestamp() != 100 {
		t.Errorf("Duplicate registration should not have changed the record: %v", record)
	}

	_, err = p.ContentRecord(common.HexToHash("0xdead"))
	if err != model.ErrPersisterNoResults {
		t.Errorf("Should have returned no results: err: %v", err)
	}

	total, err := p.TotalRegistrations()
	if err != nil || total != 3 {
		t.Errorf("Wrong total registrations: %v, err: %v", total, err)
	}

	content, err := p.PublisherContent(suitePublisher1)
	if err != nil {
		t.Errorf("Should have gotten publisher content: err: %v", err)
	}
	if len(content) != 2 || content[0] != r1.Fingerprint() || content[1] != r3.Fingerprint() {
		t.Errorf("Wrong publisher content: %v", content)
	}
	content, _ = p.PublisherContent(suiteCaller)
	if len(content) != 0 {
		t.Errorf("Unknown publisher should have no content: %v", content)
	}

	verified, err := p.RecordVerification(r2.Fingerprint(), suiteCaller, 300, model.BlockData{})
	if err != nil || verified == nil {
		t.Fatalf("Should have verified: %v, err: %v", verified, err)
	}
	missed, err := p.RecordVerification(common.HexToHash("0xdead"), suiteCaller, 301, model.BlockData{})
	if err != nil || missed != nil {
		t.Errorf("Miss should return no record: %v, err: %v", missed, err)
	}

	rep, err := p.PublisherReputation(suitePublisher2)
	if err != nil {
		t.Fatalf("Should have gotten reputation: err: %v", err)
	}
	if rep.TotalRegistrations() != 1 || rep.VerificationCount() != 1 || rep.ReputationScore() != 15 {
		t.Errorf("Wrong reputation: %v %v %v", rep.TotalRegistrations(), rep.VerificationCount(),
			rep.ReputationScore())
	}
	rep, _ = p.PublisherReputation(suiteCaller)
	if rep.TotalRegistrations() != 0 || rep.ReputationScore() != 0 {
		t.Errorf("Unknown publisher should have zero reputation")
	}

	recent, err := p.RecentContentRecords(2)
	if err != nil {
		t.Errorf("Should have gotten recent records: err: %v", err)
	}
	if len(recent) != 2 || recent[0].Fingerprint() != r3.Fingerprint() ||
		recent[1].Fingerprint() != r2.Fingerprint() {
		t.Errorf("Wrong recent records: %v", recent)
	}
	recent, _ = p.RecentContentRecords(10)
	if len(recent) != 3 {
		t.Errorf("Should have capped at the number of records: %v", len(recent))
	}

	events, err := p.RegistryEvents(&model.RegistryEventCriteria{})
	if err != nil {
		t.Fatalf("Should have gotten events: err: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("Wrong number of events: %v", len(events))
	}
	if events[3].EventType() != model.EventContentVerified || !events[3].Existed() {
		t.Errorf("Wrong verified hit event: %v", events[3])
	}
	if events[4].Existed() || events[4].Caller() != suiteCaller {
		t.Errorf("Wrong verified miss event: %v", events[4])
	}
	for i := 1; i < len(events); i++ {
		if events[i].Sequence() <= events[i-1].Sequence() {
			t.Errorf("Events should be in sequence order")
		}
	}

	events, _ = p.RegistryEvents(&model.RegistryEventCriteria{
		FromSequence: events[0].Sequence(),
		Count:        2,
		EventType:    model.EventContentRegistered,
	})
	if len(events) != 2 || events[0].Fingerprint() != r2.Fingerprint() {
		t.Errorf("Wrong filtered events: %v", events)
	}

	latest, err := p.LatestTimestamp()
	if err != nil || latest != 102 {
		t.Errorf("Wrong latest timestamp: %v, err: %v", latest, err)
	}

	paused, _ := p.Paused()
	if paused {
		t.Errorf("Should not start paused")
	}
	err = p.SetPaused(true)
	if err != nil {
		t.Errorf("Should have paused: err: %v", err)
	}
	paused, _ = p.Paused()
	if !paused {
		t.Errorf("Should be paused")
	}

	err = p.CreateContentRecord(sampleRecord(4, suitePublisher1, 103), model.BlockData{})
	if err != model.ErrSystemPaused {
		t.Errorf("Should have refused a local record while paused: err: %v", err)
	}
	err = p.CreateContentRecord(sampleRecord(5, suitePublisher1, 104),
		model.NewBlockData(10, common.HexToHash("0xbeef"), 0))
	if err != nil {
		t.Errorf("Should have applied a ledger record while paused: err: %v", err)
	}
	total, _ = p.TotalRegistrations()
	if total != 4 {
		t.Errorf("Only the ledger record should have been counted: %v", total)
	}
}

// runConcurrentCreateSuite checks only one of many concurrent creates of the
// same fingerprint succeeds
func runConcurrentCreateSuite(t *testing.T, p model.RegistryPersister) {
	record := sampleRecord(9, suitePublisher1, 500)
	numWorkers := 20
	wg := sync.WaitGroup{}
	results := make(chan error, numWorkers)
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- p.CreateContentRecord(record, model.BlockData{})
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch err {
		case nil:
			successes++
		case model.ErrDuplicateFingerprint:
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("Exactly one create should have succeeded: %v", successes)
	}
	rep, _ := p.PublisherReputation(suitePublisher1)
	if rep.TotalRegistrations() != 1 || rep.ReputationScore() != model.RegistrationScore {
		t.Errorf("Reputation should have been credited once: %v", rep.ReputationScore())
	}
}

func runCronPersisterSuite(t *testing.T, p model.CronPersister) {
	err := p.UpdateLastProcessedBlockForCron(1234)
	if err != nil {
		t.Errorf("Should have updated block: err: %v", err)
	}
	block, err := p.LastProcessedBlockForCron()
	if err != nil || block != 1234 {
		t.Errorf("Wrong block: %v, err: %v", block, err)
	}
	err = p.UpdateEventHashesForCron([]string{"a-1", "a-2"})
	if err != nil {
		t.Errorf("Should have updated hashes: err: %v", err)
	}
	hashes, err := p.EventHashesOfLastBlockForCron()
	if err != nil || len(hashes) != 2 || hashes[1] != "a-2" {
		t.Errorf("Wrong hashes: %v, err: %v", hashes, err)
	}
	err = p.UpdateTimestampOfLastRunForCron(99)
	if err != nil {
		t.Errorf("Should have updated timestamp: err: %v", err)
	}
	ts, err := p.TimestampOfLastRunForCron()
	if err != nil || ts != 99 {
		t.Errorf("Wrong timestamp: %v, err: %v", ts, err)
	}
}
