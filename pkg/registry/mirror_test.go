package registry_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/fingerprint"
	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/persistence"
	"github.com/joincivil/civil-content-registry/pkg/registry"
)

type testChain struct {
	records map[common.Hash]*model.ContentRecord
	paused  bool
	calls   int
}

func (c *testChain) Verify(ctx context.Context, caller common.Address,
	fp common.Hash) (*model.VerificationResult, error) {
	c.calls++
	if fp == (common.Hash{}) {
		return nil, model.ErrEmptyFingerprint
	}
	return model.NewVerificationResult(fp, c.records[fp]), nil
}

func (c *testChain) Paused(ctx context.Context) (bool, error) {
	return c.paused, nil
}

func TestMirrorRefusesWrites(t *testing.T) {
	reg, _ := setupRegistry()
	mirror := registry.NewMirror(reg, &testChain{}, 0)
	fp := fingerprint.FromText("on chain only")

	_, err := mirror.Register(testPublisher, fp, model.CategoryArticle, testPointer)
	if err != model.ErrReadOnly {
		t.Errorf("Should have refused registration: err: %v", err)
	}
	if err := mirror.Pause(testOwner); err != model.ErrReadOnly {
		t.Errorf("Should have refused pause: err: %v", err)
	}
	if err := mirror.Unpause(testOwner); err != model.ErrReadOnly {
		t.Errorf("Should have refused unpause: err: %v", err)
	}
	total, _ := mirror.TotalRegistrations()
	if total != 0 {
		t.Errorf("Nothing should have been written: %v", total)
	}
}

func TestMirrorVerifiesOnChain(t *testing.T) {
	persister := persistence.NewMemoryPersister()
	reg := registry.NewRegistry(persister, testOwner, nil)
	fp := fingerprint.FromText("indexed article")
	record := model.NewContentRecord(fp, testPublisher, model.CategoryArticle, testPointer, 100)
	err := persister.CreateContentRecord(record, model.NewBlockData(5, common.HexToHash("0x05"), 0))
	if err != nil {
		t.Fatalf("Should have indexed the record: err: %v", err)
	}
	chain := &testChain{records: map[common.Hash]*model.ContentRecord{fp: record}, paused: true}
	mirror := registry.NewMirror(reg, chain, 0)

	result, err := mirror.Verify(testCaller, fp)
	if err != nil || !result.Exists() || result.Publisher() != testPublisher {
		t.Errorf("Should have verified on chain: %v, err: %v", result, err)
	}
	if chain.calls != 1 {
		t.Errorf("Should have called the chain: %v", chain.calls)
	}
	rep, _ := mirror.PublisherReputation(testPublisher)
	if rep.VerificationCount() != 0 {
		t.Errorf("The mirror should not credit verifications locally: %v", rep.VerificationCount())
	}
	_, err = mirror.Verify(testCaller, common.Hash{})
	if err != model.ErrEmptyFingerprint {
		t.Errorf("Should have rejected the empty fingerprint: err: %v", err)
	}

	lookup, err := mirror.Lookup(fp)
	if err != nil || !lookup.Exists() {
		t.Errorf("Lookup should read the index: %v, err: %v", lookup, err)
	}
	paused, err := mirror.Paused()
	if err != nil || !paused {
		t.Errorf("Should have read the pause flag from the chain: %v, err: %v", paused, err)
	}
}
