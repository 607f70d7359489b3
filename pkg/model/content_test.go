package model_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

var (
	testFingerprint = common.HexToHash("0x574b0d5e64c30dc27d5728d5725fdecd35fddd9cfa8af522709deaa77421aa5f")
	testPublisher   = common.HexToAddress("0xbc772037676252833e2b273adc82d0608ea366ab")
)

func TestCategoryFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected model.Category
		err      error
	}{
		{"article", model.CategoryArticle, nil},
		{"Image", model.CategoryImage, nil},
		{" video ", model.CategoryVideo, nil},
		{"podcast", "", model.ErrInvalidCategory},
		{"", "", model.ErrInvalidCategory},
	}
	for _, test := range tests {
		cat, err := model.CategoryFromName(test.name)
		if err != test.err {
			t.Errorf("Wrong error for %q: err: %v", test.name, err)
		}
		if cat != test.expected {
			t.Errorf("Wrong category for %q: %v", test.name, cat)
		}
	}
}

func TestVerificationResultMiss(t *testing.T) {
	result := model.NewVerificationResult(testFingerprint, nil)
	if result.Exists() {
		t.Errorf("Should not exist")
	}
	if result.Publisher() != (common.Address{}) {
		t.Errorf("Should have had a zero publisher: %v", result.Publisher().Hex())
	}
	if result.Timestamp() != 0 || result.Category() != "" || result.MetadataPointer() != "" {
		t.Errorf("Should have had zero fields on a miss")
	}
	if result.Fingerprint() != testFingerprint {
		t.Errorf("Should have kept the fingerprint")
	}
}

func TestVerificationResultHit(t *testing.T) {
	record := model.NewContentRecord(testFingerprint, testPublisher, model.CategoryImage,
		"ipfs://bafkrei", 1000)
	result := model.NewVerificationResult(testFingerprint, record)
	if !result.Exists() {
		t.Errorf("Should exist")
	}
	if result.Publisher() != testPublisher {
		t.Errorf("Wrong publisher: %v", result.Publisher().Hex())
	}
	if result.Timestamp() != 1000 {
		t.Errorf("Wrong timestamp: %v", result.Timestamp())
	}
	if result.Category() != model.CategoryImage {
		t.Errorf("Wrong category: %v", result.Category())
	}
}

func TestPublisherReputationCredits(t *testing.T) {
	rep := model.NewPublisherReputation(testPublisher, 0, 0, 0)
	rep.CreditRegistration()
	rep.CreditRegistration()
	rep.CreditVerification()
	if rep.TotalRegistrations() != 2 {
		t.Errorf("Wrong total registrations: %v", rep.TotalRegistrations())
	}
	if rep.VerificationCount() != 1 {
		t.Errorf("Wrong verification count: %v", rep.VerificationCount())
	}
	if rep.ReputationScore() != 25 {
		t.Errorf("Wrong reputation score: %v", rep.ReputationScore())
	}
}

func TestKindOfError(t *testing.T) {
	tests := []struct {
		err  error
		kind model.ErrorKind
	}{
		{nil, model.ErrorKindNone},
		{model.ErrEmptyFingerprint, model.ErrorKindValidation},
		{errors.Wrap(model.ErrInvalidCategory, "register"), model.ErrorKindValidation},
		{model.ErrEmptyMetadata, model.ErrorKindValidation},
		{model.ErrDuplicateFingerprint, model.ErrorKindConflict},
		{model.ErrUnauthorized, model.ErrorKindAuthorization},
		{errors.WithMessage(model.ErrSystemPaused, "ledger"), model.ErrorKindAvailability},
		{model.ErrReadOnly, model.ErrorKindReadOnly},
		{model.ErrDependencyUnavailable, model.ErrorKindDependency},
		{errors.New("disk on fire"), model.ErrorKindInternal},
	}
	for _, test := range tests {
		if kind := model.KindOfError(test.err); kind != test.kind {
			t.Errorf("Wrong kind for %v: %v", test.err, kind)
		}
	}
}

func TestRegistryEventAccessors(t *testing.T) {
	record := model.NewContentRecord(testFingerprint, testPublisher, model.CategoryArticle,
		"ipfs://bafkrei", 1000)
	registered := model.NewContentRegisteredEvent(record, model.BlockData{})
	registered.SetSequence(3)
	if registered.Publisher() != testPublisher {
		t.Errorf("Wrong publisher: %v", registered.Publisher().Hex())
	}
	if registered.Caller() != (common.Address{}) {
		t.Errorf("Registered events should not have a caller")
	}
	if registered.ContentRecord().MetadataPointer() != "ipfs://bafkrei" {
		t.Errorf("Wrong record pointer")
	}
	if registered.Hash() != "local-3" {
		t.Errorf("Wrong local hash: %v", registered.Hash())
	}

	txHash := common.HexToHash("0x01")
	verified := model.NewContentVerifiedEvent(testFingerprint, false, testPublisher, 1001,
		model.NewBlockData(10, txHash, 2))
	if verified.ContentRecord() != nil {
		t.Errorf("Verified events should not have a record")
	}
	if verified.Caller() != testPublisher {
		t.Errorf("Wrong caller: %v", verified.Caller().Hex())
	}
	if verified.Hash() != txHash.Hex()+"-2" {
		t.Errorf("Wrong chain hash: %v", verified.Hash())
	}
}
