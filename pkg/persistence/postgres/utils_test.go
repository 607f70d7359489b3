package postgres_test

import (
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/persistence/postgres"
)

func TestDbFieldNameFromModelName(t *testing.T) {
	recordNameMapping := map[string]string{
		"Fingerprint":     "fingerprint",
		"Publisher":       "publisher",
		"Category":        "category",
		"MetadataPointer": "metadata_pointer",
		"Timestamp":       "timestamp",
	}
	for modelName, dbName := range recordNameMapping {
		dbNameCheck, err := postgres.DbFieldNameFromModelName(postgres.ContentRecord{}, modelName)
		if err != nil {
			t.Errorf("Error getting db struct name: %v", err)
		}
		if dbName != dbNameCheck {
			t.Errorf("Struct tag names do not match for: %v, %v", dbName, dbNameCheck)
		}
	}
	_, err := postgres.DbFieldNameFromModelName(postgres.ContentRecord{}, "Nope")
	if err == nil {
		t.Errorf("Should have failed for an unknown field")
	}
}

func TestGetAllStructFieldsForQuery(t *testing.T) {
	record := postgres.ContentRecord{}
	fields, colonFields := postgres.GetAllStructFieldsForQuery(record, false)
	if fields != "fingerprint, publisher, category, metadata_pointer, timestamp" {
		t.Errorf("Generated fields string is not what it should be: %v", fields)
	}
	if colonFields != "" {
		t.Errorf("Colon fields must be empty but it isn't")
	}
	fields, colonFields = postgres.GetAllStructFieldsForQuery(record, true)
	if fields != "fingerprint, publisher, category, metadata_pointer, timestamp" {
		t.Errorf("Generated fields string is not what it should be: %v", fields)
	}
	if colonFields != ":fingerprint, :publisher, :category, :metadata_pointer, :timestamp" {
		t.Errorf("Generated colon fields string is not what it should be: %v", colonFields)
	}
}

func TestEventHashesRoundTrip(t *testing.T) {
	if len(postgres.StringToEventHashes("")) != 0 {
		t.Errorf("Empty string should give no hashes")
	}
	hashes := []string{"0xabc-1", "0xabc-2"}
	joined := postgres.EventHashesToString(hashes)
	if !reflect.DeepEqual(postgres.StringToEventHashes(joined), hashes) {
		t.Errorf("Hashes did not survive storage: %v", joined)
	}
}

func TestDbToContentRecordData(t *testing.T) {
	fp := common.HexToHash("0x574b0d5e64c30dc27d5728d5725fdecd35fddd9cfa8af522709deaa77421aa5f")
	publisher := common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
	record := model.NewContentRecord(fp, publisher, model.CategoryVideo, "ipfs://bafk", 42)
	dbRecord := postgres.NewContentRecord(record)
	if dbRecord.Fingerprint != fp.Hex() || dbRecord.Publisher != publisher.Hex() {
		t.Errorf("Wrong db record: %v", dbRecord)
	}
	back := dbRecord.DbToContentRecordData()
	if !reflect.DeepEqual(back, record) {
		t.Errorf("Records do not match: %v, %v", back, record)
	}
}

func TestDbToRegistryEventData(t *testing.T) {
	fp := common.HexToHash("0x01")
	caller := common.HexToAddress("0x02")
	txHash := common.HexToHash("0x03")
	event := model.NewContentVerifiedEvent(fp, true, caller, 99, model.NewBlockData(7, txHash, 1))
	dbEvent := postgres.NewRegistryEvent(event)
	dbEvent.Sequence = 5
	back := dbEvent.DbToRegistryEventData()
	if back.Sequence() != 5 || back.Caller() != caller || !back.Existed() {
		t.Errorf("Wrong event from db: %v", back)
	}
	if back.BlockData().TxHash() != txHash || back.BlockData().BlockNumber() != 7 {
		t.Errorf("Wrong block data from db")
	}
	if back.Hash() != event.Hash() {
		t.Errorf("Hashes should match: %v, %v", back.Hash(), event.Hash())
	}
}
