package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	// RegistryEventTableName is the name of the registry event table
	RegistryEventTableName = "registry_event"
)

// RegistryEventSchemaString returns the query to create this table
func RegistryEventSchemaString(tableName string) string {
	schema := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            sequence BIGSERIAL PRIMARY KEY,
            event_type TEXT NOT NULL,
            fingerprint TEXT NOT NULL,
            account TEXT NOT NULL,
            existed BOOL NOT NULL,
            timestamp BIGINT NOT NULL,
            category TEXT,
            metadata_pointer TEXT,
            block_number BIGINT,
            tx_hash TEXT,
            log_index BIGINT
        );
        CREATE INDEX IF NOT EXISTS %s_event_type_idx ON %s (event_type, sequence);
    `, tableName, tableName, tableName)
	return schema
}

// RegistryEvent is the model definition for the registry event table
type RegistryEvent struct {
	Sequence int64 `db:"sequence"`

	EventType string `db:"event_type"`

	Fingerprint string `db:"fingerprint"`

	Account string `db:"account"`

	Existed bool `db:"existed"`

	Timestamp int64 `db:"timestamp"`

	Category string `db:"category"`

	MetadataPointer string `db:"metadata_pointer"`

	BlockNumber int64 `db:"block_number"`

	TxHash string `db:"tx_hash"`

	LogIndex int64 `db:"log_index"`
}

// NewRegistryEvent constructs a registry event for DB from a model.RegistryEvent
func NewRegistryEvent(event *model.RegistryEvent) *RegistryEvent {
	blockData := event.BlockData()
	return &RegistryEvent{
		EventType:       string(event.EventType()),
		Fingerprint:     event.Fingerprint().Hex(),
		Account:         event.Account().Hex(),
		Existed:         event.Existed(),
		Timestamp:       event.Timestamp(),
		Category:        event.Category().String(),
		MetadataPointer: event.MetadataPointer(),
		BlockNumber:     int64(blockData.BlockNumber()),
		TxHash:          blockData.TxHash().Hex(),
		LogIndex:        int64(blockData.LogIndex()),
	}
}

// DbToRegistryEventData creates a model.RegistryEvent from a postgres RegistryEvent
func (r *RegistryEvent) DbToRegistryEventData() *model.RegistryEvent {
	blockData := model.NewBlockData(
		uint64(r.BlockNumber),
		common.HexToHash(r.TxHash),
		uint(r.LogIndex),
	)
	return model.NewRegistryEventFromStorage(
		uint64(r.Sequence),
		model.RegistryEventType(r.EventType),
		common.HexToHash(r.Fingerprint),
		common.HexToAddress(r.Account),
		r.Existed,
		r.Timestamp,
		model.Category(r.Category),
		r.MetadataPointer,
		blockData,
	)
}
