package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	// ContentRecordTableName is the name of the content record table
	ContentRecordTableName = "content_record"
)

// ContentRecordSchemaString returns the query to create this table. The
// serial id preserves registration order for the per-publisher index.
func ContentRecordSchemaString(tableName string) string {
	schema := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id BIGSERIAL,
            fingerprint TEXT PRIMARY KEY,
            publisher TEXT NOT NULL,
            category TEXT NOT NULL,
            metadata_pointer TEXT NOT NULL,
            timestamp BIGINT NOT NULL
        );
        CREATE INDEX IF NOT EXISTS %s_publisher_idx ON %s (publisher, id);
    `, tableName, tableName, tableName)
	return schema
}

// ContentRecord is the model definition for the content record table
type ContentRecord struct {
	Fingerprint string `db:"fingerprint"`

	Publisher string `db:"publisher"`

	Category string `db:"category"`

	MetadataPointer string `db:"metadata_pointer"`

	Timestamp int64 `db:"timestamp"`
}

// NewContentRecord constructs a content record for DB from a model.ContentRecord
func NewContentRecord(record *model.ContentRecord) *ContentRecord {
	return &ContentRecord{
		Fingerprint:     record.Fingerprint().Hex(),
		Publisher:       record.Publisher().Hex(),
		Category:        record.Category().String(),
		MetadataPointer: record.MetadataPointer(),
		Timestamp:       record.Timestamp(),
	}
}

// DbToContentRecordData creates a model.ContentRecord from a postgres ContentRecord
func (c *ContentRecord) DbToContentRecordData() *model.ContentRecord {
	return model.NewContentRecord(
		common.HexToHash(c.Fingerprint),
		common.HexToAddress(c.Publisher),
		model.Category(c.Category),
		c.MetadataPointer,
		c.Timestamp,
	)
}
