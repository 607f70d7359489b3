package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	// PublisherReputationTableName is the name of the publisher reputation table
	PublisherReputationTableName = "publisher_reputation"
)

// PublisherReputationSchemaString returns the query to create this table
// NOTE: counters only ever increase, BIGINT is plenty
func PublisherReputationSchemaString(tableName string) string {
	schema := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            publisher TEXT PRIMARY KEY,
            total_registrations BIGINT NOT NULL DEFAULT 0,
            verification_count BIGINT NOT NULL DEFAULT 0,
            reputation_score BIGINT NOT NULL DEFAULT 0
        );
    `, tableName)
	return schema
}

// PublisherReputation is the model definition for the reputation table
type PublisherReputation struct {
	Publisher string `db:"publisher"`

	TotalRegistrations int64 `db:"total_registrations"`

	VerificationCount int64 `db:"verification_count"`

	ReputationScore int64 `db:"reputation_score"`
}

// DbToPublisherReputationData creates a model.PublisherReputation from a
// postgres PublisherReputation
func (p *PublisherReputation) DbToPublisherReputationData() *model.PublisherReputation {
	return model.NewPublisherReputation(
		common.HexToAddress(p.Publisher),
		uint64(p.TotalRegistrations),
		uint64(p.VerificationCount),
		uint64(p.ReputationScore),
	)
}
