package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

import (
	"fmt"
)

const (
	// RegistryStateTableName is the name of the registry state table
	RegistryStateTableName = "registry_state"
)

// RegistryStateSchemaString returns the query to create this table
// NOTE: This table only is allowed to ever have 1 row, with id 1, and the row
// is created with the table
func RegistryStateSchemaString(tableName string) string {
	schema := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id INT PRIMARY KEY CHECK (id = 1),
            total_registrations BIGINT NOT NULL DEFAULT 0,
            paused BOOL NOT NULL DEFAULT FALSE
        );
        INSERT INTO %s (id) VALUES (1) ON CONFLICT DO NOTHING;
    `, tableName, tableName)
	return schema
}

// RegistryState is the model definition for the registry state table
type RegistryState struct {
	TotalRegistrations int64 `db:"total_registrations"`

	Paused bool `db:"paused"`
}
