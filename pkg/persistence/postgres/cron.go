package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

import (
	"fmt"
	"strings"
)

const (
	// CronTableName is the name of the cron table
	CronTableName = "cron"

	eventHashSeparator = ","
)

// CronSchemaString returns the query to create this table
// NOTE: This table only is allowed to ever have 1 row, so insert a row with default values
func CronSchemaString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id INT PRIMARY KEY CHECK (id = 1),
            last_block BIGINT NOT NULL DEFAULT 0,
            event_hashes TEXT NOT NULL DEFAULT '',
            last_run_timestamp BIGINT NOT NULL DEFAULT 0
        );
        INSERT INTO %s (id) VALUES (1) ON CONFLICT DO NOTHING;
    `, tableName, tableName)
	return queryString
}

// CronData contains all the information related to cronjob that needs to be persisted in cron DB.
type CronData struct {
	LastBlock int64 `db:"last_block"`

	EventHashes string `db:"event_hashes"`

	LastRunTimestamp int64 `db:"last_run_timestamp"`
}

// EventHashesToString joins event hashes for storage
func EventHashesToString(hashes []string) string {
	return strings.Join(hashes, eventHashSeparator)
}

// StringToEventHashes splits stored event hashes, returning an empty slice
// for an empty string
func StringToEventHashes(hashes string) []string {
	if hashes == "" {
		return []string{}
	}
	return strings.Split(hashes, eventHashSeparator)
}
