package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

// TableNames are the names of the registry tables. Tests use suffixed names so
// they do not collide with a running registry.
type TableNames struct {
	ContentRecord       string
	PublisherReputation string
	RegistryEvent       string
	RegistryState       string
	Cron                string
}

// DefaultTableNames returns the production table names
func DefaultTableNames() TableNames {
	return TableNames{
		ContentRecord:       ContentRecordTableName,
		PublisherReputation: PublisherReputationTableName,
		RegistryEvent:       RegistryEventTableName,
		RegistryState:       RegistryStateTableName,
		Cron:                CronTableName,
	}
}

// WithSuffix returns the table names with suffix appended to each
func (t TableNames) WithSuffix(suffix string) TableNames {
	return TableNames{
		ContentRecord:       t.ContentRecord + suffix,
		PublisherReputation: t.PublisherReputation + suffix,
		RegistryEvent:       t.RegistryEvent + suffix,
		RegistryState:       t.RegistryState + suffix,
		Cron:                t.Cron + suffix,
	}
}

// Schemas returns the create queries for every table, in creation order
func (t TableNames) Schemas() []string {
	return []string{
		ContentRecordSchemaString(t.ContentRecord),
		PublisherReputationSchemaString(t.PublisherReputation),
		RegistryEventSchemaString(t.RegistryEvent),
		RegistryStateSchemaString(t.RegistryState),
		CronSchemaString(t.Cron),
	}
}

// All returns every table name
func (t TableNames) All() []string {
	return []string{t.ContentRecord, t.PublisherReputation, t.RegistryEvent, t.RegistryState, t.Cron}
}
