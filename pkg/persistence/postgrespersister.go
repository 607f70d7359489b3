// Package persistence contains components to interact with the DB
package persistence // import "github.com/joincivil/civil-content-registry/pkg/persistence"

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

	// driver for postgresql
	_ "github.com/lib/pq"
)

// NewPostgresPersister creates a new postgres persister
func NewPostgresPersister(host string, port int, user string, password string,
	dbname string) (*PostgresPersister, error) {
	pgPersister := &PostgresPersister{tables: postgres.DefaultTableNames()}
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
	db, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		return pgPersister, errors.Wrap(err, "error connecting to sqlx")
	}
	pgPersister.db = db
	return pgPersister, nil
}

// PostgresPersister holds the DB connection and persistence. Every mutating
// method runs in a single transaction so the registry invariants hold across
// processes sharing the database.
type PostgresPersister struct {
	db     *sqlx.DB
	tables postgres.TableNames
}

// CreateTables creates the tables for the registry if they don't exist
func (p *PostgresPersister) CreateTables() error {
	for _, schema := range p.tables.Schemas() {
		_, err := p.db.Exec(schema)
		if err != nil {
			return errors.Wrap(err, "error creating registry tables in postgres")
		}
	}
	return nil
}

// Close closes the DB connection
func (p *PostgresPersister) Close() error {
	return p.db.Close()
}

// CreateContentRecord creates a new content record and applies its effects
func (p *PostgresPersister) CreateContentRecord(record *model.ContentRecord,
	blockData model.BlockData) error {
	tx, err := p.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "error starting transaction")
	}
	defer tx.Rollback() // nolint: errcheck

	// Holding the state row orders this insert against SetPaused in other processes
	paused := false
	err = tx.Get(&paused, fmt.Sprintf("SELECT paused FROM %s WHERE id = 1 FOR UPDATE;",
		p.tables.RegistryState))
	if err != nil {
		return errors.Wrap(err, "error locking registry state")
	}
	if paused && blockData == (model.BlockData{}) {
		return model.ErrSystemPaused
	}

	result, err := tx.NamedExec(p.createContentRecordQuery(), postgres.NewContentRecord(record))
	if err != nil {
		return errors.Wrap(err, "error saving content record to table")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error checking content record insert")
	}
	if rows == 0 {
		return model.ErrDuplicateFingerprint
	}

	_, err = tx.Exec(p.creditReputationQuery(), record.Publisher().Hex(), 1, 0,
		model.RegistrationScore)
	if err != nil {
		return errors.Wrap(err, "error crediting registration")
	}
	_, err = tx.Exec(fmt.Sprintf(
		"UPDATE %s SET total_registrations = total_registrations + 1 WHERE id = 1;",
		p.tables.RegistryState))
	if err != nil {
		return errors.Wrap(err, "error incrementing registration counter")
	}
	err = p.saveRegistryEvent(tx, model.NewContentRegisteredEvent(record, blockData))
	if err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "error committing content record")
}

// ContentRecord retrieves the record for a fingerprint
func (p *PostgresPersister) ContentRecord(fingerprint common.Hash) (*model.ContentRecord, error) {
	dbRecord, err := p.contentRecordByFingerprint(p.db, fingerprint)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPersisterNoResults
		}
		return nil, errors.Wrap(err, "wasn't able to get content record from postgres table")
	}
	return dbRecord.DbToContentRecordData(), nil
}

// RecordVerification appends a verified event and credits the owner on a hit
func (p *PostgresPersister) RecordVerification(fingerprint common.Hash, caller common.Address,
	timestamp int64, blockData model.BlockData) (*model.ContentRecord, error) {
	tx, err := p.db.Beginx()
	if err != nil {
		return nil, errors.Wrap(err, "error starting transaction")
	}
	defer tx.Rollback() // nolint: errcheck

	var record *model.ContentRecord
	dbRecord, err := p.contentRecordByFingerprint(tx, fingerprint)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, errors.Wrap(err, "wasn't able to get content record from postgres table")
	default:
		record = dbRecord.DbToContentRecordData()
		_, err = tx.Exec(p.creditReputationQuery(), record.Publisher().Hex(), 0, 1,
			model.VerificationScore)
		if err != nil {
			return nil, errors.Wrap(err, "error crediting verification")
		}
	}

	event := model.NewContentVerifiedEvent(fingerprint, record != nil, caller, timestamp, blockData)
	err = p.saveRegistryEvent(tx, event)
	if err != nil {
		return nil, err
	}
	err = tx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "error committing verification")
	}
	return record, nil
}

// PublisherContent returns the fingerprints registered by publisher in order
func (p *PostgresPersister) PublisherContent(publisher common.Address) ([]common.Hash, error) {
	dbFingerprints := []string{}
	queryString := fmt.Sprintf("SELECT fingerprint FROM %s WHERE publisher=$1 ORDER BY id;",
		p.tables.ContentRecord)
	err := p.db.Select(&dbFingerprints, queryString, publisher.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "wasn't able to get publisher content")
	}
	fingerprints := make([]common.Hash, len(dbFingerprints))
	for i, fp := range dbFingerprints {
		fingerprints[i] = common.HexToHash(fp)
	}
	return fingerprints, nil
}

// PublisherReputation returns the reputation of publisher
func (p *PostgresPersister) PublisherReputation(publisher common.Address) (*model.PublisherReputation, error) {
	dbRep := postgres.PublisherReputation{}
	queryString := fmt.Sprintf("SELECT publisher, total_registrations, verification_count, "+
		"reputation_score FROM %s WHERE publisher=$1;", p.tables.PublisherReputation)
	err := p.db.Get(&dbRep, queryString, publisher.Hex())
	if err != nil {
		if err == sql.ErrNoRows {
			return model.NewPublisherReputation(publisher, 0, 0, 0), nil
		}
		return nil, errors.Wrap(err, "wasn't able to get publisher reputation")
	}
	return dbRep.DbToPublisherReputationData(), nil
}

// TotalRegistrations returns the global registration counter
func (p *PostgresPersister) TotalRegistrations() (uint64, error) {
	state, err := p.registryState()
	if err != nil {
		return 0, err
	}
	return uint64(state.TotalRegistrations), nil
}

// RecentContentRecords returns up to count records, newest first
func (p *PostgresPersister) RecentContentRecords(count int) ([]*model.ContentRecord, error) {
	if count <= 0 {
		return []*model.ContentRecord{}, nil
	}
	fields, _ := postgres.GetAllStructFieldsForQuery(postgres.ContentRecord{}, false)
	queryString := fmt.Sprintf("SELECT %s FROM %s ORDER BY id DESC LIMIT $1;", fields, // nolint: gosec
		p.tables.ContentRecord)
	dbRecords := []postgres.ContentRecord{}
	err := p.db.Select(&dbRecords, queryString, count)
	if err != nil {
		return nil, errors.Wrap(err, "wasn't able to get recent content records")
	}
	records := make([]*model.ContentRecord, len(dbRecords))
	for i := range dbRecords {
		records[i] = dbRecords[i].DbToContentRecordData()
	}
	return records, nil
}

// RegistryEvents returns events in log order matching the criteria
func (p *PostgresPersister) RegistryEvents(criteria *model.RegistryEventCriteria) ([]*model.RegistryEvent, error) {
	queryString := p.registryEventsQuery(criteria)
	nstmt, err := p.db.PrepareNamed(queryString)
	if err != nil {
		return nil, errors.Wrap(err, "error preparing registry events query")
	}
	defer nstmt.Close() // nolint: errcheck
	dbEvents := []postgres.RegistryEvent{}
	err = nstmt.Select(&dbEvents, criteria)
	if err != nil {
		return nil, errors.Wrap(err, "wasn't able to get registry events")
	}
	events := make([]*model.RegistryEvent, len(dbEvents))
	for i := range dbEvents {
		events[i] = dbEvents[i].DbToRegistryEventData()
	}
	return events, nil
}

// LatestTimestamp returns the timestamp of the newest record
func (p *PostgresPersister) LatestTimestamp() (int64, error) {
	var ts int64
	queryString := fmt.Sprintf("SELECT COALESCE(MAX(timestamp), 0) FROM %s;", p.tables.ContentRecord)
	err := p.db.Get(&ts, queryString)
	if err != nil {
		return 0, errors.Wrap(err, "wasn't able to get latest timestamp")
	}
	return ts, nil
}

// Paused returns the pause flag
func (p *PostgresPersister) Paused() (bool, error) {
	state, err := p.registryState()
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

// SetPaused sets the pause flag
func (p *PostgresPersister) SetPaused(paused bool) error {
	queryString := fmt.Sprintf("UPDATE %s SET paused=$1 WHERE id = 1;", p.tables.RegistryState)
	_, err := p.db.Exec(queryString, paused)
	if err != nil {
		return errors.Wrap(err, "error updating paused flag")
	}
	return nil
}

// LastProcessedBlockForCron returns the last block number the indexer processed
func (p *PostgresPersister) LastProcessedBlockForCron() (uint64, error) {
	cron, err := p.cronData()
	if err != nil {
		return 0, err
	}
	return uint64(cron.LastBlock), nil
}

// UpdateLastProcessedBlockForCron updates the last processed block number
func (p *PostgresPersister) UpdateLastProcessedBlockForCron(blockNumber uint64) error {
	return p.updateCronField("last_block", int64(blockNumber))
}

// EventHashesOfLastBlockForCron returns the event hashes seen at the last block
func (p *PostgresPersister) EventHashesOfLastBlockForCron() ([]string, error) {
	cron, err := p.cronData()
	if err != nil {
		return nil, err
	}
	return postgres.StringToEventHashes(cron.EventHashes), nil
}

// UpdateEventHashesForCron updates the event hashes seen at the last block
func (p *PostgresPersister) UpdateEventHashesForCron(eventHashes []string) error {
	return p.updateCronField("event_hashes", postgres.EventHashesToString(eventHashes))
}

// TimestampOfLastRunForCron returns the timestamp of the last ingest run
func (p *PostgresPersister) TimestampOfLastRunForCron() (int64, error) {
	cron, err := p.cronData()
	if err != nil {
		return 0, err
	}
	return cron.LastRunTimestamp, nil
}

// UpdateTimestampOfLastRunForCron updates the timestamp of the last ingest run
func (p *PostgresPersister) UpdateTimestampOfLastRunForCron(timestamp int64) error {
	return p.updateCronField("last_run_timestamp", timestamp)
}

func (p *PostgresPersister) contentRecordByFingerprint(q sqlx.Queryer,
	fingerprint common.Hash) (*postgres.ContentRecord, error) {
	fields, _ := postgres.GetAllStructFieldsForQuery(postgres.ContentRecord{}, false)
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE fingerprint=$1;", fields, // nolint: gosec
		p.tables.ContentRecord)
	dbRecord := &postgres.ContentRecord{}
	err := sqlx.Get(q, dbRecord, queryString, fingerprint.Hex())
	return dbRecord, err
}

func (p *PostgresPersister) createContentRecordQuery() string {
	fields, colonFields := postgres.GetAllStructFieldsForQuery(postgres.ContentRecord{}, true)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (fingerprint) DO NOTHING;", // nolint: gosec
		p.tables.ContentRecord, fields, colonFields)
}

func (p *PostgresPersister) creditReputationQuery() string {
	table := p.tables.PublisherReputation
	return fmt.Sprintf("INSERT INTO %s (publisher, total_registrations, verification_count, reputation_score) "+
		"VALUES ($1, $2, $3, $4) ON CONFLICT (publisher) DO UPDATE SET "+
		"total_registrations = %s.total_registrations + EXCLUDED.total_registrations, "+
		"verification_count = %s.verification_count + EXCLUDED.verification_count, "+
		"reputation_score = %s.reputation_score + EXCLUDED.reputation_score;",
		table, table, table, table)
}

func (p *PostgresPersister) saveRegistryEvent(tx *sqlx.Tx, event *model.RegistryEvent) error {
	queryString := fmt.Sprintf("INSERT INTO %s (event_type, fingerprint, account, existed, timestamp, "+
		"category, metadata_pointer, block_number, tx_hash, log_index) VALUES (:event_type, :fingerprint, "+
		":account, :existed, :timestamp, :category, :metadata_pointer, :block_number, :tx_hash, :log_index);",
		p.tables.RegistryEvent)
	_, err := tx.NamedExec(queryString, postgres.NewRegistryEvent(event))
	if err != nil {
		return errors.Wrap(err, "error saving registry event to table")
	}
	return nil
}

func (p *PostgresPersister) registryEventsQuery(criteria *model.RegistryEventCriteria) string {
	queryBuf := strings.Builder{}
	queryBuf.WriteString(fmt.Sprintf("SELECT * FROM %s WHERE sequence > :from_sequence", // nolint: gosec
		p.tables.RegistryEvent))
	if criteria.EventType != "" {
		queryBuf.WriteString(" AND event_type = :event_type")
	}
	queryBuf.WriteString(" ORDER BY sequence")
	if criteria.Count > 0 {
		queryBuf.WriteString(" LIMIT :count")
	}
	queryBuf.WriteString(";")
	return queryBuf.String()
}

func (p *PostgresPersister) registryState() (*postgres.RegistryState, error) {
	state := &postgres.RegistryState{}
	queryString := fmt.Sprintf("SELECT total_registrations, paused FROM %s WHERE id = 1;",
		p.tables.RegistryState)
	err := p.db.Get(state, queryString)
	if err != nil {
		return nil, errors.Wrap(err, "wasn't able to get registry state")
	}
	return state, nil
}

func (p *PostgresPersister) cronData() (*postgres.CronData, error) {
	cron := &postgres.CronData{}
	queryString := fmt.Sprintf("SELECT last_block, event_hashes, last_run_timestamp FROM %s WHERE id = 1;",
		p.tables.Cron)
	err := p.db.Get(cron, queryString)
	if err != nil {
		return nil, errors.Wrap(err, "wasn't able to get cron data")
	}
	return cron, nil
}

func (p *PostgresPersister) updateCronField(field string, value interface{}) error {
	queryString := fmt.Sprintf("UPDATE %s SET %s=$1 WHERE id = 1;", p.tables.Cron, field) // nolint: gosec
	_, err := p.db.Exec(queryString, value)
	if err != nil {
		return errors.Wrapf(err, "error updating cron %v", field)
	}
	return nil
}
