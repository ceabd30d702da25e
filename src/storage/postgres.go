package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"series-proxy/src/helpers"
	"series-proxy/src/logger"
	"series-proxy/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema is named after the running binary
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schemaName(exe),
		Logger: log,
	}, nil
}

func schemaName(exe string) string {
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, `"`, "")
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewDatabaseError("failed to open postgres", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("failed to ping postgres", err)
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."fetch_log"`, d.Schema)
}

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			source TEXT,
			series_id TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			observation_count INTEGER,
			latest_date TEXT,
			latest_value TEXT,
			fetched_at BIGINT NOT NULL
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create fetch_log: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS fetch_log_series_idx ON %s (series_id, fetched_at DESC)`, d.table())
	if _, err := d.DB.Exec(index); err != nil {
		return fmt.Errorf("failed to index fetch_log: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveFetchRecords(records []models.MFetchRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, request_id, source, series_id, status, error, observation_count, latest_date, latest_value, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, d.table())
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(r.ID, r.RequestID, r.Source, r.SeriesID, r.Status, r.Error,
			r.ObservationCount, r.LatestDate, r.LatestValue, r.FetchedAt.UTC().UnixMilli())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RecentFetches(seriesID string, limit int) ([]models.MFetchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT id, request_id, source, series_id, status, error, observation_count, latest_date, latest_value, fetched_at
		FROM %s
		WHERE series_id = $1
		ORDER BY fetched_at DESC, id
		LIMIT $2
	`, d.table())
	rows, err := d.DB.Query(query, seriesID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	d.Logger.Debug("Cleaning up fetch records older than %d days (fetched_at < %d)", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE fetched_at < $1`, d.table()), cutoff); err != nil {
		d.Logger.Error("Cleanup fetch_log error: %v", err)
		return err
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
