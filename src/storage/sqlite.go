package storage

import (
	"database/sql"
	"fmt"
	"time"

	"series-proxy/src/helpers"
	"series-proxy/src/logger"
	"series-proxy/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("failed to open sqlite", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("failed to ping sqlite", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		d.Logger.Warning("Failed to set busy timeout: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS fetch_log (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			source TEXT,
			series_id TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			observation_count INTEGER,
			latest_date TEXT,
			latest_value TEXT,
			fetched_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create fetch_log: %w", err)
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_fetch_log_series ON fetch_log (series_id, fetched_at DESC)`); err != nil {
		return fmt.Errorf("failed to index fetch_log: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveFetchRecords(records []models.MFetchRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO fetch_log (id, request_id, source, series_id, status, error, observation_count, latest_date, latest_value, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
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

func (d *AsyncSQLiteDB) RecentFetches(seriesID string, limit int) ([]models.MFetchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.DB.Query(`
		SELECT id, request_id, source, series_id, status, error, observation_count, latest_date, latest_value, fetched_at
		FROM fetch_log
		WHERE series_id = ?
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT ?
	`, seriesID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	res, err := d.DB.Exec("DELETE FROM fetch_log WHERE fetched_at < ?", cutoff)
	if err != nil {
		d.Logger.Error("Cleanup fetch_log error: %v", err)
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Cleanup removed %d fetch records older than %d days", n, retentionDays)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// scanRecords reads fetch_log rows in the column order used by both backends.
func scanRecords(rows *sql.Rows) ([]models.MFetchRecord, error) {
	var out []models.MFetchRecord
	for rows.Next() {
		var (
			r                                          models.MFetchRecord
			requestID, source, errMsg, latestDate, val sql.NullString
			count                                      sql.NullInt64
			fetchedAt                                  int64
		)
		if err := rows.Scan(&r.ID, &requestID, &source, &r.SeriesID, &r.Status, &errMsg, &count, &latestDate, &val, &fetchedAt); err != nil {
			return nil, err
		}
		r.RequestID = requestID.String
		r.Source = source.String
		r.Error = errMsg.String
		r.ObservationCount = int(count.Int64)
		r.LatestDate = latestDate.String
		r.LatestValue = val.String
		r.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
