package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		columns TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		published_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets(name);
	CREATE TABLE IF NOT EXISTS dataset_rows (
		dataset_id INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		row_index INTEGER NOT NULL,
		cells TEXT NOT NULL,
		PRIMARY KEY (dataset_id, row_index)
	);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertDataset stores a parsed dataset under name. Earlier imports with the
// same name are kept; LatestDataset returns the newest.
func (db *DB) InsertDataset(ctx context.Context, name string, ds *dataset.Dataset) (int64, error) {
	columns, err := json.Marshal(ds.Columns())
	if err != nil {
		return 0, fmt.Errorf("encoding columns: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, columns, row_count, created_at) VALUES (?, ?, ?, ?)`,
		name, string(columns), ds.Len(), createdAt)
	if err != nil {
		return 0, fmt.Errorf("inserting dataset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading dataset id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dataset_rows (dataset_id, row_index, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < ds.Len(); i++ {
		cells, err := json.Marshal(ds.Row(i))
		if err != nil {
			return 0, fmt.Errorf("encoding row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, string(cells)); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing dataset: %w", err)
	}
	return id, nil
}

// GetDataset returns the metadata for one dataset, or nil if it does not exist
func (db *DB) GetDataset(ctx context.Context, id int64) (*models.DatasetInfo, error) {
	row := db.conn.QueryRowContext(ctx, `
	SELECT id, name, columns, row_count, created_at, published_at
	FROM datasets
	WHERE id = ?
	`, id)

	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return info, err
}

// LatestDataset loads the newest dataset stored under name. It returns nil
// values when nothing has been imported under that name.
func (db *DB) LatestDataset(ctx context.Context, name string) (*models.DatasetInfo, *dataset.Dataset, error) {
	row := db.conn.QueryRowContext(ctx, `
	SELECT id, name, columns, row_count, created_at, published_at
	FROM datasets
	WHERE name = ?
	ORDER BY id DESC
	LIMIT 1
	`, name)

	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	ds, err := db.loadRows(ctx, info)
	if err != nil {
		return nil, nil, err
	}
	return info, ds, nil
}

func (db *DB) loadRows(ctx context.Context, info *models.DatasetInfo) (*dataset.Dataset, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT cells FROM dataset_rows WHERE dataset_id = ? ORDER BY row_index`, info.ID)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	records := make([][]string, 0, info.Rows)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
		records = append(records, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dataset.New(info.Columns, records)
}

// ListDatasets returns every stored dataset, newest first
func (db *DB) ListDatasets(ctx context.Context) ([]models.DatasetInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
	SELECT id, name, columns, row_count, created_at, published_at
	FROM datasets
	ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var results []models.DatasetInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *info)
	}

	return results, rows.Err()
}

// MarkPublished records that the dataset's summary was sent to Home Assistant
func (db *DB) MarkPublished(ctx context.Context, id int64) error {
	query := `UPDATE datasets SET published_at = ? WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("marking dataset as published: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("dataset %d not found", id)
	}
	return nil
}

// Source returns a dataset source that reads the newest import stored under name
func (db *DB) Source(name string) dataset.Source {
	return storeSource{db: db, name: name}
}

type storeSource struct {
	db   *DB
	name string
}

func (s storeSource) Name() string { return s.name }
func (s storeSource) Kind() string { return "store" }

func (s storeSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	_, ds, err := s.db.LatestDataset(ctx, s.name)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("no dataset named %q has been imported", s.name)
	}
	return ds, nil
}

// ImportSource returns a dataset source pinned to one stored import. Later
// imports under the same name do not change what it loads.
func (db *DB) ImportSource(info *models.DatasetInfo) dataset.Source {
	return importSource{db: db, info: info}
}

type importSource struct {
	db   *DB
	info *models.DatasetInfo
}

func (s importSource) Name() string { return s.info.Name }
func (s importSource) Kind() string { return "store" }

func (s importSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	return s.db.loadRows(ctx, s.info)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(s scanner) (*models.DatasetInfo, error) {
	var info models.DatasetInfo
	var columns, createdAt string
	var publishedAt sql.NullString

	if err := s.Scan(&info.ID, &info.Name, &columns, &info.Rows, &createdAt, &publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning dataset: %w", err)
	}

	if err := json.Unmarshal([]byte(columns), &info.Columns); err != nil {
		return nil, fmt.Errorf("decoding columns: %w", err)
	}

	var err error
	info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	if publishedAt.Valid && publishedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, publishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing published_at: %w", err)
		}
		info.PublishedAt = &t
	}

	return &info, nil
}
