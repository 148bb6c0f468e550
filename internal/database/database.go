package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"picpurge/internal/logging"
	"picpurge/internal/metrics"
)

// defaultTimeout bounds individual database operations.
const defaultTimeout = 5 * time.Second

// Store owns the single SQLite handle for the process lifetime. All
// writes are serialized through one connection; the analysis passes run
// strictly after the extraction phase has drained, so reads never race
// in-flight writes.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the picpurge database at dbPath and ensures the
// schema. dbPath may be ":memory:" for a run that keeps no on-disk state.
func New(ctx context.Context, dbPath string) (*Store, error) {
	logging.Debug("Database path: %s", dbPath)

	// WAL and busy_timeout match the single-writer access pattern;
	// _busy_timeout prevents spurious "database is locked" errors.
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer: one connection for the whole run. The insert buffer
	// and the analysis passes all funnel through it.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		device_make TEXT,
		device_model TEXT,
		lens_model TEXT,
		created_at TEXT NOT NULL,
		phash TEXT,
		thumbnail_ref TEXT,
		is_duplicate INTEGER NOT NULL DEFAULT 0,
		duplicate_of INTEGER,
		similar_group TEXT,
		is_recycled INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_images_content_hash ON images(content_hash);
	CREATE INDEX IF NOT EXISTS idx_images_phash ON images(phash);
	CREATE INDEX IF NOT EXISTS idx_images_is_duplicate ON images(is_duplicate);
	CREATE INDEX IF NOT EXISTS idx_images_is_recycled ON images(is_recycled);
	CREATE INDEX IF NOT EXISTS idx_images_file_path ON images(file_path);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBatch starts a transaction for batch operations. The caller is
// responsible for calling EndBatch when done.
func (s *Store) BeginBatch() (*sql.Tx, error) {
	// Transaction lifetime is managed by EndBatch, not a timeout; a
	// timeout context here would be cancelled as soon as this returns.
	return s.db.BeginTx(context.Background(), nil)
}

// EndBatch commits the transaction when err is nil, rolls back otherwise.
func (s *Store) EndBatch(tx *sql.Tx, err error) error {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	return tx.Commit()
}

const insertSQL = `
INSERT OR IGNORE INTO images (
	file_path, file_name, file_size, content_hash, width, height,
	device_make, device_model, lens_model, created_at, phash, thumbnail_ref
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertImage inserts one record, ignoring the insert when a live record
// for the same file path already exists (insert-if-absent semantics).
func (s *Store) InsertImage(rec *ImageRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_image", start, err) }()

	_, err = s.db.Exec(insertSQL, insertArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to insert image %s: %w", rec.FilePath, err)
	}
	return nil
}

// BatchInsert inserts all records in one transaction, all-or-nothing. Any
// failure rolls the whole batch back; per-path idempotence (INSERT OR
// IGNORE) means re-processed paths do not count as failures.
func (s *Store) BatchInsert(recs []ImageRecord) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("batch_insert", start, err) }()

	tx, err := s.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}

	for i := range recs {
		if _, execErr := tx.Exec(insertSQL, insertArgs(&recs[i])...); execErr != nil {
			err = fmt.Errorf("failed to insert %s: %w", recs[i].FilePath, execErr)
			return s.EndBatch(tx, err)
		}
	}

	err = s.EndBatch(tx, nil)
	if err != nil {
		return fmt.Errorf("failed to commit batch of %d: %w", len(recs), err)
	}
	return nil
}

func insertArgs(rec *ImageRecord) []interface{} {
	return []interface{}{
		rec.FilePath,
		rec.FileName,
		rec.FileSize,
		rec.ContentHash,
		rec.Width,
		rec.Height,
		rec.DeviceMake,
		rec.DeviceModel,
		rec.LensModel,
		rec.CreatedAt.Format(time.RFC3339),
		rec.PerceptualHash,
		rec.ThumbnailRef,
	}
}

// recordQuery records database query metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
