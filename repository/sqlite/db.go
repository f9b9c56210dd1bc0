package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
    id TEXT PRIMARY KEY,
    video_id TEXT NOT NULL DEFAULT '',
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    uploader TEXT NOT NULL DEFAULT '',
    duration INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    audio_path TEXT NOT NULL DEFAULT '',
    transcript_path TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_videos_url ON videos(url);
CREATE INDEX IF NOT EXISTS idx_videos_video_id ON videos(video_id);
CREATE INDEX IF NOT EXISTS idx_videos_status ON videos(status);
`

type DBConfig struct {
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	PrepareTimeout     time.Duration
}

func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxConnections:     10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
		PrepareTimeout:     30 * time.Second,
	}
}

// DB wraps the sql handle together with the prepared statement set.
type DB struct {
	*sql.DB
	statements *PreparedStatements
}

func InitDB(dbPath string) (*DB, error) {
	return InitDBWithConfig(dbPath, DefaultDBConfig())
}

func InitDBWithConfig(dbPath string, config DBConfig) (*DB, error) {
	const op = "sqlite.InitDB"

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Internal(op, err, "failed to create database directory")
	}

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to open database")
	}

	sqlDB.SetMaxOpenConns(config.MaxConnections)
	sqlDB.SetMaxIdleConns(config.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := configurePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := execSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.PrepareTimeout)
	defer cancel()

	statements := &PreparedStatements{}
	if err := statements.Prepare(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &DB{DB: sqlDB, statements: statements}, nil
}

func (db *DB) Close() error {
	if err := db.statements.Close(); err != nil {
		db.DB.Close()
		return err
	}
	return db.DB.Close()
}

func configurePragmas(db *sql.DB) error {
	const op = "sqlite.configurePragmas"

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -2000", // Use up to 2MB of memory for cache
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to set pragma: %s", pragma))
		}
	}

	return nil
}

func execSchema(db *sql.DB) error {
	const op = "sqlite.execSchema"

	statements := strings.Split(schema, ";")

	tx, err := db.Begin()
	if err != nil {
		return errors.Internal(op, err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := tx.Exec(stmt); err != nil {
			return errors.Internal(
				op,
				err,
				fmt.Sprintf("failed to execute schema statement: %s", stmt),
			)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Internal(op, err, "failed to commit schema transaction")
	}

	return nil
}
