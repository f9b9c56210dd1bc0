package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
)

const (
	insertQuery = `
        INSERT INTO videos (
            id, video_id, url, title, uploader, duration,
            status, audio_path, transcript_path, error,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            video_id = excluded.video_id,
            title = excluded.title,
            uploader = excluded.uploader,
            duration = excluded.duration,
            status = excluded.status,
            audio_path = excluded.audio_path,
            transcript_path = excluded.transcript_path,
            error = excluded.error,
            updated_at = excluded.updated_at
    `

	getQuery = `
        SELECT id, video_id, url, title, uploader, duration,
               status, audio_path, transcript_path, error,
               created_at, updated_at
        FROM videos WHERE id = ?
    `

	getByURLQuery = `
        SELECT id, video_id, url, title, uploader, duration,
               status, audio_path, transcript_path, error,
               created_at, updated_at
        FROM videos WHERE url = ?
    `

	getByVideoIDQuery = `
        SELECT id, video_id, url, title, uploader, duration,
               status, audio_path, transcript_path, error,
               created_at, updated_at
        FROM videos WHERE video_id = ?
        ORDER BY updated_at DESC
        LIMIT 1
    `
)

type PreparedStatements struct {
	insert       *sql.Stmt
	get          *sql.Stmt
	getByURL     *sql.Stmt
	getByVideoID *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	var err error

	if stmts.insert, err = db.PrepareContext(ctx, insertQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare insert statement")
	}

	if stmts.get, err = db.PrepareContext(ctx, getQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare get statement")
	}

	if stmts.getByURL, err = db.PrepareContext(ctx, getByURLQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare getByURL statement")
	}

	if stmts.getByVideoID, err = db.PrepareContext(ctx, getByVideoIDQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare getByVideoID statement")
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	var errs []error

	statements := [...]*sql.Stmt{
		stmts.insert,
		stmts.get,
		stmts.getByURL,
		stmts.getByVideoID,
	}

	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close prepared statements: %v", errs)
	}

	return nil
}
