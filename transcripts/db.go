// Package transcripts persists received meeting transcripts in SQLite, next
// to the vector index built from them.
package transcripts

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github/itish2003/meetassist/models"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

const CurrentSchemaVersion = 1

// Store manages the transcript database.
type Store struct {
	sqlDB *sql.DB
	path  string
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode=WAL&_pragma=synchronous=NORMAL&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{sqlDB: sqlDB, path: path}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

func (s *Store) migrate() error {
	var exists int
	if err := s.sqlDB.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if exists > 0 {
		var version int
		err := s.sqlDB.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
		if err == nil && version >= CurrentSchemaVersion {
			return nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get schema version: %w", err)
		}
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	tx, err := s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		CurrentSchemaVersion, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return tx.Commit()
}

// Save stores the raw payload and the normalized transcript in one
// transaction. t.ID and t.CreatedAt are filled in; a zero CreatedAt means now.
func (s *Store) Save(ctx context.Context, t *models.Transcript, raw string) error {
	if t == nil {
		return fmt.Errorf("transcript is nil")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	ts := t.CreatedAt.UTC().Format(time.RFC3339Nano)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO raw_meeting_transcripts
			(meeting_id, raw_data, transcript_format, source_platform, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.MeetingID, raw, t.TranscriptFormat, t.SourcePlatform, t.ContentHash, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert raw transcript: %w", err)
	}
	rawID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read raw transcript id: %w", err)
	}

	res, err = tx.ExecContext(ctx, `
		INSERT INTO meeting_transcripts (meeting_id, raw_id, full_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.MeetingID, rawID, t.FullText, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meeting transcript: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read meeting transcript id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}
	return nil
}

// List returns stored transcripts, oldest first. meetingID 0 lists all.
func (s *Store) List(ctx context.Context, meetingID int64) ([]models.Transcript, error) {
	query := `
		SELECT m.id, m.meeting_id, m.full_text, r.source_platform, r.transcript_format,
			r.content_hash, m.created_at
		FROM meeting_transcripts m
		JOIN raw_meeting_transcripts r ON r.id = m.raw_id`
	var args []any
	if meetingID != 0 {
		query += " WHERE m.meeting_id = ?"
		args = append(args, meetingID)
	}
	query += " ORDER BY m.id"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	defer rows.Close()

	out := []models.Transcript{}
	for rows.Next() {
		var t models.Transcript
		var createdAt string
		if err := rows.Scan(&t.ID, &t.MeetingID, &t.FullText, &t.SourcePlatform,
			&t.TranscriptFormat, &t.ContentHash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339Nano, strings.TrimSpace(createdAt)); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// HasContentHash reports whether a raw transcript with this hash was stored.
func (s *Store) HasContentHash(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM raw_meeting_transcripts WHERE content_hash = ?", hash,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up content hash: %w", err)
	}
	return n > 0, nil
}
