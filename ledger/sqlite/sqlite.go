// Package sqlite provides a durable Ledger backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gradevault/gradevault/identity"
	"github.com/gradevault/gradevault/ledger"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed ledger.Ledger. SQLite supports one writer at a
// time; the connection pool is capped at a single connection so appends to
// any series are serialized by the database itself, which gives the
// gap-free version numbering the contract requires.
type Store struct {
	db *sql.DB
}

var _ ledger.Ledger = (*Store)(nil)

// Open creates or opens a SQLite ledger database at the given path.
// Applies required pragmas and the schema automatically; safe to call on an
// existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) CreateSeries(ctx context.Context, key ledger.SeriesKey, contentID, reason string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	teacherNorm := identity.Normalize(key.Teacher)
	studentNorm := identity.Normalize(key.Student)

	var existing string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM series
		WHERE teacher_norm = ? AND student_norm = ? AND enrollment_id = ? AND course_code = ? AND semester_code = ?
	`, teacherNorm, studentNorm, key.EnrollmentID, key.CourseCode, key.SemesterCode).Scan(&existing)
	if err == nil {
		return "", ledger.ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("create series: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO series
		(id, teacher, student, teacher_norm, student_norm, enrollment_id, course_code, semester_code, current_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, id, key.Teacher, key.Student, teacherNorm, studentNorm, key.EnrollmentID, key.CourseCode, key.SemesterCode)
	if err != nil {
		return "", fmt.Errorf("create series: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO versions (series_id, version_number, content_id, created_at, editor, reason)
		VALUES (?, 1, ?, ?, ?, ?)
	`, id, contentID, now(), key.Teacher, reason)
	if err != nil {
		return "", fmt.Errorf("create series: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("create series: %w", err)
	}
	return id, nil
}

func (s *Store) AppendVersion(ctx context.Context, seriesID, editor, contentID, reason string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var teacherNorm string
	var current int
	err = tx.QueryRowContext(ctx, `
		SELECT teacher_norm, current_version FROM series WHERE id = ?
	`, seriesID).Scan(&teacherNorm, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrUnknownSeries
	}
	if err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}
	if identity.Normalize(editor) != teacherNorm {
		return 0, ledger.ErrUnauthorized
	}

	next := current + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO versions (series_id, version_number, content_id, created_at, editor, reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`, seriesID, next, contentID, now(), editor, reason)
	if err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE series SET current_version = ? WHERE id = ?
	`, next, seriesID)
	if err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}
	return next, nil
}

func (s *Store) FindSeries(ctx context.Context, key ledger.SeriesKey) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM series
		WHERE teacher_norm = ? AND student_norm = ? AND enrollment_id = ? AND course_code = ? AND semester_code = ?
	`, identity.Normalize(key.Teacher), identity.Normalize(key.Student),
		key.EnrollmentID, key.CourseCode, key.SemesterCode).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ledger.ErrUnknownSeries
	}
	if err != nil {
		return "", fmt.Errorf("find series: %w", err)
	}
	return id, nil
}

func (s *Store) Describe(ctx context.Context, seriesID string) (ledger.Series, error) {
	var out ledger.Series
	err := s.db.QueryRowContext(ctx, `
		SELECT id, teacher, student, enrollment_id, course_code, semester_code, current_version
		FROM series WHERE id = ?
	`, seriesID).Scan(&out.SeriesID, &out.Teacher, &out.Student, &out.EnrollmentID,
		&out.CourseCode, &out.SemesterCode, &out.CurrentVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Series{}, ledger.ErrUnknownSeries
	}
	if err != nil {
		return ledger.Series{}, fmt.Errorf("describe series: %w", err)
	}
	return out, nil
}

func (s *Store) Head(ctx context.Context, seriesID string) (ledger.VersionRecord, error) {
	rec, err := s.queryVersion(ctx, `
		SELECT version_number, content_id, created_at, editor, reason
		FROM versions WHERE series_id = ?
		ORDER BY version_number DESC LIMIT 1
	`, seriesID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.VersionRecord{}, ledger.ErrUnknownSeries
	}
	return rec, err
}

func (s *Store) Version(ctx context.Context, seriesID string, index int) (ledger.VersionRecord, error) {
	if index < 0 {
		return ledger.VersionRecord{}, ledger.ErrIndexOutOfRange
	}
	rec, err := s.queryVersion(ctx, `
		SELECT version_number, content_id, created_at, editor, reason
		FROM versions WHERE series_id = ? AND version_number = ?
	`, seriesID, index+1)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing series from a bad index.
		if _, derr := s.Describe(ctx, seriesID); derr != nil {
			return ledger.VersionRecord{}, derr
		}
		return ledger.VersionRecord{}, ledger.ErrIndexOutOfRange
	}
	return rec, err
}

func (s *Store) VersionCount(ctx context.Context, seriesID string) (int, error) {
	series, err := s.Describe(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	return series.CurrentVersion, nil
}

func (s *Store) ListByStudent(ctx context.Context, student string) ([]string, error) {
	return s.list(ctx, "student_norm", student)
}

func (s *Store) ListByTeacher(ctx context.Context, teacher string) ([]string, error) {
	return s.list(ctx, "teacher_norm", teacher)
}

func (s *Store) list(ctx context.Context, column, id string) ([]string, error) {
	// column is one of two fixed names; never caller-supplied.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM series WHERE `+column+` = ? ORDER BY id`, identity.Normalize(id))
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("list series: %w", err)
		}
		out = append(out, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return out, nil
}

func (s *Store) queryVersion(ctx context.Context, query string, args ...any) (ledger.VersionRecord, error) {
	var rec ledger.VersionRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.VersionNumber, &rec.ContentID, &createdAt, &rec.Editor, &rec.Reason)
	if err != nil {
		return ledger.VersionRecord{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return ledger.VersionRecord{}, fmt.Errorf("parse version timestamp: %w", err)
	}
	rec.Timestamp = ts
	return rec, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
