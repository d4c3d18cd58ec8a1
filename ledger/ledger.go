// Package ledger defines the append-only, owner-authorized version log that
// is the source of truth for grade series ordering.
//
// A series is the version history for one (teacher, student, enrollment,
// course, semester) relationship. Versions are immutable once appended and
// numbered 1..N with no gaps; only the recorded teacher may append. There is
// no delete or rollback operation.
package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownSeries   = errors.New("ledger: unknown series")
	ErrUnauthorized    = errors.New("ledger: editor is not the series teacher")
	ErrAlreadyExists   = errors.New("ledger: series already exists")
	ErrIndexOutOfRange = errors.New("ledger: version index out of range")
)

// SeriesKey identifies the immutable participant/course tuple of a series.
// Identity fields are compared in normalized form.
type SeriesKey struct {
	Teacher      string
	Student      string
	EnrollmentID string
	CourseCode   string
	SemesterCode string
}

// Series describes the immutable fields of a series plus its head position.
type Series struct {
	SeriesID       string
	Teacher        string
	Student        string
	EnrollmentID   string
	CourseCode     string
	SemesterCode   string
	CurrentVersion int
}

// VersionRecord is one committed grade snapshot. Once appended it is never
// edited or deleted.
type VersionRecord struct {
	VersionNumber int
	ContentID     string
	Timestamp     time.Time
	Editor        string
	Reason        string
}

// Ledger is the contract a series store must satisfy.
//
// Implementations must linearize concurrent AppendVersion calls per series
// so version numbers are assigned without gaps or duplicates. Reads never
// block writers and may observe a slightly stale head.
type Ledger interface {
	// CreateSeries starts a new series at version 1 with contentID as the
	// first record. It fails with ErrAlreadyExists when an equivalent series
	// (same normalized key) already exists.
	CreateSeries(ctx context.Context, key SeriesKey, contentID, reason string) (seriesID string, err error)

	// AppendVersion atomically assigns the next version number. It fails
	// with ErrUnauthorized unless editor is the series teacher and with
	// ErrUnknownSeries when seriesID does not exist.
	AppendVersion(ctx context.Context, seriesID, editor, contentID, reason string) (versionNumber int, err error)

	// FindSeries returns the id of the series matching key, or
	// ErrUnknownSeries.
	FindSeries(ctx context.Context, key SeriesKey) (string, error)

	// Describe returns the series' immutable fields and current head position.
	Describe(ctx context.Context, seriesID string) (Series, error)

	// Head returns the latest version record.
	Head(ctx context.Context, seriesID string) (VersionRecord, error)

	// Version returns the record at a 0-based history index. It fails with
	// ErrIndexOutOfRange when index >= VersionCount.
	Version(ctx context.Context, seriesID string, index int) (VersionRecord, error)

	// VersionCount returns the number of committed versions.
	VersionCount(ctx context.Context, seriesID string) (int, error)

	// ListByStudent and ListByTeacher return the ids of every series where
	// the identity matches the respective field (normalized comparison).
	ListByStudent(ctx context.Context, student string) ([]string, error)
	ListByTeacher(ctx context.Context, teacher string) ([]string, error)
}
