// Package grade orchestrates grade submission and retrieval: payloads are
// sealed into recipient envelopes, persisted in content-addressed storage,
// and recorded in the append-only series ledger.
package grade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudflare/circl/kem"

	"github.com/gradevault/gradevault/cidutil"
	"github.com/gradevault/gradevault/envelope"
	"github.com/gradevault/gradevault/identity"
	"github.com/gradevault/gradevault/ledger"
	"github.com/gradevault/gradevault/storage"
)

// Role selects which participant field a listing matches on.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Service is the only caller of the envelope, storage and ledger layers.
// It holds no per-call state; private keys are passed in per call and
// discarded after use.
type Service struct {
	Ledger ledger.Ledger
	Blobs  storage.BlobStore
	Keys   KeyResolver
}

// SubmitRequest carries one grade submission or correction.
type SubmitRequest struct {
	Teacher      string
	Student      string
	EnrollmentID string
	CourseCode   string
	SemesterCode string
	Marks        Marks
	Reason       string

	// ComputedAt defaults to the current time when zero.
	ComputedAt time.Time
}

// SubmitResult reports where the committed version landed.
type SubmitResult struct {
	SeriesID      string
	ContentID     string
	VersionNumber int
}

// HeadInfo is the series head metadata exposed to callers.
type HeadInfo struct {
	SeriesID       string
	CourseCode     string
	SemesterCode   string
	CurrentVersion int
	HeadContentID  string
	HeadTimestamp  time.Time
	HeadReason     string
}

// Submit seals the marks payload for both parties, stores the envelope and
// records the content id as the next version of the series (creating the
// series on first submission).
//
// Submission is not atomic end-to-end: if the ledger write fails after a
// successful store, the stored envelope is left as an orphan blob. That is
// harmless (content-addressed storage is never deleted) and the caller
// simply retries with a fresh Submit.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := validateSubmit(req); err != nil {
		return SubmitResult{}, err
	}

	teacherKey, err := s.Keys.PublicKey(ctx, req.Teacher)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("grade: resolve teacher key for %s: %w", req.Teacher, err)
	}
	studentKey, err := s.Keys.PublicKey(ctx, req.Student)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("grade: resolve student key for %s: %w", req.Student, err)
	}

	computedAt := req.ComputedAt
	if computedAt.IsZero() {
		computedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(MarksPayload{
		EnrollmentID: req.EnrollmentID,
		Marks:        req.Marks,
		ComputedAt:   computedAt,
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("grade: marshal payload: %w", err)
	}

	env, err := envelope.Seal(payload, []envelope.RecipientKey{
		{ID: req.Teacher, PublicKey: teacherKey},
		{ID: req.Student, PublicKey: studentKey},
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("grade: seal envelope: %w", err)
	}
	wire, err := envelope.Encode(env)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("grade: encode envelope: %w", err)
	}

	contentID, err := s.Blobs.Put(wire)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("grade: store envelope: %w", err)
	}

	key := ledger.SeriesKey{
		Teacher:      req.Teacher,
		Student:      req.Student,
		EnrollmentID: req.EnrollmentID,
		CourseCode:   req.CourseCode,
		SemesterCode: req.SemesterCode,
	}
	seriesID, version, err := s.record(ctx, key, contentID.String(), req.Teacher, req.Reason)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{SeriesID: seriesID, ContentID: contentID.String(), VersionNumber: version}, nil
}

// record commits the new content id: first submission creates the series,
// later ones append. A concurrent first submission can lose the create
// race; in that case the append path is taken against the winner's series.
func (s *Service) record(ctx context.Context, key ledger.SeriesKey, contentID, editor, reason string) (string, int, error) {
	seriesID, err := s.Ledger.FindSeries(ctx, key)
	switch {
	case errors.Is(err, ledger.ErrUnknownSeries):
		seriesID, err = s.Ledger.CreateSeries(ctx, key, contentID, reason)
		if err == nil {
			return seriesID, 1, nil
		}
		if !errors.Is(err, ledger.ErrAlreadyExists) {
			return "", 0, fmt.Errorf("grade: create series: %w", err)
		}
		seriesID, err = s.Ledger.FindSeries(ctx, key)
		if err != nil {
			return "", 0, fmt.Errorf("grade: find series after create race: %w", err)
		}
	case err != nil:
		return "", 0, fmt.Errorf("grade: find series: %w", err)
	}

	version, err := s.Ledger.AppendVersion(ctx, seriesID, editor, contentID, reason)
	if err != nil {
		return "", 0, fmt.Errorf("grade: append to series %s: %w", seriesID, err)
	}
	return seriesID, version, nil
}

// View fetches and decrypts one committed version for a viewer.
//
// The viewer's declared identity selects the recipient entry; when no entry
// matches (identity-format drift between callers), every wrapped key is
// tried as a fallback. Decryption failures are terminal for this attempt
// and never affect other versions of the same series.
func (s *Service) View(ctx context.Context, seriesID string, versionIndex int, viewerID string, viewerKey kem.PrivateKey) (*MarksPayload, error) {
	rec, err := s.Ledger.Version(ctx, seriesID, versionIndex)
	if err != nil {
		return nil, fmt.Errorf("grade: series %s version %d: %w", seriesID, versionIndex, err)
	}

	contentID, err := cidutil.Parse(rec.ContentID)
	if err != nil {
		return nil, fmt.Errorf("grade: series %s version %d: bad content id %q: %w", seriesID, versionIndex, rec.ContentID, err)
	}
	wire, err := s.Blobs.Get(contentID)
	if err != nil {
		return nil, fmt.Errorf("grade: series %s version %d: fetch envelope: %w", seriesID, versionIndex, err)
	}
	env, err := envelope.Decode(wire)
	if err != nil {
		return nil, fmt.Errorf("grade: series %s version %d: %w", seriesID, versionIndex, err)
	}

	payload, err := envelope.Open(env, viewerID, viewerKey)
	if envelope.IsKind(err, envelope.KindRecipient) {
		payload, err = envelope.OpenAny(env, viewerKey)
	}
	if err != nil {
		return nil, fmt.Errorf("grade: series %s version %d: %w", seriesID, versionIndex, err)
	}

	var out MarksPayload
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("grade: series %s version %d: decode payload: %w", seriesID, versionIndex, err)
	}
	return &out, nil
}

// Head returns the series head metadata without decrypting anything.
func (s *Service) Head(ctx context.Context, seriesID string) (HeadInfo, error) {
	series, err := s.Ledger.Describe(ctx, seriesID)
	if err != nil {
		return HeadInfo{}, fmt.Errorf("grade: series %s: %w", seriesID, err)
	}
	head, err := s.Ledger.Head(ctx, seriesID)
	if err != nil {
		return HeadInfo{}, fmt.Errorf("grade: series %s: %w", seriesID, err)
	}
	return HeadInfo{
		SeriesID:       series.SeriesID,
		CourseCode:     series.CourseCode,
		SemesterCode:   series.SemesterCode,
		CurrentVersion: series.CurrentVersion,
		HeadContentID:  head.ContentID,
		HeadTimestamp:  head.Timestamp,
		HeadReason:     head.Reason,
	}, nil
}

// List returns the series ids where the identity holds the given role.
func (s *Service) List(ctx context.Context, id string, role Role) ([]string, error) {
	switch role {
	case RoleTeacher:
		return s.Ledger.ListByTeacher(ctx, id)
	case RoleStudent:
		return s.Ledger.ListByStudent(ctx, id)
	default:
		return nil, fmt.Errorf("grade: unknown role %q", role)
	}
}

func validateSubmit(req SubmitRequest) error {
	switch {
	case identity.IsZero(req.Teacher):
		return errors.New("grade: teacher identity is required")
	case identity.IsZero(req.Student):
		return errors.New("grade: student identity is required")
	case req.EnrollmentID == "":
		return errors.New("grade: enrollment id is required")
	case req.CourseCode == "":
		return errors.New("grade: course code is required")
	case req.SemesterCode == "":
		return errors.New("grade: semester code is required")
	}
	return nil
}
