package model

import (
	"errors"

	"github.com/gradevault/gradevault/envelope"
	"github.com/gradevault/gradevault/grade"
	"github.com/gradevault/gradevault/ledger"
	"github.com/gradevault/gradevault/storage"
)

// MapError projects an internal error onto the stable coded taxonomy.
// CodedErrors pass through untouched so layers can pre-code their own.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, ledger.ErrUnknownSeries):
		return NewError(ErrUnknownSeries, err.Error())
	case errors.Is(err, ledger.ErrUnauthorized):
		return NewError(ErrUnauthorized, err.Error())
	case errors.Is(err, ledger.ErrAlreadyExists):
		return NewError(ErrSeriesExists, err.Error())
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return NewError(ErrVersionRange, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return NewError(ErrNotFound, err.Error())
	case errors.Is(err, storage.ErrCIDMismatch):
		return NewError(ErrCIDMismatch, err.Error())
	case errors.Is(err, storage.ErrInvalidCID):
		return NewError(ErrInvalidCID, err.Error())
	case errors.Is(err, grade.ErrNoPublicKey):
		return NewError(ErrNoPublicKey, err.Error())
	case envelope.IsKind(err, envelope.KindRecipient):
		return NewError(ErrNoRecipient, err.Error())
	case envelope.IsKind(err, envelope.KindDecrypt):
		return NewError(ErrDecryptionFailed, err.Error())
	case envelope.IsKind(err, envelope.KindMalformed):
		return NewError(ErrMalformedEnvelope, err.Error())
	}
	return NewError(ErrInternal, err.Error())
}

// FromMarks copies an internal marks value into the boundary shape.
func FromMarks(m grade.Marks) Marks {
	components := make(map[string]float64, len(m.Components))
	for k, v := range m.Components {
		components[k] = v
	}
	return Marks{
		Components:  components,
		Total:       m.Total,
		LetterGrade: m.LetterGrade,
		GradePoints: m.GradePoints,
	}
}

// ToMarks converts a boundary marks value back to the internal shape,
// recomputing the derived fields from the components.
func ToMarks(m Marks) grade.Marks {
	return grade.BuildMarks(m.Components)
}

// FromSubmitResult projects a commit receipt.
func FromSubmitResult(r grade.SubmitResult) SubmitResponse {
	return SubmitResponse{
		SeriesID:      r.SeriesID,
		ContentID:     r.ContentID,
		VersionNumber: r.VersionNumber,
	}
}

// FromHeadInfo projects series head metadata.
func FromHeadInfo(h grade.HeadInfo) SeriesHead {
	return SeriesHead{
		SeriesID:       h.SeriesID,
		CourseCode:     h.CourseCode,
		SemesterCode:   h.SemesterCode,
		CurrentVersion: h.CurrentVersion,
		HeadContentID:  h.HeadContentID,
		HeadTimestamp:  h.HeadTimestamp,
		HeadReason:     h.HeadReason,
	}
}

// FromVersionRecord projects one history row.
func FromVersionRecord(v ledger.VersionRecord) VersionEntry {
	return VersionEntry{
		VersionNumber: v.VersionNumber,
		ContentID:     v.ContentID,
		Timestamp:     v.Timestamp,
		Editor:        v.Editor,
		Reason:        v.Reason,
	}
}

// FromPayload projects a decrypted version for a viewer.
func FromPayload(seriesID string, versionNumber int, p *grade.MarksPayload) ViewResponse {
	return ViewResponse{
		SeriesID:      seriesID,
		VersionNumber: versionNumber,
		EnrollmentID:  p.EnrollmentID,
		Marks:         FromMarks(p.Marks),
		ComputedAt:    p.ComputedAt,
	}
}
