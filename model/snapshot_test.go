package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gradevault/gradevault/envelope"
	"github.com/gradevault/gradevault/ledger"
	"github.com/gradevault/gradevault/storage"
)

func TestSnapshot_SubmitRequest_JSONShape(t *testing.T) {
	req := SubmitRequest{
		Teacher:      "0xteacher1",
		Student:      "0xstudent1",
		EnrollmentID: "enr-1",
		CourseCode:   "CSE101",
		SemesterCode: "fall2025",
		Marks: Marks{
			Components:  map[string]float64{"final": 41},
			Total:       41,
			LetterGrade: "C",
			GradePoints: 2.25,
		},
		Reason: "initial submission",
	}

	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"teacher\": \"0xteacher1\",\n" +
		"  \"student\": \"0xstudent1\",\n" +
		"  \"enrollmentId\": \"enr-1\",\n" +
		"  \"courseCode\": \"CSE101\",\n" +
		"  \"semesterCode\": \"fall2025\",\n" +
		"  \"marks\": {\n" +
		"    \"components\": {\n" +
		"      \"final\": 41\n" +
		"    },\n" +
		"    \"total\": 41,\n" +
		"    \"letterGrade\": \"C\",\n" +
		"    \"gradePoints\": 2.25\n" +
		"  },\n" +
		"  \"reason\": \"initial submission\"\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestSnapshot_SeriesHead_JSONShape(t *testing.T) {
	head := SeriesHead{
		SeriesID:       "series-1",
		CourseCode:     "CSE101",
		SemesterCode:   "fall2025",
		CurrentVersion: 2,
		HeadContentID:  "bafy-head-1",
		HeadTimestamp:  time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
		HeadReason:     "recount",
	}

	b, err := json.MarshalIndent(head, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"seriesId\": \"series-1\",\n" +
		"  \"courseCode\": \"CSE101\",\n" +
		"  \"semesterCode\": \"fall2025\",\n" +
		"  \"currentVersion\": 2,\n" +
		"  \"headContentId\": \"bafy-head-1\",\n" +
		"  \"headTimestamp\": \"2025-09-01T12:00:00Z\",\n" +
		"  \"headReason\": \"recount\"\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{ledger.ErrUnknownSeries, ErrUnknownSeries},
		{ledger.ErrUnauthorized, ErrUnauthorized},
		{ledger.ErrAlreadyExists, ErrSeriesExists},
		{ledger.ErrIndexOutOfRange, ErrVersionRange},
		{storage.ErrNotFound, ErrNotFound},
		{storage.ErrCIDMismatch, ErrCIDMismatch},
		{storage.ErrInvalidCID, ErrInvalidCID},
		{errors.New("boom"), ErrInternal},
	}
	for _, c := range cases {
		wrapped := fmt.Errorf("outer: %w", c.err)
		var ce *CodedError
		if !errors.As(MapError(wrapped), &ce) {
			t.Fatalf("MapError(%v) is not a CodedError", c.err)
		}
		if ce.Code != c.code {
			t.Errorf("MapError(%v) code = %s, want %s", c.err, ce.Code, c.code)
		}
	}
}

func TestMapErrorEnvelopeKinds(t *testing.T) {
	recipientErr := envelopeErrOfKind(t, envelope.KindRecipient)
	var ce *CodedError
	if !errors.As(MapError(recipientErr), &ce) || ce.Code != ErrNoRecipient {
		t.Fatalf("recipient error mapped to %v", MapError(recipientErr))
	}
}

func envelopeErrOfKind(t *testing.T, kind envelope.Kind) error {
	t.Helper()
	// Opening with an identity absent from the recipient list is the
	// canonical producer of a recipient-kind error.
	if kind != envelope.KindRecipient {
		t.Fatalf("unsupported kind %v", kind)
	}
	env := &envelope.Envelope{
		Version:    envelope.FormatVersion,
		IV:         make([]byte, 12),
		AuthTag:    make([]byte, 16),
		Ciphertext: []byte{1},
		Recipients: []envelope.Recipient{{RecipientID: "someone-else", WrappedKey: []byte{1}}},
	}
	_, err := envelope.Open(env, "absent", nil)
	if err == nil {
		t.Fatalf("expected an error")
	}
	return err
}

func TestMapErrorPassthrough(t *testing.T) {
	coded := NewError(ErrInvalidRequest, "bad input")
	wrapped := fmt.Errorf("outer: %w", coded)
	if got := MapError(wrapped); got != coded {
		t.Fatalf("pre-coded error was re-mapped: %v", got)
	}
}
