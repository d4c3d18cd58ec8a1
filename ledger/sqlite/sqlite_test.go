package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradevault/gradevault/ledger"
	"github.com/gradevault/gradevault/ledger/testkit"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteConformance(t *testing.T) {
	testkit.RunLedgerConformance(t, func(t *testing.T) ledger.Ledger {
		return openTestStore(t)
	})
}

func TestReopenPreservesHistory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)

	key := ledger.SeriesKey{
		Teacher:      "0xTeacher",
		Student:      "0xStudent",
		EnrollmentID: "enr-1",
		CourseCode:   "CSE101",
		SemesterCode: "fall2025",
	}
	id, err := s.CreateSeries(ctx, key, "bafy-c1", "initial")
	require.NoError(t, err)
	_, err = s.AppendVersion(ctx, id, key.Teacher, "bafy-c2", "recount")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	head, err := reopened.Head(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 2, head.VersionNumber)
	require.Equal(t, "bafy-c2", head.ContentID)

	v0, err := reopened.Version(ctx, id, 0)
	require.NoError(t, err)
	require.Equal(t, "bafy-c1", v0.ContentID)
	require.False(t, v0.Timestamp.IsZero())

	found, err := reopened.FindSeries(ctx, key)
	require.NoError(t, err)
	require.Equal(t, id, found)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
}

func TestTimestampsAreUTC(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.CreateSeries(ctx, ledger.SeriesKey{
		Teacher: "t", Student: "s", EnrollmentID: "e", CourseCode: "c", SemesterCode: "sem",
	}, "bafy", "r")
	require.NoError(t, err)

	head, err := s.Head(ctx, id)
	require.NoError(t, err)
	_, offset := head.Timestamp.Zone()
	require.Zero(t, offset)
}
